package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/chzyer/readline"

	"github.com/measlab/liveplot/pipeline"
)

// readlineWriter wraps log output to work with readline
type readlineWriter struct {
	rl *readline.Instance
}

func (w *readlineWriter) Write(p []byte) (n int, err error) {
	if w.rl != nil {
		w.rl.Clean()
	}
	n, err = os.Stderr.Write(p)
	if w.rl != nil {
		w.rl.Refresh()
	}
	return n, err
}

// debugConsole runs an interactive console for inspecting the pipeline's
// single-slot state. It only reads the cells; it can never perturb ingestion.
func debugConsole(ctx context.Context, cancel context.CancelFunc, pipe *pipeline.Pipeline) {
	rl, err := readline.New(fmt.Sprintf("liveplot(%s)> ", pipe.Kind))
	if err != nil {
		log.Printf("Failed to start debug console: %v\n", err)
		return
	}
	defer func() { _ = rl.Close() }()

	// Route log output through readline so the prompt survives log lines
	log.SetOutput(&readlineWriter{rl: rl})
	defer log.SetOutput(os.Stderr)

	for {
		if ctx.Err() != nil {
			return
		}

		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
			return
		}
		if err != nil {
			log.Printf("Debug console read error: %v\n", err)
			return
		}

		switch strings.TrimSpace(line) {
		case "":

		case "help":
			fmt.Println("commands: snapshot, series, config, pause, quit")

		case "snapshot":
			snap := pipe.Snapshot.Load()
			fmt.Printf("idn=%q clear=%v area=%v rows=%d cols=%d\n",
				snap.Rec.IDN, snap.Rec.Clear, snap.Rec.Pixel.Area,
				snap.Series.Len(), snap.Series.Cols)

		case "series":
			snap := pipe.Snapshot.Load()
			for _, row := range snap.Series.Rows {
				fmt.Printf("%v\n", row)
			}

		case "config":
			cfg := pipe.Config.Load()
			if len(cfg) == 0 {
				fmt.Println("no config received yet")
				break
			}
			for key, value := range cfg {
				fmt.Printf("%s = %v\n", key, value)
			}

		case "pause":
			fmt.Printf("paused=%v\n", pipe.Paused.Load())

		case "quit", "exit":
			cancel()
			return

		default:
			fmt.Printf("unknown command %q, try help\n", line)
		}
	}
}
