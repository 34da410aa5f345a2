package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/joho/godotenv"

	"github.com/measlab/liveplot/pipeline"
	"github.com/measlab/liveplot/web"
)

// SafeGo launches a goroutine with panic recovery and retry logic.
// On panic, retries with exponential backoff (max 10 retries).
// Retry count resets if the worker ran for 2+ minutes before failing.
// After exhausting retries, cancels context to trigger shutdown.
func SafeGo(
	ctx context.Context,
	cancel context.CancelFunc,
	name string,
	fn func(ctx context.Context),
) {
	const maxRetries = 10
	const maxDelay = 10 * time.Minute
	const resetAfter = 2 * time.Minute

	go func() {
		retries := 0
		delay := time.Second

		for {
			startTime := time.Now()
			var panicValue any

			func() {
				defer func() {
					panicValue = recover()
				}()
				fn(ctx)
			}()

			// Normal return covers both context cancellation and completion
			if panicValue == nil {
				return
			}

			// If ran for resetAfter duration before panicking, reset retry state
			if time.Since(startTime) >= resetAfter {
				retries = 0
				delay = time.Second
			}

			retries++
			log.Printf("Panic in %s (attempt %d/%d): %v\n", name, retries, maxRetries, panicValue)

			if retries >= maxRetries {
				log.Printf("%s failed after %d retries, shutting down\n", name, maxRetries)
				cancel()
				return
			}

			log.Printf("%s will retry in %v\n", name, delay)
			select {
			case <-time.After(delay):
				delay = min(delay*2, maxDelay)
			case <-ctx.Done():
				return
			}
		}
	}()
}

// clientID builds a unique MQTT client id so multiple plotter instances can
// share a broker.
func clientID(suffix string) string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		log.Fatalf("Failed to generate client id: %v", err)
	}
	return fmt.Sprintf("plotter-%s-%s", suffix, hex.EncodeToString(buf))
}

func main() {
	mqttHost := flag.String("mqtthost", "127.0.0.1", "IP address or hostname of the MQTT broker")
	webHost := flag.String("webhost", "127.0.0.1", "IP address or hostname to bind the chart server to")
	webPort := flag.Int("webport", 0, "chart server port (0 = default for the measurement kind)")
	kindFlag := flag.String("kind", "iv", "measurement kind to process: iv or it")
	debug := flag.Bool("debug", false, "start the interactive debug console")
	flag.Parse()

	kind := pipeline.Kind(*kindFlag)
	if !kind.Valid() {
		log.Fatalf("Unknown measurement kind %q, want iv or it", *kindFlag)
	}

	log.Printf("Starting liveplot (%s)...\n", kind)

	// Optional .env file for broker credentials
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Error loading .env file: %v\n", err)
	}
	mqttUsername := os.Getenv("MQTT_USERNAME")
	mqttPassword := os.Getenv("MQTT_PASSWORD")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metrics := pipeline.NewMetrics(kind)
	republisher := pipeline.NewRepublisher(metrics)
	pipe := pipeline.New(kind, republisher, metrics)

	msgChan := make(chan InboundMessage, 10)
	outboundClientChan := make(chan mqtt.Client, 1) // Buffered to prevent blocking onConnect

	// Launch the republisher worker and its dedicated outbound connection
	SafeGo(ctx, cancel, "republish-worker", func(ctx context.Context) {
		republisher.Run(ctx, outboundClientChan)
	})
	SafeGo(ctx, cancel, "mqtt-outbound-worker", func(ctx context.Context) {
		outboundWorker(ctx, *mqttHost, clientID(string(kind)+"-pub"), mqttUsername, mqttPassword, outboundClientChan)
	})
	log.Println("Republish worker started")

	// Launch the dispatch worker: single goroutine, arrival order, so all
	// accumulator and cache mutations are serialized. Ingest errors are fatal.
	SafeGo(ctx, cancel, "dispatch-worker", func(ctx context.Context) {
		for {
			select {
			case msg := <-msgChan:
				if err := pipe.HandleMessage(msg.Topic, msg.Payload); err != nil {
					log.Fatalf("Fatal ingest error: %v", err)
				}
			case <-ctx.Done():
				return
			}
		}
	})
	log.Println("Dispatch worker started")

	// Launch the inbound MQTT worker
	topics := []string{kind.RawTopic(), pipeline.TopicRunConfig, pipeline.TopicPause}
	SafeGo(ctx, cancel, "mqtt-worker", func(ctx context.Context) {
		mqttWorker(ctx, *mqttHost, clientID(string(kind)), mqttUsername, mqttPassword, topics, msgChan)
	})
	log.Println("MQTT worker started")

	// Launch the chart server
	port := *webPort
	if port == 0 {
		port = kind.DefaultWebPort()
	}
	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", *webHost, port),
		Handler: web.NewServer(pipe).Handler(),
	}
	SafeGo(ctx, cancel, "web-server", func(ctx context.Context) {
		log.Printf("Chart server listening on %s\n", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("Chart server failed: %v\n", err)
			cancel()
		}
	})

	if *debug {
		SafeGo(ctx, cancel, "debug-console", func(ctx context.Context) {
			debugConsole(ctx, cancel, pipe)
		})
	}

	// Wait for interrupt signal or context cancellation (from panic)
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigChan:
		log.Println("\nShutting down...")
	case <-ctx.Done():
		log.Println("\nShutting down due to error...")
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Chart server shutdown: %v\n", err)
	}
}
