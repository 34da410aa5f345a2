package pipeline

import (
	"encoding/json"
	"fmt"
	"log"
)

// Sender is the outbound side of the pipeline.
type Sender interface {
	TrySend(topic string, payload []byte) bool
}

// Pipeline owns the state of one measurement pipeline instance: the snapshot
// and pause cells polled by the presentation layer, the run-config store and
// the series accumulator. All mutations happen on the single goroutine
// calling HandleMessage, in arrival order; the cells make reads safe for
// concurrent pollers.
type Pipeline struct {
	Kind     Kind
	Snapshot *Cell[Snapshot]
	Paused   *Cell[bool]
	Config   *ConfigStore
	Metrics  *Metrics

	acc    Accumulator
	sender Sender
}

// New builds a pipeline instance. The initial snapshot is a cleared record
// with idn "-" so the chart renders before any data arrives.
func New(kind Kind, sender Sender, metrics *Metrics) *Pipeline {
	acc := AccumulatorFor(kind)
	initial := Snapshot{
		Rec:    Record{Clear: true, IDN: "-"},
		Series: acc.Empty(),
	}
	return &Pipeline{
		Kind:     kind,
		Snapshot: NewCell(initial),
		Paused:   NewCell(false),
		Config:   NewConfigStore(),
		Metrics:  metrics,
		acc:      acc,
		sender:   sender,
	}
}

// HandleMessage routes one inbound message by topic. Unrecognized topics are
// ignored. Any returned error means the message could not be decoded or
// processed and the instance must not continue (no partial state has been
// written when that happens).
func (p *Pipeline) HandleMessage(topic string, payload []byte) error {
	switch topic {
	case p.Kind.RawTopic():
		return p.handleData(payload)

	case TopicRunConfig:
		p.Metrics.ConfigMessages.Inc()
		var msg struct {
			Config Config `json:"config"`
		}
		if err := json.Unmarshal(payload, &msg); err != nil {
			return fmt.Errorf("decode run config: %w", err)
		}
		log.Println("reading config...")
		p.Config.Replace(msg.Config)

	case TopicPause:
		p.Metrics.PauseMessages.Inc()
		var paused bool
		if err := json.Unmarshal(payload, &paused); err != nil {
			return fmt.Errorf("decode pause flag: %w", err)
		}
		log.Printf("pause: %v\n", paused)
		p.Paused.Store(paused)
	}
	return nil
}

func (p *Pipeline) handleData(payload []byte) error {
	p.Metrics.DataMessages.Inc()

	rec, err := DecodeRecord(payload)
	if err != nil {
		return fmt.Errorf("%s measurement: %w", p.Kind, err)
	}

	series := p.Snapshot.Load().Series
	if rec.Clear {
		log.Printf("%s clear\n", p.Kind)
		series = p.acc.Empty()
	} else {
		augmented, err := Augment(rec)
		if err != nil {
			return fmt.Errorf("%s measurement: %w", p.Kind, err)
		}
		series, err = p.acc.Fold(series, augmented)
		if err != nil {
			return fmt.Errorf("%s measurement: %w", p.Kind, err)
		}

		out, err := augmented.Encode()
		if err != nil {
			return fmt.Errorf("%s measurement: %w", p.Kind, err)
		}
		p.sender.TrySend(p.Kind.ProcessedTopic(), out)
		rec = augmented
	}

	p.Snapshot.Store(Snapshot{Rec: rec, Series: series})
	p.Metrics.SnapshotsPublished.Inc()
	return nil
}
