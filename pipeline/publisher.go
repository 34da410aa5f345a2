package pipeline

import (
	"context"
	"log"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Message is an outbound publish request.
type Message struct {
	Topic   string
	Payload []byte
}

// Republisher forwards augmented records back onto the bus. Callers never
// block and never learn about delivery: records go into a bounded queue and a
// worker owning a long-lived client publishes them at QoS 2, waiting for each
// acknowledgement. Failures are logged and dropped; ingestion has already
// completed by the time a publish runs.
type Republisher struct {
	ch      chan Message
	metrics *Metrics
}

// NewRepublisher creates a republisher with a bounded outbound queue.
func NewRepublisher(metrics *Metrics) *Republisher {
	return &Republisher{
		ch:      make(chan Message, 100),
		metrics: metrics,
	}
}

// TrySend enqueues a record for publication. Returns false if the queue was
// full and the record was dropped.
func (r *Republisher) TrySend(topic string, payload []byte) bool {
	select {
	case r.ch <- Message{Topic: topic, Payload: payload}:
		return true
	default:
		r.metrics.RepublishDropped.Inc()
		log.Printf("Republish queue full, dropping message to %s\n", topic)
		return false
	}
}

// Run consumes the queue. The outbound client arrives over clientChan once
// its connection is up (and again after every reconnect); messages enqueued
// before then are held in memory.
func (r *Republisher) Run(ctx context.Context, clientChan <-chan mqtt.Client) {
	var client mqtt.Client
	var pending []Message

	publish := func(msg Message) {
		token := client.Publish(msg.Topic, 2, false, msg.Payload)
		token.Wait()
		if token.Error() != nil {
			r.metrics.RepublishFailed.Inc()
			log.Printf("Failed to publish to %s: %v\n", msg.Topic, token.Error())
			return
		}
		r.metrics.RepublishSent.Inc()
	}

	for {
		select {
		case newClient := <-clientChan:
			client = newClient
			if client != nil && client.IsConnected() {
				for _, msg := range pending {
					publish(msg)
				}
				pending = nil
			}

		case msg := <-r.ch:
			if client != nil && client.IsConnected() {
				publish(msg)
			} else {
				pending = append(pending, msg)
			}

		case <-ctx.Done():
			return
		}
	}
}
