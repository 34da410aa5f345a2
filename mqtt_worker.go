package main

import (
	"context"
	"fmt"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// InboundMessage carries one raw broker message into the dispatch worker.
type InboundMessage struct {
	Topic   string
	Payload []byte
}

func newClientOptions(broker, clientID, username, password string) *mqtt.ClientOptions {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:1883", broker))
	opts.SetClientID(clientID)
	if username != "" {
		opts.SetUsername(username)
		opts.SetPassword(password)
	}
	opts.SetAutoReconnect(true)
	opts.SetConnectRetryInterval(5 * time.Second)
	opts.SetConnectionLostHandler(func(client mqtt.Client, err error) {
		log.Printf("MQTT connection lost: %v\n", err)
	})
	return opts
}

// mqttWorker manages the inbound MQTT connection: it subscribes to the
// pipeline's topics at QoS 2 and forwards every message to the dispatch
// worker's channel. Subscriptions are re-established on every reconnect.
// Failure to reach the broker at startup is fatal.
func mqttWorker(
	ctx context.Context,
	broker, clientID, username, password string,
	topics []string,
	msgChan chan<- InboundMessage,
) {
	opts := newClientOptions(broker, clientID, username, password)

	opts.SetOnConnectHandler(func(client mqtt.Client) {
		log.Printf("Connected to MQTT broker at %s\n", broker)

		for _, topic := range topics {
			token := client.Subscribe(topic, 2, func(client mqtt.Client, msg mqtt.Message) {
				// Copy the payload: paho may reuse the buffer after the
				// handler returns.
				payload := append([]byte(nil), msg.Payload()...)

				select {
				case msgChan <- InboundMessage{Topic: msg.Topic(), Payload: payload}:
				case <-ctx.Done():
					return
				}
			})

			if token.Wait() && token.Error() != nil {
				log.Printf("Failed to subscribe to topic %s: %v\n", topic, token.Error())
			} else {
				log.Printf("Subscribed to topic: %s\n", topic)
			}
		}
	})

	client := mqtt.NewClient(opts)

	log.Printf("Connecting %s to MQTT broker at %s...\n", clientID, broker)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		log.Fatalf("Failed to connect to MQTT broker: %v", token.Error())
	}

	<-ctx.Done()

	if client.IsConnected() {
		client.Disconnect(250)
		log.Println("Disconnected from MQTT broker")
	}
}

// outboundWorker manages the republisher's dedicated connection. The client
// is handed to the republish worker on every (re)connect so queued records
// flush as soon as the broker is reachable.
func outboundWorker(
	ctx context.Context,
	broker, clientID, username, password string,
	clientChan chan<- mqtt.Client,
) {
	opts := newClientOptions(broker, clientID, username, password)

	opts.SetOnConnectHandler(func(client mqtt.Client) {
		select {
		case clientChan <- client:
			log.Println("Sent outbound MQTT client to republish worker")
		case <-ctx.Done():
		}
	})

	client := mqtt.NewClient(opts)

	if token := client.Connect(); token.Wait() && token.Error() != nil {
		log.Fatalf("Failed to connect republisher to MQTT broker: %v", token.Error())
	}

	<-ctx.Done()

	if client.IsConnected() {
		client.Disconnect(250)
	}
}
