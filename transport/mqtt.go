package transport

import (
	"context"
	"encoding/binary"
	"fmt"
	"hash/fnv"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/mr-tron/base58"
	"github.com/rs/zerolog"
)

// MQTT subscribes to a command topic and dispatches one frame per publish.
type MQTT struct {
	broker string
	topic  string
	log    zerolog.Logger
}

// NewMQTT creates an MQTT command listener.
func NewMQTT(broker, topic string, log zerolog.Logger) *MQTT {
	return &MQTT{broker: broker, topic: topic, log: log}
}

// ClientID returns the client identity used on the broker: a fixed prefix
// plus a base58 digest of broker and topic, so multiple robots on one broker
// do not collide.
func (m *MQTT) ClientID() string {
	h := fnv.New64a()
	h.Write([]byte(m.broker))
	h.Write([]byte(m.topic))
	var sum [8]byte
	binary.BigEndian.PutUint64(sum[:], h.Sum64())
	return "omnibase-" + base58.Encode(sum[:])
}

// Run connects, subscribes and dispatches until the context is cancelled.
func (m *MQTT) Run(ctx context.Context, h Handler) error {
	opts := mqtt.NewClientOptions().
		AddBroker(m.broker).
		SetClientID(m.ClientID()).
		SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("connect %q: %w", m.broker, token.Error())
	}
	defer client.Disconnect(250)

	token := client.Subscribe(m.topic, 1, func(_ mqtt.Client, raw mqtt.Message) {
		msg, err := Decode(raw.Payload())
		if err != nil {
			m.log.Debug().Err(err).Msg("bad command frame")
			return
		}
		if !h.HandleMessage(msg.Cmd, msg.Args) {
			m.log.Debug().Uint8("cmd", msg.Cmd).Msg("command rejected")
		}
	})
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("subscribe %q: %w", m.topic, token.Error())
	}

	m.log.Info().Str("broker", m.broker).Str("topic", m.topic).Msg("mqtt command ingress up")

	<-ctx.Done()
	return ctx.Err()
}
