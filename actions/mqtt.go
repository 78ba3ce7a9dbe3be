package actions

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

// DefaultPublishTimeout is used when MQTT.Timeout is zero.
var DefaultPublishTimeout = 10 * time.Second

// Publisher is the part of an mqtt.Client that "mqtt.publish" needs.
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// NewMQTTClient makes and connects a client.
func NewMQTTClient(ctx context.Context, broker, clientId string, logger *zap.Logger) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID(clientId)
	opts.SetAutoReconnect(true)
	opts.SetConnectionLostHandler(func(c mqtt.Client, err error) {
		logger.Warn("mqtt connection lost", zap.Error(err))
	})

	c := mqtt.NewClient(opts)
	t := c.Connect()
	connected := make(chan bool, 1)
	go func() {
		connected <- t.Wait()
	}()
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-connected:
	}
	if err := t.Error(); err != nil {
		return nil, err
	}
	logger.Info("mqtt connected", zap.String("broker", broker), zap.String("client", clientId))
	return c, nil
}

// MQTT publishes messages for "mqtt.publish".
//
// Parameters: topic (required), payload, qos (0-2), and retain.  A
// payload that isn't a string is sent as JSON.  The output is
// {topic}.
type MQTT struct {
	Publisher Publisher
	Timeout   time.Duration
	Logger    *zap.Logger
}

func (p *MQTT) Publish(ctx context.Context, x interface{}) (interface{}, error) {
	m, err := params("mqtt.publish", x)
	if err != nil {
		return nil, err
	}
	topic, err := stringParam("mqtt.publish", m, "topic")
	if err != nil {
		return nil, err
	}

	var qos byte
	if q, have := number(m["qos"]); have {
		if q < 0 || 2 < q {
			return nil, fmt.Errorf("mqtt.publish: bad qos %v", q)
		}
		qos = byte(q)
	}
	retain, _ := m["retain"].(bool)

	var payload []byte
	switch vv := m["payload"].(type) {
	case string:
		payload = []byte(vv)
	default:
		if payload, err = json.Marshal(vv); err != nil {
			return nil, err
		}
	}

	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultPublishTimeout
	}

	if p.Logger != nil {
		p.Logger.Debug("mqtt.publish", zap.String("topic", topic), zap.Int("bytes", len(payload)))
	}

	t := p.Publisher.Publish(topic, qos, retain, payload)
	if !t.WaitTimeout(timeout) {
		return nil, fmt.Errorf("mqtt.publish: timeout publishing to %s", topic)
	}
	if err := t.Error(); err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"topic": topic,
	}, nil
}
