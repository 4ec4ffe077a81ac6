package publish

import (
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/itohio/tegctl/pkg/command"
	"github.com/itohio/tegctl/pkg/sampler"
)

// publishTimeout bounds how long a loop can be held up by the broker.
const publishTimeout = 2 * time.Second

// connectTimeout bounds the wait for the first connection.
const connectTimeout = 10 * time.Second

// Real publishes to an actual MQTT broker.
type Real struct {
	client paho.Client
	prefix string
}

// NewReal creates a publisher connected to the given broker. Topics are
// "<prefix>/readings" and "<prefix>/commands".
func NewReal(broker, clientID, prefix string) (*Real, error) {
	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second)

	client := paho.NewClient(opts)
	if err := connect(client, connectTimeout); err != nil {
		return nil, err
	}

	return &Real{client: client, prefix: prefix}, nil
}

// connect waits for the first connection. With connect retry enabled the
// token only completes on success, so on timeout the client is disconnected
// to stop it retrying in the background.
func connect(client paho.Client, timeout time.Duration) error {
	token := client.Connect()
	if !token.WaitTimeout(timeout) {
		client.Disconnect(0)
		return fmt.Errorf("connection timeout after %s", timeout)
	}
	if err := token.Error(); err != nil {
		client.Disconnect(0)
		return fmt.Errorf("connect to broker: %w", err)
	}
	return nil
}

// PublishReading sends a reading (QoS 0, not retained).
func (p *Real) PublishReading(r sampler.Reading) error {
	payload, err := FormatReading(r, time.Now())
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}
	return p.publish(TopicReadings, 0, payload)
}

// PublishCommand sends a command (QoS 1, not retained).
func (p *Real) PublishCommand(c byte, a command.Action) error {
	payload, err := FormatCommand(c, a, time.Now())
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}
	return p.publish(TopicCommands, 1, payload)
}

func (p *Real) publish(suffix string, qos byte, payload []byte) error {
	topic := p.prefix + "/" + suffix
	token := p.client.Publish(topic, qos, false, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish to %s: timeout", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}
	return nil
}

// IsConnected reports whether the client currently holds a connection.
func (p *Real) IsConnected() bool {
	return p.client.IsConnected()
}

// Close disconnects from the broker.
func (p *Real) Close() error {
	p.client.Disconnect(250)
	return nil
}
