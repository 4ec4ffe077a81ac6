package publish

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/itohio/tegctl/pkg/command"
	"github.com/itohio/tegctl/pkg/sampler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedTime = time.Date(2026, 10, 19, 12, 30, 0, 0, time.UTC)

func TestFormatReading(t *testing.T) {
	data, err := FormatReading(sampler.Reading{Millis: 55, Raw: 600, Smoothed: 510, Voltage: 2.490234375}, fixedTime)
	require.NoError(t, err)

	var p ReadingPayload
	require.NoError(t, json.Unmarshal(data, &p))
	assert.Equal(t, "2026-10-19T12:30:00Z", p.Timestamp)
	assert.Equal(t, uint32(55), p.Millis)
	assert.Equal(t, uint16(600), p.Raw)
	assert.Equal(t, 510.0, p.Smoothed)
	assert.Equal(t, 2.490234375, p.Voltage)
}

func TestFormatCommand(t *testing.T) {
	a := command.Action{Target: command.Right, Direction: command.Backward, Power: 135}
	data, err := FormatCommand('x', a, fixedTime.In(time.FixedZone("CEST", 2*3600)))
	require.NoError(t, err)

	assert.JSONEq(t,
		`{"timestamp":"2026-10-19T12:30:00Z","command":"x","target":"right","direction":"backward","power":135}`,
		string(data))
}

func TestNop(t *testing.T) {
	var p Publisher = Nop{}
	assert.NoError(t, p.PublishReading(sampler.Reading{}))
	assert.NoError(t, p.PublishCommand('s', command.Action{}))
	assert.NoError(t, p.Close())
}

func TestFake(t *testing.T) {
	f := &Fake{}
	var p Publisher = f

	require.NoError(t, p.PublishReading(sampler.Reading{Millis: 1}))
	require.NoError(t, p.PublishCommand('a', command.Action{}))
	require.NoError(t, p.Close())

	assert.Len(t, f.Readings(), 1)
	assert.Equal(t, []byte{'a'}, f.Commands())
	assert.True(t, f.Closed())

	f.Err = errors.New("broker gone")
	assert.Error(t, p.PublishReading(sampler.Reading{}))
	assert.Error(t, p.PublishCommand('s', command.Action{}))
	assert.Len(t, f.Readings(), 1)
}

// stubToken never completes unless done is closed.
type stubToken struct {
	done chan struct{}
	err  error
}

func (t *stubToken) Wait() bool {
	<-t.done
	return true
}

func (t *stubToken) WaitTimeout(d time.Duration) bool {
	select {
	case <-t.done:
		return true
	case <-time.After(d):
		return false
	}
}

func (t *stubToken) Done() <-chan struct{} { return t.done }
func (t *stubToken) Error() error { return t.err }

// stubClient records Connect and Disconnect; other methods are not used.
type stubClient struct {
	paho.Client
	token        *stubToken
	disconnected []uint
}

func (c *stubClient) Connect() paho.Token { return c.token }
func (c *stubClient) Disconnect(quiesce uint) {
	c.disconnected = append(c.disconnected, quiesce)
}

func TestConnect_TimeoutStopsRetry(t *testing.T) {
	c := &stubClient{token: &stubToken{done: make(chan struct{})}}

	err := connect(c, 10*time.Millisecond)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timeout")
	assert.Equal(t, []uint{0}, c.disconnected)
}

func TestConnect_Error(t *testing.T) {
	tok := &stubToken{done: make(chan struct{}), err: errors.New("refused")}
	close(tok.done)
	c := &stubClient{token: tok}

	err := connect(c, time.Second)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "refused")
	assert.Equal(t, []uint{0}, c.disconnected)
}

func TestConnect_Success(t *testing.T) {
	tok := &stubToken{done: make(chan struct{})}
	close(tok.done)
	c := &stubClient{token: tok}

	require.NoError(t, connect(c, time.Second))
	assert.Empty(t, c.disconnected)
}
