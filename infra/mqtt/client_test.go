package mqtt

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetcost/trucktco/core/tco"
	"github.com/fleetcost/trucktco/infra/logger"
)

type fakeToken struct {
	err error
}

func (t *fakeToken) Wait() bool                       { return true }
func (t *fakeToken) WaitTimeout(_ time.Duration) bool { return true }
func (t *fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (t *fakeToken) Error() error { return t.err }

type fakeClient struct {
	published [][]byte
	topics    []string
	failures  int
}

func (f *fakeClient) IsConnected() bool   { return true }
func (f *fakeClient) Connect() paho.Token { return &fakeToken{} }
func (f *fakeClient) Disconnect(uint)     {}

func (f *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token {
	if f.failures > 0 {
		f.failures--
		return &fakeToken{err: errors.New("broker unavailable")}
	}
	f.topics = append(f.topics, topic)
	f.published = append(f.published, payload.([]byte))
	return &fakeToken{}
}

func newTestPublisher(cli pahoClient) *PahoPublisher {
	return &PahoPublisher{
		cli:        cli,
		topic:      "trucktco/results",
		maxRetries: 3,
		backoff:    0,
		log:        logger.NopLogger{},
	}
}

func TestPublishResultEnvelope(t *testing.T) {
	cli := &fakeClient{}
	p := newTestPublisher(cli)

	res := tco.Result{ScenarioName: "urban-delivery", StartYear: 2025, EndYear: 2035}
	runID, err := p.PublishResult(res)
	require.NoError(t, err)
	assert.NotEmpty(t, runID)
	require.Len(t, cli.published, 1)
	assert.Equal(t, "trucktco/results", cli.topics[0])

	var env Envelope
	require.NoError(t, json.Unmarshal(cli.published[0], &env))
	assert.Equal(t, runID, env.RunID)
	assert.Equal(t, "urban-delivery", env.Result.ScenarioName)
	assert.False(t, env.PublishedAt.IsZero())
}

func TestPublishResultRetries(t *testing.T) {
	cli := &fakeClient{failures: 2}
	p := newTestPublisher(cli)

	_, err := p.PublishResult(tco.Result{ScenarioName: "retry"})
	require.NoError(t, err)
	assert.Len(t, cli.published, 1)
}

func TestPublishResultExhaustsRetries(t *testing.T) {
	cli := &fakeClient{failures: 5}
	p := newTestPublisher(cli)

	_, err := p.PublishResult(tco.Result{ScenarioName: "down"})
	require.Error(t, err)
	assert.Empty(t, cli.published)
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{Broker: "tcp://localhost:1883"}
	cfg.SetDefaults()
	assert.Equal(t, "trucktco", cfg.ClientID)
	assert.Equal(t, "trucktco/results", cfg.Topic)
	assert.Equal(t, 3, cfg.MaxRetries)
}

func TestLoadTLSConfigRequiresPaths(t *testing.T) {
	cfg := Config{UseTLS: true}
	_, err := cfg.LoadTLSConfig()
	require.Error(t, err)
}
