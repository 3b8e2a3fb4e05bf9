package notify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/e-radio/eradio/internal/config"
)

type published struct {
	subject string
	payload []byte
}

type fakePublisher struct {
	msgs []published
	err  error
}

func (f *fakePublisher) Publish(_ context.Context, subject string, payload []byte, _ ...jetstream.PublishOpt) (*jetstream.PubAck, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.msgs = append(f.msgs, published{subject: subject, payload: payload})
	return &jetstream.PubAck{Stream: "ERADIO", Sequence: uint64(len(f.msgs))}, nil
}

type fakeEntry struct {
	jetstream.KeyValueEntry
	value []byte
}

func (e fakeEntry) Value() []byte { return e.value }

type fakeKV struct{ data map[string][]byte }

func (f *fakeKV) Put(_ context.Context, key string, value []byte) (uint64, error) {
	f.data[key] = value
	return uint64(len(f.data)), nil
}

func (f *fakeKV) Get(_ context.Context, key string) (jetstream.KeyValueEntry, error) {
	v, ok := f.data[key]
	if !ok {
		return nil, jetstream.ErrKeyNotFound
	}
	return fakeEntry{value: v}, nil
}

func quietLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestNATSNotifierPublishesAndRecords(t *testing.T) {
	pub := &fakePublisher{}
	kv := &fakeKV{data: map[string][]byte{}}
	n := newNATSNotifier(pub, kv, "eradio.stations.updated", quietLogger())
	fixed := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)
	n.now = func() time.Time { return fixed }

	err := n.StationsUpdated(t.Context(), Event{Task: "fetch", Stations: 120, Changed: 4})
	require.NoError(t, err)

	require.Len(t, pub.msgs, 1)
	assert.Equal(t, "eradio.stations.updated", pub.msgs[0].subject)

	var ev Event
	require.NoError(t, json.Unmarshal(pub.msgs[0].payload, &ev))
	assert.Equal(t, "fetch", ev.Task)
	assert.Equal(t, 4, ev.Changed)
	assert.True(t, ev.Timestamp.Equal(fixed))

	last, err := n.Last(t.Context(), "fetch")
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, 120, last.Stations)

	missing, err := n.Last(t.Context(), "icons")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestNATSNotifierPublishError(t *testing.T) {
	pub := &fakePublisher{err: errors.New("no responders")}
	kv := &fakeKV{data: map[string][]byte{}}
	n := newNATSNotifier(pub, kv, "s", quietLogger())

	err := n.StationsUpdated(t.Context(), Event{Task: "dedupe"})
	require.Error(t, err)
	assert.Empty(t, kv.data, "status must not be recorded when publish fails")
}

func TestNewReturnsNoopWhenDisabled(t *testing.T) {
	n, err := New(t.Context(), config.NotifyConfig{Enabled: false}, nil)
	require.NoError(t, err)
	assert.IsType(t, Noop{}, n)
	assert.NoError(t, n.StationsUpdated(t.Context(), Event{Task: "x"}))
	assert.NoError(t, n.Close())
}
