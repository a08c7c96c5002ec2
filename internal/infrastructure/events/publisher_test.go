package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	keys   []string
	bodies []interface{}
	closed bool
}

func (r *recordingSink) Publish(_ context.Context, key string, body interface{}) error {
	r.keys = append(r.keys, key)
	r.bodies = append(r.bodies, body)
	return nil
}

func (r *recordingSink) Close() { r.closed = true }

func TestPublisher_Envelope(t *testing.T) {
	rec := &recordingSink{}
	fixed := time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)
	p := &Publisher{sink: rec, now: func() time.Time { return fixed }}

	require.NoError(t, p.Publish(context.Background(), PurchaseCompleted, map[string]string{"receiptId": "r1"}))
	require.Equal(t, []string{PurchaseCompleted}, rec.keys)

	env, ok := rec.bodies[0].(Envelope)
	require.True(t, ok)
	assert.Equal(t, PurchaseCompleted, env.Type)
	assert.Equal(t, fixed, env.OccurredAt)
	assert.NotEmpty(t, env.ID)

	p.Close()
	assert.True(t, rec.closed)
}

func TestNewPublisher(t *testing.T) {
	p, err := NewPublisher("", "challenge_events")
	require.NoError(t, err)
	require.NoError(t, p.Publish(context.Background(), OrderPending, nil))
	p.Close()

	orig := newProducer
	t.Cleanup(func() { newProducer = orig })
	newProducer = func(string, string) (sink, error) { return nil, errors.New("dial failed") }
	_, err = NewPublisher("amqp://localhost", "challenge_events")
	require.ErrorContains(t, err, "dial failed")

	rec := &recordingSink{}
	newProducer = func(string, string) (sink, error) { return rec, nil }
	p, err = NewPublisher("amqp://localhost", "challenge_events")
	require.NoError(t, err)
	require.NoError(t, p.Publish(context.Background(), OrderPending, "x"))
	assert.Len(t, rec.keys, 1)
}
