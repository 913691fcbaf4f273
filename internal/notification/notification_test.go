package notification

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/morpheus-mall/mall-backend/internal/cache"
)

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

func uptr(v uint) *uint { return &v }

func TestNewMessage(t *testing.T) {
	msg := NewMessage(TypeRegistrationCreated, 5, 1).WithParticipant(uptr(10), uptr(20))
	assert.NotEmpty(t, msg.ID)
	assert.Equal(t, uint(5), msg.EventID)
	assert.Equal(t, uint(10), *msg.DesignerID)
	assert.Nil(t, msg.ProductID)

	other := NewMessage(TypeRegistrationCreated, 5, 1)
	assert.NotEqual(t, msg.ID, other.ID)
}

func TestPublish(t *testing.T) {
	w := &fakeWriter{}
	p := &kafkaPublisher{writer: w}
	msg := NewMessage(TypeAssignmentApproved, 42, 1).WithProduct(900)

	require.NoError(t, p.Publish(context.Background(), msg))
	require.Len(t, w.msgs, 1)

	km := w.msgs[0]
	assert.Equal(t, "42", string(km.Key))
	hdr := headerCarrier(km.Headers)
	assert.Equal(t, string(TypeAssignmentApproved), hdr.Get("type"))

	var decoded Message
	require.NoError(t, json.Unmarshal(km.Value, &decoded))
	assert.Equal(t, msg.ID, decoded.ID)
	assert.Equal(t, uint(900), *decoded.ProductID)
}

func TestPublishError(t *testing.T) {
	p := &kafkaPublisher{writer: &fakeWriter{err: errors.New("broker down")}}
	err := p.Publish(context.Background(), NewMessage(TypeEventCreated, 1, 1))
	assert.ErrorContains(t, err, "broker down")

	// PublishQuietly swallows the failure
	PublishQuietly(context.Background(), p, NewMessage(TypeEventCreated, 1, 1))
	PublishQuietly(context.Background(), nil, NewMessage(TypeEventCreated, 1, 1))
}

func TestNewPublisherWithoutBrokers(t *testing.T) {
	p := NewPublisher(nil, "topic")
	assert.IsType(t, NopPublisher{}, p)
	assert.NoError(t, p.Publish(context.Background(), NewMessage(TypeEventDeleted, 1, 1)))
	assert.NoError(t, p.Close())
}

func TestHeaderCarrier(t *testing.T) {
	var h headerCarrier
	h.Set("traceparent", "a")
	h.Set("traceparent", "b")
	h.Set("type", "x")
	assert.Equal(t, "b", h.Get("traceparent"))
	assert.Equal(t, []string{"traceparent", "type"}, h.Keys())
	assert.Empty(t, h.Get("missing"))
}

type fakeReader struct {
	mu        sync.Mutex
	queue     []kafka.Message
	committed int
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	if len(r.queue) > 0 {
		m := r.queue[0]
		r.queue = r.queue[1:]
		r.mu.Unlock()
		return m, nil
	}
	r.mu.Unlock()
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.committed += len(msgs)
	return nil
}

func (r *fakeReader) Close() error { return nil }

func TestConsumerProcessesAndCommits(t *testing.T) {
	good, err := encode(context.Background(), NewMessage(TypeRegistrationRemoved, 7, 1))
	require.NoError(t, err)
	reader := &fakeReader{queue: []kafka.Message{{Value: []byte("{not json")}, good}}

	got := make(chan Message, 1)
	c := &Consumer{reader: reader, handler: func(_ context.Context, msg Message) error {
		got <- msg
		return nil
	}}

	ctx, cancel := context.WithCancel(context.Background())
	c.Start(ctx)

	select {
	case msg := <-got:
		assert.Equal(t, uint(7), msg.EventID)
	case <-time.After(2 * time.Second):
		t.Fatal("handler not called")
	}

	cancel()
	require.NoError(t, c.Stop())
	assert.Equal(t, 2, reader.committed)
}

func TestCacheInvalidator(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	c := cache.New(client, time.Minute)
	ctx := context.Background()

	load := func(context.Context) (int, error) { return 1, nil }
	_, err := cache.Remember(ctx, c, "fetch_events", map[string]int{"page": 1}, load)
	require.NoError(t, err)
	_, err = cache.Remember(ctx, c, "list_stores", map[string]int{"page": 1}, load)
	require.NoError(t, err)
	_, err = cache.Remember(ctx, c, "list_malls", struct{}{}, load)
	require.NoError(t, err)
	require.Len(t, mr.Keys(), 3)

	handler := CacheInvalidator(c, "fetch_events", "list_stores")
	require.NoError(t, handler(ctx, NewMessage(TypeRegistrationCreated, 1, 1)))
	assert.Len(t, mr.Keys(), 1)
}
