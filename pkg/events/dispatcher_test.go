package events

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/pkg/logging"
)

type published struct {
	topic, key string
	event      map[string]any
}

type fakePublisher struct {
	mu     sync.Mutex
	got    []published
	err    error
	closed bool
	block  chan struct{}
}

func (f *fakePublisher) PublishEvent(_ context.Context, topic, key string, event any) error {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.got = append(f.got, published{topic: topic, key: key, event: event.(map[string]any)})
	return f.err
}

func (f *fakePublisher) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func TestDispatcher_DeliversAndDrains(t *testing.T) {
	t.Parallel()

	pub := &fakePublisher{}
	d := NewDispatcher(pub, 8, logging.Discard())

	d.Emit(TopicProducts, "7", "product_created", map[string]any{"productID": uint(7)})
	d.Emit(TopicReviews, "3", "review_deleted", map[string]any{"reviewID": uint(3)})
	require.NoError(t, d.Close())

	require.Len(t, pub.got, 2)
	assert.True(t, pub.closed)

	first := pub.got[0]
	assert.Equal(t, TopicProducts, first.topic)
	assert.Equal(t, "7", first.key)
	assert.Equal(t, "product_created", first.event["type"])
	assert.EqualValues(t, 7, first.event["productID"])
	assert.NotEmpty(t, first.event["event_id"])
	assert.NotEmpty(t, first.event["occurred_at"])
	assert.Equal(t, "review_deleted", pub.got[1].event["type"])
}

func TestDispatcher_DropsWhenFullOrClosed(t *testing.T) {
	t.Parallel()

	pub := &fakePublisher{block: make(chan struct{})}
	d := NewDispatcher(pub, 1, logging.Discard())

	var mu sync.Mutex
	outcomes := map[string]int{}
	d.OnResult = func(_, outcome string) {
		mu.Lock()
		outcomes[outcome]++
		mu.Unlock()
	}

	// the worker may or may not have taken the first event yet, so emit
	// enough that at least one is dropped either way
	for i := 0; i < 4; i++ {
		d.Emit(TopicUsers, "1", "user_deleted", nil)
	}
	close(pub.block)
	require.NoError(t, d.Close())

	d.Emit(TopicUsers, "1", "user_deleted", nil)

	mu.Lock()
	defer mu.Unlock()
	assert.GreaterOrEqual(t, outcomes[OutcomeDropped], 2)
	assert.Equal(t, 5, outcomes[OutcomeDropped]+outcomes[OutcomePublished])
}

func TestDispatcher_PublishFailureIsReported(t *testing.T) {
	t.Parallel()

	pub := &fakePublisher{err: errors.New("broker down")}
	d := NewDispatcher(pub, 4, logging.Discard())

	var failed int
	var mu sync.Mutex
	d.OnResult = func(_, outcome string) {
		mu.Lock()
		defer mu.Unlock()
		if outcome == OutcomeFailed {
			failed++
		}
	}

	d.Emit(TopicUsers, "1", "user_registered", nil)
	require.NoError(t, d.Close())
	assert.Equal(t, 1, failed)
}

func TestNop(t *testing.T) {
	t.Parallel()

	var p Publisher = Nop{}
	assert.NoError(t, p.PublishEvent(context.Background(), TopicUsers, "k", map[string]any{}))
	assert.NoError(t, p.Close())
}
