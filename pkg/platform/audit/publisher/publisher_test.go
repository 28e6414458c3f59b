package publisher

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	audit "cubemint/pkg/platform/audit"
	"cubemint/pkg/platform/audit/store/memory"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	actorA = "0x70997970C51812dc3A010C7d01b50e0d17dc79C8"
	actorB = "0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC"
)

func TestPublisher_SyncMode(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	err := pub.Emit(context.Background(), audit.Event{
		Actor:  actorA,
		Action: string(audit.EventMintSucceeded),
	})
	require.NoError(t, err)

	events, err := pub.List(context.Background(), actorA)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, string(audit.EventMintSucceeded), events[0].Action)
	assert.Equal(t, audit.CategoryCompliance, events[0].Category)
	assert.NotEqual(t, uuid.Nil, events[0].ID)
}

func TestPublisher_AsyncMode(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(10))
	defer pub.Close()

	err := pub.Emit(context.Background(), audit.Event{
		Actor:  actorA,
		Action: string(audit.EventMintRejected),
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		events, err := pub.List(context.Background(), actorA)
		return err == nil && len(events) == 1
	}, time.Second, 10*time.Millisecond)
}

func TestPublisher_AsyncDrainsOnClose(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(100))

	for range 10 {
		err := pub.Emit(context.Background(), audit.Event{
			Actor:  actorA,
			Action: string(audit.EventMintSucceeded),
		})
		require.NoError(t, err)
	}

	pub.Close()

	events, err := store.ListByActor(context.Background(), actorA)
	require.NoError(t, err)
	assert.Len(t, events, 10, "all events should be drained on close")
}

func TestPublisher_EmitAfterClose(t *testing.T) {
	pub := NewPublisher(memory.NewInMemoryStore(), WithAsyncBuffer(1))
	pub.Close()
	pub.Close()

	err := pub.Emit(context.Background(), audit.Event{Actor: actorA, Action: string(audit.EventMintSucceeded)})
	assert.ErrorIs(t, err, ErrClosed)
}

func TestPublisher_BufferFull_DropsEvent(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(1))

	var wg sync.WaitGroup
	var mu sync.Mutex
	accepted := 0
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := pub.Emit(context.Background(), audit.Event{
				Actor:  actorA,
				Action: string(audit.EventMintSucceeded),
			})
			if err == nil {
				mu.Lock()
				accepted++
				mu.Unlock()
				return
			}
			assert.True(t, errors.Is(err, ErrBufferFull), "unexpected error: %v", err)
		}()
	}
	wg.Wait()
	pub.Close()

	events, err := store.ListByActor(context.Background(), actorA)
	require.NoError(t, err)
	assert.Len(t, events, accepted, "every accepted event is persisted")
}

func TestPublisher_SetsTimestamp(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	before := time.Now()
	err := pub.Emit(context.Background(), audit.Event{
		Actor:  actorA,
		Action: string(audit.EventSaleConfigChanged),
	})
	require.NoError(t, err)
	after := time.Now()

	events, err := pub.List(context.Background(), actorA)
	require.NoError(t, err)
	require.Len(t, events, 1)

	assert.False(t, events[0].Timestamp.Before(before), "timestamp should be >= before")
	assert.False(t, events[0].Timestamp.After(after), "timestamp should be <= after")
}

func TestPublisher_PreservesExistingTimestamp(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	customTime := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	err := pub.Emit(context.Background(), audit.Event{
		Actor:     actorA,
		Action:    string(audit.EventSaleConfigChanged),
		Timestamp: customTime,
	})
	require.NoError(t, err)

	events, err := pub.List(context.Background(), actorA)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, customTime, events[0].Timestamp)
}

func TestPublisher_MultipleEventsKeepOrder(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	actions := []audit.AuditEvent{
		audit.EventWhitelistPublish,
		audit.EventMintRejected,
		audit.EventMintSucceeded,
	}
	for _, action := range actions {
		require.NoError(t, pub.Emit(context.Background(), audit.Event{Actor: actorA, Action: string(action)}))
	}

	result, err := pub.List(context.Background(), actorA)
	require.NoError(t, err)
	require.Len(t, result, 3)
	for i, action := range actions {
		assert.Equal(t, string(action), result[i].Action)
	}
}

func TestPublisher_DifferentActors(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	require.NoError(t, pub.Emit(context.Background(), audit.Event{Actor: actorA, Action: string(audit.EventMintSucceeded)}))
	require.NoError(t, pub.Emit(context.Background(), audit.Event{Actor: actorB, Action: string(audit.EventMintRejected)}))

	eventsA, err := pub.List(context.Background(), actorA)
	require.NoError(t, err)
	require.Len(t, eventsA, 1)
	assert.Equal(t, string(audit.EventMintSucceeded), eventsA[0].Action)

	eventsB, err := pub.List(context.Background(), actorB)
	require.NoError(t, err)
	require.Len(t, eventsB, 1)
	assert.Equal(t, audit.CategorySecurity, eventsB[0].Category)
}
