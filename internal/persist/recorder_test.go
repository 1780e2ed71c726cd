package persist

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/l1jgo/arena/internal/core/event"
	"github.com/l1jgo/arena/internal/net/protocol"
)

type fakeStore struct {
	mu      sync.Mutex
	started []MatchRow
	kills   []KillRow
	batches int
	ended   []uint32
	failAll bool
}

func (f *fakeStore) StartMatch(_ context.Context, m MatchRow) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started = append(f.started, m)
	return nil
}

func (f *fakeStore) EndMatch(_ context.Context, _ uuid.UUID, lastTick uint32, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ended = append(f.ended, lastTick)
	return nil
}

func (f *fakeStore) InsertKills(_ context.Context, kills []KillRow) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return errors.New("db down")
	}
	f.batches++
	f.kills = append(f.kills, kills...)
	return nil
}

func TestRecorderWritesQueuedRecords(t *testing.T) {
	store := &fakeStore{}
	id := uuid.New()
	rec := NewRecorder(store, id, 16, zap.NewNop())

	rec.MatchStarted(1, "deathmatch", 2)
	rec.Kill(10, 1, 2, "knight")
	rec.Kill(12, 2, 1030, "wolf")
	rec.MatchEnded(99)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- rec.Run(ctx) }()

	require.Eventually(t, func() bool {
		store.mu.Lock()
		defer store.mu.Unlock()
		return len(store.ended) == 1
	}, time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	require.Len(t, store.started, 1)
	assert.Equal(t, id, store.started[0].ID)
	assert.Equal(t, "deathmatch", store.started[0].Mode)
	require.Len(t, store.kills, 2)
	assert.Equal(t, 1, store.batches, "consecutive kills share one batch")
	assert.Equal(t, "wolf", store.kills[1].Victim)
	assert.Equal(t, id, store.kills[0].MatchID)
	assert.Equal(t, []uint32{99}, store.ended)
}

func TestRecorderDropsWhenFull(t *testing.T) {
	rec := NewRecorder(&fakeStore{}, uuid.New(), 1, zap.NewNop())
	rec.Kill(1, 0, 5, "wolf")
	rec.Kill(2, 0, 6, "wolf")
	rec.Kill(3, 0, 7, "wolf")
	assert.Equal(t, uint64(2), rec.Dropped())
}

func TestRecorderFlushesOnShutdown(t *testing.T) {
	store := &fakeStore{}
	rec := NewRecorder(store, uuid.New(), 8, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec.Kill(1, 0, 5, "wolf")
	require.NoError(t, rec.Run(ctx))
	assert.Len(t, store.kills, 1)
}

func TestRecorderSurvivesStoreErrors(t *testing.T) {
	store := &fakeStore{failAll: true}
	rec := NewRecorder(store, uuid.New(), 8, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec.Kill(1, 0, 5, "wolf")
	rec.MatchEnded(3)
	require.NoError(t, rec.Run(ctx))
	assert.Empty(t, store.kills)
	assert.Equal(t, []uint32{3}, store.ended)
}

func TestRecorderAttach(t *testing.T) {
	bus := event.NewBus()
	rec := NewRecorder(&fakeStore{}, uuid.New(), 8, zap.NewNop())
	rec.Attach(bus)

	bus.BeginTick(7)
	bus.Emit(&protocol.Death{Header: protocol.Header{Source: "knight"}, EntityID: 3, KillerID: 4})
	bus.Emit(&protocol.Spawn{EntityID: 5})
	bus.EndTick()

	require.Len(t, rec.queue, 1)
	j := <-rec.queue
	assert.Equal(t, jobKill, j.kind)
	assert.Equal(t, uint32(7), j.kill.Tick)
	assert.Equal(t, uint32(4), j.kill.KillerID)
	assert.Equal(t, "knight", j.kill.Victim)
}
