package persist

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/l1jgo/arena/internal/core/event"
	"github.com/l1jgo/arena/internal/net/protocol"
)

// Store is the match history backend. *MatchRepo implements it.
type Store interface {
	StartMatch(ctx context.Context, m MatchRow) error
	EndMatch(ctx context.Context, id uuid.UUID, lastTick uint32, at time.Time) error
	InsertKills(ctx context.Context, kills []KillRow) error
}

type jobKind uint8

const (
	jobStart jobKind = iota
	jobKill
	jobEnd
)

type job struct {
	kind  jobKind
	match MatchRow
	kill  KillRow
	tick  uint32
	at    time.Time
}

// maxKillBatch caps how many queued kills are written in one transaction.
const maxKillBatch = 64

// Recorder writes match history off the game loop. The game loop only
// enqueues; when the queue is full the record is dropped and counted.
type Recorder struct {
	store   Store
	matchID uuid.UUID
	queue   chan job
	log     *zap.Logger
	dropped atomic.Uint64
}

func NewRecorder(store Store, matchID uuid.UUID, queueSize int, log *zap.Logger) *Recorder {
	if queueSize < 1 {
		queueSize = 1
	}
	return &Recorder{
		store:   store,
		matchID: matchID,
		queue:   make(chan job, queueSize),
		log:     log,
	}
}

// Attach subscribes the recorder to the world's death events.
func (r *Recorder) Attach(bus *event.Bus) {
	event.Subscribe(bus, func(d *protocol.Death) {
		r.Kill(d.Head().Tick, d.KillerID, d.EntityID, d.Source)
	})
}

// MatchStarted records the start of the match. Called from the game loop.
func (r *Recorder) MatchStarted(serverID int, mode string, players int) {
	r.enqueue(job{kind: jobStart, match: MatchRow{
		ID:        r.matchID,
		ServerID:  serverID,
		Mode:      mode,
		Players:   players,
		StartedAt: time.Now(),
	}})
}

// Kill records one death. Called from the game loop.
func (r *Recorder) Kill(tick, killer, victim uint32, archetype string) {
	r.enqueue(job{kind: jobKill, kill: KillRow{
		MatchID:  r.matchID,
		Tick:     tick,
		KillerID: killer,
		VictimID: victim,
		Victim:   archetype,
		At:       time.Now(),
	}})
}

// MatchEnded records the end of the match at lastTick.
func (r *Recorder) MatchEnded(lastTick uint32) {
	r.enqueue(job{kind: jobEnd, tick: lastTick, at: time.Now()})
}

// Dropped returns how many records were lost to a full queue.
func (r *Recorder) Dropped() uint64 { return r.dropped.Load() }

func (r *Recorder) enqueue(j job) {
	select {
	case r.queue <- j:
	default:
		n := r.dropped.Add(1)
		r.log.Warn("戰績佇列已滿，丟棄紀錄", zap.Uint8("kind", uint8(j.kind)), zap.Uint64("dropped", n))
	}
}

// Run writes queued records until ctx is cancelled, then flushes what is
// still queued with a short deadline.
func (r *Recorder) Run(ctx context.Context) error {
	for {
		select {
		case j := <-r.queue:
			r.write(ctx, j)
		case <-ctx.Done():
			r.flush()
			return nil
		}
	}
}

func (r *Recorder) flush() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for {
		select {
		case j := <-r.queue:
			r.write(ctx, j)
		default:
			return
		}
	}
}

func (r *Recorder) write(ctx context.Context, j job) {
	var err error
	switch j.kind {
	case jobStart:
		err = r.store.StartMatch(ctx, j.match)
	case jobEnd:
		err = r.store.EndMatch(ctx, r.matchID, j.tick, j.at)
	case jobKill:
		batch, next := r.collectKills(j.kill)
		err = r.store.InsertKills(ctx, batch)
		if err != nil {
			r.log.Error("戰績寫入失敗", zap.Int("kills", len(batch)), zap.Error(err))
		}
		if next != nil {
			r.write(ctx, *next)
		}
		return
	}
	if err != nil {
		r.log.Error("戰績寫入失敗", zap.Uint8("kind", uint8(j.kind)), zap.Error(err))
	}
}

// collectKills takes further queued kills behind first without blocking.
// A non-kill record met on the way is returned for the caller to write.
func (r *Recorder) collectKills(first KillRow) ([]KillRow, *job) {
	batch := []KillRow{first}
	for len(batch) < maxKillBatch {
		select {
		case more := <-r.queue:
			if more.kind != jobKill {
				return batch, &more
			}
			batch = append(batch, more.kill)
		default:
			return batch, nil
		}
	}
	return batch, nil
}
