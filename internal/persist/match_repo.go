package persist

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MatchRow is one match's summary row.
type MatchRow struct {
	ID        uuid.UUID
	ServerID  int
	Mode      string
	Players   int
	StartedAt time.Time
}

// KillRow is one recorded death.
type KillRow struct {
	MatchID  uuid.UUID
	Tick     uint32
	KillerID uint32 // 0 when nothing dealt damage
	VictimID uint32
	Victim   string // victim archetype
	At       time.Time
}

type MatchRepo struct {
	db *DB
}

func NewMatchRepo(db *DB) *MatchRepo {
	return &MatchRepo{db: db}
}

func (r *MatchRepo) StartMatch(ctx context.Context, m MatchRow) error {
	_, err := r.db.Pool.Exec(ctx,
		`INSERT INTO matches (id, server_id, mode, players, started_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (id) DO UPDATE SET players = EXCLUDED.players, started_at = EXCLUDED.started_at`,
		m.ID, m.ServerID, m.Mode, m.Players, m.StartedAt,
	)
	if err != nil {
		return fmt.Errorf("start match %s: %w", m.ID, err)
	}
	return nil
}

func (r *MatchRepo) EndMatch(ctx context.Context, id uuid.UUID, lastTick uint32, at time.Time) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE matches SET ended_at = $2, last_tick = $3 WHERE id = $1`,
		id, at, int64(lastTick),
	)
	if err != nil {
		return fmt.Errorf("end match %s: %w", id, err)
	}
	return nil
}

// InsertKills writes a batch of kills in a single transaction.
func (r *MatchRepo) InsertKills(ctx context.Context, kills []KillRow) error {
	if len(kills) == 0 {
		return nil
	}
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("kills begin: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, k := range kills {
		if _, err := tx.Exec(ctx,
			`INSERT INTO kills (match_id, tick, killer_id, victim_id, victim, at)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			k.MatchID, int64(k.Tick), int64(k.KillerID), int64(k.VictimID), k.Victim, k.At,
		); err != nil {
			return fmt.Errorf("kills insert: %w", err)
		}
	}
	return tx.Commit(ctx)
}
