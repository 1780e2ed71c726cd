package world

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/l1jgo/arena/internal/component"
	"github.com/l1jgo/arena/internal/content"
	"github.com/l1jgo/arena/internal/core/ecs"
	"github.com/l1jgo/arena/internal/core/geom"
	"github.com/l1jgo/arena/internal/net/protocol"
)

// SpawnHero creates a player's hero with entity id == player id at one of
// the team's spawn points.
func (s *State) SpawnHero(player ecs.PlayerID, heroID string, team uint8) (*ecs.Entity, error) {
	info := s.Lib.Hero(heroID)
	if info == nil {
		return nil, fmt.Errorf("spawn hero %q: %w", heroID, ErrUnknownHero)
	}
	e, err := s.ECS.CreateEntity(ecs.TypeHero, ecs.HeroID(player))
	if err != nil {
		return nil, fmt.Errorf("spawn hero %q for player %d: %w", heroID, player, err)
	}
	e.Owner = player
	e.Archetype = heroID

	pos := s.spawnPoint(team, player)
	e.AddComponent(&component.Transform{Pos: pos})
	e.AddComponent(s.movement(info.Speed, info.Strategy))
	e.AddComponent(component.NewHealth(info.MaxHP))
	e.AddComponent(&component.Combat{
		Damage:   info.Damage,
		Range:    info.AttackRange,
		Cooldown: info.AttackCooldown,
	})
	e.AddComponent(&component.Team{ID: team, FriendlyFire: s.cfg.FriendlyFire})
	e.AddComponent(&component.Casting{})
	e.AddComponent(&component.Cooldown{})
	e.AddComponent(&component.Collision{Radius: info.Radius})
	e.AddComponent(&component.StatusEffects{})

	book := &AbilityBook{}
	for slot, id := range info.Abilities {
		if slot >= len(book.Slots) || id == "" {
			continue
		}
		a, ok := s.Lib.Ability(id)
		if !ok {
			s.log.Error("英雄技能不存在", zap.String("hero", heroID), zap.String("ability", id))
			continue
		}
		book.Slots[slot] = a
	}
	s.books[e.ID] = book

	s.emitSpawn(e, pos)
	s.log.Info("英雄出生",
		zap.Uint32("player", uint32(player)),
		zap.String("hero", heroID),
		zap.Uint8("team", team),
		zap.Stringer("pos", pos),
	)
	return e, nil
}

// SpawnNeutral creates an AI-driven neutral whose home is pos.
func (s *State) SpawnNeutral(neutralID string, pos geom.Vec2) (*ecs.Entity, error) {
	info := s.Lib.Neutral(neutralID)
	if info == nil {
		return nil, fmt.Errorf("spawn neutral %q: %w", neutralID, ErrUnknownNeutral)
	}
	e, err := s.ECS.CreateEntity(ecs.TypeNeutral, 0)
	if err != nil {
		return nil, fmt.Errorf("spawn neutral %q: %w", neutralID, err)
	}
	e.Archetype = neutralID

	e.AddComponent(&component.Transform{Pos: pos})
	e.AddComponent(s.movement(info.Speed, info.Strategy))
	e.AddComponent(component.NewHealth(info.MaxHP))
	e.AddComponent(&component.Combat{
		Damage:   info.Damage,
		Range:    info.AttackRange,
		Cooldown: info.AttackCooldown,
	})
	e.AddComponent(&component.Team{ID: component.NeutralTeam})
	e.AddComponent(&component.Collision{Radius: info.Radius})
	e.AddComponent(&component.StatusEffects{})
	e.AddComponent(&component.AI{
		AggroRadius:    info.AggroRadius,
		LeashRadius:    info.LeashRadius,
		AttackRange:    info.AttackRange,
		RepathInterval: info.RepathInterval,
		Home:           pos,
	})

	s.emitSpawn(e, pos)
	return e, nil
}

// SpawnCamps places every neutral camp of the arena. Members of a camp
// stand on a small ring around the camp center.
func (s *State) SpawnCamps() int {
	n := 0
	for _, c := range s.Lib.Arena().Camps {
		center := geom.V(c.X, c.Y)
		for i := 0; i < c.Count; i++ {
			pos := center
			if c.Count > 1 {
				angle := 2*math.Pi*float64(i)/float64(c.Count) + s.rng.Float64()*0.2
				pos = center.Add(geom.FromAngle(angle).Scale(1.5))
				if !s.Walkable(pos) {
					pos = center
				}
			}
			if _, err := s.SpawnNeutral(c.Neutral, pos); err != nil {
				s.log.Error("野怪營地生成失敗", zap.String("neutral", c.Neutral), zap.Error(err))
				continue
			}
			n++
		}
	}
	return n
}

// SpawnCarrier creates a projectile, melee swing or area pulse for a
// cast. Carriers are trigger volumes on the caster's team.
func (s *State) SpawnCarrier(c content.Carrier) (*ecs.Entity, error) {
	e, err := s.ECS.CreateEntity(c.Type, 0)
	if err != nil {
		return nil, fmt.Errorf("spawn carrier %q: %w", c.AbilityID, err)
	}
	e.Owner = c.Owner
	e.Archetype = c.AbilityID

	t := &component.Transform{Pos: c.Pos, Facing: c.Facing}
	e.AddComponent(t)
	e.AddComponent(&component.Collision{Radius: c.Radius, Trigger: true})
	e.AddComponent(component.NewPayload(c.AbilityID, c.Caster, c.Effects, c.MaxHits))
	if c.Lifetime > 0 {
		e.AddComponent(&component.Lifetime{Remaining: c.Lifetime})
	}
	if caster, ok := s.ECS.TryGet(c.Caster); ok {
		if team, ok := ecs.Get[*component.Team](caster); ok {
			cp := *team
			e.AddComponent(&cp)
		}
	}
	if c.Speed > 0 {
		m := &component.Movement{
			Speed:    c.Speed,
			Strategy: component.NewStrategy(c.Strategy, s.Grid),
		}
		e.AddComponent(m)
		m.SetDestination(t, c.Destination)
	}

	s.emitSpawn(e, c.Pos)
	return e, nil
}

// RespawnHero revives a soft-dead hero at a fresh spawn point.
func (s *State) RespawnHero(e *ecs.Entity) {
	h, ok := ecs.Get[*component.Health](e)
	if !ok {
		return
	}
	h.Current = h.Max
	h.Dead = false
	h.RespawnTimer = 0
	h.LastAttacker = 0

	var team uint8
	if tm, ok := ecs.Get[*component.Team](e); ok {
		team = tm.ID
	}
	pos := s.spawnPoint(team, e.Owner)
	if t, ok := ecs.Get[*component.Transform](e); ok {
		t.Pos = pos
	}
	if m, ok := ecs.Get[*component.Movement](e); ok {
		m.Stop()
	}
	if cd, ok := ecs.Get[*component.Cooldown](e); ok {
		*cd = component.Cooldown{}
	}
	s.aoiDirty = true
	s.Emit(&protocol.Respawn{
		Header:   protocol.Header{Source: e.Archetype},
		EntityID: uint32(e.ID),
		X:        float32(pos.X),
		Y:        float32(pos.Y),
	})
}

func (s *State) movement(speed float64, strategy string) *component.Movement {
	kind, ok := component.ParseStrategy(strategy)
	if !ok {
		s.log.Warn("未知移動策略，改用 seek", zap.String("strategy", strategy))
		kind = component.StrategySeek
	}
	return &component.Movement{
		Speed:    speed,
		Strategy: component.NewStrategy(kind, s.Grid),
	}
}

// spawnPoint asks the spawn_point formula first and falls back to the
// arena's team spawn points in rotation.
func (s *State) spawnPoint(team uint8, player ecs.PlayerID) geom.Vec2 {
	if p, ok := s.Scripts.SpawnPoint(team, uint32(player)); ok && s.Walkable(p) {
		return p
	}
	n := s.spawnCount[team]
	s.spawnCount[team] = n + 1
	pt := s.Lib.Arena().SpawnPoint(team, n)
	return geom.V(pt.X, pt.Y)
}

func (s *State) emitSpawn(e *ecs.Entity, pos geom.Vec2) {
	s.aoiDirty = true
	s.Emit(&protocol.Spawn{
		Header:     protocol.Header{Source: e.Archetype},
		EntityID:   uint32(e.ID),
		EntityType: uint8(e.Type),
		Archetype:  e.Archetype,
		Owner:      uint32(e.Owner),
		X:          float32(pos.X),
		Y:          float32(pos.Y),
	})
}

// Forget drops per-entity bookkeeping after the entity is removed.
func (s *State) Forget(id ecs.EntityID) {
	delete(s.books, id)
}
