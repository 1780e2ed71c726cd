package protocol

import (
	"fmt"

	"github.com/l1jgo/arena/internal/net/packet"
)

// EventType tags an event inside a tick packet.
type EventType byte

const (
	EventSpawn EventType = iota + 1
	EventDespawn
	EventCast
	EventDash
	EventCooldownStarted
	EventDeath
	EventRespawn
	EventEffectApplied
	EventProjectileTick
	EventDamage
)

func (t EventType) String() string {
	switch t {
	case EventSpawn:
		return "Spawn"
	case EventDespawn:
		return "Despawn"
	case EventCast:
		return "Cast"
	case EventDash:
		return "Dash"
	case EventCooldownStarted:
		return "CooldownStarted"
	case EventDeath:
		return "Death"
	case EventRespawn:
		return "Respawn"
	case EventEffectApplied:
		return "EffectApplied"
	case EventProjectileTick:
		return "ProjectileTick"
	case EventDamage:
		return "Damage"
	default:
		return fmt.Sprintf("Unknown(%d)", byte(t))
	}
}

// Reliable reports whether events of type t must reach every client.
// Continuous updates are superseded by the next tick and are not tracked.
func (t EventType) Reliable() bool {
	switch t {
	case EventProjectileTick, EventDamage:
		return false
	default:
		return true
	}
}

// Header is carried by every event.
type Header struct {
	EventID  uint32
	Tick     uint32
	CasterID uint32
	Source   string // ability or content id, may be empty
}

// eventHeaderMinSize is the smallest encoded header (absent Source).
const eventHeaderMinSize = 4 + 4 + 4 + 1

// Stamp is called by the event bus when the event is emitted.
func (h *Header) Stamp(id, tick uint32) {
	h.EventID = id
	h.Tick = tick
}

func (h *Header) Head() *Header { return h }

// Event is the closed set of gameplay events. Concrete events embed
// Header and add their own fields.
type Event interface {
	EventType() EventType
	Head() *Header
	Stamp(id, tick uint32)
	encodeBody(w *packet.Writer)
	decodeBody(r *packet.Reader)
}

var eventFactories = map[EventType]func() Event{
	EventSpawn:           func() Event { return &Spawn{} },
	EventDespawn:         func() Event { return &Despawn{} },
	EventCast:            func() Event { return &Cast{} },
	EventDash:            func() Event { return &Dash{} },
	EventCooldownStarted: func() Event { return &CooldownStarted{} },
	EventDeath:           func() Event { return &Death{} },
	EventRespawn:         func() Event { return &Respawn{} },
	EventEffectApplied:   func() Event { return &EffectApplied{} },
	EventProjectileTick:  func() Event { return &ProjectileTick{} },
	EventDamage:          func() Event { return &Damage{} },
}

// EncodeEvent writes [type][header][body].
func EncodeEvent(w *packet.Writer, ev Event) {
	w.WriteC(byte(ev.EventType()))
	h := ev.Head()
	w.WriteDU(h.EventID)
	w.WriteDU(h.Tick)
	w.WriteDU(h.CasterID)
	w.WriteS(h.Source)
	ev.encodeBody(w)
}

// DecodeEvent reads one event. An unknown tag poisons r so the enclosing
// message fails as a whole.
func DecodeEvent(r *packet.Reader) (Event, error) {
	tag := EventType(r.ReadC())
	if err := r.Err(); err != nil {
		return nil, err
	}
	newEvent, ok := eventFactories[tag]
	if !ok {
		err := fmt.Errorf("event tag %d: %w", byte(tag), ErrUnknownEvent)
		r.Fail(err)
		return nil, err
	}
	ev := newEvent()
	h := ev.Head()
	h.EventID = r.ReadDU()
	h.Tick = r.ReadDU()
	h.CasterID = r.ReadDU()
	h.Source = r.ReadS()
	ev.decodeBody(r)
	if err := r.Err(); err != nil {
		return nil, err
	}
	return ev, nil
}

// Spawn announces a new entity.
type Spawn struct {
	Header
	EntityID   uint32
	EntityType uint8
	Archetype  string
	Owner      uint32
	X, Y       float32
}

func (*Spawn) EventType() EventType { return EventSpawn }

func (e *Spawn) encodeBody(w *packet.Writer) {
	w.WriteDU(e.EntityID)
	w.WriteC(e.EntityType)
	w.WriteS(e.Archetype)
	w.WriteDU(e.Owner)
	w.WriteF(e.X)
	w.WriteF(e.Y)
}

func (e *Spawn) decodeBody(r *packet.Reader) {
	e.EntityID = r.ReadDU()
	e.EntityType = r.ReadC()
	e.Archetype = r.ReadS()
	e.Owner = r.ReadDU()
	e.X = r.ReadF()
	e.Y = r.ReadF()
}

type Despawn struct {
	Header
	EntityID uint32
}

func (*Despawn) EventType() EventType { return EventDespawn }

func (e *Despawn) encodeBody(w *packet.Writer) { w.WriteDU(e.EntityID) }

func (e *Despawn) decodeBody(r *packet.Reader) { e.EntityID = r.ReadDU() }

// Cast reports a committed or started cast. Source is the ability id.
type Cast struct {
	Header
	Slot     uint8
	TargetX  float32
	TargetY  float32
	CastTime float32
}

func (*Cast) EventType() EventType { return EventCast }

func (e *Cast) encodeBody(w *packet.Writer) {
	w.WriteC(e.Slot)
	w.WriteF(e.TargetX)
	w.WriteF(e.TargetY)
	w.WriteF(e.CastTime)
}

func (e *Cast) decodeBody(r *packet.Reader) {
	e.Slot = r.ReadC()
	e.TargetX = r.ReadF()
	e.TargetY = r.ReadF()
	e.CastTime = r.ReadF()
}

type Dash struct {
	Header
	EntityID     uint32
	FromX, FromY float32
	ToX, ToY     float32
}

func (*Dash) EventType() EventType { return EventDash }

func (e *Dash) encodeBody(w *packet.Writer) {
	w.WriteDU(e.EntityID)
	w.WriteF(e.FromX)
	w.WriteF(e.FromY)
	w.WriteF(e.ToX)
	w.WriteF(e.ToY)
}

func (e *Dash) decodeBody(r *packet.Reader) {
	e.EntityID = r.ReadDU()
	e.FromX = r.ReadF()
	e.FromY = r.ReadF()
	e.ToX = r.ReadF()
	e.ToY = r.ReadF()
}

// CooldownStarted confirms a cast to its owner. Clients infer rejected
// casts from its absence.
type CooldownStarted struct {
	Header
	EntityID uint32
	Slot     uint8
	Duration float32
}

func (*CooldownStarted) EventType() EventType { return EventCooldownStarted }

func (e *CooldownStarted) encodeBody(w *packet.Writer) {
	w.WriteDU(e.EntityID)
	w.WriteC(e.Slot)
	w.WriteF(e.Duration)
}

func (e *CooldownStarted) decodeBody(r *packet.Reader) {
	e.EntityID = r.ReadDU()
	e.Slot = r.ReadC()
	e.Duration = r.ReadF()
}

type Death struct {
	Header
	EntityID uint32
	KillerID uint32
}

func (*Death) EventType() EventType { return EventDeath }

func (e *Death) encodeBody(w *packet.Writer) {
	w.WriteDU(e.EntityID)
	w.WriteDU(e.KillerID)
}

func (e *Death) decodeBody(r *packet.Reader) {
	e.EntityID = r.ReadDU()
	e.KillerID = r.ReadDU()
}

type Respawn struct {
	Header
	EntityID uint32
	X, Y     float32
}

func (*Respawn) EventType() EventType { return EventRespawn }

func (e *Respawn) encodeBody(w *packet.Writer) {
	w.WriteDU(e.EntityID)
	w.WriteF(e.X)
	w.WriteF(e.Y)
}

func (e *Respawn) decodeBody(r *packet.Reader) {
	e.EntityID = r.ReadDU()
	e.X = r.ReadF()
	e.Y = r.ReadF()
}

type EffectApplied struct {
	Header
	TargetID uint32
	EffectID string
	Duration float32
}

func (*EffectApplied) EventType() EventType { return EventEffectApplied }

func (e *EffectApplied) encodeBody(w *packet.Writer) {
	w.WriteDU(e.TargetID)
	w.WriteS(e.EffectID)
	w.WriteF(e.Duration)
}

func (e *EffectApplied) decodeBody(r *packet.Reader) {
	e.TargetID = r.ReadDU()
	e.EffectID = r.ReadS()
	e.Duration = r.ReadF()
}

type ProjectileTick struct {
	Header
	EntityID uint32
	X, Y     float32
}

func (*ProjectileTick) EventType() EventType { return EventProjectileTick }

func (e *ProjectileTick) encodeBody(w *packet.Writer) {
	w.WriteDU(e.EntityID)
	w.WriteF(e.X)
	w.WriteF(e.Y)
}

func (e *ProjectileTick) decodeBody(r *packet.Reader) {
	e.EntityID = r.ReadDU()
	e.X = r.ReadF()
	e.Y = r.ReadF()
}

type Damage struct {
	Header
	TargetID  uint32
	Amount    float32
	Remaining float32
}

func (*Damage) EventType() EventType { return EventDamage }

func (e *Damage) encodeBody(w *packet.Writer) {
	w.WriteDU(e.TargetID)
	w.WriteF(e.Amount)
	w.WriteF(e.Remaining)
}

func (e *Damage) decodeBody(r *packet.Reader) {
	e.TargetID = r.ReadDU()
	e.Amount = r.ReadF()
	e.Remaining = r.ReadF()
}
