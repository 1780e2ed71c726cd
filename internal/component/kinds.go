package component

import (
	"errors"
	"fmt"

	"github.com/l1jgo/arena/internal/core/ecs"
	"github.com/l1jgo/arena/internal/net/packet"
)

// Component kinds. The numeric values are part of the wire format.
const (
	KindTransform ecs.ComponentKind = iota
	KindMovement
	KindHealth
	KindCombat
	KindTeam
	KindCasting
	KindCooldown
	KindCollision
	KindLifetime
	KindStatusEffect
	KindAI
	KindPayload
)

var ErrUnknownKind = errors.New("unknown component kind")

// Codec is a component with its own binary layout.
type Codec interface {
	ecs.Component
	Encode(w *packet.Writer)
	Decode(r *packet.Reader)
}

// New returns an empty component of the given kind.
func New(kind ecs.ComponentKind) (Codec, error) {
	switch kind {
	case KindTransform:
		return &Transform{}, nil
	case KindMovement:
		return &Movement{}, nil
	case KindHealth:
		return &Health{}, nil
	case KindCombat:
		return &Combat{}, nil
	case KindTeam:
		return &Team{}, nil
	case KindCasting:
		return &Casting{}, nil
	case KindCooldown:
		return &Cooldown{}, nil
	case KindCollision:
		return &Collision{}, nil
	case KindLifetime:
		return &Lifetime{}, nil
	case KindStatusEffect:
		return &StatusEffects{}, nil
	case KindAI:
		return &AI{}, nil
	case KindPayload:
		return &Payload{}, nil
	default:
		return nil, fmt.Errorf("kind %d: %w", kind, ErrUnknownKind)
	}
}

// Marshal encodes c into a fresh byte slice.
func Marshal(c Codec) []byte {
	w := packet.NewWriter()
	c.Encode(w)
	return w.Bytes()
}

// Unmarshal decodes a component payload of the given kind.
func Unmarshal(kind ecs.ComponentKind, data []byte) (Codec, error) {
	c, err := New(kind)
	if err != nil {
		return nil, err
	}
	r := packet.NewReader(data)
	c.Decode(r)
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("decode component %d: %w", kind, err)
	}
	return c, nil
}
