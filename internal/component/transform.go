package component

import (
	"github.com/l1jgo/arena/internal/core/ecs"
	"github.com/l1jgo/arena/internal/core/geom"
	"github.com/l1jgo/arena/internal/net/packet"
)

// Transform is an entity's position and facing (radians).
type Transform struct {
	Pos    geom.Vec2
	Facing float64
}

func (*Transform) Kind() ecs.ComponentKind { return KindTransform }

// FaceToward turns the transform toward p. A zero-length turn keeps the
// current facing.
func (t *Transform) FaceToward(p geom.Vec2) {
	d := p.Sub(t.Pos)
	if !d.IsZero() {
		t.Facing = d.Angle()
	}
}

// Forward returns the unit facing vector.
func (t *Transform) Forward() geom.Vec2 {
	return geom.FromAngle(t.Facing)
}

func (t *Transform) Encode(w *packet.Writer) {
	writeVec(w, t.Pos)
	w.WriteF(float32(t.Facing))
}

func (t *Transform) Decode(r *packet.Reader) {
	t.Pos = readVec(r)
	t.Facing = float64(r.ReadF())
}

func writeVec(w *packet.Writer, v geom.Vec2) {
	w.WriteF(float32(v.X))
	w.WriteF(float32(v.Y))
}

func readVec(r *packet.Reader) geom.Vec2 {
	x := r.ReadF()
	y := r.ReadF()
	return geom.V(float64(x), float64(y))
}
