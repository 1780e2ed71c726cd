package geom

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMoveToward(t *testing.T) {
	p, arrived := MoveToward(V(0, 0), V(10, 0), 4)
	assert.False(t, arrived)
	assert.InDelta(t, 4, p.X, 1e-9)

	p, arrived = MoveToward(V(0, 0), V(3, 4), 5)
	assert.True(t, arrived)
	assert.Equal(t, V(3, 4), p)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, Vec2{}, Vec2{}.Normalize())
	n := V(3, 4).Normalize()
	assert.InDelta(t, 1, n.Len(), 1e-9)
	assert.InDelta(t, 0.6, n.X, 1e-9)
}

func TestFromAngle(t *testing.T) {
	v := FromAngle(math.Pi / 2)
	assert.InDelta(t, 0, v.X, 1e-9)
	assert.InDelta(t, 1, v.Y, 1e-9)
	assert.InDelta(t, 5, V(0, 0).Dist(V(3, 4)), 1e-9)
}

func TestFiniteAndClamp(t *testing.T) {
	assert.True(t, V(1, -2).Finite())
	assert.False(t, V(math.NaN(), 0).Finite())
	assert.False(t, V(0, math.Inf(-1)).Finite())

	assert.Equal(t, V(60, 5), V(500, 5).Clamp(V(0, 0), V(60, 60)))
	assert.Equal(t, V(0, 60), V(-3, 61).Clamp(V(0, 0), V(60, 60)))

	p, arrived := MoveToward(V(1, 1), V(math.NaN(), 2), 1)
	assert.True(t, arrived)
	assert.Equal(t, V(1, 1), p)
}
