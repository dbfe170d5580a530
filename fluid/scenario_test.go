package fluid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDamBreak(t *testing.T) {
	s := DamBreak(10, 8, 0.5, 0.5, 2)
	assert.Equal(t, "dam_break", s.Name)
	require.Len(t, s.Particles, 5*4*4)

	for _, p := range s.Particles {
		assert.True(t, p.X > 0 && p.X < 5, "x %g outside fill", p.X)
		assert.True(t, p.Y > 0 && p.Y < 4, "y %g outside fill", p.Y)
	}
	// Sub-cell offsets at quarter points.
	assert.Equal(t, Vec2{X: 0.25, Y: 0.25}, s.Particles[0])
	assert.Equal(t, Vec2{X: 0.75, Y: 0.25}, s.Particles[1])
}

func TestDamBreakClampsFill(t *testing.T) {
	s := DamBreak(4, 4, 2, -1, 1)
	assert.Empty(t, s.Particles)

	s = DamBreak(4, 4, 2, 1, 1)
	assert.Len(t, s.Particles, 16)
}

func TestDamBreakDeterministic(t *testing.T) {
	assert.Equal(t, DamBreak(12, 9, 0.3, 0.6, 3), DamBreak(12, 9, 0.3, 0.6, 3))
}

func TestFromMask(t *testing.T) {
	s, err := FromMask(2, 2, []bool{false, true, true, false}, 1)
	require.NoError(t, err)
	assert.Equal(t, []Vec2{{X: 1.5, Y: 0.5}, {X: 0.5, Y: 1.5}}, s.Particles)

	_, err = FromMask(3, 3, []bool{true}, 1)
	assert.EqualError(t, err, "mask has 1 entries, want 9")
}
