package engine

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUUIDv7Generator(t *testing.T) {
	g := UUIDv7Generator{}
	a := g.Generate()
	b := g.Generate()

	assert.NotEqual(t, a, b)
	parsed, err := uuid.Parse(a)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
}

func TestFixedGenerator(t *testing.T) {
	g := NewFixedGenerator("e1", "e2")
	assert.Equal(t, "e1", g.Generate())
	assert.Equal(t, "e2", g.Generate())
	assert.Panics(t, func() { g.Generate() })
}

func TestSequentialGenerator(t *testing.T) {
	g := NewSequentialGenerator("")
	assert.Equal(t, "effect-1", g.Generate())
	assert.Equal(t, "effect-2", g.Generate())

	h := NewSequentialGenerator("fx")
	assert.Equal(t, "fx-1", h.Generate())
}
