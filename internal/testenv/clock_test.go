package testenv

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClock_DefaultStart(t *testing.T) {
	c := NewClock(time.Time{})
	assert.Equal(t, DefaultStart, c.Now())
}

func TestClock_AdvanceAndReset(t *testing.T) {
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c := NewClock(start)

	c.Advance(90 * time.Second)
	assert.Equal(t, start.Add(90*time.Second), c.Now())

	c.Set(start.Add(time.Hour))
	assert.Equal(t, start.Add(time.Hour), c.Now())

	c.Reset()
	assert.Equal(t, start, c.Now())
}
