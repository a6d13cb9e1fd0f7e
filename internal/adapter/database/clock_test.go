package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	local := time.Date(2025, 3, 1, 10, 0, 0, 123456789, time.FixedZone("BRT", -3*3600))

	got := Normalize(local)

	assert.Equal(t, time.UTC, got.Location())
	assert.Equal(t, 13, got.Hour())
	assert.Equal(t, 123456000, got.Nanosecond())
}

func TestNormalizeUp(t *testing.T) {
	exact := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)

	t.Run("should keep a value already at store precision", func(t *testing.T) {
		assert.Equal(t, exact, NormalizeUp(exact))
	})

	t.Run("should round a sub-microsecond remainder up", func(t *testing.T) {
		got := NormalizeUp(exact.Add(900 * time.Nanosecond))
		assert.Equal(t, exact.Add(time.Microsecond), got)
	})

	t.Run("should convert to UTC", func(t *testing.T) {
		local := exact.In(time.FixedZone("BRT", -3*3600))
		assert.Equal(t, time.UTC, NormalizeUp(local).Location())
	})
}

func TestNextUpdate(t *testing.T) {
	previous := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	t.Run("should use now when it is later", func(t *testing.T) {
		now := previous.Add(time.Second)
		assert.Equal(t, now, NextUpdate(previous, now))
	})

	t.Run("should step past previous when the clock did not move", func(t *testing.T) {
		assert.Equal(t, previous.Add(time.Microsecond), NextUpdate(previous, previous))
	})

	t.Run("should step past previous when the clock went backwards", func(t *testing.T) {
		assert.Equal(t, previous.Add(time.Microsecond), NextUpdate(previous, previous.Add(-time.Hour)))
	})

	t.Run("should step past previous within the same microsecond", func(t *testing.T) {
		now := previous.Add(500 * time.Nanosecond)
		assert.Equal(t, previous.Add(time.Microsecond), NextUpdate(previous, now))
	})
}
