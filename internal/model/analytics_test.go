package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTrailingWindow(t *testing.T) {
	now := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)

	w := TrailingWindow(now, DefaultAnalyticsWindow)

	assert.Equal(t, now, w.End)
	assert.Equal(t, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), w.Start)
	assert.NoError(t, w.Validate())
}

func TestWindow_Validate(t *testing.T) {
	now := time.Now()

	assert.NoError(t, Window{Start: now, End: now}.Validate())
	assert.ErrorIs(t, Window{Start: now, End: now.Add(-time.Second)}.Validate(), ErrInvalidWindow)
}
