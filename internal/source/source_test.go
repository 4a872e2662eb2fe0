package source

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLookbackWindow(t *testing.T) {
	w := LookbackWindow(90)

	assert.WithinDuration(t, time.Now().UTC(), w.Before, time.Minute)
	assert.WithinDuration(t, time.Now().UTC().AddDate(0, 0, -90), w.After, time.Minute)
}

func TestWindow_Contains(t *testing.T) {
	now := time.Now().UTC()
	w := Window{After: now.AddDate(0, 0, -30), Before: now}

	assert.True(t, w.Contains(now.AddDate(0, 0, -10)))
	assert.False(t, w.Contains(now.AddDate(0, 0, -40)))
	assert.False(t, w.Contains(now.Add(time.Hour)))

	open := Window{After: now.AddDate(0, 0, -30)}
	assert.True(t, open.Contains(now.Add(time.Hour)), "zero Before leaves the window open-ended")
}
