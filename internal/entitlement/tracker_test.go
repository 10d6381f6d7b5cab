package entitlement

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTracker_UnknownByDefault(t *testing.T) {
	tracker := NewTracker()

	status := tracker.Status()
	assert.False(t, status.IsPro)
	assert.False(t, status.IsDetermined)
	assert.False(t, status.Known())
}

func TestTracker_IdentifyThenResult(t *testing.T) {
	tracker := NewTracker()

	tracker.BeginIdentify("user-a")
	status := tracker.Status()
	assert.True(t, status.IsSyncingUser)
	assert.False(t, status.Known())

	tracker.ApplyResult("user-a", true)
	status = tracker.Status()
	assert.True(t, status.IsPro)
	assert.True(t, status.IsDetermined)
	assert.False(t, status.IsSyncingUser)
	assert.True(t, status.Known())
}

func TestTracker_KnownFreeIsDetermined(t *testing.T) {
	tracker := NewTracker()

	tracker.BeginIdentify("user-a")
	tracker.ApplyResult("user-a", false)

	// "Известно, что бесплатный" отличается от "ещё не проверяли".
	status := tracker.Status()
	assert.False(t, status.IsPro)
	assert.True(t, status.Known())
}

func TestTracker_StaleResultDropped(t *testing.T) {
	tracker := NewTracker()

	tracker.BeginIdentify("user-a")
	tracker.BeginIdentify("user-b")

	// Запоздавший ответ для user-a не должен определить статус user-b.
	tracker.ApplyResult("user-a", true)

	status := tracker.Status()
	assert.False(t, status.Known())
	assert.True(t, status.IsSyncingUser)

	tracker.ApplyResult("user-b", false)
	status = tracker.Status()
	assert.True(t, status.Known())
	assert.False(t, status.IsPro)
}

func TestTracker_ReIdentifySameUserKeepsStatus(t *testing.T) {
	tracker := NewTracker()

	tracker.BeginIdentify("user-a")
	tracker.ApplyResult("user-a", true)

	// Повторный identify той же личности не обнуляет подтверждённый статус.
	tracker.BeginIdentify("user-a")
	assert.True(t, tracker.Status().Known())
	assert.True(t, tracker.Status().IsPro)
}

func TestTracker_IdentitySwitchResetsStatus(t *testing.T) {
	tracker := NewTracker()

	tracker.BeginIdentify("user-a")
	tracker.ApplyResult("user-a", true)

	tracker.BeginIdentify("user-b")
	status := tracker.Status()
	assert.False(t, status.Known())
	assert.True(t, status.IsSyncingUser)
	// Pro прежней личности не протекает в новую.
	assert.False(t, status.IsPro)
}

func TestTracker_Reset(t *testing.T) {
	tracker := NewTracker()

	tracker.BeginIdentify("user-a")
	tracker.ApplyResult("user-a", true)
	tracker.Reset()

	status := tracker.Status()
	assert.False(t, status.IsPro)
	assert.False(t, status.Known())
}
