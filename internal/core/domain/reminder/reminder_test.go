package reminder_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/avatarctic/docflow/internal/core/domain/reminder"
)

func TestDueDate(t *testing.T) {
	now := time.Date(2025, time.December, 25, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, "01 January 2026", reminder.DueDate(reminder.KindPayment, now).Format(reminder.DateLayout))
	assert.Equal(t, "10 December 2025", reminder.DueDate(reminder.KindFinal, now).Format(reminder.DateLayout))
}

func TestKind_IsValid(t *testing.T) {
	assert.True(t, reminder.KindPayment.IsValid())
	assert.True(t, reminder.KindFinal.IsValid())
	assert.False(t, reminder.Kind("weekly").IsValid())
}
