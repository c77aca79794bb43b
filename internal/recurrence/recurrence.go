package recurrence

import (
	"time"

	"crm-api/internal/models"

	"github.com/google/uuid"
)

// NextDueDate computes the due date of the successor occurrence from the
// original due date (not the completion date). The second return value is
// false when the recurrence yields no successor.
func NextDueDate(due time.Time, r models.Recurrence) (time.Time, bool) {
	switch r {
	case models.RecurrenceDaily:
		return due.AddDate(0, 0, 1), true
	case models.RecurrenceWeekly:
		return due.AddDate(0, 0, 7), true
	case models.RecurrenceMonthly:
		return addMonthsClamped(due, 1), true
	case models.RecurrenceQuarterly:
		return addMonthsClamped(due, 3), true
	default:
		return time.Time{}, false
	}
}

// addMonthsClamped adds calendar months preserving the day of month, clamping
// to the last valid day when the target month is shorter (Jan 31 + 1 month is
// Feb 28/29, not Mar 2/3).
func addMonthsClamped(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	m := int(month) + months
	year += (m - 1) / 12
	month = time.Month((m-1)%12 + 1)

	if last := daysInMonth(year, month); day > last {
		day = last
	}
	h, mi, s := t.Clock()
	return time.Date(year, month, day, h, mi, s, t.Nanosecond(), t.Location())
}

func daysInMonth(year int, month time.Month) int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// SpawnNext builds the successor occurrence for a just-completed task, or nil
// when none is due. Callers must invoke it only on the todo→done edge; it has
// no way of telling a fresh completion from a repeated edit.
//
// The recurrence end date is inclusive: a successor due exactly on the end
// date is still created.
func SpawnNext(task models.Task) *models.Task {
	next, ok := NextDueDate(task.DueDate, task.Recurrence)
	if !ok {
		return nil
	}
	if task.RecurrenceEndDate != nil && next.After(*task.RecurrenceEndDate) {
		return nil
	}

	return &models.Task{
		ID:                uuid.NewString(),
		Title:             task.Title,
		Description:       task.Description,
		Priority:          task.Priority,
		Status:            models.StatusTodo,
		DueDate:           next,
		Latitude:          task.Latitude,
		Longitude:         task.Longitude,
		Recurrence:        task.Recurrence,
		RecurrenceEndDate: task.RecurrenceEndDate,
		AssignedToID:      task.AssignedToID,
		CreatedByID:       task.CreatedByID,
		StrategyID:        task.StrategyID,
		ClientID:          task.ClientID,
	}
}
