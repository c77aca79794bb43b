package models

import (
	"time"

	"gorm.io/gorm"
)

// TaskStatus represents the status of a task
type TaskStatus string

const (
	StatusTodo       TaskStatus = "todo"
	StatusInProgress TaskStatus = "in-progress"
	StatusDone       TaskStatus = "done"
	StatusCancelled  TaskStatus = "cancelled"
)

// Valid reports whether s is one of the supported task statuses.
func (s TaskStatus) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone, StatusCancelled:
		return true
	}
	return false
}

// TaskPriority represents the priority of a task
type TaskPriority string

const (
	PriorityHigh   TaskPriority = "high"
	PriorityMedium TaskPriority = "medium"
	PriorityLow    TaskPriority = "low"
)

// Valid reports whether p is one of the supported task priorities.
func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// Recurrence represents how often a completed task repeats
type Recurrence string

const (
	RecurrenceNone      Recurrence = "none"
	RecurrenceDaily     Recurrence = "daily"
	RecurrenceWeekly    Recurrence = "weekly"
	RecurrenceMonthly   Recurrence = "monthly"
	RecurrenceQuarterly Recurrence = "quarterly"
)

// Valid reports whether r is one of the supported recurrence values.
func (r Recurrence) Valid() bool {
	switch r {
	case RecurrenceNone, RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly, RecurrenceQuarterly:
		return true
	}
	return false
}

// Task represents a task in the system. CompletedDate is set exactly once,
// when status first transitions into done.
type Task struct {
	ID                string       `json:"id" gorm:"primaryKey"`
	Title             string       `json:"title" gorm:"not null"`
	Description       string       `json:"description"`
	Priority          TaskPriority `json:"priority" gorm:"default:'medium'"`
	Status            TaskStatus   `json:"status" gorm:"not null;default:'todo';index"`
	DueDate           time.Time    `json:"dueDate" gorm:"column:due_date"`
	CompletedDate     *time.Time   `json:"completedDate" gorm:"column:completed_date"`
	Latitude          *float64     `json:"latitude"`
	Longitude         *float64     `json:"longitude"`
	Recurrence        Recurrence   `json:"recurrence" gorm:"default:'none'"`
	RecurrenceEndDate *time.Time   `json:"recurrenceEndDate" gorm:"column:recurrence_end_date"`
	AssignedToID      string       `json:"assignedToId" gorm:"column:assigned_to_id;index"`
	AssignedTo        *User        `json:"assignedTo,omitempty" gorm:"foreignKey:AssignedToID"`
	CreatedByID       string       `json:"createdById" gorm:"column:created_by_id;index"`
	CreatedBy         *User        `json:"createdBy,omitempty" gorm:"foreignKey:CreatedByID"`
	StrategyID        string       `json:"strategyId" gorm:"column:strategy_id;index"`
	Strategy          *Strategy    `json:"strategy,omitempty" gorm:"foreignKey:StrategyID"`
	ClientID          string       `json:"clientId" gorm:"column:client_id;index"`
	Client            *Client      `json:"client,omitempty" gorm:"foreignKey:ClientID"`
	gorm.Model
}

// TableName specifies the table name for Task Model
func (Task) TableName() string {
	return "tasks"
}
