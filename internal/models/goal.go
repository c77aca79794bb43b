package models

import (
	"time"

	"gorm.io/gorm"
)

// GoalVariable selects what a goal measures
type GoalVariable string

const (
	VariableRevenue            GoalVariable = "revenue"
	VariableClientCount        GoalVariable = "clientCount"
	VariableNewClients         GoalVariable = "newClients"
	VariableNonRetainedClients GoalVariable = "nonRetainedClients"
)

// Valid reports whether v is one of the supported goal variables.
func (v GoalVariable) Valid() bool {
	switch v {
	case VariableRevenue, VariableClientCount, VariableNewClients, VariableNonRetainedClients:
		return true
	}
	return false
}

// GoalStatus represents the lifecycle state of a goal
type GoalStatus string

const (
	GoalActive    GoalStatus = "active"
	GoalCompleted GoalStatus = "completed"
	GoalCancelled GoalStatus = "cancelled"
)

// Goal represents a measurable business objective over a period.
type Goal struct {
	ID             string          `json:"id" gorm:"primaryKey"`
	Name           string          `json:"name" gorm:"not null"`
	Description    string          `json:"description"`
	Variable       GoalVariable    `json:"variable" gorm:"not null"`
	ProductFamily  string          `json:"productFamily" gorm:"column:product_family;not null"`
	StartDate      time.Time       `json:"startDate" gorm:"column:start_date;not null"`
	EndDate        time.Time       `json:"endDate" gorm:"column:end_date;not null"`
	Target         float64         `json:"target"`
	Status         GoalStatus      `json:"status" gorm:"default:'active'"`
	UserID         string          `json:"userId" gorm:"column:user_id;index"`
	User           *User           `json:"user,omitempty" gorm:"foreignKey:UserID"`
	MonthlyTargets []MonthlyTarget `json:"monthlyTargets,omitempty" gorm:"foreignKey:GoalID"`
	Strategies     []Strategy      `json:"strategies,omitempty" gorm:"foreignKey:GoalID"`
	gorm.Model
}

// TableName specifies the table name for Goal Model
func (Goal) TableName() string {
	return "goals"
}

// TargetStatus represents the state of a monthly target
type TargetStatus string

const (
	TargetPending    TargetStatus = "pending"
	TargetInProgress TargetStatus = "in-progress"
	TargetCompleted  TargetStatus = "completed"
	TargetFailed     TargetStatus = "failed"
)

// MonthlyTarget splits a goal's target across the months of its period.
type MonthlyTarget struct {
	ID           string       `json:"id" gorm:"primaryKey"`
	Month        int          `json:"month" gorm:"not null"`
	Year         int          `json:"year" gorm:"not null"`
	TargetValue  float64      `json:"targetValue" gorm:"column:target_value;not null"`
	CurrentValue float64      `json:"currentValue" gorm:"column:current_value;default:0"`
	Status       TargetStatus `json:"status" gorm:"default:'pending'"`
	GoalID       string       `json:"goalId" gorm:"column:goal_id;index"`
	gorm.Model
}

// TableName specifies the table name for MonthlyTarget Model
func (MonthlyTarget) TableName() string {
	return "monthly_targets"
}
