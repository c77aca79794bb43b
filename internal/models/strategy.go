package models

import (
	"time"

	"gorm.io/gorm"
)

// StrategyState represents the lifecycle state of a strategy
type StrategyState string

const (
	StrategyPlanned    StrategyState = "planned"
	StrategyInProgress StrategyState = "in-progress"
	StrategyPaused     StrategyState = "paused"
	StrategyFinished   StrategyState = "finished"
)

// Strategy represents a concrete plan of action attached to a goal.
type Strategy struct {
	ID          string        `json:"id" gorm:"primaryKey"`
	Name        string        `json:"name" gorm:"not null"`
	Description string        `json:"description"`
	State       StrategyState `json:"state" gorm:"default:'planned'"`
	StartDate   time.Time     `json:"startDate" gorm:"column:start_date"`
	EndDate     time.Time     `json:"endDate" gorm:"column:end_date"`
	Results     string        `json:"results"`
	ROI         *float64      `json:"roi" gorm:"column:roi"`
	GoalID      string        `json:"goalId" gorm:"column:goal_id;index"`
	Goal        *Goal         `json:"goal,omitempty" gorm:"foreignKey:GoalID"`
	ClientID    string        `json:"clientId" gorm:"column:client_id;index"`
	Client      *Client       `json:"client,omitempty" gorm:"foreignKey:ClientID"`
	Tasks       []Task        `json:"tasks,omitempty" gorm:"foreignKey:StrategyID"`
	gorm.Model
}

// TableName specifies the table name for Strategy Model
func (Strategy) TableName() string {
	return "strategies"
}
