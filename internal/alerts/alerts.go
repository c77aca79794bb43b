package alerts

import (
	"fmt"
	"math"
	"time"

	"crm-api/internal/models"
	"crm-api/internal/progress"
)

// Severity of an alert.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityDanger  Severity = "danger"
)

// Alert is an advisory notice computed on demand; alerts are never persisted.
type Alert struct {
	Severity Severity `json:"severity"`
	Title    string   `json:"title"`
	Message  string   `json:"message"`
	Link     string   `json:"link"`
}

// Days remaining below which an underperforming goal is flagged.
const goalDeadlineWindowDays = 15

// Generate scans goals, tasks and strategies and produces the alert list in
// fixed rule order: underperforming goals, overdue tasks per strategy,
// strategies without tasks.
func Generate(goals []models.Goal, tasks []models.Task, strategies []models.Strategy, sales []models.Sale, clients []models.Client, now time.Time) []Alert {
	out := make([]Alert, 0)

	// Rule 1: goal below the needs-attention threshold with fewer than 15 days
	// left in its period.
	for _, g := range goals {
		pct := progress.Percent(progress.Actual(g, sales, clients, g.StartDate), g.Target)
		days := daysRemaining(now, g.EndDate)
		if pct < progress.NeedsAttentionThreshold && days >= 0 && days < goalDeadlineWindowDays {
			out = append(out, Alert{
				Severity: SeverityWarning,
				Title:    "Underperforming Goal",
				Message:  fmt.Sprintf("The %s goal for %s is at %d%% with %d days remaining.", g.Variable, g.ProductFamily, pct, days),
				Link:     "/goals/" + g.ID,
			})
		}
	}

	// Rule 2: overdue tasks grouped by strategy. Tasks without a strategy are
	// excluded from the grouping.
	overdueByStrategy := make(map[string]int)
	for _, t := range tasks {
		if t.Status == models.StatusDone || t.StrategyID == "" {
			continue
		}
		if t.DueDate.Before(now) {
			overdueByStrategy[t.StrategyID]++
		}
	}
	for _, s := range strategies {
		count, ok := overdueByStrategy[s.ID]
		if !ok {
			continue
		}
		noun := "tasks are"
		if count == 1 {
			noun = "task is"
		}
		out = append(out, Alert{
			Severity: SeverityDanger,
			Title:    "Overdue Tasks",
			Message:  fmt.Sprintf("%d %s overdue for %s.", count, noun, s.Name),
			Link:     "/tasks?strategyId=" + s.ID + "&overdue=true",
		})
	}

	// Rule 3: strategy with no tasks at all.
	taskCountByStrategy := make(map[string]int)
	for _, t := range tasks {
		if t.StrategyID != "" {
			taskCountByStrategy[t.StrategyID]++
		}
	}
	for _, s := range strategies {
		if taskCountByStrategy[s.ID] == 0 {
			out = append(out, Alert{
				Severity: SeverityInfo,
				Title:    "Strategy Without Tasks",
				Message:  fmt.Sprintf("The strategy %s has no tasks assigned.", s.Name),
				Link:     "/strategies/" + s.ID,
			})
		}
	}

	return out
}

func daysRemaining(now, end time.Time) int {
	return int(math.Ceil(end.Sub(now).Hours() / 24))
}
