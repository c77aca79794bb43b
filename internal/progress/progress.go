package progress

import (
	"math"
	"time"

	"crm-api/internal/models"
)

// Three-tier classification of goal progress.
const (
	StatusOnTrack        = "on-track"
	StatusNeedsAttention = "needs-attention"
	StatusAtRisk         = "at-risk"
)

// Thresholds for the classification, in percent. Exported so alerting reuses
// the same cutoffs.
const (
	OnTrackThreshold        = 90
	NeedsAttentionThreshold = 70
)

// Actual computes the measured value of a goal over its own period.
// periodStart anchors the newClients variable, whose evaluation window is
// open-ended (every client created at or after it counts).
func Actual(goal models.Goal, sales []models.Sale, clients []models.Client, periodStart time.Time) float64 {
	switch goal.Variable {
	case models.VariableRevenue:
		// The goal period is inclusive of its end date, so the window closes
		// at the start of the following day.
		return revenueIn(goal.ProductFamily, sales, goal.StartDate, goal.EndDate.AddDate(0, 0, 1))
	case models.VariableClientCount:
		return float64(countClients(clients, true))
	case models.VariableNewClients:
		n := 0
		for _, c := range clients {
			if !c.CreatedAt.Before(periodStart) {
				n++
			}
		}
		return float64(n)
	case models.VariableNonRetainedClients:
		return float64(countClients(clients, false))
	default:
		return 0
	}
}

// ActualForMonth re-runs the variable dispatch scoped to a single calendar
// month, for monthly target roll-up.
func ActualForMonth(goal models.Goal, sales []models.Sale, clients []models.Client, year, month int) float64 {
	start, end := MonthWindow(year, month)
	switch goal.Variable {
	case models.VariableRevenue:
		return revenueIn(goal.ProductFamily, sales, start, end)
	case models.VariableNewClients:
		n := 0
		for _, c := range clients {
			if !c.CreatedAt.Before(start) && c.CreatedAt.Before(end) {
				n++
			}
		}
		return float64(n)
	case models.VariableClientCount:
		return float64(countClients(clients, true))
	case models.VariableNonRetainedClients:
		return float64(countClients(clients, false))
	default:
		return 0
	}
}

// MonthWindow returns the half-open interval [start, end) of a calendar month.
func MonthWindow(year, month int) (time.Time, time.Time) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

// revenueIn sums matching sales over the half-open window [start, end), so
// adjacent windows partition sales cleanly.
func revenueIn(productFamily string, sales []models.Sale, start, end time.Time) float64 {
	var sum float64
	for _, s := range sales {
		if s.ProductFamily != productFamily {
			continue
		}
		if s.Date.Before(start) || !s.Date.Before(end) {
			continue
		}
		sum += s.Amount
	}
	return sum
}

func countClients(clients []models.Client, active bool) int {
	n := 0
	for _, c := range clients {
		if c.Active == active {
			n++
		}
	}
	return n
}

// Percent computes rounded actual-vs-target progress. A zero or absent target
// yields 0 rather than dividing by zero. Progress is unbounded above.
func Percent(actual, target float64) int {
	if target <= 0 {
		return 0
	}
	return int(math.Round(actual / target * 100))
}

// Classify maps a progress percentage onto the three-tier status.
func Classify(percent int) string {
	switch {
	case percent >= OnTrackThreshold:
		return StatusOnTrack
	case percent >= NeedsAttentionThreshold:
		return StatusNeedsAttention
	default:
		return StatusAtRisk
	}
}

// RollUpMonthlyTargets refreshes CurrentValue and Status of each of the goal's
// monthly targets from current sales/client data. A target is pending until
// its month starts, completed once its target value is reached, failed when
// the month has ended short of it, and in-progress otherwise.
func RollUpMonthlyTargets(goal *models.Goal, sales []models.Sale, clients []models.Client, now time.Time) {
	for i := range goal.MonthlyTargets {
		mt := &goal.MonthlyTargets[i]
		mt.CurrentValue = ActualForMonth(*goal, sales, clients, mt.Year, mt.Month)

		start, end := MonthWindow(mt.Year, mt.Month)
		percent := Percent(mt.CurrentValue, mt.TargetValue)
		switch {
		case now.Before(start):
			mt.Status = models.TargetPending
		case percent >= 100:
			mt.Status = models.TargetCompleted
		case !now.Before(end):
			mt.Status = models.TargetFailed
		default:
			mt.Status = models.TargetInProgress
		}
	}
}
