// Package pipeline orchestrates catalog loading, importing, and progress aggregation.
package pipeline

import (
	"sort"
	"time"

	"github.com/theirongolddev/budgetsim/internal/model"
)

// Aggregate computes a player's progress from their attempts and completions.
func Aggregate(attempts []model.Attempt, completions []model.Completion) model.ProgressStats {
	stats := model.ProgressStats{
		XPByCategory: make(map[model.Category]int),
		ByDifficulty: make(map[model.Difficulty]int),
	}

	for _, a := range attempts {
		stats.Attempts++
		if a.Successful {
			stats.Successes++
		}
		if a.SubmittedAt.After(stats.LastAttemptAt) {
			stats.LastAttemptAt = a.SubmittedAt
		}
	}
	if stats.Attempts > 0 {
		stats.SuccessRate = float64(stats.Successes) / float64(stats.Attempts)
	}

	for _, c := range completions {
		stats.Completions++
		stats.TotalXP += c.XP
		stats.XPByCategory[c.Category] += c.XP
		stats.ByDifficulty[c.Difficulty]++
	}

	return stats
}

// CategoryXP is one row of the per-category XP breakdown.
type CategoryXP struct {
	Category model.Category
	XP       int
}

// SortedCategoryXP returns every category with its XP, highest first.
// Ties keep the canonical category order.
func SortedCategoryXP(stats model.ProgressStats) []CategoryXP {
	cats := model.Categories()
	out := make([]CategoryXP, len(cats))
	for i, c := range cats {
		out[i] = CategoryXP{Category: c, XP: stats.XPByCategory[c]}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].XP > out[j].XP })
	return out
}

// DailyAttempts holds attempt counts for one calendar day.
type DailyAttempts struct {
	Date      time.Time
	Attempts  int
	Successes int
}

// AggregateDays buckets attempts into local calendar days in [since, until],
// including days with no attempts, oldest first.
func AggregateDays(attempts []model.Attempt, since, until time.Time) []DailyAttempts {
	start := dayStart(since)
	end := dayStart(until)
	if end.Before(start) {
		return nil
	}

	var days []DailyAttempts
	idx := make(map[string]int)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		idx[d.Format("2006-01-02")] = len(days)
		days = append(days, DailyAttempts{Date: d})
	}

	for _, a := range attempts {
		i, ok := idx[a.SubmittedAt.Local().Format("2006-01-02")]
		if !ok {
			continue
		}
		days[i].Attempts++
		if a.Successful {
			days[i].Successes++
		}
	}
	return days
}

// FilterByCategory returns attempts in one category. An empty category
// matches everything.
func FilterByCategory(attempts []model.Attempt, cat model.Category) []model.Attempt {
	if cat == "" {
		return attempts
	}
	var out []model.Attempt
	for _, a := range attempts {
		if a.Category == cat {
			out = append(out, a)
		}
	}
	return out
}

func dayStart(t time.Time) time.Time {
	t = t.Local()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local)
}
