package reporter

import (
	"sort"

	"ccview-smoke/internal/types"
)

// CategoryCount holds pass/fail counts for one category
type CategoryCount struct {
	Passed int
	Failed int
}

// Total returns passed + failed
func (c CategoryCount) Total() int {
	return c.Passed + c.Failed
}

// Summary aggregates a run's records
type Summary struct {
	Total      int
	Passed     int
	Failed     int
	Categories map[string]CategoryCount
}

// Summarize counts passed and failed records overall and per category
func Summarize(records []types.TestRecord) Summary {
	summary := Summary{
		Total:      len(records),
		Categories: make(map[string]CategoryCount),
	}
	for _, record := range records {
		count := summary.Categories[record.Category]
		if record.Success {
			summary.Passed++
			count.Passed++
		} else {
			summary.Failed++
			count.Failed++
		}
		summary.Categories[record.Category] = count
	}
	return summary
}

// SortedCategories returns the category names in lexicographic order
func (s Summary) SortedCategories() []string {
	names := make([]string, 0, len(s.Categories))
	for name := range s.Categories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SuccessRate returns the percentage of passed records
func (s Summary) SuccessRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Passed) / float64(s.Total) * 100
}
