package core

import "math"

type (
	// GeneralStatistics summarizes the whole movement table for the
	// stats page and the admin overview.
	GeneralStatistics struct {
		Total          int
		Acknowledged   int
		Pending        int
		CurrentMonth   int
		AcknowledgedPct float64
	}

	// MonthCount pairs a month key with its movement count.
	MonthCount struct {
		MonthKey string
		Count    int
	}
)

// AcknowledgedPercentage computes acknowledged/total as a percentage
// rounded to one decimal. Zero when total is zero.
func AcknowledgedPercentage(acknowledged, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(acknowledged)/float64(total)*1000) / 10
}
