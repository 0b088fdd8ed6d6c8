package models

import "math"

type StatusCounts struct {
	Applied  int `json:"applied"`
	Viewed   int `json:"viewed"`
	Accepted int `json:"accepted"`
	Rejected int `json:"rejected"`
}

// SeekerStats is the per-job-seeker rollup over their applications.
type SeekerStats struct {
	Counts           StatusCounts `json:"counts"`
	Total            int          `json:"total"`
	AvgCompatibility int          `json:"avgCompatibility"`
}

// StatusAggregate is one GROUP BY status row.
type StatusAggregate struct {
	Status   string
	Count    int
	ScoreSum int64
}

// NewSeekerStats folds per-status rows into SeekerStats. Unknown statuses are
// not counted per status but still contribute to the total and the average.
func NewSeekerStats(rows []StatusAggregate) SeekerStats {
	var (
		stats SeekerStats
		sum   int64
	)
	for _, row := range rows {
		switch row.Status {
		case StatusApplied:
			stats.Counts.Applied += row.Count
		case StatusViewed:
			stats.Counts.Viewed += row.Count
		case StatusAccepted:
			stats.Counts.Accepted += row.Count
		case StatusRejected:
			stats.Counts.Rejected += row.Count
		}
		stats.Total += row.Count
		sum += row.ScoreSum
	}
	if stats.Total > 0 {
		stats.AvgCompatibility = int(math.Round(float64(sum) / float64(stats.Total)))
	}
	return stats
}
