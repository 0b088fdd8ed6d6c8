package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewSeekerStats(t *testing.T) {
	tests := []struct {
		name string
		rows []StatusAggregate
		want SeekerStats
	}{
		{
			name: "no applications",
			rows: nil,
			want: SeekerStats{},
		},
		{
			name: "mixed statuses",
			rows: []StatusAggregate{
				{Status: StatusApplied, Count: 2, ScoreSum: 30},
				{Status: StatusAccepted, Count: 1, ScoreSum: 90},
			},
			want: SeekerStats{
				Counts:           StatusCounts{Applied: 2, Accepted: 1},
				Total:            3,
				AvgCompatibility: 40,
			},
		},
		{
			name: "average rounds half up",
			rows: []StatusAggregate{
				{Status: StatusViewed, Count: 2, ScoreSum: 3},
			},
			want: SeekerStats{
				Counts:           StatusCounts{Viewed: 2},
				Total:            2,
				AvgCompatibility: 2,
			},
		},
		{
			name: "unknown status counts toward total only",
			rows: []StatusAggregate{
				{Status: StatusRejected, Count: 1, ScoreSum: 10},
				{Status: "archived", Count: 1, ScoreSum: 20},
			},
			want: SeekerStats{
				Counts:           StatusCounts{Rejected: 1},
				Total:            2,
				AvgCompatibility: 15,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewSeekerStats(tt.rows))
		})
	}
}

func TestAppliedMessage(t *testing.T) {
	msg := AppliedMessage(&Job{Position: "Nurse", Company: "General Hospital"})
	assert.Equal(t, "You applied for Nurse at General Hospital", msg)
}
