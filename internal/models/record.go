package models

import (
	"strconv"
	"time"
)

// ScoreNotAvailable is displayed when no score could be extracted from
// the feedback text.
const ScoreNotAvailable = "N/A"

// PracticeRecord represents one submitted-and-evaluated answer
type PracticeRecord struct {
	ID        int64     `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Theme     string    `json:"theme"`
	Score     *float64  `json:"score"` // nil when extraction failed
	Answer    string    `json:"answer"`
	Feedback  string    `json:"feedback"`
}

// ScoreDisplay returns the score formatted for display, or the
// not-available sentinel when extraction failed.
func (r PracticeRecord) ScoreDisplay() string {
	if r.Score == nil {
		return ScoreNotAvailable
	}
	return strconv.FormatFloat(*r.Score, 'f', -1, 64)
}

// RecordStats holds aggregate statistics over scored practice records.
// Records without a score are excluded from the aggregates, not counted
// as zero.
type RecordStats struct {
	TotalAttempts int
	ScoredCount   int
	MeanScore     float64
	MaxScore      float64
}
