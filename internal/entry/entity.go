// AngelaMos | 2026
// entity.go

package entry

import (
	"time"
)

const (
	LabelPositive = "POSITIVE"
	LabelNeutral  = "NEUTRAL"
	LabelNegative = "NEGATIVE"

	FallbackScore = 0.5
)

// Entry is a journal record. Content and owner never change after insert;
// PremiumUnlocked only moves false to true and PremiumAnalysis is written
// at most once, after unlock.
type Entry struct {
	ID              int64     `db:"id"`
	UserID          string    `db:"user_id"`
	Content         string    `db:"content"`
	DateCreated     time.Time `db:"date_created"`
	SentimentLabel  string    `db:"sentiment_label"`
	SentimentScore  float64   `db:"sentiment_score"`
	PremiumUnlocked bool      `db:"premium_unlocked"`
	PremiumAnalysis *string   `db:"premium_analysis"`
}

func (e *Entry) HasAnalysis() bool {
	return e.PremiumAnalysis != nil && *e.PremiumAnalysis != ""
}
