// AngelaMos | 2026
// dto.go

package entry

import (
	"time"
)

type CreateEntryRequest struct {
	Text string `json:"text" validate:"required,max=10000"`
}

type EntryResponse struct {
	ID              int64     `json:"id"`
	Content         string    `json:"content"`
	DateCreated     time.Time `json:"date_created"`
	SentimentLabel  string    `json:"sentiment_label"`
	SentimentScore  float64   `json:"sentiment_score"`
	PremiumUnlocked bool      `json:"premium_unlocked"`
	PremiumAnalysis *string   `json:"premium_analysis,omitempty"`
}

func ToEntryResponse(e *Entry) EntryResponse {
	return EntryResponse{
		ID:              e.ID,
		Content:         e.Content,
		DateCreated:     e.DateCreated,
		SentimentLabel:  e.SentimentLabel,
		SentimentScore:  e.SentimentScore,
		PremiumUnlocked: e.PremiumUnlocked,
		PremiumAnalysis: e.PremiumAnalysis,
	}
}

func ToEntryListResponse(entries []Entry) []EntryResponse {
	out := make([]EntryResponse, len(entries))
	for i := range entries {
		out[i] = ToEntryResponse(&entries[i])
	}
	return out
}
