// AngelaMos | 2026
// service.go

package entry

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/carterperez-dev/templates/moodflow/internal/core"
)

const (
	maxContentLength = 10000
	maxLabelLength   = 20
)

type Sentiment struct {
	Label string
	Score float64
}

// SentimentAnalyzer classifies entry text. Implementations should bound
// their own latency; any error is absorbed by the caller.
type SentimentAnalyzer interface {
	Analyze(ctx context.Context, text string) (Sentiment, error)
}

type Service struct {
	repo     Repository
	analyzer SentimentAnalyzer
	logger   *slog.Logger
}

func NewService(
	repo Repository,
	analyzer SentimentAnalyzer,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:     repo,
		analyzer: analyzer,
		logger:   logger,
	}
}

// CreateEntry classifies and stores text for userID. A failing analyzer
// never blocks the write; the entry is stored as neutral instead.
func (s *Service) CreateEntry(
	ctx context.Context,
	userID, text string,
) (*Entry, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, core.ValidationError("text is required")
	}
	if utf8.RuneCountInString(text) > maxContentLength {
		return nil, core.ValidationError(
			fmt.Sprintf("text must be at most %d characters", maxContentLength),
		)
	}

	sentiment := s.classify(ctx, text)

	entry := &Entry{
		UserID:         userID,
		Content:        text,
		SentimentLabel: sentiment.Label,
		SentimentScore: sentiment.Score,
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, err
	}

	core.RecordEntryCreated(entry.SentimentLabel)
	return entry, nil
}

func (s *Service) ListEntries(
	ctx context.Context,
	userID string,
) ([]Entry, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *Service) GetEntry(
	ctx context.Context,
	id int64,
	userID string,
) (*Entry, error) {
	return s.repo.GetForUser(ctx, id, userID)
}

func (s *Service) classify(ctx context.Context, text string) Sentiment {
	fallback := Sentiment{Label: LabelNeutral, Score: FallbackScore}

	if s.analyzer == nil {
		return fallback
	}

	result, err := s.analyzer.Analyze(ctx, text)
	if err != nil {
		s.logger.WarnContext(ctx, "sentiment analysis failed, using fallback",
			"error", err,
		)
		core.RecordCollaboratorFallback("sentiment")
		return fallback
	}

	label := strings.ToUpper(strings.TrimSpace(result.Label))
	if label == "" || len(label) > maxLabelLength || math.IsNaN(result.Score) ||
		result.Score < 0 || result.Score > 1 {
		s.logger.WarnContext(ctx, "sentiment analysis returned malformed result",
			"label", result.Label,
			"score", result.Score,
		)
		core.RecordCollaboratorFallback("sentiment")
		return fallback
	}

	return Sentiment{Label: label, Score: result.Score}
}
