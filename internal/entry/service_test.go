// AngelaMos | 2026
// service_test.go

package entry

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/moodflow/internal/core"
)

type memRepo struct {
	mu      sync.Mutex
	nextID  int64
	entries []Entry
	clock   time.Time
}

func (m *memRepo) Create(_ context.Context, e *Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	m.clock = m.clock.Add(time.Second)
	e.ID = m.nextID
	e.DateCreated = m.clock
	m.entries = append(m.entries, *e)
	return nil
}

func (m *memRepo) ListByUser(_ context.Context, userID string) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Entry
	for i := len(m.entries) - 1; i >= 0; i-- {
		if m.entries[i].UserID == userID {
			out = append(out, m.entries[i])
		}
	}
	return out, nil
}

func (m *memRepo) GetForUser(
	_ context.Context,
	id int64,
	userID string,
) (*Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.entries {
		if e.ID == id && e.UserID == userID {
			return &e, nil
		}
	}
	return nil, core.ErrNotFound
}

func (m *memRepo) Unlock(context.Context, int64, string) (bool, error) {
	return false, nil
}

func (m *memRepo) SaveAnalysis(
	context.Context,
	int64,
	string,
	string,
) (string, error) {
	return "", core.ErrNotFound
}

func (m *memRepo) Count(context.Context) (EntryCounts, error) {
	return EntryCounts{}, nil
}

type stubAnalyzer struct {
	result Sentiment
	err    error
	calls  int
}

func (s *stubAnalyzer) Analyze(context.Context, string) (Sentiment, error) {
	s.calls++
	return s.result, s.err
}

func TestCreateEntryUsesAnalyzer(t *testing.T) {
	repo := &memRepo{}
	analyzer := &stubAnalyzer{result: Sentiment{Label: "positive", Score: 0.93}}
	svc := NewService(repo, analyzer, nil)

	e, err := svc.CreateEntry(context.Background(), "u-1", "  I had a great day  ")
	require.NoError(t, err)
	assert.Equal(t, int64(1), e.ID)
	assert.Equal(t, "I had a great day", e.Content)
	assert.Equal(t, LabelPositive, e.SentimentLabel)
	assert.InDelta(t, 0.93, e.SentimentScore, 1e-9)
	assert.False(t, e.PremiumUnlocked)
	assert.Nil(t, e.PremiumAnalysis)
	assert.Equal(t, 1, analyzer.calls)
}

func TestCreateEntryFallsBackToNeutral(t *testing.T) {
	tests := []struct {
		name     string
		analyzer SentimentAnalyzer
	}{
		{"nil analyzer", nil},
		{"analyzer error", &stubAnalyzer{err: errors.New("timeout")}},
		{"empty label", &stubAnalyzer{result: Sentiment{Score: 0.9}}},
		{"label too long", &stubAnalyzer{result: Sentiment{
			Label: strings.Repeat("X", 21),
			Score: 0.9,
		}}},
		{"score above one", &stubAnalyzer{result: Sentiment{Label: "POSITIVE", Score: 1.5}}},
		{"negative score", &stubAnalyzer{result: Sentiment{Label: "POSITIVE", Score: -0.1}}},
		{"nan score", &stubAnalyzer{result: Sentiment{Label: "POSITIVE", Score: math.NaN()}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(&memRepo{}, tt.analyzer, nil)

			e, err := svc.CreateEntry(context.Background(), "u-1", "meh")
			require.NoError(t, err)
			assert.Equal(t, LabelNeutral, e.SentimentLabel)
			assert.InDelta(t, FallbackScore, e.SentimentScore, 1e-9)
		})
	}
}

func TestCreateEntryValidation(t *testing.T) {
	analyzer := &stubAnalyzer{result: Sentiment{Label: "POSITIVE", Score: 1}}
	repo := &memRepo{}
	svc := NewService(repo, analyzer, nil)
	ctx := context.Background()

	for _, text := range []string{"", "   \n\t"} {
		_, err := svc.CreateEntry(ctx, "u-1", text)
		assert.ErrorIs(t, err, core.ErrInvalidInput)
	}

	_, err := svc.CreateEntry(ctx, "u-1", strings.Repeat("a", maxContentLength+1))
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	_, err = svc.CreateEntry(ctx, "u-1", strings.Repeat("é", maxContentLength))
	assert.NoError(t, err)

	assert.Equal(t, 1, analyzer.calls)
	assert.Len(t, repo.entries, 1)
}

func TestListEntriesNewestFirstAndScoped(t *testing.T) {
	repo := &memRepo{}
	svc := NewService(repo, nil, nil)
	ctx := context.Background()

	for _, text := range []string{"first", "second", "third"} {
		_, err := svc.CreateEntry(ctx, "u-1", text)
		require.NoError(t, err)
	}
	_, err := svc.CreateEntry(ctx, "u-2", "not yours")
	require.NoError(t, err)

	entries, err := svc.ListEntries(ctx, "u-1")
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "third", entries[0].Content)
	assert.Equal(t, "first", entries[2].Content)

	empty, err := svc.ListEntries(ctx, "u-3")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestGetEntryOwnership(t *testing.T) {
	repo := &memRepo{}
	svc := NewService(repo, nil, nil)
	ctx := context.Background()

	e, err := svc.CreateEntry(ctx, "u-1", "private")
	require.NoError(t, err)

	_, err = svc.GetEntry(ctx, e.ID, "u-2")
	assert.ErrorIs(t, err, core.ErrNotFound)

	got, err := svc.GetEntry(ctx, e.ID, "u-1")
	require.NoError(t, err)
	assert.Equal(t, "private", got.Content)
}
