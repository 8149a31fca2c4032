// AngelaMos | 2026
// repository.go

package entry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/carterperez-dev/templates/moodflow/internal/core"
)

type Repository interface {
	Create(ctx context.Context, entry *Entry) error
	ListByUser(ctx context.Context, userID string) ([]Entry, error)
	GetForUser(ctx context.Context, id int64, userID string) (*Entry, error)
	Unlock(ctx context.Context, id int64, userID string) (bool, error)
	SaveAnalysis(
		ctx context.Context,
		id int64,
		userID, analysis string,
	) (string, error)
	Count(ctx context.Context) (EntryCounts, error)
}

type EntryCounts struct {
	Total    int64 `db:"total"    json:"total"`
	Unlocked int64 `db:"unlocked" json:"unlocked"`
	Analyzed int64 `db:"analyzed" json:"analyzed"`
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const entryColumns = `
	id, user_id, content, date_created, sentiment_label, sentiment_score,
	premium_unlocked, premium_analysis`

func (r *repository) Create(ctx context.Context, entry *Entry) error {
	query := `
		INSERT INTO entries (user_id, content, sentiment_label, sentiment_score)
		VALUES ($1, $2, $3, $4)
		RETURNING id, date_created, premium_unlocked`

	err := r.db.GetContext(ctx, entry, query,
		entry.UserID,
		entry.Content,
		entry.SentimentLabel,
		entry.SentimentScore,
	)
	if err != nil {
		return fmt.Errorf("create entry: %w", err)
	}

	return nil
}

func (r *repository) ListByUser(
	ctx context.Context,
	userID string,
) ([]Entry, error) {
	query := `SELECT` + entryColumns + `
		FROM entries
		WHERE user_id = $1
		ORDER BY date_created DESC, id DESC`

	var entries []Entry
	if err := r.db.SelectContext(ctx, &entries, query, userID); err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}

	return entries, nil
}

// GetForUser applies the ownership predicate in SQL; an entry owned by
// someone else is indistinguishable from one that does not exist.
func (r *repository) GetForUser(
	ctx context.Context,
	id int64,
	userID string,
) (*Entry, error) {
	query := `SELECT` + entryColumns + `
		FROM entries
		WHERE id = $1 AND user_id = $2`

	var entry Entry
	err := r.db.GetContext(ctx, &entry, query, id, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get entry: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get entry: %w", err)
	}

	return &entry, nil
}

// Unlock sets the premium flag. Re-applying it to an unlocked entry leaves
// the row as it was. The bool reports whether a matching entry exists.
func (r *repository) Unlock(
	ctx context.Context,
	id int64,
	userID string,
) (bool, error) {
	query := `
		UPDATE entries
		SET premium_unlocked = TRUE
		WHERE id = $1 AND user_id = $2`

	result, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return false, fmt.Errorf("unlock entry: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("unlock entry: %w", err)
	}

	return rows > 0, nil
}

// SaveAnalysis stores analysis only if none is stored yet and returns
// whichever text ends up persisted, so a losing concurrent writer gets the
// winner's analysis back.
func (r *repository) SaveAnalysis(
	ctx context.Context,
	id int64,
	userID, analysis string,
) (string, error) {
	query := `
		UPDATE entries
		SET premium_analysis = $3
		WHERE id = $1
			AND user_id = $2
			AND premium_unlocked
			AND premium_analysis IS NULL
		RETURNING premium_analysis`

	var stored string
	err := r.db.GetContext(ctx, &stored, query, id, userID, analysis)
	if err == nil {
		return stored, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("save analysis: %w", err)
	}

	var existing sql.NullString
	err = r.db.GetContext(ctx, &existing, `
		SELECT premium_analysis
		FROM entries
		WHERE id = $1 AND user_id = $2 AND premium_unlocked`,
		id, userID,
	)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && !existing.Valid) {
		return "", fmt.Errorf("save analysis: %w", core.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("save analysis: %w", err)
	}

	return existing.String, nil
}

func (r *repository) Count(ctx context.Context) (EntryCounts, error) {
	query := `
		SELECT
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE premium_unlocked) AS unlocked,
			COUNT(premium_analysis) AS analyzed
		FROM entries`

	var counts EntryCounts
	if err := r.db.GetContext(ctx, &counts, query); err != nil {
		return EntryCounts{}, fmt.Errorf("count entries: %w", err)
	}

	return counts, nil
}
