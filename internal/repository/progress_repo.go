package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"vocabdrill/internal/database"
	"vocabdrill/internal/models"
	"vocabdrill/internal/validation"
)

// ProgressRepository stores per-user cumulative scores
type ProgressRepository struct {
	db    *database.DB
	guard *database.Guard
}

// NewProgressRepository creates a new progress repository
func NewProgressRepository(db *database.DB, guard *database.Guard) *ProgressRepository {
	return &ProgressRepository{db: db, guard: guard}
}

// ProgressEntry is a portable progress row keyed by username and the
// natural key of the example rather than by database ids
type ProgressEntry struct {
	Username   string `json:"username" db:"username"`
	Word       string `json:"word" db:"word"`
	Difficulty int    `json:"difficulty" db:"difficulty"`
	Definition string `json:"definition" db:"definition"`
	SourceText string `json:"source_text" db:"source_text"`
	Score      int    `json:"score" db:"score"`
}

const progressColumns = `p.id AS progress_id, p.user_id, p.score, p.created_at, p.updated_at, ` + exampleColumns

const progressJoins = `JOIN examples e ON e.id = p.example_id
		` + exampleJoins

type progressRow struct {
	ProgressID int64     `db:"progress_id"`
	UserID     int64     `db:"user_id"`
	Score      int       `db:"score"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
	exampleRow
}

func (r progressRow) toModel() models.ProgressRecord {
	example := r.exampleRow.toModel()
	return models.ProgressRecord{
		ID:        r.ProgressID,
		UserID:    r.UserID,
		ExampleID: example.ID,
		Score:     r.Score,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
		Example:   &example,
	}
}

// GetUnmastered returns up to limit of the user's records in tier that are
// below the mastery threshold, weakest first.
func (r *ProgressRepository) GetUnmastered(ctx context.Context, userID int64, tier models.Tier, limit int) ([]models.ProgressRecord, error) {
	if !tier.Valid() {
		return nil, validation.ValidationError{Field: "tier", Message: "unknown difficulty tier"}
	}
	if limit <= 0 {
		return []models.ProgressRecord{}, nil
	}

	query := `SELECT ` + progressColumns + `
		FROM progress p
		` + progressJoins + `
		WHERE p.user_id = ? AND p.score < ? AND w.difficulty = ?
		ORDER BY p.score, p.id
		LIMIT ?`

	var rows []progressRow
	err := r.guard.Read(ctx, "get unmastered progress", func(ctx context.Context) error {
		rows = nil
		return r.db.SelectContext(ctx, &rows, query, userID, models.MasteryThreshold, int(tier), limit)
	})
	if err != nil {
		return nil, err
	}
	return toRecords(rows), nil
}

// RecordAnswer adds delta to the user's score on an example, creating the
// record if it does not exist. The accumulate is a single conditional upsert
// so concurrent calls for the same pair never lose a contribution. answerID
// identifies the answer: repeating the record's last answerID adds nothing
// and returns the record as it stands.
func (r *ProgressRepository) RecordAnswer(ctx context.Context, userID, exampleID int64, answerID string, delta int) (*models.ProgressRecord, error) {
	if err := validation.ValidateScoreDelta(delta); err != nil {
		return nil, err
	}
	if strings.TrimSpace(answerID) == "" {
		return nil, validation.ValidationError{Field: "answer_id", Message: "answer id is required"}
	}

	var record models.ProgressRecord
	err := r.guard.Write(ctx, "record answer", func(ctx context.Context) error {
		return r.db.WithTx(ctx, func(tx *database.Tx) error {
			if _, err := tx.ExecContext(ctx, r.db.Dialect.AccumulateProgressQuery(), userID, exampleID, answerID, delta); err != nil {
				return fmt.Errorf("failed to accumulate score: %w", err)
			}
			row, err := getProgress(ctx, tx, userID, exampleID)
			if err != nil {
				return err
			}
			record = row.toModel()
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// Enroll creates zero-score records for the given examples. Existing records
// keep their score and unknown example ids are skipped. The records for the
// requested ids are returned ordered by example id.
func (r *ProgressRepository) Enroll(ctx context.Context, userID int64, exampleIDs []int64) ([]models.ProgressRecord, error) {
	if err := validation.ValidateExampleIDs(exampleIDs); err != nil {
		return nil, err
	}
	ids := uniqueIDs(exampleIDs)

	var rows []progressRow
	err := r.guard.Write(ctx, "enroll examples", func(ctx context.Context) error {
		rows = nil
		return r.db.WithTx(ctx, func(tx *database.Tx) error {
			for _, id := range ids {
				if _, err := tx.ExecContext(ctx, r.db.Dialect.EnrollProgressQuery(), userID, id); err != nil {
					return fmt.Errorf("failed to enroll example %d: %w", id, err)
				}
			}

			query, args, err := sqlx.In(`SELECT `+progressColumns+`
				FROM progress p
				`+progressJoins+`
				WHERE p.user_id = ? AND p.example_id IN (?)
				ORDER BY p.example_id`, userID, ids)
			if err != nil {
				return fmt.Errorf("failed to build enrollment query: %w", err)
			}
			return tx.SelectContext(ctx, &rows, query, args...)
		})
	})
	if err != nil {
		return nil, err
	}
	return toRecords(rows), nil
}

// SummaryByTier counts available, enrolled and mastered examples per tier
// for the user. Tiers with no content are included with zero counts.
func (r *ProgressRepository) SummaryByTier(ctx context.Context, userID int64) ([]models.TierSummary, error) {
	query := `SELECT w.difficulty AS tier,
			COUNT(e.id) AS available,
			COUNT(p.id) AS enrolled,
			COALESCE(SUM(CASE WHEN p.score >= ? THEN 1 ELSE 0 END), 0) AS mastered
		FROM examples e
		` + exampleJoins + `
		LEFT JOIN progress p ON p.example_id = e.id AND p.user_id = ?
		GROUP BY w.difficulty`

	var rows []struct {
		Tier      int `db:"tier"`
		Available int `db:"available"`
		Enrolled  int `db:"enrolled"`
		Mastered  int `db:"mastered"`
	}
	err := r.guard.Read(ctx, "summarize progress", func(ctx context.Context) error {
		rows = nil
		return r.db.SelectContext(ctx, &rows, query, models.MasteryThreshold, userID)
	})
	if err != nil {
		return nil, err
	}

	byTier := make(map[models.Tier]models.TierSummary, len(rows))
	for _, row := range rows {
		tier := models.Tier(row.Tier)
		byTier[tier] = models.TierSummary{Tier: tier, Available: row.Available, Enrolled: row.Enrolled, Mastered: row.Mastered}
	}
	summary := make([]models.TierSummary, 0, len(models.AllTiers))
	for _, tier := range models.AllTiers {
		s, ok := byTier[tier]
		if !ok {
			s = models.TierSummary{Tier: tier}
		}
		summary = append(summary, s)
	}
	return summary, nil
}

// Export returns every progress record in portable form
func (r *ProgressRepository) Export(ctx context.Context) ([]ProgressEntry, error) {
	query := `SELECT u.username, w.word, w.difficulty, d.definition, e.source_text, p.score
		FROM progress p
		JOIN users u ON u.id = p.user_id
		` + progressJoins + `
		ORDER BY u.username, p.example_id`

	var entries []ProgressEntry
	err := r.guard.Read(ctx, "export progress", func(ctx context.Context) error {
		entries = nil
		return r.db.SelectContext(ctx, &entries, query)
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Merge writes score for the pair unless the stored score is already higher
func (r *ProgressRepository) Merge(ctx context.Context, userID, exampleID int64, score int) error {
	if err := validation.ValidateScoreDelta(score); err != nil {
		return err
	}
	return r.guard.Write(ctx, "merge progress", func(ctx context.Context) error {
		_, err := r.db.ExecContext(ctx, r.db.Dialect.MergeProgressQuery(), userID, exampleID, score)
		return err
	})
}

func getProgress(ctx context.Context, q database.DBTX, userID, exampleID int64) (progressRow, error) {
	var row progressRow
	err := q.GetContext(ctx, &row, `SELECT `+progressColumns+`
		FROM progress p
		`+progressJoins+`
		WHERE p.user_id = ? AND p.example_id = ?`, userID, exampleID)
	return row, err
}

func toRecords(rows []progressRow) []models.ProgressRecord {
	records := make([]models.ProgressRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.toModel())
	}
	return records
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
