package repository

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"vocabdrill/internal/database"
	"vocabdrill/internal/models"
	"vocabdrill/internal/validation"
)

// likeEscaper escapes LIKE wildcards using '!' as the escape character
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// foldWord is the case-insensitive form stored in words.word_folded and
// applied to lookup queries, so both sides fold the same way on every dialect
func foldWord(s string) string {
	return cases.Fold().String(norm.NFC.String(s))
}

// ContentRepository reads the word, definition and example hierarchy
type ContentRepository struct {
	db    *database.DB
	guard *database.Guard
}

// NewContentRepository creates a new content repository
func NewContentRepository(db *database.DB, guard *database.Guard) *ContentRepository {
	return &ContentRepository{db: db, guard: guard}
}

// ContentEntry is one flattened word / definition / example triple
type ContentEntry struct {
	Word          string
	WordType      string
	Pronunciation string
	Difficulty    models.Tier
	Definition    string
	SourceText    string
	TargetText    string
}

// maxWordLength matches the narrowest words.word column across dialects
const maxWordLength = 255

func (e ContentEntry) validate() error {
	switch {
	case !e.Difficulty.Valid():
		return validation.ValidationError{Field: "difficulty", Message: "unknown difficulty tier"}
	case strings.TrimSpace(e.Word) == "":
		return validation.ValidationError{Field: "word", Message: "word is required"}
	case utf8.RuneCountInString(e.Word) > maxWordLength:
		return validation.ValidationError{Field: "word", Message: fmt.Sprintf("word must be at most %d characters", maxWordLength)}
	case strings.TrimSpace(e.SourceText) == "":
		return validation.ValidationError{Field: "source_text", Message: "source sentence is required"}
	case strings.TrimSpace(e.TargetText) == "":
		return validation.ValidationError{Field: "target_text", Message: "target sentence is required"}
	}
	return nil
}

// FindByDifficulty returns every example whose word is in the given tier.
// An empty result is not an error.
func (r *ContentRepository) FindByDifficulty(ctx context.Context, tier models.Tier) ([]models.Example, error) {
	if !tier.Valid() {
		return nil, validation.ValidationError{Field: "tier", Message: "unknown difficulty tier"}
	}

	query := `SELECT ` + exampleColumns + `
		FROM examples e
		` + exampleJoins + `
		WHERE w.difficulty = ?
		ORDER BY e.id`

	var rows []exampleRow
	err := r.guard.Read(ctx, "find examples by difficulty", func(ctx context.Context) error {
		rows = nil
		return r.db.SelectContext(ctx, &rows, query, int(tier))
	})
	if err != nil {
		return nil, err
	}
	return toExamples(rows), nil
}

// FindByWordSubstring returns the examples under every word containing q,
// ignoring case. A blank query returns nothing without touching storage.
func (r *ContentRepository) FindByWordSubstring(ctx context.Context, q string) ([]models.Example, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return []models.Example{}, nil
	}

	query := `SELECT ` + exampleColumns + `
		FROM examples e
		` + exampleJoins + `
		WHERE w.word_folded LIKE ? ESCAPE '!'
		ORDER BY w.word, e.id`
	pattern := "%" + likeEscaper.Replace(foldWord(q)) + "%"

	var rows []exampleRow
	err := r.guard.Read(ctx, "find examples by word", func(ctx context.Context) error {
		rows = nil
		return r.db.SelectContext(ctx, &rows, query, pattern)
	})
	if err != nil {
		return nil, err
	}
	return toExamples(rows), nil
}

// FindExampleID resolves an example by its natural key, returning 0 when absent
func (r *ContentRepository) FindExampleID(ctx context.Context, word string, tier models.Tier, definition, sourceText string) (int64, error) {
	query := `SELECT e.id
		FROM examples e
		` + exampleJoins + `
		WHERE w.word = ? AND w.difficulty = ? AND d.definition = ? AND e.source_text = ?`

	var id int64
	err := r.guard.Read(ctx, "find example id", func(ctx context.Context) error {
		err := r.db.GetContext(ctx, &id, query, word, int(tier), definition, sourceText)
		if isNoRows(err) {
			id = 0
			return nil
		}
		return err
	})
	return id, err
}

// AddEntry inserts the word, definition and example of an entry, reusing any
// that already exist. It reports whether a new example was created.
func (r *ContentRepository) AddEntry(ctx context.Context, entry ContentEntry) (bool, error) {
	if err := entry.validate(); err != nil {
		return false, err
	}
	dialect := r.db.Dialect
	created := false

	err := r.guard.Write(ctx, "add content entry", func(ctx context.Context) error {
		created = false
		return r.db.WithTx(ctx, func(tx *database.Tx) error {
			if _, err := tx.ExecContext(ctx,
				dialect.InsertIgnoreQuery("words", "word", "word_folded", "word_type", "pronunciation", "difficulty"),
				entry.Word, foldWord(entry.Word), entry.WordType, entry.Pronunciation, int(entry.Difficulty)); err != nil {
				return fmt.Errorf("failed to insert word: %w", err)
			}
			var wordID int64
			if err := tx.GetContext(ctx, &wordID,
				"SELECT id FROM words WHERE word = ? AND difficulty = ?", entry.Word, int(entry.Difficulty)); err != nil {
				return fmt.Errorf("failed to resolve word: %w", err)
			}

			if _, err := tx.ExecContext(ctx,
				dialect.InsertIgnoreQuery("definitions", "word_id", "definition"),
				wordID, entry.Definition); err != nil {
				return fmt.Errorf("failed to insert definition: %w", err)
			}
			var definitionID int64
			if err := tx.GetContext(ctx, &definitionID,
				"SELECT id FROM definitions WHERE word_id = ? AND definition = ?", wordID, entry.Definition); err != nil {
				return fmt.Errorf("failed to resolve definition: %w", err)
			}

			result, err := tx.ExecContext(ctx,
				dialect.InsertIgnoreQuery("examples", "definition_id", "source_text", "target_text"),
				definitionID, entry.SourceText, entry.TargetText)
			if err != nil {
				return fmt.Errorf("failed to insert example: %w", err)
			}
			n, err := result.RowsAffected()
			if err != nil {
				return fmt.Errorf("failed to read affected rows: %w", err)
			}
			created = n > 0
			return nil
		})
	})
	return created, err
}

func toExamples(rows []exampleRow) []models.Example {
	examples := make([]models.Example, 0, len(rows))
	for _, row := range rows {
		examples = append(examples, row.toModel())
	}
	return examples
}
