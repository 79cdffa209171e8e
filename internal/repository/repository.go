package repository

import (
	"database/sql"
	"errors"

	"vocabdrill/internal/database"
	"vocabdrill/internal/models"
)

// Storage failures surfaced by every repository call
var (
	ErrStorageUnavailable = database.ErrStorageUnavailable
	ErrIntegrityViolation = database.ErrIntegrityViolation
)

// exampleColumns selects an example enriched with its definition and word.
// It expects the aliases e (examples), d (definitions) and w (words).
const exampleColumns = `e.id AS example_id, e.definition_id, e.source_text, e.target_text,
		d.definition, d.word_id, w.word, w.word_type, w.pronunciation, w.difficulty`

const exampleJoins = `JOIN definitions d ON d.id = e.definition_id
		JOIN words w ON w.id = d.word_id`

type exampleRow struct {
	ExampleID     int64  `db:"example_id"`
	DefinitionID  int64  `db:"definition_id"`
	SourceText    string `db:"source_text"`
	TargetText    string `db:"target_text"`
	Definition    string `db:"definition"`
	WordID        int64  `db:"word_id"`
	Word          string `db:"word"`
	WordType      string `db:"word_type"`
	Pronunciation string `db:"pronunciation"`
	Difficulty    int    `db:"difficulty"`
}

func (r exampleRow) toModel() models.Example {
	return models.Example{
		ID:            r.ExampleID,
		DefinitionID:  r.DefinitionID,
		SourceText:    r.SourceText,
		TargetText:    r.TargetText,
		Definition:    r.Definition,
		WordID:        r.WordID,
		Word:          r.Word,
		WordType:      r.WordType,
		Pronunciation: r.Pronunciation,
		Difficulty:    models.Tier(r.Difficulty),
	}
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
