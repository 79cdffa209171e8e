package handlers

import (
	"time"

	"vocabdrill/internal/models"
)

type userView struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      userView  `json:"user"`
}

// promptView is what the learner sees of the loaded example. Hint fields and
// the reference translation stay hidden until revealed or answered.
type promptView struct {
	ID            int64       `json:"id"`
	SourceText    string      `json:"source_text"`
	Difficulty    models.Tier `json:"difficulty"`
	Word          string      `json:"word,omitempty"`
	WordType      string      `json:"word_type,omitempty"`
	Pronunciation string      `json:"pronunciation,omitempty"`
	Definition    string      `json:"definition,omitempty"`
	TargetText    string      `json:"target_text,omitempty"`
}

type sessionView struct {
	State          models.PracticeState `json:"state"`
	Tier           models.Tier          `json:"tier"`
	InstanceID     string               `json:"instance_id,omitempty"`
	Example        *promptView          `json:"example,omitempty"`
	Answer         string               `json:"answer,omitempty"`
	LastScore      *int                 `json:"last_score,omitempty"`
	TotalScore     int                  `json:"total_score"`
	Mastered       bool                 `json:"mastered"`
	WordRevealed   bool                 `json:"word_revealed"`
	AnswerRevealed bool                 `json:"answer_revealed"`
	Empty          bool                 `json:"empty"`
}

func newSessionView(s *models.PracticeSession) sessionView {
	v := sessionView{
		State:          s.State,
		Tier:           s.Tier,
		InstanceID:     s.InstanceID,
		Answer:         s.PendingAnswer,
		LastScore:      s.LastScore,
		TotalScore:     s.TotalScore,
		Mastered:       s.Mastered,
		WordRevealed:   s.WordRevealed,
		AnswerRevealed: s.AnswerRevealed,
		Empty:          s.Empty(),
	}
	if e := s.Example; e != nil {
		answered := s.State == models.StateAnswered
		p := &promptView{ID: e.ID, SourceText: e.SourceText, Difficulty: e.Difficulty}
		if s.WordRevealed || answered {
			p.Word = e.Word
			p.WordType = e.WordType
			p.Pronunciation = e.Pronunciation
			p.Definition = e.Definition
		}
		if s.AnswerRevealed || answered {
			p.TargetText = e.TargetText
		}
		v.Example = p
	}
	return v
}

type lookupResponse struct {
	Query    string           `json:"query"`
	Examples []models.Example `json:"examples"`
}

type enrollResponse struct {
	Enrolled []models.ProgressRecord `json:"enrolled"`
}

type summaryResponse struct {
	Tiers []models.TierSummary `json:"tiers"`
}
