package models

import "time"

// PracticeState is the orchestrator state of a learner's practice session
type PracticeState string

const (
	StateIdle     PracticeState = "idle"
	StateLoaded   PracticeState = "loaded"
	StateAnswered PracticeState = "answered"
)

// PracticeSession is the per-learner practice loop state.
// InstanceID identifies one loading of an example so that a repeated submit
// for the same instance can be told apart from an answer to a later one.
type PracticeSession struct {
	UserID         int64         `json:"user_id"`
	Tier           Tier          `json:"tier"`
	State          PracticeState `json:"state"`
	InstanceID     string        `json:"instance_id,omitempty"`
	Example        *Example      `json:"example,omitempty"`
	PendingAnswer  string        `json:"pending_answer,omitempty"`
	LastScore      *int          `json:"last_score,omitempty"`
	TotalScore     int           `json:"total_score"`
	Mastered       bool          `json:"mastered"`
	WordRevealed   bool          `json:"word_revealed"`
	AnswerRevealed bool          `json:"answer_revealed"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// NewIdleSession returns an empty session on the given tier
func NewIdleSession(userID int64, tier Tier) *PracticeSession {
	return &PracticeSession{
		UserID:    userID,
		Tier:      tier,
		State:     StateIdle,
		UpdatedAt: time.Now(),
	}
}

// Clone returns a copy that can be modified without touching s.
// Example is shared; it is treated as immutable.
func (s *PracticeSession) Clone() *PracticeSession {
	c := *s
	if s.LastScore != nil {
		score := *s.LastScore
		c.LastScore = &score
	}
	return &c
}

// Empty reports whether the session has nothing to practice
func (s *PracticeSession) Empty() bool {
	return s.Example == nil
}
