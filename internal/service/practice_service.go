package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"vocabdrill/internal/logger"
	"vocabdrill/internal/models"
	"vocabdrill/internal/security"
	"vocabdrill/internal/validation"
)

// PracticeService runs the practice loop: load an example, score an answer,
// persist it, move on. Calls for one user are serialized; a call that fails
// leaves the stored session exactly as it was.
type PracticeService struct {
	selector *Selector
	progress ProgressStore
	sessions SessionStore
	locks    *userLocks
	log      *logger.Logger
	newID    func() string
	now      func() time.Time
}

// NewPracticeService creates a new practice service
func NewPracticeService(selector *Selector, progress ProgressStore, sessions SessionStore, log *logger.Logger) *PracticeService {
	if log == nil {
		log = logger.NewNop()
	}
	return &PracticeService{
		selector: selector,
		progress: progress,
		sessions: sessions,
		locks:    newUserLocks(),
		log:      log.With("component", "practice"),
		newID:    security.GenerateID,
		now:      time.Now,
	}
}

// Start begins practicing tier, replacing any current session
func (s *PracticeService) Start(ctx context.Context, userID int64, tier models.Tier) (*models.PracticeSession, error) {
	if !tier.Valid() {
		return nil, validation.ValidationError{Field: "tier", Message: "unknown difficulty tier"}
	}

	unlock := s.locks.lock(userID)
	defer unlock()

	current, err := s.current(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.load(ctx, current, tier)
}

// ChangeTier switches the session to tier and loads a new example from it
func (s *PracticeService) ChangeTier(ctx context.Context, userID int64, tier models.Tier) (*models.PracticeSession, error) {
	return s.Start(ctx, userID, tier)
}

// Current returns the user's session, or an idle session on the default tier
func (s *PracticeService) Current(ctx context.Context, userID int64) (*models.PracticeSession, error) {
	unlock := s.locks.lock(userID)
	defer unlock()

	return s.current(ctx, userID)
}

// Next discards the current example and loads another one from the same tier
func (s *PracticeService) Next(ctx context.Context, userID int64) (*models.PracticeSession, error) {
	unlock := s.locks.lock(userID)
	defer unlock()

	current, err := s.current(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.load(ctx, current, current.Tier)
}

// Submit scores answer against the loaded example and records the score.
// instanceID must name the loaded example instance. Only the first submit
// for an instance is scored; a repeat returns the answered session with
// ErrAlreadyAnswered.
func (s *PracticeService) Submit(ctx context.Context, userID int64, instanceID, answer string) (*models.PracticeSession, error) {
	if err := validation.ValidateAnswer(answer); err != nil {
		return nil, err
	}
	if strings.TrimSpace(instanceID) == "" {
		return nil, validation.ValidationError{Field: "instance_id", Message: "instance id is required"}
	}

	unlock := s.locks.lock(userID)
	defer unlock()

	current, err := s.current(ctx, userID)
	if err != nil {
		return nil, err
	}
	if current.Example == nil || current.State == models.StateIdle {
		return nil, ErrNoActiveExample
	}
	if current.InstanceID != instanceID {
		return nil, ErrStaleExample
	}
	if current.State == models.StateAnswered {
		return current, ErrAlreadyAnswered
	}

	score := Score(answer, current.Example.TargetText)
	// The instance id makes the accumulate idempotent, so a retry after a
	// failed session save does not count the answer twice.
	record, err := s.progress.RecordAnswer(ctx, userID, current.Example.ID, current.InstanceID, score)
	if err != nil {
		s.log.Error("failed to record answer", "user_id", userID, "example_id", current.Example.ID, "error", err)
		return nil, fmt.Errorf("failed to record answer: %w", err)
	}

	next := current.Clone()
	next.State = models.StateAnswered
	next.PendingAnswer = answer
	next.LastScore = &score
	next.TotalScore = record.Score
	next.Mastered = record.Mastered()
	next.UpdatedAt = s.now()

	if err := s.sessions.Save(ctx, next); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	s.log.Debug("answer scored",
		"user_id", userID,
		"example_id", current.Example.ID,
		"score", score,
		"total", record.Score)
	return next, nil
}

// RevealWord shows the key word of the loaded example
func (s *PracticeService) RevealWord(ctx context.Context, userID int64) (*models.PracticeSession, error) {
	return s.reveal(ctx, userID, func(ps *models.PracticeSession) { ps.WordRevealed = true })
}

// RevealAnswer shows the reference translation of the loaded example
func (s *PracticeService) RevealAnswer(ctx context.Context, userID int64) (*models.PracticeSession, error) {
	return s.reveal(ctx, userID, func(ps *models.PracticeSession) { ps.AnswerRevealed = true })
}

// End discards the user's session
func (s *PracticeService) End(ctx context.Context, userID int64) error {
	unlock := s.locks.lock(userID)
	defer unlock()

	if err := s.sessions.Delete(ctx, userID); err != nil {
		return fmt.Errorf("failed to end session: %w", err)
	}
	return nil
}

func (s *PracticeService) reveal(ctx context.Context, userID int64, apply func(*models.PracticeSession)) (*models.PracticeSession, error) {
	unlock := s.locks.lock(userID)
	defer unlock()

	current, err := s.current(ctx, userID)
	if err != nil {
		return nil, err
	}
	if current.Example == nil {
		return nil, ErrNoActiveExample
	}

	next := current.Clone()
	apply(next)
	next.UpdatedAt = s.now()
	if err := s.sessions.Save(ctx, next); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	return next, nil
}

// current must be called with the user's lock held
func (s *PracticeService) current(ctx context.Context, userID int64) (*models.PracticeSession, error) {
	session, err := s.sessions.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if session == nil {
		return models.NewIdleSession(userID, models.DefaultTier), nil
	}
	return session, nil
}

// load runs selection for tier and stores the resulting session. It must be
// called with the user's lock held.
func (s *PracticeService) load(ctx context.Context, current *models.PracticeSession, tier models.Tier) (*models.PracticeSession, error) {
	example, err := s.selector.SelectNext(ctx, current.UserID, tier)
	if err != nil {
		s.log.Error("failed to select example", "user_id", current.UserID, "tier", int(tier), "error", err)
		return nil, err
	}

	next := models.NewIdleSession(current.UserID, tier)
	next.UpdatedAt = s.now()
	if example != nil {
		next.State = models.StateLoaded
		next.Example = example
		next.InstanceID = s.newID()
	}

	if err := s.sessions.Save(ctx, next); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	return next, nil
}
