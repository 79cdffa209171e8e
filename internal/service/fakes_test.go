package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"vocabdrill/internal/models"
	"vocabdrill/internal/repository"
)

type fakeContent struct {
	examples []models.Example
	err      error
	calls    int
}

func (f *fakeContent) FindByDifficulty(_ context.Context, tier models.Tier) ([]models.Example, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := []models.Example{}
	for _, e := range f.examples {
		if e.Difficulty == tier {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeContent) FindByWordSubstring(_ context.Context, q string) ([]models.Example, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := []models.Example{}
	for _, e := range f.examples {
		if strings.Contains(strings.ToLower(e.Word), strings.ToLower(q)) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeContent) get(id int64) *models.Example {
	for i := range f.examples {
		if f.examples[i].ID == id {
			e := f.examples[i]
			return &e
		}
	}
	return nil
}

type progressKey struct {
	userID    int64
	exampleID int64
}

// fakeProgress mirrors the accumulate, enroll and merge semantics of the
// SQL repository in memory.
type fakeProgress struct {
	mu        sync.Mutex
	content   *fakeContent
	records   map[progressKey]int
	answers   map[progressKey]string
	recordErr error
	readErr   error
}

func newFakeProgress(content *fakeContent) *fakeProgress {
	return &fakeProgress{
		content: content,
		records: make(map[progressKey]int),
		answers: make(map[progressKey]string),
	}
}

func (f *fakeProgress) GetUnmastered(_ context.Context, userID int64, tier models.Tier, limit int) ([]models.ProgressRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return nil, f.readErr
	}
	out := []models.ProgressRecord{}
	for key, score := range f.records {
		if key.userID != userID || score >= models.MasteryThreshold {
			continue
		}
		e := f.content.get(key.exampleID)
		if e == nil || e.Difficulty != tier {
			continue
		}
		out = append(out, models.ProgressRecord{UserID: userID, ExampleID: key.exampleID, Score: score, Example: e})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score < out[j].Score
		}
		return out[i].ExampleID < out[j].ExampleID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeProgress) RecordAnswer(_ context.Context, userID, exampleID int64, answerID string, delta int) (*models.ProgressRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.recordErr != nil {
		return nil, f.recordErr
	}
	key := progressKey{userID, exampleID}
	if f.answers[key] != answerID {
		f.records[key] += delta
		f.answers[key] = answerID
	}
	return &models.ProgressRecord{UserID: userID, ExampleID: exampleID, Score: f.records[key]}, nil
}

func (f *fakeProgress) Enroll(_ context.Context, userID int64, exampleIDs []int64) ([]models.ProgressRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.recordErr != nil {
		return nil, f.recordErr
	}
	out := []models.ProgressRecord{}
	for _, id := range exampleIDs {
		if f.content.get(id) == nil {
			continue
		}
		key := progressKey{userID, id}
		if _, ok := f.records[key]; !ok {
			f.records[key] = 0
		}
		out = append(out, models.ProgressRecord{UserID: userID, ExampleID: id, Score: f.records[key]})
	}
	return out, nil
}

func (f *fakeProgress) SummaryByTier(_ context.Context, userID int64) ([]models.TierSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return nil, f.readErr
	}
	out := make([]models.TierSummary, 0, len(models.AllTiers))
	for _, tier := range models.AllTiers {
		s := models.TierSummary{Tier: tier}
		for _, e := range f.content.examples {
			if e.Difficulty != tier {
				continue
			}
			s.Available++
			if score, ok := f.records[progressKey{userID, e.ID}]; ok {
				s.Enrolled++
				if score >= models.MasteryThreshold {
					s.Mastered++
				}
			}
		}
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeProgress) Export(_ context.Context) ([]repository.ProgressEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return nil, f.readErr
	}
	out := []repository.ProgressEntry{}
	for key, score := range f.records {
		e := f.content.get(key.exampleID)
		out = append(out, repository.ProgressEntry{
			Username:   usernameFor(key.userID),
			Word:       e.Word,
			Difficulty: int(e.Difficulty),
			Definition: e.Definition,
			SourceText: e.SourceText,
			Score:      score,
		})
	}
	return out, nil
}

func (f *fakeProgress) Merge(_ context.Context, userID, exampleID int64, score int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.recordErr != nil {
		return f.recordErr
	}
	key := progressKey{userID, exampleID}
	if current, ok := f.records[key]; !ok || score > current {
		f.records[key] = score
	}
	return nil
}

func (f *fakeProgress) score(userID, exampleID int64) (int, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.records[progressKey{userID, exampleID}]
	return s, ok
}

func (f *fakeProgress) FindExampleID(_ context.Context, word string, tier models.Tier, definition, sourceText string) (int64, error) {
	for _, e := range f.content.examples {
		if e.Word == word && e.Difficulty == tier && e.Definition == definition && e.SourceText == sourceText {
			return e.ID, nil
		}
	}
	return 0, nil
}

type fakeSessions struct {
	mu       sync.Mutex
	sessions map[int64]*models.PracticeSession
	saveErr  error
	saves    int
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{sessions: make(map[int64]*models.PracticeSession)}
}

func (f *fakeSessions) Get(_ context.Context, userID int64) (*models.PracticeSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[userID]
	if !ok {
		return nil, nil
	}
	return s.Clone(), nil
}

func (f *fakeSessions) Save(_ context.Context, session *models.PracticeSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saves++
	f.sessions[session.UserID] = session.Clone()
	return nil
}

func (f *fakeSessions) Delete(_ context.Context, userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, userID)
	return nil
}

type fakeUsers struct {
	users     map[string]*models.User
	createErr error
	nextID    int64
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{users: make(map[string]*models.User)}
}

func (f *fakeUsers) Create(_ context.Context, username, email, passwordHash string) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.nextID++
	u := &models.User{ID: f.nextID, Username: username, Email: email, PasswordHash: passwordHash}
	f.users[username] = u
	return u, nil
}

func (f *fakeUsers) GetByUsername(_ context.Context, username string) (*models.User, error) {
	return f.users[username], nil
}

func usernameFor(userID int64) string {
	return fmt.Sprintf("user%d", userID)
}

func sampleExamples() []models.Example {
	return []models.Example{
		{ID: 1, Word: "apple", WordType: "noun", Definition: "a round fruit", Difficulty: models.Tier1000,
			SourceText: "Me gustan las manzanas", TargetText: "I like apples"},
		{ID: 2, Word: "weather", WordType: "noun", Definition: "the state of the atmosphere", Difficulty: models.Tier1000,
			SourceText: "Hace buen tiempo hoy", TargetText: "The weather is nice today"},
		{ID: 3, Word: "the", WordType: "article", Definition: "definite article", Difficulty: models.Tier100,
			SourceText: "El perro", TargetText: "The dog"},
		{ID: 4, Word: "pineapple", WordType: "noun", Definition: "a tropical fruit", Difficulty: models.Tier3000,
			SourceText: "Una piña", TargetText: "A pineapple"},
	}
}

// firstPick makes selection deterministic
func firstPick(int) int { return 0 }
