package sessions

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vocabdrill/internal/models"
)

type store interface {
	Get(ctx context.Context, userID int64) (*models.PracticeSession, error)
	Save(ctx context.Context, session *models.PracticeSession) error
	Delete(ctx context.Context, userID int64) error
}

func loadedSession(userID int64) *models.PracticeSession {
	score := 80
	s := models.NewIdleSession(userID, models.Tier1000)
	s.State = models.StateAnswered
	s.InstanceID = "instance-1"
	s.Example = &models.Example{ID: 7, Word: "apple", Difficulty: models.Tier1000, TargetText: "I like apples"}
	s.LastScore = &score
	s.TotalScore = 180
	return s
}

func exerciseStore(t *testing.T, st store) {
	t.Helper()
	ctx := context.Background()

	got, err := st.Get(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, st.Save(ctx, loadedSession(1)))

	got, err = st.Get(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, models.StateAnswered, got.State)
	assert.Equal(t, "instance-1", got.InstanceID)
	require.NotNil(t, got.LastScore)
	assert.Equal(t, 80, *got.LastScore)
	assert.Equal(t, "I like apples", got.Example.TargetText)
	assert.Equal(t, models.Tier1000, got.Example.Difficulty)

	other, err := st.Get(ctx, 2)
	require.NoError(t, err)
	assert.Nil(t, other)

	require.NoError(t, st.Delete(ctx, 1))
	got, err = st.Get(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, got)

	// deleting a missing session is not an error
	require.NoError(t, st.Delete(ctx, 1))
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	s := loadedSession(1)
	require.NoError(t, st.Save(ctx, s))
	*s.LastScore = 0
	s.State = models.StateIdle

	got, err := st.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 80, *got.LastScore)
	assert.Equal(t, models.StateAnswered, got.State)

	got.TotalScore = 1
	again, err := st.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 180, again.TotalScore)
}

func TestMemoryStore_Sweep(t *testing.T) {
	st := NewMemoryStore()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	st.now = func() time.Time { return now }
	ctx := context.Background()

	stale := loadedSession(1)
	stale.UpdatedAt = now.Add(-3 * time.Hour)
	fresh := loadedSession(2)
	fresh.UpdatedAt = now.Add(-time.Minute)
	require.NoError(t, st.Save(ctx, stale))
	require.NoError(t, st.Save(ctx, fresh))

	assert.Equal(t, 1, st.Sweep(2*time.Hour))

	gone, err := st.Get(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, gone)

	got, err := st.Get(ctx, 2)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Zero(t, st.Sweep(2*time.Hour))
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	st, err := NewRedisStore(context.Background(), RedisOptions{Addr: addr, DB: 15, IdleTTL: time.Minute})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = st.Delete(context.Background(), 1)
		_ = st.Close()
	})

	exerciseStore(t, st)

	require.NoError(t, st.Save(context.Background(), loadedSession(1)))
	ttl, err := st.rdb.TTL(context.Background(), sessionKey(1)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, time.Minute)
}
