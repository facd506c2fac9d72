package actions

import (
	"sync"
	"testing"
	"time"

	"moderation-bot/model"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := Init(":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func testAction(userID string, expiresAt time.Time) model.Action {
	return model.Action{
		Kind:      model.KindTempBan,
		GuildID:   "guild-1",
		UserID:    userID,
		ActorID:   "mod-1",
		Reason:    "spamming",
		State:     model.StateActive,
		CreatedAt: time.Now().Unix(),
		ExpiresAt: expiresAt.Unix(),
	}
}

func TestCreateAndGetByID(t *testing.T) {
	db := newTestDB(t)
	expires := time.Now().Add(time.Hour)

	created, supersededID, err := Create(db, testAction("user-1", expires), false)
	require.NoError(t, err)
	assert.Zero(t, supersededID)
	assert.NotZero(t, created.ID)

	got, err := GetByID(db, created.ID)
	require.NoError(t, err)
	assert.Equal(t, model.KindTempBan, got.Kind)
	assert.Equal(t, "user-1", got.UserID)
	assert.Equal(t, "spamming", got.Reason)
	assert.Equal(t, model.StateActive, got.State)
	assert.Equal(t, expires.Unix(), got.ExpiresAt)
	assert.Zero(t, got.AttemptCount)
	assert.Zero(t, got.LastAttemptAt)
}

func TestGetByIDNotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := GetByID(db, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateDuplicateActiveConflicts(t *testing.T) {
	db := newTestDB(t)
	expires := time.Now().Add(time.Hour)

	_, _, err := Create(db, testAction("user-1", expires), false)
	require.NoError(t, err)

	_, _, err = Create(db, testAction("user-1", expires), false)
	assert.ErrorIs(t, err, ErrConflict)

	// A different kind for the same user is not a conflict.
	other := testAction("user-1", expires)
	other.Kind = model.KindTimedWarn
	_, _, err = Create(db, other, false)
	assert.NoError(t, err)
}

func TestCreateAfterTerminalDoesNotConflict(t *testing.T) {
	db := newTestDB(t)
	expires := time.Now().Add(time.Hour)

	first, _, err := Create(db, testAction("user-1", expires), false)
	require.NoError(t, err)
	require.NoError(t, MarkReversed(db, first.ID, time.Now()))

	// The uniqueness constraint only covers active records.
	_, _, err = Create(db, testAction("user-1", expires), false)
	assert.NoError(t, err)
}

func TestCreateSupersede(t *testing.T) {
	db := newTestDB(t)
	expires := time.Now().Add(time.Hour)

	prior, _, err := Create(db, testAction("user-1", expires), false)
	require.NoError(t, err)

	replacement, supersededID, err := Create(db, testAction("user-1", expires.Add(time.Hour)), true)
	require.NoError(t, err)
	assert.Equal(t, prior.ID, supersededID)
	assert.NotEqual(t, prior.ID, replacement.ID)

	old, err := GetByID(db, prior.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StateCancelled, old.State)

	current, err := GetActiveByTriple(db, "guild-1", "user-1", model.KindTempBan)
	require.NoError(t, err)
	assert.Equal(t, replacement.ID, current.ID)
}

func TestCreateSupersedeWithoutPrior(t *testing.T) {
	db := newTestDB(t)

	created, supersededID, err := Create(db, testAction("user-1", time.Now().Add(time.Hour)), true)
	require.NoError(t, err)
	assert.Zero(t, supersededID)
	assert.NotZero(t, created.ID)
}

func TestMarkReversedIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	at := time.Now()

	created, _, err := Create(db, testAction("user-1", at), false)
	require.NoError(t, err)

	require.NoError(t, MarkReversed(db, created.ID, at))
	assert.ErrorIs(t, MarkReversed(db, created.ID, at), ErrAlreadyTerminal)

	got, err := GetByID(db, created.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StateReversed, got.State)
	assert.Equal(t, 1, got.AttemptCount)
	assert.Equal(t, at.Unix(), got.LastAttemptAt)
}

func TestTransitionNotFound(t *testing.T) {
	db := newTestDB(t)

	assert.ErrorIs(t, MarkReversed(db, 42, time.Now()), ErrNotFound)
	assert.ErrorIs(t, Cancel(db, 42), ErrNotFound)
}

func TestCancelBlocksLaterTransitions(t *testing.T) {
	db := newTestDB(t)

	created, _, err := Create(db, testAction("user-1", time.Now()), false)
	require.NoError(t, err)

	require.NoError(t, Cancel(db, created.ID))
	assert.ErrorIs(t, MarkReversed(db, created.ID, time.Now()), ErrAlreadyTerminal)
	assert.ErrorIs(t, MarkReversalFailed(db, created.ID, time.Now()), ErrAlreadyTerminal)

	got, err := GetByID(db, created.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StateCancelled, got.State)
	// Cancellation is not a reversal attempt.
	assert.Zero(t, got.AttemptCount)
}

func TestRecordAttemptKeepsActionActive(t *testing.T) {
	db := newTestDB(t)
	at := time.Now()

	created, _, err := Create(db, testAction("user-1", at), false)
	require.NoError(t, err)

	require.NoError(t, RecordAttempt(db, created.ID, at))
	require.NoError(t, RecordAttempt(db, created.ID, at.Add(time.Minute)))

	got, err := GetByID(db, created.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StateActive, got.State)
	assert.Equal(t, 2, got.AttemptCount)
	assert.Equal(t, at.Add(time.Minute).Unix(), got.LastAttemptAt)
}

func TestDueActive(t *testing.T) {
	db := newTestDB(t)
	now := time.Now()

	late, _, err := Create(db, testAction("user-late", now.Add(-time.Minute)), false)
	require.NoError(t, err)
	earliest, _, err := Create(db, testAction("user-early", now.Add(-time.Hour)), false)
	require.NoError(t, err)
	onTheDot, _, err := Create(db, testAction("user-exact", now), false)
	require.NoError(t, err)
	_, _, err = Create(db, testAction("user-future", now.Add(time.Hour)), false)
	require.NoError(t, err)

	reversed, _, err := Create(db, testAction("user-reversed", now.Add(-2*time.Hour)), false)
	require.NoError(t, err)
	require.NoError(t, MarkReversed(db, reversed.ID, now))
	cancelled, _, err := Create(db, testAction("user-cancelled", now.Add(-2*time.Hour)), false)
	require.NoError(t, err)
	require.NoError(t, Cancel(db, cancelled.ID))

	due, err := DueActive(db, now, 50)
	require.NoError(t, err)
	require.Len(t, due, 3)
	// Earliest due first; expiry exactly at the cutoff is included.
	assert.Equal(t, earliest.ID, due[0].ID)
	assert.Equal(t, late.ID, due[1].ID)
	assert.Equal(t, onTheDot.ID, due[2].ID)

	capped, err := DueActive(db, now, 2)
	require.NoError(t, err)
	require.Len(t, capped, 2)
	assert.Equal(t, earliest.ID, capped[0].ID)
}

func TestConcurrentMarkReversedSingleWinner(t *testing.T) {
	db := newTestDB(t)

	created, _, err := Create(db, testAction("user-1", time.Now()), false)
	require.NoError(t, err)

	const workers = 8
	results := make([]error, workers)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(w int) {
			defer wg.Done()
			results[w] = MarkReversed(db, created.ID, time.Now())
		}(w)
	}
	wg.Wait()

	var wins int
	for _, err := range results {
		if err == nil {
			wins++
		} else {
			assert.ErrorIs(t, err, ErrAlreadyTerminal)
		}
	}
	assert.Equal(t, 1, wins)

	got, err := GetByID(db, created.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StateReversed, got.State)
	assert.Equal(t, 1, got.AttemptCount)
}

func TestListOrdering(t *testing.T) {
	db := newTestDB(t)
	now := time.Now()

	older := testAction("user-1", now.Add(time.Hour))
	older.CreatedAt = now.Add(-time.Hour).Unix()
	first, _, err := Create(db, older, false)
	require.NoError(t, err)
	require.NoError(t, Cancel(db, first.ID))

	newer := testAction("user-1", now.Add(time.Hour))
	newer.CreatedAt = now.Unix()
	second, _, err := Create(db, newer, false)
	require.NoError(t, err)

	records, err := ListByUser(db, "guild-1", "user-1")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, second.ID, records[0].ID)
	assert.Equal(t, first.ID, records[1].ID)

	byActor, err := ListByActor(db, "guild-1", "mod-1")
	require.NoError(t, err)
	assert.Len(t, byActor, 2)

	byGuild, err := ListByGuild(db, "guild-1")
	require.NoError(t, err)
	assert.Len(t, byGuild, 2)
	assert.Empty(t, mustList(t, db, "guild-2"))
}

func mustList(t *testing.T, db *sqlx.DB, guildID string) []model.Action {
	t.Helper()
	records, err := ListByGuild(db, guildID)
	require.NoError(t, err)
	return records
}

func TestActorStatsAndCountByState(t *testing.T) {
	db := newTestDB(t)
	now := time.Now()

	for _, userID := range []string{"u1", "u2", "u3"} {
		a := testAction(userID, now.Add(time.Hour))
		created, _, err := Create(db, a, false)
		require.NoError(t, err)
		if userID == "u3" {
			require.NoError(t, MarkReversed(db, created.ID, now))
		}
	}
	other := testAction("u4", now.Add(time.Hour))
	other.ActorID = "mod-2"
	_, _, err := Create(db, other, false)
	require.NoError(t, err)

	stats, err := ActorStats(db, "guild-1", now.Add(-time.Minute))
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"mod-1": 3, "mod-2": 1}, stats)

	counts, err := CountByState(db, "guild-1", now.Add(-time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 3, counts[model.StateActive])
	assert.Equal(t, 1, counts[model.StateReversed])
}
