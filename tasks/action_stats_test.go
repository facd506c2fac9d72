package tasks

import (
	"testing"
	"time"

	"moderation-bot/model"
	actions_db "moderation-bot/utils/database/actions"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateActionStatsEmbed(t *testing.T) {
	db, err := actions_db.Init(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	now := time.Now()
	for i, userID := range []string{"u1", "u2"} {
		actorID := "mod-1"
		if i == 1 {
			actorID = "mod-2"
		}
		created, _, err := actions_db.Create(db, model.Action{
			Kind: model.KindTempBan, GuildID: "guild-1", UserID: userID, ActorID: actorID,
			State: model.StateActive, CreatedAt: now.Unix(), ExpiresAt: now.Add(time.Hour).Unix(),
		}, false)
		require.NoError(t, err)
		if i == 1 {
			require.NoError(t, actions_db.MarkReversed(db, created.ID, now))
		}
	}

	embed, err := GenerateActionStatsEmbed(db, "guild-1", 24*time.Hour)
	require.NoError(t, err)

	assert.Equal(t, "Moderation report", embed.Title)
	assert.Contains(t, embed.Description, "**Total: 2**")
	assert.Contains(t, embed.Description, "active: 1")
	assert.Contains(t, embed.Description, "reversed: 1")
	assert.Contains(t, embed.Description, "<@mod-1>: 1")
	assert.Contains(t, embed.Description, "<@mod-2>: 1")
}

func TestGenerateActionStatsEmbedRespectsWindow(t *testing.T) {
	db, err := actions_db.Init(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	old := time.Now().Add(-48 * time.Hour)
	created, _, err := actions_db.Create(db, model.Action{
		Kind: model.KindTempBan, GuildID: "guild-1", UserID: "u1", ActorID: "mod-1",
		State: model.StateActive, CreatedAt: old.Unix(), ExpiresAt: old.Add(time.Hour).Unix(),
	}, false)
	require.NoError(t, err)
	require.NoError(t, actions_db.Cancel(db, created.ID))

	embed, err := GenerateActionStatsEmbed(db, "guild-1", 24*time.Hour)
	require.NoError(t, err)
	assert.Contains(t, embed.Description, "**Total: 0**")
}
