package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aryan0dhankhar/wellpulse/internal/domain"
)

func TestProgressStartsAtLevelOne(t *testing.T) {
	env := newTestEnv(t)

	p, err := env.gamification.Progress(env.ctx, "nobody")
	require.NoError(t, err)
	assert.Equal(t, 1, p.Level)
	assert.Zero(t, p.TotalPoints)
	assert.Empty(t, p.Badges)
}

func TestAddPointsLevelsAndBadges(t *testing.T) {
	env := newTestEnv(t)

	p, earned, err := env.gamification.AddPoints(env.ctx, "3", domain.ActivitySurvey)
	require.NoError(t, err)
	assert.Equal(t, 50, p.TotalPoints)
	require.Len(t, earned, 1)
	assert.Equal(t, "first-survey", earned[0].ID)
	assert.Equal(t, testNow, earned[0].EarnedAt)

	_, earned, err = env.gamification.AddPoints(env.ctx, "3", domain.ActivitySurvey)
	require.NoError(t, err)
	assert.Empty(t, earned, "badges are awarded once")

	p, _, err = env.gamification.AddPoints(env.ctx, "3", domain.ActivitySurvey)
	require.NoError(t, err)
	assert.Equal(t, 150, p.TotalPoints)
	assert.Equal(t, 2, p.Level)
	assert.Len(t, p.Badges, 1)

	notes, err := env.notifications.List(env.ctx, "3")
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, domain.NotificationBadgeEarned, notes[0].Type)

	_, _, err = env.gamification.AddPoints(env.ctx, "3", "dance")
	assert.True(t, domain.IsInvalid(err))
}

func TestQuizMasterBadge(t *testing.T) {
	env := newTestEnv(t)

	var earned []domain.Badge
	for i := 0; i < 5; i++ {
		var err error
		_, earned, err = env.gamification.AddPoints(env.ctx, "3", domain.ActivityQuiz)
		require.NoError(t, err)
	}
	require.Len(t, earned, 1)
	assert.Equal(t, "quiz-master", earned[0].ID)
}

func TestLeaderboard(t *testing.T) {
	env := newTestEnv(t)

	for _, u := range []string{"b", "a", "c"} {
		_, _, err := env.gamification.AddPoints(env.ctx, u, domain.ActivitySurvey)
		require.NoError(t, err)
	}
	_, _, err := env.gamification.AddPoints(env.ctx, "c", domain.ActivityVideo)
	require.NoError(t, err)

	board, err := env.gamification.Leaderboard(env.ctx, 2)
	require.NoError(t, err)
	require.Len(t, board, 2)
	assert.Equal(t, domain.LeaderboardEntry{UserID: "c", Points: 80, Level: 1, Rank: 1}, board[0])
	assert.Equal(t, "a", board[1].UserID)
	assert.Equal(t, 2, board[1].Rank)
}
