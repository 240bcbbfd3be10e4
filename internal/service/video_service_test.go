package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aryan0dhankhar/wellpulse/internal/domain"
)

func TestMarkWatchedAwardsPointsOnce(t *testing.T) {
	env := newTestEnv(t)

	p, err := env.videos.MarkWatched(env.ctx, "3", "vid-1")
	require.NoError(t, err)
	assert.True(t, p.Completed)
	assert.Equal(t, testNow, p.WatchedAt)

	env.advance(day)
	p, err = env.videos.MarkWatched(env.ctx, "3", "vid-1")
	require.NoError(t, err)
	assert.Equal(t, testNow, p.WatchedAt, "first watch time is kept")

	progress, err := env.gamification.Progress(env.ctx, "3")
	require.NoError(t, err)
	assert.Equal(t, 30, progress.TotalPoints)
	assert.Equal(t, 1, progress.VideosWatched)
}

func TestMarkWatchedInactiveVideo(t *testing.T) {
	env := newTestEnv(t)

	require.NoError(t, env.videos.Delete(env.ctx, "vid-3"))
	_, err := env.videos.MarkWatched(env.ctx, "3", "vid-3")
	assert.True(t, domain.IsNotFound(err))

	active, err := env.videos.ListActive(env.ctx)
	require.NoError(t, err)
	assert.Len(t, active, 2)
}

func TestSubmitQuiz(t *testing.T) {
	env := newTestEnv(t)

	failed, err := env.videos.SubmitQuiz(env.ctx, "3", "quiz-1", []int{1})
	require.NoError(t, err)
	assert.Equal(t, 0, failed.Score)
	assert.False(t, failed.Passed)
	assert.Zero(t, failed.PointsEarned)

	passed, err := env.videos.SubmitQuiz(env.ctx, "3", "quiz-1", []int{0, 1})
	require.NoError(t, err)
	assert.Equal(t, 100, passed.Score)
	assert.True(t, passed.Passed)
	assert.Equal(t, 20, passed.PointsEarned)

	half, err := env.videos.SubmitQuiz(env.ctx, "3", "quiz-2", []int{0, 2})
	require.NoError(t, err)
	assert.Equal(t, 50, half.Score)
	assert.True(t, half.Passed, "passing score is inclusive")

	progress, err := env.videos.Progress(env.ctx, "3")
	require.NoError(t, err)
	require.Len(t, progress, 2)
	require.NotNil(t, progress[0].QuizScore)
	assert.Equal(t, 100, *progress[0].QuizScore)
	assert.False(t, progress[0].Completed, "a quiz does not mark the video watched")

	g, err := env.gamification.Progress(env.ctx, "3")
	require.NoError(t, err)
	assert.Equal(t, 40, g.TotalPoints)
	assert.Equal(t, 2, g.QuizzesCompleted)

	_, err = env.videos.SubmitQuiz(env.ctx, "3", "quiz-9", []int{0})
	assert.True(t, domain.IsNotFound(err))
}

func TestVideoQuizAndCategories(t *testing.T) {
	env := newTestEnv(t)

	q, err := env.videos.Quiz(env.ctx, "vid-2")
	require.NoError(t, err)
	assert.Equal(t, "quiz-2", q.ID)

	_, err = env.videos.Quiz(env.ctx, "vid-3")
	assert.True(t, domain.IsNotFound(err))

	cats, err := env.videos.Categories(env.ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Bem-estar", "Introdução", "Prevenção"}, cats)

	byCat, err := env.videos.ListByCategory(env.ctx, "Prevenção")
	require.NoError(t, err)
	require.Len(t, byCat, 1)
	assert.Equal(t, "vid-3", byCat[0].ID)
}
