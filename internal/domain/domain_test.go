package domain

import (
	"errors"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSurveyStatusIsOneDirectional(t *testing.T) {
	assert.True(t, SurveyDraft.CanMoveTo(SurveyActive))
	assert.True(t, SurveyDraft.CanMoveTo(SurveyClosed))
	assert.True(t, SurveyActive.CanMoveTo(SurveyClosed))
	assert.True(t, SurveyActive.CanMoveTo(SurveyActive))
	assert.False(t, SurveyActive.CanMoveTo(SurveyDraft))
	assert.False(t, SurveyClosed.CanMoveTo(SurveyActive))
	assert.False(t, SurveyDraft.CanMoveTo("archived"))
}

func TestBusinessHours(t *testing.T) {
	bh := BusinessHours{Start: "09:00", End: "18:00", Timezone: "America/Sao_Paulo"}
	require.NoError(t, bh.Validate())

	// 12:00 UTC is 09:00 in Sao Paulo (UTC-3, no DST since 2019)
	assert.True(t, bh.Contains(time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)))
	assert.True(t, bh.Contains(time.Date(2025, 3, 10, 21, 0, 0, 0, time.UTC)))
	assert.False(t, bh.Contains(time.Date(2025, 3, 10, 11, 59, 0, 0, time.UTC)))
	assert.False(t, bh.Contains(time.Date(2025, 3, 10, 21, 1, 0, 0, time.UTC)))

	unpadded := BusinessHours{Start: "9:00", End: "18:00", Timezone: "UTC"}
	require.NoError(t, unpadded.Validate())
	assert.True(t, unpadded.Contains(time.Date(2025, 3, 10, 10, 30, 0, 0, time.UTC)))
	assert.True(t, unpadded.Contains(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)))
	assert.False(t, unpadded.Contains(time.Date(2025, 3, 10, 8, 59, 0, 0, time.UTC)))
	assert.Equal(t, "09:00", unpadded.Normalized().Start)

	assert.Error(t, BusinessHours{Start: "9h", End: "18:00", Timezone: "UTC"}.Validate())
	assert.Error(t, BusinessHours{Start: "18:00", End: "09:00", Timezone: "UTC"}.Validate())
	assert.Error(t, BusinessHours{Start: "09:00", End: "18:00", Timezone: "Mars/Olympus"}.Validate())
	assert.Error(t, BusinessHours{Start: "09:00", End: "18:00"}.Validate())
}

func TestLevelFor(t *testing.T) {
	cases := map[int]int{0: 1, 100: 1, 101: 2, 250: 2, 251: 3, 500: 3, 501: 4, 1000: 4, 1001: 5, 2000: 5, 2001: 6, 99999: 6}
	for points, want := range cases {
		assert.Equal(t, want, LevelFor(points).Number, "points=%d", points)
	}
}

func TestQuizScore(t *testing.T) {
	q := Quiz{Questions: []QuizQuestion{{CorrectAnswer: 0}, {CorrectAnswer: 2}, {CorrectAnswer: 1}, {CorrectAnswer: 1}}}
	assert.Equal(t, 100, q.Score([]int{0, 2, 1, 1}))
	assert.Equal(t, 50, q.Score([]int{0, 2}))
	assert.Equal(t, 0, (&Quiz{}).Score([]int{1}))
}

func TestEmployeeImportValidate(t *testing.T) {
	assert.NoError(t, EmployeeImport{Name: "Ana", Email: "ana@x.com", Sector: "TI", Position: "Dev"}.Validate())
	assert.Error(t, EmployeeImport{Name: "Ana", Email: "ana@x.com", Sector: "TI"}.Validate())
	assert.Error(t, EmployeeImport{Name: "Ana", Email: "ana at x", Sector: "TI", Position: "Dev"}.Validate())
	assert.True(t, SameEmail("Ana@X.com ", "ana@x.com"))
}

func TestErrorCodes(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", NotFound("employee"))
	assert.True(t, IsNotFound(err))
	assert.Equal(t, "employee not found", errors.Unwrap(err).Error())
	assert.Equal(t, ErrCodeUnauthorized, CodeOf(ErrInvalidCredentials))
	assert.Equal(t, ErrorCode(""), CodeOf(errors.New("plain")))
}

func TestNewID(t *testing.T) {
	now := time.UnixMilli(1700000000123)
	id := NewID(now)
	assert.Regexp(t, regexp.MustCompile(`^1700000000123-[0-9a-f]{9}$`), id)
	assert.NotEqual(t, id, NewID(now))
}

func TestAnswerConversions(t *testing.T) {
	n, ok := Answer{Value: "7"}.Number()
	assert.True(t, ok)
	assert.Equal(t, 7.0, n)

	n, ok = Answer{Value: 4.5}.Number()
	assert.True(t, ok)
	assert.Equal(t, 4.5, n)

	_, ok = Answer{Value: "muito"}.Number()
	assert.False(t, ok)

	yes, ok := Answer{Value: "Sim"}.YesNo()
	assert.True(t, ok)
	assert.True(t, yes)

	yes, ok = Answer{Value: "não"}.YesNo()
	assert.True(t, ok)
	assert.False(t, yes)

	_, ok = Answer{Value: 3.0}.YesNo()
	assert.False(t, ok)
}
