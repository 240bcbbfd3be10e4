package domain

import (
	"strings"
	"time"
)

// Video is educational content; deletion flips IsActive
type Video struct {
	Base
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Duration    int    `json:"duration"` // seconds
	Thumbnail   string `json:"thumbnail"`
	Category    string `json:"category"`
	QuizID      string `json:"quizId,omitempty"`
	IsActive    bool   `json:"isActive"`
}

func (v *Video) Validate() error {
	if strings.TrimSpace(v.Title) == "" || strings.TrimSpace(v.URL) == "" {
		return Invalid("title and url are required")
	}
	if v.Duration < 0 {
		return Invalid("duration cannot be negative")
	}
	return nil
}

type QuizQuestion struct {
	ID            string   `json:"id"`
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"` // index into Options
}

type Quiz struct {
	Base
	VideoID      string         `json:"videoId"`
	Questions    []QuizQuestion `json:"questions"`
	PassingScore int            `json:"passingScore"` // percent
}

// Score returns the percentage of correct answers; missing answers count as wrong
func (q *Quiz) Score(answers []int) int {
	if len(q.Questions) == 0 {
		return 0
	}
	correct := 0
	for i, question := range q.Questions {
		if i < len(answers) && answers[i] == question.CorrectAnswer {
			correct++
		}
	}
	return correct * 100 / len(q.Questions)
}

// VideoProgress is keyed by user and video
type VideoProgress struct {
	Base
	UserID    string    `json:"userId"`
	VideoID   string    `json:"videoId"`
	WatchedAt time.Time `json:"watchedAt"`
	Completed bool      `json:"completed"`
	QuizScore *int      `json:"quizScore,omitempty"`
}

// ProgressID is the storage key for a user's progress on a video
func ProgressID(userID, videoID string) string {
	return userID + ":" + videoID
}
