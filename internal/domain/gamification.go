package domain

import "time"

// Activity is something an employee does that earns points
type Activity string

const (
	ActivitySurvey Activity = "survey"
	ActivityVideo  Activity = "video"
	ActivityQuiz   Activity = "quiz"
)

// Points awarded per activity
func (a Activity) Points() int {
	switch a {
	case ActivitySurvey:
		return 50
	case ActivityVideo:
		return 30
	case ActivityQuiz:
		return 20
	}
	return 0
}

type Level struct {
	Number    int    `json:"level"`
	Title     string `json:"title"`
	MinPoints int    `json:"minPoints"`
	MaxPoints int    `json:"maxPoints"` // -1 for the open-ended top level
}

var Levels = []Level{
	{Number: 1, Title: "Iniciante", MinPoints: 0, MaxPoints: 100},
	{Number: 2, Title: "Aprendiz", MinPoints: 101, MaxPoints: 250},
	{Number: 3, Title: "Praticante", MinPoints: 251, MaxPoints: 500},
	{Number: 4, Title: "Especialista", MinPoints: 501, MaxPoints: 1000},
	{Number: 5, Title: "Mestre", MinPoints: 1001, MaxPoints: 2000},
	{Number: 6, Title: "Lenda", MinPoints: 2001, MaxPoints: -1},
}

// LevelFor maps a point total to its level
func LevelFor(points int) Level {
	for _, l := range Levels {
		if points <= l.MaxPoints || l.MaxPoints < 0 {
			return l
		}
	}
	return Levels[len(Levels)-1]
}

type Badge struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	EarnedAt    time.Time `json:"earnedAt"`
}

// GamificationProgress is stored with ID equal to UserID
type GamificationProgress struct {
	Base
	UserID           string  `json:"userId"`
	TotalPoints      int     `json:"totalPoints"`
	VideosWatched    int     `json:"videosWatched"`
	QuizzesCompleted int     `json:"quizzesCompleted"`
	SurveysCompleted int     `json:"surveysCompleted"`
	Level            int     `json:"level"`
	Badges           []Badge `json:"badges"`
}

func (g *GamificationProgress) HasBadge(id string) bool {
	for _, b := range g.Badges {
		if b.ID == id {
			return true
		}
	}
	return false
}

type LeaderboardEntry struct {
	UserID string `json:"userId"`
	Points int    `json:"points"`
	Level  int    `json:"level"`
	Rank   int    `json:"rank"`
}
