package domain

import "strings"

// QuestionType decides which optional fields a question must carry
type QuestionType string

const (
	QuestionMultipleChoice QuestionType = "multiple_choice"
	QuestionScale          QuestionType = "scale"
	QuestionText           QuestionType = "text"
	QuestionYesNo          QuestionType = "yes_no"
)

// ScaleLabels caption the two ends of a scale
type ScaleLabels struct {
	Min string `json:"min"`
	Max string `json:"max"`
}

// Question lives in the question bank and is referenced by surveys by id
type Question struct {
	Base
	Text        string       `json:"text"`
	Type        QuestionType `json:"type"`
	Options     []string     `json:"options,omitempty"`
	ScaleMin    *int         `json:"scaleMin,omitempty"`
	ScaleMax    *int         `json:"scaleMax,omitempty"`
	ScaleLabels *ScaleLabels `json:"scaleLabels,omitempty"`
	Category    string       `json:"category"` // stress, satisfaction, burnout, general...
	IsActive    bool         `json:"isActive"`
}

// Validate enforces that the question's shape matches its type
func (q *Question) Validate() error {
	if strings.TrimSpace(q.Text) == "" || q.Type == "" || strings.TrimSpace(q.Category) == "" {
		return Invalid("text, type and category are required")
	}

	switch q.Type {
	case QuestionMultipleChoice:
		n := 0
		for _, o := range q.Options {
			if strings.TrimSpace(o) != "" {
				n++
			}
		}
		if n < 2 {
			return Invalid("multiple choice questions need at least 2 options")
		}
	case QuestionScale:
		if q.ScaleMin == nil || q.ScaleMax == nil {
			return Invalid("scale questions need scaleMin and scaleMax")
		}
		if *q.ScaleMin >= *q.ScaleMax {
			return Invalid("scaleMin must be lower than scaleMax")
		}
		if q.ScaleLabels == nil || q.ScaleLabels.Min == "" || q.ScaleLabels.Max == "" {
			return Invalid("scale questions need min and max labels")
		}
	case QuestionYesNo, QuestionText:
	default:
		return Invalidf("unknown question type %q", q.Type)
	}
	return nil
}
