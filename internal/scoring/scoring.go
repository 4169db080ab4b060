// Package scoring grades a completed exam session. It is a pure function of
// the question set and the final capture snapshot: visitation order, timing,
// and persistence are all outside its scope.
package scoring

import (
	"errors"
	"sort"

	"github.com/careprep/careprep-backend/internal/model"
	"github.com/google/uuid"
)

// ErrEmptyQuestionSet is returned when Score is invoked with no questions.
// Sessions are never created for empty pools, so hitting this is a
// programming error upstream, not a zero score.
var ErrEmptyQuestionSet = errors.New("scoring: empty question set")

// Outcome is the graded result of a single question.
type Outcome struct {
	QuestionID  uuid.UUID
	ChosenLabel *string
	IsCorrect   bool
}

// Summary aggregates the outcomes of one session.
type Summary struct {
	TotalQuestions int
	CorrectCount   int
	IncorrectCount int
	ScorePercent   float64
	Passed         bool
}

// Score grades every question in the set against the capture snapshot.
// Snapshot keys are question ID strings; questions missing from the snapshot
// are unanswered and always count as incorrect — they are never dropped from
// the denominator. A captured label that matches no option is likewise
// incorrect; capture never validates, scoring does.
func Score(questions []model.Question, snapshot map[string]string, passThreshold float64) ([]Outcome, Summary, error) {
	if len(questions) == 0 {
		return nil, Summary{}, ErrEmptyQuestionSet
	}

	outcomes := make([]Outcome, 0, len(questions))
	correct := 0

	for i := range questions {
		q := &questions[i]
		out := Outcome{QuestionID: q.ID}

		if label, ok := snapshot[q.ID.String()]; ok && label != "" {
			chosen := label
			out.ChosenLabel = &chosen
			out.IsCorrect = model.ValidOptionLabel(label) && label == q.CorrectOption
		}

		if out.IsCorrect {
			correct++
		}
		outcomes = append(outcomes, out)
	}

	total := len(questions)
	score := 100 * float64(correct) / float64(total)

	summary := Summary{
		TotalQuestions: total,
		CorrectCount:   correct,
		IncorrectCount: total - correct,
		ScorePercent:   score,
		Passed:         score >= passThreshold,
	}

	return outcomes, summary, nil
}

// Breakdown computes the per-category performance split from review rows.
// Categories are free-text labels compared by exact string match; questions
// without a category land in the "" bucket. Buckets are sorted by name with
// the uncategorized bucket last.
func Breakdown(items []model.ReviewItem) []model.CategoryStat {
	byCategory := make(map[string]*model.CategoryStat)

	for i := range items {
		cat := ""
		if items[i].Category != nil {
			cat = *items[i].Category
		}
		stat, ok := byCategory[cat]
		if !ok {
			stat = &model.CategoryStat{Category: cat}
			byCategory[cat] = stat
		}
		stat.Total++
		if items[i].IsCorrect {
			stat.Correct++
		}
	}

	stats := make([]model.CategoryStat, 0, len(byCategory))
	for _, s := range byCategory {
		stats = append(stats, *s)
	}
	sort.Slice(stats, func(i, j int) bool {
		if (stats[i].Category == "") != (stats[j].Category == "") {
			return stats[j].Category == ""
		}
		return stats[i].Category < stats[j].Category
	})
	return stats
}
