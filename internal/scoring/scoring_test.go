package scoring

import (
	"errors"
	"testing"

	"github.com/careprep/careprep-backend/internal/model"
	"github.com/google/uuid"
)

func strPtr(s string) *string { return &s }

func makeQuestions(correct []string, categories []string) []model.Question {
	qs := make([]model.Question, len(correct))
	for i := range correct {
		qs[i] = model.Question{
			ID:            uuid.New(),
			Stem:          "stem",
			OptionA:       "a",
			OptionB:       "b",
			OptionC:       "c",
			OptionD:       "d",
			CorrectOption: correct[i],
		}
		if categories != nil && categories[i] != "" {
			qs[i].Category = strPtr(categories[i])
		}
	}
	return qs
}

func snapshotFor(qs []model.Question, labels []string) map[string]string {
	snap := make(map[string]string)
	for i, l := range labels {
		if l == "" {
			continue
		}
		snap[qs[i].ID.String()] = l
	}
	return snap
}

func TestScore(t *testing.T) {
	tests := []struct {
		name      string
		correct   []string
		answers   []string
		threshold float64
		wantOK    int
		wantScore float64
		wantPass  bool
	}{
		{name: "all correct", correct: []string{"A", "B"}, answers: []string{"A", "B"}, threshold: 75, wantOK: 2, wantScore: 100, wantPass: true},
		{name: "all wrong", correct: []string{"A", "B"}, answers: []string{"B", "A"}, threshold: 75, wantOK: 0, wantScore: 0, wantPass: false},
		{name: "three of four with unanswered", correct: []string{"A", "B", "C", "D"}, answers: []string{"A", "B", "", "D"}, threshold: 75, wantOK: 3, wantScore: 75, wantPass: true},
		{name: "three of four with wrong", correct: []string{"A", "B", "C", "D"}, answers: []string{"A", "B", "D", "D"}, threshold: 75, wantOK: 3, wantScore: 75, wantPass: true},
		{name: "below threshold", correct: []string{"A", "B", "C", "D"}, answers: []string{"A", "B", "", ""}, threshold: 75, wantOK: 2, wantScore: 50, wantPass: false},
		{name: "nothing answered", correct: []string{"A", "B", "C"}, answers: []string{"", "", ""}, threshold: 75, wantOK: 0, wantScore: 0, wantPass: false},
		{name: "garbage label is incorrect", correct: []string{"A"}, answers: []string{"Z"}, threshold: 75, wantOK: 0, wantScore: 0, wantPass: false},
		{name: "custom threshold", correct: []string{"A", "B"}, answers: []string{"A", ""}, threshold: 50, wantOK: 1, wantScore: 50, wantPass: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			qs := makeQuestions(tc.correct, nil)
			snap := snapshotFor(qs, tc.answers)

			outcomes, sum, err := Score(qs, snap, tc.threshold)
			if err != nil {
				t.Fatalf("Score returned error: %v", err)
			}

			if len(outcomes) != len(qs) {
				t.Fatalf("outcomes = %d, want one per question (%d)", len(outcomes), len(qs))
			}
			if sum.CorrectCount != tc.wantOK {
				t.Errorf("CorrectCount = %d, want %d", sum.CorrectCount, tc.wantOK)
			}
			if sum.CorrectCount+sum.IncorrectCount != sum.TotalQuestions {
				t.Errorf("correct(%d) + incorrect(%d) != total(%d)", sum.CorrectCount, sum.IncorrectCount, sum.TotalQuestions)
			}
			if sum.ScorePercent != tc.wantScore {
				t.Errorf("ScorePercent = %v, want %v", sum.ScorePercent, tc.wantScore)
			}
			if sum.Passed != tc.wantPass {
				t.Errorf("Passed = %v, want %v", sum.Passed, tc.wantPass)
			}
			if sum.Passed != (sum.ScorePercent >= tc.threshold) {
				t.Errorf("Passed (%v) inconsistent with score %v and threshold %v", sum.Passed, sum.ScorePercent, tc.threshold)
			}
		})
	}
}

func TestScoreUnansweredOutcome(t *testing.T) {
	qs := makeQuestions([]string{"A", "C"}, nil)
	snap := map[string]string{qs[0].ID.String(): "A"}

	outcomes, _, err := Score(qs, snap, 75)
	if err != nil {
		t.Fatalf("Score returned error: %v", err)
	}

	if outcomes[0].ChosenLabel == nil || *outcomes[0].ChosenLabel != "A" {
		t.Errorf("answered outcome lost its label: %+v", outcomes[0])
	}
	if outcomes[1].ChosenLabel != nil {
		t.Errorf("unanswered outcome has label %q, want nil", *outcomes[1].ChosenLabel)
	}
	if outcomes[1].IsCorrect {
		t.Error("unanswered question scored correct")
	}
}

func TestScoreEmptySet(t *testing.T) {
	_, _, err := Score(nil, map[string]string{}, 75)
	if !errors.Is(err, ErrEmptyQuestionSet) {
		t.Fatalf("err = %v, want ErrEmptyQuestionSet", err)
	}
}

func TestBreakdown(t *testing.T) {
	qs := makeQuestions(
		[]string{"A", "A", "B", "C", "D"},
		[]string{"pharmacology", "pharmacology", "fundamentals", "", "fundamentals"},
	)

	items := []model.ReviewItem{
		{QuestionID: qs[0].ID, Category: qs[0].Category, IsCorrect: true},
		{QuestionID: qs[1].ID, Category: qs[1].Category, IsCorrect: false},
		{QuestionID: qs[2].ID, Category: qs[2].Category, IsCorrect: true},
		{QuestionID: qs[3].ID, Category: qs[3].Category, IsCorrect: true},
		{QuestionID: qs[4].ID, Category: qs[4].Category, IsCorrect: false},
	}

	stats := Breakdown(items)

	if len(stats) != 3 {
		t.Fatalf("got %d buckets, want 3: %+v", len(stats), stats)
	}

	// Sorted by name, uncategorized last.
	wantOrder := []string{"fundamentals", "pharmacology", ""}
	sumTotal, sumCorrect := 0, 0
	for i, s := range stats {
		if s.Category != wantOrder[i] {
			t.Errorf("bucket %d = %q, want %q", i, s.Category, wantOrder[i])
		}
		sumTotal += s.Total
		sumCorrect += s.Correct
	}

	if sumTotal != len(items) {
		t.Errorf("sum(total) = %d, want %d", sumTotal, len(items))
	}
	if sumCorrect != 3 {
		t.Errorf("sum(correct) = %d, want 3", sumCorrect)
	}

	byName := map[string]model.CategoryStat{}
	for _, s := range stats {
		byName[s.Category] = s
	}
	if s := byName["pharmacology"]; s.Total != 2 || s.Correct != 1 {
		t.Errorf("pharmacology = %+v, want total 2 correct 1", s)
	}
	if s := byName[""]; s.Total != 1 || s.Correct != 1 {
		t.Errorf("uncategorized = %+v, want total 1 correct 1", s)
	}
}
