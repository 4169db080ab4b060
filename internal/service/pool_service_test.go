package service

import (
	"context"
	"errors"
	"testing"

	"github.com/careprep/careprep-backend/internal/model"
	"github.com/google/uuid"
)

func gradePtr(g model.Grade) *model.Grade { return &g }

func makeQuestion(correct string, grade *model.Grade, courseID *uuid.UUID, active bool) model.Question {
	return model.Question{
		ID:               uuid.New(),
		Stem:             "stem",
		OptionA:          "a",
		OptionB:          "b",
		OptionC:          "c",
		OptionD:          "d",
		CorrectOption:    correct,
		TimeLimitSeconds: model.DefaultQuestionSeconds,
		Active:           active,
		Grade:            grade,
		CourseID:         courseID,
	}
}

func TestParseScope(t *testing.T) {
	courseID := uuid.New()

	tests := []struct {
		name    string
		raw     string
		want    model.Scope
		wantErr error
	}{
		{name: "empty means all", raw: "", want: model.ScopeAll},
		{name: "general", raw: "general", want: model.ScopeGeneral},
		{name: "course uuid", raw: courseID.String(), want: model.Scope(courseID.String())},
		{name: "garbage", raw: "not-a-scope", wantErr: ErrInvalidScope},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseScope(tt.raw)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ParseScope(%q) error = %v, want %v", tt.raw, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseScope(%q) error = %v", tt.raw, err)
			}
			if got != tt.want {
				t.Errorf("ParseScope(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestResolveFiltersGradeAndScope(t *testing.T) {
	courseID := uuid.New()
	otherCourse := uuid.New()

	starterGeneral := makeQuestion("A", gradePtr(model.GradeStarter), nil, true)
	anyGradeGeneral := makeQuestion("B", nil, nil, true)
	starterCourse := makeQuestion("C", gradePtr(model.GradeStarter), &courseID, true)
	midGeneral := makeQuestion("D", gradePtr(model.GradeMid), nil, true)
	inactive := makeQuestion("A", gradePtr(model.GradeStarter), nil, false)
	otherCourseQ := makeQuestion("B", nil, &otherCourse, true)

	source := &fakeQuestionSource{items: []model.Question{
		starterGeneral, anyGradeGeneral, starterCourse, midGeneral, inactive, otherCourseQ,
	}}
	svc := NewPoolService(source)

	tests := []struct {
		name    string
		grade   *model.Grade
		scope   model.Scope
		wantIDs []uuid.UUID
	}{
		{
			name:    "starter all scopes",
			grade:   gradePtr(model.GradeStarter),
			scope:   model.ScopeAll,
			wantIDs: []uuid.UUID{starterGeneral.ID, anyGradeGeneral.ID, starterCourse.ID, otherCourseQ.ID},
		},
		{
			name:    "starter general only",
			grade:   gradePtr(model.GradeStarter),
			scope:   model.ScopeGeneral,
			wantIDs: []uuid.UUID{starterGeneral.ID, anyGradeGeneral.ID},
		},
		{
			name:    "starter single course",
			grade:   gradePtr(model.GradeStarter),
			scope:   model.Scope(courseID.String()),
			wantIDs: []uuid.UUID{starterCourse.ID},
		},
		{
			name:    "mid never sees starter questions",
			grade:   gradePtr(model.GradeMid),
			scope:   model.ScopeGeneral,
			wantIDs: []uuid.UUID{anyGradeGeneral.ID, midGeneral.ID},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pool, err := svc.Resolve(context.Background(), tt.grade, tt.scope)
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if len(pool.Questions) != len(tt.wantIDs) {
				t.Fatalf("Resolve() returned %d questions, want %d", len(pool.Questions), len(tt.wantIDs))
			}
			for i, want := range tt.wantIDs {
				if pool.Questions[i].ID != want {
					t.Errorf("question[%d] = %s, want %s", i, pool.Questions[i].ID, want)
				}
			}
			if len(pool.PerQuestionSecs) != len(pool.Questions) {
				t.Errorf("PerQuestionSecs length %d, want %d", len(pool.PerQuestionSecs), len(pool.Questions))
			}
		})
	}
}

func TestResolveEmptyPoolIsNotAnError(t *testing.T) {
	svc := NewPoolService(&fakeQuestionSource{})

	pool, err := svc.Resolve(context.Background(), gradePtr(model.GradeHigher), model.ScopeAll)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if len(pool.Questions) != 0 {
		t.Errorf("Resolve() returned %d questions, want 0", len(pool.Questions))
	}
	if pool.AvgSeconds != 0 {
		t.Errorf("AvgSeconds = %f, want 0", pool.AvgSeconds)
	}
}

func TestShuffleForSessionIsDeterministic(t *testing.T) {
	source := &fakeQuestionSource{}
	for i := 0; i < 12; i++ {
		source.items = append(source.items, makeQuestion("A", nil, nil, true))
	}
	svc := NewPoolService(source)
	sessionID := uuid.New()

	first, err := svc.Resolve(context.Background(), nil, model.ScopeAll)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	second, err := svc.Resolve(context.Background(), nil, model.ScopeAll)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	svc.ShuffleForSession(first, sessionID)
	svc.ShuffleForSession(second, sessionID)

	for i := range first.Questions {
		if first.Questions[i].ID != second.Questions[i].ID {
			t.Fatalf("order diverged at %d for the same session", i)
		}
		if first.PerQuestionSecs[i] != first.Questions[i].TimeLimitSeconds {
			t.Errorf("PerQuestionSecs[%d] lost lockstep with its question", i)
		}
	}
}
