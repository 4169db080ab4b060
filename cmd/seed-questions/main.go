package main

import (
	"context"
	"fmt"
	"time"

	"github.com/careprep/careprep-backend/internal/config"
	"github.com/careprep/careprep-backend/internal/database"
	"github.com/careprep/careprep-backend/internal/logger"
	"github.com/careprep/careprep-backend/internal/model"
	"github.com/careprep/careprep-backend/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Seeds a small development question bank: a general set plus one course
// with its own questions, across all grades.
func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	questionRepo := repository.NewQuestionRepository(pool)

	fmt.Println("=== Seeding Development Question Bank ===")

	const courseTitle = "Fundamentals of Nursing"

	var courseID string
	err = pool.QueryRow(ctx, `SELECT id FROM courses WHERE title = $1`, courseTitle).Scan(&courseID)
	if err != nil {
		if err != pgx.ErrNoRows {
			log.Fatal().Err(err).Msg("Failed to check existing course")
		}
		err = pool.QueryRow(ctx,
			`INSERT INTO courses (title, description, active)
			 VALUES ($1, 'Core concepts and skills', TRUE)
			 RETURNING id`,
			courseTitle,
		).Scan(&courseID)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to seed course")
		}
	}
	fmt.Printf("Course id: %s\n", courseID)

	type seedItem struct {
		stem     string
		correct  string
		category string
		grade    *model.Grade
		course   bool
	}

	starter := model.GradeStarter
	mid := model.GradeMid
	higher := model.GradeHigher

	items := []seedItem{
		{"Which vital sign range is normal for a resting adult heart rate?", "B", "fundamentals", &starter, false},
		{"What is the first step before any client contact?", "A", "infection-control", &starter, false},
		{"Which medication class do ACE inhibitor names end with?", "C", "pharmacology", &mid, false},
		{"Which electrolyte imbalance causes peaked T waves?", "D", "med-surg", &mid, false},
		{"Which finding takes priority after a thyroidectomy?", "A", "med-surg", &higher, false},
		{"Which client should the nurse assess first?", "B", "prioritization", &higher, false},
		{"Which position is correct for nasogastric tube insertion?", "C", "fundamentals", nil, true},
		{"What documents the client's consent for a procedure?", "B", "legal", nil, true},
	}

	for _, item := range items {
		category := item.category
		q := &model.Question{
			Stem:             item.stem,
			OptionA:          "Option A",
			OptionB:          "Option B",
			OptionC:          "Option C",
			OptionD:          "Option D",
			CorrectOption:    item.correct,
			Category:         &category,
			Difficulty:       model.DifficultyMedium,
			TimeLimitSeconds: model.DefaultQuestionSeconds,
			Active:           true,
			Grade:            item.grade,
		}
		if item.course {
			id, err := uuid.Parse(courseID)
			if err != nil {
				log.Fatal().Err(err).Msg("Bad course id")
			}
			q.CourseID = &id
		}
		if err := questionRepo.Create(ctx, q); err != nil {
			log.Fatal().Err(err).Str("stem", item.stem).Msg("Failed to seed question")
		}
	}

	fmt.Printf("Seeded %d questions\n", len(items))
}
