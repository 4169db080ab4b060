package model

import "time"

// Grade is the learner cohort tier restricting which questions and courses
// are visible.
type Grade string

const (
	GradeStarter Grade = "starter"
	GradeMid     Grade = "mid"
	GradeHigher  Grade = "higher"
)

// Valid reports whether g is a known grade tier.
func (g Grade) Valid() bool {
	switch g {
	case GradeStarter, GradeMid, GradeHigher:
		return true
	}
	return false
}

// Learner represents a student preparing for the licensure exam.
type Learner struct {
	ID           int       `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Grade        Grade     `json:"grade"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// LearnerLoginRequest is the payload for learner authentication.
type LearnerLoginRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=4,max=128"`
}

// LearnerLoginResponse is returned after successful learner login.
type LearnerLoginResponse struct {
	Token   string  `json:"token"`
	Learner Learner `json:"learner"`
}
