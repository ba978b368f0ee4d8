package models

import (
	"time"

	"github.com/lib/pq"
)

// DepartmentIT is the only department whose profiles carry a project.
const DepartmentIT = "IT"

// StudentProfile is the OJT record owned by one student account.
type StudentProfile struct {
	ID            string         `db:"id" json:"id"`
	AccountID     string         `db:"account_id" json:"account_id"`
	Email         string         `db:"email" json:"email"`
	FullName      string         `db:"full_name" json:"full_name"`
	Department    string         `db:"department" json:"department"`
	Project       *string        `db:"project" json:"project,omitempty"`
	Skills        pq.StringArray `db:"skills" json:"skills"`
	School        string         `db:"school" json:"school"`
	Course        string         `db:"course" json:"course"`
	YearLevel     string         `db:"year_level" json:"year_level"`
	ContactNumber string         `db:"contact_number" json:"contact_number"`
	Address       string         `db:"address" json:"address"`
	StartDate     string         `db:"start_date" json:"start_date"`
	EndDate       string         `db:"end_date" json:"end_date"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at" json:"updated_at"`
}

// ProfileFields is the profile part of a registration payload. Skills is a
// comma-separated list.
type ProfileFields struct {
	FullName      string `json:"full_name" validate:"required"`
	Department    string `json:"department" validate:"required"`
	Project       string `json:"project"`
	Skills        string `json:"skills"`
	School        string `json:"school" validate:"required"`
	Course        string `json:"course" validate:"required"`
	YearLevel     string `json:"year_level"`
	ContactNumber string `json:"contact_number"`
	Address       string `json:"address"`
	StartDate     string `json:"start_date"`
	EndDate       string `json:"end_date"`
}

// UpdateProfileRequest is a partial update; nil fields are left untouched.
type UpdateProfileRequest struct {
	FullName      *string `json:"full_name" validate:"omitnil,min=1"`
	Department    *string `json:"department" validate:"omitnil,min=1"`
	Project       *string `json:"project"`
	Skills        *string `json:"skills"`
	School        *string `json:"school" validate:"omitnil,min=1"`
	Course        *string `json:"course" validate:"omitnil,min=1"`
	YearLevel     *string `json:"year_level"`
	ContactNumber *string `json:"contact_number"`
	Address       *string `json:"address"`
	StartDate     *string `json:"start_date"`
	EndDate       *string `json:"end_date"`
}
