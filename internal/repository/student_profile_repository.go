package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/ojt-records-api/internal/models"
)

const profileColumns = `id, account_id, email, full_name, department, project, skills, school, course, year_level, contact_number, address, start_date, end_date, created_at, updated_at`

// StudentProfileRepository manages persistence for OJT student profiles.
type StudentProfileRepository struct {
	db *sqlx.DB
}

// NewStudentProfileRepository constructs a StudentProfileRepository.
func NewStudentProfileRepository(db *sqlx.DB) *StudentProfileRepository {
	return &StudentProfileRepository{db: db}
}

// List returns every profile, newest first.
func (r *StudentProfileRepository) List(ctx context.Context) ([]models.StudentProfile, error) {
	const query = `SELECT ` + profileColumns + ` FROM student_profiles ORDER BY created_at DESC`
	profiles := []models.StudentProfile{}
	if err := r.db.SelectContext(ctx, &profiles, query); err != nil {
		return nil, fmt.Errorf("list student profiles: %w", err)
	}
	return profiles, nil
}

// FindByID fetches a profile by its own identifier.
func (r *StudentProfileRepository) FindByID(ctx context.Context, id string) (*models.StudentProfile, error) {
	const query = `SELECT ` + profileColumns + ` FROM student_profiles WHERE id = $1 LIMIT 1`
	return r.get(ctx, query, id, "find student profile by id")
}

// FindByAccountID fetches the profile linked to an account.
func (r *StudentProfileRepository) FindByAccountID(ctx context.Context, accountID string) (*models.StudentProfile, error) {
	const query = `SELECT ` + profileColumns + ` FROM student_profiles WHERE account_id = $1 ORDER BY created_at ASC LIMIT 1`
	return r.get(ctx, query, accountID, "find student profile by account")
}

func (r *StudentProfileRepository) get(ctx context.Context, query, arg, op string) (*models.StudentProfile, error) {
	if !validID(arg) {
		return nil, sql.ErrNoRows
	}
	var profile models.StudentProfile
	if err := r.db.GetContext(ctx, &profile, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &profile, nil
}

// Create inserts a new profile.
func (r *StudentProfileRepository) Create(ctx context.Context, profile *models.StudentProfile) error {
	if profile.ID == "" {
		profile.ID = uuid.NewString()
	}
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = time.Now().UTC()
	}
	if profile.UpdatedAt.IsZero() {
		profile.UpdatedAt = profile.CreatedAt
	}
	if profile.Skills == nil {
		profile.Skills = []string{}
	}

	const query = `INSERT INTO student_profiles (` + profileColumns + `) VALUES (:id, :account_id, :email, :full_name, :department, :project, :skills, :school, :course, :year_level, :contact_number, :address, :start_date, :end_date, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, profile); err != nil {
		return fmt.Errorf("create student profile: %w", err)
	}
	return nil
}

// Update writes every mutable column. created_at, account_id and email are never touched.
func (r *StudentProfileRepository) Update(ctx context.Context, profile *models.StudentProfile) error {
	if profile.Skills == nil {
		profile.Skills = []string{}
	}
	const query = `UPDATE student_profiles SET full_name = :full_name, department = :department, project = :project, skills = :skills, school = :school, course = :course, year_level = :year_level, contact_number = :contact_number, address = :address, start_date = :start_date, end_date = :end_date, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, profile); err != nil {
		return fmt.Errorf("update student profile: %w", err)
	}
	return nil
}

// DeleteByID removes the profile row.
func (r *StudentProfileRepository) DeleteByID(ctx context.Context, id string) error {
	if !validID(id) {
		return sql.ErrNoRows
	}
	const query = `DELETE FROM student_profiles WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete student profile: %w", err)
	}
	return nil
}
