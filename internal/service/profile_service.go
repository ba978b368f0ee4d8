package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/ojt-records-api/internal/models"
	appErrors "github.com/noah-isme/ojt-records-api/pkg/errors"
)

const (
	profileListCacheKey  = "profiles:list"
	profileCachePattern  = "profiles:*"
	profileNotFoundError = "student profile not found"
)

type profileRepository interface {
	List(ctx context.Context) ([]models.StudentProfile, error)
	FindByID(ctx context.Context, id string) (*models.StudentProfile, error)
	FindByAccountID(ctx context.Context, accountID string) (*models.StudentProfile, error)
	Create(ctx context.Context, profile *models.StudentProfile) error
	Update(ctx context.Context, profile *models.StudentProfile) error
	DeleteByID(ctx context.Context, id string) error
}

type accountRemover interface {
	DeleteByID(ctx context.Context, id string) error
}

// ProfileService manages the student profile lifecycle.
type ProfileService struct {
	profiles  profileRepository
	accounts  accountRemover
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewProfileService constructs the profile service. cache may be nil.
func NewProfileService(profiles profileRepository, accounts accountRemover, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *ProfileService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfileService{
		profiles:  profiles,
		accounts:  accounts,
		cache:     cache,
		validator: validate,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
	}
}

// Create stores the profile for a freshly created account. Fields must already be validated.
func (s *ProfileService) Create(ctx context.Context, account *models.Account, fields models.ProfileFields) (*models.StudentProfile, error) {
	now := s.now()
	profile := &models.StudentProfile{
		AccountID:     account.ID,
		Email:         account.Email,
		FullName:      fields.FullName,
		Department:    fields.Department,
		Project:       projectFor(fields.Department, &fields.Project),
		Skills:        SplitSkills(fields.Skills),
		School:        fields.School,
		Course:        fields.Course,
		YearLevel:     fields.YearLevel,
		ContactNumber: fields.ContactNumber,
		Address:       fields.Address,
		StartDate:     fields.StartDate,
		EndDate:       fields.EndDate,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.profiles.Create(ctx, profile); err != nil {
		return nil, appErrors.Persistence(err, "failed to create student profile")
	}
	s.cache.Invalidate(ctx, profileCachePattern)
	return profile, nil
}

// GetByAccountID returns the profile linked to accountID.
func (s *ProfileService) GetByAccountID(ctx context.Context, accountID string) (*models.StudentProfile, error) {
	profile, err := s.profiles.FindByAccountID(ctx, accountID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, profileNotFoundError)
		}
		return nil, appErrors.Persistence(err, "failed to load student profile")
	}
	return profile, nil
}

// ListAll returns every profile, newest first.
func (s *ProfileService) ListAll(ctx context.Context) ([]models.StudentProfile, error) {
	var cached []models.StudentProfile
	if s.cache.Get(ctx, profileListCacheKey, &cached) {
		return cached, nil
	}

	profiles, err := s.profiles.List(ctx)
	if err != nil {
		return nil, appErrors.Persistence(err, "failed to list student profiles")
	}
	if profiles == nil {
		profiles = []models.StudentProfile{}
	}
	s.cache.Set(ctx, profileListCacheKey, profiles, 0)
	return profiles, nil
}

// Update merges the present fields of req into the profile linked to accountID.
func (s *ProfileService) Update(ctx context.Context, accountID string, req models.UpdateProfileRequest) (*models.StudentProfile, error) {
	trimUpdate(&req)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid profile payload")
	}

	profile, err := s.GetByAccountID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	applyUpdate(profile, req)
	profile.UpdatedAt = s.now()
	if !profile.UpdatedAt.After(profile.CreatedAt) {
		profile.UpdatedAt = profile.CreatedAt.Add(time.Microsecond)
	}

	if err := s.profiles.Update(ctx, profile); err != nil {
		return nil, appErrors.Persistence(err, "failed to update student profile")
	}
	s.cache.Invalidate(ctx, profileCachePattern)
	return profile, nil
}

// Delete removes the student identified by the profile id: the owning
// account first, then the profile. The two deletes are separate statements;
// if the second fails the profile is left pointing at a missing account.
func (s *ProfileService) Delete(ctx context.Context, profileID string) error {
	profile, err := s.profiles.FindByID(ctx, profileID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, profileNotFoundError)
		}
		return appErrors.Persistence(err, "failed to load student profile")
	}

	if err := s.accounts.DeleteByID(ctx, profile.AccountID); err != nil {
		return appErrors.Persistence(err, "failed to delete student account")
	}
	s.cache.Invalidate(ctx, profileCachePattern)

	err = s.profiles.DeleteByID(ctx, profile.ID)
	// a listing between the two deletes may have re-cached the profile
	s.cache.Invalidate(ctx, profileCachePattern)
	if err != nil {
		s.logger.Error("student profile left without account",
			zap.String("profile_id", profile.ID),
			zap.String("account_id", profile.AccountID),
			zap.Error(err))
		return appErrors.Persistence(err, "failed to delete student profile")
	}
	return nil
}

// SplitSkills turns "go, rust, ,c" into ["go" "rust" "c"].
func SplitSkills(raw string) []string {
	skills := []string{}
	for _, part := range strings.Split(raw, ",") {
		if skill := strings.TrimSpace(part); skill != "" {
			skills = append(skills, skill)
		}
	}
	return skills
}

func projectFor(department string, project *string) *string {
	if department != models.DepartmentIT || project == nil || *project == "" {
		return nil
	}
	value := *project
	return &value
}

func applyUpdate(profile *models.StudentProfile, req models.UpdateProfileRequest) {
	setString(&profile.FullName, req.FullName)
	setString(&profile.Department, req.Department)
	setString(&profile.School, req.School)
	setString(&profile.Course, req.Course)
	setString(&profile.YearLevel, req.YearLevel)
	setString(&profile.ContactNumber, req.ContactNumber)
	setString(&profile.Address, req.Address)
	setString(&profile.StartDate, req.StartDate)
	setString(&profile.EndDate, req.EndDate)
	if req.Skills != nil {
		profile.Skills = SplitSkills(*req.Skills)
	}

	project := profile.Project
	if req.Project != nil {
		project = req.Project
	}
	profile.Project = projectFor(profile.Department, project)
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func trimUpdate(req *models.UpdateProfileRequest) {
	for _, field := range []*string{
		req.FullName, req.Department, req.Project, req.School, req.Course, req.YearLevel,
		req.ContactNumber, req.Address, req.StartDate, req.EndDate,
	} {
		if field != nil {
			*field = strings.TrimSpace(*field)
		}
	}
}

func trimProfileFields(fields *models.ProfileFields) {
	for _, field := range []*string{
		&fields.FullName, &fields.Department, &fields.Project, &fields.School, &fields.Course,
		&fields.YearLevel, &fields.ContactNumber, &fields.Address, &fields.StartDate, &fields.EndDate,
	} {
		*field = strings.TrimSpace(*field)
	}
}
