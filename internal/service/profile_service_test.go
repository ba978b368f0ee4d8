package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/ojt-records-api/internal/models"
	appErrors "github.com/noah-isme/ojt-records-api/pkg/errors"
)

func strPtr(v string) *string { return &v }

func newProfileFixture(cache *CacheService) (*ProfileService, *mockProfileRepo, *mockAccountRepo) {
	records := newMockProfileRepo()
	accounts := newMockAccountRepo()
	svc := NewProfileService(records, accounts, cache, validator.New(), zap.NewNop())
	svc.now = steppingClock(time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC), time.Minute)
	return svc, records, accounts
}

func seedStudent(t *testing.T, svc *ProfileService, accounts *mockAccountRepo, email, department string) (*models.Account, *models.StudentProfile) {
	t.Helper()
	account := &models.Account{Email: email, PasswordHash: "x", Role: models.RoleStudent}
	require.NoError(t, accounts.Create(context.Background(), account))
	profile, err := svc.Create(context.Background(), account, models.ProfileFields{
		FullName:   "Ana Cruz",
		Department: department,
		Project:    "Alpha",
		Skills:     "go,rust",
		School:     "State U",
		Course:     "BSCS",
		YearLevel:  "4",
	})
	require.NoError(t, err)
	return account, profile
}

func TestSplitSkills(t *testing.T) {
	assert.Equal(t, []string{"go", "rust", "c"}, SplitSkills("go, rust, ,c"))
	assert.Equal(t, []string{}, SplitSkills(""))
	assert.Equal(t, []string{}, SplitSkills(" , ,"))
}

func TestProfileCreateSetsEqualTimestamps(t *testing.T) {
	svc, _, accounts := newProfileFixture(nil)
	_, profile := seedStudent(t, svc, accounts, "s@x.io", "IT")

	assert.Equal(t, profile.CreatedAt, profile.UpdatedAt)
	require.NotNil(t, profile.Project)
	assert.Equal(t, "Alpha", *profile.Project)
}

func TestProfileUpdatePartialKeepsOtherFields(t *testing.T) {
	svc, _, accounts := newProfileFixture(nil)
	account, created := seedStudent(t, svc, accounts, "s@x.io", "IT")

	updated, err := svc.Update(context.Background(), account.ID, models.UpdateProfileRequest{School: strPtr(" Tech U ")})
	require.NoError(t, err)

	assert.Equal(t, "Tech U", updated.School)
	assert.Equal(t, created.FullName, updated.FullName)
	assert.Equal(t, created.Course, updated.Course)
	assert.Equal(t, created.YearLevel, updated.YearLevel)
	assert.Equal(t, []string(created.Skills), []string(updated.Skills))
	assert.Equal(t, created.Project, updated.Project)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	assert.True(t, updated.UpdatedAt.After(updated.CreatedAt))

	stored, err := svc.GetByAccountID(context.Background(), account.ID)
	require.NoError(t, err)
	assert.Equal(t, "Tech U", stored.School)
}

func TestProfileUpdateUpdatedAtStrictlyAfterCreatedAt(t *testing.T) {
	svc, _, accounts := newProfileFixture(nil)
	account, _ := seedStudent(t, svc, accounts, "s@x.io", "IT")
	frozen := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return frozen }

	updated, err := svc.Update(context.Background(), account.ID, models.UpdateProfileRequest{Address: strPtr("Manila")})
	require.NoError(t, err)
	assert.True(t, updated.UpdatedAt.After(updated.CreatedAt))
}

func TestProfileUpdateReappliesDerivationRules(t *testing.T) {
	svc, _, accounts := newProfileFixture(nil)
	account, _ := seedStudent(t, svc, accounts, "s@x.io", "IT")

	updated, err := svc.Update(context.Background(), account.ID, models.UpdateProfileRequest{
		Department: strPtr("HR"),
		Skills:     strPtr("excel, , writing"),
	})
	require.NoError(t, err)
	assert.Nil(t, updated.Project)
	assert.Equal(t, []string{"excel", "writing"}, []string(updated.Skills))

	updated, err = svc.Update(context.Background(), account.ID, models.UpdateProfileRequest{
		Department: strPtr("IT"),
		Project:    strPtr("Beta"),
	})
	require.NoError(t, err)
	require.NotNil(t, updated.Project)
	assert.Equal(t, "Beta", *updated.Project)
}

func TestProfileUpdateRejectsBlankRequiredField(t *testing.T) {
	svc, records, accounts := newProfileFixture(nil)
	account, created := seedStudent(t, svc, accounts, "s@x.io", "IT")

	_, err := svc.Update(context.Background(), account.ID, models.UpdateProfileRequest{FullName: strPtr("  ")})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Equal(t, created.FullName, records.profiles[created.ID].FullName)
}

func TestProfileUpdateNotFound(t *testing.T) {
	svc, _, _ := newProfileFixture(nil)

	_, err := svc.Update(context.Background(), "missing", models.UpdateProfileRequest{School: strPtr("X")})
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestProfileUpdateStorageFailure(t *testing.T) {
	svc, records, accounts := newProfileFixture(nil)
	account, _ := seedStudent(t, svc, accounts, "s@x.io", "IT")
	records.updateErr = errors.New("timeout")

	_, err := svc.Update(context.Background(), account.ID, models.UpdateProfileRequest{School: strPtr("X")})
	assert.Equal(t, appErrors.ErrPersistence.Code, appErrors.FromError(err).Code)
}

func TestListAllNewestFirst(t *testing.T) {
	svc, _, accounts := newProfileFixture(nil)
	_, first := seedStudent(t, svc, accounts, "p1@x.io", "IT")
	_, second := seedStudent(t, svc, accounts, "p2@x.io", "HR")

	profiles, err := svc.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, profiles, 2)
	assert.Equal(t, second.ID, profiles[0].ID)
	assert.Equal(t, first.ID, profiles[1].ID)
}

func TestListAllEmpty(t *testing.T) {
	svc, _, _ := newProfileFixture(nil)

	profiles, err := svc.ListAll(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, profiles)
	assert.Empty(t, profiles)
}

func TestListAllServedFromCacheUntilWrite(t *testing.T) {
	cacheRepo := newMemoryCacheRepo()
	cache := NewCacheService(cacheRepo, NewMetricsService(), time.Minute, zap.NewNop(), true)
	svc, records, accounts := newProfileFixture(cache)
	account, _ := seedStudent(t, svc, accounts, "s@x.io", "IT")
	ctx := context.Background()

	_, err := svc.ListAll(ctx)
	require.NoError(t, err)
	_, err = svc.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, records.listCalls)

	_, err = svc.Update(ctx, account.ID, models.UpdateProfileRequest{School: strPtr("Tech U")})
	require.NoError(t, err)

	profiles, err := svc.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, records.listCalls)
	require.Len(t, profiles, 1)
	assert.Equal(t, "Tech U", profiles[0].School)
}

func TestDeleteRemovesAccountAndProfile(t *testing.T) {
	svc, records, accounts := newProfileFixture(nil)
	account, profile := seedStudent(t, svc, accounts, "s@x.io", "IT")
	ctx := context.Background()

	require.NoError(t, svc.Delete(ctx, profile.ID))
	assert.Empty(t, records.profiles)
	assert.Zero(t, accounts.count("s@x.io"))

	_, err := svc.GetByAccountID(ctx, account.ID)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestDeleteUnknownProfile(t *testing.T) {
	svc, _, _ := newProfileFixture(nil)

	err := svc.Delete(context.Background(), "missing")
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestDeleteAccountFailureKeepsBoth(t *testing.T) {
	svc, records, accounts := newProfileFixture(nil)
	_, profile := seedStudent(t, svc, accounts, "s@x.io", "IT")
	accounts.deleteErr = errors.New("locked")

	err := svc.Delete(context.Background(), profile.ID)
	assert.Equal(t, appErrors.ErrPersistence.Code, appErrors.FromError(err).Code)
	assert.Len(t, records.profiles, 1)
	assert.Equal(t, 1, accounts.count("s@x.io"))
}

func TestDeleteProfileFailureLeavesOrphanProfile(t *testing.T) {
	svc, records, accounts := newProfileFixture(nil)
	account, profile := seedStudent(t, svc, accounts, "s@x.io", "IT")
	records.deleteErr = errors.New("locked")
	ctx := context.Background()

	err := svc.Delete(ctx, profile.ID)
	assert.Equal(t, appErrors.ErrPersistence.Code, appErrors.FromError(err).Code)
	assert.Zero(t, accounts.count("s@x.io"))

	orphan, err := svc.GetByAccountID(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, profile.ID, orphan.ID)
}

func TestDeleteInvalidatesListingCachedMidDelete(t *testing.T) {
	cache := NewCacheService(newMemoryCacheRepo(), NewMetricsService(), time.Minute, zap.NewNop(), true)
	svc, records, accounts := newProfileFixture(cache)
	_, profile := seedStudent(t, svc, accounts, "s@x.io", "IT")
	ctx := context.Background()

	records.beforeDelete = func() {
		listed, err := svc.ListAll(ctx)
		require.NoError(t, err)
		require.Len(t, listed, 1)
	}
	require.NoError(t, svc.Delete(ctx, profile.ID))
	calls := records.listCalls

	profiles, err := svc.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, profiles)
	assert.Equal(t, calls+1, records.listCalls)
}

func TestDeleteProfileFailureStillInvalidatesCache(t *testing.T) {
	cache := NewCacheService(newMemoryCacheRepo(), NewMetricsService(), time.Minute, zap.NewNop(), true)
	svc, records, accounts := newProfileFixture(cache)
	_, profile := seedStudent(t, svc, accounts, "s@x.io", "IT")
	ctx := context.Background()

	records.deleteErr = errors.New("locked")
	records.beforeDelete = func() {
		_, err := svc.ListAll(ctx)
		require.NoError(t, err)
	}
	require.Error(t, svc.Delete(ctx, profile.ID))
	calls := records.listCalls

	_, err := svc.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, calls+1, records.listCalls)
}
