package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/ojt-records-api/internal/models"
	"github.com/noah-isme/ojt-records-api/internal/service"
	appErrors "github.com/noah-isme/ojt-records-api/pkg/errors"
	"github.com/noah-isme/ojt-records-api/pkg/response"
)

type profileService interface {
	GetByAccountID(ctx context.Context, accountID string) (*models.StudentProfile, error)
	ListAll(ctx context.Context) ([]models.StudentProfile, error)
	Update(ctx context.Context, accountID string, req models.UpdateProfileRequest) (*models.StudentProfile, error)
	Delete(ctx context.Context, profileID string) error
}

type rosterExporter interface {
	Roster(ctx context.Context, format string) (*service.ExportFile, error)
}

// StudentHandler exposes student profile endpoints for students and admins.
type StudentHandler struct {
	profiles profileService
	exporter rosterExporter
}

// NewStudentHandler constructs StudentHandler.
func NewStudentHandler(profiles profileService, exporter rosterExporter) *StudentHandler {
	return &StudentHandler{profiles: profiles, exporter: exporter}
}

// GetMine godoc
// @Summary Own profile
// @Tags Students
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/me [get]
func (h *StudentHandler) GetMine(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	h.get(c, claims.AccountID)
}

// UpdateMine godoc
// @Summary Update own profile
// @Tags Students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.UpdateProfileRequest true "Fields to change"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/me [put]
func (h *StudentHandler) UpdateMine(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	h.update(c, claims.AccountID)
}

// List godoc
// @Summary List student profiles
// @Description Every profile, newest registration first
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /admin/students [get]
func (h *StudentHandler) List(c *gin.Context) {
	profiles, err := h.profiles.ListAll(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profiles, map[string]interface{}{"total": len(profiles)})
}

// Get godoc
// @Summary Get a student's profile
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param accountId path string true "Account ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/students/accounts/{accountId} [get]
func (h *StudentHandler) Get(c *gin.Context) {
	h.get(c, c.Param("accountId"))
}

// Update godoc
// @Summary Update a student's profile
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param accountId path string true "Account ID"
// @Param payload body models.UpdateProfileRequest true "Fields to change"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/students/accounts/{accountId} [put]
func (h *StudentHandler) Update(c *gin.Context) {
	h.update(c, c.Param("accountId"))
}

// Delete godoc
// @Summary Delete a student
// @Description Removes the student's account and profile
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Profile ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/students/{id} [delete]
func (h *StudentHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.profiles.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"id": id, "deleted": true})
}

// Export godoc
// @Summary Export student roster
// @Tags Admin
// @Produce text/csv
// @Produce application/pdf
// @Security BearerAuth
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /admin/students/export [get]
func (h *StudentHandler) Export(c *gin.Context) {
	file, err := h.exporter.Roster(c.Request.Context(), c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.File(c, file.Filename, file.ContentType, file.Body)
}

func (h *StudentHandler) get(c *gin.Context, accountID string) {
	profile, err := h.profiles.GetByAccountID(c.Request.Context(), accountID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile)
}

func (h *StudentHandler) update(c *gin.Context, accountID string) {
	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid profile payload"))
		return
	}

	profile, err := h.profiles.Update(c.Request.Context(), accountID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile)
}
