package delivery

import (
	"errors"
	"net/http"

	"storefront/internal/domain"
	"storefront/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type ApplicationHandler struct {
	useCase usecase.ApplicationUseCase
	log     *logrus.Logger
}

func NewApplicationHandler(uc usecase.ApplicationUseCase, logger *logrus.Logger) *ApplicationHandler {
	return &ApplicationHandler{useCase: uc, log: logger}
}

type applicationForm struct {
	Name        string `form:"name" binding:"required"`
	Email       string `form:"email" binding:"required,email"`
	Phone       string `form:"phone"`
	Position    string `form:"position" binding:"required"`
	CoverLetter string `form:"coverLetter"`
}

type applicationStatusRequest struct {
	Status domain.ApplicationStatus `json:"status" binding:"required"`
}

func (h *ApplicationHandler) Submit(c *gin.Context) {
	var form applicationForm
	if err := c.ShouldBind(&form); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid application: "+err.Error())
		return
	}

	app := &domain.JobApplication{
		Name:        form.Name,
		Email:       form.Email,
		Phone:       form.Phone,
		Position:    form.Position,
		CoverLetter: form.CoverLetter,
	}

	var created *domain.JobApplication
	fileHeader, err := c.FormFile("resume")
	switch {
	case err == nil:
		file, openErr := fileHeader.Open()
		if openErr != nil {
			respondError(c, h.log, "read resume", openErr)
			return
		}
		defer file.Close()
		created, err = h.useCase.SubmitApplication(c.Request.Context(), app, file)
	case errors.Is(err, http.ErrMissingFile):
		created, err = h.useCase.SubmitApplication(c.Request.Context(), app, nil)
	default:
		ErrorResponse(c, http.StatusBadRequest, "Invalid resume upload: "+err.Error())
		return
	}
	if err != nil {
		respondError(c, h.log, "submit application", err)
		return
	}
	SuccessResponse(c, http.StatusCreated, "Application submitted successfully", created)
}

func (h *ApplicationHandler) List(c *gin.Context) {
	limit, offset := page(c)
	apps, err := h.useCase.ListApplications(c.Request.Context(), domain.ApplicationStatus(c.Query("status")), limit, offset)
	if err != nil {
		respondError(c, h.log, "list applications", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Applications retrieved successfully", apps)
}

func (h *ApplicationHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id", "application")
	if !ok {
		return
	}
	app, err := h.useCase.GetApplication(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, "retrieve application", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Application retrieved successfully", app)
}

func (h *ApplicationHandler) UpdateStatus(c *gin.Context) {
	id, ok := pathID(c, "id", "application")
	if !ok {
		return
	}
	var req applicationStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	app, err := h.useCase.UpdateApplicationStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		respondError(c, h.log, "update application", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Application updated successfully", app)
}

func (h *ApplicationHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id", "application")
	if !ok {
		return
	}
	if err := h.useCase.DeleteApplication(c.Request.Context(), id); err != nil {
		respondError(c, h.log, "delete application", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Application deleted successfully", nil)
}

// DeleteOlderThan bulk-removes applications: ?status=rejected&olderThan=30d.
func (h *ApplicationHandler) DeleteOlderThan(c *gin.Context) {
	age, err := usecase.ParseAge(c.Query("olderThan"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid olderThan parameter: "+err.Error())
		return
	}
	n, err := h.useCase.DeleteApplicationsOlderThan(c.Request.Context(), domain.ApplicationStatus(c.Query("status")), age)
	if err != nil {
		respondError(c, h.log, "delete applications", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Applications deleted successfully", gin.H{"deleted": n})
}

func (h *ApplicationHandler) DownloadResume(c *gin.Context) {
	id, ok := pathID(c, "id", "application")
	if !ok {
		return
	}
	path, err := h.useCase.ResumeFile(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, "retrieve resume", err)
		return
	}
	c.File(path)
}
