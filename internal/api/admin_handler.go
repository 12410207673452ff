package api

import (
	"errors"
	"fmt"
	"net/http"

	"gympro/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AdminHandler exposes the administrator surface: trainer registration and
// trainer/student assignment.
type AdminHandler struct {
	authService       service.AuthService
	assignmentService service.AssignmentService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(authService service.AuthService, assignmentService service.AssignmentService) *AdminHandler {
	return &AdminHandler{
		authService:       authService,
		assignmentService: assignmentService,
	}
}

// --- DTOs ---

// RegisterTrainerRequest is the admin-only trainer creation payload.
type RegisterTrainerRequest struct {
	Name       string `json:"name" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required,min=8"`
	Age        int    `json:"age" binding:"required"`
	Gender     string `json:"gender" binding:"required"`
	Experience string `json:"experience" binding:"required"`
	Phone      string `json:"phone" binding:"required"`
}

// AssignRequest links one unassigned student to a trainer.
type AssignRequest struct {
	TrainerID string `json:"trainerId" binding:"required"`
	StudentID string `json:"studentId" binding:"required"`
}

// AssignResponse reports the result plus how many students are still
// available for assignment. The count is omitted when it could not be read
// after the assignment.
type AssignResponse struct {
	TrainerID          string `json:"trainerId"`
	StudentID          string `json:"studentId"`
	UnassignedStudents *int   `json:"unassignedStudents,omitempty"`
}

// ReconcileRequest names the trainer whose edge should be repaired.
type ReconcileRequest struct {
	TrainerID string `json:"trainerId" binding:"required"`
}

// --- Handler Methods ---

// RegisterTrainer creates a trainer account.
func (h *AdminHandler) RegisterTrainer(c *gin.Context) {
	var req RegisterTrainerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	profile := service.TrainerProfile{
		Age:        req.Age,
		Gender:     req.Gender,
		Experience: req.Experience,
		Phone:      req.Phone,
	}

	user, err := h.authService.RegisterTrainer(c.Request.Context(), req.Name, req.Email, req.Password, profile)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserAlreadyExists):
			abortWithError(c, http.StatusConflict, err.Error())
		case errors.Is(err, service.ErrProfileValidation):
			abortWithError(c, http.StatusBadRequest, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to register trainer.")
		}
		return
	}

	c.JSON(http.StatusCreated, MapUserToResponse(user))
}

// ListUnassignedStudents returns every student without a trainer.
func (h *AdminHandler) ListUnassignedStudents(c *gin.Context) {
	students, err := h.assignmentService.ListUnassignedStudents(c.Request.Context())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to list unassigned students.")
		return
	}
	c.JSON(http.StatusOK, MapUsersToResponse(students))
}

// ListTrainers returns every trainer with their student lists.
func (h *AdminHandler) ListTrainers(c *gin.Context) {
	trainers, err := h.assignmentService.ListTrainers(c.Request.Context())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to list trainers.")
		return
	}
	c.JSON(http.StatusOK, MapUsersToResponse(trainers))
}

// Assign links a student to a trainer. A partial failure (student record
// updated, trainer list not) is reported distinctly so the admin retries via
// the reconcile endpoint instead of re-running the whole assignment.
func (h *AdminHandler) Assign(c *gin.Context) {
	var req AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	trainerID, err := primitive.ObjectIDFromHex(req.TrainerID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid trainer ID format.")
		return
	}
	studentID, err := primitive.ObjectIDFromHex(req.StudentID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid student ID format.")
		return
	}

	remaining, err := h.assignmentService.Assign(c.Request.Context(), trainerID, studentID)
	if err != nil {
		var pwErr *service.PartialWriteError
		switch {
		case errors.As(err, &pwErr):
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error":        "Assignment partially applied.",
				"completed":    pwErr.Done,
				"missingWrite": pwErr.Missing,
				"hint":         "run POST /admin/assignments/reconcile for this trainer",
			})
		case errors.Is(err, service.ErrTrainerNotFound), errors.Is(err, service.ErrStudentNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrNotATrainer),
			errors.Is(err, service.ErrNotAStudent),
			errors.Is(err, service.ErrStudentAlreadyAssigned):
			abortWithError(c, http.StatusConflict, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to assign student.")
		}
		return
	}

	response := AssignResponse{
		TrainerID: req.TrainerID,
		StudentID: req.StudentID,
	}
	if remaining >= 0 {
		response.UnassignedStudents = &remaining
	}
	c.JSON(http.StatusOK, response)
}

// Reconcile repairs a half-written trainer/student edge.
func (h *AdminHandler) Reconcile(c *gin.Context) {
	var req ReconcileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	trainerID, err := primitive.ObjectIDFromHex(req.TrainerID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid trainer ID format.")
		return
	}

	report, err := h.assignmentService.Reconcile(c.Request.Context(), trainerID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTrainerNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrNotATrainer):
			abortWithError(c, http.StatusConflict, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to reconcile assignments.")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"repaired": report.Repaired(),
		"report":   report,
	})
}
