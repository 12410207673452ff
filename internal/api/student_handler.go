package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"gympro/internal/domain"
	"gympro/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StudentHandler exposes the student surface: profile editing, pending
// routines, routine completion, progress history and injuries.
type StudentHandler struct {
	authService    service.AuthService
	routineService service.RoutineService
	injuryService  service.InjuryService
}

// NewStudentHandler creates a new StudentHandler.
func NewStudentHandler(authService service.AuthService, routineService service.RoutineService, injuryService service.InjuryService) *StudentHandler {
	return &StudentHandler{
		authService:    authService,
		routineService: routineService,
		injuryService:  injuryService,
	}
}

// UpdateProfileRequest carries the editable student profile fields. All are
// required; partial updates are not supported.
type UpdateProfileRequest struct {
	Name   string  `json:"name" binding:"required"`
	Year   int     `json:"year" binding:"required"`
	Gender string  `json:"gender" binding:"required"`
	Height float64 `json:"height" binding:"required,gt=0"`
	Weight float64 `json:"weight" binding:"required,gt=0"`
}

// ProgressEntryResponse is the DTO for one completed-routine history entry.
type ProgressEntryResponse struct {
	ID             string                   `json:"id"`
	RoutineName    string                   `json:"routineName"`
	StartDate      time.Time                `json:"startDate"`
	CompletionDate time.Time                `json:"completionDate"`
	Completed      bool                     `json:"completed"`
	Exercises      []domain.RoutineExercise `json:"exercises"`
}

func MapProgressEntryToResponse(e *domain.ProgressEntry) ProgressEntryResponse {
	if e == nil {
		return ProgressEntryResponse{}
	}
	return ProgressEntryResponse{
		ID:             e.ID.Hex(),
		RoutineName:    e.RoutineName,
		StartDate:      e.StartDate,
		CompletionDate: e.CompletionDate,
		Completed:      e.Completed,
		Exercises:      e.Exercises,
	}
}

func MapProgressEntriesToResponse(entries []domain.ProgressEntry) []ProgressEntryResponse {
	responses := make([]ProgressEntryResponse, len(entries))
	for i := range entries {
		responses[i] = MapProgressEntryToResponse(&entries[i])
	}
	return responses
}

// studentIDFromToken resolves the authenticated student's ObjectID.
func studentIDFromToken(c *gin.Context) (primitive.ObjectID, bool) {
	idStr, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify student from token.")
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(idStr)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid student ID format in token.")
		return primitive.NilObjectID, false
	}
	return id, true
}

// UpdateMyProfile replaces the student's editable profile fields.
func (h *StudentHandler) UpdateMyProfile(c *gin.Context) {
	studentID, ok := studentIDFromToken(c)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	profile := service.StudentProfile{
		Year:   req.Year,
		Gender: req.Gender,
		Height: req.Height,
		Weight: req.Weight,
	}
	user, err := h.authService.UpdateStudentProfile(c.Request.Context(), studentID, req.Name, profile)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProfileValidation):
			abortWithError(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrUserNotFound):
			abortWithError(c, http.StatusNotFound, "Student account not found.")
		case errors.Is(err, service.ErrNotAStudent):
			abortWithError(c, http.StatusForbidden, "Only students can edit this profile.")
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to update profile.")
		}
		return
	}

	c.JSON(http.StatusOK, MapUserToResponse(user))
}

// GetMyRoutines lists the student's pending routines.
func (h *StudentHandler) GetMyRoutines(c *gin.Context) {
	studentID, ok := studentIDFromToken(c)
	if !ok {
		return
	}

	routines, err := h.routineService.ListRoutines(c.Request.Context(), studentID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve routines.")
		return
	}

	c.JSON(http.StatusOK, MapRoutinesToResponse(routines))
}

// CompleteRoutine archives a pending routine into the progress history and
// removes it from the active set.
func (h *StudentHandler) CompleteRoutine(c *gin.Context) {
	studentID, ok := studentIDFromToken(c)
	if !ok {
		return
	}
	routineID, err := primitive.ObjectIDFromHex(c.Param("routineId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid routine ID format.")
		return
	}

	entry, err := h.routineService.MarkCompleted(c.Request.Context(), studentID, routineID)
	if err != nil {
		var partial *service.PartialWriteError
		switch {
		case errors.As(err, &partial):
			// The snapshot exists but the routine is still listed as pending.
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error":        partial.Error(),
				"completed":    partial.Done,
				"missingWrite": partial.Missing,
				"entry":        MapProgressEntryToResponse(entry),
			})
		case errors.Is(err, service.ErrRoutineNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrRoutineAccessDenied):
			abortWithError(c, http.StatusForbidden, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to complete routine.")
		}
		return
	}

	c.JSON(http.StatusOK, MapProgressEntryToResponse(entry))
}

// GetMyProgress returns the student's completed-routine history.
func (h *StudentHandler) GetMyProgress(c *gin.Context) {
	studentID, ok := studentIDFromToken(c)
	if !ok {
		return
	}

	entries, err := h.routineService.ListProgress(c.Request.Context(), studentID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve progress.")
		return
	}

	c.JSON(http.StatusOK, MapProgressEntriesToResponse(entries))
}

// GetProgressSummary returns the per-area and per-week volume aggregation.
func (h *StudentHandler) GetProgressSummary(c *gin.Context) {
	studentID, ok := studentIDFromToken(c)
	if !ok {
		return
	}

	summary, err := h.routineService.ProgressSummary(c.Request.Context(), studentID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to compute progress summary.")
		return
	}

	c.JSON(http.StatusOK, summary)
}

// GetMyInjuries lists the student's injuries with their comment threads.
func (h *StudentHandler) GetMyInjuries(c *gin.Context) {
	studentID, ok := studentIDFromToken(c)
	if !ok {
		return
	}

	injuries, err := h.injuryService.ListInjuries(c.Request.Context(), studentID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve injuries.")
		return
	}

	c.JSON(http.StatusOK, MapInjuriesToResponse(injuries))
}

// AddComment appends a student comment to one of their own injuries.
func (h *StudentHandler) AddComment(c *gin.Context) {
	studentID, ok := studentIDFromToken(c)
	if !ok {
		return
	}
	injuryID, err := primitive.ObjectIDFromHex(c.Param("injuryId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid injury ID format.")
		return
	}

	var req AddCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	injury, err := h.injuryService.AddComment(c.Request.Context(), studentID, domain.CommentByStudent, injuryID, req.Text)
	if err != nil {
		respondCommentError(c, err)
		return
	}

	c.JSON(http.StatusOK, MapInjuryToResponse(injury))
}
