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

// TrainerHandler exposes the trainer surface: managed students, routine
// creation, injury recording and the exercise catalog.
type TrainerHandler struct {
	assignmentService service.AssignmentService
	routineService    service.RoutineService
	injuryService     service.InjuryService
	catalogService    service.CatalogService
}

// NewTrainerHandler creates a new TrainerHandler.
func NewTrainerHandler(
	assignmentService service.AssignmentService,
	routineService service.RoutineService,
	injuryService service.InjuryService,
	catalogService service.CatalogService,
) *TrainerHandler {
	return &TrainerHandler{
		assignmentService: assignmentService,
		routineService:    routineService,
		injuryService:     injuryService,
		catalogService:    catalogService,
	}
}

// --- DTOs ---

// RoutineExerciseRequest is one exercise entry in a routine payload.
type RoutineExerciseRequest struct {
	Name        string  `json:"name" binding:"required"`
	Area        string  `json:"area" binding:"required"`
	Sets        int     `json:"sets" binding:"required,gt=0"`
	Repetitions int     `json:"repetitions" binding:"required,gt=0"`
	Weight      float64 `json:"weight" binding:"gte=0"`
}

// CreateRoutineRequest creates a custom routine for a student.
type CreateRoutineRequest struct {
	RoutineName string                   `json:"routineName" binding:"required"`
	Exercises   []RoutineExerciseRequest `json:"exercises" binding:"required,min=1,dive"`
}

// CreateRoutineFromCatalogRequest builds a routine out of catalog templates.
type CreateRoutineFromCatalogRequest struct {
	RoutineName string   `json:"routineName"`
	TemplateIDs []string `json:"templateIds" binding:"required,min=1"`
}

// RoutineResponse is the DTO for returning routine details.
type RoutineResponse struct {
	ID          string                   `json:"id"`
	StudentID   string                   `json:"studentId"`
	TrainerID   string                   `json:"trainerId"`
	RoutineName string                   `json:"routineName"`
	StartDate   time.Time                `json:"startDate"`
	Completed   bool                     `json:"completed"`
	Exercises   []domain.RoutineExercise `json:"exercises"`
}

// RecordInjuryRequest records a new injury for a student.
type RecordInjuryRequest struct {
	Description  string `json:"description" binding:"required"`
	TrainerNotes string `json:"trainerNotes"`
}

// InjuryResponse is the DTO for returning injury details.
type InjuryResponse struct {
	ID           string                 `json:"id"`
	StudentID    string                 `json:"studentId"`
	StudentName  string                 `json:"studentName,omitempty"`
	Description  string                 `json:"description"`
	Date         time.Time              `json:"date"`
	Status       string                 `json:"status"`
	TrainerNotes string                 `json:"trainerNotes,omitempty"`
	Comments     []domain.InjuryComment `json:"comments"`
}

// AddCommentRequest appends one comment to an injury thread.
type AddCommentRequest struct {
	Text string `json:"text" binding:"required"`
}

// CreateTemplateRequest adds a predefined exercise to the catalog.
type CreateTemplateRequest struct {
	Area        string  `json:"area" binding:"required"`
	Name        string  `json:"name" binding:"required"`
	Repetitions int     `json:"repetitions" binding:"required,gt=0"`
	Series      int     `json:"series" binding:"required,gt=0"`
	Weight      float64 `json:"weight" binding:"gte=0"`
}

// TemplateResponse is the DTO for returning catalog templates.
type TemplateResponse struct {
	ID          string    `json:"id"`
	TrainerID   string    `json:"trainerId"`
	Area        string    `json:"area"`
	Name        string    `json:"name"`
	Repetitions int       `json:"repetitions"`
	Series      int       `json:"series"`
	Weight      float64   `json:"weight"`
	HasDemo     bool      `json:"hasDemo"`
	CreatedAt   time.Time `json:"createdAt"`
}

// DemoUploadURLRequest asks for a presigned PUT URL for a demo video.
type DemoUploadURLRequest struct {
	ContentType string `json:"contentType" binding:"required"`
}

// ConfirmDemoUploadRequest reports a finished demo upload.
type ConfirmDemoUploadRequest struct {
	ObjectKey string `json:"objectKey" binding:"required"`
}

// --- Mappers ---

func MapRoutineToResponse(r *domain.Routine) RoutineResponse {
	if r == nil {
		return RoutineResponse{}
	}
	return RoutineResponse{
		ID:          r.ID.Hex(),
		StudentID:   r.StudentID.Hex(),
		TrainerID:   r.TrainerID.Hex(),
		RoutineName: r.RoutineName,
		StartDate:   r.StartDate,
		Completed:   r.Completed,
		Exercises:   r.Exercises,
	}
}

func MapRoutinesToResponse(routines []domain.Routine) []RoutineResponse {
	responses := make([]RoutineResponse, len(routines))
	for i := range routines {
		responses[i] = MapRoutineToResponse(&routines[i])
	}
	return responses
}

func MapInjuryToResponse(in *domain.Injury) InjuryResponse {
	if in == nil {
		return InjuryResponse{}
	}
	return InjuryResponse{
		ID:           in.ID.Hex(),
		StudentID:    in.StudentID.Hex(),
		Description:  in.Description,
		Date:         in.Date,
		Status:       in.Status,
		TrainerNotes: in.TrainerNotes,
		Comments:     in.Comments,
	}
}

func MapInjuriesToResponse(injuries []domain.Injury) []InjuryResponse {
	responses := make([]InjuryResponse, len(injuries))
	for i := range injuries {
		responses[i] = MapInjuryToResponse(&injuries[i])
	}
	return responses
}

func MapTemplateToResponse(t *domain.PredefinedExercise) TemplateResponse {
	if t == nil {
		return TemplateResponse{}
	}
	return TemplateResponse{
		ID:          t.ID.Hex(),
		TrainerID:   t.TrainerID.Hex(),
		Area:        t.Area,
		Name:        t.Name,
		Repetitions: t.Repetitions,
		Series:      t.Series,
		Weight:      t.Weight,
		HasDemo:     t.DemoObjectKey != "",
		CreatedAt:   t.CreatedAt,
	}
}

func MapTemplatesToResponse(templates []domain.PredefinedExercise) []TemplateResponse {
	responses := make([]TemplateResponse, len(templates))
	for i := range templates {
		responses[i] = MapTemplateToResponse(&templates[i])
	}
	return responses
}

// trainerIDFromToken resolves the authenticated trainer's ObjectID.
func trainerIDFromToken(c *gin.Context) (primitive.ObjectID, bool) {
	idStr, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify trainer from token.")
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(idStr)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid trainer ID format in token.")
		return primitive.NilObjectID, false
	}
	return id, true
}

// --- Handler Methods ---

// GetMyStudents lists the students managed by the authenticated trainer.
func (h *TrainerHandler) GetMyStudents(c *gin.Context) {
	trainerID, ok := trainerIDFromToken(c)
	if !ok {
		return
	}

	students, err := h.assignmentService.ListStudents(c.Request.Context(), trainerID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve students.")
		return
	}

	c.JSON(http.StatusOK, MapUsersToResponse(students))
}

// CreateRoutine creates a custom routine for one of the trainer's students.
func (h *TrainerHandler) CreateRoutine(c *gin.Context) {
	trainerID, ok := trainerIDFromToken(c)
	if !ok {
		return
	}
	studentID, err := primitive.ObjectIDFromHex(c.Param("studentId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid student ID format.")
		return
	}

	var req CreateRoutineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	exercises := make([]domain.RoutineExercise, len(req.Exercises))
	for i, ex := range req.Exercises {
		exercises[i] = domain.RoutineExercise{
			Name:        ex.Name,
			Area:        ex.Area,
			Sets:        ex.Sets,
			Repetitions: ex.Repetitions,
			Weight:      ex.Weight,
		}
	}

	routine, err := h.routineService.CreateCustomRoutine(c.Request.Context(), trainerID, studentID, req.RoutineName, exercises)
	if err != nil {
		h.respondRoutineError(c, err)
		return
	}

	c.JSON(http.StatusCreated, MapRoutineToResponse(routine))
}

// CreateRoutineFromCatalog builds a routine from predefined exercises.
func (h *TrainerHandler) CreateRoutineFromCatalog(c *gin.Context) {
	trainerID, ok := trainerIDFromToken(c)
	if !ok {
		return
	}
	studentID, err := primitive.ObjectIDFromHex(c.Param("studentId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid student ID format.")
		return
	}

	var req CreateRoutineFromCatalogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	templateIDs := make([]primitive.ObjectID, len(req.TemplateIDs))
	for i, idStr := range req.TemplateIDs {
		id, err := primitive.ObjectIDFromHex(idStr)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Invalid template ID format: %s", idStr))
			return
		}
		templateIDs[i] = id
	}

	routine, err := h.routineService.AssignFromCatalog(c.Request.Context(), trainerID, studentID, req.RoutineName, templateIDs)
	if err != nil {
		if errors.Is(err, service.ErrTemplateNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
			return
		}
		if errors.Is(err, service.ErrNoTemplatesSelected) {
			abortWithError(c, http.StatusBadRequest, err.Error())
			return
		}
		h.respondRoutineError(c, err)
		return
	}

	c.JSON(http.StatusCreated, MapRoutineToResponse(routine))
}

// GetStudentRoutines lists a managed student's pending routines.
func (h *TrainerHandler) GetStudentRoutines(c *gin.Context) {
	trainerID, ok := trainerIDFromToken(c)
	if !ok {
		return
	}
	studentID, err := primitive.ObjectIDFromHex(c.Param("studentId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid student ID format.")
		return
	}

	// The student must be managed by this trainer; reuse the edge read.
	students, err := h.assignmentService.ListStudents(c.Request.Context(), trainerID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to verify student.")
		return
	}
	managed := false
	for _, st := range students {
		if st.ID == studentID {
			managed = true
			break
		}
	}
	if !managed {
		abortWithError(c, http.StatusForbidden, "Student is not managed by this trainer.")
		return
	}

	routines, err := h.routineService.ListRoutines(c.Request.Context(), studentID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve routines.")
		return
	}

	c.JSON(http.StatusOK, MapRoutinesToResponse(routines))
}

// RecordInjury records an injury for a managed student.
func (h *TrainerHandler) RecordInjury(c *gin.Context) {
	trainerID, ok := trainerIDFromToken(c)
	if !ok {
		return
	}
	studentID, err := primitive.ObjectIDFromHex(c.Param("studentId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid student ID format.")
		return
	}

	var req RecordInjuryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	injury, err := h.injuryService.RecordInjury(c.Request.Context(), trainerID, studentID, req.Description, req.TrainerNotes)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrStudentNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrInjuryDescriptionRequired):
			abortWithError(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrNotAStudent), errors.Is(err, service.ErrStudentNotManaged):
			abortWithError(c, http.StatusForbidden, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to record injury.")
		}
		return
	}

	c.JSON(http.StatusCreated, MapInjuryToResponse(injury))
}

// ListAllInjuries lists every injury across the trainer's students, joined
// with the student display names.
func (h *TrainerHandler) ListAllInjuries(c *gin.Context) {
	trainerID, ok := trainerIDFromToken(c)
	if !ok {
		return
	}

	injuries, err := h.injuryService.ListAllInjuries(c.Request.Context(), trainerID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve injuries.")
		return
	}

	responses := make([]InjuryResponse, len(injuries))
	for i := range injuries {
		responses[i] = MapInjuryToResponse(&injuries[i].Injury)
		responses[i].StudentName = injuries[i].StudentName
	}

	c.JSON(http.StatusOK, responses)
}

// AddComment appends a trainer comment to an injury thread.
func (h *TrainerHandler) AddComment(c *gin.Context) {
	trainerID, ok := trainerIDFromToken(c)
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

	injury, err := h.injuryService.AddComment(c.Request.Context(), trainerID, domain.CommentByTrainer, injuryID, req.Text)
	if err != nil {
		respondCommentError(c, err)
		return
	}

	c.JSON(http.StatusOK, MapInjuryToResponse(injury))
}

// CreateTemplate adds a predefined exercise to the catalog.
func (h *TrainerHandler) CreateTemplate(c *gin.Context) {
	trainerID, ok := trainerIDFromToken(c)
	if !ok {
		return
	}

	var req CreateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	template, err := h.catalogService.CreateTemplate(c.Request.Context(), trainerID, req.Area, req.Name, req.Repetitions, req.Series, req.Weight)
	if err != nil {
		if errors.Is(err, service.ErrTemplateValidation) {
			abortWithError(c, http.StatusBadRequest, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to create template.")
		}
		return
	}

	c.JSON(http.StatusCreated, MapTemplateToResponse(template))
}

// ListTemplates returns the whole catalog.
func (h *TrainerHandler) ListTemplates(c *gin.Context) {
	templates, err := h.catalogService.ListTemplates(c.Request.Context())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve templates.")
		return
	}

	c.JSON(http.StatusOK, MapTemplatesToResponse(templates))
}

// RequestDemoUploadURL returns a presigned PUT URL for a template demo video.
func (h *TrainerHandler) RequestDemoUploadURL(c *gin.Context) {
	trainerID, ok := trainerIDFromToken(c)
	if !ok {
		return
	}
	templateID, err := primitive.ObjectIDFromHex(c.Param("templateId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid template ID format.")
		return
	}

	var req DemoUploadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	resp, err := h.catalogService.RequestDemoUploadURL(c.Request.Context(), trainerID, templateID, req.ContentType)
	if err != nil {
		respondTemplateError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ConfirmDemoUpload records a finished demo upload on the template.
func (h *TrainerHandler) ConfirmDemoUpload(c *gin.Context) {
	trainerID, ok := trainerIDFromToken(c)
	if !ok {
		return
	}
	templateID, err := primitive.ObjectIDFromHex(c.Param("templateId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid template ID format.")
		return
	}

	var req ConfirmDemoUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	if err := h.catalogService.ConfirmDemoUpload(c.Request.Context(), trainerID, templateID, req.ObjectKey); err != nil {
		respondTemplateError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// GetDemoDownloadURL returns a presigned GET URL for a template demo video.
func (h *TrainerHandler) GetDemoDownloadURL(c *gin.Context) {
	templateID, err := primitive.ObjectIDFromHex(c.Param("templateId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid template ID format.")
		return
	}

	url, err := h.catalogService.GetDemoDownloadURL(c.Request.Context(), templateID)
	if err != nil {
		respondTemplateError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"downloadUrl": url})
}

// respondRoutineError maps routine-service errors shared by the create paths.
func (h *TrainerHandler) respondRoutineError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrStudentNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrRoutineNameRequired), errors.Is(err, service.ErrRoutineWithoutExercise):
		abortWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNotAStudent), errors.Is(err, service.ErrStudentNotManaged):
		abortWithError(c, http.StatusForbidden, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "Failed to create routine.")
	}
}

// respondCommentError maps comment errors shared by trainer and student handlers.
func respondCommentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInjuryNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrCommentTextRequired), errors.Is(err, service.ErrInvalidCommentAuthor):
		abortWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrInjuryAccessDenied):
		abortWithError(c, http.StatusForbidden, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "Failed to add comment.")
	}
}

// respondTemplateError maps catalog-service errors for the demo video endpoints.
func respondTemplateError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTemplateNotFound), errors.Is(err, service.ErrNoDemoVideo):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrTemplateValidation):
		abortWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrTemplateAccessDenied):
		abortWithError(c, http.StatusForbidden, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "Failed to process demo video request.")
	}
}
