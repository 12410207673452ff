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

// AuthHandler holds the authentication service dependency.
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// --- Request/Response Structs ---

// RegisterStudentRequest is the public self-registration payload. Only
// students register themselves; trainers are created by an admin.
type RegisterStudentRequest struct {
	Name     string  `json:"name" binding:"required"`
	Email    string  `json:"email" binding:"required,email"`
	Password string  `json:"password" binding:"required,min=8"`
	Year     int     `json:"year" binding:"required"`
	Gender   string  `json:"gender" binding:"required"`
	Height   float64 `json:"height" binding:"required,gt=0"`
	Weight   float64 `json:"weight" binding:"required,gt=0"`
}

// UserResponse excludes sensitive info like password hash
type UserResponse struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Email      string      `json:"email"`
	Role       domain.Role `json:"role"`
	Gender     string      `json:"gender,omitempty"`
	Year       int         `json:"year,omitempty"`
	Height     float64     `json:"height,omitempty"`
	Weight     float64     `json:"weight,omitempty"`
	Age        int         `json:"age,omitempty"`
	Experience string      `json:"experience,omitempty"`
	Phone      string      `json:"phone,omitempty"`
	CreatedAt  time.Time   `json:"createdAt"`
	StudentIDs []string    `json:"studentIds,omitempty"` // String ObjectIDs
	TrainerID  *string     `json:"trainerId,omitempty"`  // String ObjectID
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// --- Handler Methods ---

// Register handles student self-registration.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	profile := service.StudentProfile{
		Year:   req.Year,
		Gender: req.Gender,
		Height: req.Height,
		Weight: req.Weight,
	}

	user, err := h.authService.RegisterStudent(c.Request.Context(), req.Name, req.Email, req.Password, profile)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserAlreadyExists):
			abortWithError(c, http.StatusConflict, err.Error())
		case errors.Is(err, service.ErrProfileValidation):
			abortWithError(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrHashingFailed):
			abortWithError(c, http.StatusInternalServerError, "Could not process registration")
		default:
			abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred during registration")
		}
		return
	}

	c.JSON(http.StatusCreated, MapUserToResponse(user))
}

// Login authenticates a user and returns a JWT token plus the user record;
// the role in the record tells the client which surface to show.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	token, user, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAuthenticationFailed):
			abortWithError(c, http.StatusUnauthorized, err.Error())
		case errors.Is(err, service.ErrTokenGeneration):
			abortWithError(c, http.StatusInternalServerError, "Could not process login")
		default:
			abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred during login")
		}
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		Token: token,
		User:  MapUserToResponse(user),
	})
}

// MapUserToResponse converts a domain User to a UserResponse DTO.
// Crucially excludes PasswordHash and converts ObjectIDs to strings.
func MapUserToResponse(user *domain.User) UserResponse {
	if user == nil {
		return UserResponse{}
	}

	resp := UserResponse{
		ID:         user.ID.Hex(),
		Name:       user.Name,
		Email:      user.Email,
		Role:       user.Role,
		Gender:     user.Gender,
		Year:       user.Year,
		Height:     user.Height,
		Weight:     user.Weight,
		Age:        user.Age,
		Experience: user.Experience,
		Phone:      user.Phone,
		CreatedAt:  user.CreatedAt,
	}

	if len(user.StudentIDs) > 0 {
		resp.StudentIDs = make([]string, len(user.StudentIDs))
		for i, id := range user.StudentIDs {
			resp.StudentIDs[i] = id.Hex()
		}
	}

	if user.TrainerID != nil && *user.TrainerID != primitive.NilObjectID {
		trainerIDHex := (*user.TrainerID).Hex()
		resp.TrainerID = &trainerIDHex
	}

	return resp
}

// MapUsersToResponse converts a slice of users.
func MapUsersToResponse(users []domain.User) []UserResponse {
	responses := make([]UserResponse, len(users))
	for i := range users {
		responses[i] = MapUserToResponse(&users[i])
	}
	return responses
}
