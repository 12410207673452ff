package service

import (
	"context"
	"errors"
	"time"

	"gympro/internal/domain"
	"gympro/internal/repository"

	"github.com/golang-jwt/jwt/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// --- Error Definitions ---
var (
	ErrUserAlreadyExists    = errors.New("user with this email already exists")
	ErrUserNotFound         = errors.New("user not found")
	ErrAuthenticationFailed = errors.New("authentication failed: invalid email or password")
	ErrHashingFailed        = errors.New("failed to hash password")
	ErrTokenGeneration      = errors.New("failed to generate authentication token")
	ErrProfileValidation    = errors.New("profile validation failed")
)

// StudentProfile carries the registration fields every student must provide.
type StudentProfile struct {
	Year   int
	Gender string
	Height float64 // cm
	Weight float64 // kg
}

// TrainerProfile carries the registration fields for trainer accounts,
// which only admins create.
type TrainerProfile struct {
	Age        int
	Gender     string
	Experience string
	Phone      string
}

// AuthService is the identity and role resolver: it issues principals
// (JWT tokens carrying uid and role) and creates the user records those
// principals map onto.
type AuthService interface {
	RegisterStudent(ctx context.Context, name, email, password string, profile StudentProfile) (*domain.User, error)
	RegisterTrainer(ctx context.Context, name, email, password string, profile TrainerProfile) (*domain.User, error)
	// UpdateStudentProfile lets a student edit their own name and body
	// metrics. Email, password, role and the trainer edge are not editable
	// through this path.
	UpdateStudentProfile(ctx context.Context, studentID primitive.ObjectID, name string, profile StudentProfile) (*domain.User, error)
	Login(ctx context.Context, email, password string) (token string, user *domain.User, err error)
	GetJWTSecret() string
}

// --- Service Implementation ---

// authService implements the AuthService interface.
type authService struct {
	userRepo      repository.UserRepository
	jwtSecret     string
	jwtExpiration time.Duration
}

// NewAuthService creates a new instance of authService.
func NewAuthService(userRepo repository.UserRepository, jwtSecret string, jwtExpiration time.Duration) AuthService {
	if jwtSecret == "" {
		panic("JWT secret cannot be empty") // Critical configuration
	}
	if jwtExpiration <= 0 {
		jwtExpiration = time.Hour * 1
	}
	return &authService{
		userRepo:      userRepo,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
	}
}

// RegisterStudent handles student self-registration. Students start
// unassigned; an admin links them to a trainer later.
func (s *authService) RegisterStudent(ctx context.Context, name, email, password string, profile StudentProfile) (*domain.User, error) {
	if name == "" || email == "" || password == "" {
		return nil, ErrProfileValidation
	}
	if profile.Height <= 0 || profile.Weight <= 0 {
		return nil, ErrProfileValidation
	}

	user := &domain.User{
		Name:   name,
		Email:  email,
		Role:   domain.RoleStudent,
		Year:   profile.Year,
		Gender: profile.Gender,
		Height: profile.Height,
		Weight: profile.Weight,
		// TrainerID stays nil until an admin assigns one
	}

	return s.register(ctx, user, password)
}

// RegisterTrainer creates a trainer account with an empty student list.
func (s *authService) RegisterTrainer(ctx context.Context, name, email, password string, profile TrainerProfile) (*domain.User, error) {
	if name == "" || email == "" || password == "" {
		return nil, ErrProfileValidation
	}

	user := &domain.User{
		Name:       name,
		Email:      email,
		Role:       domain.RoleTrainer,
		Age:        profile.Age,
		Gender:     profile.Gender,
		Experience: profile.Experience,
		Phone:      profile.Phone,
		StudentIDs: []primitive.ObjectID{},
	}

	return s.register(ctx, user, password)
}

// UpdateStudentProfile applies the same field validation as registration and
// persists the editable profile fields only.
func (s *authService) UpdateStudentProfile(ctx context.Context, studentID primitive.ObjectID, name string, profile StudentProfile) (*domain.User, error) {
	if name == "" || profile.Gender == "" || profile.Year == 0 {
		return nil, ErrProfileValidation
	}
	if profile.Height <= 0 || profile.Weight <= 0 {
		return nil, ErrProfileValidation
	}

	user, err := s.userRepo.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if !user.IsStudent() {
		return nil, ErrNotAStudent
	}

	if err := s.userRepo.UpdateStudentProfile(ctx, studentID, name, profile.Year, profile.Gender, profile.Height, profile.Weight); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	user.Name = name
	user.Year = profile.Year
	user.Gender = profile.Gender
	user.Height = profile.Height
	user.Weight = profile.Weight
	user.PasswordHash = ""
	return user, nil
}

// register hashes the password and persists the user after an email
// uniqueness check.
func (s *authService) register(ctx context.Context, user *domain.User, password string) (*domain.User, error) {
	// Check if user already exists
	_, err := s.userRepo.GetByEmail(ctx, user.Email)
	if err == nil {
		return nil, ErrUserAlreadyExists
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrHashingFailed
	}
	user.PasswordHash = string(hashedPassword)

	userID, err := s.userRepo.Create(ctx, user)
	if err != nil {
		// The unique email index closes the window between the GetByEmail
		// check and the insert.
		return nil, err
	}
	user.ID = userID

	user.PasswordHash = ""
	return user, nil
}

// Login handles user authentication and JWT generation.
func (s *authService) Login(ctx context.Context, email, password string) (token string, user *domain.User, err error) {
	if email == "" || password == "" {
		err = errors.New("email and password cannot be empty")
		return
	}

	user, err = s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			err = ErrAuthenticationFailed // User not found maps to auth failure
			return
		}
		return
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password))
	if err != nil {
		err = ErrAuthenticationFailed
		user = nil
		return
	}

	token, err = s.generateJWT(user)
	if err != nil {
		return "", nil, ErrTokenGeneration
	}

	user.PasswordHash = ""
	return token, user, nil
}

// --- JWT Helper ---

// jwtClaims defines the structure of the JWT payload.
type jwtClaims struct {
	UserID string      `json:"uid"`
	Role   domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// generateJWT creates a new JWT token for the given user.
func (s *authService) generateJWT(user *domain.User) (string, error) {
	expirationTime := time.Now().Add(s.jwtExpiration)
	claims := &jwtClaims{
		UserID: user.ID.Hex(),
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.Hex(),
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "gympro",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedToken, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", err
	}
	return signedToken, nil
}

// GetJWTSecret returns the JWT secret for middleware authentication
func (s *authService) GetJWTSecret() string {
	return s.jwtSecret
}
