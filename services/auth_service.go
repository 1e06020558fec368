package services

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/Amo12312/accordai/models"
	"github.com/Amo12312/accordai/repository"
)

// ErrEmailTaken is returned when registering with an email that already
// has an account.
var ErrEmailTaken = errors.New("an account with this email already exists")

// ErrInvalidCredentials is returned on a failed login. The message is
// deliberately the same for unknown email and wrong password.
var ErrInvalidCredentials = errors.New("invalid email or password")

// AuthService handles email/password and Google sign-in. Google ID-token
// verification happens upstream (external collaborator); this service
// only does the find-or-create bookkeeping.
type AuthService interface {
	Register(email, password, displayName string) (*models.User, string, error)
	Login(email, password string) (*models.User, string, error)
	GoogleSignIn(googleID, email, displayName string) (*models.User, string, error)
}

type authService struct {
	userRepo   repository.UserRepository
	jwtService JWTService
}

// NewAuthService creates an AuthService.
func NewAuthService(userRepo repository.UserRepository, jwtService JWTService) AuthService {
	return &authService{userRepo: userRepo, jwtService: jwtService}
}

func (s *authService) Register(email, password, displayName string) (*models.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, "", errors.New("email and password are required")
	}

	if existing, err := s.userRepo.FindByEmail(email); err == nil && existing != nil {
		return nil, "", ErrEmailTaken
	} else if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		return nil, "", fmt.Errorf("failed to look up email: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hashed),
		DisplayName:  displayName,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}
	log.Printf("INFO: [Auth] Registered user %s.", user.ID)

	token, err := s.jwtService.GenerateToken(user)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}
	return user, token, nil
}

func (s *authService) Login(email, password string) (*models.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("failed to look up email: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.jwtService.GenerateToken(user)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}
	return user, token, nil
}

// GoogleSignIn finds the account by google ID, links an existing email
// account, or creates a fresh one.
func (s *authService) GoogleSignIn(googleID, email, displayName string) (*models.User, string, error) {
	if googleID == "" {
		return nil, "", errors.New("google ID is required")
	}
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.userRepo.FindByGoogleID(googleID)
	if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		return nil, "", fmt.Errorf("failed to look up google ID: %w", err)
	}

	if user == nil {
		if email != "" {
			if existing, err := s.userRepo.FindByEmail(email); err == nil {
				existing.GoogleID = googleID
				if displayName != "" && existing.DisplayName == "" {
					existing.DisplayName = displayName
				}
				if err := s.userRepo.Update(existing); err != nil {
					return nil, "", fmt.Errorf("failed to link google account: %w", err)
				}
				user = existing
				log.Printf("INFO: [Auth] Linked google account to user %s.", user.ID)
			} else if !errors.Is(err, repository.ErrUserNotFound) {
				return nil, "", fmt.Errorf("failed to look up email: %w", err)
			}
		}
		if user == nil {
			user = &models.User{
				ID:          uuid.NewString(),
				Email:       email,
				GoogleID:    googleID,
				DisplayName: displayName,
			}
			if err := s.userRepo.Create(user); err != nil {
				return nil, "", fmt.Errorf("failed to create user: %w", err)
			}
			log.Printf("INFO: [Auth] Created user %s via google sign-in.", user.ID)
		}
	}

	token, err := s.jwtService.GenerateToken(user)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}
	return user, token, nil
}
