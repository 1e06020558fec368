package repository

import (
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/Amo12312/accordai/models"
)

// ErrUserNotFound is returned when no user record matches the lookup.
var ErrUserNotFound = errors.New("user not found")

// UserRepository defines the interface for interacting with identity records.
// Two interchangeable implementations exist: a GORM/SQLite store for
// production and an in-memory map for tests.
type UserRepository interface {
	FindByID(id string) (*models.User, error)
	FindByEmail(email string) (*models.User, error)
	FindByGoogleID(googleID string) (*models.User, error)
	Create(user *models.User) error
	Update(user *models.User) error
	CountUsers() (total int64, premium int64, err error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new GORM-backed UserRepository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) FindByID(id string) (*models.User, error) {
	if id == "" {
		return nil, errors.New("user ID cannot be empty")
	}
	var user models.User
	err := r.db.First(&user, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		log.Printf("ERROR: [UserRepository] Failed to fetch user %s: %v", id, err)
		return nil, fmt.Errorf("failed to fetch user %s: %w", id, err)
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(email string) (*models.User, error) {
	if email == "" {
		return nil, errors.New("email cannot be empty")
	}
	var user models.User
	err := r.db.First(&user, "email = ?", email).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		log.Printf("ERROR: [UserRepository] Failed to fetch user by email %s: %v", email, err)
		return nil, fmt.Errorf("failed to fetch user by email: %w", err)
	}
	return &user, nil
}

func (r *userRepository) FindByGoogleID(googleID string) (*models.User, error) {
	if googleID == "" {
		return nil, errors.New("google ID cannot be empty")
	}
	var user models.User
	err := r.db.First(&user, "google_id = ?", googleID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		log.Printf("ERROR: [UserRepository] Failed to fetch user by google ID: %v", err)
		return nil, fmt.Errorf("failed to fetch user by google ID: %w", err)
	}
	return &user, nil
}

func (r *userRepository) Create(user *models.User) error {
	if user.ID == "" {
		return errors.New("user ID cannot be empty")
	}
	if err := r.db.Create(user).Error; err != nil {
		log.Printf("ERROR: [UserRepository] Failed to create user %s: %v", user.ID, err)
		return fmt.Errorf("failed to create user %s: %w", user.ID, err)
	}
	log.Printf("INFO: [UserRepository] Created user %s (guest=%v).", user.ID, user.IsGuest)
	return nil
}

func (r *userRepository) Update(user *models.User) error {
	if user.ID == "" {
		return errors.New("user ID cannot be empty")
	}
	if err := r.db.Save(user).Error; err != nil {
		log.Printf("ERROR: [UserRepository] Failed to update user %s: %v", user.ID, err)
		return fmt.Errorf("failed to update user %s: %w", user.ID, err)
	}
	return nil
}

func (r *userRepository) CountUsers() (int64, int64, error) {
	var total, premium int64
	if err := r.db.Model(&models.User{}).Count(&total).Error; err != nil {
		return 0, 0, fmt.Errorf("failed to count users: %w", err)
	}
	if err := r.db.Model(&models.User{}).Where("is_premium = ?", true).Count(&premium).Error; err != nil {
		return 0, 0, fmt.Errorf("failed to count premium users: %w", err)
	}
	return total, premium, nil
}
