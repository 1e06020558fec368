package repository

import (
	"errors"
	"sync"

	"github.com/Amo12312/accordai/models"
)

// memoryUserRepository is an in-memory UserRepository. It backs tests and
// development runs where no database file is wanted. Records are copied on
// the way in and out so callers never share memory with the store.
type memoryUserRepository struct {
	users map[string]models.User
	mu    sync.RWMutex
}

// NewMemoryUserRepository creates an empty in-memory UserRepository.
func NewMemoryUserRepository() UserRepository {
	return &memoryUserRepository{
		users: make(map[string]models.User),
	}
}

func (r *memoryUserRepository) FindByID(id string) (*models.User, error) {
	if id == "" {
		return nil, errors.New("user ID cannot be empty")
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, exists := r.users[id]
	if !exists {
		return nil, ErrUserNotFound
	}
	copied := user
	return &copied, nil
}

func (r *memoryUserRepository) FindByEmail(email string) (*models.User, error) {
	if email == "" {
		return nil, errors.New("email cannot be empty")
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if user.Email == email {
			copied := user
			return &copied, nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *memoryUserRepository) FindByGoogleID(googleID string) (*models.User, error) {
	if googleID == "" {
		return nil, errors.New("google ID cannot be empty")
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if user.GoogleID == googleID {
			copied := user
			return &copied, nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *memoryUserRepository) Create(user *models.User) error {
	if user.ID == "" {
		return errors.New("user ID cannot be empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[user.ID]; exists {
		return errors.New("user already exists: " + user.ID)
	}
	r.users[user.ID] = *user
	return nil
}

func (r *memoryUserRepository) Update(user *models.User) error {
	if user.ID == "" {
		return errors.New("user ID cannot be empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[user.ID]; !exists {
		return ErrUserNotFound
	}
	r.users[user.ID] = *user
	return nil
}

func (r *memoryUserRepository) CountUsers() (int64, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var total, premium int64
	for _, user := range r.users {
		total++
		if user.IsPremium {
			premium++
		}
	}
	return total, premium, nil
}
