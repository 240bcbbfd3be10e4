package auth

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/aryan0dhankhar/wellpulse/internal/domain"
)

type account struct {
	user domain.User
	hash []byte
}

// UserStore manages user authentication against a fixed account table
type UserStore struct {
	mu    sync.RWMutex
	users map[string]*account // lower-cased email -> account
	byID  map[string]*account
}

// NewUserStore creates a store loaded with the demo accounts
func NewUserStore() *UserStore {
	store := &UserStore{
		users: make(map[string]*account),
		byID:  make(map[string]*account),
	}

	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	fixture := []struct {
		user     domain.User
		password string
	}{
		{domain.User{
			Base: domain.Base{ID: "1", CreatedAt: created, UpdatedAt: created}, Email: "admin@empresa.com",
			Name: "Administrador Sistema", Role: domain.RoleAdmin, CompanyID: "company-1", IsActive: true,
		}, "admin123"},
		{domain.User{
			Base: domain.Base{ID: "2", CreatedAt: created, UpdatedAt: created}, Email: "gerente@empresa.com",
			Name: "João Silva", Role: domain.RoleManager, CompanyID: "company-1", Sector: "Tecnologia",
			Position: "Gerente de TI", IsActive: true,
		}, "gerente123"},
		{domain.User{
			Base: domain.Base{ID: "3", CreatedAt: created, UpdatedAt: created}, Email: "funcionario@empresa.com",
			Name: "Maria Santos", Role: domain.RoleEmployee, CompanyID: "company-1", Sector: "Tecnologia",
			Position: "Desenvolvedora", IsActive: true,
		}, "func123"},
	}
	for _, f := range fixture {
		if err := store.AddUser(f.user, f.password); err != nil {
			panic(err)
		}
	}

	return store
}

// AddUser adds a user with a bcrypt-hashed password
func (us *UserStore) AddUser(user domain.User, password string) error {
	if user.ID == "" || user.Email == "" {
		return fmt.Errorf("user id and email are required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	us.mu.Lock()
	defer us.mu.Unlock()

	acc := &account{user: user, hash: hash}
	us.users[strings.ToLower(user.Email)] = acc
	us.byID[user.ID] = acc
	return nil
}

// Authenticate verifies credentials. Every mismatch, including an unknown
// email, yields domain.ErrInvalidCredentials.
func (us *UserStore) Authenticate(email, password string) (*domain.User, error) {
	us.mu.RLock()
	acc, exists := us.users[strings.ToLower(strings.TrimSpace(email))]
	us.mu.RUnlock()

	if !exists || !acc.user.IsActive {
		return nil, domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(acc.hash, []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	u := acc.user
	return &u, nil
}

// GetByID retrieves a user by id
func (us *UserStore) GetByID(id string) (*domain.User, error) {
	us.mu.RLock()
	defer us.mu.RUnlock()

	acc, exists := us.byID[id]
	if !exists {
		return nil, domain.NotFound("user")
	}
	u := acc.user
	return &u, nil
}
