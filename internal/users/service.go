package users

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/impactreport/impact/backend/go-services/internal/models"
)

var (
	// ErrInvalidCredentials covers unknown emails and wrong passwords alike.
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrMissingFields      = errors.New("email and password are required")
)

// Service encapsulates user-related business logic
type Service struct {
	repo UserRepository
	cost int
}

func NewService(r UserRepository) *Service {
	return &Service{repo: r, cost: bcrypt.DefaultCost}
}

// NewServiceWithCost lets tests trade hash strength for speed.
func NewServiceWithCost(r UserRepository, cost int) *Service {
	return &Service{repo: r, cost: cost}
}

// Authenticate checks an email/password pair and returns the matching user.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	if email == "" || password == "" {
		return nil, ErrMissingFields
	}
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if u == nil || u.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// CreateUser hashes the password and creates or replaces the account for email.
func (s *Service) CreateUser(ctx context.Context, email, password, firstName, lastName string, admin bool) (*models.User, error) {
	if email == "" || password == "" {
		return nil, ErrMissingFields
	}
	if len(password) < 8 {
		return nil, errors.New("password must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &models.User{
		Email:        email,
		FirstName:    firstName,
		LastName:     lastName,
		Admin:        admin,
		PasswordHash: string(hash),
	}
	return s.repo.UpsertByEmail(ctx, u)
}

// EnsureAdmin creates the bootstrap admin unless an account with that email
// already exists. It reports whether a user was created.
func (s *Service) EnsureAdmin(ctx context.Context, email, password, firstName, lastName string) (bool, error) {
	existing, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return false, fmt.Errorf("lookup user: %w", err)
	}
	if existing != nil {
		return false, nil
	}
	if _, err := s.CreateUser(ctx, email, password, firstName, lastName, true); err != nil {
		return false, err
	}
	return true, nil
}
