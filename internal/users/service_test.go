package users

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/impactreport/impact/backend/go-services/internal/models"
)

type fakeRepo struct {
	byEmail map[string]*models.User
	getErr  error
}

func (f *fakeRepo) UpsertByEmail(ctx context.Context, u *models.User) (*models.User, error) {
	if f.byEmail == nil {
		f.byEmail = map[string]*models.User{}
	}
	cp := *u
	cp.ID = "abcd1234"
	f.byEmail[normalizeEmail(u.Email)] = &cp
	return &cp, nil
}

func (f *fakeRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.byEmail[normalizeEmail(email)], nil
}

func TestCreateUserAndAuthenticate(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewServiceWithCost(repo, bcrypt.MinCost)
	ctx := context.Background()

	u, err := svc.CreateUser(ctx, "Admin@Example.com", "correct-horse", "Ada", "Lovelace", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.PasswordHash == "" || u.PasswordHash == "correct-horse" {
		t.Fatalf("password must be stored hashed, got %q", u.PasswordHash)
	}

	got, err := svc.Authenticate(ctx, "admin@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("authenticate failed: %v", err)
	}
	if got.FirstName != "Ada" || got.LastName != "Lovelace" || !got.Admin {
		t.Fatalf("unexpected user: %+v", got)
	}

	if _, err := svc.Authenticate(ctx, "admin@example.com", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong password, got %v", err)
	}
	if _, err := svc.Authenticate(ctx, "nobody@example.com", "correct-horse"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
	if _, err := svc.Authenticate(ctx, "", ""); !errors.Is(err, ErrMissingFields) {
		t.Fatalf("expected ErrMissingFields, got %v", err)
	}
}

func TestAuthenticate_RepoError(t *testing.T) {
	svc := NewServiceWithCost(&fakeRepo{getErr: errors.New("db down")}, bcrypt.MinCost)
	_, err := svc.Authenticate(context.Background(), "a@b.c", "password1")
	if err == nil || errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected storage error, got %v", err)
	}
}

func TestCreateUser_ShortPassword(t *testing.T) {
	svc := NewServiceWithCost(&fakeRepo{}, bcrypt.MinCost)
	if _, err := svc.CreateUser(context.Background(), "a@b.c", "short", "", "", false); err == nil {
		t.Fatalf("expected error for short password")
	}
}

func TestEnsureAdmin_OnlyOnce(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewServiceWithCost(repo, bcrypt.MinCost)
	ctx := context.Background()

	created, err := svc.EnsureAdmin(ctx, "root@example.com", "first-password", "Root", "User")
	if err != nil || !created {
		t.Fatalf("expected admin to be created: created=%v err=%v", created, err)
	}
	created, err = svc.EnsureAdmin(ctx, "root@example.com", "second-password", "Root", "User")
	if err != nil || created {
		t.Fatalf("expected existing admin to be kept: created=%v err=%v", created, err)
	}
	if _, err := svc.Authenticate(ctx, "root@example.com", "first-password"); err != nil {
		t.Fatalf("original password should still work: %v", err)
	}
}

func TestMemoryUserRepository(t *testing.T) {
	repo := NewMemoryUserRepository()
	ctx := context.Background()
	u, err := repo.UpsertByEmail(ctx, &models.User{Email: " Editor@Example.com ", FirstName: "E"})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if u.Email != "editor@example.com" || u.CreatedAt.IsZero() {
		t.Fatalf("unexpected stored user: %+v", u)
	}
	got, err := repo.GetByEmail(ctx, "EDITOR@example.com")
	if err != nil || got == nil || got.FirstName != "E" {
		t.Fatalf("lookup failed: %+v %v", got, err)
	}
	missing, err := repo.GetByEmail(ctx, "nobody@example.com")
	if err != nil || missing != nil {
		t.Fatalf("expected nil for missing user: %+v %v", missing, err)
	}
}
