package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"linkvault/internal/apperror"
	"linkvault/internal/auth"
	"linkvault/internal/model"
)

// mockUserRepo is an in-memory repository.UserRepository.
type mockUserRepo struct {
	byID    map[string]*model.User
	byEmail map[string]*model.User
	nextID  int
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{
		byID:    make(map[string]*model.User),
		byEmail: make(map[string]*model.User),
	}
}

func (m *mockUserRepo) CreateUser(_ context.Context, u *model.User) error {
	if _, taken := m.byEmail[u.Email]; taken {
		return apperror.Conflict("user", u.Email)
	}
	m.nextID++
	u.ID = fmt.Sprintf("user-%d", m.nextID)
	u.IsActive = true
	stored := *u
	m.byID[u.ID] = &stored
	m.byEmail[u.Email] = &stored
	return nil
}

func (m *mockUserRepo) GetUserByID(_ context.Context, id string) (*model.User, error) {
	u, ok := m.byID[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	result := *u
	return &result, nil
}

func (m *mockUserRepo) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	u, ok := m.byEmail[email]
	if !ok {
		return nil, apperror.NotFound("user", email)
	}
	result := *u
	return &result, nil
}

func (m *mockUserRepo) UpsertGitHubUser(_ context.Context, u *model.User) error {
	if u.GitHubID == nil {
		return fmt.Errorf("github id is required")
	}
	for _, existing := range m.byID {
		if existing.GitHubID != nil && *existing.GitHubID == *u.GitHubID {
			u.ID = existing.ID
			u.IsActive = existing.IsActive
			u.CreatedAt = existing.CreatedAt
			existing.Email = u.Email
			existing.Username = u.Username
			return nil
		}
	}
	return m.CreateUser(context.Background(), u)
}

// deactivate flips is_active in the store, simulating an admin action after
// the user already holds a valid token.
func (m *mockUserRepo) deactivate(id string) {
	if u, ok := m.byID[id]; ok {
		u.IsActive = false
		m.byEmail[u.Email].IsActive = false
	}
}

func newTestAuthService(t *testing.T) (*AuthService, *mockUserRepo) {
	t.Helper()
	tokens, err := auth.NewTokenService("test-secret-at-least-16-chars!!", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	repo := newMockUserRepo()
	// bcrypt.MinCost keeps each test in microseconds instead of ~250ms
	svc := NewAuthService(repo, tokens, auth.NewPasswordServiceWithCost(bcrypt.MinCost), testLogger())
	return svc, repo
}

// =========================================================================
// REGISTER TESTS
// =========================================================================

func TestRegister(t *testing.T) {
	svc, _ := newTestAuthService(t)

	user, err := svc.Register(context.Background(), "New@Example.COM", "newbie", "hunter2hunter2")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if user.Email != "new@example.com" {
		t.Errorf("Email = %q, want lowercased", user.Email)
	}
	if user.PasswordHash == "" || user.PasswordHash == "hunter2hunter2" {
		t.Error("Register() must store a hash, never the raw password")
	}
	if !user.IsActive {
		t.Error("new account should start active")
	}
}

func TestRegister_Validation(t *testing.T) {
	svc, _ := newTestAuthService(t)

	tests := []struct {
		name                      string
		email, username, password string
	}{
		{"empty email", "", "u", "longenough"},
		{"not an email", "no-at-sign", "u", "longenough"},
		{"empty username", "a@example.com", "  ", "longenough"},
		{"short password", "a@example.com", "u", "seven77"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.email, tt.username, tt.password)
			if !errors.Is(err, apperror.ErrValidation) {
				t.Errorf("Register() error = %v, want ErrValidation", err)
			}
		})
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _ := newTestAuthService(t)

	if _, err := svc.Register(context.Background(), "dup@example.com", "first", "password1"); err != nil {
		t.Fatalf("first Register() error = %v", err)
	}

	_, err := svc.Register(context.Background(), "dup@example.com", "second", "password2")
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("duplicate Register() error = %v, want ErrConflict", err)
	}
}

// =========================================================================
// LOGIN TESTS
// =========================================================================

func TestLogin(t *testing.T) {
	svc, _ := newTestAuthService(t)

	registered, err := svc.Register(context.Background(), "a@example.com", "alice", "correcthorse")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	result, err := svc.Login(context.Background(), "A@Example.com", "correcthorse")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if result.Token == "" {
		t.Error("Login() returned no token")
	}
	if result.User.ID != registered.ID {
		t.Errorf("Login().User.ID = %q, want %q", result.User.ID, registered.ID)
	}
}

// Wrong password and unknown email must be the same error — anything else
// is an account-enumeration oracle.
func TestLogin_IndistinguishableFailures(t *testing.T) {
	svc, _ := newTestAuthService(t)

	if _, err := svc.Register(context.Background(), "a@example.com", "alice", "correcthorse"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	_, wrongPass := svc.Login(context.Background(), "a@example.com", "wrong")
	_, noAccount := svc.Login(context.Background(), "nobody@example.com", "whatever")

	if !errors.Is(wrongPass, apperror.ErrUnauthenticated) {
		t.Errorf("wrong password error = %v, want ErrUnauthenticated", wrongPass)
	}
	if !errors.Is(noAccount, apperror.ErrUnauthenticated) {
		t.Errorf("unknown email error = %v, want ErrUnauthenticated", noAccount)
	}
	if wrongPass.Error() != noAccount.Error() {
		t.Errorf("failure messages differ: %q vs %q", wrongPass.Error(), noAccount.Error())
	}
}

func TestLogin_DeactivatedAccount(t *testing.T) {
	svc, repo := newTestAuthService(t)

	user, err := svc.Register(context.Background(), "a@example.com", "alice", "correcthorse")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	repo.deactivate(user.ID)

	// Correct credentials, deactivated account: 403-class, not 401-class.
	_, err = svc.Login(context.Background(), "a@example.com", "correcthorse")
	if !errors.Is(err, apperror.ErrForbidden) {
		t.Errorf("Login() on deactivated account error = %v, want ErrForbidden", err)
	}
}

// =========================================================================
// GITHUB LOGIN TESTS
// =========================================================================

func TestLoginOrRegisterGitHub(t *testing.T) {
	svc, _ := newTestAuthService(t)

	gh := &auth.GitHubUser{ID: 42, Login: "octocat", Email: "Octo@Example.com"}

	first, err := svc.LoginOrRegisterGitHub(context.Background(), gh)
	if err != nil {
		t.Fatalf("first LoginOrRegisterGitHub() error = %v", err)
	}
	if first.Token == "" || first.User.ID == "" {
		t.Fatalf("first login result incomplete: %+v", first)
	}
	if first.User.Email != "octo@example.com" {
		t.Errorf("Email = %q, want lowercased", first.User.Email)
	}

	// Second login with the same GitHub ID reuses the account
	second, err := svc.LoginOrRegisterGitHub(context.Background(), gh)
	if err != nil {
		t.Fatalf("second LoginOrRegisterGitHub() error = %v", err)
	}
	if second.User.ID != first.User.ID {
		t.Errorf("second login created a new account: %q vs %q", second.User.ID, first.User.ID)
	}
}

func TestLoginOrRegisterGitHub_Deactivated(t *testing.T) {
	svc, repo := newTestAuthService(t)

	gh := &auth.GitHubUser{ID: 42, Login: "octocat", Email: "octo@example.com"}
	first, err := svc.LoginOrRegisterGitHub(context.Background(), gh)
	if err != nil {
		t.Fatalf("LoginOrRegisterGitHub() error = %v", err)
	}
	repo.deactivate(first.User.ID)

	if _, err := svc.LoginOrRegisterGitHub(context.Background(), gh); !errors.Is(err, apperror.ErrForbidden) {
		t.Errorf("deactivated OAuth login error = %v, want ErrForbidden", err)
	}
}

// =========================================================================
// ACTIVE CHECK TESTS
// =========================================================================

func TestVerifyActive(t *testing.T) {
	svc, repo := newTestAuthService(t)

	user, err := svc.Register(context.Background(), "a@example.com", "alice", "correcthorse")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if err := svc.VerifyActive(context.Background(), user.ID); err != nil {
		t.Errorf("VerifyActive() on active account error = %v", err)
	}

	repo.deactivate(user.ID)
	if err := svc.VerifyActive(context.Background(), user.ID); !errors.Is(err, apperror.ErrForbidden) {
		t.Errorf("VerifyActive() on deactivated account error = %v, want ErrForbidden", err)
	}

	if err := svc.VerifyActive(context.Background(), "ghost"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("VerifyActive() on missing account error = %v, want ErrNotFound", err)
	}
}
