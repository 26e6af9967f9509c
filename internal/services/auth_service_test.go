package services

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	customerrors "github.com/linkshort/linkshort/internal/errors"
	"github.com/linkshort/linkshort/internal/models"
)

// fakeUserRepo is an in-memory UserRepository for auth tests.
type fakeUserRepo struct {
	users map[string]*models.User // keyed by id
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*models.User)}
}

func (r *fakeUserRepo) Create(user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	stored := *user
	r.users[user.ID] = &stored
	return nil
}

func (r *fakeUserRepo) FindByEmail(email string) (*models.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			found := *user
			return &found, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) FindByID(id string) (*models.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	found := *user
	return &found, nil
}

func (r *fakeUserRepo) ExistsByEmail(email string) (bool, error) {
	_, err := r.FindByEmail(email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return err == nil, err
}

func newTestAuthService(repo *fakeUserRepo) *AuthService {
	return NewAuthService(repo, "test-secret", time.Hour)
}

func TestRegister(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(repo)

	user, err := svc.Register("Alice", "alice@example.com", "s3cret-password")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if user.ID == "" {
		t.Error("user id was not assigned")
	}
	if user.Email != "alice@example.com" {
		t.Errorf("email = %q, want %q", user.Email, "alice@example.com")
	}
	if user.Password == "s3cret-password" {
		t.Error("password stored in plaintext")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("s3cret-password")); err != nil {
		t.Errorf("stored password is not a valid bcrypt hash of the input: %v", err)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(repo)

	if _, err := svc.Register("Alice", "alice@example.com", "s3cret-password"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	_, err := svc.Register("Bob", "alice@example.com", "another-password")
	if !errors.Is(err, customerrors.ErrEmailAlreadyUsed) {
		t.Errorf("Register() with taken email error = %v, want ErrEmailAlreadyUsed", err)
	}
}

func TestLoginAndVerifyToken(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(repo)

	user, err := svc.Register("Alice", "alice@example.com", "s3cret-password")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	result, err := svc.Login("alice@example.com", "s3cret-password")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if result.AccessToken == "" {
		t.Fatal("Login() returned empty access token")
	}
	if !result.ExpiresAt.After(time.Now()) {
		t.Errorf("token expires_at = %v, want a future timestamp", result.ExpiresAt)
	}

	userID, err := svc.VerifyToken(result.AccessToken)
	if err != nil {
		t.Fatalf("VerifyToken() error = %v", err)
	}
	if userID != user.ID {
		t.Errorf("VerifyToken() user id = %q, want %q", userID, user.ID)
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(repo)

	if _, err := svc.Register("Alice", "alice@example.com", "s3cret-password"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{name: "wrong password", email: "alice@example.com", password: "wrong-password"},
		{name: "unknown email", email: "nobody@example.com", password: "s3cret-password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Both cases must be indistinguishable from the outside
			_, err := svc.Login(tt.email, tt.password)
			if !errors.Is(err, customerrors.ErrInvalidCredentials) {
				t.Errorf("Login() error = %v, want ErrInvalidCredentials", err)
			}
		})
	}
}

func TestVerifyTokenRejectsGarbage(t *testing.T) {
	svc := newTestAuthService(newFakeUserRepo())

	for _, token := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := svc.VerifyToken(token); !errors.Is(err, customerrors.ErrInvalidToken) {
			t.Errorf("VerifyToken(%q) error = %v, want ErrInvalidToken", token, err)
		}
	}
}

func TestVerifyTokenRejectsForeignSignature(t *testing.T) {
	repo := newFakeUserRepo()
	issuer := NewAuthService(repo, "secret-a", time.Hour)
	verifier := NewAuthService(repo, "secret-b", time.Hour)

	if _, err := issuer.Register("Alice", "alice@example.com", "s3cret-password"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	result, err := issuer.Login("alice@example.com", "s3cret-password")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	if _, err := verifier.VerifyToken(result.AccessToken); !errors.Is(err, customerrors.ErrInvalidToken) {
		t.Errorf("VerifyToken() with wrong secret error = %v, want ErrInvalidToken", err)
	}
}

func TestVerifyTokenRejectsExpired(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewAuthService(repo, "test-secret", -time.Minute)

	if _, err := svc.Register("Alice", "alice@example.com", "s3cret-password"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	result, err := svc.Login("alice@example.com", "s3cret-password")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	if _, err := svc.VerifyToken(result.AccessToken); !errors.Is(err, customerrors.ErrInvalidToken) {
		t.Errorf("VerifyToken() with expired token error = %v, want ErrInvalidToken", err)
	}
}
