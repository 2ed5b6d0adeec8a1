package service

import (
	"context"
	"testing"
	"time"

	"github.com/Karthik-sherigar/CodeCollab-Live/internal/domain"
	"github.com/Karthik-sherigar/CodeCollab-Live/internal/security"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
)

func newAuthService(users *MockUserRepository) *AuthService {
	jwtManager := security.NewJWTManager("test-secret-for-auth-service", 15*time.Minute, 24*time.Hour)
	return NewAuthService(users, jwtManager)
}

func TestRegister(t *testing.T) {
	users := new(MockUserRepository)
	svc := newAuthService(users)

	users.On("EmailExists", mock.Anything, "alice@example.com").Return(false, nil)
	users.On("Create", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.Email == "alice@example.com" && u.Name == "Alice" && u.PasswordHash != "secret-password"
	})).Return(nil)

	user, err := svc.Register(context.Background(), domain.UserCreate{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "secret-password",
	})

	assert.NoError(t, err)
	assert.Equal(t, "Alice", user.Name)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("secret-password")))
	users.AssertExpectations(t)
}

func TestRegisterEmailTaken(t *testing.T) {
	users := new(MockUserRepository)
	svc := newAuthService(users)

	users.On("EmailExists", mock.Anything, "taken@example.com").Return(true, nil)

	_, err := svc.Register(context.Background(), domain.UserCreate{
		Name:     "Bob",
		Email:    "taken@example.com",
		Password: "some-password",
	})

	assert.ErrorIs(t, err, ErrEmailTaken)
	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestLogin(t *testing.T) {
	users := new(MockUserRepository)
	svc := newAuthService(users)

	hash, err := bcrypt.GenerateFromPassword([]byte("correct-password"), bcrypt.DefaultCost)
	assert.NoError(t, err)

	users.On("GetByEmail", mock.Anything, "alice@example.com").Return(&domain.User{
		ID:           uuid.New(),
		Name:         "Alice",
		Email:        "alice@example.com",
		PasswordHash: string(hash),
	}, nil)

	tokens, err := svc.Login(context.Background(), domain.UserLogin{
		Email:    "alice@example.com",
		Password: "correct-password",
	})

	assert.NoError(t, err)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)
	assert.Positive(t, tokens.ExpiresIn)
}

func TestLoginWrongPassword(t *testing.T) {
	users := new(MockUserRepository)
	svc := newAuthService(users)

	hash, _ := bcrypt.GenerateFromPassword([]byte("correct-password"), bcrypt.DefaultCost)
	users.On("GetByEmail", mock.Anything, "alice@example.com").Return(&domain.User{
		ID:           uuid.New(),
		Email:        "alice@example.com",
		PasswordHash: string(hash),
	}, nil)

	_, err := svc.Login(context.Background(), domain.UserLogin{
		Email:    "alice@example.com",
		Password: "wrong-password",
	})

	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginUnknownEmail(t *testing.T) {
	users := new(MockUserRepository)
	svc := newAuthService(users)

	users.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, nil)

	_, err := svc.Login(context.Background(), domain.UserLogin{
		Email:    "ghost@example.com",
		Password: "whatever",
	})

	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefresh(t *testing.T) {
	users := new(MockUserRepository)
	jwtManager := security.NewJWTManager("test-secret-for-auth-service", 15*time.Minute, 24*time.Hour)
	svc := NewAuthService(users, jwtManager)

	userID := uuid.New()
	refreshToken, err := jwtManager.GenerateRefreshToken(userID)
	assert.NoError(t, err)

	users.On("GetByID", mock.Anything, userID).Return(&domain.User{
		ID:    userID,
		Name:  "Alice",
		Email: "alice@example.com",
	}, nil)

	tokens, err := svc.Refresh(context.Background(), refreshToken)

	assert.NoError(t, err)
	assert.NotEmpty(t, tokens.AccessToken)
}

func TestRefreshInvalidToken(t *testing.T) {
	users := new(MockUserRepository)
	svc := newAuthService(users)

	_, err := svc.Refresh(context.Background(), "not-a-token")

	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
