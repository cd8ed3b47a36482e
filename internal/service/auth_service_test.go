package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"

	"github.com/dkondrashov/marketplace-backend/internal/models"
	"github.com/dkondrashov/marketplace-backend/internal/pkg/apperror"
	"github.com/dkondrashov/marketplace-backend/internal/repository"
)

type mockAuthRepository struct {
	mock.Mock
}

func (m *mockAuthRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	if args.Error(0) == nil {
		user.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *mockAuthRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockAuthRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockAuthRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockAuthRepository) UpdateLastLoginAt(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *mockAuthRepository) CreateSession(ctx context.Context, session *models.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *mockAuthRepository) DeleteSession(ctx context.Context, refreshToken string) error {
	args := m.Called(ctx, refreshToken)
	return args.Error(0)
}

func (m *mockAuthRepository) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

func newTestTokenManager() *TokenManager {
	return NewTokenManager("access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour)
}

func TestAuthService_Register_Success(t *testing.T) {
	repo := new(mockAuthRepository)
	svc := NewAuthService(repo, newTestTokenManager())
	ctx := context.Background()

	repo.On("GetByEmail", ctx, "ivan.petrov@example.com").Return(nil, repository.ErrUserNotFound)
	repo.On("Create", ctx, mock.MatchedBy(func(u *models.User) bool {
		return u.Email == "ivan.petrov@example.com" && u.Role == "freelancer" && u.IsActive
	})).Return(nil)
	repo.On("CreateSession", ctx, mock.Anything).Return(nil)

	result, err := svc.Register(ctx, RegisterInput{
		Email:    "Ivan.Petrov@example.com",
		Password: "Sup3rSecret",
		Role:     "freelancer",
	}, nil)
	assert.NoError(t, err)
	assert.NotEmpty(t, result.TokenPair.AccessToken)
	assert.NotEmpty(t, result.TokenPair.RefreshToken)
	// Username выводится из email, если не указан явно.
	assert.Equal(t, "ivan_petrov", result.User.Username)
	repo.AssertExpectations(t)
}

func TestAuthService_Register_UsernameFromDashedEmail(t *testing.T) {
	repo := new(mockAuthRepository)
	svc := NewAuthService(repo, newTestTokenManager())
	ctx := context.Background()

	repo.On("GetByEmail", ctx, "anna-maria@example.com").Return(nil, repository.ErrUserNotFound)
	repo.On("Create", ctx, mock.Anything).Return(nil)
	repo.On("CreateSession", ctx, mock.Anything).Return(nil)

	// Дефис в локальной части email тоже заменяется на подчёркивание,
	// иначе производный username не пройдёт валидацию.
	result, err := svc.Register(ctx, RegisterInput{
		Email:    "anna-maria@example.com",
		Password: "Sup3rSecret",
		Role:     "employer",
	}, nil)
	assert.NoError(t, err)
	assert.Equal(t, "anna_maria", result.User.Username)
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	repo := new(mockAuthRepository)
	svc := NewAuthService(repo, newTestTokenManager())
	ctx := context.Background()

	repo.On("GetByEmail", ctx, "busy@example.com").Return(&models.User{Email: "busy@example.com"}, nil)

	_, err := svc.Register(ctx, RegisterInput{
		Email:    "busy@example.com",
		Password: "Sup3rSecret",
		Role:     "employer",
	}, nil)
	assert.Error(t, err)
	assert.Equal(t, apperror.ErrCodeConflict, apperror.Code(err))
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuthService_Register_WeakPassword(t *testing.T) {
	repo := new(mockAuthRepository)
	svc := NewAuthService(repo, newTestTokenManager())
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{
		Email:    "weak@example.com",
		Password: "short",
		Role:     "freelancer",
	}, nil)
	assert.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
	repo.AssertNotCalled(t, "GetByEmail", mock.Anything, mock.Anything)
}

func TestAuthService_Register_InvalidRole(t *testing.T) {
	repo := new(mockAuthRepository)
	svc := NewAuthService(repo, newTestTokenManager())
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{
		Email:    "admin@example.com",
		Password: "Sup3rSecret",
		Role:     "admin",
	}, nil)
	assert.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}

func TestAuthService_Login_Success(t *testing.T) {
	repo := new(mockAuthRepository)
	svc := NewAuthService(repo, newTestTokenManager())
	ctx := context.Background()

	passHash, _ := bcrypt.GenerateFromPassword([]byte("Sup3rSecret"), bcrypt.MinCost)
	user := &models.User{
		ID:           uuid.New(),
		Email:        "ivan@example.com",
		PasswordHash: string(passHash),
		Role:         "freelancer",
		IsActive:     true,
	}
	repo.On("GetByEmail", ctx, "ivan@example.com").Return(user, nil)
	repo.On("UpdateLastLoginAt", ctx, user.ID).Return(nil)
	repo.On("CreateSession", ctx, mock.Anything).Return(nil)

	result, err := svc.Login(ctx, LoginInput{Email: "ivan@example.com", Password: "Sup3rSecret"}, nil)
	assert.NoError(t, err)
	assert.Equal(t, user.ID, result.User.ID)
	assert.NotEmpty(t, result.TokenPair.RefreshToken)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	repo := new(mockAuthRepository)
	svc := NewAuthService(repo, newTestTokenManager())
	ctx := context.Background()

	passHash, _ := bcrypt.GenerateFromPassword([]byte("Sup3rSecret"), bcrypt.MinCost)
	repo.On("GetByEmail", ctx, "ivan@example.com").Return(&models.User{
		ID:           uuid.New(),
		Email:        "ivan@example.com",
		PasswordHash: string(passHash),
		IsActive:     true,
	}, nil)

	_, err := svc.Login(ctx, LoginInput{Email: "ivan@example.com", Password: "WrongPass1"}, nil)
	assert.Error(t, err)
	assert.Equal(t, apperror.ErrCodeUnauthorized, apperror.Code(err))
	repo.AssertNotCalled(t, "CreateSession", mock.Anything, mock.Anything)
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	repo := new(mockAuthRepository)
	svc := NewAuthService(repo, newTestTokenManager())
	ctx := context.Background()

	repo.On("GetByEmail", ctx, "ghost@example.com").Return(nil, repository.ErrUserNotFound)

	// Для несуществующего email та же ошибка, что и для неверного пароля.
	_, err := svc.Login(ctx, LoginInput{Email: "ghost@example.com", Password: "Sup3rSecret"}, nil)
	assert.Error(t, err)
	assert.Equal(t, apperror.ErrCodeUnauthorized, apperror.Code(err))
}

func TestAuthService_Login_InactiveAccount(t *testing.T) {
	repo := new(mockAuthRepository)
	svc := NewAuthService(repo, newTestTokenManager())
	ctx := context.Background()

	repo.On("GetByEmail", ctx, "blocked@example.com").Return(&models.User{
		ID:       uuid.New(),
		Email:    "blocked@example.com",
		IsActive: false,
	}, nil)

	_, err := svc.Login(ctx, LoginInput{Email: "blocked@example.com", Password: "Sup3rSecret"}, nil)
	assert.Error(t, err)
	assert.True(t, apperror.IsForbidden(err))
}

func TestAuthService_Refresh_RotatesSession(t *testing.T) {
	repo := new(mockAuthRepository)
	tm := newTestTokenManager()
	svc := NewAuthService(repo, tm)
	ctx := context.Background()

	user := &models.User{ID: uuid.New(), Role: "employer", IsActive: true}
	pair, _, _, err := tm.GeneratePair(user)
	assert.NoError(t, err)

	repo.On("GetByID", ctx, user.ID).Return(user, nil)
	repo.On("DeleteSession", ctx, pair.RefreshToken).Return(nil)
	repo.On("CreateSession", ctx, mock.Anything).Return(nil)

	newPair, err := svc.Refresh(ctx, pair.RefreshToken, nil)
	assert.NoError(t, err)
	assert.NotEmpty(t, newPair.AccessToken)
	repo.AssertExpectations(t)
}

func TestAuthService_Refresh_GarbageToken(t *testing.T) {
	repo := new(mockAuthRepository)
	svc := NewAuthService(repo, newTestTokenManager())
	ctx := context.Background()

	_, err := svc.Refresh(ctx, "definitely-not-a-jwt", nil)
	assert.Error(t, err)
	assert.Equal(t, apperror.ErrCodeUnauthorized, apperror.Code(err))
	repo.AssertNotCalled(t, "CreateSession", mock.Anything, mock.Anything)
}

func TestTokenManager_AccessRoundTrip(t *testing.T) {
	tm := newTestTokenManager()
	user := &models.User{ID: uuid.New(), Role: "freelancer"}

	pair, _, _, err := tm.GeneratePair(user)
	assert.NoError(t, err)

	userID, role, err := tm.ParseAccess(pair.AccessToken)
	assert.NoError(t, err)
	assert.Equal(t, user.ID, userID)
	assert.Equal(t, "freelancer", role)
}

func TestTokenManager_RefreshNotValidAsAccess(t *testing.T) {
	tm := newTestTokenManager()
	user := &models.User{ID: uuid.New(), Role: "freelancer"}

	pair, _, _, err := tm.GeneratePair(user)
	assert.NoError(t, err)

	// Токены подписаны разными секретами и не взаимозаменяемы.
	_, _, err = tm.ParseAccess(pair.RefreshToken)
	assert.Error(t, err)
}
