package users

import (
	"context"
	"testing"
	"time"

	"github.com/Domenick1991/flightbooking/internal/auth"
	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) UpdateProfile(ctx context.Context, user *domain.User) (*domain.User, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}

type stubIssuer struct {
	token string
	err   error
}

func (s *stubIssuer) Issue(user *domain.User) (string, error) {
	return s.token, s.err
}

func validRegisterInput() RegisterInput {
	return RegisterInput{
		FirstName:       "Ana",
		LastName:        "Reyes",
		Birthday:        time.Date(1995, 4, 12, 0, 0, 0, 0, time.UTC),
		Email:           "ana@example.com",
		PhoneNumber:     "09171234567",
		Password:        "sup3rsecret",
		ConfirmPassword: "sup3rsecret",
	}
}

func TestUserService_Register_ValidationErrors(t *testing.T) {
	service := NewUserService(&MockUserRepository{}, &stubIssuer{})
	ctx := context.Background()

	testCases := []struct {
		name        string
		mutate      func(*RegisterInput)
		expectedErr string
	}{
		{"missing first name", func(in *RegisterInput) { in.FirstName = "" }, "all fields are required"},
		{"missing birthday", func(in *RegisterInput) { in.Birthday = time.Time{} }, "all fields are required"},
		{"invalid email", func(in *RegisterInput) { in.Email = "not-an-email" }, "invalid email"},
		{"password mismatch", func(in *RegisterInput) { in.ConfirmPassword = "different1" }, "passwords do not match"},
		{"short password", func(in *RegisterInput) {
			in.Password = "short"
			in.ConfirmPassword = "short"
		}, "at least 8 characters"},
		{"phone with letters", func(in *RegisterInput) { in.PhoneNumber = "0917abc4567" }, "only numbers"},
		{"phone too short", func(in *RegisterInput) { in.PhoneNumber = "0917123" }, "11 digits"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			input := validRegisterInput()
			tc.mutate(&input)

			user, err := service.Register(ctx, input)
			assert.Error(t, err)
			assert.Nil(t, user)
			assert.Equal(t, domain.KindValidation, domain.KindOf(err))
			assert.Contains(t, err.Error(), tc.expectedErr)
		})
	}
}

func TestUserService_Register_HashesPassword(t *testing.T) {
	mockRepo := &MockUserRepository{}
	service := NewUserService(mockRepo, &stubIssuer{})

	ctx := context.Background()
	mockRepo.On("Create", ctx, mock.AnythingOfType("*domain.User")).Return(nil).Once()

	user, err := service.Register(ctx, validRegisterInput())

	assert.NoError(t, err)
	assert.NotEqual(t, "sup3rsecret", user.PasswordHash)
	assert.True(t, auth.CheckPassword(user.PasswordHash, "sup3rsecret"))
	assert.Equal(t, "ana@example.com", user.Email)
	assert.False(t, user.IsAdmin)

	mockRepo.AssertExpectations(t)
}

func TestUserService_Register_DuplicateEmail(t *testing.T) {
	mockRepo := &MockUserRepository{}
	service := NewUserService(mockRepo, &stubIssuer{})

	ctx := context.Background()
	mockRepo.On("Create", ctx, mock.Anything).Return(domain.Conflictf("email is already registered")).Once()

	user, err := service.Register(ctx, validRegisterInput())

	assert.Error(t, err)
	assert.Nil(t, user)
	assert.Equal(t, domain.KindConflict, domain.KindOf(err))
}

func TestUserService_Login_Success(t *testing.T) {
	mockRepo := &MockUserRepository{}
	service := NewUserService(mockRepo, &stubIssuer{token: "signed-token"})

	hash, err := auth.HashPassword("sup3rsecret")
	assert.NoError(t, err)

	ctx := context.Background()
	stored := &domain.User{ID: 7, Email: "ana@example.com", PasswordHash: hash}
	mockRepo.On("GetByEmail", ctx, "ana@example.com").Return(stored, nil).Once()

	user, token, err := service.Login(ctx, "ana@example.com", "sup3rsecret")

	assert.NoError(t, err)
	assert.Equal(t, int64(7), user.ID)
	assert.Equal(t, "signed-token", token)
}

func TestUserService_Login_WrongPassword(t *testing.T) {
	mockRepo := &MockUserRepository{}
	service := NewUserService(mockRepo, &stubIssuer{token: "signed-token"})

	hash, err := auth.HashPassword("sup3rsecret")
	assert.NoError(t, err)

	ctx := context.Background()
	stored := &domain.User{ID: 7, Email: "ana@example.com", PasswordHash: hash}
	mockRepo.On("GetByEmail", ctx, "ana@example.com").Return(stored, nil).Once()

	user, token, err := service.Login(ctx, "ana@example.com", "wrongpassword")

	assert.Error(t, err)
	assert.Nil(t, user)
	assert.Empty(t, token)
	assert.Equal(t, domain.KindForbidden, domain.KindOf(err))
}

func TestUserService_Login_UnknownEmail(t *testing.T) {
	mockRepo := &MockUserRepository{}
	service := NewUserService(mockRepo, &stubIssuer{})

	ctx := context.Background()
	mockRepo.On("GetByEmail", ctx, "ghost@example.com").Return(nil, domain.NotFoundf("user not found")).Once()

	user, token, err := service.Login(ctx, "ghost@example.com", "whatever12")

	assert.Error(t, err)
	assert.Nil(t, user)
	assert.Empty(t, token)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
}

func TestUserService_Login_InvalidEmail(t *testing.T) {
	mockRepo := &MockUserRepository{}
	service := NewUserService(mockRepo, &stubIssuer{})

	user, token, err := service.Login(context.Background(), "not-an-email", "whatever12")

	assert.Error(t, err)
	assert.Nil(t, user)
	assert.Empty(t, token)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))

	mockRepo.AssertNotCalled(t, "GetByEmail")
}

func TestUserService_UpdateProfile_Validation(t *testing.T) {
	service := NewUserService(&MockUserRepository{}, &stubIssuer{})
	ctx := context.Background()
	principal := auth.Principal{UserID: 7}

	user, err := service.UpdateProfile(ctx, principal, UpdateProfileInput{
		FirstName:   "Ana",
		LastName:    "Reyes",
		Birthday:    time.Date(1995, 4, 12, 0, 0, 0, 0, time.UTC),
		Email:       "ana@example.com",
		PhoneNumber: "1234",
	})

	assert.Error(t, err)
	assert.Nil(t, user)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
}

func TestUserService_UpdateProfile_Success(t *testing.T) {
	mockRepo := &MockUserRepository{}
	service := NewUserService(mockRepo, &stubIssuer{})

	ctx := context.Background()
	updated := &domain.User{ID: 7, FirstName: "Ana", Email: "ana@example.com"}
	mockRepo.On("UpdateProfile", ctx, mock.AnythingOfType("*domain.User")).Return(updated, nil).Once()

	user, err := service.UpdateProfile(ctx, auth.Principal{UserID: 7}, UpdateProfileInput{
		FirstName:   "Ana",
		LastName:    "Reyes",
		Birthday:    time.Date(1995, 4, 12, 0, 0, 0, 0, time.UTC),
		Email:       "ana@example.com",
		PhoneNumber: "09171234567",
	})

	assert.NoError(t, err)
	assert.Equal(t, updated, user)

	mockRepo.AssertExpectations(t)
}

func TestUserService_UpdatePassword_Validation(t *testing.T) {
	service := NewUserService(&MockUserRepository{}, &stubIssuer{})
	ctx := context.Background()
	principal := auth.Principal{UserID: 7}

	err := service.UpdatePassword(ctx, principal, "short", "short")
	assert.Error(t, err)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))

	err = service.UpdatePassword(ctx, principal, "longenough1", "different22")
	assert.Error(t, err)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
}

func TestUserService_UpdatePassword_StoresNewHash(t *testing.T) {
	mockRepo := &MockUserRepository{}
	service := NewUserService(mockRepo, &stubIssuer{})

	ctx := context.Background()
	var storedHash string
	mockRepo.On("UpdatePassword", ctx, int64(7), mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) { storedHash = args.String(2) }).
		Return(nil).Once()

	err := service.UpdatePassword(ctx, auth.Principal{UserID: 7}, "newsecret1", "newsecret1")

	assert.NoError(t, err)
	assert.True(t, auth.CheckPassword(storedHash, "newsecret1"))

	mockRepo.AssertExpectations(t)
}
