package users

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/Domenick1991/flightbooking/internal/auth"
	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/repository"
)

type UserUseCase interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*domain.User, string, error)
	Profile(ctx context.Context, principal auth.Principal) (*domain.User, error)
	UpdateProfile(ctx context.Context, principal auth.Principal, input UpdateProfileInput) (*domain.User, error)
	UpdatePassword(ctx context.Context, principal auth.Principal, newPassword, confirmPassword string) error
}

// TokenIssuer produces the bearer token returned by Login.
type TokenIssuer interface {
	Issue(user *domain.User) (string, error)
}

type RegisterInput struct {
	FirstName       string
	LastName        string
	Birthday        time.Time
	Email           string
	PhoneNumber     string
	Password        string
	ConfirmPassword string
	IsAdmin         bool
}

type UpdateProfileInput struct {
	FirstName   string
	LastName    string
	Birthday    time.Time
	Email       string
	PhoneNumber string
}

var phonePattern = regexp.MustCompile(`^[0-9]{11,}$`)

const minPasswordLen = 8

type UserService struct {
	repo   repository.UserRepository
	tokens TokenIssuer
}

func NewUserService(repo repository.UserRepository, tokens TokenIssuer) *UserService {
	return &UserService{repo: repo, tokens: tokens}
}

func (s *UserService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	if input.FirstName == "" || input.LastName == "" || input.Birthday.IsZero() ||
		input.Email == "" || input.PhoneNumber == "" || input.Password == "" || input.ConfirmPassword == "" {
		return nil, domain.Validationf("all fields are required")
	}
	if !strings.Contains(input.Email, "@") {
		return nil, domain.Validationf("invalid email")
	}
	if input.Password != input.ConfirmPassword {
		return nil, domain.Validationf("passwords do not match")
	}
	if len(input.Password) < minPasswordLen {
		return nil, domain.Validationf("password must be at least %d characters long", minPasswordLen)
	}
	if !phonePattern.MatchString(input.PhoneNumber) {
		return nil, domain.Validationf("phone number must contain only numbers and be at least 11 digits long")
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, domain.StorageError("failed to hash password", err)
	}

	user := &domain.User{
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Birthday:     input.Birthday,
		Email:        input.Email,
		PhoneNumber:  input.PhoneNumber,
		PasswordHash: hash,
		IsAdmin:      input.IsAdmin,
	}
	// Duplicate email/phone is caught authoritatively by the unique
	// indexes and comes back as a conflict.
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	if !strings.Contains(email, "@") {
		return nil, "", domain.Validationf("invalid email")
	}

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", err
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, "", domain.Forbiddenf("email and password do not match")
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, "", domain.StorageError("failed to issue token", err)
	}
	return user, token, nil
}

func (s *UserService) Profile(ctx context.Context, principal auth.Principal) (*domain.User, error) {
	return s.repo.GetByID(ctx, principal.UserID)
}

func (s *UserService) UpdateProfile(ctx context.Context, principal auth.Principal, input UpdateProfileInput) (*domain.User, error) {
	if input.FirstName == "" || input.LastName == "" || input.Birthday.IsZero() ||
		input.Email == "" || input.PhoneNumber == "" {
		return nil, domain.Validationf("all fields are required")
	}
	if !strings.Contains(input.Email, "@") {
		return nil, domain.Validationf("invalid email")
	}
	if !phonePattern.MatchString(input.PhoneNumber) {
		return nil, domain.Validationf("phone number must contain only numbers and be at least 11 digits long")
	}

	return s.repo.UpdateProfile(ctx, &domain.User{
		ID:          principal.UserID,
		FirstName:   input.FirstName,
		LastName:    input.LastName,
		Birthday:    input.Birthday,
		Email:       input.Email,
		PhoneNumber: input.PhoneNumber,
	})
}

func (s *UserService) UpdatePassword(ctx context.Context, principal auth.Principal, newPassword, confirmPassword string) error {
	if len(newPassword) < minPasswordLen {
		return domain.Validationf("new password must be at least %d characters", minPasswordLen)
	}
	if newPassword != confirmPassword {
		return domain.Validationf("passwords do not match")
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return domain.StorageError("failed to hash password", err)
	}
	return s.repo.UpdatePassword(ctx, principal.UserID, hash)
}

var _ UserUseCase = (*UserService)(nil)
