// Package service implements the application's business rules on top of the
// repository layer.
package service

import (
	"context"

	"quill/internal/models"
	"quill/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

// AuthService handles registration and credential checks. Session
// establishment is the caller's concern.
type AuthService struct {
	userRepo repository.UserRepository
}

// RegisterInput carries a validated registration form.
type RegisterInput struct {
	Email    string
	Password string
	Name     string
}

// NewAuthService returns a new AuthService.
func NewAuthService(userRepo repository.UserRepository) *AuthService {
	return &AuthService{userRepo: userRepo}
}

// Register creates a new account with a bcrypt password hash. The first
// account ever registered becomes the admin. Fails with DuplicateEmail when
// the email is taken.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	existing, err := s.userRepo.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewDuplicateEmailError()
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Email:        in.Email,
		PasswordHash: string(hash),
		Name:         in.Name,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login verifies the credentials. Fails with UnknownEmail when no account has
// this email and InvalidCredentials when the password does not match.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewUnknownEmailError()
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, models.NewInvalidCredentialsError()
	}
	return user, nil
}
