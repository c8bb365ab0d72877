package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/angelmondragon/storefront-backend/internal/users"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/security"
)

const (
	invalidInputMessage = "Please check your input. Your email address must be confirmed, " +
		"password must be at least 6 characters long, and postal code must be at least " +
		"5 characters long (and not longer than 7 characters)."
	userExistsMessage = "The user you are trying to sign up already exists. " +
		"Please sign up a new user or log in instead."
	invalidCredentialsMessage = "Invalid credentials. Please double check your email and password."
)

// Service defines the behavior needed by the auth controller.
type Service interface {
	Signup(ctx context.Context, input SignupInput) (*users.User, error)
	Login(ctx context.Context, input LoginInput) (*users.User, error)
}

type userRepository interface {
	FindByEmail(ctx context.Context, email string) (*users.User, error)
	Insert(ctx context.Context, user *users.User) (string, error)
}

type service struct {
	users userRepository
}

// NewService constructs the signup/login service.
func NewService(repo userRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	return &service{users: repo}, nil
}

// Signup validates the form shape, rejects duplicate emails, and stores the
// account with a bcrypt password hash. Validation and duplicate failures
// carry the user-facing flash message.
func (s *service) Signup(ctx context.Context, input SignupInput) (*users.User, error) {
	if !detailsAreValid(input) || !emailIsConfirmed(input.Email, input.ConfirmEmail) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, invalidInputMessage)
	}

	existing, err := s.users.FindByEmail(ctx, input.Email)
	if err != nil && !pkgerrors.IsNotFound(err) {
		return nil, err
	}
	if existing != nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, userExistsMessage)
	}

	hash, err := security.HashPassword(input.Password)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user := &users.User{
		Email:        input.Email,
		PasswordHash: hash,
		Name:         input.Fullname,
		Address: users.Address{
			Street:     input.Street,
			PostalCode: input.Postal,
			City:       input.City,
		},
	}
	if _, err := s.users.Insert(ctx, user); err != nil {
		if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeConflict {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, userExistsMessage)
		}
		return nil, err
	}
	return user, nil
}

// Login authenticates by email and password. A missing account and a wrong
// password produce the identical generic message, so the response never
// reveals which half failed.
func (s *service) Login(ctx context.Context, input LoginInput) (*users.User, error) {
	user, err := s.users.FindByEmail(ctx, input.Email)
	if err != nil {
		if pkgerrors.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, err
	}

	match, err := security.VerifyPassword(input.Password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !match {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	return user, nil
}

func detailsAreValid(input SignupInput) bool {
	return emailIsValid(input.Email) &&
		passwordIsValid(input.Password) &&
		postalIsValid(input.Postal) &&
		notEmpty(input.Fullname) &&
		notEmpty(input.Street) &&
		notEmpty(input.City)
}

func emailIsValid(email string) bool {
	return notEmpty(email) && strings.Contains(email, "@")
}

func emailIsConfirmed(email, confirmation string) bool {
	return strings.TrimSpace(email) == strings.TrimSpace(confirmation)
}

func passwordIsValid(password string) bool {
	return len(strings.TrimSpace(password)) >= 6
}

func postalIsValid(postal string) bool {
	trimmed := strings.TrimSpace(postal)
	return len(trimmed) >= 5 && len(trimmed) <= 7
}

func notEmpty(value string) bool {
	return strings.TrimSpace(value) != ""
}
