package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"github.com/petermazzocco/go-feed-api/internal/apperr"
	"github.com/petermazzocco/go-feed-api/models"
)

const minPasswordLength = 5

var (
	ErrEmailTaken    = apperr.New(apperr.InvalidInput, "E-Mail address already exists!")
	ErrUnknownEmail  = apperr.New(apperr.Unauthorized, "A user with this email could not be found.")
	ErrWrongPassword = apperr.New(apperr.Unauthorized, "Wrong password!")
)

const invalidInputMessage = "Validation failed."

// UserStore is the user persistence accounts need.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
}

// SignupInput carries a new account.
type SignupInput struct {
	Email    string
	Name     string
	Password string
}

// Service manages accounts and logins.
type Service struct {
	users  UserStore
	tokens *Tokens
}

func NewService(users UserStore, tokens *Tokens) *Service {
	return &Service{users: users, tokens: tokens}
}

// Signup creates an account with a bcrypt hashed password.
func (s *Service) Signup(ctx context.Context, in SignupInput) (*models.User, error) {
	email := normalizeEmail(in.Email)
	name := strings.TrimSpace(in.Name)
	password := strings.TrimSpace(in.Password)

	var problems []string
	if _, err := mail.ParseAddress(email); err != nil || email == "" {
		problems = append(problems, "please enter a valid email")
	}
	if utf8.RuneCountInString(password) < minPasswordLength {
		problems = append(problems, fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}
	if name == "" {
		problems = append(problems, "name is required")
	}
	if len(problems) > 0 {
		return nil, apperr.Wrap(apperr.InvalidInput, invalidInputMessage, errors.New(strings.Join(problems, "; ")))
	}

	_, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, ErrEmailTaken
	case !errors.Is(err, models.ErrNotFound):
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{Email: email, Name: name, Password: string(hash)}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// Login checks the credentials and returns a signed token for the user.
func (s *Service) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, models.ErrNotFound) {
		return "", nil, ErrUnknownEmail
	}
	if err != nil {
		return "", nil, fmt.Errorf("failed to find user: %w", err)
	}

	// accounts created through OAuth have no password
	if user.Password == "" {
		return "", nil, ErrWrongPassword
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, ErrWrongPassword
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// LoginExternal returns the account for an email verified by an OAuth
// provider, creating it on first login.
func (s *Service) LoginExternal(ctx context.Context, email, name string) (*models.User, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, apperr.New(apperr.Unauthorized, "Provider returned no email.")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if strings.TrimSpace(name) == "" {
		name = email
	}
	user = &models.User{Email: email, Name: strings.TrimSpace(name)}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
