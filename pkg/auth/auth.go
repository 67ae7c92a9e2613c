package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/mcclellann/emiLedger/pkg/models"
	"github.com/mcclellann/emiLedger/pkg/store"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrEmailTaken         = errors.New("email already used")
	ErrInvalidRole        = errors.New("invalid role")
	ErrInvalidInput       = errors.New("invalid input")
	ErrForbidden          = errors.New("forbidden")
)

// Users is the slice of the store the auth service needs.
type Users interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUserRole(ctx context.Context, id uuid.UUID, role models.Role) error
	DeleteUser(ctx context.Context, id uuid.UUID) error
	ListUsers(ctx context.Context, role models.Role) ([]*models.User, error)
}

type Service struct {
	Users    Users
	Secret   []byte
	TokenTTL time.Duration
	Logger   *slog.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

type Result struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *models.User `json:"user"`
}

type SignupInput struct {
	Name     string
	Email    string
	Password string
}

const minPasswordLength = 6

func (s Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s Service) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// Signup registers a USER account. The role is never taken from the caller.
func (s Service) Signup(ctx context.Context, in SignupInput) (*Result, error) {
	u, err := s.createUser(ctx, in, models.RoleUser)
	if err != nil {
		return nil, err
	}
	return s.issue(u)
}

func (s Service) createUser(ctx context.Context, in SignupInput, role models.Role) (*models.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return nil, fmt.Errorf("%w: email %q is not valid", ErrInvalidInput, in.Email)
	}
	if len(in.Password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLength)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &models.User{
		ID:           uuid.New(),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    s.now(),
	}
	if err := s.Users.CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	s.logger().Info("user created", "user", u.ID, "role", u.Role)
	return u, nil
}

func (s Service) Login(ctx context.Context, email, password string) (*Result, error) {
	u, err := s.Users.GetUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.issue(u)
}

func (s Service) issue(u *models.User) (*Result, error) {
	now := s.now()
	exp := now.Add(s.TokenTTL)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":   u.ID.String(),
		"role": string(u.Role),
		"exp":  exp.Unix(),
		"iat":  now.Unix(),
	}).SignedString(s.Secret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &Result{Token: token, ExpiresAt: exp, User: u}, nil
}

// ParseToken validates an HS256 token and returns the principal it names.
func (s Service) ParseToken(tokenStr string) (models.Principal, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.Secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return models.Principal{}, ErrInvalidToken
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return models.Principal{}, ErrInvalidToken
	}
	sub, _ := claims["id"].(string)
	roleStr, _ := claims["role"].(string)
	id, err := uuid.Parse(sub)
	if err != nil {
		return models.Principal{}, ErrInvalidToken
	}
	role := models.Role(roleStr)
	if !role.Valid() {
		return models.Principal{}, ErrInvalidToken
	}
	return models.Principal{UserID: id, Role: role}, nil
}

// Authenticate parses tokenStr and resolves the principal against the stored
// user, so a role change or deletion applies to tokens already issued.
func (s Service) Authenticate(ctx context.Context, tokenStr string) (models.Principal, error) {
	p, err := s.ParseToken(tokenStr)
	if err != nil {
		return models.Principal{}, err
	}
	u, err := s.Users.GetUser(ctx, p.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return models.Principal{}, ErrInvalidToken
	}
	if err != nil {
		return models.Principal{}, fmt.Errorf("failed to load user %s: %w", p.UserID, err)
	}
	return u.Principal(), nil
}

// EnsureAdmin creates the bootstrap ADMIN account when no user owns email yet.
// An existing account is left untouched.
func (s Service) EnsureAdmin(ctx context.Context, name, email, password string) error {
	_, err := s.Users.GetUserByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return err
	}
	_, err = s.createUser(ctx, SignupInput{Name: name, Email: email, Password: password}, models.RoleAdmin)
	if errors.Is(err, ErrEmailTaken) {
		return nil
	}
	return err
}

func (s Service) ListUsers(ctx context.Context) ([]*models.User, error) {
	users, err := s.Users.ListUsers(ctx, "")
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []*models.User{}
	}
	return users, nil
}

// ChangeRole moves a user between USER and AGENT. Nobody is promoted to
// ADMIN through it and an ADMIN cannot be demoted.
func (s Service) ChangeRole(ctx context.Context, id uuid.UUID, role models.Role) (*models.User, error) {
	if role != models.RoleUser && role != models.RoleAgent {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}
	u, err := s.Users.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.Role == models.RoleAdmin {
		return nil, fmt.Errorf("%w: cannot change the role of an admin", ErrForbidden)
	}
	if err := s.Users.UpdateUserRole(ctx, id, role); err != nil {
		return nil, err
	}
	u.Role = role
	s.logger().Info("user role changed", "user", id, "role", role)
	return u, nil
}

// DeleteUser removes a USER account. Agents and admins are kept.
func (s Service) DeleteUser(ctx context.Context, id uuid.UUID) error {
	u, err := s.Users.GetUser(ctx, id)
	if err != nil {
		return err
	}
	if u.Role != models.RoleUser {
		return fmt.Errorf("%w: only USER accounts can be deleted", ErrForbidden)
	}
	if err := s.Users.DeleteUser(ctx, id); err != nil {
		return err
	}
	s.logger().Info("user deleted", "user", id)
	return nil
}
