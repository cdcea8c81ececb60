package service

import (
	"context"
	"errors"
	"strings"

	"github.com/01moynul/medistore/internal/auth"
	"github.com/01moynul/medistore/internal/models"
)

// RegisterInput is the self-service signup body.
type RegisterInput struct {
	Name     string      `json:"name" validate:"notblank,max=255"`
	Email    string      `json:"email" validate:"required,email,max=255"`
	Password string      `json:"password" validate:"min=8,max=72"`
	Phone    *string     `json:"phone" validate:"omitempty,max=32"`
	Role     models.Role `json:"role" validate:"omitempty,oneof=CUSTOMER SELLER"` // CUSTOMER (default)
}

// UserService handles accounts and turns bearer tokens into principals.
type UserService struct {
	repo   Repository
	tokens *auth.TokenManager
}

func NewUserService(repo Repository, tokens *auth.TokenManager) *UserService {
	return &UserService{repo: repo, tokens: tokens}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// createUser validates in and stores the account with role. in.Role is
// only checked by the tags, role is what gets stored.
func (s *UserService) createUser(ctx context.Context, in RegisterInput, role models.Role) (*models.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	if err := validateInput(in); err != nil {
		return nil, err
	}

	var pw models.Password
	if err := pw.Set(in.Password); err != nil {
		return nil, err
	}

	user := &models.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: pw.Hash,
		Role:         role,
		Status:       models.UserStatusActive,
		Phone:        nullIfBlank(in.Phone),
	}
	err := s.repo.CreateUser(ctx, user)
	if errors.Is(err, ErrConflict) {
		return nil, errorf(ErrConflict, "Email already registered")
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Register creates a customer or seller account. Admin accounts are only
// created by the seed command.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	role := in.Role
	if role == "" {
		role = models.RoleCustomer
	}
	return s.createUser(ctx, in, role)
}

// Login checks the credentials and issues a token.
func (s *UserService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	user, err := s.repo.GetUserByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, ErrNotFound) {
		return "", nil, errorf(ErrUnauthenticated, "Invalid credentials")
	}
	if err != nil {
		return "", nil, err
	}

	pw := models.Password{Hash: user.PasswordHash}
	match, err := pw.Matches(password)
	if err != nil {
		return "", nil, err
	}
	if !match {
		return "", nil, errorf(ErrUnauthenticated, "Invalid credentials")
	}
	if user.Status == models.UserStatusBanned {
		return "", nil, errorf(ErrForbidden, "Your account has been banned")
	}

	token, err := s.tokens.GenerateToken(user.ID, user.Role)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// Authenticate resolves a bearer token into the caller. The role comes
// from the users table, not the token, so demotions apply immediately.
func (s *UserService) Authenticate(ctx context.Context, token string) (auth.Principal, error) {
	userID, err := s.tokens.ValidateToken(token)
	if err != nil {
		return auth.Principal{}, errorf(ErrUnauthenticated, "Invalid or expired token")
	}

	user, err := s.repo.GetUserByID(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return auth.Principal{}, errorf(ErrUnauthenticated, "User no longer exists")
	}
	if err != nil {
		return auth.Principal{}, err
	}
	if user.Status == models.UserStatusBanned {
		return auth.Principal{}, errorf(ErrForbidden, "Your account has been banned")
	}
	return auth.Principal{UserID: user.ID, Role: user.Role}, nil
}

// Me returns the caller's own account.
func (s *UserService) Me(ctx context.Context, p auth.Principal) (*models.User, error) {
	user, err := s.repo.GetUserByID(ctx, p.UserID)
	if errors.Is(err, ErrNotFound) {
		return nil, errorf(ErrNotFound, "User not found")
	}
	return user, err
}

// SeedAdmin creates the admin account unless the email is already taken.
// It reports whether a new account was created.
func (s *UserService) SeedAdmin(ctx context.Context, name, email, password string) (bool, error) {
	existing, err := s.repo.GetUserByEmail(ctx, normalizeEmail(email))
	if err == nil {
		if existing.Role != models.RoleAdmin {
			return false, errorf(ErrConflict, "%s exists and is not an admin", existing.Email)
		}
		return false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return false, err
	}

	in := RegisterInput{Name: name, Email: email, Password: password}
	if _, err := s.createUser(ctx, in, models.RoleAdmin); err != nil {
		return false, err
	}
	return true, nil
}

// SetUserStatus bans or reinstates an account. Admin accounts cannot be
// banned.
func (s *UserService) SetUserStatus(ctx context.Context, p auth.Principal, userID int64, status string) (*models.User, error) {
	if !p.IsAdmin() {
		return nil, errorf(ErrForbidden, "Forbidden: Admin access required")
	}
	if err := validate.Var(status, "oneof=ACTIVE BANNED"); err != nil {
		return nil, errorf(ErrValidation, "status must be %s or %s", models.UserStatusActive, models.UserStatusBanned)
	}

	user, err := s.repo.GetUserByID(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return nil, errorf(ErrNotFound, "User not found")
	}
	if err != nil {
		return nil, err
	}
	if user.Role == models.RoleAdmin && status == models.UserStatusBanned {
		return nil, errorf(ErrForbidden, "Admin accounts cannot be banned")
	}

	if err := s.repo.UpdateUserStatus(ctx, userID, status); err != nil {
		return nil, err
	}
	user.Status = status
	return user, nil
}
