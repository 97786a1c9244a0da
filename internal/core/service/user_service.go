package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/sirpyerre/storefront-api/internal/core/domain"
	"github.com/sirpyerre/storefront-api/internal/core/ports"
)

const (
	minPasswordLength = 6
	recoveryCodeTTL   = 15 * time.Minute
	// A code is discarded after this many wrong guesses.
	maxRecoveryAttempts = 5
	recoveryCodeDigits  = 6
)

var recoveryCodeSpace = big.NewInt(1_000_000)

// newRecoveryCode draws a zero-padded six digit code from crypto/rand.
func newRecoveryCode() (string, error) {
	n, err := rand.Int(rand.Reader, recoveryCodeSpace)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", recoveryCodeDigits, n.Int64()), nil
}

// UserService implements registration, login and account management.
type UserService struct {
	repo      ports.UserRepository
	mailer    ports.Mailer
	jwtSecret string
	tokenTTL  time.Duration
	logger    zerolog.Logger
	now       func() time.Time
	genCode   func() (string, error)
}

func NewUserService(repo ports.UserRepository, mailer ports.Mailer, jwtSecret string, tokenTTL time.Duration, logger zerolog.Logger) *UserService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &UserService{
		repo:      repo,
		mailer:    mailer,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
		genCode:   newRecoveryCode,
	}
}

func validateEmail(email string) error {
	if _, err := mail.ParseAddress(email); err != nil {
		return fmt.Errorf("%w: email is not a valid address", domain.ErrValidation)
	}
	return nil
}

// Register is public self-registration. The account is always a customer;
// any role in input is ignored.
func (s *UserService) Register(ctx context.Context, input ports.RegisterInput) (*domain.User, error) {
	return s.createUser(ctx, input, domain.RoleCustomer)
}

// CreateUser is the administrator path and honours input.Role.
func (s *UserService) CreateUser(ctx context.Context, input ports.RegisterInput) (*domain.User, error) {
	role, err := domain.ParseRole(input.Role)
	if err != nil {
		return nil, err
	}
	return s.createUser(ctx, input, role)
}

func (s *UserService) createUser(ctx context.Context, input ports.RegisterInput, role domain.Role) (*domain.User, error) {
	for _, f := range []struct{ field, value string }{
		{"name", input.Name},
		{"username", input.Username},
		{"email", input.Email},
	} {
		if strings.TrimSpace(f.value) == "" {
			return nil, fmt.Errorf("%w: %s is required", domain.ErrValidation, f.field)
		}
	}
	if err := validateEmail(input.Email); err != nil {
		return nil, err
	}
	if len(input.Password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must have at least %d characters", domain.ErrValidation, minPasswordLength)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := s.now()
	user := &domain.User{
		Name:           input.Name,
		Username:       input.Username,
		Email:          strings.ToLower(input.Email),
		Phone:          input.Phone,
		Address:        input.Address,
		DocumentType:   input.DocumentType,
		DocumentNumber: input.DocumentNumber,
		Status:         domain.StatusActive,
		Role:           role,
		PasswordHash:   string(hash),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", user.ID).Str("role", string(role)).Msg("user registered")
	return user, nil
}

// Login accepts an email or a username. The password is checked before the
// account status so an inactive account is only revealed to its owner.
func (s *UserService) Login(ctx context.Context, login, password string) (string, *domain.User, error) {
	if login == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, domain.ErrInvalidCredentials
	}
	if user.Status != domain.StatusActive {
		return "", nil, domain.ErrAccountInactive
	}

	token, err := s.generateToken(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *UserService) generateToken(user *domain.User) (string, error) {
	claims := jwt.MapClaims{
		"sub":      user.ID,
		"username": user.Username,
		"role":     string(user.Role),
		"exp":      s.now().Add(s.tokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}

func (s *UserService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	return s.repo.List(ctx)
}

func (s *UserService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *UserService) UpdateUser(ctx context.Context, id string, patch ports.UserPatch) (*domain.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		if strings.TrimSpace(*patch.Name) == "" {
			return nil, fmt.Errorf("%w: name must not be empty", domain.ErrValidation)
		}
		user.Name = *patch.Name
	}
	if patch.Email != nil {
		if err := validateEmail(*patch.Email); err != nil {
			return nil, err
		}
		user.Email = strings.ToLower(*patch.Email)
	}
	if patch.Role != nil {
		role, err := domain.ParseRole(*patch.Role)
		if err != nil {
			return nil, err
		}
		user.Role = role
	}
	if patch.Phone != nil {
		user.Phone = *patch.Phone
	}
	if patch.Address != nil {
		user.Address = *patch.Address
	}
	if patch.DocumentType != nil {
		user.DocumentType = *patch.DocumentType
	}
	if patch.DocumentNumber != nil {
		user.DocumentNumber = *patch.DocumentNumber
	}
	user.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info().Str("user_id", id).Msg("user updated")
	return user, nil
}

func (s *UserService) SetUserStatus(ctx context.Context, id, status string) (*domain.User, error) {
	st, err := domain.ParseRecordStatus(status)
	if err != nil {
		return nil, err
	}
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	user.Status = st
	user.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info().Str("user_id", id).Str("status", string(st)).Msg("user status changed")
	return user, nil
}

// RequestPasswordRecovery mails a short-lived code to the account owner.
// Unknown addresses succeed silently.
func (s *UserService) RequestPasswordRecovery(ctx context.Context, email string) error {
	user, err := s.repo.FindByEmail(ctx, strings.ToLower(email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.logger.Debug().Msg("password recovery requested for unknown email")
			return nil
		}
		return err
	}

	code, err := s.genCode()
	if err != nil {
		return fmt.Errorf("generate recovery code: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	expires := s.now().Add(recoveryCodeTTL)
	user.RecoveryCodeHash = string(hash)
	user.RecoveryExpiresAt = &expires
	user.RecoveryAttempts = 0
	user.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, user); err != nil {
		return err
	}

	if err := s.mailer.SendRecoveryCode(ctx, user.Email, user.Name, code); err != nil {
		return fmt.Errorf("send recovery code: %w", err)
	}
	s.logger.Info().Str("user_id", user.ID).Msg("recovery code issued")
	return nil
}

func (s *UserService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return fmt.Errorf("%w: password must have at least %d characters", domain.ErrValidation, minPasswordLength)
	}
	user, err := s.repo.FindByEmail(ctx, strings.ToLower(email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrInvalidRecoveryCode
		}
		return err
	}
	if user.RecoveryCodeHash == "" || user.RecoveryExpiresAt == nil || s.now().After(*user.RecoveryExpiresAt) {
		return domain.ErrInvalidRecoveryCode
	}
	if bcrypt.CompareHashAndPassword([]byte(user.RecoveryCodeHash), []byte(code)) != nil {
		s.recordFailedRecovery(ctx, user)
		return domain.ErrInvalidRecoveryCode
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hash)
	clearRecovery(user)
	user.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, user); err != nil {
		return err
	}
	s.logger.Info().Str("user_id", user.ID).Msg("password reset")
	return nil
}

// recordFailedRecovery counts a wrong code and burns the code once the
// limit is reached. The caller's error is reported regardless.
func (s *UserService) recordFailedRecovery(ctx context.Context, user *domain.User) {
	user.RecoveryAttempts++
	if user.RecoveryAttempts >= maxRecoveryAttempts {
		clearRecovery(user)
		s.logger.Warn().Str("user_id", user.ID).Msg("recovery code discarded after repeated failures")
	}
	user.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, user); err != nil {
		s.logger.Error().Err(err).Str("user_id", user.ID).Msg("record failed recovery attempt")
	}
}

func clearRecovery(user *domain.User) {
	user.RecoveryCodeHash = ""
	user.RecoveryExpiresAt = nil
	user.RecoveryAttempts = 0
}
