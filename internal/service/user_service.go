package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"deepcrawler/internal/assets"
	"deepcrawler/internal/domain"
	"deepcrawler/internal/repository"
)

// MaxImageBytes es el tamaño máximo aceptado para la foto de perfil.
const MaxImageBytes = 5 << 20

// ValidationError lleva el mensaje del primer campo inválido.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// UserService coordina registro, login y actualización de perfil.
type UserService struct {
	logger   *zap.Logger
	users    repository.UserRepository
	limiter  RateLimiter
	validate *validator.Validate
}

func NewUserService(logger *zap.Logger, users repository.UserRepository, limiter RateLimiter) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if limiter == nil {
		limiter = NewMemoryRateLimiter(10*time.Minute, 10)
	}
	return &UserService{
		logger:   logger,
		users:    users,
		limiter:  limiter,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

type RegisterInput struct {
	Username        string
	Email           string
	Password        string
	ConfirmPassword string
}

func (s *UserService) Register(ctx context.Context, input RegisterInput) (domain.User, error) {
	if s == nil || s.users == nil {
		return domain.User{}, ErrNotConfigured
	}

	username := strings.TrimSpace(input.Username)
	email := normalizeEmail(input.Email)
	if username == "" || email == "" || input.Password == "" || input.ConfirmPassword == "" {
		return domain.User{}, ErrMissingFields
	}
	if input.Password != input.ConfirmPassword {
		return domain.User{}, ErrPasswordMismatch
	}
	if !s.limiter.Allow("signup:" + email) {
		return domain.User{}, ErrRateLimited
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return domain.User{}, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return domain.User{}, fmt.Errorf("lookup email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	pfp := assets.DefaultProfilePicture()
	user := domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Image:        &pfp,
	}
	if err := s.users.Create(ctx, &user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return domain.User{}, ErrEmailTaken
		}
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("user registered", zap.Int64("user_id", user.ID))
	return user, nil
}

// Authenticate no distingue entre email desconocido y contraseña incorrecta.
// Solo los intentos fallidos cuentan para el límite, por email y cliente; un login correcto lo reinicia.
func (s *UserService) Authenticate(ctx context.Context, email, password, clientKey string) (domain.User, error) {
	if s == nil || s.users == nil {
		return domain.User{}, ErrNotConfigured
	}

	email = normalizeEmail(email)
	if email == "" || password == "" {
		return domain.User{}, ErrMissingFields
	}
	limitKey := "login:" + email + "|" + strings.TrimSpace(clientKey)
	if s.limiter.Blocked(limitKey) {
		return domain.User{}, ErrRateLimited
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.limiter.Allow(limitKey)
			return domain.User{}, ErrInvalidCredentials
		}
		return domain.User{}, fmt.Errorf("lookup user: %w", err)
	}
	if user.PasswordHash == "" {
		s.limiter.Allow(limitKey)
		return domain.User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.limiter.Allow(limitKey)
		return domain.User{}, ErrInvalidCredentials
	}

	s.limiter.Reset(limitKey)
	return user, nil
}

func (s *UserService) GetUser(ctx context.Context, id int64) (domain.User, error) {
	if s == nil || s.users == nil {
		return domain.User{}, ErrNotConfigured
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// UpdateProfileInput trae los campos opcionales del formulario; nil o vacío significa "sin cambio".
type UpdateProfileInput struct {
	Username         *string `validate:"omitempty,min=3"`
	Email            *string `validate:"omitempty,email"`
	Password         *string `validate:"omitempty,min=6"`
	Image            []byte
	ImageContentType string
}

var fieldMessages = map[string]string{
	"Username": "El nombre de usuario debe tener al menos 3 caracteres.",
	"Email":    "El formato del correo electrónico es inválido.",
	"Password": "La contraseña debe tener al menos 6 caracteres.",
}

// UpdateProfile aplica solo los campos que cambian. changed es false si no había nada que actualizar.
func (s *UserService) UpdateProfile(ctx context.Context, id int64, input UpdateProfileInput) (user domain.User, changed bool, err error) {
	if s == nil || s.users == nil {
		return domain.User{}, false, ErrNotConfigured
	}
	if err := s.validateUpdate(input); err != nil {
		return domain.User{}, false, err
	}

	current, err := s.GetUser(ctx, id)
	if err != nil {
		return domain.User{}, false, err
	}

	var update domain.UserUpdate
	if username := trimmed(input.Username); username != "" && username != current.Username {
		update.Username = &username
	}
	if email := normalizeEmail(deref(input.Email)); email != "" && email != current.Email {
		if _, err := s.users.GetByEmail(ctx, email); err == nil {
			return domain.User{}, false, ErrEmailTaken
		} else if !errors.Is(err, repository.ErrNotFound) {
			return domain.User{}, false, fmt.Errorf("lookup email: %w", err)
		}
		update.Email = &email
	}
	if password := deref(input.Password); password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return domain.User{}, false, fmt.Errorf("hash password: %w", err)
		}
		hashStr := string(hash)
		update.PasswordHash = &hashStr
	}
	if input.Image != nil {
		encoded := base64.StdEncoding.EncodeToString(input.Image)
		update.Image = &encoded
	}

	if update.IsEmpty() {
		return current, false, nil
	}

	updated, err := s.users.Update(ctx, id, update)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return domain.User{}, false, ErrUserNotFound
		case errors.Is(err, repository.ErrDuplicate):
			return domain.User{}, false, ErrEmailTaken
		}
		return domain.User{}, false, fmt.Errorf("update user: %w", err)
	}
	s.logger.Info("profile updated", zap.Int64("user_id", id))
	return updated, true, nil
}

func (s *UserService) validateUpdate(input UpdateProfileInput) error {
	clean := input
	clean.Username = nonEmpty(input.Username)
	clean.Email = nonEmpty(input.Email)
	if deref(input.Password) == "" {
		clean.Password = nil
	}

	if err := s.validate.Struct(clean); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			field := verrs[0].Field()
			return &ValidationError{Field: strings.ToLower(field), Message: fieldMessages[field]}
		}
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if input.Image != nil {
		if len(input.Image) == 0 || len(input.Image) > MaxImageBytes {
			return ErrInvalidImage
		}
		contentType := input.ImageContentType
		if contentType == "" {
			contentType = http.DetectContentType(input.Image)
		}
		if !strings.HasPrefix(contentType, "image/") {
			return ErrInvalidImage
		}
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func trimmed(s *string) string {
	return strings.TrimSpace(deref(s))
}

func nonEmpty(s *string) *string {
	if trimmed(s) == "" {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
