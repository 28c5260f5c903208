package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/prn-tf/shelfmark/internal/domain"
	"github.com/prn-tf/shelfmark/internal/repository"
	"github.com/prn-tf/shelfmark/internal/token"
)

const maxUsernameLength = 255

// AuthService handles registration and login.
type AuthService struct {
	userRepo repository.UserRepository
	tokens   *token.Manager
	logger   zerolog.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.UserRepository, tokens *token.Manager, logger zerolog.Logger) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		tokens:   tokens,
		logger:   logger.With().Str("service", "auth").Logger(),
	}
}

// RegisterInput contains the data needed to register a user.
type RegisterInput struct {
	Username string
	Password string
}

// Register creates a new user account. The client must log in afterwards;
// no token is issued here.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) error {
	if err := validateRegisterInput(input); err != nil {
		return err
	}

	exists, err := s.userRepo.ExistsByUsername(ctx, input.Username)
	if err != nil {
		s.logger.Error().Err(err).Str("username", input.Username).Msg("failed to check username existence")
		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	if exists {
		return fmt.Errorf("%w: username %q", ErrUserAlreadyExists, input.Username)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to hash password")
		return fmt.Errorf("%w: failed to hash password", ErrInternalError)
	}

	user := domain.NewUser(input.Username, string(passwordHash))
	if err := s.userRepo.Create(ctx, user); err != nil {
		// The store's unique constraint is the last line of defense against
		// a concurrent registration racing the existence check.
		if errors.Is(err, domain.ErrUserAlreadyExists) {
			return fmt.Errorf("%w: username %q", ErrUserAlreadyExists, input.Username)
		}
		s.logger.Error().Err(err).Str("username", input.Username).Msg("failed to create user")
		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().
		Int64("user_id", user.ID).
		Str("username", user.Username).
		Msg("user registered")

	return nil
}

// LoginInput contains the credentials for a login attempt.
type LoginInput struct {
	Username string
	Password string
}

// LoginOutput contains the result of a successful login.
type LoginOutput struct {
	Token string
	User  *domain.User
}

// Login verifies credentials and issues a signed bearer token. Unknown
// username and wrong password both yield ErrInvalidCredentials so callers
// cannot probe which usernames exist.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginOutput, error) {
	user, err := s.userRepo.GetByUsername(ctx, input.Username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.logger.Debug().Str("username", input.Username).Msg("unknown username during login")
			return nil, ErrInvalidCredentials
		}
		s.logger.Error().Err(err).Str("username", input.Username).Msg("failed to get user")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		s.logger.Debug().Str("username", input.Username).Msg("invalid password during login")
		return nil, ErrInvalidCredentials
	}

	signed, err := s.tokens.Issue(user.ID)
	if err != nil {
		s.logger.Error().Err(err).Int64("user_id", user.ID).Msg("failed to issue token")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().
		Int64("user_id", user.ID).
		Str("username", user.Username).
		Msg("user logged in")

	return &LoginOutput{
		Token: signed,
		User:  user,
	}, nil
}

// validateRegisterInput validates the input for registering a user.
func validateRegisterInput(input RegisterInput) error {
	if input.Username == "" || len(input.Username) > maxUsernameLength {
		return fmt.Errorf("%w: username must be 1-%d characters", ErrInvalidInput, maxUsernameLength)
	}
	if input.Password == "" {
		return fmt.Errorf("%w: password is required", ErrInvalidInput)
	}
	return nil
}
