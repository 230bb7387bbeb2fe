package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/daybook/core/internal/application/orchestrator"
	"github.com/daybook/core/internal/domain/entities"
	"github.com/daybook/core/internal/infrastructure/config"
	"github.com/daybook/core/internal/infrastructure/logger"
	"github.com/daybook/core/internal/ports"
)

// Claims represents the JWT claims
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// AuthService handles authentication operations
type AuthService struct {
	users     ports.UserRepository
	cache     ports.CacheRepository
	registry  *orchestrator.Registry
	jwtConfig config.JWTConfig
	now       func() time.Time
	logger    *logger.Logger
}

// NewAuthService creates a new auth service. cache and registry may be nil.
func NewAuthService(users ports.UserRepository, cache ports.CacheRepository, registry *orchestrator.Registry, jwtConfig config.JWTConfig, log *logger.Logger) *AuthService {
	if log == nil {
		log = logger.NewNop()
	}
	return &AuthService{
		users:     users,
		cache:     cache,
		registry:  registry,
		jwtConfig: jwtConfig,
		now:       time.Now,
		logger:    log.WithComponent("auth_service"),
	}
}

var _ ports.AuthService = (*AuthService)(nil)

// SignUp creates a user account and signs it in
func (s *AuthService) SignUp(ctx context.Context, req ports.SignUpRequest) (*ports.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || len(req.Password) < 8 {
		return nil, fmt.Errorf("%w: email and a password of at least 8 characters are required", entities.ErrInvalidInput)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &entities.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hashed),
		DisplayName:  req.DisplayName,
		CreatedAt:    s.now(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, entities.ErrUserExists) {
			return nil, entities.ErrUserExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Infow("User signed up", "user_id", user.ID)
	return s.respond(user)
}

// Login authenticates a user and returns an access token
func (s *AuthService) Login(ctx context.Context, req ports.LoginRequest) (*ports.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, entities.ErrUserNotFound) {
			s.logger.LogSecurityEvent("login_unknown_email", "", "", map[string]interface{}{"email": email})
			return nil, entities.ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.LogSecurityEvent("login_bad_password", user.ID.String(), "", nil)
		return nil, entities.ErrUnauthorized
	}

	s.logger.Infow("User logged in", "user_id", user.ID)
	return s.respond(user)
}

// SignOut drops everything held for the user in this process: cached views
// and the sync orchestrator. Tokens are stateless and simply expire.
func (s *AuthService) SignOut(ctx context.Context, userID uuid.UUID) error {
	if s.cache != nil {
		if err := s.cache.DeletePattern(ctx, userID.String()); err != nil {
			return fmt.Errorf("failed to clear cache: %w", err)
		}
	}
	if s.registry != nil {
		s.registry.Forget(userID)
	}

	s.logger.Infow("User signed out", "user_id", userID)
	return nil
}

func (s *AuthService) GetUser(ctx context.Context, userID uuid.UUID) (*entities.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}

// ValidateToken validates a JWT token and returns claims
func (s *AuthService) ValidateToken(tokenString string) (*ports.Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtConfig.Secret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entities.ErrUnauthorized, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%w: invalid token claims", entities.ErrUnauthorized)
	}

	return &ports.Claims{
		UserID: claims.UserID,
		Email:  claims.Email,
	}, nil
}

func (s *AuthService) respond(user *entities.User) (*ports.AuthResponse, error) {
	token, err := s.generateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	out := *user
	out.PasswordHash = ""

	return &ports.AuthResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.jwtConfig.ExpiresIn.Seconds()),
		User:        &out,
	}, nil
}

func (s *AuthService) generateAccessToken(user *entities.User) (string, error) {
	now := s.now()
	claims := &Claims{
		UserID: user.ID.String(),
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtConfig.ExpiresIn)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    s.jwtConfig.Issuer,
			Subject:   user.ID.String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtConfig.Secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
