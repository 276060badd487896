package service

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"drpworkshop/server/internal/domain"
	"drpworkshop/server/internal/repository"
)

// --- Error Definitions ---
var (
	ErrUserAlreadyExists    = errors.New("user with this email or username already exists")
	ErrAuthenticationFailed = errors.New("authentication failed: invalid credentials")
	ErrHashingFailed        = errors.New("failed to hash password")
	ErrTokenGeneration      = errors.New("failed to generate authentication token")
	ErrInvalidToken         = errors.New("token is invalid or expired")
	ErrInvalidRole          = errors.New("role must be pro or athlete")
)

// TokenPair carries both tokens issued on login/register/refresh. The access
// token authorizes API calls; the refresh token only mints new pairs.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// RegisterInput groups the fields accepted at signup.
type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      domain.Role
}

// --- Service Interface ---
type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, *TokenPair, error)
	Login(ctx context.Context, identifier, password string) (*domain.User, *TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	GetJWTSecret() string
}

// --- Service Implementation ---

// authService implements the AuthService interface.
type authService struct {
	userRepo          repository.UserRepository
	jwtSecret         string
	accessExpiration  time.Duration
	refreshExpiration time.Duration
}

// NewAuthService creates a new instance of authService.
func NewAuthService(userRepo repository.UserRepository, jwtSecret string, accessExpiration, refreshExpiration time.Duration) AuthService {
	if jwtSecret == "" {
		panic("JWT secret cannot be empty") // Critical configuration
	}
	if accessExpiration <= 0 {
		accessExpiration = 30 * time.Minute
	}
	if refreshExpiration <= 0 {
		refreshExpiration = 30 * 24 * time.Hour
	}
	return &authService{
		userRepo:          userRepo,
		jwtSecret:         jwtSecret,
		accessExpiration:  accessExpiration,
		refreshExpiration: refreshExpiration,
	}
}

// Register handles new user registration and logs the user straight in.
func (s *authService) Register(ctx context.Context, input RegisterInput) (*domain.User, *TokenPair, error) {
	if input.Username == "" || input.Email == "" || input.Password == "" {
		return nil, nil, errors.New("username, email and password cannot be empty")
	}
	if input.Role != domain.RolePro && input.Role != domain.RoleAthlete {
		return nil, nil, ErrInvalidRole
	}

	// Check both unique identities before attempting the insert. The unique
	// indexes still guard against the register/register race.
	if _, err := s.userRepo.GetByEmail(ctx, input.Email); err == nil {
		return nil, nil, ErrUserAlreadyExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, nil, err
	}
	if _, err := s.userRepo.GetByUsername(ctx, input.Username); err == nil {
		return nil, nil, ErrUserAlreadyExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, ErrHashingFailed
	}

	user := &domain.User{
		Username:     input.Username,
		Email:        input.Email,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		PasswordHash: string(hashedPassword),
		Role:         input.Role,
	}

	userID, err := s.userRepo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, nil, ErrUserAlreadyExists
		}
		return nil, nil, err
	}
	user.ID = userID

	pair, err := s.generateTokenPair(user.ID, user.Role)
	if err != nil {
		return nil, nil, ErrTokenGeneration
	}

	user.PasswordHash = ""
	return user, pair, nil
}

// Login authenticates by username or email and issues a fresh token pair.
func (s *authService) Login(ctx context.Context, identifier, password string) (*domain.User, *TokenPair, error) {
	if identifier == "" || password == "" {
		return nil, nil, errors.New("identifier and password cannot be empty")
	}

	user, err := s.userRepo.GetByUsername(ctx, identifier)
	if errors.Is(err, repository.ErrNotFound) {
		user, err = s.userRepo.GetByEmail(ctx, identifier)
	}
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrAuthenticationFailed
		}
		return nil, nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, nil, ErrAuthenticationFailed
	}

	pair, err := s.generateTokenPair(user.ID, user.Role)
	if err != nil {
		return nil, nil, ErrTokenGeneration
	}

	user.PasswordHash = ""
	return user, pair, nil
}

// Refresh validates a refresh token and mints a new pair. Access tokens are
// rejected here, so a leaked access token can never extend a session.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(refreshToken, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != tokenTypeRefresh {
		return nil, ErrInvalidToken
	}

	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return nil, ErrInvalidToken
	}

	// Re-read the user so a role change or deletion takes effect at refresh.
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	pair, err := s.generateTokenPair(user.ID, user.Role)
	if err != nil {
		return nil, ErrTokenGeneration
	}
	return pair, nil
}

// --- JWT Helpers ---

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// Claims defines the structure of the JWT payload. Exported so the API
// middleware can parse tokens with the same shape.
type Claims struct {
	UserID    string      `json:"uid"`
	Role      domain.Role `json:"role"`
	TokenType string      `json:"typ"`
	jwt.RegisteredClaims
}

// IsAccess reports whether the claims belong to an access token.
func (c *Claims) IsAccess() bool {
	return c.TokenType == tokenTypeAccess
}

func (s *authService) generateTokenPair(userID primitive.ObjectID, role domain.Role) (*TokenPair, error) {
	access, err := s.signToken(userID, role, tokenTypeAccess, s.accessExpiration)
	if err != nil {
		return nil, err
	}
	refresh, err := s.signToken(userID, role, tokenTypeRefresh, s.refreshExpiration)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *authService) signToken(userID primitive.ObjectID, role domain.Role, tokenType string, expiration time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:    userID.Hex(),
		Role:      role,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.Hex(),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiration)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "drp-workshop",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

// GetJWTSecret returns the JWT secret for middleware authentication.
func (s *authService) GetJWTSecret() string {
	return s.jwtSecret
}
