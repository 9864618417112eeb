package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"cityshops/internal/caching"
	"cityshops/internal/common"
	"cityshops/internal/models"
	"cityshops/internal/repositories"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	tokenIssuer       = "cityshops"
	loginWindow       = 15 * time.Minute
	minPasswordLength = 8
	// bcrypt ignores input beyond 72 bytes.
	maxPasswordLength = 72
)

// AuthService handles signup, login and JWT token management
type AuthService interface {
	Signup(ctx context.Context, req *models.SignupRequest) (*models.User, error)
	Authenticate(ctx context.Context, login, password string) (*models.User, error)
	GenerateTokens(ctx context.Context, user *models.User) (*models.TokenResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*models.TokenResponse, error)
	RevokeRefreshToken(ctx context.Context, refreshToken string) error
	ChangePassword(ctx context.Context, userID uuid.UUID, req *models.ChangePasswordRequest) error

	// CurrentUser validates an access token and returns its principal.
	CurrentUser(token string) (models.Principal, error)
	// Keyfunc resolves verification keys for access tokens.
	Keyfunc() jwt.Keyfunc
}

// AccessClaims are the claims carried by an access token. The subject is
// the user id.
type AccessClaims struct {
	Role models.Role `json:"role"`
	jwt.RegisteredClaims
}

type AuthOptions struct {
	Secret         []byte
	JWKS           *keyfunc.JWKS
	TokenTTL       time.Duration
	RefreshTTL     time.Duration
	LoginRateLimit int
}

type authService struct {
	users   repositories.UserRepository
	cache   caching.CacheService
	opts    AuthOptions
	keyfunc jwt.Keyfunc
}

// NewAuthService creates a new authentication service
func NewAuthService(users repositories.UserRepository, cache caching.CacheService, opts AuthOptions) AuthService {
	return &authService{
		users:   users,
		cache:   cache,
		opts:    opts,
		keyfunc: NewTokenKeyfunc(opts.Secret, opts.JWKS),
	}
}

// LoadJWKS fetches the key set of an external identity provider and keeps
// it refreshed in the background until ctx is done.
func LoadJWKS(ctx context.Context, url string) (*keyfunc.JWKS, error) {
	jwks, err := keyfunc.Get(url, keyfunc.Options{
		Ctx:               ctx,
		RefreshInterval:   time.Hour,
		RefreshRateLimit:  5 * time.Minute,
		RefreshTimeout:    10 * time.Second,
		RefreshUnknownKID: true,
		RefreshErrorHandler: func(err error) {
			slog.Warn("jwks refresh failed", "url", url, "error", err)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load JWKS from %s: %w", url, err)
	}
	return jwks, nil
}

// NewTokenKeyfunc verifies HMAC tokens with secret and, when jwks is set,
// asymmetric tokens with the provider's keys.
func NewTokenKeyfunc(secret []byte, jwks *keyfunc.JWKS) jwt.Keyfunc {
	return func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); ok {
			if len(secret) == 0 {
				return nil, errors.New("no signing secret configured")
			}
			return secret, nil
		}
		if jwks != nil {
			return jwks.Keyfunc(token)
		}
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
}

// PrincipalFromClaims maps verified claims onto a Principal.
func PrincipalFromClaims(claims *AccessClaims) (models.Principal, error) {
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return models.Principal{}, common.Unauthorized("token subject is not a user id")
	}
	if !claims.Role.Valid() {
		return models.Principal{}, common.Unauthorized("token role is not recognised")
	}
	return models.Principal{UserID: userID, Role: claims.Role}, nil
}

func (s *authService) Keyfunc() jwt.Keyfunc {
	return s.keyfunc
}

func (s *authService) Signup(ctx context.Context, req *models.SignupRequest) (*models.User, error) {
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.Username = strings.TrimSpace(req.Username)

	if err := common.ValidateEmail(req.Email); err != nil {
		return nil, common.InvalidRequest(err.Error())
	}
	if len(req.Username) < 3 || len(req.Username) > 50 {
		return nil, common.InvalidRequest("username must be between 3 and 50 characters")
	}
	if err := validatePassword(req.Password); err != nil {
		return nil, err
	}
	role, ok := models.ParseRole(req.Role)
	if !ok {
		return nil, common.InvalidRequest("role must be customer or shop_owner")
	}
	for field, value := range map[string]*string{"first_name": req.FirstName, "last_name": req.LastName, "phone": req.Phone} {
		if err := common.ValidateOptionalString(value, field, 100); err != nil {
			return nil, common.InvalidRequest(err.Error())
		}
	}

	exists, err := s.users.ExistsByEmailOrUsername(ctx, req.Email, req.Username)
	if err != nil {
		return nil, common.Internal("check user", err)
	}
	if exists {
		return nil, common.Conflict("email or username already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, common.Internal("hash password", err)
	}

	user := &models.User{
		ID:           uuid.New(),
		Email:        req.Email,
		Username:     req.Username,
		PasswordHash: string(hash),
		Role:         role,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Phone:        req.Phone,
		Address:      req.Address,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if repositories.IsUniqueViolation(err) {
			return nil, common.Conflict("email or username already registered")
		}
		return nil, common.Internal("create user", err)
	}

	slog.InfoContext(ctx, "user registered", "user_id", user.ID, "role", user.Role)
	return user, nil
}

func (s *authService) Authenticate(ctx context.Context, login, password string) (*models.User, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return nil, common.InvalidRequest("login and password are required")
	}

	limitKey := "login:" + strings.ToLower(login)
	if s.opts.LoginRateLimit > 0 {
		limited, err := s.cache.IsRateLimited(ctx, limitKey, s.opts.LoginRateLimit, loginWindow)
		switch {
		case err != nil:
			slog.WarnContext(ctx, "login rate limiter unavailable", "error", err)
		case limited:
			return nil, common.Unauthorized("too many login attempts, try again later")
		}
	}

	user, err := s.users.GetByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, common.Unauthorized("invalid credentials")
		}
		return nil, common.Internal("load user", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, common.Unauthorized("invalid credentials")
	}

	if err := s.cache.ResetRateLimit(ctx, limitKey); err != nil {
		slog.WarnContext(ctx, "failed to reset login rate limit", "error", err)
	}
	return user, nil
}

// GenerateTokens generates access and refresh tokens for a user
func (s *authService) GenerateTokens(ctx context.Context, user *models.User) (*models.TokenResponse, error) {
	now := time.Now()
	claims := AccessClaims{
		Role: user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.opts.TokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}

	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.opts.Secret)
	if err != nil {
		return nil, common.Internal("sign access token", err)
	}

	refreshToken, err := generateSecureToken()
	if err != nil {
		return nil, common.Internal("generate refresh token", err)
	}
	if err := s.cache.SetString(ctx, refreshTokenKey(refreshToken), user.ID.String(), s.opts.RefreshTTL); err != nil {
		return nil, common.Internal("store refresh token", err)
	}

	return &models.TokenResponse{
		AccessToken:  accessToken,
		TokenType:    "Bearer",
		ExpiresIn:    int(s.opts.TokenTTL.Seconds()),
		RefreshToken: refreshToken,
		UserID:       user.ID.String(),
		Role:         user.Role,
		IssuedAt:     now,
	}, nil
}

// RefreshToken exchanges a refresh token for a new token pair. The old
// refresh token is revoked.
func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (*models.TokenResponse, error) {
	if refreshToken == "" {
		return nil, common.InvalidRequest("refresh_token is required")
	}

	key := refreshTokenKey(refreshToken)
	stored, err := s.cache.GetString(ctx, key)
	if err != nil {
		return nil, common.Internal("read refresh token", err)
	}
	if stored == "" {
		return nil, common.Unauthorized("invalid refresh token")
	}

	userID, err := uuid.Parse(stored)
	if err != nil {
		return nil, common.Unauthorized("invalid refresh token")
	}
	if err := s.cache.Delete(ctx, key); err != nil {
		return nil, common.Internal("revoke refresh token", err)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, common.Unauthorized("account no longer exists")
		}
		return nil, common.Internal("load user", err)
	}
	return s.GenerateTokens(ctx, user)
}

func (s *authService) RevokeRefreshToken(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return common.InvalidRequest("refresh_token is required")
	}
	if err := s.cache.Delete(ctx, refreshTokenKey(refreshToken)); err != nil {
		return common.Internal("revoke refresh token", err)
	}
	return nil
}

func (s *authService) CurrentUser(token string) (models.Principal, error) {
	claims := &AccessClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, s.keyfunc,
		jwt.WithValidMethods([]string{"HS256", "RS256", "ES256"}),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid {
		return models.Principal{}, common.Unauthorized("invalid or expired token")
	}
	return PrincipalFromClaims(claims)
}

func (s *authService) ChangePassword(ctx context.Context, userID uuid.UUID, req *models.ChangePasswordRequest) error {
	if err := validatePassword(req.NewPassword); err != nil {
		return err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return common.NotFound("user")
		}
		return common.Internal("load user", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return common.Unauthorized("current password is incorrect")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return common.Internal("hash password", err)
	}
	if err := s.users.UpdatePassword(ctx, userID, string(hash)); err != nil {
		return common.Internal("update password", err)
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return common.InvalidRequest(fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}
	if len(password) > maxPasswordLength {
		return common.InvalidRequest(fmt.Sprintf("password cannot exceed %d bytes", maxPasswordLength))
	}
	return nil
}

func generateSecureToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// refreshTokenKey stores only the token's hash.
func refreshTokenKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return caching.KeyPrefix + ":refresh_token:" + hex.EncodeToString(sum[:])
}
