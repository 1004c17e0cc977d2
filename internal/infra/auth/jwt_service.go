package auth

import (
	"crypto/rand"
	"encoding/base64"
	"slices"
	"time"

	"fintracker/config"
	"fintracker/internal/domain/entity"
	"fintracker/internal/domain/service"
	"fintracker/internal/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const refreshTokenBytes = 32

var (
	errMissingSecret   = errors.New("jwt access secret must be provided")
	errIssuerMismatch  = errors.New("token issuer mismatch")
	errAudienceMissing = errors.New("token audience mismatch")
)

// jwtService signs HS256 access tokens and mints opaque refresh tokens.
type jwtService struct {
	secret     []byte
	issuer     string
	audience   string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewJWTService builds the token service from config. It fails without a secret.
func NewJWTService(cfg *config.Config) (service.TokenService, error) {
	return newJWTService(cfg, time.Now)
}

func newJWTService(cfg *config.Config, now func() time.Time) (*jwtService, error) {
	if cfg.SecretKey.Access == "" {
		return nil, errMissingSecret
	}

	authCfg := cfg.Auth
	if authCfg == nil {
		authCfg = &config.AuthConfig{}
	}

	s := &jwtService{
		secret:     []byte(cfg.SecretKey.Access),
		issuer:     authCfg.Issuer,
		audience:   authCfg.Audience,
		accessTTL:  authCfg.AccessTokenTTL,
		refreshTTL: authCfg.RefreshTokenTTL,
		now:        now,
	}
	if s.accessTTL <= 0 {
		s.accessTTL = 5 * time.Minute
	}
	if s.refreshTTL <= 0 {
		s.refreshTTL = 30 * 24 * time.Hour
	}

	return s, nil
}

func (s *jwtService) GenerateAccessToken(user *entity.User) (string, time.Time, error) {
	issuedAt := s.now()
	expiresAt := issuedAt.Add(s.accessTTL)

	claims := &service.Claims{
		Email:      user.Email,
		GivenName:  user.FirstName,
		FamilyName: user.LastName,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID.String(),
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	if s.audience != "" {
		claims.Audience = jwt.ClaimStrings{s.audience}
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, errors.Wrap(err, "sign access token")
	}

	return signed, expiresAt, nil
}

func (s *jwtService) GenerateRefreshToken() (string, error) {
	buf := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Wrap(err, "read random bytes")
	}

	return base64.StdEncoding.EncodeToString(buf), nil
}

func (s *jwtService) ValidateAccessToken(tokenString string) (*service.Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}
	if s.audience != "" {
		opts = append(opts, jwt.WithAudience(s.audience))
	}

	return s.parse(tokenString, opts...)
}

// ValidateExpiredToken skips the time based checks. Issuer and audience are
// still compared by hand since WithoutClaimsValidation turns those off too.
func (s *jwtService) ValidateExpiredToken(tokenString string) (*service.Claims, error) {
	claims, err := s.parse(tokenString,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return nil, err
	}

	if s.issuer != "" && claims.Issuer != s.issuer {
		return nil, errIssuerMismatch
	}
	if s.audience != "" && !slices.Contains(claims.Audience, s.audience) {
		return nil, errAudienceMissing
	}

	return claims, nil
}

func (s *jwtService) RefreshTokenDuration() time.Duration {
	return s.refreshTTL
}

func (s *jwtService) parse(tokenString string, opts ...jwt.ParserOption) (*service.Claims, error) {
	claims := &service.Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "parse token")
	}
	if !token.Valid {
		return nil, errors.New("token is not valid")
	}
	if _, err := claims.UserID(); err != nil {
		return nil, errors.Wrap(err, "token subject is not a user id")
	}

	return claims, nil
}
