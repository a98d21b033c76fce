package service

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"deepcrawler/internal/domain"
)

// JWTService emite, valida y revoca tokens de acceso.
type JWTService struct {
	secret []byte
	ttl    time.Duration
	issuer string
	store  RevocationStore
}

type Claims struct {
	UserID   int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	jwt.RegisteredClaims
}

var (
	ErrJWTInvalid = errors.New("jwt invalid")
	ErrJWTExpired = errors.New("jwt expired")
	ErrJWTRevoked = errors.New("jwt revoked")
)

func NewJWTService(secret string, ttl time.Duration, store RevocationStore) *JWTService {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	if store == nil {
		store = NewMemoryRevocationStore()
	}
	return &JWTService{
		secret: []byte(secret),
		ttl:    ttl,
		issuer: "deepcrawler",
		store:  store,
	}
}

func (s *JWTService) TTL() time.Duration {
	return s.ttl
}

// Issue firma un token HS256 para el usuario.
func (s *JWTService) Issue(user domain.User) (string, error) {
	if len(s.secret) == 0 {
		return "", ErrJWTInvalid
	}
	now := time.Now().UTC()
	claims := Claims{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.issuer,
			Subject:   strconv.FormatInt(user.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Parse valida firma, expiración, emisor y que el token no esté revocado.
func (s *JWTService) Parse(tokenString string) (Claims, error) {
	claims, err := s.parseToken(tokenString)
	if err != nil {
		return Claims{}, err
	}
	if s.store != nil {
		revoked, err := s.store.IsRevoked(claims.ID)
		if err != nil {
			return Claims{}, err
		}
		if revoked {
			return Claims{}, ErrJWTRevoked
		}
	}
	return claims, nil
}

// Revoke invalida el token hasta su expiración natural.
func (s *JWTService) Revoke(tokenString string) error {
	claims, err := s.Parse(tokenString)
	if err != nil {
		return err
	}
	if s.store == nil {
		return ErrNotConfigured
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	return s.store.Revoke(claims.ID, ttl)
}

func (s *JWTService) parseToken(tokenString string) (Claims, error) {
	if len(s.secret) == 0 || strings.TrimSpace(tokenString) == "" {
		return Claims{}, ErrJWTInvalid
	}
	var claims Claims
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
	)
	_, err := parser.ParseWithClaims(tokenString, &claims, func(_ *jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrJWTExpired
		}
		return Claims{}, ErrJWTInvalid
	}
	if claims.UserID <= 0 || claims.Subject != strconv.FormatInt(claims.UserID, 10) || claims.ID == "" {
		return Claims{}, ErrJWTInvalid
	}
	return claims, nil
}
