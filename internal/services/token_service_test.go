package services

import (
	"crypto/rsa"
	"testing"
	"time"

	"meatmarket-api/internal/config"
	"meatmarket-api/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

func TestTokenServiceSuite(t *testing.T) {
	suite.Run(t, new(TokenServiceSuite))
}

type TokenServiceSuite struct {
	suite.Suite
	privateKey *rsa.PrivateKey
	service    TokenServiceInterface
}

func (s *TokenServiceSuite) SetupTest() {
	privateKey, publicKey, err := config.GenerateRSAKeyPair()
	s.Require().NoError(err)

	s.privateKey = privateKey
	s.service = NewTokenService(&config.AuthConfig{
		PublicKey: publicKey,
		Issuer:    "test-issuer",
	})
}

func (s *TokenServiceSuite) issueToken(key *rsa.PrivateKey, issuer, role string, ttl time.Duration) string {
	now := time.Now()
	claims := models.ActorClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID: uuid.New().String(),
		Email:  "someone@example.com",
		Role:   role,
	}

	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	s.Require().NoError(err)
	return tokenString
}

func (s *TokenServiceSuite) TestValidateAccessToken_ValidToken() {
	tokenString := s.issueToken(s.privateKey, "test-issuer", models.RoleAdmin, time.Hour)

	claims, err := s.service.ValidateAccessToken(tokenString)
	s.NoError(err)
	s.Require().NotNil(claims)
	s.Equal("someone@example.com", claims.Email)
	s.Equal(models.RoleAdmin, claims.Role)
	s.True(claims.IsAdmin())
	s.NotEmpty(claims.UserID)
}

func (s *TokenServiceSuite) TestValidateAccessToken_ConsumerRole() {
	tokenString := s.issueToken(s.privateKey, "test-issuer", models.RoleConsumer, time.Hour)

	claims, err := s.service.ValidateAccessToken(tokenString)
	s.NoError(err)
	s.False(claims.IsAdmin())
}

func (s *TokenServiceSuite) TestValidateAccessToken_EmptyToken() {
	claims, err := s.service.ValidateAccessToken("")
	s.ErrorIs(err, ErrEmptyToken)
	s.Nil(claims)
}

func (s *TokenServiceSuite) TestValidateAccessToken_Garbage() {
	claims, err := s.service.ValidateAccessToken("not.a.jwt")
	s.ErrorIs(err, ErrInvalidToken)
	s.Nil(claims)
}

func (s *TokenServiceSuite) TestValidateAccessToken_Expired() {
	tokenString := s.issueToken(s.privateKey, "test-issuer", models.RoleConsumer, -time.Minute)

	claims, err := s.service.ValidateAccessToken(tokenString)
	s.ErrorIs(err, ErrExpiredToken)
	s.Nil(claims)
}

func (s *TokenServiceSuite) TestValidateAccessToken_WrongKey() {
	otherKey, _, err := config.GenerateRSAKeyPair()
	s.Require().NoError(err)

	tokenString := s.issueToken(otherKey, "test-issuer", models.RoleConsumer, time.Hour)

	claims, err := s.service.ValidateAccessToken(tokenString)
	s.ErrorIs(err, ErrInvalidToken)
	s.Nil(claims)
}

func (s *TokenServiceSuite) TestValidateAccessToken_WrongIssuer() {
	tokenString := s.issueToken(s.privateKey, "another-issuer", models.RoleConsumer, time.Hour)

	claims, err := s.service.ValidateAccessToken(tokenString)
	s.ErrorIs(err, ErrInvalidIssuer)
	s.Nil(claims)
}

func (s *TokenServiceSuite) TestValidateAccessToken_RejectsNonRSAAlgorithm() {
	claims := jwt.RegisteredClaims{
		Issuer:    "test-issuer",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("shared-secret"))
	s.Require().NoError(err)

	parsed, err := s.service.ValidateAccessToken(tokenString)
	s.ErrorIs(err, ErrInvalidToken)
	s.Nil(parsed)
}

func (s *TokenServiceSuite) TestExtractTokenFromHeader() {
	token, err := s.service.ExtractTokenFromHeader("Bearer abc123")
	s.NoError(err)
	s.Equal("abc123", token)

	// Scheme comparison is case-insensitive
	token, err = s.service.ExtractTokenFromHeader("bearer abc123")
	s.NoError(err)
	s.Equal("abc123", token)

	_, err = s.service.ExtractTokenFromHeader("")
	s.ErrorIs(err, ErrInvalidAuthHeader)

	_, err = s.service.ExtractTokenFromHeader("abc123")
	s.ErrorIs(err, ErrInvalidAuthHeader)

	_, err = s.service.ExtractTokenFromHeader("Bearer ")
	s.ErrorIs(err, ErrInvalidAuthHeader)
}
