package services

import (
	"errors"
	"fmt"
	"time"

	"catfish/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const tokenLifetime = 24 * time.Hour

// AuthService issues and verifies identities. Prompt pool admins hold
// registered accounts; players get anonymous guest identities with a
// stable uid for the lifetime of their token.
type AuthService struct {
	db        *gorm.DB
	jwtSecret string
}

func NewAuthService(db *gorm.DB, jwtSecret string) *AuthService {
	return &AuthService{db: db, jwtSecret: jwtSecret}
}

type tokenClaims struct {
	Guest bool `json:"guest"`
	jwt.RegisteredClaims
}

func (s *AuthService) issueToken(uid string, guest bool) (string, error) {
	claims := tokenClaims{
		Guest: guest,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uid,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenLifetime)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

func (s *AuthService) Register(username, password string) (*models.User, string, error) {
	var existing models.User
	if err := s.db.Where("username = ?", username).First(&existing).Error; err == nil {
		return nil, "", ErrUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		UID:          uuid.NewString(),
		Username:     username,
		PasswordHash: string(hash),
	}
	if err := s.db.Create(&user).Error; err != nil {
		return nil, "", err
	}

	token, err := s.issueToken(user.UID, false)
	if err != nil {
		return nil, "", err
	}
	return &user, token, nil
}

func (s *AuthService) Login(username, password string) (*models.User, string, error) {
	var user models.User
	if err := s.db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.issueToken(user.UID, false)
	if err != nil {
		return nil, "", err
	}
	return &user, token, nil
}

// GuestToken mints an anonymous identity for a player joining a game.
func (s *AuthService) GuestToken() (string, string, error) {
	uid := uuid.NewString()
	token, err := s.issueToken(uid, true)
	if err != nil {
		return "", "", err
	}
	return uid, token, nil
}

// VerifyToken returns the stable uid behind a bearer token and whether
// the identity is a guest.
func (s *AuthService) VerifyToken(tokenString string) (string, bool, error) {
	token, err := jwt.ParseWithClaims(tokenString, &tokenClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return "", false, err
	}

	claims, ok := token.Claims.(*tokenClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return "", false, errors.New("invalid token claims")
	}
	return claims.Subject, claims.Guest, nil
}
