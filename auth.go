package main

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"assettrack/models"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const sessionTTL = 30 * 24 * time.Hour

// Register creates a new user with a bcrypt-hashed password.
func Register(username, email, password string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return fmt.Errorf("username required")
	}
	if len(password) < 6 { // basic password policy
		return fmt.Errorf("password too short (min 6)")
	}
	// pre-check existing (optimistic)
	var existing models.User
	if err := db.Where("username = ?", username).First(&existing).Error; err == nil {
		return fmt.Errorf("user already exists")
	}
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user := models.User{Username: username, Email: strings.TrimSpace(email), HashedPassword: hashedPassword}
	if err := db.Create(&user).Error; err != nil {
		if isUniqueConstraintError(err) { // race condition after initial check
			return fmt.Errorf("user already exists")
		}
		return err
	}
	return nil
}

// Authenticate checks username/password and returns the matching user.
func Authenticate(username, password string) (models.User, error) {
	username = strings.TrimSpace(username)
	var user models.User
	if err := db.Where("username = ?", username).First(&user).Error; err != nil {
		return models.User{}, fmt.Errorf("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword(user.HashedPassword, []byte(password)); err != nil {
		return models.User{}, fmt.Errorf("invalid credentials")
	}
	return user, nil
}

// issueSession signs a session JWT for the user and records its hash in the
// session store so the token can be revoked on logout.
func issueSession(user *models.User, ip string) (string, error) {
	// random jti keeps concurrent logins from minting identical tokens
	jti := make([]byte, 16)
	if _, err := rand.Read(jti); err != nil {
		return "", err
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":      user.ID,
		"username": user.Username,
		"jti":      hex.EncodeToString(jti),
		"exp":      time.Now().Add(sessionTTL).Unix(),
	})
	raw, err := token.SignedString(jwtSecret)
	if err != nil {
		return "", err
	}
	s := models.Session{
		UserID:    user.ID,
		TokenHash: hashToken(raw),
		ExpiresAt: time.Now().Add(sessionTTL),
		IPAddress: ip,
	}
	if err := db.Create(&s).Error; err != nil {
		return "", err
	}
	return raw, nil
}

// lookupSession verifies the token signature, then requires a live session row
// for its hash. Both checks must pass: a valid signature with a revoked or
// missing row does not authenticate.
func lookupSession(raw string) (*models.Session, *models.User, error) {
	token, err := jwt.Parse(raw, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrInvalidKeyType
		}
		return jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, nil, fmt.Errorf("invalid token")
	}
	var s models.Session
	if err := db.Where("token_hash = ?", hashToken(raw)).First(&s).Error; err != nil {
		return nil, nil, fmt.Errorf("session not found")
	}
	if !s.Live(time.Now()) {
		return nil, nil, fmt.Errorf("session expired or revoked")
	}
	var user models.User
	if err := db.First(&user, s.UserID).Error; err != nil {
		return nil, nil, fmt.Errorf("user not found")
	}
	return &s, &user, nil
}

// revokeSession marks the session row revoked; the token stops authenticating
// immediately even though the JWT itself is still unexpired.
func revokeSession(s *models.Session) error {
	return db.Model(&models.Session{}).Where("id = ?", s.ID).Update("revoked", true).Error
}

func hashToken(raw string) string {
	h := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(h[:])
}

func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "duplicate key") || strings.Contains(s, "unique constraint") || strings.Contains(s, "UNIQUE constraint") || strings.Contains(s, "already exists")
}
