package mockapi

import (
	"crypto/rand"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	tokenIssuer     = "posts-mockapi"
	defaultTokenTTL = time.Hour
)

var errMissingAuthorization = errors.New("Missing authorization header")

// tokenManager signs and verifies the HS256 access tokens handed out by /register and /login.
type tokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func newTokenManager(secret []byte, ttl time.Duration) (*tokenManager, error) {
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return nil, fmt.Errorf("failed to generate token secret: %w", err)
		}
	}
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &tokenManager{secret: secret, ttl: ttl, now: time.Now}, nil
}

func (m *tokenManager) issue(userID, email string) (string, error) {
	now := m.now()
	claims := jwt.MapClaims{
		"iss":   tokenIssuer,
		"sub":   userID,
		"email": email,
		"iat":   now.Unix(),
		"exp":   now.Add(m.ttl).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, nil
}

// verify returns the user id from a valid token.
func (m *tokenManager) verify(tokenString string) (string, error) {
	token, err := jwt.Parse(
		tokenString,
		func(*jwt.Token) (interface{}, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return "", err
	}
	return token.Claims.GetSubject()
}

// bearerToken returns the token from an "Authorization: Bearer" header.
func bearerToken(r *http.Request) (string, error) {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return "", errMissingAuthorization
	}
	scheme, token, found := strings.Cut(auth, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", errors.New("Bad authorization header")
	}
	return strings.TrimSpace(token), nil
}

// requireAuthForWrites rejects any request other than GET or HEAD that lacks a valid access
// token, the way a "664" route guard does: anyone can read, only logged-in users can write.
func (s *Server) requireAuthForWrites(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet || r.Method == http.MethodHead {
			next.ServeHTTP(w, r)
			return
		}
		token, err := bearerToken(r)
		if err == nil {
			_, err = s.tokens.verify(token)
		}
		if err != nil {
			s.logger.Printf("Rejected %s %s: %s", r.Method, r.URL.Path, err)
			writeJSON(w, http.StatusUnauthorized, err.Error())
			return
		}
		next.ServeHTTP(w, r)
	})
}
