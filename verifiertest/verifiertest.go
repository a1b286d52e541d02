// Package verifiertest provides an in-process credential verifier speaking
// the portal's JSON contract, for tests and local development. Accounts are
// held in memory with bcrypt password hashes and sessions are issued as
// HS256 tokens carrying the profile claims the client rehydrates from.
package verifiertest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	auth "github.com/carebridge/portal-auth"
)

type account struct {
	id           uuid.UUID
	fullName     string
	email        string
	contact      string
	role         auth.Role
	passwordHash []byte
}

// Server is a fake credential verifier. Close it when done.
type Server struct {
	*httptest.Server

	signingKey []byte
	tokenTTL   time.Duration

	mu       sync.Mutex
	accounts map[string]*account
	revoked  map[string]bool
	calls    map[string]int
}

type Option func(*Server)

// WithTokenTTL controls how long issued tokens live; a negative TTL issues
// already-expired tokens, which is useful for restore tests.
func WithTokenTTL(ttl time.Duration) Option {
	return func(s *Server) {
		s.tokenTTL = ttl
	}
}

func New(opts ...Option) *Server {
	s := &Server{
		signingKey: []byte("verifiertest-signing-key"),
		tokenTTL:   time.Hour,
		accounts:   map[string]*account{},
		revoked:    map[string]bool{},
		calls:      map[string]int{},
	}
	for _, opt := range opts {
		opt(s)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/signin", s.handleSignin)
	mux.HandleFunc("/auth/signup", s.handleSignup)
	mux.HandleFunc("/auth/logout", s.handleLogout)
	mux.HandleFunc("/auth/delete", s.handleDelete)
	mux.HandleFunc("/auth/password-reset", s.handlePasswordReset)

	s.Server = httptest.NewServer(mux)
	return s
}

// AddAccount registers an account the double will authenticate.
func (s *Server) AddAccount(fullName, email, password string, role auth.Role) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[strings.ToLower(email)] = &account{
		id:           uuid.New(),
		fullName:     fullName,
		email:        strings.ToLower(email),
		role:         role,
		passwordHash: hash,
	}
}

// Calls reports how many requests a path received.
func (s *Server) Calls(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[path]
}

// Revoked reports whether the token was invalidated through /auth/logout.
func (s *Server) Revoked(token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revoked[token]
}

func (s *Server) handleSignin(w http.ResponseWriter, r *http.Request) {
	s.count(r)

	var payload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeMessage(w, http.StatusBadRequest, "Malformed request body")
		return
	}

	s.mu.Lock()
	acct, ok := s.accounts[strings.ToLower(payload.Email)]
	s.mu.Unlock()

	if !ok || bcrypt.CompareHashAndPassword(acct.passwordHash, []byte(payload.Password)) != nil {
		writeMessage(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	token := s.issueToken(acct)
	writeJSON(w, http.StatusOK, map[string]any{
		"token":          token,
		"role":           string(acct.role),
		"full_name":      acct.fullName,
		"email":          acct.email,
		"contact_number": acct.contact,
		"user_id":        acct.id.String(),
	})
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	s.count(r)

	var payload struct {
		FullName      string `json:"full_name"`
		Email         string `json:"email"`
		ContactNumber string `json:"contact_number"`
		Password      string `json:"password"`
		Role          string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeMessage(w, http.StatusBadRequest, "Malformed request body")
		return
	}

	role, ok := auth.ParseRole(payload.Role)
	if !ok {
		writeMessage(w, http.StatusBadRequest, "Unknown role")
		return
	}

	email := strings.ToLower(payload.Email)

	s.mu.Lock()
	if _, exists := s.accounts[email]; exists {
		s.mu.Unlock()
		writeMessage(w, http.StatusConflict, "An account with this email already exists")
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.MinCost)
	if err != nil {
		s.mu.Unlock()
		writeMessage(w, http.StatusInternalServerError, "Could not create account")
		return
	}
	s.accounts[email] = &account{
		id:           uuid.New(),
		fullName:     payload.FullName,
		email:        email,
		contact:      payload.ContactNumber,
		role:         role,
		passwordHash: hash,
	}
	s.mu.Unlock()

	writeMessage(w, http.StatusOK, "Account created. Please sign in.")
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.count(r)

	if token := bearerToken(r); token != "" {
		s.mu.Lock()
		s.revoked[token] = true
		s.mu.Unlock()
	}
	writeMessage(w, http.StatusOK, "Signed out")
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	s.count(r)

	if bearerToken(r) == "" {
		writeMessage(w, http.StatusUnauthorized, "Missing bearer token")
		return
	}

	var payload struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeMessage(w, http.StatusBadRequest, "Malformed request body")
		return
	}

	email := strings.ToLower(payload.Email)

	s.mu.Lock()
	_, exists := s.accounts[email]
	delete(s.accounts, email)
	s.mu.Unlock()

	if !exists {
		writeMessage(w, http.StatusNotFound, "No such account")
		return
	}
	writeMessage(w, http.StatusOK, "Account deleted")
}

func (s *Server) handlePasswordReset(w http.ResponseWriter, r *http.Request) {
	s.count(r)
	// Same answer whether or not the email exists.
	writeMessage(w, http.StatusOK, "ok")
}

func (s *Server) issueToken(acct *account) string {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":       acct.id.String(),
		"role":      string(acct.role),
		"full_name": acct.fullName,
		"email":     acct.email,
		"iat":       jwt.NewNumericDate(now),
		"exp":       jwt.NewNumericDate(now.Add(s.tokenTTL)),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
	if err != nil {
		panic(err)
	}
	return token
}

func (s *Server) count(r *http.Request) {
	s.mu.Lock()
	s.calls[r.URL.Path]++
	s.mu.Unlock()
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	return parts[1]
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Encode cannot fail for these map payloads
	_ = json.NewEncoder(w).Encode(body)
}
