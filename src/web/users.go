package web

import (
	"crypto/sha256"
	"encoding/base64"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrBlankCredentials : username or password missing after trimming
	ErrBlankCredentials = errors.New("username and password are required")

	// ErrUserExists : the username is already registered
	ErrUserExists = errors.New("username already exists")

	// ErrInvalidCredentials : unknown user or wrong password
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// UserStore : In-memory map of usernames to bcrypt credential hashes
type UserStore struct {
	mu    sync.RWMutex
	users map[string][]byte
	cost  int
}

// NewUserStore : Returns an empty store hashing at bcrypt.DefaultCost
func NewUserStore() *UserStore {
	return NewUserStoreWithCost(bcrypt.DefaultCost)
}

// NewUserStoreWithCost : Returns an empty store hashing at the given bcrypt cost
func NewUserStoreWithCost(cost int) *UserStore {
	return &UserStore{
		users: make(map[string][]byte),
		cost:  cost,
	}
}

// Signup : Registers a new user and returns the trimmed username
func (s *UserStore) Signup(username, password string) (string, error) {
	username = strings.TrimSpace(username)
	password = strings.TrimSpace(password)
	if username == "" || password == "" {
		return "", ErrBlankCredentials
	}

	hash, err := bcrypt.GenerateFromPassword(prehash(password), s.cost)
	if err != nil {
		return "", errors.Wrap(err, "failed to hash password")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[username]; exists {
		return "", ErrUserExists
	}
	s.users[username] = hash
	return username, nil
}

// Authenticate : Checks a password against the stored hash
func (s *UserStore) Authenticate(username, password string) (string, error) {
	username = strings.TrimSpace(username)
	password = strings.TrimSpace(password)

	s.mu.RLock()
	hash, ok := s.users[username]
	s.mu.RUnlock()
	if !ok {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(hash, prehash(password)); err != nil {
		return "", ErrInvalidCredentials
	}
	return username, nil
}

// Len : Returns the number of registered users
func (s *UserStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}

// prehash digests the password so bcrypt sees every byte of it; bcrypt
// rejects input longer than 72 bytes.
func prehash(password string) []byte {
	sum := sha256.Sum256([]byte(password))
	return []byte(base64.StdEncoding.EncodeToString(sum[:]))
}
