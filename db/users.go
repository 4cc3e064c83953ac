package db

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"storefront/config"
	"storefront/models"
	"storefront/utils"

	log "github.com/sirupsen/logrus"
)

// MinPasswordLength is the shortest password Register accepts.
const MinPasswordLength = 6

// UserStore holds the accounts in memory and mirrors them to a JSON file.
type UserStore struct {
	mu         sync.RWMutex
	users      []models.User
	path       string
	backup     bool
	bcryptCost int
	now        func() time.Time
}

// NewUserStore creates the store and loads cfg.UsersFile. A missing or
// unparsable file starts an empty user list, which is written immediately.
func NewUserStore(cfg *config.Config) (*UserStore, error) {
	s := &UserStore{
		path:       cfg.UsersFile,
		backup:     cfg.EnableBackup,
		bcryptCost: cfg.BcryptCost,
		now:        time.Now,
	}
	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Load (re)reads the users file.
func (s *UserStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var users []models.User
	found, err := readJSONFile(s.path, &users)
	switch {
	case err != nil:
		log.Warnf("Users file unusable (%v). Starting with no users.", err)
	case !found:
		log.Infof("Users file '%s' not found. Starting with no users.", s.path)
	default:
		if users == nil {
			users = []models.User{}
		}
		s.users = users
		log.Infof("Loaded %d users from %s", len(s.users), s.path)
		return nil
	}

	s.users = []models.User{}
	if err := writeJSONFile(s.path, s.users, s.backup); err != nil {
		return fmt.Errorf("writing empty users file: %w", err)
	}
	return nil
}

// Count returns the number of registered users.
func (s *UserStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}

// Get retrieves a user by ID.
func (s *UserStore) Get(id int64) (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexLocked(id); i >= 0 {
		return cloneUser(s.users[i]), true
	}
	return models.User{}, false
}

func (s *UserStore) indexLocked(id int64) int {
	for i, u := range s.users {
		if u.ID == id {
			return i
		}
	}
	return -1
}

func (s *UserStore) nextIDLocked() int64 {
	id := s.now().UnixMilli()
	for _, u := range s.users {
		if u.ID >= id {
			id = u.ID + 1
		}
	}
	return id
}

// Register creates an account. A username or email already in use (compared
// case-insensitively) yields ErrConflict and leaves the store unchanged.
func (s *UserStore) Register(username, email, password string) (models.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" {
		return models.User{}, fmt.Errorf("username and email are required: %w", ErrInvalidInput)
	}
	if len(password) < MinPasswordLength {
		return models.User{}, fmt.Errorf("password must be at least %d characters: %w", MinPasswordLength, ErrInvalidInput)
	}

	// Hash before taking the lock; bcrypt is slow on purpose.
	hash, err := utils.HashPassword(password, s.bcryptCost)
	if err != nil {
		return models.User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if strings.EqualFold(existing.Username, username) {
			return models.User{}, fmt.Errorf("username '%s' %w", username, ErrConflict)
		}
		if strings.EqualFold(existing.Email, email) {
			return models.User{}, fmt.Errorf("email '%s' %w", email, ErrConflict)
		}
	}

	user := models.User{
		ID:            s.nextIDLocked(),
		Username:      username,
		Email:         email,
		PasswordHash:  hash,
		JoinDate:      s.now().UTC(),
		SearchHistory: []models.SearchEntry{},
	}
	s.users = append(s.users, user)
	if err := writeJSONFile(s.path, s.users, s.backup); err != nil {
		s.users = s.users[:len(s.users)-1]
		return models.User{}, fmt.Errorf("saving users: %w", err)
	}
	log.WithFields(log.Fields{"id": user.ID, "username": user.Username}).Info("Registered user")

	return cloneUser(user), nil
}

// Authenticate returns the user whose username and password match.
func (s *UserStore) Authenticate(username, password string) (models.User, error) {
	s.mu.RLock()
	var (
		user  models.User
		found bool
	)
	for _, u := range s.users {
		if strings.EqualFold(u.Username, strings.TrimSpace(username)) {
			user, found = cloneUser(u), true
			break
		}
	}
	s.mu.RUnlock()

	if !found || !utils.CheckPasswordHash(password, user.PasswordHash) {
		return models.User{}, ErrInvalidCredentials
	}
	return user, nil
}

// AppendSearch records term as the newest entry of the user's search
// history, keeping at most models.MaxSearchHistory entries.
func (s *UserStore) AppendSearch(id int64, term string) (models.User, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return models.User{}, fmt.Errorf("search term is required: %w", ErrInvalidInput)
	}

	return s.mutate(id, func(u *models.User) {
		u.SearchHistory = models.PrependSearch(u.SearchHistory, models.SearchEntry{
			Term:      term,
			Timestamp: s.now().UTC(),
		})
	})
}

// ClearSearchHistory empties the user's search history.
func (s *UserStore) ClearSearchHistory(id int64) (models.User, error) {
	return s.mutate(id, func(u *models.User) {
		u.SearchHistory = []models.SearchEntry{}
	})
}

func (s *UserStore) mutate(id int64, apply func(u *models.User)) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return models.User{}, fmt.Errorf("user %d: %w", id, ErrNotFound)
	}

	original := s.users[i]
	updated := cloneUser(original)
	apply(&updated)

	s.users[i] = updated
	if err := writeJSONFile(s.path, s.users, s.backup); err != nil {
		s.users[i] = original
		return models.User{}, fmt.Errorf("saving users: %w", err)
	}
	log.WithField("id", id).Debug("Updated user")

	return cloneUser(updated), nil
}

func cloneUser(u models.User) models.User {
	history := make([]models.SearchEntry, len(u.SearchHistory))
	copy(history, u.SearchHistory)
	u.SearchHistory = history
	return u
}
