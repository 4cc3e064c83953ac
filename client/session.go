package client

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"storefront/models"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

var (
	ErrEmptyCart        = errors.New("cart is empty")
	ErrProductNotFound  = errors.New("product not found")
	ErrNotAdmin         = errors.New("admin login required")
	ErrNotLoggedIn      = errors.New("user login required")
	ErrOffline          = errors.New("server unreachable")
	ErrPasswordTooShort = fmt.Errorf("password must be at least %d characters", minPasswordLength)
)

const (
	minPasswordLength = 6
	noticeBuffer      = 32
)

// NoticeLevel classifies a Notice.
type NoticeLevel string

const (
	NoticeSuccess NoticeLevel = "success"
	NoticeInfo    NoticeLevel = "info"
	NoticeWarning NoticeLevel = "warning"
	NoticeError   NoticeLevel = "error"
)

// Notice is a transient user-facing message.
type Notice struct {
	Level   NoticeLevel
	Message string
	At      time.Time
}

// Session is one shopper's view of the storefront. It is safe for
// concurrent use; the stream goroutine applies events while callers read.
type Session struct {
	api    *APIClient
	store  *LocalStore
	dialer *websocket.Dialer
	now    func() time.Time

	mu         sync.RWMutex
	products   []models.Product
	filtered   []models.Product // nil when no search is active
	filterTerm string
	cart       []models.CartItem
	adminToken string
	user       *models.PublicUser
	userToken  string
	history    []models.SearchEntry
	online     bool
	conn       *websocket.Conn
	lastNotice Notice

	notices chan Notice
}

// NewSession restores the cart, account and admin state from store. The
// catalog stays empty until Connect succeeds or falls back to offline mode.
func NewSession(api *APIClient, store *LocalStore) *Session {
	if store == nil {
		store, _ = OpenLocalStore("")
	}
	s := &Session{
		api:     api,
		store:   store,
		dialer:  &websocket.Dialer{HandshakeTimeout: 5 * time.Second},
		now:     time.Now,
		notices: make(chan Notice, noticeBuffer),
		cart:    []models.CartItem{},
		history: []models.SearchEntry{},
	}

	store.Get(KeyCart, &s.cart)
	var isAdmin bool
	if store.Get(KeyIsAdminLoggedIn, &isAdmin) && isAdmin {
		store.Get(KeyAdminToken, &s.adminToken)
	}
	var user models.PublicUser
	if store.Get(KeyCurrentUser, &user) {
		s.user = &user
		store.Get(KeyUserToken, &s.userToken)
	}
	store.Get(KeySearchHistory, &s.history)
	return s
}

// Notices delivers notices as they happen. Notices are dropped when nobody
// drains the channel; LastNotice always holds the latest one.
func (s *Session) Notices() <-chan Notice { return s.notices }

// LastNotice returns the most recent notice.
func (s *Session) LastNotice() Notice {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastNotice
}

func (s *Session) notify(level NoticeLevel, format string, args ...any) {
	n := Notice{Level: level, Message: fmt.Sprintf(format, args...), At: s.now()}
	s.mu.Lock()
	s.lastNotice = n
	s.mu.Unlock()
	select {
	case s.notices <- n:
	default:
	}
}

// Online reports whether the real-time stream is connected.
func (s *Session) Online() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.online
}

// Products returns the session's copy of the catalog.
func (s *Session) Products() []models.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Product(nil), s.products...)
}

// Visible returns the search results when a search is active, otherwise the
// whole catalog.
func (s *Session) Visible() []models.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.filtered != nil {
		return append([]models.Product(nil), s.filtered...)
	}
	return append([]models.Product(nil), s.products...)
}

// Apply reconciles the local catalog with a server event and refreshes any
// active search. Unknown events are ignored.
func (s *Session) Apply(event models.Event) {
	var notice string

	s.mu.Lock()
	switch event.Name {
	case models.EventProductsUpdated:
		products, ok := event.Data.([]models.Product)
		if !ok {
			s.mu.Unlock()
			return
		}
		s.products = append([]models.Product{}, products...)
	case models.EventProductAdded:
		p, ok := event.Data.(models.Product)
		if !ok {
			s.mu.Unlock()
			return
		}
		if i := s.indexLocked(p.ID); i >= 0 {
			s.products[i] = p
		} else {
			s.products = append(s.products, p)
		}
		notice = "New product added by admin!"
	case models.EventProductUpdated:
		p, ok := event.Data.(models.Product)
		if !ok {
			s.mu.Unlock()
			return
		}
		i := s.indexLocked(p.ID)
		if i < 0 {
			s.mu.Unlock()
			return
		}
		s.products[i] = p
		notice = "Product updated by admin!"
	case models.EventProductDeleted:
		id, ok := event.Data.(int64)
		if !ok {
			s.mu.Unlock()
			return
		}
		s.removeLocked(id)
		notice = "Product deleted by admin!"
	default:
		s.mu.Unlock()
		return
	}
	s.refilterLocked()
	s.saveProductsLocked()
	s.mu.Unlock()

	if notice != "" {
		s.notify(NoticeInfo, notice)
	}
}

func (s *Session) indexLocked(id int64) int {
	for i, p := range s.products {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (s *Session) removeLocked(id int64) {
	kept := s.products[:0]
	for _, p := range s.products {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	s.products = kept
}

func (s *Session) refilterLocked() {
	if s.filterTerm == "" {
		s.filtered = nil
		return
	}
	s.filtered = models.FilterProducts(s.products, s.filterTerm)
}

func (s *Session) saveProductsLocked() {
	if err := s.store.Set(KeyProducts, s.products); err != nil {
		log.WithError(err).Warn("Failed to cache products")
	}
}

// loadOffline fills an empty catalog from the cache, or from the seed list
// when nothing is cached.
func (s *Session) loadOffline() {
	s.mu.Lock()
	if len(s.products) > 0 {
		s.mu.Unlock()
		return
	}
	var cached []models.Product
	if s.store.Get(KeyProducts, &cached) && cached != nil {
		s.products = cached
	} else {
		s.products = models.SeedProducts()
		s.saveProductsLocked()
	}
	s.refilterLocked()
	s.mu.Unlock()
}

// --- Search ---

// Search filters the catalog by term and returns the matches. An empty term
// clears the search. With a user logged in the term is added to the search
// history, on the server when online.
func (s *Session) Search(ctx context.Context, term string) []models.Product {
	normalized := strings.ToLower(strings.TrimSpace(term))

	s.mu.Lock()
	s.filterTerm = normalized
	s.refilterLocked()
	results := s.filtered
	if results == nil {
		results = s.products
	}
	results = append([]models.Product{}, results...)
	loggedIn := s.user != nil
	s.mu.Unlock()

	if normalized != "" && loggedIn {
		s.recordSearch(ctx, normalized)
	}
	return results
}

func (s *Session) recordSearch(ctx context.Context, term string) {
	s.mu.RLock()
	online, token := s.online, s.userToken
	var userID int64
	if s.user != nil {
		userID = s.user.ID
	}
	s.mu.RUnlock()

	if online && token != "" {
		history, err := s.api.AddSearch(ctx, token, userID, term)
		if err == nil {
			s.setHistory(history)
			return
		}
		log.WithError(err).Warn("Failed to record search on server")
		s.notify(NoticeWarning, "Search history saved locally only")
	}

	s.mu.RLock()
	history := models.PrependSearch(s.history, models.SearchEntry{Term: term, Timestamp: s.now().UTC()})
	s.mu.RUnlock()
	s.setHistory(history)
}

func (s *Session) setHistory(history []models.SearchEntry) {
	if history == nil {
		history = []models.SearchEntry{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = history
	if s.user != nil {
		s.user.SearchHistory = history
		s.persist(KeyCurrentUser, s.user)
	}
	s.persist(KeySearchHistory, history)
}

// SearchHistory returns the current user's searches, newest first.
func (s *Session) SearchHistory() []models.SearchEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.SearchEntry{}, s.history...)
}

// ClearSearchHistory empties the history locally and, when online, on the server.
func (s *Session) ClearSearchHistory(ctx context.Context) error {
	s.mu.RLock()
	user, token, online := s.user, s.userToken, s.online
	s.mu.RUnlock()
	if user == nil {
		return ErrNotLoggedIn
	}
	if online && token != "" {
		if err := s.api.ClearSearch(ctx, token, user.ID); err != nil {
			s.notify(NoticeError, "Failed to clear search history")
			return err
		}
	}
	s.setHistory([]models.SearchEntry{})
	return nil
}

func (s *Session) persist(key string, v any) {
	if err := s.store.Set(key, v); err != nil {
		log.WithError(err).WithField("key", key).Warn("Failed to save local state")
	}
}

func (s *Session) forget(key string) {
	if err := s.store.Remove(key); err != nil {
		log.WithError(err).WithField("key", key).Warn("Failed to clear local state")
	}
}
