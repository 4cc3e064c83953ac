package db

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"storefront/config"
	"storefront/models"

	log "github.com/sirupsen/logrus"
)

// Notifier receives catalog events after each successful mutation.
type Notifier interface {
	Notify(event models.Event)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(event models.Event)

// Notify calls f(event).
func (f NotifierFunc) Notify(event models.Event) { f(event) }

type discardNotifier struct{}

func (discardNotifier) Notify(models.Event) {}

// ProductInput carries the fields of a new product.
type ProductInput struct {
	Name        string
	Price       float64
	Description string
	Image       string
	Category    string
}

// ProductPatch carries the fields to change on an existing product. Nil
// fields are left untouched.
type ProductPatch struct {
	Name        *string
	Price       *float64
	Description *string
	Image       *string
	Category    *string
}

// CatalogStore holds the product list in memory and mirrors it to a JSON file.
// Every mutation rewrites the file and is then announced to the notifier
// while the write lock is still held, so events go out in mutation order.
type CatalogStore struct {
	mu       sync.RWMutex
	products []models.Product
	path     string
	backup   bool
	notifier Notifier
	now      func() time.Time
}

// NewCatalogStore creates the store and loads cfg.ProductsFile. A missing or
// unparsable file is treated as a first run: the seed catalog is written in
// its place. notifier may be nil.
func NewCatalogStore(cfg *config.Config, notifier Notifier) (*CatalogStore, error) {
	if notifier == nil {
		notifier = discardNotifier{}
	}
	s := &CatalogStore{
		path:     cfg.ProductsFile,
		backup:   cfg.EnableBackup,
		notifier: notifier,
		now:      time.Now,
	}
	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

// SetNotifier replaces the notifier. It exists because the hub needs the
// store for its snapshot and the store needs the hub to broadcast.
func (s *CatalogStore) SetNotifier(notifier Notifier) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if notifier == nil {
		notifier = discardNotifier{}
	}
	s.notifier = notifier
}

// Load (re)reads the products file.
func (s *CatalogStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var products []models.Product
	found, err := readJSONFile(s.path, &products)
	switch {
	case err != nil:
		log.Warnf("Products file unusable (%v). Replacing with the seed catalog.", err)
	case !found:
		log.Infof("Products file '%s' not found. Writing the seed catalog.", s.path)
	default:
		if products == nil {
			products = []models.Product{}
		}
		s.products = products
		log.Infof("Loaded %d products from %s", len(s.products), s.path)
		return nil
	}

	s.products = models.SeedProducts()
	if err := s.persistLocked(); err != nil {
		return fmt.Errorf("writing seed catalog: %w", err)
	}
	return nil
}

// persistLocked writes the catalog. Caller must hold mu.
func (s *CatalogStore) persistLocked() error {
	return writeJSONFile(s.path, s.products, s.backup)
}

// List returns a copy of the catalog in insertion order.
func (s *CatalogStore) List() []models.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Product, len(s.products))
	copy(out, s.products)
	return out
}

// Search returns the products matching term (see models.MatchesProduct).
func (s *CatalogStore) Search(term string) []models.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.FilterProducts(s.products, term)
}

// Count returns the number of products.
func (s *CatalogStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.products)
}

// Get retrieves a product by its ID.
func (s *CatalogStore) Get(id int64) (models.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexLocked(id); i >= 0 {
		return s.products[i], true
	}
	return models.Product{}, false
}

// WithSnapshot calls fn with the current catalog while holding the read
// lock. No mutation commits or notifies until fn returns, so a subscriber
// registered inside fn sees every later event after its snapshot. fn must
// not call back into the store.
func (s *CatalogStore) WithSnapshot(fn func(products []models.Product)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Product, len(s.products))
	copy(out, s.products)
	fn(out)
}

// ApplyRemote applies an event committed by another server instance, persists
// the catalog and hands the event to local. local is used instead of the
// store's notifier so the event is not published back. Events for unknown
// products converge: productUpdated inserts, productDeleted is a no-op.
func (s *CatalogStore) ApplyRemote(event models.Event, local Notifier) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]models.Product, 0, len(s.products)+1)
	switch event.Name {
	case models.EventProductsUpdated:
		products, ok := event.Data.([]models.Product)
		if !ok {
			return fmt.Errorf("%s carries %T: %w", event.Name, event.Data, ErrInvalidInput)
		}
		next = append(next, products...)
	case models.EventProductAdded, models.EventProductUpdated:
		p, ok := event.Data.(models.Product)
		if !ok {
			return fmt.Errorf("%s carries %T: %w", event.Name, event.Data, ErrInvalidInput)
		}
		next = append(next, s.products...)
		if i := s.indexLocked(p.ID); i >= 0 {
			next[i] = p
		} else {
			next = append(next, p)
		}
	case models.EventProductDeleted:
		id, ok := event.Data.(int64)
		if !ok {
			return fmt.Errorf("%s carries %T: %w", event.Name, event.Data, ErrInvalidInput)
		}
		for _, p := range s.products {
			if p.ID != id {
				next = append(next, p)
			}
		}
	default:
		return fmt.Errorf("unknown event %q: %w", event.Name, ErrInvalidInput)
	}

	previous := s.products
	s.products = next
	if err := s.persistLocked(); err != nil {
		s.products = previous
		return fmt.Errorf("saving catalog: %w", err)
	}
	log.WithField("event", event.Name).Debug("Applied remote catalog event")

	if local != nil {
		local.Notify(event)
	}
	return nil
}

func (s *CatalogStore) indexLocked(id int64) int {
	for i, p := range s.products {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// nextIDLocked returns the current time in milliseconds, or one more than
// the largest ID in the catalog if that is not already greater.
func (s *CatalogStore) nextIDLocked() int64 {
	id := s.now().UnixMilli()
	for _, p := range s.products {
		if p.ID >= id {
			id = p.ID + 1
		}
	}
	return id
}

// Create appends a new product, persists the catalog and emits productAdded.
func (s *CatalogStore) Create(in ProductInput) (models.Product, error) {
	p := models.Product{
		Name:        strings.TrimSpace(in.Name),
		Price:       in.Price,
		Description: in.Description,
		Image:       in.Image,
		Category:    in.Category,
	}
	if err := validateProduct(p); err != nil {
		return models.Product{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p.ID = s.nextIDLocked()
	s.products = append(s.products, p)
	if err := s.persistLocked(); err != nil {
		s.products = s.products[:len(s.products)-1]
		return models.Product{}, fmt.Errorf("saving catalog: %w", err)
	}
	log.WithFields(log.Fields{"id": p.ID, "name": p.Name}).Info("Created product")

	s.notifier.Notify(models.ProductAdded(p))
	return p, nil
}

// Update merges patch into the product with the given ID, persists the
// catalog and emits productUpdated.
func (s *CatalogStore) Update(id int64, patch ProductPatch) (models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return models.Product{}, fmt.Errorf("product %d: %w", id, ErrNotFound)
	}

	original := s.products[i]
	updated := original
	if patch.Name != nil {
		updated.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Price != nil {
		updated.Price = *patch.Price
	}
	if patch.Description != nil {
		updated.Description = *patch.Description
	}
	if patch.Image != nil {
		updated.Image = *patch.Image
	}
	if patch.Category != nil {
		updated.Category = *patch.Category
	}
	if err := validateProduct(updated); err != nil {
		return models.Product{}, err
	}

	s.products[i] = updated
	if err := s.persistLocked(); err != nil {
		s.products[i] = original
		return models.Product{}, fmt.Errorf("saving catalog: %w", err)
	}
	log.WithField("id", id).Info("Updated product")

	s.notifier.Notify(models.ProductUpdated(updated))
	return updated, nil
}

// Delete removes the product with the given ID, persists the catalog and
// emits productDeleted. It returns the removed product.
func (s *CatalogStore) Delete(id int64) (models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return models.Product{}, fmt.Errorf("product %d: %w", id, ErrNotFound)
	}

	deleted := s.products[i]
	remaining := make([]models.Product, 0, len(s.products)-1)
	remaining = append(remaining, s.products[:i]...)
	remaining = append(remaining, s.products[i+1:]...)

	previous := s.products
	s.products = remaining
	if err := s.persistLocked(); err != nil {
		s.products = previous
		return models.Product{}, fmt.Errorf("saving catalog: %w", err)
	}
	log.WithField("id", id).Info("Deleted product")

	s.notifier.Notify(models.ProductDeleted(id))
	return deleted, nil
}

func validateProduct(p models.Product) error {
	if p.Name == "" {
		return fmt.Errorf("product name is required: %w", ErrInvalidInput)
	}
	if p.Price < 0 {
		return fmt.Errorf("price must not be negative: %w", ErrInvalidInput)
	}
	if !models.IsValidCategory(p.Category) {
		return fmt.Errorf("unknown category %q: %w", p.Category, ErrInvalidInput)
	}
	return nil
}
