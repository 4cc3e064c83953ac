package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"storefront/models"
)

// --- Admin ---

// IsAdmin reports whether an admin token is held.
func (s *Session) IsAdmin() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.adminToken != ""
}

// AdminLogin asks the server for an admin token and keeps it.
func (s *Session) AdminLogin(ctx context.Context, username, password string) error {
	token, err := s.api.AdminLogin(ctx, username, password)
	if err != nil {
		s.notify(NoticeError, "Invalid credentials!")
		return err
	}

	s.mu.Lock()
	s.adminToken = token
	s.persist(KeyAdminToken, token)
	s.persist(KeyIsAdminLoggedIn, true)
	s.mu.Unlock()

	s.notify(NoticeSuccess, "Welcome, Admin!")
	return nil
}

// AdminLogout drops the admin token.
func (s *Session) AdminLogout() {
	s.mu.Lock()
	s.adminToken = ""
	s.forget(KeyAdminToken)
	s.forget(KeyIsAdminLoggedIn)
	s.mu.Unlock()

	s.notify(NoticeInfo, "Logged out successfully")
}

func (s *Session) adminState() (token string, online bool, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.adminToken == "" {
		return "", false, ErrNotAdmin
	}
	return s.adminToken, s.online, nil
}

// AddProduct creates a product. Online it goes through the server and the
// catalog is updated from the response; offline it is added to the local
// catalog with a time-based id.
func (s *Session) AddProduct(ctx context.Context, draft ProductDraft) (models.Product, error) {
	token, online, err := s.adminState()
	if err != nil {
		return models.Product{}, err
	}

	if online {
		p, err := s.api.CreateProduct(ctx, token, draft)
		if err != nil {
			s.adminFailed(err, "add")
			return models.Product{}, err
		}
		s.Apply(models.ProductAdded(p))
		s.notify(NoticeSuccess, "Product added successfully!")
		return p, nil
	}

	if draft.Name == "" || draft.Price < 0 || !models.IsValidCategory(draft.Category) {
		return models.Product{}, fmt.Errorf("invalid product: name, a non-negative price and a known category are required")
	}
	s.mu.Lock()
	p := models.Product{
		ID:          s.nextLocalIDLocked(),
		Name:        draft.Name,
		Price:       draft.Price,
		Description: draft.Description,
		Image:       draft.Image,
		Category:    draft.Category,
	}
	s.products = append(s.products, p)
	s.refilterLocked()
	s.saveProductsLocked()
	s.mu.Unlock()

	s.notify(NoticeSuccess, "Product added successfully!")
	return p, nil
}

// EditProduct merges changes into product id, on the server when online.
func (s *Session) EditProduct(ctx context.Context, id int64, changes ProductChanges) (models.Product, error) {
	token, online, err := s.adminState()
	if err != nil {
		return models.Product{}, err
	}

	if online {
		p, err := s.api.UpdateProduct(ctx, token, id, changes)
		if err != nil {
			s.adminFailed(err, "update")
			return models.Product{}, err
		}
		s.Apply(models.ProductUpdated(p))
		s.notify(NoticeSuccess, "Product updated successfully!")
		return p, nil
	}

	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return models.Product{}, fmt.Errorf("product %d: %w", id, ErrProductNotFound)
	}
	p := s.products[i]
	if changes.Name != nil {
		p.Name = *changes.Name
	}
	if changes.Price != nil {
		p.Price = *changes.Price
	}
	if changes.Description != nil {
		p.Description = *changes.Description
	}
	if changes.Image != nil {
		p.Image = *changes.Image
	}
	if changes.Category != nil {
		p.Category = *changes.Category
	}
	s.products[i] = p
	s.refilterLocked()
	s.saveProductsLocked()
	s.mu.Unlock()

	s.notify(NoticeSuccess, "Product updated successfully!")
	return p, nil
}

// DeleteProduct removes product id, on the server when online.
func (s *Session) DeleteProduct(ctx context.Context, id int64) error {
	token, online, err := s.adminState()
	if err != nil {
		return err
	}

	if online {
		if _, err := s.api.DeleteProduct(ctx, token, id); err != nil {
			s.adminFailed(err, "delete")
			return err
		}
		s.Apply(models.ProductDeleted(id))
		s.notify(NoticeSuccess, "Product deleted successfully!")
		return nil
	}

	s.mu.Lock()
	if s.indexLocked(id) < 0 {
		s.mu.Unlock()
		return fmt.Errorf("product %d: %w", id, ErrProductNotFound)
	}
	s.removeLocked(id)
	s.refilterLocked()
	s.saveProductsLocked()
	s.mu.Unlock()

	s.notify(NoticeSuccess, "Product deleted successfully!")
	return nil
}

// adminFailed reports a rejected admin call. An expired or revoked token
// logs the admin out.
func (s *Session) adminFailed(err error, action string) {
	var apiErr *APIError
	if errors.As(err, &apiErr) && (apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden) {
		s.mu.Lock()
		s.adminToken = ""
		s.forget(KeyAdminToken)
		s.forget(KeyIsAdminLoggedIn)
		s.mu.Unlock()
	}
	s.notify(NoticeError, "Failed to %s product", action)
}

func (s *Session) nextLocalIDLocked() int64 {
	id := s.now().UnixMilli()
	for _, p := range s.products {
		if p.ID >= id {
			id = p.ID + 1
		}
	}
	return id
}

// --- Accounts ---

// CurrentUser returns the logged-in user.
func (s *Session) CurrentUser() (models.PublicUser, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return models.PublicUser{}, false
	}
	return *s.user, true
}

// Register creates an account on the server and logs it in.
func (s *Session) Register(ctx context.Context, username, email, password string) (models.PublicUser, error) {
	if len(password) < minPasswordLength {
		s.notify(NoticeError, "Password must be at least %d characters!", minPasswordLength)
		return models.PublicUser{}, ErrPasswordTooShort
	}
	if _, err := s.api.Register(ctx, username, email, password); err != nil {
		return models.PublicUser{}, s.accountFailed(err, "Registration failed")
	}
	user, err := s.login(ctx, username, password)
	if err != nil {
		return models.PublicUser{}, err
	}
	s.notify(NoticeSuccess, "Account created successfully!")
	return user, nil
}

// Login authenticates against the server.
func (s *Session) Login(ctx context.Context, username, password string) (models.PublicUser, error) {
	user, err := s.login(ctx, username, password)
	if err != nil {
		return models.PublicUser{}, err
	}
	s.notify(NoticeSuccess, "Welcome back!")
	return user, nil
}

func (s *Session) login(ctx context.Context, username, password string) (models.PublicUser, error) {
	user, token, err := s.api.Login(ctx, username, password)
	if err != nil {
		return models.PublicUser{}, s.accountFailed(err, "Invalid username or password!")
	}
	if user.SearchHistory == nil {
		user.SearchHistory = []models.SearchEntry{}
	}

	s.mu.Lock()
	s.user = &user
	s.userToken = token
	s.history = append([]models.SearchEntry{}, user.SearchHistory...)
	s.persist(KeyCurrentUser, user)
	s.persist(KeyUserToken, token)
	s.persist(KeySearchHistory, s.history)
	s.mu.Unlock()
	return user, nil
}

func (s *Session) accountFailed(err error, message string) error {
	if IsNetworkError(err) {
		s.notify(NoticeWarning, "Server unreachable - accounts need a connection")
		return fmt.Errorf("%w: %v", ErrOffline, err)
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode != http.StatusUnauthorized {
		message = apiErr.Message
	}
	s.notify(NoticeError, "%s", message)
	return err
}

// Logout forgets the current user.
func (s *Session) Logout() {
	s.mu.Lock()
	s.user = nil
	s.userToken = ""
	s.history = []models.SearchEntry{}
	s.forget(KeyCurrentUser)
	s.forget(KeyUserToken)
	s.forget(KeySearchHistory)
	s.mu.Unlock()

	s.notify(NoticeInfo, "Logged out successfully")
}
