package models

import (
	"time"
)

// Product categories accepted by the catalog.
const (
	CategoryElectronics = "electronics"
	CategoryHome        = "home"
	CategorySports      = "sports"
	CategoryClothing    = "clothing"
	CategoryBooks       = "books"
)

// Categories lists every valid product category, in display order.
var Categories = []string{CategoryElectronics, CategoryHome, CategorySports, CategoryClothing, CategoryBooks}

// MaxSearchHistory is the number of search entries kept per user.
const MaxSearchHistory = 20

// Product is a catalog entry.
type Product struct {
	ID          int64   `json:"id"` // Wall-clock milliseconds at creation
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	Image       string  `json:"image"` // URL
	Category    string  `json:"category"`
}

// CartItem is a line in a session-local cart. Name, price and image are
// copied from the product when it is first added.
type CartItem struct {
	ID       int64   `json:"id"` // Product ID
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Image    string  `json:"image"`
	Quantity int     `json:"quantity"` // Always >= 1
}

// SearchEntry is one recorded search term.
type SearchEntry struct {
	Term      string    `json:"term"`
	Timestamp time.Time `json:"timestamp"` // UTC
}

// User is an account as persisted in users.json.
type User struct {
	ID            int64         `json:"id"`
	Username      string        `json:"username"`
	Email         string        `json:"email"`
	PasswordHash  string        `json:"password_hash"` // bcrypt; never returned by the API
	JoinDate      time.Time     `json:"joinDate"`      // UTC
	SearchHistory []SearchEntry `json:"searchHistory"` // Newest first, at most MaxSearchHistory
}

// PublicUser is the API view of a User.
type PublicUser struct {
	ID            int64         `json:"id"`
	Username      string        `json:"username"`
	Email         string        `json:"email"`
	JoinDate      time.Time     `json:"joinDate"`
	SearchHistory []SearchEntry `json:"searchHistory"`
}

// Public strips the password hash.
func (u User) Public() PublicUser {
	history := u.SearchHistory
	if history == nil {
		history = []SearchEntry{}
	}
	return PublicUser{
		ID:            u.ID,
		Username:      u.Username,
		Email:         u.Email,
		JoinDate:      u.JoinDate,
		SearchHistory: history,
	}
}

// IsValidCategory reports whether c is one of Categories.
func IsValidCategory(c string) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}
