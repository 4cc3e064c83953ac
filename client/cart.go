package client

import (
	"fmt"

	"storefront/models"

	"github.com/shopspring/decimal"
)

// AddToCart adds one unit of product id, copying its name, price and image
// into a new line when the product is not in the cart yet.
func (s *Session) AddToCart(id int64) error {
	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return fmt.Errorf("product %d: %w", id, ErrProductNotFound)
	}
	product := s.products[i]

	if line := s.cartIndexLocked(id); line >= 0 {
		s.cart[line].Quantity++
	} else {
		s.cart = append(s.cart, models.CartItem{
			ID:       product.ID,
			Name:     product.Name,
			Price:    product.Price,
			Image:    product.Image,
			Quantity: 1,
		})
	}
	s.persist(KeyCart, s.cart)
	s.mu.Unlock()

	s.notify(NoticeSuccess, "Product added to cart!")
	return nil
}

// UpdateQuantity changes the quantity of product id by delta. A line that
// drops to zero or below is removed; an id not in the cart is ignored.
func (s *Session) UpdateQuantity(id int64, delta int) {
	s.mu.Lock()
	line := s.cartIndexLocked(id)
	if line < 0 {
		s.mu.Unlock()
		return
	}
	s.cart[line].Quantity += delta
	if s.cart[line].Quantity > 0 {
		s.persist(KeyCart, s.cart)
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()
	s.RemoveFromCart(id)
}

// RemoveFromCart drops the line for product id.
func (s *Session) RemoveFromCart(id int64) {
	s.mu.Lock()
	kept := make([]models.CartItem, 0, len(s.cart))
	for _, item := range s.cart {
		if item.ID != id {
			kept = append(kept, item)
		}
	}
	s.cart = kept
	s.persist(KeyCart, s.cart)
	s.mu.Unlock()

	s.notify(NoticeInfo, "Product removed from cart")
}

// Cart returns a copy of the cart lines.
func (s *Session) Cart() []models.CartItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.CartItem{}, s.cart...)
}

// CartCount is the total number of units in the cart.
func (s *Session) CartCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, item := range s.cart {
		n += item.Quantity
	}
	return n
}

// CartTotal is the sum of price times quantity over all lines, rounded to
// the cent.
func (s *Session) CartTotal() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cartTotal(s.cart).InexactFloat64()
}

// cartTotal sums the lines in decimal and rounds to the cent.
func cartTotal(items []models.CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		line := decimal.NewFromFloat(item.Price).Mul(decimal.NewFromInt(int64(item.Quantity)))
		total = total.Add(line)
	}
	return total.Round(2)
}

// Checkout empties the cart and returns what it totalled. No payment is taken.
func (s *Session) Checkout() (float64, error) {
	s.mu.Lock()
	if len(s.cart) == 0 {
		s.mu.Unlock()
		s.notify(NoticeWarning, "Your cart is empty!")
		return 0, ErrEmptyCart
	}
	total := cartTotal(s.cart)
	s.cart = []models.CartItem{}
	s.persist(KeyCart, s.cart)
	s.mu.Unlock()

	s.notify(NoticeSuccess, "Thank you for your purchase! Total: $%s", total.StringFixed(2))
	return total.InexactFloat64(), nil
}

func (s *Session) cartIndexLocked(id int64) int {
	for i, item := range s.cart {
		if item.ID == id {
			return i
		}
	}
	return -1
}
