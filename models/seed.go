package models

// SeedProducts returns the catalog used on first run. A fresh slice is
// returned on every call.
func SeedProducts() []Product {
	return []Product{
		{
			ID:          1,
			Name:        "Wireless Bluetooth Headphones",
			Price:       79.99,
			Description: "High-quality wireless headphones with noise cancellation and 30-hour battery life.",
			Image:       "https://images.unsplash.com/photo-1505740420928-5e560c06d30e?w=400",
			Category:    CategoryElectronics,
		},
		{
			ID:          2,
			Name:        "Smart Fitness Watch",
			Price:       199.99,
			Description: "Track your fitness goals with heart rate monitoring, GPS, and water resistance.",
			Image:       "https://images.unsplash.com/photo-1523275335684-37898b6baf30?w=400",
			Category:    CategoryElectronics,
		},
		{
			ID:          3,
			Name:        "Premium Coffee Maker",
			Price:       149.99,
			Description: "Professional-grade coffee maker with programmable settings and thermal carafe.",
			Image:       "https://images.unsplash.com/photo-1495474472287-4d71bcdd2085?w=400",
			Category:    CategoryHome,
		},
		{
			ID:          4,
			Name:        "Yoga Mat Premium",
			Price:       39.99,
			Description: "Non-slip yoga mat with extra cushioning and carrying strap included.",
			Image:       "https://images.unsplash.com/photo-1544367567-0f2fcb009e0b?w=400",
			Category:    CategorySports,
		},
		{
			ID:          5,
			Name:        "Designer Backpack",
			Price:       89.99,
			Description: "Stylish and functional backpack with laptop compartment and multiple pockets.",
			Image:       "https://images.unsplash.com/photo-1553062407-98eeb64c6a62?w=400",
			Category:    CategoryClothing,
		},
		{
			ID:          6,
			Name:        "Programming Book Collection",
			Price:       59.99,
			Description: "Complete set of programming books covering JavaScript, Python, and web development.",
			Image:       "https://images.unsplash.com/photo-1481627834876-b7833e8f5570?w=400",
			Category:    CategoryBooks,
		},
	}
}
