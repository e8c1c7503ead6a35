package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

var (
	ErrSeedBadID       = errors.New("seed product id must be positive")
	ErrSeedDuplicateID = errors.New("duplicate seed product id")
)

// DefaultSeed is the catalog a fresh process starts with.
func DefaultSeed() []Product {
	const created = "2025-01-06T09:00:00.000Z"
	stock := func(n int) *int { return &n }

	return []Product{
		{ID: 1, Name: "Wireless Mouse", Price: 799, Category: "Electronics", Stock: stock(42), Description: "2.4GHz ergonomic mouse with silent clicks.", CreatedAt: created},
		{ID: 2, Name: "Mechanical Keyboard", Price: 3499, Category: "Electronics", Stock: stock(15), Description: "Tenkeyless, brown switches.", CreatedAt: created},
		{ID: 3, Name: "USB-C Hub", Price: 1899, Category: "Electronics", Stock: stock(27), CreatedAt: created},
		{ID: 4, Name: "Cotton T-Shirt", Price: 499, Category: "Apparel", Stock: stock(120), CreatedAt: created},
		{ID: 5, Name: "Denim Jacket", Price: 2599, Category: "Apparel", Stock: stock(8), Description: "Stonewashed, regular fit.", CreatedAt: created},
		{ID: 6, Name: "Running Shoes", Price: 4299, Category: "Footwear", Stock: stock(33), CreatedAt: created},
		{ID: 7, Name: "Steel Water Bottle", Price: 649, Category: "Kitchen", Stock: stock(64), Description: "Keeps drinks cold for 24 hours.", CreatedAt: created},
		{ID: 8, Name: "Chef Knife", Price: 1599, Category: "Kitchen", Stock: stock(19), CreatedAt: created},
		{ID: 9, Name: "Ceramic Mug", Price: 349, Category: "Kitchen", Stock: stock(80), CreatedAt: created},
		{ID: 10, Name: "Yoga Mat", Price: 1199, Category: "Fitness", Stock: stock(25), CreatedAt: created},
		{ID: 11, Name: "Adjustable Dumbbell", Price: 5999, Category: "Fitness", Stock: stock(6), CreatedAt: created},
		{ID: 12, Name: "Desk Lamp", Price: 1299, Category: "Home", Stock: stock(37), Description: "LED, three colour temperatures.", CreatedAt: created},
		{ID: 13, Name: "Notebook Set", Price: 299, Category: "Stationery", CreatedAt: created},
		{ID: 14, Name: "Fountain Pen", Price: 899, Category: "Stationery", Stock: stock(12), CreatedAt: created},
	}
}

// LoadSeedFile reads a JSON array of products. Seeds bypass Add, so IDs are
// checked here.
func LoadSeedFile(path string) ([]Product, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}

	var products []Product
	if err := json.Unmarshal(raw, &products); err != nil {
		return nil, fmt.Errorf("decode seed file: %w", err)
	}

	seen := make(map[int]struct{}, len(products))
	for _, p := range products {
		if p.ID <= 0 {
			return nil, fmt.Errorf("%w: %d", ErrSeedBadID, p.ID)
		}
		if _, dup := seen[p.ID]; dup {
			return nil, fmt.Errorf("%w: %d", ErrSeedDuplicateID, p.ID)
		}
		seen[p.ID] = struct{}{}
	}
	return products, nil
}
