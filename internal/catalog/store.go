package catalog

import (
	"slices"
	"sync"
	"time"
)

// createdAtLayout matches the millisecond ISO-8601 form browsers produce.
const createdAtLayout = "2006-01-02T15:04:05.000Z"

type Product struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	Stock       *int    `json:"stock,omitempty"`
	Description string  `json:"description,omitempty"`
	CreatedAt   string  `json:"created_at"`
}

// ProductName is the key the list view searches on.
func ProductName(p Product) string { return p.Name }

// Fields is the caller-supplied part of a new product. The store owns ID
// and CreatedAt.
type Fields struct {
	Name        string
	Price       float64
	Category    string
	Stock       *int
	Description string
}

// Store exclusively owns the product collection. Every mutation swaps in a
// new backing slice, so a snapshot handed out earlier never changes.
type Store struct {
	mu     sync.RWMutex
	items  []Product
	nextID int
	now    func() time.Time
}

type Option func(*Store)

// WithSeed preloads products in the given order. IDs are kept as-is.
func WithSeed(products ...Product) Option {
	return func(s *Store) {
		for _, p := range products {
			p.Stock = cloneInt(p.Stock)
			s.items = append(s.items, p)
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func NewStore(opts ...Option) *Store {
	s := &Store{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	s.nextID = 1
	for _, p := range s.items {
		if p.ID >= s.nextID {
			s.nextID = p.ID + 1
		}
	}
	return s
}

// Add appends a new product built from f and returns it. Add performs no
// validation and never fails.
func (s *Store) Add(f Fields) Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := Product{
		ID:          s.nextID,
		Name:        f.Name,
		Price:       f.Price,
		Category:    f.Category,
		Stock:       cloneInt(f.Stock),
		Description: f.Description,
		CreatedAt:   s.now().UTC().Format(createdAtLayout),
	}
	s.nextID++

	next := make([]Product, len(s.items), len(s.items)+1)
	copy(next, s.items)
	s.items = append(next, p)
	return p
}

// Edit overwrites the first product whose ID matches p.ID. It is a no-op
// when nothing matches.
func (s *Store) Edit(p Product) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.IndexFunc(s.items, func(it Product) bool { return it.ID == p.ID })
	if i < 0 {
		return
	}

	p.Stock = cloneInt(p.Stock)
	next := slices.Clone(s.items)
	next[i] = p
	s.items = next
}

// All returns a copy of the collection in insertion order.
func (s *Store) All() []Product {
	s.mu.RLock()
	items := s.items
	s.mu.RUnlock()

	out := make([]Product, len(items))
	for i, p := range items {
		p.Stock = cloneInt(p.Stock)
		out[i] = p
	}
	return out
}

func (s *Store) Get(id int) (Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.items {
		if p.ID == id {
			p.Stock = cloneInt(p.Stock)
			return p, true
		}
	}
	return Product{}, false
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	n := *v
	return &n
}
