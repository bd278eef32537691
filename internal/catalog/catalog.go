// Package catalog is the read-only card registry: lookups, validation and hand dealing.
package catalog

import (
	_ "embed"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jason-s-yu/promptwars/internal/apperr"
	"github.com/jason-s-yu/promptwars/internal/models"
)

//go:embed cards.yaml
var defaultCards []byte

type cardFile struct {
	Cards []models.Card `yaml:"cards"`
}

// Stats summarises the catalog contents per category.
type Stats struct {
	Total     int `json:"total_cards"`
	Elements  int `json:"elements"`
	Actions   int `json:"actions"`
	Materials int `json:"materials"`
}

// Catalog holds the immutable card set. Only the random source is mutable, guarded by mu.
type Catalog struct {
	cards      map[string]models.Card
	order      []models.Card
	byCategory map[models.Category][]models.Card

	mu  sync.Mutex
	rng *rand.Rand
}

// Option customises a Catalog at construction.
type Option func(*Catalog)

// WithSeed makes hand draws deterministic.
func WithSeed(seed int64) Option {
	return func(c *Catalog) {
		c.rng = rand.New(rand.NewSource(seed))
	}
}

// Default loads the embedded card file.
func Default(opts ...Option) (*Catalog, error) {
	return Parse(defaultCards, opts...)
}

// Parse decodes a YAML card file of the form `cards: [{id, name, category, description}]`.
func Parse(data []byte, opts ...Option) (*Catalog, error) {
	var f cardFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse card file: %w", err)
	}
	return New(f.Cards, opts...)
}

// New builds a catalog from an explicit card list. Every category must have at least one card.
func New(cards []models.Card, opts ...Option) (*Catalog, error) {
	c := &Catalog{
		cards:      make(map[string]models.Card, len(cards)),
		byCategory: make(map[models.Category][]models.Card),
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, card := range cards {
		if card.ID == "" {
			return nil, fmt.Errorf("card %q has no id", card.Name)
		}
		if !card.Category.Valid() {
			return nil, fmt.Errorf("card %q has unknown category %q", card.ID, card.Category)
		}
		if _, dup := c.cards[card.ID]; dup {
			return nil, fmt.Errorf("duplicate card id %q", card.ID)
		}
		c.cards[card.ID] = card
		c.order = append(c.order, card)
		c.byCategory[card.Category] = append(c.byCategory[card.Category], card)
	}
	for _, cat := range models.Categories {
		if len(c.byCategory[cat]) == 0 {
			return nil, fmt.Errorf("catalog has no %s cards", cat)
		}
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Resolve looks up a card by id.
func (c *Catalog) Resolve(id string) (models.Card, bool) {
	card, ok := c.cards[id]
	return card, ok
}

// All returns every card in file order.
func (c *Catalog) All() []models.Card {
	out := make([]models.Card, len(c.order))
	copy(out, c.order)
	return out
}

// ListByCategory returns the cards of one category, nil for unknown categories.
func (c *Catalog) ListByCategory(cat models.Category) []models.Card {
	src := c.byCategory[cat]
	if len(src) == 0 {
		return nil
	}
	out := make([]models.Card, len(src))
	copy(out, src)
	return out
}

// Count is the number of distinct cards.
func (c *Catalog) Count() int {
	return len(c.order)
}

// Stats reports per-category totals.
func (c *Catalog) Stats() Stats {
	return Stats{
		Total:     len(c.order),
		Elements:  len(c.byCategory[models.CategoryElement]),
		Actions:   len(c.byCategory[models.CategoryAction]),
		Materials: len(c.byCategory[models.CategoryMaterial]),
	}
}

// ValidateAll is true iff every id resolves. An empty list is valid.
func (c *Catalog) ValidateAll(ids []string) bool {
	for _, id := range ids {
		if _, ok := c.cards[id]; !ok {
			return false
		}
	}
	return true
}

// DrawHand deals size distinct cards. The first three are one element, one action
// and one material; the rest come from the whole catalog without replacement.
func (c *Catalog) DrawHand(size int) ([]models.Card, error) {
	if size < len(models.Categories) {
		return nil, apperr.Validation(fmt.Sprintf("hand size must be at least %d to include all card types", len(models.Categories)))
	}
	if size > len(c.order) {
		return nil, apperr.Validation(fmt.Sprintf("hand size cannot exceed %d (total number of cards)", len(c.order)))
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	hand := make([]models.Card, 0, size)
	chosen := make(map[string]bool, size)
	for _, cat := range models.Categories {
		pool := c.byCategory[cat]
		card := pool[c.rng.Intn(len(pool))]
		hand = append(hand, card)
		chosen[card.ID] = true
	}

	if remaining := size - len(hand); remaining > 0 {
		rest := make([]models.Card, 0, len(c.order)-len(hand))
		for _, card := range c.order {
			if !chosen[card.ID] {
				rest = append(rest, card)
			}
		}
		c.rng.Shuffle(len(rest), func(i, j int) {
			rest[i], rest[j] = rest[j], rest[i]
		})
		hand = append(hand, rest[:remaining]...)
	}
	return hand, nil
}
