package service

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"inventory-api/internal/domain"
)

// Categories is the fixed set mock products are drawn from.
var Categories = []string{
	"electronics",
	"clothing",
	"books",
	"home",
	"sports",
	"toys",
	"beauty",
	"automotive",
}

var (
	adjectives = []string{
		"Ergonomic", "Rustic", "Sleek", "Handcrafted", "Refined", "Practical",
		"Intelligent", "Gorgeous", "Incredible", "Fantastic", "Licensed", "Modern",
		"Small", "Tasty", "Unbranded", "Awesome", "Generic", "Luxurious",
	}
	materials = []string{
		"Steel", "Wooden", "Concrete", "Plastic", "Cotton", "Granite", "Rubber",
		"Metal", "Soft", "Fresh", "Frozen", "Bamboo", "Leather", "Silk",
	}
	nouns = map[string][]string{
		"electronics": {"Headphones", "Keyboard", "Monitor", "Speaker", "Charger", "Camera", "Tablet"},
		"clothing":    {"Shirt", "Jacket", "Sweater", "Hat", "Gloves", "Scarf", "Trousers"},
		"books":       {"Novel", "Cookbook", "Atlas", "Journal", "Anthology", "Guide", "Almanac"},
		"home":        {"Chair", "Table", "Lamp", "Pillow", "Towels", "Vase", "Shelf"},
		"sports":      {"Ball", "Racket", "Bike", "Helmet", "Mat", "Dumbbell", "Skates"},
		"toys":        {"Puzzle", "Robot", "Kite", "Blocks", "Doll", "Train", "Yo-yo"},
		"beauty":      {"Soap", "Lotion", "Brush", "Perfume", "Serum", "Mirror", "Comb"},
		"automotive":  {"Car Cover", "Wiper", "Floor Mat", "Tire Gauge", "Jump Starter", "Seat Cushion", "Wax"},
	}
	phrases = []string{
		"built to last through everyday use",
		"designed with comfort and style in mind",
		"a customer favourite for years",
		"made from responsibly sourced materials",
		"backed by a two year warranty",
		"perfect as a gift",
		"engineered for performance",
		"easy to clean and maintain",
	}
)

const (
	minPrice     = 1.0
	maxPrice     = 1000.0
	maxImages    = 4
	maxCreateAge = 365 * 24 * time.Hour
)

// Generator produces mock products. It is safe for concurrent use.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewGenerator returns a generator seeded with seed. Equal seeds and equal
// reference times produce equal catalogs.
func NewGenerator(seed uint64) *Generator {
	return &Generator{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// NewRandomGenerator returns a generator with a random seed.
func NewRandomGenerator() *Generator {
	return NewGenerator(rand.Uint64())
}

// Generate returns count products with ids 1..count. Timestamps fall within
// the year before now and updatedAt never precedes createdAt.
func (g *Generator) Generate(count int, now time.Time) []domain.Product {
	g.mu.Lock()
	defer g.mu.Unlock()

	now = now.UTC().Truncate(time.Millisecond)
	products := make([]domain.Product, count)
	for i := range products {
		products[i] = g.product(i+1, now)
	}
	return products
}

func (g *Generator) product(id int, now time.Time) domain.Product {
	category := Categories[g.rng.IntN(len(Categories))]
	noun := pick(g.rng, nouns[category])

	title := fmt.Sprintf("%s %s %s", pick(g.rng, adjectives), pick(g.rng, materials), noun)

	createdAt := now.Add(-time.Duration(g.rng.Int64N(int64(maxCreateAge)))).Truncate(time.Millisecond)
	updatedAt := createdAt
	if span := now.Sub(createdAt); span > 0 {
		updatedAt = createdAt.Add(time.Duration(g.rng.Int64N(int64(span)))).Truncate(time.Millisecond)
	}

	images := make([]string, 1+g.rng.IntN(maxImages))
	for i := range images {
		images[i] = fmt.Sprintf("https://picsum.photos/seed/%s-%d-%d/640/480", category, id, i+1)
	}

	return domain.Product{
		ID:          id,
		Title:       title,
		Price:       math.Round((minPrice+g.rng.Float64()*(maxPrice-minPrice))*100) / 100,
		Description: g.description(strings.ToLower(noun)),
		Category:    category,
		Images:      images,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}
}

func (g *Generator) description(noun string) string {
	first := pick(g.rng, phrases)
	second := pick(g.rng, phrases)
	for second == first {
		second = pick(g.rng, phrases)
	}
	return fmt.Sprintf("This %s is %s, and %s.", noun, first, second)
}

func pick(rng *rand.Rand, from []string) string {
	return from[rng.IntN(len(from))]
}
