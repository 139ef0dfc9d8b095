package service

import (
	"cmp"
	"math"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"inventory-api/internal/domain"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

const (
	DefaultLimit  = 10
	DefaultOffset = 0

	SortByID    = "id"
	SortByPrice = "price"
	SortByTitle = "title"

	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// Query is a parsed product listing request. Nil filters are not applied.
type Query struct {
	Limit      int
	Offset     int
	Sort       string
	Order      string
	Categories map[string]struct{}
	MinPrice   *float64
	MaxPrice   *float64
	Search     *string
}

type Pagination struct {
	Total      int `json:"total"`
	Limit      int `json:"limit"`
	Offset     int `json:"offset"`
	TotalPages int `json:"totalPages"`
}

type Page struct {
	Products   []domain.Product `json:"products"`
	Pagination Pagination       `json:"pagination"`
}

// ParseQuery reads limit, offset, sort, order, category, minPrice, maxPrice
// and search from values. Malformed numbers fall back to the default or to
// no filter; nothing here is an error.
func ParseQuery(values url.Values) Query {
	q := Query{
		Limit:  DefaultLimit,
		Offset: DefaultOffset,
		Sort:   SortByID,
		Order:  OrderAsc,
	}

	if n, ok := parseInt(values.Get("limit")); ok {
		q.Limit = n
	}
	if n, ok := parseInt(values.Get("offset")); ok {
		q.Offset = max(n, 0)
	}
	if s := values.Get("sort"); s != "" {
		q.Sort = s
	}
	if values.Get("order") == OrderDesc {
		q.Order = OrderDesc
	}

	if raw := values.Get("category"); raw != "" {
		q.Categories = make(map[string]struct{})
		for _, c := range strings.Split(raw, ",") {
			q.Categories[c] = struct{}{}
		}
	}
	q.MinPrice = parsePrice(values.Get("minPrice"))
	q.MaxPrice = parsePrice(values.Get("maxPrice"))

	if values.Has("search") {
		s := values.Get("search")
		q.Search = &s
	}
	return q
}

func parseInt(raw string) (int, bool) {
	if raw == "" {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	return n, err == nil
}

func parsePrice(raw string) *float64 {
	if raw == "" {
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) {
		return nil
	}
	return &f
}

// Apply filters, sorts and paginates products, in that order. products is
// not modified.
func (q Query) Apply(products []domain.Product) Page {
	filtered := q.filter(products)
	q.sort(filtered)

	page := Page{
		Products: paginate(filtered, q.Offset, q.Limit),
		Pagination: Pagination{
			Total:      len(filtered),
			Limit:      q.Limit,
			Offset:     q.Offset,
			TotalPages: totalPages(len(filtered), q.Limit),
		},
	}
	return page
}

// Match reports whether p passes every filter in q.
func (q Query) Match(p domain.Product) bool {
	if q.Categories != nil {
		if _, ok := q.Categories[p.Category]; !ok {
			return false
		}
	}
	if q.MinPrice != nil && p.Price < *q.MinPrice {
		return false
	}
	if q.MaxPrice != nil && p.Price > *q.MaxPrice {
		return false
	}
	if q.Search != nil {
		needle := strings.ToLower(*q.Search)
		if !strings.Contains(strings.ToLower(p.Title), needle) &&
			!strings.Contains(strings.ToLower(p.Description), needle) {
			return false
		}
	}
	return true
}

func (q Query) filter(products []domain.Product) []domain.Product {
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if q.Match(p) {
			out = append(out, p)
		}
	}
	return out
}

func (q Query) sort(products []domain.Product) {
	var compare func(a, b domain.Product) int
	switch q.Sort {
	case SortByPrice:
		compare = func(a, b domain.Product) int { return cmp.Compare(a.Price, b.Price) }
	case SortByTitle:
		// Collators keep internal buffers, so each sort gets its own.
		col := collate.New(language.English)
		compare = func(a, b domain.Product) int { return col.CompareString(a.Title, b.Title) }
	default:
		compare = func(a, b domain.Product) int { return cmp.Compare(a.ID, b.ID) }
	}

	if q.Order == OrderDesc {
		asc := compare
		compare = func(a, b domain.Product) int { return asc(b, a) }
	}
	slices.SortStableFunc(products, compare)
}

// paginate returns products[offset:offset+limit] clamped to the slice
// bounds. A negative limit yields an empty page.
func paginate(products []domain.Product, offset, limit int) []domain.Product {
	if limit <= 0 || offset >= len(products) {
		return []domain.Product{}
	}
	offset = max(offset, 0)
	end := len(products)
	if limit < end-offset {
		end = offset + limit
	}
	return products[offset:end]
}

// totalPages is ceil(total/limit), and 0 when limit is not positive.
func totalPages(total, limit int) int {
	if limit <= 0 {
		return 0
	}
	pages := total / limit
	if total%limit != 0 {
		pages++
	}
	return pages
}
