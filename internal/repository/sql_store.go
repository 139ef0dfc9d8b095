package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"inventory-api/internal/config"
	"inventory-api/internal/domain"

	"github.com/jmoiron/sqlx"
)

// productRow mirrors the products table. Images are stored as a JSON array
// in a TEXT column so every dialect shares one schema.
type productRow struct {
	ID          int       `db:"id"`
	Title       string    `db:"title"`
	Price       float64   `db:"price"`
	Description string    `db:"description"`
	Category    string    `db:"category"`
	Images      string    `db:"images"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (r productRow) toModel() (domain.Product, error) {
	p := domain.Product{
		ID:          r.ID,
		Title:       r.Title,
		Price:       r.Price,
		Description: r.Description,
		Category:    r.Category,
		Images:      []string{},
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
	}
	if r.Images != "" {
		if err := json.Unmarshal([]byte(r.Images), &p.Images); err != nil {
			return domain.Product{}, fmt.Errorf("product %d has malformed images: %w", r.ID, err)
		}
	}
	return p, nil
}

const (
	selectProductsSQL = `
		SELECT id, title, price, description, category, images, created_at, updated_at
		FROM products
		ORDER BY id`
	insertProductSQL = `
		INSERT INTO products (id, title, price, description, category, images, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	selectKeysSQL = `SELECT api_key, created_at, expires_at FROM api_keys ORDER BY api_key`
	upsertKeySQL  = `
		INSERT INTO api_keys (api_key, created_at, expires_at)
		VALUES (?, ?, ?)
		ON CONFLICT (api_key) DO UPDATE SET created_at = excluded.created_at, expires_at = excluded.expires_at`
	upsertKeyMySQL = `
		INSERT INTO api_keys (api_key, created_at, expires_at)
		VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE created_at = VALUES(created_at), expires_at = VALUES(expires_at)`
	deleteKeySQL = `DELETE FROM api_keys WHERE api_key = ?`
)

type sqlStore struct {
	db     *sqlx.DB
	driver string
}

// NewSQLStore returns a Store backed by a migrated relational database.
// driver is one of the relational config drivers and selects the upsert
// dialect; placeholders are rebound by sqlx.
func NewSQLStore(db *sqlx.DB, driver string) Store {
	return &sqlStore{db: db, driver: driver}
}

func (s *sqlStore) LoadProducts(ctx context.Context) ([]domain.Product, error) {
	var rows []productRow
	err := withTimeout(ctx, defaultTimeout, func(ctx context.Context) error {
		return s.db.SelectContext(ctx, &rows, selectProductsSQL)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}

	products := make([]domain.Product, 0, len(rows))
	for _, row := range rows {
		p, err := row.toModel()
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, nil
}

// SaveProducts replaces the whole table inside one transaction.
func (s *sqlStore) SaveProducts(ctx context.Context, products []domain.Product) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM products`); err != nil {
		return fmt.Errorf("failed to clear products: %w", err)
	}

	stmt, err := tx.PreparexContext(ctx, tx.Rebind(insertProductSQL))
	if err != nil {
		return fmt.Errorf("failed to prepare product insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range products {
		images := p.Images
		if images == nil {
			images = []string{}
		}
		encoded, err := json.Marshal(images)
		if err != nil {
			return fmt.Errorf("failed to encode images for product %d: %w", p.ID, err)
		}
		if _, err := stmt.ExecContext(ctx,
			p.ID,
			p.Title,
			p.Price,
			p.Description,
			p.Category,
			string(encoded),
			p.CreatedAt.UTC(),
			p.UpdatedAt.UTC(),
		); err != nil {
			return fmt.Errorf("failed to insert product %d: %w", p.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit products: %w", err)
	}
	return nil
}

func (s *sqlStore) LoadKeys(ctx context.Context) ([]domain.APIKey, error) {
	var keys []domain.APIKey
	err := withTimeout(ctx, defaultTimeout, func(ctx context.Context) error {
		return s.db.SelectContext(ctx, &keys, selectKeysSQL)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load api keys: %w", err)
	}
	for i := range keys {
		keys[i].CreatedAt = keys[i].CreatedAt.UTC()
		keys[i].ExpiresAt = keys[i].ExpiresAt.UTC()
	}
	if keys == nil {
		keys = []domain.APIKey{}
	}
	return keys, nil
}

func (s *sqlStore) SaveKey(ctx context.Context, key domain.APIKey) error {
	query := upsertKeySQL
	if s.driver == config.DriverMySQL {
		query = upsertKeyMySQL
	}
	err := withTimeout(ctx, defaultTimeout, func(ctx context.Context) error {
		_, err := s.db.ExecContext(ctx, s.db.Rebind(query), key.Key, key.CreatedAt.UTC(), key.ExpiresAt.UTC())
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to save api key: %w", err)
	}
	return nil
}

func (s *sqlStore) DeleteKey(ctx context.Context, key string) error {
	err := withTimeout(ctx, defaultTimeout, func(ctx context.Context) error {
		_, err := s.db.ExecContext(ctx, s.db.Rebind(deleteKeySQL), key)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to delete api key: %w", err)
	}
	return nil
}

func (s *sqlStore) Ping(ctx context.Context) error {
	return withTimeout(ctx, time.Second, func(ctx context.Context) error {
		return s.db.PingContext(ctx)
	})
}

func (s *sqlStore) Close() error {
	return s.db.Close()
}
