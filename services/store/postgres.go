package store

import (
	"context"
	"errors"

	"sjsage522/productscraper/internal/scraper"
	"sjsage522/productscraper/logger"
	scrapererrors "sjsage522/productscraper/pkg/errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const productsTable = "products"

const schema = `CREATE TABLE IF NOT EXISTS products (
	id varchar(36) PRIMARY KEY,
	title text NOT NULL,
	description text NOT NULL,
	image_url text NOT NULL DEFAULT '',
	original_price numeric(10, 2),
	sale_price numeric(10, 2),
	discount integer,
	category text,
	platform varchar(20) NOT NULL,
	product_url text NOT NULL,
	created_at timestamptz NOT NULL DEFAULT now()
)`

var productColumns = []string{
	"id",
	"title",
	"description",
	"image_url",
	"original_price::text",
	"sale_price::text",
	"discount",
	"category",
	"platform",
	"product_url",
	"created_at",
}

// PostgresStore persists products in PostgreSQL
type PostgresStore struct {
	pool *pgxpool.Pool
	sb   sq.StatementBuilderType
}

// NewPostgresStore connects to dsn and verifies the connection
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, scrapererrors.NewStore("failed to parse database url", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, scrapererrors.NewStore("failed to create pool", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, scrapererrors.NewStore("failed to ping database", err)
	}

	return &PostgresStore{
		pool: pool,
		sb:   newStatementBuilder(),
	}, nil
}

func newStatementBuilder() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
}

// EnsureSchema creates the products table when missing
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return scrapererrors.NewStore("failed to create schema", err)
	}
	logger.ForStore().Debug().Msg("Schema ensured")
	return nil
}

// Close releases the connection pool
func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) selectProducts() sq.SelectBuilder {
	return s.sb.Select(productColumns...).From(productsTable)
}

func (s *PostgresStore) List(ctx context.Context) ([]Product, error) {
	query, args, err := s.selectProducts().OrderBy("created_at DESC").ToSql()
	if err != nil {
		return nil, scrapererrors.NewStore("failed to build list query", err)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, scrapererrors.NewStore("failed to list products", err)
	}
	defer rows.Close()

	products := []Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, scrapererrors.NewStore("failed to scan product", err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, scrapererrors.NewStore("failed to list products", err)
	}
	return products, nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*Product, error) {
	query, args, err := s.selectProducts().Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, scrapererrors.NewStore("failed to build get query", err)
	}

	p, err := scanProduct(s.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, scrapererrors.NewStore("failed to get product", err)
	}
	return p, nil
}

func (s *PostgresStore) Create(ctx context.Context, sp scraper.ScrapedProduct) (*Product, error) {
	p := Product{ID: uuid.NewString(), ScrapedProduct: sp}

	query, args, err := s.sb.Insert(productsTable).
		Columns("id", "title", "description", "image_url", "original_price", "sale_price",
			"discount", "category", "platform", "product_url").
		Values(p.ID, sp.Title, sp.Description, sp.ImageURL, nullable(sp.OriginalPrice), nullable(sp.SalePrice),
			nullable(sp.Discount), nullable(sp.Category), string(sp.Platform), sp.ProductURL).
		Suffix("RETURNING created_at").
		ToSql()
	if err != nil {
		return nil, scrapererrors.NewStore("failed to build insert", err)
	}

	if err := s.pool.QueryRow(ctx, query, args...).Scan(&p.CreatedAt); err != nil {
		return nil, scrapererrors.NewStore("failed to insert product", err)
	}
	return &p, nil
}

func (s *PostgresStore) Delete(ctx context.Context, id string) (bool, error) {
	query, args, err := s.sb.Delete(productsTable).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return false, scrapererrors.NewStore("failed to build delete", err)
	}

	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return false, scrapererrors.NewStore("failed to delete product", err)
	}
	return tag.RowsAffected() > 0, nil
}

func scanProduct(row pgx.Row) (*Product, error) {
	var p Product
	var platform string
	err := row.Scan(
		&p.ID,
		&p.Title,
		&p.Description,
		&p.ImageURL,
		&p.OriginalPrice,
		&p.SalePrice,
		&p.Discount,
		&p.Category,
		&platform,
		&p.ProductURL,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Platform = scraper.Platform(platform)
	return &p, nil
}

// nullable turns an absent optional field into SQL NULL. Prices are sent as
// text so numeric columns parse them exactly.
func nullable[T any](v *T) any {
	if v == nil {
		return nil
	}
	return *v
}
