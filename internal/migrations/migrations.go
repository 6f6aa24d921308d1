package migrations

import (
	"log"

	"github.com/jmoiron/sqlx"
)

// Run creates the database schema required for the storefront backend.
func Run(db *sqlx.DB) {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id SERIAL PRIMARY KEY,
			username TEXT NOT NULL UNIQUE,
			password TEXT NOT NULL,
			full_name TEXT NOT NULL DEFAULT '',
			role TEXT NOT NULL DEFAULT 'seller',
			created_at TIMESTAMPTZ DEFAULT NOW()
		);`,
		`CREATE TABLE IF NOT EXISTS products (
			id SERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			sku TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			sale_price DOUBLE PRECISION,
			discount_price DOUBLE PRECISION,
			purchase_price DOUBLE PRECISION,
			wholesale_price DOUBLE PRECISION,
			stock INTEGER NOT NULL DEFAULT 0,
			category TEXT NOT NULL DEFAULT '',
			brand TEXT NOT NULL DEFAULT '',
			barcode TEXT NOT NULL DEFAULT '',
			photo_url_1 TEXT,
			photo_url_2 TEXT,
			photo_url_3 TEXT,
			photo_url_4 TEXT,
			photo_url_5 TEXT,
			photo_url_6 TEXT,
			photo_url_7 TEXT,
			photo_url_8 TEXT,
			created_at TIMESTAMPTZ DEFAULT NOW()
		);`,
		`CREATE TABLE IF NOT EXISTS sales (
			id SERIAL PRIMARY KEY,
			sale_id TEXT NOT NULL UNIQUE,
			customer_name TEXT NOT NULL DEFAULT '',
			customer_contact TEXT NOT NULL DEFAULT '',
			customer_tax_id TEXT NOT NULL DEFAULT '',
			items JSONB NOT NULL DEFAULT '[]',
			total DOUBLE PRECISION NOT NULL,
			user_id INTEGER REFERENCES users(id),
			user_name TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'completed',
			created_at TIMESTAMPTZ DEFAULT NOW()
		);`,
		`CREATE INDEX IF NOT EXISTS idx_products_barcode ON products (barcode);`,
		`CREATE INDEX IF NOT EXISTS idx_sales_created_at ON sales (created_at DESC);`,
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			log.Fatalf("migration failed: %v", err)
		}
	}
}
