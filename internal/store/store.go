// Package store is the PostgreSQL persistence layer: product CRUD, the
// sale registry, and the transactional stock accounting behind sale
// creation and annulment.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/arelyshop/tiendatemp/domain"
)

var (
	// ErrNotFound is returned when a product, sale or user does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInsufficientStock is returned when a sale would drive a
	// product's stock below zero.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrSaleAnnulled is returned when annulling an already annulled sale.
	ErrSaleAnnulled = errors.New("sale already annulled")
)

const productColumns = `id, name, sku, description, sale_price, discount_price, purchase_price,
	wholesale_price, stock, category, brand, barcode,
	photo_url_1, photo_url_2, photo_url_3, photo_url_4,
	photo_url_5, photo_url_6, photo_url_7, photo_url_8, created_at`

const saleColumns = `id, sale_id, customer_name, customer_contact, customer_tax_id,
	items, total, user_id, user_name, status, created_at`

// Store wraps the database handle with typed queries.
type Store struct {
	db *sqlx.DB
}

// New constructs a Store.
func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Products

// ListProducts returns products newest first. A non-empty search term
// filters by case-insensitive substring over name, SKU and barcode.
func (s *Store) ListProducts(ctx context.Context, search string) ([]domain.Product, error) {
	products := []domain.Product{}
	query := `SELECT ` + productColumns + ` FROM products`
	args := []any{}
	if search != "" {
		query += ` WHERE name ILIKE $1 OR sku ILIKE $1 OR barcode ILIKE $1`
		args = append(args, "%"+search+"%")
	}
	query += ` ORDER BY created_at DESC`
	if err := s.db.SelectContext(ctx, &products, query, args...); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

func (s *Store) GetProduct(ctx context.Context, id int64) (domain.Product, error) {
	var p domain.Product
	err := s.db.GetContext(ctx, &p, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, fmt.Errorf("product %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return domain.Product{}, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// GetProductByBarcode is the scanner lookup: exact barcode match.
func (s *Store) GetProductByBarcode(ctx context.Context, barcode string) (domain.Product, error) {
	var p domain.Product
	err := s.db.GetContext(ctx, &p, `SELECT `+productColumns+` FROM products WHERE barcode = $1 LIMIT 1`, barcode)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, fmt.Errorf("barcode %q: %w", barcode, ErrNotFound)
	}
	if err != nil {
		return domain.Product{}, fmt.Errorf("get product by barcode: %w", err)
	}
	return p, nil
}

func (s *Store) CreateProduct(ctx context.Context, p domain.Product) (domain.Product, error) {
	var created domain.Product
	err := s.db.GetContext(ctx, &created, `
		INSERT INTO products (
			name, sku, description, sale_price, discount_price, purchase_price,
			wholesale_price, stock, category, brand, barcode,
			photo_url_1, photo_url_2, photo_url_3, photo_url_4,
			photo_url_5, photo_url_6, photo_url_7, photo_url_8
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		RETURNING `+productColumns,
		p.Name, p.SKU, p.Description, p.SalePrice, p.DiscountPrice, p.PurchasePrice,
		p.WholesalePrice, p.Stock, p.Category, p.Brand, p.Barcode,
		p.PhotoURL1, p.PhotoURL2, p.PhotoURL3, p.PhotoURL4,
		p.PhotoURL5, p.PhotoURL6, p.PhotoURL7, p.PhotoURL8)
	if err != nil {
		return domain.Product{}, fmt.Errorf("create product: %w", err)
	}
	return created, nil
}

func (s *Store) UpdateProduct(ctx context.Context, p domain.Product) (domain.Product, error) {
	var updated domain.Product
	err := s.db.GetContext(ctx, &updated, `
		UPDATE products SET
			name = $1, sku = $2, description = $3, sale_price = $4, discount_price = $5,
			purchase_price = $6, wholesale_price = $7, stock = $8, category = $9,
			brand = $10, barcode = $11, photo_url_1 = $12, photo_url_2 = $13,
			photo_url_3 = $14, photo_url_4 = $15, photo_url_5 = $16, photo_url_6 = $17,
			photo_url_7 = $18, photo_url_8 = $19
		WHERE id = $20
		RETURNING `+productColumns,
		p.Name, p.SKU, p.Description, p.SalePrice, p.DiscountPrice,
		p.PurchasePrice, p.WholesalePrice, p.Stock, p.Category,
		p.Brand, p.Barcode, p.PhotoURL1, p.PhotoURL2,
		p.PhotoURL3, p.PhotoURL4, p.PhotoURL5, p.PhotoURL6,
		p.PhotoURL7, p.PhotoURL8, p.ID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, fmt.Errorf("product %d: %w", p.ID, ErrNotFound)
	}
	if err != nil {
		return domain.Product{}, fmt.Errorf("update product: %w", err)
	}
	return updated, nil
}

// DeleteProduct removes a product and returns the deleted record.
func (s *Store) DeleteProduct(ctx context.Context, id int64) (domain.Product, error) {
	var deleted domain.Product
	err := s.db.GetContext(ctx, &deleted, `DELETE FROM products WHERE id = $1 RETURNING `+productColumns, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, fmt.Errorf("product %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return domain.Product{}, fmt.Errorf("delete product: %w", err)
	}
	return deleted, nil
}

// Sales

// ListSales returns sales newest first. A non-empty search term filters
// by case-insensitive substring over sale id, customer name, contact and
// operator name.
func (s *Store) ListSales(ctx context.Context, search string) ([]domain.Sale, error) {
	sales := []domain.Sale{}
	query := `SELECT ` + saleColumns + ` FROM sales`
	args := []any{}
	if search != "" {
		query += ` WHERE sale_id ILIKE $1 OR customer_name ILIKE $1 OR customer_contact ILIKE $1 OR user_name ILIKE $1`
		args = append(args, "%"+search+"%")
	}
	query += ` ORDER BY id DESC`
	if err := s.db.SelectContext(ctx, &sales, query, args...); err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	return sales, nil
}

func (s *Store) GetSale(ctx context.Context, saleID string) (domain.Sale, error) {
	var sale domain.Sale
	err := s.db.GetContext(ctx, &sale, `SELECT `+saleColumns+` FROM sales WHERE sale_id = $1`, saleID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Sale{}, fmt.Errorf("sale %s: %w", saleID, ErrNotFound)
	}
	if err != nil {
		return domain.Sale{}, fmt.Errorf("get sale: %w", err)
	}
	return sale, nil
}

// LatestSaleID returns the most recent human-readable sale id, or the
// empty string when no sales exist.
func (s *Store) LatestSaleID(ctx context.Context) (string, error) {
	var last string
	err := s.db.GetContext(ctx, &last, `SELECT sale_id FROM sales ORDER BY id DESC LIMIT 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("latest sale id: %w", err)
	}
	return last, nil
}

// CreateSale persists a sale atomically: every product row is locked,
// stock is checked and decremented, and the sale record is inserted. The
// sale id is assigned inside the transaction; a submitted id is kept only
// if it is still free, so concurrent submissions cannot collide.
func (s *Store) CreateSale(ctx context.Context, sub domain.SaleSubmission) (domain.Sale, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return domain.Sale{}, fmt.Errorf("create sale: %w", err)
	}
	defer tx.Rollback()

	items := make([]domain.SaleItem, 0, len(sub.Items))
	var total float64
	for _, item := range sub.Items {
		if item.ProductID == 0 || item.Quantity <= 0 {
			continue
		}
		var (
			name  string
			stock int
		)
		err := tx.QueryRowxContext(ctx,
			`SELECT name, stock FROM products WHERE id = $1 FOR UPDATE`, item.ProductID).
			Scan(&name, &stock)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Sale{}, fmt.Errorf("product %d: %w", item.ProductID, ErrNotFound)
		}
		if err != nil {
			return domain.Sale{}, fmt.Errorf("create sale: %w", err)
		}
		if stock < item.Quantity {
			return domain.Sale{}, fmt.Errorf("%w for %s", ErrInsufficientStock, name)
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE products SET stock = stock - $1 WHERE id = $2`, item.Quantity, item.ProductID); err != nil {
			return domain.Sale{}, fmt.Errorf("create sale: %w", err)
		}
		items = append(items, item)
		total += float64(item.Quantity) * item.UnitPrice
	}
	if len(items) == 0 {
		return domain.Sale{}, errors.New("sale has no valid items")
	}

	saleID, err := s.assignSaleID(ctx, tx, sub.SaleID)
	if err != nil {
		return domain.Sale{}, err
	}

	var sale domain.Sale
	err = tx.QueryRowxContext(ctx, `
		INSERT INTO sales (sale_id, customer_name, customer_contact, customer_tax_id,
			items, total, user_id, user_name, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+saleColumns,
		saleID, sub.Customer.Name, sub.Customer.Contact, sub.Customer.TaxID,
		domain.SaleItemList(items), total, nullableID(sub.User.ID), sub.User.FullName,
		domain.SaleStatusCompleted).
		StructScan(&sale)
	if err != nil {
		return domain.Sale{}, fmt.Errorf("create sale: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return domain.Sale{}, fmt.Errorf("create sale: %w", err)
	}
	return sale, nil
}

// assignSaleID keeps the submitted id when it is unused, otherwise
// derives the next sequential id from the latest persisted sale.
func (s *Store) assignSaleID(ctx context.Context, tx *sqlx.Tx, submitted string) (string, error) {
	if submitted != "" {
		var taken bool
		if err := tx.GetContext(ctx, &taken,
			`SELECT EXISTS(SELECT 1 FROM sales WHERE sale_id = $1)`, submitted); err != nil {
			return "", fmt.Errorf("assign sale id: %w", err)
		}
		if !taken {
			return submitted, nil
		}
	}
	var last string
	err := tx.GetContext(ctx, &last, `SELECT sale_id FROM sales ORDER BY id DESC LIMIT 1`)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("assign sale id: %w", err)
	}
	return domain.NextSaleID(last), nil
}

// AnnulSale flips a completed sale to annulled and restores the stock it
// consumed. Products deleted since the sale are skipped. The transition
// is one-way: an annulled sale cannot be annulled again.
func (s *Store) AnnulSale(ctx context.Context, saleID string) (domain.Sale, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return domain.Sale{}, fmt.Errorf("annul sale: %w", err)
	}
	defer tx.Rollback()

	var sale domain.Sale
	err = tx.QueryRowxContext(ctx,
		`SELECT `+saleColumns+` FROM sales WHERE sale_id = $1 FOR UPDATE`, saleID).
		StructScan(&sale)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Sale{}, fmt.Errorf("sale %s: %w", saleID, ErrNotFound)
	}
	if err != nil {
		return domain.Sale{}, fmt.Errorf("annul sale: %w", err)
	}
	if sale.Status == domain.SaleStatusAnnulled {
		return domain.Sale{}, fmt.Errorf("sale %s: %w", saleID, ErrSaleAnnulled)
	}

	for _, item := range sale.Items {
		if item.ProductID == 0 || item.Quantity <= 0 {
			continue
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE products SET stock = stock + $1 WHERE id = $2`, item.Quantity, item.ProductID); err != nil {
			return domain.Sale{}, fmt.Errorf("annul sale: %w", err)
		}
	}

	err = tx.QueryRowxContext(ctx,
		`UPDATE sales SET status = $1 WHERE sale_id = $2 RETURNING `+saleColumns,
		domain.SaleStatusAnnulled, saleID).
		StructScan(&sale)
	if err != nil {
		return domain.Sale{}, fmt.Errorf("annul sale: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return domain.Sale{}, fmt.Errorf("annul sale: %w", err)
	}
	return sale, nil
}

// Users

func (s *Store) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	var u domain.User
	err := s.db.GetContext(ctx, &u,
		`SELECT id, username, password, full_name, role, created_at FROM users WHERE username = $1`, username)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, fmt.Errorf("user %s: %w", username, ErrNotFound)
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *Store) CreateUser(ctx context.Context, u domain.User) (domain.User, error) {
	err := s.db.QueryRowxContext(ctx, `
		INSERT INTO users (username, password, full_name, role)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		u.Username, u.Password, u.FullName, u.Role).
		Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

func nullableID(id int64) *int64 {
	if id == 0 {
		return nil
	}
	return &id
}
