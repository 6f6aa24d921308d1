package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Sale status values. A sale is created completed and only ever
// transitions to annulled.
const (
	SaleStatusCompleted = "completed"
	SaleStatusAnnulled  = "annulled"
)

// SaleIDPrefix is the human-readable prefix of sequential sale ids.
const SaleIDPrefix = "AS"

type Sale struct {
	ID              int64        `db:"id" json:"id"`
	SaleID          string       `db:"sale_id" json:"saleId"`
	CustomerName    string       `db:"customer_name" json:"customer_name"`
	CustomerContact string       `db:"customer_contact" json:"customer_contact"`
	CustomerTaxID   string       `db:"customer_tax_id" json:"customer_tax_id"`
	Items           SaleItemList `db:"items" json:"items"`
	Total           float64      `db:"total" json:"total"`
	UserID          *int64       `db:"user_id" json:"user_id,omitempty"`
	UserName        string       `db:"user_name" json:"user_name"`
	Status          string       `db:"status" json:"status"`
	CreatedAt       time.Time    `db:"created_at" json:"created_at"`
}

// SaleItem is one sold line, a snapshot of the product at sale time.
type SaleItem struct {
	ProductID int64   `json:"productId"`
	Name      string  `json:"name"`
	SKU       string  `json:"sku"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"price"`
}

// SaleItemList is stored as JSONB. Historical rows hold either a JSON
// array or a JSON string containing an array, so decoding accepts both.
type SaleItemList []SaleItem

func (l *SaleItemList) UnmarshalJSON(b []byte) error {
	type plain []SaleItem
	var items plain
	if err := json.Unmarshal(b, &items); err == nil {
		*l = SaleItemList(items)
		return nil
	}
	var encoded string
	if err := json.Unmarshal(b, &encoded); err != nil {
		return fmt.Errorf("sale items: %w", err)
	}
	if err := json.Unmarshal([]byte(encoded), &items); err != nil {
		return fmt.Errorf("sale items: %w", err)
	}
	*l = SaleItemList(items)
	return nil
}

func (l *SaleItemList) Scan(src any) error {
	switch v := src.(type) {
	case []byte:
		return l.UnmarshalJSON(v)
	case string:
		return l.UnmarshalJSON([]byte(v))
	case nil:
		*l = nil
		return nil
	default:
		return fmt.Errorf("sale items: cannot scan %T", src)
	}
}

func (l SaleItemList) Value() (driver.Value, error) {
	if l == nil {
		l = SaleItemList{}
	}
	return json.Marshal([]SaleItem(l))
}

// Customer carries the optional customer fields of a sale submission.
type Customer struct {
	Name    string `json:"name"`
	Contact string `json:"contact"`
	TaxID   string `json:"id"`
}

// Operator identifies the authenticated user completing a sale.
type Operator struct {
	ID       int64  `json:"id"`
	FullName string `json:"fullName"`
}

// SaleSubmission is the payload posted to create a sale.
type SaleSubmission struct {
	SaleID   string     `json:"saleId"`
	Customer Customer   `json:"customer"`
	Items    []SaleItem `json:"items"`
	Total    float64    `json:"total"`
	User     Operator   `json:"user"`
}

// NextSaleID derives the next sequential id from the most recent one.
// An empty or non-numeric suffix resets the sequence to AS1.
func NextSaleID(last string) string {
	if last == "" {
		return SaleIDPrefix + "1"
	}
	n, err := strconv.Atoi(strings.TrimPrefix(last, SaleIDPrefix))
	if err != nil {
		return SaleIDPrefix + "1"
	}
	return SaleIDPrefix + strconv.Itoa(n+1)
}
