package domain

import "time"

// MaxPhotoURLs is the number of photo_url_N columns on the products table.
const MaxPhotoURLs = 8

type Product struct {
	ID             int64     `db:"id" json:"id"`
	Name           string    `db:"name" json:"name"`
	SKU            string    `db:"sku" json:"sku"`
	Description    string    `db:"description" json:"description"`
	SalePrice      *float64  `db:"sale_price" json:"sale_price"`
	DiscountPrice  *float64  `db:"discount_price" json:"discount_price"`
	PurchasePrice  *float64  `db:"purchase_price" json:"purchase_price"`
	WholesalePrice *float64  `db:"wholesale_price" json:"wholesale_price"`
	Stock          int       `db:"stock" json:"stock"`
	Category       string    `db:"category" json:"category"`
	Brand          string    `db:"brand" json:"brand"`
	Barcode        string    `db:"barcode" json:"barcode"`
	PhotoURL1      *string   `db:"photo_url_1" json:"photo_url_1"`
	PhotoURL2      *string   `db:"photo_url_2" json:"photo_url_2"`
	PhotoURL3      *string   `db:"photo_url_3" json:"photo_url_3"`
	PhotoURL4      *string   `db:"photo_url_4" json:"photo_url_4"`
	PhotoURL5      *string   `db:"photo_url_5" json:"photo_url_5"`
	PhotoURL6      *string   `db:"photo_url_6" json:"photo_url_6"`
	PhotoURL7      *string   `db:"photo_url_7" json:"photo_url_7"`
	PhotoURL8      *string   `db:"photo_url_8" json:"photo_url_8"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// HasDiscount reports whether the discount price should be displayed:
// present, positive and strictly below the sale price.
func (p Product) HasDiscount() bool {
	if p.DiscountPrice == nil || p.SalePrice == nil {
		return false
	}
	return *p.DiscountPrice > 0 && *p.DiscountPrice < *p.SalePrice
}

// DefaultUnitPrice is the price a cart line starts with: the discount
// price when it qualifies, the sale price otherwise.
func (p Product) DefaultUnitPrice() float64 {
	if p.HasDiscount() {
		return *p.DiscountPrice
	}
	if p.SalePrice != nil {
		return *p.SalePrice
	}
	return 0
}

// PhotoURLs returns the non-empty photo URLs in column order.
func (p Product) PhotoURLs() []string {
	var urls []string
	for _, u := range []*string{p.PhotoURL1, p.PhotoURL2, p.PhotoURL3, p.PhotoURL4, p.PhotoURL5, p.PhotoURL6, p.PhotoURL7, p.PhotoURL8} {
		if u != nil && *u != "" {
			urls = append(urls, *u)
		}
	}
	return urls
}

// SetPhotoURLs assigns the ordered list onto photo_url_1..8. Slots past
// the end of the list are cleared; entries past MaxPhotoURLs are dropped.
func (p *Product) SetPhotoURLs(urls []string) {
	slots := []**string{&p.PhotoURL1, &p.PhotoURL2, &p.PhotoURL3, &p.PhotoURL4, &p.PhotoURL5, &p.PhotoURL6, &p.PhotoURL7, &p.PhotoURL8}
	for i, slot := range slots {
		if i < len(urls) && urls[i] != "" {
			u := urls[i]
			*slot = &u
		} else {
			*slot = nil
		}
	}
}
