package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func fptr(v float64) *float64 { return &v }

func TestDefaultUnitPrice(t *testing.T) {
	tests := []struct {
		name     string
		sale     *float64
		discount *float64
		want     float64
	}{
		{"discount below sale", fptr(100), fptr(80), 80},
		{"discount above sale", fptr(100), fptr(120), 100},
		{"discount equals sale", fptr(100), fptr(100), 100},
		{"zero discount", fptr(100), fptr(0), 100},
		{"no discount", fptr(100), nil, 100},
		{"no prices", nil, nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Product{SalePrice: tt.sale, DiscountPrice: tt.discount}
			assert.Equal(t, tt.want, p.DefaultUnitPrice())
		})
	}
}

func TestPhotoURLRoundTrip(t *testing.T) {
	var p Product
	p.SetPhotoURLs([]string{"https://a.example/1.jpg", "", "https://a.example/3.jpg"})

	assert.Equal(t, []string{"https://a.example/1.jpg", "https://a.example/3.jpg"}, p.PhotoURLs())
	assert.Nil(t, p.PhotoURL2)
	assert.Nil(t, p.PhotoURL4)

	// Reassigning a shorter list clears the remaining slots.
	p.SetPhotoURLs([]string{"https://a.example/new.jpg"})
	assert.Equal(t, []string{"https://a.example/new.jpg"}, p.PhotoURLs())
	assert.Nil(t, p.PhotoURL3)
}
