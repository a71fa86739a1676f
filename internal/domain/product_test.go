package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestProduct_Validate(t *testing.T) {
	valid := func() Product {
		return Product{
			ID:    1,
			Slug:  "moletom-never-stop-learning",
			Title: "Moletom Never Stop Learning",
			Price: decimal.NewFromInt(129),
		}
	}

	tests := []struct {
		name   string
		mutate func(p *Product)
		want   error
	}{
		{name: "valid", mutate: func(p *Product) {}, want: nil},
		{name: "zero id", mutate: func(p *Product) { p.ID = 0 }, want: ErrInvalidProductID},
		{name: "missing slug", mutate: func(p *Product) { p.Slug = "" }, want: ErrInvalidProductSlug},
		{name: "missing title", mutate: func(p *Product) { p.Title = "" }, want: ErrInvalidProductTitle},
		{name: "zero price", mutate: func(p *Product) { p.Price = decimal.Zero }, want: ErrInvalidProductPrice},
		{name: "negative price", mutate: func(p *Product) { p.Price = decimal.NewFromInt(-1) }, want: ErrInvalidProductPrice},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid()
			tt.mutate(&p)
			assert.ErrorIs(t, p.Validate(), tt.want)
		})
	}
}
