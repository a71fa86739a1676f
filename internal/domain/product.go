package domain

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidProductID    = errors.New("product id must be positive")
	ErrInvalidProductSlug  = errors.New("product slug is required")
	ErrInvalidProductTitle = errors.New("product title is required")
	ErrInvalidProductPrice = errors.New("product price must be positive")
)

// Product represents a catalog entry
type Product struct {
	ID          int
	Slug        string
	Title       string
	Price       decimal.Decimal
	Image       string
	Description string
	Featured    bool
}

// Validate performs business validation on the product
func (p *Product) Validate() error {
	if p.ID <= 0 {
		return ErrInvalidProductID
	}
	if p.Slug == "" {
		return ErrInvalidProductSlug
	}
	if p.Title == "" {
		return ErrInvalidProductTitle
	}
	if !p.Price.IsPositive() {
		return ErrInvalidProductPrice
	}
	return nil
}
