package domain

import (
	"context"
	"errors"
)

var (
	ErrProductNotFound = errors.New("product not found")
)

// ProductRepository defines the contract for catalog lookups
type ProductRepository interface {
	FindAll(ctx context.Context) ([]*Product, error)
	FindByID(ctx context.Context, id int) (*Product, error)
	FindBySlug(ctx context.Context, slug string) (*Product, error)
	FindFeatured(ctx context.Context) ([]*Product, error)
	// Search returns products whose title contains query, ignoring case.
	Search(ctx context.Context, query string) ([]*Product, error)
}
