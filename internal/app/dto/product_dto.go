package dto

import (
	"github.com/mrops-br/storefront-api/internal/domain"
)

// ProductResponse represents the product response
type ProductResponse struct {
	ID          int     `json:"id"`
	Slug        string  `json:"slug"`
	Title       string  `json:"title"`
	Price       float64 `json:"price"`
	Image       string  `json:"image"`
	Description string  `json:"description"`
	Featured    bool    `json:"featured"`
}

// ToProductResponse converts a domain Product to ProductResponse
func ToProductResponse(p *domain.Product) *ProductResponse {
	return &ProductResponse{
		ID:          p.ID,
		Slug:        p.Slug,
		Title:       p.Title,
		Price:       p.Price.InexactFloat64(),
		Image:       p.Image,
		Description: p.Description,
		Featured:    p.Featured,
	}
}

// ToProductResponseList converts a list of domain Products to ProductResponse list
func ToProductResponseList(products []*domain.Product) []*ProductResponse {
	responses := make([]*ProductResponse, len(products))
	for i, p := range products {
		responses[i] = ToProductResponse(p)
	}
	return responses
}
