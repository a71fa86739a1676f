package dto

// AddToCartRequest represents the request to add one unit of a product
type AddToCartRequest struct {
	ProductID int `json:"productId" validate:"required,min=1"`
}

// CartItemResponse is a line item enriched with catalog data
type CartItemResponse struct {
	ProductID int     `json:"productId"`
	Quantity  int     `json:"quantity"`
	Slug      string  `json:"slug"`
	Title     string  `json:"title"`
	Price     float64 `json:"price"`
	LineTotal float64 `json:"lineTotal"`
}

// CartResponse represents the cart response
type CartResponse struct {
	ID       string              `json:"id"`
	Items    []*CartItemResponse `json:"items"`
	Count    int                 `json:"count"`
	Quantity int                 `json:"quantity"`
	Subtotal float64             `json:"subtotal"`
}

// CartCountResponse backs the cart badge
type CartCountResponse struct {
	Count    int `json:"count"`
	Quantity int `json:"quantity"`
}
