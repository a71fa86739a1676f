package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mrops-br/storefront-api/internal/app/dto"
	"github.com/mrops-br/storefront-api/internal/domain"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// CartService exposes the session cart to the HTTP layer. Product existence
// is checked here against the catalog; the cart store itself trusts its caller.
type CartService struct {
	cart           *domain.Cart
	repo           domain.ProductRepository
	tracer         trace.Tracer
	logger         *slog.Logger
	cartOperations metric.Int64Counter
	cartChanges    metric.Int64Counter
	unsubscribe    func()
	registration   metric.Registration
}

// NewCartService creates a cart service over an explicitly owned cart store
func NewCartService(
	cart *domain.Cart,
	repo domain.ProductRepository,
	tracer trace.Tracer,
	meter metric.Meter,
	logger *slog.Logger,
) *CartService {
	cartOperations, _ := meter.Int64Counter(
		"cart.operations",
		metric.WithDescription("Total number of cart operations"),
	)

	cartChanges, _ := meter.Int64Counter(
		"cart.changes.total",
		metric.WithDescription("Total number of cart state changes"),
	)

	s := &CartService{
		cart:           cart,
		repo:           repo,
		tracer:         tracer,
		logger:         logger.With(slog.String("cart_id", cart.ID())),
		cartOperations: cartOperations,
		cartChanges:    cartChanges,
	}

	itemsGauge, _ := meter.Int64ObservableGauge(
		"cart.items",
		metric.WithDescription("Number of distinct products in the cart"),
		metric.WithUnit("{item}"),
	)
	quantityGauge, _ := meter.Int64ObservableGauge(
		"cart.quantity",
		metric.WithDescription("Total units in the cart"),
		metric.WithUnit("{unit}"),
	)
	if itemsGauge != nil && quantityGauge != nil {
		reg, err := meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
			items := cart.Items()
			o.ObserveInt64(itemsGauge, int64(len(items)))
			o.ObserveInt64(quantityGauge, int64(totalQuantity(items)))
			return nil
		}, itemsGauge, quantityGauge)
		if err == nil {
			s.registration = reg
		}
	}

	s.unsubscribe = cart.Subscribe(s.onCartChanged)

	return s
}

// Close detaches the service from the cart store and the meter
func (s *CartService) Close() error {
	s.unsubscribe()
	if s.registration != nil {
		return s.registration.Unregister()
	}
	return nil
}

func (s *CartService) onCartChanged(items []domain.LineItem) {
	s.cartChanges.Add(context.Background(), 1)
	s.logger.Debug("Cart changed",
		slog.Int("count", len(items)),
		slog.Int("quantity", totalQuantity(items)),
	)
}

// AddToCart adds one unit of productID to the cart
func (s *CartService) AddToCart(ctx context.Context, productID int) (*dto.CartResponse, error) {
	ctx, span := s.tracer.Start(ctx, "CartService.AddToCart")
	defer span.End()

	span.SetAttributes(attribute.Int("product.id", productID))

	if productID <= 0 {
		span.RecordError(domain.ErrInvalidProductID)
		span.SetStatus(codes.Error, "Invalid product id")
		s.recordOperation(ctx, "add", domain.ErrInvalidProductID)
		return nil, domain.ErrInvalidProductID
	}

	if _, err := s.repo.FindByID(ctx, productID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Product lookup failed")
		s.logger.WarnContext(ctx, "Cannot add product to cart",
			slog.Int("product_id", productID),
			slog.String("error", err.Error()),
		)
		s.recordOperation(ctx, "add", err)
		return nil, err
	}

	s.cart.AddToCart(productID)

	s.logger.InfoContext(ctx, "Product added to cart",
		slog.Int("product_id", productID),
	)
	s.recordOperation(ctx, "add", nil)

	span.SetStatus(codes.Ok, "Product added to cart")
	return s.buildCart(ctx, s.cart.Items())
}

// GetCart returns the cart contents enriched with catalog data
func (s *CartService) GetCart(ctx context.Context) (*dto.CartResponse, error) {
	ctx, span := s.tracer.Start(ctx, "CartService.GetCart")
	defer span.End()

	cart, err := s.buildCart(ctx, s.cart.Items())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to build cart")
		s.recordOperation(ctx, "read", err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("cart.count", cart.Count))
	s.recordOperation(ctx, "read", nil)

	span.SetStatus(codes.Ok, "Cart retrieved")
	return cart, nil
}

// Count returns the number of distinct products and total units in the cart
func (s *CartService) Count(ctx context.Context) *dto.CartCountResponse {
	_, span := s.tracer.Start(ctx, "CartService.Count")
	defer span.End()

	items := s.cart.Items()
	return &dto.CartCountResponse{
		Count:    len(items),
		Quantity: totalQuantity(items),
	}
}

// RemoveFromCart removes the line item for productID
func (s *CartService) RemoveFromCart(ctx context.Context, productID int) error {
	ctx, span := s.tracer.Start(ctx, "CartService.RemoveFromCart")
	defer span.End()

	span.SetAttributes(attribute.Int("product.id", productID))

	if !s.cart.Remove(productID) {
		span.RecordError(domain.ErrCartItemNotFound)
		span.SetStatus(codes.Error, "Cart item not found")
		s.recordOperation(ctx, "remove", domain.ErrCartItemNotFound)
		return domain.ErrCartItemNotFound
	}

	s.logger.InfoContext(ctx, "Product removed from cart",
		slog.Int("product_id", productID),
	)
	s.recordOperation(ctx, "remove", nil)

	span.SetStatus(codes.Ok, "Product removed from cart")
	return nil
}

// ClearCart empties the cart
func (s *CartService) ClearCart(ctx context.Context) {
	ctx, span := s.tracer.Start(ctx, "CartService.ClearCart")
	defer span.End()

	s.cart.Clear()

	s.logger.InfoContext(ctx, "Cart cleared")
	s.recordOperation(ctx, "clear", nil)
}

func (s *CartService) buildCart(ctx context.Context, items []domain.LineItem) (*dto.CartResponse, error) {
	resp := &dto.CartResponse{
		ID:    s.cart.ID(),
		Items: make([]*dto.CartItemResponse, 0, len(items)),
		Count: len(items),
	}

	subtotal := decimal.Zero
	for _, item := range items {
		line := &dto.CartItemResponse{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		}

		product, err := s.repo.FindByID(ctx, item.ProductID)
		switch {
		case err == nil:
			total := product.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
			line.Slug = product.Slug
			line.Title = product.Title
			line.Price = product.Price.InexactFloat64()
			line.LineTotal = total.InexactFloat64()
			subtotal = subtotal.Add(total)
		case errors.Is(err, domain.ErrProductNotFound):
			s.logger.WarnContext(ctx, "Cart references unknown product",
				slog.Int("product_id", item.ProductID),
			)
		default:
			return nil, err
		}

		resp.Quantity += item.Quantity
		resp.Items = append(resp.Items, line)
	}
	resp.Subtotal = subtotal.InexactFloat64()

	return resp, nil
}

func (s *CartService) recordOperation(ctx context.Context, operation string, err error) {
	s.cartOperations.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("operation", operation),
			attribute.String("result", resultOf(err)),
		),
	)
}

func totalQuantity(items []domain.LineItem) int {
	total := 0
	for _, item := range items {
		total += item.Quantity
	}
	return total
}
