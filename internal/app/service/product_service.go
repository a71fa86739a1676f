package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mrops-br/storefront-api/internal/app/dto"
	"github.com/mrops-br/storefront-api/internal/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// ProductService handles catalog use cases
type ProductService struct {
	repo              domain.ProductRepository
	tracer            trace.Tracer
	logger            *slog.Logger
	productOperations metric.Int64Counter
	searchResults     metric.Int64Histogram
}

// NewProductService creates a new product service
func NewProductService(
	repo domain.ProductRepository,
	tracer trace.Tracer,
	meter metric.Meter,
	logger *slog.Logger,
) *ProductService {
	productOperations, _ := meter.Int64Counter(
		"products.operations",
		metric.WithDescription("Total number of product operations"),
	)

	searchResults, _ := meter.Int64Histogram(
		"products.search.results",
		metric.WithDescription("Number of products returned by a search"),
		metric.WithUnit("{product}"),
	)

	return &ProductService{
		repo:              repo,
		tracer:            tracer,
		logger:            logger,
		productOperations: productOperations,
		searchResults:     searchResults,
	}
}

// ListProducts retrieves all products
func (s *ProductService) ListProducts(ctx context.Context) ([]*dto.ProductResponse, error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.ListProducts")
	defer span.End()

	s.logger.InfoContext(ctx, "Listing all products")

	products, err := s.repo.FindAll(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to retrieve products")
		s.logger.Log(ctx, failureLevel(err), "Failed to list products",
			slog.String("error", err.Error()),
		)
		s.recordOperation(ctx, "list", err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("product.count", len(products)))
	s.recordOperation(ctx, "list", nil)

	span.SetStatus(codes.Ok, "Products listed successfully")
	return dto.ToProductResponseList(products), nil
}

// GetProductBySlug retrieves a product by slug
func (s *ProductService) GetProductBySlug(ctx context.Context, slug string) (*dto.ProductResponse, error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.GetProductBySlug")
	defer span.End()

	span.SetAttributes(attribute.String("product.slug", slug))

	s.logger.InfoContext(ctx, "Getting product by slug",
		slog.String("product_slug", slug),
	)

	product, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, domain.ErrProductNotFound) {
			span.SetStatus(codes.Error, "Product not found")
			s.logger.WarnContext(ctx, "Product not found",
				slog.String("product_slug", slug),
			)
		} else {
			span.SetStatus(codes.Error, "Failed to retrieve product")
			s.logger.Log(ctx, failureLevel(err), "Failed to get product",
				slog.String("product_slug", slug),
				slog.String("error", err.Error()),
			)
		}
		s.recordOperation(ctx, "read", err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("product.id", product.ID))
	s.recordOperation(ctx, "read", nil)

	span.SetStatus(codes.Ok, "Product retrieved successfully")
	return dto.ToProductResponse(product), nil
}

// ListFeatured retrieves the featured products
func (s *ProductService) ListFeatured(ctx context.Context) ([]*dto.ProductResponse, error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.ListFeatured")
	defer span.End()

	products, err := s.repo.FindFeatured(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to retrieve featured products")
		s.logger.Log(ctx, failureLevel(err), "Failed to list featured products",
			slog.String("error", err.Error()),
		)
		s.recordOperation(ctx, "featured", err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("product.count", len(products)))
	s.recordOperation(ctx, "featured", nil)

	span.SetStatus(codes.Ok, "Featured products listed successfully")
	return dto.ToProductResponseList(products), nil
}

// SearchProducts retrieves products whose title matches query
func (s *ProductService) SearchProducts(ctx context.Context, query string) ([]*dto.ProductResponse, error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.SearchProducts")
	defer span.End()

	span.SetAttributes(attribute.String("search.query", query))

	s.logger.InfoContext(ctx, "Searching products",
		slog.String("query", query),
	)

	products, err := s.repo.Search(ctx, query)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Search failed")
		s.logger.Log(ctx, failureLevel(err), "Failed to search products",
			slog.String("query", query),
			slog.String("error", err.Error()),
		)
		s.recordOperation(ctx, "search", err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("product.count", len(products)))
	s.searchResults.Record(ctx, int64(len(products)))
	s.recordOperation(ctx, "search", nil)

	span.SetStatus(codes.Ok, "Search completed")
	return dto.ToProductResponseList(products), nil
}

func (s *ProductService) recordOperation(ctx context.Context, operation string, err error) {
	s.productOperations.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("operation", operation),
			attribute.String("result", resultOf(err)),
		),
	)
}

func resultOf(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrProductNotFound), errors.Is(err, domain.ErrCartItemNotFound):
		return "not_found"
	case errors.Is(err, context.Canceled):
		return "cancelled"
	default:
		return "failure"
	}
}

// failureLevel keeps abandoned requests out of error-level logs
func failureLevel(err error) slog.Level {
	if errors.Is(err, context.Canceled) {
		return slog.LevelWarn
	}
	return slog.LevelError
}
