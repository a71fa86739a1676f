package memory

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/mrops-br/storefront-api/internal/domain"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

//go:embed data/products.json
var defaultCatalog []byte

type catalogFile struct {
	Products []productRecord `json:"products"`
}

type productRecord struct {
	ID          int             `json:"id"`
	Slug        string          `json:"slug"`
	Title       string          `json:"title"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
	Description string          `json:"description"`
	Featured    bool            `json:"featured"`
}

// Options tunes the in-memory catalog
type Options struct {
	// Latency is an artificial delay applied to slug, featured and search
	// lookups. Zero disables it.
	Latency time.Duration
}

// ProductRepository is a read-only, in-memory implementation of
// domain.ProductRepository backed by a JSON catalog file
type ProductRepository struct {
	mu       sync.RWMutex
	products []*domain.Product
	byID     map[int]*domain.Product
	bySlug   map[string]*domain.Product
	latency  time.Duration
	tracer   trace.Tracer
	logger   *slog.Logger
}

// NewProductRepository creates a repository loaded from the embedded catalog
func NewProductRepository(tracer trace.Tracer, logger *slog.Logger, opts Options) (*ProductRepository, error) {
	return NewProductRepositoryFromJSON(defaultCatalog, tracer, logger, opts)
}

// NewProductRepositoryFromJSON creates a repository from a catalog document of
// the form {"products": [...]}
func NewProductRepositoryFromJSON(data []byte, tracer trace.Tracer, logger *slog.Logger, opts Options) (*ProductRepository, error) {
	var file catalogFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}

	r := &ProductRepository{
		products: make([]*domain.Product, 0, len(file.Products)),
		byID:     make(map[int]*domain.Product, len(file.Products)),
		bySlug:   make(map[string]*domain.Product, len(file.Products)),
		latency:  opts.Latency,
		tracer:   tracer,
		logger:   logger,
	}

	for i, rec := range file.Products {
		product := &domain.Product{
			ID:          rec.ID,
			Slug:        rec.Slug,
			Title:       rec.Title,
			Price:       rec.Price,
			Image:       rec.Image,
			Description: rec.Description,
			Featured:    rec.Featured,
		}
		if err := product.Validate(); err != nil {
			return nil, fmt.Errorf("catalog entry %d: %w", i, err)
		}
		if _, dup := r.byID[product.ID]; dup {
			return nil, fmt.Errorf("catalog entry %d: duplicate product id %d", i, product.ID)
		}
		if _, dup := r.bySlug[product.Slug]; dup {
			return nil, fmt.Errorf("catalog entry %d: duplicate product slug %q", i, product.Slug)
		}

		r.products = append(r.products, product)
		r.byID[product.ID] = product
		r.bySlug[product.Slug] = product
	}

	logger.Info("Catalog loaded",
		slog.Int("count", len(r.products)),
	)

	return r, nil
}

// FindAll retrieves all products in catalog order
func (r *ProductRepository) FindAll(ctx context.Context) ([]*domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.FindAll")
	defer span.End()

	r.mu.RLock()
	defer r.mu.RUnlock()

	products := make([]*domain.Product, len(r.products))
	copy(products, r.products)

	span.SetAttributes(attribute.Int("product.count", len(products)))

	r.logger.DebugContext(ctx, "Products retrieved from repository",
		slog.Int("count", len(products)),
	)

	span.SetStatus(codes.Ok, "Products retrieved successfully")
	return products, nil
}

// FindByID retrieves a product by ID
func (r *ProductRepository) FindByID(ctx context.Context, id int) (*domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.FindByID")
	defer span.End()

	span.SetAttributes(attribute.Int("product.id", id))

	r.mu.RLock()
	defer r.mu.RUnlock()

	product, exists := r.byID[id]
	if !exists {
		span.RecordError(domain.ErrProductNotFound)
		span.SetStatus(codes.Error, "Product not found")
		r.logger.WarnContext(ctx, "Product not found",
			slog.Int("product_id", id),
		)
		return nil, domain.ErrProductNotFound
	}

	span.SetStatus(codes.Ok, "Product found")
	return product, nil
}

// FindBySlug retrieves a product by slug
func (r *ProductRepository) FindBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.FindBySlug")
	defer span.End()

	span.SetAttributes(attribute.String("product.slug", slug))

	if err := r.delay(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Lookup cancelled")
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	product, exists := r.bySlug[slug]
	if !exists {
		span.RecordError(domain.ErrProductNotFound)
		span.SetStatus(codes.Error, "Product not found")
		r.logger.WarnContext(ctx, "Product not found",
			slog.String("product_slug", slug),
		)
		return nil, domain.ErrProductNotFound
	}

	r.logger.DebugContext(ctx, "Product found in repository",
		slog.Int("product_id", product.ID),
		slog.String("product_slug", slug),
	)

	span.SetStatus(codes.Ok, "Product found")
	return product, nil
}

// FindFeatured retrieves products flagged as featured
func (r *ProductRepository) FindFeatured(ctx context.Context) ([]*domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.FindFeatured")
	defer span.End()

	if err := r.delay(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Lookup cancelled")
		return nil, err
	}

	products := r.filter(func(p *domain.Product) bool { return p.Featured })

	span.SetAttributes(attribute.Int("product.count", len(products)))
	span.SetStatus(codes.Ok, "Featured products retrieved")
	return products, nil
}

// Search retrieves products whose title contains query, ignoring case
func (r *ProductRepository) Search(ctx context.Context, query string) ([]*domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.Search")
	defer span.End()

	span.SetAttributes(attribute.String("search.query", query))

	if err := r.delay(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Lookup cancelled")
		return nil, err
	}

	needle := strings.ToLower(query)
	products := r.filter(func(p *domain.Product) bool {
		return strings.Contains(strings.ToLower(p.Title), needle)
	})

	span.SetAttributes(attribute.Int("product.count", len(products)))

	r.logger.DebugContext(ctx, "Products searched in repository",
		slog.String("query", query),
		slog.Int("count", len(products)),
	)

	span.SetStatus(codes.Ok, "Search completed")
	return products, nil
}

func (r *ProductRepository) filter(keep func(*domain.Product) bool) []*domain.Product {
	r.mu.RLock()
	defer r.mu.RUnlock()

	products := make([]*domain.Product, 0)
	for _, p := range r.products {
		if keep(p) {
			products = append(products, p)
		}
	}
	return products
}

func (r *ProductRepository) delay(ctx context.Context) error {
	if r.latency <= 0 {
		return nil
	}

	timer := time.NewTimer(r.latency)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
