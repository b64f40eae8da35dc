package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"shopadmin/internal/models"
)

// MemoryCatalog is an in-memory catalog store holding categories and products.
// It implements Transactor by snapshotting both maps and restoring them on failure.
type MemoryCatalog struct {
	mu         sync.RWMutex
	txMu       sync.Mutex
	categories map[string]models.Category
	products   map[string]models.Product
}

// NewMemoryCatalog creates a new, empty MemoryCatalog.
func NewMemoryCatalog() *MemoryCatalog {
	return &MemoryCatalog{
		categories: make(map[string]models.Category),
		products:   make(map[string]models.Product),
	}
}

// Categories returns a CategoryRepository view of the catalog.
func (m *MemoryCatalog) Categories() CategoryRepository {
	return &memoryCategoryRepository{m: m}
}

// Products returns a ProductRepository view of the catalog.
func (m *MemoryCatalog) Products() ProductRepository {
	return &memoryProductRepository{m: m}
}

// WithinTransaction serializes transactions and rolls back every write fn made if it fails.
func (m *MemoryCatalog) WithinTransaction(ctx context.Context, fn func(tx CatalogTx) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	m.mu.RLock()
	categories := make(map[string]models.Category, len(m.categories))
	for k, v := range m.categories {
		categories[k] = v
	}
	products := make(map[string]models.Product, len(m.products))
	for k, v := range m.products {
		products[k] = v
	}
	m.mu.RUnlock()

	if err := fn(CatalogTx{Categories: m.Categories(), Products: m.Products()}); err != nil {
		m.mu.Lock()
		m.categories = categories
		m.products = products
		m.mu.Unlock()
		return err
	}
	return nil
}

type memoryCategoryRepository struct {
	m *MemoryCatalog
}

func (r *memoryCategoryRepository) List(ctx context.Context) ([]models.Category, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	list := make([]models.Category, 0, len(r.m.categories))
	for _, c := range r.m.categories {
		if !c.IsDeleted {
			list = append(list, c)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CategoryName < list[j].CategoryName })
	return list, nil
}

func (r *memoryCategoryRepository) GetByID(ctx context.Context, id string) (*models.Category, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	c, ok := r.m.categories[id]
	if !ok || c.IsDeleted {
		return nil, fmt.Errorf("category with ID %s: %w", id, ErrNotFound)
	}
	return &c, nil
}

func (r *memoryCategoryRepository) GetByName(ctx context.Context, name string) (*models.Category, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	for _, c := range r.m.categories {
		if !c.IsDeleted && c.CategoryName == name {
			return &c, nil
		}
	}
	return nil, fmt.Errorf("category named %q: %w", name, ErrNotFound)
}

func (r *memoryCategoryRepository) Create(ctx context.Context, category *models.Category) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	for _, c := range r.m.categories {
		if !c.IsDeleted && c.CategoryName == category.CategoryName {
			return fmt.Errorf("failed to create category: duplicate name %q", category.CategoryName)
		}
	}
	if category.ID == "" {
		category.ID = uuid.New().String()
	}
	now := time.Now()
	category.CreatedAt = now
	category.UpdatedAt = now
	r.m.categories[category.ID] = *category
	return nil
}

func (r *memoryCategoryRepository) Update(ctx context.Context, category *models.Category) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	existing, ok := r.m.categories[category.ID]
	if !ok || existing.IsDeleted {
		return fmt.Errorf("category with ID %s: %w", category.ID, ErrNotFound)
	}
	existing.CategoryName = category.CategoryName
	existing.Description = category.Description
	existing.UpdatedAt = time.Now()
	r.m.categories[category.ID] = existing
	return nil
}

func (r *memoryCategoryRepository) SoftDelete(ctx context.Context, id string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	existing, ok := r.m.categories[id]
	if !ok || existing.IsDeleted {
		return fmt.Errorf("category with ID %s: %w", id, ErrNotFound)
	}
	existing.IsDeleted = true
	r.m.categories[id] = existing
	return nil
}

type memoryProductRepository struct {
	m *MemoryCatalog
}

// withCategory attaches the referenced category the way the GORM preload does. Callers hold the read lock.
func (r *memoryProductRepository) withCategory(p models.Product) models.Product {
	if c, ok := r.m.categories[p.CategoryID]; ok {
		p.Category = &c
	}
	return p
}

func (r *memoryProductRepository) List(ctx context.Context) ([]models.Product, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	list := make([]models.Product, 0, len(r.m.products))
	for _, p := range r.m.products {
		if !p.IsDeleted {
			list = append(list, r.withCategory(p))
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.Before(list[j].CreatedAt) })
	return list, nil
}

func (r *memoryProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	p, ok := r.m.products[id]
	if !ok || p.IsDeleted {
		return nil, fmt.Errorf("product with ID %s: %w", id, ErrNotFound)
	}
	p = r.withCategory(p)
	return &p, nil
}

func (r *memoryProductRepository) GetByNameInCategory(ctx context.Context, name, categoryID string) (*models.Product, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	for _, p := range r.m.products {
		if !p.IsDeleted && p.ProductName == name && p.CategoryID == categoryID {
			p = r.withCategory(p)
			return &p, nil
		}
	}
	return nil, fmt.Errorf("product %q in category %s: %w", name, categoryID, ErrNotFound)
}

func (r *memoryProductRepository) Create(ctx context.Context, product *models.Product) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	now := time.Now()
	product.CreatedAt = now
	product.UpdatedAt = now
	stored := *product
	stored.Category = nil
	r.m.products[product.ID] = stored
	return nil
}

func (r *memoryProductRepository) Update(ctx context.Context, product *models.Product) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	existing, ok := r.m.products[product.ID]
	if !ok || existing.IsDeleted {
		return fmt.Errorf("product with ID %s: %w", product.ID, ErrNotFound)
	}
	stored := *product
	stored.Category = nil
	stored.IsDeleted = false
	stored.CreatedAt = existing.CreatedAt
	stored.UpdatedAt = time.Now()
	r.m.products[product.ID] = stored
	return nil
}

func (r *memoryProductRepository) SoftDelete(ctx context.Context, id string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	existing, ok := r.m.products[id]
	if !ok || existing.IsDeleted {
		return fmt.Errorf("product with ID %s: %w", id, ErrNotFound)
	}
	existing.IsDeleted = true
	r.m.products[id] = existing
	return nil
}
