package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/toolworks/catalog/cmd/catalog/models"
	"github.com/toolworks/catalog/common/logger"
)

// ErrNotFound is returned when an operation references an unknown product id
var ErrNotFound = errors.New("product not found")

// ProductRepository owns the authoritative product list, persisted as a
// single JSON document. Every mutation runs load -> edit -> save as one
// locked unit, so two concurrent writers can never lose each other's update.
type ProductRepository struct {
	path string
	mu   sync.RWMutex
	log  *logger.Logger
}

// NewProductRepository creates a repository backed by the given document path
func NewProductRepository(path string, log *logger.Logger) *ProductRepository {
	return &ProductRepository{
		path: path,
		log:  log,
	}
}

// LoadAll returns the full ordered product list.
// An unreadable or malformed document is an error, never an empty list.
func (r *ProductRepository) LoadAll(ctx context.Context) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.loadLocked()
}

// SaveAll replaces the entire persisted document with the given records
func (r *ProductRepository) SaveAll(ctx context.Context, records []models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.saveLocked(records)
}

// Append adds a new record to the end of the list and persists
func (r *ProductRepository) Append(ctx context.Context, product models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	products, err := r.loadLocked()
	if err != nil {
		return err
	}

	for _, p := range products {
		if p.ID == product.ID {
			return fmt.Errorf("duplicate product id: %s", product.ID)
		}
	}

	return r.saveLocked(append(products, product))
}

// UpdateByID applies fn to the record with the given id and persists.
// The whole read-modify-write cycle holds the write lock.
func (r *ProductRepository) UpdateByID(ctx context.Context, id string, fn func(*models.Product) error) (models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	products, err := r.loadLocked()
	if err != nil {
		return models.Product{}, err
	}

	idx := indexOf(products, id)
	if idx < 0 {
		return models.Product{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	if err := fn(&products[idx]); err != nil {
		return models.Product{}, err
	}

	if err := r.saveLocked(products); err != nil {
		return models.Product{}, err
	}

	return products[idx], nil
}

// RemoveByID removes the record with the given id, persists, and returns
// the removed record. An unknown id leaves the document untouched.
func (r *ProductRepository) RemoveByID(ctx context.Context, id string) (models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	products, err := r.loadLocked()
	if err != nil {
		return models.Product{}, err
	}

	idx := indexOf(products, id)
	if idx < 0 {
		return models.Product{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	removed := products[idx]
	products = append(products[:idx], products[idx+1:]...)

	if err := r.saveLocked(products); err != nil {
		return models.Product{}, err
	}

	return removed, nil
}

// loadLocked reads and parses the document. Callers hold at least the read lock.
func (r *ProductRepository) loadLocked() ([]models.Product, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("read product document: %w", err)
	}

	var products []models.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("parse product document: %w", err)
	}

	if products == nil {
		products = []models.Product{}
	}

	return products, nil
}

// saveLocked writes the document atomically: temp file in the same
// directory, fsync, then rename over the old document. A crash mid-save
// leaves the previous document intact. Callers hold the write lock.
func (r *ProductRepository) saveLocked(products []models.Product) error {
	data, err := json.MarshalIndent(products, "", "  ")
	if err != nil {
		return fmt.Errorf("encode product document: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(r.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(r.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp document: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write product document: %w", err)
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("sync product document: %w", err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp document: %w", err)
	}

	if err := os.Rename(tmp.Name(), r.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace product document: %w", err)
	}

	return nil
}

func indexOf(products []models.Product, id string) int {
	for i := range products {
		if products[i].ID == id {
			return i
		}
	}
	return -1
}
