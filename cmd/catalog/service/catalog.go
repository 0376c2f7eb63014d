package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"time"

	jsonpatch "github.com/evanphx/json-patch/v5"
	"github.com/google/uuid"
	"github.com/toolworks/catalog/cmd/catalog/assets"
	"github.com/toolworks/catalog/cmd/catalog/models"
	"github.com/toolworks/catalog/cmd/catalog/repository"
	"github.com/toolworks/catalog/common/cache"
	"github.com/toolworks/catalog/common/logger"
)

// ErrValidation marks bad or missing input fields
var ErrValidation = errors.New("invalid product input")

const listCacheKey = "products:list"

// ProductInput carries the fields of a create/update request. A nil
// pointer means the field was not supplied, which on update leaves the
// stored value unchanged (explicit merge, not replace).
type ProductInput struct {
	Name              *string
	Tag               *string
	Description       *string
	DetailDescription *string

	// ExistingImage is an externally supplied image reference; an explicit
	// empty string means "no image"
	ExistingImage *string

	// Specs travels as a JSON-encoded array inside the form; it is decoded
	// here so the repository only ever sees the structured value
	Specs *string
}

// CatalogService implements the product lifecycle, keeping the product
// list and the asset store mutually consistent across mutations.
type CatalogService struct {
	repo     *repository.ProductRepository
	store    *assets.Store
	cache    cache.Cache // optional listing read cache
	cacheTTL time.Duration
	log      *logger.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(repo *repository.ProductRepository, store *assets.Store, c cache.Cache, cacheTTL time.Duration, log *logger.Logger) *CatalogService {
	return &CatalogService{
		repo:     repo,
		store:    store,
		cache:    c,
		cacheTTL: cacheTTL,
		log:      log,
	}
}

// List returns the full ordered product list
func (s *CatalogService) List(ctx context.Context) ([]models.Product, error) {
	if s.cache != nil {
		if data, ok, err := s.cache.Get(ctx, listCacheKey); err == nil && ok {
			var products []models.Product
			if json.Unmarshal(data, &products) == nil {
				return products, nil
			}
		}
	}

	products, err := s.repo.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	if s.cache != nil {
		if data, err := json.Marshal(products); err == nil {
			s.cache.Set(ctx, listCacheKey, data, s.cacheTTL)
		}
	}

	return products, nil
}

// Create stores a new product. An accompanying upload becomes the image
// reference; otherwise an explicitly supplied external reference is used
// verbatim.
func (s *CatalogService) Create(ctx context.Context, input ProductInput, upload *multipart.FileHeader) (*models.Product, error) {
	if input.Name == nil || *input.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}

	specs, err := decodeSpecs(input.Specs)
	if err != nil {
		return nil, err
	}

	image := deref(input.ExistingImage)
	if upload != nil {
		ref, err := s.store.SaveUpload(upload)
		if err != nil {
			return nil, err
		}
		image = ref
	}

	product := models.Product{
		ID:                uuid.NewString(),
		Name:              *input.Name,
		Tag:               deref(input.Tag),
		Description:       deref(input.Description),
		DetailDescription: deref(input.DetailDescription),
		Image:             image,
		Specs:             specs,
	}

	if err := s.repo.Append(ctx, product); err != nil {
		// Record never committed; drop the just-stored asset so it cannot leak
		if upload != nil {
			s.removeAsset(product.Image)
		}
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.invalidate(ctx)
	s.log.Info("created product", "id", product.ID, "name", product.Name)

	return &product, nil
}

// Update applies the supplied fields to an existing product. When a new
// image is uploaded the old store-owned asset is deleted, but only after
// both the new asset and the record mutation are durable.
func (s *CatalogService) Update(ctx context.Context, id string, input ProductInput, upload *multipart.FileHeader) (*models.Product, error) {
	var specs []any
	if specsSupplied(input) {
		decoded, err := decodeSpecs(input.Specs)
		if err != nil {
			return nil, err
		}
		specs = decoded
	}

	var newRef string
	if upload != nil {
		ref, err := s.store.SaveUpload(upload)
		if err != nil {
			return nil, err
		}
		newRef = ref
	}

	var oldRef string
	updated, err := s.repo.UpdateByID(ctx, id, func(p *models.Product) error {
		if err := mergeFields(p, input); err != nil {
			return err
		}
		if specsSupplied(input) {
			p.Specs = specs
		}

		switch {
		case upload != nil:
			if s.store.Owns(p.Image) {
				oldRef = p.Image
			}
			p.Image = newRef
		case input.ExistingImage != nil:
			// Caller asserts no store cleanup is owed (external URL or
			// aliased asset), so the prior reference is left alone
			p.Image = *input.ExistingImage
		}

		return nil
	})
	if err != nil {
		// Mutation never committed; reclaim the new asset
		if newRef != "" {
			s.removeAsset(newRef)
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update product %s: %w", id, err)
	}

	if oldRef != "" {
		s.removeAsset(oldRef)
	}

	s.invalidate(ctx)
	s.log.Info("updated product", "id", updated.ID)

	return &updated, nil
}

// Delete removes a product and its store-owned asset, if any
func (s *CatalogService) Delete(ctx context.Context, id string) error {
	removed, err := s.repo.RemoveByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete product %s: %w", id, err)
	}

	if s.store.Owns(removed.Image) {
		s.removeAsset(removed.Image)
	}

	s.invalidate(ctx)
	s.log.Info("deleted product", "id", id)

	return nil
}

// Upload stores a standalone image and returns its public URL, for an
// editing UI to obtain a reference ahead of a create/update call
func (s *CatalogService) Upload(upload *multipart.FileHeader) (string, error) {
	ref, err := s.store.SaveUpload(upload)
	if err != nil {
		return "", err
	}

	s.log.Info("stored standalone upload", "ref", ref)
	return s.store.PublicURL(ref), nil
}

// removeAsset is best-effort: the record state is authoritative and a
// stray leftover file is recoverable, so deletion failure never aborts
// the mutation that triggered it
func (s *CatalogService) removeAsset(ref string) {
	if err := s.store.Delete(ref); err != nil {
		s.log.Warn("failed to delete asset", "ref", ref, "error", err)
	}
}

func (s *CatalogService) invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.Delete(ctx, listCacheKey)
	}
}

// mergeFields applies the supplied scalar fields as an RFC 7386 merge
// patch over the stored record, leaving everything else untouched
func mergeFields(p *models.Product, input ProductInput) error {
	patch := map[string]any{}
	if input.Name != nil {
		patch["name"] = *input.Name
	}
	if input.Tag != nil {
		patch["tag"] = *input.Tag
	}
	if input.Description != nil {
		patch["description"] = *input.Description
	}
	if input.DetailDescription != nil {
		patch["detailDescription"] = *input.DetailDescription
	}
	if len(patch) == 0 {
		return nil
	}

	current, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode product: %w", err)
	}

	patchDoc, err := json.Marshal(patch)
	if err != nil {
		return fmt.Errorf("encode field patch: %w", err)
	}

	merged, err := jsonpatch.MergePatch(current, patchDoc)
	if err != nil {
		return fmt.Errorf("merge fields: %w", err)
	}

	return json.Unmarshal(merged, p)
}

// specsSupplied mirrors the original contract: an empty specs field is
// treated as absent, not as "clear the list"
func specsSupplied(input ProductInput) bool {
	return input.Specs != nil && *input.Specs != ""
}

func decodeSpecs(raw *string) ([]any, error) {
	if raw == nil || *raw == "" {
		return []any{}, nil
	}

	var specs []any
	if err := json.Unmarshal([]byte(*raw), &specs); err != nil {
		return nil, fmt.Errorf("%w: specs must be a JSON array: %v", ErrValidation, err)
	}

	return specs, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
