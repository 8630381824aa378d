package inventory

import (
	"context"

	"podsync/internal/logger"
	"podsync/internal/services/printify"
)

// Catalog is the subset of the storefront API the engine depends on.
type Catalog interface {
	GetStoreProducts(ctx context.Context) ([]printify.Product, error)
	GetProviderVariants(ctx context.Context, blueprintID, providerID int) (*printify.ProviderCatalog, error)
	GetBlueprintProviders(ctx context.Context, blueprintID int) ([]printify.CatalogProvider, error)
	UpdateProduct(ctx context.Context, productID string, payload printify.UpdatePayload) error
}

// Alternate is a provider able to take over every variant of a product.
type Alternate struct {
	ProviderID    int
	ProviderTitle string
	Variants      []printify.Variant
}

// FailoverSelector looks for a replacement print provider. It never writes.
type FailoverSelector struct {
	catalog Catalog
	logger  *logger.Logger
}

func NewFailoverSelector(catalog Catalog, logger *logger.Logger) *FailoverSelector {
	return &FailoverSelector{
		catalog: catalog,
		logger:  logger,
	}
}

// FindAlternateProvider walks the blueprint's providers in catalog order,
// skipping the current one, and returns the first whose orderable variants
// match every existing variant. Listed but unavailable variants never match.
// ok is false when there is no such provider, including when the blueprint
// itself cannot be fetched.
func (s *FailoverSelector) FindAlternateProvider(ctx context.Context, product printify.Product, existing []printify.Variant) (Alternate, bool) {
	s.logger.Info("Failover: looking for alternative provider for blueprint %d (product %s)", product.BlueprintID, product.ID)

	providers, err := s.catalog.GetBlueprintProviders(ctx, product.BlueprintID)
	if err != nil {
		s.logger.Warn("Failover: could not fetch providers for blueprint %d: %v", product.BlueprintID, err)
		return Alternate{}, false
	}

	for _, provider := range providers {
		if provider.ID == product.PrintProviderID {
			continue
		}
		if ctx.Err() != nil {
			return Alternate{}, false
		}

		s.logger.Debug("Failover: evaluating provider %s (ID: %d)", provider.Title, provider.ID)

		catalog, err := s.catalog.GetProviderVariants(ctx, product.BlueprintID, provider.ID)
		if err != nil {
			s.logger.Warn("Failover: skipping provider %d, no variant data: %v", provider.ID, err)
			continue
		}

		res := MatchVariants(existing, orderable(catalog.Variants))
		if !res.Matched {
			s.logger.Debug("Failover: skipping provider %d, no match for variant %d options %v", provider.ID, res.Missing.ID, res.Missing.Options)
			continue
		}

		s.logger.Info("Failover: found compatible provider %s (ID: %d) for product %s", provider.Title, provider.ID, product.ID)
		return Alternate{
			ProviderID:    provider.ID,
			ProviderTitle: provider.Title,
			Variants:      res.Variants,
		}, true
	}

	s.logger.Info("Failover: no suitable alternative provider for product %s", product.ID)
	return Alternate{}, false
}

func orderable(variants []printify.CatalogVariant) []printify.CatalogVariant {
	out := make([]printify.CatalogVariant, 0, len(variants))
	for _, v := range variants {
		if v.Available() {
			out = append(out, v)
		}
	}
	return out
}
