package inventory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"podsync/internal/services/printify"
)

type catalogKey struct {
	blueprint, provider int
}

type updateCall struct {
	ProductID string
	Payload   printify.UpdatePayload
}

// fakeCatalog is an in-memory storefront. Successful updates are applied to
// the stored products so consecutive passes observe them.
type fakeCatalog struct {
	mu sync.Mutex

	products  []printify.Product
	catalogs  map[catalogKey][]printify.CatalogVariant
	providers map[int][]printify.CatalogProvider

	listErr      error
	variantErrs  map[catalogKey]error
	blueprintErr map[int]error
	updateErrs   map[string]error

	updates []updateCall
	calls   []string
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		catalogs:     map[catalogKey][]printify.CatalogVariant{},
		providers:    map[int][]printify.CatalogProvider{},
		variantErrs:  map[catalogKey]error{},
		blueprintErr: map[int]error{},
		updateErrs:   map[string]error{},
	}
}

var errUpstream = fmt.Errorf("fake: %w", printify.ErrUpstreamUnavailable)

func (f *fakeCatalog) GetStoreProducts(ctx context.Context) ([]printify.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "list")
	if f.listErr != nil {
		return nil, f.listErr
	}

	out := make([]printify.Product, len(f.products))
	for i, p := range f.products {
		p.Variants = append([]printify.Variant(nil), p.Variants...)
		out[i] = p
	}
	return out, nil
}

func (f *fakeCatalog) GetProviderVariants(ctx context.Context, blueprintID, providerID int) (*printify.ProviderCatalog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := catalogKey{blueprintID, providerID}
	f.calls = append(f.calls, fmt.Sprintf("variants %d/%d", blueprintID, providerID))
	if err := f.variantErrs[key]; err != nil {
		return nil, err
	}
	variants, ok := f.catalogs[key]
	if !ok {
		return nil, errUpstream
	}
	return &printify.ProviderCatalog{Variants: variants}, nil
}

func (f *fakeCatalog) GetBlueprintProviders(ctx context.Context, blueprintID int) ([]printify.CatalogProvider, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fmt.Sprintf("blueprint %d", blueprintID))
	if err := f.blueprintErr[blueprintID]; err != nil {
		return nil, err
	}
	return f.providers[blueprintID], nil
}

func (f *fakeCatalog) UpdateProduct(ctx context.Context, productID string, payload printify.UpdatePayload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "update "+productID)
	f.updates = append(f.updates, updateCall{ProductID: productID, Payload: payload})
	if err := f.updateErrs[productID]; err != nil {
		return err
	}

	for i := range f.products {
		if f.products[i].ID == productID {
			f.apply(&f.products[i], payload)
			return nil
		}
	}
	return errors.New("fake: unknown product")
}

func (f *fakeCatalog) apply(p *printify.Product, payload printify.UpdatePayload) {
	if payload.PrintProviderID != nil {
		p.PrintProviderID = *payload.PrintProviderID
		byID := map[int]printify.CatalogVariant{}
		for _, cv := range f.catalogs[catalogKey{p.BlueprintID, p.PrintProviderID}] {
			byID[cv.ID] = cv
		}
		variants := make([]printify.Variant, 0, len(payload.Variants))
		for _, u := range payload.Variants {
			cv := byID[u.ID]
			variants = append(variants, printify.Variant{
				ID: u.ID, Title: cv.Title, Price: u.Price, IsEnabled: u.IsEnabled, Options: cv.Options,
			})
		}
		p.Variants = variants
		return
	}

	for _, u := range payload.Variants {
		for i := range p.Variants {
			if p.Variants[i].ID == u.ID {
				p.Variants[i].Price = u.Price
				p.Variants[i].IsEnabled = u.IsEnabled
			}
		}
	}
}

func (f *fakeCatalog) resetCalls() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = nil
	f.calls = nil
}

type countingPacer struct {
	n   int
	err error
}

func (p *countingPacer) Wait(ctx context.Context) error {
	p.n++
	return p.err
}

func available(b bool) *bool { return &b }
