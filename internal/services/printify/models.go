package printify

// Product is a store product as returned by the shop products listing.
type Product struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	BlueprintID     int       `json:"blueprint_id"`
	PrintProviderID int       `json:"print_provider_id"`
	Variants        []Variant `json:"variants"`
}

// Variant is a sellable configuration of a store product. ID is local to
// the product's current print provider.
type Variant struct {
	ID        int               `json:"id"`
	Title     string            `json:"title"`
	Price     int               `json:"price"`
	IsEnabled bool              `json:"is_enabled"`
	Options   map[string]string `json:"options"`
}

// CatalogVariant is a variant a provider offers for a blueprint.
type CatalogVariant struct {
	ID          int               `json:"id"`
	Title       string            `json:"title"`
	Options     map[string]string `json:"options"`
	IsAvailable *bool             `json:"is_available,omitempty"`
}

// Available reports whether the provider currently accepts orders for the
// variant. A listed variant without an explicit flag counts as available.
func (v CatalogVariant) Available() bool {
	return v.IsAvailable == nil || *v.IsAvailable
}

// CatalogProvider is a print provider offering a blueprint.
type CatalogProvider struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
}

// ProviderCatalog is the variant catalog of one provider for one blueprint.
type ProviderCatalog struct {
	Variants []CatalogVariant `json:"variants"`
}

// AvailableIDs returns the set of variant ids currently orderable.
func (c *ProviderCatalog) AvailableIDs() map[int]struct{} {
	ids := make(map[int]struct{}, len(c.Variants))
	for _, v := range c.Variants {
		if v.Available() {
			ids[v.ID] = struct{}{}
		}
	}
	return ids
}

// VariantUpdate is one entry of an update payload.
type VariantUpdate struct {
	ID        int  `json:"id"`
	Price     int  `json:"price"`
	IsEnabled bool `json:"is_enabled"`
}

// UpdatePayload is the body of a product update. PrintProviderID is set only
// for a provider switch.
type UpdatePayload struct {
	PrintProviderID *int            `json:"print_provider_id,omitempty"`
	Variants        []VariantUpdate `json:"variants"`
}

// IsProviderSwitch reports whether the payload re-homes the product.
func (p *UpdatePayload) IsProviderSwitch() bool {
	return p.PrintProviderID != nil
}

// ProductsResponse represents one page of the shop products listing.
type ProductsResponse struct {
	CurrentPage int       `json:"current_page"`
	LastPage    int       `json:"last_page"`
	Data        []Product `json:"data"`
}

type blueprintResponse struct {
	ID             int               `json:"id"`
	Title          string            `json:"title"`
	PrintProviders []CatalogProvider `json:"print_providers"`
}
