package types

const (
	EventBrandCreated = "brand.created"
	EventBrandUpdated = "brand.updated"
	EventBrandDeleted = "brand.deleted"
)

// BrandEvent is emitted after a tenant's configuration changed so that downstream caches (CDN,
// other replicas) can drop what they hold for the tenant. Local caches are already invalid when it
// is sent.
type BrandEvent struct {
	Type   string `json:"type"`
	Tenant string `json:"tenant,omitempty"`
}
