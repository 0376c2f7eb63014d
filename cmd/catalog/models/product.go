package models

// Product is the sole persisted catalog entity.
// The whole catalog is serialized as one ordered JSON array of these.
type Product struct {
	// Opaque unique identifier, assigned at creation, immutable afterwards
	ID string `json:"id"`

	// Required display name
	Name string `json:"name"`

	// Optional short label
	Tag string `json:"tag"`

	// Optional short and long-form texts
	Description       string `json:"description"`
	DetailDescription string `json:"detailDescription"`

	// Image reference: a path under the asset store's public namespace,
	// an externally supplied URL, or empty for no image
	Image string `json:"image"`

	// Ordered structured spec entries, opaque to the catalog core
	Specs []any `json:"specs"`
}
