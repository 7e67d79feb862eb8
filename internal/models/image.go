package models

// Image is one stored upload. URL is rendered from PublicID when the row is
// inserted and never recomputed.
type Image struct {
	ID       int64  `json:"-"`
	PublicID string `json:"public_id"`
	URL      string `json:"url"`
}
