package entity

import "time"

// Tip is a learning-tip content record. The media fields hold URLs, usually
// pointing at files placed by the upload endpoint.
type Tip struct {
	ID            string    `db:"id" json:"id"`
	Title         string    `db:"title" json:"title"`
	Content       string    `db:"content" json:"content,omitempty"`
	Image         string    `db:"image" json:"image,omitempty"`
	VideoURL      string    `db:"video_url" json:"videoUrl,omitempty"`
	PDF           string    `db:"pdf" json:"pdf,omitempty"`
	Audio         string    `db:"audio" json:"audio,omitempty"`
	ReferenceLink string    `db:"reference_link" json:"referenceLink,omitempty"`
	Category      string    `db:"category" json:"category"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time `db:"updated_at" json:"updatedAt"`
}
