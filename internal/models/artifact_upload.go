package models

import "time"

// ArtifactUpload records one stored problem artifact file.
type ArtifactUpload struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProfileID string    `gorm:"size:64;index" json:"profile_id"`
	FileName  string    `gorm:"size:255;not null" json:"file_name"`
	URL       string    `gorm:"size:512;not null" json:"url"`
	MimeType  string    `gorm:"size:128;not null" json:"mime_type"`
	SizeBytes int64     `gorm:"not null" json:"size_bytes"`
	Checksum  string    `gorm:"size:128;index" json:"checksum"`
	CreatedAt time.Time `json:"created_at"`
}
