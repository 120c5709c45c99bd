package models

import (
	"path/filepath"
	"strings"
	"time"

	"gorm.io/gorm"
)

// AssetDocument is a binary attachment stored in-row. FileData never leaves
// the server except through the download endpoint.
type AssetDocument struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UploadedAt time.Time `gorm:"autoCreateTime" json:"uploaded_at"`
	AssetID    uint      `gorm:"index;not null" json:"asset_id"`
	FileData   []byte    `json:"-"`
	FileName   string    `gorm:"size:255;not null" json:"file_name"`
	FileType   string    `gorm:"size:100" json:"file_type"`
	FileSize   int64     `gorm:"not null" json:"file_size"`
	Name       string    `gorm:"size:255" json:"name"`
}

// Extension returns the lowercased filename extension including the dot.
func (d *AssetDocument) Extension() string {
	return strings.ToLower(filepath.Ext(d.FileName))
}

// BeforeSave defaults the display name from the filename stem.
func (d *AssetDocument) BeforeSave(tx *gorm.DB) error {
	if d.Name == "" && d.FileName != "" {
		d.Name = strings.TrimSuffix(d.FileName, filepath.Ext(d.FileName))
	}
	return nil
}
