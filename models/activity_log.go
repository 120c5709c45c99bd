package models

import "time"

// Audit action kinds.
const (
	ActionCreate   = "create"
	ActionUpdate   = "update"
	ActionDelete   = "delete"
	ActionView     = "view"
	ActionUpload   = "upload"
	ActionDownload = "download"
)

// ActivityLog is an append-only audit record. Asset name and category are
// snapshotted so history survives asset mutation and deletion; the user
// reference is nullable so it survives user removal too.
type ActivityLog struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Timestamp     time.Time `gorm:"autoCreateTime;index" json:"timestamp"`
	UserID        *uint     `gorm:"index" json:"user_id"`
	User          *User     `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"-"`
	Action        string    `gorm:"size:20;not null" json:"action"`
	AssetName     string    `gorm:"size:255;not null" json:"asset_name"`
	AssetCategory string    `gorm:"size:50" json:"asset_category"`
	Details       string    `gorm:"type:text" json:"details"`
	IPAddress     string    `gorm:"size:64" json:"ip_address"`
}
