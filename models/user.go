package models

import (
	"time"
)

// User is an asset owner. Deleting a user cascades to their assets and
// sessions; activity logs keep a nullable reference so history survives.
type User struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"-"`
	DeletedAt      *time.Time `gorm:"index" json:"-"`
	Username       string     `gorm:"size:255;not null;unique" json:"username"`
	Email          string     `gorm:"size:255" json:"email"`
	HashedPassword []byte     `gorm:"not null" json:"-"`
	Assets         []Asset    `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Sessions       []Session  `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}
