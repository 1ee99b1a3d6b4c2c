package model

import (
	"time"

	"github.com/google/uuid"
)

// File is uploaded document. Content is kept in database only when cloud storage is disabled,
// otherwise StorageObjectName point to the object in bucket.
type File struct {
	ID                int        `gorm:"primaryKey" json:"id"`
	OwnerID           *uuid.UUID `gorm:"type:uuid;index" json:"owner_id,omitempty"`
	Name              string     `json:"name"`
	Extension         string     `json:"extension"`
	Size              int64      `json:"size"`
	Content           []byte     `json:"-"`
	StorageObjectName *string    `json:"-"`
	UploadedAt        time.Time  `gorm:"autoCreateTime" json:"uploaded_at"`
}
