package model

import (
	"time"
)

// BaseModel handles the numeric ID and the standard audit timestamps
type BaseModel struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
