package model

import "github.com/lib/pq"

// Webhook is an outbound notification target.
type Webhook struct {
	BaseModel
	URL        string         `gorm:"type:text;not null" json:"url"`
	EventTypes pq.StringArray `gorm:"type:text[];not null" json:"event_types"`
	Active     bool           `gorm:"not null" json:"active"`
}
