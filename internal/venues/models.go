package venues

import (
	"time"

	"github.com/google/uuid"
)

type Venue struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name      string    `json:"name" gorm:"not null;size:255"`
	Address   string    `json:"address" gorm:"not null;size:500"`
	City      string    `json:"city" gorm:"not null;size:100;index"`
	Capacity  int       `json:"capacity" gorm:"not null;check:capacity > 0"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Venue) TableName() string {
	return "venues"
}
