package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Category groups tasks by area (work, study, shopping...). Names are not unique.
type Category struct {
	ID        string `gorm:"primaryKey;size:36"`
	OwnerID   string `gorm:"index;size:36"`
	Name      string
	CreatedAt time.Time
}

func (c *Category) BeforeCreate(*gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
