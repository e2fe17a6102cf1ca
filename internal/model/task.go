package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Task represents a single item in the planner.
type Task struct {
	ID           string `gorm:"primaryKey;size:36"`
	OwnerID      string `gorm:"index;size:36"`
	CategoryID   string `gorm:"index;size:36"`
	CategoryName string
	Title        string
	DueDate      *time.Time `gorm:"index"`
	Status       Status     `gorm:"type:varchar(32)"`
	CreatedAt    time.Time
}

// BeforeCreate assigns the document id.
func (t *Task) BeforeCreate(*gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}
