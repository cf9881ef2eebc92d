package model

import "time"

// Audit carries who created and last edited a row. UpdatedAt/UpdatedBy stay
// NULL until the first edit.
type Audit struct {
	CreatedAt time.Time  `gorm:"not null" json:"created_at"`
	CreatedBy string     `gorm:"size:64;not null" json:"created_by"`
	UpdatedAt *time.Time `gorm:"autoUpdateTime:false" json:"updated_at"`
	UpdatedBy *string    `gorm:"size:64" json:"updated_by"`
}
