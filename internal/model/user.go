package model

import "time"

// User is a console operator that signs in with a password.
type User struct {
	ID           string    `gorm:"primaryKey;size:26" json:"id"`
	Email        string    `gorm:"size:256;not null;uniqueIndex:idx_users_email" json:"email"`
	PasswordHash string    `gorm:"size:128;not null" json:"-"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
}

// All lists every migrated model.
func All() []any {
	return []any{
		&User{},
		&Company{},
		&Country{},
		&City{},
		&District{},
		&LineType{},
		&Line{},
		&Machine{},
		&KPI{},
	}
}
