// Package models contains data structures for the application's domain models.
package models

import "time"

// User represents a registered account. The first account created is promoted
// to admin and is the only principal allowed to author posts.
type User struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Email        string     `gorm:"size:250;uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"size:250;not null" json:"-"`
	Name         string     `gorm:"size:250;not null" json:"name"`
	IsAdmin      bool       `gorm:"not null;default:false" json:"is_admin"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	Posts        []BlogPost `gorm:"foreignKey:AuthorID" json:"posts,omitempty"`
	Comments     []Comment  `gorm:"foreignKey:AuthorID" json:"comments,omitempty"`
}

// TableName specifies the table name for GORM.
func (User) TableName() string {
	return "users"
}
