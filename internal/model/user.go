package model

import "time"

// Language is the user's preferred IVR language.
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageKannada Language = "kn"
)

// Valid reports whether the language is one of the supported values.
func (l Language) Valid() bool {
	return l == LanguageEnglish || l == LanguageKannada
}

// User is a registered callee. Users are immutable after registration
// and are never deleted.
type User struct {
	ID           string    `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"not null" json:"name"`
	Phone        string    `gorm:"uniqueIndex;not null" json:"phone"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Language     Language  `gorm:"type:varchar(8);not null" json:"language"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}
