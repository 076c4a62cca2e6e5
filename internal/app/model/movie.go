package model

import (
	"time"

	"gorm.io/gorm"
)

// Score bounds for a ranked movie
const (
	MinScore = 0
	MaxScore = 100
)

// Movie is a ranked entry on a user's personal list. The owner is an explicit
// foreign-key value; the owning User is resolved through the user repository
// when needed, never preloaded here.
type Movie struct {
	ID          uint           `gorm:"primarykey" json:"id"`
	MovieName   string         `gorm:"type:text;not null" json:"movieName"`
	Genre       string         `gorm:"type:text;not null" json:"genre"`
	ReleaseDate Date           `gorm:"type:date" json:"releaseDate"`
	Studio      string         `gorm:"type:text" json:"studio"`
	Score       int            `gorm:"not null" json:"score"`
	PosterURL   string         `json:"posterUrl,omitempty"`
	UserID      uint           `gorm:"not null;index" json:"ownerId"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Movie) TableName() string {
	return "movies"
}
