package domain

import (
	"time"

	"github.com/google/uuid"
)

type Favorite struct {
	ID        int64     `db:"id" json:"id"`
	AccountID uuid.UUID `db:"account_id" json:"account_id"`
	ProfileID uuid.UUID `db:"profile_id" json:"profile_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type FavoriteListItem struct {
	ID              int64     `db:"id" json:"id"`
	ProfileID       uuid.UUID `db:"profile_id" json:"profile_id"`
	SavedAt         time.Time `db:"created_at" json:"saved_at"`
	Gender          string    `db:"gender" json:"gender"`
	City            *string   `db:"city" json:"city,omitempty"`
	Country         *string   `db:"country" json:"country,omitempty"`
	Religion        *string   `db:"religion" json:"religion,omitempty"`
	PrimaryPhotoURL *string   `db:"primary_photo_url" json:"primary_photo_url,omitempty"`
}
