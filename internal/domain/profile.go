package domain

import (
	"time"

	"github.com/google/uuid"
)

type Profile struct {
	ID              uuid.UUID `db:"id" json:"id"`
	AccountID       uuid.UUID `db:"account_id" json:"account_id"`
	Gender          string    `db:"gender" json:"gender"`
	DateOfBirth     time.Time `db:"date_of_birth" json:"date_of_birth"`
	MaritalStatus   *string   `db:"marital_status" json:"marital_status,omitempty"`
	Religion        *string   `db:"religion" json:"religion,omitempty"`
	Caste           *string   `db:"caste" json:"caste,omitempty"`
	MotherTongue    *string   `db:"mother_tongue" json:"mother_tongue,omitempty"`
	City            *string   `db:"city" json:"city,omitempty"`
	Country         *string   `db:"country" json:"country,omitempty"`
	Education       *string   `db:"education" json:"education,omitempty"`
	Occupation      *string   `db:"occupation" json:"occupation,omitempty"`
	AnnualIncome    *int64    `db:"annual_income" json:"annual_income,omitempty"`
	Diet            *string   `db:"diet" json:"diet,omitempty"`
	AboutMe         *string   `db:"about_me" json:"about_me,omitempty"`
	PrimaryPhotoURL *string   `db:"primary_photo_url" json:"primary_photo_url,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

type ProfilePhoto struct {
	ID        uuid.UUID `db:"id" json:"id"`
	ProfileID uuid.UUID `db:"profile_id" json:"profile_id"`
	URL       string    `db:"url" json:"url"`
	Caption   *string   `db:"caption" json:"caption,omitempty"`
	IsPrimary bool      `db:"is_primary" json:"is_primary"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// ProfileSearchFilter narrows a partner search. Slice filters match any of
// the listed values; nil slices mean no restriction.
type ProfileSearchFilter struct {
	Gender    string
	MinAge    int
	MaxAge    int
	Religions []string
	Castes    []string
	Countries []string
}

type ProfileListItem struct {
	ID              uuid.UUID `db:"id" json:"id"`
	Gender          string    `db:"gender" json:"gender"`
	DateOfBirth     time.Time `db:"date_of_birth" json:"date_of_birth"`
	Religion        *string   `db:"religion" json:"religion,omitempty"`
	Caste           *string   `db:"caste" json:"caste,omitempty"`
	City            *string   `db:"city" json:"city,omitempty"`
	Country         *string   `db:"country" json:"country,omitempty"`
	Occupation      *string   `db:"occupation" json:"occupation,omitempty"`
	PrimaryPhotoURL *string   `db:"primary_photo_url" json:"primary_photo_url,omitempty"`
}
