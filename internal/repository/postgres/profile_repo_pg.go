package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/surithanda/matrimonyservicesapi-sub000/internal/domain"
	"github.com/surithanda/matrimonyservicesapi-sub000/internal/repository/ports"
)

type ProfileRepository struct {
	db *sqlx.DB
}

func NewProfileRepo(db *sqlx.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

const profileColumns = `id, account_id, gender, date_of_birth, marital_status, religion, caste, mother_tongue, city, country, education, occupation, annual_income, diet, about_me, primary_photo_url, created_at, updated_at`

func (r *ProfileRepository) Create(ctx context.Context, profile *domain.Profile) (*domain.Profile, error) {
	const query = `
        INSERT INTO profile (account_id, gender, date_of_birth, marital_status, religion, caste, mother_tongue, city, country, education, occupation, annual_income, diet, about_me)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
        RETURNING ` + profileColumns

	row := r.db.QueryRowxContext(ctx, query,
		profile.AccountID, profile.Gender, profile.DateOfBirth, profile.MaritalStatus,
		profile.Religion, profile.Caste, profile.MotherTongue, profile.City, profile.Country,
		profile.Education, profile.Occupation, profile.AnnualIncome, profile.Diet, profile.AboutMe)
	var stored domain.Profile
	if err := row.StructScan(&stored); err != nil {
		return nil, err
	}
	return &stored, nil
}

func (r *ProfileRepository) Update(ctx context.Context, profile *domain.Profile) (*domain.Profile, error) {
	const query = `
        UPDATE profile
        SET marital_status = COALESCE($2, marital_status),
            religion = COALESCE($3, religion),
            caste = COALESCE($4, caste),
            mother_tongue = COALESCE($5, mother_tongue),
            city = COALESCE($6, city),
            country = COALESCE($7, country),
            education = COALESCE($8, education),
            occupation = COALESCE($9, occupation),
            annual_income = COALESCE($10, annual_income),
            diet = COALESCE($11, diet),
            about_me = COALESCE($12, about_me),
            updated_at = NOW()
        WHERE id = $1
        RETURNING ` + profileColumns

	row := r.db.QueryRowxContext(ctx, query,
		profile.ID, profile.MaritalStatus, profile.Religion, profile.Caste, profile.MotherTongue,
		profile.City, profile.Country, profile.Education, profile.Occupation,
		profile.AnnualIncome, profile.Diet, profile.AboutMe)
	var stored domain.Profile
	if err := row.StructScan(&stored); err != nil {
		return nil, err
	}
	return &stored, nil
}

func (r *ProfileRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	const query = `
        SELECT ` + profileColumns + `
        FROM profile
        WHERE id = $1
    `
	var profile domain.Profile
	if err := r.db.GetContext(ctx, &profile, query, id); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *ProfileRepository) FindByAccount(ctx context.Context, accountID uuid.UUID) (*domain.Profile, error) {
	const query = `
        SELECT ` + profileColumns + `
        FROM profile
        WHERE account_id = $1
    `
	var profile domain.Profile
	if err := r.db.GetContext(ctx, &profile, query, accountID); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *ProfileRepository) Search(ctx context.Context, filter domain.ProfileSearchFilter, limit, offset int) ([]domain.ProfileListItem, error) {
	where, args := buildSearchClauses(filter)
	args = append(args, limit, offset)
	query := fmt.Sprintf(`
        SELECT id, gender, date_of_birth, religion, caste, city, country, occupation, primary_photo_url
        FROM profile
        WHERE %s
        ORDER BY updated_at DESC, id DESC
        LIMIT $%d OFFSET $%d
    `, where, len(args)-1, len(args))

	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.ProfileListItem, 0)
	for rows.Next() {
		var item domain.ProfileListItem
		if err := rows.StructScan(&item); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *ProfileRepository) CountSearch(ctx context.Context, filter domain.ProfileSearchFilter) (int64, error) {
	where, args := buildSearchClauses(filter)
	query := fmt.Sprintf(`SELECT COUNT(*) FROM profile WHERE %s`, where)

	var count int64
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, err
	}
	return count, nil
}

func buildSearchClauses(filter domain.ProfileSearchFilter) (string, []interface{}) {
	clauses := []string{"TRUE"}
	args := make([]interface{}, 0, 6)

	if filter.Gender != "" {
		args = append(args, filter.Gender)
		clauses = append(clauses, fmt.Sprintf("gender = $%d", len(args)))
	}
	if filter.MinAge > 0 {
		args = append(args, time.Now().AddDate(-filter.MinAge, 0, 0))
		clauses = append(clauses, fmt.Sprintf("date_of_birth <= $%d", len(args)))
	}
	if filter.MaxAge > 0 {
		args = append(args, time.Now().AddDate(-filter.MaxAge-1, 0, 0))
		clauses = append(clauses, fmt.Sprintf("date_of_birth > $%d", len(args)))
	}
	if len(filter.Religions) > 0 {
		args = append(args, pq.Array(filter.Religions))
		clauses = append(clauses, fmt.Sprintf("religion = ANY($%d)", len(args)))
	}
	if len(filter.Castes) > 0 {
		args = append(args, pq.Array(filter.Castes))
		clauses = append(clauses, fmt.Sprintf("caste = ANY($%d)", len(args)))
	}
	if len(filter.Countries) > 0 {
		args = append(args, pq.Array(filter.Countries))
		clauses = append(clauses, fmt.Sprintf("country = ANY($%d)", len(args)))
	}

	return strings.Join(clauses, " AND "), args
}

func (r *ProfileRepository) AddPhoto(ctx context.Context, profileID uuid.UUID, url string, caption *string, isPrimary bool) (*domain.ProfilePhoto, error) {
	const query = `
        INSERT INTO profile_photo (profile_id, url, caption, is_primary)
        VALUES ($1, $2, $3, $4)
        RETURNING id, profile_id, url, caption, is_primary, created_at
    `
	row := r.db.QueryRowxContext(ctx, query, profileID, url, caption, isPrimary)
	var photo domain.ProfilePhoto
	if err := row.StructScan(&photo); err != nil {
		return nil, err
	}
	if isPrimary {
		const sync = `UPDATE profile SET primary_photo_url = $2, updated_at = NOW() WHERE id = $1`
		if _, err := r.db.ExecContext(ctx, sync, profileID, url); err != nil {
			return nil, err
		}
	}
	return &photo, nil
}

func (r *ProfileRepository) ListPhotos(ctx context.Context, profileID uuid.UUID) ([]domain.ProfilePhoto, error) {
	const query = `
        SELECT id, profile_id, url, caption, is_primary, created_at
        FROM profile_photo
        WHERE profile_id = $1
        ORDER BY is_primary DESC, created_at DESC
    `
	rows, err := r.db.QueryxContext(ctx, query, profileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	photos := make([]domain.ProfilePhoto, 0)
	for rows.Next() {
		var photo domain.ProfilePhoto
		if err := rows.StructScan(&photo); err != nil {
			return nil, err
		}
		photos = append(photos, photo)
	}
	return photos, rows.Err()
}

func (r *ProfileRepository) RemovePhoto(ctx context.Context, profileID, photoID uuid.UUID) error {
	const query = `
        DELETE FROM profile_photo
        WHERE id = $1 AND profile_id = $2
    `
	result, err := r.db.ExecContext(ctx, query, photoID, profileID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

var _ ports.ProfileRepository = (*ProfileRepository)(nil)
