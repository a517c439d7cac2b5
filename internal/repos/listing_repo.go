package repos

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"realtysite/internal/domain"
)

type ListingRepo struct{ db *sqlx.DB }

func NewListingRepo(db *sqlx.DB) *ListingRepo { return &ListingRepo{db: db} }

type listingRow struct {
	ID        string `db:"id"`
	Title     string `db:"title"`
	Category  string `db:"category"`
	Details   string `db:"details_json"`
	CreatedAt string `db:"created_at"`
	UpdatedAt string `db:"updated_at"`
}

// Save inserts or replaces a listing. Details must already be validated.
func (r *ListingRepo) Save(ctx context.Context, l domain.Listing) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO listings(id, title, category, details_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
		  title = excluded.title,
		  category = excluded.category,
		  details_json = excluded.details_json,
		  updated_at = excluded.updated_at
	`, l.ID, l.Title, l.Category, string(l.Details), formatTime(l.CreatedAt), formatTime(l.UpdatedAt))
	return errors.Wrap(err, "save listing")
}

func (r *ListingRepo) Get(ctx context.Context, id string) (domain.Listing, error) {
	var row listingRow
	err := r.db.GetContext(ctx, &row, `
		SELECT id, title, category, details_json, created_at, updated_at
		FROM listings WHERE id = ?
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Listing{}, domain.ListingNotFound(id)
	}
	if err != nil {
		return domain.Listing{}, errors.Wrap(err, "get listing")
	}
	l := domain.Listing{ID: row.ID, Title: row.Title, Category: row.Category, Details: json.RawMessage(row.Details)}
	if l.CreatedAt, err = parseTime(row.CreatedAt); err != nil {
		return domain.Listing{}, errors.Wrap(err, "listing created_at")
	}
	if l.UpdatedAt, err = parseTime(row.UpdatedAt); err != nil {
		return domain.Listing{}, errors.Wrap(err, "listing updated_at")
	}
	return l, nil
}
