package repos

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"realtysite/internal/domain"
	applog "realtysite/internal/log"
)

// ErrStaleVersion is returned by Update when the row changed since it was read.
var ErrStaleVersion = errors.New("content item version is stale")

type ContentRepo struct{ db *sqlx.DB }

func NewContentRepo(db *sqlx.DB) *ContentRepo { return &ContentRepo{db: db} }

type contentRow struct {
	ID             string         `db:"id"`
	Kind           string         `db:"kind"`
	Title          string         `db:"title"`
	State          string         `db:"state"`
	GoLiveAt       sql.NullString `db:"scheduled_go_live_at"`
	ForcePublished bool           `db:"force_published"`
	DisplayConfig  string         `db:"display_config"`
	Version        int64          `db:"version"`
	CreatedAt      string         `db:"created_at"`
	UpdatedAt      string         `db:"updated_at"`
}

type assetRow struct {
	ItemID   string `db:"item_id"`
	Position int    `db:"position"`
	Key      string `db:"store_key"`
	Filename string `db:"filename"`
	MimeType string `db:"mime_type"`
	Size     int64  `db:"size"`
}

const contentColumns = `
	id, kind, title, state, scheduled_go_live_at, force_published,
	display_config, version, created_at, updated_at`

func (r contentRow) toDomain() (domain.ContentItem, error) {
	it := domain.ContentItem{
		ID:             r.ID,
		Kind:           domain.Kind(r.Kind),
		Title:          r.Title,
		State:          domain.State(r.State),
		ForcePublished: r.ForcePublished,
		DisplayConfig:  json.RawMessage(r.DisplayConfig),
		Version:        r.Version,
	}
	var err error
	if r.GoLiveAt.Valid {
		t, perr := parseTime(r.GoLiveAt.String)
		if perr != nil {
			return it, errors.Wrapf(perr, "content %s: go-live", r.ID)
		}
		it.ScheduledGoLiveAt = &t
	}
	if it.CreatedAt, err = parseTime(r.CreatedAt); err != nil {
		return it, errors.Wrapf(err, "content %s: created_at", r.ID)
	}
	if it.UpdatedAt, err = parseTime(r.UpdatedAt); err != nil {
		return it, errors.Wrapf(err, "content %s: updated_at", r.ID)
	}
	return it, nil
}

func goLiveArg(it domain.ContentItem) any {
	if it.ScheduledGoLiveAt == nil {
		return nil
	}
	return formatTime(*it.ScheduledGoLiveAt)
}

func displayConfigArg(it domain.ContentItem) string {
	if len(it.DisplayConfig) == 0 {
		return "{}"
	}
	return string(it.DisplayConfig)
}

// Create inserts the item and its asset references in one transaction.
func (r *ContentRepo) Create(ctx context.Context, it domain.ContentItem) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin create content")
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO content_items(`+contentColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, it.ID, string(it.Kind), it.Title, string(it.State), goLiveArg(it), it.ForcePublished,
		displayConfigArg(it), it.Version, formatTime(it.CreatedAt), formatTime(it.UpdatedAt)); err != nil {
		return errors.Wrap(err, "insert content item")
	}

	for _, a := range it.Assets {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO content_assets(item_id, position, store_key, filename, mime_type, size)
			VALUES (?, ?, ?, ?, ?, ?)
		`, it.ID, a.Position, a.Key, a.Filename, a.MimeType, a.Size); err != nil {
			return errors.Wrap(err, "insert content asset")
		}
	}
	return errors.Wrap(tx.Commit(), "commit create content")
}

// Get returns the item or a NOT_FOUND domain error.
func (r *ContentRepo) Get(ctx context.Context, id string) (domain.ContentItem, error) {
	var row contentRow
	err := r.db.GetContext(ctx, &row, `SELECT `+contentColumns+` FROM content_items WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ContentItem{}, domain.NotFound(id)
	}
	if err != nil {
		return domain.ContentItem{}, errors.Wrap(err, "get content item")
	}
	items, err := r.hydrate(ctx, []contentRow{row})
	if err != nil {
		return domain.ContentItem{}, err
	}
	if len(items) == 0 {
		return domain.ContentItem{}, errors.Errorf("content %s: unreadable row", id)
	}
	return items[0], nil
}

// ListByKind returns every item of kind, archived ones included.
func (r *ContentRepo) ListByKind(ctx context.Context, kind domain.Kind) ([]domain.ContentItem, error) {
	var rows []contentRow
	if err := r.db.SelectContext(ctx, &rows, `
		SELECT `+contentColumns+` FROM content_items
		WHERE kind = ?
		ORDER BY created_at, id
	`, string(kind)); err != nil {
		return nil, errors.Wrap(err, "list content by kind")
	}
	return r.hydrate(ctx, rows)
}

// ListAll backs the admin dashboard.
func (r *ContentRepo) ListAll(ctx context.Context) ([]domain.ContentItem, error) {
	var rows []contentRow
	if err := r.db.SelectContext(ctx, &rows, `
		SELECT `+contentColumns+` FROM content_items
		ORDER BY created_at DESC, id
	`); err != nil {
		return nil, errors.Wrap(err, "list content")
	}
	return r.hydrate(ctx, rows)
}

// Update writes the lifecycle fields of it if the stored version still equals
// it.Version, and returns the item with its new version.
func (r *ContentRepo) Update(ctx context.Context, it domain.ContentItem) (domain.ContentItem, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE content_items
		SET state = ?, scheduled_go_live_at = ?, force_published = ?,
		    title = ?, display_config = ?, updated_at = ?, version = version + 1
		WHERE id = ? AND version = ?
	`, string(it.State), goLiveArg(it), it.ForcePublished, it.Title, displayConfigArg(it),
		formatTime(it.UpdatedAt), it.ID, it.Version)
	if err != nil {
		return it, errors.Wrap(err, "update content item")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return it, errors.Wrap(err, "update content item")
	}
	if n == 0 {
		var exists int
		if err := r.db.GetContext(ctx, &exists, `SELECT COUNT(*) FROM content_items WHERE id = ?`, it.ID); err != nil {
			return it, errors.Wrap(err, "check content item")
		}
		if exists == 0 {
			return it, domain.NotFound(it.ID)
		}
		return it, ErrStaleVersion
	}
	it.Version++
	return it, nil
}

// hydrate converts rows and attaches assets. Rows that fail to parse are
// logged and left out.
func (r *ContentRepo) hydrate(ctx context.Context, rows []contentRow) ([]domain.ContentItem, error) {
	out := make([]domain.ContentItem, 0, len(rows))
	if len(rows) == 0 {
		return out, nil
	}
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	query, args, err := sqlx.In(`
		SELECT item_id, position, store_key, filename, mime_type, size
		FROM content_assets
		WHERE item_id IN (?)
		ORDER BY item_id, position
	`, ids)
	if err != nil {
		return nil, errors.Wrap(err, "build asset query")
	}
	var assets []assetRow
	if err := r.db.SelectContext(ctx, &assets, r.db.Rebind(query), args...); err != nil {
		return nil, errors.Wrap(err, "list content assets")
	}
	byItem := map[string][]domain.Asset{}
	for _, a := range assets {
		byItem[a.ItemID] = append(byItem[a.ItemID], domain.Asset{
			Key: a.Key, Filename: a.Filename, MimeType: a.MimeType, Size: a.Size, Position: a.Position,
		})
	}

	for _, row := range rows {
		it, err := row.toDomain()
		if err != nil {
			applog.L().Warn("content.row.malformed", zap.String("id", row.ID), zap.Error(err))
			continue
		}
		it.Assets = byItem[row.ID]
		out = append(out, it)
	}
	return out, nil
}
