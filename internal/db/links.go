package db

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"qrshort/internal/models"
)

var (
	ErrLinkNotFound  = errors.New("link not found")
	ErrDuplicateCode = errors.New("code already exists")
)

// linkColumns is the standard column list for link queries.
const linkColumns = `id, user_id, code, kind, title, target_url, payload,
	viewer_enabled, created_at, updated_at, expires_at, max_scans`

// scanLink scans a row into a Link struct.
func scanLink(row pgx.Row) (*models.Link, error) {
	var link models.Link
	var kind string
	err := row.Scan(
		&link.ID,
		&link.UserID,
		&link.Code,
		&kind,
		&link.Title,
		&link.TargetURL,
		&link.Payload,
		&link.ViewerEnabled,
		&link.CreatedAt,
		&link.UpdatedAt,
		&link.ExpiresAt,
		&link.MaxScans,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrLinkNotFound
	}
	if err != nil {
		return nil, err
	}
	link.Kind = models.Kind(kind)
	return &link, nil
}

// scanLinks scans multiple rows into a slice of Links.
func scanLinks(rows pgx.Rows) ([]models.Link, error) {
	defer rows.Close()

	var links []models.Link
	for rows.Next() {
		var link models.Link
		var kind string
		if err := rows.Scan(
			&link.ID,
			&link.UserID,
			&link.Code,
			&kind,
			&link.Title,
			&link.TargetURL,
			&link.Payload,
			&link.ViewerEnabled,
			&link.CreatedAt,
			&link.UpdatedAt,
			&link.ExpiresAt,
			&link.MaxScans,
		); err != nil {
			return nil, err
		}
		link.Kind = models.Kind(kind)
		links = append(links, link)
	}

	return links, rows.Err()
}

// CreateLink inserts a new link. The code must already be unique; a collision
// surfaces as ErrDuplicateCode via the unique index.
func (d *DB) CreateLink(ctx context.Context, link *models.Link) error {
	query := `
		INSERT INTO links (user_id, code, kind, title, target_url, payload, viewer_enabled, expires_at, max_scans)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`

	err := d.Pool.QueryRow(ctx, query,
		link.UserID,
		link.Code,
		string(link.Kind),
		link.Title,
		link.TargetURL,
		link.Payload,
		link.ViewerEnabled,
		link.ExpiresAt,
		link.MaxScans,
	).Scan(&link.ID, &link.CreatedAt, &link.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateCode
		}
		return err
	}
	return nil
}

// GetLinkByCode retrieves a link by its short code.
func (d *DB) GetLinkByCode(ctx context.Context, code string) (*models.Link, error) {
	query := `SELECT ` + linkColumns + ` FROM links WHERE code = $1`
	return scanLink(d.Pool.QueryRow(ctx, query, code))
}

// GetLinkByCodeAndOwner retrieves a link by code, but only if owned by the
// given user. Links the caller does not own surface as ErrLinkNotFound.
func (d *DB) GetLinkByCodeAndOwner(ctx context.Context, code string, userID uuid.UUID) (*models.Link, error) {
	query := `SELECT ` + linkColumns + ` FROM links WHERE code = $1 AND user_id = $2`
	return scanLink(d.Pool.QueryRow(ctx, query, code, userID))
}

// GetLinksByOwner retrieves all links created by a user, newest first.
func (d *DB) GetLinksByOwner(ctx context.Context, userID uuid.UUID) ([]models.Link, error) {
	query := `SELECT ` + linkColumns + ` FROM links WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := d.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	return scanLinks(rows)
}

// CodeExists reports whether a short code is already taken.
func (d *DB) CodeExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := d.Pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM links WHERE code = $1)`, code).Scan(&exists)
	return exists, err
}

// UpdateLinkTarget changes a url link's destination. Ownership and the
// url-kind restriction are enforced in the statement itself: viewer links
// and links owned by someone else are never touched. Only target_url and
// updated_at change.
func (d *DB) UpdateLinkTarget(ctx context.Context, code string, userID uuid.UUID, target string) error {
	query := `
		UPDATE links
		SET target_url = $1, updated_at = NOW()
		WHERE code = $2 AND user_id = $3 AND viewer_enabled = FALSE
		RETURNING updated_at
	`
	var updatedAt time.Time
	err := d.Pool.QueryRow(ctx, query, target, code, userID).Scan(&updatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrLinkNotFound
	}
	return err
}
