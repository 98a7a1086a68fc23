package db

import (
	"context"

	"github.com/google/uuid"

	"qrshort/internal/models"
)

// InsertScan appends one scan event. Scans are immutable; there is no update
// or delete path.
func (d *DB) InsertScan(ctx context.Context, scan *models.Scan) error {
	query := `
		INSERT INTO scans (link_id, ts, ua, ref, ip_hash)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	return d.Pool.QueryRow(ctx, query,
		scan.LinkID,
		scan.Timestamp,
		scan.UserAgent,
		scan.Referer,
		scan.IPHash,
	).Scan(&scan.ID)
}

// CountScans returns the number of recorded scans for a link.
func (d *DB) CountScans(ctx context.Context, linkID uuid.UUID) (int64, error) {
	var count int64
	err := d.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM scans WHERE link_id = $1`, linkID).Scan(&count)
	return count, err
}

// RecentScans returns up to limit scans for a link, newest first.
func (d *DB) RecentScans(ctx context.Context, linkID uuid.UUID, limit int) ([]models.Scan, error) {
	query := `
		SELECT id, link_id, ts, ua, ref, ip_hash
		FROM scans
		WHERE link_id = $1
		ORDER BY ts DESC
		LIMIT $2
	`
	rows, err := d.Pool.Query(ctx, query, linkID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scans []models.Scan
	for rows.Next() {
		var scan models.Scan
		if err := rows.Scan(
			&scan.ID,
			&scan.LinkID,
			&scan.Timestamp,
			&scan.UserAgent,
			&scan.Referer,
			&scan.IPHash,
		); err != nil {
			return nil, err
		}
		scans = append(scans, scan)
	}

	return scans, rows.Err()
}
