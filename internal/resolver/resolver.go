// Package resolver implements the redirect/tracking pipeline: given a short
// code it decides liveness, records a scan, and picks the dispatch target.
package resolver

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"qrshort/internal/db"
	"qrshort/internal/models"
)

// Outcome is the result class of a resolution attempt.
type Outcome int

const (
	OutcomeNotFound Outcome = iota
	OutcomeExpired
	OutcomeQuotaExceeded
	OutcomeRedirect
	OutcomeViewPayload
	OutcomeInvalidTarget
)

// String returns the outcome name used for metric labels.
func (o Outcome) String() string {
	switch o {
	case OutcomeNotFound:
		return "not_found"
	case OutcomeExpired:
		return "expired"
	case OutcomeQuotaExceeded:
		return "quota_exceeded"
	case OutcomeRedirect:
		return "redirect"
	case OutcomeViewPayload:
		return "view_payload"
	case OutcomeInvalidTarget:
		return "invalid_target"
	}
	return "unknown"
}

// maxFieldLen bounds the user-agent and referer strings stored with a scan.
const maxFieldLen = 300

// ipHashLen is the number of hex characters of the IP hash that are kept.
const ipHashLen = 16

// RequestMeta carries the request attributes a scan record is built from.
// RemoteAddr is used only when ForwardedFor is empty, and neither is ever
// stored raw.
type RequestMeta struct {
	UserAgent    string
	Referer      string
	ForwardedFor string
	RemoteAddr   string
}

// Result is the decision for one resolution attempt. Target is set for
// OutcomeRedirect; Link is set whenever the code resolved to a stored link.
type Result struct {
	Outcome Outcome
	Target  string
	Link    *models.Link
}

// Store is the slice of the persistence layer the pipeline reads and writes.
type Store interface {
	GetLinkByCode(ctx context.Context, code string) (*models.Link, error)
	CountScans(ctx context.Context, linkID uuid.UUID) (int64, error)
	InsertScan(ctx context.Context, scan *models.Scan) error
}

// Resolver evaluates short codes against the store.
type Resolver struct {
	store Store
	now   func() time.Time
}

// New creates a resolver backed by the given store.
func New(store Store) *Resolver {
	return &Resolver{store: store, now: time.Now}
}

// Resolve runs the pipeline for one code, strictly in order: fetch, expiry,
// quota, scan record, dispatch. Expired and over-quota links are rejected
// before the scan is recorded, so rejected attempts never accrue scans and a
// link with max_scans = N permits exactly N successful resolutions.
//
// The count-then-insert quota check can overshoot by one when the same code
// resolves concurrently; scans are analytics, not a billing-grade counter,
// so that is accepted rather than coordinated.
func (r *Resolver) Resolve(ctx context.Context, code string, meta RequestMeta) (*Result, error) {
	link, err := r.store.GetLinkByCode(ctx, code)
	if err != nil {
		if errors.Is(err, db.ErrLinkNotFound) {
			return &Result{Outcome: OutcomeNotFound}, nil
		}
		return nil, err
	}

	now := r.now()
	if link.ExpiresAt != nil && now.Unix() > *link.ExpiresAt {
		return &Result{Outcome: OutcomeExpired, Link: link}, nil
	}

	if link.MaxScans != nil {
		count, err := r.store.CountScans(ctx, link.ID)
		if err != nil {
			return nil, err
		}
		if count >= *link.MaxScans {
			return &Result{Outcome: OutcomeQuotaExceeded, Link: link}, nil
		}
	}

	scan := &models.Scan{
		LinkID:    link.ID,
		Timestamp: now,
		UserAgent: truncate(meta.UserAgent, maxFieldLen),
		Referer:   truncate(meta.Referer, maxFieldLen),
		IPHash:    HashIP(ClientIP(meta)),
	}
	if err := r.store.InsertScan(ctx, scan); err != nil {
		return nil, err
	}

	if link.ViewerEnabled {
		return &Result{Outcome: OutcomeViewPayload, Link: link}, nil
	}
	if link.TargetURL == nil || *link.TargetURL == "" {
		return &Result{Outcome: OutcomeInvalidTarget, Link: link}, nil
	}
	return &Result{Outcome: OutcomeRedirect, Target: *link.TargetURL, Link: link}, nil
}

// ClientIP picks the client address: the first forwarded-for entry when the
// request came through a proxy, otherwise the direct connection address.
func ClientIP(meta RequestMeta) string {
	if meta.ForwardedFor != "" {
		first, _, _ := strings.Cut(meta.ForwardedFor, ",")
		return strings.TrimSpace(first)
	}
	return strings.TrimSpace(meta.RemoteAddr)
}

// HashIP one-way hashes an address and keeps a short hex prefix. The raw IP
// is discarded by the caller immediately after this.
func HashIP(ip string) string {
	if ip == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(ip))
	return hex.EncodeToString(sum[:])[:ipHashLen]
}

// truncate keeps at most n characters. Cutting on a byte index could split a
// multi-byte rune and leave a string Postgres TEXT rejects.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
