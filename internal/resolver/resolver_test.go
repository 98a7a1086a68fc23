package resolver

import (
	"context"
	"regexp"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"qrshort/internal/db"
	"qrshort/internal/models"
)

// fakeStore is an in-memory Store for pipeline tests.
type fakeStore struct {
	links map[string]*models.Link
	scans []*models.Scan
}

func newFakeStore(links ...*models.Link) *fakeStore {
	s := &fakeStore{links: make(map[string]*models.Link)}
	for _, l := range links {
		s.links[l.Code] = l
	}
	return s
}

func (s *fakeStore) GetLinkByCode(ctx context.Context, code string) (*models.Link, error) {
	link, ok := s.links[code]
	if !ok {
		return nil, db.ErrLinkNotFound
	}
	return link, nil
}

func (s *fakeStore) CountScans(ctx context.Context, linkID uuid.UUID) (int64, error) {
	var n int64
	for _, scan := range s.scans {
		if scan.LinkID == linkID {
			n++
		}
	}
	return n, nil
}

func (s *fakeStore) InsertScan(ctx context.Context, scan *models.Scan) error {
	s.scans = append(s.scans, scan)
	return nil
}

func urlLink(code, target string) *models.Link {
	return &models.Link{ID: uuid.New(), Code: code, Kind: models.KindURL, TargetURL: &target}
}

func newResolverAt(store Store, now time.Time) *Resolver {
	r := New(store)
	r.now = func() time.Time { return now }
	return r
}

func TestResolve_NotFound(t *testing.T) {
	store := newFakeStore()
	res, err := New(store).Resolve(context.Background(), "missing", RequestMeta{})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if res.Outcome != OutcomeNotFound {
		t.Errorf("Outcome = %v, want %v", res.Outcome, OutcomeNotFound)
	}
	if len(store.scans) != 0 {
		t.Errorf("recorded %d scans for an unknown code, want 0", len(store.scans))
	}
}

func TestResolve_Redirect(t *testing.T) {
	link := urlLink("abc1234", "https://example.com")
	store := newFakeStore(link)

	res, err := New(store).Resolve(context.Background(), "abc1234", RequestMeta{
		UserAgent: "test-agent",
		Referer:   "https://referrer.example",
	})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if res.Outcome != OutcomeRedirect {
		t.Fatalf("Outcome = %v, want %v", res.Outcome, OutcomeRedirect)
	}
	if res.Target != "https://example.com" {
		t.Errorf("Target = %q, want https://example.com", res.Target)
	}
	if len(store.scans) != 1 {
		t.Fatalf("recorded %d scans, want 1", len(store.scans))
	}
	if store.scans[0].UserAgent != "test-agent" {
		t.Errorf("scan UA = %q, want test-agent", store.scans[0].UserAgent)
	}
}

func TestResolve_ExpiredRecordsNoScan(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	past := now.Unix() - 1
	link := urlLink("expired", "https://example.com")
	link.ExpiresAt = &past
	store := newFakeStore(link)
	r := newResolverAt(store, now)

	for i := 0; i < 3; i++ {
		res, err := r.Resolve(context.Background(), "expired", RequestMeta{})
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if res.Outcome != OutcomeExpired {
			t.Fatalf("Outcome = %v, want %v", res.Outcome, OutcomeExpired)
		}
	}
	if len(store.scans) != 0 {
		t.Errorf("expired link accrued %d scans over repeated attempts, want 0", len(store.scans))
	}
}

func TestResolve_ExpiryBoundary(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	exact := now.Unix()
	link := urlLink("edge", "https://example.com")
	link.ExpiresAt = &exact
	store := newFakeStore(link)

	// Expiry uses strictly-greater-than: a link expiring "now" still resolves.
	res, err := newResolverAt(store, now).Resolve(context.Background(), "edge", RequestMeta{})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if res.Outcome != OutcomeRedirect {
		t.Errorf("Outcome at the expiry instant = %v, want %v", res.Outcome, OutcomeRedirect)
	}
}

func TestResolve_QuotaBoundsSuccessfulResolutions(t *testing.T) {
	quota := int64(2)
	link := urlLink("limited", "https://example.com")
	link.MaxScans = &quota
	store := newFakeStore(link)
	r := New(store)

	for i := 0; i < 2; i++ {
		res, err := r.Resolve(context.Background(), "limited", RequestMeta{})
		if err != nil {
			t.Fatalf("Resolve() attempt %d error = %v", i+1, err)
		}
		if res.Outcome != OutcomeRedirect {
			t.Fatalf("attempt %d Outcome = %v, want %v", i+1, res.Outcome, OutcomeRedirect)
		}
	}

	res, err := r.Resolve(context.Background(), "limited", RequestMeta{})
	if err != nil {
		t.Fatalf("Resolve() third attempt error = %v", err)
	}
	if res.Outcome != OutcomeQuotaExceeded {
		t.Errorf("third attempt Outcome = %v, want %v", res.Outcome, OutcomeQuotaExceeded)
	}
	if len(store.scans) != 2 {
		t.Errorf("total scans after 3 attempts = %d, want 2", len(store.scans))
	}
}

func TestResolve_ExpiryCheckedBeforeQuota(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	past := now.Unix() - 10
	quota := int64(1)
	link := urlLink("both", "https://example.com")
	link.ExpiresAt = &past
	link.MaxScans = &quota
	store := newFakeStore(link)

	res, err := newResolverAt(store, now).Resolve(context.Background(), "both", RequestMeta{})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if res.Outcome != OutcomeExpired {
		t.Errorf("Outcome = %v, want %v (expiry wins over quota)", res.Outcome, OutcomeExpired)
	}
}

func TestResolve_ViewerDispatch(t *testing.T) {
	payload := `{"ssid":"home"}`
	link := &models.Link{
		ID:            uuid.New(),
		Code:          "wifi123",
		Kind:          models.KindWifi,
		Payload:       &payload,
		ViewerEnabled: true,
	}
	store := newFakeStore(link)

	res, err := New(store).Resolve(context.Background(), "wifi123", RequestMeta{})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if res.Outcome != OutcomeViewPayload {
		t.Errorf("Outcome = %v, want %v", res.Outcome, OutcomeViewPayload)
	}
	if len(store.scans) != 1 {
		t.Errorf("viewer resolution recorded %d scans, want 1", len(store.scans))
	}
}

func TestResolve_InvalidTarget(t *testing.T) {
	link := &models.Link{ID: uuid.New(), Code: "broken", Kind: models.KindURL}
	store := newFakeStore(link)

	res, err := New(store).Resolve(context.Background(), "broken", RequestMeta{})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if res.Outcome != OutcomeInvalidTarget {
		t.Errorf("Outcome = %v, want %v", res.Outcome, OutcomeInvalidTarget)
	}
	// The scan is recorded before dispatch, matching the source behavior.
	if len(store.scans) != 1 {
		t.Errorf("recorded %d scans, want 1", len(store.scans))
	}
}

func TestResolve_TruncatesLongHeaders(t *testing.T) {
	link := urlLink("trunc12", "https://example.com")
	store := newFakeStore(link)

	long := strings.Repeat("x", 1000)
	_, err := New(store).Resolve(context.Background(), "trunc12", RequestMeta{
		UserAgent: long,
		Referer:   long,
	})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got := len(store.scans[0].UserAgent); got != maxFieldLen {
		t.Errorf("stored UA length = %d, want %d", got, maxFieldLen)
	}
	if got := len(store.scans[0].Referer); got != maxFieldLen {
		t.Errorf("stored referer length = %d, want %d", got, maxFieldLen)
	}
}

func TestResolve_TruncationKeepsRunesIntact(t *testing.T) {
	link := urlLink("trunc34", "https://example.com")
	store := newFakeStore(link)

	// The 300th character is multi-byte, so a byte-indexed cut would split it
	// and store invalid UTF-8, which Postgres TEXT rejects.
	ua := strings.Repeat("a", maxFieldLen-1) + "é and more"
	_, err := New(store).Resolve(context.Background(), "trunc34", RequestMeta{UserAgent: ua})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	stored := store.scans[0].UserAgent
	if !utf8.ValidString(stored) {
		t.Errorf("stored UA is not valid UTF-8: %q", stored)
	}
	if got := utf8.RuneCountInString(stored); got != maxFieldLen {
		t.Errorf("stored UA rune count = %d, want %d", got, maxFieldLen)
	}
	if !strings.HasSuffix(stored, "é") {
		t.Errorf("stored UA should end with the intact rune, got %q", stored[len(stored)-4:])
	}
}

func TestResolve_IPIsHashedNeverRaw(t *testing.T) {
	link := urlLink("iphash1", "https://example.com")
	store := newFakeStore(link)

	ip := "203.0.113.7"
	_, err := New(store).Resolve(context.Background(), "iphash1", RequestMeta{RemoteAddr: ip})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	stored := store.scans[0].IPHash
	if stored == ip || strings.Contains(stored, ip) {
		t.Errorf("stored IP hash %q leaks the raw address", stored)
	}
	if !regexp.MustCompile(`^[0-9a-f]{16}$`).MatchString(stored) {
		t.Errorf("stored IP hash %q is not a 16-char hex token", stored)
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name string
		meta RequestMeta
		want string
	}{
		{"direct", RequestMeta{RemoteAddr: "203.0.113.7"}, "203.0.113.7"},
		{"single forwarded", RequestMeta{ForwardedFor: "198.51.100.1", RemoteAddr: "10.0.0.1"}, "198.51.100.1"},
		{"forwarded chain takes first", RequestMeta{ForwardedFor: "198.51.100.1, 10.0.0.2, 10.0.0.3"}, "198.51.100.1"},
		{"forwarded with spaces", RequestMeta{ForwardedFor: " 198.51.100.1 , 10.0.0.2"}, "198.51.100.1"},
		{"empty", RequestMeta{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClientIP(tt.meta); got != tt.want {
				t.Errorf("ClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHashIP(t *testing.T) {
	if got := HashIP(""); got != "" {
		t.Errorf("HashIP(\"\") = %q, want empty", got)
	}
	a, b := HashIP("203.0.113.7"), HashIP("203.0.113.8")
	if a == b {
		t.Error("distinct IPs hashed to the same token")
	}
	if a != HashIP("203.0.113.7") {
		t.Error("HashIP is not deterministic")
	}
}
