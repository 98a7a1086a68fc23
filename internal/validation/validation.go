package validation

import (
	"bytes"
	"encoding/json"
	"net/url"
	"strconv"
	"strings"

	"qrshort/internal/models"
)

// Tier identifies the caller's permission level at creation time.
type Tier int

const (
	// TierGuest is an unauthenticated caller, restricted to plain URL links.
	TierGuest Tier = iota
	// TierMember is an authenticated caller with access to all kinds and
	// the title/expiry/quota extras.
	TierMember
)

// Error is a creation-time rejection. NeedLogin distinguishes "this feature
// requires an account" (HTTP 403) from a plain bad input (HTTP 400), so the
// caller can prompt sign-in instead of showing a validation message.
type Error struct {
	Message   string
	NeedLogin bool
}

func (e *Error) Error() string { return e.Message }

func errf(msg string) *Error         { return &Error{Message: msg} }
func errNeedLogin(msg string) *Error { return &Error{Message: msg, NeedLogin: true} }

// CreateRequest is the raw creation input as submitted by the client.
// ExpiresAt and MaxScans stay raw so malformed values can be rejected with a
// field-specific message instead of a generic body-decode error.
type CreateRequest struct {
	Kind      string          `json:"kind"`
	Title     string          `json:"title"`
	TargetURL string          `json:"target_url"`
	Payload   json.RawMessage `json:"payload"`
	ExpiresAt json.RawMessage `json:"expires_at"`
	MaxScans  json.RawMessage `json:"max_scans"`
}

// NormalizedLink is a validated creation input ready for storage. Exactly one
// of TargetURL and Payload is set, matching Kind.
type NormalizedLink struct {
	Kind          models.Kind
	Title         *string
	TargetURL     *string
	Payload       *string
	ViewerEnabled bool
	ExpiresAt     *int64
	MaxScans      *int64
}

// NormalizeTargetURL trims the input and prepends https:// when it looks like
// a bare domain (a dot before the first slash, no scheme separator).
func NormalizeTargetURL(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if !strings.Contains(s, "://") {
		head, _, _ := strings.Cut(s, "/")
		if strings.Contains(head, ".") {
			s = "https://" + s
		}
	}
	return s
}

// IsHTTPURL reports whether s parses as an absolute http or https URL with a
// non-empty host. Rejects javascript:, data:, and other dangerous schemes.
func IsHTTPURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return (scheme == "http" || scheme == "https") && u.Host != ""
}

// NormalizeLinkInput enforces the creation rules for the caller's tier and
// returns a normalized record ready for storage. It is pure: no side effects
// beyond the returned value.
func NormalizeLinkInput(tier Tier, req *CreateRequest) (*NormalizedLink, *Error) {
	kind := strings.ToLower(strings.TrimSpace(req.Kind))
	if kind == "" {
		kind = string(models.KindURL)
	}

	title := strings.TrimSpace(req.Title)
	target := NormalizeTargetURL(req.TargetURL)

	if tier == TierGuest {
		if kind != string(models.KindURL) {
			return nil, errNeedLogin("sign in to create this kind of link")
		}
		if target == "" || !IsHTTPURL(target) {
			return nil, errf("only http/https links are allowed")
		}
		if title != "" || fieldPresent(req.ExpiresAt) || fieldPresent(req.MaxScans) {
			return nil, errNeedLogin("titles, expiry and scan limits require an account")
		}
	}

	out := &NormalizedLink{Kind: models.Kind(kind)}
	if title != "" {
		out.Title = &title
	}

	if tier == TierMember {
		switch models.Kind(kind) {
		case models.KindURL:
			if target == "" || !IsHTTPURL(target) {
				return nil, errf("invalid URL (http/https only)")
			}
		case "whatsapp":
			wa, err := synthesizeWhatsApp(req.Payload)
			if err != nil {
				return nil, err
			}
			target = wa
			out.Kind = models.KindURL
		case models.KindWifi, models.KindText, models.KindVCard:
			if !fieldPresent(req.Payload) {
				return nil, errf("missing payload")
			}
		default:
			return nil, errf("unsupported link kind")
		}
	}

	expiresAt, verr := parseEpoch(req.ExpiresAt, "expires_at must be an epoch integer")
	if verr != nil {
		return nil, verr
	}
	maxScans, verr := parseEpoch(req.MaxScans, "max_scans must be an integer >= 1")
	if verr != nil {
		return nil, verr
	}
	if maxScans != nil && *maxScans < 1 {
		return nil, errf("max_scans must be an integer >= 1")
	}
	out.ExpiresAt = expiresAt
	out.MaxScans = maxScans

	if out.Kind.IsViewer() {
		out.ViewerEnabled = true
		payload := string(req.Payload)
		out.Payload = &payload
	} else {
		out.TargetURL = &target
	}

	return out, nil
}

// synthesizeWhatsApp turns a {phone, msg} payload into a wa.me URL. The phone
// is stripped to digits; the optional message rides along as a query param.
func synthesizeWhatsApp(raw json.RawMessage) (string, *Error) {
	if !fieldPresent(raw) {
		return "", errf("invalid payload for whatsapp")
	}
	var p models.WhatsAppPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return "", errf("invalid payload for whatsapp")
	}

	var digits strings.Builder
	for _, ch := range p.Phone {
		if ch >= '0' && ch <= '9' {
			digits.WriteRune(ch)
		}
	}
	if digits.Len() == 0 {
		return "", errf("missing phone number (include the country code)")
	}

	wa := "https://wa.me/" + digits.String()
	if msg := strings.TrimSpace(p.Msg); msg != "" {
		wa += "?text=" + url.QueryEscape(msg)
	}
	return wa, nil
}

// fieldPresent reports whether a raw JSON field was supplied with a non-null
// value.
func fieldPresent(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

// parseEpoch parses an optional integer field that may arrive as a JSON
// number or a numeric string. Malformed values are rejected, not coerced.
func parseEpoch(raw json.RawMessage, msg string) (*int64, *Error) {
	if !fieldPresent(raw) {
		return nil, nil
	}
	s := string(bytes.TrimSpace(raw))
	if len(s) >= 2 && s[0] == '"' {
		unquoted, err := strconv.Unquote(s)
		if err != nil {
			return nil, errf(msg)
		}
		s = unquoted
	}
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return nil, errf(msg)
	}
	return &n, nil
}
