// Package viewer builds the view models behind /v/<code> for payload links.
package viewer

import (
	"encoding/json"
	"errors"

	"qrshort/internal/models"
)

// ErrNotViewer signals that the link is a plain redirect and the caller
// should fall back to the redirect path.
var ErrNotViewer = errors.New("link is not a viewer kind")

// ViewModel is the rendered form of a stored payload. Exactly one of Wifi,
// VCard, or Text is populated on a successful decode; Raw carries the stored
// string when decoding fails, so the page can still show something.
type ViewModel struct {
	Code   string
	Kind   models.Kind
	Title  string
	Wifi   *models.WifiCredentials
	VCard  *models.VCard
	Text   string
	Raw    string
	Pretty string
}

// Render deserializes a viewer link's payload. Decoding is best-effort
// presentation, not a correctness-critical path: a payload that no longer
// parses is shown raw instead of failing the request.
func Render(link *models.Link) (*ViewModel, error) {
	if !link.ViewerEnabled {
		return nil, ErrNotViewer
	}

	vm := &ViewModel{Code: link.Code, Kind: link.Kind}
	if link.Title != nil {
		vm.Title = *link.Title
	}

	var raw string
	if link.Payload != nil {
		raw = *link.Payload
	}
	if raw == "" {
		return vm, nil
	}

	switch link.Kind {
	case models.KindWifi:
		var creds models.WifiCredentials
		if err := json.Unmarshal([]byte(raw), &creds); err != nil {
			vm.Raw = raw
			return vm, nil
		}
		vm.Wifi = &creds
	case models.KindVCard:
		var card models.VCard
		if err := json.Unmarshal([]byte(raw), &card); err != nil {
			vm.Raw = raw
			return vm, nil
		}
		vm.VCard = &card
	case models.KindText:
		vm.Text = decodeText(raw)
		if vm.Text == "" {
			vm.Raw = raw
		}
	default:
		vm.Raw = raw
	}

	if pretty := prettyJSON(raw); pretty != "" {
		vm.Pretty = pretty
	} else {
		vm.Pretty = raw
	}
	return vm, nil
}

// decodeText accepts either a bare JSON string or a {body: "..."} object.
func decodeText(raw string) string {
	var s string
	if err := json.Unmarshal([]byte(raw), &s); err == nil {
		return s
	}
	var obj struct {
		Body string `json:"body"`
	}
	if err := json.Unmarshal([]byte(raw), &obj); err == nil {
		return obj.Body
	}
	return ""
}

func prettyJSON(raw string) string {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return ""
	}
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return ""
	}
	return string(out)
}
