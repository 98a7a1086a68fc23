package models

// WifiCredentials is the structured payload behind a wifi link.
type WifiCredentials struct {
	SSID     string `json:"ssid"`
	Password string `json:"password"`
	Security string `json:"security"` // WPA, WEP, or empty for open networks
}

// VCard is the structured payload behind a vcard link.
type VCard struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Org     string `json:"org"`
	Website string `json:"website"`
}

// WhatsAppPayload is a creation-time-only input: the validation layer turns
// it into a wa.me URL and the stored link is a plain url kind.
type WhatsAppPayload struct {
	Phone string `json:"phone"`
	Msg   string `json:"msg"`
}
