package qr

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/eventmate-dev/eventmate/internal/model"
)

// payload is what the check-in scanner reads back: just enough to
// resolve the participant. Unsigned.
type payload struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// DataURL renders a participant's check-in QR code as a base64 PNG data
// URL, ready to embed or email.
func DataURL(p *model.Participant) (string, error) {
	data, err := json.Marshal(payload{ID: p.ID, Name: p.Name, Email: p.Email})
	if err != nil {
		return "", fmt.Errorf("encoding qr payload: %w", err)
	}
	png, err := qrcode.Encode(string(data), qrcode.Medium, 256)
	if err != nil {
		return "", fmt.Errorf("rendering qr code: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
