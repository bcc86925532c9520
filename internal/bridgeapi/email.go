package bridgeapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"gopkg.in/gomail.v2"
)

type emailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Content string `json:"content"`
}

// emailReceipt sends a receipt as plain text mail. SMTP settings live in
// the local store so the outlet can change them without touching the
// daemon config.
func (s *Server) emailReceipt(c echo.Context) error {
	var payload emailPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse email request", err.Error())
	}
	payload.To = strings.TrimSpace(payload.To)
	if payload.To == "" || !strings.Contains(payload.To, "@") {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Valid recipient address is required", nil)
	}
	if payload.Content == "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Receipt content is required", nil)
	}

	host, found, _ := s.store.GetSetting("smtp.host")
	if !found || host == "" {
		return fail(c, http.StatusConflict, "SMTP_NOT_CONFIGURED", "SMTP is not configured", nil)
	}
	port := int(s.store.GetSettingInt64("smtp.port", 587))
	user, _, _ := s.store.GetSetting("smtp.username")
	pass, _, _ := s.store.GetSetting("smtp.password")
	from, fromSet, _ := s.store.GetSetting("smtp.from")
	if !fromSet || from == "" {
		from = user
	}

	subject := payload.Subject
	if subject == "" {
		subject = "Your receipt"
	}

	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", payload.To)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", payload.Content)

	d := gomail.NewDialer(host, port, user, pass)
	if err := d.DialAndSend(m); err != nil {
		return fail(c, http.StatusBadGateway, "SEND_FAILED", "Failed to send receipt email", err.Error())
	}
	return ok(c, map[string]interface{}{"sent": true, "to": payload.To})
}
