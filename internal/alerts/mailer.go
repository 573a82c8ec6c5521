package alerts

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
)

type mailerConfig struct {
	APIKey string
	From   string
	APIURL string
}

var mailCfg mailerConfig

// ConfigureMailerFromEnv loads mailer config from environment.
// Required: MAIL_API_KEY; optional: MAIL_FROM, MAIL_API_URL.
func ConfigureMailerFromEnv() error {
	mailCfg = mailerConfig{
		APIKey: os.Getenv("MAIL_API_KEY"),
		From:   os.Getenv("MAIL_FROM"),
		APIURL: os.Getenv("MAIL_API_URL"),
	}
	if mailCfg.APIURL == "" {
		mailCfg.APIURL = "https://api.useplunk.com/v1/send"
	}
	if mailCfg.APIKey == "" {
		return fmt.Errorf("mailer not configured: set MAIL_API_KEY")
	}
	return nil
}

type mailSendBody struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
	From    string `json:"from,omitempty"`
	Reply   string `json:"reply,omitempty"`
}

// SendEmail performs the HTTP request to the mail API. When no API key is
// configured the message is logged instead, so checkout flows keep working
// in development.
func SendEmail(to, subject, body string) error {
	if mailCfg.APIKey == "" {
		if err := ConfigureMailerFromEnv(); err != nil {
			log.Printf("[alerts] mail (unconfigured) to=%s subject=%q", to, subject)
			return nil
		}
	}

	payload := mailSendBody{
		To:      to,
		Subject: subject,
		Body:    body,
		From:    mailCfg.From,
		Reply:   os.Getenv("MAIL_REPLY_TO"),
	}
	b, _ := json.Marshal(payload)
	req, err := http.NewRequest(http.MethodPost, mailCfg.APIURL, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+mailCfg.APIKey)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errMsg string
		if b, readErr := io.ReadAll(resp.Body); readErr == nil && len(b) > 0 {
			errMsg = string(b)
		}
		return fmt.Errorf("mail send failed: status=%d body=%s", resp.StatusCode, errMsg)
	}
	return nil
}
