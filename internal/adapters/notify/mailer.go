// Package notify e-mails report links through a Resend-compatible HTTP API.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/Jetstb21/Icould--B-SATO-SHI/pkg/logger"
	"github.com/Jetstb21/Icould--B-SATO-SHI/pkg/metrics"
)

const (
	Subject        = "Your Satoshi Comparison Report"
	defaultTimeout = 10 * time.Second
	maxErrorBody   = 4 << 10
)

var body = template.Must(template.New("report").Parse(`<h2>Hi {{.Name}},</h2>
<p>Your report is ready.</p>
<p><a href="{{.ReportURL}}">Download / View your PDF</a></p>
<p>Keep hacking,<br/>Could I Be Satoshi?</p>
`))

// Report is one report notification.
type Report struct {
	To        string `json:"to"`
	Name      string `json:"name"`
	ReportURL string `json:"report_url"`
}

// Validate checks the recipient and the link.
func (r Report) Validate() error {
	if strings.TrimSpace(r.To) == "" || strings.TrimSpace(r.ReportURL) == "" {
		return ErrMissingFields
	}
	if _, err := mail.ParseAddress(r.To); err != nil {
		return fmt.Errorf("%w: invalid recipient: %v", ErrMissingFields, err)
	}
	return nil
}

type message struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// Mailer posts messages to the mail API.
type Mailer struct {
	url    string
	key    string
	from   string
	http   *http.Client
	logger logger.Logger
}

// Option configures a Mailer.
type Option func(*Mailer)

// WithHTTPClient replaces the transport.
func WithHTTPClient(c *http.Client) Option {
	return func(m *Mailer) {
		if c != nil {
			m.http = c
		}
	}
}

// WithLogger sets the mailer logger.
func WithLogger(l logger.Logger) Option {
	return func(m *Mailer) {
		if l != nil {
			m.logger = l
		}
	}
}

// NewMailer creates a mailer for the API at url authenticated with key.
func NewMailer(url, key, from string, opts ...Option) *Mailer {
	m := &Mailer{
		url:    url,
		key:    key,
		from:   from,
		http:   &http.Client{Timeout: defaultTimeout},
		logger: logger.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Render returns the HTML body for r.
func Render(r Report) (string, error) {
	name := strings.TrimSpace(r.Name)
	if name == "" {
		name = "there"
	}
	var buf bytes.Buffer
	if err := body.Execute(&buf, Report{Name: name, ReportURL: r.ReportURL}); err != nil {
		return "", fmt.Errorf("render mail: %w", err)
	}
	return buf.String(), nil
}

// Send delivers r.
func (m *Mailer) Send(ctx context.Context, r Report) error {
	const op = "notify.Send"

	if err := r.Validate(); err != nil {
		metrics.RecordReportSent("invalid")
		return err
	}
	if m.key == "" {
		metrics.RecordReportSent("disabled")
		return ErrNotConfigured
	}

	html, err := Render(r)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(message{From: m.from, To: []string{r.To}, Subject: Subject, HTML: html})
	if err != nil {
		return fmt.Errorf("%s: encode: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%s: request: %w", op, err)
	}
	req.Header.Set("Authorization", "Bearer "+m.key)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.http.Do(req)
	if err != nil {
		metrics.RecordReportSent("error")
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		metrics.RecordReportSent("rejected")
		m.logger.Warn(ctx, "mail api rejected report", logger.Int("status", resp.StatusCode))
		return fmt.Errorf("%w: %s", ErrSend, strings.TrimSpace(string(text)))
	}

	metrics.RecordReportSent("sent")
	return nil
}
