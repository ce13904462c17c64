package report

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/p-n-ai/risk-snapshot/internal/assessment"
)

const (
	defaultDeliveryTimeout = 30 * time.Second
	maxResponseBytes       = 64 << 10

	// MessageFailed is shown when the delivery service gives no reason.
	MessageFailed = "Failed to send the report. Please try again later."
)

// Delivery is one request to email a report.
type Delivery struct {
	Email           string
	PersonalMessage string
	Result          assessment.Result
	Track           assessment.TrackID
	Guidance        string
	// Attachment is an optional XLSX workbook.
	Attachment []byte
}

// Outcome is what the delivery service reported back.
type Outcome struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// Deliverer sends reports. Implementations report failures through Outcome
// rather than an error.
type Deliverer interface {
	Deliver(ctx context.Context, d Delivery) Outcome
}

// RecipientDigest returns a short stable digest of an email address, used in
// logs in place of the address itself.
func RecipientDigest(email string) string {
	sum := blake2b.Sum256([]byte(strings.ToLower(strings.TrimSpace(email))))
	return hex.EncodeToString(sum[:8])
}

// HTTPDeliverer posts reports as JSON to a delivery endpoint.
type HTTPDeliverer struct {
	url    string
	client *http.Client
}

// HTTPOption configures an HTTPDeliverer.
type HTTPOption func(*HTTPDeliverer)

// WithClient sets the HTTP client used for delivery.
func WithClient(c *http.Client) HTTPOption {
	return func(d *HTTPDeliverer) {
		d.client = c
	}
}

// NewHTTPDeliverer creates a deliverer posting to url.
func NewHTTPDeliverer(url string, opts ...HTTPOption) *HTTPDeliverer {
	d := &HTTPDeliverer{
		url:    url,
		client: &http.Client{Timeout: defaultDeliveryTimeout},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

type deliveryRequest struct {
	Email           string            `json:"email"`
	PersonalMessage string            `json:"personalMessage,omitempty"`
	Result          assessment.Result `json:"result"`
	AssessmentType  string            `json:"assessmentType"`
	Guidance        string            `json:"guidance,omitempty"`
	Attachment      string            `json:"attachment,omitempty"`
}

// Deliver posts d and interprets the response. Any 2xx status counts as
// success unless the body explicitly says otherwise.
func (h *HTTPDeliverer) Deliver(ctx context.Context, d Delivery) Outcome {
	recipient := RecipientDigest(d.Email)
	if err := ValidateEmail(d.Email); err != nil {
		return Outcome{Message: "Please enter a valid email address."}
	}

	body := deliveryRequest{
		Email:           strings.TrimSpace(d.Email),
		PersonalMessage: d.PersonalMessage,
		Result:          d.Result,
		AssessmentType:  string(d.Track),
		Guidance:        d.Guidance,
	}
	if len(d.Attachment) > 0 {
		body.Attachment = base64.StdEncoding.EncodeToString(d.Attachment)
	}

	out, err := h.post(ctx, body)
	if err != nil {
		slog.Error("report delivery failed", "recipient", recipient, "track", d.Track, "error", err)
		return Outcome{Message: MessageFailed}
	}
	if out.Success {
		slog.Info("report delivered", "recipient", recipient, "track", d.Track)
	} else {
		slog.Warn("report delivery rejected", "recipient", recipient, "track", d.Track, "message", out.Message)
	}
	return out
}

func (h *HTTPDeliverer) post(ctx context.Context, body deliveryRequest) (Outcome, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return Outcome{}, fmt.Errorf("marshal delivery: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.url, bytes.NewReader(data))
	if err != nil {
		return Outcome{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return Outcome{}, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return Outcome{}, fmt.Errorf("read response: %w", err)
	}

	var reply struct {
		Success *bool  `json:"success"`
		Message string `json:"message"`
	}
	// Bodies are optional; a non-JSON body only loses the message.
	_ = json.Unmarshal(raw, &reply)

	ok := resp.StatusCode >= 200 && resp.StatusCode < 300
	if ok && reply.Success != nil {
		ok = *reply.Success
	}
	if ok {
		return Outcome{Success: true, Message: reply.Message}, nil
	}
	if reply.Message == "" {
		if resp.StatusCode >= 500 {
			return Outcome{}, fmt.Errorf("delivery service returned %d", resp.StatusCode)
		}
		reply.Message = MessageFailed
	}
	return Outcome{Message: reply.Message}, nil
}

// MockDeliverer records deliveries and returns a fixed outcome. A zero
// MockDeliverer succeeds.
type MockDeliverer struct {
	Outcome *Outcome

	mu         sync.Mutex
	deliveries []Delivery
}

// Deliver implements Deliverer.
func (m *MockDeliverer) Deliver(_ context.Context, d Delivery) Outcome {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deliveries = append(m.deliveries, d)
	if m.Outcome != nil {
		return *m.Outcome
	}
	return Outcome{Success: true}
}

// Deliveries returns every delivery received so far.
func (m *MockDeliverer) Deliveries() []Delivery {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Delivery(nil), m.deliveries...)
}
