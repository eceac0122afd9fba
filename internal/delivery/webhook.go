package delivery

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"
)

const (
	webhookTimeout = 10 * time.Second
	userAgent      = "ModelScanner/1.0"
)

// WebhookPayload is the contract the downstream CRM expects. Field values
// are strings because the receiving system treats everything as text.
type WebhookPayload struct {
	Campaign    string `json:"campaign"`
	Email       string `json:"email"`
	Telephone   string `json:"telephone"`
	Address     string `json:"address"`
	FirstName   string `json:"firstname"`
	LastName    string `json:"lastname"`
	Image       string `json:"image"`
	AnalyticsID string `json:"analyticsid"`
	Age         string `json:"age"`
	Gender      string `json:"gender"`
	OptIn       string `json:"opt_in"`
}

// NewWebhookPayload maps lead fields into the CRM contract.
func NewWebhookPayload(campaign, email, phone, city, zip, firstName, lastName, imageURL string, age int, gender string, optIn bool) WebhookPayload {
	genderCode := "F"
	if gender == "Male" {
		genderCode = "M"
	}
	optInStr := "false"
	if optIn {
		optInStr = "true"
	}
	return WebhookPayload{
		Campaign:    campaign,
		Email:       email,
		Telephone:   phone,
		Address:     fmt.Sprintf("%s, %s", city, zip),
		FirstName:   firstName,
		LastName:    lastName,
		Image:       imageURL,
		AnalyticsID: "",
		Age:         strconv.Itoa(age),
		Gender:      genderCode,
		OptIn:       optInStr,
	}
}

// WebhookSender posts lead payloads to the configured CRM endpoint.
type WebhookSender struct {
	client *http.Client
}

// NewWebhookSender creates a sender with the delivery timeout applied.
func NewWebhookSender() *WebhookSender {
	return &WebhookSender{
		client: &http.Client{Timeout: webhookTimeout},
	}
}

// Send posts the payload and returns a uniform Result. Network and protocol
// failures are reported through the Result, never as an error: the caller
// persists the outcome either way.
func (s *WebhookSender) Send(ctx context.Context, url string, payload WebhookPayload) Result {
	body, err := json.Marshal(payload)
	if err != nil {
		return Result{Body: truncateDiagnostic("payload encoding failed: " + err.Error())}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Result{Body: truncateDiagnostic("request build failed: " + err.Error())}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return Result{Body: truncateDiagnostic(classifyTransportError(err))}
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	return Result{
		Success:    resp.StatusCode < 300,
		StatusCode: resp.StatusCode,
		Body:       truncateDiagnostic(string(respBody)),
	}
}

// classifyTransportError maps transport failures onto stable diagnostic
// prefixes so operators can group failures without parsing Go error chains.
func classifyTransportError(err error) string {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "Timeout: " + err.Error()
	}

	var tlsErr *tls.CertificateVerificationError
	if errors.As(err, &tlsErr) {
		return "SSL Error: " + err.Error()
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return "Connection Error: " + err.Error()
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return "Timeout: " + err.Error()
	}

	return "Unexpected Error: " + err.Error()
}
