package delivery

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	conversionsAPIVersion = "v19.0"
	conversionsTimeout    = 10 * time.Second
)

// ConversionsConfig provides Meta Conversions API credentials.
type ConversionsConfig interface {
	GetMetaAccessToken() string
	GetMetaPixelID() string
	IsConversionsEnabled() bool
}

// ConversionEvent carries the lead attributes reported to Meta.
type ConversionEvent struct {
	Email     string
	Phone     string
	FirstName string
	LastName  string
	City      string
	ZipCode   string
	ClientIP  string
	UserAgent string
	Campaign  string
	Score     int
}

// ConversionsClient sends server-side Lead events to the Meta Conversions API.
type ConversionsClient struct {
	cfg     ConversionsConfig
	client  *http.Client
	baseURL string
}

// NewConversionsClient creates a client against the public Graph API.
func NewConversionsClient(cfg ConversionsConfig) *ConversionsClient {
	return &ConversionsClient{
		cfg:     cfg,
		client:  &http.Client{Timeout: conversionsTimeout},
		baseURL: "https://graph.facebook.com",
	}
}

// hashIdentifier normalizes and hashes PII per the Conversions API contract:
// trimmed, lowercased, SHA-256 hex.
func hashIdentifier(value string) string {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if normalized == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

type conversionUserData struct {
	Email           []string `json:"em,omitempty"`
	Phone           []string `json:"ph,omitempty"`
	FirstName       []string `json:"fn,omitempty"`
	LastName        []string `json:"ln,omitempty"`
	City            []string `json:"ct,omitempty"`
	ZipCode         []string `json:"zp,omitempty"`
	ClientIPAddress string   `json:"client_ip_address,omitempty"`
	ClientUserAgent string   `json:"client_user_agent,omitempty"`
}

type conversionEventBody struct {
	EventName    string             `json:"event_name"`
	EventTime    int64              `json:"event_time"`
	ActionSource string             `json:"action_source"`
	UserData     conversionUserData `json:"user_data"`
	CustomData   map[string]any     `json:"custom_data,omitempty"`
}

type conversionRequest struct {
	Data []conversionEventBody `json:"data"`
}

// Send reports a Lead event. Returns a uniform Result; the caller treats
// conversion reporting as fire-and-forget.
func (c *ConversionsClient) Send(ctx context.Context, event ConversionEvent) Result {
	if !c.cfg.IsConversionsEnabled() {
		return Result{Body: "conversions api not configured"}
	}

	hashed := func(v string) []string {
		if h := hashIdentifier(v); h != "" {
			return []string{h}
		}
		return nil
	}

	reqBody := conversionRequest{
		Data: []conversionEventBody{{
			EventName:    "Lead",
			EventTime:    time.Now().Unix(),
			ActionSource: "website",
			UserData: conversionUserData{
				Email:           hashed(event.Email),
				Phone:           hashed(event.Phone),
				FirstName:       hashed(event.FirstName),
				LastName:        hashed(event.LastName),
				City:            hashed(event.City),
				ZipCode:         hashed(event.ZipCode),
				ClientIPAddress: event.ClientIP,
				ClientUserAgent: event.UserAgent,
			},
			CustomData: map[string]any{
				"campaign":          event.Campaign,
				"suitability_score": event.Score,
			},
		}},
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return Result{Body: truncateDiagnostic("payload encoding failed: " + err.Error())}
	}

	url := fmt.Sprintf("%s/%s/%s/events?access_token=%s",
		c.baseURL, conversionsAPIVersion, c.cfg.GetMetaPixelID(), c.cfg.GetMetaAccessToken())

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Result{Body: truncateDiagnostic("request build failed: " + err.Error())}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
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
