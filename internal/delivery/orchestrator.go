package delivery

import (
	"context"
	"errors"
	"fmt"

	"scanner_backend/internal/email"
	"scanner_backend/internal/leads/repository"
	"scanner_backend/platform/apperr"
	"scanner_backend/platform/logger"

	"github.com/google/uuid"
)

// LeadStore is the subset of the repository the orchestrator needs.
type LeadStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (repository.Lead, error)
	UpdateWebhookStatus(ctx context.Context, id uuid.UUID, sent bool, status, response string) error
}

// WebhookPoster posts a lead payload to a CRM endpoint.
type WebhookPoster interface {
	Send(ctx context.Context, url string, payload WebhookPayload) Result
}

// ConversionSender reports a server-side conversion event.
type ConversionSender interface {
	Send(ctx context.Context, event ConversionEvent) Result
}

// Config provides the delivery targets.
type Config interface {
	GetCRMWebhookURL() string
	GetLeadNotificationEmail() string
	IsEmailEnabled() bool
}

// FollowupParams identifies the lead to process plus the request attribution
// captured at submission time, which the conversion event needs.
type FollowupParams struct {
	LeadID    uuid.UUID
	ClientIP  string
	UserAgent string
}

// Orchestrator runs the followup pipeline for one lead.
type Orchestrator struct {
	store       LeadStore
	webhook     WebhookPoster
	conversions ConversionSender
	mail        email.Sender
	cfg         Config
	log         *logger.Logger
}

func NewOrchestrator(store LeadStore, webhook WebhookPoster, conversions ConversionSender, mail email.Sender, cfg Config, log *logger.Logger) *Orchestrator {
	return &Orchestrator{
		store:       store,
		webhook:     webhook,
		conversions: conversions,
		mail:        mail,
		cfg:         cfg,
		log:         log,
	}
}

// Process runs all followup channels for a stored lead. Channel failures are
// logged and recorded but never abort the remaining channels; only a missing
// lead returns an error, so task retries can find transient load failures.
func (o *Orchestrator) Process(ctx context.Context, params FollowupParams) error {
	lead, err := o.store.GetByID(ctx, params.LeadID)
	if err != nil {
		return fmt.Errorf("load lead %s: %w", params.LeadID, err)
	}

	o.sendConversion(ctx, lead, params)

	if _, err := o.deliverWebhook(ctx, lead); err != nil {
		o.log.Error("webhook status persistence failed", "error", err, "leadId", lead.ID)
	}

	o.sendNotification(ctx, lead)

	return nil
}

// RetryWebhook re-attempts CRM delivery for an existing lead on demand.
func (o *Orchestrator) RetryWebhook(ctx context.Context, leadID uuid.UUID) (Result, error) {
	if o.cfg.GetCRMWebhookURL() == "" {
		return Result{}, apperr.BadRequest("no webhook URL configured")
	}

	lead, err := o.store.GetByID(ctx, leadID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Result{}, apperr.NotFound("lead not found")
		}
		return Result{}, apperr.Wrap(apperr.KindInternal, "failed to load lead", err)
	}

	result, err := o.deliverWebhook(ctx, lead)
	if err != nil {
		return result, apperr.Wrap(apperr.KindInternal, "failed to record webhook outcome", err)
	}
	return result, nil
}

// deliverWebhook sends the CRM payload (or records not_configured) and
// persists the outcome on the lead.
func (o *Orchestrator) deliverWebhook(ctx context.Context, lead repository.Lead) (Result, error) {
	url := o.cfg.GetCRMWebhookURL()
	if url == "" {
		o.log.Info("crm webhook not configured, skipping", "leadId", lead.ID)
		return Result{}, o.store.UpdateWebhookStatus(ctx, lead.ID, false, repository.WebhookStatusNotConfigured, "")
	}

	payload := NewWebhookPayload(
		lead.Campaign, lead.Email, lead.Phone, lead.City, lead.ZipCode,
		lead.FirstName, lead.LastName, lead.ImageURL,
		lead.Age, lead.Gender, lead.MarketingOptIn,
	)

	result := o.webhook.Send(ctx, url, payload)

	status := repository.WebhookStatusFailed
	if result.Success {
		status = repository.WebhookStatusSuccess
	}

	response := result.Body
	if result.StatusCode > 0 {
		response = truncateDiagnostic(fmt.Sprintf("HTTP %d: %s", result.StatusCode, result.Body))
	}

	o.log.ChannelOutcome("crm_webhook", lead.ID.String(), result.Success, response)

	return result, o.store.UpdateWebhookStatus(ctx, lead.ID, true, status, response)
}

func (o *Orchestrator) sendConversion(ctx context.Context, lead repository.Lead, params FollowupParams) {
	result := o.conversions.Send(ctx, ConversionEvent{
		Email:     lead.Email,
		Phone:     lead.Phone,
		FirstName: lead.FirstName,
		LastName:  lead.LastName,
		City:      lead.City,
		ZipCode:   lead.ZipCode,
		ClientIP:  params.ClientIP,
		UserAgent: params.UserAgent,
		Campaign:  lead.Campaign,
		Score:     lead.Score,
	})
	o.log.ChannelOutcome("meta_conversions", lead.ID.String(), result.Success, result.Body)
}

func (o *Orchestrator) sendNotification(ctx context.Context, lead repository.Lead) {
	if !o.cfg.IsEmailEnabled() {
		return
	}

	err := o.mail.SendLeadNotification(ctx, o.cfg.GetLeadNotificationEmail(), email.Notification{
		FirstName: lead.FirstName,
		LastName:  lead.LastName,
		Email:     lead.Email,
		Phone:     lead.Phone,
		City:      lead.City,
		ZipCode:   lead.ZipCode,
		Age:       lead.Age,
		Gender:    lead.Gender,
		Campaign:  lead.Campaign,
		Score:     lead.Score,
		Category:  lead.Category,
		ImageURL:  lead.ImageURL,
		OptIn:     lead.MarketingOptIn,
	})
	o.log.ChannelOutcome("notification_email", lead.ID.String(), err == nil, errDetail(err))
}

func errDetail(err error) string {
	if err == nil {
		return ""
	}
	return truncateDiagnostic(err.Error())
}

// TestWebhook sends a canned payload to the configured CRM endpoint without
// touching any lead record. Used by operators to verify connectivity.
func (o *Orchestrator) TestWebhook(ctx context.Context) (Result, error) {
	url := o.cfg.GetCRMWebhookURL()
	if url == "" {
		return Result{}, apperr.BadRequest("no webhook URL configured")
	}

	payload := NewWebhookPayload(
		"test00", "webhook-test@example.com", "+15550100", "Test City", "00000",
		"Webhook", "Test", "", 30, "Female", false,
	)
	return o.webhook.Send(ctx, url, payload), nil
}
