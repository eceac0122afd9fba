package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"scanner_backend/internal/delivery"
	"scanner_backend/internal/email"
	"scanner_backend/internal/leads/repository"
	"scanner_backend/platform/logger"

	"github.com/google/uuid"
)

func (s *memStore) UpdateWebhookStatus(_ context.Context, id uuid.UUID, sent bool, status, response string) error {
	lead, ok := s.leads[id]
	if !ok {
		return repository.ErrNotFound
	}
	lead.WebhookSent = sent
	lead.WebhookStatus = status
	lead.WebhookResponse = &response
	s.leads[id] = lead
	return nil
}

type pipelineConfig struct {
	webhookURL string
	pixelID    string
	token      string
}

func (c pipelineConfig) GetCRMWebhookURL() string         { return c.webhookURL }
func (c pipelineConfig) GetLeadNotificationEmail() string { return "" }
func (c pipelineConfig) IsEmailEnabled() bool             { return false }
func (c pipelineConfig) GetMetaAccessToken() string       { return c.token }
func (c pipelineConfig) GetMetaPixelID() string           { return c.pixelID }
func (c pipelineConfig) IsConversionsEnabled() bool       { return c.token != "" }

func TestSubmissionThroughDeliveryPipeline(t *testing.T) {
	var crmCalls int
	crm := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		crmCalls++
		if ua := r.Header.Get("User-Agent"); ua != "ModelScanner/1.0" {
			t.Errorf("user-agent = %q", ua)
		}
		w.Write([]byte(`{"accepted":true}`))
	}))
	defer crm.Close()

	store := newMemStore()
	cfg := pipelineConfig{webhookURL: crm.URL}
	log := logger.New("test")

	orchestrator := delivery.NewOrchestrator(
		store,
		delivery.NewWebhookSender(),
		delivery.NewConversionsClient(cfg),
		email.NoopSender{},
		cfg,
		log,
	)
	svc := New(store, newMemStorage(), &recordingDispatcher{}, orchestrator, nil, "lead-images", log)

	input := validInput()
	input.Email = "a@b.com"
	input.Phone = "+15550100000"
	input.AnalysisData = `{"suitability_score": 40, "market_categorization": {"primary": "Fitness"}}`

	lead, err := svc.Create(context.Background(), input)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if lead.Score != 70 || lead.Category != "Fitness" {
		t.Fatalf("stored lead = score %d category %q", lead.Score, lead.Category)
	}
	if lead.WebhookStatus != repository.WebhookStatusPending {
		t.Fatalf("initial webhook status = %q", lead.WebhookStatus)
	}

	err = orchestrator.Process(context.Background(), delivery.FollowupParams{
		LeadID:    lead.ID,
		ClientIP:  "203.0.113.7",
		UserAgent: "Mozilla/5.0",
	})
	if err != nil {
		t.Fatalf("process: %v", err)
	}

	if crmCalls != 1 {
		t.Fatalf("crm calls = %d", crmCalls)
	}

	final, _ := store.GetByID(context.Background(), lead.ID)
	if !final.WebhookSent || final.WebhookStatus != repository.WebhookStatusSuccess {
		t.Fatalf("final state = sent %v status %q", final.WebhookSent, final.WebhookStatus)
	}
	if final.WebhookResponse == nil || !strings.HasPrefix(*final.WebhookResponse, "HTTP 200") {
		t.Fatalf("response = %v", final.WebhookResponse)
	}
}
