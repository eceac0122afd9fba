package service

import (
	"context"
	"errors"
	"io"
	"time"

	"scanner_backend/internal/adapters/storage"
	"scanner_backend/internal/delivery"
	"scanner_backend/internal/leads/repository"
	"scanner_backend/internal/scheduler"
	"scanner_backend/platform/apperr"
	"scanner_backend/internal/vision"
	"scanner_backend/platform/logger"
	"scanner_backend/platform/phone"
	"scanner_backend/platform/sanitize"

	"github.com/google/uuid"
)

// Store is the repository surface the intake service needs.
type Store interface {
	Insert(ctx context.Context, params repository.CreateLeadParams) (repository.Lead, error)
	GetByID(ctx context.Context, id uuid.UUID) (repository.Lead, error)
	ExistsByEmailOrPhone(ctx context.Context, email, phone string) (bool, error)
	ListRecent(ctx context.Context, limit int) ([]repository.Lead, error)
}

// Analyzer scores a photo. Implementations never fail: a degraded analysis
// stands in for any model error.
type Analyzer interface {
	Analyze(ctx context.Context, imageBytes []byte, mimeType string) vision.Analysis
}

// Service handles lead intake and delegates followup work.
type Service struct {
	store        Store
	storage      storage.StorageService
	dispatcher   scheduler.Dispatcher
	orchestrator *delivery.Orchestrator
	analyzer     Analyzer
	bucket       string
	log          *logger.Logger
}

func New(store Store, storageSvc storage.StorageService, dispatcher scheduler.Dispatcher, orchestrator *delivery.Orchestrator, analyzer Analyzer, bucket string, log *logger.Logger) *Service {
	return &Service{
		store:        store,
		storage:      storageSvc,
		dispatcher:   dispatcher,
		orchestrator: orchestrator,
		analyzer:     analyzer,
		bucket:       bucket,
		log:          log,
	}
}

// CreateLeadInput is the validated submission plus the uploaded photo and
// request attribution.
type CreateLeadInput struct {
	FirstName       string
	LastName        string
	Email           string
	Phone           string
	City            string
	ZipCode         string
	Age             int
	Gender          string
	Campaign        string
	AnalysisData    string
	WantsAssessment string
	MarketingOptIn  bool

	Image            io.Reader
	ImageSize        int64
	ImageContentType string

	ClientIP  string
	UserAgent string
}

// Create validates, stores and persists a new lead, then hands followup work
// to the dispatcher. Photo storage failures abort the submission; a failed
// followup dispatch does not, since the lead is already persisted.
func (s *Service) Create(ctx context.Context, input CreateLeadInput) (repository.Lead, error) {
	input.FirstName = sanitize.Text(input.FirstName)
	input.LastName = sanitize.Text(input.LastName)
	input.City = sanitize.Text(input.City)
	input.Campaign = sanitize.Text(input.Campaign)
	input.Phone = phone.NormalizeE164(input.Phone)

	exists, err := s.store.ExistsByEmailOrPhone(ctx, input.Email, input.Phone)
	if err != nil {
		return repository.Lead{}, apperr.Wrap(apperr.KindInternal, "duplicate check failed", err).WithOp("leads.Create")
	}
	if exists {
		return repository.Lead{}, apperr.Conflict("a lead with this email or phone already exists").WithOp("leads.Create")
	}

	if err := s.storage.ValidateContentType(input.ImageContentType); err != nil {
		return repository.Lead{}, apperr.Validation("only JPEG and PNG images are accepted").WithOp("leads.Create")
	}
	if err := s.storage.ValidateFileSize(input.ImageSize); err != nil {
		return repository.Lead{}, apperr.Validation("image exceeds the maximum allowed size").WithOp("leads.Create")
	}

	imageKey := ImageObjectKey(input.Email, input.ImageContentType, time.Now())
	if err := s.storage.UploadFile(ctx, s.bucket, imageKey, input.ImageContentType, input.Image, input.ImageSize); err != nil {
		return repository.Lead{}, apperr.Wrap(apperr.KindInternal, "photo upload failed", err).WithOp("leads.Create")
	}
	imageURL := s.storage.PublicURL(s.bucket, imageKey)

	record := BuildRecord(BuildRecordParams{
		FirstName:       input.FirstName,
		LastName:        input.LastName,
		Email:           input.Email,
		Phone:           input.Phone,
		City:            input.City,
		ZipCode:         input.ZipCode,
		Age:             input.Age,
		Gender:          input.Gender,
		Campaign:        input.Campaign,
		AnalysisData:    input.AnalysisData,
		WantsAssessment: input.WantsAssessment,
		MarketingOptIn:  input.MarketingOptIn,
		ImageKey:        imageKey,
		ImageURL:        imageURL,
	})

	lead, err := s.store.Insert(ctx, record)
	if err != nil {
		return repository.Lead{}, apperr.Wrap(apperr.KindInternal, "failed to store lead", err).WithOp("leads.Create")
	}

	err = s.dispatcher.DispatchLeadFollowup(ctx, scheduler.LeadFollowupPayload{
		LeadID:    lead.ID.String(),
		ClientIP:  input.ClientIP,
		UserAgent: input.UserAgent,
	})
	if err != nil {
		// The lead is stored; followups can be replayed via the retry endpoint.
		s.log.Error("followup dispatch failed", "error", err, "leadId", lead.ID)
	}

	return lead, nil
}

// AnalyzePhoto scores an uploaded photo without persisting anything. It only
// fails on an unacceptable upload; model trouble yields a degraded analysis.
func (s *Service) AnalyzePhoto(ctx context.Context, imageBytes []byte, contentType string) (vision.Analysis, error) {
	if err := s.storage.ValidateContentType(contentType); err != nil {
		return vision.Analysis{}, apperr.Validation("only JPEG and PNG images are accepted").WithOp("leads.AnalyzePhoto")
	}
	if err := s.storage.ValidateFileSize(int64(len(imageBytes))); err != nil {
		return vision.Analysis{}, apperr.Validation("image exceeds the maximum allowed size").WithOp("leads.AnalyzePhoto")
	}

	if s.analyzer == nil {
		return vision.Degraded("analysis not configured"), nil
	}
	return s.analyzer.Analyze(ctx, imageBytes, contentType), nil
}

// RetryWebhook re-runs CRM delivery for an existing lead.
func (s *Service) RetryWebhook(ctx context.Context, id uuid.UUID) (delivery.Result, error) {
	return s.orchestrator.RetryWebhook(ctx, id)
}

// GetLead fetches one lead by id.
func (s *Service) GetLead(ctx context.Context, id uuid.UUID) (repository.Lead, error) {
	lead, err := s.store.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return repository.Lead{}, apperr.NotFound("lead not found")
	}
	return lead, err
}

// ListRecent returns the newest leads.
func (s *Service) ListRecent(ctx context.Context, limit int) ([]repository.Lead, error) {
	return s.store.ListRecent(ctx, limit)
}

// TestWebhook sends a sample payload to the configured CRM endpoint.
func (s *Service) TestWebhook(ctx context.Context) (delivery.Result, error) {
	return s.orchestrator.TestWebhook(ctx)
}
