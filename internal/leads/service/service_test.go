package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"scanner_backend/internal/leads/repository"
	"scanner_backend/internal/scheduler"
	"scanner_backend/internal/vision"
	"scanner_backend/platform/apperr"
	"scanner_backend/platform/logger"

	"github.com/google/uuid"
)

type memStore struct {
	leads     map[uuid.UUID]repository.Lead
	insertErr error
}

func newMemStore() *memStore {
	return &memStore{leads: make(map[uuid.UUID]repository.Lead)}
}

func (s *memStore) Insert(_ context.Context, params repository.CreateLeadParams) (repository.Lead, error) {
	if s.insertErr != nil {
		return repository.Lead{}, s.insertErr
	}
	lead := repository.Lead{
		ID:              uuid.New(),
		FirstName:       params.FirstName,
		LastName:        params.LastName,
		Email:           params.Email,
		Phone:           params.Phone,
		City:            params.City,
		ZipCode:         params.ZipCode,
		Age:             params.Age,
		Gender:          params.Gender,
		Campaign:        params.Campaign,
		Score:           params.Score,
		Category:        params.Category,
		ImageKey:        params.ImageKey,
		ImageURL:        params.ImageURL,
		AnalysisJSON:    params.AnalysisJSON,
		WantsAssessment: params.WantsAssessment,
		MarketingOptIn:  params.MarketingOptIn,
		WebhookStatus:   params.WebhookStatus,
	}
	s.leads[lead.ID] = lead
	return lead, nil
}

func (s *memStore) GetByID(_ context.Context, id uuid.UUID) (repository.Lead, error) {
	lead, ok := s.leads[id]
	if !ok {
		return repository.Lead{}, repository.ErrNotFound
	}
	return lead, nil
}

func (s *memStore) ExistsByEmailOrPhone(_ context.Context, email, phone string) (bool, error) {
	for _, l := range s.leads {
		if l.Email == email || l.Phone == phone {
			return true, nil
		}
	}
	return false, nil
}

func (s *memStore) ListRecent(_ context.Context, limit int) ([]repository.Lead, error) {
	out := make([]repository.Lead, 0, len(s.leads))
	for _, l := range s.leads {
		out = append(out, l)
	}
	return out, nil
}

type memStorage struct {
	uploads  map[string][]byte
	uploadOK bool
}

func newMemStorage() *memStorage {
	return &memStorage{uploads: make(map[string][]byte), uploadOK: true}
}

func (m *memStorage) UploadFile(_ context.Context, bucket, fileKey, _ string, reader io.Reader, _ int64) error {
	if !m.uploadOK {
		return fmt.Errorf("upload refused")
	}
	data, _ := io.ReadAll(reader)
	m.uploads[bucket+"/"+fileKey] = data
	return nil
}

func (m *memStorage) DownloadFile(context.Context, string, string) (io.ReadCloser, error) {
	return nil, fmt.Errorf("not implemented")
}

func (m *memStorage) DeleteObject(context.Context, string, string) error   { return nil }
func (m *memStorage) EnsureBucketExists(context.Context, string) error     { return nil }
func (m *memStorage) PublicURL(bucket, fileKey string) string              { return "https://cdn.test/" + bucket + "/" + fileKey }
func (m *memStorage) GetMaxFileSize() int64                                { return 10 << 20 }

func (m *memStorage) ValidateContentType(contentType string) error {
	if contentType != "image/jpeg" && contentType != "image/png" {
		return fmt.Errorf("content type %q is not allowed", contentType)
	}
	return nil
}

func (m *memStorage) ValidateFileSize(size int64) error {
	if size > m.GetMaxFileSize() {
		return fmt.Errorf("file too large")
	}
	return nil
}

type recordingDispatcher struct {
	payloads []scheduler.LeadFollowupPayload
	err      error
}

func (d *recordingDispatcher) DispatchLeadFollowup(_ context.Context, p scheduler.LeadFollowupPayload) error {
	if d.err != nil {
		return d.err
	}
	d.payloads = append(d.payloads, p)
	return nil
}

func validInput() CreateLeadInput {
	return CreateLeadInput{
		FirstName:        "Jane",
		LastName:         "Doe",
		Email:            "jane@example.com",
		Phone:            "+4915790000000",
		City:             "Berlin",
		ZipCode:          "10115",
		Age:              24,
		Gender:           "Female",
		Campaign:         "berlin07",
		AnalysisData:     `{"suitability_score": 81, "market_categorization": {"primary": "Commercial"}}`,
		WantsAssessment:  "true",
		MarketingOptIn:   true,
		Image:            strings.NewReader("fake-image-bytes"),
		ImageSize:        16,
		ImageContentType: "image/jpeg",
		ClientIP:         "203.0.113.7",
		UserAgent:        "Mozilla/5.0",
	}
}

func newTestService(store *memStore, stor *memStorage, disp *recordingDispatcher) *Service {
	return New(store, stor, disp, nil, nil, "lead-images", logger.New("test"))
}

func TestCreateStoresLeadAndDispatchesFollowup(t *testing.T) {
	store := newMemStore()
	stor := newMemStorage()
	disp := &recordingDispatcher{}
	svc := newTestService(store, stor, disp)

	lead, err := svc.Create(context.Background(), validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if lead.Score != 81 || lead.Category != "Commercial" {
		t.Fatalf("lead = %+v", lead)
	}
	if lead.WebhookStatus != repository.WebhookStatusPending {
		t.Fatalf("webhook status = %q", lead.WebhookStatus)
	}
	if !strings.HasPrefix(lead.ImageKey, "jane-at-example-com_") {
		t.Fatalf("image key = %q", lead.ImageKey)
	}
	if lead.ImageURL == "" {
		t.Fatal("expected public image url")
	}

	if len(stor.uploads) != 1 {
		t.Fatalf("uploads = %d", len(stor.uploads))
	}
	if len(disp.payloads) != 1 {
		t.Fatalf("dispatches = %d", len(disp.payloads))
	}
	p := disp.payloads[0]
	if p.LeadID != lead.ID.String() || p.ClientIP != "203.0.113.7" || p.UserAgent != "Mozilla/5.0" {
		t.Fatalf("payload = %+v", p)
	}
}

func TestCreateRejectsDuplicates(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store, newMemStorage(), &recordingDispatcher{})

	if _, err := svc.Create(context.Background(), validInput()); err != nil {
		t.Fatalf("first create: %v", err)
	}

	dup := validInput()
	dup.Image = strings.NewReader("fake-image-bytes")
	_, err := svc.Create(context.Background(), dup)
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestCreateRejectsUnsupportedImageType(t *testing.T) {
	svc := newTestService(newMemStore(), newMemStorage(), &recordingDispatcher{})

	input := validInput()
	input.ImageContentType = "image/gif"
	_, err := svc.Create(context.Background(), input)
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateFailsWhenUploadFails(t *testing.T) {
	store := newMemStore()
	stor := newMemStorage()
	stor.uploadOK = false
	disp := &recordingDispatcher{}
	svc := newTestService(store, stor, disp)

	_, err := svc.Create(context.Background(), validInput())
	if !apperr.Is(err, apperr.KindInternal) {
		t.Fatalf("expected internal error, got %v", err)
	}
	if len(store.leads) != 0 {
		t.Fatal("lead must not be stored when the photo upload fails")
	}
	if len(disp.payloads) != 0 {
		t.Fatal("no followup expected")
	}
}

func TestCreateSurvivesDispatchFailure(t *testing.T) {
	store := newMemStore()
	disp := &recordingDispatcher{err: fmt.Errorf("queue down")}
	svc := newTestService(store, newMemStorage(), disp)

	lead, err := svc.Create(context.Background(), validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, ok := store.leads[lead.ID]; !ok {
		t.Fatal("lead should be stored despite dispatch failure")
	}
}

func TestGetLeadNotFound(t *testing.T) {
	svc := newTestService(newMemStore(), newMemStorage(), &recordingDispatcher{})

	_, err := svc.GetLead(context.Background(), uuid.New())
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

type stubAnalyzer struct {
	result vision.Analysis
	calls  int
}

func (a *stubAnalyzer) Analyze(_ context.Context, _ []byte, _ string) vision.Analysis {
	a.calls++
	return a.result
}

func TestAnalyzePhoto(t *testing.T) {
	analyzer := &stubAnalyzer{result: vision.Analysis{SuitabilityScore: 82}}
	svc := New(newMemStore(), newMemStorage(), &recordingDispatcher{}, nil, analyzer, "lead-images", logger.New("test"))

	analysis, err := svc.AnalyzePhoto(context.Background(), []byte("img"), "image/jpeg")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if analysis.SuitabilityScore != 82 || analyzer.calls != 1 {
		t.Fatalf("analysis = %+v, calls = %d", analysis, analyzer.calls)
	}

	_, err = svc.AnalyzePhoto(context.Background(), []byte("img"), "image/gif")
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAnalyzePhotoWithoutAnalyzer(t *testing.T) {
	svc := New(newMemStore(), newMemStorage(), &recordingDispatcher{}, nil, nil, "lead-images", logger.New("test"))

	analysis, err := svc.AnalyzePhoto(context.Background(), []byte("img"), "image/jpeg")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if analysis.SuitabilityScore != vision.MinimumScore {
		t.Fatalf("score = %d", analysis.SuitabilityScore)
	}
	if analysis.MarketCategorization.Primary != vision.CategoryUnknown {
		t.Fatalf("category = %q", analysis.MarketCategorization.Primary)
	}
}

func TestCreateStripsHTMLFromTextFields(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store, newMemStorage(), &recordingDispatcher{})

	input := validInput()
	input.FirstName = "<script>alert(1)</script>Jane"
	input.City = "Berlin<img src=x>"

	lead, err := svc.Create(context.Background(), input)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if lead.FirstName != "alert(1)Jane" {
		t.Fatalf("first name = %q", lead.FirstName)
	}
	if lead.City != "Berlin" {
		t.Fatalf("city = %q", lead.City)
	}
}
