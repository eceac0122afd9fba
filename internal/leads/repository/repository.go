// Package repository persists lead records in Postgres.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("lead not found")

// Webhook delivery states recorded on a lead.
const (
	WebhookStatusPending       = "pending"
	WebhookStatusSuccess       = "success"
	WebhookStatusFailed        = "failed"
	WebhookStatusNotConfigured = "not_configured"
)

// Lead is a stored lead record.
type Lead struct {
	ID              uuid.UUID
	FirstName       string
	LastName        string
	Email           string
	Phone           string
	City            string
	ZipCode         string
	Age             int
	Gender          string
	Campaign        string
	Score           int
	Category        string
	ImageKey        string
	ImageURL        string
	AnalysisJSON    string
	WantsAssessment bool
	MarketingOptIn  bool
	WebhookSent     bool
	WebhookStatus   string
	WebhookResponse *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// CreateLeadParams contains the fields for inserting a new lead.
type CreateLeadParams struct {
	FirstName       string
	LastName        string
	Email           string
	Phone           string
	City            string
	ZipCode         string
	Age             int
	Gender          string
	Campaign        string
	Score           int
	Category        string
	ImageKey        string
	ImageURL        string
	AnalysisJSON    string
	WantsAssessment bool
	MarketingOptIn  bool
	WebhookStatus   string
}

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const leadColumns = `
	id, first_name, last_name, email, phone, city, zip_code, age, gender,
	campaign, score, category, image_key, image_url, analysis_json,
	wants_assessment, marketing_opt_in,
	webhook_sent, webhook_status, webhook_response,
	created_at, updated_at`

func scanLead(row pgx.Row) (Lead, error) {
	var l Lead
	err := row.Scan(
		&l.ID, &l.FirstName, &l.LastName, &l.Email, &l.Phone, &l.City, &l.ZipCode,
		&l.Age, &l.Gender, &l.Campaign, &l.Score, &l.Category,
		&l.ImageKey, &l.ImageURL, &l.AnalysisJSON,
		&l.WantsAssessment, &l.MarketingOptIn,
		&l.WebhookSent, &l.WebhookStatus, &l.WebhookResponse,
		&l.CreatedAt, &l.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, ErrNotFound
	}
	if err != nil {
		return Lead{}, err
	}
	return l, nil
}

// Insert stores a new lead and returns the persisted record.
func (r *Repository) Insert(ctx context.Context, params CreateLeadParams) (Lead, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO leads (
			first_name, last_name, email, phone, city, zip_code, age, gender,
			campaign, score, category, image_key, image_url, analysis_json,
			wants_assessment, marketing_opt_in, webhook_status
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8,
			$9, $10, $11, $12, $13, $14,
			$15, $16, $17
		)
		RETURNING`+leadColumns,
		params.FirstName, params.LastName, params.Email, params.Phone,
		params.City, params.ZipCode, params.Age, params.Gender,
		params.Campaign, params.Score, params.Category,
		params.ImageKey, params.ImageURL, params.AnalysisJSON,
		params.WantsAssessment, params.MarketingOptIn, params.WebhookStatus,
	)
	return scanLead(row)
}

// GetByID fetches a single lead. Returns ErrNotFound when missing.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Lead, error) {
	row := r.pool.QueryRow(ctx, `SELECT`+leadColumns+` FROM leads WHERE id = $1`, id)
	return scanLead(row)
}

// ExistsByEmailOrPhone reports whether a lead with the same email or phone
// already exists. Used for duplicate rejection on submission.
func (r *Repository) ExistsByEmailOrPhone(ctx context.Context, email, phone string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM leads WHERE email = $1 OR phone = $2
		)`, email, phone).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

// UpdateWebhookStatus records the outcome of a CRM webhook delivery attempt.
// Returns ErrNotFound when the lead does not exist.
func (r *Repository) UpdateWebhookStatus(ctx context.Context, id uuid.UUID, sent bool, status, response string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE leads
		SET webhook_sent = $2, webhook_status = $3, webhook_response = $4, updated_at = NOW()
		WHERE id = $1`,
		id, sent, status, response,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListRecent returns the newest leads, capped at limit.
func (r *Repository) ListRecent(ctx context.Context, limit int) ([]Lead, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `SELECT`+leadColumns+` FROM leads ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]Lead, 0, limit)
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, l)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return items, nil
}
