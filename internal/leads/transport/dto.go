// Package transport defines the HTTP request and response shapes for the
// leads API.
package transport

import (
	"time"

	"scanner_backend/internal/delivery"
	"scanner_backend/internal/leads/repository"
)

// SubmitLeadRequest is the multipart form a scanner client submits. The photo
// file travels alongside it under the "photo" field.
type SubmitLeadRequest struct {
	FirstName       string `form:"first_name" validate:"required,max=100"`
	LastName        string `form:"last_name" validate:"required,max=100"`
	Email           string `form:"email" validate:"required,email"`
	Phone           string `form:"phone" validate:"required,max=32"`
	City            string `form:"city" validate:"required,max=100"`
	ZipCode         string `form:"zip_code" validate:"required,max=16"`
	Age             int    `form:"age" validate:"required,gte=16,lte=99"`
	Gender          string `form:"gender" validate:"required,oneof=Male Female Other"`
	Campaign        string `form:"campaign" validate:"required,max=100"`
	AnalysisData    string `form:"analysis_data"`
	WantsAssessment string `form:"wants_assessment"`
	MarketingOptIn  bool   `form:"marketing_opt_in"`
}

// LeadResponse is the public representation of a stored lead.
type LeadResponse struct {
	ID              string    `json:"id"`
	FirstName       string    `json:"firstName"`
	LastName        string    `json:"lastName"`
	Email           string    `json:"email"`
	Phone           string    `json:"phone"`
	City            string    `json:"city"`
	ZipCode         string    `json:"zipCode"`
	Age             int       `json:"age"`
	Gender          string    `json:"gender"`
	Campaign        string    `json:"campaign"`
	Score           int       `json:"score"`
	Category        string    `json:"category"`
	ImageURL        string    `json:"imageUrl"`
	WantsAssessment bool      `json:"wantsAssessment"`
	MarketingOptIn  bool      `json:"marketingOptIn"`
	WebhookStatus   string    `json:"webhookStatus"`
	CreatedAt       time.Time `json:"createdAt"`
}

// ToLeadResponse maps a repository lead onto the public shape.
func ToLeadResponse(lead repository.Lead) LeadResponse {
	return LeadResponse{
		ID:              lead.ID.String(),
		FirstName:       lead.FirstName,
		LastName:        lead.LastName,
		Email:           lead.Email,
		Phone:           lead.Phone,
		City:            lead.City,
		ZipCode:         lead.ZipCode,
		Age:             lead.Age,
		Gender:          lead.Gender,
		Campaign:        lead.Campaign,
		Score:           lead.Score,
		Category:        lead.Category,
		ImageURL:        lead.ImageURL,
		WantsAssessment: lead.WantsAssessment,
		MarketingOptIn:  lead.MarketingOptIn,
		WebhookStatus:   lead.WebhookStatus,
		CreatedAt:       lead.CreatedAt,
	}
}

// DeliveryResultResponse reports the outcome of a webhook attempt.
type DeliveryResultResponse struct {
	Success    bool   `json:"success"`
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body"`
}

// ToDeliveryResultResponse maps a delivery result onto the public shape.
func ToDeliveryResultResponse(result delivery.Result) DeliveryResultResponse {
	return DeliveryResultResponse{
		Success:    result.Success,
		StatusCode: result.StatusCode,
		Body:       result.Body,
	}
}
