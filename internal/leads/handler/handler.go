// Package handler exposes the leads HTTP API.
package handler

import (
	"io"
	"net/http"
	"strconv"

	"scanner_backend/internal/leads/service"
	"scanner_backend/internal/leads/transport"
	"scanner_backend/platform/httpkit"
	"scanner_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgPhotoRequired    = "photo is required"
)

type Handler struct {
	svc *service.Service
	val *validator.Validator
}

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes mounts the leads endpoints on the given group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, submitLimiter gin.HandlerFunc) {
	leads := rg.Group("/leads")
	leads.POST("", submitLimiter, h.Submit)
	leads.GET("", h.List)
	leads.GET("/:id", h.GetByID)
	leads.POST("/:id/webhook/retry", h.RetryWebhook)

	rg.POST("/analyze", h.Analyze)
	rg.GET("/webhook/test", h.TestWebhook)
}

// Submit accepts a multipart lead submission with its photo.
func (h *Handler) Submit(c *gin.Context) {
	var req transport.SubmitLeadRequest
	if err := c.ShouldBind(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgPhotoRequired, nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgPhotoRequired, nil)
		return
	}
	defer file.Close()

	lead, err := h.svc.Create(c.Request.Context(), service.CreateLeadInput{
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		Email:            req.Email,
		Phone:            req.Phone,
		City:             req.City,
		ZipCode:          req.ZipCode,
		Age:              req.Age,
		Gender:           req.Gender,
		Campaign:         req.Campaign,
		AnalysisData:     req.AnalysisData,
		WantsAssessment:  req.WantsAssessment,
		MarketingOptIn:   req.MarketingOptIn,
		Image:            file,
		ImageSize:        fileHeader.Size,
		ImageContentType: fileHeader.Header.Get("Content-Type"),
		ClientIP:         c.ClientIP(),
		UserAgent:        c.Request.UserAgent(),
	})
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	httpkit.JSON(c, http.StatusCreated, transport.ToLeadResponse(lead))
}

// Analyze scores an uploaded photo without creating a lead.
func (h *Handler) Analyze(c *gin.Context) {
	fileHeader, err := c.FormFile("photo")
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgPhotoRequired, nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgPhotoRequired, nil)
		return
	}
	defer file.Close()

	imageBytes, err := io.ReadAll(file)
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgPhotoRequired, nil)
		return
	}

	analysis, err := h.svc.AnalyzePhoto(c.Request.Context(), imageBytes, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	httpkit.OK(c, analysis)
}

// GetByID returns one stored lead.
func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	lead, err := h.svc.GetLead(c.Request.Context(), id)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	httpkit.OK(c, transport.ToLeadResponse(lead))
}

// List returns the newest leads.
func (h *Handler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	leads, err := h.svc.ListRecent(c.Request.Context(), limit)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	out := make([]transport.LeadResponse, 0, len(leads))
	for _, lead := range leads {
		out = append(out, transport.ToLeadResponse(lead))
	}
	httpkit.OK(c, out)
}

// RetryWebhook re-attempts CRM delivery for a lead.
func (h *Handler) RetryWebhook(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	result, err := h.svc.RetryWebhook(c.Request.Context(), id)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	httpkit.OK(c, transport.ToDeliveryResultResponse(result))
}

// TestWebhook sends a sample payload to the configured CRM endpoint.
func (h *Handler) TestWebhook(c *gin.Context) {
	result, err := h.svc.TestWebhook(c.Request.Context())
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	httpkit.OK(c, transport.ToDeliveryResultResponse(result))
}
