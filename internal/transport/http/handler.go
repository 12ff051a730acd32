// Package httptransport is the thin HTTP layer over the verified name
// reconciliation service. Handlers validate transport concerns and delegate;
// business rules stay in the service.
package httptransport

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"nameaffirm/internal/platform/metrics"
	"nameaffirm/internal/platform/middleware"
	"nameaffirm/internal/verifiedname"
	"nameaffirm/internal/verifiedname/service"
	dErrors "nameaffirm/pkg/domain-errors"
)

//go:generate mockgen -source=handler.go -destination=mocks/service_mocks.go -package=mocks Service

// Service defines the reconciliation operations the handlers need.
type Service interface {
	CreateVerifiedName(ctx context.Context, req service.CreateRequest) (*verifiedname.VerifiedName, error)
	GetVerifiedName(ctx context.Context, userID string, verifiedOnly bool) (*verifiedname.VerifiedName, error)
	GetVerifiedNameHistory(ctx context.Context, userID string) ([]*verifiedname.VerifiedName, error)
	UpdateVerificationAttemptID(ctx context.Context, userID string, attemptID int64) (*verifiedname.VerifiedName, error)
	UpdateVerifiedNameStatus(ctx context.Context, userID string, status verifiedname.Status, verificationAttemptID, proctoredExamAttemptID *int64) (*verifiedname.VerifiedName, error)
	ShouldUseVerifiedNameForCerts(ctx context.Context, userID string) (bool, error)
	CreateVerifiedNameConfig(ctx context.Context, userID string, update verifiedname.ConfigUpdate) (*verifiedname.Config, error)
}

// Handler handles verified name endpoints.
type Handler struct {
	logger       *slog.Logger
	service      Service
	metrics      *metrics.Metrics
	jwtValidator middleware.JWTValidator
}

// New creates a new Handler.
func New(svc Service, logger *slog.Logger, m *metrics.Metrics, jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{
		logger:       logger,
		service:      svc,
		metrics:      m,
		jwtValidator: jwtValidator,
	}
}

// Register registers the verified name routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	namesRouter := chi.NewRouter()
	namesRouter.Use(middleware.Recovery(h.logger))
	namesRouter.Use(middleware.RequestID)
	namesRouter.Use(middleware.Logger(h.logger))
	namesRouter.Use(middleware.Timeout(30 * time.Second))
	namesRouter.Use(middleware.ContentTypeJSON)
	namesRouter.Use(middleware.LatencyMiddleware(h.metrics))
	namesRouter.Use(middleware.RequireAuth(h.jwtValidator, h.logger))

	namesRouter.Post("/v1/names", h.handleCreateName)
	namesRouter.Get("/v1/names/current", h.handleGetCurrentName)
	namesRouter.Get("/v1/names/history", h.handleGetHistory)
	namesRouter.Post("/v1/names/attempt", h.handleAttachAttempt)
	namesRouter.Post("/v1/names/status", h.handleUpdateStatus)
	namesRouter.Get("/v1/config/certificates", h.handleGetCertsFlag)
	namesRouter.Post("/v1/config", h.handleCreateConfig)

	r.Mount("/", namesRouter)
}

// CreateNameRequest is the POST /v1/names body.
type CreateNameRequest struct {
	VerifiedName           string `json:"verified_name"`
	ProfileName            string `json:"profile_name"`
	VerificationAttemptID  *int64 `json:"verification_attempt_id,omitempty"`
	ProctoredExamAttemptID *int64 `json:"proctored_exam_attempt_id,omitempty"`
	Status                 string `json:"status,omitempty"`
}

func (h *Handler) handleCreateName(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.authedUser(w, r)
	if !ok {
		return
	}

	var req CreateNameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	status := verifiedname.Status("")
	if req.Status != "" {
		parsed, err := verifiedname.ParseStatus(req.Status)
		if err != nil {
			WriteError(w, dErrors.New(dErrors.CodeBadRequest, err.Error()))
			return
		}
		status = parsed
	}

	record, err := h.service.CreateVerifiedName(ctx, service.CreateRequest{
		UserID:                 userID,
		VerifiedName:           req.VerifiedName,
		ProfileName:            req.ProfileName,
		VerificationAttemptID:  req.VerificationAttemptID,
		ProctoredExamAttemptID: req.ProctoredExamAttemptID,
		Status:                 status,
	})
	if err != nil {
		h.writeServiceError(ctx, w, "failed to create verified name", err)
		return
	}
	WriteJSON(w, http.StatusCreated, toVerifiedNameResponse(record))
}

func (h *Handler) handleGetCurrentName(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.authedUser(w, r)
	if !ok {
		return
	}

	verifiedOnly := r.URL.Query().Get("verified") == "true"
	record, err := h.service.GetVerifiedName(ctx, userID, verifiedOnly)
	if err != nil {
		h.writeServiceError(ctx, w, "failed to get verified name", err)
		return
	}
	WriteJSON(w, http.StatusOK, toVerifiedNameResponse(record))
}

func (h *Handler) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.authedUser(w, r)
	if !ok {
		return
	}

	records, err := h.service.GetVerifiedNameHistory(ctx, userID)
	if err != nil {
		h.writeServiceError(ctx, w, "failed to get verified name history", err)
		return
	}
	out := make([]VerifiedNameResponse, 0, len(records))
	for _, record := range records {
		out = append(out, toVerifiedNameResponse(record))
	}
	WriteJSON(w, http.StatusOK, out)
}

// AttachAttemptRequest is the POST /v1/names/attempt body.
type AttachAttemptRequest struct {
	VerificationAttemptID int64 `json:"verification_attempt_id"`
}

func (h *Handler) handleAttachAttempt(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.authedUser(w, r)
	if !ok {
		return
	}

	var req AttachAttemptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	record, err := h.service.UpdateVerificationAttemptID(ctx, userID, req.VerificationAttemptID)
	if err != nil {
		h.writeServiceError(ctx, w, "failed to update verification attempt id", err)
		return
	}
	WriteJSON(w, http.StatusOK, toVerifiedNameResponse(record))
}

// UpdateStatusRequest is the POST /v1/names/status body.
type UpdateStatusRequest struct {
	Status                 string `json:"status"`
	VerificationAttemptID  *int64 `json:"verification_attempt_id,omitempty"`
	ProctoredExamAttemptID *int64 `json:"proctored_exam_attempt_id,omitempty"`
}

func (h *Handler) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.authedUser(w, r)
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	status, err := verifiedname.ParseStatus(req.Status)
	if err != nil {
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, err.Error()))
		return
	}

	record, err := h.service.UpdateVerifiedNameStatus(ctx, userID, status, req.VerificationAttemptID, req.ProctoredExamAttemptID)
	if err != nil {
		h.writeServiceError(ctx, w, "failed to update verified name status", err)
		return
	}
	WriteJSON(w, http.StatusOK, toVerifiedNameResponse(record))
}

func (h *Handler) handleGetCertsFlag(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.authedUser(w, r)
	if !ok {
		return
	}

	value, err := h.service.ShouldUseVerifiedNameForCerts(ctx, userID)
	if err != nil {
		h.writeServiceError(ctx, w, "failed to read certificate flag", err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]bool{"use_verified_name_for_certs": value})
}

// CreateConfigRequest is the POST /v1/config body. Omitted fields carry over
// the previous config row's values.
type CreateConfigRequest struct {
	UseVerifiedNameForCerts *bool `json:"use_verified_name_for_certs,omitempty"`
}

func (h *Handler) handleCreateConfig(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.authedUser(w, r)
	if !ok {
		return
	}

	var req CreateConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	cfg, err := h.service.CreateVerifiedNameConfig(ctx, userID, verifiedname.ConfigUpdate{
		UseVerifiedNameForCerts: req.UseVerifiedNameForCerts,
	})
	if err != nil {
		h.writeServiceError(ctx, w, "failed to create config", err)
		return
	}
	WriteJSON(w, http.StatusCreated, map[string]any{
		"user_id":                     cfg.UserID,
		"use_verified_name_for_certs": cfg.UseVerifiedNameForCerts,
		"created":                     cfg.Created,
	})
}

// authedUser pulls the authenticated user from context. The auth middleware
// guarantees presence; an empty value means broken wiring, not a client
// error.
func (h *Handler) authedUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		h.logger.ErrorContext(r.Context(), "userID missing from context despite auth middleware",
			"request_id", middleware.GetRequestID(r.Context()),
		)
		WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return "", false
	}
	return userID, true
}

func (h *Handler) writeServiceError(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	switch dErrors.CodeOf(err) {
	case dErrors.CodeInternal:
		h.logger.ErrorContext(ctx, msg,
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		WriteError(w, dErrors.New(dErrors.CodeInternal, msg))
	default:
		h.logger.WarnContext(ctx, msg,
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		WriteError(w, err)
	}
}
