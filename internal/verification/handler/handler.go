package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"credverify/internal/verification/models"
	"credverify/internal/verification/service"
	id "credverify/pkg/domain"
	dErrors "credverify/pkg/domain-errors"
	"credverify/pkg/platform/audit"
	"credverify/pkg/platform/httputil"
	"credverify/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

// Service defines the orchestrator operations exposed over HTTP.
type Service interface {
	Verify(ctx context.Context, submissionID id.SubmissionID, opts service.VerifyOptions) (*models.OverallVerification, error)
	Status(ctx context.Context, submissionID id.SubmissionID) (*models.OverallVerification, error)
	ListResults(ctx context.Context, submissionID id.SubmissionID, history bool) ([]*models.VerificationResult, error)
}

// AuditTrail reads recorded audit events for a submission.
type AuditTrail interface {
	List(ctx context.Context, subject string) ([]audit.Event, error)
}

// Handler wires verification endpoints to the orchestrator.
type Handler struct {
	service Service
	trail   AuditTrail
	logger  *slog.Logger
}

type Option func(*Handler)

// WithAuditTrail mounts the per-submission audit event view.
func WithAuditTrail(trail AuditTrail) Option {
	return func(h *Handler) {
		h.trail = trail
	}
}

// New constructs a verification handler with its dependencies.
func New(service Service, logger *slog.Logger, opts ...Option) *Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	h := &Handler{service: service, logger: logger}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register mounts the submitter-facing endpoints.
func (h *Handler) Register(r chi.Router) {
	r.Post("/v1/submissions/{submissionID}/verify", h.HandleVerify)
	r.Get("/v1/submissions/{submissionID}/status", h.HandleStatus)
}

// RegisterAdmin mounts the audit views. The caller applies admin auth.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/admin/submissions/{submissionID}/results", h.HandleListResults)
	if h.trail != nil {
		r.Get("/admin/submissions/{submissionID}/audit", h.HandleAuditTrail)
	}
}

// HandleVerify handles POST /v1/submissions/{submissionID}/verify.
// A terminal status answers 200; anything still moving answers 202.
func (h *Handler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	submissionID, err := id.ParseSubmissionID(chi.URLParam(r, "submissionID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[VerifyRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	overall, err := h.service.Verify(ctx, submissionID, req.Options())
	if err != nil {
		h.logFailure(ctx, "verification failed", submissionID, err)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "verification requested",
		"request_id", requestID,
		"submission_id", submissionID.String(),
		"overall_status", overall.Status,
		"force_recheck", req.ForceRecheck,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	status := http.StatusAccepted
	if overall.Status.IsTerminal() {
		status = http.StatusOK
	}
	httputil.WriteJSON(w, status, FromOverall(overall))
}

// HandleStatus handles GET /v1/submissions/{submissionID}/status.
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	submissionID, err := id.ParseSubmissionID(chi.URLParam(r, "submissionID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	overall, err := h.service.Status(ctx, submissionID)
	if err != nil {
		h.logFailure(ctx, "status lookup failed", submissionID, err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromOverall(overall))
}

// HandleListResults handles GET /admin/submissions/{submissionID}/results.
func (h *Handler) HandleListResults(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	submissionID, err := id.ParseSubmissionID(chi.URLParam(r, "submissionID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	history := false
	if raw := r.URL.Query().Get("history"); raw != "" {
		history, err = strconv.ParseBool(raw)
		if err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "history must be a boolean"))
			return
		}
	}
	results, err := h.service.ListResults(ctx, submissionID, history)
	if err != nil {
		h.logFailure(ctx, "listing results failed", submissionID, err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromResults(submissionID, results, history))
}

// HandleAuditTrail handles GET /admin/submissions/{submissionID}/audit.
func (h *Handler) HandleAuditTrail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	submissionID, err := id.ParseSubmissionID(chi.URLParam(r, "submissionID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	events, err := h.trail.List(ctx, submissionID.String())
	if err != nil {
		err = dErrors.Wrap(err, dErrors.CodeInternal, "failed to read audit trail")
		h.logFailure(ctx, "listing audit events failed", submissionID, err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromAuditEvents(submissionID, events))
}

// logFailure keeps client errors at Warn so 4xx noise stays out of alerts.
func (h *Handler) logFailure(ctx context.Context, msg string, submissionID id.SubmissionID, err error) {
	level := slog.LevelWarn
	if httputil.StatusFor(dErrors.CodeOf(err)) >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	h.logger.Log(ctx, level, msg,
		"request_id", requestcontext.RequestID(ctx),
		"submission_id", submissionID.String(),
		"error", err,
	)
}
