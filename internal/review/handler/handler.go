package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"credverify/internal/review/models"
	id "credverify/pkg/domain"
	dErrors "credverify/pkg/domain-errors"
	"credverify/pkg/platform/httputil"
	"credverify/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

// Service defines the reviewer operations exposed to admins.
type Service interface {
	ListPending(ctx context.Context, filter models.ListFilter) ([]*models.Item, error)
	Get(ctx context.Context, reviewID id.ReviewID) (*models.Item, error)
	Assign(ctx context.Context, reviewID id.ReviewID, reviewer id.ReviewerID) (*models.Item, error)
	Approve(ctx context.Context, reviewID id.ReviewID, reviewer id.ReviewerID, notes string) (*models.Item, error)
	Reject(ctx context.Context, reviewID id.ReviewID, reviewer id.ReviewerID, reason string) (*models.Item, error)
	Escalate(ctx context.Context, reviewID id.ReviewID, reason string) (*models.Item, error)
}

// Handler serves the manual review queue to admins.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handler{service: service, logger: logger}
}

// Register mounts the review routes. The caller applies admin auth.
func (h *Handler) Register(r chi.Router) {
	r.Get("/admin/reviews", h.HandleList)
	r.Get("/admin/reviews/{reviewID}", h.HandleGet)
	r.Post("/admin/reviews/{reviewID}/assign", h.HandleAssign)
	r.Post("/admin/reviews/{reviewID}/approve", h.HandleApprove)
	r.Post("/admin/reviews/{reviewID}/reject", h.HandleReject)
	r.Post("/admin/reviews/{reviewID}/escalate", h.HandleEscalate)
}

// HandleList handles GET /admin/reviews?priority=&limit=.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	filter, err := parseListFilter(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	items, err := h.service.ListPending(ctx, filter)
	if err != nil {
		h.logFailure(ctx, "listing review items failed", "", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromItems(items, requestcontext.Now(ctx)))
}

func parseListFilter(r *http.Request) (models.ListFilter, error) {
	var filter models.ListFilter
	q := r.URL.Query()
	if raw := q.Get("priority"); raw != "" {
		p, err := models.ParsePriority(raw)
		if err != nil {
			return filter, err
		}
		filter.Priority = p
	}
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return filter, dErrors.New(dErrors.CodeBadRequest, "limit must be a non-negative integer")
		}
		filter.Limit = n
	}
	return filter, nil
}

// HandleGet handles GET /admin/reviews/{reviewID}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reviewID, ok := reviewIDParam(w, r)
	if !ok {
		return
	}
	item, err := h.service.Get(ctx, reviewID)
	if err != nil {
		h.logFailure(ctx, "loading review item failed", reviewID.String(), err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromItem(item, requestcontext.Now(ctx)))
}

// HandleAssign handles POST /admin/reviews/{reviewID}/assign.
func (h *Handler) HandleAssign(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reviewID, ok := reviewIDParam(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[AssignRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	item, err := h.service.Assign(ctx, reviewID, req.reviewer)
	h.respond(w, r, "assign", reviewID, item, err)
}

// HandleApprove handles POST /admin/reviews/{reviewID}/approve.
func (h *Handler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reviewID, ok := reviewIDParam(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[ApproveRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	item, err := h.service.Approve(ctx, reviewID, req.reviewer, req.Notes)
	h.respond(w, r, "approve", reviewID, item, err)
}

// HandleReject handles POST /admin/reviews/{reviewID}/reject.
func (h *Handler) HandleReject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reviewID, ok := reviewIDParam(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[RejectRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	item, err := h.service.Reject(ctx, reviewID, req.reviewer, req.Reason)
	h.respond(w, r, "reject", reviewID, item, err)
}

// HandleEscalate handles POST /admin/reviews/{reviewID}/escalate.
func (h *Handler) HandleEscalate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reviewID, ok := reviewIDParam(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[EscalateRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	item, err := h.service.Escalate(ctx, reviewID, req.Reason)
	h.respond(w, r, "escalate", reviewID, item, err)
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, action string, reviewID id.ReviewID, item *models.Item, err error) {
	ctx := r.Context()
	if err != nil {
		h.logFailure(ctx, "review "+action+" failed", reviewID.String(), err)
		httputil.WriteError(w, err)
		return
	}
	h.logger.InfoContext(ctx, "review "+action,
		"request_id", requestcontext.RequestID(ctx),
		"review_id", reviewID.String(),
		"status", item.Status,
	)
	httputil.WriteJSON(w, http.StatusOK, FromItem(item, requestcontext.Now(ctx)))
}

func reviewIDParam(w http.ResponseWriter, r *http.Request) (id.ReviewID, bool) {
	reviewID, err := id.ParseReviewID(chi.URLParam(r, "reviewID"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.ReviewID{}, false
	}
	return reviewID, true
}

func (h *Handler) logFailure(ctx context.Context, msg, reviewID string, err error) {
	level := slog.LevelWarn
	if httputil.StatusFor(dErrors.CodeOf(err)) >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	h.logger.Log(ctx, level, msg,
		"request_id", requestcontext.RequestID(ctx),
		"review_id", reviewID,
		"error", err,
	)
}
