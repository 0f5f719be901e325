// Package handler exposes the member engine over HTTP. Handlers stay thin:
// decode, validate, delegate, encode.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"kindred/internal/member/models"
	"kindred/internal/notification"
	memsync "kindred/internal/sync"
	id "kindred/pkg/domain"
	dErrors "kindred/pkg/domain-errors"
	"kindred/pkg/platform/httputil"
)

// Syncer runs the save and relieve pipelines.
type Syncer interface {
	Save(ctx context.Context, req memsync.SaveRequest) (*memsync.Result, error)
	Relieve(ctx context.Context, tenantID id.TenantID, memberID id.MemberID) (*memsync.Result, error)
}

// PopulationLister loads a tenant's member snapshot.
type PopulationLister interface {
	ListByTenant(ctx context.Context, tenantID id.TenantID) ([]*models.Member, error)
}

// MessageQueue stores advisor-scheduled custom messages.
type MessageQueue interface {
	Push(ctx context.Context, tenantID id.TenantID, msg notification.CustomMessage) error
	Snapshot(ctx context.Context, tenantID id.TenantID) ([]notification.CustomMessage, error)
}

// Handler wires member endpoints to the engine services.
type Handler struct {
	syncer   Syncer
	members  PopulationLister
	messages MessageQueue
	logger   *slog.Logger
	now      func() time.Time
}

// New constructs a member handler with its dependencies.
func New(syncer Syncer, members PopulationLister, messages MessageQueue, logger *slog.Logger) *Handler {
	return &Handler{
		syncer:   syncer,
		members:  members,
		messages: messages,
		logger:   logger,
		now:      time.Now,
	}
}

// Register mounts member endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/tenants/{tenantID}", func(r chi.Router) {
		r.Get("/members", h.HandleList)
		r.Post("/members", h.HandleSave)
		r.Post("/members/{memberID}/relieve", h.HandleRelieve)
		r.Get("/notifications", h.HandleNotifications)
		r.Post("/messages", h.HandleScheduleMessage)
	})
}

func tenantFromPath(r *http.Request) (id.TenantID, error) {
	return id.ParseTenantID(chi.URLParam(r, "tenantID"))
}

// HandleSave handles POST /tenants/{tenantID}/members.
func (h *Handler) HandleSave(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tenantID, err := tenantFromPath(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[SaveMemberRequest](w, r, h.logger, ctx)
	if !ok {
		return
	}

	res, err := h.syncer.Save(ctx, memsync.SaveRequest{
		TenantID:    tenantID,
		Member:      req.Member,
		Resolution:  req.ParsedResolution(),
		MergeTarget: id.RecordID(req.MergeTarget),
	})
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeDuplicate) {
			// The caller must resolve; hand back the candidates.
			httputil.WriteJSON(w, http.StatusConflict, FromDuplicateResult(res))
			return
		}
		h.logger.ErrorContext(ctx, "member save failed",
			"tenant_id", tenantID,
			"failed_at", res.FailedAt,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromResult(res))
}

// HandleRelieve handles POST /tenants/{tenantID}/members/{memberID}/relieve.
func (h *Handler) HandleRelieve(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tenantID, err := tenantFromPath(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	memberID := id.MemberID(chi.URLParam(r, "memberID"))

	res, err := h.syncer.Relieve(ctx, tenantID, memberID)
	if err != nil {
		h.logger.ErrorContext(ctx, "relieve failed",
			"tenant_id", tenantID,
			"member_id", memberID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromResult(res))
}

// HandleList handles GET /tenants/{tenantID}/members.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tenantID, err := tenantFromPath(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	population, err := h.members.ListByTenant(ctx, tenantID)
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodePersistence, "failed to list members"))
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{"members": population})
}

// HandleNotifications handles GET /tenants/{tenantID}/notifications.
// The feed is computed on demand; it is never persisted.
func (h *Handler) HandleNotifications(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tenantID, err := tenantFromPath(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	population, err := h.members.ListByTenant(ctx, tenantID)
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodePersistence, "failed to list members"))
		return
	}

	custom, err := h.messages.Snapshot(ctx, tenantID)
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodePersistence, "failed to load scheduled messages"))
		return
	}

	feed := notification.Compute(population, custom, h.now())
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"notifications": feed})
}

// HandleScheduleMessage handles POST /tenants/{tenantID}/messages.
func (h *Handler) HandleScheduleMessage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tenantID, err := tenantFromPath(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[ScheduleMessageRequest](w, r, h.logger, ctx)
	if !ok {
		return
	}

	msg := notification.CustomMessage{
		ID:      uuid.NewString(),
		Message: req.Message,
		Date:    req.Date,
	}
	if err := h.messages.Push(ctx, tenantID, msg); err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodePersistence, "failed to schedule message"))
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, msg)
}
