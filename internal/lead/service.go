package lead

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"kindred/internal/member/store"
	memsync "kindred/internal/sync"
	id "kindred/pkg/domain"
	dErrors "kindred/pkg/domain-errors"
)

// MemberSaver is the slice of the save pipeline a conversion needs.
type MemberSaver interface {
	Save(ctx context.Context, req memsync.SaveRequest) (*memsync.Result, error)
}

// Service manages the lead funnel and conversion into members.
type Service struct {
	leads  Store
	saver  MemberSaver
	logger *slog.Logger
	now    func() time.Time
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithClock overrides the conversion timestamp source. Tests use it.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// New constructs a Service.
func New(leads Store, saver MemberSaver, opts ...Option) *Service {
	s := &Service{leads: leads, saver: saver, logger: slog.Default(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create registers a new lead. Name and tenant are required; everything else
// can be filled in as the prospect is worked.
func (s *Service) Create(ctx context.Context, l *Lead) (*Lead, error) {
	if l == nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "lead payload is required")
	}
	if strings.TrimSpace(l.Name) == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "name is required")
	}
	if l.CompanyID.IsZero() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "tenant id is required")
	}
	draft := l.Clone()
	if draft.Status == "" {
		draft.Status = StatusNew
	}
	stored, err := s.leads.Create(ctx, draft)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodePersistence, "failed to create lead")
	}
	return stored, nil
}

// Update overwrites an existing lead.
func (s *Service) Update(ctx context.Context, l *Lead) (*Lead, error) {
	if l == nil || l.ID.IsZero() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "lead id is required")
	}
	stored, err := s.leads.Update(ctx, l)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "lead not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodePersistence, "failed to update lead")
	}
	return stored, nil
}

// Convert turns a qualified lead into a member by driving its draft through
// the full save pipeline, duplicate check included. On success the lead is
// marked converted and linked to the created member.
func (s *Service) Convert(ctx context.Context, tenantID id.TenantID, leadID id.RecordID, resolution memsync.Resolution) (*memsync.Result, *Lead, error) {
	l, err := s.leads.FindByID(ctx, tenantID, leadID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, dErrors.New(dErrors.CodeNotFound, "lead not found")
		}
		return nil, nil, dErrors.Wrap(err, dErrors.CodePersistence, "failed to load lead")
	}
	if l.Status == StatusConverted {
		return nil, nil, dErrors.Newf(dErrors.CodeConflict, "lead %s is already converted", leadID)
	}

	res, err := s.saver.Save(ctx, memsync.SaveRequest{
		TenantID:   tenantID,
		Member:     l.MemberDraft(),
		Resolution: resolution,
	})
	if err != nil {
		return res, nil, err
	}

	ts := s.now().UTC()
	l.Status = StatusConverted
	l.ConvertedMemberID = res.Member.MemberID
	l.ConvertedAt = &ts
	updated, err := s.leads.Update(ctx, l)
	if err != nil {
		// The member exists; the lead just was not marked. Surface it so
		// the caller can retry the marking.
		return res, nil, dErrors.Wrap(err, dErrors.CodePersistence, "member created but lead not marked converted")
	}

	s.logger.InfoContext(ctx, "lead converted",
		"tenant_id", tenantID,
		"lead_id", leadID,
		"member_id", res.Member.MemberID)
	return res, updated, nil
}
