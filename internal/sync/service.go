// Package sync drives a member save or relieve end to end: validation,
// duplicate checking, family reconciliation, and ordered persistence.
package sync

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"kindred/internal/family"
	"kindred/internal/member/identity"
	"kindred/internal/member/models"
	"kindred/internal/member/service"
	"kindred/internal/notification"
	"kindred/internal/platform/metrics"
	id "kindred/pkg/domain"
	dErrors "kindred/pkg/domain-errors"
)

// State is the phase a save pipeline reached.
type State string

const (
	StateValidating     State = "validating"
	StateDuplicateCheck State = "duplicate_check"
	StateReconciling    State = "reconciling"
	StatePersisting     State = "persisting"
	StateDone           State = "done"
	StateFailed         State = "failed"
)

// Resolution tells the pipeline what to do when a create collides with
// existing member ids. The zero value aborts the save.
type Resolution string

const (
	// ResolutionAbort fails the save and surfaces the candidates.
	ResolutionAbort Resolution = ""
	// ResolutionCreateAnyway proceeds with a new record sharing the id.
	ResolutionCreateAnyway Resolution = "create"
	// ResolutionMerge folds the draft into an existing record and
	// continues as an update.
	ResolutionMerge Resolution = "merge"
)

// SaveRequest carries one member draft through the pipeline.
type SaveRequest struct {
	TenantID id.TenantID
	Member   *models.Member

	// Resolution applies only when the duplicate check fires.
	Resolution Resolution
	// MergeTarget selects which colliding record to merge into when
	// Resolution is ResolutionMerge. Empty means the first candidate.
	MergeTarget id.RecordID
}

// Result is the terminal value of a pipeline run. On failure FailedAt names
// the phase and Member/Dependents hold whatever was committed before the
// failure, so callers can reconcile partial writes.
type Result struct {
	State      State
	FailedAt   State
	Member     *models.Member
	Dependents []*models.Member
	Duplicates []*models.Member
	Err        error
}

func failed(at State, err error, partial *Result) *Result {
	r := partial
	if r == nil {
		r = &Result{}
	}
	r.State = StateFailed
	r.FailedAt = at
	r.Err = err
	return r
}

// Service wires the store, the family reconciler, and the notification
// signal into one save pipeline.
type Service struct {
	store      MemberStore
	reconciler *family.Reconciler
	logger     *slog.Logger
	metrics    *metrics.Metrics
	tracer     trace.Tracer
	notify     chan<- id.TenantID
	toasts     notification.ToastSink
}

// MemberStore is the persistence surface the orchestrator needs.
type MemberStore interface {
	Create(ctx context.Context, m *models.Member) (*models.Member, error)
	Update(ctx context.Context, m *models.Member) (*models.Member, error)
	ListByTenant(ctx context.Context, tenantID id.TenantID) ([]*models.Member, error)
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

// WithNotify registers the channel the notification worker listens on.
// Sends are non-blocking; a busy worker just recomputes on the next signal.
func WithNotify(ch chan<- id.TenantID) Option {
	return func(s *Service) {
		s.notify = ch
	}
}

// WithToasts registers a sink for user-facing save and relieve outcomes.
func WithToasts(sink notification.ToastSink) Option {
	return func(s *Service) {
		s.toasts = sink
	}
}

// New constructs a Service.
func New(store MemberStore, reconciler *family.Reconciler, opts ...Option) *Service {
	s := &Service{
		store:      store,
		reconciler: reconciler,
		logger:     slog.Default(),
		tracer:     noop.NewTracerProvider().Tracer("kindred/sync"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save runs the full pipeline for one member draft. The error inside the
// Result is also returned so callers can branch without unpacking.
func (s *Service) Save(ctx context.Context, req SaveRequest) (*Result, error) {
	res, err := s.save(ctx, req)
	switch {
	case err == nil:
		s.toast(fmt.Sprintf("%s saved", res.Member.Name), "success")
	case dErrors.HasCode(err, dErrors.CodeDuplicate):
		s.toast("Duplicate member ID detected", "error")
	default:
		s.toast("Failed to save member", "error")
	}
	return res, err
}

func (s *Service) save(ctx context.Context, req SaveRequest) (*Result, error) {
	ctx, span := s.tracer.Start(ctx, "sync.Save",
		trace.WithAttributes(attribute.String("tenant_id", req.TenantID.String())))
	defer span.End()

	draft, err := s.validate(req)
	if err != nil {
		s.countFailure(StateValidating)
		return resultAndErr(failed(StateValidating, err, nil))
	}

	population, err := s.store.ListByTenant(ctx, req.TenantID)
	if err != nil {
		s.countFailure(StateValidating)
		err = dErrors.Wrap(err, dErrors.CodePersistence, "failed to load tenant population")
		return resultAndErr(failed(StateValidating, err, nil))
	}

	var old *models.Member
	if !draft.IsNew() {
		old = findByRecordID(population, draft.ID)
	}

	if draft.IsNew() {
		var dups []*models.Member
		draft, old, dups, err = s.checkDuplicates(ctx, req, draft, population)
		if err != nil {
			s.countFailure(StateDuplicateCheck)
			return resultAndErr(failed(StateDuplicateCheck, err, &Result{Duplicates: dups}))
		}
	}

	plan, err := s.reconcile(ctx, old, draft, population)
	if err != nil {
		s.countFailure(StateReconciling)
		return resultAndErr(failed(StateReconciling, err, nil))
	}

	res, err := s.persist(ctx, plan, old == nil)
	if err != nil {
		s.countFailure(StatePersisting)
		return resultAndErr(failed(StatePersisting, err, res))
	}

	s.signal(req.TenantID)
	res.State = StateDone
	return res, nil
}

func (s *Service) validate(req SaveRequest) (*models.Member, error) {
	if req.Member == nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "member payload is required")
	}
	if req.TenantID.IsZero() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "tenant id is required")
	}
	draft := req.Member.Clone()
	if draft.CompanyID.IsZero() {
		draft.CompanyID = req.TenantID
	}
	if draft.CompanyID != req.TenantID {
		return nil, dErrors.New(dErrors.CodeBadRequest, "member belongs to a different tenant")
	}
	if draft.IsNew() {
		if draft.Name == "" {
			return nil, dErrors.New(dErrors.CodeValidation, "name is required for a new member")
		}
		if draft.Mobile == "" {
			return nil, dErrors.New(dErrors.CodeValidation, "mobile is required for a new member")
		}
		if draft.MemberID.IsZero() {
			draft.MemberID = identity.Generate(draft.Name, draft.Address, draft.Mobile)
		}
	}
	return draft, nil
}

// checkDuplicates resolves id collisions for creates. It returns the draft to
// continue with, the record a merge replaced, and the candidate list.
func (s *Service) checkDuplicates(ctx context.Context, req SaveRequest, draft *models.Member, population []*models.Member) (*models.Member, *models.Member, []*models.Member, error) {
	_, span := s.tracer.Start(ctx, "sync.DuplicateCheck")
	defer span.End()

	dups := service.FindDuplicates(draft, population)
	if len(dups) == 0 {
		return draft, nil, nil, nil
	}

	if s.metrics != nil {
		s.metrics.DuplicatesDetected.Inc()
	}
	s.logger.InfoContext(ctx, "duplicate member id detected",
		"tenant_id", draft.CompanyID,
		"member_id", draft.MemberID,
		"candidates", len(dups))

	switch req.Resolution {
	case ResolutionCreateAnyway:
		return draft, nil, dups, nil
	case ResolutionMerge:
		target := dups[0]
		if !req.MergeTarget.IsZero() {
			target = findByRecordID(dups, req.MergeTarget)
			if target == nil {
				return nil, nil, dups, dErrors.Newf(dErrors.CodeBadRequest, "merge target %s is not a duplicate candidate", req.MergeTarget)
			}
		}
		return service.Merge(draft, target), target, dups, nil
	default:
		return nil, nil, dups, dErrors.Newf(dErrors.CodeDuplicate, "member id %s already exists", draft.MemberID)
	}
}

func (s *Service) reconcile(ctx context.Context, old, draft *models.Member, population []*models.Member) (*family.Plan, error) {
	_, span := s.tracer.Start(ctx, "sync.Reconcile")
	defer span.End()
	return s.reconciler.Reconcile(old, draft, population)
}

// persist commits the plan in its required order: dependents first so their
// persisted ids can be bound onto the member's covered entries, then the
// member, then queued updates. A failure returns everything committed so far.
func (s *Service) persist(ctx context.Context, plan *family.Plan, isCreate bool) (*Result, error) {
	ctx, span := s.tracer.Start(ctx, "sync.Persist")
	defer span.End()

	res := &Result{}
	for i, dep := range plan.DependentsToCreate {
		created, err := s.store.Create(ctx, dep)
		if err != nil {
			return res, dErrors.Wrap(err, dErrors.CodePersistence, "failed to create dependent")
		}
		plan.BindCreated(i, created)
		res.Dependents = append(res.Dependents, created)
		if s.metrics != nil {
			s.metrics.DependentsProvisioned.Inc()
		}
	}

	var (
		stored *models.Member
		err    error
	)
	if isCreate {
		stored, err = s.store.Create(ctx, plan.Member)
	} else {
		stored, err = s.store.Update(ctx, plan.Member)
	}
	if err != nil {
		return res, dErrors.Wrap(err, dErrors.CodePersistence, "failed to save member")
	}
	res.Member = stored
	if s.metrics != nil {
		if isCreate {
			s.metrics.MembersCreated.Inc()
		} else {
			s.metrics.MembersUpdated.Inc()
		}
	}

	for _, dep := range plan.DependentsToUpdate {
		updated, err := s.store.Update(ctx, dep)
		if err != nil {
			return res, dErrors.Wrap(err, dErrors.CodePersistence, "failed to update family record")
		}
		res.Dependents = append(res.Dependents, updated)
	}

	s.logger.InfoContext(ctx, "member saved",
		"tenant_id", stored.CompanyID,
		"member_id", stored.MemberID,
		"created", isCreate,
		"dependents_touched", len(res.Dependents))
	return res, nil
}

func (s *Service) signal(tenant id.TenantID) {
	if s.notify == nil {
		return
	}
	select {
	case s.notify <- tenant:
	default:
	}
}

func (s *Service) toast(message, severity string) {
	if s.toasts != nil {
		s.toasts.AddToast(message, severity)
	}
}

func (s *Service) countFailure(phase State) {
	if s.metrics != nil {
		s.metrics.IncrementSavesFailed(string(phase))
	}
}

func resultAndErr(r *Result) (*Result, error) {
	return r, r.Err
}

func findByRecordID(population []*models.Member, recordID id.RecordID) *models.Member {
	for _, m := range population {
		if m.ID == recordID {
			return m
		}
	}
	return nil
}
