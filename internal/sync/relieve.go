package sync

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	id "kindred/pkg/domain"
	dErrors "kindred/pkg/domain-errors"
)

// Relieve detaches a dependent from its family head and persists the result
// with the same ordering discipline as Save: the dependent commits first so a
// failure never leaves the SPOC pointing at an entry that was not stamped.
func (s *Service) Relieve(ctx context.Context, tenantID id.TenantID, memberID id.MemberID) (*Result, error) {
	res, err := s.relieve(ctx, tenantID, memberID)
	if err != nil {
		s.toast("Failed to relieve member", "error")
	} else {
		s.toast(fmt.Sprintf("%s relieved", res.Member.Name), "success")
	}
	return res, err
}

func (s *Service) relieve(ctx context.Context, tenantID id.TenantID, memberID id.MemberID) (*Result, error) {
	ctx, span := s.tracer.Start(ctx, "sync.Relieve",
		trace.WithAttributes(
			attribute.String("tenant_id", tenantID.String()),
			attribute.String("member_id", memberID.String())))
	defer span.End()

	if tenantID.IsZero() {
		err := dErrors.New(dErrors.CodeBadRequest, "tenant id is required")
		return resultAndErr(failed(StateValidating, err, nil))
	}
	if memberID.IsZero() {
		err := dErrors.New(dErrors.CodeBadRequest, "member id is required")
		return resultAndErr(failed(StateValidating, err, nil))
	}

	population, err := s.store.ListByTenant(ctx, tenantID)
	if err != nil {
		s.countFailure(StateValidating)
		err = dErrors.Wrap(err, dErrors.CodePersistence, "failed to load tenant population")
		return resultAndErr(failed(StateValidating, err, nil))
	}

	plan, err := s.reconciler.Relieve(memberID, population, time.Now().UTC())
	if err != nil {
		s.countFailure(StateReconciling)
		return resultAndErr(failed(StateReconciling, err, nil))
	}

	res := &Result{}
	dep, err := s.store.Update(ctx, plan.Dependent)
	if err != nil {
		s.countFailure(StatePersisting)
		err = dErrors.Wrap(err, dErrors.CodePersistence, "failed to save relieved dependent")
		return resultAndErr(failed(StatePersisting, err, res))
	}
	res.Member = dep

	spoc, err := s.store.Update(ctx, plan.Spoc)
	if err != nil {
		s.countFailure(StatePersisting)
		err = dErrors.Wrap(err, dErrors.CodePersistence, "failed to save family head")
		return resultAndErr(failed(StatePersisting, err, res))
	}
	res.Dependents = append(res.Dependents, spoc)

	if s.metrics != nil {
		s.metrics.DependentsRelieved.Inc()
	}
	s.logger.InfoContext(ctx, "dependent relieved",
		"tenant_id", tenantID,
		"member_id", memberID,
		"spoc_id", spoc.MemberID)

	s.signal(tenantID)
	res.State = StateDone
	return res, nil
}
