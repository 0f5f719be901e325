package handler

import (
	"strings"
	"time"

	"kindred/internal/member/models"
	memsync "kindred/internal/sync"
	dErrors "kindred/pkg/domain-errors"
)

// SaveMemberRequest is the HTTP request body for POST /tenants/{id}/members.
type SaveMemberRequest struct {
	Member *models.Member `json:"member"`

	// Resolution applies when a previous attempt reported duplicates:
	// "create" or "merge". Empty aborts on collision.
	Resolution  string `json:"resolution,omitempty"`
	MergeTarget string `json:"mergeTarget,omitempty"`

	parsedResolution memsync.Resolution
}

// Validate validates and parses the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *SaveMemberRequest) Validate() error {
	if r == nil || r.Member == nil {
		return dErrors.New(dErrors.CodeBadRequest, "member is required")
	}

	switch memsync.Resolution(strings.TrimSpace(r.Resolution)) {
	case memsync.ResolutionAbort:
		r.parsedResolution = memsync.ResolutionAbort
	case memsync.ResolutionCreateAnyway:
		r.parsedResolution = memsync.ResolutionCreateAnyway
	case memsync.ResolutionMerge:
		r.parsedResolution = memsync.ResolutionMerge
	default:
		return dErrors.New(dErrors.CodeValidation, "resolution must be empty, \"create\", or \"merge\"")
	}

	if r.MergeTarget != "" && r.parsedResolution != memsync.ResolutionMerge {
		return dErrors.New(dErrors.CodeValidation, "mergeTarget requires resolution \"merge\"")
	}
	return nil
}

// ParsedResolution returns the validated duplicate resolution.
func (r *SaveMemberRequest) ParsedResolution() memsync.Resolution {
	return r.parsedResolution
}

// ScheduleMessageRequest is the body for POST /tenants/{id}/messages.
type ScheduleMessageRequest struct {
	Message string `json:"message"`
	Date    string `json:"date"`
}

// Validate checks the message and its calendar day.
func (r *ScheduleMessageRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Message = strings.TrimSpace(r.Message)
	if r.Message == "" {
		return dErrors.New(dErrors.CodeValidation, "message is required")
	}
	if _, err := time.Parse("2006-01-02", r.Date); err != nil {
		return dErrors.New(dErrors.CodeValidation, "date must be YYYY-MM-DD")
	}
	return nil
}

// SaveMemberResponse is the success payload for a save or relieve.
type SaveMemberResponse struct {
	State      string           `json:"state"`
	Member     *models.Member   `json:"member,omitempty"`
	Dependents []*models.Member `json:"dependents,omitempty"`
}

// DuplicateResponse reports a halted save with its candidates.
type DuplicateResponse struct {
	State      string           `json:"state"`
	FailedAt   string           `json:"failedAt"`
	Error      string           `json:"error"`
	Duplicates []*models.Member `json:"duplicates"`
}

// FromResult shapes a completed pipeline result for the wire.
func FromResult(res *memsync.Result) SaveMemberResponse {
	return SaveMemberResponse{
		State:      string(res.State),
		Member:     res.Member,
		Dependents: res.Dependents,
	}
}

// FromDuplicateResult shapes a duplicate-halted save for the wire.
func FromDuplicateResult(res *memsync.Result) DuplicateResponse {
	return DuplicateResponse{
		State:      string(res.State),
		FailedAt:   string(res.FailedAt),
		Error:      string(dErrors.CodeDuplicate),
		Duplicates: res.Duplicates,
	}
}
