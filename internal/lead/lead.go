// Package lead tracks prospective customers before they become members.
package lead

import (
	"context"
	"time"

	"kindred/internal/member/models"
	id "kindred/pkg/domain"
)

// Status is a lead's position in the funnel.
type Status string

const (
	StatusNew       Status = "New"
	StatusContacted Status = "Contacted"
	StatusQualified Status = "Qualified"
	StatusConverted Status = "Converted"
	StatusLost      Status = "Lost"
)

// Lead is a prospect record. It carries just enough identity to seed a
// member draft on conversion.
type Lead struct {
	ID        id.RecordID `json:"id,omitempty"`
	Name      string      `json:"name"`
	Mobile    string      `json:"mobile,omitempty"`
	Email     string      `json:"email,omitempty"`
	Address   string      `json:"address,omitempty"`
	Source    string      `json:"source,omitempty"`
	Status    Status      `json:"status"`
	Notes     string      `json:"notes,omitempty"`
	CompanyID id.TenantID `json:"companyId"`

	ConvertedMemberID id.MemberID `json:"convertedMemberId,omitempty"`
	ConvertedAt       *time.Time  `json:"convertedAt,omitempty"`
}

// Clone returns a deep copy.
func (l *Lead) Clone() *Lead {
	if l == nil {
		return nil
	}
	out := *l
	if l.ConvertedAt != nil {
		ts := *l.ConvertedAt
		out.ConvertedAt = &ts
	}
	return &out
}

// MemberDraft builds the member payload a conversion feeds into the save
// pipeline. The business id is left for the pipeline to generate.
func (l *Lead) MemberDraft() *models.Member {
	return &models.Member{
		Name:      l.Name,
		Mobile:    l.Mobile,
		Email:     l.Email,
		Address:   l.Address,
		CompanyID: l.CompanyID,
	}
}

// Store is the tenant-scoped persistence surface for leads.
type Store interface {
	Create(ctx context.Context, l *Lead) (*Lead, error)
	Update(ctx context.Context, l *Lead) (*Lead, error)
	FindByID(ctx context.Context, tenantID id.TenantID, leadID id.RecordID) (*Lead, error)
	ListByTenant(ctx context.Context, tenantID id.TenantID) ([]*Lead, error)
}
