package security

import (
	"log/slog"

	"github.com/aryan0dhankhar/wellpulse/internal/domain"
)

// Subject is the caller a scope check runs for
type Subject struct {
	UserID    string
	Role      domain.Role
	CompanyID string
	Sector    string
}

// Resource describes the record being touched. Empty fields are not checked.
type Resource struct {
	Kind      string
	ID        string
	CompanyID string
	Sector    string
	OwnerID   string
}

// ScopeService checks record-level access after the route guard allowed the request
type ScopeService struct {
	logger *slog.Logger
}

func NewScopeService(logger *slog.Logger) *ScopeService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ScopeService{logger: logger}
}

// ValidateAccess allows admins everything. Managers are held to their company
// and sector (an empty resource sector is company-wide). Employees are held to
// their company and to records they own.
func (s *ScopeService) ValidateAccess(sub Subject, res Resource) error {
	if sub.Role == domain.RoleAdmin {
		return nil
	}

	reason := ""
	switch {
	case res.CompanyID != "" && res.CompanyID != sub.CompanyID:
		reason = "company"
	case sub.Role == domain.RoleManager && res.Sector != "" && res.Sector != sub.Sector:
		reason = "sector"
	case sub.Role == domain.RoleEmployee && res.OwnerID != "" && res.OwnerID != sub.UserID:
		reason = "owner"
	}
	if reason == "" {
		return nil
	}

	s.logger.Warn("resource access denied",
		slog.String("user_id", sub.UserID),
		slog.String("resource_type", res.Kind),
		slog.String("resource_id", res.ID),
		slog.String("reason", reason),
	)
	return domain.Forbidden("access denied: " + res.Kind + " is outside your " + reason)
}
