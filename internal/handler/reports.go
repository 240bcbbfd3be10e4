package handler

import (
	"log/slog"
	"net/http"

	"github.com/aryan0dhankhar/wellpulse/internal/domain"
	"github.com/aryan0dhankhar/wellpulse/internal/security"
	"github.com/aryan0dhankhar/wellpulse/internal/security/auth"
	"github.com/aryan0dhankhar/wellpulse/internal/service"
	"github.com/aryan0dhankhar/wellpulse/pkg/pagination"
)

// ReportHandler serves reports. Managers only see their company's reports
// for their sector plus the company-wide ones.
type ReportHandler struct {
	svc    *service.ReportService
	scope  *security.ScopeService
	logger *slog.Logger
}

func NewReportHandler(svc *service.ReportService, scope *security.ScopeService, logger *slog.Logger) *ReportHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if scope == nil {
		scope = security.NewScopeService(logger)
	}
	return &ReportHandler{svc: svc, scope: scope, logger: logger}
}

func subject(c *auth.Claims) security.Subject {
	return security.Subject{UserID: c.UserID, Role: c.Role, CompanyID: c.CompanyID, Sector: c.Sector}
}

// load fetches a report and checks the caller may see it
func (h *ReportHandler) load(r *http.Request) (*domain.Report, error) {
	claims, err := caller(r)
	if err != nil {
		return nil, err
	}
	rep, err := h.svc.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		return nil, err
	}
	err = h.scope.ValidateAccess(subject(claims), security.Resource{
		Kind:      "report",
		ID:        rep.ID,
		CompanyID: rep.CompanyID,
		Sector:    rep.Sector,
	})
	if err != nil {
		return nil, err
	}
	return rep, nil
}

// List handles GET /api/reports. Admins may filter by surveyId, companyId
// or status.
func (h *ReportHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, err := caller(r)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	q := r.URL.Query()
	p := pagination.FromQuery(q)

	var page pagination.Page[domain.Report]
	switch {
	case claims.Role != domain.RoleAdmin:
		page, err = h.svc.ListBySector(r.Context(), claims.CompanyID, claims.Sector, p)
	case q.Get("surveyId") != "":
		page, err = h.svc.ListBySurvey(r.Context(), q.Get("surveyId"), p)
	case q.Get("companyId") != "":
		page, err = h.svc.ListByCompany(r.Context(), q.Get("companyId"), p)
	case q.Get("status") != "":
		page, err = h.svc.ListByStatus(r.Context(), domain.ReportStatus(q.Get("status")), p)
	default:
		page, err = h.svc.GetAll(r.Context(), p)
	}
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// Get handles GET /api/reports/{id}
func (h *ReportHandler) Get(w http.ResponseWriter, r *http.Request) {
	rep, err := h.load(r)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// Delete handles DELETE /api/reports/{id}
func (h *ReportHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type generateRequest struct {
	SurveyID string `json:"surveyId"`
	CycleID  string `json:"cycleId"`
}

// Generate handles POST /api/reports/generate. The report is built in the
// background; the response carries it in "generating" state.
func (h *ReportHandler) Generate(w http.ResponseWriter, r *http.Request) {
	claims, err := caller(r)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	var req generateRequest
	if err := decode(r, &req); err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	if req.SurveyID == "" {
		writeMessage(w, http.StatusBadRequest, "surveyId is required")
		return
	}
	rep, err := h.svc.Generate(r.Context(), req.SurveyID, req.CycleID, claims.UserID)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, rep)
}

// Export handles GET /api/reports/{id}/export?format=csv|pdf
func (h *ReportHandler) Export(w http.ResponseWriter, r *http.Request) {
	rep, err := h.load(r)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	switch format := r.URL.Query().Get("format"); format {
	case "", "csv":
		out, err := h.svc.ExportCSV(r.Context(), rep.ID)
		if err != nil {
			writeError(w, h.logger, r, err)
			return
		}
		download(w, "text/csv; charset=utf-8", service.Filename(rep, "csv"), []byte(out))
	case "pdf":
		out, err := h.svc.ExportPDF(r.Context(), rep.ID)
		if err != nil {
			writeError(w, h.logger, r, err)
			return
		}
		download(w, "application/pdf", service.Filename(rep, "pdf"), out)
	default:
		writeMessage(w, http.StatusBadRequest, "format must be csv or pdf")
	}
}

// Stats handles GET /api/reports/stats
func (h *ReportHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
