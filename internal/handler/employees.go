package handler

import (
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/aryan0dhankhar/wellpulse/internal/domain"
	"github.com/aryan0dhankhar/wellpulse/internal/service"
	"github.com/aryan0dhankhar/wellpulse/pkg/pagination"
)

// EmployeeHandler adds import/export on top of the employee CRUD
type EmployeeHandler struct {
	*CRUDHandler[domain.Employee]
	svc    *service.EmployeeService
	logger *slog.Logger
}

func NewEmployeeHandler(svc *service.EmployeeService, logger *slog.Logger) *EmployeeHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &EmployeeHandler{
		CRUDHandler: NewCRUDHandler[domain.Employee](svc, logger),
		svc:         svc,
		logger:      logger,
	}
}

// companyParam prefers ?companyId and falls back to the caller's company
func companyParam(r *http.Request) string {
	if c := r.URL.Query().Get("companyId"); c != "" {
		return c
	}
	if claims, err := caller(r); err == nil {
		return claims.CompanyID
	}
	return ""
}

// List handles GET /api/employees with optional companyId and sector filters
func (h *EmployeeHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	p := pagination.FromQuery(q)
	var (
		page pagination.Page[domain.Employee]
		err  error
	)
	switch {
	case q.Get("sector") != "":
		page, err = h.svc.ListBySector(r.Context(), companyParam(r), q.Get("sector"), p)
	case q.Get("companyId") != "":
		page, err = h.svc.ListByCompany(r.Context(), q.Get("companyId"), p)
	default:
		page, err = h.svc.GetAll(r.Context(), p)
	}
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// Import handles POST /api/employees/import. The body is either raw CSV or
// a multipart form with a "file" field.
func (h *EmployeeHandler) Import(w http.ResponseWriter, r *http.Request) {
	var body io.Reader = r.Body
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if strings.HasPrefix(mediaType, "multipart/") {
		file, _, err := r.FormFile("file")
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "missing file field")
			return
		}
		defer file.Close()
		body = file
	}

	result, err := h.svc.ImportCSV(r.Context(), companyParam(r), io.LimitReader(body, 5<<20))
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Export handles GET /api/employees/export?format=csv|xlsx
func (h *EmployeeHandler) Export(w http.ResponseWriter, r *http.Request) {
	companyID := companyParam(r)
	switch format := r.URL.Query().Get("format"); format {
	case "", "csv":
		out, err := h.svc.ExportCSV(r.Context(), companyID)
		if err != nil {
			writeError(w, h.logger, r, err)
			return
		}
		download(w, "text/csv; charset=utf-8", "funcionarios.csv", []byte(out))
	case "xlsx":
		out, err := h.svc.ExportXLSX(r.Context(), companyID)
		if err != nil {
			writeError(w, h.logger, r, err)
			return
		}
		download(w, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "funcionarios.xlsx", out)
	default:
		writeMessage(w, http.StatusBadRequest, "format must be csv or xlsx")
	}
}

// Template handles GET /api/employees/template
func (h *EmployeeHandler) Template(w http.ResponseWriter, r *http.Request) {
	download(w, "text/csv; charset=utf-8", "modelo-funcionarios.csv", []byte(h.svc.Template()))
}
