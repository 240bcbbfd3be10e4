package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/aryan0dhankhar/wellpulse/internal/domain"
	"github.com/aryan0dhankhar/wellpulse/internal/observability/metrics"
	"github.com/aryan0dhankhar/wellpulse/internal/repository"
	"github.com/aryan0dhankhar/wellpulse/pkg/csvutil"
	"github.com/aryan0dhankhar/wellpulse/pkg/pagination"
	"github.com/aryan0dhankhar/wellpulse/pkg/xlsx"
)

const errEmailTaken = "email already registered"

// exportHeaders are the columns of CSV and XLSX employee exports
var exportHeaders = []string{"name", "email", "sector", "position", "isActive", "createdAt"}

// EmployeeService manages employees and their bulk import and export
type EmployeeService struct {
	*crud[domain.Employee, *domain.Employee]
	notifications *NotificationService
	logger        *slog.Logger
}

func NewEmployeeService(store *repository.Store, notifications *NotificationService, cfg Config, logger *slog.Logger) *EmployeeService {
	if logger == nil {
		logger = slog.Default()
	}
	s := &EmployeeService{notifications: notifications, logger: logger}
	s.crud = newCrud[domain.Employee]("employee", store.Employees, hooks[domain.Employee]{
		defaults: func(e *domain.Employee) {
			e.IsActive = true
		},
		validate: s.validate,
		remove: func(e *domain.Employee, _ time.Time) error {
			e.IsActive = false
			return nil
		},
	}, cfg, logger)
	return s
}

// validate checks the record and that no other active employee has its email
func (s *EmployeeService) validate(ctx context.Context, next, prev *domain.Employee) error {
	if err := next.Validate(); err != nil {
		return err
	}
	if !next.IsActive {
		return nil
	}
	taken, err := s.emailTaken(ctx, next.Email, next.ID)
	if err != nil {
		return err
	}
	if taken {
		return domain.Conflict(errEmailTaken)
	}
	return nil
}

func (s *EmployeeService) emailTaken(ctx context.Context, email, exceptID string) (bool, error) {
	all, err := s.coll.List(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to list employees: %w", err)
	}
	for _, e := range all {
		if e.IsActive && e.ID != exceptID && domain.SameEmail(e.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

// Create stores the employee and sends the welcome message
func (s *EmployeeService) Create(ctx context.Context, input domain.Employee) (*domain.Employee, error) {
	e, err := s.crud.Create(ctx, input)
	if err != nil {
		return nil, err
	}
	s.welcome(ctx, e)
	return e, nil
}

func (s *EmployeeService) welcome(ctx context.Context, e *domain.Employee) {
	s.logger.Info("welcome e-mail sent",
		slog.String("employee_id", e.ID),
		slog.String("email", e.Email),
		slog.String("company_id", e.CompanyID),
	)
	if _, err := s.notifications.Notify(ctx, e.ID, domain.NotificationWelcome,
		"Bem-vindo(a)!", "Sua conta foi criada. Responda aos questionários disponíveis.", "/funcionario/dashboard"); err != nil {
		s.logger.Warn("failed to send welcome notification",
			slog.String("employee_id", e.ID),
			slog.String("error", err.Error()),
		)
	}
}

// ListByCompany paginates a company's employees
func (s *EmployeeService) ListByCompany(ctx context.Context, companyID string, p pagination.Params) (pagination.Page[domain.Employee], error) {
	return s.query(ctx, func(e *domain.Employee) bool { return e.CompanyID == companyID }, p)
}

// ListBySector paginates the employees of one sector of a company
func (s *EmployeeService) ListBySector(ctx context.Context, companyID, sector string, p pagination.Params) (pagination.Page[domain.Employee], error) {
	return s.query(ctx, func(e *domain.Employee) bool {
		return e.CompanyID == companyID && e.Sector == sector
	}, p)
}

// ImportCSV creates one employee per valid row of a name,email,sector,position
// file. Rows are numbered from 1, header excluded.
func (s *EmployeeService) ImportCSV(ctx context.Context, companyID string, r io.Reader) (result domain.ImportResult, err error) {
	ctx, finish, err := s.begin(ctx, "import")
	if err != nil {
		return result, err
	}
	defer finish(&err)

	if companyID == "" {
		return result, domain.Invalid("companyId is required")
	}
	rows, err := csvutil.Parse(r, func(row []string) domain.EmployeeImport {
		return domain.EmployeeImport{
			Name:     csvutil.Field(row, 0),
			Email:    csvutil.Field(row, 1),
			Sector:   csvutil.Field(row, 2),
			Position: csvutil.Field(row, 3),
		}
	})
	if err != nil {
		return result, domain.Invalidf("invalid csv: %v", err)
	}

	result.Errors = []domain.ImportError{}
	var created []*domain.Employee

	s.mu.Lock()
	for i, row := range rows {
		if err := row.Validate(); err != nil {
			result.Errors = append(result.Errors, domain.ImportError{Row: i + 1, Error: err.Error(), Data: row})
			continue
		}
		e, err := s.create(ctx, domain.Employee{
			Name:      row.Name,
			Email:     row.Email,
			CompanyID: companyID,
			Sector:    row.Sector,
			Position:  row.Position,
		})
		if err != nil {
			if domain.CodeOf(err) == "" {
				s.mu.Unlock()
				return result, err
			}
			result.Errors = append(result.Errors, domain.ImportError{Row: i + 1, Error: err.Error(), Data: row})
			continue
		}
		created = append(created, e)
		result.Success++
	}
	s.mu.Unlock()

	for _, e := range created {
		s.welcome(ctx, e)
	}
	metrics.ObserveImport(result.Success, len(result.Errors))
	s.logger.Info("employee import finished",
		slog.String("company_id", companyID),
		slog.Int("success", result.Success),
		slog.Int("errors", len(result.Errors)),
	)
	return result, nil
}

func (s *EmployeeService) companyEmployees(ctx context.Context, companyID string) ([]domain.Employee, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	return s.filter(ctx, func(e *domain.Employee) bool {
		return companyID == "" || e.CompanyID == companyID
	})
}

func employeeValue(e domain.Employee, header string) string {
	switch header {
	case "name":
		return e.Name
	case "email":
		return e.Email
	case "sector":
		return e.Sector
	case "position":
		return e.Position
	case "isActive":
		return strconv.FormatBool(e.IsActive)
	case "createdAt":
		return e.CreatedAt.Format(time.RFC3339)
	}
	return ""
}

// ExportCSV renders a company's employees. An empty companyID exports all.
func (s *EmployeeService) ExportCSV(ctx context.Context, companyID string) (string, error) {
	items, err := s.companyEmployees(ctx, companyID)
	if err != nil {
		return "", err
	}
	return csvutil.ToCSV(items, exportHeaders, employeeValue), nil
}

// ExportXLSX renders the same columns as ExportCSV into a workbook
func (s *EmployeeService) ExportXLSX(ctx context.Context, companyID string) ([]byte, error) {
	items, err := s.companyEmployees(ctx, companyID)
	if err != nil {
		return nil, err
	}
	rows := make([][]any, 0, len(items))
	for _, e := range items {
		row := make([]any, len(exportHeaders))
		for i, h := range exportHeaders {
			row[i] = employeeValue(e, h)
		}
		rows = append(rows, row)
	}
	return xlsx.Build("Funcionarios", exportHeaders, rows)
}

// Template returns the import file template
func (s *EmployeeService) Template() string {
	return csvutil.EmployeeTemplate()
}
