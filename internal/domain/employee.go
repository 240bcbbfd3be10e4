package domain

import (
	"regexp"
	"strings"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidEmail applies the deliberately loose address check used at import time
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// SameEmail compares addresses case-insensitively
func SameEmail(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// Employee belongs to exactly one company; deletion only flips IsActive
type Employee struct {
	Base
	Name      string `json:"name"`
	Email     string `json:"email"`
	CompanyID string `json:"companyId"`
	Sector    string `json:"sector"`
	Position  string `json:"position"`
	IsActive  bool   `json:"isActive"`
}

func (e *Employee) Validate() error {
	if strings.TrimSpace(e.Name) == "" || strings.TrimSpace(e.Email) == "" {
		return Invalid("name and email are required")
	}
	if !ValidEmail(e.Email) {
		return Invalidf("invalid email %q", e.Email)
	}
	if e.CompanyID == "" {
		return Invalid("companyId is required")
	}
	return nil
}

// EmployeeImport is one row of an import file
type EmployeeImport struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Sector   string `json:"sector"`
	Position string `json:"position"`
}

func (e EmployeeImport) Validate() error {
	if e.Name == "" || e.Email == "" || e.Sector == "" || e.Position == "" {
		return Invalid("missing required fields")
	}
	if !ValidEmail(e.Email) {
		return Invalid("invalid email")
	}
	return nil
}

// ImportError describes one rejected row; Row is 1-based over data rows
type ImportError struct {
	Row   int            `json:"row"`
	Error string         `json:"error"`
	Data  EmployeeImport `json:"data"`
}

// ImportResult tallies an import run
type ImportResult struct {
	Success int           `json:"success"`
	Errors  []ImportError `json:"errors"`
}
