package domain

import "time"

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentPaid      PaymentStatus = "paid"
	PaymentOverdue   PaymentStatus = "overdue"
	PaymentCancelled PaymentStatus = "cancelled"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentPaid, PaymentOverdue, PaymentCancelled:
		return true
	}
	return false
}

// DefaultCurrency is applied when a payment is created without one
const DefaultCurrency = "BRL"

// Payment is a company billing record. Cancelling is a status change.
type Payment struct {
	Base
	CompanyID   string        `json:"companyId"`
	Amount      float64       `json:"amount"`
	Currency    string        `json:"currency"`
	Status      PaymentStatus `json:"status"`
	DueDate     time.Time     `json:"dueDate"`
	PaidAt      *time.Time    `json:"paidAt,omitempty"`
	Description string        `json:"description"`
}

func (p *Payment) Validate() error {
	if p.CompanyID == "" {
		return Invalid("companyId is required")
	}
	if p.Amount <= 0 {
		return Invalid("amount must be positive")
	}
	if !p.Status.Valid() {
		return Invalidf("unknown payment status %q", p.Status)
	}
	return nil
}

// PastDue is true for pending payments whose due date has passed
func (p *Payment) PastDue(now time.Time) bool {
	return p.Status == PaymentPending && !p.DueDate.IsZero() && now.After(p.DueDate)
}

type PaymentStats struct {
	Total       int     `json:"total"`
	Paid        int     `json:"paid"`
	Pending     int     `json:"pending"`
	Overdue     int     `json:"overdue"`
	TotalAmount float64 `json:"totalAmount"`
	PaidAmount  float64 `json:"paidAmount"`
}
