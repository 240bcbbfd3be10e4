package domain

import (
	"strings"
	"time"
	_ "time/tzdata" // embedded zoneinfo for LoadLocation
)

const clockLayout = "15:04"

// BusinessHours is a daily window in HH:mm, evaluated in Timezone
type BusinessHours struct {
	Start    string `json:"start"`
	End      string `json:"end"`
	Timezone string `json:"timezone"`
}

// DefaultBusinessHours applies to companies created without explicit hours
func DefaultBusinessHours() BusinessHours {
	return BusinessHours{Start: "09:00", End: "18:00", Timezone: "America/Sao_Paulo"}
}

func (b BusinessHours) Validate() error {
	start, err := time.Parse(clockLayout, b.Start)
	if err != nil {
		return Invalidf("business hours start %q must be HH:mm", b.Start)
	}
	end, err := time.Parse(clockLayout, b.End)
	if err != nil {
		return Invalidf("business hours end %q must be HH:mm", b.End)
	}
	if !start.Before(end) {
		return Invalid("business hours start must be before end")
	}
	if _, err := time.LoadLocation(b.Timezone); err != nil || b.Timezone == "" {
		return Invalidf("unknown timezone %q", b.Timezone)
	}
	return nil
}

// Normalized rewrites Start and End as zero-padded HH:mm. Values that do not
// parse are returned unchanged for Validate to reject.
func (b BusinessHours) Normalized() BusinessHours {
	if start, err := time.Parse(clockLayout, b.Start); err == nil {
		b.Start = start.Format(clockLayout)
	}
	if end, err := time.Parse(clockLayout, b.End); err == nil {
		b.End = end.Format(clockLayout)
	}
	return b
}

// Contains reports whether t falls in [Start, End] on the company's wall clock,
// inclusive at both ends to the minute. Unparseable bounds contain nothing.
func (b BusinessHours) Contains(t time.Time) bool {
	start, errStart := time.Parse(clockLayout, b.Start)
	end, errEnd := time.Parse(clockLayout, b.End)
	if errStart != nil || errEnd != nil {
		return false
	}
	loc, err := time.LoadLocation(b.Timezone)
	if err != nil {
		loc = time.UTC
	}
	local := t.In(loc)
	now := minuteOfDay(local.Hour(), local.Minute())
	return now >= minuteOfDay(start.Hour(), start.Minute()) && now <= minuteOfDay(end.Hour(), end.Minute())
}

func minuteOfDay(hour, minute int) int {
	return hour*60 + minute
}

// Company is the tenant every other record hangs off
type Company struct {
	Base
	Name          string         `json:"name"`
	CNPJ          string         `json:"cnpj"`
	Sector        string         `json:"sector"`
	EmployeeCount int            `json:"employeeCount"`
	IsActive      bool           `json:"isActive"`
	BusinessHours *BusinessHours `json:"businessHours,omitempty"`
}

func (c *Company) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return Invalid("company name is required")
	}
	if c.EmployeeCount < 0 {
		return Invalid("employee count cannot be negative")
	}
	if c.BusinessHours != nil {
		return c.BusinessHours.Validate()
	}
	return nil
}
