// Package csvutil holds the line-oriented CSV helpers used for employee
// import/export and report export. Fields are split on the delimiter with no
// quoting support, so values must not contain the delimiter or newlines.
package csvutil

import (
	"fmt"
	"io"
	"strings"
)

type options struct {
	skipHeader bool
	delimiter  string
	trim       bool
}

// Option configures Parse.
type Option func(*options)

// KeepHeader treats the first line as data.
func KeepHeader() Option {
	return func(o *options) { o.skipHeader = false }
}

// Delimiter overrides the field separator (default ",").
func Delimiter(d string) Option {
	return func(o *options) {
		if d != "" {
			o.delimiter = d
		}
	}
}

// NoTrim keeps surrounding whitespace on fields.
func NoTrim() Option {
	return func(o *options) { o.trim = false }
}

// Parse reads r once and maps each non-blank line through mapper.
func Parse[T any](r io.Reader, mapper func(row []string) T, opts ...Option) ([]T, error) {
	o := options{skipHeader: true, delimiter: ",", trim: true}
	for _, opt := range opts {
		opt(&o)
	}

	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}

	lines := make([]string, 0)
	for _, line := range strings.Split(string(raw), "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	if o.skipHeader && len(lines) > 0 {
		lines = lines[1:]
	}

	out := make([]T, 0, len(lines))
	for _, line := range lines {
		// Windows line endings leave a trailing \r on the last field.
		line = strings.TrimSuffix(line, "\r")
		values := strings.Split(line, o.delimiter)
		if o.trim {
			for i, v := range values {
				values[i] = strings.TrimSpace(v)
			}
		}
		out = append(out, mapper(values))
	}
	return out, nil
}

// Field returns row[i] or "" when the row is too short.
func Field(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

// ToCSV writes a header line followed by one line per item. Values are not escaped.
func ToCSV[T any](items []T, headers []string, value func(item T, header string) string) string {
	lines := make([]string, 0, len(items)+1)
	lines = append(lines, strings.Join(headers, ","))
	for _, item := range items {
		cells := make([]string, len(headers))
		for i, h := range headers {
			cells[i] = value(item, h)
		}
		lines = append(lines, strings.Join(cells, ","))
	}
	return strings.Join(lines, "\n")
}

// EmployeeHeaders is the column order for employee import files.
var EmployeeHeaders = []string{"name", "email", "sector", "position"}

// EmployeeTemplate returns a downloadable import template with two sample rows.
func EmployeeTemplate() string {
	return strings.Join([]string{
		strings.Join(EmployeeHeaders, ","),
		"João Silva,joao@empresa.com,TI,Desenvolvedor",
		"Maria Santos,maria@empresa.com,RH,Analista",
	}, "\n")
}
