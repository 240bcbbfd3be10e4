package audit

import (
	"context"
	"log/slog"
	"strconv"
	"time"
)

type requestIDKey struct{}

// WithRequestID stores the request id audit lines are tagged with
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// Entry is one audited action
type Entry struct {
	CompanyID  string
	UserID     string
	Action     string
	Resource   string
	ResourceID string
	Status     string
	Details    string
}

type Logger struct {
	logger *slog.Logger
	now    func() time.Time
}

func NewLogger(logger *slog.Logger) *Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Logger{logger: logger, now: time.Now}
}

func (al *Logger) Log(ctx context.Context, e Entry) {
	al.logger.Info("audit",
		slog.String("action", e.Action),
		slog.String("resource", e.Resource),
		slog.String("resource_id", e.ResourceID),
		slog.String("company_id", e.CompanyID),
		slog.String("user_id", e.UserID),
		slog.String("status", e.Status),
		slog.String("details", e.Details),
		slog.String("request_id", RequestID(ctx)),
		slog.Time("timestamp", al.now()),
	)
}

// LogMutation records a write against the API
func (al *Logger) LogMutation(ctx context.Context, companyID, userID, method, path string, status int) {
	result := "success"
	if status >= 400 {
		result = "failed"
	}
	al.Log(ctx, Entry{
		CompanyID: companyID,
		UserID:    userID,
		Action:    method,
		Resource:  path,
		Status:    result,
		Details:   "status " + strconv.Itoa(status),
	})
}

func (al *Logger) LogDenied(ctx context.Context, companyID, userID, resource, reason string) {
	al.Log(ctx, Entry{
		CompanyID: companyID,
		UserID:    userID,
		Action:    "access_denied",
		Resource:  resource,
		Status:    "denied",
		Details:   reason,
	})
}

func (al *Logger) LogLogin(ctx context.Context, email, status string) {
	al.Log(ctx, Entry{Action: "login", Resource: "session", Status: status, Details: email})
}
