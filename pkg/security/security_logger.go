package security

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EventType names an audited event.
type EventType string

const (
	EventSignIn                EventType = "sign_in"
	EventSignInFailed          EventType = "sign_in_failed"
	EventRegistrationSubmitted EventType = "registration_submitted"
	EventRegistrationApproved  EventType = "registration_approved"
	EventRegistrationRejected  EventType = "registration_rejected"
	EventRoleAssigned          EventType = "role_assigned"
	EventAccessDenied          EventType = "access_denied"
	EventRateLimitTriggered    EventType = "rate_limit_triggered"
	EventUploadRejected        EventType = "upload_rejected"
	EventDataExport            EventType = "data_export"
)

// SecurityEvent is one audit record. PII in SubjectValue is masked before
// it is written.
type SecurityEvent struct {
	Timestamp    time.Time              `json:"timestamp"`
	Service      string                 `json:"service"`
	Environment  string                 `json:"env"`
	Level        string                 `json:"level"`
	Event        EventType              `json:"event"`
	ActorID      string                 `json:"actor_id,omitempty"`
	SubjectType  string                 `json:"subject_type,omitempty"` // email, ip, user_id, registration
	SubjectValue string                 `json:"subject_value,omitempty"`
	IP           string                 `json:"ip,omitempty"`
	RequestID    string                 `json:"request_id,omitempty"`
	Details      map[string]interface{} `json:"details,omitempty"`
}

type SecurityLogger struct {
	zapLogger   *zap.Logger
	serviceName string
	environment string
}

// NewSecurityLogger builds a JSON zap logger writing to stdout.
func NewSecurityLogger(serviceName, environment string) *SecurityLogger {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.OutputPaths = []string{"stdout"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	zl, err := cfg.Build(zap.AddCaller())
	if err != nil {
		zl, _ = zap.NewProduction()
	}
	return NewSecurityLoggerWith(zl, serviceName, environment)
}

// NewSecurityLoggerWith wraps an existing zap logger; tests pass an
// observer core here.
func NewSecurityLoggerWith(zl *zap.Logger, serviceName, environment string) *SecurityLogger {
	return &SecurityLogger{
		zapLogger:   zl,
		serviceName: serviceName,
		environment: environment,
	}
}

// NopSecurityLogger discards every event.
func NopSecurityLogger() *SecurityLogger {
	return NewSecurityLoggerWith(zap.NewNop(), "", "")
}

func levelFor(event EventType) zapcore.Level {
	switch event {
	case EventSignIn, EventRegistrationSubmitted, EventRegistrationApproved,
		EventRegistrationRejected, EventDataExport:
		return zapcore.InfoLevel
	default:
		return zapcore.WarnLevel
	}
}

func (sl *SecurityLogger) Log(_ context.Context, event SecurityEvent) {
	if sl == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	event.Service = sl.serviceName
	event.Environment = sl.environment
	event.SubjectValue = maskValue(event.SubjectType, event.SubjectValue)

	level := levelFor(event.Event)
	event.Level = level.String()

	fields := []zap.Field{
		zap.String("service", event.Service),
		zap.String("env", event.Environment),
		zap.String("event", string(event.Event)),
	}
	if event.ActorID != "" {
		fields = append(fields, zap.String("actor_id", event.ActorID))
	}
	if event.SubjectType != "" {
		fields = append(fields, zap.String("subject_type", event.SubjectType))
	}
	if event.SubjectValue != "" {
		fields = append(fields, zap.String("subject_value", event.SubjectValue))
	}
	if event.IP != "" {
		fields = append(fields, zap.String("ip", event.IP))
	}
	if event.RequestID != "" {
		fields = append(fields, zap.String("request_id", event.RequestID))
	}
	if len(event.Details) > 0 {
		detailsJSON, _ := json.Marshal(event.Details)
		fields = append(fields, zap.String("details", string(detailsJSON)))
	}

	sl.zapLogger.Log(level, string(event.Event), fields...)
}

func (sl *SecurityLogger) LogDecision(ctx context.Context, event EventType, adminID, kind string, registrationID int64, email string) {
	sl.Log(ctx, SecurityEvent{
		Event:        event,
		ActorID:      adminID,
		SubjectType:  "email",
		SubjectValue: email,
		Details: map[string]interface{}{
			"kind":            kind,
			"registration_id": registrationID,
		},
	})
}

func (sl *SecurityLogger) LogAccessDenied(ctx context.Context, userID, ip, requestID, path, area string) {
	sl.Log(ctx, SecurityEvent{
		Event:        EventAccessDenied,
		ActorID:      userID,
		SubjectType:  "ip",
		SubjectValue: ip,
		IP:           ip,
		RequestID:    requestID,
		Details:      map[string]interface{}{"path": path, "area": area},
	})
}

func (sl *SecurityLogger) LogRateLimitTriggered(ctx context.Context, ip, requestID, endpoint string) {
	sl.Log(ctx, SecurityEvent{
		Event:        EventRateLimitTriggered,
		SubjectType:  "ip",
		SubjectValue: ip,
		IP:           ip,
		RequestID:    requestID,
		Details:      map[string]interface{}{"endpoint": endpoint},
	})
}

func (sl *SecurityLogger) Sync() error {
	if sl == nil {
		return nil
	}
	return sl.zapLogger.Sync()
}

// MaskEmail keeps the first character and the domain: "j***@example.com".
func MaskEmail(email string) string {
	at := strings.IndexByte(email, '@')
	if len(email) < 3 || at < 0 {
		return "***"
	}
	if at <= 1 {
		return "***" + email[at:]
	}
	return email[:1] + "***" + email[at:]
}

// HashValue returns the first 16 hex chars of sha256(value).
func HashValue(value string) string {
	hash := sha256.Sum256([]byte(value))
	return hex.EncodeToString(hash[:8])
}

func maskValue(subjectType, value string) string {
	if value == "" {
		return ""
	}
	switch subjectType {
	case "email":
		return MaskEmail(value)
	case "ip", "registration":
		return value
	default:
		return HashValue(value)
	}
}
