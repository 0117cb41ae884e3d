// Package audit provides security audit logging for SIEM consumption.
// Every response that hands out account keys or signed URLs is recorded as a
// structured event. Secrets themselves are never logged.
package audit

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/SongDrop/gitgptapi/pkg/middleware"
)

// SecurityEventType categorizes security-relevant events for filtering and alerting.
type SecurityEventType string

const (
	// EventCredentialsIssued is logged when create_db returns storage and search keys.
	EventCredentialsIssued SecurityEventType = "credentials_issued"
	// EventSASIssued is logged when upload_blob returns a signed read URL.
	EventSASIssued SecurityEventType = "sas_issued"
	// EventRequestRejected is logged when a request fails validation.
	EventRequestRejected SecurityEventType = "request_rejected"
)

// SecurityEvent is one auditable event.
type SecurityEvent struct {
	Timestamp time.Time         `json:"timestamp"`
	EventType SecurityEventType `json:"event_type"`
	RequestID string            `json:"request_id,omitempty"`
	ClientIP  string            `json:"client_ip,omitempty"`
	Details   any               `json:"details"`
	Severity  string            `json:"severity"` // info, warning, critical
}

// CredentialsIssuedDetails names the resources whose keys were returned.
type CredentialsIssuedDetails struct {
	StorageAccount string `json:"storage_account"`
	SearchEndpoint string `json:"search_endpoint"`
	IndexName      string `json:"index_name"`
}

// SASIssuedDetails names the blob a signed URL was minted for.
type SASIssuedDetails struct {
	Account   string `json:"account"`
	Container string `json:"container"`
	Blob      string `json:"blob"`
}

// SecurityAuditor logs security events under the "security_audit" logger name.
type SecurityAuditor struct {
	logger *zap.Logger
	now    func() time.Time
}

// NewSecurityAuditor creates a new security auditor with a dedicated logger namespace.
func NewSecurityAuditor(logger *zap.Logger) *SecurityAuditor {
	return &SecurityAuditor{
		logger: logger.Named("security_audit"),
		now:    time.Now,
	}
}

// LogCredentialsIssued records that create_db returned keys for the given resources.
func (a *SecurityAuditor) LogCredentialsIssued(ctx context.Context, details CredentialsIssuedDetails, clientIP string) {
	event := a.newEvent(ctx, EventCredentialsIssued, details, clientIP, "info")

	a.logger.Info("Resource credentials issued",
		zap.String("event_json", marshalEvent(event)),
		zap.String("request_id", event.RequestID),
		zap.String("storage_account", details.StorageAccount),
		zap.String("search_endpoint", details.SearchEndpoint),
		zap.String("client_ip", clientIP),
		zap.String("severity", event.Severity),
	)
}

// LogSASIssued records that upload_blob returned a signed read URL.
func (a *SecurityAuditor) LogSASIssued(ctx context.Context, details SASIssuedDetails, clientIP string) {
	event := a.newEvent(ctx, EventSASIssued, details, clientIP, "info")

	a.logger.Info("Blob SAS URL issued",
		zap.String("event_json", marshalEvent(event)),
		zap.String("request_id", event.RequestID),
		zap.String("account", details.Account),
		zap.String("container", details.Container),
		zap.String("blob", details.Blob),
		zap.String("client_ip", clientIP),
		zap.String("severity", event.Severity),
	)
}

// LogRequestRejected records a validation failure. These are usually client
// mistakes, so they are logged at WARN.
func (a *SecurityAuditor) LogRequestRejected(ctx context.Context, function, reason, clientIP string) {
	event := a.newEvent(ctx, EventRequestRejected, map[string]string{
		"function": function,
		"reason":   reason,
	}, clientIP, "warning")

	a.logger.Warn("Request rejected",
		zap.String("event_json", marshalEvent(event)),
		zap.String("request_id", event.RequestID),
		zap.String("function", function),
		zap.String("reason", reason),
		zap.String("client_ip", clientIP),
		zap.String("severity", event.Severity),
	)
}

func (a *SecurityAuditor) newEvent(ctx context.Context, eventType SecurityEventType, details any, clientIP, severity string) SecurityEvent {
	requestID, _ := middleware.RequestIDFromContext(ctx)
	return SecurityEvent{
		Timestamp: a.now().UTC(),
		EventType: eventType,
		RequestID: requestID,
		ClientIP:  clientIP,
		Details:   details,
		Severity:  severity,
	}
}

// marshalEvent ignores the error: every event is built from known types.
func marshalEvent(event SecurityEvent) string {
	b, _ := json.Marshal(event)
	return string(b)
}
