package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/klukovki23/healthcare-on-the-go/internal/platform/auth"
)

// AuditEntry records one access to patient data: who, which patient, what
// action, and the outcome.
type AuditEntry struct {
	Clinician  string
	Resource   string
	PatientID  string
	Action     string // read, create, update, delete
	Method     string
	Path       string
	RequestID  string
	StatusCode int
	Timestamp  time.Time
}

// AuditRecorder receives audit entries in addition to the structured log.
type AuditRecorder interface {
	RecordAccess(entry AuditEntry) error
}

// AuditRecorderFunc is a function adapter for AuditRecorder.
type AuditRecorderFunc func(entry AuditEntry) error

func (f AuditRecorderFunc) RecordAccess(entry AuditEntry) error {
	return f(entry)
}

// Audit logs every request under /api/v1/ that touches a patient record or a
// visit. Other API routes pass through unaudited.
func Audit(logger zerolog.Logger, recorders ...AuditRecorder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			path := req.URL.Path

			resource := auditResource(path)
			if resource == "" {
				return next(c)
			}

			err := next(c)

			entry := AuditEntry{
				Clinician:  auth.ClinicianFromContext(req.Context()),
				Resource:   resource,
				PatientID:  extractPatientID(path),
				Action:     httpMethodToAction(req.Method),
				Method:     req.Method,
				Path:       path,
				StatusCode: c.Response().Status,
				Timestamp:  time.Now().UTC(),
			}
			if rid, ok := c.Get("request_id").(string); ok {
				entry.RequestID = rid
			}

			for _, r := range recorders {
				if r == nil {
					continue
				}
				if recErr := r.RecordAccess(entry); recErr != nil {
					logger.Error().Err(recErr).
						Str("request_id", entry.RequestID).
						Msg("failed to record audit entry")
				}
			}

			logger.Info().
				Str("type", "patient_audit").
				Str("request_id", entry.RequestID).
				Str("clinician", entry.Clinician).
				Str("resource", entry.Resource).
				Str("patient_id", entry.PatientID).
				Str("action", entry.Action).
				Str("path", entry.Path).
				Int("status", entry.StatusCode).
				Msg("patient_data_access")

			return err
		}
	}
}

// auditResource returns the audited resource for path, or "" when the path
// carries no patient data.
func auditResource(path string) string {
	if !strings.HasPrefix(path, "/api/v1/") {
		return ""
	}
	segment := strings.SplitN(strings.TrimPrefix(path, "/api/v1/"), "/", 2)[0]
	switch segment {
	case "patients", "schedule", "help-requests":
		return segment
	}
	return ""
}

// httpMethodToAction maps HTTP methods to audit action codes.
func httpMethodToAction(method string) string {
	switch method {
	case http.MethodPost:
		return "create"
	case http.MethodPut, http.MethodPatch:
		return "update"
	case http.MethodDelete:
		return "delete"
	default:
		return "read"
	}
}

// extractPatientID returns the id in /api/v1/patients/<id>[/...].
func extractPatientID(path string) string {
	const prefix = "/api/v1/patients/"
	if !strings.HasPrefix(path, prefix) {
		return ""
	}
	return strings.SplitN(strings.TrimPrefix(path, prefix), "/", 2)[0]
}
