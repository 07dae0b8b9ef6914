package userauth

import (
	"context"
	"errors"
	"io"
	"time"

	internalaudit "github.com/Anglius/userauth/internal/audit"
	"github.com/Anglius/userauth/internal/throttle"
)

const (
	auditEventLoginSuccess     = "login_success"
	auditEventLoginFailure     = "login_failure"
	auditEventLoginLocked      = "login_locked"
	auditEventUserRegistered   = "user_registered"
	auditEventGuestRegistered  = "guest_registered"
	auditEventGuestConverted   = "guest_converted"
	auditEventUserActivated    = "user_activated"
	auditEventActivationFailed = "activation_failed"
)

// AuditEvent is a structured audit record emitted by the service.
type AuditEvent = internalaudit.Event

// AuditSink receives [AuditEvent] values from the service's audit dispatcher.
type AuditSink = internalaudit.Sink

// NoOpSink is an [AuditSink] that silently discards all events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink is a buffered channel-based [AuditSink].
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink is an [AuditSink] that writes JSON-encoded events to an
// [io.Writer].
type JSONWriterSink = internalaudit.JSONWriterSink

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}

func auditErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMissingField):
		return "missing_field"
	case errors.Is(err, ErrUserNotFound):
		return "user_not_found"
	case errors.Is(err, ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, ErrLockedOut):
		return "locked_out"
	case errors.Is(err, ErrUserNotActivated):
		return "not_activated"
	case errors.Is(err, ErrUserAlreadyActivated):
		return "already_activated"
	case errors.Is(err, ErrInvalidActivationCode):
		return "invalid_activation_code"
	case errors.Is(err, ErrRegistrationDisabled):
		return "registration_disabled"
	case errors.Is(err, throttle.ErrUnavailable):
		return "throttle_unavailable"
	default:
		return "internal_error"
	}
}

func (s *Service) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	userID string,
	email string,
	err error,
	metadataBuilder func() map[string]string,
) {
	if s == nil || s.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		UserID:    userID,
		Email:     email,
		IP:        clientIPFromContext(ctx),
		Success:   success,
		Metadata:  metadata,
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = code
	}

	s.audit.Emit(ctx, event)
}
