package audit

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/fittogether/server/pkg/log"
)

// Audit actions.
const (
	ActionSignUp         = "user.signup"
	ActionSignIn         = "user.signin"
	ActionSignInFailed   = "user.signin_failed"
	ActionKakaoSignIn    = "user.kakao_signin"
	ActionKakaoSignUp    = "user.kakao_signup"
	ActionDMRoomCreated  = "dm.room_created"
	ActionDMMessageSent  = "dm.message_sent"
	ActionDMAccessDenied = "dm.access_denied"
)

// Field constants for audit entries.
const (
	FieldAction   = "action"
	FieldTargetID = "target_id"
	FieldDetail   = "detail"
)

// Option adds a field to an audit entry.
type Option func(e *zerolog.Event)

// Detail attaches free-form context such as the email of a failed sign-in.
func Detail(detail string) Option {
	return func(e *zerolog.Event) { e.Str(FieldDetail, detail) }
}

// Target names the object acted upon.
func Target(id string) Option {
	return func(e *zerolog.Event) { e.Str(FieldTargetID, id) }
}

// Log emits a structured audit entry via the context logger.
// An empty userID is omitted.
func Log(ctx context.Context, action string, userID string, msg string, opts ...Option) {
	l := log.Ctx(ctx)
	evt := l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action)
	if userID != "" {
		evt = evt.Str(log.FieldUserID, userID)
	}
	for _, opt := range opts {
		opt(evt)
	}
	evt.Msg(msg)
}
