// Package audit registra los eventos de ciclo de vida de sesión en un
// stream propio, separado del log operacional: cada emisión,
// invalidación y replay queda rastreable por usuario.
package audit

import (
	"context"

	"go.uber.org/zap"

	"github.com/dropDatabas3/gatekeep/internal/observability/logger"
)

// Event es el nombre cerrado de un evento auditable.
type Event string

const (
	EventLogin          Event = "session.login"
	EventLogout         Event = "session.logout"
	EventRefreshRotated Event = "session.refresh_rotated"
	EventReplayDetected Event = "session.replay_detected"
)

// Log emite el evento con los campos dados. El sink es el logger
// estructurado del proceso bajo el nombre "audit"; un sink externo
// (cola, tabla) puede colgarse después sin tocar a los emisores.
func Log(ctx context.Context, event Event, fields ...zap.Field) {
	logger.From(ctx).Named("audit").Info(string(event),
		append([]zap.Field{zap.String("event", string(event))}, fields...)...)
}
