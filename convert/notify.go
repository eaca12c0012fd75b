package convert

import (
	"context"

	"go.uber.org/zap"

	"mdc/common"
)

// Status is a progress update shown to the user driving the export.
type Status struct {
	Description string
	Done        bool
}

// Emitter receives status updates and notifications during a conversion.
// Implementations must tolerate being called from the conversion goroutine
// and must not block for long.
type Emitter interface {
	Status(ctx context.Context, s Status)
	Notify(ctx context.Context, kind common.NotifyType, message string)
}

// logEmitter is the default emitter: everything goes to the logger.
type logEmitter struct {
	log *zap.Logger
}

// NewLogEmitter wraps a logger into an Emitter.
func NewLogEmitter(log *zap.Logger) Emitter {
	return &logEmitter{log: log}
}

func (e *logEmitter) Status(_ context.Context, s Status) {
	e.log.Info("Status", zap.String("description", s.Description), zap.Bool("done", s.Done))
}

func (e *logEmitter) Notify(_ context.Context, kind common.NotifyType, message string) {
	switch kind {
	case common.NotifyTypeError:
		e.log.Error(message)
	case common.NotifyTypeWarning:
		e.log.Warn(message)
	default:
		e.log.Info(message)
	}
}
