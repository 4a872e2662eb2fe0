package research

import (
	"go.uber.org/zap"

	"github.com/sells-group/mention-cli/internal/model"
)

// Progress hands human-readable status strings from a running pipeline to
// the caller. Delivery is best-effort: when the caller is slow the event is
// dropped rather than blocking an orchestrator mid-run.
type Progress struct {
	ch chan string

	// PhaseFunc, when set, is called synchronously as the run moves between
	// phases (fetching, analyzing). Set it before the run starts.
	PhaseFunc func(model.RunStatus)
}

// NewProgress creates a progress stream with the given buffer size.
func NewProgress(buffer int) *Progress {
	if buffer <= 0 {
		buffer = 32
	}
	return &Progress{ch: make(chan string, buffer)}
}

// Events returns the receive side for the caller to consume.
func (p *Progress) Events() <-chan string {
	return p.ch
}

// Send delivers an event without blocking. Dropped events are logged at
// debug level; the run itself never waits on a slow consumer.
func (p *Progress) Send(msg string) {
	select {
	case p.ch <- msg:
	default:
		zap.L().Debug("progress event dropped", zap.String("event", msg))
	}
}

// Close ends the stream. Call only after the run has finished sending.
func (p *Progress) Close() {
	close(p.ch)
}
