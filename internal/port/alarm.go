package port

import (
	"context"

	"github.com/rl1809/retail-store/internal/core/domain"
)

type AlarmSink interface {
	// Raise reports an integrity alarm to operators. Must not block the
	// placement path for long and must not fail loudly; this is the channel
	// of last resort.
	Raise(ctx context.Context, alarm domain.IntegrityAlarm)
}
