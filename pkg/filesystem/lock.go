package filesystem

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/flock"

	errUtils "github.com/cloudposse/pomgraph/errors"
	log "github.com/cloudposse/pomgraph/pkg/logger"
	"github.com/cloudposse/pomgraph/pkg/perf"
)

const (
	maxLockRetries = 20
	lockRetryDelay = 25 * time.Millisecond
)

// WithLock runs fn while holding an exclusive lock on lockPath. The lock file
// is created if needed and left in place afterwards.
func WithLock(lockPath string, fn func() error) error {
	defer perf.Track(nil, "filesystem.WithLock")()

	lock := flock.New(lockPath)

	var locked bool
	var err error
	for range maxLockRetries {
		locked, err = lock.TryLock()
		if err != nil {
			return errors.Join(errUtils.ErrForestLocked, err)
		}
		if locked {
			break
		}
		time.Sleep(lockRetryDelay)
	}
	if !locked {
		return fmt.Errorf("%w: %s", errUtils.ErrForestLocked, lockPath)
	}

	defer func() {
		if err := lock.Unlock(); err != nil {
			log.Trace("Failed to release lock", "error", err, "path", lockPath)
		}
	}()

	return fn()
}
