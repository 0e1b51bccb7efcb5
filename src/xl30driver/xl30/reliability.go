package xl30

import (
	"errors"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/sirupsen/logrus"
)

// call wraps a single typed operation in the retry-with-reconnect policy:
// a local retry budget and a local reconnect budget, both counted down
// across the lifetime of this one call and NEVER replenished relative to
// each other — a reconnect does not grant a fresh set of retries, it only
// grants one more invocation of fn. See the non-replenishing semantics
// recorded as an explicit Open Question resolution in this module's design
// notes: this mirrors the device driver's original retry loop exactly.
//
// fn must be safe to invoke more than once for the same logical request;
// composite multi-frame operations achieve this by targeting a final
// device state rather than emitting an irreversible sequence blindly.
func (s *Session) call(op string, fn func() error) error {
	retriesLeft := s.retryCount
	reconnectsLeft := s.reconnectCount

	retryBackoff := backoff.NewConstantBackOff(s.retryDelay)

	attempt := 0
	for {
		attempt++
		err := fn()
		if err == nil {
			s.log().WithFields(logrus.Fields{"op": op, "attempt": attempt}).Info("operation succeeded")
			s.publish(op, nil)
			return nil
		}

		if !IsRetryable(err) {
			s.log().WithFields(logrus.Fields{"op": op, "attempt": attempt}).WithError(err).Error("operation failed")
			s.publish(op, err)
			return err
		}

		s.log().WithFields(logrus.Fields{"op": op, "attempt": attempt}).WithError(err).Error("encountered communication error")

		// A dead/missing port cannot be fixed by sleeping and calling fn
		// again on the same handle, so NotConnected skips straight to the
		// reconnect budget instead of burning ordinary retries first.
		if retriesLeft > 0 && !isNotConnected(err) {
			retriesLeft--
			s.log().WithFields(logrus.Fields{"op": op, "retriesLeft": retriesLeft}).Warn("retrying request")
			sleepBackoff(retryBackoff)
			continue
		}

		if reconnectsLeft > 0 {
			reconnectsLeft--
			s.log().WithFields(logrus.Fields{"op": op, "reconnectsLeft": reconnectsLeft}).Warn("reconnecting to microscope")
			s.reconnect()
			continue
		}

		s.log().WithFields(logrus.Fields{"op": op}).Error("reconnect attempts with retries each exceeded")
		s.publish(op, err)
		return err
	}
}

// isNotConnected reports whether err is specifically a NotConnected
// failure, which call() routes straight to reconnect rather than retrying
// in place.
func isNotConnected(err error) bool {
	var xerr *Error
	return errors.As(err, &xerr) && xerr.Kind == KindNotConnected
}

// sleepBackoff waits for b's next delay. ConstantBackOff never returns
// backoff.Stop, so this is equivalent to a fixed time.Sleep but keeps the
// delay generation behind the backoff.BackOff interface.
func sleepBackoff(b backoff.BackOff) {
	d := b.NextBackOff()
	if d > 0 {
		time.Sleep(d)
	}
}
