package xl30

import (
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/cskr/pubsub"
	"github.com/sirupsen/logrus"

	"github.com/dividat/xl30-driver/src/xl30driver/capability"
	"github.com/dividat/xl30-driver/src/xl30driver/transport"
)

const eventsTopic = "events"

// Session is one logical connection to a microscope over a single serial
// port. Exactly one outstanding request is ever in flight; callers must
// not share a Session across concurrent goroutines. mu serializes the
// lifecycle methods (Connect, Acquire, Release, Disconnect, Close); typed
// operations do not take it, so concurrent use is not detected.
type Session struct {
	mu sync.Mutex

	port     transport.Port
	portName string
	ownsPort bool

	usedConnect bool
	usedContext bool

	caps            *capability.Capabilities
	detectorSupport *capability.DetectorSupport
	machineType     capability.MachineType
	machineSerial   uint16

	logger *logrus.Entry
	broker *pubsub.PubSub

	detectorsAutodetect    bool
	safeStagePositionOrder bool

	retryCount     int
	reconnectCount int
	retryDelay     time.Duration
	reconnectDelay time.Duration

	terminatorHandle *terminatorHandle
}

// Option configures a Session at construction.
type Option func(*Session)

// WithLogger supplies an external logger. The session adjusts its level
// only if a WithLogLevel option is applied after this one.
func WithLogger(logger *logrus.Entry) Option {
	return func(s *Session) { s.logger = logger }
}

// WithLogLevel sets the level of the logrus.Logger behind the session's
// logger at the time the option is applied: the process-wide logrus
// standard logger by default, or the logger given by an earlier
// WithLogger. It is not skipped when WithLogger is also given.
func WithLogLevel(level logrus.Level) Option {
	return func(s *Session) {
		if s.logger != nil && s.logger.Logger != nil {
			s.logger.Logger.SetLevel(level)
		}
	}
}

// WithDetectorsAutodetect enables the optional detector probe during the
// initial handshake.
func WithDetectorsAutodetect(enabled bool) Option {
	return func(s *Session) { s.detectorsAutodetect = enabled }
}

// WithRetryCount sets how many immediate retries the reliability wrapper
// attempts before reconnecting.
func WithRetryCount(n int) Option {
	return func(s *Session) { s.retryCount = n }
}

// WithReconnectCount sets how many reconnect attempts the reliability
// wrapper makes before propagating the last failure.
func WithReconnectCount(n int) Option {
	return func(s *Session) { s.reconnectCount = n }
}

// WithRetryDelay sets the pause between immediate retries.
func WithRetryDelay(d time.Duration) Option {
	return func(s *Session) { s.retryDelay = d }
}

// WithReconnectDelay sets the pause before reopening the port on
// reconnect.
func WithReconnectDelay(d time.Duration) Option {
	return func(s *Session) { s.reconnectDelay = d }
}

// WithCapabilities overrides the default XL30 capability envelope, for
// other machine types in the XL family.
func WithCapabilities(caps *capability.Capabilities) Option {
	return func(s *Session) { s.caps = caps }
}

// WithSafeStagePositionOrder opts into moving Z down before changing tilt
// and applying rotation after XY, instead of the device driver's original
// ordering (XY, rotation, Z, tilt). See SetStagePosition.
func WithSafeStagePositionOrder(enabled bool) Option {
	return func(s *Session) { s.safeStagePositionOrder = enabled }
}

const (
	defaultRetryCount     = 3
	defaultReconnectCount = 3
	defaultRetryDelay     = 5 * time.Second
	defaultReconnectDelay = 5 * time.Second
)

func newSession(opts []Option) *Session {
	s := &Session{
		caps:            capability.DefaultXL30Capabilities(),
		detectorSupport: capability.NewDetectorSupport(),
		logger:          logrus.NewEntry(logrus.StandardLogger()),
		broker:          pubsub.New(32),
		retryCount:      defaultRetryCount,
		reconnectCount:  defaultReconnectCount,
		retryDelay:      defaultRetryDelay,
		reconnectDelay:  defaultReconnectDelay,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// New constructs a Session that owns and opens portName itself on Connect
// or context acquisition.
func New(portName string, opts ...Option) *Session {
	s := newSession(opts)
	s.portName = portName
	s.ownsPort = true
	return s
}

// NewWithTransport constructs a Session around an already-open transport.
// The session never closes it; Disconnect/Close are no-ops with respect to
// the underlying handle's lifetime.
func NewWithTransport(port transport.Port, opts ...Option) (*Session, error) {
	s := newSession(opts)
	s.port = port
	s.ownsPort = false

	if err := s.initialHandshake(); err != nil {
		return nil, err
	}
	s.terminatorHandle = registerTerminator(s)
	return s, nil
}

func (s *Session) log() *logrus.Entry {
	return s.logger
}

// Connect opens the port (if this session owns a port name and it is not
// already open) and runs the initial handshake. Mixing Connect with
// context-scoped acquisition on the same session is a caller error.
func (s *Session) Connect() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.usedContext {
		return invalidUsageErr("connect", fmt.Errorf("context-scoped acquisition already used on this session"))
	}
	s.usedConnect = true

	if s.port == nil && s.ownsPort {
		s.log().WithField("port", s.portName).Debug("connecting to microscope")
		port, err := transport.Open(s.portName)
		if err != nil {
			return communicationErr("connect", err)
		}
		s.port = port
		if err := s.initialHandshake(); err != nil {
			s.port.Close()
			s.port = nil
			return err
		}
	}

	if s.terminatorHandle == nil {
		s.terminatorHandle = registerTerminator(s)
	}
	return nil
}

// Acquire opens the port (if owned and not yet open) and runs the initial
// handshake, for scoped use alongside Release. Mixing this with explicit
// Connect on the same session is a caller error.
func (s *Session) Acquire() (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.usedConnect {
		return nil, invalidUsageErr("acquire", fmt.Errorf("explicit connect already used on this session"))
	}
	s.usedContext = true

	if s.port == nil && s.ownsPort {
		s.log().WithField("port", s.portName).Debug("connecting to microscope")
		port, err := transport.Open(s.portName)
		if err != nil {
			return nil, communicationErr("acquire", err)
		}
		s.port = port
		if err := s.initialHandshake(); err != nil {
			s.port.Close()
			s.port = nil
			return nil, err
		}
	}

	if s.terminatorHandle == nil {
		s.terminatorHandle = registerTerminator(s)
	}
	return s, nil
}

// Release closes the port, mirroring Acquire.
func (s *Session) Release() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.usedContext = false
	return s.closeLocked()
}

// Disconnect closes the port if this session owns one.
func (s *Session) Disconnect() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closeLocked()
}

func (s *Session) closeLocked() error {
	if s.port != nil && s.ownsPort {
		s.log().Debug("closing serial port")
		err := s.port.Close()
		s.port = nil
		return err
	}
	return nil
}

// Close releases the port unconditionally and deregisters this session
// from the process-level terminator. Safe to call multiple times.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.terminatorHandle != nil {
		s.terminatorHandle.deregister()
		s.terminatorHandle = nil
	}
	err := s.closeLocked()
	s.broker.Shutdown()
	return err
}

// connected reports whether the session currently holds a live transport.
func (s *Session) connected() bool {
	return s.port != nil
}

// initialHandshake queries identity and optionally probes detector
// support. It does not drain input itself; transport.Open drains stale
// bytes when the session opens its own port. Connect and Acquire call it
// with s.mu held; NewWithTransport and reconnect call it without.
func (s *Session) initialHandshake() error {
	reply, err := s.getID()
	if err != nil {
		return err
	}
	s.machineType = reply.machineType
	s.machineSerial = reply.serial
	s.log().WithFields(logrus.Fields{
		"type":   reply.machineType,
		"serial": reply.serial,
	}).Info("identified microscope")

	if s.detectorsAutodetect {
		s.probeDetectors()
	}
	return nil
}

// probeDetectors iterates the catalogue, attempting set_detector on every
// id with a defined, non-mixed detector type and recording the outcome.
func (s *Session) probeDetectors() {
	for _, d := range capability.DetectorCatalogue {
		if d.Type == nil || *d.Type == 4 {
			s.detectorSupport.Set(d.ID, false)
			continue
		}
		if err := s.setDetectorRaw(d.ID, *d.Type); err != nil {
			s.detectorSupport.Set(d.ID, false)
			continue
		}
		s.log().WithField("detector", d.Name).Info("supported detector")
		s.detectorSupport.Set(d.ID, true)
	}
}

// reconnect closes any live handle (swallowing errors), sleeps
// reconnectDelay, reopens, and reruns the initial handshake. Returns
// success/failure without raising, matching the source's _reconnect.
// A session built around an externally supplied transport (NewWithTransport)
// has no port name to reopen and nothing it is allowed to close, so it
// always fails here; the reliability wrapper still counts the attempt.
func (s *Session) reconnect() bool {
	if !s.ownsPort {
		return false
	}
	if s.port != nil {
		_ = s.port.Close()
		s.port = nil
	}

	sleepBackoff(backoff.NewConstantBackOff(s.reconnectDelay))

	port, err := transport.Open(s.portName)
	if err != nil {
		s.log().WithError(err).Warn("reconnect failed to reopen port")
		return false
	}
	s.port = port

	if err := s.initialHandshake(); err != nil {
		s.log().WithError(err).Warn("reconnect handshake failed")
		return false
	}
	return true
}

// MachineType is the microscope model identified during the initial
// handshake.
func (s *Session) MachineType() capability.MachineType {
	return s.machineType
}

// MachineSerial is the microscope serial number identified during the
// initial handshake.
func (s *Session) MachineSerial() uint16 {
	return s.machineSerial
}

// Capabilities is this session's configured capability envelope.
func (s *Session) Capabilities() *capability.Capabilities {
	return s.caps
}

// DetectorSupport is this session's detector support bitset, populated by
// the initial probe if detector autodetection was enabled.
func (s *Session) DetectorSupport() *capability.DetectorSupport {
	return s.detectorSupport
}
