// Package transport adapts the RS-232 byte pipe to the microscope to a
// small interface the protocol engine can drive without knowing anything
// about serial ports.
package transport

import (
	"time"

	"go.bug.st/serial"
)

// Port is the byte-level interface the protocol engine needs from a serial
// connection: timed reads, plain writes, a mutable read timeout, and close.
// Nothing above this layer knows about baud rates or OS handles.
type Port interface {
	// ReadExact reads exactly n bytes, blocking up to the current read
	// timeout. Returns fewer than n bytes (possibly zero) if the timeout
	// elapses before n bytes arrive; that is not itself an error.
	ReadExact(n int) ([]byte, error)
	Write(p []byte) (int, error)
	SetReadTimeout(d time.Duration) error
	Close() error
}

// DrainTimeout bounds how long Open waits for stale bytes to stop arriving
// before declaring the input buffer empty.
const DrainTimeout = 1 * time.Second

// DefaultReadTimeout is the read timeout a freshly opened port starts with,
// matching the microscope driver's default.
const DefaultReadTimeout = 60 * time.Second

const (
	baudRate = 9600
	dataBits = 8
)

type serialPort struct {
	port serial.Port
}

// Open configures and opens portName at 9600-8N1 with a 60s read timeout,
// then drains any bytes left over from a prior aborted session so they
// cannot corrupt the first frame read through this handle.
func Open(portName string) (Port, error) {
	mode := &serial.Mode{
		BaudRate: baudRate,
		DataBits: dataBits,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	raw, err := serial.Open(portName, mode)
	if err != nil {
		return nil, err
	}

	if err := raw.SetReadTimeout(DefaultReadTimeout); err != nil {
		raw.Close()
		return nil, err
	}

	p := &serialPort{port: raw}
	if err := p.drain(); err != nil {
		raw.Close()
		return nil, err
	}

	return p, nil
}

// drain reads and discards bytes until a short read times out with nothing
// returned, clearing whatever the OS buffered before this handle existed.
func (p *serialPort) drain() error {
	if err := p.port.SetReadTimeout(DrainTimeout); err != nil {
		return err
	}
	buf := make([]byte, 256)
	for {
		n, err := p.port.Read(buf)
		if err != nil {
			return err
		}
		if n == 0 {
			break
		}
	}
	return p.port.SetReadTimeout(DefaultReadTimeout)
}

func (p *serialPort) ReadExact(n int) ([]byte, error) {
	out := make([]byte, 0, n)
	buf := make([]byte, n)
	for len(out) < n {
		read, err := p.port.Read(buf[:n-len(out)])
		if err != nil {
			return out, err
		}
		if read == 0 {
			// Read timeout: go.bug.st/serial returns (0, nil) when the
			// configured read deadline elapses with nothing received.
			break
		}
		out = append(out, buf[:read]...)
	}
	return out, nil
}

func (p *serialPort) Write(b []byte) (int, error) {
	return p.port.Write(b)
}

func (p *serialPort) SetReadTimeout(d time.Duration) error {
	return p.port.SetReadTimeout(d)
}

func (p *serialPort) Close() error {
	return p.port.Close()
}
