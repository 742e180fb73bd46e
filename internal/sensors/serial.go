// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"math"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	nmea "github.com/adrianmo/go-nmea"
	serial "github.com/jacobsa/go-serial/serial"
)

// TypeQRV is the NMEA sentence type carrying a rotation vector:
//
//	$IMQRV,<x>,<y>,<z>,<w>,<accuracy>*hh
const TypeQRV = "QRV"

// QRV is a quaternion rotation vector sentence.
type QRV struct {
	nmea.BaseSentence
	X, Y, Z, W float64
	Accuracy   int64
}

func init() {
	nmea.MustRegisterParser(TypeQRV, func(s nmea.BaseSentence) (nmea.Sentence, error) {
		p := nmea.NewParser(s)
		return QRV{
			BaseSentence: s,
			X:            p.Float64(0, "x"),
			Y:            p.Float64(1, "y"),
			Z:            p.Float64(2, "z"),
			W:            p.Float64(3, "w"),
			Accuracy:     p.Int64(4, "accuracy"),
		}, p.Err()
	})
}

// Values returns the rotation vector as [x, y, z, w].
func (s QRV) Values() []float64 {
	return []float64{s.X, s.Y, s.Z, s.W}
}

// SerialManager reads rotation vectors from a serial-attached IMU that
// streams QRV sentences. The port is opened on the first subscription and
// closed when the last listener leaves.
type SerialManager struct {
	opts serial.OpenOptions
	open func(serial.OpenOptions) (io.ReadWriteCloser, error)

	d dispatcher

	mu      sync.Mutex
	port    io.ReadWriteCloser
	done    chan struct{}
	closing atomic.Bool
}

// NewSerialManager returns a manager for the given port and baud rate.
func NewSerialManager(portName string, baudRate int) *SerialManager {
	return &SerialManager{
		opts: serial.OpenOptions{
			PortName:              portName,
			BaudRate:              uint(baudRate),
			DataBits:              8,
			StopBits:              1,
			MinimumReadSize:       1,
			ParityMode:            serial.PARITY_NONE,
			InterCharacterTimeout: 0,
		},
		open: serial.Open,
	}
}

// Subscribe registers l. The sampling period is a hint the link cannot
// honor; the device decides its own output rate.
func (m *SerialManager) Subscribe(t Type, _ time.Duration, l Listener) error {
	if !provides(t) {
		return fmt.Errorf("serial %s: %v: %w", m.opts.PortName, t, ErrSensorUnavailable)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	_, added := m.d.add(l, t)
	if m.port != nil {
		return nil
	}

	port, err := m.open(m.opts)
	if err != nil {
		if added {
			m.d.remove(l)
		}
		return fmt.Errorf("serial %s: open: %w", m.opts.PortName, err)
	}
	log.Printf("sensors: serial port opened on %s at %d baud", m.opts.PortName, m.opts.BaudRate)

	m.port = port
	m.closing.Store(false)
	m.done = make(chan struct{})
	go m.readLoop(port, m.done)
	return nil
}

// Unsubscribe removes l and closes the port if it was the last listener.
func (m *SerialManager) Unsubscribe(l Listener) {
	m.mu.Lock()
	defer m.mu.Unlock()

	last, removed := m.d.remove(l)
	if !removed || !last || m.port == nil {
		return
	}

	m.closing.Store(true)
	if err := m.port.Close(); err != nil {
		log.Printf("sensors: serial %s close error: %v", m.opts.PortName, err)
	}
	<-m.done
	m.port = nil
	log.Printf("sensors: serial port %s closed", m.opts.PortName)
}

// readLoop delivers sentences until the port fails or is closed. A port that
// fails on its own is dropped so the next Subscribe reopens the device.
func (m *SerialManager) readLoop(port io.ReadWriteCloser, done chan<- struct{}) {
	err := m.read(port)
	close(done)
	if m.closing.Load() {
		return
	}
	log.Printf("sensors: serial %s read error: %v", m.opts.PortName, err)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.port != port {
		return
	}
	port.Close()
	m.port = nil
	log.Printf("sensors: serial port %s lost, reopening on next subscribe", m.opts.PortName)
}

func (m *SerialManager) read(port io.Reader) error {
	reader := bufio.NewReader(port)
	for {
		line, err := reader.ReadString('\n')
		if values, accuracy, ok := parseRotationLine(line); ok {
			m.d.dispatch(values, accuracy, time.Now())
		}
		if err != nil {
			return err
		}
	}
}

// parseRotationLine decodes one line of the serial stream. Lines that are
// not QRV sentences, or fail their checksum, are skipped.
func parseRotationLine(line string) ([]float64, Accuracy, bool) {
	line = strings.TrimSpace(line)
	if line == "" || !strings.HasPrefix(line, "$") {
		return nil, 0, false
	}

	sentence, err := nmea.Parse(line)
	if err != nil {
		return nil, 0, false
	}
	qrv, ok := sentence.(QRV)
	if !ok {
		return nil, 0, false
	}
	values := qrv.Values()
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, 0, false
		}
	}
	return values, Accuracy(qrv.Accuracy), true
}
