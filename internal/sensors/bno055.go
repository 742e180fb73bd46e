// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"encoding/binary"
	"fmt"
	"log"
	"time"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// BNO055 register map (page 0) subset used for fused orientation.
const (
	BNO055DefaultAddr uint16 = 0x28

	bno055ChipID = 0xA0

	bno055RegChipID     = 0x00
	bno055RegPageID     = 0x07
	bno055RegQuatWLSB   = 0x20
	bno055RegUnitSel    = 0x3B
	bno055RegOprMode    = 0x3D
	bno055RegPwrMode    = 0x3E
	bno055OprModeConfig = 0x00
	bno055OprModeNDOF   = 0x0C
	bno055PwrModeNormal = 0x00

	// quaternion LSB weight: 1 unit = 1/2^14
	bno055QuatScale = 1.0 / (1 << 14)
)

// BNO055 reads the on-chip fused orientation of a Bosch BNO055 over I²C and
// exposes it as a rotation vector.
type BNO055 struct {
	dev   *i2c.Dev
	sleep func(time.Duration)
}

// OpenBNO055 initializes periph, opens the named I²C bus ("" for the first
// one) and brings the sensor into NDOF fusion mode. The caller owns the
// returned bus.
func OpenBNO055(busName string, addr uint16) (*BNO055, i2c.BusCloser, error) {
	if _, err := host.Init(); err != nil {
		return nil, nil, fmt.Errorf("periph host init: %w", err)
	}

	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, nil, fmt.Errorf("BNO055: open I2C bus %q: %w", busName, err)
	}

	d, err := NewBNO055(bus, addr)
	if err != nil {
		bus.Close()
		return nil, nil, err
	}
	return d, bus, nil
}

// NewBNO055 configures a BNO055 found at addr on bus.
func NewBNO055(bus i2c.Bus, addr uint16) (*BNO055, error) {
	return newBNO055(bus, addr, time.Sleep)
}

func newBNO055(bus i2c.Bus, addr uint16, sleep func(time.Duration)) (*BNO055, error) {
	d := &BNO055{dev: &i2c.Dev{Bus: bus, Addr: addr}, sleep: sleep}
	if err := d.init(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *BNO055) init() error {
	id, err := d.readReg(bno055RegChipID)
	if err != nil {
		return fmt.Errorf("BNO055: read chip id: %w", err)
	}
	if id != bno055ChipID {
		return fmt.Errorf("BNO055: unexpected chip id 0x%02X at 0x%02X", id, d.dev.Addr)
	}

	// Register writes are only accepted in CONFIG mode.
	steps := []struct {
		reg, val byte
		wait     time.Duration
		what     string
	}{
		{bno055RegOprMode, bno055OprModeConfig, 25 * time.Millisecond, "enter config mode"},
		{bno055RegPwrMode, bno055PwrModeNormal, 10 * time.Millisecond, "set power mode"},
		{bno055RegPageID, 0x00, 0, "select page 0"},
		{bno055RegUnitSel, 0x00, 0, "select units"},
		{bno055RegOprMode, bno055OprModeNDOF, 20 * time.Millisecond, "enter NDOF mode"},
	}
	for _, s := range steps {
		if err := d.writeReg(s.reg, s.val); err != nil {
			return fmt.Errorf("BNO055: %s: %w", s.what, err)
		}
		if s.wait > 0 {
			d.sleep(s.wait)
		}
	}

	log.Printf("sensors: BNO055 at 0x%02X in NDOF fusion mode", d.dev.Addr)
	return nil
}

// ReadRotation returns the fused unit quaternion as [x, y, z, w].
func (d *BNO055) ReadRotation() ([]float64, error) {
	var buf [8]byte
	if err := d.dev.Tx([]byte{bno055RegQuatWLSB}, buf[:]); err != nil {
		return nil, fmt.Errorf("BNO055: read quaternion: %w", err)
	}

	w := float64(int16(binary.LittleEndian.Uint16(buf[0:]))) * bno055QuatScale
	x := float64(int16(binary.LittleEndian.Uint16(buf[2:]))) * bno055QuatScale
	y := float64(int16(binary.LittleEndian.Uint16(buf[4:]))) * bno055QuatScale
	z := float64(int16(binary.LittleEndian.Uint16(buf[6:]))) * bno055QuatScale

	return []float64{x, y, z, w}, nil
}

func (d *BNO055) readReg(reg byte) (byte, error) {
	var r [1]byte
	if err := d.dev.Tx([]byte{reg}, r[:]); err != nil {
		return 0, err
	}
	return r[0], nil
}

func (d *BNO055) writeReg(reg, val byte) error {
	return d.dev.Tx([]byte{reg, val}, nil)
}
