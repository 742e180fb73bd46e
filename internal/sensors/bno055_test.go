// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/i2c/i2ctest"
)

func bno055InitOps(addr uint16) []i2ctest.IO {
	return []i2ctest.IO{
		{Addr: addr, W: []byte{bno055RegChipID}, R: []byte{bno055ChipID}},
		{Addr: addr, W: []byte{bno055RegOprMode, bno055OprModeConfig}},
		{Addr: addr, W: []byte{bno055RegPwrMode, bno055PwrModeNormal}},
		{Addr: addr, W: []byte{bno055RegPageID, 0x00}},
		{Addr: addr, W: []byte{bno055RegUnitSel, 0x00}},
		{Addr: addr, W: []byte{bno055RegOprMode, bno055OprModeNDOF}},
	}
}

func noSleep(time.Duration) {}

func TestBNO055ReadRotation(t *testing.T) {
	ops := append(bno055InitOps(BNO055DefaultAddr), i2ctest.IO{
		Addr: BNO055DefaultAddr,
		W:    []byte{bno055RegQuatWLSB},
		// w=16384 x=0 y=-8192 z=8192, little endian
		R: []byte{0x00, 0x40, 0x00, 0x00, 0x00, 0xE0, 0x00, 0x20},
	})
	bus := &i2ctest.Playback{Ops: ops}

	d, err := newBNO055(bus, BNO055DefaultAddr, noSleep)
	require.NoError(t, err)

	values, err := d.ReadRotation()
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0, -0.5, 0.5, 1}, values, 1e-12)

	require.NoError(t, bus.Close())
}

func TestBNO055RejectsWrongChip(t *testing.T) {
	bus := &i2ctest.Playback{Ops: []i2ctest.IO{
		{Addr: 0x29, W: []byte{bno055RegChipID}, R: []byte{0x55}},
	}}

	_, err := newBNO055(bus, 0x29, noSleep)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected chip id 0x55")
}
