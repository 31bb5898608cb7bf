// Package nes wires the CPU, PPU, APU, cartridge and controllers together
// and drives the system clock.
package nes

import (
	"github.com/nescore/nescore/pkg/apu"
	"github.com/nescore/nescore/pkg/bus"
	"github.com/nescore/nescore/pkg/cartridge"
	"github.com/nescore/nescore/pkg/cpu"
	"github.com/nescore/nescore/pkg/frame"
	"github.com/nescore/nescore/pkg/input"
	"github.com/nescore/nescore/pkg/ppu"
)

// NES owns one emulated console: its CPU, PPU, APU, bus, and the two
// controller ports.
type NES struct {
	CPU       *cpu.CPU
	PPU       *ppu.PPU
	APU       *apu.APU
	Bus       *bus.Bus
	Cartridge *cartridge.Cartridge

	Controller1 *input.Controller
	Controller2 *input.Controller

	Cycles uint64
	Frame  uint64
}

// New creates an NES with every component wired to the bus but no
// cartridge loaded.
func New() *NES {
	n := &NES{}

	n.Bus = bus.New()
	n.PPU = ppu.New()
	n.APU = apu.New()
	n.Controller1 = input.New()
	n.Controller2 = input.New()
	n.CPU = cpu.New(n.Bus)

	n.Bus.SetPPU(n.PPU)
	n.Bus.SetAPU(n.APU)
	n.Bus.SetControllers(n.Controller1, n.Controller2)
	n.APU.SetMemory(n.Bus)

	return n
}

// LoadCartridge attaches a parsed cartridge to the bus and PPU.
func (n *NES) LoadCartridge(cart *cartridge.Cartridge) {
	n.Cartridge = cart
	n.Bus.SetCartridge(cart)
	n.PPU.SetCartridge(cart)
}

// Reset resets every component and the cartridge's mapper to power-on
// state.
func (n *NES) Reset() {
	n.CPU.Reset()
	n.PPU.Reset()
	n.APU.Reset()
	if n.Cartridge != nil {
		n.Cartridge.Reset()
	}
	n.Cycles = 0
	n.Frame = 0
}

// Step executes one CPU instruction, advancing the PPU three dots and the
// APU one tick per CPU cycle consumed, and services OAM DMA and the NMI/IRQ
// lines raised by the PPU and cartridge.
func (n *NES) Step() {
	if page, pending := n.Bus.TakeDMARequest(); pending {
		// The real DMA unit steals 513 cycles, 514 if it starts on an odd
		// CPU cycle; Cycles tracks total elapsed CPU cycles since reset so
		// parity is read directly off it.
		stall := 513
		if n.Cycles%2 == 1 {
			stall = 514
		}
		n.Bus.PerformOAMDMA(page)
		n.advanceClocks(stall)
	}

	cpuCycles := n.CPU.Step()
	n.advanceClocks(cpuCycles)
}

// advanceClocks runs the PPU and APU forward by cpuCycles worth of CPU time
// and propagates any interrupt lines they raised.
func (n *NES) advanceClocks(cpuCycles int) {
	for i := 0; i < cpuCycles*3; i++ {
		n.PPU.Clock()

		if n.PPU.NMIRequested {
			n.CPU.TriggerNMI()
			n.PPU.NMIRequested = false
		}
		if n.PPU.IsMapperIRQPending() {
			n.CPU.TriggerIRQ()
			n.PPU.ClearMapperIRQ()
		}
	}

	for i := 0; i < cpuCycles; i++ {
		n.APU.Step()
	}

	n.Cycles += uint64(cpuCycles)
}

// StepFrame runs the system until the PPU completes a frame, bailing out
// after a generous budget of CPU steps so a runaway ROM can never hang the
// host.
func (n *NES) StepFrame() {
	const maxSteps = 100000

	steps := 0
	for !n.PPU.FrameComplete {
		n.Step()
		steps++
		if steps > maxSteps {
			n.PPU.FrameComplete = true
			break
		}
	}

	n.PPU.FrameComplete = false
	n.Frame = n.PPU.Frame
}

// GetFrame returns the most recently rendered frame buffer.
func (n *NES) GetFrame() *frame.Frame {
	return n.PPU.Output
}

// FrameNumber returns the count of frames completed since reset.
func (n *NES) FrameNumber() uint64 {
	return n.Frame
}
