// Package bus wires the CPU's 16-bit address space to RAM, the PPU and
// APU register windows, the controllers, and the cartridge.
package bus

import (
	"github.com/nescore/nescore/pkg/logger"
)

// Bus implements the NES's memory map as seen by the CPU:
//
//	$0000-$1FFF  2KB internal RAM, mirrored every $0800
//	$2000-$3FFF  PPU registers, mirrored every 8 bytes
//	$4000-$4013  APU registers
//	$4014        OAM DMA
//	$4015        APU status
//	$4016        controller 1 (read), strobe (write, both controllers)
//	$4017        controller 2 (read), APU frame counter (write)
//	$4018-$401F  unused (APU/IO test registers)
//	$4020-$FFFF  cartridge (PRG-RAM, PRG-ROM, mapper registers)
type Bus struct {
	RAM [2048]uint8

	PPU interface {
		ReadRegister(addr uint16) uint8
		WriteRegister(addr uint16, value uint8)
	}

	APU interface {
		ReadRegister(addr uint16) uint8
		WriteRegister(addr uint16, value uint8)
	}

	Cartridge interface {
		CPURead(addr uint16) (uint8, bool)
		CPUWrite(addr uint16, value uint8) bool
	}

	Controller1 interface {
		Read() uint8
		Write(value uint8)
	}
	Controller2 interface {
		Read() uint8
	}

	dmaPending bool
	dmaPage    uint8
}

// New creates an unwired Bus; SetPPU/SetAPU/SetCartridge/SetControllers
// attach the rest of the system before use.
func New() *Bus {
	return &Bus{}
}

func (m *Bus) SetCartridge(cart interface {
	CPURead(addr uint16) (uint8, bool)
	CPUWrite(addr uint16, value uint8) bool
}) {
	m.Cartridge = cart
}

func (m *Bus) SetPPU(ppu interface {
	ReadRegister(addr uint16) uint8
	WriteRegister(addr uint16, value uint8)
}) {
	m.PPU = ppu
}

func (m *Bus) SetAPU(apu interface {
	ReadRegister(addr uint16) uint8
	WriteRegister(addr uint16, value uint8)
}) {
	m.APU = apu
}

func (m *Bus) SetControllers(c1 interface {
	Read() uint8
	Write(value uint8)
}, c2 interface{ Read() uint8 }) {
	m.Controller1 = c1
	m.Controller2 = c2
}

// Read returns the byte visible to the CPU at addr.
func (m *Bus) Read(addr uint16) uint8 {
	switch {
	case addr < 0x2000:
		return m.RAM[addr&0x07FF]

	case addr < 0x4000:
		if m.PPU != nil {
			return m.PPU.ReadRegister(0x2000 + (addr & 0x7))
		}
		return 0

	case addr == 0x4016:
		if m.Controller1 != nil {
			return m.Controller1.Read()
		}
		return 0

	case addr == 0x4017:
		if m.Controller2 != nil {
			return m.Controller2.Read()
		}
		return 0

	case addr < 0x4020:
		if m.APU != nil {
			return m.APU.ReadRegister(addr)
		}
		return 0

	default:
		if m.Cartridge != nil {
			if value, handled := m.Cartridge.CPURead(addr); handled {
				return value
			}
		}
		return 0
	}
}

// Write stores value at addr, routing $4014 writes into a pending OAM DMA
// request rather than performing the transfer inline — the CPU must stall
// for 513 or 514 cycles around the copy, which only it can account for.
func (m *Bus) Write(addr uint16, value uint8) {
	switch {
	case addr < 0x2000:
		m.RAM[addr&0x07FF] = value

	case addr < 0x4000:
		if m.PPU != nil {
			m.PPU.WriteRegister(0x2000+(addr&0x7), value)
		}

	case addr == 0x4014:
		m.dmaPending = true
		m.dmaPage = value

	case addr == 0x4016:
		if m.Controller1 != nil {
			m.Controller1.Write(value)
		}
		if c2, ok := m.Controller2.(interface{ Write(value uint8) }); ok {
			c2.Write(value)
		}

	case addr < 0x4020:
		if m.APU != nil {
			m.APU.WriteRegister(addr, value)
		}

	default:
		if m.Cartridge != nil {
			m.Cartridge.CPUWrite(addr, value)
		}
	}
}

// TakeDMARequest reports and clears a pending OAM DMA triggered by a
// $4014 write, so the CPU can stall the correct number of cycles before
// calling PerformOAMDMA.
func (m *Bus) TakeDMARequest() (page uint8, pending bool) {
	if !m.dmaPending {
		return 0, false
	}
	m.dmaPending = false
	return m.dmaPage, true
}

// PerformOAMDMA copies the 256-byte page starting at page<<8 into PPU OAM
// via the $2004 register, one byte per call as the real DMA unit does.
func (m *Bus) PerformOAMDMA(page uint8) {
	base := uint16(page) << 8
	logger.LogCPU("OAM DMA from page $%02X", page)
	for i := 0; i < 256; i++ {
		value := m.Read(base + uint16(i))
		if m.PPU != nil {
			m.PPU.WriteRegister(0x2004, value)
		}
	}
}
