// Package ppu implements the NES Picture Processing Unit: its
// memory-mapped register file, the "loopy" scroll/address registers, and
// the dot-by-dot background/sprite rendering pipeline.
package ppu

import (
	"github.com/nescore/nescore/pkg/cartridge/mapper"
	"github.com/nescore/nescore/pkg/frame"
	"github.com/nescore/nescore/pkg/logger"
)

// PPU drives one NTSC frame (341 dots x 262 scanlines) at a time,
// producing pixels into a frame.Frame and raising NMIRequested at VBlank.
type PPU struct {
	PPUCTRL   uint8
	PPUMASK   uint8
	PPUSTATUS uint8
	OAMADDR   uint8

	v, t uint16 // loopy VRAM address / temporary address
	x    uint8  // fine X scroll
	w    uint8  // write toggle, shared by $2005/$2006

	VRAM [0x800]uint8 // 2KB physical nametable RAM
	OAM  [256]uint8

	Cycle         int
	Scanline      int // -1 (pre-render) through 260
	Frame         uint64
	FrameComplete bool

	NMIRequested bool

	PaletteManager *PaletteManager
	Output         *frame.Frame

	readBuffer uint8

	bg  bgPipeline
	spr sprPipeline

	Cartridge interface {
		PPURead(addr uint16) (uint8, bool)
		PPUWrite(addr uint16, value uint8) bool
		Mirroring() mapper.Mirroring
		ScanlineTick()
		IRQPending() bool
		ClearIRQ()
	}
}

const (
	PPUCTRLNameTable   = 0x03
	PPUCTRLIncrement   = 0x04
	PPUCTRLSpriteTable = 0x08
	PPUCTRLBGTable     = 0x10
	PPUCTRLSpriteSize  = 0x20
	PPUCTRLMasterSlave = 0x40
	PPUCTRLNMIEnable   = 0x80
)

const (
	PPUMASKGreyscale      = 0x01
	PPUMASKBGLeft         = 0x02
	PPUMASKSpriteLeft     = 0x04
	PPUMASKBGShow         = 0x08
	PPUMASKSpriteShow     = 0x10
	PPUMASKRedEmphasize   = 0x20
	PPUMASKGreenEmphasize = 0x40
	PPUMASKBlueEmphasize  = 0x80
)

const (
	PPUSTATUSOverflow   = 0x20
	PPUSTATUSSprite0Hit = 0x40
	PPUSTATUSVBlank     = 0x80
)

func New() *PPU {
	return &PPU{
		Scanline:       -1,
		PaletteManager: NewPaletteManager(),
		Output:         frame.New(),
	}
}

func (p *PPU) renderingEnabled() bool {
	return p.PPUMASK&(PPUMASKBGShow|PPUMASKSpriteShow) != 0
}

func (p *PPU) Reset() {
	p.PPUCTRL = 0
	p.PPUMASK = 0
	p.PPUSTATUS = 0
	p.OAMADDR = 0
	p.v, p.t, p.x, p.w = 0, 0, 0, 0
	p.Cycle = 0
	p.Scanline = -1
	p.FrameComplete = false
}

func (p *PPU) SetCartridge(cart interface {
	PPURead(addr uint16) (uint8, bool)
	PPUWrite(addr uint16, value uint8) bool
	Mirroring() mapper.Mirroring
	ScanlineTick()
	IRQPending() bool
	ClearIRQ()
}) {
	p.Cartridge = cart
}

// Clock advances the PPU by one dot. The caller (nes.go) invokes this
// three times per CPU cycle.
func (p *PPU) Clock() {
	p.PaletteManager.SetEmphasis(p.PPUMASK)

	switch {
	case p.Scanline == -1:
		p.preRenderDot()
	case p.Scanline >= 0 && p.Scanline < 240:
		p.visibleDot()
	case p.Scanline == 241 && p.Cycle == 1:
		p.PPUSTATUS |= PPUSTATUSVBlank
		if p.PPUCTRL&PPUCTRLNMIEnable != 0 {
			p.NMIRequested = true
		}
	}

	p.Cycle++
	if p.Cycle > 340 {
		p.Cycle = 0
		p.Scanline++
		if p.Scanline >= 0 && p.Scanline < 240 && p.renderingEnabled() && p.Cartridge != nil {
			p.Cartridge.ScanlineTick()
		}
		if p.Scanline > 260 {
			p.Scanline = -1
			p.Frame++
			p.FrameComplete = true
		}
	}
}

// ReadRegister handles CPU reads of $2000-$2007 (mirrored every 8 bytes).
func (p *PPU) ReadRegister(addr uint16) uint8 {
	switch addr {
	case 0x2002:
		value := p.PPUSTATUS
		p.PPUSTATUS &^= PPUSTATUSVBlank
		p.w = 0
		return value
	case 0x2004:
		return p.OAM[p.OAMADDR]
	case 0x2007:
		var value uint8
		if p.v >= 0x3F00 {
			value = p.readVRAM(p.v)
			p.readBuffer = p.readVRAM(p.v - 0x1000)
		} else {
			value = p.readBuffer
			p.readBuffer = p.readVRAM(p.v)
		}
		p.advanceVRAMAddress()
		return value
	}
	return 0
}

// WriteRegister handles CPU writes of $2000-$2007.
func (p *PPU) WriteRegister(addr uint16, value uint8) {
	switch addr {
	case 0x2000:
		p.PPUCTRL = value
		p.t = (p.t & 0xF3FF) | ((uint16(value) & 0x03) << 10)
	case 0x2001:
		p.PPUMASK = value
	case 0x2003:
		p.OAMADDR = value
	case 0x2004:
		p.OAM[p.OAMADDR] = value
		p.OAMADDR++
	case 0x2005:
		if p.w == 0 {
			p.t = (p.t & 0xFFE0) | (uint16(value) >> 3)
			p.x = value & 0x07
			p.w = 1
		} else {
			p.t = (p.t & 0x0C1F) | ((uint16(value) & 0x07) << 12) | ((uint16(value) & 0xF8) << 2)
			p.w = 0
		}
	case 0x2006:
		if p.w == 0 {
			p.t = (p.t & 0x00FF) | ((uint16(value) & 0x3F) << 8)
			p.w = 1
		} else {
			p.t = (p.t & 0xFF00) | uint16(value)
			p.v = p.t
			p.w = 0
		}
	case 0x2007:
		p.writeVRAM(p.v, value)
		p.advanceVRAMAddress()
	}
}

func (p *PPU) advanceVRAMAddress() {
	if p.PPUCTRL&PPUCTRLIncrement != 0 {
		p.v += 32
	} else {
		p.v++
	}
}

func (p *PPU) readVRAM(addr uint16) uint8 {
	addr &= 0x3FFF
	switch {
	case addr < 0x2000:
		if p.Cartridge != nil {
			if value, ok := p.Cartridge.PPURead(addr); ok {
				return value
			}
		}
		return 0
	case addr < 0x3F00:
		return p.VRAM[p.mirrorNameTable(addr)]
	default:
		return p.PaletteManager.ReadPalette(uint8(addr & 0x1F))
	}
}

func (p *PPU) writeVRAM(addr uint16, value uint8) {
	addr &= 0x3FFF
	switch {
	case addr < 0x2000:
		if p.Cartridge != nil {
			p.Cartridge.PPUWrite(addr, value)
		}
	case addr < 0x3F00:
		p.VRAM[p.mirrorNameTable(addr)] = value
	default:
		p.PaletteManager.WritePalette(uint8(addr&0x1F), value)
	}
}

// mirrorNameTable maps a $2000-$2FFF nametable address onto the 2KB of
// physical VRAM according to the cartridge's mirroring mode.
func (p *PPU) mirrorNameTable(addr uint16) uint16 {
	offset := (addr - 0x2000) & 0x0FFF
	table := offset / 0x400
	cell := offset % 0x400

	mirroring := mapper.MirrorHorizontal
	if p.Cartridge != nil {
		mirroring = p.Cartridge.Mirroring()
	}

	switch mirroring {
	case mapper.MirrorVertical:
		return (table%2)*0x400 + cell
	case mapper.MirrorSingleScreenLow:
		return cell
	case mapper.MirrorSingleScreenHigh:
		return 0x400 + cell
	default: // horizontal (four-screen falls back to horizontal-style folding)
		return (table/2)*0x400 + cell
	}
}

func (p *PPU) IsMapperIRQPending() bool {
	return p.Cartridge != nil && p.Cartridge.IRQPending()
}

func (p *PPU) ClearMapperIRQ() {
	if p.Cartridge != nil {
		p.Cartridge.ClearIRQ()
	}
}

func (p *PPU) logScanlineTrace() {
	logger.LogPPU("scanline=%d cycle=%d v=$%04X", p.Scanline, p.Cycle, p.v)
}
