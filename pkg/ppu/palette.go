package ppu

import "github.com/nescore/nescore/pkg/frame"

// masterPalette is the NES's fixed 64-color RGB palette.
var masterPalette = [64][3]uint8{
	// 0x00-0x0F
	{0x80, 0x80, 0x80}, {0x00, 0x3D, 0xA6}, {0x00, 0x12, 0xB0}, {0x44, 0x00, 0x96},
	{0xA1, 0x00, 0x5E}, {0xC7, 0x00, 0x28}, {0xBA, 0x06, 0x00}, {0x8C, 0x17, 0x00},
	{0x5C, 0x2F, 0x00}, {0x10, 0x45, 0x00}, {0x05, 0x4A, 0x00}, {0x00, 0x47, 0x2E},
	{0x00, 0x41, 0x66}, {0x00, 0x00, 0x00}, {0x05, 0x05, 0x05}, {0x05, 0x05, 0x05},

	// 0x10-0x1F
	{0xC7, 0xC7, 0xC7}, {0x00, 0x77, 0xFF}, {0x21, 0x55, 0xFF}, {0x82, 0x37, 0xFA},
	{0xEB, 0x2F, 0xB5}, {0xFF, 0x29, 0x50}, {0xFF, 0x22, 0x00}, {0xD6, 0x32, 0x00},
	{0xC4, 0x62, 0x00}, {0x35, 0x80, 0x00}, {0x05, 0x8F, 0x00}, {0x00, 0x8A, 0x55},
	{0x00, 0x99, 0xCC}, {0x21, 0x21, 0x21}, {0x09, 0x09, 0x09}, {0x09, 0x09, 0x09},

	// 0x20-0x2F
	{0xFF, 0xFF, 0xFF}, {0x0F, 0xD7, 0xFF}, {0x69, 0xA2, 0xFF}, {0xD4, 0x80, 0xFF},
	{0xFF, 0x45, 0xF3}, {0xFF, 0x61, 0x8B}, {0xFF, 0x88, 0x33}, {0xFF, 0x9C, 0x12},
	{0xFA, 0xBC, 0x20}, {0x9F, 0xE3, 0x0E}, {0x2B, 0xF0, 0x35}, {0x0C, 0xF0, 0xA4},
	{0x05, 0xFB, 0xFF}, {0x5E, 0x5E, 0x5E}, {0x0D, 0x0D, 0x0D}, {0x0D, 0x0D, 0x0D},

	// 0x30-0x3F
	{0xFF, 0xFF, 0xFF}, {0xA6, 0xFC, 0xFF}, {0xB3, 0xEC, 0xFF}, {0xDA, 0xAB, 0xEB},
	{0xFF, 0xA8, 0xF9}, {0xFF, 0xAB, 0xB3}, {0xFF, 0xD2, 0xB0}, {0xFF, 0xEF, 0xA6},
	{0xFF, 0xF7, 0x9C}, {0xD7, 0xFF, 0xB3}, {0xC6, 0xFF, 0xDE}, {0xC4, 0xFF, 0xF6},
	{0xC4, 0xF0, 0xFF}, {0xCC, 0xCC, 0xCC}, {0x3C, 0x3C, 0x3C}, {0x3C, 0x3C, 0x3C},
}

// PaletteManager owns the 32-byte palette RAM and the emphasis bits from
// PPUMASK that tint every color it returns.
type PaletteManager struct {
	PaletteRAM [32]uint8
	Emphasis   uint8 // bits 5-7 of PPUMASK
}

func NewPaletteManager() *PaletteManager {
	return &PaletteManager{}
}

// mirror folds the four backdrop-mirrored addresses ($10/$14/$18/$1C) onto
// their background counterparts.
func mirror(addr uint8) uint8 {
	addr &= 0x1F
	if addr&0x13 == 0x10 {
		return addr &^ 0x10
	}
	return addr
}

func (pm *PaletteManager) ReadPalette(addr uint8) uint8 {
	return pm.PaletteRAM[mirror(addr)]
}

func (pm *PaletteManager) WritePalette(addr uint8, value uint8) {
	pm.PaletteRAM[mirror(addr)] = value & 0x3F
}

func (pm *PaletteManager) SetEmphasis(emphasis uint8) {
	pm.Emphasis = emphasis & 0xE0
}

// RGB converts a 6-bit NES color index into the host RGB it should be
// presented as, applying the current emphasis bits.
func (pm *PaletteManager) RGB(colorIndex uint8) frame.RGB {
	c := masterPalette[colorIndex&0x3F]
	r, g, b := c[0], c[1], c[2]
	if pm.Emphasis&0x20 == 0 {
		r = uint8(uint16(r) * 3 / 4)
	}
	if pm.Emphasis&0x40 == 0 {
		g = uint8(uint16(g) * 3 / 4)
	}
	if pm.Emphasis&0x80 == 0 {
		b = uint8(uint16(b) * 3 / 4)
	}
	return frame.RGB{R: r, G: g, B: b}
}
