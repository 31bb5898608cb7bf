package ppu

import "encoding/json"

// State is the tagged, version-local snapshot of everything a PPU needs
// to resume at a frame boundary: the loopy registers, the register
// file, OAM and VRAM, and palette RAM. It does not capture the
// background/sprite shift-register latches mid-scanline — savestates
// are meant to be taken at VBlank, where those latches hold nothing a
// restored pre-render line won't immediately refetch.
type State struct {
	PPUCTRL, PPUMASK, PPUSTATUS, OAMADDR uint8

	V, T uint16
	X, W uint8

	VRAM [0x800]uint8
	OAM  [256]uint8

	Cycle, Scanline int
	Frame           uint64
	NMIRequested    bool

	ReadBuffer uint8
	PaletteRAM [32]uint8
}

// SaveState captures the PPU's current state as a tagged JSON record, per
// the savestate external interface in §6 — not bit-compatible across
// core versions.
func (p *PPU) SaveState() ([]byte, error) {
	s := State{
		PPUCTRL: p.PPUCTRL, PPUMASK: p.PPUMASK, PPUSTATUS: p.PPUSTATUS, OAMADDR: p.OAMADDR,
		V: p.v, T: p.t, X: p.x, W: p.w,
		VRAM: p.VRAM, OAM: p.OAM,
		Cycle: p.Cycle, Scanline: p.Scanline, Frame: p.Frame, NMIRequested: p.NMIRequested,
		ReadBuffer: p.readBuffer, PaletteRAM: p.PaletteManager.PaletteRAM,
	}
	return json.Marshal(s)
}

// LoadState restores a PPU from a record produced by SaveState.
func (p *PPU) LoadState(data []byte) error {
	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	p.PPUCTRL, p.PPUMASK, p.PPUSTATUS, p.OAMADDR = s.PPUCTRL, s.PPUMASK, s.PPUSTATUS, s.OAMADDR
	p.v, p.t, p.x, p.w = s.V, s.T, s.X, s.W
	p.VRAM = s.VRAM
	p.OAM = s.OAM
	p.Cycle, p.Scanline, p.Frame, p.NMIRequested = s.Cycle, s.Scanline, s.Frame, s.NMIRequested
	p.readBuffer = s.ReadBuffer
	p.PaletteManager.PaletteRAM = s.PaletteRAM
	return nil
}
