package mapper

// mapper0 implements NROM: fixed 16 or 32KB PRG, fixed 8KB CHR, no bank
// registers at all. CPU reads in $8000-$FFFF mask with 0x3FFF when there is
// only one 16KB bank (mirroring it into both halves of the window) or
// 0x7FFF when there are two.
type mapper0 struct {
	data *CartridgeData
	mask uint16
}

func newMapper0(data *CartridgeData) *mapper0 {
	mask := uint16(0x7FFF)
	if len(data.PRGROM) <= 0x4000 {
		mask = 0x3FFF
	}
	return &mapper0{data: data, mask: mask}
}

func (m *mapper0) CPURead(addr uint16) (uint8, bool) {
	switch {
	case addr >= 0x8000:
		off := addr & m.mask
		if int(off) < len(m.data.PRGROM) {
			return m.data.PRGROM[off], true
		}
		return 0, true
	case addr >= 0x6000:
		off := addr - 0x6000
		if int(off) < len(m.data.PRGRAM) {
			return m.data.PRGRAM[off], true
		}
		return 0, true
	}
	return 0, false
}

func (m *mapper0) CPUWrite(addr uint16, value uint8) bool {
	if addr >= 0x6000 && addr < 0x8000 {
		off := addr - 0x6000
		if int(off) < len(m.data.PRGRAM) {
			m.data.PRGRAM[off] = value
		}
		return true
	}
	// Writes to $8000-$FFFF are ignored: NROM has no registers.
	return addr >= 0x8000
}

func (m *mapper0) PPURead(addr uint16) (uint8, bool) {
	if addr >= 0x2000 {
		return 0, false
	}
	if len(m.data.CHRROM) > 0 {
		if int(addr) < len(m.data.CHRROM) {
			return m.data.CHRROM[addr], true
		}
		return 0, true
	}
	if int(addr) < len(m.data.CHRRAM) {
		return m.data.CHRRAM[addr], true
	}
	return 0, true
}

func (m *mapper0) PPUWrite(addr uint16, value uint8) bool {
	if addr >= 0x2000 {
		return false
	}
	if len(m.data.CHRRAM) > 0 && int(addr) < len(m.data.CHRRAM) {
		m.data.CHRRAM[addr] = value
	}
	return true
}

func (m *mapper0) Mirroring() Mirroring { return m.data.HeaderMirroring }
func (m *mapper0) ScanlineTick()        {}
func (m *mapper0) IRQPending() bool     { return false }
func (m *mapper0) ClearIRQ()            {}
func (m *mapper0) Reset()               {}

// NROM has no bank registers; its savestate is an empty record.
func (m *mapper0) SaveState() ([]byte, error) { return []byte("{}"), nil }
func (m *mapper0) LoadState(data []byte) error { return nil }
