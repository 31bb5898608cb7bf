package mapper

import "encoding/json"

// mapper3 implements CNROM: PRG is fixed (16 or 32KB), and any write to
// $8000-$FFFF selects the 8KB CHR-ROM bank.
type mapper3 struct {
	data         *CartridgeData
	chrBank      uint8
	chrBankCount uint8
	prgMask      uint16
}

func newMapper3(data *CartridgeData) *mapper3 {
	mask := uint16(0x7FFF)
	if len(data.PRGROM) <= 0x4000 {
		mask = 0x3FFF
	}
	count := uint8(len(data.CHRROM) / 0x2000)
	if count == 0 {
		count = 1
	}
	return &mapper3{data: data, chrBankCount: count, prgMask: mask}
}

func (m *mapper3) CPURead(addr uint16) (uint8, bool) {
	switch {
	case addr >= 0x8000:
		off := addr & m.prgMask
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

func (m *mapper3) CPUWrite(addr uint16, value uint8) bool {
	switch {
	case addr >= 0x8000:
		m.chrBank = value & 0x03
		return true
	case addr >= 0x6000:
		off := addr - 0x6000
		if int(off) < len(m.data.PRGRAM) {
			m.data.PRGRAM[off] = value
		}
		return true
	}
	return false
}

func (m *mapper3) PPURead(addr uint16) (uint8, bool) {
	if addr >= 0x2000 {
		return 0, false
	}
	if len(m.data.CHRROM) > 0 {
		bank := m.chrBank % m.chrBankCount
		off := uint32(bank)*0x2000 + uint32(addr)
		if int(off) < len(m.data.CHRROM) {
			return m.data.CHRROM[off], true
		}
		return 0, true
	}
	if int(addr) < len(m.data.CHRRAM) {
		return m.data.CHRRAM[addr], true
	}
	return 0, true
}

func (m *mapper3) PPUWrite(addr uint16, value uint8) bool {
	if addr >= 0x2000 {
		return false
	}
	// CHR-ROM is read-only; only the rare CHR-RAM variant accepts writes.
	if len(m.data.CHRROM) == 0 && int(addr) < len(m.data.CHRRAM) {
		m.data.CHRRAM[addr] = value
	}
	return true
}

func (m *mapper3) Mirroring() Mirroring { return m.data.HeaderMirroring }
func (m *mapper3) ScanlineTick()        {}
func (m *mapper3) IRQPending() bool     { return false }
func (m *mapper3) ClearIRQ()            {}
func (m *mapper3) Reset()               { m.chrBank = 0 }

func (m *mapper3) SaveState() ([]byte, error) {
	return json.Marshal(struct{ ChrBank uint8 }{m.chrBank})
}

func (m *mapper3) LoadState(data []byte) error {
	var s struct{ ChrBank uint8 }
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	m.chrBank = s.ChrBank
	return nil
}
