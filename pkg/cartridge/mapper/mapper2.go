package mapper

import "encoding/json"

// mapper2 implements UxROM: writes anywhere in $8000-$FFFF select the low
// 16KB PRG bank; the high 16KB bank is fixed to the last bank in the ROM.
// CHR is always RAM (8KB, unbanked).
type mapper2 struct {
	data         *CartridgeData
	prgBank      uint8
	prgBankCount uint8
}

func newMapper2(data *CartridgeData) *mapper2 {
	return &mapper2{
		data:         data,
		prgBankCount: uint8(len(data.PRGROM) / 0x4000),
	}
}

func (m *mapper2) CPURead(addr uint16) (uint8, bool) {
	switch {
	case addr >= 0xC000:
		off := uint32(m.prgBankCount-1)*0x4000 + uint32(addr-0xC000)
		return m.data.PRGROM[off], true
	case addr >= 0x8000:
		bank := m.prgBank % m.prgBankCount
		off := uint32(bank)*0x4000 + uint32(addr-0x8000)
		return m.data.PRGROM[off], true
	case addr >= 0x6000:
		off := addr - 0x6000
		if int(off) < len(m.data.PRGRAM) {
			return m.data.PRGRAM[off], true
		}
		return 0, true
	}
	return 0, false
}

func (m *mapper2) CPUWrite(addr uint16, value uint8) bool {
	switch {
	case addr >= 0x8000:
		m.prgBank = value & 0x0F
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

func (m *mapper2) PPURead(addr uint16) (uint8, bool) {
	if addr >= 0x2000 {
		return 0, false
	}
	if int(addr) < len(m.data.CHRRAM) {
		return m.data.CHRRAM[addr], true
	}
	return 0, true
}

func (m *mapper2) PPUWrite(addr uint16, value uint8) bool {
	if addr >= 0x2000 {
		return false
	}
	if int(addr) < len(m.data.CHRRAM) {
		m.data.CHRRAM[addr] = value
	}
	return true
}

func (m *mapper2) Mirroring() Mirroring { return m.data.HeaderMirroring }
func (m *mapper2) ScanlineTick()        {}
func (m *mapper2) IRQPending() bool     { return false }
func (m *mapper2) ClearIRQ()            {}
func (m *mapper2) Reset()               { m.prgBank = 0 }

func (m *mapper2) SaveState() ([]byte, error) {
	return json.Marshal(struct{ PrgBank uint8 }{m.prgBank})
}

func (m *mapper2) LoadState(data []byte) error {
	var s struct{ PrgBank uint8 }
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	m.prgBank = s.PrgBank
	return nil
}
