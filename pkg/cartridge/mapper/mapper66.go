package mapper

import "encoding/json"

// mapper66 implements GxROM: a single write anywhere in $8000-$FFFF packs
// both bank selects into one byte — bits 4-5 choose the 32KB PRG bank,
// bits 0-1 choose the 8KB CHR bank.
type mapper66 struct {
	data *CartridgeData

	prgBank uint8
	chrBank uint8

	prgBankCount uint8
	chrBankCount uint8
}

func newMapper66(data *CartridgeData) *mapper66 {
	prgCount := uint8(len(data.PRGROM) / 0x8000)
	if prgCount == 0 {
		prgCount = 1
	}
	chrCount := uint8(len(data.CHRROM) / 0x2000)
	if chrCount == 0 {
		chrCount = 1
	}
	if len(data.CHRROM) == 0 && len(data.CHRRAM) == 0 {
		data.CHRRAM = make([]uint8, 0x2000)
	}
	return &mapper66{data: data, prgBankCount: prgCount, chrBankCount: chrCount}
}

func (m *mapper66) CPURead(addr uint16) (uint8, bool) {
	if addr < 0x8000 {
		return 0, false
	}
	bank := m.prgBank % m.prgBankCount
	off := uint32(bank)*0x8000 + uint32(addr-0x8000)
	if int(off) < len(m.data.PRGROM) {
		return m.data.PRGROM[off], true
	}
	return 0, true
}

func (m *mapper66) CPUWrite(addr uint16, value uint8) bool {
	if addr < 0x8000 {
		return false
	}
	m.chrBank = value & 0x03
	m.prgBank = (value >> 4) & 0x03
	return true
}

func (m *mapper66) PPURead(addr uint16) (uint8, bool) {
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

func (m *mapper66) PPUWrite(addr uint16, value uint8) bool {
	if addr >= 0x2000 {
		return false
	}
	if len(m.data.CHRROM) == 0 && int(addr) < len(m.data.CHRRAM) {
		m.data.CHRRAM[addr] = value
	}
	return true
}

func (m *mapper66) Mirroring() Mirroring { return m.data.HeaderMirroring }
func (m *mapper66) ScanlineTick()        {}
func (m *mapper66) IRQPending() bool     { return false }
func (m *mapper66) ClearIRQ()            {}
func (m *mapper66) Reset() {
	m.prgBank = 0
	m.chrBank = 0
}

func (m *mapper66) SaveState() ([]byte, error) {
	return json.Marshal(struct{ PrgBank, ChrBank uint8 }{m.prgBank, m.chrBank})
}

func (m *mapper66) LoadState(data []byte) error {
	var s struct{ PrgBank, ChrBank uint8 }
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	m.prgBank, m.chrBank = s.PrgBank, s.ChrBank
	return nil
}
