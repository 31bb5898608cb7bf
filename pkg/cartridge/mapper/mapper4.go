package mapper

import "encoding/json"

// mapper4 implements MMC3. The bank-select register at an even address in
// $8000-$9FFE picks which of eight target registers ($8001 odd) receives
// the next data write, plus the PRG banking mode bit and CHR A12 inversion
// bit. $A000 even selects mirroring; $C000/$C001 set the IRQ latch/reload;
// $E000/$E001 disable/enable the IRQ. The scanline counter is clocked once
// per visible scanline by ScanlineTick while rendering is enabled.
type mapper4 struct {
	data *CartridgeData

	bankSelect uint8
	bankReg    [8]uint8
	mirror     uint8
	ramProtect uint8

	irqLatch   uint8
	irqCounter uint8
	irqReload  bool
	irqEnabled bool
	irqPending bool

	prgBankCount uint8
	chrBankCount uint8
}

func newMapper4(data *CartridgeData) *mapper4 {
	m := &mapper4{data: data, ramProtect: 0x80}
	m.prgBankCount = uint8(len(data.PRGROM) / 0x2000)
	if len(data.CHRROM) > 0 {
		m.chrBankCount = uint8(len(data.CHRROM) / 0x0400)
	} else {
		if len(data.CHRRAM) == 0 {
			data.CHRRAM = make([]uint8, 0x2000)
		}
		m.chrBankCount = uint8(len(data.CHRRAM) / 0x0400)
	}
	if len(data.PRGRAM) == 0 {
		data.PRGRAM = make([]uint8, 0x2000)
	}
	if m.prgBankCount >= 2 {
		m.bankReg[6] = m.prgBankCount - 2
		m.bankReg[7] = m.prgBankCount - 1
	}
	return m
}

func (m *mapper4) prgBankAt(slot uint8) uint32 {
	prgMode := (m.bankSelect >> 6) & 1
	var bank uint8
	switch slot {
	case 0: // $8000-$9FFF
		if prgMode == 0 {
			bank = m.bankReg[6]
		} else {
			bank = m.prgBankCount - 2
		}
	case 1: // $A000-$BFFF
		bank = m.bankReg[7]
	case 2: // $C000-$DFFF
		if prgMode == 0 {
			bank = m.prgBankCount - 2
		} else {
			bank = m.bankReg[6]
		}
	default: // $E000-$FFFF
		bank = m.prgBankCount - 1
	}
	if m.prgBankCount > 0 {
		bank %= m.prgBankCount
	}
	return uint32(bank) * 0x2000
}

func (m *mapper4) CPURead(addr uint16) (uint8, bool) {
	switch {
	case addr >= 0x6000 && addr <= 0x7FFF:
		if m.ramProtect&0x80 != 0 {
			off := addr - 0x6000
			if int(off) < len(m.data.PRGRAM) {
				return m.data.PRGRAM[off], true
			}
		}
		return 0, true
	case addr >= 0x8000:
		slot := uint8((addr - 0x8000) / 0x2000)
		base := m.prgBankAt(slot)
		off := base + uint32(addr&0x1FFF)
		if int(off) < len(m.data.PRGROM) {
			return m.data.PRGROM[off], true
		}
		return 0, true
	}
	return 0, false
}

func (m *mapper4) CPUWrite(addr uint16, value uint8) bool {
	switch {
	case addr >= 0x6000 && addr <= 0x7FFF:
		if m.ramProtect&0x80 != 0 && m.ramProtect&0x40 == 0 {
			off := addr - 0x6000
			if int(off) < len(m.data.PRGRAM) {
				m.data.PRGRAM[off] = value
			}
		}
		return true
	case addr >= 0x8000:
		even := addr&1 == 0
		switch {
		case addr < 0xA000:
			if even {
				m.bankSelect = value
			} else {
				idx := m.bankSelect & 0x07
				if idx >= 6 {
					if m.prgBankCount > 0 {
						value %= m.prgBankCount
					}
				} else if m.chrBankCount > 0 {
					value %= m.chrBankCount
				}
				m.bankReg[idx] = value
			}
		case addr < 0xC000:
			if even {
				m.mirror = value & 1
			} else {
				m.ramProtect = value
			}
		case addr < 0xE000:
			if even {
				m.irqLatch = value
			} else {
				m.irqReload = true
				m.irqCounter = 0
			}
		default:
			if even {
				m.irqEnabled = false
				m.irqPending = false
			} else {
				m.irqEnabled = true
			}
		}
		return true
	}
	return false
}

func (m *mapper4) chrOffset(addr uint16) uint32 {
	invert := (m.bankSelect >> 7) & 1
	region := addr / 0x0400 // 0..7, each 1KB
	if invert == 1 {
		region ^= 4
	}
	var bank uint8
	switch region {
	case 0:
		bank = m.bankReg[0] &^ 1
	case 1:
		bank = m.bankReg[0] | 1
	case 2:
		bank = m.bankReg[1] &^ 1
	case 3:
		bank = m.bankReg[1] | 1
	default:
		bank = m.bankReg[region-2]
	}
	if m.chrBankCount > 0 {
		bank %= m.chrBankCount
	}
	return uint32(bank)*0x400 + uint32(addr&0x3FF)
}

func (m *mapper4) PPURead(addr uint16) (uint8, bool) {
	if addr >= 0x2000 {
		return 0, false
	}
	off := m.chrOffset(addr)
	if len(m.data.CHRROM) > 0 {
		if int(off) < len(m.data.CHRROM) {
			return m.data.CHRROM[off], true
		}
		return 0, true
	}
	if int(off) < len(m.data.CHRRAM) {
		return m.data.CHRRAM[off], true
	}
	return 0, true
}

func (m *mapper4) PPUWrite(addr uint16, value uint8) bool {
	if addr >= 0x2000 {
		return false
	}
	if len(m.data.CHRROM) == 0 {
		off := m.chrOffset(addr)
		if int(off) < len(m.data.CHRRAM) {
			m.data.CHRRAM[off] = value
		}
	}
	return true
}

// DebugBanks reports the PRG bank number currently mapped at each of the
// four 8KB CPU windows, satisfying BankInspector.
func (m *mapper4) DebugBanks() [4]uint8 {
	var banks [4]uint8
	for slot := uint8(0); slot < 4; slot++ {
		banks[slot] = uint8(m.prgBankAt(slot) / 0x2000)
	}
	return banks
}

func (m *mapper4) Mirroring() Mirroring {
	if m.mirror == 0 {
		return MirrorVertical
	}
	return MirrorHorizontal
}

// ScanlineTick decrements the IRQ counter once per visible scanline. When
// it reaches zero with IRQ enabled, IRQPending becomes true until
// ClearIRQ is called.
func (m *mapper4) ScanlineTick() {
	if m.irqCounter == 0 || m.irqReload {
		m.irqCounter = m.irqLatch
		m.irqReload = false
	} else {
		m.irqCounter--
	}
	if m.irqCounter == 0 && m.irqEnabled {
		m.irqPending = true
	}
}

func (m *mapper4) IRQPending() bool { return m.irqPending }
func (m *mapper4) ClearIRQ()        { m.irqPending = false }

func (m *mapper4) Reset() {
	m.bankSelect = 0
	m.bankReg = [8]uint8{}
	if m.prgBankCount >= 2 {
		m.bankReg[6] = m.prgBankCount - 2
		m.bankReg[7] = m.prgBankCount - 1
	}
	m.irqCounter = 0
	m.irqLatch = 0
	m.irqReload = false
	m.irqEnabled = false
	m.irqPending = false
}

type mapper4State struct {
	BankSelect uint8
	BankReg    [8]uint8
	Mirror     uint8
	RAMProtect uint8
	IRQLatch   uint8
	IRQCounter uint8
	IRQReload  bool
	IRQEnabled bool
	IRQPending bool
}

func (m *mapper4) SaveState() ([]byte, error) {
	return json.Marshal(mapper4State{
		BankSelect: m.bankSelect, BankReg: m.bankReg, Mirror: m.mirror, RAMProtect: m.ramProtect,
		IRQLatch: m.irqLatch, IRQCounter: m.irqCounter, IRQReload: m.irqReload,
		IRQEnabled: m.irqEnabled, IRQPending: m.irqPending,
	})
}

func (m *mapper4) LoadState(data []byte) error {
	var s mapper4State
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	m.bankSelect, m.bankReg, m.mirror, m.ramProtect = s.BankSelect, s.BankReg, s.Mirror, s.RAMProtect
	m.irqLatch, m.irqCounter, m.irqReload = s.IRQLatch, s.IRQCounter, s.IRQReload
	m.irqEnabled, m.irqPending = s.IRQEnabled, s.IRQPending
	return nil
}
