package mapper

import "testing"

func newMMC3(prgBanks, chrBanks int) (*mapper4, *CartridgeData) {
	prg := make([]uint8, prgBanks*0x2000)
	for i := range prg {
		prg[i] = uint8(i / 0x2000)
	}
	chr := make([]uint8, chrBanks*0x400)
	for i := range chr {
		chr[i] = uint8(i / 0x400)
	}
	data := &CartridgeData{PRGROM: prg, CHRROM: chr}
	return newMapper4(data), data
}

func TestMapper4_FixedBanksAtReset(t *testing.T) {
	m, _ := newMMC3(8, 32)

	last, _ := m.CPURead(0xE000)
	if int(last) != 7 {
		t.Errorf("$E000 should map the last PRG bank (7), got %d", last)
	}
	secondLast, _ := m.CPURead(0xC000)
	if int(secondLast) != 6 {
		t.Errorf("$C000 should default to bank %d in PRG mode 0, got %d", 6, secondLast)
	}
}

func TestMapper4_PRGModeSwapsSwitchableSlot(t *testing.T) {
	m, _ := newMMC3(8, 32)

	m.CPUWrite(0x8000, 0x40) // bankSelect: prgMode=1, target R0
	v, _ := m.CPURead(0xC000)
	if int(v) != 6 {
		t.Errorf("with prgMode=1, $C000 should show R6 (bank 6 at reset), got %d", v)
	}
	v, _ = m.CPURead(0x8000)
	if int(v) != 6 {
		t.Errorf("with prgMode=1, $8000 should show the fixed second-last bank, got %d", v)
	}
}

func TestMapper4_DebugBanks(t *testing.T) {
	m, _ := newMMC3(8, 32)

	banks := m.DebugBanks()
	if banks != [4]uint8{6, 7, 6, 7} {
		t.Errorf("at reset, expected DebugBanks=[6 7 6 7], got %v", banks)
	}

	m.CPUWrite(0x8000, 0x46) // prgMode=1, target R6
	m.CPUWrite(0x8001, 2)    // R6 = bank 2

	banks = m.DebugBanks()
	if banks != [4]uint8{6, 7, 2, 7} {
		t.Errorf("with prgMode=1 and R6=2, expected DebugBanks=[6 7 2 7], got %v", banks)
	}
}

func TestMapper4_BankRegisterSelectsCHR(t *testing.T) {
	m, data := newMMC3(8, 32)

	m.CPUWrite(0x8000, 2) // select R2 (CHR 1KB at $1000)
	m.CPUWrite(0x8001, 5) // R2 = bank 5

	v, ok := m.PPURead(0x1000)
	if !ok || v != data.CHRROM[5*0x400] {
		t.Errorf("CHR $1000 = %02X, want %02X", v, data.CHRROM[5*0x400])
	}
}

func TestMapper4_MirroringRegister(t *testing.T) {
	m, _ := newMMC3(8, 32)

	m.CPUWrite(0xA000, 0) // vertical
	if m.Mirroring() != MirrorVertical {
		t.Errorf("mirror bit 0 should select vertical")
	}
	m.CPUWrite(0xA000, 1) // horizontal
	if m.Mirroring() != MirrorHorizontal {
		t.Errorf("mirror bit 1 should select horizontal")
	}
}

func TestMapper4_IRQCountdownAndReload(t *testing.T) {
	m, _ := newMMC3(8, 32)

	m.CPUWrite(0xC000, 2) // IRQ latch = 2
	m.CPUWrite(0xE001, 0) // enable IRQ
	m.CPUWrite(0xC001, 0) // request reload on next tick

	m.ScanlineTick() // reload to latch (2), counter becomes 2, no IRQ yet
	if m.IRQPending() {
		t.Fatal("IRQ should not fire on the reload tick")
	}
	m.ScanlineTick() // counter 2 -> 1
	if m.IRQPending() {
		t.Fatal("IRQ should not fire before the counter reaches 0")
	}
	m.ScanlineTick() // counter 1 -> 0, IRQ fires
	if !m.IRQPending() {
		t.Fatal("IRQ should be pending once the counter reaches 0")
	}

	m.ClearIRQ()
	if m.IRQPending() {
		t.Error("ClearIRQ should clear the pending flag")
	}
}

func TestMapper4_IRQDisabledNeverFires(t *testing.T) {
	m, _ := newMMC3(8, 32)

	m.CPUWrite(0xC000, 0)
	m.CPUWrite(0xC001, 0)
	m.CPUWrite(0xE000, 0) // disable

	for i := 0; i < 5; i++ {
		m.ScanlineTick()
	}
	if m.IRQPending() {
		t.Error("IRQ should never fire while disabled")
	}
}

func TestMapper4_PRGRAMProtect(t *testing.T) {
	m, _ := newMMC3(8, 32)

	m.CPUWrite(0x6000, 0x11)
	v, ok := m.CPURead(0x6000)
	if !ok || v != 0x11 {
		t.Errorf("PRG-RAM readback = %02X, want 0x11", v)
	}

	m.CPUWrite(0xA001, 0xC0) // RAM enabled (bit7) and write-protected (bit6)
	m.CPUWrite(0x6000, 0x22)
	v, _ = m.CPURead(0x6000)
	if v != 0x11 {
		t.Errorf("PRG-RAM should be write-protected, got %02X want 0x11", v)
	}
}

func TestMapper4_SaveLoadStateRoundTrip(t *testing.T) {
	m, _ := newMMC3(8, 32)
	m.CPUWrite(0x8000, 2)
	m.CPUWrite(0x8001, 5)
	m.CPUWrite(0xC000, 10)
	m.CPUWrite(0xE001, 0)

	saved, err := m.SaveState()
	if err != nil {
		t.Fatalf("SaveState: %v", err)
	}

	fresh, _ := newMMC3(8, 32)
	if err := fresh.LoadState(saved); err != nil {
		t.Fatalf("LoadState: %v", err)
	}
	if fresh.bankSelect != m.bankSelect || fresh.bankReg != m.bankReg || fresh.irqLatch != m.irqLatch || fresh.irqEnabled != m.irqEnabled {
		t.Error("restored state does not match saved state")
	}
}
