package mapper

import "testing"

func TestMapper66_CombinedBankSelect(t *testing.T) {
	prg := make([]uint8, 4*0x8000)
	for i := range prg {
		prg[i] = uint8(i / 0x8000)
	}
	chr := make([]uint8, 4*0x2000)
	for i := range chr {
		chr[i] = uint8(i / 0x2000)
	}
	data := &CartridgeData{PRGROM: prg, CHRROM: chr}
	m := newMapper66(data)

	m.CPUWrite(0x8000, 0x31) // PRG bank 3, CHR bank 1
	if v, _ := m.CPURead(0x8000); v != 3 {
		t.Errorf("PRG bank = %d, want 3", v)
	}
	if v, ok := m.PPURead(0x0000); !ok || v != 1 {
		t.Errorf("CHR bank = %d, want 1", v)
	}
}

func TestMapper66_ResetClearsBanks(t *testing.T) {
	data := &CartridgeData{PRGROM: make([]uint8, 0x8000), CHRROM: make([]uint8, 0x2000)}
	m := newMapper66(data)
	m.CPUWrite(0x8000, 0x33)
	m.Reset()
	if m.prgBank != 0 || m.chrBank != 0 {
		t.Errorf("Reset should clear both banks, got prg=%d chr=%d", m.prgBank, m.chrBank)
	}
}

func TestMapper66_SaveLoadStateRoundTrip(t *testing.T) {
	data := &CartridgeData{PRGROM: make([]uint8, 0x8000), CHRROM: make([]uint8, 0x2000)}
	m := newMapper66(data)
	m.CPUWrite(0x8000, 0x21)

	saved, err := m.SaveState()
	if err != nil {
		t.Fatalf("SaveState: %v", err)
	}
	fresh := newMapper66(&CartridgeData{PRGROM: make([]uint8, 0x8000), CHRROM: make([]uint8, 0x2000)})
	if err := fresh.LoadState(saved); err != nil {
		t.Fatalf("LoadState: %v", err)
	}
	if fresh.prgBank != m.prgBank || fresh.chrBank != m.chrBank {
		t.Errorf("restored state mismatch: got prg=%d chr=%d, want prg=%d chr=%d",
			fresh.prgBank, fresh.chrBank, m.prgBank, m.chrBank)
	}
}
