package mapper

import "testing"

func TestMapper0_NROM128Mirrors(t *testing.T) {
	data := &CartridgeData{PRGROM: testPRGROM16KB, CHRROM: testCHRROM8KB}
	m := newMapper0(data)

	v1, ok1 := m.CPURead(0x8000)
	v2, ok2 := m.CPURead(0xC000)
	if !ok1 || !ok2 {
		t.Fatal("NROM-128 should claim both $8000 and $C000")
	}
	if v1 != v2 {
		t.Errorf("NROM-128 mirroring failed: $8000=%02X $C000=%02X", v1, v2)
	}
	if v, _ := m.CPURead(0x8001); v != testPRGROM16KB[1] {
		t.Errorf("expected %02X at $8001, got %02X", testPRGROM16KB[1], v)
	}
}

func TestMapper0_NROM256NoMirror(t *testing.T) {
	data := &CartridgeData{PRGROM: testPRGROM32KB, CHRROM: testCHRROM8KB}
	m := newMapper0(data)

	v1, _ := m.CPURead(0x8000)
	v2, _ := m.CPURead(0xC000)
	if v1 != testPRGROM32KB[0] || v2 != testPRGROM32KB[0x4000] {
		t.Errorf("NROM-256 should not mirror: $8000=%02X (want %02X) $C000=%02X (want %02X)",
			v1, testPRGROM32KB[0], v2, testPRGROM32KB[0x4000])
	}
}

func TestMapper0_CHRRead(t *testing.T) {
	data := &CartridgeData{PRGROM: testPRGROM16KB, CHRROM: testCHRROM8KB}
	m := newMapper0(data)

	if v, ok := m.PPURead(0x0000); !ok || v != testCHRROM8KB[0] {
		t.Errorf("CHR $0000 = %02X, ok=%v, want %02X", v, ok, testCHRROM8KB[0])
	}
}

func TestMapper0_WritesToPRGROMAreIgnored(t *testing.T) {
	data := &CartridgeData{PRGROM: testPRGROM16KB, CHRROM: testCHRROM8KB}
	m := newMapper0(data)

	before, _ := m.CPURead(0x8000)
	m.CPUWrite(0x8000, before+1)
	after, _ := m.CPURead(0x8000)
	if after != before {
		t.Error("NROM has no bank registers; writes to $8000-$FFFF must not change PRG content")
	}
}

func TestMapper0_Mirroring(t *testing.T) {
	data := &CartridgeData{PRGROM: testPRGROM16KB, HeaderMirroring: MirrorVertical}
	m := newMapper0(data)
	if m.Mirroring() != MirrorVertical {
		t.Errorf("NROM should pass through the header's mirroring, got %v", m.Mirroring())
	}
}
