package ppu

import (
	"testing"
)

func TestPaletteManagerCreation(t *testing.T) {
	pm := NewPaletteManager()

	if pm == nil {
		t.Fatal("PaletteManager should not be nil")
	}
	if pm.Emphasis != 0 {
		t.Errorf("Expected emphasis=0, got %02X", pm.Emphasis)
	}
}

func TestPaletteReadWrite(t *testing.T) {
	pm := NewPaletteManager()

	pm.WritePalette(0x01, 0x30)
	if value := pm.ReadPalette(0x01); value != 0x30 {
		t.Errorf("Expected palette value 0x30, got %02X", value)
	}

	// WritePalette masks to 6 bits.
	pm.WritePalette(0x02, 0xFF)
	if value := pm.ReadPalette(0x02); value != 0x3F {
		t.Errorf("Expected palette value 0x3F (masked), got %02X", value)
	}
}

// TestBackdropMirroring checks that $10/$14/$18/$1C fold onto $00/$04/$08/$0C.
func TestBackdropMirroring(t *testing.T) {
	pm := NewPaletteManager()

	pm.WritePalette(0x00, 0x0F)
	if value := pm.ReadPalette(0x10); value != 0x0F {
		t.Errorf("Expected $10 to mirror $00 (0x0F), got %02X", value)
	}

	pm.WritePalette(0x04, 0x12)
	if value := pm.ReadPalette(0x14); value != 0x12 {
		t.Errorf("Expected $14 to mirror $04 (0x12), got %02X", value)
	}

	// Writing through the mirror must update the backing address.
	pm.WritePalette(0x18, 0x20)
	if value := pm.ReadPalette(0x08); value != 0x20 {
		t.Errorf("Expected write to $18 to land on $08, got %02X", value)
	}
}

// TestAddressWraps checks that addresses outside 0-0x1F wrap via the 5-bit mask.
func TestAddressWraps(t *testing.T) {
	pm := NewPaletteManager()

	pm.WritePalette(0x00, 0x15)
	if value := pm.ReadPalette(0x20); value != 0x15 {
		t.Errorf("Expected $20 to wrap to $00 (0x15), got %02X", value)
	}
}

func TestColorEmphasis(t *testing.T) {
	pm := NewPaletteManager()

	normal := pm.RGB(0x20)

	pm.SetEmphasis(0x20)
	if pm.Emphasis != 0x20 {
		t.Errorf("Expected emphasis=0x20, got %02X", pm.Emphasis)
	}
	emphasized := pm.RGB(0x20)
	if normal == emphasized {
		t.Error("Colors should be different with emphasis applied")
	}

	pm.SetEmphasis(0xE0)
	allEmphasis := pm.RGB(0x20)
	if emphasized == allEmphasis {
		t.Error("Different emphasis settings should produce different colors")
	}

	// Only bits 5-7 are kept.
	pm.SetEmphasis(0xFF)
	if pm.Emphasis != 0xE0 {
		t.Errorf("Expected emphasis masked to 0xE0, got %02X", pm.Emphasis)
	}
}

// TestMasterPalette checks every one of the 64 master colors converts cleanly.
func TestMasterPalette(t *testing.T) {
	pm := NewPaletteManager()

	seen := make(map[[3]uint8]bool)
	for i := 0; i < 64; i++ {
		c := pm.RGB(uint8(i))
		seen[[3]uint8{c.R, c.G, c.B}] = true
	}
	if len(seen) < 2 {
		t.Error("Master palette should produce a range of distinct colors")
	}
}

// TestRGBMasksColorIndex checks that only the low 6 bits of the index are used.
func TestRGBMasksColorIndex(t *testing.T) {
	pm := NewPaletteManager()

	a := pm.RGB(0x05)
	b := pm.RGB(0x45) // 0x45 & 0x3F == 0x05
	if a != b {
		t.Errorf("RGB should mask the color index to 6 bits: %v != %v", a, b)
	}
}
