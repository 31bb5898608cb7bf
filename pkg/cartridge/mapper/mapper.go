// Package mapper implements the cartridge-side address translation logic
// ("mappers") that extend the NES's native 32KB PRG and 8KB CHR windows
// into megabyte-scale ROMs via bank switching.
package mapper

import "fmt"

// Mirroring selects how the PPU's 2KB of physical nametable RAM is
// presented across the 4KB nametable address window.
type Mirroring int

const (
	MirrorHorizontal Mirroring = iota
	MirrorVertical
	MirrorSingleScreenLow
	MirrorSingleScreenHigh
	MirrorFourScreen
)

// Mapper is the capability set every cartridge variant implements: address
// translation for both CPU and PPU buses, the nametable mirroring policy in
// effect, and the hooks mapper 4 needs for its scanline IRQ counter.
//
// CPURead/CPUWrite and PPURead/PPUWrite take a logical 16-bit address and
// report whether the mapper claims it; an unclaimed address is the bus's
// responsibility (open bus / RAM / registers), never the mapper's.
type Mapper interface {
	CPURead(addr uint16) (data uint8, handled bool)
	CPUWrite(addr uint16, data uint8) (handled bool)
	PPURead(addr uint16) (data uint8, handled bool)
	PPUWrite(addr uint16, data uint8) (handled bool)

	Mirroring() Mirroring

	// ScanlineTick is called once per visible scanline while rendering is
	// enabled, so mapper 4 can decrement its IRQ counter.
	ScanlineTick()
	IRQPending() bool
	ClearIRQ()

	Reset()

	// SaveState/LoadState (de)serialize the mapper's bank registers and
	// IRQ counters — not the PRG/CHR storage itself, which the cartridge
	// already owns and persists separately. Savestates are not
	// bit-compatible across core versions.
	SaveState() ([]byte, error)
	LoadState(data []byte) error
}

// BankInspector is implemented by mappers with enough bank-switching
// complexity to be worth introspecting from outside the package (MMC3's
// four independently-modeable PRG windows, for instance). Not every
// mapper needs it, so it lives outside the base Mapper interface; callers
// type-switch for it.
type BankInspector interface {
	// DebugBanks reports the PRG bank currently visible at each of the
	// four 8KB CPU windows, in address order: $8000-$9FFF, $A000-$BFFF,
	// $C000-$DFFF, $E000-$FFFF.
	DebugBanks() [4]uint8
}

// CartridgeData is the storage a mapper banks over. It is owned by the
// cartridge and shared by reference with the mapper instance.
type CartridgeData struct {
	PRGROM []uint8
	CHRROM []uint8 // empty when the cartridge uses CHR-RAM instead
	PRGRAM []uint8
	CHRRAM []uint8

	// HeaderMirroring is the board-wired default from the iNES header;
	// mappers that never change mirroring (0, 2, 3) just return this value.
	HeaderMirroring Mirroring
}

// New constructs the mapper named by the iNES mapper number. An unknown
// mapper number is a fatal load-time error, per the cartridge's contract.
func New(number uint8, data *CartridgeData) (Mapper, error) {
	switch number {
	case 0:
		return newMapper0(data), nil
	case 1:
		return newMapper1(data), nil
	case 2:
		return newMapper2(data), nil
	case 3:
		return newMapper3(data), nil
	case 4:
		return newMapper4(data), nil
	case 66:
		return newMapper66(data), nil
	default:
		return nil, fmt.Errorf("mapper: unsupported mapper number %d", number)
	}
}
