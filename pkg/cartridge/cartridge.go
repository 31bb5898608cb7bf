package cartridge

import (
	"fmt"
	"io"

	"github.com/nescore/nescore/pkg/cartridge/mapper"
	"github.com/nescore/nescore/pkg/logger"
)

// Cartridge owns the raw ROM/RAM storage decoded from an iNES file and
// delegates all address translation to its Mapper.
type Cartridge struct {
	PRGROM []uint8
	CHRROM []uint8
	PRGRAM []uint8
	CHRRAM []uint8

	Header iNESHeader
	Mapper mapper.Mapper
}

// iNESHeader is the 16-byte iNES file header.
type iNESHeader struct {
	Magic      [4]uint8
	PRGROMSize uint8
	CHRROMSize uint8
	Flags6     uint8
	Flags7     uint8
	Flags8     uint8
	Flags9     uint8
	Flags10    uint8
	Padding    [5]uint8
}

func (h iNESHeader) mapperNumber() uint8 {
	return (h.Flags6 >> 4) | (h.Flags7 & 0xF0)
}

func (h iNESHeader) mirroring() mapper.Mirroring {
	switch {
	case h.Flags6&0x08 != 0:
		return mapper.MirrorFourScreen
	case h.Flags6&0x01 != 0:
		return mapper.MirrorVertical
	default:
		return mapper.MirrorHorizontal
	}
}

// LoadFromReader parses an iNES ROM image and constructs the cartridge's
// mapper. An unrecognized mapper number or truncated ROM data is a load
// error; the bus never sees a half-initialized cartridge.
func LoadFromReader(reader io.Reader) (*Cartridge, error) {
	cart := &Cartridge{}

	if err := cart.readHeader(reader); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	if string(cart.Header.Magic[:]) != "NES\x1A" {
		return nil, fmt.Errorf("invalid iNES magic number")
	}

	if cart.Header.Flags6&0x04 != 0 {
		trainer := make([]uint8, 512)
		if _, err := io.ReadFull(reader, trainer); err != nil {
			return nil, fmt.Errorf("failed to read trainer: %w", err)
		}
	}

	prgSize := int(cart.Header.PRGROMSize) * 16384
	cart.PRGROM = make([]uint8, prgSize)
	if _, err := io.ReadFull(reader, cart.PRGROM); err != nil {
		return nil, fmt.Errorf("failed to read PRG ROM: %w", err)
	}

	chrSize := int(cart.Header.CHRROMSize) * 8192
	if chrSize > 0 {
		cart.CHRROM = make([]uint8, chrSize)
		if _, err := io.ReadFull(reader, cart.CHRROM); err != nil {
			return nil, fmt.Errorf("failed to read CHR ROM: %w", err)
		}
	} else {
		chrRAMSize := 8192
		if cart.Header.mapperNumber() == 4 {
			// MMC3 boards commonly wire up 32KB of CHR-RAM.
			chrRAMSize = 32768
		}
		cart.CHRRAM = make([]uint8, chrRAMSize)
	}

	if cart.Header.Flags6&0x02 != 0 {
		cart.PRGRAM = make([]uint8, 32768)
	} else {
		cart.PRGRAM = make([]uint8, 8192)
	}

	mapperNumber := cart.Header.mapperNumber()
	mapperData := &mapper.CartridgeData{
		PRGROM:          cart.PRGROM,
		CHRROM:          cart.CHRROM,
		PRGRAM:          cart.PRGRAM,
		CHRRAM:          cart.CHRRAM,
		HeaderMirroring: cart.Header.mirroring(),
	}

	m, err := mapper.New(mapperNumber, mapperData)
	if err != nil {
		return nil, fmt.Errorf("failed to create mapper: %w", err)
	}
	cart.Mapper = m
	cart.CHRRAM = mapperData.CHRRAM
	cart.PRGRAM = mapperData.PRGRAM

	logger.LogInfo("loaded cartridge: mapper=%d prg=%dKB chr=%dKB", mapperNumber, len(cart.PRGROM)/1024, (len(cart.CHRROM)+len(cart.CHRRAM))/1024)

	return cart, nil
}

func (c *Cartridge) readHeader(reader io.Reader) error {
	headerBytes := make([]uint8, 16)
	if _, err := io.ReadFull(reader, headerBytes); err != nil {
		return err
	}

	copy(c.Header.Magic[:], headerBytes[0:4])
	c.Header.PRGROMSize = headerBytes[4]
	c.Header.CHRROMSize = headerBytes[5]
	c.Header.Flags6 = headerBytes[6]
	c.Header.Flags7 = headerBytes[7]
	c.Header.Flags8 = headerBytes[8]
	c.Header.Flags9 = headerBytes[9]
	c.Header.Flags10 = headerBytes[10]
	copy(c.Header.Padding[:], headerBytes[11:16])

	return nil
}

// CPURead reads from cartridge space ($4020-$FFFF); handled reports
// whether the mapper claims the address.
func (c *Cartridge) CPURead(addr uint16) (uint8, bool) {
	return c.Mapper.CPURead(addr)
}

// CPUWrite writes to cartridge space.
func (c *Cartridge) CPUWrite(addr uint16, value uint8) bool {
	return c.Mapper.CPUWrite(addr, value)
}

// PPURead reads from the $0000-$1FFF CHR window.
func (c *Cartridge) PPURead(addr uint16) (uint8, bool) {
	return c.Mapper.PPURead(addr)
}

// PPUWrite writes to the $0000-$1FFF CHR window.
func (c *Cartridge) PPUWrite(addr uint16, value uint8) bool {
	return c.Mapper.PPUWrite(addr, value)
}

// Mirroring reports the nametable mirroring currently selected by the
// mapper (which may override the header's default).
func (c *Cartridge) Mirroring() mapper.Mirroring {
	return c.Mapper.Mirroring()
}

// ScanlineTick notifies the mapper that a visible scanline has ended, for
// mapper 4's IRQ counter.
func (c *Cartridge) ScanlineTick() {
	c.Mapper.ScanlineTick()
}

func (c *Cartridge) IRQPending() bool { return c.Mapper.IRQPending() }
func (c *Cartridge) ClearIRQ()        { c.Mapper.ClearIRQ() }
func (c *Cartridge) Reset()           { c.Mapper.Reset() }
