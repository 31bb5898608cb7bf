package ppu

const maxSpritesPerLine = 8

// bgPipeline holds the background shift registers and the per-tile
// latches fed by the 8-dot nametable/attribute/pattern fetch cycle.
type bgPipeline struct {
	patternLo, patternHi uint16
	attrLo, attrHi       uint16

	ntByte    uint8
	atByte    uint8 // 2-bit attribute quadrant for the tile being fetched
	patLoByte uint8
	patHiByte uint8
}

// sprPipeline holds the sprites selected for the scanline currently being
// drawn, already shifted/flipped into per-dot pattern bytes.
type sprPipeline struct {
	count     int
	patternLo [maxSpritesPerLine]uint8
	patternHi [maxSpritesPerLine]uint8
	attr      [maxSpritesPerLine]uint8
	x         [maxSpritesPerLine]uint8
	isZero    [maxSpritesPerLine]bool
}

// preRenderDot runs the pre-render scanline (-1): status flags clear at
// dot 1, the background pipeline runs exactly as on a visible line so the
// first visible tile is ready, and dots 280-304 reload the vertical scroll
// bits from t into v.
func (p *PPU) preRenderDot() {
	if p.Cycle == 1 {
		p.PPUSTATUS &^= PPUSTATUSVBlank | PPUSTATUSSprite0Hit | PPUSTATUSOverflow
	}

	p.backgroundFetchAndShift()

	if p.Cycle >= 280 && p.Cycle <= 304 && p.renderingEnabled() {
		p.copyVerticalBits()
	}

	if p.Cycle == 257 {
		if p.renderingEnabled() {
			p.copyHorizontalBits()
		}
		p.evaluateSprites(0)
	}
}

// visibleDot runs one dot of a visible scanline (0-239): the background
// pipeline shifts/fetches, dots 1-256 each produce one output pixel, and
// dot 257 copies horizontal scroll bits and evaluates sprites for the
// next scanline.
func (p *PPU) visibleDot() {
	p.backgroundFetchAndShift()

	if p.Cycle >= 1 && p.Cycle <= 256 {
		p.renderPixel(p.Cycle-1, p.Scanline)
	}

	if p.Cycle == 257 {
		if p.renderingEnabled() {
			p.copyHorizontalBits()
		}
		p.evaluateSprites(p.Scanline + 1)
	}
}

func (p *PPU) backgroundFetchAndShift() {
	inFetchWindow := (p.Cycle >= 1 && p.Cycle <= 256) || (p.Cycle >= 321 && p.Cycle <= 336)
	if !inFetchWindow {
		return
	}

	p.shiftBackgroundRegisters()

	switch p.Cycle % 8 {
	case 1:
		p.loadBackgroundShiftRegisters()
		p.bg.ntByte = p.fetchNTByte()
	case 3:
		p.bg.atByte = p.fetchATByte()
	case 5:
		p.bg.patLoByte = p.fetchPatternByte(false)
	case 7:
		p.bg.patHiByte = p.fetchPatternByte(true)
	case 0:
		if p.renderingEnabled() {
			p.incrementCoarseX()
		}
	}

	if p.Cycle == 256 && p.renderingEnabled() {
		p.incrementY()
	}
}

func (p *PPU) shiftBackgroundRegisters() {
	if !p.renderingEnabled() {
		return
	}
	p.bg.patternLo <<= 1
	p.bg.patternHi <<= 1
	p.bg.attrLo <<= 1
	p.bg.attrHi <<= 1
}

func (p *PPU) loadBackgroundShiftRegisters() {
	p.bg.patternLo = (p.bg.patternLo & 0xFF00) | uint16(p.bg.patLoByte)
	p.bg.patternHi = (p.bg.patternHi & 0xFF00) | uint16(p.bg.patHiByte)

	var lo, hi uint16
	if p.bg.atByte&0x01 != 0 {
		lo = 0xFF
	}
	if p.bg.atByte&0x02 != 0 {
		hi = 0xFF
	}
	p.bg.attrLo = (p.bg.attrLo & 0xFF00) | lo
	p.bg.attrHi = (p.bg.attrHi & 0xFF00) | hi
}

func (p *PPU) fetchNTByte() uint8 {
	addr := 0x2000 | (p.v & 0x0FFF)
	return p.readVRAM(addr)
}

func (p *PPU) fetchATByte() uint8 {
	addr := 0x23C0 | (p.v & 0x0C00) | ((p.v >> 4) & 0x38) | ((p.v >> 2) & 0x07)
	b := p.readVRAM(addr)
	shift := ((p.v >> 4) & 0x04) | (p.v & 0x02)
	return (b >> shift) & 0x03
}

func (p *PPU) fetchPatternByte(highPlane bool) uint8 {
	table := uint16(0)
	if p.PPUCTRL&PPUCTRLBGTable != 0 {
		table = 0x1000
	}
	fineY := (p.v >> 12) & 0x07
	plane := uint16(0)
	if highPlane {
		plane = 8
	}
	addr := table + uint16(p.bg.ntByte)*16 + fineY + plane
	return p.readVRAM(addr)
}

func (p *PPU) incrementCoarseX() {
	if p.v&0x001F == 31 {
		p.v &^= 0x001F
		p.v ^= 0x0400
	} else {
		p.v++
	}
}

func (p *PPU) incrementY() {
	if p.v&0x7000 != 0x7000 {
		p.v += 0x1000
		return
	}
	p.v &^= 0x7000
	y := (p.v & 0x03E0) >> 5
	switch y {
	case 29:
		y = 0
		p.v ^= 0x0800
	case 31:
		y = 0
	default:
		y++
	}
	p.v = (p.v &^ 0x03E0) | (y << 5)
}

func (p *PPU) copyHorizontalBits() {
	p.v = (p.v & 0xFBE0) | (p.t & 0x041F)
}

func (p *PPU) copyVerticalBits() {
	p.v = (p.v & 0x841F) | (p.t & 0x7BE0)
}

// bgPixelAt reads the current background pixel/palette pair out of the
// shift registers at the fine-X-selected bit.
func (p *PPU) bgPixelAt() (pixel, palette uint8) {
	mux := uint16(0x8000) >> p.x
	bit0 := uint8(0)
	if p.bg.patternLo&mux != 0 {
		bit0 = 1
	}
	bit1 := uint8(0)
	if p.bg.patternHi&mux != 0 {
		bit1 = 2
	}
	a0 := uint8(0)
	if p.bg.attrLo&mux != 0 {
		a0 = 1
	}
	a1 := uint8(0)
	if p.bg.attrHi&mux != 0 {
		a1 = 2
	}
	return bit1 | bit0, a1 | a0
}

// evaluateSprites scans primary OAM for sprites visible on targetScanline
// and loads up to 8 of them into the sprite pipeline, pattern data
// already fetched and flipped. Scanlines with more than 8 matches set the
// overflow flag; the original hardware's byte-scanning overflow quirk is
// not reproduced.
func (p *PPU) evaluateSprites(targetScanline int) {
	p.spr.count = 0
	height := 8
	if p.PPUCTRL&PPUCTRLSpriteSize != 0 {
		height = 16
	}

	if targetScanline < 0 || targetScanline > 255 {
		return
	}

	for i := 0; i < 64; i++ {
		y := int(p.OAM[i*4+0])
		row := targetScanline - (y + 1)
		if row < 0 || row >= height {
			continue
		}
		if p.spr.count >= maxSpritesPerLine {
			p.PPUSTATUS |= PPUSTATUSOverflow
			continue
		}

		tile := p.OAM[i*4+1]
		attr := p.OAM[i*4+2]
		x := p.OAM[i*4+3]

		flipV := attr&0x80 != 0
		flipH := attr&0x40 != 0

		r := row
		if flipV {
			r = height - 1 - row
		}

		var addr uint16
		if height == 16 {
			table := uint16(tile&0x01) * 0x1000
			tileIndex := uint16(tile &^ 0x01)
			if r >= 8 {
				tileIndex++
				r -= 8
			}
			addr = table + tileIndex*16 + uint16(r)
		} else {
			table := uint16(0)
			if p.PPUCTRL&PPUCTRLSpriteTable != 0 {
				table = 0x1000
			}
			addr = table + uint16(tile)*16 + uint16(r)
		}

		lo := p.readVRAM(addr)
		hi := p.readVRAM(addr + 8)
		if flipH {
			lo = reverseBits(lo)
			hi = reverseBits(hi)
		}

		slot := p.spr.count
		p.spr.patternLo[slot] = lo
		p.spr.patternHi[slot] = hi
		p.spr.attr[slot] = attr & 0x23
		p.spr.x[slot] = x
		p.spr.isZero[slot] = i == 0
		p.spr.count++
	}
}

func reverseBits(b uint8) uint8 {
	var r uint8
	for i := 0; i < 8; i++ {
		r <<= 1
		r |= b & 1
		b >>= 1
	}
	return r
}

// sprPixelAt returns the highest-priority sprite pixel covering screen
// column x, if any.
func (p *PPU) sprPixelAt(x int) (pixel, palette, priority uint8, isZero, hit bool) {
	for i := 0; i < p.spr.count; i++ {
		rel := x - int(p.spr.x[i])
		if rel < 0 || rel > 7 {
			continue
		}
		shift := uint(rel)
		bit0 := (p.spr.patternLo[i] >> (7 - shift)) & 1
		bit1 := (p.spr.patternHi[i] >> (7 - shift)) & 1
		px := bit1<<1 | bit0
		if px == 0 {
			continue
		}
		return px, p.spr.attr[i] & 0x03, (p.spr.attr[i] >> 5) & 1, p.spr.isZero[i], true
	}
	return 0, 0, 0, false, false
}

// renderPixel composes the background and sprite pixel at (x, y),
// applying NES priority rules and the left-column masking bits, and
// writes the result into Output.
func (p *PPU) renderPixel(x, y int) {
	bgPixel, bgPalette := p.bgPixelAt()
	sprPixel, sprPalette, sprPriority, sprIsZero, sprHit := p.sprPixelAt(x)

	bgOpaque := p.PPUMASK&PPUMASKBGShow != 0 && bgPixel != 0 && (x >= 8 || p.PPUMASK&PPUMASKBGLeft != 0)
	sprOpaque := p.PPUMASK&PPUMASKSpriteShow != 0 && sprHit && (x >= 8 || p.PPUMASK&PPUMASKSpriteLeft != 0)

	if sprIsZero && sprOpaque && bgOpaque && x != 255 {
		p.PPUSTATUS |= PPUSTATUSSprite0Hit
	}

	var paletteAddr uint8
	switch {
	case !bgOpaque && !sprOpaque:
		paletteAddr = 0
	case !bgOpaque:
		paletteAddr = 0x10 + sprPalette*4 + sprPixel
	case !sprOpaque:
		paletteAddr = bgPalette*4 + bgPixel
	case sprPriority == 0:
		paletteAddr = 0x10 + sprPalette*4 + sprPixel
	default:
		paletteAddr = bgPalette*4 + bgPixel
	}

	colorIndex := p.PaletteManager.ReadPalette(paletteAddr)
	p.Output.DrawPixel(x, y, p.PaletteManager.RGB(colorIndex))
}
