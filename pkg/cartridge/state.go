package cartridge

import "encoding/json"

// State is the tagged record of everything a Cartridge needs to resume:
// battery-backed PRG-RAM, CHR-RAM (when the board has no CHR-ROM), and
// the mapper's own bank/IRQ registers. PRG-ROM and CHR-ROM are immutable
// and are never part of a savestate — they come back from the ROM file.
type State struct {
	PRGRAM     []uint8
	CHRRAM     []uint8
	MapperData []byte
}

func (c *Cartridge) SaveState() ([]byte, error) {
	mapperData, err := c.Mapper.SaveState()
	if err != nil {
		return nil, err
	}
	return json.Marshal(State{PRGRAM: c.PRGRAM, CHRRAM: c.CHRRAM, MapperData: mapperData})
}

func (c *Cartridge) LoadState(data []byte) error {
	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	copy(c.PRGRAM, s.PRGRAM)
	copy(c.CHRRAM, s.CHRRAM)
	return c.Mapper.LoadState(s.MapperData)
}
