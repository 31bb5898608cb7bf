package bus

import "encoding/json"

// SaveState captures the bus's 2KB of internal RAM — the only state it
// owns outright; PPU/APU/cartridge registers are captured by their own
// SaveState methods.
func (m *Bus) SaveState() ([]byte, error) {
	return json.Marshal(m.RAM)
}

func (m *Bus) LoadState(data []byte) error {
	return json.Unmarshal(data, &m.RAM)
}
