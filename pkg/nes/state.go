package nes

import "encoding/json"

// State is the tagged record described in the core's savestate external
// interface: CPU, PPU, bus RAM, and cartridge (PRG-RAM plus mapper bank/
// IRQ registers), plus the frame/cycle counters needed to resume
// `StepFrame` bookkeeping. It is not bit-compatible across core versions.
type State struct {
	CPU       json.RawMessage
	PPU       json.RawMessage
	Bus       json.RawMessage
	Cartridge json.RawMessage `json:"cartridge,omitempty"`

	Cycles uint64
	Frame  uint64
}

// SaveState snapshots every core component into one tagged record. The
// cartridge field is empty if no ROM is loaded.
func (n *NES) SaveState() ([]byte, error) {
	cpuData, err := n.CPU.SaveState()
	if err != nil {
		return nil, err
	}
	ppuData, err := n.PPU.SaveState()
	if err != nil {
		return nil, err
	}
	busData, err := n.Bus.SaveState()
	if err != nil {
		return nil, err
	}

	s := State{
		CPU: cpuData, PPU: ppuData, Bus: busData,
		Cycles: n.Cycles, Frame: n.Frame,
	}
	if n.Cartridge != nil {
		cartData, err := n.Cartridge.SaveState()
		if err != nil {
			return nil, err
		}
		s.Cartridge = cartData
	}
	return json.Marshal(s)
}

// LoadState restores every core component from a record produced by
// SaveState. The cartridge currently loaded must be the same ROM the
// state was saved from — LoadState does not re-parse or swap cartridges.
func (n *NES) LoadState(data []byte) error {
	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if err := n.CPU.LoadState(s.CPU); err != nil {
		return err
	}
	if err := n.PPU.LoadState(s.PPU); err != nil {
		return err
	}
	if err := n.Bus.LoadState(s.Bus); err != nil {
		return err
	}
	if n.Cartridge != nil && len(s.Cartridge) > 0 {
		if err := n.Cartridge.LoadState(s.Cartridge); err != nil {
			return err
		}
	}
	n.Cycles, n.Frame = s.Cycles, s.Frame
	return nil
}
