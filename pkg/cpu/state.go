package cpu

import "encoding/json"

// State is the tagged JSON record SaveState/LoadState exchange — the
// registers and interrupt latches, nothing else: the CPU holds no other
// state (memory belongs to the bus).
type State struct {
	A, X, Y, SP uint8
	PC          uint16
	P           uint8
	Cycles      int
	NMI, IRQ    bool
}

func (c *CPU) SaveState() ([]byte, error) {
	return json.Marshal(State{
		A: c.A, X: c.X, Y: c.Y, SP: c.SP, PC: c.PC, P: c.P,
		Cycles: c.Cycles, NMI: c.NMI, IRQ: c.IRQ,
	})
}

func (c *CPU) LoadState(data []byte) error {
	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	c.A, c.X, c.Y, c.SP, c.PC, c.P = s.A, s.X, s.Y, s.SP, s.PC, s.P
	c.Cycles, c.NMI, c.IRQ = s.Cycles, s.NMI, s.IRQ
	return nil
}
