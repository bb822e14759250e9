package models

type SlotKind string

const (
	SlotLose SlotKind = "lose"
	SlotWin  SlotKind = "win"
)

type Slot struct {
	Index      int      `json:"index"`
	Kind       SlotKind `json:"kind"`
	Token      string   `json:"token,omitempty"`
	Multiplier float64  `json:"multiplier,omitempty"`
}

// SlotCount is the width of the board's payout table.
const SlotCount = 20

var winningSlots = map[int]Slot{
	1:  {Index: 1, Kind: SlotWin, Token: "PLS", Multiplier: 1.1},
	5:  {Index: 5, Kind: SlotWin, Token: "PLSX", Multiplier: 1.5},
	9:  {Index: 9, Kind: SlotWin, Token: "HEX", Multiplier: 2.0},
	13: {Index: 13, Kind: SlotWin, Token: "INC", Multiplier: 3.0},
	17: {Index: 17, Kind: SlotWin, Token: "PROVEX", Multiplier: 5.0},
}

// PayoutTable returns the board's slots in index order.
func PayoutTable() []Slot {
	slots := make([]Slot, 0, SlotCount)
	for i := 0; i < SlotCount; i++ {
		if s, ok := winningSlots[i]; ok {
			slots = append(slots, s)
			continue
		}
		slots = append(slots, Slot{Index: i, Kind: SlotLose})
	}
	return slots
}
