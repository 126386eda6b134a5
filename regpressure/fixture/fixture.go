// Package fixture is a minimal, in-memory implementation of the
// regpressure collaborator interfaces, built as small hand-rolled
// helpers rather than a generic mocking framework.
//
// It is not a machine-code representation of any real target; it is
// just enough of a block/instruction/operand model to drive the
// tracker in tests. It has no target register file of its own; tests
// pair it with regpressure/x86ish for that.
package fixture

import "mpc/regpressure"

// Op is a single synthetic operand.
type Op struct {
	Reg   regpressure.RegisterID
	Read  bool
	Def   bool
	Dead  bool
	IsReg bool
}

func (o Op) IsRegister() bool                  { return o.IsReg }
func (o Op) RegisterID() regpressure.RegisterID { return o.Reg }
func (o Op) Reads() bool                       { return o.Read }
func (o Op) IsDef() bool                       { return o.Def }
func (o Op) IsDead() bool                      { return o.Dead }

// Use builds a reading operand.
func Use(r regpressure.RegisterID) Op { return Op{Reg: r, Read: true, IsReg: true} }

// Def builds a live-def operand.
func Def(r regpressure.RegisterID) Op { return Op{Reg: r, Def: true, IsReg: true} }

// DeadDef builds a dead-def operand.
func DeadDef(r regpressure.RegisterID) Op { return Op{Reg: r, Def: true, Dead: true, IsReg: true} }

// UseDef builds an operand that both reads and (live-)defines r, the
// way a read-modify-write instruction operand does.
func UseDef(r regpressure.RegisterID) Op { return Op{Reg: r, Read: true, Def: true, IsReg: true} }

// Instr is a synthetic machine instruction: an ordered operand list
// plus the debug-pseudo-instruction flag the tracker treats as
// transparent.
type Instr struct {
	Ops   []Op
	Debug bool
}

func (i *Instr) Operands() []regpressure.MachineOperand {
	out := make([]regpressure.MachineOperand, len(i.Ops))
	for idx, op := range i.Ops {
		out[idx] = op
	}
	return out
}

func (i *Instr) IsDebugValue() bool { return i.Debug }

// DebugInstr builds a transparent debug pseudo-instruction.
func DebugInstr() *Instr { return &Instr{Debug: true} }

// I builds a real instruction from a sequence of operands.
func I(ops ...Op) *Instr { return &Instr{Ops: ops} }

// Pos is a flat-slice cursor: an index into Block.Code, with
// len(Code) standing in for the end-of-block sentinel.
type Pos struct {
	Idx   int
	Block *Block
}

func (p Pos) Equal(other regpressure.MachineBasicBlockPos) bool {
	o, ok := other.(Pos)
	return ok && o.Idx == p.Idx && o.Block == p.Block
}

// Block is a flat instruction sequence - a plain slice is trivially
// cursor-addressable by index, so Begin/End/Next/Prev need no
// linked-list bookkeeping.
type Block struct {
	Code []*Instr
}

func (b *Block) Begin() regpressure.MachineBasicBlockPos { return Pos{Idx: 0, Block: b} }
func (b *Block) End() regpressure.MachineBasicBlockPos   { return Pos{Idx: len(b.Code), Block: b} }

func (b *Block) InstrAt(pos regpressure.MachineBasicBlockPos) regpressure.MachineInstr {
	p := pos.(Pos)
	return b.Code[p.Idx]
}

func (b *Block) Next(pos regpressure.MachineBasicBlockPos) regpressure.MachineBasicBlockPos {
	p := pos.(Pos)
	return Pos{Idx: p.Idx + 1, Block: b}
}

func (b *Block) Prev(pos regpressure.MachineBasicBlockPos) regpressure.MachineBasicBlockPos {
	p := pos.(Pos)
	return Pos{Idx: p.Idx - 1, Block: b}
}

// AtIndex builds a position i slots into b, for tests that want to
// Init the tracker mid-block.
func AtIndex(b *Block, i int) regpressure.MachineBasicBlockPos {
	return Pos{Idx: i, Block: b}
}

// Slot is an integer slot index; RegisterSlot is the identity since
// this fixture does not model the load/store/kill sub-slots real
// LiveIntervals implementations distinguish between.
type Slot int

func (s Slot) RegisterSlot() regpressure.SlotIndex          { return s }
func (s Slot) Compare(other regpressure.SlotIndex) int      { return int(s) - int(other.(Slot)) }

// Interval is a synthetic live interval: the set of slots at which
// the tracked register is killed.
type Interval struct {
	Kills map[Slot]bool
}

func (iv *Interval) KilledAt(slot regpressure.SlotIndex) bool {
	return iv.Kills[slot.(Slot)]
}

// LiveIntervals is a synthetic oracle: one Slot per instruction index
// in a single block, plus per-register Interval kill sets.
type LiveIntervals struct {
	Intervals map[regpressure.RegisterID]*Interval
}

func (lis *LiveIntervals) SlotIndexOf(pos regpressure.MachineBasicBlockPos) regpressure.SlotIndex {
	return Slot(pos.(Pos).Idx)
}

func (lis *LiveIntervals) BlockEndSlot(b regpressure.MachineBasicBlock) regpressure.SlotIndex {
	return Slot(len(b.(*Block).Code))
}

func (lis *LiveIntervals) IntervalOf(r regpressure.RegisterID) regpressure.LiveInterval {
	iv, ok := lis.Intervals[r]
	if !ok {
		return &Interval{}
	}
	return iv
}
