// Package pirmc adapts github.com/padeir0/pir, a compiler IR library,
// into the regpressure collaborator interfaces.
//
// pir emits a target-independent, pre-register-allocation SSA-like
// IR: every pir.BasicBlock is a flat []pir.Instr, trivially
// cursor-addressable by index, and every register-resident value is a
// class.Temp operand (pir has no notion of a physical register at
// all - that only exists once a downstream backend has run). This
// adapter therefore exercises exactly the RequireIntervals==false,
// virtual-register-only half of the tracker: the natural use case for
// an IR emitted before allocation and before live-interval analysis.
package pirmc

import (
	"github.com/padeir0/pir"
	pirc "github.com/padeir0/pir/class"

	"mpc/regpressure"
)

// WidthClass is the RegisterClass this adapter produces. pir carries
// no target register classes pre-allocation, so class is derived
// straight from the value's byte width (pir/types.Type.Size()).
type WidthClass int

// GPRSet is the sole pressure set pir values contribute to: pir has no
// separate float/vector register file, so there is nothing to split
// pressure across.
const GPRSet regpressure.PressureSetID = 0

// regInfo answers both TargetRegisterInfo and MachineRegisterInfo for
// a single *pir.Procedure. The physical half of TargetRegisterInfo is
// trivial: pir never assigns one, so NumRegisters reports only the
// reserved null id and IsAllocatable is always false.
type regInfo struct {
	numTemps int
	widths   map[regpressure.RegisterID]WidthClass
}

func newRegInfo(proc *pir.Procedure) *regInfo {
	r := &regInfo{widths: map[regpressure.RegisterID]WidthClass{}}
	scan := func(op pir.Operand) {
		if op.Class != pirc.Temp {
			return
		}
		id := tempID(op)
		if int(id)+1 > r.numTemps {
			r.numTemps = int(id) + 1
		}
		if op.Type != nil {
			r.widths[id] = WidthClass(op.Type.Size())
		}
	}
	for _, bb := range proc.AllBlocks {
		for _, in := range bb.Code {
			for _, o := range in.Operands {
				scan(o)
			}
			for _, o := range in.Destination {
				scan(o)
			}
		}
		for _, o := range bb.Out.V {
			scan(o)
		}
	}
	return r
}

// tempID maps a class.Temp operand to its RegisterID: the pir ID plus
// one, so that temp 0 does not collide with the reserved null id 0.
func tempID(op pir.Operand) regpressure.RegisterID {
	return regpressure.RegisterID(op.ID + 1)
}

func (r *regInfo) NumRegisters() int       { return 1 } // id 0 only: the reserved null register
func (r *regInfo) NumPressureSets() int    { return 1 }
func (r *regInfo) OverlapSet(id regpressure.RegisterID) []regpressure.RegisterID {
	return []regpressure.RegisterID{id}
}
func (r *regInfo) MinimalPhysClass(regpressure.RegisterID) regpressure.RegisterClass { return WidthClass(0) }
func (r *regInfo) ClassWeight(regpressure.RegisterClass) int                        { return 1 }
func (r *regInfo) PressureSetsOf(regpressure.RegisterClass) []regpressure.PressureSetID {
	return []regpressure.PressureSetID{GPRSet}
}

func (r *regInfo) NumVirtualRegs() int { return r.numTemps }

func (r *regInfo) ClassOf(id regpressure.RegisterID) regpressure.RegisterClass {
	if w, ok := r.widths[id]; ok {
		return w
	}
	return WidthClass(8)
}

func (r *regInfo) IsVirtual(regpressure.RegisterID) bool { return true }

func (r *regInfo) IsAllocatable(regpressure.RegisterID) bool { return false }

// Function adapts a *pir.Procedure into regpressure.MachineFunction
// and regpressure.RegisterClassInfo.
type Function struct {
	*regInfo
	Proc *pir.Procedure
}

// NewFunction wraps proc for use with a regpressure.Tracker. Pass the
// same value both as the MachineFunction and the RegisterClassInfo
// argument to Tracker.Init.
func NewFunction(proc *pir.Procedure) *Function {
	return &Function{regInfo: newRegInfo(proc), Proc: proc}
}

func (f *Function) TargetRegInfo() regpressure.TargetRegisterInfo { return f.regInfo }
func (f *Function) RegInfo() regpressure.MachineRegisterInfo      { return f.regInfo }

// Block adapts one *pir.BasicBlock into regpressure.MachineBasicBlock.
type Block struct {
	bb *pir.BasicBlock
}

// NewBlock wraps bb for traversal.
func NewBlock(bb *pir.BasicBlock) *Block { return &Block{bb: bb} }

// pos is a flat-slice cursor mirroring pir.BasicBlock.Code's natural
// indexability - no linked-list bookkeeping needed.
type pos struct {
	idx   int
	block *pir.BasicBlock
}

func (p pos) Equal(other regpressure.MachineBasicBlockPos) bool {
	o, ok := other.(pos)
	return ok && o.idx == p.idx && o.block == p.block
}

func (b *Block) Begin() regpressure.MachineBasicBlockPos { return pos{0, b.bb} }
func (b *Block) End() regpressure.MachineBasicBlockPos   { return pos{len(b.bb.Code), b.bb} }

func (b *Block) InstrAt(p regpressure.MachineBasicBlockPos) regpressure.MachineInstr {
	pp := p.(pos)
	return &instr{in: &b.bb.Code[pp.idx]}
}

func (b *Block) Next(p regpressure.MachineBasicBlockPos) regpressure.MachineBasicBlockPos {
	pp := p.(pos)
	return pos{pp.idx + 1, b.bb}
}

func (b *Block) Prev(p regpressure.MachineBasicBlockPos) regpressure.MachineBasicBlockPos {
	pp := p.(pos)
	return pos{pp.idx - 1, b.bb}
}

// instr adapts a single *pir.Instr. pir has no debug pseudo-instruction
// kind, so IsDebugValue is always false.
type instr struct {
	in *pir.Instr
}

func (i *instr) IsDebugValue() bool { return false }

func (i *instr) Operands() []regpressure.MachineOperand {
	out := make([]regpressure.MachineOperand, 0, len(i.in.Operands)+len(i.in.Destination))
	for _, o := range i.in.Operands {
		if o.Class != pirc.Temp {
			continue
		}
		out = append(out, operand{id: tempID(o), read: true})
	}
	for _, o := range i.in.Destination {
		if o.Class != pirc.Temp {
			continue
		}
		// pir carries no liveness/deadness annotation pre-allocation,
		// so every Destination entry is conservatively a live def,
		// never a dead def.
		out = append(out, operand{id: tempID(o), def: true})
	}
	return out
}

type operand struct {
	id        regpressure.RegisterID
	read, def bool
}

func (o operand) IsRegister() bool                   { return true }
func (o operand) RegisterID() regpressure.RegisterID { return o.id }
func (o operand) Reads() bool                        { return o.read }
func (o operand) IsDef() bool                         { return o.def }
func (o operand) IsDead() bool                        { return false }
