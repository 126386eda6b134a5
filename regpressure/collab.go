package regpressure

// RegisterID is an opaque register identifier. Whether a given id is
// virtual or physical is exposed through MachineRegisterInfo.IsVirtual,
// since only the register-info collaborator knows where the
// virtual/physical split falls for a given target.
type RegisterID uint32

// RegisterClass is an opaque target-defined tag. The tracker never
// inspects a class itself; it only ever routes one back into
// TargetRegisterInfo.ClassWeight / PressureSetsOf or
// MachineRegisterInfo.ClassOf, so any comparable value the caller's
// target description wants to use works.
type RegisterClass interface{}

// PressureSetID indexes TargetRegisterInfo.NumPressureSets.
type PressureSetID int

// SlotIndex is a totally-ordered position assigned to instructions by
// the LiveIntervals collaborator. RegisterSlot narrows it to the
// "register slot" sub-position the tracker always queries; Compare
// gives the total order the region-boundary open/close comparisons are
// built on.
type SlotIndex interface {
	RegisterSlot() SlotIndex
	Compare(other SlotIndex) int
}

// TargetRegisterInfo describes the physical register file: classes,
// weights, pressure-set membership and aliasing.
type TargetRegisterInfo interface {
	// NumRegisters bounds the physical register id space: every
	// physical RegisterID used by this target must be < NumRegisters,
	// including the reserved null id 0.
	NumRegisters() int
	NumPressureSets() int
	// OverlapSet returns every physical id that aliases r, r included.
	OverlapSet(r RegisterID) []RegisterID
	MinimalPhysClass(r RegisterID) RegisterClass
	ClassWeight(c RegisterClass) int
	PressureSetsOf(c RegisterClass) []PressureSetID
}

// MachineRegisterInfo describes the virtual register universe.
type MachineRegisterInfo interface {
	NumVirtualRegs() int
	ClassOf(r RegisterID) RegisterClass
	IsVirtual(r RegisterID) bool
}

// RegisterClassInfo narrows the physical register file to the
// registers the allocator is actually allowed to hand out.
type RegisterClassInfo interface {
	IsAllocatable(r RegisterID) bool
}

// LiveInterval answers whether a virtual register's use at slot is its
// last use (a kill) according to live-interval analysis.
type LiveInterval interface {
	KilledAt(slot SlotIndex) bool
}

// LiveIntervals is the optional live-interval oracle. It is required
// only when a Tracker is constructed with RequireIntervals true.
type LiveIntervals interface {
	SlotIndexOf(pos MachineBasicBlockPos) SlotIndex
	BlockEndSlot(b MachineBasicBlock) SlotIndex
	IntervalOf(r RegisterID) LiveInterval
}

// MachineOperand is a single operand of a MachineInstr.
type MachineOperand interface {
	IsRegister() bool
	RegisterID() RegisterID
	Reads() bool
	IsDef() bool
	IsDead() bool
}

// MachineInstr is one real or pseudo instruction. Operands is iterated
// in bundle order: a plain instruction returns just its own operands;
// a bundle's sub-instructions are flattened by the caller before
// Operands is consulted.
type MachineInstr interface {
	Operands() []MachineOperand
	IsDebugValue() bool
}

// MachineBasicBlockPos is a cursor into a MachineBasicBlock: an opaque
// position compared with Equal, since Go has no default iterator
// sentinel to overload for this purpose.
type MachineBasicBlockPos interface {
	// Equal reports whether pos denotes the same position.
	Equal(pos MachineBasicBlockPos) bool
}

// MachineBasicBlock exposes just enough of a basic block's instruction
// stream for bidirectional, debug-instruction-skipping traversal.
type MachineBasicBlock interface {
	Begin() MachineBasicBlockPos
	End() MachineBasicBlockPos
	InstrAt(pos MachineBasicBlockPos) MachineInstr
	Next(pos MachineBasicBlockPos) MachineBasicBlockPos
	Prev(pos MachineBasicBlockPos) MachineBasicBlockPos
}

// MachineFunction is the enclosing function; it is only consulted by
// Init to derive the target register descriptions it was built for.
type MachineFunction interface {
	TargetRegInfo() TargetRegisterInfo
	RegInfo() MachineRegisterInfo
}
