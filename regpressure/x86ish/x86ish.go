// Package x86ish is a compact reference TargetRegisterInfo /
// RegisterClassInfo / MachineRegisterInfo for a made-up GPR file with
// sub-register aliasing. Registers are abstract integers
// (regpressure.RegisterID), and storage kinds are a small enum with a
// String method (Class).
//
// It exists so the tracker's alias-aware physical-register path has
// something real to exercise: a 64-bit register overlapping its
// 32/16/8-bit sub-views, the same aliasing shape every x86-64 register
// allocator has to account for.
package x86ish

import "mpc/regpressure"

// Class tags a register by its storage width. Every class contributes
// weight 1 to pressure set GPRSet; narrower sub-registers still cost a
// full unit of the set they alias into, since on this file the whole
// register is reserved the instant any of its views is live.
type Class int

const (
	InvalidClass Class = iota
	Class64
	Class32
	Class16
	Class8
)

func (c Class) String() string {
	switch c {
	case Class64:
		return "r64"
	case Class32:
		return "r32"
	case Class16:
		return "r16"
	case Class8:
		return "r8"
	}
	return "?"
}

// GPRSet is the one pressure set this reference file models.
const GPRSet regpressure.PressureSetID = 0

// NumPressureSets is the number of pressure sets GPRSet indexes into.
const NumPressureSets = 1

// regsPerFile is the number of aliasing physical ids per 64-bit register:
// id, id+1 (32-bit view), id+2 (16-bit view), id+3 (8-bit view).
const regsPerFile = 4

// Target is a fixed-size GPR file of numRegs64 64-bit registers, each
// with its 32/16/8-bit aliases, plus a fixed virtual-register class
// assignment for tests that want every virtual register the same
// width.
type Target struct {
	NumRegs64      int
	NumVirtual     int
	VirtClass      Class
	NotAllocatable map[regpressure.RegisterID]bool
}

// Reg64/Reg32/Reg16/Reg8 return the physical id of the n'th register's
// view at the given width. n is 0-based.
func (t *Target) Reg64(n int) regpressure.RegisterID { return regpressure.RegisterID(1 + n*regsPerFile) }
func (t *Target) Reg32(n int) regpressure.RegisterID { return t.Reg64(n) + 1 }
func (t *Target) Reg16(n int) regpressure.RegisterID { return t.Reg64(n) + 2 }
func (t *Target) Reg8(n int) regpressure.RegisterID  { return t.Reg64(n) + 3 }

// firstVirtual is the first id considered virtual; every physical id
// in this file is below it.
func (t *Target) firstVirtual() regpressure.RegisterID {
	return regpressure.RegisterID(1 + t.NumRegs64*regsPerFile)
}

// Virtual returns the id of the n'th virtual register (0-based).
func (t *Target) Virtual(n int) regpressure.RegisterID {
	return t.firstVirtual() + regpressure.RegisterID(n)
}

func (t *Target) classOfPhys(r regpressure.RegisterID) Class {
	switch (int(r) - 1) % regsPerFile {
	case 0:
		return Class64
	case 1:
		return Class32
	case 2:
		return Class16
	case 3:
		return Class8
	}
	return InvalidClass
}

// NumRegisters implements regpressure.TargetRegisterInfo. +1 reserves
// id 0 as the null/no-register placeholder, which every operand walk
// treats as absent.
func (t *Target) NumRegisters() int { return t.NumRegs64*regsPerFile + 1 }

// NumPressureSets implements regpressure.TargetRegisterInfo.
func (t *Target) NumPressureSets() int { return NumPressureSets }

// OverlapSet returns every width-view of the same 64-bit register,
// including r itself - the whole point being that a use of the 32-bit
// view aliases a use of the 64-bit view and vice versa.
func (t *Target) OverlapSet(r regpressure.RegisterID) []regpressure.RegisterID {
	base := regpressure.RegisterID(((int(r) - 1) / regsPerFile) * regsPerFile + 1)
	return []regpressure.RegisterID{base, base + 1, base + 2, base + 3}
}

// MinimalPhysClass implements regpressure.TargetRegisterInfo.
func (t *Target) MinimalPhysClass(r regpressure.RegisterID) regpressure.RegisterClass {
	return t.classOfPhys(r)
}

// ClassWeight implements regpressure.TargetRegisterInfo: every class
// on this file costs one unit of the set it belongs to.
func (t *Target) ClassWeight(regpressure.RegisterClass) int { return 1 }

// PressureSetsOf implements regpressure.TargetRegisterInfo.
func (t *Target) PressureSetsOf(regpressure.RegisterClass) []regpressure.PressureSetID {
	return []regpressure.PressureSetID{GPRSet}
}

// NumVirtualRegs implements regpressure.MachineRegisterInfo.
func (t *Target) NumVirtualRegs() int { return t.NumVirtual }

// ClassOf implements regpressure.MachineRegisterInfo.
func (t *Target) ClassOf(regpressure.RegisterID) regpressure.RegisterClass {
	return t.VirtClass
}

// IsVirtual implements regpressure.MachineRegisterInfo.
func (t *Target) IsVirtual(r regpressure.RegisterID) bool {
	return r >= t.firstVirtual()
}

// IsAllocatable implements regpressure.RegisterClassInfo: every
// physical register is allocatable unless explicitly excluded (e.g. a
// frame pointer reserved by the calling convention).
func (t *Target) IsAllocatable(r regpressure.RegisterID) bool {
	return !t.NotAllocatable[r]
}

// TargetRegInfo implements regpressure.MachineFunction.
func (t *Target) TargetRegInfo() regpressure.TargetRegisterInfo { return t }

// RegInfo implements regpressure.MachineFunction.
func (t *Target) RegInfo() regpressure.MachineRegisterInfo { return t }

// New builds a reference target with numRegs64 aliasing GPR groups and
// numVirtual virtual registers, all of class64 width.
func New(numRegs64, numVirtual int) *Target {
	return &Target{
		NumRegs64:      numRegs64,
		NumVirtual:     numVirtual,
		VirtClass:      Class64,
		NotAllocatable: map[regpressure.RegisterID]bool{},
	}
}
