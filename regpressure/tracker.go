package regpressure

import "mpc/regpressure/internal/assert"

// Tracker is the traversal engine: a cursor into a basic block plus
// the collaborators needed to update live-set bookkeeping and pressure
// arithmetic as the cursor moves. A single instance is not re-entrant;
// distinct instances may share read-only collaborators concurrently.
type Tracker struct {
	requireIntervals bool

	tri TargetRegisterInfo
	mri MachineRegisterInfo
	rci RegisterClassInfo
	lis LiveIntervals

	mbb     MachineBasicBlock
	currPos MachineBasicBlockPos

	currSetPressure []int
	p               pressureState

	livePhys *physRegSet
	liveVirt *virtRegSet
}

// NewTracker constructs a Tracker configured once, at construction
// time, for either interval-backed precise boundaries or coarser
// iterator-only boundaries.
func NewTracker(requireIntervals bool) *Tracker {
	t := &Tracker{requireIntervals: requireIntervals}
	if requireIntervals {
		t.p = &IntervalPressure{}
	} else {
		t.p = &RegionPressure{}
	}
	return t
}

// Init positions the tracker at pos inside mbb, deriving target
// register descriptions from fn and resetting the pressure vectors,
// boundary state and live sets.
// lis may be nil unless the tracker requires intervals, in which case
// its absence is a contract violation.
func (t *Tracker) Init(fn MachineFunction, rci RegisterClassInfo, lis LiveIntervals, mbb MachineBasicBlock, pos MachineBasicBlockPos) {
	assert.That(!t.requireIntervals || lis != nil, "Init: IntervalPressure requires LiveIntervals")

	t.tri = fn.TargetRegInfo()
	t.mri = fn.RegInfo()
	t.rci = rci
	t.lis = lis
	t.mbb = mbb

	t.currPos = pos
	for !t.currPos.Equal(mbb.End()) && mbb.InstrAt(t.currPos).IsDebugValue() {
		t.currPos = mbb.Next(t.currPos)
	}

	t.currSetPressure = make([]int, t.tri.NumPressureSets())
	t.p.reset(t.tri.NumPressureSets())
	copy(t.p.tail().MaxSetPressure, t.currSetPressure)

	t.livePhys = newPhysRegSet(t.tri)
	t.liveVirt = newVirtRegSet(t.mri.NumVirtualRegs())
}

// State exposes the region boundary state (live-ins, live-outs, the
// high-water mark) for querying after any close.
func (t *Tracker) State() *boundaryState { return t.p.tail() }

// CurrSetPressure returns the current weighted pressure vector.
func (t *Tracker) CurrSetPressure() []int { return t.currSetPressure }

func (t *Tracker) isTopClosed() bool    { return t.p.isTopClosed() }
func (t *Tracker) isBottomClosed() bool { return t.p.isBottomClosed() }

// closeTop sets the top endpoint and summarizes live-ins.
func (t *Tracker) closeTop() {
	if t.requireIntervals {
		slot := t.lis.SlotIndexOf(t.currPos).RegisterSlot()
		t.p.closeTopAt(slot, nil)
	} else {
		t.p.closeTopAt(nil, t.currPos)
	}
	t.p.snapshotTop(t.livePhys, t.liveVirt)
}

// closeBottom sets the bottom endpoint and summarizes live-outs.
func (t *Tracker) closeBottom() {
	if t.requireIntervals {
		var slot SlotIndex
		if t.currPos.Equal(t.mbb.End()) {
			slot = t.lis.BlockEndSlot(t.mbb)
		} else {
			slot = t.lis.SlotIndexOf(t.currPos).RegisterSlot()
		}
		t.p.closeBottomAt(slot, nil)
	} else {
		t.p.closeBottomAt(nil, t.currPos)
	}
	t.p.snapshotBottom(t.livePhys, t.liveVirt)
}

// closeRegion finalizes whichever single boundary remains open. If
// both are open there is nothing analyzed yet; if both are already
// closed, nothing to do.
func (t *Tracker) closeRegion() {
	if !t.isTopClosed() && !t.isBottomClosed() {
		assert.That(t.livePhys.isEmpty() && t.liveVirt.isEmpty(), "closeRegion: no region boundary but live sets are non-empty")
		return
	}
	if !t.isBottomClosed() {
		t.closeBottom()
	} else if !t.isTopClosed() {
		t.closeTop()
	}
}

func (t *Tracker) increase(class RegisterClass) {
	increaseSetPressure(t.currSetPressure, t.p.tail().MaxSetPressure, t.tri, class)
}

func (t *Tracker) decrease(class RegisterClass) {
	decreaseSetPressure(t.currSetPressure, t.tri, class)
}

func (t *Tracker) increasePhys(regs []RegisterID) {
	for _, r := range regs {
		t.increase(t.tri.MinimalPhysClass(r))
	}
}

func (t *Tracker) decreasePhys(regs []RegisterID) {
	for _, r := range regs {
		t.decrease(t.tri.MinimalPhysClass(r))
	}
}

func (t *Tracker) increaseVirt(regs []RegisterID) {
	for _, r := range regs {
		t.increase(t.mri.ClassOf(r))
	}
}

func (t *Tracker) decreaseVirt(regs []RegisterID) {
	for _, r := range regs {
		t.decrease(t.mri.ClassOf(r))
	}
}

// discoverPhysLiveIn records r as live-in and bumps the high-water
// mark unconditionally, since a register crossing into the region
// from outside contributes to peak pressure even though the traversal
// never saw it live inside.
func (t *Tracker) discoverPhysLiveIn(r RegisterID) {
	assert.That(!t.livePhys.contains(r), "discoverPhysLiveIn: %d already live, would bump max pressure twice", r)
	if containsAliasAware(t.State().LiveInRegs, r, t.tri, false) {
		return
	}
	insertSorted(&t.State().LiveInRegs, r)
	t.State().increase(t.tri, t.tri.MinimalPhysClass(r))
}

func (t *Tracker) discoverPhysLiveOut(r RegisterID) {
	assert.That(!t.livePhys.contains(r), "discoverPhysLiveOut: %d already live, would bump max pressure twice", r)
	if containsAliasAware(t.State().LiveOutRegs, r, t.tri, false) {
		return
	}
	insertSorted(&t.State().LiveOutRegs, r)
	t.State().increase(t.tri, t.tri.MinimalPhysClass(r))
}

func (t *Tracker) discoverVirtLiveIn(r RegisterID) {
	assert.That(!t.liveVirt.contains(r), "discoverVirtLiveIn: %d already live, would bump max pressure twice", r)
	if containsAliasAware(t.State().LiveInRegs, r, t.tri, true) {
		return
	}
	insertSorted(&t.State().LiveInRegs, r)
	t.State().increase(t.tri, t.mri.ClassOf(r))
}

func (t *Tracker) discoverVirtLiveOut(r RegisterID) {
	assert.That(!t.liveVirt.contains(r), "discoverVirtLiveOut: %d already live, would bump max pressure twice", r)
	if containsAliasAware(t.State().LiveOutRegs, r, t.tri, true) {
		return
	}
	insertSorted(&t.State().LiveOutRegs, r)
	t.State().increase(t.tri, t.mri.ClassOf(r))
}

func (t *Tracker) pulseDeadDefs(phys, virt registerOperands) {
	t.increasePhys(phys.DeadDefs)
	t.increaseVirt(virt.DeadDefs)
	t.decreasePhys(phys.DeadDefs)
	t.decreaseVirt(virt.DeadDefs)
}

func (t *Tracker) skipDebugBackward(pos MachineBasicBlockPos) MachineBasicBlockPos {
	for !pos.Equal(t.mbb.Begin()) && t.mbb.InstrAt(pos).IsDebugValue() {
		pos = t.mbb.Prev(pos)
	}
	return pos
}

func (t *Tracker) skipDebugForward(pos MachineBasicBlockPos) MachineBasicBlockPos {
	for !pos.Equal(t.mbb.End()) && t.mbb.InstrAt(pos).IsDebugValue() {
		pos = t.mbb.Next(pos)
	}
	return pos
}

// Recede steps one real instruction upward, returning false when no
// more analyzable instructions remain above.
func (t *Tracker) Recede() bool {
	if t.currPos.Equal(t.mbb.Begin()) {
		t.closeRegion()
		return false
	}
	if !t.isBottomClosed() {
		t.closeBottom()
	}

	if !t.requireIntervals && t.isTopClosed() {
		t.p.openTop(nil, t.currPos)
	}

	prevPos := t.mbb.Prev(t.currPos)
	t.currPos = t.skipDebugBackward(prevPos)

	if t.mbb.InstrAt(t.currPos).IsDebugValue() {
		t.closeRegion()
		return false
	}

	var slot SlotIndex
	if t.requireIntervals {
		slot = t.lis.SlotIndexOf(t.currPos).RegisterSlot()
	}

	if t.requireIntervals && t.isTopClosed() {
		t.p.openTop(slot, nil)
	}

	phys, virt := collectOperands(t.mbb.InstrAt(t.currPos), t.tri, t.mri, t.rci)

	// Boost pressure for all dead defs together, then drop it back -
	// this models the dead def being momentarily live within the
	// instruction without leaving residue in curr.
	t.pulseDeadDefs(phys, virt)

	// Kill liveness at live defs.
	// TODO: consider earlyclobbers?
	for _, r := range phys.Defs {
		if t.livePhys.erase(r) {
			t.decrease(t.tri.MinimalPhysClass(r))
		} else {
			t.discoverPhysLiveOut(r)
		}
	}
	for _, r := range virt.Defs {
		if t.liveVirt.erase(r) {
			t.decrease(t.mri.ClassOf(r))
		} else {
			t.discoverVirtLiveOut(r)
		}
	}

	// Generate liveness at uses.
	for _, r := range phys.Uses {
		if !t.livePhys.containsAlias(r) {
			t.increase(t.tri.MinimalPhysClass(r))
			t.livePhys.insert(r)
		}
	}
	for _, r := range virt.Uses {
		if !t.liveVirt.contains(r) {
			if t.requireIntervals {
				li := t.lis.IntervalOf(r)
				if !li.KilledAt(slot) {
					t.discoverVirtLiveOut(r)
				}
			}
			t.increase(t.mri.ClassOf(r))
			t.liveVirt.insert(r)
		}
	}
	return true
}

// Advance steps one real instruction downward, returning false when
// no more analyzable instructions remain below.
func (t *Tracker) Advance() bool {
	if t.currPos.Equal(t.mbb.End()) {
		t.closeRegion()
		return false
	}
	if !t.isTopClosed() {
		t.closeTop()
	}

	var slot SlotIndex
	if t.requireIntervals {
		slot = t.lis.SlotIndexOf(t.currPos).RegisterSlot()
	}

	if t.isBottomClosed() {
		t.p.openBottom(slot, t.currPos)
	}

	phys, virt := collectOperands(t.mbb.InstrAt(t.currPos), t.tri, t.mri, t.rci)

	// Kill liveness at last uses. Allocatable physical registers are
	// always single-use before register allocation, so every phys use
	// at this stage is a kill.
	for _, r := range phys.Uses {
		if !t.livePhys.containsAlias(r) {
			t.discoverPhysLiveIn(r)
		} else {
			t.decrease(t.tri.MinimalPhysClass(r))
			t.livePhys.erase(r)
		}
	}
	for _, r := range virt.Uses {
		if t.requireIntervals {
			li := t.lis.IntervalOf(r)
			if li.KilledAt(slot) {
				if t.liveVirt.erase(r) {
					t.decrease(t.mri.ClassOf(r))
				} else {
					t.discoverVirtLiveIn(r)
				}
			}
		} else if !t.liveVirt.contains(r) {
			t.discoverVirtLiveIn(r)
			t.increase(t.mri.ClassOf(r))
		}
	}

	// Generate liveness at defs.
	for _, r := range phys.Defs {
		if !t.livePhys.containsAlias(r) {
			t.increase(t.tri.MinimalPhysClass(r))
			t.livePhys.insert(r)
		}
	}
	for _, r := range virt.Defs {
		if t.liveVirt.insert(r) {
			t.increase(t.mri.ClassOf(r))
		}
	}

	t.pulseDeadDefs(phys, virt)

	t.currPos = t.skipDebugForward(t.mbb.Next(t.currPos))
	return true
}
