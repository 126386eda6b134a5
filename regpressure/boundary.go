package regpressure

import (
	"sort"

	"mpc/regpressure/internal/assert"
)

// boundaryState is the common tail shared by both region-boundary
// flavors: live-in/live-out snapshots and the high-water mark.
// Flavor-specific endpoint storage and open/close comparisons are
// promoted to IntervalPressure/RegionPressure, which embed this.
type boundaryState struct {
	LiveInRegs     []RegisterID
	LiveOutRegs    []RegisterID
	MaxSetPressure []int
}

func (b *boundaryState) reset(numSets int) {
	b.LiveInRegs = nil
	b.LiveOutRegs = nil
	b.MaxSetPressure = make([]int, numSets)
}

// increase delegates to the max-only pressure arithmetic, used when a
// register is discovered live across a boundary.
func (b *boundaryState) increase(tri TargetRegisterInfo, class RegisterClass) {
	increaseMaxOnly(b.MaxSetPressure, tri, class)
}

// insertSorted inserts r into *dst, which must already be sorted
// ascending, preserving that order. Used by the discover* methods so
// that LiveInRegs/LiveOutRegs stay sorted after every mutation, not
// just after a bulk snapshot.
func insertSorted(dst *[]RegisterID, r RegisterID) {
	regs := *dst
	i := sort.Search(len(regs), func(i int) bool { return regs[i] >= r })
	regs = append(regs, 0)
	copy(regs[i+1:], regs[i:])
	regs[i] = r
	*dst = regs
}

func snapshot(dst *[]RegisterID, phys *physRegSet, virt *virtRegSet) {
	assert.That(len(*dst) == 0, "inconsistent max pressure result: snapshot target is not empty")
	regs := append(phys.regs(), virt.regs()...)
	sort.Slice(regs, func(i, j int) bool { return regs[i] < regs[j] })
	out := regs[:0]
	for i, r := range regs {
		if i == 0 || r != out[len(out)-1] {
			out = append(out, r)
		}
	}
	*dst = out
}

// pressureState is the flavor-dispatch interface: interval-index-based
// boundaries (used when live intervals are available) vs plain
// iterator-based boundaries. Dispatch happens once, at Tracker
// construction, rather than per-call type switches.
type pressureState interface {
	reset(numSets int)
	isTopClosed() bool
	isBottomClosed() bool
	closeTopAt(slot SlotIndex, pos MachineBasicBlockPos)
	closeBottomAt(slot SlotIndex, pos MachineBasicBlockPos)
	openTop(nextTopSlot SlotIndex, prevTopPos MachineBasicBlockPos)
	openBottom(prevBottomSlot SlotIndex, prevBottomPos MachineBasicBlockPos)
	snapshotTop(phys *physRegSet, virt *virtRegSet)
	snapshotBottom(phys *physRegSet, virt *virtRegSet)
	tail() *boundaryState
}

// IntervalPressure is the interval-index-based boundary flavor: top
// and bottom are SlotIndex-derived register slots.
type IntervalPressure struct {
	boundaryState
	topIdx, bottomIdx SlotIndex
}

func (p *IntervalPressure) reset(numSets int) {
	p.boundaryState.reset(numSets)
	p.topIdx, p.bottomIdx = nil, nil
}

func (p *IntervalPressure) isTopClosed() bool    { return p.topIdx != nil }
func (p *IntervalPressure) isBottomClosed() bool { return p.bottomIdx != nil }

func (p *IntervalPressure) closeTopAt(slot SlotIndex, _ MachineBasicBlockPos) {
	p.topIdx = slot
}

func (p *IntervalPressure) closeBottomAt(slot SlotIndex, _ MachineBasicBlockPos) {
	p.bottomIdx = slot
}

// openTop is a no-op when the current top is not after nextTopSlot
// ("<=") and otherwise reopens the boundary. The comparison direction
// is load-bearing - do not normalize it to a different operator.
func (p *IntervalPressure) openTop(nextTopSlot SlotIndex, _ MachineBasicBlockPos) {
	if p.topIdx != nil && slotLessEqual(p.topIdx, nextTopSlot) {
		return
	}
	p.topIdx = nil
	p.LiveInRegs = nil
}

// openBottom is a no-op when the current bottom is strictly after
// prevBottomSlot (">") and otherwise reopens the boundary. Note the
// comparison is strict, unlike openTop's "<=".
func (p *IntervalPressure) openBottom(prevBottomSlot SlotIndex, _ MachineBasicBlockPos) {
	if p.bottomIdx != nil && slotGreater(p.bottomIdx, prevBottomSlot) {
		return
	}
	p.bottomIdx = nil
	p.LiveOutRegs = nil
}

func (p *IntervalPressure) snapshotTop(phys *physRegSet, virt *virtRegSet) {
	snapshot(&p.LiveInRegs, phys, virt)
}

func (p *IntervalPressure) snapshotBottom(phys *physRegSet, virt *virtRegSet) {
	snapshot(&p.LiveOutRegs, phys, virt)
}

func (p *IntervalPressure) tail() *boundaryState { return &p.boundaryState }

// RegionPressure is the plain-iterator boundary flavor, used when no
// LiveIntervals oracle is available. Top/bottom positions are tracked
// by MachineBasicBlockPos, with nil standing in for an unset position.
type RegionPressure struct {
	boundaryState
	topPos, bottomPos MachineBasicBlockPos
}

func (p *RegionPressure) reset(numSets int) {
	p.boundaryState.reset(numSets)
	p.topPos, p.bottomPos = nil, nil
}

// isTopClosed/isBottomClosed treat nil as open and a recorded position
// as closed, so both boundaries start open on reset and close the
// first time closeTopAt/closeBottomAt runs. openTop/openBottom clear
// the position back to nil to reopen a boundary.
func (p *RegionPressure) isTopClosed() bool    { return p.topPos != nil }
func (p *RegionPressure) isBottomClosed() bool { return p.bottomPos != nil }

func (p *RegionPressure) closeTopAt(_ SlotIndex, pos MachineBasicBlockPos) {
	p.topPos = pos
}

func (p *RegionPressure) closeBottomAt(_ SlotIndex, pos MachineBasicBlockPos) {
	p.bottomPos = pos
}

// openTop reopens the top boundary iff the cursor about to be crossed
// is exactly the current top (position equality).
func (p *RegionPressure) openTop(_ SlotIndex, prevTopPos MachineBasicBlockPos) {
	if p.topPos == nil || !p.topPos.Equal(prevTopPos) {
		return
	}
	p.topPos = nil
	p.LiveInRegs = nil
}

func (p *RegionPressure) openBottom(_ SlotIndex, prevBottomPos MachineBasicBlockPos) {
	if p.bottomPos == nil || !p.bottomPos.Equal(prevBottomPos) {
		return
	}
	p.bottomPos = nil
	p.LiveOutRegs = nil
}

func (p *RegionPressure) snapshotTop(phys *physRegSet, virt *virtRegSet) {
	snapshot(&p.LiveInRegs, phys, virt)
}

func (p *RegionPressure) snapshotBottom(phys *physRegSet, virt *virtRegSet) {
	snapshot(&p.LiveOutRegs, phys, virt)
}

func (p *RegionPressure) tail() *boundaryState { return &p.boundaryState }

func slotLessEqual(a, b SlotIndex) bool {
	return a.Compare(b) <= 0
}

func slotGreater(a, b SlotIndex) bool {
	return a.Compare(b) > 0
}
