package regpressure_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"mpc/regpressure"
	"mpc/regpressure/fixture"
	"mpc/regpressure/x86ish"
)

// newVirtTracker builds a tracker over a synthetic target with no
// physical registers, exercising the RequireIntervals==false,
// virtual-only path the way a pirmc-backed caller would.
func newVirtTracker(t *testing.T, blk *fixture.Block, numVirt int) *regpressure.Tracker {
	t.Helper()
	target := x86ish.New(0, numVirt)
	tr := regpressure.NewTracker(false)
	tr.Init(target, target, nil, blk, blk.Begin())
	return tr
}

func TestAdvanceThenRecedeReturnsCurrToZero(t *testing.T) {
	// Scenario: back-to-back defs of distinct virtual registers, each
	// live across the whole region.
	v1, v2 := regpressure.RegisterID(100), regpressure.RegisterID(101)
	blk := &fixture.Block{Code: []*fixture.Instr{
		fixture.I(fixture.Def(v1)),
		fixture.I(fixture.Def(v2), fixture.Use(v1)),
		fixture.I(fixture.Use(v2)),
	}}
	target := x86ish.New(0, 2)

	tr := regpressure.NewTracker(false)
	tr.Init(target, target, nil, blk, blk.Begin())
	start := append([]int(nil), tr.CurrSetPressure()...)

	for tr.Advance() {
	}
	for tr.Recede() {
	}

	require.Equal(t, start, tr.CurrSetPressure(), "curr pressure must return to its starting value after a full round trip")
}

func TestSingleInstructionRegionHasNoLiveInOrOut(t *testing.T) {
	v1 := regpressure.RegisterID(5)
	blk := &fixture.Block{Code: []*fixture.Instr{
		fixture.I(fixture.DeadDef(v1)),
	}}
	tr := newVirtTracker(t, blk, 1)

	require.True(t, tr.Advance())
	require.False(t, tr.Advance())

	state := tr.State()
	require.Empty(t, state.LiveInRegs)
	require.Empty(t, state.LiveOutRegs)
	require.Equal(t, []int{0}, tr.CurrSetPressure(), "a dead def must leave no residue in curr")
}

func TestDeadDefAlonePulsesMaxButNotCurr(t *testing.T) {
	v1 := regpressure.RegisterID(5)
	blk := &fixture.Block{Code: []*fixture.Instr{
		fixture.I(fixture.DeadDef(v1)),
	}}
	tr := newVirtTracker(t, blk, 1)
	tr.Advance()

	require.Equal(t, []int{0}, tr.CurrSetPressure())
	require.Equal(t, []int{1}, tr.State().MaxSetPressure, "the dead def's pulse must still register in the high-water mark")
}

func TestRecedeDiscoversLiveOutWhenNoDefKillsIt(t *testing.T) {
	// A single use with no def anywhere in the region and an interval
	// oracle that says this use is not the register's last: receding
	// from the bottom must discover the register as live-out. Without
	// an interval oracle this can't be known at all, so this only
	// applies to the RequireIntervals==true flavor.
	v1 := regpressure.RegisterID(7)
	blk := &fixture.Block{Code: []*fixture.Instr{
		fixture.I(fixture.Use(v1)),
	}}
	lis := &fixture.LiveIntervals{
		Intervals: map[regpressure.RegisterID]*fixture.Interval{
			v1: {Kills: map[fixture.Slot]bool{}},
		},
	}
	target := x86ish.New(0, 1)
	tr := regpressure.NewTracker(true)
	tr.Init(target, target, lis, blk, blk.End())

	require.True(t, tr.Recede())
	require.False(t, tr.Recede())

	require.Contains(t, tr.State().LiveOutRegs, v1)
}

func TestAdvancePastPhysicalUseOnlyBumpsMax(t *testing.T) {
	// A physical use with no prior def anywhere in the region is never
	// already alias-live when advancing past it, so it is only ever
	// discovered (max-only): curr never moves for it.
	target := x86ish.New(1, 0)
	r64 := target.Reg64(0)
	r32 := target.Reg32(0)

	blk := &fixture.Block{Code: []*fixture.Instr{
		fixture.I(fixture.Use(r32)),
		fixture.I(fixture.Use(r64)),
	}}
	tr := regpressure.NewTracker(false)
	tr.Init(target, target, nil, blk, blk.Begin())

	require.True(t, tr.Advance())
	require.Equal(t, []int{0}, tr.CurrSetPressure(), "a bare physical use only bumps the high-water mark, not curr")

	require.True(t, tr.Advance())
	require.Equal(t, []int{0}, tr.CurrSetPressure())
	require.Equal(t, []int{1}, tr.State().MaxSetPressure)
}

func TestRecedingAliasingPhysicalUsesCountsOnce(t *testing.T) {
	// Receding the same 32-bit/64-bit aliasing pair generates liveness
	// instead of discovering it: the first use hit while receding
	// inserts and raises curr, and the second - aliasing the first -
	// must be a no-op, leaving exactly one of the pair in the live set.
	target := x86ish.New(1, 0)
	r64 := target.Reg64(0)
	r32 := target.Reg32(0)

	blk := &fixture.Block{Code: []*fixture.Instr{
		fixture.I(fixture.Use(r32)),
		fixture.I(fixture.Use(r64)),
	}}
	tr := regpressure.NewTracker(false)
	tr.Init(target, target, nil, blk, blk.End())

	require.True(t, tr.Recede())
	require.Equal(t, []int{1}, tr.CurrSetPressure(), "the first use hit while receding must raise curr")

	require.True(t, tr.Recede())
	require.Equal(t, []int{1}, tr.CurrSetPressure(), "the second use aliases the first and must not add pressure")

	require.False(t, tr.Recede())
	liveIn := tr.State().LiveInRegs
	require.Len(t, liveIn, 1, "only one of the aliasing pair should ever have been live at once")
}

func TestIntervalKilledVirtualUseDecreasesOnAdvance(t *testing.T) {
	v1 := regpressure.RegisterID(3)
	blk := &fixture.Block{Code: []*fixture.Instr{
		fixture.I(fixture.Def(v1)),
		fixture.I(fixture.Use(v1)),
	}}
	lis := &fixture.LiveIntervals{
		Intervals: map[regpressure.RegisterID]*fixture.Interval{
			v1: {Kills: map[fixture.Slot]bool{1: true}},
		},
	}
	target := x86ish.New(0, 1)
	tr := regpressure.NewTracker(true)
	tr.Init(target, target, lis, blk, blk.Begin())

	require.True(t, tr.Advance())
	require.Equal(t, []int{1}, tr.CurrSetPressure())

	require.True(t, tr.Advance())
	require.Equal(t, []int{0}, tr.CurrSetPressure(), "the interval oracle marks this use as the last use, so curr must drop back to zero")
	require.False(t, tr.Advance())
}

func TestMaxPressureIsTheHighestCurrSeenDuringTheSweep(t *testing.T) {
	v1, v2, v3 := regpressure.RegisterID(1), regpressure.RegisterID(2), regpressure.RegisterID(3)
	blk := &fixture.Block{Code: []*fixture.Instr{
		fixture.I(fixture.Def(v1)),
		fixture.I(fixture.Def(v2)),
		fixture.I(fixture.Use(v1), fixture.Use(v2), fixture.Def(v3)),
		fixture.I(fixture.Use(v3)),
	}}
	target := x86ish.New(0, 3)
	tr := regpressure.NewTracker(false)
	tr.Init(target, target, nil, blk, blk.Begin())

	maxSeen := 0
	for tr.Advance() {
		for _, p := range tr.CurrSetPressure() {
			if p > maxSeen {
				maxSeen = p
			}
		}
	}
	require.Equal(t, maxSeen, tr.State().MaxSetPressure[0])
}

func TestDiscoveredLiveInsAreSorted(t *testing.T) {
	v1, v2 := regpressure.RegisterID(9), regpressure.RegisterID(2)
	blk := &fixture.Block{Code: []*fixture.Instr{
		fixture.I(fixture.Use(v1), fixture.Use(v2)),
	}}
	target := x86ish.New(0, 2)
	tr := regpressure.NewTracker(false)
	tr.Init(target, target, nil, blk, blk.Begin())

	for tr.Advance() {
	}
	liveIn := tr.State().LiveInRegs
	require.Len(t, liveIn, 2)
	require.True(t, liveIn[0] < liveIn[1], "live-in set must be sorted ascending")
}

func TestAdvanceDiscoversVirtLiveInWhenKilledAtFirstUse(t *testing.T) {
	// A single "use V" instruction where the interval oracle reports V
	// killed at this slot, and V is not already in the live set (erase
	// fails) - V must be discovered live-in.
	v1 := regpressure.RegisterID(11)
	blk := &fixture.Block{Code: []*fixture.Instr{
		fixture.I(fixture.Use(v1)),
	}}
	lis := &fixture.LiveIntervals{
		Intervals: map[regpressure.RegisterID]*fixture.Interval{
			v1: {Kills: map[fixture.Slot]bool{0: true}},
		},
	}
	target := x86ish.New(0, 1)
	tr := regpressure.NewTracker(true)
	tr.Init(target, target, lis, blk, blk.Begin())

	require.True(t, tr.Advance())
	require.False(t, tr.Advance())
	require.Contains(t, tr.State().LiveInRegs, v1)
}

func TestDebugInstructionsAreTransparent(t *testing.T) {
	v1 := regpressure.RegisterID(4)
	blk := &fixture.Block{Code: []*fixture.Instr{
		fixture.DebugInstr(),
		fixture.I(fixture.Use(v1)),
		fixture.DebugInstr(),
	}}
	target := x86ish.New(0, 1)
	tr := regpressure.NewTracker(false)
	tr.Init(target, target, nil, blk, blk.Begin())

	require.True(t, tr.Advance())
	require.False(t, tr.Advance(), "the trailing debug instruction must not count as analyzable")
}
