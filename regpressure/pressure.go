package regpressure

import "mpc/regpressure/internal/assert"

// increaseSetPressure bumps curr by the weight of class for every
// pressure set it contributes to, raising max wherever curr overtakes
// it. curr and max are taken as separate arguments so increaseMaxOnly
// can reuse this with max passed as both.
func increaseSetPressure(curr, max []int, tri TargetRegisterInfo, class RegisterClass) {
	weight := tri.ClassWeight(class)
	for _, s := range tri.PressureSetsOf(class) {
		curr[s] += weight
		if curr[s] > max[s] {
			max[s] = curr[s]
		}
	}
}

// decreaseSetPressure lowers curr by the weight of class for every
// pressure set it contributes to. Underflow is a contract violation:
// the caller must never decrease a set below what was increased for a
// live register.
func decreaseSetPressure(curr []int, tri TargetRegisterInfo, class RegisterClass) {
	weight := tri.ClassWeight(class)
	for _, s := range tri.PressureSetsOf(class) {
		assert.That(curr[s] >= weight, "register pressure underflow in set %d", s)
		curr[s] -= weight
	}
}

// increaseMaxOnly bumps max directly, with no current position to
// track — used at live-in/live-out discovery, where a register is
// known to have been live across a boundary the traversal never
// directly observed. Equivalent to "max[s] += weight(class)" for
// every pressure set of class.
func increaseMaxOnly(max []int, tri TargetRegisterInfo, class RegisterClass) {
	increaseSetPressure(max, max, tri, class)
}

// decreaseMaxOnly exists for symmetry with increaseMaxOnly. It has no
// caller in this engine; kept unexported and unused for the same
// reason, documented in DESIGN.md.
func decreaseMaxOnly(max []int, tri TargetRegisterInfo, class RegisterClass) {
	decreaseSetPressure(max, tri, class)
}
