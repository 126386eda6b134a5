package regpressure

// registerOperands collects one instruction's unique uses and defs,
// in operand-visit order, for a single register kind (physical or
// virtual).
type registerOperands struct {
	Uses     []RegisterID
	Defs     []RegisterID
	DeadDefs []RegisterID
}

func containsAliasAware(regs []RegisterID, r RegisterID, tri TargetRegisterInfo, isVirt bool) bool {
	if isVirt {
		for _, existing := range regs {
			if existing == r {
				return true
			}
		}
		return false
	}
	for _, alias := range tri.OverlapSet(r) {
		for _, existing := range regs {
			if existing == alias {
				return true
			}
		}
	}
	return false
}

func (ro *registerOperands) collect(op MachineOperand, tri TargetRegisterInfo, isVirt bool) {
	r := op.RegisterID()
	if op.Reads() {
		if !containsAliasAware(ro.Uses, r, tri, isVirt) {
			ro.Uses = append(ro.Uses, r)
		}
	}
	if op.IsDef() {
		if op.IsDead() {
			if !containsAliasAware(ro.DeadDefs, r, tri, isVirt) {
				ro.DeadDefs = append(ro.DeadDefs, r)
			}
		} else if !containsAliasAware(ro.Defs, r, tri, isVirt) {
			ro.Defs = append(ro.Defs, r)
		}
	}
}

// collectOperands partitions one instruction's register operands into
// physical and virtual registerOperands, deduplicating with alias
// awareness for physical registers, then purges any physical dead-def
// that also aliases a live def so a register that is both live-defined
// and dead-defined in the same instruction is never double-charged.
func collectOperands(instr MachineInstr, tri TargetRegisterInfo, mri MachineRegisterInfo, rci RegisterClassInfo) (phys, virt registerOperands) {
	for _, op := range instr.Operands() {
		if !op.IsRegister() {
			continue
		}
		r := op.RegisterID()
		if r == 0 {
			continue
		}
		if mri.IsVirtual(r) {
			virt.collect(op, tri, true)
		} else if rci.IsAllocatable(r) {
			phys.collect(op, tri, false)
		}
	}

	kept := phys.DeadDefs[:0]
	for _, r := range phys.DeadDefs {
		if !containsAliasAware(phys.Defs, r, tri, false) {
			kept = append(kept, r)
		}
	}
	phys.DeadDefs = kept
	return phys, virt
}
