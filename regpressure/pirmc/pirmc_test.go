package pirmc_test

import (
	"testing"

	"github.com/padeir0/pir"
	pirc "github.com/padeir0/pir/class"
	T "github.com/padeir0/pir/types"
	"github.com/stretchr/testify/require"

	"mpc/regpressure"
	"mpc/regpressure/pirmc"
)

func i64() *T.Type { return &T.Type{Basic: T.I64} }

func temp(id int64) pir.Operand {
	return pir.Operand{Class: pirc.Temp, Type: i64(), ID: id}
}

// buildProc linearizes v1 := v0; use(v1) into a single straight-line
// pir.BasicBlock.
func buildProc() *pir.Procedure {
	bb := &pir.BasicBlock{
		Label: "entry",
		Code: []pir.Instr{
			{Operands: []pir.Operand{temp(0)}, Destination: []pir.Operand{temp(1)}},
			{Operands: []pir.Operand{temp(1)}},
		},
	}
	return &pir.Procedure{Label: "proc", AllBlocks: []*pir.BasicBlock{bb}}
}

func TestPirmcDrivesTracker(t *testing.T) {
	proc := buildProc()
	fn := pirmc.NewFunction(proc)
	blk := pirmc.NewBlock(proc.AllBlocks[0])

	tr := regpressure.NewTracker(false)
	tr.Init(fn, fn, nil, blk, blk.Begin())

	require.True(t, tr.Advance())
	require.Equal(t, []int{2}, tr.CurrSetPressure(), "v0 is discovered live-in on its read and v1 goes live on its def, in the same instruction")

	require.True(t, tr.Advance())
	require.Equal(t, []int{2}, tr.CurrSetPressure(), "without live intervals the tracker cannot tell this use of v1 is its last, so curr does not drop")

	require.False(t, tr.Advance())
	require.Contains(t, tr.State().LiveInRegs, regpressure.RegisterID(1), "v0 (RegisterID 1) has no def in this block, so it must be discovered live-in")
	require.Contains(t, tr.State().LiveOutRegs, regpressure.RegisterID(2), "v1 (RegisterID 2) is never recognized as killed without interval data, so it is discovered live-out")
}

func TestPirmcSkipsNonTempOperands(t *testing.T) {
	lit := pir.Operand{Class: pirc.Lit, Type: i64()}
	bb := &pir.BasicBlock{
		Label: "entry",
		Code: []pir.Instr{
			{Operands: []pir.Operand{lit}, Destination: []pir.Operand{temp(0)}},
		},
	}
	proc := &pir.Procedure{Label: "p", AllBlocks: []*pir.BasicBlock{bb}}
	fn := pirmc.NewFunction(proc)
	blk := pirmc.NewBlock(bb)

	tr := regpressure.NewTracker(false)
	tr.Init(fn, fn, nil, blk, blk.Begin())

	require.True(t, tr.Advance())
	require.Equal(t, []int{1}, tr.CurrSetPressure(), "the literal operand must not be treated as a register")
}
