package interp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.starlark.net/syntax"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want EvalContext
	}{
		{"bare expression", `prog("ls")`, ContextInteractive},
		{"call expression", `prog("ls")("-la")()`, ContextInteractive},
		{"name reference", `x`, ContextInteractive},
		{"assignment", `x = prog("ls")`, ContextAssignment},
		{"augmented assignment", `x += 1`, ContextAssignment},
		{"subscript assignment", `env["K"] = "v"`, ContextAssignment},
		{"multiple statements", "x = 1\nx\n", ContextNested},
		{"for loop", "for i in range(3):\n    i\n", ContextNested},
		{"function definition", "def f():\n    pass\n", ContextNested},
		{"if statement", "if True:\n    x = 1\n", ContextNested},
	}

	opts := &syntax.FileOptions{TopLevelControl: true, GlobalReassign: true}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f, err := opts.Parse("<test>", tc.src, 0)
			require.NoError(t, err)
			assert.Equal(t, tc.want, Classify(f))
		})
	}
}

func TestEvalContextString(t *testing.T) {
	assert.Equal(t, "interactive", ContextInteractive.String())
	assert.Equal(t, "assignment", ContextAssignment.String())
	assert.Equal(t, "nested", ContextNested.String())
}

func TestShouldAutoRun(t *testing.T) {
	in, _ := newTestInterp(t)
	runnable := &programValue{in: in, prog: nil}

	assert.True(t, ShouldAutoRun(ContextInteractive, runnable))
	assert.False(t, ShouldAutoRun(ContextAssignment, runnable))
	assert.False(t, ShouldAutoRun(ContextNested, runnable))
	assert.False(t, ShouldAutoRun(ContextInteractive, &resultValue{}))
}
