package interp

import (
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shipshell/shipshell/core/exec"
)

func TestValueReprs(t *testing.T) {
	g := goldie.New(
		t,
		goldie.WithFixtureDir(filepath.Join("testdata", "golden")),
		goldie.WithDiffEngine(goldie.ColoredDiff),
		goldie.WithTestNameForDir(true),
	)

	cases := map[string]string{
		"program":          `print(prog("ls"))`,
		"command":          `print(prog("ls")("-l", "-a"))`,
		"pipeline":         `print(pipe(prog("ls")("-la"), prog("wc")("-l")))`,
		"pipeline_op":      `print(prog("echo")("hi") | prog("tr")("a-z", "A-Z") | prog("cat"))`,
		"subshell":         `print(sub(prog("cd")("/tmp")))`,
		"env":              `print(env)`,
		"result":           `print(prog("true")()(capture=True))`,
		"types":            `print(type(prog("ls")), type(prog("ls")()), type(prog("a") | prog("b")), type(sub(prog("a"))))`,
	}

	for tn, src := range cases {
		t.Run(tn, func(t *testing.T) {
			in, out := newTestInterp(t)
			require.NoError(t, in.ExecInput("<test>", src))
			g.Assert(t, tn, out.Bytes())
		})
	}
}

func TestPipeOperatorFlattens(t *testing.T) {
	in, _ := newTestInterp(t)

	require.NoError(t, in.ExecInput("<test>", `p = (prog("a")("1") | prog("b")) | (prog("c") | prog("d")("2"))`))

	p, ok := in.globals["p"].(*pipelineValue)
	require.True(t, ok)
	require.Len(t, p.pipe.Stages, 4)
	assert.Equal(t, "a 1 | b | c | d 2", p.pipe.String())
}

func TestPipeOperatorRejectsSubshell(t *testing.T) {
	in, _ := newTestInterp(t)

	err := in.ExecInput("<test>", `x = sub(prog("a")) | prog("b")`)
	assert.Error(t, err)
}

func TestPipeOperatorRejectsForeignValues(t *testing.T) {
	in, _ := newTestInterp(t)

	err := in.ExecInput("<test>", `x = prog("a") | 42`)
	assert.Error(t, err)
}

func TestProgramCallWantsStrings(t *testing.T) {
	in, _ := newTestInterp(t)

	err := in.ExecInput("<test>", `x = prog("ls")(7)`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "want string")
}

func TestProgEmptyName(t *testing.T) {
	in, _ := newTestInterp(t)

	err := in.ExecInput("<test>", `prog("")`)
	assert.Error(t, err)
}

func TestPipeBuiltinArity(t *testing.T) {
	in, _ := newTestInterp(t)

	err := in.ExecInput("<test>", `pipe(prog("ls"))`)
	assert.Error(t, err)
}

func TestValuesAreImmutable(t *testing.T) {
	in, _ := newTestInterp(t)

	// Building a pipeline from a command leaves the command reusable.
	src := `cmd = prog("echo")("hi")
p = cmd | prog("cat")
q = cmd | prog("wc")("-c")`
	require.NoError(t, in.ExecInput("<test>", src))

	p := in.globals["p"].(*pipelineValue)
	q := in.globals["q"].(*pipelineValue)
	assert.Equal(t, "echo hi | cat", p.pipe.String())
	assert.Equal(t, "echo hi | wc -c", q.pipe.String())

	cmd := in.globals["cmd"].(*commandValue)
	assert.Equal(t, []string{"hi"}, cmd.cmd.Args)
}

func TestAsRunnableKinds(t *testing.T) {
	in, _ := newTestInterp(t)

	require.NoError(t, in.ExecInput("<test>", `x = sub(prog("ls")("-la"))`))
	s := in.globals["x"].(*subshellValue)

	_, ok := s.asRunnable().(*exec.Subshell)
	assert.True(t, ok)
}
