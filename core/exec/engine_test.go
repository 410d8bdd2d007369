package exec

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shipshell/shipshell/core/shell"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	state, err := shell.New(
		shell.WithCwd(t.TempDir()),
		shell.WithEnviron([]string{"PATH=" + DefaultPath, "HOME=" + t.TempDir()}),
	)
	require.NoError(t, err)
	return New(state)
}

func TestRunCommandCaptured(t *testing.T) {
	e := newTestEngine(t)

	res, err := e.RunCaptured(Prog("echo").Command("hello", "world"))
	require.NoError(t, err)

	assert.True(t, res.Success())
	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, "hello world\n", string(res.Stdout))
	assert.Empty(t, res.Stderr)
}

func TestRunCommandPassthrough(t *testing.T) {
	e := newTestEngine(t)
	var out bytes.Buffer
	e.Stdout = &out

	res, err := e.Run(Prog("echo").Command("hi"))
	require.NoError(t, err)

	assert.True(t, res.Success())
	assert.Nil(t, res.Stdout, "passthrough results carry no captured output")
	assert.Equal(t, "hi\n", out.String())
}

func TestRunProgramPromotion(t *testing.T) {
	e := newTestEngine(t)

	// A bare Program runs as a zero-argument command.
	res, err := e.RunCaptured(Prog("true"))
	require.NoError(t, err)
	assert.True(t, res.Success())
}

func TestNonZeroExitIsData(t *testing.T) {
	e := newTestEngine(t)

	res, err := e.RunCaptured(Prog("false").Command())
	require.NoError(t, err, "a failing process is a result, not an error")
	assert.False(t, res.Success())
	assert.Equal(t, 1, res.ExitCode)
	assert.Zero(t, res.Signal)
}

func TestRunResolutionError(t *testing.T) {
	e := newTestEngine(t)

	res, err := e.Run(Prog("shipshell-no-such-program").Command())
	assert.Nil(t, res)

	var resErr *ResolutionError
	require.ErrorAs(t, err, &resErr)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRunRespectsStatePath(t *testing.T) {
	e := newTestEngine(t)
	e.State.Setenv("PATH", t.TempDir())

	_, err := e.Run(Prog("echo").Command("hi"))
	assert.ErrorIs(t, err, ErrNotFound, "resolution reads PATH at invocation time")
}

func TestRunUsesStateEnv(t *testing.T) {
	e := newTestEngine(t)
	e.State.Setenv("GREETING", "ahoy")

	res, err := e.RunCaptured(Prog("printenv").Command("GREETING"))
	require.NoError(t, err)
	assert.Equal(t, "ahoy\n", string(res.Stdout))
}

func TestRunUsesStateCwd(t *testing.T) {
	e := newTestEngine(t)
	dir := t.TempDir()
	require.NoError(t, e.State.Chdir(dir))

	res, err := e.RunCaptured(Prog("pwd").Command())
	require.NoError(t, err)
	// pwd is a builtin here; it reports the shell state's directory.
	assert.Equal(t, dir+"\n", string(res.Stdout))
}

func TestRunRelativeProgramInSessionCwd(t *testing.T) {
	// The process working directory never changes; only the session's
	// does. A relative name must still resolve and run there.
	e := newTestEngine(t)
	dir := t.TempDir()
	script := filepath.Join(dir, "tool")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\necho ran\n"), 0755))
	require.NoError(t, e.State.Chdir(dir))

	res, err := e.RunCaptured(Prog("./tool").Command())
	require.NoError(t, err)
	assert.True(t, res.Success())
	assert.Equal(t, "ran\n", string(res.Stdout))
}

func TestPipelineCaptured(t *testing.T) {
	e := newTestEngine(t)

	p, err := Pipe(
		Prog("echo").Command("one two three"),
		Prog("tr").Command(" ", "\n"),
		Prog("wc").Command("-l"),
	)
	require.NoError(t, err)

	res, err := e.RunCaptured(p)
	require.NoError(t, err)
	assert.True(t, res.Success())
	assert.Equal(t, "3", strings.TrimSpace(string(res.Stdout)))
}

func TestPipelineLargeStream(t *testing.T) {
	// Far more data than a pipe buffer holds; completes only because
	// every stage runs concurrently.
	e := newTestEngine(t)

	p, err := Pipe(
		Prog("seq").Command("1", "200000"),
		Prog("tail").Command("-n", "1"),
	)
	require.NoError(t, err)

	res, err := e.RunCaptured(p)
	require.NoError(t, err)
	assert.Equal(t, "200000", strings.TrimSpace(string(res.Stdout)))
}

func TestPipelineCaptureScope(t *testing.T) {
	// Capture takes the final stage's streams only; upstream stderr
	// still reaches the engine's passthrough stderr.
	e := newTestEngine(t)
	var passthrough bytes.Buffer
	e.Stderr = &passthrough

	p, err := Pipe(
		Prog("sh").Command("-c", "echo upstream >&2; echo data"),
		Prog("sh").Command("-c", "cat >/dev/null; echo final >&2; echo out"),
	)
	require.NoError(t, err)

	res, err := e.RunCaptured(p)
	require.NoError(t, err)
	assert.Equal(t, "out\n", string(res.Stdout))
	assert.Equal(t, "final\n", string(res.Stderr))
	assert.Equal(t, "upstream\n", passthrough.String())
}

func TestPipelineStatusPolicies(t *testing.T) {
	p, err := Pipe(Prog("false").Command(), Prog("true").Command())
	require.NoError(t, err)

	t.Run("last stage", func(t *testing.T) {
		e := newTestEngine(t)
		res, err := e.RunCaptured(p)
		require.NoError(t, err)
		assert.Equal(t, 0, res.ExitCode)
	})

	t.Run("first failure", func(t *testing.T) {
		e := newTestEngine(t)
		e.StatusPolicy = FirstFailure
		res, err := e.RunCaptured(p)
		require.NoError(t, err)
		assert.Equal(t, 1, res.ExitCode)
	})
}

func TestPipelineResolutionFailsBeforeSpawn(t *testing.T) {
	e := newTestEngine(t)

	p, err := Pipe(
		Prog("echo").Command("hi"),
		Prog("shipshell-no-such-program").Command(),
	)
	require.NoError(t, err)

	res, err := e.Run(p)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPipelineSpawnUnwind(t *testing.T) {
	// A script with a missing interpreter resolves fine but fails to
	// spawn. The already-started upstream stage must be reaped.
	e := newTestEngine(t)
	bin := t.TempDir()
	broken := filepath.Join(bin, "broken")
	require.NoError(t, os.WriteFile(broken, []byte("#!/no/such/interp\n"), 0755))
	e.State.Setenv("PATH", bin+string(os.PathListSeparator)+DefaultPath)

	p, err := Pipe(
		Prog("echo").Command("hi"),
		Prog("broken").Command(),
	)
	require.NoError(t, err)

	res, err := e.Run(p)
	assert.Nil(t, res)

	var spawnErr *SpawnError
	require.ErrorAs(t, err, &spawnErr)
	assert.Equal(t, broken, spawnErr.Path)
}

func TestSubshellIsolation(t *testing.T) {
	e := newTestEngine(t)
	home := e.State.Getwd()
	inner := t.TempDir()

	res, err := e.RunCaptured(Sub(Prog("cd").Command(inner)))
	require.NoError(t, err)
	assert.True(t, res.Success())
	assert.Equal(t, home, e.State.Getwd(), "subshell directory change must not escape")
}

func TestSubshellRestoresOnFailure(t *testing.T) {
	e := newTestEngine(t)
	home := e.State.Getwd()

	res, err := e.RunCaptured(Sub(Prog("cd").Command("/no/such/dir")))
	require.NoError(t, err)
	assert.False(t, res.Success())
	assert.Equal(t, home, e.State.Getwd())
}

func TestSubshellRestoresOnError(t *testing.T) {
	e := newTestEngine(t)
	e.State.Setenv("MARKER", "before")

	_, err := e.Run(Sub(Prog("shipshell-no-such-program").Command()))
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "before", e.State.Getenv("MARKER"))
}

func TestSignalDeath(t *testing.T) {
	e := newTestEngine(t)

	res, err := e.RunCaptured(Prog("sh").Command("-c", "kill -TERM $$"))
	require.NoError(t, err)
	assert.Equal(t, syscall.SIGTERM, res.Signal)
	assert.Equal(t, 128+int(syscall.SIGTERM), res.ExitCode)
}

func TestBuiltinWhich(t *testing.T) {
	e := newTestEngine(t)

	res, err := e.RunCaptured(Prog("which").Command("sh"))
	require.NoError(t, err)
	assert.True(t, res.Success())
	assert.Contains(t, string(res.Stdout), "sh")

	res, err = e.RunCaptured(Prog("which").Command("shipshell-no-such-program"))
	require.NoError(t, err)
	assert.Equal(t, 1, res.ExitCode)
}
