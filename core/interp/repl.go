package interp

import (
	"errors"
	"fmt"
	"io"

	"github.com/abiosoft/readline"
	"github.com/fatih/color"

	"go.starlark.net/starlark"
)

var errColor = color.New(color.FgRed)

// REPL runs the interactive read-evaluate loop until EOF. exit() and
// quit() terminate the process directly.
func (in *Interp) REPL() error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:      in.cfg.Prompt,
		HistoryFile: in.cfg.HistoryPath(),
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	if in.cfg.Motd != "" {
		fmt.Fprint(in.stdout, in.cfg.Motd)
	}

	for {
		if err := in.rep(rl); err == io.EOF {
			fmt.Fprintln(in.stdout)
			return nil
		}
	}
}

// rep reads a single compound statement, possibly spanning several
// continuation lines, and executes it. Raised errors print a diagnostic
// and control returns to the prompt; only EOF is reported to the
// caller.
func (in *Interp) rep(rl *readline.Instance) error {
	eof := false
	interrupted := false
	first := true

	rl.SetPrompt(in.cfg.Prompt)
	readLine := func() ([]byte, error) {
		if !first {
			rl.SetPrompt(in.cfg.ContinuationPrompt)
		}
		first = false

		line, err := rl.Readline()
		switch {
		case err == readline.ErrInterrupt:
			interrupted = true
			return nil, err
		case err == io.EOF:
			eof = true
			return nil, err
		case err != nil:
			return nil, err
		}
		return []byte(line + "\n"), nil
	}

	f, err := in.opts.ParseCompoundStmt("<stdin>", readLine)
	if eof {
		return io.EOF
	}
	if interrupted {
		fmt.Fprintln(in.stdout, "^C")
		return nil
	}
	if err != nil {
		in.PrintError(err)
		return nil
	}

	if err := in.ExecChunk(f); err != nil {
		in.PrintError(err)
	}
	return nil
}

// PrintError prints a diagnostic for a raised error without terminating
// the session.
func (in *Interp) PrintError(err error) {
	var evalErr *starlark.EvalError
	if errors.As(err, &evalErr) {
		errColor.Fprintln(in.stderr, evalErr.Backtrace())
		return
	}
	errColor.Fprintln(in.stderr, "error:", err.Error())
}
