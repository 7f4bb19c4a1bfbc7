package scripts

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/devscripts/devscripts/core/config"
)

// signalExitBase is added to the signal number of a killed child, the same
// way shells report $?.
const signalExitBase = 128

// Outcome is how a script process terminated.
type Outcome struct {
	// Script is the path that was executed.
	Script string
	// Code is the exit status if the process exited normally.
	Code int
	// Signaled is set if the process was terminated by Signal.
	Signaled bool
	Signal   syscall.Signal
}

// ExitCode is the status to report for the script: its own exit code, or
// 128 + the signal number if it was killed.
func (o Outcome) ExitCode() int {
	if o.Signaled {
		return signalExitBase + int(o.Signal)
	}
	return o.Code
}

func (o Outcome) String() string {
	if o.Signaled {
		return fmt.Sprintf("signal: %v", o.Signal)
	}
	return fmt.Sprintf("exit status %d", o.Code)
}

// Runner spawns scripts found by its Locator.
type Runner struct {
	Locator *Locator

	// Stdin, Stdout and Stderr are passed to the child, nil means the
	// corresponding stream of this process.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Env is the child's environment, nil inherits this process's.
	Env []string

	// IgnoreInterrupts keeps this process alive on SIGINT while the child
	// runs so the terminal's interrupt only ends the child.
	IgnoreInterrupts bool
}

// NewRunner creates a Runner attached to the standard streams of this
// process.
func NewRunner(locator *Locator) *Runner {
	return &Runner{
		Locator: locator,
		Stdin:   os.Stdin,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
	}
}

// Run the script called name with args. Arguments reach the script
// verbatim, no shell is involved. Run blocks until the script exits; there
// is no timeout.
func (r *Runner) Run(name string, cfg *config.Configuration, args []string) (Outcome, error) {
	script, found, err := r.Locator.FindScript(name, cfg)
	if err != nil {
		return Outcome{}, ioFailure(name, err)
	}
	if !found {
		return Outcome{}, notFound(name)
	}

	cmd := exec.Command(script, args...)
	cmd.Stdin = r.stdin()
	cmd.Stdout = r.stdout()
	cmd.Stderr = r.stderr()
	cmd.Env = r.Env

	if r.IgnoreInterrupts {
		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, os.Interrupt)
		defer signal.Stop(sigs)
	}

	r.Locator.Log.Debug().Str("script", script).Strs("args", args).Msg("starting script")

	if err := cmd.Start(); err != nil {
		return Outcome{}, ioFailure(name, err)
	}

	err = cmd.Wait()
	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		return Outcome{}, ioFailure(name, err)
	}

	outcome := outcomeOf(script, cmd.ProcessState)
	r.Locator.Log.Debug().Str("script", script).Stringer("status", outcome).Msg("script finished")
	return outcome, nil
}

func outcomeOf(script string, state *os.ProcessState) Outcome {
	outcome := Outcome{Script: script, Code: state.ExitCode()}

	if status, ok := state.Sys().(syscall.WaitStatus); ok && status.Signaled() {
		outcome.Signaled = true
		outcome.Signal = status.Signal()
	}

	return outcome
}

func (r *Runner) stdin() io.Reader {
	if r.Stdin == nil {
		return os.Stdin
	}
	return r.Stdin
}

func (r *Runner) stdout() io.Writer {
	if r.Stdout == nil {
		return os.Stdout
	}
	return r.Stdout
}

func (r *Runner) stderr() io.Writer {
	if r.Stderr == nil {
		return os.Stderr
	}
	return r.Stderr
}

// Run a script from the host filesystem with the standard streams of this
// process; see Runner.Run.
func Run(name string, cfg *config.Configuration, args []string) (Outcome, error) {
	return NewRunner(defaultLocator).Run(name, cfg, args)
}
