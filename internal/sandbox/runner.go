package sandbox

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dop251/goja"
)

// DefaultTimeout bounds a single run
const DefaultTimeout = 2 * time.Second

// maxLogLines caps console output kept from one run
const maxLogLines = 200

// Output is what a run printed and returned
type Output struct {
	Logs        []string      `json:"logs"`
	ReturnValue string        `json:"return_value,omitempty"`
	Error       string        `json:"error,omitempty"`
	TimedOut    bool          `json:"timed_out"`
	Duration    time.Duration `json:"duration"`
}

// String renders the output the way the challenge editor shows it
func (o Output) String() string {
	var sb strings.Builder
	for _, l := range o.Logs {
		sb.WriteString(l)
		sb.WriteString("\n")
	}
	switch {
	case o.Error != "":
		sb.WriteString(fmt.Sprintf("Error: %s\n", o.Error))
	case o.ReturnValue != "":
		sb.WriteString(fmt.Sprintf("Return value: %s\n", o.ReturnValue))
	}
	return strings.TrimRight(sb.String(), "\n")
}

// Runner executes JavaScript in an isolated interpreter with no host access
type Runner struct {
	Timeout time.Duration
}

// NewRunner creates a runner; a non-positive timeout means DefaultTimeout
func NewRunner(timeout time.Duration) *Runner {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Runner{Timeout: timeout}
}

// Run executes code in a fresh VM. Script failures are reported in Output.Error;
// the returned error is only set when the run could not start.
func (r *Runner) Run(ctx context.Context, code string) (Output, error) {
	if err := ctx.Err(); err != nil {
		return Output{}, err
	}

	vm := goja.New()
	var (
		mu   sync.Mutex
		logs []string
	)
	console := vm.NewObject()
	if err := console.Set("log", func(call goja.FunctionCall) goja.Value {
		parts := make([]string, len(call.Arguments))
		for i, a := range call.Arguments {
			parts[i] = a.String()
		}
		mu.Lock()
		if len(logs) < maxLogLines {
			logs = append(logs, strings.Join(parts, " "))
		}
		mu.Unlock()
		return goja.Undefined()
	}); err != nil {
		return Output{}, err
	}
	if err := vm.Set("console", console); err != nil {
		return Output{}, err
	}

	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	timer := time.AfterFunc(timeout, func() { vm.Interrupt("timeout") })
	defer timer.Stop()

	stop := context.AfterFunc(ctx, func() { vm.Interrupt("cancelled") })
	defer stop()

	start := time.Now()
	val, err := vm.RunString(code)
	out := Output{Duration: time.Since(start)}

	mu.Lock()
	out.Logs = logs
	mu.Unlock()

	if err != nil {
		var interrupted *goja.InterruptedError
		if errors.As(err, &interrupted) {
			if ctx.Err() != nil {
				return out, ctx.Err()
			}
			out.TimedOut = true
			out.Error = fmt.Sprintf("execution stopped after %s", timeout)
			return out, nil
		}
		out.Error = scriptError(err)
		return out, nil
	}

	if val != nil && !goja.IsUndefined(val) && !goja.IsNull(val) {
		out.ReturnValue = val.String()
	}
	return out, nil
}

// Check parses code without running it
func Check(code string) error {
	if _, err := goja.Compile("challenge.js", code, false); err != nil {
		return errors.New(scriptError(err))
	}
	return nil
}

func scriptError(err error) string {
	var exc *goja.Exception
	if errors.As(err, &exc) {
		return exc.Value().String()
	}
	var syntax *goja.CompilerSyntaxError
	if errors.As(err, &syntax) {
		return syntax.Error()
	}
	return err.Error()
}
