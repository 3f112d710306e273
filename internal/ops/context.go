// Package ops implements the pull-mode operator pipeline: the tree of
// operators (full scan, primary-key scan, insert, delete, update, group,
// sort, join, aggregate) that executes a logical plan against a table.
package ops

import (
	"fmt"
	"io"
)

// Context is the pipeline context threaded through every Execute call: a
// coarse cancellation flag operators check between chunks, and an optional
// diagnostic writer (io.Discard by default) for non-fatal operational
// logging from internal/ops; internal/table takes no writer. Library code stays
// silent otherwise — see the ambient logging notes in the root design
// document.
type Context struct {
	Cancelled bool
	Out       io.Writer
}

// NewContext returns a Context with diagnostics discarded.
func NewContext() *Context {
	return &Context{Out: io.Discard}
}

// logf writes a diagnostic line if ctx.Out is set to something other than
// io.Discard; operators call this instead of the log package directly so
// library code never writes to a process-global logger.
func (c *Context) logf(format string, args ...any) {
	if c == nil || c.Out == nil {
		return
	}
	_, _ = io.WriteString(c.Out, fmt.Sprintf(format, args...)+"\n")
}
