package pipeline

// Context is the per-run execution context handed to every step. The
// interaction mode is fixed at construction and never changes mid-run;
// the warning list is the only mutable part.
type Context struct {
	attended bool
	warnings []string
}

// NewContext creates the run context. attended=false (unattended) is
// the default mode: no step may block on input.
func NewContext(attended bool) *Context {
	return &Context{attended: attended}
}

// Attended reports whether steps may prompt the user.
func (c *Context) Attended() bool {
	return c.attended
}

// AddWarning appends a warning for the end-of-run summary.
func (c *Context) AddWarning(msg string) {
	if msg == "" {
		return
	}
	c.warnings = append(c.warnings, msg)
}

// Warnings returns the accumulated warnings in order.
func (c *Context) Warnings() []string {
	out := make([]string, len(c.warnings))
	copy(out, c.warnings)
	return out
}
