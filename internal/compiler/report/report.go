package report

import (
	"fmt"
	"io"
	"os"
)

// Diagnostic is one user-facing error, positioned at a source line and
// column. Program-level errors use (0, 0).
type Diagnostic struct {
	Line    int
	Char    int
	Message string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%d:%d: %s", d.Line, d.Char, d.Message)
}

// Reporter is the sink for all user diagnostics. It writes one line per
// error, remembers that an error occurred so the driver can gate later
// passes, and retains the diagnostics for inspection. It never panics.
type Reporter struct {
	w     io.Writer
	diags []Diagnostic
}

// New returns a Reporter writing to w; a nil w means standard error.
func New(w io.Writer) *Reporter {
	if w == nil {
		w = os.Stderr
	}
	return &Reporter{w: w}
}

// Fatal records a fatal user error at the given position.
func (r *Reporter) Fatal(line, char int, msg string) {
	d := Diagnostic{Line: line, Char: char, Message: msg}
	r.diags = append(r.diags, d)
	fmt.Fprintln(r.w, d.String())
}

// HasErrors reports whether any fatal diagnostic has been recorded.
func (r *Reporter) HasErrors() bool { return len(r.diags) > 0 }

// Diagnostics returns the recorded diagnostics in report order.
func (r *Reporter) Diagnostics() []Diagnostic { return r.diags }
