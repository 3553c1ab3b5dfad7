package report

import (
	"bytes"
	"testing"

	"github.com/nalgeon/be"
)

func TestFatalWritesOneLinePerError(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf)

	be.True(t, !r.HasErrors())

	r.Fatal(3, 7, "Undeclared identifier")
	r.Fatal(0, 0, "No main function")

	be.True(t, r.HasErrors())
	be.Equal(t, "3:7: Undeclared identifier\n0:0: No main function\n", buf.String())
	be.Equal(t, 2, len(r.Diagnostics()))
	be.Equal(t, Diagnostic{Line: 3, Char: 7, Message: "Undeclared identifier"}, r.Diagnostics()[0])
}
