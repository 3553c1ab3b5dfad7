package emitter

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Register mnemonics used by the generated code. Expression evaluation is
// stack-disciplined: T0 and T1 are the only scratch registers, V0 carries
// return values and syscall codes, A0 carries syscall arguments.
const (
	FP   = "$fp"
	SP   = "$sp"
	RA   = "$ra"
	V0   = "$v0"
	A0   = "$a0"
	T0   = "$t0"
	T1   = "$t1"
	ZERO = "$zero"

	// Booleans are represented as the integers 1 and 0.
	TRUE  = "1"
	FALSE = "0"
)

type section int

const (
	sectionNone section = iota
	sectionData
	sectionText
)

// Emitter writes MIPS assembly text. It tracks the current section,
// interns string literals into .data, and hands out fresh labels from a
// counter seeded at zero so output is byte-identical across runs.
type Emitter struct {
	w          *bufio.Writer
	section    section
	labelCount int
	strings    map[string]string // literal contents -> data label
}

func New(w io.Writer) *Emitter {
	return &Emitter{
		w:       bufio.NewWriter(w),
		strings: make(map[string]string),
	}
}

// Flush forces buffered output to the underlying writer.
func (e *Emitter) Flush() error {
	return e.w.Flush()
}

// NextLabel returns a fresh label, unique for this compilation.
func (e *Emitter) NextLabel() string {
	label := ".L" + strconv.Itoa(e.labelCount)
	e.labelCount++
	return label
}

func (e *Emitter) data() {
	if e.section != sectionData {
		fmt.Fprintln(e.w, "\t.data")
		e.section = sectionData
	}
}

func (e *Emitter) text() {
	if e.section != sectionText {
		fmt.Fprintln(e.w, "\t.text")
		e.section = sectionText
	}
}

// Generate emits one instruction: opcode followed by comma-separated
// operands.
func (e *Emitter) Generate(opcode string, args ...string) {
	fmt.Fprintf(e.w, "\t\t%s", opcode)
	if len(args) > 0 {
		fmt.Fprintf(e.w, "\t%s", strings.Join(args, ", "))
	}
	fmt.Fprintln(e.w)
}

// GenerateWithComment is Generate with a trailing end-of-line comment.
func (e *Emitter) GenerateWithComment(opcode, comment string, args ...string) {
	fmt.Fprintf(e.w, "\t\t%s", opcode)
	if len(args) > 0 {
		fmt.Fprintf(e.w, "\t%s", strings.Join(args, ", "))
	}
	fmt.Fprintf(e.w, "\t\t# %s\n", comment)
}

// GenerateIndexed emits opcode reg, offset(base).
func (e *Emitter) GenerateIndexed(opcode, reg, base string, offset int, comment ...string) {
	fmt.Fprintf(e.w, "\t\t%s\t%s, %d(%s)", opcode, reg, offset, base)
	if len(comment) > 0 {
		fmt.Fprintf(e.w, "\t\t# %s", comment[0])
	}
	fmt.Fprintln(e.w)
}

// GenLabel emits label: on a line of its own.
func (e *Emitter) GenLabel(label string, comment ...string) {
	fmt.Fprintf(e.w, "%s:", label)
	if len(comment) > 0 {
		fmt.Fprintf(e.w, "\t\t# %s", comment[0])
	}
	fmt.Fprintln(e.w)
}

// GenPush pushes the value in reg onto the runtime stack.
func (e *Emitter) GenPush(reg string) {
	e.GenerateIndexed("sw", reg, SP, 0, "PUSH")
	e.Generate("subu", SP, SP, "4")
}

// GenPop pops the top of the runtime stack into reg.
func (e *Emitter) GenPop(reg string) {
	e.GenerateIndexed("lw", reg, SP, 4, "POP")
	e.Generate("addu", SP, SP, "4")
}

// GenPushInt pushes an integer literal.
func (e *Emitter) GenPushInt(v int) {
	e.text()
	e.Generate("li", T0, strconv.Itoa(v))
	e.GenPush(T0)
}

// GenPushBool pushes a boolean literal, encoded as 1 or 0.
func (e *Emitter) GenPushBool(v bool) {
	e.text()
	if v {
		e.Generate("li", T0, TRUE)
	} else {
		e.Generate("li", T0, FALSE)
	}
	e.GenPush(T0)
}

// GenPushString interns the literal into .data (one label per distinct
// contents) and pushes its address.
func (e *Emitter) GenPushString(contents string) {
	label := e.StringLabel(contents)
	e.text()
	e.Generate("la", T0, label)
	e.GenPush(T0)
}

// StringLabel returns the .data label holding contents as a null
// terminated ASCII string, emitting the definition on first use.
func (e *Emitter) StringLabel(contents string) string {
	if label, ok := e.strings[contents]; ok {
		return label
	}
	label := e.NextLabel()
	e.strings[contents] = label
	e.data()
	fmt.Fprintf(e.w, "%s:\t.asciiz %q\n", label, contents)
	return label
}

// GenData reserves one word in .data for the global variable name,
// labeled _name.
func (e *Emitter) GenData(name string) {
	e.data()
	fmt.Fprintln(e.w, "\t.align 2")
	fmt.Fprintf(e.w, "_%s:\t.space 4\n", name)
}

// GenFuncPreamble emits the function's entry labels. Every function gets
// _name; main is additionally exported under the bare label main.
func (e *Emitter) GenFuncPreamble(name string) {
	e.text()
	if name == "main" {
		fmt.Fprintln(e.w, "\t.globl main")
		e.GenLabel("main")
	}
	e.GenLabel("_" + name)
}

// GenFuncPrologue saves the return address and caller's frame pointer,
// establishes the new frame pointer, and allocates space for locals.
func (e *Emitter) GenFuncPrologue(paramSize, localSize int) {
	e.GenPush(RA)
	e.GenPush(FP)
	e.Generate("addu", FP, SP, strconv.Itoa(paramSize+8))
	e.Generate("subu", SP, SP, strconv.Itoa(localSize))
}

// GenFuncEpilogue emits the shared exit sequence jumped to by every
// return. main exits through syscall 10 instead of jr.
func (e *Emitter) GenFuncEpilogue(name, epilogueLabel string, paramSize int) {
	e.GenLabel(epilogueLabel)
	e.GenerateIndexed("lw", RA, FP, -paramSize, "restore return address")
	e.GenerateWithComment("move", "save control link", T0, FP)
	e.GenerateIndexed("lw", FP, FP, -paramSize-4, "restore frame pointer")
	e.GenerateWithComment("move", "restore stack pointer", SP, T0)
	if name == "main" {
		e.Generate("li", V0, "10")
		e.GenerateWithComment("syscall", "exit")
	} else {
		e.GenerateWithComment("jr", "return", RA)
	}
}

// GenFlipOneBit toggles the low bit of reg: logical not on a 0/1 value.
func (e *Emitter) GenFlipOneBit(reg string) {
	e.Generate("xor", reg, reg, "1")
}

// Syscall helpers. Booleans read and write as integers.

func (e *Emitter) GenReadInt() {
	e.Generate("li", V0, "5")
	e.Generate("syscall")
}

func (e *Emitter) GenReadBool() {
	e.GenReadInt()
}

func (e *Emitter) GenWriteInt() {
	e.Generate("li", V0, "1")
	e.Generate("syscall")
}

func (e *Emitter) GenWriteBool() {
	e.GenWriteInt()
}

func (e *Emitter) GenWriteString() {
	e.Generate("li", V0, "4")
	e.Generate("syscall")
}
