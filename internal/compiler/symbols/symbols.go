package symbols

import (
	"errors"

	"github.com/arnavsurve/gibberish/internal/compiler/types"
)

// Failure kinds for symbol table operations. ErrEmptyScope and a duplicate
// at a level already checked empty indicate compiler bugs; callers surface
// them as internal errors rather than user diagnostics.
var (
	ErrEmptyScope  = errors.New("symbol table has no scopes")
	ErrDuplicate   = errors.New("name already declared at this scope")
	ErrIllegalName = errors.New("empty symbol name")
)

type Kind int

const (
	KindVar Kind = iota
	KindFn
	KindStructDef
)

type Storage int

const (
	Global Storage = iota
	Local
	Formal
)

// GlobalOffset is the sentinel stored in the offset field of global
// symbols. The code generator addresses globals by label and never reads
// it; the value is kept for parity with frame-resident symbols.
const GlobalOffset = 1

// ID is a handle into an Arena. The zero value None means "unresolved";
// identifier nodes hold an ID instead of a pointer so that symbol layout
// stays deterministic and the AST carries no reference cycles.
type ID int

const None ID = 0

// Symbol is the record attached to every declared name.
type Symbol struct {
	Kind    Kind
	Type    types.Type
	Storage Storage
	Offset  int // byte displacement from $fp; GlobalOffset for globals

	// Function symbols only.
	ParamTypes []types.Type
	NumParams  int
	ParamSize  int
	LocalSize  int

	// Struct definition symbols only: the field scope.
	Fields *SymTable
}

func (s *Symbol) IsGlobal() bool { return s.Storage == Global }

// Arena owns every Symbol created during a compilation and hands out
// integer handles. Handles start at 1 so that None stays distinct.
type Arena struct {
	syms []*Symbol
}

func NewArena() *Arena {
	return &Arena{}
}

// New copies sym into the arena and returns its handle.
func (a *Arena) New(sym Symbol) ID {
	a.syms = append(a.syms, &sym)
	return ID(len(a.syms))
}

// Get returns the symbol for id, or nil for None.
func (a *Arena) Get(id ID) *Symbol {
	if id == None {
		return nil
	}
	return a.syms[id-1]
}

func (a *Arena) Len() int { return len(a.syms) }

// scope is one level of the symbol table: a mapping from names to handles.
type scope struct {
	names map[string]ID
}

func newScope() *scope {
	return &scope{names: make(map[string]ID)}
}

// SymTable is the scope stack threaded through name analysis. It also
// carries the two ambient fields the pass needs: whether processing is
// currently outside any function body, and the frame allocation cursor.
type SymTable struct {
	scopes      []*scope // scopes[len-1] is the innermost
	globalScope bool
	offset      int
}

// NewSymTable returns a table with one (outermost) scope open.
func NewSymTable() *SymTable {
	return &SymTable{
		scopes:      []*scope{newScope()},
		globalScope: true,
	}
}

// AddScope opens a new innermost scope.
func (t *SymTable) AddScope() {
	t.scopes = append(t.scopes, newScope())
}

// RemoveScope closes the innermost scope. Popping an empty table is a
// compiler bug, reported as ErrEmptyScope.
func (t *SymTable) RemoveScope() error {
	if len(t.scopes) == 0 {
		return ErrEmptyScope
	}
	t.scopes = t.scopes[:len(t.scopes)-1]
	return nil
}

// AddDecl binds name to id in the innermost scope.
func (t *SymTable) AddDecl(name string, id ID) error {
	if name == "" {
		return ErrIllegalName
	}
	if len(t.scopes) == 0 {
		return ErrEmptyScope
	}
	top := t.scopes[len(t.scopes)-1]
	if _, exists := top.names[name]; exists {
		return ErrDuplicate
	}
	top.names[name] = id
	return nil
}

// LookupLocal consults only the innermost scope. A miss is (None, nil);
// only an empty table is an error.
func (t *SymTable) LookupLocal(name string) (ID, error) {
	if len(t.scopes) == 0 {
		return None, ErrEmptyScope
	}
	if id, ok := t.scopes[len(t.scopes)-1].names[name]; ok {
		return id, nil
	}
	return None, nil
}

// LookupGlobal scans from the innermost scope outward.
func (t *SymTable) LookupGlobal(name string) (ID, error) {
	if len(t.scopes) == 0 {
		return None, ErrEmptyScope
	}
	for i := len(t.scopes) - 1; i >= 0; i-- {
		if id, ok := t.scopes[i].names[name]; ok {
			return id, nil
		}
	}
	return None, nil
}

func (t *SymTable) GlobalScope() bool      { return t.globalScope }
func (t *SymTable) SetGlobalScope(on bool) { t.globalScope = on }
func (t *SymTable) Offset() int            { return t.offset }
func (t *SymTable) SetOffset(offset int)   { t.offset = offset }
