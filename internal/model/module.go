package model

// Module is the root of the canonical tree.
type Module struct {
	Name  string
	Files []*SourceFile

	arena  []Declaration // index 0 unused
	byName map[string]int
	qnames map[int]string
}

// SourceFile holds the top-level declarations found in one input file.
type SourceFile struct {
	Path         string
	Declarations []Declaration
}

// NewModule creates an empty module.
func NewModule(name string) *Module {
	return &Module{Name: name}
}

// File returns the source file with the given path, creating and appending
// it when missing.
func (m *Module) File(path string) *SourceFile {
	for _, f := range m.Files {
		if f.Path == path {
			return f
		}
	}
	f := &SourceFile{Path: path}
	m.Files = append(m.Files, f)
	return f
}

// Index assigns arena IDs, parent links and owning files, and rebuilds the
// qualified-name index. IDs follow a pre-order walk, so the numbering is a
// pure function of the tree shape. When several declarations share a
// qualified name (synthesized overloads) the first one owns it.
func (m *Module) Index() {
	m.arena = []Declaration{nil}
	m.byName = make(map[string]int)
	m.qnames = make(map[int]string)
	for _, f := range m.Files {
		for _, d := range f.Declarations {
			m.index(d, 0, "", f.Path)
		}
	}
}

func (m *Module) index(d Declaration, parent int, prefix, file string) {
	b := d.Common()
	b.ID = len(m.arena)
	b.ParentID = parent
	b.File = file
	m.arena = append(m.arena, d)

	qname := b.Name
	if prefix != "" && b.Name != "" {
		qname = prefix + "." + b.Name
	} else if b.Name == "" {
		qname = prefix
	}
	m.qnames[b.ID] = qname
	if b.Name != "" {
		if _, ok := m.byName[qname]; !ok {
			m.byName[qname] = b.ID
		}
	}
	if c, ok := d.(Container); ok {
		for _, mem := range *c.MemberList() {
			m.index(mem, b.ID, qname, file)
		}
	}
}

// Decl returns the declaration with the given arena ID, or nil.
func (m *Module) Decl(id int) Declaration {
	if id <= 0 || id >= len(m.arena) {
		return nil
	}
	return m.arena[id]
}

// Lookup returns the declaration registered under a qualified name.
func (m *Module) Lookup(qname string) (Declaration, bool) {
	id, ok := m.byName[qname]
	if !ok {
		return nil, false
	}
	return m.arena[id], true
}

// QualifiedName returns the dotted name of the declaration with the given ID.
func (m *Module) QualifiedName(id int) string {
	return m.qnames[id]
}

// Parent returns d's enclosing declaration, or nil at top level.
func (m *Module) Parent(d Declaration) Declaration {
	return m.Decl(d.Common().ParentID)
}

// Target returns the declaration a Declared type is bound to, or nil.
func (m *Module) Target(t *DeclaredType) Declaration {
	return m.Decl(t.Target)
}

// Len returns the number of indexed declarations.
func (m *Module) Len() int {
	if len(m.arena) == 0 {
		return 0
	}
	return len(m.arena) - 1
}

// Declarations returns every indexed declaration in arena order.
func (m *Module) Declarations() []Declaration {
	if len(m.arena) == 0 {
		return nil
	}
	return m.arena[1:]
}
