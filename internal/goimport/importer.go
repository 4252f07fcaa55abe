// Package goimport builds a type model from Go packages.
//
// Named struct types become classes and named interface types become
// interfaces. A struct's first embedded struct is its superclass; embedded
// interfaces, and every imported interface the struct's pointer type
// satisfies, are its interfaces. Methods declared on a type become its
// methods, struct fields its fields, and a function NewT returning T or *T
// becomes a constructor of T. Unexported members are imported as private.
package goimport

import (
	"fmt"
	"go/types"
	"os"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/tools/go/packages"

	"github.com/funvibe/meditation/internal/logger"
	ts "github.com/funvibe/meditation/internal/typesystem"
)

// Importer loads Go packages relative to a working directory.
type Importer struct {
	dir string
	log *zap.Logger
}

// Option configures an Importer.
type Option func(*Importer)

func WithLogger(l *zap.Logger) Option {
	return func(im *Importer) {
		im.log = logger.OrNop(l)
	}
}

// New creates an importer resolving patterns from dir. An empty dir
// means the current directory.
func New(dir string, opts ...Option) *Importer {
	im := &Importer{dir: dir, log: logger.Nop()}
	for _, opt := range opts {
		opt(im)
	}
	return im
}

// Result lists the types an import declared.
type Result struct {
	Types []*ts.TClass
}

type named struct {
	obj   *types.TypeName
	typ   *types.Named
	class *ts.TClass
}

// Import loads the packages matching patterns and declares their exported
// named struct and interface types in u.
func (im *Importer) Import(u *ts.Universe, patterns ...string) (*Result, error) {
	pkgs, err := im.load(patterns)
	if err != nil {
		return nil, err
	}

	var all []*named
	byType := make(map[*types.TypeName]*named)
	for _, pkg := range pkgs {
		scope := pkg.Types.Scope()
		for _, name := range scope.Names() {
			tn, ok := scope.Lookup(name).(*types.TypeName)
			if !ok || !tn.Exported() || tn.IsAlias() {
				continue
			}
			nt, ok := tn.Type().(*types.Named)
			if !ok || nt.TypeParams().Len() > 0 {
				continue
			}
			switch nt.Underlying().(type) {
			case *types.Struct, *types.Interface:
			default:
				continue
			}
			n := &named{obj: tn, typ: nt}
			all = append(all, n)
			byType[tn] = n
		}
	}

	for _, n := range all {
		_, isIface := n.typ.Underlying().(*types.Interface)
		c, err := u.Declare(n.obj.Name(), isIface)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", n.obj.Pkg().Path(), n.obj.Name(), err)
		}
		n.class = c
	}

	m := &mapper{u: u, byType: byType, log: im.log}
	for _, n := range all {
		if err := m.link(n, all); err != nil {
			return nil, err
		}
	}
	for _, n := range all {
		m.members(n)
	}
	for _, pkg := range pkgs {
		m.constructors(pkg.Types)
	}

	res := &Result{}
	for _, n := range all {
		res.Types = append(res.Types, n.class)
	}
	im.log.Info("imported Go types", zap.Strings("patterns", patterns), zap.Int("types", len(res.Types)))
	return res, nil
}

func (im *Importer) load(patterns []string) ([]*packages.Package, error) {
	cfg := &packages.Config{
		Mode: packages.NeedName |
			packages.NeedTypes |
			packages.NeedTypesInfo |
			packages.NeedSyntax |
			packages.NeedImports |
			packages.NeedDeps,
		Dir: im.dir,
		Env: append(os.Environ(), "GOWORK=off"),
	}
	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("loading packages: %w", err)
	}

	var errs []string
	for _, pkg := range pkgs {
		for _, e := range pkg.Errors {
			errs = append(errs, fmt.Sprintf("%s: %s", pkg.PkgPath, e.Msg))
		}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("package errors:\n  %s", strings.Join(errs, "\n  "))
	}
	if len(pkgs) == 0 {
		return nil, fmt.Errorf("no packages match %s", strings.Join(patterns, " "))
	}
	return pkgs, nil
}

type mapper struct {
	u      *ts.Universe
	byType map[*types.TypeName]*named
	log    *zap.Logger
}

func (m *mapper) lookup(t types.Type) *named {
	if p, ok := t.(*types.Pointer); ok {
		t = p.Elem()
	}
	nt, ok := t.(*types.Named)
	if !ok {
		return nil
	}
	return m.byType[nt.Obj()]
}

func (m *mapper) link(n *named, all []*named) error {
	var super *ts.TClass
	var ifaces []*ts.TClass
	seen := make(map[*ts.TClass]bool)
	addIface := func(c *ts.TClass) {
		if c != n.class && !seen[c] {
			seen[c] = true
			ifaces = append(ifaces, c)
		}
	}

	switch under := n.typ.Underlying().(type) {
	case *types.Struct:
		for i := 0; i < under.NumFields(); i++ {
			f := under.Field(i)
			if !f.Embedded() {
				continue
			}
			target := m.lookup(f.Type())
			if target == nil || target == n {
				continue
			}
			if target.class.IsInterface {
				addIface(target.class)
			} else if super == nil {
				super = target.class
			}
		}
		ptr := types.NewPointer(n.typ)
		for _, other := range all {
			iface, ok := other.typ.Underlying().(*types.Interface)
			if ok && iface.NumMethods() > 0 && types.Implements(ptr, iface) {
				addIface(other.class)
			}
		}
	case *types.Interface:
		for i := 0; i < under.NumEmbeddeds(); i++ {
			if target := m.lookup(under.EmbeddedType(i)); target != nil && target.class.IsInterface {
				addIface(target.class)
			}
		}
	}

	sort.Slice(ifaces, func(i, j int) bool { return ifaces[i].Name < ifaces[j].Name })
	if err := m.u.SetSupertypes(n.class, super, ifaces...); err != nil {
		return fmt.Errorf("%s: %w", n.obj.Name(), err)
	}
	return nil
}

func (m *mapper) members(n *named) {
	c := n.class
	switch under := n.typ.Underlying().(type) {
	case *types.Struct:
		for i := 0; i < under.NumFields(); i++ {
			f := under.Field(i)
			if f.Embedded() {
				continue
			}
			member := ts.NewField(f.Name(), m.typeOf(f.Type()))
			if !f.Exported() {
				member.WithVisibility(ts.Private)
			}
			m.declare(c, member)
		}
		for i := 0; i < n.typ.NumMethods(); i++ {
			m.declareFunc(c, n.typ.Method(i), false)
		}
	case *types.Interface:
		for i := 0; i < under.NumExplicitMethods(); i++ {
			m.declareFunc(c, under.ExplicitMethod(i), false)
		}
	}
}

// constructors turns NewT functions into constructors of T.
func (m *mapper) constructors(pkg *types.Package) {
	scope := pkg.Scope()
	for _, name := range scope.Names() {
		fn, ok := scope.Lookup(name).(*types.Func)
		if !ok || !fn.Exported() || !strings.HasPrefix(name, "New") {
			continue
		}
		sig := fn.Type().(*types.Signature)
		if sig.Results().Len() == 0 {
			continue
		}
		target := m.lookup(sig.Results().At(0).Type())
		if target == nil || target.class.IsInterface || target.obj.Pkg() != pkg {
			continue
		}
		if name != "New"+target.obj.Name() && !(name == "New" && target.obj.Name() == pkg.Name()) {
			continue
		}
		m.declareFunc(target.class, fn, true)
	}
}

// declareFunc declares fn on c. Signatures that collide once Go types are
// mapped onto the model keep the first declaration.
func (m *mapper) declareFunc(c *ts.TClass, fn *types.Func, constructor bool) {
	sig := fn.Type().(*types.Signature)
	params := sig.Params()
	var list []ts.Type
	for i := 0; i < params.Len(); i++ {
		pt := params.At(i).Type()
		if i == 0 && isContext(pt) {
			continue
		}
		list = append(list, m.typeOf(pt))
	}

	var member *ts.Member
	if constructor {
		member = ts.NewConstructor(list...)
	} else {
		member = ts.NewMethod(fn.Name(), m.resultOf(sig.Results()), list...)
	}
	if sig.Variadic() && len(list) > 0 {
		member.WithVariadic()
	}
	if !fn.Exported() {
		member.WithVisibility(ts.Private)
	}
	m.declare(c, member)
}

func (m *mapper) declare(c *ts.TClass, member *ts.Member) {
	if _, err := c.Declare(member); err != nil {
		m.log.Debug("skipping member", zap.String("type", c.Name), zap.Error(err))
	}
}

func (m *mapper) resultOf(results *types.Tuple) ts.Type {
	n := results.Len()
	if n > 0 && isError(results.At(n-1).Type()) {
		n--
	}
	switch n {
	case 0:
		return ts.Void
	case 1:
		return m.typeOf(results.At(0).Type())
	}
	return m.u.Object
}

// typeOf maps a Go type onto the model.
func (m *mapper) typeOf(t types.Type) ts.Type {
	switch tt := t.(type) {
	case *types.Basic:
		return m.basic(tt)
	case *types.Slice:
		return ts.ArrayOf(m.typeOf(tt.Elem()))
	case *types.Array:
		return ts.ArrayOf(m.typeOf(tt.Elem()))
	case *types.Pointer:
		if n := m.lookup(tt); n != nil {
			return n.class
		}
		return m.u.Object
	case *types.Named:
		if n := m.lookup(tt); n != nil {
			return n.class
		}
		if isError(tt) {
			return m.u.String
		}
		if b, ok := tt.Underlying().(*types.Basic); ok {
			return m.basic(b)
		}
	}
	return m.u.Object
}

func (m *mapper) basic(b *types.Basic) ts.Type {
	switch b.Kind() {
	case types.Bool:
		return ts.Boolean
	case types.Int8, types.Uint8:
		return ts.Byte
	case types.Int16:
		return ts.Short
	case types.Uint16:
		return ts.Char
	case types.Int, types.Int32:
		return ts.Int
	case types.Int64, types.Uint, types.Uint32, types.Uint64:
		return ts.Long
	case types.Float32:
		return ts.Float
	case types.Float64:
		return ts.Double
	case types.String:
		return m.u.String
	}
	return m.u.Object
}

func isContext(t types.Type) bool {
	nt, ok := t.(*types.Named)
	if !ok {
		return false
	}
	obj := nt.Obj()
	return obj.Pkg() != nil && obj.Pkg().Path() == "context" && obj.Name() == "Context"
}

func isError(t types.Type) bool {
	return types.Identical(t, types.Universe.Lookup("error").Type())
}
