// Package protoimport builds a type model from protobuf definitions.
//
// Messages become final classes with a public no-argument constructor and
// one field per message field. Enums become final Comparable classes with
// a static field per value, an int getNumber() method and a static
// forNumber(int) lookup. Services become interfaces with one method per
// RPC. Nested declarations are named Outer_Inner.
package protoimport

import (
	"fmt"
	"strings"

	"github.com/jhump/protoreflect/desc"
	"github.com/jhump/protoreflect/desc/protoparse"
	"go.uber.org/zap"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/funvibe/meditation/internal/logger"
	ts "github.com/funvibe/meditation/internal/typesystem"
)

// Importer parses .proto files and declares their types.
type Importer struct {
	importPaths []string
	accessor    protoparse.FileAccessor
	log         *zap.Logger
}

// Option configures an Importer.
type Option func(*Importer)

func WithLogger(l *zap.Logger) Option {
	return func(im *Importer) {
		im.log = logger.OrNop(l)
	}
}

// WithImportPaths sets the directories searched for files and their imports.
func WithImportPaths(paths ...string) Option {
	return func(im *Importer) { im.importPaths = paths }
}

// WithSources reads files from memory instead of the file system.
func WithSources(files map[string]string) Option {
	return func(im *Importer) { im.accessor = protoparse.FileContentsFromMap(files) }
}

// New creates an importer. Without import paths, files are resolved
// relative to the current directory.
func New(opts ...Option) *Importer {
	im := &Importer{log: logger.Nop()}
	for _, opt := range opts {
		opt(im)
	}
	return im
}

// Result lists the types an import declared.
type Result struct {
	Types []*ts.TClass
}

// Import parses files and declares the messages, enums and services they
// define in u. Types referenced from imported files that are not themselves
// listed map to Object.
func (im *Importer) Import(u *ts.Universe, files ...string) (*Result, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("no proto files given")
	}
	parser := protoparse.Parser{
		ImportPaths: im.importPaths,
		Accessor:    im.accessor,
	}
	fds, err := parser.ParseFiles(files...)
	if err != nil {
		return nil, fmt.Errorf("parsing proto: %w", err)
	}

	m := &mapper{u: u, classes: make(map[string]*ts.TClass)}
	for _, fd := range fds {
		if err := m.declareFile(fd); err != nil {
			return nil, fmt.Errorf("%s: %w", fd.GetName(), err)
		}
	}
	for _, fd := range fds {
		if err := m.defineFile(fd); err != nil {
			return nil, fmt.Errorf("%s: %w", fd.GetName(), err)
		}
	}

	im.log.Info("imported proto types", zap.Strings("files", files), zap.Int("types", len(m.order)))
	return &Result{Types: m.order}, nil
}

type mapper struct {
	u       *ts.Universe
	classes map[string]*ts.TClass
	order   []*ts.TClass
}

// localName strips the package from a fully qualified name and joins
// nesting levels with underscores.
func localName(d desc.Descriptor) string {
	name := d.GetFullyQualifiedName()
	if pkg := d.GetFile().GetPackage(); pkg != "" {
		name = strings.TrimPrefix(name, pkg+".")
	}
	return strings.ReplaceAll(name, ".", "_")
}

func (m *mapper) declare(d desc.Descriptor, isInterface bool) (*ts.TClass, error) {
	c, err := m.u.Declare(localName(d), isInterface)
	if err != nil {
		return nil, err
	}
	m.classes[d.GetFullyQualifiedName()] = c
	m.order = append(m.order, c)
	return c, nil
}

func (m *mapper) declareFile(fd *desc.FileDescriptor) error {
	for _, md := range fd.GetMessageTypes() {
		if err := m.declareMessage(md); err != nil {
			return err
		}
	}
	for _, ed := range fd.GetEnumTypes() {
		if err := m.declareEnum(ed); err != nil {
			return err
		}
	}
	for _, sd := range fd.GetServices() {
		if _, err := m.declare(sd, true); err != nil {
			return err
		}
	}
	return nil
}

func (m *mapper) declareMessage(md *desc.MessageDescriptor) error {
	if md.IsMapEntry() {
		return nil
	}
	c, err := m.declare(md, false)
	if err != nil {
		return err
	}
	c.IsFinal = true
	for _, nested := range md.GetNestedMessageTypes() {
		if err := m.declareMessage(nested); err != nil {
			return err
		}
	}
	for _, ed := range md.GetNestedEnumTypes() {
		if err := m.declareEnum(ed); err != nil {
			return err
		}
	}
	return nil
}

func (m *mapper) declareEnum(ed *desc.EnumDescriptor) error {
	c, err := m.declare(ed, false)
	if err != nil {
		return err
	}
	c.IsFinal = true
	return m.u.SetSupertypes(c, nil, m.u.Comparable)
}

func (m *mapper) defineFile(fd *desc.FileDescriptor) error {
	for _, md := range fd.GetMessageTypes() {
		if err := m.defineMessage(md); err != nil {
			return err
		}
	}
	for _, ed := range fd.GetEnumTypes() {
		if err := m.defineEnum(ed); err != nil {
			return err
		}
	}
	for _, sd := range fd.GetServices() {
		if err := m.defineService(sd); err != nil {
			return err
		}
	}
	return nil
}

func (m *mapper) defineMessage(md *desc.MessageDescriptor) error {
	if md.IsMapEntry() {
		return nil
	}
	c := m.classes[md.GetFullyQualifiedName()]
	if _, err := c.Declare(ts.NewConstructor()); err != nil {
		return err
	}
	for _, f := range md.GetFields() {
		if _, err := c.Declare(ts.NewField(f.GetName(), m.fieldType(f))); err != nil {
			return err
		}
	}
	for _, nested := range md.GetNestedMessageTypes() {
		if err := m.defineMessage(nested); err != nil {
			return err
		}
	}
	for _, ed := range md.GetNestedEnumTypes() {
		if err := m.defineEnum(ed); err != nil {
			return err
		}
	}
	return nil
}

func (m *mapper) defineEnum(ed *desc.EnumDescriptor) error {
	c := m.classes[ed.GetFullyQualifiedName()]
	for _, v := range ed.GetValues() {
		if _, err := c.Declare(ts.NewField(v.GetName(), c).AsStatic()); err != nil {
			return err
		}
	}
	if _, err := c.Declare(ts.NewMethod("getNumber", ts.Int)); err != nil {
		return err
	}
	_, err := c.Declare(ts.NewMethod("forNumber", c, ts.Int).AsStatic())
	return err
}

func (m *mapper) defineService(sd *desc.ServiceDescriptor) error {
	c := m.classes[sd.GetFullyQualifiedName()]
	for _, mtd := range sd.GetMethods() {
		var in, out ts.Type = m.message(mtd.GetInputType()), m.message(mtd.GetOutputType())
		if mtd.IsClientStreaming() {
			in = ts.ArrayOf(in)
		}
		if mtd.IsServerStreaming() {
			out = ts.ArrayOf(out)
		}
		if _, err := c.Declare(ts.NewMethod(mtd.GetName(), out, in)); err != nil {
			return err
		}
	}
	return nil
}

func (m *mapper) message(md *desc.MessageDescriptor) ts.Type {
	if c, ok := m.classes[md.GetFullyQualifiedName()]; ok {
		return c
	}
	return m.u.Object
}

func (m *mapper) fieldType(f *desc.FieldDescriptor) ts.Type {
	if f.IsMap() {
		return m.u.Object
	}
	t := m.scalar(f)
	if f.IsRepeated() {
		return ts.ArrayOf(t)
	}
	return t
}

func (m *mapper) scalar(f *desc.FieldDescriptor) ts.Type {
	switch f.GetType() {
	case descriptorpb.FieldDescriptorProto_TYPE_INT32,
		descriptorpb.FieldDescriptorProto_TYPE_SINT32,
		descriptorpb.FieldDescriptorProto_TYPE_SFIXED32:
		return ts.Int
	case descriptorpb.FieldDescriptorProto_TYPE_INT64,
		descriptorpb.FieldDescriptorProto_TYPE_SINT64,
		descriptorpb.FieldDescriptorProto_TYPE_SFIXED64,
		descriptorpb.FieldDescriptorProto_TYPE_UINT32,
		descriptorpb.FieldDescriptorProto_TYPE_FIXED32,
		descriptorpb.FieldDescriptorProto_TYPE_UINT64,
		descriptorpb.FieldDescriptorProto_TYPE_FIXED64:
		return ts.Long
	case descriptorpb.FieldDescriptorProto_TYPE_FLOAT:
		return ts.Float
	case descriptorpb.FieldDescriptorProto_TYPE_DOUBLE:
		return ts.Double
	case descriptorpb.FieldDescriptorProto_TYPE_BOOL:
		return ts.Boolean
	case descriptorpb.FieldDescriptorProto_TYPE_STRING:
		return m.u.String
	case descriptorpb.FieldDescriptorProto_TYPE_BYTES:
		return ts.ArrayOf(ts.Byte)
	case descriptorpb.FieldDescriptorProto_TYPE_MESSAGE,
		descriptorpb.FieldDescriptorProto_TYPE_GROUP:
		return m.message(f.GetMessageType())
	case descriptorpb.FieldDescriptorProto_TYPE_ENUM:
		if c, ok := m.classes[f.GetEnumType().GetFullyQualifiedName()]; ok {
			return c
		}
		return m.u.Object
	}
	return m.u.Object
}
