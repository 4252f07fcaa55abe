package typesystem

import "fmt"

// TypeNotFoundError indicates a type name is not registered in the universe.
type TypeNotFoundError struct {
	Name string
}

func (e *TypeNotFoundError) Error() string {
	return fmt.Sprintf("type not found: %s", e.Name)
}

func NewTypeNotFoundError(name string) *TypeNotFoundError {
	return &TypeNotFoundError{Name: name}
}

// DuplicateTypeError indicates a second registration of the same type name.
type DuplicateTypeError struct {
	Name string
}

func (e *DuplicateTypeError) Error() string {
	return fmt.Sprintf("type already defined: %s", e.Name)
}

// DuplicateMemberError indicates two declarations with one signature on the same type.
type DuplicateMemberError struct {
	Owner     string
	Signature string
}

func (e *DuplicateMemberError) Error() string {
	return fmt.Sprintf("%s: member already declared: %s", e.Owner, e.Signature)
}

// HierarchyError reports an invalid supertype link.
type HierarchyError struct {
	Type   string
	Reason string
}

func (e *HierarchyError) Error() string {
	return fmt.Sprintf("invalid hierarchy for %s: %s", e.Type, e.Reason)
}

// MemberError reports a malformed member declaration.
type MemberError struct {
	Owner  string
	Member string
	Reason string
}

func (e *MemberError) Error() string {
	return fmt.Sprintf("%s.%s: %s", e.Owner, e.Member, e.Reason)
}
