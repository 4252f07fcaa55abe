package typesystem

// DirectSupertypes returns the immediate supertypes of t: the superclass
// first, then the direct interfaces. Interfaces and arrays have the root
// type as supertype.
func (u *Universe) DirectSupertypes(t Type) []Type {
	switch typ := t.(type) {
	case *TClass:
		out := make([]Type, 0, len(typ.Interfaces)+1)
		if typ.Super != nil {
			out = append(out, typ.Super)
		} else if typ.IsInterface {
			out = append(out, u.Object)
		}
		for _, iface := range typ.Interfaces {
			out = append(out, iface)
		}
		return out
	case TArray:
		return []Type{u.Object, u.Cloneable, u.Serializable}
	}
	return nil
}

// Edges returns the number of inheritance edges on the shortest path
// from sub up to sup, 0 when identical, or -1 when sup is not a supertype.
// Only reference types take part; primitives match only themselves.
func (u *Universe) Edges(sup, sub Type) int {
	if sup == nil || sub == nil {
		return -1
	}
	if sup == sub {
		return 0
	}
	if !IsReference(sup) || !IsReference(sub) || sub.Kind() == KindNull {
		return -1
	}

	if supArr, ok := sup.(TArray); ok {
		subArr, ok := sub.(TArray)
		if !ok {
			return -1
		}
		// Reference arrays are covariant; primitive arrays match exactly.
		if !IsReference(supArr.Elem) || !IsReference(subArr.Elem) {
			return -1
		}
		return u.Edges(supArr.Elem, subArr.Elem)
	}

	// Breadth-first: the first time sup is reached is the shortest path,
	// which also takes the minimum over diamond paths.
	type step struct {
		t     Type
		depth int
	}
	visited := map[Type]bool{sub: true}
	queue := []step{{sub, 0}}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, parent := range u.DirectSupertypes(cur.t) {
			if parent == sup {
				return cur.depth + 1
			}
			if visited[parent] {
				continue
			}
			visited[parent] = true
			queue = append(queue, step{parent, cur.depth + 1})
		}
	}
	return -1
}

// IsAssignable reports whether a value of type from can be stored in a
// slot of type to without conversion. Null is assignable to every reference type.
func (u *Universe) IsAssignable(to, from Type) bool {
	if to == nil || from == nil {
		return false
	}
	if from.Kind() == KindNull {
		return IsReference(to) && to.Kind() != KindNull
	}
	return u.Edges(to, from) >= 0
}

// IsSubclass reports whether sub is sup or inherits from it.
func (u *Universe) IsSubclass(sub, sup *TClass) bool {
	return u.Edges(sup, sub) >= 0
}
