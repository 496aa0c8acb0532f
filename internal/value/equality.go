package value

// Equal reports structural equality: same kind family (integer and number
// compare by numeric value), same string/bool, same array elements in
// order, same object members regardless of insertion order.
func Equal(a, b Value) bool {
	an, aok := a.AsFloat64()
	bn, bok := b.AsFloat64()
	if aok && bok {
		return an == bn
	}
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNull:
		return true
	case KindBool:
		return a.b == b.b
	case KindString:
		return a.s == b.s
	case KindArray:
		if len(a.arr) != len(b.arr) {
			return false
		}
		for i := range a.arr {
			if !Equal(a.arr[i], b.arr[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if len(a.members) != len(b.members) {
			return false
		}
		for _, m := range a.members {
			other, ok := b.Get(m.key)
			if !ok || !Equal(m.val, other) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Contains reports whether vs contains a value structurally equal to v.
func Contains(vs []Value, v Value) bool {
	for _, candidate := range vs {
		if Equal(candidate, v) {
			return true
		}
	}
	return false
}
