package value

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
)

// HashKey computes a stable digest of v, used as the rule compiler's cache
// and singleflight key (keyed by schema definition, spec §4.3) and as the
// per-element key for uniqueItems.
func HashKey(v Value) string {
	h := sha256.New()
	writeHash(h, v)
	return hex.EncodeToString(h.Sum(nil))
}

type hashWriter interface {
	Write([]byte) (int, error)
}

func writeHash(h hashWriter, v Value) {
	switch v.kind {
	case KindNull:
		h.Write([]byte{'n'})
	case KindBool:
		h.Write([]byte{'b'})
		if v.b {
			h.Write([]byte{'1'})
		} else {
			h.Write([]byte{'0'})
		}
	case KindInt, KindNumber:
		// Int and Number hash identically when numerically equal, matching
		// Equal's cross-kind comparison so uniqueItems treats 5 and 5.0 as
		// the same element.
		f, _ := v.AsFloat64()
		h.Write([]byte{'#'})
		h.Write([]byte(strconv.FormatFloat(f, 'g', -1, 64)))
	case KindString:
		// Length-prefixed so adjacent strings cannot run together.
		h.Write([]byte{'s'})
		h.Write([]byte(strconv.Itoa(len(v.s)) + ":"))
		h.Write([]byte(v.s))
	case KindArray:
		h.Write([]byte{'['})
		for _, e := range v.arr {
			writeHash(h, e)
		}
		h.Write([]byte{']'})
	case KindObject:
		h.Write([]byte{'{'})
		for _, key := range v.SortedKeys() {
			val, _ := v.Get(key)
			h.Write([]byte(strconv.Itoa(len(key)) + ":"))
			h.Write([]byte(key))
			h.Write([]byte{':'})
			writeHash(h, val)
		}
		h.Write([]byte{'}'})
	}
}
