package remoteobject

// Kind tags the payload carried by a Value.
type Kind int

const (
	// KindNone carries no payload; used for polls and heartbeats.
	KindNone Kind = iota
	// KindFloat carries one or more float64s.
	KindFloat
	// KindInt carries one or more int64s.
	KindInt
	// KindString carries a single string.
	KindString
)

// Value is a tagged union over a remote object's possible payloads. Length
// is fixed per Id (see Arity); a Value is always copied, never aliased,
// across a store boundary so that one entry's mutation can never leak into
// another's.
type Value struct {
	Kind   Kind
	Floats []float64
	Ints   []int64
	Str    string
}

// None is the zero-payload value used for polls and heartbeats.
var None = Value{Kind: KindNone}

// Float builds a Value carrying the given floats.
func Float(v ...float64) Value {
	out := make([]float64, len(v))
	copy(out, v)
	return Value{Kind: KindFloat, Floats: out}
}

// Int builds a Value carrying the given ints.
func Int(v ...int64) Value {
	out := make([]int64, len(v))
	copy(out, v)
	return Value{Kind: KindInt, Ints: out}
}

// String builds a Value carrying a string payload.
func String(s string) Value {
	return Value{Kind: KindString, Str: s}
}

// Clone returns a deep copy of v; slice payloads are never shared between
// the clone and the original.
func (v Value) Clone() Value {
	out := Value{Kind: v.Kind, Str: v.Str}
	if v.Floats != nil {
		out.Floats = append([]float64(nil), v.Floats...)
	}
	if v.Ints != nil {
		out.Ints = append([]int64(nil), v.Ints...)
	}
	return out
}

// IsEmpty reports whether v carries no payload (a poll request).
func (v Value) IsEmpty() bool {
	return v.Kind == KindNone
}

// Equal reports whether two values carry the same tag and payload.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindFloat:
		if len(v.Floats) != len(o.Floats) {
			return false
		}
		for i := range v.Floats {
			if v.Floats[i] != o.Floats[i] {
				return false
			}
		}
		return true
	case KindInt:
		if len(v.Ints) != len(o.Ints) {
			return false
		}
		for i := range v.Ints {
			if v.Ints[i] != o.Ints[i] {
				return false
			}
		}
		return true
	case KindString:
		return v.Str == o.Str
	default:
		return true
	}
}

// Message is the immutable unit exchanged between protocols and the
// simulation engine: a field identifier, its address, and its value (or
// None, for a poll).
type Message struct {
	Id      Id
	Address Address
	Value   Value
}

// Clone returns a deep copy of m, safe to store independently of the
// original.
func (m Message) Clone() Message {
	return Message{Id: m.Id, Address: m.Address, Value: m.Value.Clone()}
}
