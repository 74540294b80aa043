package scene

import "strconv"

// Ref is an optional index into one of the model's tables.
// The zero value refers to nothing.
type Ref struct {
	index int32
	valid bool
}

// NoRef is the absent reference.
var NoRef = Ref{}

// RefTo returns a reference to index i.
func RefTo(i int) Ref {
	return Ref{index: int32(i), valid: true}
}

// Index returns the referenced index and whether the reference is set.
func (r Ref) Index() (int, bool) {
	return int(r.index), r.valid
}

// Valid reports whether the reference is set.
func (r Ref) Valid() bool {
	return r.valid
}

// Int32 returns the index, or -1 when absent. Render backends pass this
// straight into shader constants.
func (r Ref) Int32() int32 {
	if !r.valid {
		return -1
	}
	return r.index
}

func (r Ref) String() string {
	if !r.valid {
		return "none"
	}
	return strconv.Itoa(int(r.index))
}
