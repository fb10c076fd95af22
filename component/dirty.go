package component

import (
	"fmt"
	"math/bits"
)

const wordBits = 64

// Dirty is a packed bit per context slot.
type Dirty []uint64

func NewDirty(slots int) Dirty {
	words := (slots + wordBits - 1) / wordBits
	if words == 0 {
		words = 1
	}
	return make(Dirty, words)
}

// AllDirty has every bit for slots set; used for the first render.
func AllDirty(slots int) Dirty {
	d := NewDirty(slots)
	for i := 0; i < slots; i++ {
		d.Set(i)
	}
	return d
}

func (d *Dirty) Set(slot int) {
	if slot < 0 {
		panic(fmt.Errorf("%w: %d", ErrSlotOutOfRange, slot))
	}
	word := slot / wordBits
	if word >= len(*d) {
		grown := make(Dirty, word+1)
		copy(grown, *d)
		*d = grown
	}
	(*d)[word] |= 1 << (slot % wordBits)
}

func (d Dirty) Has(slot int) bool {
	word := slot / wordBits
	if slot < 0 || word >= len(d) {
		return false
	}
	return d[word]&(1<<(slot%wordBits)) != 0
}

// Any reports whether at least one of slots is set.
func (d Dirty) Any(slots ...int) bool {
	for _, s := range slots {
		if d.Has(s) {
			return true
		}
	}
	return false
}

func (d Dirty) Empty() bool {
	for _, w := range d {
		if w != 0 {
			return false
		}
	}
	return true
}

func (d *Dirty) Or(other Dirty) {
	if len(other) > len(*d) {
		grown := make(Dirty, len(other))
		copy(grown, *d)
		*d = grown
	}
	for i, w := range other {
		(*d)[i] |= w
	}
}

func (d Dirty) Reset() {
	for i := range d {
		d[i] = 0
	}
}

func (d Dirty) Clone() Dirty {
	c := make(Dirty, len(d))
	copy(c, d)
	return c
}

func (d Dirty) Count() int {
	n := 0
	for _, w := range d {
		n += bits.OnesCount64(w)
	}
	return n
}

// Slots lists the set slots in ascending order.
func (d Dirty) Slots() []int {
	var out []int
	for i, w := range d {
		for w != 0 {
			b := bits.TrailingZeros64(w)
			out = append(out, i*wordBits+b)
			w &^= 1 << b
		}
	}
	return out
}
