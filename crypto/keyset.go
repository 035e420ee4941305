package crypto

import "strings"

// KeyOf returns a string that uniquely identifies the public key and that can
// be used as a map key. Keys of different algorithms never collide.
func KeyOf(pk PublicKey) string {
	data, err := pk.MarshalBinary()
	if err != nil {
		// A key that cannot be marshaled is still given a stable identity so
		// that it ends up as missing rather than crashing the caller.
		return pk.GetAlgorithm() + ":" + pk.String()
	}

	return pk.GetAlgorithm() + ":" + string(data)
}

// KeySet is an insertion-ordered set of public keys. The zero value is not
// usable, NewKeySet must be used.
type KeySet struct {
	index map[string]int
	keys  []PublicKey
}

// NewKeySet creates a set populated with the keys.
func NewKeySet(keys ...PublicKey) KeySet {
	set := KeySet{
		index: make(map[string]int),
	}

	set.Add(keys...)

	return set
}

// Add inserts the keys that are not yet in the set.
func (s *KeySet) Add(keys ...PublicKey) {
	for _, key := range keys {
		id := KeyOf(key)

		_, found := s.index[id]
		if found {
			continue
		}

		s.index[id] = len(s.keys)
		s.keys = append(s.keys, key)
	}
}

// Contains returns true if the key is in the set.
func (s KeySet) Contains(key PublicKey) bool {
	_, found := s.index[KeyOf(key)]
	return found
}

// ContainsAll returns true if every key of the other set is in the set.
func (s KeySet) ContainsAll(other KeySet) bool {
	for _, key := range other.keys {
		if !s.Contains(key) {
			return false
		}
	}

	return true
}

// Minus returns a new set with the keys of the set that are not in the other
// one.
func (s KeySet) Minus(other KeySet) KeySet {
	res := NewKeySet()
	for _, key := range s.keys {
		if !other.Contains(key) {
			res.Add(key)
		}
	}

	return res
}

// Union returns a new set with the keys of both sets.
func (s KeySet) Union(other KeySet) KeySet {
	res := NewKeySet(s.keys...)
	res.Add(other.keys...)

	return res
}

// Len returns the number of keys in the set.
func (s KeySet) Len() int {
	return len(s.keys)
}

// IsEmpty returns true when the set has no key.
func (s KeySet) IsEmpty() bool {
	return len(s.keys) == 0
}

// Slice returns a copy of the keys in insertion order.
func (s KeySet) Slice() []PublicKey {
	return append([]PublicKey{}, s.keys...)
}

// String implements fmt.Stringer. It prints the short form of the keys.
func (s KeySet) String() string {
	names := make([]string, len(s.keys))
	for i, key := range s.keys {
		names[i] = key.String()
	}

	return "[" + strings.Join(names, ", ") + "]"
}
