package catalog

import "strings"

// Brand is a reference row resolved by name during normalization
type Brand struct {
	ID   int64
	Name string
}

// Category is a reference row resolved by name during normalization
type Category struct {
	ID       int64
	Name     string
	ParentID *int64
}

// NameIndex is a read-only, case-insensitive name -> ID snapshot.
// The orchestrator loads one snapshot per run and passes it by parameter
// into the normalizer; nothing mutates it afterwards.
type NameIndex struct {
	byName map[string]int64
}

// NewNameIndex builds an index from name/ID pairs. Later duplicates of the
// same (folded) name win, matching the last-write behavior of the reference
// tables they are loaded from.
func NewNameIndex(pairs map[string]int64) NameIndex {
	byName := make(map[string]int64, len(pairs))
	for name, id := range pairs {
		byName[foldName(name)] = id
	}
	return NameIndex{byName: byName}
}

// Resolve returns the ID for the given name, using case-insensitive exact
// matching. The second return value reports whether the name was found.
func (ix NameIndex) Resolve(name string) (int64, bool) {
	id, ok := ix.byName[foldName(name)]
	return id, ok
}

// Len returns the number of entries in the index
func (ix NameIndex) Len() int {
	return len(ix.byName)
}

func foldName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
