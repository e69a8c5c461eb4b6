package util

import "sort"

type Elem interface {
	Key() string
}

type StringElem string

func (s StringElem) Key() string {
	return string(s)
}

// MultiSet is an unordered collection of elements identified by their keys
type MultiSet []Elem

// Multiplicities counts the elements of each key
func (m MultiSet) Multiplicities() map[string]int {
	result := make(map[string]int)
	for _, e := range m {
		result[e.Key()] += 1
	}
	return result
}

// Diff lists, in sorted order, the keys whose multiplicity differs between
// the two multisets
func (m MultiSet) Diff(other MultiSet) []string {
	mine := m.Multiplicities()
	theirs := other.Multiplicities()
	diff := make([]string, 0)
	for k, c := range mine {
		if theirs[k] != c {
			diff = append(diff, k)
		}
	}
	for k := range theirs {
		if _, ok := mine[k]; !ok {
			diff = append(diff, k)
		}
	}
	sort.Strings(diff)
	return diff
}

func (m MultiSet) Eq(other MultiSet) bool {
	return len(m) == len(other) && len(m.Diff(other)) == 0
}
