// Package itemset defines the categorical values, itemsets and oracle
// predicates that the mining packages exchange.
package itemset

import (
	"sort"
	"strings"
)

// Value is an atomic categorical datum, e.g. the grade "A2".
type Value string

// Category is the name of the column a Value belongs to.
type Category string

// keySeparator joins member values into an itemset key. It cannot occur in
// values read from CSV or SQL text columns.
const keySeparator = "\x1f"

// ItemSet is an immutable set of values kept in ascending order.
// Two itemsets with the same members are equal and share the same Key.
type ItemSet struct {
	values []Value
}

// New returns the itemset holding the given values. Duplicates collapse.
func New(values ...Value) ItemSet {
	if len(values) == 0 {
		return ItemSet{}
	}
	sorted := make([]Value, len(values))
	copy(sorted, values)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	out := sorted[:1]
	for _, v := range sorted[1:] {
		if v != out[len(out)-1] {
			out = append(out, v)
		}
	}
	return ItemSet{values: out}
}

// Len returns the number of members.
func (s ItemSet) Len() int {
	return len(s.values)
}

// IsEmpty reports whether the itemset has no members.
func (s ItemSet) IsEmpty() bool {
	return len(s.values) == 0
}

// Values returns a copy of the members in ascending order.
func (s ItemSet) Values() []Value {
	out := make([]Value, len(s.values))
	copy(out, s.values)
	return out
}

// Key returns the canonical identity of the itemset.
func (s ItemSet) Key() string {
	parts := make([]string, len(s.values))
	for i, v := range s.values {
		parts[i] = string(v)
	}
	return strings.Join(parts, keySeparator)
}

// String renders the members as "{a, b}".
func (s ItemSet) String() string {
	parts := make([]string, len(s.values))
	for i, v := range s.values {
		parts[i] = string(v)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Contains reports whether v is a member.
func (s ItemSet) Contains(v Value) bool {
	i := sort.Search(len(s.values), func(i int) bool { return s.values[i] >= v })
	return i < len(s.values) && s.values[i] == v
}

// Equal reports whether both itemsets have the same members.
func (s ItemSet) Equal(other ItemSet) bool {
	if len(s.values) != len(other.values) {
		return false
	}
	for i := range s.values {
		if s.values[i] != other.values[i] {
			return false
		}
	}
	return true
}

// Union returns the set union of s and other.
func (s ItemSet) Union(other ItemSet) ItemSet {
	out := make([]Value, 0, len(s.values)+len(other.values))
	i, j := 0, 0
	for i < len(s.values) && j < len(other.values) {
		switch {
		case s.values[i] == other.values[j]:
			out = append(out, s.values[i])
			i++
			j++
		case s.values[i] < other.values[j]:
			out = append(out, s.values[i])
			i++
		default:
			out = append(out, other.values[j])
			j++
		}
	}
	out = append(out, s.values[i:]...)
	out = append(out, other.values[j:]...)
	return ItemSet{values: out}
}

// Without returns s minus v. It returns s unchanged when v is not a member.
func (s ItemSet) Without(v Value) ItemSet {
	if !s.Contains(v) {
		return s
	}
	out := make([]Value, 0, len(s.values)-1)
	for _, m := range s.values {
		if m != v {
			out = append(out, m)
		}
	}
	return ItemSet{values: out}
}

// MaximalSubsets returns every subset with exactly one member removed,
// in member order.
func (s ItemSet) MaximalSubsets() []ItemSet {
	if len(s.values) == 0 {
		return nil
	}
	subsets := make([]ItemSet, 0, len(s.values))
	for _, v := range s.values {
		subsets = append(subsets, s.Without(v))
	}
	return subsets
}

// IsSubsetOf reports whether every member of s is a member of other.
func (s ItemSet) IsSubsetOf(other ItemSet) bool {
	for _, v := range s.values {
		if !other.Contains(v) {
			return false
		}
	}
	return true
}
