package scope

import "github.com/gnolang/tspec/internal/types"

// Set is an ordered set of variables keyed by name. The first variable added
// under a name wins.
type Set struct {
	vars   []*types.Variable
	byName map[string]*types.Variable
}

func NewSet(vars ...*types.Variable) *Set {
	s := &Set{byName: make(map[string]*types.Variable, len(vars))}
	s.Add(vars...)
	return s
}

func (s *Set) Add(vars ...*types.Variable) {
	for _, v := range vars {
		if _, ok := s.byName[v.Name]; ok {
			continue
		}
		s.byName[v.Name] = v
		s.vars = append(s.vars, v)
	}
}

func (s *Set) Get(name string) (*types.Variable, bool) {
	v, ok := s.byName[name]
	return v, ok
}

func (s *Set) Has(name string) bool {
	_, ok := s.byName[name]
	return ok
}

func (s *Set) Len() int { return len(s.vars) }

// Vars returns the members in insertion order.
func (s *Set) Vars() []*types.Variable {
	return append([]*types.Variable(nil), s.vars...)
}

// Names returns the member names in insertion order.
func (s *Set) Names() []string {
	out := make([]string, len(s.vars))
	for i, v := range s.vars {
		out[i] = v.Name
	}
	return out
}

// Union returns a new set holding s followed by other. Names in s shadow the
// same names in other.
func (s *Set) Union(other *Set) *Set {
	u := NewSet(s.vars...)
	u.Add(other.vars...)
	return u
}
