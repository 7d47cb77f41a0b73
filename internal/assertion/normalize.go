package assertion

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnresolvedDisjunction is returned when a disjunction is used where a single
// DNF branch is required, such as rendering or receiver lookup.
var ErrUnresolvedDisjunction = errors.New("disjunction must be resolved to DNF first")

// SeparatingConjunction is a list of conjuncts joined by the separating
// conjunction. It never contains Emp or another SeparatingConjunction.
type SeparatingConjunction struct {
	Conjuncts []Assertion
}

func (*SeparatingConjunction) isAssertion() {}
func (*SeparatingConjunction) Kind() Kind   { return KindSeparatingConjunction }
func (*SeparatingConjunction) Subject() string {
	return ""
}

// Disjunction is a choice between branches. It never contains another
// Disjunction and has no textual form.
type Disjunction struct {
	Branches []Assertion
}

func (*Disjunction) isAssertion() {}
func (*Disjunction) Kind() Kind   { return KindDisjunction }
func (*Disjunction) Subject() string {
	return ""
}

// SCL builds a separating conjunction list. Emp and nil conjuncts are dropped
// and nested lists are inlined in place.
func SCL(conjuncts ...Assertion) *SeparatingConjunction {
	flat := make([]Assertion, 0, len(conjuncts))
	for _, c := range conjuncts {
		switch c := c.(type) {
		case nil, Emp:
			continue
		case *SeparatingConjunction:
			flat = append(flat, c.Conjuncts...)
		default:
			flat = append(flat, c)
		}
	}
	return &SeparatingConjunction{Conjuncts: flat}
}

// Or builds a disjunction. Nested disjunctions are inlined in place and nil
// branches are dropped.
func Or(branches ...Assertion) *Disjunction {
	flat := make([]Assertion, 0, len(branches))
	for _, b := range branches {
		switch b := b.(type) {
		case nil:
			continue
		case *Disjunction:
			flat = append(flat, b.Branches...)
		default:
			flat = append(flat, b)
		}
	}
	return &Disjunction{Branches: flat}
}

// DNF converts a to disjunctive normal form. Conjuncts are folded left to right
// starting from a single empty list; a disjunctive conjunct with k branches
// multiplies the partial lists by k, any other conjunct is appended to every
// partial list. Every branch of the result is a SeparatingConjunction free of
// disjunctions, and keeps the original conjunct order.
func DNF(a Assertion) *Disjunction {
	partials := [][]Assertion{{}}
	for _, c := range conjunctsOf(a) {
		alts := alternatives(c)
		next := make([][]Assertion, 0, len(partials)*len(alts))
		for _, alt := range alts {
			for _, p := range partials {
				branch := make([]Assertion, 0, len(p)+len(alt))
				branch = append(branch, p...)
				branch = append(branch, alt...)
				next = append(next, branch)
			}
		}
		partials = next
	}

	branches := make([]Assertion, len(partials))
	for i, p := range partials {
		branches[i] = SCL(p...)
	}
	return &Disjunction{Branches: branches}
}

func conjunctsOf(a Assertion) []Assertion {
	switch a := a.(type) {
	case nil, Emp:
		return nil
	case *SeparatingConjunction:
		return a.Conjuncts
	default:
		return []Assertion{a}
	}
}

// alternatives lists the conjunct lists c may contribute to a DNF branch.
// Branches of a disjunction that are themselves conjunctions containing
// disjunctions are expanded first.
func alternatives(c Assertion) [][]Assertion {
	d, ok := c.(*Disjunction)
	if !ok {
		return [][]Assertion{{c}}
	}
	var alts [][]Assertion
	for _, b := range d.Branches {
		for _, nb := range DNF(b).Branches {
			alts = append(alts, nb.(*SeparatingConjunction).Conjuncts)
		}
	}
	return alts
}

// ThisAssertion returns the conjunct describing the shape of the receiver, if
// any. It must be called on a single DNF branch.
func ThisAssertion(a Assertion) (Assertion, bool, error) {
	switch a := a.(type) {
	case nil:
		return nil, false, nil
	case *Disjunction:
		return nil, false, fmt.Errorf("receiver lookup: %w", ErrUnresolvedDisjunction)
	case *SeparatingConjunction:
		for _, c := range a.Conjuncts {
			found, ok, err := ThisAssertion(c)
			if err != nil {
				return nil, false, err
			}
			if ok {
				return found, true, nil
			}
		}
		return nil, false, nil
	case JSObject, Custom:
		if a.Subject() == Receiver {
			return a, true, nil
		}
	}
	return nil, false, nil
}

// Render returns the textual form of a. Disjunctions are rejected.
func Render(a Assertion) (string, error) {
	switch a := a.(type) {
	case nil:
		return Emp{}.String(), nil
	case *Disjunction:
		return "", ErrUnresolvedDisjunction
	case *SeparatingConjunction:
		parts := make([]string, 0, len(a.Conjuncts))
		for _, c := range a.Conjuncts {
			s, err := Render(c)
			if err != nil {
				return "", err
			}
			if s != "" {
				parts = append(parts, s)
			}
		}
		if len(parts) == 0 {
			return Emp{}.String(), nil
		}
		return strings.Join(parts, " * "), nil
	case Atom:
		return a.String(), nil
	default:
		return "", fmt.Errorf("cannot render assertion of kind %s", a.Kind())
	}
}

// RenderBranches renders every branch of the DNF of a.
func RenderBranches(a Assertion) ([]string, error) {
	dnf := DNF(a)
	out := make([]string, 0, len(dnf.Branches))
	for _, b := range dnf.Branches {
		s, err := Render(b)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
