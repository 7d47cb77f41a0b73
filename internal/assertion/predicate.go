package assertion

import "strings"

// Case is one definition of a predicate. Label is optional.
type Case struct {
	Label string
	Body  Assertion
}

// Predicate is a named predicate declaration.
type Predicate struct {
	Name   string
	Params []string
	Cases  []Case
}

// NewPredicate declares a predicate whose cases are the DNF branches of body.
func NewPredicate(name string, params []string, body Assertion) Predicate {
	dnf := DNF(body)
	cases := make([]Case, len(dnf.Branches))
	for i, b := range dnf.Branches {
		cases[i] = Case{Body: b}
	}
	return Predicate{Name: name, Params: params, Cases: cases}
}

// Header returns the predicate name applied to its parameters.
func (p Predicate) Header() string {
	return p.Name + "(" + strings.Join(p.Params, ", ") + ")"
}

// Render returns the declaration text, e.g.
//
//	Name(a, b): body;
//
// Predicates with several or labelled cases put one case per line.
func (p Predicate) Render() (string, error) {
	bodies := make([]string, len(p.Cases))
	for i, c := range p.Cases {
		s, err := Render(c.Body)
		if err != nil {
			return "", err
		}
		if c.Label != "" {
			s = "[" + c.Label + "] " + s
		}
		bodies[i] = s
	}

	var sb strings.Builder
	sb.WriteString(p.Header())
	sb.WriteString(":")
	if len(p.Cases) == 1 && p.Cases[0].Label == "" {
		sb.WriteString(" ")
		sb.WriteString(bodies[0])
	} else {
		for i, b := range bodies {
			if i > 0 {
				sb.WriteString(",")
			}
			sb.WriteString("\n    ")
			sb.WriteString(b)
		}
	}
	sb.WriteString(";")
	return sb.String(), nil
}
