package program

import (
	"fmt"

	"github.com/gnolang/tspec/internal/assertion"
	"github.com/gnolang/tspec/internal/types"
)

// reservedFields are the names an indexed object may not own.
var reservedFields = []string{"hasOwnProperty"}

// Predicates returns every predicate declaration of the program: absent
// fields, index signatures, interfaces, the four predicates of each class and
// the registry predicate. Calling it freezes the program.
func (p *Program) Predicates() ([]assertion.Predicate, error) {
	if err := p.freeze(); err != nil {
		return nil, err
	}

	preds := []assertion.Predicate{absentFieldsPredicate()}
	for _, sig := range p.indexSigs {
		pred, err := p.indexSignaturePredicate(sig)
		if err != nil {
			return nil, err
		}
		preds = append(preds, pred)
	}
	for _, iface := range p.ifaceOrder {
		body, err := types.ToAssertion("o", iface.Shape, p)
		if err != nil {
			return nil, fmt.Errorf("interface %s: %w", iface.Name, err)
		}
		preds = append(preds, assertion.NewPredicate(iface.Name, []string{"+o"}, body))
	}
	for _, c := range p.Classes.Classes() {
		cp, err := c.Predicates()
		if err != nil {
			return nil, err
		}
		preds = append(preds, cp...)
	}
	all, err := p.Classes.AllProtosPredicate()
	if err != nil {
		return nil, err
	}
	return append(preds, all), nil
}

func absentFieldsPredicate() assertion.Predicate {
	conjuncts := make([]assertion.Assertion, len(reservedFields))
	for i, f := range reservedFields {
		conjuncts[i] = assertion.Absent("o", f)
	}
	return assertion.NewPredicate(types.AbsentFieldsPred, []string{"+o"}, assertion.SCL(conjuncts...))
}

// indexSignaturePredicate describes the fields set of an indexed object
// recursively: either empty, or one field holding a value of the signature
// type plus the rest.
//
//	IndexSigN(+o, fields)
func (p *Program) indexSignaturePredicate(sig *types.IndexSignature) (assertion.Predicate, error) {
	const o, fields, field, rest, value = "o", "fields", "#f", "#fields'", "#v"

	v, err := types.ToAssertion(value, sig.Value, p)
	if err != nil {
		return assertion.Predicate{}, fmt.Errorf("%s: %w", sig.Pred, err)
	}
	rec := assertion.SCL(
		assertion.Text("(%s == -u- (-{ %s }-, %s))", fields, field, rest),
		assertion.DataProp{Obj: o, Field: field, Value: value, LogicalField: true},
		v,
		assertion.Pred(sig.Pred, o, rest),
	)

	pred := assertion.Predicate{
		Name:   sig.Pred,
		Params: []string{"+" + o, fields},
		Cases:  []assertion.Case{{Label: "base", Body: assertion.Text("(%s == -{ }-)", fields)}},
	}
	for _, branch := range assertion.DNF(rec).Branches {
		pred.Cases = append(pred.Cases, assertion.Case{Label: "rec", Body: branch})
	}
	return pred, nil
}
