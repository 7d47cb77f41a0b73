// Package funcspec synthesizes pre- and post-conditions for functions,
// methods and constructors.
package funcspec

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gnolang/tspec/internal/assertion"
	"github.com/gnolang/tspec/internal/hierarchy"
	"github.com/gnolang/tspec/internal/types"
)

var (
	ErrMissingReceiver = errors.New("pre-condition branch has no receiver assertion")
	ErrReceiverShape   = errors.New("unexpected receiver assertion")
	ErrNoBranches      = errors.New("condition has no satisfiable branch")
)

// Names that may be omitted from a post-condition besides parameter names.
const (
	OmitThis = assertion.Receiver
	OmitRet  = "ret"
)

// Context is the program state synthesis reads.
type Context interface {
	types.Env
	// GlobalFacts returns the class registry facts holding in the scope fn is
	// defined in.
	GlobalFacts(fn *types.Function) (assertion.Assertion, error)
	Class(name string) (*hierarchy.Class, error)
	ClassByProto(proto string) (*hierarchy.Class, bool)
}

// Spec is the specification of one function. The post-condition depends on
// the receiver assertion of the pre-condition branch it is paired with.
type Spec struct {
	Function *types.Function
	ID       string
	Pre      assertion.Assertion

	post func(this assertion.Assertion, omit map[string]bool) (assertion.Assertion, error)
}

// Post returns the post-condition for a pre-condition branch whose receiver
// assertion is this, leaving out the omitted names.
func (s *Spec) Post(this assertion.Assertion, omit ...string) (assertion.Assertion, error) {
	return s.post(this, omitSet(omit))
}

func omitSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}

// param holds the assertions of one parameter. The post-condition asserts
// the type of its logical variable.
type param struct {
	name      string
	pre, post assertion.Assertion
}

// Synthesize builds the spec of fn. Capture analysis must have run for fn.
func Synthesize(ctx Context, fn *types.Function) (*Spec, error) {
	captured, err := fn.Captured()
	if err != nil {
		return nil, err
	}
	facts, err := ctx.GlobalFacts(fn)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fn.ID, err)
	}

	params := make([]param, 0, len(fn.Params))
	for _, p := range fn.Params {
		pre, err := types.VariableAssertion(p, ctx)
		if err != nil {
			return nil, fmt.Errorf("%s: parameter %s: %w", fn.ID, p.Name, err)
		}
		post, err := types.LogicalAssertion(p, ctx)
		if err != nil {
			return nil, fmt.Errorf("%s: parameter %s: %w", fn.ID, p.Name, err)
		}
		params = append(params, param{p.Name, pre, post})
	}

	scoped := make([]assertion.Assertion, 0, len(captured))
	for _, v := range captured {
		a, err := types.ScopedAssertion(v, ctx)
		if err != nil {
			return nil, fmt.Errorf("%s: captured %s: %w", fn.ID, v.Name, err)
		}
		scoped = append(scoped, a)
	}

	ret, err := types.ToAssertion(OmitRet, fn.Return, ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: return: %w", fn.ID, err)
	}

	// body is shared by the pre-condition of every function kind.
	body := func() []assertion.Assertion {
		out := []assertion.Assertion{facts}
		for _, p := range params {
			out = append(out, p.pre)
		}
		return append(out, scoped...)
	}
	post := func(receiver assertion.Assertion, omit map[string]bool) assertion.Assertion {
		conjuncts := []assertion.Assertion{facts}
		if receiver != nil && !omit[OmitThis] {
			conjuncts = append(conjuncts, receiver)
		}
		for _, p := range params {
			if !omit[p.name] {
				conjuncts = append(conjuncts, p.post)
			}
		}
		conjuncts = append(conjuncts, scoped...)
		if !omit[OmitRet] {
			conjuncts = append(conjuncts, ret)
		}
		return assertion.SCL(conjuncts...)
	}

	spec := &Spec{Function: fn, ID: fn.ID}
	switch {
	case fn.Constructor:
		cls, err := ctx.Class(fn.Owner)
		if err != nil {
			return nil, err
		}
		protos, err := cls.DescendantProtos()
		if err != nil {
			return nil, err
		}
		fresh := make([]assertion.Assertion, len(protos))
		for i, p := range protos {
			fresh[i] = assertion.JSObject{Obj: assertion.Receiver, Proto: p}
		}
		spec.Pre = assertion.SCL(append([]assertion.Assertion{
			assertion.Or(fresh...),
			assertion.EmptyFields{Obj: assertion.Receiver},
		}, body()...)...)
		spec.post = func(this assertion.Assertion, omit map[string]bool) (assertion.Assertion, error) {
			obj, ok := this.(assertion.JSObject)
			if !ok {
				return nil, fmt.Errorf("%s: constructor receiver %v: %w", fn.ID, this, ErrReceiverShape)
			}
			exact, ok := ctx.ClassByProto(obj.Proto)
			if !ok {
				return nil, fmt.Errorf("%s: prototype %s: %w", fn.ID, obj.Proto, hierarchy.ErrUnknownClass)
			}
			return post(exact.ExactAssertion(assertion.Receiver, obj.Proto), omit), nil
		}

	case fn.IsMethod():
		receiver, err := ctx.ClassAssertion(fn.Owner, assertion.Receiver)
		if err != nil {
			return nil, err
		}
		spec.Pre = assertion.SCL(append([]assertion.Assertion{facts, receiver}, body()[1:]...)...)
		spec.post = func(this assertion.Assertion, omit map[string]bool) (assertion.Assertion, error) {
			if this == nil {
				return nil, fmt.Errorf("%s: %w", fn.ID, ErrMissingReceiver)
			}
			return post(this, omit), nil
		}

	default:
		spec.Pre = assertion.SCL(body()...)
		spec.post = func(this assertion.Assertion, omit map[string]bool) (assertion.Assertion, error) {
			if this != nil {
				return nil, fmt.Errorf("%s: receiver in free function: %w", fn.ID, ErrReceiverShape)
			}
			return post(nil, omit), nil
		}
	}
	return spec, nil
}

// Block is one emitted (pre, post) pair.
type Block struct {
	ID   string `json:"id" yaml:"id"`
	Pre  string `json:"pre" yaml:"pre"`
	Post string `json:"post" yaml:"post"`
}

func (b Block) String() string {
	var sb strings.Builder
	sb.WriteString("@id ")
	sb.WriteString(b.ID)
	sb.WriteString("\n@pre ")
	sb.WriteString(b.Pre)
	sb.WriteString("\n@post ")
	sb.WriteString(b.Post)
	return sb.String()
}

// Combine pairs every DNF branch of the pre-condition with every DNF branch
// of the post-condition computed from that branch's receiver assertion.
func (s *Spec) Combine(omit []string) ([]Block, error) {
	set := omitSet(omit)
	pres := assertion.DNF(s.Pre).Branches
	if len(pres) == 0 {
		return nil, fmt.Errorf("%s: pre-condition: %w", s.ID, ErrNoBranches)
	}
	var blocks []Block
	for _, pre := range pres {
		this, _, err := assertion.ThisAssertion(pre)
		if err != nil {
			return nil, err
		}
		post, err := s.post(this, set)
		if err != nil {
			return nil, err
		}
		preText, err := assertion.Render(pre)
		if err != nil {
			return nil, err
		}
		posts := assertion.DNF(post).Branches
		if len(posts) == 0 {
			return nil, fmt.Errorf("%s: post-condition: %w", s.ID, ErrNoBranches)
		}
		for _, branch := range posts {
			postText, err := assertion.Render(branch)
			if err != nil {
				return nil, err
			}
			blocks = append(blocks, Block{ID: s.ID, Pre: preText, Post: postText})
		}
	}
	return blocks, nil
}

// Result holds the blocks emitted for one function.
type Result struct {
	Function *types.Function
	Blocks   []Block
}

// Generate synthesizes and combines the spec of fn.
func Generate(ctx Context, fn *types.Function, omit []string) (Result, error) {
	spec, err := Synthesize(ctx, fn)
	if err != nil {
		return Result{}, err
	}
	blocks, err := spec.Combine(omit)
	if err != nil {
		return Result{}, err
	}
	return Result{Function: fn, Blocks: blocks}, nil
}
