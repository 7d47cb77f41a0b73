package program

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gnolang/tspec/internal/tsast"
	"github.com/gnolang/tspec/internal/types"
)

var ErrUnknownType = errors.New("type references an undeclared name")

// ResolveType converts a type node into a types.Type. Object types with an
// index signature register a new index signature predicate.
func (p *Program) ResolveType(t *tsast.TypeNode) (types.Type, error) {
	if t == nil {
		return nil, ErrMissingType
	}
	if prim, ok := types.LookupPrimitive(t.Kind); ok {
		return prim, nil
	}
	switch t.Kind {
	case tsast.TypeAny:
		return types.Any{}, nil
	case tsast.TypeLiteral:
		return types.StringLiteral{Value: t.Value}, nil
	case tsast.TypeThis:
		return types.This{}, nil
	case tsast.TypeInterface:
		if _, ok := p.interfaces[t.Name]; !ok {
			return nil, fmt.Errorf("interface %s: %w", t.Name, ErrUnknownType)
		}
		return types.InterfaceRef{Name: t.Name}, nil
	case tsast.TypeClass:
		if _, ok := p.Classes.Get(t.Name); !ok {
			return nil, fmt.Errorf("%s: %w", t.Name, ErrUnknownClass)
		}
		return types.ClassRef{Name: t.Name}, nil
	case tsast.TypeRef:
		if _, ok := p.Classes.Get(t.Name); ok {
			return types.ClassRef{Name: t.Name}, nil
		}
		if _, ok := p.interfaces[t.Name]; ok {
			return types.InterfaceRef{Name: t.Name}, nil
		}
		return nil, fmt.Errorf("%s: %w", t.Name, ErrUnknownType)
	case tsast.TypeUnion:
		if len(t.Members) == 0 {
			return nil, fmt.Errorf("union with no members: %w", types.ErrUnsupportedType)
		}
		members := make([]types.Type, 0, len(t.Members))
		for _, m := range t.Members {
			mt, err := p.ResolveType(m)
			if err != nil {
				return nil, err
			}
			members = append(members, mt)
		}
		return types.Union{Members: members}, nil
	case tsast.TypeFunction:
		params, err := p.fields(t.Params)
		if err != nil {
			return nil, err
		}
		ret := types.Type(types.Void)
		if t.Returns != nil {
			if ret, err = p.ResolveType(t.Returns); err != nil {
				return nil, err
			}
		}
		return types.FunctionSig{Params: params, Return: ret}, nil
	case tsast.TypeObject:
		return p.objectType(t)
	default:
		return nil, fmt.Errorf("type kind %q: %w", t.Kind, types.ErrUnsupportedType)
	}
}

func (p *Program) objectType(t *tsast.TypeNode) (types.Type, error) {
	fields, err := p.fields(t.Fields)
	if err != nil {
		return nil, err
	}
	obj := types.ObjectLiteral{Fields: fields, Callable: t.Call || t.Construct}
	switch len(t.Index) {
	case 0:
	case 1:
		value, err := p.ResolveType(t.Index[0])
		if err != nil {
			return nil, fmt.Errorf("index signature: %w", err)
		}
		obj.Index = p.addIndexSignature(value)
	default:
		return nil, fmt.Errorf("%d index signatures: %w", len(t.Index), ErrDuplicateIndexSignature)
	}
	return obj, nil
}

func (p *Program) fields(list []*tsast.Field) ([]*types.Variable, error) {
	out := make([]*types.Variable, 0, len(list))
	for _, f := range list {
		t, err := p.ResolveType(f.Type)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.Name, err)
		}
		out = append(out, types.NewVariable(f.Name, t))
	}
	return out, nil
}

func (p *Program) addIndexSignature(value types.Type) *types.IndexSignature {
	sig := &types.IndexSignature{
		Pred:  fmt.Sprintf("IndexSig%d", len(p.indexSigs)),
		Value: value,
	}
	p.indexSigs = append(p.indexSigs, sig)
	return sig
}

// Variable implements scope.Resolver. The same declarator always yields the
// same variable.
func (p *Program) Variable(decl *tsast.Node) (*types.Variable, error) {
	if v, ok := p.vars[decl]; ok {
		return v, nil
	}
	if decl.Name == "" {
		return nil, fmt.Errorf("%s: %w", decl, ErrUnnamedDeclaration)
	}
	if decl.Type == nil {
		return nil, fmt.Errorf("%s: %w", decl, ErrMissingType)
	}
	t, err := p.ResolveType(decl.Type)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", decl, err)
	}
	v := types.NewVariable(decl.Name, t)
	p.vars[decl] = v
	return v, nil
}

// Function implements scope.Resolver. Functions are registered on first use.
func (p *Program) Function(n *tsast.Node) (*types.Function, error) {
	if fn, ok := p.functions[n]; ok {
		return fn, nil
	}
	if !n.IsFunction() {
		return nil, tsast.Unexpected(n, "function")
	}

	params := make([]*types.Variable, 0, len(n.Params))
	for _, param := range n.Params {
		v, err := p.Variable(param)
		if err != nil {
			return nil, fmt.Errorf("%s: parameter: %w", n, err)
		}
		params = append(params, v)
	}

	name, id := n.Name, n.ID
	var ret types.Type
	cls := p.owner[n]
	switch {
	case n.Kind == tsast.KindConstructor:
		if cls == nil {
			return nil, tsast.Unexpected(n, "function")
		}
		name = "constructor"
		ret = types.Void
		if cls.Inherits() {
			ret = types.This{}
		}
	case n.Returns == nil:
		return nil, fmt.Errorf("%s: return: %w", n, ErrMissingType)
	default:
		t, err := p.ResolveType(n.Returns)
		if err != nil {
			return nil, fmt.Errorf("%s: return: %w", n, err)
		}
		ret = t
	}

	if id == "" {
		if cls != nil {
			id = cls.Name + "_" + name
		} else {
			key := fmt.Sprintf("%s#%d", p.File.Path, p.position[n])
			id = uuid.NewSHA1(uuid.NameSpaceURL, []byte(key)).String()
		}
	}
	if name == "" {
		name = id
	}

	fn := types.NewFunction(name, id, params, ret)
	p.functions[n] = fn
	p.logger.Debug("function registered", zap.String("id", id), zap.Stringer("node", n))
	return fn, nil
}
