package wasmhost

import (
	"fmt"

	"github.com/tetratelabs/wazero/api"
	"go.bytecodealliance.org/wit"
)

// Addresses are guest memory offsets; lengths are element counts.
var (
	address = wit.U32{}
	count   = wit.U32{}

	store       = &wit.TypeDef{Kind: &wit.Resource{}}
	ownStore    = &wit.TypeDef{Kind: &wit.Own{Type: store}}
	borrowStore = &wit.TypeDef{Kind: &wit.Borrow{Type: store}}

	pair = &wit.TypeDef{Kind: &wit.Tuple{Types: []wit.Type{wit.U32{}, wit.U32{}}}}
)

type param struct {
	name string
	typ  wit.Type
}

type signature struct {
	name    string
	params  []param
	results []wit.Type
}

// catalogue lists the host functions in export order.
var catalogue = []signature{
	{name: "emit_greeting"},
	{name: "contains_substring", params: []param{{"text", address}}, results: []wit.Type{wit.Bool{}}},
	{name: "increment_buffer", params: []param{{"len", count}, {"array", address}}},
	{name: "increment_buffer_via_collaborator", params: []param{{"len", count}, {"array", address}}},
	{name: "double_via_collaborator", params: []param{{"input", wit.S32{}}}, results: []wit.Type{wit.S32{}}},
	{name: "grapheme_count", params: []param{{"text", address}}, results: []wit.Type{wit.U32{}}},
	{name: "byte_count", params: []param{{"text", address}}, results: []wit.Type{wit.U32{}}},
	{name: "produce_owned_text", results: []wit.Type{address}},
	{name: "release_owned_text", params: []param{{"text", address}}},
	{name: "sum_of_even", params: []param{{"array", address}, {"len", count}}, results: []wit.Type{wit.U32{}}},
	{name: "flip_pair", params: []param{{"pair", pair}}, results: []wit.Type{pair}},
	{name: "store_new", results: []wit.Type{ownStore}},
	{name: "store_free", params: []param{{"store", ownStore}}},
	{name: "store_populate", params: []param{{"store", borrowStore}}},
	{name: "store_query", params: []param{{"store", borrowStore}, {"zip", address}}, results: []wit.Type{wit.U32{}}},
}

// coreTypes flattens the signature into core wasm parameter and result types.
func (s signature) coreTypes() (params, results []api.ValueType, err error) {
	for _, p := range s.params {
		flat, err := flatten(p.typ)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: param %s: %w", s.name, p.name, err)
		}
		params = append(params, flat...)
	}
	for _, r := range s.results {
		flat, err := flatten(r)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: result: %w", s.name, err)
		}
		results = append(results, flat...)
	}
	return params, results, nil
}

// paramNames repeats a parameter's name once per flattened value.
func (s signature) paramNames() []string {
	var names []string
	for _, p := range s.params {
		flat, _ := flatten(p.typ)
		if len(flat) == 1 {
			names = append(names, p.name)
			continue
		}
		for i := range flat {
			names = append(names, fmt.Sprintf("%s.%d", p.name, i))
		}
	}
	return names
}

// flatten covers the subset of WIT the catalogue uses.
func flatten(t wit.Type) ([]api.ValueType, error) {
	switch t := t.(type) {
	case wit.Bool, wit.U8, wit.S8, wit.U16, wit.S16, wit.U32, wit.S32, wit.Char:
		return []api.ValueType{api.ValueTypeI32}, nil
	case wit.U64, wit.S64:
		return []api.ValueType{api.ValueTypeI64}, nil
	case *wit.TypeDef:
		switch kind := t.Kind.(type) {
		case *wit.Own, *wit.Borrow:
			return []api.ValueType{api.ValueTypeI32}, nil
		case *wit.Tuple:
			var out []api.ValueType
			for _, elem := range kind.Types {
				flat, err := flatten(elem)
				if err != nil {
					return nil, err
				}
				out = append(out, flat...)
			}
			return out, nil
		}
		return nil, fmt.Errorf("unsupported type definition %T", t.Kind)
	}
	return nil, fmt.Errorf("unsupported type %T", t)
}
