package ast

import (
	"encoding/json"
	"fmt"
)

// rawNode mirrors the JSON node shape from spec §3/§6:
// { type, [expressionType|predicateType|transitionType|blockType], variant, properties }.
type rawNode struct {
	Type           string                     `json:"type"`
	ExpressionType string                     `json:"expressionType"`
	PredicateType  string                     `json:"predicateType"`
	TransitionType string                     `json:"transitionType"`
	BlockType      string                     `json:"blockType"`
	Variant        string                     `json:"variant"`
	Properties     map[string]json.RawMessage `json:"properties"`
}

var knownTypes = map[string]Type{
	"JOURNEY":    Journey,
	"STEP":       Step,
	"BLOCK":      Block,
	"EXPRESSION": Expression,
	"PREDICATE":  Predicate,
	"TRANSITION": Transition,
}

// UnknownTypeError is returned when a node's "type" (or its sub-kind
// discriminant) does not match any kind the engine understands.
type UnknownTypeError struct {
	Field string
	Value string
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("unknown %s %q", e.Field, e.Value)
}

// Decode parses a single JSON-encoded node, recursively decoding any nested
// node-shaped values found in its properties, and allocates a fresh
// CompileAST identity for it and every descendant via alloc. This is step 1
// of the compilation pipeline (spec §4.1); parent/property metadata,
// step-descendant flags, pseudo-node generation, handler registration and
// wiring all happen in later passes (package compiler).
func Decode(raw json.RawMessage, alloc *Allocator) (*Node, error) {
	v, err := decodeValue(raw, alloc)
	if err != nil {
		return nil, err
	}
	n, ok := v.(*Node)
	if !ok {
		return nil, fmt.Errorf("root document is not a node")
	}
	return n, nil
}

// decodeValue decodes an arbitrary JSON value into: nil, bool, float64,
// string, []any, map[string]any, or *Node — recognizing node-shaped objects
// (anything with a "type" key naming a known Type) at any depth, so a
// dynamic path segment nested three levels inside an array of objects still
// comes back as a *Node rather than an untyped map.
func decodeValue(raw json.RawMessage, alloc *Allocator) (any, error) {
	trimmed := trimSpace(raw)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return nil, nil
	}

	switch trimmed[0] {
	case '{':
		var probe struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(raw, &probe); err != nil {
			return nil, err
		}
		if _, known := knownTypes[probe.Type]; known {
			return decodeNode(raw, alloc)
		}
		var m map[string]json.RawMessage
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, err
		}
		out := make(map[string]any, len(m))
		for k, rv := range m {
			dv, err := decodeValue(rv, alloc)
			if err != nil {
				return nil, err
			}
			out[k] = dv
		}
		return out, nil
	case '[':
		var arr []json.RawMessage
		if err := json.Unmarshal(raw, &arr); err != nil {
			return nil, err
		}
		out := make([]any, 0, len(arr))
		for _, rv := range arr {
			dv, err := decodeValue(rv, alloc)
			if err != nil {
				return nil, err
			}
			out = append(out, dv)
		}
		return out, nil
	default:
		var prim any
		if err := json.Unmarshal(raw, &prim); err != nil {
			return nil, err
		}
		return prim, nil
	}
}

func decodeNode(raw json.RawMessage, alloc *Allocator) (*Node, error) {
	var rn rawNode
	if err := json.Unmarshal(raw, &rn); err != nil {
		return nil, err
	}

	kind, ok := knownTypes[rn.Type]
	if !ok {
		return nil, &UnknownTypeError{Field: "type", Value: rn.Type}
	}

	subKind, err := subKindFor(kind, rn)
	if err != nil {
		return nil, err
	}

	props := make(Properties, len(rn.Properties))
	for name, rv := range rn.Properties {
		dv, err := decodeValue(rv, alloc)
		if err != nil {
			return nil, fmt.Errorf("property %q: %w", name, err)
		}
		props[name] = dv
	}

	id := alloc.Next()
	return NewNode(id, kind, subKind, rn.Variant, props), nil
}

func subKindFor(kind Type, rn rawNode) (string, error) {
	switch kind {
	case Expression:
		switch rn.ExpressionType {
		case Reference, Pipeline, Format, Conditional, Iterate, Validation, Next, Function:
			return rn.ExpressionType, nil
		default:
			return "", &UnknownTypeError{Field: "expressionType", Value: rn.ExpressionType}
		}
	case Predicate:
		switch rn.PredicateType {
		case Test, And, Or, Xor, Not:
			return rn.PredicateType, nil
		default:
			return "", &UnknownTypeError{Field: "predicateType", Value: rn.PredicateType}
		}
	case Transition:
		switch rn.TransitionType {
		case Access, Action, Submit:
			return rn.TransitionType, nil
		default:
			return "", &UnknownTypeError{Field: "transitionType", Value: rn.TransitionType}
		}
	case Block:
		switch rn.BlockType {
		case Basic, Field, Collection:
			return rn.BlockType, nil
		default:
			return "", &UnknownTypeError{Field: "blockType", Value: rn.BlockType}
		}
	default:
		return "", nil
	}
}

func trimSpace(raw json.RawMessage) json.RawMessage {
	i, j := 0, len(raw)
	for i < j && isSpace(raw[i]) {
		i++
	}
	for j > i && isSpace(raw[j-1]) {
		j--
	}
	return raw[i:j]
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}
