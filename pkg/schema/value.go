package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Kind discriminates the closed set of document value types.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	}
	return "unknown"
}

// Member is a single key/value entry of an object. Entries keep the order
// they appear in the source document, so violations can be reported in
// document order.
type Member struct {
	Key   string
	Value *Value
}

// Value is one node of a parsed document. The payload field selected by
// Kind is meaningful; the rest are zero.
type Value struct {
	Kind    Kind
	Bool    bool
	Num     string // lexical form of the number
	Str     string
	Items   []*Value
	Members []Member
}

// Get returns the value of the named object member.
func (v *Value) Get(key string) (*Value, bool) {
	if v == nil || v.Kind != KindObject {
		return nil, false
	}
	for _, m := range v.Members {
		if m.Key == key {
			return m.Value, true
		}
	}
	return nil, false
}

// Interface converts the tree to the generic form produced by
// json.Unmarshal (map[string]any, []any, float64, ...). Member order is
// lost; generic JSON Schema engines don't need it.
func (v *Value) Interface() any {
	if v == nil {
		return nil
	}
	switch v.Kind {
	case KindBool:
		return v.Bool
	case KindNumber:
		f, err := strconv.ParseFloat(v.Num, 64)
		if err != nil {
			return v.Num
		}
		return f
	case KindString:
		return v.Str
	case KindArray:
		items := make([]any, len(v.Items))
		for i, it := range v.Items {
			items[i] = it.Interface()
		}
		return items
	case KindObject:
		obj := make(map[string]any, len(v.Members))
		for _, m := range v.Members {
			obj[m.Key] = m.Value.Interface()
		}
		return obj
	}
	return nil
}

// ParseJSON reads a single JSON document into the generic tree. Unlike
// json.Unmarshal it preserves object member order, which is why it walks
// the token stream itself. A malformed document returns an error and no
// tree.
func ParseJSON(r io.Reader) (*Value, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	v, err := parseJSONValue(dec)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("parse document: empty input")
		}
		return nil, fmt.Errorf("parse document: %w", err)
	}
	if dec.More() {
		return nil, errors.New("parse document: trailing content after top-level value")
	}
	return v, nil
}

func parseJSONValue(dec *json.Decoder) (*Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	return parseJSONToken(dec, tok)
}

func parseJSONToken(dec *json.Decoder, tok json.Token) (*Value, error) {
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			obj := &Value{Kind: KindObject}
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("object key is %T, want string", keyTok)
				}
				val, err := parseJSONValue(dec)
				if err != nil {
					return nil, err
				}
				obj.Members = append(obj.Members, Member{Key: key, Value: val})
			}
			if _, err := dec.Token(); err != nil { // consume '}'
				return nil, err
			}
			return obj, nil
		case '[':
			arr := &Value{Kind: KindArray}
			for dec.More() {
				val, err := parseJSONValue(dec)
				if err != nil {
					return nil, err
				}
				arr.Items = append(arr.Items, val)
			}
			if _, err := dec.Token(); err != nil { // consume ']'
				return nil, err
			}
			return arr, nil
		}
		return nil, fmt.Errorf("unexpected delimiter %v", t)
	case nil:
		return &Value{Kind: KindNull}, nil
	case bool:
		return &Value{Kind: KindBool, Bool: t}, nil
	case json.Number:
		return &Value{Kind: KindNumber, Num: t.String()}, nil
	case string:
		return &Value{Kind: KindString, Str: t}, nil
	}
	return nil, fmt.Errorf("unexpected token %T", tok)
}

// ParseYAML reads a single YAML document into the generic tree. yaml.Node
// keeps mapping order natively, so no token walking is needed.
func ParseYAML(r io.Reader) (*Value, error) {
	var root yaml.Node
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("parse document: empty input")
		}
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return fromYAMLNode(&root)
}

func fromYAMLNode(n *yaml.Node) (*Value, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return &Value{Kind: KindNull}, nil
		}
		return fromYAMLNode(n.Content[0])
	case yaml.AliasNode:
		return fromYAMLNode(n.Alias)
	case yaml.MappingNode:
		obj := &Value{Kind: KindObject}
		for i := 0; i+1 < len(n.Content); i += 2 {
			val, err := fromYAMLNode(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			obj.Members = append(obj.Members, Member{Key: n.Content[i].Value, Value: val})
		}
		return obj, nil
	case yaml.SequenceNode:
		arr := &Value{Kind: KindArray}
		for _, c := range n.Content {
			val, err := fromYAMLNode(c)
			if err != nil {
				return nil, err
			}
			arr.Items = append(arr.Items, val)
		}
		return arr, nil
	case yaml.ScalarNode:
		switch n.Tag {
		case "!!null":
			return &Value{Kind: KindNull}, nil
		case "!!bool":
			b, err := strconv.ParseBool(n.Value)
			if err != nil {
				return &Value{Kind: KindString, Str: n.Value}, nil
			}
			return &Value{Kind: KindBool, Bool: b}, nil
		case "!!int", "!!float":
			return &Value{Kind: KindNumber, Num: n.Value}, nil
		default:
			return &Value{Kind: KindString, Str: n.Value}, nil
		}
	}
	return nil, fmt.Errorf("unexpected yaml node kind %v", n.Kind)
}
