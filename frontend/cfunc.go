package frontend

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	tsc "github.com/smacker/go-tree-sitter/c"

	"github.com/forsyde/f2cc-sub001/errs"
	"github.com/forsyde/f2cc-sub001/ir"
)

// ParseCFunction parses a C function definition (or bare prototype) string —
// the text carried by a comb leaf's constructor argument value — into a
// FunctionRecord. Grounded on inspector/golang/inspector_tree_sitter.go's
// sitter.NewParser()/SetLanguage/ParseCtx shape, retargeted at the bundled C
// grammar instead of Go.
func ParseCFunction(src string) (*ir.FunctionRecord, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(tsc.GetLanguage())

	tree, err := parser.ParseCtx(context.Background(), nil, []byte(src))
	if err != nil {
		return nil, errs.Wrap(errs.InvalidFormat, err, "failed to parse function prototype")
	}
	root := tree.RootNode()
	if root.HasError() {
		return nil, errs.New(errs.InvalidFormat, "function prototype %q has a syntax error", src)
	}

	var defNode *sitter.Node
	for i := 0; i < int(root.ChildCount()); i++ {
		c := root.Child(i)
		switch c.Type() {
		case "function_definition", "declaration":
			defNode = c
		}
	}
	if defNode == nil {
		return nil, errs.New(errs.InvalidFormat, "no function declaration found in %q", src)
	}

	declarator := defNode.ChildByFieldName("declarator")
	if declarator == nil {
		return nil, errs.New(errs.InvalidFormat, "function prototype %q has no declarator", src)
	}

	// declarator is itself a function_declarator wrapping the name and the
	// parameter_list; unwrap pointer_declarator layers (e.g. "int *f(...)")
	// until we reach it.
	for declarator.Type() == "pointer_declarator" {
		declarator = declarator.ChildByFieldName("declarator")
		if declarator == nil {
			return nil, errs.New(errs.InvalidFormat, "function prototype %q has malformed declarator", src)
		}
	}
	if declarator.Type() != "function_declarator" {
		return nil, errs.New(errs.InvalidFormat, "function prototype %q is not a function declarator", src)
	}

	nameNode := declarator.ChildByFieldName("declarator")
	if nameNode == nil {
		return nil, errs.New(errs.InvalidFormat, "function prototype %q has no name", src)
	}
	name := nameNode.Content([]byte(src))

	retTypeNode := defNode.ChildByFieldName("type")
	retType := cTypeFromNode(retTypeNode, []byte(src), defNode)

	paramList := declarator.ChildByFieldName("parameters")
	var params []ir.Parameter
	if paramList != nil {
		for i := 0; i < int(paramList.ChildCount()); i++ {
			pNode := paramList.Child(i)
			if pNode.Type() != "parameter_declaration" {
				continue
			}
			params = append(params, cParamFromNode(pNode, []byte(src)))
		}
	}
	markTrailingOutputParam(params, retType)

	body := ""
	if bodyNode := defNode.ChildByFieldName("body"); bodyNode != nil {
		body = bodyNode.Content([]byte(src))
	}

	f := &ir.FunctionRecord{
		Name:       name,
		Params:     params,
		ReturnType: retType,
		Body:       body,
		Signature:  strings.TrimSpace(src),
	}
	return f, nil
}

// markTrailingOutputParam implements invariant 5's "void-returning function
// with a trailing output parameter" shape: when the declared return type is
// void and the last parameter is a non-const pointer/array, it is the
// function's output channel.
func markTrailingOutputParam(params []ir.Parameter, ret *ir.DataType) {
	if len(params) == 0 {
		return
	}
	if ret != nil && ret.Kind != ir.KindVoid {
		return
	}
	last := &params[len(params)-1]
	if (last.Type.IsPointer || last.Type.IsArray) && !last.Type.IsConst {
		last.IsOutput = true
	}
}

func cParamFromNode(n *sitter.Node, src []byte) ir.Parameter {
	dt := &ir.DataType{}
	var nameNode *sitter.Node

	typeNode := n.ChildByFieldName("type")
	declNode := n.ChildByFieldName("declarator")

	if typeNode != nil {
		dt.Kind = primitiveKindFromText(typeNode.Content(src))
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if n.Child(i).Type() == "type_qualifier" && n.Child(i).Content(src) == "const" {
			dt.IsConst = true
		}
	}

	d := declNode
	for d != nil {
		switch d.Type() {
		case "pointer_declarator":
			dt.IsPointer = true
			d = d.ChildByFieldName("declarator")
		case "array_declarator":
			dt.IsArray = true
			if sizeNode := d.ChildByFieldName("size"); sizeNode != nil {
				if n, ok := parseIntLiteral(sizeNode.Content(src)); ok {
					dt.ArraySize = &n
				}
			}
			d = d.ChildByFieldName("declarator")
		case "identifier":
			nameNode = d
			d = nil
		default:
			d = nil
		}
	}

	name := ""
	if nameNode != nil {
		name = nameNode.Content(src)
	}
	return ir.Parameter{Name: name, Type: dt}
}

func cTypeFromNode(n *sitter.Node, src []byte, defNode *sitter.Node) *ir.DataType {
	dt := &ir.DataType{}
	if n == nil {
		dt.Kind = ir.KindVoid
		return dt
	}
	dt.Kind = primitiveKindFromText(n.Content(src))
	for i := 0; i < int(defNode.ChildCount()); i++ {
		c := defNode.Child(i)
		if c.Type() == "type_qualifier" && c.Content(src) == "const" {
			dt.IsConst = true
		}
	}
	return dt
}

func primitiveKindFromText(t string) ir.PrimitiveKind {
	t = strings.TrimSpace(strings.TrimPrefix(t, "const "))
	switch t {
	case "void":
		return ir.KindVoid
	case "_Bool", "bool":
		return ir.KindBool
	case "char":
		return ir.KindChar
	case "int8_t":
		return ir.KindInt8
	case "short", "int16_t":
		return ir.KindInt16
	case "int", "int32_t", "long":
		return ir.KindInt32
	case "long long", "int64_t":
		return ir.KindInt64
	case "uint8_t", "unsigned char":
		return ir.KindUInt8
	case "uint16_t", "unsigned short":
		return ir.KindUInt16
	case "unsigned int", "uint32_t", "unsigned":
		return ir.KindUInt32
	case "unsigned long long", "uint64_t":
		return ir.KindUInt64
	case "float":
		return ir.KindFloat
	case "double":
		return ir.KindDouble
	default:
		return ir.KindUnknown
	}
}

func parseIntLiteral(s string) (int, bool) {
	s = strings.TrimSpace(s)
	n := 0
	if s == "" {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
	}
	return n, true
}
