package parser

import (
	"encoding/json"
	"fmt"
	"strings"
)

// NodeType defines different node types for AST construction.
type NodeType int

const (
	NodeProgram NodeType = iota
	NodeStatementList
	NodeAssignment
	NodeIfStatement
	NodeDoLoop
	NodeBinaryOp
	NodeIdentifier
	NodeNumberLiteral
)

var nodeTypeNames = [...]string{
	NodeProgram:       "Program",
	NodeStatementList: "StatementList",
	NodeAssignment:    "Assignment",
	NodeIfStatement:   "IfStatement",
	NodeDoLoop:        "DoLoop",
	NodeBinaryOp:      "BinaryOp",
	NodeIdentifier:    "Identifier",
	NodeNumberLiteral: "NumberLiteral",
}

func (t NodeType) String() string {
	if t >= 0 && int(t) < len(nodeTypeNames) {
		return nodeTypeNames[t]
	}
	return fmt.Sprintf("NodeType(%d)", int(t))
}

func (t NodeType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Node is an AST node. Each node owns its children; the tree has no
// parent links and no shared subtrees.
//
// Value holds the identifier name (string) for Identifier, the number
// (int64 or float64) for NumberLiteral and the operator symbol (string)
// for BinaryOp. It is nil for every other type.
type Node struct {
	Type     NodeType
	Children []Node
	Value    any
	Line     int
	Column   int
}

// String renders the tree, one node per line, children indented.
func (n Node) String() string {
	var b strings.Builder
	n.write(&b, 0)
	return strings.TrimRight(b.String(), "\n")
}

func (n Node) write(b *strings.Builder, depth int) {
	b.WriteString(strings.Repeat("  ", depth))
	b.WriteString(n.Label())
	b.WriteByte('\n')
	for _, child := range n.Children {
		child.write(b, depth+1)
	}
}

// Label returns "Type" or "Type(value)".
func (n Node) Label() string {
	if n.Value == nil {
		return n.Type.String()
	}
	return fmt.Sprintf("%s(%v)", n.Type, n.Value)
}

type jsonNode struct {
	Type     NodeType `json:"type"`
	Value    any      `json:"value,omitempty"`
	Line     int      `json:"line"`
	Column   int      `json:"column"`
	Children []Node   `json:"children,omitempty"`
}

func (n Node) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonNode{
		Type:     n.Type,
		Value:    n.Value,
		Line:     n.Line,
		Column:   n.Column,
		Children: n.Children,
	})
}

// Walk visits n and its descendants in pre-order. Returning false from
// fn skips the children of the visited node.
func Walk(n *Node, fn func(n *Node, depth int) bool) {
	walk(n, 0, fn)
}

func walk(n *Node, depth int, fn func(*Node, int) bool) {
	if !fn(n, depth) {
		return
	}
	for i := range n.Children {
		walk(&n.Children[i], depth+1, fn)
	}
}

// Validate checks the structural invariants of a tree rooted at a
// Program node and returns the first violation found.
func (n *Node) Validate() error {
	if n.Type != NodeProgram {
		return fmt.Errorf("root is %s, want Program", n.Type)
	}
	var err error
	Walk(n, func(node *Node, _ int) bool {
		if err != nil {
			return false
		}
		err = node.checkShape()
		return err == nil
	})
	return err
}

func (n *Node) checkShape() error {
	want := -1
	switch n.Type {
	case NodeProgram:
		want = 1
		if len(n.Children) == 1 && n.Children[0].Type != NodeStatementList {
			return n.shapeErr("child is %s, want StatementList", n.Children[0].Type)
		}
	case NodeStatementList:
		for _, c := range n.Children {
			if !c.isStatement() {
				return n.shapeErr("child %s is not a statement", c.Type)
			}
		}
	case NodeAssignment:
		want = 2
		if len(n.Children) == 2 && n.Children[0].Type != NodeIdentifier {
			return n.shapeErr("target is %s, want Identifier", n.Children[0].Type)
		}
	case NodeIfStatement:
		want = 2
		if len(n.Children) == 2 && n.Children[1].Type != NodeStatementList {
			return n.shapeErr("body is %s, want StatementList", n.Children[1].Type)
		}
	case NodeDoLoop:
		want = 4
		if len(n.Children) == 4 && (n.Children[0].Type != NodeIdentifier || n.Children[3].Type != NodeStatementList) {
			return n.shapeErr("malformed loop header or body")
		}
	case NodeBinaryOp:
		want = 2
		if op, ok := n.Value.(string); !ok || op == "" {
			return n.shapeErr("missing operator")
		}
	case NodeIdentifier:
		want = 0
		if name, ok := n.Value.(string); !ok || name == "" {
			return n.shapeErr("missing name")
		}
	case NodeNumberLiteral:
		want = 0
		switch n.Value.(type) {
		case int64, float64:
		default:
			return n.shapeErr("value %v is not a number", n.Value)
		}
	default:
		return n.shapeErr("unknown node type")
	}
	if want >= 0 && len(n.Children) != want {
		return n.shapeErr("has %d children, want %d", len(n.Children), want)
	}
	return nil
}

func (n *Node) isStatement() bool {
	switch n.Type {
	case NodeAssignment, NodeIfStatement, NodeDoLoop:
		return true
	default:
		return false
	}
}

func (n *Node) shapeErr(format string, args ...any) error {
	return fmt.Errorf("%s at %d:%d: %s", n.Type, n.Line, n.Column, fmt.Sprintf(format, args...))
}
