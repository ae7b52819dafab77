package lib

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Printer is a Visitor that writes a nested, indented dump of the tree:
//
//	BinaryOp {
//	  op: Add,
//	  left: Literal { value: 1 },
//	  right: Parameter { name: "x" }
//	}
//
// The dump is for diagnostics only. It is not source text and cannot be fed
// back into the parser.
type Printer struct {
	w      io.Writer
	indent int
	err    error
}

func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// Print writes node followed by a newline.
func (p *Printer) Print(node Node) error {
	if err := node.Accept(p); err != nil {
		return err
	}
	p.write("\n")
	return p.err
}

// FormatNode renders node the same way Print does, without the final newline.
func FormatNode(node Node) string {
	var sb strings.Builder
	p := NewPrinter(&sb)
	_ = node.Accept(p)
	return sb.String()
}

func (p *Printer) write(s string) {
	if p.err != nil {
		return
	}
	_, p.err = io.WriteString(p.w, s)
}

func (p *Printer) newline() {
	p.write("\n" + strings.Repeat("  ", p.indent))
}

// field starts a new line holding "name: " and then the child node.
func (p *Printer) field(name string, child Node, last bool) {
	p.newline()
	p.write(name + ": ")
	_ = child.Accept(p)
	if !last {
		p.write(",")
	}
}

func (p *Printer) open(kind string) {
	p.write(kind + " {")
	p.indent++
}

func (p *Printer) close() {
	p.indent--
	p.newline()
	p.write("}")
}

func (p *Printer) VisitLiteral(node Literal) error {
	p.write(fmt.Sprintf("Literal { value: %s }", formatNumber(node.Value)))
	return p.err
}

func (p *Printer) VisitParameter(node Parameter) error {
	p.write(fmt.Sprintf("Parameter { name: %s }", strconv.Quote(node.Name)))
	return p.err
}

func (p *Printer) VisitBinaryOp(node BinaryOp) error {
	p.open("BinaryOp")
	p.newline()
	p.write(fmt.Sprintf("op: %s,", node.Op))
	p.field("left", node.Left, false)
	p.field("right", node.Right, true)
	p.close()
	return p.err
}

func (p *Printer) VisitCall(node Call) error {
	p.open("Call")
	p.newline()
	p.write(fmt.Sprintf("name: %s,", strconv.Quote(node.Name)))
	p.newline()
	if len(node.Args) == 0 {
		p.write("args: []")
		p.close()
		return p.err
	}

	p.write("args: [")
	p.indent++
	for i, arg := range node.Args {
		p.newline()
		_ = arg.Accept(p)
		if i < len(node.Args)-1 {
			p.write(",")
		}
	}
	p.indent--
	p.newline()
	p.write("]")
	p.close()
	return p.err
}

func (p *Printer) VisitConditional(node Conditional) error {
	p.open("Conditional")
	p.field("condition", node.Condition, false)
	p.field("then", node.Then, false)
	p.field("else", node.Else, true)
	p.close()
	return p.err
}

func (p *Printer) VisitPrototype(node Prototype) error {
	quoted := []string{}
	for _, name := range node.ParameterNames() {
		quoted = append(quoted, strconv.Quote(name))
	}
	p.write(fmt.Sprintf(
		"Prototype { name: %s, parameter_names: [%s] }",
		strconv.Quote(node.Name()),
		strings.Join(quoted, ", ")))
	return p.err
}

func (p *Printer) VisitDeclaration(node Declaration) error {
	p.open("Declaration")
	p.field("prototype", node.Prototype, true)
	p.close()
	return p.err
}

func (p *Printer) VisitDefinition(node Definition) error {
	p.open("Definition")
	p.field("prototype", node.Prototype, false)
	p.field("body", node.Body, true)
	p.close()
	return p.err
}

// DumpProgram prints every element of prog, one after the other.
func DumpProgram(w io.Writer, prog Program) error {
	p := NewPrinter(w)
	for _, elem := range prog.Elements {
		if err := p.Print(elem); err != nil {
			return err
		}
	}
	return nil
}
