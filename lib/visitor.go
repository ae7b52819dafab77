package lib

// Visitor has one handler per node variant. Accept calls exactly the handler
// that matches the node's type, so a consumer never needs its own type switch
// over the tree.
type Visitor interface {
	VisitLiteral(node Literal) error
	VisitParameter(node Parameter) error
	VisitBinaryOp(node BinaryOp) error
	VisitCall(node Call) error
	VisitConditional(node Conditional) error
	VisitPrototype(node Prototype) error
	VisitDeclaration(node Declaration) error
	VisitDefinition(node Definition) error
}

func (l Literal) Accept(v Visitor) error     { return v.VisitLiteral(l) }
func (p Parameter) Accept(v Visitor) error   { return v.VisitParameter(p) }
func (b BinaryOp) Accept(v Visitor) error    { return v.VisitBinaryOp(b) }
func (c Call) Accept(v Visitor) error        { return v.VisitCall(c) }
func (c Conditional) Accept(v Visitor) error { return v.VisitConditional(c) }
func (p Prototype) Accept(v Visitor) error   { return v.VisitPrototype(p) }
func (d Declaration) Accept(v Visitor) error { return v.VisitDeclaration(d) }
func (d Definition) Accept(v Visitor) error  { return v.VisitDefinition(d) }
