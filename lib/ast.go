package lib

type Program struct {
	Elements []TopLevel
}

// Node is anything a Visitor can be dispatched on.
type Node interface {
	Accept(v Visitor) error
}

type Expression interface {
	Node
	isExpression()
}

func (l Literal) isExpression()     {}
func (p Parameter) isExpression()   {}
func (b BinaryOp) isExpression()    {}
func (c Call) isExpression()        {}
func (c Conditional) isExpression() {}

// TopLevel is a Declaration or a Definition.
type TopLevel interface {
	Node
	isTopLevel()
	FunctionPrototype() Prototype
}

func (d Declaration) isTopLevel() {}
func (d Definition) isTopLevel()  {}

type Literal struct {
	Value float64
}

// Parameter refers to one of the enclosing function's parameters by name.
type Parameter struct {
	Name string
}

type BinaryOp struct {
	Left  Expression
	Op    Operator
	Right Expression
}

// Call applies Name to Args. Expression nodes are plain values whose slices
// are shared when a node is copied; only Prototype hides its fields, because
// NewPrototype has to keep the parameter names distinct.
type Call struct {
	Name string
	Args []Expression
}

type Conditional struct {
	Condition Expression
	Then      Expression
	Else      Expression
}

// Prototype is a function name plus its ordered, pairwise distinct parameter
// names. The only way to build one is NewPrototype.
type Prototype struct {
	name           string
	parameterNames []string
}

func NewPrototype(name string, parameterNames []string) (Prototype, error) {
	seen := map[string]bool{}
	for _, param := range parameterNames {
		if seen[param] {
			return Prototype{}, &SemanticError{
				Kind:   DuplicateParameter,
				Name:   name,
				Detail: param,
			}
		}
		seen[param] = true
	}

	names := make([]string, len(parameterNames))
	copy(names, parameterNames)
	return Prototype{name: name, parameterNames: names}, nil
}

func (p Prototype) Name() string {
	return p.name
}

// ParameterNames returns a copy of the parameter names.
func (p Prototype) ParameterNames() []string {
	names := make([]string, len(p.parameterNames))
	copy(names, p.parameterNames)
	return names
}

func (p Prototype) Arity() int {
	return len(p.parameterNames)
}

type Declaration struct {
	Prototype Prototype
}

type Definition struct {
	Prototype Prototype
	Body      Expression
}

func (d Declaration) FunctionPrototype() Prototype { return d.Prototype }
func (d Definition) FunctionPrototype() Prototype  { return d.Prototype }
