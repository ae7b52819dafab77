package lib

import "fmt"

// Value is whatever a backend uses to represent an intermediate result.
type Value interface{}

// Backend is the capability the code generator drives. Implementations keep
// their own prototype bookkeeping: DeclarePrototype must reject a parameter
// count that differs from an earlier declaration of the same name and
// DefineFunction must reject a second body for the same function.
type Backend interface {
	DeclarePrototype(name string, paramCount int) (*Function, error)
	DefineFunction(fn *Function, paramNames []string, body func(FunctionBuilder) (Value, error)) error
	// Undeclare drops a prototype that never got a body.
	Undeclare(name string)
}

// FunctionBuilder builds the body of one function.
type FunctionBuilder interface {
	Constant(v float64) Value
	Parameter(index int, name string) Value
	Binary(op Operator, left, right Value) (Value, error)
	Call(callee *Function, args []Value) (Value, error)
	// Conditional evaluates cond and joins whichever branch ran into a
	// single value.
	Conditional(cond Value, then, otherwise func() (Value, error)) (Value, error)
}

// Generator walks a tree and drives a Backend. Prototypes of a whole program
// are declared before any body is built, so a body may call a function whose
// def comes later in the file.
type Generator struct {
	backend   Backend
	functions map[string]*Function

	// state for the function currently being built
	current *Function
	builder FunctionBuilder
	scope   map[string]Value
	result  Value

	anonCount int
}

func NewGenerator(backend Backend) *Generator {
	return &Generator{
		backend:   backend,
		functions: map[string]*Function{},
	}
}

// Generate feeds every element of prog to the backend in file order. When it
// fails, the prototypes it introduced that still have no body are dropped
// again, so the same names can be declared afresh.
func (g *Generator) Generate(prog Program) error {
	introduced := []string{}
	for _, elem := range prog.Elements {
		name := elem.FunctionPrototype().Name()
		_, known := g.functions[name]
		if err := elem.FunctionPrototype().Accept(g); err != nil {
			g.forget(introduced)
			return err
		}
		if !known {
			introduced = append(introduced, name)
		}
	}
	for _, elem := range prog.Elements {
		if err := elem.Accept(g); err != nil {
			g.forget(introduced)
			return err
		}
	}
	return nil
}

func (g *Generator) forget(names []string) {
	for _, name := range names {
		fn, exists := g.functions[name]
		if !exists || fn.Defined {
			continue
		}
		g.backend.Undeclare(name)
		delete(g.functions, name)
	}
}

// DefineAnonymous wraps expr in a new parameterless function and returns it.
func (g *Generator) DefineAnonymous(expr Expression) (*Function, error) {
	g.anonCount++
	proto, err := NewPrototype(fmt.Sprintf("__anon_expr%d", g.anonCount), nil)
	if err != nil {
		return nil, err
	}
	def := Definition{Prototype: proto, Body: expr}
	if err := def.Accept(g); err != nil {
		g.forget([]string{proto.Name()})
		return nil, err
	}
	return g.functions[proto.Name()], nil
}

func (g *Generator) VisitPrototype(node Prototype) error {
	fn, err := g.backend.DeclarePrototype(node.Name(), node.Arity())
	if err != nil {
		return err
	}
	g.functions[fn.Name] = fn
	return nil
}

func (g *Generator) VisitDeclaration(node Declaration) error {
	return node.Prototype.Accept(g)
}

func (g *Generator) VisitDefinition(node Definition) error {
	if err := node.Prototype.Accept(g); err != nil {
		return err
	}
	fn := g.functions[node.Prototype.Name()]
	names := node.Prototype.ParameterNames()

	defer func() {
		g.current = nil
		g.builder = nil
		g.scope = nil
		g.result = nil
	}()

	return g.backend.DefineFunction(fn, names, func(b FunctionBuilder) (Value, error) {
		g.current = fn
		g.builder = b
		g.scope = map[string]Value{}
		for i, name := range names {
			g.scope[name] = b.Parameter(i, name)
		}
		return g.eval(node.Body)
	})
}

// eval visits expr and hands back the value it produced.
func (g *Generator) eval(expr Expression) (Value, error) {
	if g.builder == nil {
		return nil, fmt.Errorf("expression outside of a function body")
	}
	if err := expr.Accept(g); err != nil {
		return nil, err
	}
	return g.result, nil
}

func (g *Generator) VisitLiteral(node Literal) error {
	g.result = g.builder.Constant(node.Value)
	return nil
}

func (g *Generator) VisitParameter(node Parameter) error {
	value, exists := g.scope[node.Name]
	if !exists {
		return &SemanticError{Kind: UnknownParameter, Name: g.current.Name, Detail: node.Name}
	}
	g.result = value
	return nil
}

func (g *Generator) VisitBinaryOp(node BinaryOp) error {
	left, err := g.eval(node.Left)
	if err != nil {
		return err
	}
	right, err := g.eval(node.Right)
	if err != nil {
		return err
	}
	g.result, err = g.builder.Binary(node.Op, left, right)
	return err
}

func (g *Generator) VisitCall(node Call) error {
	callee, exists := g.functions[node.Name]
	if !exists {
		return &SemanticError{Kind: UnknownFunction, Name: node.Name}
	}
	if callee.Arity != len(node.Args) {
		return &SemanticError{
			Kind:     PrototypeMismatch,
			Name:     node.Name,
			Expected: callee.Arity,
			Actual:   len(node.Args),
		}
	}

	args := []Value{}
	for _, arg := range node.Args {
		value, err := g.eval(arg)
		if err != nil {
			return err
		}
		args = append(args, value)
	}

	value, err := g.builder.Call(callee, args)
	if err != nil {
		return err
	}
	g.result = value
	return nil
}

func (g *Generator) VisitConditional(node Conditional) error {
	cond, err := g.eval(node.Condition)
	if err != nil {
		return err
	}
	value, err := g.builder.Conditional(
		cond,
		func() (Value, error) { return g.eval(node.Then) },
		func() (Value, error) { return g.eval(node.Else) },
	)
	if err != nil {
		return err
	}
	g.result = value
	return nil
}
