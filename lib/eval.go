package lib

import (
	"errors"
	"fmt"
)

// MaxCallDepth bounds recursion inside the Evaluator.
const MaxCallDepth = 10000

var ErrCallDepth = errors.New("maximum call depth exceeded")

type evalState struct {
	depth int
}

// evalFunc is a compiled expression: it reads the arguments of the frame it
// runs in.
type evalFunc func(st *evalState, args []float64) (float64, error)

// Evaluator is a Backend that compiles bodies into Go closures so functions
// can be called right away. Comparisons produce 1 for true and 0 for false
// and a conditional takes its then branch for any non-zero condition.
type Evaluator struct {
	registry *Registry
	bodies   map[string]evalFunc
}

func NewEvaluator() *Evaluator {
	return &Evaluator{
		registry: NewRegistry(),
		bodies:   map[string]evalFunc{},
	}
}

func (e *Evaluator) DeclarePrototype(name string, paramCount int) (*Function, error) {
	return e.registry.Declare(name, paramCount)
}

func (e *Evaluator) DefineFunction(fn *Function, paramNames []string, body func(FunctionBuilder) (Value, error)) error {
	if fn.Defined {
		return &SemanticError{Kind: Redefinition, Name: fn.Name}
	}
	value, err := body(&evalBuilder{evaluator: e})
	if err != nil {
		return err
	}
	if err := e.registry.Define(fn.Name); err != nil {
		return err
	}
	e.bodies[fn.Name] = value.(evalFunc)
	return nil
}

func (e *Evaluator) Undeclare(name string) {
	e.registry.Undeclare(name)
}

// Call runs a defined function.
func (e *Evaluator) Call(name string, args ...float64) (float64, error) {
	fn, exists := e.registry.Lookup(name)
	if !exists {
		return 0, &SemanticError{Kind: UnknownFunction, Name: name}
	}
	if fn.Arity != len(args) {
		return 0, &SemanticError{
			Kind:     PrototypeMismatch,
			Name:     name,
			Expected: fn.Arity,
			Actual:   len(args),
		}
	}
	return e.invoke(&evalState{}, name, args)
}

func (e *Evaluator) invoke(st *evalState, name string, args []float64) (float64, error) {
	body, defined := e.bodies[name]
	if !defined {
		return 0, fmt.Errorf("function '%s' is declared but has no body", name)
	}
	st.depth++
	defer func() { st.depth-- }()
	if st.depth > MaxCallDepth {
		return 0, ErrCallDepth
	}
	return body(st, args)
}

// Functions lists the evaluator's functions in the order first declared.
func (e *Evaluator) Functions() []Function {
	return e.registry.Functions()
}

type evalBuilder struct {
	evaluator *Evaluator
}

func (b *evalBuilder) Constant(v float64) Value {
	return evalFunc(func(*evalState, []float64) (float64, error) {
		return v, nil
	})
}

func (b *evalBuilder) Parameter(index int, name string) Value {
	return evalFunc(func(_ *evalState, args []float64) (float64, error) {
		return args[index], nil
	})
}

func (b *evalBuilder) Binary(op Operator, left, right Value) (Value, error) {
	l, r := left.(evalFunc), right.(evalFunc)
	apply, err := binaryFunc(op)
	if err != nil {
		return nil, err
	}
	return evalFunc(func(st *evalState, args []float64) (float64, error) {
		lv, err := l(st, args)
		if err != nil {
			return 0, err
		}
		rv, err := r(st, args)
		if err != nil {
			return 0, err
		}
		return apply(lv, rv), nil
	}), nil
}

func (b *evalBuilder) Call(callee *Function, args []Value) (Value, error) {
	argFuncs := make([]evalFunc, len(args))
	for i, arg := range args {
		argFuncs[i] = arg.(evalFunc)
	}
	name := callee.Name
	e := b.evaluator

	// the callee is looked up when the call runs so that it may be defined
	// after the caller
	return evalFunc(func(st *evalState, args []float64) (float64, error) {
		values := make([]float64, len(argFuncs))
		for i, argFunc := range argFuncs {
			v, err := argFunc(st, args)
			if err != nil {
				return 0, err
			}
			values[i] = v
		}
		return e.invoke(st, name, values)
	}), nil
}

func (b *evalBuilder) Conditional(cond Value, then, otherwise func() (Value, error)) (Value, error) {
	c := cond.(evalFunc)
	thenValue, err := then()
	if err != nil {
		return nil, err
	}
	elseValue, err := otherwise()
	if err != nil {
		return nil, err
	}
	t, o := thenValue.(evalFunc), elseValue.(evalFunc)

	return evalFunc(func(st *evalState, args []float64) (float64, error) {
		cv, err := c(st, args)
		if err != nil {
			return 0, err
		}
		if cv != 0 {
			return t(st, args)
		}
		return o(st, args)
	}), nil
}

func binaryFunc(op Operator) (func(l, r float64) float64, error) {
	switch op {
	case OpAdd:
		return func(l, r float64) float64 { return l + r }, nil
	case OpSubtract:
		return func(l, r float64) float64 { return l - r }, nil
	case OpMultiply:
		return func(l, r float64) float64 { return l * r }, nil
	case OpDivide:
		return func(l, r float64) float64 { return l / r }, nil
	case OpEqual:
		return func(l, r float64) float64 { return boolToFloat(l == r) }, nil
	case OpLowerThan:
		return func(l, r float64) float64 { return boolToFloat(l < r) }, nil
	case OpLowerThanEqual:
		return func(l, r float64) float64 { return boolToFloat(l <= r) }, nil
	case OpGreaterThan:
		return func(l, r float64) float64 { return boolToFloat(l > r) }, nil
	case OpGreaterThanEqual:
		return func(l, r float64) float64 { return boolToFloat(l >= r) }, nil
	default:
		return nil, fmt.Errorf("unsupported operator %v", op)
	}
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
