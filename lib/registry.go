package lib

// Function is everything the registry knows about one function name.
type Function struct {
	Name    string
	Arity   int
	Defined bool
}

// Registry tracks the prototypes seen so far and rejects the ones that
// conflict: every dec/def for a name must agree on the parameter count and
// a name can only have one def. Parameter names don't have to match.
type Registry struct {
	functions map[string]*Function
	order     []string
}

func NewRegistry() *Registry {
	return &Registry{
		functions: map[string]*Function{},
		order:     []string{},
	}
}

// Register records a top level element.
func (r *Registry) Register(elem TopLevel) (*Function, error) {
	switch e := elem.(type) {
	case Declaration:
		return r.Declare(e.Prototype.Name(), e.Prototype.Arity())
	case Definition:
		fn, err := r.Declare(e.Prototype.Name(), e.Prototype.Arity())
		if err != nil {
			return nil, err
		}
		return fn, r.Define(fn.Name)
	default:
		return nil, nil
	}
}

// Declare adds name with the given arity, or checks it against the arity it
// was first seen with.
func (r *Registry) Declare(name string, arity int) (*Function, error) {
	fn, exists := r.functions[name]
	if !exists {
		fn = &Function{Name: name, Arity: arity}
		r.functions[name] = fn
		r.order = append(r.order, name)
		return fn, nil
	}

	if fn.Arity != arity {
		return nil, &SemanticError{
			Kind:     PrototypeMismatch,
			Name:     name,
			Expected: fn.Arity,
			Actual:   arity,
		}
	}
	return fn, nil
}

// Define marks a declared function as having a body.
func (r *Registry) Define(name string) error {
	fn, exists := r.functions[name]
	if !exists {
		return &SemanticError{Kind: UnknownFunction, Name: name}
	}
	if fn.Defined {
		return &SemanticError{Kind: Redefinition, Name: name}
	}
	fn.Defined = true
	return nil
}

// Undeclare removes name unless it already has a body.
func (r *Registry) Undeclare(name string) {
	fn, exists := r.functions[name]
	if !exists || fn.Defined {
		return
	}
	delete(r.functions, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

func (r *Registry) Lookup(name string) (*Function, bool) {
	fn, exists := r.functions[name]
	return fn, exists
}

// Functions lists every registered function in the order first seen.
func (r *Registry) Functions() []Function {
	result := []Function{}
	for _, name := range r.order {
		result = append(result, *r.functions[name])
	}
	return result
}

// CheckProgram registers every element of prog in order.
func CheckProgram(prog Program) (*Registry, error) {
	r := NewRegistry()
	for _, elem := range prog.Elements {
		if _, err := r.Register(elem); err != nil {
			return nil, err
		}
	}
	return r, nil
}
