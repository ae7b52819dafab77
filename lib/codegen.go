package lib

import (
	"bytes"
	"fmt"
	"go/format"
	"io"
	"math"
	"os"
	"regexp"
	"strings"
	"text/template"
)

var templateString = `// Code generated by flc. DO NOT EDIT.

package {{.Package}}

{{range .Externs}}
// {{.FuncName}} is declared as {{.Name}} without a body. Assign it before
// calling anything that uses it.
var {{.FuncName}} func({{.Params}}) float64
{{end}}

{{range .Functions}}
// {{.FuncName}} is {{.Name}}.
func {{.FuncName}}({{.Params}}) float64 {
	return {{.Body}}
}
{{end}}

// flNum keeps literals out of Go's constant arithmetic, which rejects
// division by zero and overflow at compile time.
func flNum(v float64) float64 {
	return v
}

func flBool(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
`

var numberSequence = regexp.MustCompile(`([a-zA-Z])(\d+)([a-zA-Z]?)`)
var numberReplacement = []byte(`$1 $2 $3`)

type codeGenViewModel struct {
	Package   string
	Externs   []functionViewModel
	Functions []functionViewModel
}

type functionViewModel struct {
	Name     string
	FuncName string
	Params   string
	Body     string
}

// goExpr is a GoEmitter value: a Go expression of type float64.
type goExpr string

type goFunction struct {
	name     string
	funcName string
	arity    int
	params   []string
	body     goExpr
}

// GoEmitter is a Backend that renders a program as a Go package. Every
// function becomes a func taking and returning float64; a function that was
// declared but never defined becomes a func variable.
type GoEmitter struct {
	registry  *Registry
	functions map[string]*goFunction
	funcNames map[string]bool
}

func NewGoEmitter() *GoEmitter {
	return &GoEmitter{
		registry:  NewRegistry(),
		functions: map[string]*goFunction{},
		funcNames: map[string]bool{},
	}
}

func (g *GoEmitter) DeclarePrototype(name string, paramCount int) (*Function, error) {
	fn, err := g.registry.Declare(name, paramCount)
	if err != nil {
		return nil, err
	}
	if _, exists := g.functions[name]; !exists {
		g.functions[name] = &goFunction{
			name:     name,
			funcName: g.uniqueFuncName(name),
			arity:    paramCount,
		}
	}
	return fn, nil
}

func (g *GoEmitter) DefineFunction(fn *Function, paramNames []string, body func(FunctionBuilder) (Value, error)) error {
	if fn.Defined {
		return &SemanticError{Kind: Redefinition, Name: fn.Name}
	}

	params := goParamNames(paramNames)
	value, err := body(&goBuilder{emitter: g, params: params})
	if err != nil {
		return err
	}
	if err := g.registry.Define(fn.Name); err != nil {
		return err
	}

	gf := g.functions[fn.Name]
	gf.params = params
	gf.body = value.(goExpr)
	return nil
}

// Undeclare also releases the Go name reserved for the function.
func (g *GoEmitter) Undeclare(name string) {
	fn, exists := g.registry.Lookup(name)
	if !exists || fn.Defined {
		return
	}
	if gf, ok := g.functions[name]; ok {
		delete(g.funcNames, gf.funcName)
		delete(g.functions, name)
	}
	g.registry.Undeclare(name)
}

func (g *GoEmitter) uniqueFuncName(name string) string {
	base := pascalCase(name)
	if base == "" || !isLetterOrUnderscore(rune(base[0])) {
		base = "Fn" + base
	}
	candidate := base
	for n := 2; g.funcNames[candidate]; n++ {
		candidate = fmt.Sprintf("%s%d", base, n)
	}
	g.funcNames[candidate] = true
	return candidate
}

func isLetterOrUnderscore(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func goParamNames(names []string) []string {
	used := map[string]bool{}
	result := []string{}
	for i, name := range names {
		goName := "arg" + pascalCase(name)
		if goName == "arg" || used[goName] {
			for n := i; ; n++ {
				goName = fmt.Sprintf("arg%d", n)
				if !used[goName] {
					break
				}
			}
		}
		used[goName] = true
		result = append(result, goName)
	}
	return result
}

// Render writes the gofmt'ed package source.
func (g *GoEmitter) Render(writer io.Writer, pkg string) error {
	vm := g.newViewModel(pkg)

	tmpl, err := template.New("fl").Parse(templateString)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	err = tmpl.Execute(&buf, vm)
	if err != nil {
		return err
	}

	formatted, err := format.Source(buf.Bytes())
	if err != nil {
		return fmt.Errorf("formatting generated code: %w", err)
	}
	_, err = writer.Write(formatted)
	return err
}

func (g *GoEmitter) newViewModel(pkg string) codeGenViewModel {
	vm := codeGenViewModel{
		Package:   pkg,
		Externs:   []functionViewModel{},
		Functions: []functionViewModel{},
	}

	for _, fn := range g.registry.Functions() {
		gf := g.functions[fn.Name]
		if !fn.Defined {
			vm.Externs = append(vm.Externs, functionViewModel{
				Name:     gf.name,
				FuncName: gf.funcName,
				Params:   strings.TrimSuffix(strings.Repeat("float64, ", gf.arity), ", "),
			})
			continue
		}

		params := ""
		if len(gf.params) > 0 {
			params = strings.Join(gf.params, ", ") + " float64"
		}
		vm.Functions = append(vm.Functions, functionViewModel{
			Name:     gf.name,
			FuncName: gf.funcName,
			Params:   params,
			Body:     string(gf.body),
		})
	}

	return vm
}

type goBuilder struct {
	emitter *GoEmitter
	params  []string
}

func (b *goBuilder) Constant(v float64) Value {
	// literals too large for float64 lex as +Inf, which has no Go literal
	if math.IsInf(v, 1) {
		return goExpr("(flNum(1) / flNum(0))")
	}
	return goExpr(fmt.Sprintf("flNum(%s)", formatNumber(v)))
}

func (b *goBuilder) Parameter(index int, name string) Value {
	return goExpr(b.params[index])
}

func (b *goBuilder) Binary(op Operator, left, right Value) (Value, error) {
	l, r := left.(goExpr), right.(goExpr)
	switch op {
	case OpAdd, OpSubtract, OpMultiply, OpDivide:
		return goExpr(fmt.Sprintf("(%s %s %s)", l, op.Symbol(), r)), nil
	case OpEqual, OpLowerThan, OpLowerThanEqual, OpGreaterThan, OpGreaterThanEqual:
		return goExpr(fmt.Sprintf("flBool(%s %s %s)", l, op.Symbol(), r)), nil
	default:
		return nil, fmt.Errorf("unsupported operator %v", op)
	}
}

func (b *goBuilder) Call(callee *Function, args []Value) (Value, error) {
	gf := b.emitter.functions[callee.Name]
	parts := []string{}
	for _, arg := range args {
		parts = append(parts, string(arg.(goExpr)))
	}
	return goExpr(fmt.Sprintf("%s(%s)", gf.funcName, strings.Join(parts, ", "))), nil
}

// Conditional becomes an immediately called func literal, whose single
// return value is where the two branches join.
func (b *goBuilder) Conditional(cond Value, then, otherwise func() (Value, error)) (Value, error) {
	thenValue, err := then()
	if err != nil {
		return nil, err
	}
	elseValue, err := otherwise()
	if err != nil {
		return nil, err
	}
	return goExpr(fmt.Sprintf(
		"func() float64 {\nif %s != 0 {\nreturn %s\n}\nreturn %s\n}()",
		cond.(goExpr),
		thenValue.(goExpr),
		elseValue.(goExpr))), nil
}

// Generate compiles every source file in srcDir into one Go package written
// to dest.
func Generate(srcDir string, dest string, pkg string) error {
	units, err := ReadSourcesDir(srcDir)
	if err != nil {
		return err
	}

	emitter := NewGoEmitter()
	gen := NewGenerator(emitter)
	for _, unit := range units {
		err = gen.Generate(unit.Program)
		if err != nil {
			return fmt.Errorf("%s: %w", unit.Path, err)
		}
	}

	fileWriter, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer fileWriter.Close()

	return emitter.Render(fileWriter, pkg)
}

// EmitGo renders a single program as a Go package.
func EmitGo(writer io.Writer, prog Program, pkg string) error {
	emitter := NewGoEmitter()
	err := NewGenerator(emitter).Generate(prog)
	if err != nil {
		return err
	}
	return emitter.Render(writer, pkg)
}

func addWordBoundariesToNumbers(s string) string {
	b := []byte(s)
	b = numberSequence.ReplaceAll(b, numberReplacement)
	return string(b)
}

func toCamelInitCase(s string, initCase bool) string {
	s = addWordBoundariesToNumbers(s)
	s = strings.Trim(s, " ")
	n := ""
	capNext := initCase
	for _, v := range s {
		if v >= 'A' && v <= 'Z' {
			n += string(v)
		}
		if v >= '0' && v <= '9' {
			n += string(v)
		}
		if v >= 'a' && v <= 'z' {
			if capNext {
				n += strings.ToUpper(string(v))
			} else {
				n += string(v)
			}
		}
		if v == '_' || v == ' ' || v == '-' {
			capNext = true
		} else {
			capNext = false
		}
	}
	return n
}

func pascalCase(s string) string {
	return toCamelInitCase(s, true)
}
