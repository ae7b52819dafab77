package lib

import (
	"fmt"
	"io"
	"strings"
)

// MaxNestingDepth bounds how deeply expressions may nest before the parser
// gives up, which keeps the recursive descent from exhausting the stack.
const MaxNestingDepth = 256

// MaxExpressionHeight bounds the height of an expression tree. Long operator
// chains build tall trees without nesting, and every visitor walks them
// recursively.
const MaxExpressionHeight = 4096

// Parse reads every top level element from src.
func Parse(src string) (Program, error) {
	p := NewParser(strings.NewReader(src))
	elements := []TopLevel{}

	for {
		elem, done, err := p.ParseTop()
		if err != nil {
			return Program{}, err
		}
		if done {
			break
		}
		elements = append(elements, elem)
	}

	return Program{Elements: elements}, nil
}

// Parser pulls tokens from its own lexer and builds one top level element
// per ParseTop call.
type Parser struct {
	reader tokenReader
	depth  int
}

func NewParser(r io.Reader) *Parser {
	return &Parser{reader: newTokenBuffer(NewLexer(r))}
}

// ParseTop returns the next declaration or definition. done is true once
// the input is exhausted.
func (p *Parser) ParseTop() (elem TopLevel, done bool, err error) {
	tok, err := p.reader.Next()
	if err != nil {
		return nil, false, err
	}

	switch {
	case isEOF(tok):
		return nil, true, nil

	// dec name(a, b)
	case isKeyword(tok, KeywordDec):
		proto, err := p.scanPrototype()
		if err != nil {
			return nil, false, err
		}
		return Declaration{Prototype: proto}, false, nil

	// def name(a, b) expr
	case isKeyword(tok, KeywordDef):
		proto, err := p.scanPrototype()
		if err != nil {
			return nil, false, err
		}
		body, _, err := p.scanExpr()
		if err != nil {
			return nil, false, err
		}
		return Definition{Prototype: proto, Body: body}, false, nil
	}

	return nil, false, p.unexpected("declaration, definition, or end of input", tok)
}

// ParseTopOrExpression behaves like ParseTop except that a bare expression is
// also accepted where a top level element would start. It backs the REPL.
func (p *Parser) ParseTopOrExpression() (node Node, done bool, err error) {
	tok, err := p.reader.Peek()
	if err != nil {
		return nil, false, err
	}
	if isEOF(tok) || isKeyword(tok, KeywordDec) || isKeyword(tok, KeywordDef) {
		return p.ParseTop()
	}

	expr, _, err := p.scanExpr()
	if err != nil {
		return nil, false, err
	}
	return expr, false, nil
}

// Reads after "dec" or "def"
func (p *Parser) scanPrototype() (Prototype, error) {
	nameTok, err := p.reader.Next()
	if err != nil {
		return Prototype{}, err
	}
	name, isIdent := nameTok.(Identifier)
	if !isIdent {
		return Prototype{}, p.unexpected("function name", nameTok)
	}

	// name(...
	if err := p.requireBracket(BracketRoundStart); err != nil {
		return Prototype{}, err
	}

	params := []string{}

	// A parameter can never start with a bracket so any bracket here has to
	// be the closing one of an empty list.
	next, err := p.reader.Peek()
	if err != nil {
		return Prototype{}, err
	}
	if _, isBracketTok := next.(Bracket); isBracketTok {
		if err := p.requireBracket(BracketRoundEnd); err != nil {
			return Prototype{}, err
		}
		return NewPrototype(name.Name, params)
	}

	for {
		paramTok, err := p.reader.Next()
		if err != nil {
			return Prototype{}, err
		}
		param, isIdent := paramTok.(Identifier)
		if !isIdent {
			return Prototype{}, p.unexpected("parameter name", paramTok)
		}
		params = append(params, param.Name)

		sep, err := p.reader.Next()
		if err != nil {
			return Prototype{}, err
		}
		if _, isSep := sep.(ParameterSeparator); isSep {
			continue
		}
		if isBracket(sep, BracketRoundEnd) {
			break
		}
		return Prototype{}, p.unexpected("',' or ')'", sep)
	}

	return NewPrototype(name.Name, params)
}

// scanExpr returns the expression and the height of its tree, counting
// every node that a visitor will recurse into.
func (p *Parser) scanExpr() (Expression, int, error) {
	p.depth++
	defer func() { p.depth-- }()
	if p.depth > MaxNestingDepth {
		tok, err := p.reader.Peek()
		if err != nil {
			return nil, 0, err
		}
		return nil, 0, p.unexpected(fmt.Sprintf("at most %d levels of nesting", MaxNestingDepth), tok)
	}

	left, height, err := p.scanPrimary()
	if err != nil {
		return nil, 0, err
	}
	expr, height, err := p.scanBinaryRHS(0, left, height)
	if err != nil {
		return nil, 0, err
	}
	if height > MaxExpressionHeight {
		tok, err := p.reader.Peek()
		if err != nil {
			return nil, 0, err
		}
		return nil, 0, p.tooTall(tok, p.reader.Location())
	}
	return expr, height, nil
}

// scanBinaryRHS extends left for as long as the lookahead is an operator
// binding at least as tightly as minPrecedence.
func (p *Parser) scanBinaryRHS(minPrecedence int, left Expression, leftHeight int) (Expression, int, error) {
	for {
		opTok, err := p.reader.Peek()
		if err != nil {
			return nil, 0, err
		}
		op, isOp := binaryOperator(opTok)
		if !isOp || precedence(op) < minPrecedence {
			return left, leftHeight, nil
		}
		opLoc := p.reader.Location()

		_, err = p.reader.Next()
		if err != nil {
			return nil, 0, err
		}

		right, rightHeight, err := p.scanPrimary()
		if err != nil {
			return nil, 0, err
		}

		// a tighter operator after right takes right as its left operand
		nextTok, err := p.reader.Peek()
		if err != nil {
			return nil, 0, err
		}
		if nextOp, isNextOp := binaryOperator(nextTok); isNextOp && precedence(nextOp) > precedence(op) {
			right, rightHeight, err = p.scanBinaryRHS(precedence(op)+1, right, rightHeight)
			if err != nil {
				return nil, 0, err
			}
		}

		left = BinaryOp{Left: left, Op: op, Right: right}
		leftHeight = 1 + max(leftHeight, rightHeight)
		if leftHeight > MaxExpressionHeight {
			return nil, 0, p.tooTall(opTok, opLoc)
		}
	}
}

func (p *Parser) scanPrimary() (Expression, int, error) {
	tok, err := p.reader.Next()
	if err != nil {
		return nil, 0, err
	}

	switch t := tok.(type) {
	case Number:
		return Literal{Value: t.Value}, 1, nil
	case Identifier:
		return p.scanParameterOrCall(t)
	case Bracket:
		if t.Kind == BracketRoundStart {
			return p.scanParenthetical()
		}
	case Keyword:
		if t.Kind == KeywordIf {
			return p.scanConditional()
		}
	}

	return nil, 0, p.unexpected("primary expression", tok)
}

// Reads after "("
func (p *Parser) scanParenthetical() (Expression, int, error) {
	expr, height, err := p.scanExpr()
	if err != nil {
		return nil, 0, err
	}
	if err := p.requireBracket(BracketRoundEnd); err != nil {
		return nil, 0, err
	}
	return expr, height, nil
}

func (p *Parser) scanParameterOrCall(ident Identifier) (Expression, int, error) {
	next, err := p.reader.Peek()
	if err != nil {
		return nil, 0, err
	}
	if !isBracket(next, BracketRoundStart) {
		return Parameter{Name: ident.Name}, 1, nil
	}

	_, err = p.reader.Next()
	if err != nil {
		return nil, 0, err
	}
	args, height, err := p.scanCallArgs()
	if err != nil {
		return nil, 0, err
	}
	return Call{Name: ident.Name, Args: args}, height + 1, nil
}

// Reads after "name(". Unlike a prototype, an argument may itself start with
// "(" so only a closing bracket means the list is empty. The height returned
// is that of the tallest argument.
func (p *Parser) scanCallArgs() ([]Expression, int, error) {
	args := []Expression{}
	tallest := 0

	next, err := p.reader.Peek()
	if err != nil {
		return nil, 0, err
	}
	if isBracket(next, BracketRoundEnd) {
		_, err = p.reader.Next()
		return args, 0, err
	}

	for {
		arg, height, err := p.scanExpr()
		if err != nil {
			return nil, 0, err
		}
		args = append(args, arg)
		tallest = max(tallest, height)

		sep, err := p.reader.Next()
		if err != nil {
			return nil, 0, err
		}
		if _, isSep := sep.(ParameterSeparator); isSep {
			continue
		}
		if isBracket(sep, BracketRoundEnd) {
			return args, tallest, nil
		}
		return nil, 0, p.unexpected("',' or ')'", sep)
	}
}

// Reads after "if"
func (p *Parser) scanConditional() (Expression, int, error) {
	cond, condHeight, err := p.scanExpr()
	if err != nil {
		return nil, 0, err
	}

	if err := p.requireKeyword(KeywordThen); err != nil {
		return nil, 0, err
	}
	then, thenHeight, err := p.scanExpr()
	if err != nil {
		return nil, 0, err
	}

	if err := p.requireKeyword(KeywordElse); err != nil {
		return nil, 0, err
	}
	otherwise, elseHeight, err := p.scanExpr()
	if err != nil {
		return nil, 0, err
	}

	height := 1 + max(condHeight, thenHeight, elseHeight)
	return Conditional{Condition: cond, Then: then, Else: otherwise}, height, nil
}

func (p *Parser) requireKeyword(kind KeywordKind) error {
	tok, err := p.reader.Next()
	if err != nil {
		return err
	}
	if !isKeyword(tok, kind) {
		return p.unexpected(fmt.Sprintf("'%s'", kind.Source()), tok)
	}
	return nil
}

func (p *Parser) requireBracket(kind BracketKind) error {
	tok, err := p.reader.Next()
	if err != nil {
		return err
	}
	if !isBracket(tok, kind) {
		return p.unexpected(tokenDescription(Bracket{Kind: kind}), tok)
	}
	return nil
}

func (p *Parser) tooTall(tok Token, loc Location) error {
	return &SyntaxError{
		Expected: fmt.Sprintf("an expression at most %d levels deep", MaxExpressionHeight),
		Actual:   tok,
		Location: loc,
	}
}

func (p *Parser) unexpected(expected string, actual Token) error {
	return &SyntaxError{
		Expected: expected,
		Actual:   actual,
		Location: p.reader.Location(),
	}
}

func isEOF(tok Token) bool {
	_, eof := tok.(EndOfFile)
	return eof
}

func binaryOperator(tok Token) (Operator, bool) {
	opTok, isOp := tok.(OperatorToken)
	if !isOp {
		return 0, false
	}
	return opTok.Op, true
}

func precedence(op Operator) int {
	switch op {
	case OpMultiply, OpDivide:
		return 100
	case OpAdd, OpSubtract:
		return 80
	default:
		return 60
	}
}
