package formula

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PSU3D0/cellgraph/internal/ast"
	"github.com/PSU3D0/cellgraph/internal/types"
)

// ParseError reports a formula that could not be parsed into an AST. The
// editor reports it to its caller as a ParseFailed error; under the engine's
// coerce-to-error parse policy the cell stores a #VALUE! literal instead.
type ParseError struct {
	Pos int
	Msg string
}

func (e *ParseError) Error() string { return fmt.Sprintf("parse error at %d: %s", e.Pos, e.Msg) }

// ParserContext names the sheet unqualified references belong to and
// resolves sheet-name tokens to a stable identifier. It carries no base
// cell; references keep the coordinates written in the formula.
type ParserContext struct {
	CurrentSheet string
	ResolveSheet func(name string) (types.SheetId, bool)
}

// Parser consumes a token stream with precedence climbing, grounded in the
// teacher's recursive-descent parser.go but targeting ast.Node.
type Parser struct {
	toks []Token
	pos  int
	ctx  *ParserContext
}

// Parse tokenizes and parses src into a single AST node.
func Parse(src string, ctx *ParserContext) (ast.Node, error) {
	toks, err := NewLexer(src).Tokenize()
	if err != nil {
		return nil, err
	}
	p := &Parser{toks: toks, ctx: ctx}
	node, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	if p.cur().Type != TokenEOF {
		return nil, &ParseError{Pos: p.cur().Start, Msg: "unexpected trailing input"}
	}
	return node, nil
}

func (p *Parser) cur() Token  { return p.toks[p.pos] }
func (p *Parser) advance() Token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) expect(tt TokenType, what string) (Token, error) {
	if p.cur().Type != tt {
		return Token{}, &ParseError{Pos: p.cur().Start, Msg: "expected " + what}
	}
	return p.advance(), nil
}

// binding powers, higher binds tighter, for infix/postfix operators.
// Mirrors Excel precedence: unary - and % bind immediately to their operand
// (handled in parseUnary/postfix parsing below, tighter than ^ itself — the
// well-known Excel quirk where -2^2 evaluates to 4, not -4), then
// ^ > * / > + - > & > comparisons.
var binPrec = map[string]int{
	"^": 50,
	"*": 40, "/": 40,
	"+": 30, "-": 30,
	"&": 20,
	"=": 10, "<>": 10, "<": 10, "<=": 10, ">": 10, ">=": 10,
}

func (p *Parser) parseExpr(minPrec int) (ast.Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.cur()
		if tok.Type == TokenUnaryPostfixOp && tok.Text == "%" {
			start := left.Span().Start
			p.advance()
			left = &ast.UnaryOp{Op: "%", Postfix: true, Operand: left, SpanInfo: ast.Span{Start: start, End: tok.End}}
			continue
		}
		// '+'/'-' lex as TokenUnaryPrefixOp regardless of position (the lexer
		// can't tell prefix from infix out of context), so a left operand
		// already in hand means this one is infix despite its token type.
		isInfixPlusMinus := tok.Type == TokenUnaryPrefixOp && (tok.Text == "+" || tok.Text == "-")
		if tok.Type != TokenBinaryOp && !isInfixPlusMinus {
			break
		}
		prec, ok := binPrec[tok.Text]
		if !ok || prec < minPrec {
			break
		}
		p.advance()
		nextMin := prec + 1 // left-associative
		right, err := p.parseExpr(nextMin)
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryOp{
			Op: tok.Text, Left: left, Right: right,
			SpanInfo: ast.Span{Start: left.Span().Start, End: right.Span().End},
		}
	}
	return left, nil
}

func (p *Parser) parseUnary() (ast.Node, error) {
	tok := p.cur()
	if tok.Type == TokenUnaryPrefixOp {
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryOp{Op: tok.Text, Operand: operand, SpanInfo: ast.Span{Start: tok.Start, End: operand.Span().End}}, nil
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() (ast.Node, error) {
	tok := p.cur()
	switch tok.Type {
	case TokenNumber:
		p.advance()
		f, err := strconv.ParseFloat(tok.Text, 64)
		if err != nil {
			return nil, &ParseError{Pos: tok.Start, Msg: "malformed number"}
		}
		return &ast.Literal{Value: types.NumberValue(f), SpanInfo: span(tok)}, nil
	case TokenString:
		p.advance()
		return &ast.Literal{Value: types.TextValue(tok.Text), SpanInfo: span(tok)}, nil
	case TokenBoolean:
		p.advance()
		return &ast.Literal{Value: types.BoolValue(tok.Text == "TRUE"), SpanInfo: span(tok)}, nil
	case TokenLeftParen:
		p.advance()
		inner, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenRightParen, ")"); err != nil {
			return nil, err
		}
		return inner, nil
	case TokenLeftBrace:
		return p.parseArrayLiteral()
	case TokenCellRef:
		return p.parseReferenceFrom("")
	case TokenIdentifier:
		return p.parseIdentifierLed()
	}
	return nil, &ParseError{Pos: tok.Start, Msg: "unexpected token"}
}

func span(tok Token) ast.Span { return ast.Span{Start: tok.Start, End: tok.End} }

func (p *Parser) parseArrayLiteral() (ast.Node, error) {
	start := p.cur().Start
	p.advance() // {
	var rows [][]ast.Node
	row := []ast.Node{}
	for {
		if p.cur().Type == TokenRightBrace {
			break
		}
		el, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		row = append(row, el)
		if p.cur().Type == TokenComma {
			p.advance()
			continue
		}
		if p.cur().Type == TokenSemicolon {
			p.advance()
			rows = append(rows, row)
			row = []ast.Node{}
			continue
		}
		break
	}
	rows = append(rows, row)
	end, err := p.expect(TokenRightBrace, "}")
	if err != nil {
		return nil, err
	}
	return &ast.Array{Rows: rows, SpanInfo: ast.Span{Start: start, End: end.End}}, nil
}

// parseIdentifierLed handles everything that starts with a bare word:
// sheet-qualified references (Sheet1!A1), function/LET/LAMBDA calls,
// structured table references (Table[Column]), and bare named ranges.
func (p *Parser) parseIdentifierLed() (ast.Node, error) {
	tok := p.advance()
	name := tok.Text

	if p.cur().Type == TokenSheetSep {
		p.advance()
		return p.parseReferenceFrom(name)
	}

	if p.cur().Type == TokenLeftBracket {
		return p.parseTableRef(name, tok.Start)
	}

	if p.cur().Type == TokenLeftParen {
		upper := strings.ToUpper(name)
		if upper == "LET" {
			return p.parseLet(tok.Start)
		}
		if upper == "LAMBDA" {
			return p.parseLambda(tok.Start)
		}
		return p.parseCall(name, tok.Start)
	}

	return &ast.Reference{Kind: ast.RefNamedRange, Name: name, SpanInfo: span(tok)}, nil
}

func (p *Parser) parseReferenceFrom(sheet string) (ast.Node, error) {
	startTok := p.cur()
	startCoord, err := parseCellRefText(startTok.Text)
	if err != nil {
		return nil, &ParseError{Pos: startTok.Start, Msg: err.Error()}
	}
	p.advance()

	ref := &ast.Reference{Kind: ast.RefCell, Sheet: sheet, Start: startCoord, End: startCoord}
	if p.cur().Type == TokenRangeSep {
		p.advance()
		endTok := p.cur()
		endCoord, err := parseCellRefText(endTok.Text)
		if err != nil {
			return nil, &ParseError{Pos: endTok.Start, Msg: err.Error()}
		}
		p.advance()
		ref.Kind = ast.RefRange
		ref.IsRange = true
		ref.End = endCoord
		ref.SpanInfo = ast.Span{Start: startTok.Start, End: endTok.End}
		return ref, nil
	}
	ref.SpanInfo = span(startTok)
	return ref, nil
}

func (p *Parser) parseTableRef(table string, start int) (ast.Node, error) {
	p.advance() // [
	sel := ast.TableSelector{}
	if p.cur().Type == TokenHash {
		p.advance()
		kw, err := p.expect(TokenIdentifier, "table selector")
		if err != nil {
			return nil, err
		}
		switch strings.ToUpper(kw.Text) {
		case "HEADERS":
			sel.Headers = true
		case "TOTALS":
			sel.Totals = true
		case "THISROW":
			sel.ThisRow = true
		}
	} else if p.cur().Type != TokenRightBracket {
		col, err := p.expect(TokenIdentifier, "column name")
		if err != nil {
			return nil, err
		}
		sel.Column = col.Text
	}
	end, err := p.expect(TokenRightBracket, "]")
	if err != nil {
		return nil, err
	}
	return &ast.Reference{Kind: ast.RefTable, Table: table, Selector: sel, SpanInfo: ast.Span{Start: start, End: end.End}}, nil
}

func (p *Parser) parseCall(name string, start int) (ast.Node, error) {
	p.advance() // (
	args, end, err := p.parseArgList()
	if err != nil {
		return nil, err
	}
	return &ast.Call{Name: strings.ToUpper(name), Args: args, IsVolatile: isVolatileName(name), SpanInfo: ast.Span{Start: start, End: end}}, nil
}

func (p *Parser) parseArgList() ([]ast.Node, int, error) {
	var args []ast.Node
	if p.cur().Type == TokenRightParen {
		end := p.advance().End
		return args, end, nil
	}
	for {
		arg, err := p.parseExpr(0)
		if err != nil {
			return nil, 0, err
		}
		args = append(args, arg)
		if p.cur().Type == TokenComma {
			p.advance()
			continue
		}
		break
	}
	closeTok, err := p.expect(TokenRightParen, ")")
	if err != nil {
		return nil, 0, err
	}
	return args, closeTok.End, nil
}

func (p *Parser) parseLet(start int) (ast.Node, error) {
	p.advance() // (
	var bindings []ast.LetBinding
	for {
		nameTok, err := p.expect(TokenIdentifier, "LET binding name")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenComma, ","); err != nil {
			return nil, err
		}
		val, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		bindings = append(bindings, ast.LetBinding{Name: nameTok.Text, Value: val})
		if _, err := p.expect(TokenComma, ","); err != nil {
			return nil, err
		}
		// another binding follows only if a name and a comma come next;
		// anything else is the body.
		if p.cur().Type != TokenIdentifier || p.toks[p.pos+1].Type != TokenComma {
			break
		}
	}
	body, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	end, err := p.expect(TokenRightParen, ")")
	if err != nil {
		return nil, err
	}
	return &ast.Let{Bindings: bindings, Body: body, SpanInfo: ast.Span{Start: start, End: end.End}}, nil
}

func (p *Parser) parseLambda(start int) (ast.Node, error) {
	p.advance() // (
	var params []string
	// every parameter is followed by a comma; the last argument is the body.
	for p.cur().Type == TokenIdentifier && p.toks[p.pos+1].Type == TokenComma {
		params = append(params, p.advance().Text)
		p.advance() // ,
	}
	body, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	end, err := p.expect(TokenRightParen, ")")
	if err != nil {
		return nil, err
	}
	return &ast.Lambda{Params: params, Body: body, SpanInfo: ast.Span{Start: start, End: end.End}}, nil
}

var volatileNames = map[string]bool{
	"NOW": true, "TODAY": true, "RAND": true, "RANDBETWEEN": true,
	"RANDARRAY": true, "OFFSET": true, "INDIRECT": true, "CELL": true, "INFO": true,
}

func isVolatileName(name string) bool {
	return volatileNames[strings.ToUpper(name)]
}

// parseCellRefText decodes an A1-style token (already lexed as one unit,
// e.g. "$B$12") into a zero-based Coord with anchor bits set.
func parseCellRefText(s string) (types.Coord, error) {
	i := 0
	colAbs := false
	if i < len(s) && s[i] == '$' {
		colAbs = true
		i++
	}
	colStart := i
	for i < len(s) && isAlpha(s[i]) {
		i++
	}
	if i == colStart {
		return types.Coord{}, fmt.Errorf("invalid cell reference %q", s)
	}
	colLetters := strings.ToUpper(s[colStart:i])
	rowAbs := false
	if i < len(s) && s[i] == '$' {
		rowAbs = true
		i++
	}
	rowStart := i
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if rowStart == i || i != len(s) {
		return types.Coord{}, fmt.Errorf("invalid cell reference %q", s)
	}
	rowNum, err := strconv.ParseUint(s[rowStart:i], 10, 32)
	if err != nil {
		return types.Coord{}, err
	}
	col := uint32(0)
	for _, c := range colLetters {
		col = col*26 + uint32(c-'A'+1)
	}
	return types.Coord{Row: uint32(rowNum - 1), Col: col - 1, RowAbs: rowAbs, ColAbs: colAbs}, nil
}

func isAlpha(b byte) bool { return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z') }
