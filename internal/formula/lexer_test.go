package formula_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PSU3D0/cellgraph/internal/formula"
)

func tokenTypes(toks []formula.Token) []formula.TokenType {
	types := make([]formula.TokenType, len(toks))
	for i, t := range toks {
		types[i] = t.Type
	}
	return types
}

func TestLexer_StripsLeadingEquals(t *testing.T) {
	toks, err := formula.NewLexer("=1+2").Tokenize()
	require.NoError(t, err)
	assert.Equal(t, []formula.TokenType{
		formula.TokenNumber, formula.TokenUnaryPrefixOp, formula.TokenNumber, formula.TokenEOF,
	}, tokenTypes(toks))
}

func TestLexer_CellRefAndRange(t *testing.T) {
	toks, err := formula.NewLexer("SUM(A1:$B$2)").Tokenize()
	require.NoError(t, err)
	assert.Equal(t, formula.TokenIdentifier, toks[0].Type)
	assert.Equal(t, formula.TokenCellRef, toks[2].Type)
	assert.Equal(t, "A1", toks[2].Text)
	assert.Equal(t, formula.TokenRangeSep, toks[3].Type)
	assert.Equal(t, formula.TokenCellRef, toks[4].Type)
	assert.Equal(t, "$B$2", toks[4].Text)
}

func TestLexer_StringLiteralWithEscapedQuote(t *testing.T) {
	toks, err := formula.NewLexer(`"say ""hi"""`).Tokenize()
	require.NoError(t, err)
	require.Equal(t, formula.TokenString, toks[0].Type)
	assert.Equal(t, `say "hi"`, toks[0].Text)
}

func TestLexer_UnterminatedStringErrors(t *testing.T) {
	_, err := formula.NewLexer(`"unterminated`).Tokenize()
	assert.Error(t, err)
}

func TestLexer_TwoCharComparisonOperators(t *testing.T) {
	toks, err := formula.NewLexer("A1<>B1").Tokenize()
	require.NoError(t, err)
	assert.Equal(t, "<>", toks[1].Text)
}

func TestLexer_BooleanLiterals(t *testing.T) {
	toks, err := formula.NewLexer("TRUE").Tokenize()
	require.NoError(t, err)
	assert.Equal(t, formula.TokenBoolean, toks[0].Type)
	assert.Equal(t, "TRUE", toks[0].Text)
}
