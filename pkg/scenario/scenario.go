// Package scenario parses input lines into drop sequences.
//
// A line is a comma-separated list of tokens. Each token is a piece letter
// (one of Q I T L J Z S, uppercase) immediately followed by a base-10 column:
//
//	Q0,I2,T4
//
// A line that is empty after trimming is a blank scenario with no drops.
// Tokens that do not follow the grammar, or that would place a piece past the
// right edge of the board, are handled according to a [Policy].
package scenario

import (
	"strconv"
	"strings"

	"github.com/matzehuels/blockdrop/pkg/board"
	"github.com/matzehuels/blockdrop/pkg/errors"
)

// Separator splits tokens within a line.
const Separator = ","

// Policy selects how malformed tokens are handled.
type Policy int

const (
	// PolicyFail rejects the whole line on the first malformed token.
	PolicyFail Policy = iota
	// PolicySkip drops malformed tokens and keeps the rest of the line.
	PolicySkip
)

// String returns the config spelling of the policy.
func (p Policy) String() string {
	switch p {
	case PolicySkip:
		return "skip"
	default:
		return "fail"
	}
}

// ParsePolicy parses "fail" or "skip". An empty string selects PolicyFail.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "fail":
		return PolicyFail, nil
	case "skip":
		return PolicySkip, nil
	default:
		return PolicyFail, errors.New(errors.ErrCodeInvalidConfig, "invalid policy %q (must be 'fail' or 'skip')", s)
	}
}

// Scenario is one parsed input line.
type Scenario struct {
	Drops   []board.Drop
	Skipped []*TokenError
	Blank   bool
}

// TokenError describes a malformed token.
type TokenError struct {
	Index  int    // 0-based token position in the line
	Token  string // token text after trimming
	Reason string
}

// Error implements the error interface.
func (e *TokenError) Error() string {
	return "token " + strconv.Itoa(e.Index+1) + " " + strconv.Quote(e.Token) + ": " + e.Reason
}

// Parse splits line into drops. Under PolicyFail the first malformed token is
// returned as an *errors.Error with code INVALID_TOKEN wrapping a *TokenError.
func Parse(line string, policy Policy) (Scenario, error) {
	if err := errors.ValidateLine(line); err != nil {
		return Scenario{}, err
	}

	line = strings.TrimSpace(line)
	if line == "" {
		return Scenario{Blank: true}, nil
	}

	tokens := strings.Split(line, Separator)
	sc := Scenario{Drops: make([]board.Drop, 0, len(tokens))}
	for i, tok := range tokens {
		d, terr := ParseToken(i, tok)
		if terr == nil {
			sc.Drops = append(sc.Drops, d)
			continue
		}
		if policy == PolicyFail {
			return Scenario{}, errors.Wrap(errors.ErrCodeInvalidToken, terr, "malformed drop")
		}
		sc.Skipped = append(sc.Skipped, terr)
	}
	return sc, nil
}

// ParseToken parses a single token such as "T4". index is only used to
// annotate the returned error.
func ParseToken(index int, tok string) (board.Drop, *TokenError) {
	tok = strings.TrimSpace(tok)
	fail := func(reason string) (board.Drop, *TokenError) {
		return board.Drop{}, &TokenError{Index: index, Token: tok, Reason: reason}
	}

	if tok == "" {
		return fail("empty token")
	}
	shape, ok := board.Lookup(tok[0])
	if !ok {
		return fail("unknown piece " + strconv.QuoteRune(rune(tok[0])))
	}

	digits := tok[1:]
	if digits == "" {
		return fail("missing column")
	}
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return fail("column is not a non-negative integer")
		}
	}
	col, err := strconv.Atoi(digits)
	if err != nil {
		return fail("column out of range")
	}
	if !shape.Fits(col) {
		return fail("piece " + shape.String() + " at column " + digits + " extends past the board edge")
	}
	return board.Drop{Shape: shape, Column: col}, nil
}

// Tokens formats drops back into a line.
func Tokens(drops []board.Drop) string {
	parts := make([]string, len(drops))
	for i, d := range drops {
		parts[i] = d.String()
	}
	return strings.Join(parts, Separator)
}
