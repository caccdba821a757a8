package query

import (
	"fmt"
	"strings"
	"unicode"
)

type tokenKind int

const (
	tokWord tokenKind = iota
	tokPhrase
	tokLParen
	tokRParen
	tokAnd
	tokOr
	tokNot
	tokPlus
	tokMinus
)

func (k tokenKind) String() string {
	switch k {
	case tokWord:
		return "word"
	case tokPhrase:
		return "phrase"
	case tokLParen:
		return "'('"
	case tokRParen:
		return "')'"
	case tokAnd:
		return "AND"
	case tokOr:
		return "OR"
	case tokNot:
		return "NOT"
	case tokPlus:
		return "'+'"
	case tokMinus:
		return "'-'"
	default:
		return "unknown"
	}
}

type token struct {
	kind  tokenKind
	field string // qualifier before ':' for words and phrases
	text  string
	pos   int // rune offset in the input, for error messages
}

// lex splits a free-text query into tokens.
func lex(input string) ([]token, error) {
	runes := []rune(input)
	var toks []token

	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '(':
			toks = append(toks, token{kind: tokLParen, pos: i})
			i++
		case r == ')':
			toks = append(toks, token{kind: tokRParen, pos: i})
			i++
		case r == '"':
			text, next, err := readPhrase(runes, i)
			if err != nil {
				return nil, err
			}
			toks = append(toks, token{kind: tokPhrase, text: text, pos: i})
			i = next
		case (r == '+' || r == '-') && i+1 < len(runes) && !unicode.IsSpace(runes[i+1]) && runes[i+1] != ')':
			kind := tokPlus
			if r == '-' {
				kind = tokMinus
			}
			toks = append(toks, token{kind: kind, pos: i})
			i++
		default:
			start := i
			for i < len(runes) && !unicode.IsSpace(runes[i]) && runes[i] != '(' && runes[i] != ')' && runes[i] != '"' {
				i++
			}
			word := string(runes[start:i])

			switch word {
			case "AND", "&&":
				toks = append(toks, token{kind: tokAnd, pos: start})
				continue
			case "OR", "||":
				toks = append(toks, token{kind: tokOr, pos: start})
				continue
			case "NOT":
				toks = append(toks, token{kind: tokNot, pos: start})
				continue
			}

			field, value, qualified := strings.Cut(word, ":")
			if !qualified {
				toks = append(toks, token{kind: tokWord, text: word, pos: start})
				continue
			}
			if field == "" {
				return nil, fmt.Errorf("missing field name before ':' at position %d", start)
			}
			if value == "" {
				// name:"some phrase"
				if i < len(runes) && runes[i] == '"' {
					text, next, err := readPhrase(runes, i)
					if err != nil {
						return nil, err
					}
					toks = append(toks, token{kind: tokPhrase, field: field, text: text, pos: start})
					i = next
					continue
				}
				return nil, fmt.Errorf("missing value for field %q at position %d", field, start)
			}
			toks = append(toks, token{kind: tokWord, field: field, text: value, pos: start})
		}
	}
	return toks, nil
}

// readPhrase reads a quoted phrase starting at the opening quote and
// returns its text and the index after the closing quote.
func readPhrase(runes []rune, open int) (string, int, error) {
	for j := open + 1; j < len(runes); j++ {
		if runes[j] == '"' {
			return string(runes[open+1 : j]), j + 1, nil
		}
	}
	return "", 0, fmt.Errorf("unterminated quote at position %d", open)
}
