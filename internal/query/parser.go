package query

import "fmt"

// node is the parsed form of a free-text query.
type node interface{ isNode() }

type (
	andNode  struct{ children []node }
	orNode   struct{ children []node }
	notNode  struct{ child node }
	termNode struct {
		field  string
		text   string
		phrase bool
	}
)

func (andNode) isNode()  {}
func (orNode) isNode()   {}
func (notNode) isNode()  {}
func (termNode) isNode() {}

// parser is a recursive-descent parser over:
//
//	or    := and ("OR" and)*
//	and   := unary (["AND"] unary)*
//	unary := ("NOT" | "-" | "+") unary | primary
//	primary := "(" or ")" | word | phrase
type parser struct {
	toks []token
	pos  int
}

func parse(input string) (node, error) {
	toks, err := lex(input)
	if err != nil {
		return nil, err
	}
	if len(toks) == 0 {
		return nil, nil
	}

	p := &parser{toks: toks}
	n, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.pos < len(p.toks) {
		t := p.toks[p.pos]
		return nil, fmt.Errorf("unexpected %s at position %d", t.kind, t.pos)
	}
	return n, nil
}

func (p *parser) peek() (token, bool) {
	if p.pos >= len(p.toks) {
		return token{}, false
	}
	return p.toks[p.pos], true
}

func (p *parser) parseOr() (node, error) {
	first, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	children := []node{first}
	for {
		t, ok := p.peek()
		if !ok || t.kind != tokOr {
			break
		}
		p.pos++
		next, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		children = append(children, next)
	}
	if len(children) == 1 {
		return first, nil
	}
	return orNode{children: children}, nil
}

func (p *parser) parseAnd() (node, error) {
	first, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	children := []node{first}
	for {
		t, ok := p.peek()
		if !ok || t.kind == tokOr || t.kind == tokRParen {
			break
		}
		if t.kind == tokAnd {
			p.pos++
		}
		next, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		children = append(children, next)
	}
	if len(children) == 1 {
		return first, nil
	}
	return andNode{children: children}, nil
}

func (p *parser) parseUnary() (node, error) {
	t, ok := p.peek()
	if !ok {
		return nil, p.errEnd()
	}
	switch t.kind {
	case tokNot, tokMinus:
		p.pos++
		child, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return notNode{child: child}, nil
	case tokPlus:
		p.pos++
		return p.parseUnary()
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (node, error) {
	t, ok := p.peek()
	if !ok {
		return nil, p.errEnd()
	}
	switch t.kind {
	case tokLParen:
		p.pos++
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		closing, ok := p.peek()
		if !ok || closing.kind != tokRParen {
			return nil, fmt.Errorf("missing ')' for '(' at position %d", t.pos)
		}
		p.pos++
		return inner, nil
	case tokWord:
		p.pos++
		return termNode{field: t.field, text: t.text}, nil
	case tokPhrase:
		p.pos++
		return termNode{field: t.field, text: t.text, phrase: true}, nil
	default:
		return nil, fmt.Errorf("unexpected %s at position %d", t.kind, t.pos)
	}
}

func (p *parser) errEnd() error {
	if len(p.toks) == 0 {
		return fmt.Errorf("empty query")
	}
	last := p.toks[len(p.toks)-1]
	return fmt.Errorf("query ends after %s at position %d", last.kind, last.pos)
}
