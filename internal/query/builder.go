// Package query composes filtered boolean bleve queries from a free-text
// query plus optional extension and path filters.
package query

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"

	lferrors "github.com/Aman-CERP/localfiles/internal/errors"
	"github.com/Aman-CERP/localfiles/internal/store"
)

// Filters narrow a search. Empty values are absent filters.
type Filters struct {
	// Extension must equal the file's extension (case-insensitive, dot optional).
	Extension string
	// PathPrefix is split on '/'; every non-empty segment must be a
	// directory segment of the file. Segment order is not checked.
	PathPrefix string
}

// fieldAliases maps user-facing qualifiers to stored fields.
var fieldAliases = map[string]string{
	"ext":       store.FieldExtension,
	"extension": store.FieldExtension,
	"dir":       store.FieldDirectory,
	"directory": store.FieldDirectory,
	"name":      store.FieldName,
	"file_name": store.FieldName,
	"content":   store.FieldContent,
}

// Build returns the query for text and filters, or nil when there is
// nothing to search for: an empty text with no filters must never turn
// into a match-all. Malformed text is a QuerySyntaxError.
func Build(text string, f Filters) (query.Query, error) {
	var must []query.Query

	tree, err := parse(text)
	if err != nil {
		return nil, lferrors.QuerySyntaxError("invalid query: " + err.Error())
	}
	if tree != nil {
		q, err := compile(tree)
		if err != nil {
			return nil, lferrors.QuerySyntaxError("invalid query: " + err.Error())
		}
		if q != nil {
			must = append(must, q)
		}
	}

	if ext := NormalizeExtension(f.Extension); ext != "" {
		must = append(must, termQuery(store.FieldExtension, ext))
	}
	for _, seg := range strings.Split(f.PathPrefix, "/") {
		if seg != "" {
			must = append(must, termQuery(store.FieldDirectory, seg))
		}
	}

	switch len(must) {
	case 0:
		return nil, nil
	case 1:
		return must[0], nil
	default:
		return bleve.NewConjunctionQuery(must...), nil
	}
}

// NormalizeExtension lowercases ext and strips a leading dot.
func NormalizeExtension(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}

// compile lowers a parse tree to a bleve query. A nil result means the
// subtree has no searchable terms and is dropped.
func compile(n node) (query.Query, error) {
	switch n := n.(type) {
	case termNode:
		return compileTerm(n)
	case notNode:
		child, err := compile(n.child)
		if err != nil || child == nil {
			return nil, err
		}
		bq := bleve.NewBooleanQuery()
		bq.AddMust(bleve.NewMatchAllQuery())
		bq.AddMustNot(child)
		return bq, nil
	case andNode:
		var must, mustNot []query.Query
		for _, c := range n.children {
			if neg, ok := c.(notNode); ok {
				q, err := compile(neg.child)
				if err != nil {
					return nil, err
				}
				if q != nil {
					mustNot = append(mustNot, q)
				}
				continue
			}
			q, err := compile(c)
			if err != nil {
				return nil, err
			}
			if q != nil {
				must = append(must, q)
			}
		}
		if len(must) == 0 && len(mustNot) == 0 {
			return nil, nil
		}
		if len(mustNot) == 0 && len(must) == 1 {
			return must[0], nil
		}
		bq := bleve.NewBooleanQuery()
		if len(must) == 0 {
			must = append(must, bleve.NewMatchAllQuery())
		}
		bq.AddMust(must...)
		if len(mustNot) > 0 {
			bq.AddMustNot(mustNot...)
		}
		return bq, nil
	case orNode:
		var should []query.Query
		for _, c := range n.children {
			q, err := compile(c)
			if err != nil {
				return nil, err
			}
			if q != nil {
				should = append(should, q)
			}
		}
		switch len(should) {
		case 0:
			return nil, nil
		case 1:
			return should[0], nil
		}
		return bleve.NewDisjunctionQuery(should...), nil
	}
	return nil, nil
}

func compileTerm(t termNode) (query.Query, error) {
	if t.field == "" {
		if !searchable(t.text) {
			return nil, nil
		}
		return bleve.NewDisjunctionQuery(
			textQuery(store.FieldName, t.text, t.phrase),
			textQuery(store.FieldContent, t.text, t.phrase),
		), nil
	}

	field, ok := fieldAliases[strings.ToLower(t.field)]
	if !ok {
		return nil, fmt.Errorf("unknown field %q (use ext, dir, name or content)", t.field)
	}
	switch field {
	case store.FieldExtension:
		ext := NormalizeExtension(t.text)
		if ext == "" {
			return nil, nil
		}
		return termQuery(field, ext), nil
	case store.FieldDirectory:
		return termQuery(field, t.text), nil
	default:
		if !searchable(t.text) {
			return nil, nil
		}
		return textQuery(field, t.text, t.phrase), nil
	}
}

// textQuery analyzes text with the field's analyzer. Multi-token words
// (e.g. "foo.bar") require every token.
func textQuery(field, text string, phrase bool) query.Query {
	if phrase {
		q := bleve.NewMatchPhraseQuery(text)
		q.SetField(field)
		return q
	}
	q := bleve.NewMatchQuery(text)
	q.SetField(field)
	q.SetOperator(query.MatchQueryOperatorAnd)
	return q
}

func termQuery(field, term string) query.Query {
	q := bleve.NewTermQuery(term)
	q.SetField(field)
	return q
}

// searchable reports whether text has at least one letter or digit the
// analyzer would keep.
func searchable(text string) bool {
	return strings.IndexFunc(text, func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsDigit(r)
	}) >= 0
}
