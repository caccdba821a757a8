package store

import (
	"fmt"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	regexptokenizer "github.com/blevesearch/bleve/v2/analysis/tokenizer/regexp"
	"github.com/blevesearch/bleve/v2/mapping"
)

// Stored document fields. The document ID is the absolute path.
const (
	FieldPath         = "file_path"
	FieldName         = "file_name"
	FieldContent      = "content"
	FieldLastModified = "last_modified"
	FieldExtension    = "extension"
	FieldDirectory    = "directory"
)

const (
	// TextAnalyzerName splits on anything that is not a letter, mark or
	// digit and lowercases, so "README.md" yields "readme" and "md".
	// No stop words: every term a user types must stay searchable.
	TextAnalyzerName = "localfiles_text"

	// SegmentAnalyzerName emits each path segment verbatim as one term.
	SegmentAnalyzerName = "localfiles_segments"

	wordTokenizerName    = "localfiles_word_tokenizer"
	segmentTokenizerName = "localfiles_segment_tokenizer"
)

// buildMapping creates the static document mapping for indexed files.
func buildMapping() (*mapping.IndexMappingImpl, error) {
	im := bleve.NewIndexMapping()

	err := im.AddCustomTokenizer(wordTokenizerName, map[string]interface{}{
		"type":   regexptokenizer.Name,
		"regexp": `[\p{L}\p{M}\p{N}]+`,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add word tokenizer: %w", err)
	}
	err = im.AddCustomAnalyzer(TextAnalyzerName, map[string]interface{}{
		"type":          custom.Name,
		"tokenizer":     wordTokenizerName,
		"token_filters": []string{lowercase.Name},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add text analyzer: %w", err)
	}

	err = im.AddCustomTokenizer(segmentTokenizerName, map[string]interface{}{
		"type":   regexptokenizer.Name,
		"regexp": `[^/\\]+`,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add segment tokenizer: %w", err)
	}
	err = im.AddCustomAnalyzer(SegmentAnalyzerName, map[string]interface{}{
		"type":      custom.Name,
		"tokenizer": segmentTokenizerName,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add segment analyzer: %w", err)
	}

	doc := bleve.NewDocumentStaticMapping()
	doc.AddFieldMappingsAt(FieldPath, storedField(keyword.Name))
	doc.AddFieldMappingsAt(FieldName, storedField(TextAnalyzerName))
	doc.AddFieldMappingsAt(FieldContent, storedField(TextAnalyzerName))
	doc.AddFieldMappingsAt(FieldLastModified, storedField(keyword.Name))
	doc.AddFieldMappingsAt(FieldExtension, storedField(keyword.Name))
	doc.AddFieldMappingsAt(FieldDirectory, storedField(SegmentAnalyzerName))

	im.DefaultMapping = doc
	im.DefaultAnalyzer = TextAnalyzerName
	im.IndexDynamic = false
	im.StoreDynamic = false
	return im, nil
}

func storedField(analyzer string) *mapping.FieldMapping {
	fm := bleve.NewTextFieldMapping()
	fm.Analyzer = analyzer
	fm.Store = true
	fm.IncludeInAll = false
	fm.IncludeTermVectors = analyzer != keyword.Name
	return fm
}
