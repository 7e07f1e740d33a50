package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/unicode"
	"github.com/blevesearch/bleve/v2/mapping"
)

const deviceAnalyzer = "device_name"

// buildIndexMapping creates the mapping for device documents.
//
// Device names mix words and model numbers ("Redmi Note 10 Pro"), so the name
// is split on Unicode word boundaries and lowercased without stemming or stop
// words. The document ID is the name itself, so nothing needs storing.
func buildIndexMapping() (mapping.IndexMapping, error) {
	indexMapping := bleve.NewIndexMapping()

	err := indexMapping.AddCustomAnalyzer(deviceAnalyzer, map[string]any{
		"type":          custom.Name,
		"tokenizer":     unicode.Name,
		"token_filters": []string{lowercase.Name},
	})
	if err != nil {
		return nil, err
	}
	indexMapping.DefaultAnalyzer = deviceAnalyzer

	docMapping := bleve.NewDocumentMapping()

	nameField := bleve.NewTextFieldMapping()
	nameField.Analyzer = deviceAnalyzer
	nameField.Store = false
	docMapping.AddFieldMappingsAt("name", nameField)

	indexMapping.DefaultMapping = docMapping

	return indexMapping, nil
}
