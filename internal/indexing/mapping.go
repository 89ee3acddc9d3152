package indexing

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"
)

// Field names used in queries
const (
	FieldCategory  = "category"
	FieldLocation  = "location"
	FieldPage      = "page"
	FieldModule    = "module"
	FieldTitle     = "title"
	FieldSymbol    = "symbol"
	FieldText      = "text"
	FieldKeywords  = "keywords"
	FieldSignature = "signature"
)

// NewIndexMapping builds the bleve mapping for DocEntry documents.
// Filterable fields are indexed verbatim; prose is analysed as English.
func NewIndexMapping() *mapping.IndexMappingImpl {
	keywordField := bleve.NewTextFieldMapping()
	keywordField.Analyzer = keyword.Name

	textField := bleve.NewTextFieldMapping()
	textField.Analyzer = en.AnalyzerName

	// Symbols are camelCase or unicode; standard tokenization keeps them whole
	symbolField := bleve.NewTextFieldMapping()
	symbolField.Analyzer = standard.Name

	numericField := bleve.NewNumericFieldMapping()

	doc := bleve.NewDocumentMapping()
	doc.AddFieldMappingsAt(FieldCategory, keywordField)
	doc.AddFieldMappingsAt(FieldLocation, keywordField)
	doc.AddFieldMappingsAt(FieldPage, keywordField)
	doc.AddFieldMappingsAt(FieldModule, keywordField)
	doc.AddFieldMappingsAt(FieldTitle, symbolField)
	doc.AddFieldMappingsAt(FieldSymbol, symbolField)
	doc.AddFieldMappingsAt(FieldSignature, symbolField)
	doc.AddFieldMappingsAt(FieldText, textField)
	doc.AddFieldMappingsAt(FieldKeywords, textField)
	doc.AddFieldMappingsAt("ordinal", numericField)
	doc.AddFieldMappingsAt("token_count", numericField)

	// Stored for display only
	stored := bleve.NewTextFieldMapping()
	stored.Index = false
	doc.AddFieldMappingsAt("url", stored)
	doc.AddFieldMappingsAt("breadcrumb", stored)

	indexMapping := bleve.NewIndexMapping()
	indexMapping.AddDocumentMapping(DocType, doc)
	indexMapping.DefaultAnalyzer = en.AnalyzerName
	return indexMapping
}
