package extract

import "regexp"

// Extractor applies one configured rule set to recognized text.
type Extractor struct {
	Delimiters string
	Keywords   []string
	inline     *regexp.Regexp
}

// New returns an Extractor. Nil keyword slices fall back to the defaults.
func New(delimiters string, keywords, inlineKeywords []string) *Extractor {
	if keywords == nil {
		keywords = DefaultKeywords
	}
	if inlineKeywords == nil {
		inlineKeywords = DefaultInlineKeywords
	}
	return &Extractor{
		Delimiters: delimiters,
		Keywords:   keywords,
		inline:     InlineNamePattern(inlineKeywords),
	}
}

// ID derives the record identifier from the uploaded filename.
func (e *Extractor) ID(filename string) string {
	return ID(filename, e.Delimiters)
}

// FromOCR extracts fields from OCR output. header is the first-page text used
// for the institution; body is searched for the name and DNI.
func (e *Extractor) FromOCR(header, body string) Fields {
	return Fields{
		Institution:     Institution(header),
		ResponsibleName: ResponsibleName(body, e.Keywords),
		DNI:             DNI(body),
	}
}

// FromTextLayer extracts fields from a PDF's embedded text.
func (e *Extractor) FromTextLayer(text string) Fields {
	return Fields{
		Institution:     Institution(text),
		ResponsibleName: InlineName(text, e.inline),
		DNI:             DNI(text),
	}
}
