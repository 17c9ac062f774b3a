package schema

// Common holds the fields shared by every record variant.
type Common struct {
	Phrase        string
	Transcription string
	Image         string
	Audio         string
	Video         string
	Note          []string
	Format        Format
	Tags          []string
}

// Base returns the shared fields.
func (c *Common) Base() *Common { return c }

// Media returns the resolved media path of the given kind.
func (c *Common) Media(kind MediaKind) string {
	switch kind {
	case MediaImage:
		return c.Image
	case MediaAudio:
		return c.Audio
	case MediaVideo:
		return c.Video
	}
	return ""
}

// SetMedia replaces the media path of the given kind.
func (c *Common) SetMedia(kind MediaKind, path string) {
	switch kind {
	case MediaImage:
		c.Image = path
	case MediaAudio:
		c.Audio = path
	case MediaVideo:
		c.Video = path
	}
}

// Record is one normalized data record. The set of implementations is closed:
// *VocabularyRecord, *WritingRecord and *TextRecord.
type Record interface {
	Base() *Common
	isRecord()
}

// Category is the lexical/grammatical classification of a vocabulary phrase.
type Category struct {
	Lexical     string
	Grammatical string
}

// VocabularyRecord is a phrase with translations.
type VocabularyRecord struct {
	Common
	Category    Category
	Translation []string
}

// WritingRecord is a writing-system symbol or syllable.
type WritingRecord struct {
	Common
	IPA string
}

// TextRecord is a sentence or passage carrying cloze markers.
type TextRecord struct {
	Common
}

func (*VocabularyRecord) isRecord() {}
func (*WritingRecord) isRecord()    {}
func (*TextRecord) isRecord()       {}
