package ingest

import (
	"bytes"
	"encoding/json"
	"path/filepath"

	"jdp/internal/media"
	"jdp/internal/normalizer"
	"jdp/internal/schema"
)

// localized is a per-language text field. A plain JSON string is accepted
// and applies to every language.
type localized map[string]string

func (l *localized) UnmarshalJSON(b []byte) error {
	if bytes.HasPrefix(bytes.TrimSpace(b), []byte(`"`)) {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*l = localized{"": s}
		return nil
	}
	var m map[string]string
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	*l = m
	return nil
}

func (l localized) get(code string) string {
	if v, ok := l[code]; ok {
		return v
	}
	return l[""]
}

type rawMedia struct {
	Image string `json:"image"`
	Audio string `json:"audio"`
	Video string `json:"video"`
}

type rawVocabulary struct {
	rawMedia
	Phrase        string `json:"phrase"`
	Transcription string `json:"transcription"`
	Category      struct {
		Lexical     string `json:"lexical"`
		Grammatical string `json:"grammatical"`
	} `json:"category"`
	Translation localized `json:"translation"`
	Note        localized `json:"note"`
}

type rawWriting struct {
	rawMedia
	Phrase        string    `json:"phrase"`
	Transcription string    `json:"transcription"`
	IPA           string    `json:"ipa"`
	Note          localized `json:"note"`
}

type rawText struct {
	rawMedia
	Phrase        string                       `json:"phrase"`
	Transcription string                       `json:"transcription"`
	Translation   map[string]map[string]string `json:"translation"`
	Note          localized                    `json:"note"`
}

// Normalize maps one raw item to a typed record. It returns nil, nil when
// the record is discarded (empty phrase, or a vocabulary record without
// translations). Unsupported formats and missing media are fatal errors;
// a record that does not decode is reported as malformed.
func Normalize(item RawItem, translation string) (schema.Record, error) {
	switch item.Format.Name {
	case schema.FormatVocabulary:
		return normalizeVocabulary(item, translation)
	case schema.FormatWriting:
		return normalizeWriting(item, translation)
	case schema.FormatText:
		return normalizeText(item, translation)
	}
	return nil, &schema.UnsupportedFormatError{Path: item.Source, Format: item.Format.Name}
}

func normalizeVocabulary(item RawItem, translation string) (schema.Record, error) {
	var raw rawVocabulary
	if err := json.Unmarshal(item.Data, &raw); err != nil {
		return nil, &schema.MalformedDataError{Path: item.Source, Key: "data", Err: err}
	}

	phrase := normalizer.Text(raw.Phrase)
	if phrase == "" {
		return nil, nil
	}
	translations := normalizer.SplitList(raw.Translation.get(translation))
	if len(translations) == 0 {
		return nil, nil
	}

	rec := &schema.VocabularyRecord{
		Common: common(item, phrase, raw.Transcription, raw.Note.get(translation)),
		Category: schema.Category{
			Lexical:     normalizer.Text(raw.Category.Lexical),
			Grammatical: normalizer.Text(raw.Category.Grammatical),
		},
		Translation: translations,
	}
	if err := resolveMedia(&rec.Common, item.Source, raw.rawMedia); err != nil {
		return nil, err
	}
	return rec, nil
}

func normalizeWriting(item RawItem, translation string) (schema.Record, error) {
	var raw rawWriting
	if err := json.Unmarshal(item.Data, &raw); err != nil {
		return nil, &schema.MalformedDataError{Path: item.Source, Key: "data", Err: err}
	}

	phrase := normalizer.Text(raw.Phrase)
	if phrase == "" {
		return nil, nil
	}

	rec := &schema.WritingRecord{
		Common: common(item, phrase, raw.Transcription, raw.Note.get(translation)),
		IPA:    normalizer.Text(raw.IPA),
	}
	if err := resolveMedia(&rec.Common, item.Source, raw.rawMedia); err != nil {
		return nil, err
	}
	return rec, nil
}

func normalizeText(item RawItem, translation string) (schema.Record, error) {
	var raw rawText
	if err := json.Unmarshal(item.Data, &raw); err != nil {
		return nil, &schema.MalformedDataError{Path: item.Source, Key: "data", Err: err}
	}

	phrase := normalizer.Text(raw.Phrase)
	if phrase == "" {
		return nil, nil
	}

	cloze := raw.Translation[translation]
	rec := &schema.TextRecord{
		Common: common(item,
			normalizer.Cloze(phrase, cloze),
			normalizer.Cloze(raw.Transcription, cloze),
			raw.Note.get(translation)),
	}
	if err := resolveMedia(&rec.Common, item.Source, raw.rawMedia); err != nil {
		return nil, err
	}
	return rec, nil
}

func common(item RawItem, phrase, transcription, note string) schema.Common {
	return schema.Common{
		Phrase:        phrase,
		Transcription: normalizer.Text(transcription),
		Note:          normalizer.SplitList(note),
		Format:        item.Format,
		Tags:          append([]string(nil), item.Tags...),
	}
}

// resolveMedia resolves media fields against the data file's directory.
func resolveMedia(c *schema.Common, source string, raw rawMedia) error {
	baseDir := filepath.Dir(source)
	names := map[schema.MediaKind]string{
		schema.MediaImage: raw.Image,
		schema.MediaAudio: raw.Audio,
		schema.MediaVideo: raw.Video,
	}
	for _, kind := range schema.MediaKinds {
		resolved, err := media.Resolve(baseDir, names[kind])
		if err != nil {
			return err
		}
		c.SetMedia(kind, resolved)
	}
	return nil
}
