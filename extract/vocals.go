package extract

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jsphweid/chartconv/model"
	"github.com/jsphweid/chartconv/tempo"
)

const (
	capitalLineLength = 20
	maxLineLength     = 35
)

// CleanSyllable drops one trailing pitch or phrase marker. ok is false for
// markers that are not sung: the "+" slide and bracketed directives.
func CleanSyllable(text string) (string, bool) {
	if text == "+" || strings.HasPrefix(text, "[") {
		return "", false
	}
	if strings.HasSuffix(text, "#") || strings.HasSuffix(text, "^") || strings.HasSuffix(text, "=") {
		text = text[:len(text)-1]
	}
	return text, text != ""
}

func startsUpper(text string) bool {
	r, _ := utf8.DecodeRuneInString(text)
	return unicode.IsUpper(r)
}

// Vocals collects the lyric syllables of a vocal track. A line break is
// appended to the previous syllable when the current line would grow past
// maxLineLength characters, or past capitalLineLength when the new syllable
// is capitalized.
func Vocals(events model.Track, cursor *tempo.Cursor) []model.Vocal {
	res := []model.Vocal{}
	var lineLength int

	for _, evt := range events {
		micros := cursor.Advance(evt.Delta)
		if evt.Kind != model.TextMarker {
			continue
		}

		text, ok := CleanSyllable(evt.Text)
		if !ok {
			continue
		}

		n := utf8.RuneCountInString(text)
		projected := lineLength + n
		if len(res) > 0 && ((startsUpper(text) && projected > capitalLineLength) || projected > maxLineLength) {
			res[len(res)-1].Vocal += "\n"
			lineLength = 0
		}
		lineLength += n

		res = append(res, model.Vocal{
			TimeOffset: model.Seconds(micros),
			Vocal:      text,
		})
	}
	return res
}
