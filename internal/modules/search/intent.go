// README: Turns a raw query into a structured intent: category, city, near-me and leftover text.
package search

import (
	"regexp"
	"strings"

	"placemap/internal/types"
)

var (
	spaces = regexp.MustCompile(`\s+`)
	nearMe = regexp.MustCompile(`\bnear\s*me\b`)
)

// Intent is derived per request and never stored.
type Intent struct {
	// Query is the leftover text once recognised phrases are removed.
	Query    string
	Category string
	City     string
	NearMe   bool
	// Location is set only for near-me queries that came with coordinates.
	Location *types.Point
}

// HasNearLocation reports whether results should be bounded around Location.
func (i Intent) HasNearLocation() bool {
	return i.NearMe && i.Location != nil
}

func normalize(s string) string {
	return strings.TrimSpace(spaces.ReplaceAllString(strings.ToLower(s), " "))
}

// Detect parses raw. Phrase matching runs against the whole normalized
// query; removals apply to what is left. A recognised phrase is removed
// together with the rest of the word it sits in ("atms" goes with "atm").
func (v *Vocabulary) Detect(raw string, loc *types.Point) Intent {
	normalized := normalize(raw)
	in := Intent{Query: normalized}

	if nearMe.MatchString(normalized) {
		in.NearMe = true
		if loc != nil && !loc.IsZero() {
			p := *loc
			in.Location = &p
		}
		in.Query = nearMe.ReplaceAllString(in.Query, " ")
	}

	for _, r := range v.Categories {
		if strings.Contains(normalized, r.Phrase) {
			in.Category = r.Category
			in.Query = removeWord(in.Query, r.Phrase)
			break
		}
	}

	for _, c := range v.Cities {
		if strings.Contains(normalized, c) {
			in.City = c
			in.Query = removeWord(in.Query, c)
			break
		}
	}

	in.Query = v.dropStopwords(normalize(in.Query), in.Category != "" || in.City != "" || in.NearMe)
	return in
}

func removeWord(s, phrase string) string {
	re := regexp.MustCompile(`\S*` + regexp.QuoteMeta(phrase) + `\S*`)
	return re.ReplaceAllString(s, " ")
}

// dropStopwords strips connective words, but only when something was
// recognised; a plain name query such as "the bombay canteen" is kept whole.
func (v *Vocabulary) dropStopwords(s string, recognised bool) string {
	if !recognised || s == "" || len(v.stop) == 0 {
		return s
	}
	words := strings.Fields(s)
	kept := words[:0]
	for _, w := range words {
		if !v.stop[w] {
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, " ")
}
