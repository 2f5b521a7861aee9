package normalize

import "strings"

// Tables holds the static mapping data the URL builders depend on. The
// override maps exist because some card and set names contain characters
// the generic slug rules cannot repair (unmapped accents are dropped, not
// transliterated); extending them requires no code change.
type Tables struct {
	// CardOverrides maps known-problematic card names to their catalog slug
	CardOverrides map[string]string

	// SetOverrides maps set names whose canonical slug breaks the generic rule
	SetOverrides map[string]string

	// LanguageIDs maps card languages to Cardmarket language filter IDs
	LanguageIDs map[string]int
}

// DefaultTables returns the mapping data for cardmarket.com
func DefaultTables() Tables {
	return Tables{
		CardOverrides: map[string]string{
			"Galadriel of Lothlórien":    "Galadriel-of-Lothlorien",
			"Éomer of the Riddermark":    "Eomer-of-the-Riddermark",
			"Éowyn, Fearless Knight":     "Eowyn-Fearless-Knight",
			"Tura Kennerüd, Skyknight":   "Tura-Kennerued-Skyknight",
			"Bartolomé del Presidio":     "Bartolome-del-Presidio",
		},
		SetOverrides: map[string]string{
			"Core 2021": "Core-Set-2021",
		},
		LanguageIDs: map[string]int{
			"English": 1,
			"French":  2,
			"German":  3,
			"Spanish": 4,
			"Italian": 5,
		},
	}
}

// cardSlugCleaner drops the characters that break product URLs and turns
// apostrophes and hyphens into token breaks so re-slugging a slug is a no-op.
var cardSlugCleaner = strings.NewReplacer(
	"/", "",
	"'", " ",
	"-", " ",
	"(", "",
	")", "",
	",", "",
	".", "",
)

// CardSlug converts a free-form card name into the catalog URL segment.
// The override table is authoritative and checked before the generic rule.
func (t Tables) CardSlug(name string) string {
	if slug, ok := t.CardOverrides[name]; ok {
		return slug
	}
	clean := cardSlugCleaner.Replace(name)
	return strings.Join(strings.Fields(clean), "-")
}

var setSlugCleaner = strings.NewReplacer(
	":", "",
	".", "",
	"'", "",
)

// SetSlug converts a set (expansion) name into the catalog URL segment
func (t Tables) SetSlug(name string) string {
	if slug, ok := t.SetOverrides[name]; ok {
		return slug
	}
	joined := strings.Join(strings.Fields(name), "-")
	return setSlugCleaner.Replace(joined)
}

// LanguageID returns the catalog language filter ID for a card language.
// Languages missing from the table get no filter.
func (t Tables) LanguageID(language string) (int, bool) {
	id, ok := t.LanguageIDs[language]
	return id, ok
}
