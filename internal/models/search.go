package models

// Language selects the generation style for answers.
type Language string

const (
	LanguageEnglish Language = "English"
	LanguageKoloqua Language = "Koloqua"
)

// IsValid reports whether l is a supported language variant.
func (l Language) IsValid() bool {
	return l == LanguageEnglish || l == LanguageKoloqua
}

// AllCounties is the sentinel county filter meaning "no county scoping".
const AllCounties = "All Liberia"

// Counties lists the supported county filters, sentinel first.
var Counties = []string{
	AllCounties,
	"Bomi",
	"Bong",
	"Gbarpolu",
	"Grand Bassa",
	"Grand Cape Mount",
	"Grand Gedeh",
	"Grand Kru",
	"Lofa",
	"Margibi",
	"Maryland",
	"Montserrado",
	"Nimba",
	"River Cess",
	"River Gee",
	"Sinoe",
}

// IsValidCounty reports whether name is a known county filter value.
func IsValidCounty(name string) bool {
	for _, c := range Counties {
		if c == name {
			return true
		}
	}
	return false
}

// Query is one submitted knowledge-base question. Immutable once built; a new
// submission supersedes the previous one rather than mutating it.
type Query struct {
	Text     string   `json:"text"`
	County   string   `json:"county"`
	Language Language `json:"language"`
}

// Source is a grounding citation returned by the generation service.
// Identity is the URI.
type Source struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}

// Snapshot is the accumulated state of one in-flight generation request.
// Text only ever grows by suffix and Sources only ever gains entries.
type Snapshot struct {
	Text    string   `json:"text"`
	Sources []Source `json:"sources"`
	Final   bool     `json:"final"`
}
