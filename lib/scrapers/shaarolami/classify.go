package shaarolami

import "strings"

// Category labels a document by its role in the customs book.
type Category string

const (
	CategoryTariff     Category = "tariff"
	CategorySupplement Category = "supplement"
	CategoryProcedure  Category = "procedure"
	CategoryAgreement  Category = "agreement"
)

// the order is the tie break: a file name matching several marker sets
// gets the first category listed here.
var categoryMarkers = []struct {
	category Category
	tokens   []string
}{
	{CategorySupplement, []string{"תוספת", "wto"}},
	{CategoryProcedure, []string{"נוהל", "צו "}},
	{CategoryAgreement, []string{"הסכם", "fta"}},
}

// Classify maps a document file name to its category. Case
// insensitive substring match against a fixed ordered keyword table,
// defaulting to tariff. Total over any input.
func Classify(fileName string) Category {
	name := strings.ToLower(fileName)
	// normalized file names carry underscores where the portal label
	// had spaces, fold them back so word-boundary tokens still match
	name = strings.ReplaceAll(name, "_", " ")
	for _, markers := range categoryMarkers {
		for _, token := range markers.tokens {
			if strings.Contains(name, token) {
				return markers.category
			}
		}
	}
	return CategoryTariff
}
