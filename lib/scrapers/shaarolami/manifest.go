package shaarolami

import "context"

// ManifestEntry is one hand-maintained known document location.
type ManifestEntry struct {
	DisplayName string `json:"display_name"`
	URL         string `json:"url"`
}

// ManifestDiscovery walks a fixed ordered list of known document
// locations. Deterministic and finite, no exploration cost; the
// fallback when the portal's URL scheme holds still.
type ManifestDiscovery struct {
	entries []ManifestEntry
	index   int
}

func NewManifestDiscovery(entries []ManifestEntry) *ManifestDiscovery {
	return &ManifestDiscovery{entries: entries}
}

func (d *ManifestDiscovery) Next(ctx context.Context) (Candidate, error) {
	if d.index >= len(d.entries) {
		return Candidate{}, ErrExhausted
	}
	entry := d.entries[d.index]
	d.index++
	return Candidate{
		DisplayName: entry.DisplayName,
		URL:         entry.URL,
	}, nil
}

const attachmentRoute = "https://shaarolami-query.customs.mof.gov.il/CustomspilotWeb/he/CustomsBook/Attachment/"

// DefaultManifest lists the customs book sections and supplements at
// their last known attachment routes. Hand maintained: when the portal
// moves a file, fix it here.
func DefaultManifest() []ManifestEntry {
	sections := []string{
		"I", "II", "III", "IV", "V", "VI", "VII", "VIII", "IX", "X", "XI",
		"XII", "XIII", "XIV", "XV", "XVI", "XVII", "XVIII", "XIX", "XX", "XXI",
	}
	entries := make([]ManifestEntry, 0, len(sections)+4)
	for _, s := range sections {
		entries = append(entries, ManifestEntry{
			DisplayName: s,
			URL:         attachmentRoute + "Section_" + s + ".pdf",
		})
	}
	entries = append(entries,
		ManifestEntry{DisplayName: "תוספת ראשונה", URL: attachmentRoute + "Supplement_1.pdf"},
		ManifestEntry{DisplayName: "תוספת שנייה", URL: attachmentRoute + "Supplement_2.pdf"},
		ManifestEntry{DisplayName: "תוספת שלישית WTO", URL: attachmentRoute + "Supplement_3_WTO.pdf"},
		ManifestEntry{DisplayName: "צו יבוא חופשי", URL: attachmentRoute + "Free_Import_Order.pdf"},
	)
	return entries
}
