package htmlutil

import (
	"context"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func TestGetAnchors(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(
		`<html><body>
			<a href="/detail?customsItemId=10">פרק   10</a>
			<a href="/detail?customsItemId=11">
				פרק 11
			</a>
			<a>no href</a>
		</body></html>`,
	))
	require.NoError(t, err)

	anchors := GetAnchors(context.Background(), doc.Find("a"))
	require.Equal(t, []Anchor{
		{Name: "פרק 10", Href: "/detail?customsItemId=10"},
		{Name: "פרק 11", Href: "/detail?customsItemId=11"},
		{Name: "no href", Href: ""},
	}, anchors)
}

func TestExtractText(t *testing.T) {
	testCases := []struct {
		name     string
		markup   string
		expected string
	}{
		{
			name:     "strips tags",
			markup:   "<html><body><p>פרק 01</p><p>בעלי חיים</p></body></html>",
			expected: "פרק 01 בעלי חיים",
		},
		{
			name:     "drops script and style",
			markup:   "<script>var x = 1;</script><style>p{}</style><p>content</p>",
			expected: "content",
		},
		{
			name:     "decodes entities",
			markup:   "<p>a&nbsp;&amp;&nbsp;b &lt;c&gt; &quot;d&quot; &#8362;5</p>",
			expected: "a & b <c> \"d\" ₪5",
		},
		{
			name:     "collapses whitespace",
			markup:   "<div> a \n\n b\t\tc </div>",
			expected: "a b c",
		},
		{
			name:     "malformed markup degrades",
			markup:   "<div><p>partial<</div",
			expected: "partial<",
		},
		{
			name:     "empty input",
			markup:   "",
			expected: "",
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			require.Equal(t, test.expected, ExtractText(test.markup))
		})
	}
}

func TestExtractTextIdempotent(t *testing.T) {
	inputs := []string{
		"<html><body><h1>תעריף המכס</h1><p>פרק 39 פלסטיק</p></body></html>",
		"plain text already",
		"<ul><li>I</li><li>II</li><li>III</li></ul>",
	}
	for _, markup := range inputs {
		once := ExtractText(markup)
		require.Equal(t, once, ExtractText(once))
	}
}
