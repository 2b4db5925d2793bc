// Package cite infers citation links by locating known titles inside a
// paper's extracted text.
package cite

import (
	"strings"

	"github.com/matsen/citemap/internal/textnorm"
)

// FindCitations reports which of titleKeys appear in paperText. The
// text is normalized once; each key is then tested with all internal
// spaces removed against the spaceless body text, so a title still
// matches when the PDF layout broke it across word or line boundaries.
// This trades false positives on short titles for recall; no length
// threshold or scoring is applied.
//
// selfKey is never reported. Matches are returned in titleKeys order.
func FindCitations(paperText string, titleKeys []string, selfKey string) []string {
	body := strings.ReplaceAll(textnorm.Normalize(paperText), " ", "")

	var cited []string
	for _, key := range titleKeys {
		if key == selfKey {
			continue
		}
		if strings.Contains(body, strings.ReplaceAll(key, " ", "")) {
			cited = append(cited, key)
		}
	}
	return cited
}
