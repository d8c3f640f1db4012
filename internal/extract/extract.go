// Package extract decomposes raw completion text into a typed artifact
// bundle. Extraction is pure and never fails: malformed or absent fences
// degrade to empty fields.
package extract

import (
	"regexp"
	"strings"

	"github.com/codevault-app/codevault/internal/artifact"
)

// fenceRe matches one fenced block: a triple backtick opener with an
// optional language tag, the body, and the first closing fence. Matching is
// non-greedy, so an embedded fence sequence terminates the block.
var fenceRe = regexp.MustCompile("(?s)```([a-zA-Z0-9_+-]*)[ \t]*\n(.*?)\n[ \t]*```")

// blankRuns collapses the gaps left behind by removed fences.
var blankRuns = regexp.MustCompile(`\n{3,}`)

// categories is the priority table mapping fence language tags to bundle
// fields. Per category the tags are tried in order and the first fence
// carrying a matching tag wins; later fences of the same category are
// ignored.
var categories = []struct {
	tags   []string
	assign func(b *artifact.Bundle, body string)
}{
	{[]string{"html"}, func(b *artifact.Bundle, body string) { b.Markup = body }},
	{[]string{"css", "scss", "style"}, func(b *artifact.Bundle, body string) { b.Styles = body }},
	{[]string{"javascript", "js"}, func(b *artifact.Bundle, body string) { b.Script = body }},
	{[]string{"jsx", "tsx"}, func(b *artifact.Bundle, body string) { b.Component = body }},
	{[]string{"node", "python", "backend"}, func(b *artifact.Bundle, body string) { b.ServerCode = body }},
}

type fence struct {
	tag  string
	body string
}

// Extract parses rawText into a bundle. Unmatched categories stay empty;
// fences with unknown tags contribute only to notes stripping. The bundle's
// Notes field holds the trimmed remainder after every fence is removed.
func Extract(rawText string) artifact.Bundle {
	var bundle artifact.Bundle

	fences := tokenize(rawText)
	for _, cat := range categories {
	tags:
		for _, tag := range cat.tags {
			for _, f := range fences {
				if f.tag == tag {
					cat.assign(&bundle, strings.TrimSpace(f.body))
					break tags
				}
			}
		}
	}

	bundle.Notes = notes(rawText)
	return bundle
}

// tokenize scans the text once for all fenced blocks, in order of
// appearance. Tags are lowercased so matching is case-insensitive.
func tokenize(text string) []fence {
	matches := fenceRe.FindAllStringSubmatch(text, -1)
	fences := make([]fence, 0, len(matches))
	for _, m := range matches {
		fences = append(fences, fence{
			tag:  strings.ToLower(m[1]),
			body: m[2],
		})
	}
	return fences
}

// notes strips every fenced block, regardless of tag, and returns the
// trimmed remainder. Stripping is idempotent.
func notes(text string) string {
	stripped := fenceRe.ReplaceAllString(text, "")
	stripped = blankRuns.ReplaceAllString(stripped, "\n\n")
	return strings.TrimSpace(stripped)
}
