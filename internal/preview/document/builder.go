// Package document assembles the standalone sandbox documents the host UI
// loads into an isolated surface. A built document depends on nothing from
// the host page: runtime references, untrusted code, and the supervisor
// script all travel inside the returned string.
package document

import (
	"encoding/json"
	"fmt"
	"html"
	"strings"

	"github.com/GriffinCanCode/SnapUI/backend/internal/domain/artifact"
	"github.com/GriffinCanCode/SnapUI/backend/internal/preview/normalize"
)

// RuntimeRefs holds the script references a React preview document loads.
type RuntimeRefs struct {
	ReactJS    string
	ReactDOMJS string
	BabelJS    string
	TailwindJS string
}

// DefaultRuntimeRefs returns the pinned CDN references.
func DefaultRuntimeRefs() RuntimeRefs {
	return RuntimeRefs{
		ReactJS:    "https://unpkg.com/react@18/umd/react.production.min.js",
		ReactDOMJS: "https://unpkg.com/react-dom@18/umd/react-dom.production.min.js",
		BabelJS:    "https://unpkg.com/@babel/standalone/babel.min.js",
		TailwindJS: "https://cdn.tailwindcss.com",
	}
}

// Builder emits preview documents. It holds no mutable state and never
// touches anything outside its inputs.
type Builder struct {
	refs RuntimeRefs
}

// NewBuilder creates a builder with the given runtime references.
func NewBuilder(refs RuntimeRefs) *Builder {
	return &Builder{refs: refs}
}

// Build assembles a fresh PreviewDocument for normalized code. Candidates
// are the pre-ranked entry-point names the supervisor probes after
// evaluation; they are ignored for non-React targets. Documents are always
// rebuilt from scratch, never patched.
func (b *Builder) Build(code normalize.Code, candidates []string) string {
	switch {
	case code.Framework == artifact.React:
		return b.buildReact(code.Text, candidates)
	case code.Framework == artifact.HTML:
		return b.buildHTML(code.Text)
	default:
		return b.buildListing(code.Text, code.Framework)
	}
}

// buildReact embeds the untrusted code in an inert holder element the
// supervisor reads back by content. HTML-entity escaping is applied exactly
// once and undone by the parser, so the code never passes through a second
// string-interpolation context where stray quotes or backticks could
// corrupt the document.
func (b *Builder) buildReact(text string, candidates []string) string {
	if candidates == nil {
		candidates = []string{}
	}
	candidateJSON, _ := json.Marshal(candidates)

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<style>%s</style>
<script src="%s"></script>
<script src="%s"></script>
<script src="%s"></script>
<script src="%s"></script>
</head>
<body>
<div id="root"></div>
<div id="source-code" hidden>%s</div>
<script>window.__PREVIEW__ = {candidates: %s};</script>
<script>
%s
</script>
</body>
</html>`,
		baseStyles,
		b.refs.ReactJS,
		b.refs.ReactDOMJS,
		b.refs.BabelJS,
		b.refs.TailwindJS,
		html.EscapeString(text),
		candidateJSON,
		bootstrapJS,
	)
}

// buildHTML passes complete documents through unmodified and wraps
// fragments in a minimal shell.
func (b *Builder) buildHTML(text string) string {
	if IsStandalone(text) {
		return text
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<style>%s</style>
</head>
<body>
%s
</body>
</html>`, baseStyles, text)
}

// buildListing emits the read-only presentation for frameworks the sandbox
// does not execute. Deliberate scope limit, not a defect.
func (b *Builder) buildListing(text string, fw artifact.Framework) string {
	body := html.EscapeString(text)
	if strings.TrimSpace(body) == "" {
		body = "(empty artifact)"
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>%s</style>
</head>
<body>
<div class="listing-label">%s source &mdash; preview shown as code</div>
<pre class="listing">%s</pre>
</body>
</html>`, listingStyles, html.EscapeString(fw.String()), body)
}
