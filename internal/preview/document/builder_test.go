package document

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/SnapUI/backend/internal/domain/artifact"
	"github.com/GriffinCanCode/SnapUI/backend/internal/preview/normalize"
)

func reactCode(text string) normalize.Code {
	return normalize.Code{Text: text, Framework: artifact.React}
}

func TestBuildReactDocument(t *testing.T) {
	b := NewBuilder(DefaultRuntimeRefs())

	doc := b.Build(reactCode("function Card(){return 1}"), []string{"Card"})

	assert.True(t, strings.HasPrefix(doc, "<!DOCTYPE html>"))
	assert.Contains(t, doc, `<div id="root">`)
	assert.Contains(t, doc, "function Card(){return 1}")
	assert.Contains(t, doc, `{candidates: ["Card"]}`)
	// Runtime and transform toolchain references.
	assert.Contains(t, doc, "react.production.min.js")
	assert.Contains(t, doc, "react-dom.production.min.js")
	assert.Contains(t, doc, "babel.min.js")
	// The supervisor travels inside the document.
	assert.Contains(t, doc, "Babel.transform")
}

func TestBuildReactEscapesCodeOnce(t *testing.T) {
	b := NewBuilder(DefaultRuntimeRefs())

	// Untrusted text with every delimiter that historically corrupted
	// template-interpolated documents.
	hostile := "const s = `tick`; const q = \"quote\"; if (a < b && c > d) {}\n</script><script>alert(1)</script>"
	doc := b.Build(reactCode(hostile), nil)

	// The raw close-tag must not survive into the holder element.
	holderStart := strings.Index(doc, `<div id="source-code" hidden>`)
	require.Positive(t, holderStart)
	holderEnd := strings.Index(doc[holderStart:], "</div>")
	require.Positive(t, holderEnd)
	holder := doc[holderStart : holderStart+holderEnd]

	assert.NotContains(t, holder, "</script>")
	assert.Contains(t, holder, "&lt;/script&gt;")
	assert.Contains(t, holder, "`tick`", "backticks need no escaping outside template contexts")
}

func TestBuildReactEmptyCandidates(t *testing.T) {
	b := NewBuilder(DefaultRuntimeRefs())

	doc := b.Build(reactCode("1+1;"), nil)

	assert.Contains(t, doc, "{candidates: []}")
}

func TestBuildReactEmptyCodeStillRenders(t *testing.T) {
	b := NewBuilder(DefaultRuntimeRefs())

	doc := b.Build(reactCode(""), nil)

	assert.NotEmpty(t, doc)
	assert.Contains(t, doc, `<div id="root">`)
}

func TestBuildHTMLStandalonePassthrough(t *testing.T) {
	b := NewBuilder(DefaultRuntimeRefs())
	full := "<!DOCTYPE html>\n<html><head><title>t</title></head><body><p>hi</p></body></html>"

	doc := b.Build(normalize.Code{Text: full, Framework: artifact.HTML}, nil)

	assert.Equal(t, full, doc)
}

func TestBuildHTMLFragmentWrapped(t *testing.T) {
	b := NewBuilder(DefaultRuntimeRefs())

	doc := b.Build(normalize.Code{Text: "<p>fragment</p>", Framework: artifact.HTML}, nil)

	assert.True(t, strings.HasPrefix(doc, "<!DOCTYPE html>"))
	assert.Contains(t, doc, "<p>fragment</p>")
}

func TestBuildListingForUnsupportedFramework(t *testing.T) {
	b := NewBuilder(DefaultRuntimeRefs())
	code := normalize.Code{Text: "<template><div @click=\"go\"/></template>", Framework: artifact.Vue}

	doc := b.Build(code, nil)

	assert.Contains(t, doc, "vue source")
	// Escaped, never executable.
	assert.NotContains(t, doc, "<template>")
	assert.Contains(t, doc, "&lt;template&gt;")
}

func TestIsStandalone(t *testing.T) {
	assert.True(t, IsStandalone("<!DOCTYPE html><html></html>"))
	assert.True(t, IsStandalone("  <!doctype html>"))
	assert.True(t, IsStandalone("<html><body/></html>"))
	assert.False(t, IsStandalone("<div>fragment</div>"))
	assert.False(t, IsStandalone(""))
}

func TestExtractInlineScripts(t *testing.T) {
	htmlText := `<!DOCTYPE html><html><head>
<script src="https://example.com/lib.js"></script>
<script>var a = 1;</script>
<script type="application/json">{"not": "code"}</script>
</head><body>
<script type="text/javascript">function go() {}</script>
</body></html>`

	scripts := ExtractInlineScripts(htmlText)

	require.Len(t, scripts, 2)
	assert.Equal(t, "var a = 1;", scripts[0])
	assert.Equal(t, "function go() {}", scripts[1])
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "Landing", Title("<html><head><title>Landing</title></head></html>"))
	assert.Equal(t, "", Title("<div>no title</div>"))
}
