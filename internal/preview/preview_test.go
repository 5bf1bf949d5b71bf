package preview

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/SnapUI/backend/internal/domain/artifact"
	"github.com/GriffinCanCode/SnapUI/backend/internal/preview/document"
	"github.com/GriffinCanCode/SnapUI/backend/internal/preview/sandbox"
	"github.com/GriffinCanCode/SnapUI/backend/internal/preview/viewport"
)

func newService(t *testing.T) *Service {
	t.Helper()
	return NewService(document.NewBuilder(document.DefaultRuntimeRefs()))
}

func TestRenderFencedReactComponent(t *testing.T) {
	svc := newService(t)
	art := artifact.New("```jsx\nfunction Card(){return 1}\n```", artifact.React, "sess_1")

	surface := svc.Render(context.Background(), art, viewport.Desktop)

	assert.NotContains(t, surface.Document, "```")
	assert.Contains(t, surface.Document, "function Card(){return 1}")
	assert.Equal(t, "Card", surface.EntryPointHint)
	require.NotEmpty(t, surface.Candidates)
	assert.Equal(t, "Card", surface.Candidates[0].Name)
	// The supervisor must be able to reach Mounted: candidates travel
	// with the document and the transform toolchain is referenced.
	assert.Contains(t, surface.Document, `{candidates: ["Card"]}`)
	assert.Contains(t, surface.Document, "Babel.transform")
}

func TestRenderTruncatedSyntaxStillProducesDocument(t *testing.T) {
	svc := newService(t)
	art := artifact.New("function Bad(){ return <div", artifact.React, "sess_1")

	surface := svc.Render(context.Background(), art, viewport.Desktop)

	// The host never sees the failure: the document carries the
	// supervisor whose transform stage will render the labeled error.
	assert.NotEmpty(t, surface.Document)
	assert.Contains(t, surface.Document, "preview-transform-error")
	assert.Contains(t, surface.Document, "Transform error")
}

func TestRenderNoDeclarations(t *testing.T) {
	svc := newService(t)
	art := artifact.New("1+1;", artifact.React, "sess_1")

	surface := svc.Render(context.Background(), art, viewport.Desktop)

	assert.Empty(t, surface.Candidates)
	assert.Empty(t, surface.EntryPointHint)
	// The neutral placeholder path must be present in the supervisor.
	assert.Contains(t, surface.Document, "No root component auto-detected")
}

func TestRenderUnsupportedFrameworkListing(t *testing.T) {
	svc := newService(t)
	art := artifact.New("<template><div/></template>", artifact.Vue, "sess_1")

	surface := svc.Render(context.Background(), art, viewport.Desktop)

	assert.Contains(t, surface.Document, "vue source")
	assert.NotContains(t, surface.Document, "<template>")
	assert.Empty(t, surface.Candidates, "no execution is attempted for listings")
}

func TestRenderEmptyArtifactNeverBlank(t *testing.T) {
	svc := newService(t)

	for _, fw := range artifact.Supported {
		art := artifact.New("", fw, "sess_1")
		surface := svc.Render(context.Background(), art, viewport.Desktop)

		assert.NotEmpty(t, surface.Document, "framework %s produced an empty document", fw)
	}
}

func TestRenderViewportChangeRecreatesSurface(t *testing.T) {
	svc := newService(t)
	art := artifact.New("function App(){return null}", artifact.React, "sess_1")

	desktop := svc.Render(context.Background(), art, viewport.Desktop)
	mobile := svc.Render(context.Background(), art, viewport.Mobile)

	assert.NotEqual(t, desktop.LoadKey, mobile.LoadKey)
	// Normalized code is untouched by the viewport switch.
	assert.Equal(t, desktop.Document, mobile.Document)
}

func TestRenderHTMLPreflightFlagsBrokenScript(t *testing.T) {
	pool, err := sandbox.NewPool(sandbox.DefaultConfig(), 1)
	require.NoError(t, err)
	defer pool.Close()

	svc := newService(t).WithPreflight(pool, false)
	art := artifact.New(
		"<!DOCTYPE html><html><body><script>function broken( {</script></body></html>",
		artifact.HTML, "sess_1")

	surface := svc.Render(context.Background(), art, viewport.Desktop)

	require.NotEmpty(t, surface.Diagnostics)
	assert.Equal(t, "parse", surface.Diagnostics[0].Stage)
	// Advisory only: the document still ships.
	assert.NotEmpty(t, surface.Document)
}

func TestRenderHTMLCleanScriptNoFindings(t *testing.T) {
	svc := newService(t)
	art := artifact.New(
		"<!DOCTYPE html><html><body><script>var ok = 1;</script></body></html>",
		artifact.HTML, "sess_1")

	surface := svc.Render(context.Background(), art, viewport.Desktop)

	assert.Empty(t, surface.Diagnostics)
}

func TestRenderFallbackArtifact(t *testing.T) {
	svc := newService(t)
	art := artifact.NewFallback("sess_1", "gateway timeout")

	surface := svc.Render(context.Background(), art, viewport.Desktop)

	assert.Equal(t, artifact.HTML, surface.Framework)
	assert.Contains(t, surface.Document, "Generation unavailable")
}

func TestRenderDeterministic(t *testing.T) {
	svc := newService(t)
	art := artifact.New("function App(){return null}", artifact.React, "sess_1")

	a := svc.Render(context.Background(), art, viewport.Tablet)
	b := svc.Render(context.Background(), art, viewport.Tablet)

	assert.Equal(t, a, b)
}

func TestRenderDocumentIsSelfContained(t *testing.T) {
	svc := newService(t)
	art := artifact.New("function App(){return null}", artifact.React, "sess_1")

	surface := svc.Render(context.Background(), art, viewport.Desktop)

	doc := strings.ToLower(surface.Document)
	assert.True(t, strings.HasPrefix(doc, "<!doctype html>"))
	assert.Contains(t, doc, "</html>")
}
