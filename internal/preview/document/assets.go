package document

import _ "embed"

// bootstrapJS is the supervisor script that runs inside the isolated
// surface. It owns the staged load (runtime, transform, eval, resolve,
// mount) and converts every failure into a visible fallback.
//
//go:embed assets/bootstrap.js
var bootstrapJS string

// baseStyles is the minimal reset plus the fallback surfaces the
// supervisor renders into. Kept small on purpose: the generated code
// brings its own styling.
const baseStyles = `
* { box-sizing: border-box; }
html, body { margin: 0; padding: 0; }
body { font-family: system-ui, -apple-system, sans-serif; background: #ffffff; }
#root { min-height: 100vh; }
.preview-fallback { padding: 2rem; color: #334155; }
.preview-fallback-label { font-weight: 600; margin-bottom: 0.5rem; }
.preview-fallback-message { white-space: pre-wrap; font-family: ui-monospace, monospace; font-size: 0.85rem; color: #64748b; }
.preview-transform-error .preview-fallback-label { color: #b45309; }
.preview-render-error .preview-fallback-label { color: #b91c1c; }
.preview-empty .preview-fallback-label { color: #475569; }
`

// listingStyles is the read-only presentation for frameworks the sandbox
// does not execute.
const listingStyles = `
body { font-family: system-ui, -apple-system, sans-serif; background: #0f172a; color: #e2e8f0; margin: 0; }
.listing-label { padding: 0.75rem 1rem; font-size: 0.8rem; text-transform: uppercase; letter-spacing: 0.05em; color: #94a3b8; border-bottom: 1px solid #1e293b; }
.listing { margin: 0; padding: 1rem; overflow: auto; font-family: ui-monospace, monospace; font-size: 0.85rem; line-height: 1.5; white-space: pre-wrap; }
`
