// Package normalize strips generation-model formatting artifacts from raw
// generated code before it is embedded into a preview document.
//
// The generation model wraps output in markdown fences inconsistently, tags
// them with arbitrary language hints, and emits module-style import/export
// boilerplate that cannot resolve inside the sandbox. Normalization is a
// pure, idempotent text pass; it never attempts to repair broken syntax.
package normalize

import (
	"regexp"
	"strings"

	"github.com/GriffinCanCode/SnapUI/backend/internal/domain/artifact"
)

// Code is the deterministic output of normalization. It has no lifecycle of
// its own: it is recomputed on every render and never cached across artifacts.
type Code struct {
	Text      string
	Framework artifact.Framework
}

var (
	// Fence markers with an optional attached language hint, matched anywhere
	// in the text so dangling or mid-text fences are removed too.
	fencePattern = regexp.MustCompile("```+[a-zA-Z0-9_+-]*")

	// import ... from 'module' / import 'module'
	importPattern = regexp.MustCompile(`(?m)^\s*import\s+(?:[^;\n]+\s+from\s+)?['"][^'"\n]+['"]\s*;?\s*$`)

	// trailing `export default Name;` statements
	exportDefaultName = regexp.MustCompile(`(?m)^\s*export\s+default\s+[A-Za-z_$][\w$]*\s*;?\s*$`)

	// `export default function Foo` keeps the declaration, drops the export
	exportDefaultDecl = regexp.MustCompile(`(?m)^(\s*)export\s+default\s+(function|class)\b`)
)

// Normalize strips fences and module boilerplate from raw generated text.
// Empty output is valid: downstream stages treat it as "nothing detected",
// not as an error.
func Normalize(raw string, fw artifact.Framework) Code {
	text := fencePattern.ReplaceAllString(raw, "")

	if fw == artifact.React {
		text = importPattern.ReplaceAllString(text, "")
		text = exportDefaultName.ReplaceAllString(text, "")
		text = exportDefaultDecl.ReplaceAllString(text, "${1}${2}")
	}

	return Code{
		Text:      strings.TrimSpace(text),
		Framework: fw,
	}
}

// Empty reports whether normalization produced no code at all.
func (c Code) Empty() bool {
	return c.Text == ""
}
