package generation

import (
	"regexp"
	"strings"

	"github.com/GriffinCanCode/SnapUI/backend/internal/domain/artifact"
)

var (
	fencedBlock = regexp.MustCompile("(?s)```[a-zA-Z0-9_+-]*[ \t]*\n(.*?)```")
	htmlDoc     = regexp.MustCompile(`(?is)<!DOCTYPE\s+html.*</html\s*>|<html.*</html\s*>`)
)

// FromReply pulls the generated code out of a model reply. Models are told
// not to fence their output but do it anyway often enough that both shapes
// must be handled. When nothing recognizable is found the whole reply is
// returned; the preview pipeline tolerates arbitrary text.
func FromReply(reply string, fw artifact.Framework) string {
	if fw == artifact.HTML {
		if doc := htmlDoc.FindString(reply); doc != "" {
			return doc
		}
	}

	if m := fencedBlock.FindStringSubmatch(reply); m != nil {
		return strings.TrimSpace(m[1])
	}

	return strings.TrimSpace(reply)
}

// Block extracts a fenced code block from a chat reply. ok is false when
// the reply is prose only, in which case the session code stays unchanged.
func Block(reply string) (string, bool) {
	m := fencedBlock.FindStringSubmatch(reply)
	if m == nil {
		return "", false
	}

	code := strings.TrimSpace(m[1])
	if code == "" {
		return "", false
	}

	return code, true
}
