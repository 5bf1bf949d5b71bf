package artifact

import (
	"fmt"
	"strings"
	"time"
)

// Framework is the declared target framework of a generation artifact.
// The declaration is advisory: the preview pipeline treats the code as
// opaque untrusted text regardless of what the generator claims.
type Framework string

const (
	React   Framework = "react"
	Angular Framework = "angular"
	Vue     Framework = "vue"
	Svelte  Framework = "svelte"
	HTML    Framework = "html"
)

// Supported lists every framework the generation side accepts.
var Supported = []Framework{React, Angular, Vue, Svelte, HTML}

// ParseFramework normalizes a client-supplied technology string.
// Unknown values fall back to React, matching the generation prompts.
func ParseFramework(s string) Framework {
	switch Framework(strings.ToLower(strings.TrimSpace(s))) {
	case React:
		return React
	case Angular:
		return Angular
	case Vue:
		return Vue
	case Svelte:
		return Svelte
	case HTML:
		return HTML
	default:
		return React
	}
}

// Executable reports whether the framework is one of the two targets the
// sandbox actually runs. Everything else is shown as a read-only listing.
func (f Framework) Executable() bool {
	return f == React || f == HTML
}

func (f Framework) String() string {
	return string(f)
}

// Artifact is one generated code payload plus its target framework,
// produced by the generation or chat collaborator. Immutable once created;
// the pipeline receives it by value on every render.
type Artifact struct {
	Code        string    `json:"code"`
	Framework   Framework `json:"framework"`
	SessionID   string    `json:"session_id"`
	ImageBase64 string    `json:"image_base64,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	Fallback    bool      `json:"fallback,omitempty"`
}

// New creates an artifact from a successful generation.
func New(code string, fw Framework, sessionID string) Artifact {
	return Artifact{
		Code:      code,
		Framework: fw,
		SessionID: sessionID,
		CreatedAt: time.Now(),
	}
}

// NewFallback builds the deterministic substitute artifact used when a
// generation or chat call fails or times out. It is always valid HTML so
// the pipeline invariant "always something to normalize" holds and the
// preview surface shows a readable notice instead of going blank.
func NewFallback(sessionID string, reason string) Artifact {
	code := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Generation unavailable</title></head>
<body style="font-family: system-ui, sans-serif; padding: 2rem; color: #334155;">
  <h2>Generation unavailable</h2>
  <p>%s</p>
  <p>Upload the screenshot again or retry from the chat panel.</p>
</body>
</html>`, escapeText(reason))

	return Artifact{
		Code:      code,
		Framework: HTML,
		SessionID: sessionID,
		CreatedAt: time.Now(),
		Fallback:  true,
	}
}

// escapeText neutralizes markup in failure reasons before they are placed
// into the fallback document.
func escapeText(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}
