// Package preview implements the preview rendering pipeline: untrusted
// generated text goes in, a standalone sandbox document plus its surface
// load key comes out. Host-side stages (normalize, detect, build) are pure
// and synchronous; everything that executes untrusted code happens inside
// the isolated surface the document describes, or inside the advisory goja
// preflight.
package preview

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/SnapUI/backend/internal/domain/artifact"
	"github.com/GriffinCanCode/SnapUI/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/SnapUI/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/SnapUI/backend/internal/preview/detect"
	"github.com/GriffinCanCode/SnapUI/backend/internal/preview/document"
	"github.com/GriffinCanCode/SnapUI/backend/internal/preview/normalize"
	"github.com/GriffinCanCode/SnapUI/backend/internal/preview/sandbox"
	"github.com/GriffinCanCode/SnapUI/backend/internal/preview/viewport"
)

// Surface is one built preview: everything the host UI needs to load the
// isolated surface. Changing code, framework, or viewport yields a new
// Surface with a new load key; a loaded surface is never patched in place.
type Surface struct {
	Document       string             `json:"document"`
	LoadKey        string             `json:"load_key"`
	Framework      artifact.Framework `json:"framework"`
	Viewport       viewport.Profile   `json:"viewport"`
	EntryPointHint string             `json:"entry_point_hint,omitempty"`
	Candidates     []detect.Candidate `json:"candidates,omitempty"`
	Diagnostics    []Diagnostic       `json:"diagnostics,omitempty"`
}

// Diagnostic is an advisory preflight finding. It never blocks a render.
type Diagnostic struct {
	Stage   string `json:"stage"` // "parse" or "evaluate"
	Message string `json:"message"`
}

// Service orchestrates the pipeline. One render per call, no caching
// across artifacts.
type Service struct {
	builder  *document.Builder
	pool     *sandbox.Pool
	evaluate bool
	logger   *logging.Logger
	metrics  *monitoring.Metrics
}

// NewService creates a pipeline service around a document builder.
func NewService(builder *document.Builder) *Service {
	return &Service{
		builder: builder,
		logger:  logging.NewDefault(),
	}
}

// WithLogger sets the logger.
func (s *Service) WithLogger(logger *logging.Logger) *Service {
	s.logger = logger
	return s
}

// WithMetrics enables metrics collection.
func (s *Service) WithMetrics(metrics *monitoring.Metrics) *Service {
	s.metrics = metrics
	return s
}

// WithPreflight enables script evaluation probes using the given pool.
// Parse checks run regardless; evaluation is opt-in because DOM-heavy
// scripts produce noisy signals against stubbed documents.
func (s *Service) WithPreflight(pool *sandbox.Pool, evaluate bool) *Service {
	s.pool = pool
	s.evaluate = evaluate
	return s
}

// Render runs the full pipeline for one artifact and viewport profile.
// It always produces a loadable document: failure classes surface inside
// the document itself, never as a missing preview.
func (s *Service) Render(ctx context.Context, art artifact.Artifact, vp viewport.Profile) Surface {
	start := time.Now()

	code := normalize.Normalize(art.Code, art.Framework)

	var candidates []detect.Candidate
	if code.Framework == artifact.React {
		candidates = detect.Candidates(code.Text)
	}

	surface := Surface{
		Document:   s.builder.Build(code, detect.Names(candidates)),
		LoadKey:    viewport.LoadKey(code.Framework, vp, code.Text),
		Framework:  code.Framework,
		Viewport:   vp,
		Candidates: candidates,
	}
	if len(candidates) > 0 {
		surface.EntryPointHint = candidates[0].Name
	}

	if code.Framework == artifact.HTML {
		surface.Diagnostics = s.preflight(ctx, surface.Document)
	}

	if s.metrics != nil {
		s.metrics.RecordRender(code.Framework.String(), renderMode(code.Framework), time.Since(start))
	}
	s.logger.Debug("preview rendered",
		zap.String("framework", code.Framework.String()),
		zap.String("load_key", surface.LoadKey),
		zap.String("entry_point", surface.EntryPointHint),
		zap.Int("candidates", len(candidates)),
		zap.Int("diagnostics", len(surface.Diagnostics)),
	)

	return surface
}

// preflight parse-checks inline scripts of an HTML artifact and, when
// enabled, probes them in the goja pool. Findings are advisory.
func (s *Service) preflight(ctx context.Context, doc string) []Diagnostic {
	var diags []Diagnostic

	for _, script := range document.ExtractInlineScripts(doc) {
		if err := sandbox.Check(script); err != nil {
			diags = append(diags, Diagnostic{Stage: "parse", Message: err.Error()})
			if s.metrics != nil {
				s.metrics.RecordPreflightFinding("parse")
			}
			continue
		}

		if s.evaluate && s.pool != nil {
			if _, err := s.pool.Probe(ctx, script); err != nil {
				diags = append(diags, Diagnostic{Stage: "evaluate", Message: err.Error()})
				if s.metrics != nil {
					s.metrics.RecordPreflightFinding("evaluate")
				}
			}
		}
	}

	return diags
}

func renderMode(fw artifact.Framework) string {
	switch fw {
	case artifact.React:
		return "executed"
	case artifact.HTML:
		return "rendered"
	default:
		return "listing"
	}
}
