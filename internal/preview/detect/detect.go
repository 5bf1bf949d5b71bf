// Package detect locates entry-point candidates in normalized generated
// code. The generation service guarantees no export shape, so detection is
// a best-effort lexical scan; whether a candidate actually resolves to a
// callable value can only be confirmed after evaluation, inside the
// sandboxed supervisor. A scan with zero candidates is a valid outcome.
package detect

import (
	"regexp"
	"sort"
)

// Kind classifies how a candidate was declared.
type Kind int

const (
	// FunctionDecl is a named function declaration: `function Card() {...}`.
	FunctionDecl Kind = iota
	// ConstAssignment binds an identifier to a function literal:
	// `const Card = function() {...}`.
	ConstAssignment
	// ArrowAssignment binds an identifier to an arrow callable:
	// `const Card = () => {...}`.
	ArrowAssignment
)

func (k Kind) String() string {
	switch k {
	case FunctionDecl:
		return "function"
	case ConstAssignment:
		return "const-function"
	case ArrowAssignment:
		return "arrow"
	default:
		return "unknown"
	}
}

// Candidate is one possible entry point, ephemeral per render attempt.
type Candidate struct {
	Name   string `json:"name"`
	Kind   Kind   `json:"kind"`
	Offset int    `json:"offset"`
}

var (
	functionDeclPattern = regexp.MustCompile(`function\s+([A-Za-z_$][\w$]*)\s*\(`)
	constFuncPattern    = regexp.MustCompile(`(?:const|let|var)\s+([A-Za-z_$][\w$]*)\s*=\s*function\b`)
	arrowPattern        = regexp.MustCompile(`(?:const|let|var)\s+([A-Za-z_$][\w$]*)\s*=\s*(?:async\s+)?\(?[\w\s,{}.\[\]=]*\)?\s*=>`)

	// Generated code occasionally re-assigns a bare identifier to an arrow
	// (`App = () => ...`). Line-anchored so property assignments like
	// `obj.handler = () =>` never match.
	bareArrowPattern = regexp.MustCompile(`(?m)^[ \t]*([A-Za-z_$][\w$]*)\s*=\s*(?:async\s+)?\(?[\w\s,{}.\[\]=]*\)?\s*=>`)
)

// excluded names can never be the root component: runtime hooks the
// generated code calls, plus logging/timer globals the patterns would
// otherwise pick up from reassignments.
var excluded = map[string]bool{
	"useState":        true,
	"useEffect":       true,
	"useMemo":         true,
	"useCallback":     true,
	"useRef":          true,
	"useContext":      true,
	"useReducer":      true,
	"useLayoutEffect": true,
	"console":         true,
	"setTimeout":      true,
	"setInterval":     true,
	"clearTimeout":    true,
	"clearInterval":   true,
	"fetch":           true,
	"alert":           true,
	"require":         true,
}

// Candidates scans normalized code and returns entry-point candidates in
// resolution order: pattern priority (function > const-function > arrow)
// dominates, then first occurrence wins. Duplicate names keep their
// highest-priority occurrence. The scan is pure and restartable.
func Candidates(code string) []Candidate {
	var found []Candidate

	collect := func(pattern *regexp.Regexp, kind Kind) {
		for _, m := range pattern.FindAllStringSubmatchIndex(code, -1) {
			name := code[m[2]:m[3]]
			if excluded[name] {
				continue
			}
			found = append(found, Candidate{
				Name:   name,
				Kind:   kind,
				Offset: m[0],
			})
		}
	}

	collect(functionDeclPattern, FunctionDecl)
	collect(constFuncPattern, ConstAssignment)
	collect(arrowPattern, ArrowAssignment)
	collect(bareArrowPattern, ArrowAssignment)

	sort.SliceStable(found, func(i, j int) bool {
		if found[i].Kind != found[j].Kind {
			return found[i].Kind < found[j].Kind
		}
		return found[i].Offset < found[j].Offset
	})

	// Keep the best-ranked occurrence per name.
	seen := make(map[string]bool, len(found))
	result := found[:0]
	for _, c := range found {
		if seen[c.Name] {
			continue
		}
		seen[c.Name] = true
		result = append(result, c)
	}

	return result
}

// Names returns just the candidate names, in resolution order. This is the
// list the supervisor probes against the evaluated scope.
func Names(candidates []Candidate) []string {
	names := make([]string, len(candidates))
	for i, c := range candidates {
		names[i] = c.Name
	}
	return names
}
