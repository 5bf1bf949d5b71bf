// Package viewport defines the width profiles the host UI previews
// responsive behavior with, and the load key that forces full surface
// recreation whenever code, framework, or profile changes.
package viewport

import (
	"fmt"
	"strings"

	"github.com/GriffinCanCode/SnapUI/backend/internal/domain/artifact"
	"github.com/GriffinCanCode/SnapUI/backend/internal/shared/utils"
)

// Profile is a named width configuration.
type Profile struct {
	Name      string `json:"name"`
	WidthSpec string `json:"width_spec"`
}

var (
	Desktop = Profile{Name: "desktop", WidthSpec: "100%"}
	Tablet  = Profile{Name: "tablet", WidthSpec: "768px"}
	Mobile  = Profile{Name: "mobile", WidthSpec: "375px"}
)

// Profiles lists all profiles in display order.
var Profiles = []Profile{Desktop, Tablet, Mobile}

// ParseProfile resolves a profile by name, defaulting to desktop.
func ParseProfile(name string) Profile {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case Tablet.Name:
		return Tablet
	case Mobile.Name:
		return Mobile
	default:
		return Desktop
	}
}

// LoadKey derives the surface recreation key for a (framework, profile,
// content) triple. The host discards and recreates the isolated surface
// whenever this key changes; it never patches a loaded document in place.
func LoadKey(fw artifact.Framework, p Profile, code string) string {
	return fmt.Sprintf("%s|%s|%s", fw, p.Name, utils.ShortHash(utils.Fingerprint(code)))
}
