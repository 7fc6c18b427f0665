package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/teranos/gaffer/errors"
)

// Format is an annotation file family.
type Format string

const (
	FormatGAF  Format = "gaf"
	FormatGPAD Format = "gpad"
)

// Versions with distinct parsing behavior.
var (
	GAF21  = semver.MustParse("2.1")
	GAF22  = semver.MustParse("2.2")
	GPAD12 = semver.MustParse("1.2")
	GPAD20 = semver.MustParse("2.0")
)

var (
	// GAF 2.2 requires an explicit relation qualifier
	gafRelationRequired = mustConstraint(">= 2.2")
	// GPAD 2.0 uses a single subject Curie, Curie relations and ISO dates
	gpadV2 = mustConstraint(">= 2.0")

	supportedGAF  = mustConstraint(">= 1.0, < 3.0")
	supportedGPAD = mustConstraint(">= 1.0, < 3.0")
)

var versionHeader = regexp.MustCompile(`^!\s*(gaf|gpa|gpad)-version:\s*(\S+)`)

func mustConstraint(c string) *semver.Constraints {
	cs, err := semver.NewConstraint(c)
	if err != nil {
		panic(err)
	}
	return cs
}

// ParseFormat resolves a format name given on the command line or in config.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "gaf":
		return FormatGAF, nil
	case "gpad", "gpa":
		return FormatGPAD, nil
	}
	return "", errors.Wrapf(errors.ErrUnknownFormat, "%q", name)
}

// ParseVersionHeader recognizes !gaf-version, !gpa-version and !gpad-version
// header lines.
func ParseVersionHeader(line string) (Format, *semver.Version, bool) {
	m := versionHeader.FindStringSubmatch(line)
	if m == nil {
		return "", nil, false
	}
	v, err := semver.NewVersion(m[2])
	if err != nil {
		return "", nil, false
	}
	if m[1] == "gaf" {
		return FormatGAF, v, true
	}
	return FormatGPAD, v, true
}

// DefaultVersion is the version assumed when a file declares none: the
// lowest supported version of the family.
func DefaultVersion(f Format) *semver.Version {
	if f == FormatGPAD {
		return GPAD12
	}
	return GAF21
}

// Supported reports whether v is a version of f this parser reads.
func Supported(f Format, v *semver.Version) bool {
	if f == FormatGPAD {
		return supportedGPAD.Check(v)
	}
	return supportedGAF.Check(v)
}

// VersionHeader renders the header line declaring v.
func VersionHeader(f Format, v *semver.Version) string {
	if f == FormatGPAD {
		if gpadV2.Check(v) {
			return "!gpad-version: " + shortVersion(v)
		}
		return "!gpa-version: " + shortVersion(v)
	}
	return "!gaf-version: " + shortVersion(v)
}

func shortVersion(v *semver.Version) string {
	return fmt.Sprintf("%d.%d", v.Major(), v.Minor())
}

// IsGPAD2 reports whether v uses the GPAD 2.0 layout.
func IsGPAD2(v *semver.Version) bool { return gpadV2.Check(v) }

// RequiresRelation reports whether GAF v needs an explicit relation qualifier.
func RequiresRelation(v *semver.Version) bool { return gafRelationRequired.Check(v) }
