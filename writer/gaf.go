package writer

import (
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/teranos/gaffer/annotation"
	"github.com/teranos/gaffer/eco"
	"github.com/teranos/gaffer/errors"
	"github.com/teranos/gaffer/parser"
)

func gafColumns(a *annotation.Association, v *semver.Version, m *eco.Map) ([]string, error) {
	code := m.Code(a.Evidence.Type)
	if code == "" {
		return nil, errors.WithHint(
			errors.Wrapf(ErrUnwritable, "evidence %s has no GAF code", a.Evidence.Type),
			"write GPAD instead, which carries ECO classes directly")
	}

	taxon := gafTaxon(a.Subject.Taxon)
	if !a.InteractingTaxon.IsZero() {
		taxon += "|" + gafTaxon(a.InteractingTaxon)
	}

	var gpType string
	if len(a.Subject.Type) > 0 {
		gpType = annotation.GeneProductTypeLabel(a.Subject.Type[0])
	}

	var form string
	for _, u := range a.SubjectExtensions {
		if u.Relation == annotation.RelSubClassOf {
			form = u.Term.String()
			break
		}
	}

	return []string{
		a.Subject.ID.Namespace,
		a.Subject.ID.Identity,
		a.Subject.Label,
		gafQualifier(a, v),
		a.Object.ID.String(),
		joinCuries(a.Evidence.References, "|"),
		code,
		annotation.DisjunctionString(a.Evidence.WithFrom),
		string(a.Aspect),
		strings.Join(a.Subject.FullName, "|"),
		strings.Join(a.Subject.Synonyms, "|"),
		gpType,
		taxon,
		a.Date.YMD(),
		a.ProvidedBy,
		extensionString(a.ObjectExtensions, false),
		form,
	}, nil
}

// gafQualifier renders column 4. GAF 2.2 always names the relation; earlier
// versions repeat the qualifiers that were read, so an empty column stays
// empty.
func gafQualifier(a *annotation.Association, v *semver.Version) string {
	var parts []string
	if a.Negated {
		parts = append(parts, "NOT")
	}
	if parser.RequiresRelation(v) {
		if !a.Relation.IsZero() {
			parts = append(parts, relationLabel(a.Relation))
		}
	} else {
		for _, q := range a.Qualifiers {
			parts = append(parts, relationLabel(q))
		}
	}
	return strings.Join(parts, "|")
}
