package writer

import (
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/teranos/gaffer/annotation"
	"github.com/teranos/gaffer/errors"
	"github.com/teranos/gaffer/parser"
)

func gpadColumns(a *annotation.Association, v *semver.Version) ([]string, error) {
	if a.Relation.IsZero() {
		return nil, errors.Wrapf(ErrUnwritable, "%s has no relation", a.Subject.ID)
	}

	props := make([]string, len(a.Properties))
	for i, p := range a.Properties {
		props[i] = p.Key + "=" + p.Value
	}
	common := []string{
		a.Object.ID.String(),
		joinCuries(a.Evidence.References, "|"),
		a.Evidence.Type.String(),
		annotation.DisjunctionString(a.Evidence.WithFrom),
	}

	if parser.IsGPAD2(v) {
		negation := ""
		if a.Negated {
			negation = "NOT"
		}
		cols := []string{a.Subject.ID.String(), negation, a.Relation.String()}
		cols = append(cols, common...)
		return append(cols,
			a.InteractingTaxon.String(),
			a.Date.ISO(),
			a.ProvidedBy,
			extensionString(a.ObjectExtensions, true),
			strings.Join(props, "|"),
		), nil
	}

	qualifier := relationLabel(a.Relation)
	if a.Negated {
		qualifier = "NOT|" + qualifier
	}
	cols := []string{a.Subject.ID.Namespace, a.Subject.ID.Identity, qualifier}
	cols = append(cols, common...)
	return append(cols,
		gafTaxon(a.InteractingTaxon),
		a.Date.YMD(),
		a.ProvidedBy,
		extensionString(a.ObjectExtensions, false),
		strings.Join(props, "|"),
	), nil
}
