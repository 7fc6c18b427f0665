package parser

import (
	"github.com/teranos/gaffer/annotation"
	"github.com/teranos/gaffer/ontology"
)

var (
	biologicalProcessRoot = annotation.MustCurie("GO:0008150")
	cellularComponentRoot = annotation.MustCurie("GO:0008372")
	proteinComplex        = annotation.MustCurie("GO:0032991")
)

// UpgradeEmptyQualifier picks a specific relation for a legacy GAF 2.1
// record whose qualifier column was empty. It returns the record unchanged
// (and false) when there was a qualifier or no ontology. The input is never
// modified.
func UpgradeEmptyQualifier(a *annotation.Association, o ontology.Lookup) (*annotation.Association, bool) {
	if a == nil || len(a.Qualifiers) > 0 || o == nil {
		return a, false
	}

	var relation annotation.Curie
	switch a.Object.ID {
	case biologicalProcessRoot:
		relation = annotation.RelInvolvedIn
	case cellularComponentRoot:
		relation = annotation.RelIsActiveIn
	default:
		switch o.Namespace(a.Object.ID) {
		case annotation.NamespaceBiologicalProcess:
			relation = annotation.RelInvolvedIn
		case annotation.NamespaceMolecularFunction:
			relation = annotation.RelEnables
		case annotation.NamespaceCellularComponent:
			if ontology.IsDescendant(o, a.Object.ID, proteinComplex, ontology.IsA) {
				relation = annotation.RelPartOf
			} else {
				relation = annotation.RelLocatedIn
			}
		default:
			return a, false
		}
	}

	if relation == a.Relation {
		return a, false
	}
	up := a.Clone()
	up.Relation = relation
	return up, true
}
