package annotation

// Aspect is the single-letter GO branch code of GAF column 9.
type Aspect string

const (
	AspectFunction  Aspect = "F"
	AspectProcess   Aspect = "P"
	AspectComponent Aspect = "C"
)

// OBO namespaces of the three GO branches.
const (
	NamespaceMolecularFunction = "molecular_function"
	NamespaceBiologicalProcess = "biological_process"
	NamespaceCellularComponent = "cellular_component"
)

// Valid reports whether a is one of C, P, F.
func (a Aspect) Valid() bool {
	return a == AspectFunction || a == AspectProcess || a == AspectComponent
}

// AspectFromNamespace maps an OBO namespace to its aspect code.
func AspectFromNamespace(ns string) (Aspect, bool) {
	switch ns {
	case NamespaceMolecularFunction:
		return AspectFunction, true
	case NamespaceBiologicalProcess:
		return AspectProcess, true
	case NamespaceCellularComponent:
		return AspectComponent, true
	}
	return "", false
}

// DefaultRelation is the GAF 2.1 relation implied by an aspect when the
// qualifier column names none.
func DefaultRelation(a Aspect) (Curie, bool) {
	switch a {
	case AspectFunction:
		return RelEnables, true
	case AspectProcess:
		return RelInvolvedIn, true
	case AspectComponent:
		return RelPartOf, true
	}
	return Curie{}, false
}
