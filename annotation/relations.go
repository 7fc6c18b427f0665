package annotation

// Gene product to term relations and extension relations, keyed by the
// label used in GAF qualifiers and annotation extensions.
var relationsByLabel = map[string]Curie{
	// gene product to term
	"enables":                    MustCurie("RO:0002327"),
	"contributes_to":             MustCurie("RO:0002326"),
	"involved_in":                MustCurie("RO:0002331"),
	"acts_upstream_of":           MustCurie("RO:0002263"),
	"acts_upstream_of_or_within": MustCurie("RO:0002264"),
	"part_of":                    MustCurie("BFO:0000050"),
	"located_in":                 MustCurie("RO:0001025"),
	"is_active_in":               MustCurie("RO:0002432"),
	"colocalizes_with":           MustCurie("RO:0002325"),

	"acts_upstream_of_positive_effect":           MustCurie("RO:0004034"),
	"acts_upstream_of_negative_effect":           MustCurie("RO:0004035"),
	"acts_upstream_of_or_within_positive_effect": MustCurie("RO:0004032"),
	"acts_upstream_of_or_within_negative_effect": MustCurie("RO:0004033"),

	// extension relations
	"occurs_in":                     MustCurie("BFO:0000066"),
	"has_part":                      MustCurie("BFO:0000051"),
	"has_input":                     MustCurie("RO:0002233"),
	"has_output":                    MustCurie("RO:0002234"),
	"has_direct_input":              MustCurie("GOREL:0000752"),
	"has_regulation_target":         MustCurie("GOREL:0000015"),
	"regulates":                     MustCurie("RO:0002211"),
	"positively_regulates":          MustCurie("RO:0002213"),
	"negatively_regulates":          MustCurie("RO:0002212"),
	"happens_during":                MustCurie("RO:0002092"),
	"exists_during":                 MustCurie("GOREL:0000032"),
	"has_participant":               MustCurie("RO:0000057"),
	"directly_provides_input_for":   MustCurie("RO:0002413"),
	"directly_positively_regulates": MustCurie("RO:0002629"),
	"directly_negatively_regulates": MustCurie("RO:0002630"),
	"causally_upstream_of":          MustCurie("RO:0002411"),
	"results_in_development_of":     MustCurie("RO:0002296"),
	"results_in_formation_of":       MustCurie("RO:0002297"),
	"results_in_movement_of":        MustCurie("RO:0002565"),
	"adjacent_to":                   MustCurie("RO:0002220"),
	"input_of":                      MustCurie("RO:0002352"),
	"output_of":                     MustCurie("RO:0002353"),
	"dependent_on":                  MustCurie("RO:0002502"),

	"transports_or_maintains_localization_of": MustCurie("RO:0002313"),

	// subject extension (gene product form)
	"subClassOf": MustCurie("rdfs:subClassOf"),
}

var labelsByRelation = func() map[Curie]string {
	m := make(map[Curie]string, len(relationsByLabel))
	for label, c := range relationsByLabel {
		m[c] = label
	}
	return m
}()

// Commonly referenced relations.
var (
	RelEnables                = relationsByLabel["enables"]
	RelContributesTo          = relationsByLabel["contributes_to"]
	RelInvolvedIn             = relationsByLabel["involved_in"]
	RelPartOf                 = relationsByLabel["part_of"]
	RelLocatedIn              = relationsByLabel["located_in"]
	RelIsActiveIn             = relationsByLabel["is_active_in"]
	RelColocalizesWith        = relationsByLabel["colocalizes_with"]
	RelActsUpstreamOf         = relationsByLabel["acts_upstream_of"]
	RelActsUpstreamOfOrWithin = relationsByLabel["acts_upstream_of_or_within"]
	RelSubClassOf             = relationsByLabel["subClassOf"]
)

// RelationByLabel resolves a GAF qualifier or extension label to its Curie.
func RelationByLabel(label string) (Curie, bool) {
	c, ok := relationsByLabel[label]
	return c, ok
}

// RelationLabel returns the label for a relation Curie.
func RelationLabel(c Curie) (string, bool) {
	l, ok := labelsByRelation[c]
	return l, ok
}

// BiologicalProcessRelations are the relations valid for annotations to
// biological_process terms.
var BiologicalProcessRelations = []Curie{
	RelInvolvedIn,
	RelActsUpstreamOf,
	RelActsUpstreamOfOrWithin,
	relationsByLabel["acts_upstream_of_positive_effect"],
	relationsByLabel["acts_upstream_of_negative_effect"],
	relationsByLabel["acts_upstream_of_or_within_positive_effect"],
	relationsByLabel["acts_upstream_of_or_within_negative_effect"],
}

// MolecularFunctionRelations are the relations valid for molecular_function terms.
var MolecularFunctionRelations = []Curie{RelEnables, RelContributesTo}

// CellularComponentRelations are the relations valid for cellular_component terms.
var CellularComponentRelations = []Curie{RelPartOf, RelLocatedIn, RelIsActiveIn, RelColocalizesWith}

// ProteinComplexRelations are the relations valid for protein-containing complex terms.
var ProteinComplexRelations = []Curie{RelPartOf, RelColocalizesWith}

// RelationsForAspect returns the gene product to term relations allowed for an aspect.
func RelationsForAspect(a Aspect) []Curie {
	switch a {
	case AspectFunction:
		return MolecularFunctionRelations
	case AspectProcess:
		return BiologicalProcessRelations
	case AspectComponent:
		return CellularComponentRelations
	}
	return nil
}

// ContainsCurie reports whether c is in list.
func ContainsCurie(list []Curie, c Curie) bool {
	for _, e := range list {
		if e == c {
			return true
		}
	}
	return false
}
