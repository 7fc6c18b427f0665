package rules

import (
	"strings"

	"github.com/teranos/gaffer/annotation"
	"github.com/teranos/gaffer/eco"
	"github.com/teranos/gaffer/ontology"
)

var (
	proteinBinding      = annotation.MustCurie("GO:0005515")
	catalyticActivity   = annotation.MustCurie("GO:0003824")
	proteinComplex      = annotation.MustCurie("GO:0032991")
	molecularFunction   = annotation.MustCurie("GO:0003674")
	biologicalProcess   = annotation.MustCurie("GO:0008150")
	cellularComponent   = annotation.MustCurie("GO:0005575")
	paintReference      = annotation.MustCurie("PMID:21873635")
	obsoleteFunctionRt  = annotation.MustCurie("GO:0005554")
	obsoleteProcessRt   = annotation.MustCurie("GO:0000004")
	obsoleteComponentRt = annotation.MustCurie("GO:0008372")
)

// Subsets consulted by GORULE:0000008.
const (
	SubsetDoNotAnnotate         = "gocheck_do_not_annotate"
	SubsetDoNotManuallyAnnotate = "gocheck_do_not_manually_annotate"
)

// PaintProvider is the only group allowed to submit IBA annotations.
const PaintProvider = "GO_Central"

// DefaultDualSpeciesRoots are the branches that may carry an interacting
// taxon: interspecies interaction, symbiont and host processes and the host
// and symbiont cellular components.
var DefaultDualSpeciesRoots = []annotation.Curie{
	annotation.MustCurie("GO:0044419"),
	annotation.MustCurie("GO:0043903"),
	annotation.MustCurie("GO:0018995"),
	annotation.MustCurie("GO:0044217"),
	annotation.MustCurie("GO:0033643"),
}

// SelfBindingRoots are the terms whose annotations must name the subject
// itself as the binding partner.
var SelfBindingRoots = []annotation.Curie{
	annotation.MustCurie("GO:0042803"),
	annotation.MustCurie("GO:0051260"),
	annotation.MustCurie("GO:0043621"),
}

var rootTerms = map[annotation.Curie]bool{
	molecularFunction: true,
	biologicalProcess: true,
	cellularComponent: true,
}

const taxonRule ID = "GORULE:0000013"

// Catalog returns every rule in declaration order. The engine moves the
// taxon rule to the end.
func Catalog() []Rule {
	return []Rule{
		Check("GORULE:0000002", "No 'NOT' annotations to 'protein binding ; GO:0005515'", Soft, notProteinBinding),
		Check("GORULE:0000006", "IEP and HEP usage is restricted to terms from the Biological Process ontology", Hard, expressionPatternProcess),
		Check("GORULE:0000007", "IPI should not be used with catalytic activity molecular function terms", Soft, ipiCatalytic),
		Check("GORULE:0000008", "No annotations should be made to uninformative high level terms", Soft, uninformativeTerms),
		Check("GORULE:0000011", "ND annotations to root nodes only", Hard, noDataRoots),
		Check(taxonRule, "Taxon-appropriate annotation check", Hard, taxonAppropriate),
		Check("GORULE:0000015", "Dual species taxon check", Soft, dualSpecies),
		Check("GORULE:0000016", "All IC annotations should include a GO ID in the 'With/From' column", Hard, icWithGO),
		Check("GORULE:0000017", "IDA annotations must not have a With/From entry", Soft, idaNoWith),
		Check("GORULE:0000018", "IPI annotations require a With/From entry", Soft, ipiWith),
		Check("GORULE:0000026", "IBA evidence codes should be filtered from main MOD gaf sources", Hard, ibaOnlyInPaint),
		Repair("GORULE:0000028", "Aspect can only be one of C, P, F and must match the term's ontology", Soft, aspectMatchesNamespace),
		Check("GORULE:0000029", "All IEAs over a year old are removed", Soft, oldIEA),
		Check("GORULE:0000030", "Obsolete GO_REFs are not allowed", Soft, deprecatedReferences),
		Check("GORULE:0000037", "IBA annotations should ONLY be assigned_by GO_Central and have PMID:21873635 as a reference", Hard, ibaProvenance),
		Check("GORULE:0000039", "Protein complexes can not be annotated to GO:0032991 (protein-containing complex) or its descendants", Hard, complexPortalSelf),
		Check("GORULE:0000042", "IKR evidence code requires a NOT qualifier", Hard, ikrRequiresNot),
		Check("GORULE:0000043", "Check for valid combination of evidence code and GO_REF", Soft, goRefEvidence),
		Check("GORULE:0000046", "The 'with' field must be the same as the gene product for self-binding terms", Soft, selfBinding),
		Check("GORULE:0000050", "Annotations to ISS, ISA and ISO should not be self-referential", Soft, notSelfReferential),
		Check("GORULE:0000055", "References should have only one ID per ID space", Soft, oneReferencePerSpace),
		Check("GORULE:0000057", "Group specific filter rules should be applied to annotations", Hard, groupFilters),
		Repair("GORULE:0000058", "Object extensions should conform to the extensions-patterns.yaml file in metadata", Soft, extensionConstraints, ContextImport),
		Repair("GORULE:0000061", "Only certain gene product to term relations are allowed for a given GO term", Hard, allowedRelation),
	}
}

func notProteinBinding(_ *Context, a *annotation.Association) Outcome {
	if a.Negated && a.Object.ID == proteinBinding {
		return fail("%s should not be annotated NOT to protein binding", a.Subject.ID)
	}
	return pass()
}

func expressionPatternProcess(c *Context, a *annotation.Association) Outcome {
	code := c.Code(a)
	if code != "IEP" && code != "HEP" {
		return pass()
	}
	ns := c.Namespace(a.Object.ID)
	if ns != "" && ns != annotation.NamespaceBiologicalProcess {
		return fail("%s used with %s term %s", code, ns, a.Object.ID)
	}
	return pass()
}

func ipiCatalytic(c *Context, a *annotation.Association) Outcome {
	if c.Code(a) != "IPI" {
		return pass()
	}
	if c.Descendants(catalyticActivity)[a.Object.ID] {
		return fail("IPI used with catalytic activity term %s", a.Object.ID)
	}
	return pass()
}

func uninformativeTerms(c *Context, a *annotation.Association) Outcome {
	if c.Subset(SubsetDoNotAnnotate)[a.Object.ID] {
		return fail("%s is in %s", a.Object.ID, SubsetDoNotAnnotate)
	}
	if c.Code(a) != "IEA" && c.Subset(SubsetDoNotManuallyAnnotate)[a.Object.ID] {
		return fail("%s is in %s", a.Object.ID, SubsetDoNotManuallyAnnotate)
	}
	return pass()
}

func noDataRoots(c *Context, a *annotation.Association) Outcome {
	nd := c.Code(a) == "ND"
	root := rootTerms[a.Object.ID]
	switch {
	case nd && !root:
		return fail("ND evidence used with non-root term %s", a.Object.ID)
	case !nd && root:
		return fail("root term %s annotated with %s, only ND is allowed", a.Object.ID, c.Code(a))
	}
	return pass()
}

// taxonAppropriate consults the precomputed inference for the record's final
// relation. Non-experimental evidence only warns.
func taxonAppropriate(c *Context, a *annotation.Association) Outcome {
	if a.Negated {
		return pass()
	}
	valid, known := c.cfg.Taxa.Valid(a.Relation, a.Object.ID, a.Subject.Taxon)
	if !known || valid {
		return pass()
	}
	code := c.Code(a)
	o := fail("%s is not appropriate for taxon %s", a.Object.ID, a.Subject.Taxon)
	if !eco.IsExperimental(code) {
		return o.withMode(Soft)
	}
	return o
}

func dualSpecies(c *Context, a *annotation.Association) Outcome {
	if a.InteractingTaxon.IsZero() || c.cfg.Ontology == nil {
		return pass()
	}
	roots := c.cfg.DualSpeciesRoots
	if roots == nil {
		roots = DefaultDualSpeciesRoots
	}
	for _, root := range roots {
		if c.Descendants(root, ontology.IsA, ontology.PartOf)[a.Object.ID] {
			return pass()
		}
	}
	return fail("%s has interacting taxon %s but is not an interspecies term", a.Object.ID, a.InteractingTaxon)
}

func icWithGO(c *Context, a *annotation.Association) Outcome {
	if c.Code(a) != "IC" {
		return pass()
	}
	for _, id := range a.WithFromIDs() {
		if id.Namespace == "GO" {
			return pass()
		}
	}
	return fail("IC annotation to %s has no GO term in With/From", a.Object.ID)
}

func idaNoWith(c *Context, a *annotation.Association) Outcome {
	if c.Code(a) == "IDA" && len(a.Evidence.WithFrom) > 0 {
		return fail("IDA annotation has With/From %s", annotation.DisjunctionString(a.Evidence.WithFrom))
	}
	return pass()
}

func ipiWith(c *Context, a *annotation.Association) Outcome {
	if c.Code(a) == "IPI" && len(a.Evidence.WithFrom) == 0 {
		return fail("IPI annotation to %s has no With/From", a.Object.ID)
	}
	return pass()
}

func ibaOnlyInPaint(c *Context, a *annotation.Association) Outcome {
	if c.Code(a) == "IBA" && !c.cfg.Paint {
		return fail("IBA annotations are only accepted from PAINT")
	}
	return pass()
}

func aspectMatchesNamespace(c *Context, a *annotation.Association) (*annotation.Association, RepairState, string) {
	want, ok := annotation.AspectFromNamespace(c.Namespace(a.Object.ID))
	if !ok || a.Aspect == want {
		return a, Okay, ""
	}
	out := a.Clone()
	out.Aspect = want
	return out, Repaired, "aspect " + string(a.Aspect) + " corrected to " + string(want) + " for " + a.Object.ID.String()
}

func oldIEA(c *Context, a *annotation.Association) Outcome {
	if c.Code(a) != "IEA" || a.Date.IsZero() {
		return pass()
	}
	now := c.Now()
	date := a.Date.ToTime()
	switch {
	case date.AddDate(2, 0, 0).Before(now):
		return fail("IEA dated %s is over two years old", a.Date.YMD()).withMode(Hard)
	case date.AddDate(1, 0, 0).Before(now):
		return fail("IEA dated %s is over a year old", a.Date.YMD())
	}
	return pass()
}

func deprecatedReferences(c *Context, a *annotation.Association) Outcome {
	for _, ref := range a.Evidence.References {
		if ref.Namespace == "GO_PAINT" {
			return fail("reference %s is deprecated", ref)
		}
		if meta, ok := c.cfg.GoRefs[ref]; ok && meta.IsObsolete {
			return fail("reference %s is obsolete", ref)
		}
	}
	return pass()
}

func ibaProvenance(c *Context, a *annotation.Association) Outcome {
	if c.Code(a) != "IBA" {
		return pass()
	}
	if a.ProvidedBy != PaintProvider {
		return fail("IBA assigned by %s, expected %s", a.ProvidedBy, PaintProvider)
	}
	if !annotation.ContainsCurie(a.Evidence.References, paintReference) {
		return fail("IBA without reference %s", paintReference)
	}
	return pass()
}

func complexPortalSelf(_ *Context, a *annotation.Association) Outcome {
	if a.Subject.ID.Namespace == "ComplexPortal" && a.Object.ID == proteinComplex {
		return fail("ComplexPortal entity %s annotated to %s", a.Subject.ID, proteinComplex)
	}
	return pass()
}

func ikrRequiresNot(c *Context, a *annotation.Association) Outcome {
	if c.Code(a) == "IKR" && !a.Negated {
		return fail("IKR annotation to %s is not negated", a.Object.ID)
	}
	return pass()
}

func goRefEvidence(c *Context, a *annotation.Association) Outcome {
	code := c.Code(a)
	for _, ref := range a.Evidence.References {
		meta, ok := c.cfg.GoRefs[ref]
		if !ok || len(meta.EvidenceCodes) == 0 {
			continue
		}
		allowed := false
		for _, e := range meta.EvidenceCodes {
			if e == code || e == a.Evidence.Type.String() {
				allowed = true
				break
			}
		}
		if !allowed {
			return fail("%s does not allow evidence %s", ref, a.Evidence.Type)
		}
	}
	return pass()
}

// selfBinding only applies when a With/From is given; IDA self-binding
// annotations legitimately have none.
func selfBinding(c *Context, a *annotation.Association) Outcome {
	if len(a.Evidence.WithFrom) == 0 || c.cfg.Ontology == nil {
		return pass()
	}
	binding := false
	for _, root := range SelfBindingRoots {
		if c.Descendants(root)[a.Object.ID] {
			binding = true
			break
		}
	}
	if !binding {
		return pass()
	}
	if annotation.ContainsCurie(a.WithFromIDs(), a.Subject.ID) {
		return pass()
	}
	return fail("self-binding term %s but With/From does not include %s", a.Object.ID, a.Subject.ID)
}

func notSelfReferential(c *Context, a *annotation.Association) Outcome {
	switch c.Code(a) {
	case "ISS", "ISA", "ISO":
		if annotation.ContainsCurie(a.WithFromIDs(), a.Subject.ID) {
			return fail("%s annotation lists %s as its own With/From", c.Code(a), a.Subject.ID)
		}
	}
	return pass()
}

func oneReferencePerSpace(_ *Context, a *annotation.Association) Outcome {
	seen := make(map[string]bool, len(a.Evidence.References))
	for _, ref := range a.Evidence.References {
		if seen[ref.Namespace] {
			return fail("more than one %s reference", ref.Namespace)
		}
		seen[ref.Namespace] = true
	}
	return pass()
}

func groupFilters(c *Context, a *annotation.Association) Outcome {
	code := c.Code(a)
	for _, g := range c.cfg.Groups {
		if !strings.EqualFold(g.ID, a.ProvidedBy) {
			continue
		}
		f := g.FilterOut
		for _, e := range f.Evidence {
			if e == code || e == a.Evidence.Type.String() {
				return fail("%s filters out evidence %s", g.ID, e)
			}
		}
		for _, ref := range f.References {
			if annotation.ContainsCurie(a.Evidence.References, ref) {
				return fail("%s filters out reference %s", g.ID, ref)
			}
		}
		for _, er := range f.EvidenceReference {
			if (er.Evidence == code || er.Evidence == a.Evidence.Type.String()) &&
				annotation.ContainsCurie(a.Evidence.References, er.Reference) {
				return fail("%s filters out %s with %s", g.ID, er.Evidence, er.Reference)
			}
		}
		for _, prop := range f.Properties {
			key, value, hasValue := strings.Cut(prop, "=")
			for _, v := range a.PropertyValues(key) {
				if !hasValue || v == value {
					return fail("%s filters out property %s", g.ID, prop)
				}
			}
		}
	}
	return pass()
}

// extensionConstraints drops every conjunction with a unit that matches no
// constraint. Without constraints there is nothing to check.
func extensionConstraints(c *Context, a *annotation.Association) (*annotation.Association, RepairState, string) {
	if len(c.cfg.ExtensionConstraints) == 0 || len(a.ObjectExtensions) == 0 {
		return a, Okay, ""
	}
	var kept []annotation.ExtensionConjunction
	var dropped []string
	for _, conj := range a.ObjectExtensions {
		if conjunctionAllowed(c, a.Object.ID, conj) {
			kept = append(kept, conj)
			continue
		}
		var units []string
		for _, u := range conj {
			units = append(units, u.Relation.String()+"("+u.Term.String()+")")
		}
		dropped = append(dropped, strings.Join(units, ","))
	}
	if len(dropped) == 0 {
		return a, Okay, ""
	}
	out := a.Clone()
	out.ObjectExtensions = nil
	for _, conj := range kept {
		out.ObjectExtensions = append(out.ObjectExtensions, append(annotation.ExtensionConjunction(nil), conj...))
	}
	return out, Repaired, "removed extensions not matching any constraint: " + strings.Join(dropped, "|")
}

func conjunctionAllowed(c *Context, term annotation.Curie, conj annotation.ExtensionConjunction) bool {
	counts := make(map[annotation.Curie]int)
	for _, u := range conj {
		counts[u.Relation]++
	}
	for _, u := range conj {
		if !unitAllowed(c, term, u, counts[u.Relation]) {
			return false
		}
	}
	return true
}

func unitAllowed(c *Context, term annotation.Curie, u annotation.ExtensionUnit, count int) bool {
	for _, ec := range c.cfg.ExtensionConstraints {
		if ec.Relation != u.Relation {
			continue
		}
		if len(ec.Namespaces) > 0 && !containsString(ec.Namespaces, u.Term.Namespace) {
			continue
		}
		if ec.Cardinality > 0 && count > ec.Cardinality {
			continue
		}
		if !ec.PrimaryRoot.IsZero() && c.cfg.Ontology != nil &&
			!c.Descendants(ec.PrimaryRoot, ontology.IsA, ontology.PartOf)[term] {
			continue
		}
		return true
	}
	return false
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// allowedRelation restricts the gene product to term relation by the term's
// branch. Root and obsolete root terms need no ontology; other terms use the
// ontology namespace, falling back to the record's aspect.
func allowedRelation(c *Context, a *annotation.Association) (*annotation.Association, RepairState, string) {
	var allowed []annotation.Curie
	var repairTo annotation.Curie
	hardFail := false

	switch a.Object.ID {
	case obsoleteFunctionRt, molecularFunction:
		allowed, repairTo = []annotation.Curie{annotation.RelEnables}, annotation.RelEnables
	case obsoleteProcessRt, biologicalProcess:
		allowed, repairTo = []annotation.Curie{annotation.RelInvolvedIn}, annotation.RelInvolvedIn
	case obsoleteComponentRt, cellularComponent:
		allowed, repairTo = []annotation.Curie{annotation.RelIsActiveIn}, annotation.RelIsActiveIn
	default:
		aspect, ok := annotation.AspectFromNamespace(c.Namespace(a.Object.ID))
		if !ok {
			aspect = a.Aspect
		}
		switch aspect {
		case annotation.AspectFunction:
			allowed, repairTo = annotation.MolecularFunctionRelations, annotation.RelEnables
		case annotation.AspectProcess:
			allowed, repairTo = annotation.BiologicalProcessRelations, annotation.RelInvolvedIn
		case annotation.AspectComponent:
			if c.Descendants(proteinComplex)[a.Object.ID] {
				allowed = annotation.ProteinComplexRelations
				if a.Relation == annotation.RelLocatedIn || a.Relation == annotation.RelIsActiveIn {
					repairTo = annotation.RelPartOf
				} else {
					hardFail = true
				}
			} else {
				allowed, repairTo = annotation.CellularComponentRelations, annotation.RelLocatedIn
			}
		default:
			return a, Okay, ""
		}
	}

	if annotation.ContainsCurie(allowed, a.Relation) {
		return a, Okay, ""
	}
	label := relationName(a.Relation)
	if hardFail {
		return a, Failed, "relation " + label + " is not allowed for protein complex term " + a.Object.ID.String()
	}

	out := a.Clone()
	out.Relation = repairTo
	for i, q := range out.Qualifiers {
		if q == a.Relation {
			out.Qualifiers[i] = repairTo
		}
	}
	return out, Repaired, "relation " + label + " replaced by " + relationName(repairTo) + " for " + a.Object.ID.String()
}

func relationName(rel annotation.Curie) string {
	if label, ok := annotation.RelationLabel(rel); ok {
		return label
	}
	return rel.String()
}
