package annotation

// Gene product type labels (GAF column 12) and the classes they denote.
var gpTypes = []struct {
	label string
	curie Curie
}{
	{"protein", MustCurie("PR:000000001")},
	{"protein_complex", MustCurie("GO:0032991")},
	{"protein_containing_complex", MustCurie("GO:0032991")},
	{"gene", MustCurie("SO:0000704")},
	{"gene_product", MustCurie("CHEBI:33695")},
	{"transcript", MustCurie("SO:0000673")},
	{"RNA", MustCurie("CHEBI:33697")},
	{"mRNA", MustCurie("SO:0000234")},
	{"ncRNA", MustCurie("SO:0000655")},
	{"rRNA", MustCurie("SO:0000252")},
	{"tRNA", MustCurie("SO:0000253")},
	{"snRNA", MustCurie("SO:0000274")},
	{"snoRNA", MustCurie("SO:0000275")},
	{"miRNA", MustCurie("SO:0000276")},
	{"lnc_RNA", MustCurie("SO:0001877")},
	{"lncRNA", MustCurie("SO:0001877")},
	{"scaRNA", MustCurie("SO:0002095")},
	{"SRP_RNA", MustCurie("SO:0000590")},
	{"RNase_P_RNA", MustCurie("SO:0000386")},
	{"RNase_MRP_RNA", MustCurie("SO:0000385")},
	{"telomerase_RNA", MustCurie("SO:0000390")},
	{"antisense_lncRNA", MustCurie("SO:0002182")},
	{"guide_RNA", MustCurie("SO:0000602")},
	{"pre_miRNA", MustCurie("SO:0001244")},
	{"piRNA", MustCurie("SO:0001035")},
	{"marker_or_uncloned_locus", MustCurie("SO:0001645")},
	{"pseudogene", MustCurie("SO:0000336")},
	{"biological_region", MustCurie("SO:0001411")},
	{"gene_segment", MustCurie("SO:3000000")},
}

// GeneProductTypeFallback is used for labels without a known class.
var GeneProductTypeFallback = MustCurie("CHEBI:33695")

// GeneProductType maps a GAF type label to its class. Labels that are already
// Curies are parsed directly.
func GeneProductType(label string) (Curie, bool) {
	for _, t := range gpTypes {
		if t.label == label {
			return t.curie, true
		}
	}
	if c, err := ParseCurie(label); err == nil {
		return c, true
	}
	return Curie{}, false
}

// GeneProductTypeLabel maps a class back to the first GAF label that names it.
func GeneProductTypeLabel(c Curie) string {
	for _, t := range gpTypes {
		if t.curie == c {
			return t.label
		}
	}
	return c.String()
}
