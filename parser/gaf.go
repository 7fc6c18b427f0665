package parser

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/teranos/gaffer/annotation"
	"github.com/teranos/gaffer/eco"
	"github.com/teranos/gaffer/report"
)

const (
	gafColumns   = 17
	gafV1Columns = 15
)

// GAF column indexes.
const (
	gafDB = iota
	gafDBObjectID
	gafSymbol
	gafQualifier
	gafTerm
	gafReference
	gafEvidence
	gafWithFrom
	gafAspect
	gafName
	gafSynonym
	gafType
	gafTaxon
	gafDate
	gafAssignedBy
	gafExtension
	gafGeneProductForm
)

// gafFreeText are the columns kept as written, surrounding spaces included.
var gafFreeText = []int{gafSymbol, gafName, gafSynonym}

// GAFParser reads GAF 1.0, 2.0, 2.1 and 2.2 lines.
type GAFParser struct {
	base
}

var _ Parser = (*GAFParser)(nil)

// NewGAF creates a GAF parser. rep may be nil, in which case a fresh report
// is used.
func NewGAF(cfg Config, rep *report.Report, log *zap.SugaredLogger) (*GAFParser, error) {
	b, err := newBase(FormatGAF, cfg, rep, log)
	if err != nil {
		return nil, err
	}
	return &GAFParser{base: b}, nil
}

// ParseLine parses one GAF line.
func (p *GAFParser) ParseLine(raw string) ParseResult {
	res, done := p.prepare(raw)
	if done {
		return res
	}

	cols := normalizeColumns(res.Line, gafV1Columns, gafColumns, gafFreeText...)
	if cols == nil {
		p.record(&res, wrongColumns(res.Line, gafV1Columns, gafColumns), "")
		return p.skip(res)
	}

	var problems []*ParseError
	fail := func() ParseResult {
		p.recordAll(&res, problems, "")
		return p.skip(res)
	}

	for _, required := range []requiredColumn{
		{gafDB, "DB"}, {gafDBObjectID, "DB_Object_ID"}, {gafTerm, "GO_ID"},
		{gafReference, "DB:Reference"}, {gafEvidence, "Evidence_Code"}, {gafAssignedBy, "Assigned_By"},
	} {
		if cols[required.col] == "" {
			problems = append(problems, NewParseError(ErrorKindSyntax, report.TypeMissingField,
				fmt.Sprintf("required column %s is empty", required.name)).WithColumn(required.col+1))
		}
	}
	if hasError(problems) {
		return fail()
	}

	subject, probs := subjectID(cols[gafDB], cols[gafDBObjectID])
	problems = append(problems, probs...)

	if strings.TrimSpace(cols[gafSymbol]) == "" {
		problems = append(problems, newWarning(ErrorKindSyntax, report.TypeInvalidSymbol,
			"DB_Object_Symbol is empty").WithColumn(gafSymbol+1).WithValue(subject.String()))
	}

	negated, qualifiers, pe := parseQualifiers(cols[gafQualifier], gafQualifier+1)
	problems = appendProblem(problems, pe)

	term, pe := coreID(cols[gafTerm], gafTerm+1, "GO_ID")
	problems = appendProblem(problems, pe)

	refs, probs := parseReferences(cols[gafReference], gafReference+1)
	problems = append(problems, probs...)

	withFrom, probs := parseWithFrom(cols[gafWithFrom], gafWithFrom+1)
	problems = append(problems, probs...)

	aspect := annotation.Aspect(cols[gafAspect])
	if !aspect.Valid() {
		problems = append(problems, NewParseError(ErrorKindSyntax, report.TypeInvalidAspect,
			fmt.Sprintf("aspect %q is not one of C, P, F", cols[gafAspect])).
			WithColumn(gafAspect+1).WithValue(cols[gafAspect]))
	}

	taxon, interacting, pe := parseTaxon(cols[gafTaxon], gafTaxon+1)
	problems = appendProblem(problems, pe)

	date, probs := parseDate(cols[gafDate], false, gafDate+1)
	problems = append(problems, probs...)

	extensions, pe := parseExtensions(cols[gafExtension], gafExtension+1)
	problems = appendProblem(problems, pe)

	var subjectExt []annotation.ExtensionUnit
	if form := cols[gafGeneProductForm]; form != "" {
		c, pe := supportingID(form, gafGeneProductForm+1, "Gene_Product_Form_ID")
		problems = appendProblem(problems, pe)
		if !c.IsZero() {
			subjectExt = []annotation.ExtensionUnit{{Relation: annotation.RelSubClassOf, Term: c}}
		}
	}

	if hasError(problems) {
		return fail()
	}

	code := cols[gafEvidence]
	class, ok := p.eco.ToECO(code, refs)
	if !ok {
		if !p.cfg.AllowUnmappedECO {
			problems = append(problems, NewParseError(ErrorKindSemantic, report.TypeUnknownEvidence,
				fmt.Sprintf("evidence code %s has no ECO mapping", code)).
				WithColumn(gafEvidence+1).WithValue(code))
			return fail()
		}
		class = eco.Unmapped
		problems = append(problems, newWarning(ErrorKindSemantic, report.TypeUnknownEvidence,
			fmt.Sprintf("evidence code %s has no ECO mapping, using %s", code, eco.Unmapped)).
			WithColumn(gafEvidence+1).WithValue(code))
	}
	if p.excludedEvidence(code, class) {
		problems = append(problems, NewParseError(ErrorKindSemantic, report.TypeEvidenceFiltered,
			fmt.Sprintf("evidence %s is excluded", code)).
			WithSeverity(SeverityInfo).WithColumn(gafEvidence+1).WithValue(code))
		return fail()
	}

	var relation annotation.Curie
	switch {
	case len(qualifiers) > 0:
		relation = qualifiers[0]
	case RequiresRelation(p.version):
		problems = append(problems, NewParseError(ErrorKindSemantic, report.TypeInvalidQualifier,
			fmt.Sprintf("GAF %s requires a relation qualifier", shortVersion(p.version))).
			WithColumn(gafQualifier+1).WithValue(cols[gafQualifier]).
			WithSuggestion(fmt.Sprintf("use one of %s", relationLabels(annotation.RelationsForAspect(aspect)))))
		return fail()
	default:
		relation, _ = annotation.DefaultRelation(aspect)
	}
	if RequiresRelation(p.version) && !annotation.ContainsCurie(annotation.RelationsForAspect(aspect), relation) {
		label, _ := annotation.RelationLabel(relation)
		problems = append(problems, NewParseError(ErrorKindSemantic, report.TypeInvalidQualifier,
			fmt.Sprintf("relation %s is not valid for aspect %s", label, aspect)).
			WithColumn(gafQualifier+1).WithValue(cols[gafQualifier]))
		return fail()
	}

	if pe := p.checkIDSpaces(subject, term); pe != nil {
		problems = append(problems, pe)
		return fail()
	}
	if !p.taxonAllowed(taxon) {
		problems = append(problems, NewParseError(ErrorKindSemantic, report.TypeTaxonNotAllowed,
			fmt.Sprintf("taxon %s is not in the allowed set", taxon)).
			WithSeverity(SeverityWarning).WithColumn(gafTaxon+1).WithValue(taxon.String()))
		return fail()
	}

	term, pe = p.repairObsolete(term, gafTerm+1)
	problems = appendProblem(problems, pe)

	gpType, ok := annotation.GeneProductType(cols[gafType])
	if !ok {
		gpType = annotation.GeneProductTypeFallback
		problems = append(problems, newWarning(ErrorKindSemantic, report.TypeUnknownGeneProductType,
			fmt.Sprintf("DB_Object_Type %q is unknown, using %s", cols[gafType], gpType)).
			WithColumn(gafType+1).WithValue(cols[gafType]))
	}

	var fullName []string
	if strings.TrimSpace(cols[gafName]) != "" {
		fullName = []string{cols[gafName]}
	}

	a := &annotation.Association{
		SourceLine: res.Line,
		Subject: annotation.Subject{
			ID:       subject,
			Label:    cols[gafSymbol],
			FullName: fullName,
			Synonyms: splitPipe(cols[gafSynonym]),
			Type:     []annotation.Curie{gpType},
			Taxon:    taxon,
		},
		Relation:         relation,
		Object:           annotation.Term{ID: term, Taxon: taxon},
		Negated:          negated,
		Qualifiers:       qualifiers,
		Aspect:           aspect,
		InteractingTaxon: interacting,
		Evidence: annotation.Evidence{
			Type:       class,
			References: refs,
			WithFrom:   withFrom,
		},
		SubjectExtensions: subjectExt,
		ProvidedBy:        cols[gafAssignedBy],
		Date:              date,
	}

	p.recordAll(&res, problems, "")
	res.Associations = fanOut(a, extensions)
	return res
}

func appendProblem(problems []*ParseError, pe *ParseError) []*ParseError {
	if pe == nil {
		return problems
	}
	return append(problems, pe)
}

func relationLabels(rels []annotation.Curie) string {
	s := ""
	for i, r := range rels {
		if i > 0 {
			s += ", "
		}
		label, _ := annotation.RelationLabel(r)
		s += label
	}
	return s
}
