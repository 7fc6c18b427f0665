package parser

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/teranos/gaffer/annotation"
	"github.com/teranos/gaffer/report"
)

const (
	gpadColumns     = 12
	gpadMinColumns  = 10
	gpad2MinColumns = 12
)

// GPAD column indexes. GPAD 2.0 merges DB and DB_Object_ID into column 1 and
// turns column 2 into the negation flag; the rest line up.
const (
	gpadDB = iota
	gpadDBObjectID
	gpadQualifier
	gpadTerm
	gpadReference
	gpadEvidence
	gpadWithFrom
	gpadInteractingTaxon
	gpadDate
	gpadAssignedBy
	gpadExtension
	gpadProperties
)

const (
	gpad2Subject  = 0
	gpad2Negation = 1
	gpad2Relation = 2
)

// GPADParser reads GPAD 1.2 and 2.0 lines.
type GPADParser struct {
	base
}

var _ Parser = (*GPADParser)(nil)

// NewGPAD creates a GPAD parser.
func NewGPAD(cfg Config, rep *report.Report, log *zap.SugaredLogger) (*GPADParser, error) {
	b, err := newBase(FormatGPAD, cfg, rep, log)
	if err != nil {
		return nil, err
	}
	return &GPADParser{base: b}, nil
}

// ParseLine parses one GPAD line.
func (p *GPADParser) ParseLine(raw string) ParseResult {
	res, done := p.prepare(raw)
	if done {
		return res
	}
	v2 := IsGPAD2(p.version)

	lo := gpadMinColumns
	if v2 {
		lo = gpad2MinColumns
	}
	cols := normalizeColumns(res.Line, lo, gpadColumns)
	if cols == nil {
		p.record(&res, wrongColumns(res.Line, lo, gpadColumns), "")
		return p.skip(res)
	}

	var problems []*ParseError
	fail := func() ParseResult {
		p.recordAll(&res, problems, "")
		return p.skip(res)
	}

	required := []requiredColumn{
		{gpadTerm, "GO_ID"}, {gpadReference, "Reference"}, {gpadEvidence, "Evidence"}, {gpadAssignedBy, "Assigned_By"},
	}
	if v2 {
		required = append(required, requiredColumn{gpad2Subject, "DB_Object_ID"})
	} else {
		required = append(required, requiredColumn{gpadDB, "DB"}, requiredColumn{gpadDBObjectID, "DB_Object_ID"})
	}
	for _, r := range required {
		if cols[r.col] == "" {
			problems = append(problems, NewParseError(ErrorKindSyntax, report.TypeMissingField,
				fmt.Sprintf("required column %s is empty", r.name)).WithColumn(r.col+1))
		}
	}
	if hasError(problems) {
		return fail()
	}

	var (
		subject    annotation.Curie
		negated    bool
		qualifiers []annotation.Curie
		relation   annotation.Curie
		pe         *ParseError
	)
	if v2 {
		subject, pe = coreID(cols[gpad2Subject], gpad2Subject+1, "subject")
		problems = appendProblem(problems, pe)

		switch cols[gpad2Negation] {
		case "NOT":
			negated = true
		case "":
		default:
			problems = append(problems, NewParseError(ErrorKindSyntax, report.TypeInvalidQualifier,
				fmt.Sprintf("negation column must be NOT or empty, got %q", cols[gpad2Negation])).
				WithColumn(gpad2Negation+1).WithValue(cols[gpad2Negation]))
		}

		rel, ok := relationFromToken(cols[gpad2Relation])
		if !ok {
			problems = append(problems, NewParseError(ErrorKindSemantic, report.TypeInvalidQualifier,
				fmt.Sprintf("relation %q is not known", cols[gpad2Relation])).
				WithColumn(gpad2Relation+1).WithValue(cols[gpad2Relation]))
		} else {
			relation = rel
			qualifiers = []annotation.Curie{rel}
		}
	} else {
		var probs []*ParseError
		subject, probs = subjectID(cols[gpadDB], cols[gpadDBObjectID])
		problems = append(problems, probs...)

		negated, qualifiers, pe = parseQualifiers(cols[gpadQualifier], gpadQualifier+1)
		problems = appendProblem(problems, pe)
		if pe == nil && len(qualifiers) == 0 {
			problems = append(problems, NewParseError(ErrorKindSemantic, report.TypeInvalidQualifier,
				"GPAD requires a relation in the qualifier column").
				WithColumn(gpadQualifier+1).WithValue(cols[gpadQualifier]))
		}
		if len(qualifiers) > 0 {
			relation = qualifiers[0]
		}
	}

	term, pe := coreID(cols[gpadTerm], gpadTerm+1, "GO_ID")
	problems = appendProblem(problems, pe)

	refs, probs := parseReferences(cols[gpadReference], gpadReference+1)
	problems = append(problems, probs...)

	class, pe := coreID(cols[gpadEvidence], gpadEvidence+1, "evidence")
	problems = appendProblem(problems, pe)

	withFrom, probs := parseWithFrom(cols[gpadWithFrom], gpadWithFrom+1)
	problems = append(problems, probs...)

	var interacting annotation.Curie
	if cols[gpadInteractingTaxon] != "" {
		interacting, pe = normalizeTaxon(cols[gpadInteractingTaxon], gpadInteractingTaxon+1)
		problems = appendProblem(problems, pe)
	}

	date, probs := parseDate(cols[gpadDate], v2, gpadDate+1)
	problems = append(problems, probs...)

	extensions, pe := parseExtensions(cols[gpadExtension], gpadExtension+1)
	problems = appendProblem(problems, pe)

	props, probs := parseProperties(cols[gpadProperties], gpadProperties+1)
	problems = append(problems, probs...)

	if hasError(problems) {
		return fail()
	}

	if p.excludedEvidence(p.eco.Code(class), class) {
		problems = append(problems, NewParseError(ErrorKindSemantic, report.TypeEvidenceFiltered,
			fmt.Sprintf("evidence %s is excluded", class)).
			WithSeverity(SeverityInfo).WithColumn(gpadEvidence+1).WithValue(class.String()))
		return fail()
	}
	if pe := p.checkIDSpaces(subject, term); pe != nil {
		problems = append(problems, pe)
		return fail()
	}

	term, pe = p.repairObsolete(term, gpadTerm+1)
	problems = appendProblem(problems, pe)

	a := &annotation.Association{
		SourceLine:       res.Line,
		Subject:          annotation.Subject{ID: subject},
		Relation:         relation,
		Object:           annotation.Term{ID: term},
		Negated:          negated,
		Qualifiers:       qualifiers,
		Aspect:           p.aspectFor(term, relation),
		InteractingTaxon: interacting,
		Evidence: annotation.Evidence{
			Type:       class,
			References: refs,
			WithFrom:   withFrom,
		},
		ProvidedBy: cols[gpadAssignedBy],
		Date:       date,
		Properties: props,
	}

	p.recordAll(&res, problems, "")
	res.Associations = fanOut(a, extensions)
	return res
}

// aspectFor infers the aspect GPAD does not carry: from the term's OBO
// namespace when an ontology is present, otherwise from the relation.
func (p *GPADParser) aspectFor(term, relation annotation.Curie) annotation.Aspect {
	if p.cfg.Ontology != nil {
		if a, ok := annotation.AspectFromNamespace(p.cfg.Ontology.Namespace(term)); ok {
			return a
		}
	}
	for _, a := range []annotation.Aspect{annotation.AspectFunction, annotation.AspectProcess, annotation.AspectComponent} {
		if annotation.ContainsCurie(annotation.RelationsForAspect(a), relation) {
			return a
		}
	}
	return ""
}
