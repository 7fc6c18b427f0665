package ontology

import (
	"encoding/json"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/teranos/gaffer/annotation"
	"github.com/teranos/gaffer/errors"
	"github.com/teranos/gaffer/logger"
)

const (
	oboPurl         = "http://purl.obolibrary.org/obo/"
	predNamespace   = "http://www.geneontology.org/formats/oboInOwl#hasOBONamespace"
	predReplacedBy  = "http://purl.obolibrary.org/obo/IAO_0100001"
	predReplacedBy2 = "replaced_by"
)

// OBO Graphs JSON document, only the parts read here.
type oboDocument struct {
	Graphs []oboGraph `json:"graphs"`
}

type oboGraph struct {
	ID    string    `json:"id"`
	Nodes []oboNode `json:"nodes"`
	Edges []oboEdge `json:"edges"`
}

type oboNode struct {
	ID   string   `json:"id"`
	Lbl  string   `json:"lbl"`
	Type string   `json:"type"`
	Meta *oboMeta `json:"meta"`
}

type oboMeta struct {
	Deprecated          bool               `json:"deprecated"`
	Subsets             []string           `json:"subsets"`
	BasicPropertyValues []oboPropertyValue `json:"basicPropertyValues"`
}

type oboPropertyValue struct {
	Pred string `json:"pred"`
	Val  string `json:"val"`
}

type oboEdge struct {
	Sub  string `json:"sub"`
	Pred string `json:"pred"`
	Obj  string `json:"obj"`
}

// LoadFile reads an OBO Graphs JSON file (go.json, go-basic.json).
func LoadFile(path string, log *zap.SugaredLogger) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open ontology %s", path)
	}
	defer f.Close()
	return Load(f, log)
}

// Load decodes OBO Graphs JSON. Only CLASS nodes become terms; edges whose
// ends are not both Curie-shaped are skipped.
func Load(r io.Reader, log *zap.SugaredLogger) (*Graph, error) {
	log = logger.OrNop(log)

	var doc oboDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.Wrap(err, "failed to decode obograph json")
	}
	if len(doc.Graphs) == 0 {
		return nil, errors.New("obograph document has no graphs")
	}

	g := NewGraph(doc.Graphs[0].ID)
	skipped := 0
	for _, og := range doc.Graphs {
		for _, n := range og.Nodes {
			if n.Type != "" && n.Type != "CLASS" {
				continue
			}
			id, ok := contractIRI(n.ID)
			if !ok {
				skipped++
				continue
			}
			g.AddTerm(nodeToTerm(id, n))
		}
		for _, e := range og.Edges {
			sub, ok1 := contractIRI(e.Sub)
			obj, ok2 := contractIRI(e.Obj)
			pred, ok3 := contractPredicate(e.Pred)
			if !ok1 || !ok2 || !ok3 {
				skipped++
				continue
			}
			g.AddEdge(sub, pred, obj)
		}
	}

	log.Infow("Ontology loaded",
		logger.FieldComponent, "ontology",
		"graph", g.ID,
		logger.FieldCount, g.Len(),
		"skipped", skipped,
	)
	return g, nil
}

func nodeToTerm(id annotation.Curie, n oboNode) Term {
	t := Term{ID: id, Label: n.Lbl}
	if n.Meta == nil {
		return t
	}
	t.Obsolete = n.Meta.Deprecated
	for _, s := range n.Meta.Subsets {
		t.Subsets = append(t.Subsets, subsetName(s))
	}
	for _, pv := range n.Meta.BasicPropertyValues {
		switch pv.Pred {
		case predNamespace:
			t.Namespace = pv.Val
		case predReplacedBy, predReplacedBy2:
			if c, ok := contractIRI(pv.Val); ok {
				t.ReplacedBy = append(t.ReplacedBy, c)
			}
		}
	}
	return t
}

// contractIRI turns http://purl.obolibrary.org/obo/GO_0005634 into
// GO:0005634. Values that are already Curies are accepted as is.
func contractIRI(iri string) (annotation.Curie, bool) {
	if local, ok := strings.CutPrefix(iri, oboPurl); ok {
		idx := strings.Index(local, "_")
		if idx <= 0 {
			return annotation.Curie{}, false
		}
		c, err := annotation.ParseCurie(local[:idx] + ":" + local[idx+1:])
		return c, err == nil
	}
	if strings.Contains(iri, "://") {
		return annotation.Curie{}, false
	}
	c, err := annotation.ParseCurie(iri)
	return c, err == nil
}

func contractPredicate(pred string) (annotation.Curie, bool) {
	switch pred {
	case "is_a", "subClassOf", "rdfs:subClassOf":
		return IsA, true
	case "part_of":
		return PartOf, true
	}
	return contractIRI(pred)
}

// subsetName strips the namespace from a subset IRI
// (http://purl.obolibrary.org/obo/go#goslim_generic -> goslim_generic).
func subsetName(s string) string {
	if idx := strings.LastIndex(s, "#"); idx >= 0 {
		return s[idx+1:]
	}
	return s
}
