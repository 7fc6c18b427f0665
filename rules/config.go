package rules

import (
	"sync"
	"time"

	"github.com/teranos/gaffer/annotation"
	"github.com/teranos/gaffer/eco"
	"github.com/teranos/gaffer/ontology"
)

// ContextImport is the run context of an import merge. Rules tagged with it
// are auto-passed in ordinary validation runs.
const ContextImport = "import"

// Config is the shared rule configuration. Every field is optional; absent
// data means "no constraint" for the rules that would consult it.
type Config struct {
	Ontology ontology.Lookup
	ECO      *eco.Map

	Groups               []Group
	GoRefs               map[annotation.Curie]GoRef
	Taxa                 *TaxonTable
	ExtensionConstraints []ExtensionConstraint
	// DualSpeciesRoots are the terms (with their descendants) that may be
	// annotated with an interacting taxon. Nil means the built-in roots.
	DualSpeciesRoots []annotation.Curie

	// Enabled limits the run to these rules. Nil runs every rule.
	Enabled map[ID]bool
	// Contexts lists the active run contexts.
	Contexts []string
	// Paint marks a PAINT (IBA) submission run.
	Paint bool

	// Now is the clock for age based rules. Nil means time.Now.
	Now func() time.Time
}

// DefaultConfig returns a configuration with the default ECO table and no
// metadata.
func DefaultConfig() Config {
	return Config{ECO: eco.Default()}
}

// Enable restricts cfg to the given rules.
func (cfg *Config) Enable(ids ...ID) {
	if cfg.Enabled == nil {
		cfg.Enabled = make(map[ID]bool, len(ids))
	}
	for _, id := range ids {
		cfg.Enabled[id] = true
	}
}

// Context is what a rule sees besides the record: the configuration and the
// closure cache owned by the engine.
type Context struct {
	cfg      Config
	closures *closureCache
	contexts map[string]bool
}

func newContext(cfg Config) *Context {
	if cfg.ECO == nil {
		cfg.ECO = eco.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	active := make(map[string]bool, len(cfg.Contexts))
	for _, c := range cfg.Contexts {
		active[c] = true
	}
	return &Context{cfg: cfg, closures: newClosureCache(cfg.Ontology), contexts: active}
}

// Config returns the configuration the engine was built with.
func (c *Context) Config() Config { return c.cfg }

// Code is the GAF evidence code of a record's ECO class, or "".
func (c *Context) Code(a *annotation.Association) string {
	return c.cfg.ECO.Code(a.Evidence.Type)
}

// Now returns the engine's clock reading.
func (c *Context) Now() time.Time { return c.cfg.Now() }

// Namespace returns the term's OBO namespace, or "".
func (c *Context) Namespace(term annotation.Curie) string {
	if c.cfg.Ontology == nil {
		return ""
	}
	return c.cfg.Ontology.Namespace(term)
}

// Descendants returns the cached reflexive closure below root over preds
// (is_a when none are given). The result is nil without an ontology.
func (c *Context) Descendants(root annotation.Curie, preds ...annotation.Curie) map[annotation.Curie]bool {
	return c.closures.descendants(root, preds)
}

// Subset returns the cached members of a named subset, nil without an
// ontology.
func (c *Context) Subset(name string) map[annotation.Curie]bool {
	return c.closures.subset(name)
}

func (c *Context) active(r Rule) bool {
	if len(r.Contexts) == 0 {
		return true
	}
	for _, ctx := range r.Contexts {
		if c.contexts[ctx] {
			return true
		}
	}
	return false
}

func (c *Context) enabled(id ID) bool {
	return c.cfg.Enabled == nil || c.cfg.Enabled[id]
}

type closureKey struct {
	root  annotation.Curie
	preds string
}

// closureCache computes each closure once per engine. It is safe for
// concurrent use so one engine may serve several goroutines.
type closureCache struct {
	o           ontology.Lookup
	mu          sync.Mutex
	descendantM map[closureKey]map[annotation.Curie]bool
	subsetM     map[string]map[annotation.Curie]bool
}

func newClosureCache(o ontology.Lookup) *closureCache {
	return &closureCache{
		o:           o,
		descendantM: make(map[closureKey]map[annotation.Curie]bool),
		subsetM:     make(map[string]map[annotation.Curie]bool),
	}
}

func (cc *closureCache) descendants(root annotation.Curie, preds []annotation.Curie) map[annotation.Curie]bool {
	if cc.o == nil {
		return nil
	}
	if len(preds) == 0 {
		preds = []annotation.Curie{ontology.IsA}
	}
	key := closureKey{root: root}
	for _, p := range preds {
		key.preds += p.String() + " "
	}

	cc.mu.Lock()
	defer cc.mu.Unlock()
	if s, ok := cc.descendantM[key]; ok {
		return s
	}
	s := ontology.Set(cc.o.Descendants(root, preds, true))
	cc.descendantM[key] = s
	return s
}

func (cc *closureCache) subset(name string) map[annotation.Curie]bool {
	if cc.o == nil {
		return nil
	}
	cc.mu.Lock()
	defer cc.mu.Unlock()
	if s, ok := cc.subsetM[name]; ok {
		return s
	}
	s := ontology.Set(cc.o.Subset(name))
	cc.subsetM[name] = s
	return s
}
