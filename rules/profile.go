package rules

import (
	"io"

	"github.com/BurntSushi/toml"

	"github.com/teranos/gaffer/errors"
)

// Profile is a named rule selection, for example the rules an import merge
// runs or a single rule under test.
//
//	name = "import"
//	contexts = ["import"]
//	enabled = ["GORULE:0000058", "61"]
//	disabled = ["29"]
type Profile struct {
	Name     string   `toml:"name"`
	Enabled  []string `toml:"enabled"`
	Disabled []string `toml:"disabled"`
	Contexts []string `toml:"contexts"`
	Paint    bool     `toml:"paint"`
}

// LoadProfileFile reads a profile from a TOML file.
func LoadProfileFile(path string) (*Profile, error) {
	var p Profile
	md, err := toml.DecodeFile(path, &p)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read profile %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.Wrapf(errors.ErrInvalidConfig, "profile %s: unknown key %s", path, undecoded[0])
	}
	return &p, nil
}

// LoadProfile reads a profile from TOML.
func LoadProfile(r io.Reader) (*Profile, error) {
	var p Profile
	md, err := toml.NewDecoder(r).Decode(&p)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInvalidConfig, err.Error())
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.Wrapf(errors.ErrInvalidConfig, "unknown profile key %s", undecoded[0])
	}
	return &p, nil
}

// Apply sets cfg's rule selection from the profile. Every listed rule must
// be in the catalog.
func (p *Profile) Apply(cfg *Config) error {
	known := make(map[ID]bool)
	for _, r := range Catalog() {
		known[r.ID] = true
	}
	resolve := func(raw []string) ([]ID, error) {
		ids := make([]ID, 0, len(raw))
		for _, s := range raw {
			id, ok := NormalizeID(s)
			if !ok || !known[id] {
				return nil, errors.Wrapf(errors.ErrInvalidConfig, "profile %q: unknown rule %q", p.Name, s)
			}
			ids = append(ids, id)
		}
		return ids, nil
	}

	enabled, err := resolve(p.Enabled)
	if err != nil {
		return err
	}
	disabled, err := resolve(p.Disabled)
	if err != nil {
		return err
	}

	if len(enabled) > 0 {
		cfg.Enabled = nil
		cfg.Enable(enabled...)
	}
	if len(disabled) > 0 {
		if cfg.Enabled == nil {
			cfg.Enabled = make(map[ID]bool, len(known))
			for id := range known {
				cfg.Enabled[id] = true
			}
		}
		for _, id := range disabled {
			delete(cfg.Enabled, id)
		}
	}
	cfg.Contexts = append(cfg.Contexts, p.Contexts...)
	cfg.Paint = cfg.Paint || p.Paint
	return nil
}
