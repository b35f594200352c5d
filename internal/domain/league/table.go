package league

import (
	"fmt"
	"sort"
)

// Table is an immutable lookup of league configs by key.
type Table struct {
	byKey map[string]Config
}

func NewTable(configs []Config) (*Table, error) {
	byKey := make(map[string]Config, len(configs))
	for _, c := range configs {
		if err := c.Validate(); err != nil {
			return nil, err
		}
		if _, dup := byKey[c.Key]; dup {
			return nil, fmt.Errorf("duplicate league key %q", c.Key)
		}
		if c.RefreshInterval <= 0 {
			c.RefreshInterval = TierInterval(c.Tier)
		}
		byKey[c.Key] = c
	}
	return &Table{byKey: byKey}, nil
}

func (t *Table) Get(key string) (Config, bool) {
	c, ok := t.byKey[key]
	return c, ok
}

// ByProviderID finds the league owning the given provider league ID.
func (t *Table) ByProviderID(id int64) (Config, bool) {
	for _, c := range t.byKey {
		if c.ProviderID == id {
			return c, true
		}
	}
	return Config{}, false
}

// Keys returns the league keys in stable order.
func (t *Table) Keys() []string {
	keys := make([]string, 0, len(t.byKey))
	for k := range t.byKey {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (t *Table) All() []Config {
	configs := make([]Config, 0, len(t.byKey))
	for _, k := range t.Keys() {
		configs = append(configs, t.byKey[k])
	}
	return configs
}

func (t *Table) Len() int {
	return len(t.byKey)
}
