package rex

import (
	"fmt"

	"gopkg.in/yaml.v2"
)

// dumpDoc is the YAML shape DumpYAML produces: a structural debug dump
// of a compiled pattern's opcode table and predictor tables, for
// tooling to inspect without decoding the binary opcode file format.
type dumpDoc struct {
	Source     string   `yaml:"source"`
	Name       string   `yaml:"name"`
	NumAccepts int      `yaml:"num_accepts"`
	Words      []string `yaml:"words"`

	Prefilter *dumpPrefilter `yaml:"prefilter,omitempty"`
	Table     *dumpTable     `yaml:"table,omitempty"`
}

type dumpPrefilter struct {
	Complete  bool `yaml:"complete"`
	HeapBytes int  `yaml:"heap_bytes"`
}

type dumpTable struct {
	Prefix string `yaml:"prefix,omitempty"`
	Min    int    `yaml:"min"`
	One    bool   `yaml:"one"`
}

// DumpYAML renders p's opcode table and predictor tables as YAML, for
// tooling and interactive inspection. It is not round-trippable back
// into a Pattern — unlike the opcode file format of spec.md §6, this
// is a debug view, not a wire format.
func (p *Pattern) DumpYAML() ([]byte, error) {
	doc := dumpDoc{
		Source:     p.src,
		Name:       p.opt.Name,
		NumAccepts: p.acceptCount,
		Words:      make([]string, len(p.prog.Words)),
	}
	for i, w := range p.prog.Words {
		doc.Words[i] = fmt.Sprintf("%#08x", uint32(w))
	}
	if p.filter != nil {
		doc.Prefilter = &dumpPrefilter{
			Complete:  p.filter.IsComplete(),
			HeapBytes: p.filter.HeapBytes(),
		}
	}
	if p.table != nil {
		doc.Table = &dumpTable{
			Prefix: string(p.table.Prefix),
			Min:    p.table.Min,
			One:    p.table.One,
		}
	}
	return yaml.Marshal(doc)
}
