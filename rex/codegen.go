package rex

import (
	"github.com/fsmregex/fsmregex/codegen"
	"github.com/fsmregex/fsmregex/dfa"
	"github.com/fsmregex/fsmregex/parser"
)

// GenerateSource parses src and renders its DFA as standalone Go
// source implementing a scan function, the 'o' compiler option's
// entry point (spec.md §6). It does not build an opcode program or a
// *Pattern — generated source and the table-driven vm.Step path are
// two independent outputs of the same DFA, and a caller wanting both
// builds the DFA itself rather than going through this helper twice.
func GenerateSource(src string, opt Options) (string, error) {
	result, err := parser.Parse(src, opt.Options)
	if err != nil {
		return "", err
	}
	d := dfa.Build(result)
	return codegen.Generate(d, codegen.Config{
		Name:      opt.Name,
		Namespace: opt.Namespace,
	})
}
