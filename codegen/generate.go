// Package codegen implements the optional "emit FSM as Go source"
// output mode (the 'o' compiler option in spec.md §6): instead of an
// opcode table for vm.Step to interpret, Generate renders a built DFA
// as a standalone switch-based transition function, the same shape
// dfa/onepass's explicit transition table takes in the teacher, just
// written out as source text rather than a runtime table.
//
// The generated function is plain text. This package never invokes
// go/parser, go/format, or the go toolchain — it is a string template,
// not a compiler.
package codegen

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fsmregex/fsmregex/charset"
	"github.com/fsmregex/fsmregex/dfa"
)

// Config controls the generated function's name and enclosing
// namespace comment, mirroring the 'n=NAME' and 'z=NS1.NS2' compiler
// options.
type Config struct {
	// Name is the generated function's base name. Defaults to "Scan"
	// when empty.
	Name string
	// Namespace is a dotted path recorded in a header comment; Go has
	// no native namespace construct, so this does not become a package
	// clause, only documentation, per spec.md §6's namespace option
	// being glue for the generating tool's own output layout rather
	// than a Go-specific concept.
	Namespace string
	// PackageName is the package clause written at the top of the
	// generated file. Defaults to "generated".
	PackageName string
}

// Generate renders d as a standalone Go source file defining a
// recognizer function named cfg.Name (or "Scan"). The function takes
// the haystack and a start offset and returns the longest accept
// index found and its length, mirroring vm.Step's contract without
// needing package vm or package asm at runtime.
func Generate(d *dfa.DFA, cfg Config) (string, error) {
	name := cfg.Name
	if name == "" {
		name = "Scan"
	}
	pkg := cfg.PackageName
	if pkg == "" {
		pkg = "generated"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "// Code generated by codegen.Generate. DO NOT EDIT.\n")
	if cfg.Namespace != "" {
		fmt.Fprintf(&b, "// Namespace: %s\n", cfg.Namespace)
	}
	fmt.Fprintf(&b, "package %s\n\n", pkg)
	fmt.Fprintf(&b, "// %s scans haystack starting at start and returns the longest\n", name)
	fmt.Fprintf(&b, "// accept index recorded (0 for no match) and the match length in\n")
	fmt.Fprintf(&b, "// bytes. Indentation meta tokens (\\i \\j \\k) are not supported by\n")
	fmt.Fprintf(&b, "// generated code; a pattern using them fails Generate outright.\n")
	fmt.Fprintf(&b, "func %s(haystack []byte, start int) (accept int, length int) {\n", name)
	fmt.Fprintf(&b, "\tpos := start\n")
	fmt.Fprintf(&b, "\tstate := %d\n", d.Start())
	fmt.Fprintf(&b, "\tbestAccept, bestPos := 0, start\n")
	fmt.Fprintf(&b, "loop:\n")
	fmt.Fprintf(&b, "\tfor {\n")
	fmt.Fprintf(&b, "\t\tswitch state {\n")

	needsWordByte := false
	for id := dfa.StateID(0); int(id) < d.Len(); id++ {
		st := d.Get(id)
		for _, me := range st.MetaEdges {
			if usesWordByte(me.Meta) {
				needsWordByte = true
			}
		}
	}

	for id := dfa.StateID(0); int(id) < d.Len(); id++ {
		st := d.Get(id)
		if err := writeState(&b, id, st); err != nil {
			return "", err
		}
	}

	fmt.Fprintf(&b, "\t\tdefault:\n\t\t\tbreak loop\n")
	fmt.Fprintf(&b, "\t\t}\n")
	fmt.Fprintf(&b, "\t}\n")
	fmt.Fprintf(&b, "\tpos = bestPos\n")
	fmt.Fprintf(&b, "\t_ = pos\n")
	fmt.Fprintf(&b, "\treturn bestAccept, bestPos - start\n")
	fmt.Fprintf(&b, "}\n")

	if needsWordByte {
		fmt.Fprintf(&b, "\nfunc isWordByte(b byte) bool {\n")
		fmt.Fprintf(&b, "\treturn (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9') || b == '_'\n")
		fmt.Fprintf(&b, "}\n")
	}
	return b.String(), nil
}

func usesWordByte(m int) bool {
	switch m {
	case charset.BWB, charset.EWB, charset.BWE, charset.EWE, charset.NWB, charset.NWE:
		return true
	}
	return false
}

// writeState emits one case of the outer switch: this state's
// TAKE/REDO bookkeeping followed by a byte-range switch and a
// fallback to the dead state when nothing matches.
func writeState(b *strings.Builder, id dfa.StateID, st *dfa.State) error {
	fmt.Fprintf(b, "\t\tcase %d:\n", int(id))

	if st.Accept != 0 && !st.Redo {
		fmt.Fprintf(b, "\t\t\tbestAccept, bestPos = %d, pos\n", st.Accept)
	} else if st.Redo {
		fmt.Fprintf(b, "\t\t\tbestAccept, bestPos = -1, pos // REDO: negative-pattern match, caller discards\n")
	}

	for _, me := range st.MetaEdges {
		if isIndentMeta(me.Meta) {
			return fmt.Errorf("codegen: state %d uses indentation meta %#x, unsupported in generated code", id, me.Meta)
		}
		fmt.Fprintf(b, "\t\t\tif %s {\n\t\t\t\tstate = %d\n\t\t\t\tcontinue loop\n\t\t\t}\n", metaPredicate(me.Meta), int(me.Target))
	}

	edges := sortedEdges(st.Edges)
	if len(edges) == 0 {
		fmt.Fprintf(b, "\t\t\tbreak loop\n")
		return nil
	}

	fmt.Fprintf(b, "\t\t\tif pos >= len(haystack) {\n\t\t\t\tbreak loop\n\t\t\t}\n")
	fmt.Fprintf(b, "\t\t\tc := haystack[pos]\n")
	fmt.Fprintf(b, "\t\t\tswitch {\n")
	for _, e := range edges {
		if e.Target < 0 {
			continue
		}
		fmt.Fprintf(b, "\t\t\tcase c >= %d && c <= %d:\n\t\t\t\tpos++\n\t\t\t\tstate = %d\n\t\t\t\tcontinue loop\n", e.Lo, e.Hi, int(e.Target))
	}
	fmt.Fprintf(b, "\t\t\t}\n\t\t\tbreak loop\n")
	return nil
}

// sortedEdges returns st's byte edges in ascending Lo order, the same
// order asm.emitState lays out GOTOs in, so generated code reads the
// same way the opcode table does.
func sortedEdges(edges []dfa.Edge) []dfa.Edge {
	out := make([]dfa.Edge, len(edges))
	copy(out, edges)
	sort.Slice(out, func(i, j int) bool { return out[i].Lo < out[j].Lo })
	return out
}

func isIndentMeta(m int) bool {
	switch m {
	case charset.IND, charset.DED, charset.UND:
		return true
	}
	return false
}

// metaPredicate renders the Go boolean expression testing a meta
// symbol at the cursor, mirroring vm.testMeta's BOL/EOL/BOB/EOB/word-
// boundary cases. Word-boundary metas need both neighboring bytes, so
// they expand inline rather than calling out to a helper package —
// generated code has no dependency on package vm or package input.
func metaPredicate(m int) string {
	switch m {
	case charset.BOL:
		return "(pos == 0 || haystack[pos-1] == '\\n')"
	case charset.EOL:
		return "(pos >= len(haystack) || haystack[pos] == '\\n')"
	case charset.BOB:
		return "pos == 0"
	case charset.EOB:
		return "pos >= len(haystack)"
	case charset.BWB, charset.EWB, charset.BWE, charset.EWE, charset.NWB, charset.NWE:
		prev := "(pos > 0 && isWordByte(haystack[pos-1]))"
		next := "(pos < len(haystack) && isWordByte(haystack[pos]))"
		switch m {
		case charset.BWB:
			return fmt.Sprintf("(!%s && %s)", prev, next)
		case charset.EWB:
			return fmt.Sprintf("(%s && !%s)", prev, next)
		case charset.BWE, charset.EWE:
			return fmt.Sprintf("(%s != %s)", prev, next)
		case charset.NWB:
			return fmt.Sprintf("(%s || !%s)", prev, next)
		case charset.NWE:
			return fmt.Sprintf("(%s == %s)", prev, next)
		}
	}
	return "false"
}
