package predictor_test

import (
	"fmt"

	"github.com/fsmregex/fsmregex/literal"
	"github.com/fsmregex/fsmregex/predictor"
)

// ExampleBuilder demonstrates building a prefilter from a recovered
// prefix literal.
func ExampleBuilder() {
	prefixes := literal.NewSeq(literal.New([]byte("hello"), true))

	builder := predictor.NewBuilder(prefixes, nil)
	pf := builder.Build()

	if pf != nil {
		haystack := []byte("foo hello world")
		pos := pf.Find(haystack, 0)
		fmt.Printf("Found candidate at position %d\n", pos)
	}

	// Output:
	// Found candidate at position 4
}

// ExampleBuilder_singleByte demonstrates prefilter selection for
// single byte literals.
func ExampleBuilder_singleByte() {
	prefixes := literal.NewSeq(literal.New([]byte("a"), false))

	builder := predictor.NewBuilder(prefixes, nil)
	pf := builder.Build()

	// Should select MemchrPrefilter for single byte
	haystack := []byte("xxxayyy")
	pos := pf.Find(haystack, 0)
	fmt.Printf("Found 'a' at position %d\n", pos)
	fmt.Printf("Heap usage: %d bytes\n", pf.HeapBytes())

	// Output:
	// Found 'a' at position 3
	// Heap usage: 0 bytes
}

// ExampleBuilder_substring demonstrates prefilter selection for
// substring literals.
func ExampleBuilder_substring() {
	prefixes := literal.NewSeq(literal.New([]byte("pattern"), false))

	builder := predictor.NewBuilder(prefixes, nil)
	pf := builder.Build()

	// Should select MemmemPrefilter for substring
	haystack := []byte("test pattern matching")
	pos := pf.Find(haystack, 0)
	fmt.Printf("Found 'pattern' at position %d\n", pos)
	fmt.Printf("Heap usage: %d bytes\n", pf.HeapBytes())

	// Output:
	// Found 'pattern' at position 5
	// Heap usage: 7 bytes
}

// ExampleBuilder_noPrefilter demonstrates patterns with no available
// prefilter.
func ExampleBuilder_noPrefilter() {
	// No literal was recoverable (e.g. a bare ".*").
	prefixes := literal.NewSeq()

	builder := predictor.NewBuilder(prefixes, nil)
	pf := builder.Build()

	if pf == nil {
		fmt.Println("No prefilter available, must use full regex engine")
	}

	// Output:
	// No prefilter available, must use full regex engine
}

// ExampleBuilder_alternation demonstrates prefilter with alternations.
func ExampleBuilder_alternation() {
	// "(foo|foobar|food)" minimizes to "foo" since "foo" is a prefix of
	// the other two alternatives.
	prefixes := literal.NewSeq(
		literal.New([]byte("foo"), false),
		literal.New([]byte("foobar"), false),
		literal.New([]byte("food"), false),
	)
	prefixes.Minimize()

	builder := predictor.NewBuilder(prefixes, nil)
	pf := builder.Build()

	if pf != nil {
		haystack := []byte("test foobar end")
		pos := pf.Find(haystack, 0)
		fmt.Printf("Found candidate at position %d\n", pos)
		fmt.Printf("Complete match: %v\n", pf.IsComplete())
	}

	// Output:
	// Found candidate at position 5
	// Complete match: false
}

// ExampleBuilder_withSuffixes demonstrates using suffixes when
// prefixes are empty.
func ExampleBuilder_withSuffixes() {
	prefixes := literal.NewSeq() // no usable prefix
	suffixes := literal.NewSeq(literal.New([]byte("world"), false))

	// Builder will use suffixes when prefixes are empty
	builder := predictor.NewBuilder(prefixes, suffixes)
	pf := builder.Build()

	if pf != nil {
		haystack := []byte("hello world")
		pos := pf.Find(haystack, 0)
		fmt.Printf("Found suffix at position %d\n", pos)
	}

	// Output:
	// Found suffix at position 6
}

// ExamplePrefilter_Find demonstrates searching with Find method.
func ExamplePrefilter_Find() {
	prefixes := literal.NewSeq(literal.New([]byte("test"), true))

	builder := predictor.NewBuilder(prefixes, nil)
	pf := builder.Build()

	haystack := []byte("first test, second test, third test")

	// Find all occurrences
	start := 0
	count := 0
	for {
		pos := pf.Find(haystack, start)
		if pos == -1 {
			break
		}
		count++
		fmt.Printf("Match %d at position %d\n", count, pos)
		start = pos + 1 // Move past this match
	}

	// Output:
	// Match 1 at position 6
	// Match 2 at position 19
	// Match 3 at position 31
}

// ExamplePrefilter_IsComplete demonstrates checking completeness.
func ExamplePrefilter_IsComplete() {
	// Complete pattern (exact literal)
	prefixesComplete := literal.NewSeq(literal.New([]byte("exact"), true))
	pfComplete := predictor.NewBuilder(prefixesComplete, nil).Build()

	// Incomplete pattern (literal prefix followed by more pattern)
	prefixesIncomplete := literal.NewSeq(literal.New([]byte("prefix"), false))
	pfIncomplete := predictor.NewBuilder(prefixesIncomplete, nil).Build()

	fmt.Printf("Complete pattern needs verification: %v\n", !pfComplete.IsComplete())
	fmt.Printf("Incomplete pattern needs verification: %v\n", !pfIncomplete.IsComplete())

	// Output:
	// Complete pattern needs verification: false
	// Incomplete pattern needs verification: true
}
