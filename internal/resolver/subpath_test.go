package resolver

import (
	"testing"

	"github.com/shepherdwind/goresolver/internal/manifest"
)

func TestMatchSubpathExact(t *testing.T) {
	m := manifest.NewOrderedMap().Set(".", "./index.js").Set("./foo", "./foo.js")
	match := matchSubpath(m, "./foo")
	if !match.found || match.isPattern {
		t.Fatalf("exact match failed: %+v", match)
	}
	if match.value != "./foo.js" {
		t.Fatalf("value = %v", match.value)
	}
}

func TestMatchSubpathPatternPicksLongestPrefix(t *testing.T) {
	m := manifest.NewOrderedMap().
		Set("./*", "./generic/*.js").
		Set("./features/*", "./special/*.js")
	match := matchSubpath(m, "./features/x")
	if !match.found || !match.isPattern {
		t.Fatalf("pattern match failed: %+v", match)
	}
	if match.value != "./special/*.js" || match.middle != "x" {
		t.Fatalf("value=%v middle=%q", match.value, match.middle)
	}
}

func TestMatchSubpathNoCandidate(t *testing.T) {
	m := manifest.NewOrderedMap().Set("./only", "./only.js")
	if match := matchSubpath(m, "./other"); match.found {
		t.Fatalf("expected no match, got %+v", match)
	}
}

func TestEvaluateSubpathValueDeclarationOrderWins(t *testing.T) {
	// Regression: "node" is declared before "import" in the manifest, and
	// both are active conditions, so "node" must win even though the
	// resolver's configured Conditions list names "import" first.
	value := manifest.NewOrderedMap().
		Set("node", "./node.js").
		Set("import", "./import.js").
		Set("default", "./default.js")
	resolved, outcome := evaluateSubpathValue(value, "", false, []string{"import", "node"}, true)
	if outcome != outcomeOK || resolved != "./node.js" {
		t.Fatalf("resolved=%q outcome=%v, want ./node.js (declared first)", resolved, outcome)
	}
}

func TestEvaluateSubpathValueSkipsInactiveConditionsInOrder(t *testing.T) {
	value := manifest.NewOrderedMap().
		Set("browser", "./browser.js").
		Set("node", "./node.js").
		Set("default", "./default.js")
	resolved, outcome := evaluateSubpathValue(value, "", false, []string{"node"}, true)
	if outcome != outcomeOK || resolved != "./node.js" {
		t.Fatalf("resolved=%q outcome=%v, want ./node.js (browser inactive, skipped)", resolved, outcome)
	}
}

func TestEvaluateSubpathValueDefaultActiveEvenWhenNotConfigured(t *testing.T) {
	value := manifest.NewOrderedMap().
		Set("browser", "./browser.js").
		Set("default", "./default.js")
	resolved, outcome := evaluateSubpathValue(value, "", false, []string{"node"}, true)
	if outcome != outcomeOK || resolved != "./default.js" {
		t.Fatalf("resolved=%q outcome=%v", resolved, outcome)
	}
}

func TestEvaluateSubpathValueRequiresDotSlash(t *testing.T) {
	_, outcome := evaluateSubpathValue("../escape.js", "", false, []string{"default"}, true)
	if outcome != outcomeInvalid {
		t.Fatalf("outcome = %v, want invalid", outcome)
	}
}

func TestEvaluateSubpathValueRejectsInvalidSegments(t *testing.T) {
	for _, bad := range []string{"./a/../b.js", "./a/node_modules/b.js", "./a/./b.js"} {
		if _, outcome := evaluateSubpathValue(bad, "", false, []string{"default"}, true); outcome != outcomeInvalid {
			t.Fatalf("%q: outcome = %v, want invalid", bad, outcome)
		}
	}
}

func TestEvaluateSubpathValueArrayFallback(t *testing.T) {
	value := []interface{}{"not-a-relative-path", "./ok.js"}
	resolved, outcome := evaluateSubpathValue(value, "", false, []string{"default"}, true)
	if outcome != outcomeOK || resolved != "./ok.js" {
		t.Fatalf("resolved=%q outcome=%v", resolved, outcome)
	}
}

func TestEvaluateSubpathValueNoMatchingCondition(t *testing.T) {
	value := manifest.NewOrderedMap().Set("node", "./node.js")
	_, outcome := evaluateSubpathValue(value, "", false, []string{"browser"}, true)
	if outcome != outcomeNone {
		t.Fatalf("outcome = %v, want none", outcome)
	}
}

func TestHasInvalidSegmentAllowsFirstSegmentDots(t *testing.T) {
	// Only segments AFTER the first are checked: "." itself is the leading
	// "./" every valid target carries.
	if hasInvalidSegment("./a/b.js") {
		t.Fatal("plain relative path flagged as invalid")
	}
}
