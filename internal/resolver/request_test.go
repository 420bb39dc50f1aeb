package resolver

import "testing"

func TestParseRequestClassification(t *testing.T) {
	cases := []struct {
		raw  string
		kind Kind
	}{
		{"", Empty},
		{".", Relative},
		{"..", Relative},
		{"./foo", Relative},
		{"../foo", Relative},
		{"/usr/lib", AbsolutePosix},
		{`C:\foo`, AbsoluteWin},
		{`C:/foo`, AbsoluteWin},
		{`\\host\share`, AbsoluteWin},
		{"#internal/util", Internal},
		{"data:text/plain,hi", BuildInUri},
		{"http://example.com/x.js", BuildInUri},
		{"lodash", Normal},
		{"@scope/pkg", Normal},
		{"a:b", Normal}, // single-letter-ish scheme too short to count as a URI
	}
	for _, c := range cases {
		got := ParseRequest(c.raw).Kind
		if got != c.kind {
			t.Errorf("ParseRequest(%q).Kind = %v, want %v", c.raw, got, c.kind)
		}
	}
}

func TestParseRequestSplitsQueryAndFragment(t *testing.T) {
	r := ParseRequest("./foo.js?raw#top")
	if r.Target != "./foo.js" || r.Query != "?raw" || r.Fragment != "#top" {
		t.Fatalf("got target=%q query=%q fragment=%q", r.Target, r.Query, r.Fragment)
	}
}

func TestParseRequestEscapedSeparators(t *testing.T) {
	r := ParseRequest(`./weird\?name.js`)
	if r.Target != `./weird\?name.js` || r.Query != "" {
		t.Fatalf("escaped '?' should not split: target=%q query=%q", r.Target, r.Query)
	}
}

func TestWithTargetReclassifies(t *testing.T) {
	r := ParseRequest("lodash")
	if r.Kind != Normal {
		t.Fatalf("precondition: want Normal, got %v", r.Kind)
	}
	rewritten := r.WithTarget("./lodash")
	if rewritten.Kind != Relative {
		t.Fatalf("WithTarget should reclassify, got %v", rewritten.Kind)
	}
	if rewritten.Query != r.Query || rewritten.Fragment != r.Fragment {
		t.Fatal("WithTarget must preserve query and fragment")
	}
}
