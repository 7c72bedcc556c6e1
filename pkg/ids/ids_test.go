package ids

import (
	"strings"
	"testing"
)

func TestProjectIDDeterministic(t *testing.T) {
	a := ProjectID("my-app", "/srv/my-app")
	b := ProjectID("my-app", "/srv/my-app")
	if a != b {
		t.Errorf("expected identical ids, got %s and %s", a, b)
	}
	if !strings.HasPrefix(a, ProjectPrefix) {
		t.Errorf("expected %s prefix, got %s", ProjectPrefix, a)
	}
}

func TestProjectIDDistinctKeys(t *testing.T) {
	base := ProjectID("my-app", "/srv/my-app")
	if ProjectID("other", "/srv/my-app") == base {
		t.Error("changing the name must change the id")
	}
	if ProjectID("my-app", "/srv/other") == base {
		t.Error("changing the path must change the id")
	}
}

func TestEndpointIDNormalizesMethod(t *testing.T) {
	a := EndpointID("proj_x", "get", "/api/users")
	b := EndpointID("proj_x", "GET", "/api/users")
	if a != b {
		t.Errorf("method case must not affect the id: %s vs %s", a, b)
	}
}

func TestFunctionIDDistinctAcrossKinds(t *testing.T) {
	// Same key parts under different kinds stay in disjoint id spaces.
	e := EndpointID("p", "GET", "/x")
	f := FunctionID("p", "GET", "/x")
	if e == f {
		t.Error("endpoint and function ids must never collide")
	}
}

func TestProjectIDSeparatorInParts(t *testing.T) {
	// A ':' inside one part must not make two different tuples collide.
	a := ProjectID("my:app", "/x")
	b := ProjectID("my", "app:/x")
	if a == b {
		t.Errorf("shifted separator must change the id, both gave %s", a)
	}

	c := ProjectID("my%3Aapp", "/x")
	if c == a {
		t.Error("a literal escape sequence in a part must not collide with the escaped separator")
	}
}

func TestDecodeSeparatorInParts(t *testing.T) {
	id := FunctionID("proj_abc", "ns::helper", "C:/src/app.ts")
	parts, ok := Decode(id)
	if !ok {
		t.Fatalf("failed to decode %s", id)
	}
	want := []string{"proj_abc", "ns::helper", "C:/src/app.ts"}
	if len(parts) != len(want) {
		t.Fatalf("expected %d parts, got %v", len(want), parts)
	}
	for i := range want {
		if parts[i] != want[i] {
			t.Errorf("part %d: expected %q, got %q", i, want[i], parts[i])
		}
	}
}

func TestDecode(t *testing.T) {
	id := FunctionID("proj_abc", "getUser", "src/users.ts")
	parts, ok := Decode(id)
	if !ok {
		t.Fatalf("failed to decode %s", id)
	}
	want := []string{"proj_abc", "getUser", "src/users.ts"}
	if len(parts) != len(want) {
		t.Fatalf("expected %d parts, got %v", len(want), parts)
	}
	for i := range want {
		if parts[i] != want[i] {
			t.Errorf("part %d: expected %q, got %q", i, want[i], parts[i])
		}
	}
}
