package detect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testerNames(ts []*Tester) []string {
	var names []string
	for _, t := range ts {
		names = append(names, t.Name())
	}
	return names
}

func TestTestersFor_NoExtension(t *testing.T) {
	r := Default()
	for _, name := range []string{"Makefile", "LICENSE", "bin/run", ""} {
		assert.Empty(t, r.TestersFor(name, Options{}), name)
		assert.Empty(t, r.TestersFor(name, Options{IncludeTestResources: true}), name)
	}
}

func TestTestersFor_IgnorablePaths(t *testing.T) {
	r := Default()
	tests := []struct {
		path string
		want []string
	}{
		{"src/test/Foo.java", []string{"typed"}},
		{"example.json", []string{"json"}},
		{"node_modules/x.js", []string{"script"}},
		{"web/angular/app.js", []string{"script"}},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Empty(t, r.TestersFor(tt.path, Options{}))
			assert.Equal(t, tt.want, testerNames(r.TestersFor(tt.path, Options{IncludeTestResources: true})))
		})
	}
}

func TestTestersFor_ByExtension(t *testing.T) {
	r := Default()
	tests := []struct {
		path string
		want []string
	}{
		{"main.go", []string{"brace"}},
		{"src/Program.cs", []string{"brace", "typed"}},
		{"src/main/java/App.java", []string{"typed"}},
		{"lib/app.rb", []string{"script"}},
		{"config/app.json", []string{"json"}},
		{"conf/web.xml", []string{"xml"}},
		{"conf/app.properties", []string{"keyvalue"}},
		{"conf/settings.INI", []string{"keyvalue"}},
		{"README.md", nil},
		{"archive.tar.gz", nil},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, testerNames(r.TestersFor(tt.path, Options{})))
		})
	}
}

func TestLooksLikeTestOrResource(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"src/test/Foo.java", true},
		{"Tests/a.go", true},
		{"lib/testing/db.go", true},
		{"src/app/Example.py", true},
		{"src/build.gradle", true},
		{"dist/target/app.properties", true},
		{"main.go", false},
		{"pkg/contest/x.go", false},
		{"internal/config/config.go", false},
	}
	for _, tt := range tests {
		if got := LooksLikeTestOrResource(tt.path); got != tt.want {
			t.Errorf("LooksLikeTestOrResource(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestExtension(t *testing.T) {
	ext, ok := Extension("a/b.c/Main.Java")
	assert.True(t, ok)
	assert.Equal(t, "java", ext)

	_, ok = Extension("Dockerfile")
	assert.False(t, ok)
}

func TestKeywordPattern(t *testing.T) {
	assert.Equal(t, `(password|api\.key)`, KeywordPattern([]string{"password", " ", "api.key"}))
}

func TestNewRegistry_RequiresKeywords(t *testing.T) {
	_, err := NewRegistry(nil)
	assert.Error(t, err)
	_, err = NewRegistry([]string{"  ", ""})
	assert.Error(t, err)
}

func TestNewRegistry_CustomKeywords(t *testing.T) {
	r, err := NewRegistry([]string{"hunter"})
	require.NoError(t, err)
	assert.Equal(t, []string{"hunter"}, r.Keywords())

	brace := r.TestersFor("main.go", Options{})
	require.Len(t, brace, 1)
	assert.NotEmpty(t, brace[0].FindAssignments(`hunterValue := "abc"`))
	assert.Empty(t, brace[0].FindAssignments(`password := "abc"`))
}

func TestNewTester_RequiresExtensions(t *testing.T) {
	_, err := newTester(testerSpec{
		class:  ExtensionClass{Name: "none"},
		assign: []string{`{K}=(?P<value>{P}+)`},
	}, KeywordPattern(DefaultKeywords))
	assert.Error(t, err)

	_, err = newTester(testerSpec{class: ClassKeyValue}, KeywordPattern(DefaultKeywords))
	assert.Error(t, err, "no assignment patterns")
}

func TestNewTester_RequiresValueGroup(t *testing.T) {
	_, err := newTester(testerSpec{
		class:  ClassKeyValue,
		assign: []string{`{K}=({P}+)`},
	}, KeywordPattern(DefaultKeywords))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"value"`)
}

func TestNewTester_RejectsBadLiteralTemplate(t *testing.T) {
	_, err := newTester(testerSpec{
		class:   ClassKeyValue,
		assign:  []string{`{K}=(?P<value>{P}+)`},
		literal: []string{`=({V}`},
	}, KeywordPattern(DefaultKeywords))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "literal pattern")
}

func TestNewTester_PrecompilesLocalAddresses(t *testing.T) {
	for _, tr := range Default().Testers() {
		for _, addr := range LocalAddresses {
			assert.Len(t, tr.local[addr], len(tr.literal), "%s/%s", tr.Name(), addr)
		}
	}
}

func TestTestersNeverEmpty(t *testing.T) {
	for _, tr := range Default().Testers() {
		assert.NotEmpty(t, tr.Class().Extensions, tr.Name())
	}
}

func TestRegistryScan(t *testing.T) {
	r := Default()
	patch := "@@ -1,2 +1,3 @@\n+\tpassword := \"Sup3r$ecret!\"\n"

	matches := r.Scan("cmd/main.go", patch, Options{})
	require.Len(t, matches, 1)
	assert.Equal(t, "brace", matches[0].Tester.Name())

	assert.Empty(t, r.Scan("cmd/main.go", "", Options{}))
	assert.Empty(t, r.Scan("cmd/test/main.go", patch, Options{}))
	assert.Len(t, r.Scan("cmd/test/main.go", patch, Options{IncludeTestResources: true}), 1)
}
