package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestManifestFor(t *testing.T) {
	p := &Plan{Manifest: []ManifestEntry{
		{Path: "index.html", Purpose: "entry"},
		{Path: "app.js", Purpose: "logic", DependsOn: []string{"index.html"}},
	}}

	entry := p.ManifestFor("app.js")
	assert.NotNil(t, entry)
	assert.Equal(t, "logic", entry.Purpose)
	assert.Equal(t, []string{"index.html"}, entry.DependsOn)

	assert.Nil(t, p.ManifestFor("missing.js"))
}

func TestManifestFor_ReturnsStableReference(t *testing.T) {
	p := &Plan{Manifest: []ManifestEntry{{Path: "a.js"}}}
	entry := p.ManifestFor("a.js")
	entry.Purpose = "patched"
	assert.Equal(t, "patched", p.Manifest[0].Purpose)
}

func TestStaticHostingEligible(t *testing.T) {
	assert.False(t, (&Plan{}).StaticHostingEligible())
	assert.False(t, (&Plan{Hosting: &Hosting{}}).StaticHostingEligible())
	assert.True(t, (&Plan{Hosting: &Hosting{Platform: "github-pages"}}).StaticHostingEligible())
	assert.True(t, (&Plan{Hosting: &Hosting{StaticApp: true}}).StaticHostingEligible())
}

func TestTargetPath_EmptyTask(t *testing.T) {
	path, op := Task{Name: "noop"}.TargetPath()
	assert.Empty(t, path)
	assert.Empty(t, op)
}
