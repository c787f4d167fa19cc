package config

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/partscope/partscope/scene"
)

func TestLoadFileOverlaysDefaults(t *testing.T) {
	dir, err := ioutil.TempDir("", "partscope-config")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "config.yaml")
	yml := `
addr: ":9900"
groupMarker: "grp_"
groupMarkerPos: "prefix"
models:
  - id: pump
    url: testdata/pump.glb
    nodePath: Housing
`
	if err := ioutil.WriteFile(path, []byte(yml), 0644); err != nil {
		t.Fatal(err)
	}

	defer Set(Get())
	if err := LoadFile(path); err != nil {
		t.Fatal(err)
	}

	cfg := Get()
	if cfg.Addr != ":9900" {
		t.Errorf("addr %q", cfg.Addr)
	}
	// untouched keys keep their defaults
	if cfg.SnapshotWidth != 512 {
		t.Errorf("snapshot width %d", cfg.SnapshotWidth)
	}
	if len(cfg.Models) != 1 || cfg.Models[0].Id != "pump" || cfg.Models[0].NodePath != "Housing" {
		t.Errorf("models %+v", cfg.Models)
	}

	p := cfg.NamePolicy()
	if p.Marker != "grp_" || p.Mode != scene.MatchPrefix {
		t.Errorf("policy %+v", p)
	}
}
