package config

import (
	"io/ioutil"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/partscope/partscope/loader"
	"github.com/partscope/partscope/scene"
)

// Settings is the yaml-loadable host configuration: which models to
// load, how grouping artifacts are recognized, and snapshot output size.
type Settings struct {
	Addr    string              `yaml:"addr"`
	WebPath string              `yaml:"webPath"`
	Models  []loader.Descriptor `yaml:"models"`

	GroupMarker    string `yaml:"groupMarker"`
	GroupMarkerPos string `yaml:"groupMarkerPos"` // "substring" or "prefix"

	SnapshotWidth  int `yaml:"snapshotWidth"`
	SnapshotHeight int `yaml:"snapshotHeight"`
}

var current = Settings{
	Addr:           ":8000",
	WebPath:        "./web",
	GroupMarker:    "mesh_",
	GroupMarkerPos: "substring",
	SnapshotWidth:  512,
	SnapshotHeight: 512,
}

func Get() Settings {
	return current
}

func Set(s Settings) {
	current = s
}

// LoadFile overlays the yaml file on top of the defaults.
func LoadFile(path string) error {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "Failed to read config %q", path)
	}
	if err := yaml.Unmarshal(data, &current); err != nil {
		return errors.Wrapf(err, "Failed to parse config %q", path)
	}
	return nil
}

func (s Settings) NamePolicy() scene.NamePolicy {
	p := scene.NamePolicy{Marker: s.GroupMarker, Mode: scene.MatchSubstring}
	if s.GroupMarkerPos == "prefix" {
		p.Mode = scene.MatchPrefix
	}
	return p
}
