package main

import (
	"flag"
	"log"
	"strings"
	"time"

	"github.com/partscope/partscope/config"
	"github.com/partscope/partscope/loader"
	"github.com/partscope/partscope/status"
	"github.com/partscope/partscope/viewer"
	"github.com/partscope/partscope/web"
)

func main() {
	var addr, cfgpath, models, webPath string
	flag.StringVar(&addr, "i", "", "Address of server (overrides config)")
	flag.StringVar(&cfgpath, "config", "", "Path to yaml config")
	flag.StringVar(&models, "models", "", "Comma separated list of id=path model assets (overrides config)")
	flag.StringVar(&webPath, "web", "", "Path to web frontend (overrides config)")
	flag.Parse()

	if cfgpath != "" {
		if err := config.LoadFile(cfgpath); err != nil {
			log.Fatal(err)
		}
	}
	cfg := config.Get()
	if addr != "" {
		cfg.Addr = addr
	}
	if webPath != "" {
		cfg.WebPath = webPath
	}
	if models != "" {
		cfg.Models = cfg.Models[:0]
		for _, spec := range strings.Split(models, ",") {
			parts := strings.SplitN(spec, "=", 2)
			if len(parts) != 2 {
				log.Fatalf("Invalid model spec %q, expected id=path", spec)
			}
			cfg.Models = append(cfg.Models, loader.Descriptor{Id: parts[0], URL: parts[1]})
		}
	}
	config.Set(cfg)

	if len(cfg.Models) == 0 {
		flag.PrintDefaults()
		return
	}

	v := viewer.New(viewer.Options{
		Policy:         cfg.NamePolicy(),
		SnapshotWidth:  cfg.SnapshotWidth,
		SnapshotHeight: cfg.SnapshotHeight,
		Publisher:      status.Hub{},
	})

	l := loader.New()
	v.BeginModelSet(len(cfg.Models))
	for i, d := range cfg.Models {
		now := time.Now()
		m, err := l.Load(d)
		if err != nil {
			log.Printf("[main] Failed to load model %q: %v", d.Id, err)
			status.Error("Failed to load model %q: %v", d.Id, err)
			v.LoadFailed(now)
			continue
		}
		v.AddModel(m, now)
		v.ModelLoaded(now)
		status.Progress(float32(i+1)/float32(len(cfg.Models)), "Loaded model %q", d.Id)
	}

	if err := web.StartServer(cfg.Addr, v, cfg.WebPath); err != nil {
		log.Fatal(err)
	}
}
