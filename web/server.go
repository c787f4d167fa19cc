package web

import (
	"log"
	"net/http"
	"os"
	"path"
	"sync"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/partscope/partscope/viewer"
)

var ServerViewer *viewer.Viewer
var viewerLock sync.Mutex

const updateInterval = time.Second / 30

// runUpdateLoop drives the per-frame work (proxy sync, explosion
// application, auto-framing) while requests mutate state between ticks.
func runUpdateLoop() {
	ticker := time.NewTicker(updateInterval)
	last := time.Now()
	for now := range ticker.C {
		dt := float32(now.Sub(last).Seconds())
		last = now
		viewerLock.Lock()
		ServerViewer.Update(now, dt)
		viewerLock.Unlock()
	}
}

func StartServer(addr string, v *viewer.Viewer, webPath string) error {
	ServerViewer = v
	go runUpdateLoop()

	r := mux.NewRouter()
	r.HandleFunc("/json/parts", HandlerAjaxParts)
	r.HandleFunc("/json/models", HandlerAjaxModels)
	r.HandleFunc("/json/selection", HandlerAjaxSelection)
	r.HandleFunc("/json/select", HandlerSelect)
	r.HandleFunc("/json/transform", HandlerTransform)
	r.HandleFunc("/json/explode", HandlerExplode)
	r.HandleFunc("/json/reset", HandlerReset)
	r.HandleFunc("/json/zoom/{dir}", HandlerZoom)
	r.HandleFunc("/snapshot/part/{id:.+}", HandlerSnapshotPart)
	r.HandleFunc("/snapshot/model/{id}", HandlerSnapshotModel)
	r.HandleFunc("/export/model/{id}/{format}", HandlerExportModel)
	r.HandleFunc("/dump/scene", HandlerDumpScene)
	r.HandleFunc("/ws/status", HandlerWebsocketStatus)

	r.PathPrefix("/").Handler(http.FileServer(http.Dir(path.Join(webPath, "data"))))

	h := handlers.RecoveryHandler()(r)
	h = handlers.LoggingHandler(os.Stdout, h)

	log.Printf("[web] Starting server %v", addr)

	return http.ListenAndServe(addr, h)
}
