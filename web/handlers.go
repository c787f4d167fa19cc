package web

import (
	"bytes"
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/partscope/partscope/export"
	"github.com/partscope/partscope/scene"
	"github.com/partscope/partscope/snapshot"
	"github.com/partscope/partscope/status"
	"github.com/partscope/partscope/utils"
	"github.com/partscope/partscope/viewer"
	"github.com/partscope/partscope/webutils"
)

func HandlerAjaxParts(w http.ResponseWriter, r *http.Request) {
	viewerLock.Lock()
	parts := ServerViewer.GetSelectableParts()
	viewerLock.Unlock()
	webutils.WriteJson(w, parts)
}

func HandlerAjaxModels(w http.ResponseWriter, r *http.Request) {
	type jModel struct {
		Index int    `json:"index"`
		Id    string `json:"id"`
		Name  string `json:"name"`
	}
	viewerLock.Lock()
	models := ServerViewer.Registry().Models()
	viewerLock.Unlock()

	out := make([]jModel, 0, len(models))
	for _, m := range models {
		out = append(out, jModel{Index: m.Index, Id: m.Id, Name: m.Name})
	}
	webutils.WriteJson(w, out)
}

func HandlerAjaxSelection(w http.ResponseWriter, r *http.Request) {
	viewerLock.Lock()
	info := ServerViewer.Info()
	viewerLock.Unlock()
	webutils.WriteJson(w, info)
}

func HandlerSelect(w http.ResponseWriter, r *http.Request) {
	var req struct {
		NodeIds []string `json:"nodeIds"`
	}
	if err := webutils.ReadJsonBody(r, &req); err != nil {
		webutils.WriteError(w, err)
		return
	}
	viewerLock.Lock()
	ServerViewer.SetSelectedNodeIds(req.NodeIds)
	info := ServerViewer.Info()
	viewerLock.Unlock()
	webutils.WriteJson(w, info)
}

func HandlerTransform(w http.ResponseWriter, r *http.Request) {
	var pt viewer.PartialTransform
	if err := webutils.ReadJsonBody(r, &pt); err != nil {
		webutils.WriteError(w, err)
		return
	}
	viewerLock.Lock()
	err := ServerViewer.UpdateObjectTransform(pt)
	info := ServerViewer.Info()
	viewerLock.Unlock()
	if err != nil {
		webutils.WriteError(w, err)
		return
	}
	webutils.WriteJson(w, info)
}

func HandlerExplode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Value float32 `json:"value"`
	}
	if err := webutils.ReadJsonBody(r, &req); err != nil {
		webutils.WriteError(w, err)
		return
	}
	viewerLock.Lock()
	ServerViewer.SetExplosionValue(req.Value)
	value := ServerViewer.ExplosionValue()
	viewerLock.Unlock()
	webutils.WriteJson(w, map[string]float32{"value": value})
}

func HandlerReset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ClearEdits bool `json:"clearEdits"`
	}
	if err := webutils.ReadJsonBody(r, &req); err != nil {
		webutils.WriteError(w, err)
		return
	}
	viewerLock.Lock()
	if req.ClearEdits {
		for _, m := range ServerViewer.Registry().Models() {
			ServerViewer.ClearUserEdits(m.Index)
		}
	}
	ServerViewer.ResetToAssembly()
	viewerLock.Unlock()
	webutils.WriteJson(w, map[string]bool{"ok": true})
}

func HandlerZoom(w http.ResponseWriter, r *http.Request) {
	dir := mux.Vars(r)["dir"]
	viewerLock.Lock()
	switch dir {
	case "in":
		ServerViewer.ZoomIn()
	case "out":
		ServerViewer.ZoomOut()
	default:
		viewerLock.Unlock()
		webutils.WriteError(w, errors.Errorf("Unknown zoom direction %q", dir))
		return
	}
	viewerLock.Unlock()
	webutils.WriteJson(w, map[string]bool{"ok": true})
}

func snapshotStyle(r *http.Request) snapshot.Style {
	switch strings.ToLower(r.URL.Query().Get("style")) {
	case "dimmed":
		return snapshot.StyleDimmed
	case "wireframe":
		return snapshot.StyleWireframe
	default:
		return snapshot.StyleNormal
	}
}

func HandlerSnapshotPart(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	viewerLock.Lock()
	png, err := ServerViewer.CapturePartSnapshot(id, snapshotStyle(r))
	viewerLock.Unlock()
	if err != nil {
		webutils.WriteError(w, err)
		return
	}
	if png == nil {
		webutils.WriteError(w, errors.Errorf("Nothing to render for part %q", id))
		return
	}
	webutils.WritePng(w, png)
}

func HandlerSnapshotModel(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	viewerLock.Lock()
	png, err := ServerViewer.CaptureModelSnapshot(id, snapshotStyle(r))
	viewerLock.Unlock()
	if err != nil {
		webutils.WriteError(w, err)
		return
	}
	if png == nil {
		webutils.WriteError(w, errors.Errorf("Nothing to render for model %q", id))
		return
	}
	webutils.WritePng(w, png)
}

func HandlerExportModel(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	format := mux.Vars(r)["format"]

	viewerLock.Lock()
	var root *scene.Node
	for _, m := range ServerViewer.Registry().Models() {
		if m.Id == id {
			root = m.Root
			break
		}
	}
	viewerLock.Unlock()

	if root == nil {
		webutils.WriteError(w, errors.Errorf("Unknown model %q", id))
		return
	}

	var buf bytes.Buffer
	switch format {
	case "glb", "gltf":
		if err := export.ExportGLTF(&buf, root); err != nil {
			webutils.WriteError(w, errors.Wrapf(err, "Failed to export gltf"))
			return
		}
		webutils.WriteFile(w, &buf, id+".glb")
	case "obj":
		if err := export.ExportObj(&buf, root); err != nil {
			webutils.WriteError(w, errors.Wrapf(err, "Failed to export obj"))
			return
		}
		webutils.WriteFile(w, &buf, id+".obj")
	default:
		webutils.WriteError(w, errors.Errorf("Unknown export format %q", format))
	}
}

func HandlerDumpScene(w http.ResponseWriter, r *http.Request) {
	viewerLock.Lock()
	dump := utils.SDump(ServerViewer.Registry().Models())
	viewerLock.Unlock()
	webutils.WriteResult(w, []byte(dump))
}

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  512,
	WriteBufferSize: 2048,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

func HandlerWebsocketStatus(w http.ResponseWriter, r *http.Request) {
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[web] ws upgrade error: %v", err)
		return
	}
	status.NewClient(conn)
}
