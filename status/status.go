package status

import (
	"encoding/json"
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	INFO = iota
	ERROR
	PROGRESS
	SELECTION
)

// envelope is the wire shape of every status-channel message. Selection
// change events carry the object info in Payload; load progress and log
// lines use Message/Progress.
type envelope struct {
	Type     int
	Time     time.Time
	Message  string      `json:",omitempty"`
	Progress float32     `json:",omitempty"`
	Payload  interface{} `json:",omitempty"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

func (c *client) writePump() {
	ticker := time.NewTicker(time.Second * 30)
	defer func() {
		unregisterClient(c)
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(40 * time.Second)); err != nil {
				panic(err)
			}
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				log.Printf("[status] ws write msg error: %v", err)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(40 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Printf("[status] ws write ping error: %v", err)
				return
			}
		}
	}
}

func NewClient(conn *websocket.Conn) *client {
	c := &client{conn: conn, send: make(chan []byte, 32)}
	registerClient(c)
	go c.writePump()
	globalLock.Lock()
	defer globalLock.Unlock()
	if lastMessage != nil {
		c.send <- lastMessage
	}
	if lastSelection != nil {
		c.send <- lastSelection
	}
	return c
}

var statusBroadcast chan *envelope
var broadcastList map[*client]bool
var globalLock sync.Mutex
var lastMessage []byte = nil
var lastSelection []byte = nil

func registerClient(c *client) {
	globalLock.Lock()
	defer globalLock.Unlock()
	broadcastList[c] = true
}

func unregisterClient(c *client) {
	globalLock.Lock()
	defer globalLock.Unlock()
	delete(broadcastList, c)
}

func init() {
	statusBroadcast = make(chan *envelope, 16)
	broadcastList = make(map[*client]bool)
	go func() {
		for s := range statusBroadcast {
			data, err := json.Marshal(s)
			if err != nil {
				panic(err)
			}
			globalLock.Lock()
			if s.Type == SELECTION {
				lastSelection = data
			} else {
				lastMessage = data
			}
			for c := range broadcastList {
				select {
				case c.send <- data:
				default:
				}
			}
			globalLock.Unlock()
		}
	}()
}

func send(e *envelope) {
	e.Time = time.Now()
	statusBroadcast <- e
}

func Info(format string, a ...interface{}) {
	send(&envelope{Type: INFO, Message: fmt.Sprintf(format, a...)})
}

func Error(format string, a ...interface{}) {
	send(&envelope{Type: ERROR, Message: fmt.Sprintf(format, a...)})
}

func Progress(progress float32, format string, a ...interface{}) {
	if math.IsNaN(float64(progress)) || math.IsInf(float64(progress), 0) {
		progress = 0
	}
	send(&envelope{Type: PROGRESS, Message: fmt.Sprintf(format, a...), Progress: progress})
}

// Hub adapts the broadcast channel to the viewer's publisher hook, so
// every selection change lands on all connected status sockets.
type Hub struct{}

func (Hub) Publish(v interface{}) {
	send(&envelope{Type: SELECTION, Payload: v})
}
