package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/zenazn/goji/web"

	"github.com/janelia-flyem/dvedit/dvid"
)

// EditEvent is sent to websocket subscribers after every edit of a volume.
type EditEvent struct {
	Volume  string `json:"volume"`
	Version uint64 `json:"version"`
	Points  int    `json:"points"`
}

type eventClient struct {
	volume string
	mu     sync.Mutex // serializes writes to conn
}

// eventWriteWait is the time allowed to write an event to a client.
var eventWriteWait = 10 * time.Second

var (
	upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return true // CORS domains are enforced on the API routes
		},
	}

	clients   = make(map[*websocket.Conn]*eventClient)
	clientsMu sync.RWMutex
)

// GET /api/volume/:name/events
func eventsHandler(c web.C, w http.ResponseWriter, r *http.Request) {
	name := c.URLParams["name"]
	if _, err := GetVolume(name); err != nil {
		NotFound(w, r, "%v", err)
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		dvid.Errorf("websocket upgrade for volume %q failed: %v\n", name, err)
		return
	}
	clientsMu.Lock()
	clients[conn] = &eventClient{volume: name}
	clientsMu.Unlock()
	dvid.Debugf("Websocket client %s subscribed to volume %q\n", conn.RemoteAddr(), name)

	// Clients only listen; reading detects when they go away.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				removeClient(conn)
				return
			}
		}
	}()
}

func removeClient(conn *websocket.Conn) {
	clientsMu.Lock()
	_, found := clients[conn]
	delete(clients, conn)
	clientsMu.Unlock()
	if found {
		conn.Close()
	}
}

// notifyEdit sends the event to every client subscribed to the edited volume.  Writes
// happen outside clientsMu and each has a deadline, so a stalled client only delays
// its own delivery.
func notifyEdit(ev EditEvent) {
	type subscriber struct {
		conn   *websocket.Conn
		client *eventClient
	}
	var subs []subscriber
	clientsMu.RLock()
	for conn, client := range clients {
		if client.volume == ev.Volume {
			subs = append(subs, subscriber{conn, client})
		}
	}
	clientsMu.RUnlock()

	for _, sub := range subs {
		sub.client.mu.Lock()
		err := sub.conn.SetWriteDeadline(time.Now().Add(eventWriteWait))
		if err == nil {
			err = sub.conn.WriteJSON(ev)
		}
		sub.client.mu.Unlock()
		if err != nil {
			dvid.Errorf("websocket write to %s failed: %v\n", sub.conn.RemoteAddr(), err)
			removeClient(sub.conn)
		}
	}
}

func closeEventClients() {
	clientsMu.Lock()
	for conn := range clients {
		conn.Close()
	}
	clients = make(map[*websocket.Conn]*eventClient)
	clientsMu.Unlock()
}
