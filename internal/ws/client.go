package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"shuuro-server/internal/models"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096

	clientMailboxSize = 20
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// CORS is enforced at the HTTP layer.
		return true
	},
}

type roomKind int

const (
	roomNone roomKind = iota
	roomHome
	roomTv
	roomGame
)

// Client is the per-socket connection actor. The read loop owns the
// room state and forwards typed frames into the right mailbox; the
// write loop drains the outbound channel.
type Client struct {
	state    *State
	conn     *websocket.Conn
	username string
	send     chan []byte
	done     chan struct{}
	room     roomKind
	match    *Match
}

type gameMoveData struct {
	GameMove string `json:"game_move"`
}

// ServeWs upgrades the request and runs the connection actor for the
// session's username.
func ServeWs(state *State, w http.ResponseWriter, r *http.Request, username string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Warning: websocket upgrade failed: %v", err)
		return
	}
	c := &Client{
		state:    state,
		conn:     conn,
		username: username,
		send:     make(chan []byte, clientMailboxSize),
		done:     make(chan struct{}),
	}
	c.state.Players.Join(Watcher{Username: username, Ch: c.send})
	go c.writePump()
	go c.readPump()
}

func (c *Client) readPump() {
	defer func() {
		c.leaveRoom()
		c.state.Players.Leave(c.username, c.send, true)
		close(c.done)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("Warning: websocket read error: %v", err)
			}
			return
		}
		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}
		c.route(msg)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

// route forwards one inbound frame. Frames that do not fit the current
// room are dropped.
func (c *Client) route(msg ClientMessage) {
	switch msg.T {
	case TagChangeRoom:
		var room string
		if err := json.Unmarshal(msg.D, &room); err != nil {
			return
		}
		c.changeRoom(room)
	case TagAddGameRequest:
		if c.room != roomHome {
			return
		}
		var req models.GameRequest
		if err := json.Unmarshal(msg.D, &req); err != nil {
			return
		}
		c.state.Lobby.AddGameRequest(c.username, req)
	case TagGetGame:
		if c.match != nil {
			c.match.GetGame(c.send)
		}
	case TagGetHand:
		if c.match != nil {
			c.match.GetHand(c.username)
		}
	case TagSelectMove, TagPlacePiece, TagMovePiece:
		if c.match == nil {
			return
		}
		var d gameMoveData
		if err := json.Unmarshal(msg.D, &d); err != nil {
			return
		}
		c.match.GameMove(c.username, d.GameMove)
	case TagConfirmSelection:
		if c.match != nil {
			c.match.GameMove(c.username, "")
		}
	case TagDraw:
		if c.match != nil {
			c.match.Draw(c.username)
		}
	case TagResign:
		if c.match != nil {
			c.match.Resign(c.username)
		}
	case TagGetTv:
		if c.room == roomTv {
			c.state.TV.GetGames(c.username, c.send)
		}
	case TagSaveState:
		if c.state.Moderator != "" && c.username == c.state.Moderator {
			c.state.Games.SaveState()
		}
	}
}

func (c *Client) changeRoom(room string) {
	c.leaveRoom()
	watcher := Watcher{Username: c.username, Ch: c.send}
	switch {
	case room == "home":
		c.room = roomHome
		c.state.Lobby.Join(watcher)
	case room == "tv":
		c.room = roomTv
		c.state.TV.Join(watcher)
	case strings.HasPrefix(room, "/game/"):
		id := strings.TrimPrefix(room, "/game/")
		if match := c.state.Games.GetGame(id); match != nil {
			c.room = roomGame
			c.match = match
			match.Join(watcher)
		}
	}
}

func (c *Client) leaveRoom() {
	switch c.room {
	case roomHome:
		c.state.Lobby.Leave(c.send)
	case roomTv:
		c.state.TV.Leave(c.send)
	case roomGame:
		if c.match != nil {
			c.match.Leave(c.send)
		}
	}
	c.room = roomNone
	c.match = nil
}
