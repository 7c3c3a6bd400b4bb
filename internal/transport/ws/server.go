package ws

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"farmstead.dev/internal/protocol"
	"farmstead.dev/internal/sim/world"
)

type Server struct {
	world *world.World
	log   *log.Logger

	upgrader websocket.Upgrader
}

func NewServer(w *world.World, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	s := &Server{
		world: w,
		log:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
	return s
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		playerID, out := s.handshake(conn)
		if playerID == "" {
			return
		}

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		// Writer goroutine.
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case b, ok := <-out:
					if !ok {
						return
					}
					_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						cancel()
						return
					}
				}
			}
		}()

		// Reader loop.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				cancel()
				break
			}
			base, err := protocol.DecodeBase(msg)
			if err != nil {
				continue
			}
			if base.Type != protocol.TypeInput {
				continue
			}
			var in protocol.InputMsg
			if err := json.Unmarshal(msg, &in); err != nil {
				continue
			}
			if in.ProtocolVersion != protocol.Version {
				continue
			}
			s.world.Inbox() <- world.InputEnvelope{PlayerID: playerID, Msg: in}
		}

		// Cleanup.
		s.world.Leave() <- playerID
	}
}

func (s *Server) handshake(conn *websocket.Conn) (playerID string, out chan []byte) {
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return "", nil
	}

	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeHello {
		s.closePolicy(conn, "expected HELLO")
		return "", nil
	}

	var hello protocol.HelloMsg
	if err := json.Unmarshal(msg, &hello); err != nil {
		s.closePolicy(conn, "bad HELLO")
		return "", nil
	}
	if hello.ProtocolVersion != protocol.Version {
		s.closePolicy(conn, "bad protocol_version")
		return "", nil
	}

	maxQ := hello.Capabilities.MaxQueue
	if maxQ <= 0 {
		maxQ = 8
	}
	if maxQ > 64 {
		maxQ = 64
	}
	out = make(chan []byte, maxQ)

	respCh := make(chan world.JoinResponse, 1)
	s.world.Join() <- world.JoinRequest{
		Name: hello.PlayerName,
		Out:  out,
		Resp: respCh,
	}
	resp := <-respCh

	// Send welcome + catalogs immediately.
	if err := writeJSON(conn, resp.Welcome); err != nil {
		s.world.Leave() <- resp.Welcome.PlayerID
		return "", nil
	}
	for _, c := range resp.Catalogs {
		if err := writeJSON(conn, c); err != nil {
			s.world.Leave() <- resp.Welcome.PlayerID
			return "", nil
		}
	}
	s.log.Printf("session player=%s name=%q", resp.Welcome.PlayerID, hello.PlayerName)
	return resp.Welcome.PlayerID, out
}

func (s *Server) closePolicy(conn *websocket.Conn, reason string) {
	s.log.Printf("handshake rejected: %s", reason)
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason), time.Now().Add(time.Second))
}

func writeJSON(conn *websocket.Conn, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, b)
}
