package spreadsheet

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"sync"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all for local dev
	},
}

// Server exposes a Sheet over websockets. The engine itself is
// single-threaded, so the server serializes every sheet access behind
// one mutex.
type Server struct {
	sheet   *Sheet
	sheetMu sync.Mutex

	clients map[*websocket.Conn]bool
	mu      sync.Mutex
}

func NewServer() *Server {
	return &Server{
		sheet:   NewSheet(),
		clients: make(map[*websocket.Conn]bool),
	}
}

type UpdateRequest struct {
	Type  string `json:"type"`
	ID    string `json:"id"`
	Value string `json:"value"`
}

type UpdateResponse struct {
	Type    string `json:"type"`
	ID      string `json:"id"`
	Value   string `json:"value"`
	Display string `json:"display"`
	Error   string `json:"error,omitempty"`
}

func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("Upgrade error:", err)
		return
	}

	s.mu.Lock()
	s.clients[conn] = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.clients, conn)
		s.mu.Unlock()
		conn.Close()
	}()

	s.sendInitialState(conn)

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			break
		}

		var req UpdateRequest
		if err := json.Unmarshal(msg, &req); err != nil {
			log.Println("JSON error:", err)
			continue
		}

		switch req.Type {
		case "update_cell":
			s.handleUpdate(req)
		case "clear_cell":
			s.handleClear(req)
		case "get_sheet":
			s.sendInitialState(conn)
		}
	}
}

func (s *Server) handleUpdate(req UpdateRequest) {
	pos := PositionFromString(req.ID)

	s.sheetMu.Lock()
	err := s.sheet.SetCell(pos, req.Value)
	var responses []UpdateResponse
	if err != nil {
		// The grid is unchanged; report the failure on the edited cell.
		responses = []UpdateResponse{{
			Type:  "cell_updated",
			ID:    req.ID,
			Value: req.Value,
			Error: err.Error(),
		}}
	} else {
		responses = s.affectedResponses(pos)
	}
	s.sheetMu.Unlock()

	s.broadcast(responses)
}

func (s *Server) handleClear(req UpdateRequest) {
	pos := PositionFromString(req.ID)

	s.sheetMu.Lock()
	var responses []UpdateResponse
	if err := s.sheet.ClearCell(pos); err != nil {
		responses = []UpdateResponse{{
			Type:  "cell_updated",
			ID:    req.ID,
			Error: err.Error(),
		}}
	} else {
		responses = s.affectedResponses(pos)
	}
	s.sheetMu.Unlock()

	s.broadcast(responses)
}

// affectedResponses renders the cell at pos and every transitive
// dependent. Caller holds sheetMu.
func (s *Server) affectedResponses(pos Position) []UpdateResponse {
	affected := []Position{pos}
	seen := map[Position]bool{pos: true}
	for i := 0; i < len(affected); i++ {
		cell := s.sheet.cellAt(affected[i])
		if cell == nil {
			continue
		}
		for dep := range cell.incoming {
			if !seen[dep] {
				seen[dep] = true
				affected = append(affected, dep)
			}
		}
	}

	responses := make([]UpdateResponse, 0, len(affected))
	for _, p := range affected {
		resp := UpdateResponse{Type: "cell_updated", ID: p.String()}
		if cell := s.sheet.cellAt(p); cell != nil {
			resp.Value = cell.Text()
			resp.Display = cell.Value(s.sheet).String()
		}
		responses = append(responses, resp)
	}
	return responses
}

func (s *Server) sendInitialState(conn *websocket.Conn) {
	s.sheetMu.Lock()
	responses := make([]UpdateResponse, 0, len(s.sheet.cells))
	for pos, cell := range s.sheet.cells {
		if cell.Text() == "" {
			continue
		}
		responses = append(responses, UpdateResponse{
			Type:    "cell_updated",
			ID:      pos.String(),
			Value:   cell.Text(),
			Display: cell.Value(s.sheet).String(),
		})
	}
	s.sheetMu.Unlock()

	for _, resp := range responses {
		if err := conn.WriteJSON(resp); err != nil {
			log.Printf("initial state write failed: %v", err)
			return
		}
	}
}

func (s *Server) broadcast(responses []UpdateResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, resp := range responses {
		for client := range s.clients {
			if err := client.WriteJSON(resp); err != nil {
				log.Printf("broadcast write failed: %v", err)
				_ = client.Close()
				delete(s.clients, client)
			}
		}
	}
}

// Start runs the HTTP server on addr, serving the websocket endpoint at
// /ws and static assets from assets/spreadsheet when present.
func (s *Server) Start(addr string) error {
	mux := http.NewServeMux()

	dir := "assets/spreadsheet"
	if _, err := os.Stat(dir); err == nil {
		log.Printf("Serving static files from %s", dir)
		mux.Handle("/", http.FileServer(http.Dir(dir)))
	}

	mux.HandleFunc("/ws", s.HandleWebSocket)

	log.Printf("Starting sheet server at http://%s", addr)
	return http.ListenAndServe(addr, mux)
}
