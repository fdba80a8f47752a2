// Package kernel runs a headless calculation service: one sheet behind
// a ZeroMQ REP socket speaking HMAC-signed JSON commands.
package kernel

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/go-zeromq/zmq4"

	"tabula/spreadsheet"
)

// ConnectionInfo holds the connection file configuration.
type ConnectionInfo struct {
	Endpoint string `json:"endpoint"`
	Key      string `json:"key"`
}

// Request is one command frame. Pos is in A1 form; Text carries the
// cell source for "set".
type Request struct {
	Op   string `json:"op"`
	Pos  string `json:"pos,omitempty"`
	Text string `json:"text,omitempty"`
}

// Reply carries the outcome. Status is "ok" or "error".
type Reply struct {
	Status  string `json:"status"`
	Value   string `json:"value,omitempty"`
	Text    string `json:"text,omitempty"`
	Rows    int    `json:"rows,omitempty"`
	Cols    int    `json:"cols,omitempty"`
	Grid    string `json:"grid,omitempty"`
	Message string `json:"message,omitempty"`
}

// Kernel is the running service.
type Kernel struct {
	config   ConnectionInfo
	sock     zmq4.Socket
	sheet    *spreadsheet.Sheet
	shutdown chan struct{}
}

// NewKernel reads the connection file and prepares a kernel with a
// fresh sheet.
func NewKernel(configPath string) (*Kernel, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read connection file: %w", err)
	}

	var config ConnectionInfo
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse connection file: %w", err)
	}
	if config.Endpoint == "" {
		return nil, fmt.Errorf("connection file has no endpoint")
	}

	return &Kernel{
		config:   config,
		sheet:    spreadsheet.NewSheet(),
		shutdown: make(chan struct{}),
	}, nil
}

// Start binds the REP socket and serves requests until Stop.
func (k *Kernel) Start() error {
	k.sock = zmq4.NewRep(context.Background())
	if err := k.sock.Listen(k.config.Endpoint); err != nil {
		return fmt.Errorf("failed to bind to %s: %w", k.config.Endpoint, err)
	}

	log.Printf("Kernel listening on %s", k.config.Endpoint)

	for {
		select {
		case <-k.shutdown:
			return nil
		default:
		}

		msg, err := k.sock.Recv()
		if err != nil {
			select {
			case <-k.shutdown:
				return nil
			default:
			}
			log.Printf("Error receiving request: %v", err)
			continue
		}

		reply := k.handleMessage(msg)
		if err := k.send(reply); err != nil {
			log.Printf("Error sending reply: %v", err)
		}
	}
}

// Stop shuts the kernel down.
func (k *Kernel) Stop() {
	close(k.shutdown)
	if k.sock != nil {
		k.sock.Close()
	}
}

func (k *Kernel) handleMessage(msg zmq4.Msg) Reply {
	req, err := DecodeRequest(msg.Frames, k.config.Key)
	if err != nil {
		return Reply{Status: "error", Message: err.Error()}
	}
	return k.Execute(req)
}

func (k *Kernel) send(reply Reply) error {
	frames, err := EncodeReply(reply, k.config.Key)
	if err != nil {
		return err
	}
	return k.sock.Send(zmq4.NewMsgFrom(frames...))
}

// Execute runs one command against the sheet.
func (k *Kernel) Execute(req Request) Reply {
	switch req.Op {
	case "set":
		pos := spreadsheet.PositionFromString(req.Pos)
		if err := k.sheet.SetCell(pos, req.Text); err != nil {
			return Reply{Status: "error", Message: err.Error()}
		}
		return Reply{Status: "ok"}

	case "get":
		pos := spreadsheet.PositionFromString(req.Pos)
		cell, err := k.sheet.GetCell(pos)
		if err != nil {
			return Reply{Status: "error", Message: err.Error()}
		}
		if cell == nil {
			return Reply{Status: "ok"}
		}
		return Reply{Status: "ok", Value: cell.Value(k.sheet).String(), Text: cell.Text()}

	case "text":
		pos := spreadsheet.PositionFromString(req.Pos)
		cell, err := k.sheet.GetCell(pos)
		if err != nil {
			return Reply{Status: "error", Message: err.Error()}
		}
		if cell == nil {
			return Reply{Status: "ok"}
		}
		return Reply{Status: "ok", Text: cell.Text()}

	case "clear":
		pos := spreadsheet.PositionFromString(req.Pos)
		if err := k.sheet.ClearCell(pos); err != nil {
			return Reply{Status: "error", Message: err.Error()}
		}
		return Reply{Status: "ok"}

	case "size":
		size := k.sheet.PrintableSize()
		return Reply{Status: "ok", Rows: size.Rows, Cols: size.Cols}

	case "values":
		var sb strings.Builder
		if err := k.sheet.PrintValues(&sb); err != nil {
			return Reply{Status: "error", Message: err.Error()}
		}
		return Reply{Status: "ok", Grid: sb.String()}

	case "texts":
		var sb strings.Builder
		if err := k.sheet.PrintTexts(&sb); err != nil {
			return Reply{Status: "error", Message: err.Error()}
		}
		return Reply{Status: "ok", Grid: sb.String()}
	}

	return Reply{Status: "error", Message: fmt.Sprintf("unknown op %q", req.Op)}
}
