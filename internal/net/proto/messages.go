package proto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/vmihailenco/msgpack/v5"

	"tank-arena/server/internal/sim"
)

// Format selects the snapshot encoding.
type Format string

const (
	FormatJSON    Format = "json"
	FormatMsgpack Format = "msgpack"
)

// Status strings returned by the command routes.
const (
	StatusSuccess     = "success"
	StatusError       = "error"
	StatusGameStarted = "Game started"
	StatusGameStopped = "Game stopped"
)

// ParseFormat maps a query value onto a Format. Empty selects JSON.
func ParseFormat(value string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(value))) {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatMsgpack:
		return FormatMsgpack, nil
	default:
		return "", fmt.Errorf("proto: unknown format %q", value)
	}
}

// Binary reports whether frames in this format travel as binary messages.
func (f Format) Binary() bool {
	return f == FormatMsgpack
}

// EncodeSnapshot renders a snapshot. Msgpack frames reuse the JSON field
// names so both encodings decode into the same client model.
func EncodeSnapshot(snapshot sim.Snapshot, format Format) ([]byte, error) {
	switch format {
	case FormatMsgpack:
		var buf bytes.Buffer
		enc := msgpack.NewEncoder(&buf)
		enc.SetCustomStructTag("json")
		if err := enc.Encode(&snapshot); err != nil {
			return nil, fmt.Errorf("proto: encode msgpack snapshot: %w", err)
		}
		return buf.Bytes(), nil
	default:
		data, err := json.Marshal(snapshot)
		if err != nil {
			return nil, fmt.Errorf("proto: encode json snapshot: %w", err)
		}
		return data, nil
	}
}

// DecodeSnapshot parses a snapshot produced by EncodeSnapshot.
func DecodeSnapshot(data []byte, format Format) (sim.Snapshot, error) {
	var snapshot sim.Snapshot
	switch format {
	case FormatMsgpack:
		dec := msgpack.NewDecoder(bytes.NewReader(data))
		dec.SetCustomStructTag("json")
		if err := dec.Decode(&snapshot); err != nil {
			return sim.Snapshot{}, fmt.Errorf("proto: decode msgpack snapshot: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &snapshot); err != nil {
			return sim.Snapshot{}, fmt.Errorf("proto: decode json snapshot: %w", err)
		}
	}
	return snapshot, nil
}

// UpdateRequest is the body of POST /api/update and of inbound websocket
// frames. Value carries a heading delta for rotate and a direction for move.
type UpdateRequest struct {
	ID     int             `json:"id"`
	Action string          `json:"action"`
	Value  json.RawMessage `json:"value,omitempty"`
}

// StatusResponse is the body returned by the command routes.
type StatusResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// DecodeUpdate parses an update payload into an engine command. Every
// failure wraps sim.ErrInvalidCommand.
func DecodeUpdate(payload []byte) (sim.Command, error) {
	var req UpdateRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return sim.Command{}, fmt.Errorf("proto: decode update: %v: %w", err, sim.ErrInvalidCommand)
	}
	return req.Command()
}

// Command converts the request into a validated engine command.
func (r UpdateRequest) Command() (sim.Command, error) {
	cmd := sim.Command{TankID: r.ID, Action: sim.Action(r.Action)}
	switch cmd.Action {
	case sim.ActionRotate:
		if err := json.Unmarshal(r.Value, &cmd.Rotate); err != nil {
			return sim.Command{}, fmt.Errorf("proto: rotate value %s: %w", string(r.Value), sim.ErrInvalidCommand)
		}
	case sim.ActionMove:
		if err := json.Unmarshal(r.Value, &cmd.Direction); err != nil {
			return sim.Command{}, fmt.Errorf("proto: move value %s: %w", string(r.Value), sim.ErrInvalidCommand)
		}
	}
	if err := cmd.Validate(); err != nil {
		return sim.Command{}, err
	}
	return cmd, nil
}

// NewStatus builds a status response, attaching err when present.
func NewStatus(status string, err error) StatusResponse {
	resp := StatusResponse{Status: status}
	if err != nil {
		resp.Error = err.Error()
	}
	return resp
}

// SnapshotSchema describes the snapshot wire format.
func SnapshotSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: true,
		ExpandedStruct:            true,
	}
	schema := reflector.Reflect(new(sim.Snapshot))
	schema.Title = "Tank Arena Snapshot"
	schema.Description = "State returned by /api/game-state and streamed over /ws"
	return schema
}
