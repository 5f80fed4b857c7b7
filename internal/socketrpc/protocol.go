package socketrpc

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/tinytelemetry/ecotrack/internal/model"
)

// JSON-RPC 2.0 Method Reference
//
// The socket RPC server exposes the tracker to local tools (the terminal
// dashboard, scripts) over a Unix domain socket. Users are addressed by email.
//
//   Method           Params                                          Result
//   ──────────────   ─────────────────────────────────────────────   ───────────────────────
//   Summary          {Email: string}                                 model.Summary
//   RecentActions    {Email: string, Limit: int}                     []model.CompletedAction
//   Habits           {Email: string}                                 []model.Habit
//   CompleteAction   {Email: string, ActionID: string}               model.ActionResult
//   SubmitSurvey     {Email: string, Category: string, Answers: {}}  model.Survey
//   Catalog          (none)                                          []actions.Action
//
// RecentActions treats a missing or non-positive Limit as the default of 10.
//
// Error codes follow JSON-RPC 2.0:
//   -32700  Parse error (malformed JSON)
//   -32601  Method not found
//   -32602  Invalid params
//   -32603  Internal error (marshal failure)
//   -32000  Application error (lookup or store failure)
//   -32001  Unknown user

const (
	codeParse        = -32700
	codeNoMethod     = -32601
	codeInvalid      = -32602
	codeInternal     = -32603
	codeApplication  = -32000
	codeUnknownUser  = -32001
	protocolVersion  = "2.0"
	defaultSocketDir = "ecotrack"
)

// Request is a JSON-RPC 2.0 request.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int             `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
}

// Response is a JSON-RPC 2.0 response.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int             `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

// RPCError represents a JSON-RPC 2.0 error object.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string { return e.Message }

// UnknownUser reports whether err is the server's unknown-user error.
func UnknownUser(err error) bool {
	rpcErr, ok := err.(*RPCError)
	return ok && rpcErr.Code == codeUnknownUser
}

// DefaultSocketPath returns the default Unix socket path.
// It prefers $XDG_RUNTIME_DIR/ecotrack/ecotrack.sock, falling back to
// ~/.local/state/ecotrack/ecotrack.sock.
func DefaultSocketPath() string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, defaultSocketDir, model.DefaultSocketName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), model.DefaultSocketName)
	}
	return filepath.Join(home, ".local", "state", defaultSocketDir, model.DefaultSocketName)
}
