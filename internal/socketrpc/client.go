package socketrpc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/tinytelemetry/ecotrack/internal/actions"
	"github.com/tinytelemetry/ecotrack/internal/footprint"
	"github.com/tinytelemetry/ecotrack/internal/model"
)

// Client calls a Server over a Unix domain socket using JSON-RPC 2.0.
type Client struct {
	conn    net.Conn
	mu      sync.Mutex
	nextID  int
	scanner *bufio.Scanner
	encoder *json.Encoder
}

// Dial connects to the socket RPC server at the given path.
func Dial(socketPath string) (*Client, error) {
	conn, err := net.DialTimeout("unix", socketPath, 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("socketrpc: dial: %w", err)
	}
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, scannerInitBufSize), scannerMaxTokenSize)
	return &Client{
		conn:    conn,
		scanner: scanner,
		encoder: json.NewEncoder(conn),
	}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// call performs a JSON-RPC call and unmarshals the result into dest.
func (c *Client) call(method string, params any, dest any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextID++
	id := c.nextID

	paramsData, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("socketrpc: marshal params: %w", err)
	}

	req := Request{
		JSONRPC: protocolVersion,
		ID:      id,
		Method:  method,
		Params:  paramsData,
	}

	c.conn.SetDeadline(time.Now().Add(30 * time.Second))
	defer c.conn.SetDeadline(time.Time{})

	if err := c.encoder.Encode(req); err != nil {
		return fmt.Errorf("socketrpc: send: %w", err)
	}

	if !c.scanner.Scan() {
		if err := c.scanner.Err(); err != nil {
			return fmt.Errorf("socketrpc: read: %w", err)
		}
		return fmt.Errorf("socketrpc: connection closed")
	}

	var resp Response
	if err := json.Unmarshal(c.scanner.Bytes(), &resp); err != nil {
		return fmt.Errorf("socketrpc: unmarshal response: %w", err)
	}
	if resp.Error != nil {
		return resp.Error
	}

	if dest != nil {
		if err := json.Unmarshal(resp.Result, dest); err != nil {
			return fmt.Errorf("socketrpc: unmarshal result: %w", err)
		}
	}
	return nil
}

func (c *Client) Summary(email string) (model.Summary, error) {
	var result model.Summary
	err := c.call("Summary", map[string]any{"Email": email}, &result)
	return result, err
}

func (c *Client) RecentActions(email string, limit int) ([]model.CompletedAction, error) {
	var result []model.CompletedAction
	err := c.call("RecentActions", map[string]any{"Email": email, "Limit": limit}, &result)
	return result, err
}

func (c *Client) Habits(email string) ([]model.Habit, error) {
	var result []model.Habit
	err := c.call("Habits", map[string]any{"Email": email}, &result)
	return result, err
}

func (c *Client) CompleteAction(email, actionID string) (model.ActionResult, error) {
	var result model.ActionResult
	err := c.call("CompleteAction", map[string]any{"Email": email, "ActionID": actionID}, &result)
	return result, err
}

func (c *Client) SubmitSurvey(email string, category footprint.Category, answers footprint.Answers) (model.Survey, error) {
	var result model.Survey
	err := c.call("SubmitSurvey", map[string]any{
		"Email":    email,
		"Category": category,
		"Answers":  answers,
	}, &result)
	return result, err
}

func (c *Client) Catalog() ([]actions.Action, error) {
	var result []actions.Action
	err := c.call("Catalog", map[string]any{}, &result)
	return result, err
}
