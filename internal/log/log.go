package log

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Call describes one HTTP exchange, outgoing (api client) or incoming
// (devapi). A nil *Call logs without request fields.
type Call struct {
	ReqID   string
	Method  string
	Path    string
	Status  int
	Latency time.Duration
	UserID  string
}

type entry struct {
	TS        string         `json:"ts"`
	Level     string         `json:"level"`
	ReqID     string         `json:"req_id,omitempty"`
	IP        string         `json:"ip,omitempty"`
	Method    string         `json:"method,omitempty"`
	Path      string         `json:"path,omitempty"`
	UserID    string         `json:"user_id,omitempty"`
	Action    string         `json:"action,omitempty"`
	Status    int            `json:"status,omitempty"`
	LatencyMs int64          `json:"latency_ms,omitempty"`
	Err       string         `json:"err,omitempty"`
	Fields    map[string]any `json:"fields,omitempty"`
}

func write(level string, c *Call, ip string, action string, err error, fields map[string]any) {
	e := entry{TS: time.Now().UTC().Format(time.RFC3339), Level: level, IP: ip, Action: action, Fields: fields}
	if c != nil {
		e.ReqID = c.ReqID
		e.Method = c.Method
		e.Path = c.Path
		e.Status = c.Status
		e.LatencyMs = c.Latency.Milliseconds()
		e.UserID = c.UserID
	}
	if err != nil {
		e.Err = err.Error()
	}
	b, _ := json.Marshal(e)
	log.Println(string(b))
}

func Info(c *Call, action string, fields map[string]any) { write("info", c, "", action, nil, fields) }
func Audit(c *Call, action string, fields map[string]any) {
	write("audit", c, "", action, nil, fields)
}
func Security(c *Call, action string, fields map[string]any) {
	write("warn", c, "", action, nil, fields)
}
func Error(c *Call, action string, err error, fields map[string]any) {
	write("error", c, "", action, err, fields)
}

// FromCtx snapshots the request a devapi handler is serving.
func FromCtx(c *fiber.Ctx) *Call {
	call := &Call{
		Method: c.Method(),
		Path:   c.Path(),
		Status: c.Response().StatusCode(),
	}
	if rid, ok := c.Locals("requestid").(string); ok {
		call.ReqID = rid
	}
	if uid, ok := c.Locals("username").(string); ok {
		call.UserID = uid
	}
	return call
}

// Ctx variants keep the client IP, which only the server side knows.
func InfoCtx(c *fiber.Ctx, action string, fields map[string]any) {
	write("info", FromCtx(c), c.IP(), action, nil, fields)
}
func AuditCtx(c *fiber.Ctx, action string, fields map[string]any) {
	write("audit", FromCtx(c), c.IP(), action, nil, fields)
}
func SecurityCtx(c *fiber.Ctx, action string, fields map[string]any) {
	write("warn", FromCtx(c), c.IP(), action, nil, fields)
}
func ErrorCtx(c *fiber.Ctx, action string, err error, fields map[string]any) {
	write("error", FromCtx(c), c.IP(), action, err, fields)
}
