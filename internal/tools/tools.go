// Package tools defines the six NetSuite tools exposed over MCP and maps each
// invocation onto exactly one dispatcher call. Argument problems (missing
// record type, malformed JSON bodies) fail here, before any network traffic.
package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"github.com/suitebridge/netsuite-mcp/internal/netsuite"
	"github.com/suitebridge/netsuite-mcp/internal/redact"
	"github.com/suitebridge/netsuite-mcp/internal/validate"
)

const (
	defaultQueryLimit  = 100
	defaultQueryOffset = 0
	defaultSearchLimit = 50
)

// Client is the slice of the NetSuite dispatcher the tools need. Accepting an
// interface keeps the handlers testable without HTTP.
type Client interface {
	SuiteQL(ctx context.Context, query string, limit, offset int) (json.RawMessage, error)
	GetRecord(ctx context.Context, recordType, id string, expandSubResources bool) (json.RawMessage, error)
	CreateRecord(ctx context.Context, recordType string, body json.RawMessage) (json.RawMessage, string, error)
	UpdateRecord(ctx context.Context, recordType, id string, body json.RawMessage) (json.RawMessage, string, error)
	Metadata(ctx context.Context, recordType string) (json.RawMessage, error)
}

// Registry wires the tool definitions, the policy gate, and the dispatcher
// together for installation on an MCP server.
type Registry struct {
	client Client
	gate   *validate.Gate
	log    zerolog.Logger
	red    *redact.Redactor
}

func NewRegistry(client Client, gate *validate.Gate, log zerolog.Logger) *Registry {
	return &Registry{
		client: client,
		gate:   gate,
		log:    log,
		red:    redact.Default(),
	}
}

// Install registers all six tools on the server.
func (r *Registry) Install(s *server.MCPServer) {
	s.AddTool(mcp.NewTool("run_suiteql",
		mcp.WithDescription("Run an arbitrary SuiteQL query against NetSuite"),
		mcp.WithString("q", mcp.Required(), mcp.Description("SuiteQL query text")),
		mcp.WithNumber("limit", mcp.Description("Maximum rows to return (default 100)")),
		mcp.WithNumber("offset", mcp.Description("Row offset for pagination (default 0)")),
	), r.wrap("run_suiteql", r.runSuiteQL))

	s.AddTool(mcp.NewTool("get_record",
		mcp.WithDescription("Fetch a single record by type and internal id"),
		mcp.WithString("recordType", mcp.Required(), mcp.Description("Record type, e.g. customer, salesOrder")),
		mcp.WithString("id", mcp.Required(), mcp.Description("Internal id of the record")),
		mcp.WithBoolean("expandSubResources", mcp.Description("Expand sublists and subrecords inline")),
	), r.wrap("get_record", r.getRecord))

	s.AddTool(mcp.NewTool("search_records",
		mcp.WithDescription("Search records of a type via a generated SuiteQL query"),
		mcp.WithString("recordType", mcp.Required(), mcp.Description("Record type to search")),
		mcp.WithString("fields", mcp.Description("Comma-separated fields to select (default *)")),
		mcp.WithString("condition", mcp.Description("SuiteQL WHERE clause, e.g. id=1")),
		mcp.WithString("orderBy", mcp.Description("SuiteQL ORDER BY clause, e.g. id")),
		mcp.WithNumber("limit", mcp.Description("Maximum rows to return (default 50)")),
	), r.wrap("search_records", r.searchRecords))

	s.AddTool(mcp.NewTool("create_record",
		mcp.WithDescription("Create a record; data is the record body as JSON text"),
		mcp.WithString("recordType", mcp.Required(), mcp.Description("Record type to create")),
		mcp.WithString("data", mcp.Required(), mcp.Description("Record body as a JSON object, e.g. {\"companyName\":\"Acme\"}")),
	), r.wrap("create_record", r.createRecord))

	s.AddTool(mcp.NewTool("update_record",
		mcp.WithDescription("Update a record; data is the changed fields as JSON text"),
		mcp.WithString("recordType", mcp.Required(), mcp.Description("Record type to update")),
		mcp.WithString("id", mcp.Required(), mcp.Description("Internal id of the record")),
		mcp.WithString("data", mcp.Required(), mcp.Description("Changed fields as a JSON object")),
	), r.wrap("update_record", r.updateRecord))

	s.AddTool(mcp.NewTool("list_metadata",
		mcp.WithDescription("List the record metadata catalog, or one record type's metadata"),
		mcp.WithString("recordType", mcp.Description("Record type to describe; omit for the full catalog")),
	), r.wrap("list_metadata", r.listMetadata))
}

// wrap applies the policy gate and debug logging around a handler.
func (r *Registry) wrap(name string, h server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := req.GetArguments()

		decision, err := r.gate.Check(name, args)
		if err != nil {
			return mcp.NewToolResultError("policy check failed: " + err.Error()), nil
		}
		if decision.Allowed && len(decision.Violations) > 0 {
			r.log.Warn().Str("tool", name).Strs("violations", decision.Violations).Msg("policy audit")
		}
		if !decision.Allowed {
			return mcp.NewToolResultError(fmt.Sprintf("tool call rejected by policy: %v", decision.Violations)), nil
		}

		if e := r.log.Debug(); e.Enabled() {
			raw, err := json.Marshal(args)
			if err != nil {
				raw = json.RawMessage(`"[unloggable args]"`)
			}
			e.Str("tool", name).RawJSON("args", r.red.Apply(raw)).Msg("tool call")
		}
		return h(ctx, req)
	}
}

func (r *Registry) runSuiteQL(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	q, err := requireString(args, "q")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	payload, err := r.client.SuiteQL(ctx, q, intArg(args, "limit", defaultQueryLimit), intArg(args, "offset", defaultQueryOffset))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(payload)), nil
}

func (r *Registry) getRecord(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	recordType, err := requireString(args, "recordType")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	id, err := requireString(args, "id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	payload, err := r.client.GetRecord(ctx, recordType, id, boolArg(args, "expandSubResources"))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(payload)), nil
}

func (r *Registry) searchRecords(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	recordType, err := requireString(args, "recordType")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	query := netsuite.BuildSelect(recordType, stringArg(args, "fields"), stringArg(args, "condition"), stringArg(args, "orderBy"))
	payload, err := r.client.SuiteQL(ctx, query, intArg(args, "limit", defaultSearchLimit), 0)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(payload)), nil
}

func (r *Registry) createRecord(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	recordType, err := requireString(args, "recordType")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	body, err := recordBody(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	payload, location, err := r.client.CreateRecord(ctx, recordType, body)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return writeResult(payload, location), nil
}

func (r *Registry) updateRecord(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	recordType, err := requireString(args, "recordType")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	id, err := requireString(args, "id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	body, err := recordBody(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	payload, location, err := r.client.UpdateRecord(ctx, recordType, id, body)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return writeResult(payload, location), nil
}

func (r *Registry) listMetadata(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	payload, err := r.client.Metadata(ctx, stringArg(req.GetArguments(), "recordType"))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(payload)), nil
}

// recordBody parses the caller-supplied "data" argument. The text must parse
// as a JSON object; failures never reach the network.
func recordBody(args map[string]any) (json.RawMessage, error) {
	data, err := requireString(args, "data")
	if err != nil {
		return nil, err
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(data), &obj); err != nil {
		return nil, fmt.Errorf("data must be a JSON object: %w", err)
	}
	return json.RawMessage(data), nil
}

// writeResult renders a create/update outcome. SuiteTalk answers those with
// 204 and a Location header, so a null payload gets a synthesized summary.
func writeResult(payload json.RawMessage, location string) *mcp.CallToolResult {
	if string(payload) != "null" {
		return mcp.NewToolResultText(string(payload))
	}
	out := map[string]any{"success": true}
	if location != "" {
		out["location"] = location
	}
	b, _ := json.Marshal(out)
	return mcp.NewToolResultText(string(b))
}

func requireString(args map[string]any, key string) (string, error) {
	v, _ := args[key].(string)
	if v == "" {
		return "", fmt.Errorf("%s is required", key)
	}
	return v, nil
}

func stringArg(args map[string]any, key string) string {
	v, _ := args[key].(string)
	return v
}

// intArg accepts float64 (JSON numbers) and int.
func intArg(args map[string]any, key string, def int) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return def
	}
}

func boolArg(args map[string]any, key string) bool {
	v, _ := args[key].(bool)
	return v
}
