package api

import (
	"context"
	"strings"

	"github.com/hazyhaar/visit-ledger/pkg/kit"
	"github.com/hazyhaar/visit-ledger/pkg/ledger"
	"github.com/hazyhaar/visit-ledger/pkg/visit"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// RegisterMCPTools registers the read-side visit-ledger MCP tools on the
// server. Mutations stay HTTP-only: MCP callers have no officer identity
// to satisfy the ownership gate.
func RegisterMCPTools(srv *server.MCPServer, svc *ledger.Service) {
	registerSearchVisits(srv, svc)
	registerCountQuestions(srv, svc)
	registerOfficerStats(srv, svc)
}

func registerSearchVisits(srv *server.MCPServer, svc *ledger.Service) {
	tool := mcp.NewTool("search_visits",
		mcp.WithDescription("Fuzzy-search logged client visits. Multi-word queries use AND semantics; matching is diacritic-insensitive and typo-tolerant."),
		mcp.WithString("query", mcp.Description("Free-text search query")),
		mcp.WithString("category", mcp.Description("Field to search: all, clientName, contactNumber, address, duration, officerName, question, officerAnswer, date")),
		mcp.WithString("months", mcp.Description("Comma-separated 2-digit months to include (e.g. 03,04), or 'all'")),
		mcp.WithString("date", mcp.Description("Exact YYYY-MM-DD date, used with category=date")),
		mcp.WithString("order_by", mcp.Description("Field to sort by (e.g. name, date)")),
		mcp.WithString("order", mcp.Description("Sort direction: asc or desc")),
	)

	kit.RegisterMCPTool(srv, tool, searchEndpoint(svc), func(req mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		args := req.GetArguments()
		sr := &searchReq{
			Criteria: visit.Criteria{Category: visit.CategoryAll},
		}
		if v, _ := args["query"].(string); v != "" {
			sr.Criteria.Query = v
		}
		if v, _ := args["category"].(string); v != "" {
			sr.Criteria.Category = v
		}
		if v, _ := args["months"].(string); v != "" {
			sr.Criteria.Months = strings.Split(v, ",")
		}
		if v, _ := args["date"].(string); v != "" {
			sr.Criteria.Date = v
		}
		if v, _ := args["order_by"].(string); v != "" {
			sr.OrderBy = v
		}
		if v, _ := args["order"].(string); v != "" {
			sr.Order = v
		}
		return &kit.MCPDecodeResult{
			Request: sr,
			EnrichCtx: func(ctx context.Context) context.Context {
				return kit.WithTransport(ctx, "mcp_quic")
			},
		}, nil
	})
}

func registerCountQuestions(srv *server.MCPServer, svc *ledger.Service) {
	tool := mcp.NewTool("count_questions",
		mcp.WithDescription("Count discrete client questions across logged visits. Questions are the (1)… (2)… markers in the question field; an unmarked question counts as one."),
		mcp.WithString("month", mcp.Description("Restrict to a 2-digit month (e.g. 03)")),
		mcp.WithString("officer", mcp.Description("Restrict to one officer (exact name match)")),
	)

	kit.RegisterMCPTool(srv, tool, countEndpoint(svc), func(req mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		args := req.GetArguments()
		cr := &countReq{}
		if v, _ := args["month"].(string); v != "" {
			cr.Month = v
		}
		if v, _ := args["officer"].(string); v != "" {
			cr.Officer = v
		}
		return &kit.MCPDecodeResult{Request: cr}, nil
	})
}

func registerOfficerStats(srv *server.MCPServer, svc *ledger.Service) {
	tool := mcp.NewTool("officer_stats",
		mcp.WithDescription("Per-officer visit and question counts, optionally restricted to one month."),
		mcp.WithString("month", mcp.Description("Restrict to a 2-digit month (e.g. 03)")),
	)

	kit.RegisterMCPTool(srv, tool, statsEndpoint(svc), func(req mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		args := req.GetArguments()
		sr := &statsReq{}
		if v, _ := args["month"].(string); v != "" {
			sr.Month = v
		}
		return &kit.MCPDecodeResult{Request: sr}, nil
	})
}
