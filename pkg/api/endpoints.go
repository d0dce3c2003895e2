package api

import (
	"context"
	"fmt"

	"github.com/hazyhaar/visit-ledger/pkg/kit"
	"github.com/hazyhaar/visit-ledger/pkg/ledger"
	"github.com/hazyhaar/visit-ledger/pkg/visit"
)

// Shared request/response types used by both HTTP and MCP transports.

type searchReq struct {
	Criteria visit.Criteria
	OrderBy  string
	Order    string
	Offset   int
	Limit    int
}

type countReq struct {
	Month   string
	Officer string
}

type countResponse struct {
	Questions int `json:"questions"`
}

type statsReq struct {
	Month string
}

type statsResponse struct {
	Officers []visit.OfficerSummary `json:"officers"`
}

type createReq struct {
	Record visit.Record
}

type updateReq struct {
	Record visit.Record
}

type deleteReq struct {
	ID string
}

type batchDeleteReq struct {
	IDs []string `json:"ids"`
}

type batchDeleteResponse struct {
	Deleted []string `json:"deleted"`
	Skipped []string `json:"skipped,omitempty"`
}

// callerFrom builds the mutation identity from the request context.
func callerFrom(ctx context.Context) ledger.Caller {
	return ledger.Caller{
		Officer: kit.GetOfficer(ctx),
		Role:    kit.GetRole(ctx),
	}
}

// Endpoints backed by the ledger service.

func searchEndpoint(svc *ledger.Service) kit.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req := request.(*searchReq)
		if req.Limit > 500 {
			return nil, fmt.Errorf("limit too large (max 500, got %d)", req.Limit)
		}
		return svc.Search(ctx, req.Criteria, req.OrderBy, req.Order, req.Offset, req.Limit)
	}
}

func countEndpoint(svc *ledger.Service) kit.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req := request.(*countReq)
		n, err := svc.CountQuestions(ctx, req.Month, req.Officer)
		if err != nil {
			return nil, err
		}
		return countResponse{Questions: n}, nil
	}
}

func statsEndpoint(svc *ledger.Service) kit.Endpoint {
	return func(_ context.Context, request any) (any, error) {
		req := request.(*statsReq)
		return statsResponse{Officers: svc.OfficerStats(req.Month)}, nil
	}
}

func createEndpoint(svc *ledger.Service) kit.Endpoint {
	return func(_ context.Context, request any) (any, error) {
		req := request.(*createReq)
		return svc.Create(req.Record)
	}
}

func updateEndpoint(svc *ledger.Service) kit.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req := request.(*updateReq)
		if err := svc.Update(callerFrom(ctx), req.Record); err != nil {
			return nil, err
		}
		return req.Record, nil
	}
}

func deleteEndpoint(svc *ledger.Service) kit.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req := request.(*deleteReq)
		if err := svc.Delete(callerFrom(ctx), req.ID); err != nil {
			return nil, err
		}
		return map[string]string{"deleted": req.ID}, nil
	}
}

func batchDeleteEndpoint(svc *ledger.Service) kit.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req := request.(*batchDeleteReq)
		if len(req.IDs) == 0 {
			return nil, fmt.Errorf("ids array is empty")
		}
		deleted, skipped, err := svc.BatchDelete(callerFrom(ctx), req.IDs)
		if err != nil {
			return nil, err
		}
		if deleted == nil {
			deleted = []string{}
		}
		return batchDeleteResponse{Deleted: deleted, Skipped: skipped}, nil
	}
}
