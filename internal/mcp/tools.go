package mcp

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/starbase/internal/domain/catalog"
	"github.com/rpggio/starbase/internal/domain/empire"
	"github.com/rpggio/starbase/internal/domain/queue"
)

const basePendingLimit = 100

// toolHandlers binds tool calls to the domain services.
type toolHandlers struct {
	svc    Services
	logger *slog.Logger
	now    func() time.Time
}

func registerTools(server *sdkmcp.Server, svc Services, logger *slog.Logger) {
	h := &toolHandlers{svc: svc, logger: logger, now: time.Now}

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "start_production",
		Description: "Queue a technology, unit or defense at one of the empire's colonies. Charges credits up front and returns the completion time.",
	}, h.startProduction)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "cancel_production",
		Description: "Cancel a pending queue item. Credits are returned only when refund is true.",
	}, h.cancelProduction)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_queue",
		Description: "List the empire's queue items, newest first, with minutes remaining.",
	}, h.listQueue)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_base_status",
		Description: "Show capacities with breakdowns, the energy balance and pending work at one colony.",
	}, h.getBaseStatus)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_empire",
		Description: "Show credits, tech levels, income, colonies, fleets and research of an empire.",
	}, h.getEmpire)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_transactions",
		Description: "List the empire's credit ledger, newest first.",
	}, h.listTransactions)
}

func (h *toolHandlers) startProduction(ctx context.Context, _ *sdkmcp.CallToolRequest, in StartProductionParams) (*sdkmcp.CallToolResult, any, error) {
	res, err := h.svc.Queue.Start(ctx, strings.TrimSpace(in.EmpireID), in.Coord, strings.TrimSpace(in.ItemKey))
	if err != nil {
		return h.fail(ctx, "start_production", err)
	}
	return h.ok(StartProductionResult{
		QueueID:      res.QueueID,
		Category:     string(res.Category),
		ItemKey:      res.ItemKey,
		CompletesAt:  res.CompletesAt,
		ETAMinutes:   res.ETAMinutes,
		CapacityRate: res.CapacityRate,
		CreditsCost:  res.CreditsCost,
		BalanceAfter: res.BalanceAfter,
	})
}

func (h *toolHandlers) cancelProduction(ctx context.Context, _ *sdkmcp.CallToolRequest, in CancelProductionParams) (*sdkmcp.CallToolResult, any, error) {
	item, err := h.svc.Queue.Cancel(ctx, queue.CancelRequest{
		EmpireID: strings.TrimSpace(in.EmpireID),
		QueueID:  strings.TrimSpace(in.QueueID),
		Refund:   in.Refund,
	})
	if err != nil {
		return h.fail(ctx, "cancel_production", err)
	}
	return h.ok(item)
}

func (h *toolHandlers) listQueue(ctx context.Context, _ *sdkmcp.CallToolRequest, in ListQueueParams) (*sdkmcp.CallToolResult, any, error) {
	items, err := h.svc.Queue.List(ctx, strings.TrimSpace(in.EmpireID), queue.ListOptions{
		Category: catalog.Category(strings.ToLower(in.Category)),
		Status:   queue.Status(strings.ToLower(in.Status)),
		Limit:    in.Limit,
	})
	if err != nil {
		return h.fail(ctx, "list_queue", err)
	}
	return h.ok(h.entries(items, ""))
}

func (h *toolHandlers) getBaseStatus(ctx context.Context, _ *sdkmcp.CallToolRequest, in BaseParams) (*sdkmcp.CallToolResult, any, error) {
	empireID := strings.TrimSpace(in.EmpireID)
	coord, err := empire.ParseCoordinate(in.Coord)
	if err != nil {
		return h.fail(ctx, "get_base_status", err)
	}
	base, err := h.svc.Empires.LoadBase(ctx, empireID, coord)
	if err != nil {
		return h.fail(ctx, "get_base_status", err)
	}
	pending, err := h.svc.Queue.List(ctx, empireID, queue.ListOptions{Status: queue.StatusPending, Limit: basePendingLimit})
	if err != nil {
		return h.fail(ctx, "get_base_status", err)
	}

	return h.ok(BaseStatus{
		Colony:            base.Colony,
		Location:          base.Location,
		Buildings:         base.Buildings,
		Capacity:          base.Capacity(),
		Energy:            base.Energy(),
		CompletedDefenses: base.CompletedDefenses,
		PendingDefenses:   base.PendingDefenses,
		Pending:           h.entries(pending, coord.String()),
	})
}

func (h *toolHandlers) getEmpire(ctx context.Context, _ *sdkmcp.CallToolRequest, in EmpireParams) (*sdkmcp.CallToolResult, any, error) {
	empireID := strings.TrimSpace(in.EmpireID)
	e, err := h.svc.Empires.Get(ctx, empireID)
	if err != nil {
		return h.fail(ctx, "get_empire", err)
	}
	status := EmpireStatus{Empire: e}
	if status.Economy, err = h.svc.Empires.Economy(ctx, empireID); err != nil {
		return h.fail(ctx, "get_empire", err)
	}
	if status.Colonies, err = h.svc.Empires.ListColonies(ctx, empireID); err != nil {
		return h.fail(ctx, "get_empire", err)
	}
	if h.svc.Fleets != nil {
		if status.Fleets, err = h.svc.Fleets.List(ctx, empireID); err != nil {
			return h.fail(ctx, "get_empire", err)
		}
	}
	if h.svc.Research != nil {
		if status.Research, err = h.svc.Research.List(ctx, empireID); err != nil {
			return h.fail(ctx, "get_empire", err)
		}
	}
	return h.ok(status)
}

func (h *toolHandlers) listTransactions(ctx context.Context, _ *sdkmcp.CallToolRequest, in TransactionsParams) (*sdkmcp.CallToolResult, any, error) {
	txs, err := h.svc.Ledger.History(ctx, strings.TrimSpace(in.EmpireID), in.Limit)
	if err != nil {
		return h.fail(ctx, "list_transactions", err)
	}
	return h.ok(txs)
}

// entries adds remaining minutes, keeping only items at coord when it is set.
func (h *toolHandlers) entries(items []queue.Item, coord string) []QueueEntry {
	now := h.now()
	out := make([]QueueEntry, 0, len(items))
	for i := range items {
		if coord != "" && items[i].Coord != coord {
			continue
		}
		out = append(out, QueueEntry{Item: items[i], RemainingMinutes: items[i].RemainingMinutes(now)})
	}
	return out
}

func (h *toolHandlers) ok(data any) (*sdkmcp.CallToolResult, any, error) {
	return envelope(Response{Success: true, Data: data}, false)
}

// fail reports a domain error inside the envelope. The call itself succeeds at
// the protocol level so clients can read code and details.
func (h *toolHandlers) fail(ctx context.Context, tool string, err error) (*sdkmcp.CallToolResult, any, error) {
	apiErr := MapError(err)
	if apiErr.Code == CodeInternal {
		h.logger.ErrorContext(ctx, "tool failed", "tool", tool, "session_id", getSessionID(ctx), "error", err)
	} else {
		h.logger.DebugContext(ctx, "tool rejected", "tool", tool, "code", apiErr.Code, "error", err)
	}
	return envelope(Response{
		Success:      false,
		Code:         apiErr.Code,
		Message:      apiErr.Message,
		Details:      apiErr.Details,
		RecoveryHint: apiErr.RecoveryHint,
	}, true)
}

func envelope(resp Response, isError bool) (*sdkmcp.CallToolResult, any, error) {
	data, err := json.Marshal(resp)
	if err != nil {
		return nil, nil, err
	}
	return &sdkmcp.CallToolResult{
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: string(data)}},
		IsError: isError,
	}, nil, nil
}
