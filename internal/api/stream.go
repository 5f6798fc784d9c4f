package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/reasonforge/reasonforge/internal/analysis"
	"github.com/reasonforge/reasonforge/internal/checklist"
	"github.com/reasonforge/reasonforge/internal/domain"
	"github.com/reasonforge/reasonforge/internal/identity"
)

// wsAnalyzeRequest is the single message a client sends after connecting.
type wsAnalyzeRequest struct {
	ArgumentID   string `json:"argument_id"`
	Instructions string `json:"instructions,omitempty"`
}

// wsEvent is the envelope for every message sent to the client.
type wsEvent struct {
	Type      string                 `json:"type"` // "stage", "result", or "error"
	Stage     string                 `json:"stage,omitempty"`
	Error     string                 `json:"error,omitempty"`
	Result    *domain.AnalysisResult `json:"result,omitempty"`
	Checklist []domain.ChecklistItem `json:"checklist,omitempty"`
}

const wsReadTimeout = 30 * time.Second

// ServeAnalysisWS runs one analysis over a WebSocket, streaming pipeline
// stage events before the final result. Credit gating is identical to
// the plain HTTP endpoint.
func (h *Handler) ServeAnalysisWS(w http.ResponseWriter, r *http.Request) {
	acct := identity.AccountFromContext(r.Context())
	if acct == nil {
		http.Error(w, "no account", http.StatusUnauthorized)
		return
	}

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		slog.Error("Failed to accept WebSocket", "error", err, "account_id", acct.ID)
		return
	}
	defer func() {
		if closeErr := ws.Close(websocket.StatusNormalClosure, "analysis complete"); closeErr != nil {
			slog.Debug("Failed to close websocket", "error", closeErr, "account_id", acct.ID)
		}
	}()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	req, err := readAnalyzeRequest(ctx, ws)
	if err != nil {
		writeEvent(ctx, ws, wsEvent{Type: "error", Error: "invalid request"})
		return
	}

	arg, err := h.repo.GetArgument(ctx, req.ArgumentID)
	if err != nil || arg == nil || arg.AccountID != acct.ID {
		writeEvent(ctx, ws, wsEvent{Type: "error", Error: "argument not found"})
		return
	}
	if h.orch == nil {
		writeEvent(ctx, ws, wsEvent{Type: "error", Error: "analysis is not available"})
		return
	}

	input := analysisInput(arg, req.Instructions)
	if _, err := analysis.Prepare(input); err != nil {
		writeEvent(ctx, ws, wsEvent{Type: "error", Error: "argument needs at least two non-empty blocks"})
		return
	}

	ok, err := h.ledger.Consume(ctx, acct, domain.CreditAdvanced)
	if err != nil || !ok {
		writeEvent(ctx, ws, wsEvent{Type: "error", Error: "no advanced credits remaining"})
		return
	}

	result, err := h.orch.AnalyzeStream(ctx, input, func(s analysis.Stage) {
		writeEvent(ctx, ws, wsEvent{Type: "stage", Stage: string(s)})
	})
	if err != nil {
		if errors.Is(err, analysis.ErrInsufficientInput) {
			writeEvent(ctx, ws, wsEvent{Type: "error", Error: "argument needs at least two non-empty blocks"})
			return
		}
		writeEvent(ctx, ws, wsEvent{Type: "error", Error: "analysis provider is unavailable"})
		return
	}

	previous, err := h.repo.GetChecklist(ctx, arg.ID)
	if err != nil {
		writeEvent(ctx, ws, wsEvent{Type: "error", Error: "failed to load checklist"})
		return
	}
	merged := checklist.Merge(previous, result.Suggestions)
	if err := h.repo.ReplaceChecklist(ctx, arg.ID, merged); err != nil {
		writeEvent(ctx, ws, wsEvent{Type: "error", Error: "failed to save checklist"})
		return
	}

	writeEvent(ctx, ws, wsEvent{Type: "result", Result: result, Checklist: merged})
}

func readAnalyzeRequest(ctx context.Context, ws *websocket.Conn) (wsAnalyzeRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, wsReadTimeout)
	defer cancel()

	var req wsAnalyzeRequest
	_, data, err := ws.Read(ctx)
	if err != nil {
		return req, err
	}
	if err := json.Unmarshal(data, &req); err != nil {
		return req, err
	}
	return req, nil
}

func writeEvent(ctx context.Context, ws *websocket.Conn, ev wsEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		slog.Error("Failed to marshal websocket event", "error", err)
		return
	}
	if err := ws.Write(ctx, websocket.MessageText, data); err != nil {
		slog.Debug("WebSocket write error", "error", err)
	}
}
