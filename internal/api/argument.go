package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/reasonforge/reasonforge/internal/domain"
	"github.com/reasonforge/reasonforge/internal/identity"
)

const maxTitleLen = 200

type createArgumentRequest struct {
	Title string `json:"title"`
}

func (h *Handler) handleCreateArgument(w http.ResponseWriter, r *http.Request) {
	acct := identity.AccountFromContext(r.Context())
	if acct == nil {
		Error(w, http.StatusUnauthorized, "no account")
		return
	}

	var req createArgumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		Error(w, http.StatusBadRequest, "title is required")
		return
	}
	if len(title) > maxTitleLen {
		title = title[:maxTitleLen]
	}

	now := time.Now()
	arg := &domain.Argument{
		ID:        uuid.NewString(),
		AccountID: acct.ID,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.repo.CreateArgument(r.Context(), arg); err != nil {
		Error(w, http.StatusInternalServerError, "failed to create argument")
		return
	}

	JSON(w, http.StatusCreated, arg)
}

func (h *Handler) handleListArguments(w http.ResponseWriter, r *http.Request) {
	acct := identity.AccountFromContext(r.Context())
	if acct == nil {
		Error(w, http.StatusUnauthorized, "no account")
		return
	}

	args, err := h.repo.ListArguments(r.Context(), acct.ID)
	if err != nil {
		Error(w, http.StatusInternalServerError, "failed to list arguments")
		return
	}
	if args == nil {
		args = []*domain.Argument{}
	}
	JSON(w, http.StatusOK, args)
}

// ownedArgument loads the argument and verifies the caller owns it.
// Writes the error response itself and returns nil on failure.
func (h *Handler) ownedArgument(w http.ResponseWriter, r *http.Request) *domain.Argument {
	acct := identity.AccountFromContext(r.Context())
	if acct == nil {
		Error(w, http.StatusUnauthorized, "no account")
		return nil
	}

	argumentID := chi.URLParam(r, "argumentID")
	arg, err := h.repo.GetArgument(r.Context(), argumentID)
	if err != nil {
		Error(w, http.StatusInternalServerError, "failed to load argument")
		return nil
	}
	if arg == nil || arg.AccountID != acct.ID {
		// A foreign argument reads as missing; ids are not probeable.
		Error(w, http.StatusNotFound, "argument not found")
		return nil
	}
	return arg
}

func (h *Handler) handleGetArgument(w http.ResponseWriter, r *http.Request) {
	arg := h.ownedArgument(w, r)
	if arg == nil {
		return
	}
	JSON(w, http.StatusOK, arg)
}

type blockRequest struct {
	Type        domain.BlockType `json:"type"`
	Content     string           `json:"content"`
	AIGenerated bool             `json:"ai_generated"`
	Position    int              `json:"position"`
}

func (h *Handler) handleCreateBlock(w http.ResponseWriter, r *http.Request) {
	arg := h.ownedArgument(w, r)
	if arg == nil {
		return
	}

	var req blockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !req.Type.Valid() {
		Error(w, http.StatusBadRequest, "unknown block type")
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		Error(w, http.StatusBadRequest, "content is required")
		return
	}

	now := time.Now()
	block := &domain.Block{
		ID:          uuid.NewString(),
		ArgumentID:  arg.ID,
		Type:        req.Type,
		Content:     req.Content,
		AIGenerated: req.AIGenerated,
		Position:    req.Position,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := h.repo.CreateBlock(r.Context(), block); err != nil {
		Error(w, http.StatusInternalServerError, "failed to create block")
		return
	}

	JSON(w, http.StatusCreated, block)
}

func (h *Handler) handleUpdateBlock(w http.ResponseWriter, r *http.Request) {
	arg := h.ownedArgument(w, r)
	if arg == nil {
		return
	}

	var req blockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !req.Type.Valid() {
		Error(w, http.StatusBadRequest, "unknown block type")
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		Error(w, http.StatusBadRequest, "content is required")
		return
	}

	block := &domain.Block{
		ID:         chi.URLParam(r, "blockID"),
		ArgumentID: arg.ID,
		Type:       req.Type,
		Content:    req.Content,
		Position:   req.Position,
	}
	if err := h.repo.UpdateBlock(r.Context(), block); err != nil {
		Error(w, http.StatusNotFound, "block not found")
		return
	}

	JSON(w, http.StatusOK, block)
}

func (h *Handler) handleDeleteBlock(w http.ResponseWriter, r *http.Request) {
	arg := h.ownedArgument(w, r)
	if arg == nil {
		return
	}

	if err := h.repo.DeleteBlock(r.Context(), arg.ID, chi.URLParam(r, "blockID")); err != nil {
		Error(w, http.StatusNotFound, "block not found")
		return
	}

	JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
