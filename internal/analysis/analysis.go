// Package analysis orchestrates credit-gated argument analysis: input
// sanitization, the external model request, and normalization of the
// model's untrusted reply into a schema-valid result.
package analysis

import (
	"errors"

	"github.com/reasonforge/reasonforge/internal/domain"
)

// ErrInsufficientInput indicates the request had fewer than two non-empty
// blocks after sanitization. No provider call is made on this path.
var ErrInsufficientInput = errors.New("insufficient argument content after sanitization")

// ErrProvider indicates a transport or HTTP failure calling the external
// model. It is fatal for the request and never retried; no fallback is
// synthesized because no response text exists to repair.
var ErrProvider = errors.New("model provider request failed")

// BlockInput is one (type, content) pair submitted for analysis.
type BlockInput struct {
	Type    domain.BlockType `json:"type"`
	Content string           `json:"content"`
}

// Request is the input to one analysis run.
type Request struct {
	Blocks       []BlockInput `json:"blocks"`
	Instructions string       `json:"instructions,omitempty"`
}

// Stage identifies a step of the analysis pipeline, reported to
// progress observers.
type Stage string

const (
	StageSanitizing Stage = "sanitizing"
	StageRequesting Stage = "requesting"
	StageParsing    Stage = "parsing"
	StageValidated  Stage = "validated"
	StageRepaired   Stage = "repaired"
)
