package domain

import "time"

// BlockType is the semantic role of a block within an argument.
type BlockType string

const (
	BlockPremise    BlockType = "premise"
	BlockConclusion BlockType = "conclusion"
	BlockEvidence   BlockType = "evidence"
	BlockObjection  BlockType = "objection"
	BlockRebuttal   BlockType = "rebuttal"
)

// Valid reports whether the block type is one of the known roles.
func (t BlockType) Valid() bool {
	switch t {
	case BlockPremise, BlockConclusion, BlockEvidence, BlockObjection, BlockRebuttal:
		return true
	}
	return false
}

// Block is a unit of argument content with a semantic type.
type Block struct {
	ID          string    `json:"id"`
	ArgumentID  string    `json:"argument_id"`
	Type        BlockType `json:"type"`
	Content     string    `json:"content"`
	AIGenerated bool      `json:"ai_generated"`
	Position    int       `json:"position"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Argument is an ordered collection of blocks owned by an account.
type Argument struct {
	ID        string    `json:"id"`
	AccountID string    `json:"account_id"`
	Title     string    `json:"title"`
	Blocks    []Block   `json:"blocks,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
