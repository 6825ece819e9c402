package core

import (
	"context"
	"time"
)

// Instantiation pending market instantiation, keyed by correlation id
type Instantiation struct {
	ID        uint64    `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	Token     Token     `sql:"-" json:"token"`
	TokenKind TokenKind `json:"-"`
	Denom     string    `sql:"size:128" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// InstantiateReply acknowledgement of a market instantiation
type InstantiateReply struct {
	ID      uint64 `json:"id"`
	Address string `json:"address,omitempty"`
	Error   string `json:"error,omitempty"`
}

// InstantiationStore pending instantiation store interface
type InstantiationStore interface {
	// Create allocates a fresh correlation id into inst.ID
	Create(ctx context.Context, inst *Instantiation) error
	// Take consumes the pending record, nil when the id is unknown
	Take(ctx context.Context, id uint64) (*Instantiation, error)
}

// InstantiationFeed source of instantiation acknowledgements
type InstantiationFeed interface {
	Pending(ctx context.Context, limit int) ([]*InstantiateReply, error)
	Ack(ctx context.Context, id uint64) error
}
