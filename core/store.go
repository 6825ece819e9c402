package core

import "context"

// Transactor runs fn as one atomic unit, the stores used inside fn join the transaction through ctx
type Transactor interface {
	Tx(ctx context.Context, fn func(ctx context.Context) error) error
}
