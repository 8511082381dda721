package contracts

import "context"

// TxManager runs fn inside a storage transaction. Repositories join
// the transaction through the context fn receives.
type TxManager interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}
