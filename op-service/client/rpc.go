package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/rpc"
)

// RPC is the subset of the go-ethereum rpc client the sources depend on.
type RPC interface {
	Close()
	CallContext(ctx context.Context, result any, method string, args ...any) error
}

// BaseRPCClient wraps a go-ethereum rpc client and bounds every call with a timeout.
type BaseRPCClient struct {
	c           *rpc.Client
	callTimeout time.Duration
}

var _ RPC = (*BaseRPCClient)(nil)

// NewBaseRPCClient wraps c. Calls time out after 10 seconds unless changed with WithCallTimeout.
func NewBaseRPCClient(c *rpc.Client) *BaseRPCClient {
	return &BaseRPCClient{c: c, callTimeout: 10 * time.Second}
}

// WithCallTimeout returns a copy of the client that uses the given per-call timeout.
func (b *BaseRPCClient) WithCallTimeout(d time.Duration) *BaseRPCClient {
	return &BaseRPCClient{c: b.c, callTimeout: d}
}

func (b *BaseRPCClient) Close() {
	b.c.Close()
}

func (b *BaseRPCClient) CallContext(ctx context.Context, result any, method string, args ...any) error {
	cCtx, cancel := context.WithTimeout(ctx, b.callTimeout)
	defer cancel()
	return wrapErrorData(b.c.CallContext(cCtx, result, method, args...))
}

// wrapErrorData appends the data field of a JSON-RPC error to its message.
func wrapErrorData(err error) error {
	var de rpc.DataError
	if errors.As(err, &de) && de.ErrorData() != nil {
		return fmt.Errorf("%w: %v", err, de.ErrorData())
	}
	return err
}
