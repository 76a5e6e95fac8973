package dial

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/mantlenetworkio/da-cost/op-service/client"
	"github.com/mantlenetworkio/da-cost/op-service/retry"
)

// DefaultDialTimeout is a default timeout for dialing a client.
const DefaultDialTimeout = 1 * time.Minute
const defaultRetryCount = 30
const defaultRetryTime = 2 * time.Second
const defaultConnectTimeout = 10 * time.Second

// DialRPCClientWithTimeout attempts to dial the RPC provider using the provided URL.
// If the dial doesn't complete within timeout, this method will return an error.
func DialRPCClientWithTimeout(ctx context.Context, timeout time.Duration, log log.Logger, url string, opts ...rpc.ClientOption) (*rpc.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return dialRPCClientWithBackoff(ctx, log, url, opts...)
}

// DialClientWithTimeout dials url and wraps the connection with a per-call timeout.
func DialClientWithTimeout(ctx context.Context, timeout time.Duration, callTimeout time.Duration, log log.Logger, url string, opts ...rpc.ClientOption) (*client.BaseRPCClient, error) {
	c, err := DialRPCClientWithTimeout(ctx, timeout, log, url, opts...)
	if err != nil {
		return nil, err
	}
	log.Info("Connected to RPC endpoint", "addr", client.RedactURL(url))
	return client.NewBaseRPCClient(c).WithCallTimeout(callTimeout), nil
}

// Dials a JSON-RPC endpoint repeatedly, with a backoff, until a client connection is established.
func dialRPCClientWithBackoff(ctx context.Context, log log.Logger, addr string, opts ...rpc.ClientOption) (*rpc.Client, error) {
	bOff := retry.Fixed(defaultRetryTime)
	return retry.Do(ctx, defaultRetryCount, bOff, func() (*rpc.Client, error) {
		return dialRPCClient(ctx, log, addr, opts...)
	})
}

// Dials a JSON-RPC endpoint once.
func dialRPCClient(ctx context.Context, log log.Logger, addr string, opts ...rpc.ClientOption) (*rpc.Client, error) {
	return client.CheckAndDial(ctx, log, addr, defaultConnectTimeout, opts...)
}
