package client

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/rpc"
)

// CheckAndDial checks that the address accepts TCP connections before dialing it.
func CheckAndDial(ctx context.Context, log log.Logger, addr string, connectTimeout time.Duration, opts ...rpc.ClientOption) (*rpc.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	if !IsURLAvailable(ctx, addr, connectTimeout) {
		log.Warn("failed to dial address, but may connect later", "addr", RedactURL(addr))
		return nil, fmt.Errorf("address unavailable (%s)", RedactURL(addr))
	}

	client, err := rpc.DialOptions(ctx, addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to dial address (%s): %w", RedactURL(addr), err)
	}
	return client, nil
}

func IsURLAvailable(ctx context.Context, address string, timeout time.Duration) bool {
	u, err := url.Parse(address)
	if err != nil {
		return false
	}
	addr := u.Host
	if u.Port() == "" {
		switch u.Scheme {
		case "http", "ws":
			addr += ":80"
		case "https", "wss":
			addr += ":443"
		default:
			// Fail open if we can't figure out what the port should be
			return true
		}
	}
	dialer := net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// RedactURL strips credentials, path and query from an endpoint, so it can be logged.
// Hosted providers such as Alchemy carry the API key in the path.
func RedactURL(address string) string {
	u, err := url.Parse(address)
	if err != nil || u.Host == "" {
		return "<redacted>"
	}
	return u.Scheme + "://" + u.Host
}
