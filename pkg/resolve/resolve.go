package resolve

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/netip"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

var (
	ErrNoIPv4        = errors.New("destination has no IPv4 address")
	ErrResolveFailed = errors.New("could not resolve destination")
	ErrNotAllowed    = errors.New("destination is not an IPv4 address and resolving is disabled")
)

// Resolver turns destinations (IPv4 literals or hostnames) into IPv4 addresses,
// caching successful hostname lookups
type Resolver struct {
	cache      *ttlcache.Cache[string, netip.Addr]
	lookupFunc func(ctx context.Context, host string) ([]string, error)
	retries    int
	retryDelay time.Duration
	noResolve  bool
}

// NewResolver creates a Resolver. With noResolve set only IPv4 literals are
// accepted.
func NewResolver(noResolve bool) *Resolver {
	return &Resolver{
		cache:      ttlcache.New[string, netip.Addr](ttlcache.WithTTL[string, netip.Addr](5 * time.Minute)),
		lookupFunc: net.DefaultResolver.LookupHost,
		retries:    3,
		retryDelay: 100 * time.Millisecond,
		noResolve:  noResolve,
	}
}

// Resolve returns the IPv4 address for destination
func (r *Resolver) Resolve(ctx context.Context, destination string) (netip.Addr, error) {
	// check if destination is an IP address
	if ip, err := netip.ParseAddr(destination); err == nil {
		ip = ip.Unmap()
		if !ip.Is4() {
			return netip.Addr{}, fmt.Errorf("%s: %w", destination, ErrNoIPv4)
		}
		return ip, nil
	}

	if r.noResolve {
		return netip.Addr{}, fmt.Errorf("%s: %w", destination, ErrNotAllowed)
	}

	if item := r.cache.Get(destination); item != nil {
		return item.Value(), nil
	}

	records, err := r.lookupWithRetry(ctx, destination)
	if err != nil {
		return netip.Addr{}, fmt.Errorf("%s: %w: %v", destination, ErrResolveFailed, err)
	}

	// first IPv4 record wins
	for _, record := range records {
		ip, err := netip.ParseAddr(record)
		if err != nil {
			continue
		}
		if ip = ip.Unmap(); ip.Is4() {
			r.cache.Set(destination, ip, ttlcache.DefaultTTL)
			slog.Debug("Resolved destination", "destination", destination, "ip", ip)
			return ip, nil
		}
	}
	return netip.Addr{}, fmt.Errorf("%s: %w", destination, ErrNoIPv4)
}

func (r *Resolver) lookupWithRetry(ctx context.Context, host string) ([]string, error) {
	attempts := max(r.retries, 1)
	var lastErr error
	for attempt := range attempts {
		records, err := r.lookupFunc(ctx, host)
		if err == nil && len(records) > 0 {
			return records, nil
		}
		if err == nil {
			err = errors.New("empty answer")
		}
		lastErr = err
		slog.Debug("Lookup failed", "host", host, "attempt", attempt+1, "error", err)
		if attempt == attempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(r.retryDelay):
		}
	}
	return nil, lastErr
}

// Cached reports the number of cached hostnames
func (r *Resolver) Cached() int {
	return r.cache.Len()
}
