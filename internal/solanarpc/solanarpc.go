// Package solanarpc wraps the Solana JSON-RPC account-fetch endpoint
// used exclusively by the LUT cache's fetch-on-miss path.
package solanarpc

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/klingon-exchange/sandwichfinder/internal/svmtypes"
)

// Client implements decompile.AccountFetcher against a real Solana RPC
// endpoint, fetched on commitment Processed per §6.
type Client struct {
	rpc *rpc.Client
}

// New builds a Client dialed at url (typically the RPC_URL environment
// variable).
func New(url string) *Client {
	return &Client{rpc: rpc.New(url)}
}

// FetchLookupTables batches get_multiple_accounts for keys and parses
// each returned account's data as an address lookup table, returning
// only the addresses section (the table's own metadata header is not
// needed by the cache).
func (c *Client) FetchLookupTables(ctx context.Context, keys []svmtypes.Address) (map[svmtypes.Address][]svmtypes.Address, error) {
	if len(keys) == 0 {
		return nil, nil
	}

	out, err := c.rpc.GetMultipleAccountsWithOpts(ctx, keys, &rpc.GetMultipleAccountsOpts{
		Commitment: rpc.CommitmentProcessed,
	})
	if err != nil {
		return nil, fmt.Errorf("solanarpc: get_multiple_accounts: %w", err)
	}
	if out == nil || len(out.Value) != len(keys) {
		return nil, fmt.Errorf("solanarpc: response length mismatch")
	}

	result := make(map[svmtypes.Address][]svmtypes.Address, len(keys))
	for i, acct := range out.Value {
		if acct == nil {
			continue
		}
		addrs, err := ParseLookupTableAddresses(acct.Data.GetBinary())
		if err != nil {
			continue
		}
		result[keys[i]] = addrs
	}
	return result, nil
}

// lutHeaderSize is the fixed-size metadata prefix of an address lookup
// table account (discriminant, deactivation slot, last-extended slot,
// last-extended slot start index, authority option, padding) before
// the packed Pubkey array begins.
const lutHeaderSize = 56

// ParseLookupTableAddresses extracts the packed address section of an
// address lookup table account, for use both by FetchLookupTables and
// by the ingest loop's account-update path.
func ParseLookupTableAddresses(data []byte) ([]svmtypes.Address, error) {
	if len(data) < lutHeaderSize {
		return nil, fmt.Errorf("solanarpc: lookup table account too short (%d bytes)", len(data))
	}
	body := data[lutHeaderSize:]
	if len(body)%32 != 0 {
		return nil, fmt.Errorf("solanarpc: lookup table address section not a multiple of 32 bytes")
	}
	n := len(body) / 32
	addrs := make([]svmtypes.Address, n)
	for i := 0; i < n; i++ {
		addrs[i] = solana.PublicKeyFromBytes(body[i*32 : (i+1)*32])
	}
	return addrs, nil
}
