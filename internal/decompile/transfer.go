package decompile

import (
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/klingon-exchange/sandwichfinder/internal/svmtypes"
)

// transferFromInner dispatches on the leading data byte of a single
// inner instruction and extracts a TransferDescriptor from it, per the
// byte-range table in the data model. Any other leading byte yields no
// descriptor — that is the caller's signal to silently drop the swap
// candidate, not an error. resolveMint looks up a mint by a token
// account's position in the transaction's effective key list
// (AccountMeta.Index); it is given the destination and the source token
// account (never the owner) and returns the first post-token-balance
// record, in list order, that matches either.
func transferFromInner(inst svmtypes.Instruction, resolveMint func(accountIndex1, accountIndex2 int) (svmtypes.Address, bool)) (svmtypes.TransferDescriptor, bool) {
	if len(inst.Data) == 0 {
		return svmtypes.TransferDescriptor{}, false
	}

	switch inst.Data[0] {
	case 0x02: // system-program native SOL transfer
		if len(inst.Data) < 12 || len(inst.Accounts) < 1 {
			return svmtypes.TransferDescriptor{}, false
		}
		amount := binary.LittleEndian.Uint64(inst.Data[4:12])
		return svmtypes.TransferDescriptor{
			Kind:    svmtypes.TransferSystemSOL,
			Mint:    svmtypes.WrappedSOL,
			Subject: inst.Accounts[0].Address,
			Amount:  amount,
		}, true

	case 0x03: // SPL token transfer: accounts are [source, destination, owner]
		if len(inst.Data) < 9 || len(inst.Accounts) < 3 {
			return svmtypes.TransferDescriptor{}, false
		}
		amount := binary.LittleEndian.Uint64(inst.Data[1:9])
		mint, ok := resolveMint(inst.Accounts[1].Index, inst.Accounts[0].Index)
		if !ok {
			return svmtypes.TransferDescriptor{}, false
		}
		return svmtypes.TransferDescriptor{
			Kind:    svmtypes.TransferSPLTransfer,
			Mint:    mint,
			Subject: inst.Accounts[2].Address,
			Amount:  amount,
		}, true

	case 0x0c: // SPL token transferChecked: accounts are [source, mint, destination, owner]
		if len(inst.Data) < 9 || len(inst.Accounts) < 4 {
			return svmtypes.TransferDescriptor{}, false
		}
		amount := binary.LittleEndian.Uint64(inst.Data[1:9])
		mint, ok := resolveMint(inst.Accounts[2].Index, inst.Accounts[0].Index)
		if !ok {
			return svmtypes.TransferDescriptor{}, false
		}
		return svmtypes.TransferDescriptor{
			Kind:    svmtypes.TransferSPLTransferChecked,
			Mint:    mint,
			Subject: inst.Accounts[3].Address,
			Amount:  amount,
		}, true

	case 0xe4: // anchor self-CPI log (launchpad program)
		if len(inst.Data) < 56 {
			return svmtypes.TransferDescriptor{}, false
		}
		amount := binary.LittleEndian.Uint64(inst.Data[48:56])
		return svmtypes.TransferDescriptor{
			Kind:   svmtypes.TransferSelfCPILog,
			Mint:   svmtypes.WrappedSOL,
			Amount: amount,
		}, true

	default:
		return svmtypes.TransferDescriptor{}, false
	}
}

// mintResolver builds a resolveMint closure backed by a transaction's
// post-token-balance records: the first balance record (in list order)
// whose AccountIndex equals either candidate index wins.
func mintResolver(balances []TokenBalance) func(accountIndex1, accountIndex2 int) (svmtypes.Address, bool) {
	return func(accountIndex1, accountIndex2 int) (svmtypes.Address, bool) {
		for _, b := range balances {
			if b.AccountIndex == accountIndex1 || b.AccountIndex == accountIndex2 {
				mint, err := parseMint(b.Mint)
				if err != nil {
					return svmtypes.Address{}, false
				}
				return mint, true
			}
		}
		return svmtypes.Address{}, false
	}
}

func parseMint(s string) (svmtypes.Address, error) {
	addr, err := solana.PublicKeyFromBase58(s)
	if err != nil {
		return svmtypes.Address{}, fmt.Errorf("decompile: invalid mint %q: %w", s, err)
	}
	return addr, nil
}
