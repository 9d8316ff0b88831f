// Package presaleprogram holds the instruction and account layouts for the
// on-chain presale program. The server never invokes the program today;
// purchases settle as plain transfers. The layouts are kept in lockstep with
// the program IDL so the claim flow can be switched on at token generation
// without a wire change.
package presaleprogram

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// Anchor-style instruction discriminators.
func discriminator(name string) [8]byte {
	hash := sha256.Sum256([]byte(name))
	var disc [8]byte
	copy(disc[:], hash[:8])
	return disc
}

var (
	BuyDisc   = discriminator("global:buy")
	ClaimDisc = discriminator("global:claim")
)

// BuyArgs is the borsh-encoded argument block of the buy instruction.
type BuyArgs struct {
	Lamports    uint64
	TokenAmount uint64
}

// ClaimArgs is the borsh-encoded argument block of the claim instruction.
type ClaimArgs struct {
	// UnixTime the claim is evaluated at; the program clamps it to the
	// on-chain clock.
	UnixTime int64
}

// DeriveSaleStatePDA derives the global sale state account.
func DeriveSaleStatePDA(programID solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress(
		[][]byte{[]byte("sale_state")},
		programID,
	)
}

// DeriveAllocationPDA derives a buyer's allocation account.
func DeriveAllocationPDA(programID, buyer solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress(
		[][]byte{
			[]byte("allocation"),
			buyer.Bytes(),
		},
		programID,
	)
}

// BuildBuyInstruction assembles the buy instruction: the buyer pays lamports
// into the sale treasury and the program credits a vested allocation.
func BuildBuyInstruction(programID, buyer, treasury solana.PublicKey, args BuyArgs) (solana.Instruction, error) {
	saleState, _, err := DeriveSaleStatePDA(programID)
	if err != nil {
		return nil, fmt.Errorf("presaleprogram: derive sale state: %w", err)
	}
	allocation, _, err := DeriveAllocationPDA(programID, buyer)
	if err != nil {
		return nil, fmt.Errorf("presaleprogram: derive allocation: %w", err)
	}

	var buf bytes.Buffer
	buf.Write(BuyDisc[:])
	if err := bin.NewBorshEncoder(&buf).Encode(args); err != nil {
		return nil, fmt.Errorf("presaleprogram: encode buy args: %w", err)
	}

	return solana.NewInstruction(
		programID,
		solana.AccountMetaSlice{
			solana.Meta(saleState).WRITE(),
			solana.Meta(allocation).WRITE(),
			solana.Meta(buyer).WRITE().SIGNER(),
			solana.Meta(treasury).WRITE(),
			solana.Meta(solana.SystemProgramID),
		},
		buf.Bytes(),
	), nil
}

// BuildClaimInstruction assembles the claim instruction releasing vested
// tokens to the buyer's token account.
func BuildClaimInstruction(programID, buyer, buyerTokenAccount solana.PublicKey, args ClaimArgs) (solana.Instruction, error) {
	saleState, _, err := DeriveSaleStatePDA(programID)
	if err != nil {
		return nil, fmt.Errorf("presaleprogram: derive sale state: %w", err)
	}
	allocation, _, err := DeriveAllocationPDA(programID, buyer)
	if err != nil {
		return nil, fmt.Errorf("presaleprogram: derive allocation: %w", err)
	}

	var buf bytes.Buffer
	buf.Write(ClaimDisc[:])
	if err := bin.NewBorshEncoder(&buf).Encode(args); err != nil {
		return nil, fmt.Errorf("presaleprogram: encode claim args: %w", err)
	}

	return solana.NewInstruction(
		programID,
		solana.AccountMetaSlice{
			solana.Meta(saleState),
			solana.Meta(allocation).WRITE(),
			solana.Meta(buyer).SIGNER(),
			solana.Meta(buyerTokenAccount).WRITE(),
			solana.Meta(solana.TokenProgramID),
		},
		buf.Bytes(),
	), nil
}

// Allocation mirrors the on-chain allocation account.
// Layout: discriminator(8) + buyer(32) + total(8) + immediate(8) +
// claimed(8) + startTs(8) + endTs(8).
type Allocation struct {
	Buyer     solana.PublicKey
	Total     uint64
	Immediate uint64
	Claimed   uint64
	StartTs   int64
	EndTs     int64
}

const allocationAccountSize = 8 + 32 + 8 + 8 + 8 + 8 + 8

// ParseAllocation decodes an allocation account's data.
func ParseAllocation(data []byte) (Allocation, error) {
	if len(data) < allocationAccountSize {
		return Allocation{}, fmt.Errorf("presaleprogram: allocation account too short: %d bytes", len(data))
	}

	var alloc Allocation
	copy(alloc.Buyer[:], data[8:40])
	alloc.Total = binary.LittleEndian.Uint64(data[40:48])
	alloc.Immediate = binary.LittleEndian.Uint64(data[48:56])
	alloc.Claimed = binary.LittleEndian.Uint64(data[56:64])
	alloc.StartTs = int64(binary.LittleEndian.Uint64(data[64:72]))
	alloc.EndTs = int64(binary.LittleEndian.Uint64(data[72:80]))
	return alloc, nil
}

// Claimable computes how many tokens an allocation can release at the given
// unix time: the immediate portion plus a linear share of the rest.
func (a Allocation) Claimable(unixTime int64) uint64 {
	vested := a.Total - a.Immediate

	var unlocked uint64
	switch {
	case unixTime <= a.StartTs:
		unlocked = a.Immediate
	case unixTime >= a.EndTs || a.EndTs <= a.StartTs:
		unlocked = a.Total
	default:
		elapsed := uint64(unixTime - a.StartTs)
		window := uint64(a.EndTs - a.StartTs)
		unlocked = a.Immediate + vested*elapsed/window
	}

	if unlocked <= a.Claimed {
		return 0
	}
	return unlocked - a.Claimed
}
