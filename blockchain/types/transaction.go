// Package types holds the wire/ledger data model: the signed value-transfer
// Transaction and the mined Block that carries a batch of them (spec §3,
// §4.1, §4.2).
package types

import (
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/ground-x/gxchain/common"
	"github.com/ground-x/gxchain/crypto"
)

// TransactionData is the signed payload of a Transaction: a single
// value transfer from one account to another. There is no fee market, no
// script system, and no multi-output support (spec §1 Non-goals).
type TransactionData struct {
	From   common.PublicKey
	To     common.PublicKey
	Amount uint64
}

// Transaction is a TransactionData together with the sender's detached
// signature over its RLP encoding. The invariant spec §3 requires —
// verify(data.from, serialize(data), signature) — is checked by Valid.
type Transaction struct {
	Data      TransactionData
	Signature common.Signature
}

// NewTransaction builds and signs a transfer of amount to "to", under the
// given key pair, per spec §4.1.
func NewTransaction(to common.PublicKey, amount uint64, pub common.PublicKey, sec common.SecretKey) (*Transaction, error) {
	data := TransactionData{From: pub, To: to, Amount: amount}
	enc, err := rlp.EncodeToBytes(&data)
	if err != nil {
		return nil, err
	}
	return &Transaction{
		Data:      data,
		Signature: crypto.Sign(sec, enc),
	}, nil
}

// Valid reports whether the transaction's signature verifies against its
// data under the claimed sender key. Any Transaction crossing a trust
// boundary (inbound gossip, inclusion in a block under validation) must
// pass this check.
func (tx *Transaction) Valid() bool {
	enc, err := rlp.EncodeToBytes(&tx.Data)
	if err != nil {
		return false
	}
	return crypto.Verify(tx.Data.From, enc, tx.Signature)
}

// Hash is the content hash of the whole transaction (data and signature),
// for callers that need a stable per-transaction identifier.
func (tx *Transaction) Hash() (common.Hash, error) {
	return crypto.RLPHash(tx)
}
