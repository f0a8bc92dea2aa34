package gateway

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/tidwall/gjson"

	"github.com/filmdao/daoclient/internal/app/domain/proposal"
	"github.com/filmdao/daoclient/internal/app/domain/token"
)

// Contract return shapes are duck-typed: fields may be absent, null, or
// carried as either numbers or strings depending on node version. Every
// remote read passes through exactly one normalization point so the default
// table is never duplicated at call sites.
//
// Defaults: name -> "Unnamed", votes -> "0", finalized coerced to bool,
// id -> the queried index when the payload omits it.

// NormalizeProposal maps a raw proposals(id) payload into the local model.
func NormalizeProposal(raw json.RawMessage, index uint64) (proposal.Proposal, error) {
	doc := gjson.ParseBytes(raw)
	if !doc.IsObject() {
		return proposal.Proposal{}, fmt.Errorf("proposal %d: payload is not an object", index)
	}

	id := doc.Get("id").Uint()
	if id == 0 {
		id = index
	}

	name := doc.Get("name").String()
	if name == "" {
		name = "Unnamed"
	}

	amount, err := unitsField(doc.Get("amount"))
	if err != nil {
		return proposal.Proposal{}, fmt.Errorf("proposal %d amount: %w", index, err)
	}
	votes, err := unitsField(doc.Get("votes"))
	if err != nil {
		return proposal.Proposal{}, fmt.Errorf("proposal %d votes: %w", index, err)
	}

	return proposal.Proposal{
		ID:        id,
		Reference: name,
		Amount:    amount,
		Recipient: doc.Get("recipient").String(),
		Votes:     votes,
		Finalized: doc.Get("finalized").Bool(),
	}, nil
}

// decodeAmount maps a bare numeric payload (balanceOf, allowance results)
// into an Amount.
func decodeAmount(raw json.RawMessage, op string) (token.Amount, error) {
	amount, err := unitsField(gjson.ParseBytes(raw))
	if err != nil {
		return token.Amount{}, fmt.Errorf("decode %s: %w", op, err)
	}
	return amount, nil
}

// unitsField reads a smallest-unit integer that may arrive as a JSON number,
// a decimal string, or be absent entirely (treated as zero).
func unitsField(v gjson.Result) (token.Amount, error) {
	if !v.Exists() || v.Type == gjson.Null {
		return token.Zero(), nil
	}

	s := v.String()
	if s == "" {
		return token.Zero(), nil
	}
	units, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return token.Amount{}, fmt.Errorf("invalid integer %q", s)
	}
	return token.FromUnits(units)
}
