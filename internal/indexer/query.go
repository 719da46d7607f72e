package indexer

import (
	"fmt"
	"math/big"
)

const ownersTable = "erc721deploybl__Owners"

// BuildOwnerQuery renders the ownership lookup for a deployable token. The id
// is interpolated as a decimal literal, never as a string.
func BuildOwnerQuery(smartObjectID *big.Int) string {
	id := "0"
	if smartObjectID != nil {
		id = smartObjectID.String()
	}
	return fmt.Sprintf("SELECT tokenId, owner FROM %s WHERE %s.tokenId = %s;", ownersTable, ownersTable, id)
}

type queryRequest struct {
	Address string `json:"address"`
	Query   string `json:"query"`
}
