package resolution

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/feral-file/nft-metadata-gateway/internal/domain"
)

// ValidateTokenReference checks that contract is a hex address and tokenID a non-negative decimal
func ValidateTokenReference(contract, tokenID string) error {
	if !common.IsHexAddress(contract) || !strings.HasPrefix(strings.ToLower(contract), "0x") {
		return fmt.Errorf("%w: contract address %q is not a hex address", domain.ErrInvalidTokenReference, contract)
	}

	if tokenID == "" || strings.TrimLeft(tokenID, "0123456789") != "" {
		return fmt.Errorf("%w: token id %q is not a decimal number", domain.ErrInvalidTokenReference, tokenID)
	}
	id, ok := new(big.Int).SetString(tokenID, 10)
	if !ok || id.BitLen() > 256 {
		return fmt.Errorf("%w: token id %q is out of range", domain.ErrInvalidTokenReference, tokenID)
	}
	return nil
}
