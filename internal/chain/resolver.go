package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/feral-file/nft-metadata-gateway/internal/domain"
	"github.com/feral-file/nft-metadata-gateway/internal/logger"
	"github.com/feral-file/nft-metadata-gateway/internal/providers/ethereum"
)

const idPlaceholder = "{id}"

// Substrings of call errors that mean the contract answered and rejected the call
var absenceMarkers = []string{
	"execution reverted",
	"attempting to unmarshal an empty string",
}

// Pointer is the metadata location stored on-chain for a token
type Pointer struct {
	URI string
	// Owner is set when ownership was checked during resolution
	Owner string
}

// PointerReader resolves on-chain metadata pointers
//
//go:generate mockgen -source=resolver.go -destination=../mocks/pointer_reader.go -package=mocks -mock_names=PointerReader=MockPointerReader
type PointerReader interface {
	ResolvePointer(ctx context.Context, contractAddress, tokenID string) (*Pointer, error)
}

// Resolver reads metadata pointers, using ownership only as a secondary signal
type Resolver struct {
	client ethereum.EthereumClient
}

// NewResolver creates an on-chain resolver
func NewResolver(client ethereum.EthereumClient) (*Resolver, error) {
	if client == nil {
		return nil, fmt.Errorf("%w: chain resolver requires an ethereum client", domain.ErrConfiguration)
	}
	return &Resolver{client: client}, nil
}

// ResolvePointer returns the metadata pointer of a token
//
// The pointer read comes first because ownership can lag right after a mint. Only
// when the read fails or is empty is ownership checked; a confirmed owner earns one
// more pointer read. The token is reported as domain.ErrTokenNotFound only when the
// chain confirms absence: ownerOf reverts or returns the zero address. Transport
// failures come back as plain errors.
func (r *Resolver) ResolvePointer(ctx context.Context, contractAddress, tokenID string) (*Pointer, error) {
	uri, err := r.client.ERC721TokenURI(ctx, contractAddress, tokenID)
	if err == nil && strings.TrimSpace(uri) != "" {
		return &Pointer{URI: substituteID(uri, tokenID)}, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, fmt.Errorf("token URI read aborted: %w", ctxErr)
	}
	logger.DebugCtx(ctx, "Token URI read failed or empty, checking ownership",
		zap.String("contract", contractAddress),
		zap.String("token_id", tokenID),
		zap.Error(err))

	owner, ownerErr := r.client.ERC721OwnerOf(ctx, contractAddress, tokenID)
	if ownerErr == nil && isNonZeroAddress(owner) {
		uri, err = r.client.ERC721TokenURI(ctx, contractAddress, tokenID)
		if err != nil {
			return nil, fmt.Errorf("token URI retry failed: %w", err)
		}
		if strings.TrimSpace(uri) == "" {
			return nil, fmt.Errorf("token URI empty for owned token")
		}
		return &Pointer{URI: substituteID(uri, tokenID), Owner: owner}, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, fmt.Errorf("ownership check aborted: %w", ctxErr)
	}

	// ERC1155 tokens have no ownerOf
	if uri, err := r.client.ERC1155URI(ctx, contractAddress, tokenID); err == nil && strings.TrimSpace(uri) != "" {
		return &Pointer{URI: substituteID(uri, tokenID)}, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, fmt.Errorf("uri read aborted: %w", ctxErr)
	}

	if ownerErr != nil && !isAbsence(ownerErr) {
		return nil, fmt.Errorf("ownership check failed: %w", ownerErr)
	}
	return nil, fmt.Errorf("%w: %s/%s", domain.ErrTokenNotFound, contractAddress, tokenID)
}

// IsNotFound reports whether err means the token does not exist
func IsNotFound(err error) bool {
	return errors.Is(err, domain.ErrTokenNotFound)
}

// substituteID replaces the ERC1155 {id} placeholder with the 64 hex digit token id
func substituteID(uri, tokenID string) string {
	if !strings.Contains(uri, idPlaceholder) {
		return uri
	}
	id, ok := new(big.Int).SetString(tokenID, 10)
	if !ok {
		return uri
	}
	return strings.ReplaceAll(uri, idPlaceholder, fmt.Sprintf("%064x", id))
}

// isAbsence reports whether a call error came from the contract rather than the transport
func isAbsence(err error) bool {
	msg := err.Error()
	for _, marker := range absenceMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

func isNonZeroAddress(addr string) bool {
	if !common.IsHexAddress(addr) {
		return false
	}
	return common.HexToAddress(addr) != (common.Address{})
}
