package ethereum

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/feral-file/nft-metadata-gateway/internal/adapter"
)

const tokenABIJSON = `[
	{"constant":true,"inputs":[{"name":"tokenId","type":"uint256"}],"name":"tokenURI","outputs":[{"name":"","type":"string"}],"payable":false,"stateMutability":"view","type":"function"},
	{"constant":true,"inputs":[{"name":"tokenId","type":"uint256"}],"name":"ownerOf","outputs":[{"name":"","type":"address"}],"payable":false,"stateMutability":"view","type":"function"},
	{"constant":true,"inputs":[{"name":"id","type":"uint256"}],"name":"uri","outputs":[{"name":"","type":"string"}],"payable":false,"stateMutability":"view","type":"function"}
]`

// tokenABI covers ERC721 tokenURI/ownerOf and ERC1155 uri
var tokenABI = func() abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(tokenABIJSON))
	if err != nil {
		panic(fmt.Sprintf("invalid token ABI: %v", err))
	}
	return parsed
}()

// EthereumClient reads token metadata pointers from contracts
//
//go:generate mockgen -source=client.go -destination=../../mocks/ethereum_client.go -package=mocks -mock_names=EthereumClient=MockEthereumClient
type EthereumClient interface {
	// ERC721TokenURI fetches the tokenURI from an ERC721 contract
	ERC721TokenURI(ctx context.Context, contractAddress string, tokenNumber string) (string, error)

	// ERC721OwnerOf fetches the current owner of an ERC721 token
	ERC721OwnerOf(ctx context.Context, contractAddress, tokenNumber string) (string, error)

	// ERC1155URI fetches the uri from an ERC1155 contract
	ERC1155URI(ctx context.Context, contractAddress, tokenNumber string) (string, error)

	// Close closes the connection
	Close()
}

type ethereumClient struct {
	client adapter.EthClient
}

// NewClient creates an Ethereum client on top of an RPC connection
func NewClient(client adapter.EthClient) EthereumClient {
	return &ethereumClient{client: client}
}

func (c *ethereumClient) ERC721TokenURI(ctx context.Context, contractAddress string, tokenNumber string) (string, error) {
	var uri string
	if err := c.call(ctx, contractAddress, "tokenURI", tokenNumber, &uri); err != nil {
		return "", err
	}
	return uri, nil
}

func (c *ethereumClient) ERC721OwnerOf(ctx context.Context, contractAddress, tokenNumber string) (string, error) {
	var owner common.Address
	if err := c.call(ctx, contractAddress, "ownerOf", tokenNumber, &owner); err != nil {
		return "", err
	}
	return owner.Hex(), nil
}

func (c *ethereumClient) ERC1155URI(ctx context.Context, contractAddress, tokenNumber string) (string, error) {
	var uri string
	if err := c.call(ctx, contractAddress, "uri", tokenNumber, &uri); err != nil {
		return "", err
	}
	return uri, nil
}

// call packs a single uint256 token argument, calls method at the latest block and unpacks into out
func (c *ethereumClient) call(ctx context.Context, contractAddress, method, tokenNumber string, out interface{}) error {
	tokenID, ok := new(big.Int).SetString(tokenNumber, 10)
	if !ok {
		return fmt.Errorf("invalid token number: %s", tokenNumber)
	}

	data, err := tokenABI.Pack(method, tokenID)
	if err != nil {
		return fmt.Errorf("failed to pack %s: %w", method, err)
	}

	contractAddr := common.HexToAddress(contractAddress)
	result, err := c.client.CallContract(ctx, ethereum.CallMsg{
		To:   &contractAddr,
		Data: data,
	}, nil)
	if err != nil {
		return fmt.Errorf("failed to call %s: %w", method, err)
	}

	if err := tokenABI.UnpackIntoInterface(out, method, result); err != nil {
		return fmt.Errorf("failed to unpack %s: %w", method, err)
	}
	return nil
}

func (c *ethereumClient) Close() {
	c.client.Close()
}
