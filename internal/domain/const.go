package domain

const (
	// Gateway constants
	DEFAULT_IPFS_GATEWAY    = "https://ipfs.io"
	DEFAULT_ARWEAVE_GATEWAY = "https://arweave.net"

	// Blockchain constants
	ETHEREUM_ZERO_ADDRESS = "0x0000000000000000000000000000000000000000"

	// Size limits
	MAX_METADATA_BYTES = 2 << 20
)
