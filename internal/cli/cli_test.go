package cli_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/nft-metadata-gateway/internal/bootstrap"
	"github.com/feral-file/nft-metadata-gateway/internal/cli"
	"github.com/feral-file/nft-metadata-gateway/internal/config"
	"github.com/feral-file/nft-metadata-gateway/internal/domain"
	"github.com/feral-file/nft-metadata-gateway/internal/mocks"
)

const (
	testCID      = "bafybeigdyrzt5sfp7udm7hu76uh7y26nf3efuylqabf3oclgtqy55fbzdi"
	testContract = "0x1234567890AbcdEF1234567890aBcdef12345678"
)

func testConfig() *config.CLIConfig {
	return &config.CLIConfig{
		CoreConfig: config.CoreConfig{
			PublicBaseURL: "https://metadata.example.com",
			Ethereum:      config.EthereumConfig{RPCURL: "https://rpc.example.com"},
			Store:         config.StoreConfig{Driver: config.StoreDriverMemory},
			Gateway: config.GatewayConfig{
				Gateways: []config.GatewayEntry{{Name: "ipfs.io", URL: "https://ipfs.io"}},
				Scorer:   config.ScorerPriority,
			},
			Resolution: config.ResolutionConfig{Timeout: 2 * time.Second},
		},
	}
}

func run(t *testing.T, opts cli.Options, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := cli.NewRootCommand(opts)
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func staticConfig(cfg *config.CLIConfig) func(string, string) (*config.CLIConfig, error) {
	return func(string, string) (*config.CLIConfig, error) {
		return cfg, nil
	}
}

func TestNormalizeCommand(t *testing.T) {
	tests := []struct {
		name     string
		ref      string
		expected string
	}{
		{
			name:     "ipfs uri",
			ref:      "ipfs://ipfs/" + testCID + "/a b.png",
			expected: testCID + "/a%20b.png\n" + testCID + "\n",
		},
		{
			name:     "gateway url",
			ref:      "https://ipfs.io/ipfs/" + testCID + "/1.json",
			expected: testCID + "/1.json\n" + testCID + "\n",
		},
		{
			name:     "data uri is unchanged",
			ref:      "data:application/json,{}",
			expected: "data:application/json,{}\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, cli.Options{}, "normalize", tt.ref)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, out)
		})
	}
}

func TestNormalizeCommand_RequiresOneArgument(t *testing.T) {
	_, err := run(t, cli.Options{}, "normalize")
	assert.Error(t, err)
}

func TestResolveCommand_Placeholder(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	dialer := mocks.NewMockEthClientDialer(ctrl)
	ethClient := mocks.NewMockEthClient(ctrl)
	dialer.EXPECT().Dial(gomock.Any(), "https://rpc.example.com").Return(ethClient, nil)
	// tokenURI, ownerOf and uri all revert
	ethClient.EXPECT().CallContract(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, errors.New("execution reverted")).Times(3)
	ethClient.EXPECT().Close()

	out, err := run(t, cli.Options{
		LoadConfig: staticConfig(testConfig()),
		Deps: bootstrap.Dependencies{
			EthDialer:  dialer,
			HTTPClient: mocks.NewMockHTTPClient(ctrl),
		},
	}, "resolve", testContract, "42")
	require.NoError(t, err)

	var got cli.ResolveOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, domain.SourcePlaceholder, got.Source)
	assert.False(t, got.Cached)
	assert.Equal(t, "Token #42", got.Metadata.Name)
	assert.Contains(t, got.Metadata.Description, domain.PendingResolutionMarker)
	assert.Equal(t, "https://metadata.example.com/nft/0x1234567890abcdef1234567890abcdef12345678/42", got.Metadata.ExternalURL)
}

func TestResolveCommand_InvalidTokenReference(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	dialer := mocks.NewMockEthClientDialer(ctrl)
	ethClient := mocks.NewMockEthClient(ctrl)
	dialer.EXPECT().Dial(gomock.Any(), gomock.Any()).Return(ethClient, nil)
	ethClient.EXPECT().Close()

	_, err := run(t, cli.Options{
		LoadConfig: staticConfig(testConfig()),
		Deps: bootstrap.Dependencies{
			EthDialer:  dialer,
			HTTPClient: mocks.NewMockHTTPClient(ctrl),
		},
	}, "resolve", "0xnothex", "42")
	assert.ErrorIs(t, err, domain.ErrInvalidTokenReference)
}

func TestResolveCommand_InvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Ethereum.RPCURL = ""

	_, err := run(t, cli.Options{LoadConfig: staticConfig(cfg)}, "resolve", testContract, "42")
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestResolveCommand_LoadConfigError(t *testing.T) {
	_, err := run(t, cli.Options{
		LoadConfig: func(string, string) (*config.CLIConfig, error) {
			return nil, errors.New("broken yaml")
		},
	}, "resolve", testContract, "42")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken yaml")
}

func TestValidateGatewaysCommand_NotEnoughGateways(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	httpClient := mocks.NewMockHTTPClient(ctrl)
	httpClient.EXPECT().HeadNoRetry(gomock.Any(), "https://ipfs.io/ipfs/"+testCID).
		Return(&http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(strings.NewReader(""))}, nil)

	// A single configured gateway can never satisfy two
	out, err := run(t, cli.Options{
		LoadConfig: staticConfig(testConfig()),
		Deps:       bootstrap.Dependencies{HTTPClient: httpClient},
	}, "validate-gateways", "ipfs://"+testCID, "--min", "2", "--retry=false", "--timeout", "50ms")
	assert.ErrorIs(t, err, cli.ErrValidationFailed)

	var got cli.ValidateOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, testCID, got.CIDPath)
	assert.Equal(t, 2, got.MinGateways)
	assert.False(t, got.Success)
	assert.Equal(t, 1, got.Attempts)
	require.Len(t, got.WorkingGateways, 1)
	assert.Equal(t, "ipfs.io", got.WorkingGateways[0].GatewayName)
}
