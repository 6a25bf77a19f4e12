package foundry

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

func TestReadArtifact(t *testing.T) {
	af := OpenArtifactsDir("./testdata/forge-artifacts")

	contracts, err := af.ListContracts("Owned.sol")
	require.NoError(t, err)
	require.Equal(t, []string{"Owned"}, contracts)

	artifact, err := af.ReadContract("Owned")
	require.NoError(t, err)
	require.Contains(t, artifact.ABI.Methods, "setOwner")
	require.Contains(t, artifact.ABI.Methods, "owner")
	require.NotEmpty(t, artifact.Bytecode.Object)
	require.NotEmpty(t, artifact.DeployedBytecode.Object)
	require.Equal(t, byte(0x60), artifact.Bytecode.Object[0])

	data, err := artifact.ABI.Pack("setOwner", common.HexToAddress("0x01"))
	require.NoError(t, err)
	require.Equal(t, common.FromHex("13af4035"), data[:4])
}

func TestReadArtifactLinkingUnsupported(t *testing.T) {
	af := OpenArtifactsDir("./testdata/forge-artifacts")
	_, err := af.ReadContract("Linked")
	require.ErrorIs(t, err, ErrLinkingUnsupported)
}

func TestReadArtifactMissing(t *testing.T) {
	af := OpenArtifactsDir("./testdata/forge-artifacts")
	_, err := af.ReadContract("Missing")
	require.Error(t, err)
}
