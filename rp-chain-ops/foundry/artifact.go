package foundry

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ErrLinkingUnsupported is returned for artifacts whose bytecode still references unlinked libraries.
var ErrLinkingUnsupported = errors.New("cannot load bytecode with unlinked library references")

// Artifact is the subset of a forge build artifact needed to deploy a contract.
type Artifact struct {
	ABI              abi.ABI
	Bytecode         Bytecode
	DeployedBytecode Bytecode
}

type Bytecode struct {
	Object hexutil.Bytes `json:"object"`
}

type forgeBytecode struct {
	Object         string          `json:"object"`
	LinkReferences json.RawMessage `json:"linkReferences"`
}

type forgeArtifact struct {
	ABI              json.RawMessage `json:"abi"`
	Bytecode         forgeBytecode   `json:"bytecode"`
	DeployedBytecode forgeBytecode   `json:"deployedBytecode"`
}

func (b forgeBytecode) decode() (Bytecode, error) {
	if refs := bytes.TrimSpace(b.LinkReferences); len(refs) > 0 && !bytes.Equal(refs, []byte("{}")) && !bytes.Equal(refs, []byte("null")) {
		return Bytecode{}, ErrLinkingUnsupported
	}
	if b.Object == "" || b.Object == "0x" {
		return Bytecode{}, nil
	}
	object := b.Object
	if !strings.HasPrefix(object, "0x") {
		object = "0x" + object
	}
	code, err := hexutil.Decode(object)
	if err != nil {
		return Bytecode{}, fmt.Errorf("invalid bytecode: %w", err)
	}
	return Bytecode{Object: code}, nil
}

func (a *Artifact) UnmarshalJSON(data []byte) error {
	var in forgeArtifact
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	parsed, err := abi.JSON(bytes.NewReader(in.ABI))
	if err != nil {
		return fmt.Errorf("failed to parse abi: %w", err)
	}
	code, err := in.Bytecode.decode()
	if err != nil {
		return fmt.Errorf("bytecode: %w", err)
	}
	deployed, err := in.DeployedBytecode.decode()
	if err != nil {
		return fmt.Errorf("deployed bytecode: %w", err)
	}
	a.ABI = parsed
	a.Bytecode = code
	a.DeployedBytecode = deployed
	return nil
}

// ArtifactsFS wraps a forge output directory: `<File>.sol/<Contract>.json`.
type ArtifactsFS struct {
	FS fs.FS
}

func OpenArtifactsDir(dirPath string) *ArtifactsFS {
	return &ArtifactsFS{FS: os.DirFS(dirPath)}
}

// ListContracts lists the contracts compiled from the given source file name, e.g. "Owned.sol".
func (af *ArtifactsFS) ListContracts(name string) ([]string, error) {
	entries, err := fs.ReadDir(af.FS, name)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", name, err)
	}
	var out []string
	for _, d := range entries {
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".json") {
			continue
		}
		contract := strings.TrimSuffix(d.Name(), ".json")
		// compiler-versioned duplicates, e.g. Owned.0.8.25.json
		if strings.Contains(contract, ".") {
			continue
		}
		out = append(out, contract)
	}
	return out, nil
}

// ReadArtifact reads the artifact of contract compiled from source file name.
func (af *ArtifactsFS) ReadArtifact(name string, contract string) (*Artifact, error) {
	f, err := af.FS.Open(path.Join(name, contract+".json"))
	if err != nil {
		return nil, fmt.Errorf("failed to open artifact %q: %w", name, err)
	}
	defer f.Close()
	var out Artifact
	if err := json.NewDecoder(f).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode artifact %q: %w", name, err)
	}
	return &out, nil
}

// ReadContract reads the artifact of a contract that lives in a source file of the same name.
func (af *ArtifactsFS) ReadContract(contract string) (*Artifact, error) {
	return af.ReadArtifact(contract+".sol", contract)
}
