package contract

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/sirupsen/logrus"
	"github.com/warp-contracts/launchpad/src/utils/logger"
)

// Names of the contracts the scripts work with
const (
	Token             = "Token"
	BondingCurve      = "BancorBondingCurve"
	TokenFactory      = "TokenFactoryBase"
	RewardDistributor = "RewardDistributor"
	ERC1967Factory    = "ERC1967Factory"
)

var (
	ErrUnknownContract = errors.New("unknown contract")
	ErrNoBytecode      = errors.New("contract has no bytecode")
)

//go:embed abi/*.json
var embedded embed.FS

// Everything needed to deploy or attach to a contract
type Descriptor struct {
	Name string
	ABI  *abi.ABI

	// Solidity source file, empty for embedded ABIs
	Source string

	// Hex encoded creation code, may contain library placeholders.
	// Empty for interfaces that can only be attached to.
	Bytecode string
}

func (self *Descriptor) HasBytecode() bool {
	return len(strings.TrimPrefix(self.Bytecode, "0x")) > 0
}

// Hardhat compilation output, one file per contract
type Artifact struct {
	Format       string          `json:"_format"`
	ContractName string          `json:"contractName"`
	SourceName   string          `json:"sourceName"`
	ABI          json.RawMessage `json:"abi"`
	Bytecode     string          `json:"bytecode"`
}

// Maps contract names to their descriptors
type Registry struct {
	log *logrus.Entry

	mtx         sync.RWMutex
	descriptors map[string]*Descriptor
}

// Empty registry
func NewRegistry() (self *Registry) {
	self = new(Registry)
	self.log = logger.NewSublogger("registry")
	self.descriptors = make(map[string]*Descriptor)
	return
}

// Registry with the ABIs of the contracts used by the scripts. There's no bytecode,
// it comes from artifacts.
func DefaultRegistry() (self *Registry, err error) {
	self = NewRegistry()

	entries, err := embedded.ReadDir("abi")
	if err != nil {
		return
	}

	for _, entry := range entries {
		data, err := embedded.ReadFile("abi/" + entry.Name())
		if err != nil {
			return nil, err
		}

		contractABI, err := abi.JSON(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to parse embedded ABI %s: %w", entry.Name(), err)
		}

		self.Register(&Descriptor{
			Name: strings.TrimSuffix(entry.Name(), ".json"),
			ABI:  &contractABI,
		})
	}
	return
}

// Replaces any descriptor registered under the same name
func (self *Registry) Register(descriptor *Descriptor) {
	self.mtx.Lock()
	defer self.mtx.Unlock()
	self.descriptors[descriptor.Name] = descriptor
}

func (self *Registry) Get(name string) (*Descriptor, error) {
	self.mtx.RLock()
	defer self.mtx.RUnlock()

	descriptor, ok := self.descriptors[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownContract, name)
	}
	return descriptor, nil
}

func (self *Registry) Has(name string) bool {
	self.mtx.RLock()
	defer self.mtx.RUnlock()
	_, ok := self.descriptors[name]
	return ok
}

// Registers every Hardhat artifact found in the directory tree.
// Each contract is available both under its name and under "<source>:<name>".
// Missing directory isn't an error, there's just nothing to load.
func (self *Registry) LoadArtifacts(dir string) (loaded int, err error) {
	_, err = os.Stat(dir)
	if errors.Is(err, fs.ErrNotExist) {
		self.log.WithField("dir", dir).Warn("Artifacts directory doesn't exist, using embedded ABIs only")
		return 0, nil
	}
	if err != nil {
		return
	}

	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == "build-info" {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".json" || strings.HasSuffix(path, ".dbg.json") {
			return nil
		}

		descriptor, err := ReadArtifact(path)
		if err != nil {
			return err
		}
		if descriptor == nil {
			return nil
		}

		self.Register(descriptor)
		qualified := *descriptor
		qualified.Name = descriptor.Source + ":" + descriptor.Name
		self.Register(&qualified)

		loaded++
		return nil
	})
	if err != nil {
		return
	}

	self.log.WithField("dir", dir).WithField("count", loaded).Debug("Loaded artifacts")
	return
}

// Returns nil if the file isn't a contract artifact
func ReadArtifact(path string) (descriptor *Descriptor, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}

	var artifact Artifact
	err = json.Unmarshal(data, &artifact)
	if err != nil || artifact.ContractName == "" || len(artifact.ABI) == 0 {
		// Some other JSON file
		return nil, nil
	}

	contractABI, err := abi.JSON(bytes.NewReader(artifact.ABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse ABI from %s: %w", path, err)
	}

	descriptor = &Descriptor{
		Name:     artifact.ContractName,
		Source:   artifact.SourceName,
		ABI:      &contractABI,
		Bytecode: artifact.Bytecode,
	}
	return
}
