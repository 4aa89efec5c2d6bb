package registry

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/AlexZinkM/evm-wallet/internal/address"
	"github.com/AlexZinkM/evm-wallet/internal/werr"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"gopkg.in/yaml.v3"
)

//go:embed defaults
var defaults embed.FS

// Descriptor is an immutable contract entry
type Descriptor struct {
	Name    string
	Address common.Address
	ABI     abi.ABI

	// entries in document order, ABI.Methods is a map and loses it
	entries []abiEntry
}

type abiEntry struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

// Method looks up a callable function by name
func (d *Descriptor) Method(name string) (abi.Method, bool) {
	m, ok := d.ABI.Methods[name]
	return m, ok
}

// Functions lists the callable functions in document order
func (d *Descriptor) Functions() []string {
	return ListFunctions(d)
}

// ListFunctions returns the names of ABI entries typed "function", in document order.
// It never fails: a nil descriptor or an ABI without functions yields an empty list.
func ListFunctions(d *Descriptor) []string {
	names := []string{}
	if d == nil {
		return names
	}
	for _, e := range d.entries {
		if e.Type == "function" {
			names = append(names, e.Name)
		}
	}
	return names
}

// Registry resolves contract names to descriptors
type Registry struct {
	contracts []*Descriptor
	byName    map[string]*Descriptor
}

// record is one entry of the contracts configuration
type record struct {
	Name    string    `yaml:"name"`
	Address string    `yaml:"address"`
	ABIPath string    `yaml:"abiPath"`
	ABI     yaml.Node `yaml:"abi"`
}

type fileConfig struct {
	Contracts []record `yaml:"contracts"`
}

// Default loads the contracts shipped with the binary
func Default() (*Registry, error) {
	sub, err := fs.Sub(defaults, "defaults")
	if err != nil {
		return nil, err
	}
	f, err := sub.Open("contracts.yaml")
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Load(f, sub)
}

// LoadFile loads a contracts configuration from disk.
// Relative abiPath entries resolve against the configuration's directory.
func LoadFile(configPath string) (*Registry, error) {
	f, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open contracts config: %w", err)
	}
	defer f.Close()

	return Load(f, os.DirFS(filepath.Dir(configPath)))
}

// Load parses a YAML (or JSON) contracts configuration. The document is either
// a sequence of records or a mapping with a "contracts" sequence. Each record
// carries name, address and either abiPath (read from abiFS) or an embedded abi.
func Load(r io.Reader, abiFS fs.FS) (*Registry, error) {
	records, err := decodeRecords(r)
	if err != nil {
		return nil, err
	}

	reg := &Registry{
		contracts: make([]*Descriptor, 0, len(records)),
		byName:    make(map[string]*Descriptor, len(records)),
	}
	for i, rec := range records {
		if rec.Name == "" {
			return nil, werr.New(werr.InvalidArgument, "contract record %d has no name", i)
		}
		if _, dup := reg.byName[rec.Name]; dup {
			return nil, werr.New(werr.DuplicateName, "contract %q declared more than once", rec.Name)
		}

		desc, err := newDescriptor(rec, abiFS)
		if err != nil {
			return nil, fmt.Errorf("contract %q: %w", rec.Name, err)
		}
		reg.contracts = append(reg.contracts, desc)
		reg.byName[desc.Name] = desc
	}
	return reg, nil
}

// Resolve finds a contract by exact, case-sensitive name
func (r *Registry) Resolve(name string) (*Descriptor, bool) {
	d, ok := r.byName[name]
	return d, ok
}

// Contracts returns descriptors in configuration order
func (r *Registry) Contracts() []*Descriptor {
	out := make([]*Descriptor, len(r.contracts))
	copy(out, r.contracts)
	return out
}

// Names returns contract names in configuration order
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.contracts))
	for _, d := range r.contracts {
		names = append(names, d.Name)
	}
	return names
}

func decodeRecords(r io.Reader) ([]record, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, werr.Wrap(werr.MalformedInterface, err, "failed to parse contracts config")
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}

	root := doc.Content[0]
	if root.Kind == yaml.SequenceNode {
		var records []record
		if err := root.Decode(&records); err != nil {
			return nil, werr.Wrap(werr.MalformedInterface, err, "failed to decode contract records")
		}
		return records, nil
	}

	var cfg fileConfig
	if err := root.Decode(&cfg); err != nil {
		return nil, werr.Wrap(werr.MalformedInterface, err, "failed to decode contracts config")
	}
	return cfg.Contracts, nil
}

func newDescriptor(rec record, abiFS fs.FS) (*Descriptor, error) {
	addr, err := address.Parse(rec.Address)
	if err != nil {
		return nil, err
	}

	doc, err := readABI(rec, abiFS)
	if err != nil {
		return nil, err
	}

	var entries []abiEntry
	if err := json.Unmarshal(doc, &entries); err != nil {
		return nil, werr.Wrap(werr.MalformedInterface, err, "ABI is not a JSON array of entries")
	}
	parsed, err := abi.JSON(bytes.NewReader(doc))
	if err != nil {
		return nil, werr.Wrap(werr.MalformedInterface, err, "failed to parse ABI")
	}

	return &Descriptor{
		Name:    rec.Name,
		Address: addr,
		ABI:     parsed,
		entries: entries,
	}, nil
}

// readABI returns the ABI JSON for a record, from abiPath or the embedded abi field
func readABI(rec record, abiFS fs.FS) ([]byte, error) {
	switch {
	case rec.ABIPath != "" && !rec.ABI.IsZero():
		return nil, werr.New(werr.MalformedInterface, "abiPath and abi are mutually exclusive")

	case rec.ABIPath != "":
		var (
			data []byte
			err  error
		)
		if filepath.IsAbs(rec.ABIPath) || abiFS == nil {
			data, err = os.ReadFile(rec.ABIPath)
		} else {
			data, err = fs.ReadFile(abiFS, path.Clean(filepath.ToSlash(rec.ABIPath)))
		}
		if err != nil {
			return nil, werr.Wrap(werr.MalformedInterface, err, "failed to read ABI %s", rec.ABIPath)
		}
		return data, nil

	case !rec.ABI.IsZero():
		// a scalar holds the JSON text, anything else is structured YAML/JSON
		if rec.ABI.Kind == yaml.ScalarNode {
			return []byte(rec.ABI.Value), nil
		}
		var v any
		if err := rec.ABI.Decode(&v); err != nil {
			return nil, werr.Wrap(werr.MalformedInterface, err, "failed to decode embedded ABI")
		}
		data, err := json.Marshal(v)
		if err != nil {
			return nil, werr.Wrap(werr.MalformedInterface, err, "failed to encode embedded ABI")
		}
		return data, nil

	default:
		return nil, werr.New(werr.MalformedInterface, "either abiPath or abi is required")
	}
}
