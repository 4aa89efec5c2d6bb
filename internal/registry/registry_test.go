package registry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/AlexZinkM/evm-wallet/internal/werr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const counterABI = `[
  {"type":"function","name":"getCount","inputs":[],"outputs":[{"name":"","type":"uint256"}],"stateMutability":"view"},
  {"type":"event","name":"Incremented","inputs":[{"name":"count","type":"uint256","indexed":false}],"anonymous":false},
  {"type":"function","name":"increment","inputs":[],"outputs":[],"stateMutability":"nonpayable"}
]`

const votingABI = `[
  {"type":"function","name":"vote","inputs":[{"name":"proposal","type":"uint8"}],"outputs":[],"stateMutability":"nonpayable"}
]`

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"abi/counter.json": {Data: []byte(counterABI)},
		"abi/voting.json":  {Data: []byte(votingABI)},
		"abi/broken.json":  {Data: []byte(`[{"type":"function","name":`)},
	}
}

func TestLoadDistinctNames(t *testing.T) {
	cfg := `
contracts:
  - name: Counter
    address: "0xc6bcf9f0ead0291e9e6d0cbd4aa4ca4fa751707b"
    abiPath: abi/counter.json
  - name: Voting
    address: "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"
    abiPath: abi/voting.json
`
	reg, err := Load(strings.NewReader(cfg), testFS())
	require.NoError(t, err)
	assert.Equal(t, []string{"Counter", "Voting"}, reg.Names())

	counter, ok := reg.Resolve("Counter")
	require.True(t, ok)
	voting, ok := reg.Resolve("Voting")
	require.True(t, ok)
	assert.NotSame(t, counter, voting)
	assert.NotEqual(t, counter.Address, voting.Address)

	_, ok = reg.Resolve("counter")
	assert.False(t, ok, "resolve is case-sensitive")
	_, ok = reg.Resolve("Missing")
	assert.False(t, ok)
}

func TestLoadDuplicateName(t *testing.T) {
	cfg := `
- name: Counter
  address: "0xc6bcf9f0ead0291e9e6d0cbd4aa4ca4fa751707b"
  abiPath: abi/counter.json
- name: Counter
  address: "0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed"
  abiPath: abi/voting.json
`
	_, err := Load(strings.NewReader(cfg), testFS())
	require.Error(t, err)
	assert.True(t, werr.Is(err, werr.DuplicateName))
}

func TestLoadMalformedInterface(t *testing.T) {
	tests := []struct {
		name string
		cfg  string
	}{
		{"broken json", `[{name: A, address: "0xc6bcf9f0ead0291e9e6d0cbd4aa4ca4fa751707b", abiPath: abi/broken.json}]`},
		{"missing file", `[{name: A, address: "0xc6bcf9f0ead0291e9e6d0cbd4aa4ca4fa751707b", abiPath: abi/nope.json}]`},
		{"no abi", `[{name: A, address: "0xc6bcf9f0ead0291e9e6d0cbd4aa4ca4fa751707b"}]`},
		{"not an array", `[{name: A, address: "0xc6bcf9f0ead0291e9e6d0cbd4aa4ca4fa751707b", abi: '{"type":"function"}'}]`},
		{"bad argument type", `[{name: A, address: "0xc6bcf9f0ead0291e9e6d0cbd4aa4ca4fa751707b", abi: '[{"type":"function","name":"f","inputs":[{"name":"x","type":"foo"}]}]'}]`},
		{"bad config", `contracts: [`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.cfg), testFS())
			require.Error(t, err)
			assert.True(t, werr.Is(err, werr.MalformedInterface), "unexpected kind: %v", err)
		})
	}
}

func TestLoadInvalidAddress(t *testing.T) {
	// the original sample config used a placeholder address
	_, err := Load(strings.NewReader(`[{name: Voting, address: address, abiPath: abi/voting.json}]`), testFS())
	require.Error(t, err)
	assert.True(t, werr.Is(err, werr.InvalidDestination))
}

func TestLoadEmbeddedABI(t *testing.T) {
	cfg := `{"contracts": [{"name": "Counter", "address": "c6bcf9f0ead0291e9e6d0cbd4aa4ca4fa751707b", "abi": ` + counterABI + `}]}`
	reg, err := Load(strings.NewReader(cfg), nil)
	require.NoError(t, err)

	d, ok := reg.Resolve("Counter")
	require.True(t, ok)
	assert.Equal(t, []string{"getCount", "increment"}, d.Functions())

	scalar := "contracts:\n  - name: Counter\n    address: \"0xc6bcf9f0ead0291e9e6d0cbd4aa4ca4fa751707b\"\n    abi: '" +
		strings.ReplaceAll(counterABI, "\n", "") + "'\n"
	reg, err = Load(strings.NewReader(scalar), nil)
	require.NoError(t, err)
	d, _ = reg.Resolve("Counter")
	assert.Equal(t, []string{"getCount", "increment"}, ListFunctions(d))
}

func TestLoadEmptyConfig(t *testing.T) {
	reg, err := Load(strings.NewReader(""), nil)
	require.NoError(t, err)
	assert.Empty(t, reg.Names())
}

func TestListFunctionsOrder(t *testing.T) {
	reg, err := Load(strings.NewReader(`[{name: Counter, address: "0xc6bcf9f0ead0291e9e6d0cbd4aa4ca4fa751707b", abiPath: abi/counter.json}]`), testFS())
	require.NoError(t, err)
	d, _ := reg.Resolve("Counter")

	assert.Equal(t, []string{"getCount", "increment"}, ListFunctions(d))

	m, ok := d.Method("increment")
	require.True(t, ok)
	assert.Equal(t, "increment()", m.Sig)
}

func TestListFunctionsEmpty(t *testing.T) {
	assert.Equal(t, []string{}, ListFunctions(nil))

	cfg := `[{name: Events, address: "0xc6bcf9f0ead0291e9e6d0cbd4aa4ca4fa751707b", abi: '[{"type":"event","name":"Ping","inputs":[]}]'}]`
	reg, err := Load(strings.NewReader(cfg), nil)
	require.NoError(t, err)
	d, _ := reg.Resolve("Events")
	assert.Equal(t, []string{}, ListFunctions(d))
}

func TestLoadFileRelativeABIPath(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "abi"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "abi", "counter.json"), []byte(counterABI), 0o644))
	cfgPath := filepath.Join(dir, "contracts.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
contracts:
  - name: Counter
    address: "0xc6bcf9f0ead0291e9e6d0cbd4aa4ca4fa751707b"
    abiPath: abi/counter.json
`), 0o644))

	reg, err := LoadFile(cfgPath)
	require.NoError(t, err)
	d, ok := reg.Resolve("Counter")
	require.True(t, ok)
	assert.Equal(t, []string{"getCount", "increment"}, d.Functions())
}

func TestDefault(t *testing.T) {
	reg, err := Default()
	require.NoError(t, err)

	d, ok := reg.Resolve("Counter")
	require.True(t, ok)
	assert.Equal(t, []string{"getCount", "increment", "setCount"}, d.Functions())

	getCount, ok := d.Method("getCount")
	require.True(t, ok)
	assert.True(t, getCount.IsConstant())
}
