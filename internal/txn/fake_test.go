package txn

import (
	"context"
	"math/big"
	"strings"
	"sync"
	"testing"

	"github.com/AlexZinkM/evm-wallet/internal/keystore"
	"github.com/AlexZinkM/evm-wallet/internal/registry"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/require"
)

const testPrivHex = "289c2857d4598e37fb9647507e47a309d6133539bf21a8b9cb6df88fd5232032"

const testContracts = `
contracts:
  - name: Counter
    address: "0xc6bcf9f0ead0291e9e6d0cbd4aa4ca4fa751707b"
    abi: |
      [
        {"type":"function","name":"getCount","inputs":[],"outputs":[{"name":"","type":"uint256"}],"stateMutability":"view"},
        {"type":"event","name":"Incremented","inputs":[{"name":"count","type":"uint256","indexed":false}],"anonymous":false},
        {"type":"function","name":"increment","inputs":[],"outputs":[],"stateMutability":"nonpayable"},
        {"type":"function","name":"setCount","inputs":[{"name":"value","type":"uint256"}],"outputs":[],"stateMutability":"nonpayable"},
        {"type":"function","name":"donate","inputs":[],"outputs":[],"stateMutability":"payable"}
      ]
`

// fakeClient is an in-memory ChainClient
type fakeClient struct {
	mu sync.Mutex

	calls []string

	nonce    uint64
	gasPrice *big.Int
	chainID  *big.Int
	gas      uint64

	sendErr error
	sent    [][]byte

	// receipts are handed out one per lookup; an exhausted list means "not mined"
	receipts   []*types.Receipt
	receiptErr error

	callOut  []byte
	callErr  error
	lastCall ethereum.CallMsg
	lastEst  ethereum.CallMsg
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		nonce:    7,
		gasPrice: big.NewInt(2_000_000_000),
		chainID:  big.NewInt(11155111),
		gas:      43_000,
	}
}

func (f *fakeClient) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
}

func (f *fakeClient) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == name {
			n++
		}
	}
	return n
}

func (f *fakeClient) Balance(ctx context.Context, account common.Address) (*big.Int, error) {
	f.record("Balance")
	return big.NewInt(1e18), nil
}

func (f *fakeClient) Nonce(ctx context.Context, account common.Address) (uint64, error) {
	f.record("Nonce")
	return f.nonce, nil
}

func (f *fakeClient) GasPrice(ctx context.Context) (*big.Int, error) {
	f.record("GasPrice")
	return f.gasPrice, nil
}

func (f *fakeClient) EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
	f.record("EstimateGas")
	f.lastEst = msg
	return f.gas, nil
}

func (f *fakeClient) ChainID(ctx context.Context) (*big.Int, error) {
	f.record("ChainID")
	return f.chainID, nil
}

func (f *fakeClient) SendRaw(ctx context.Context, raw []byte) (common.Hash, error) {
	f.record("SendRaw")
	if f.sendErr != nil {
		return common.Hash{}, f.sendErr
	}
	f.sent = append(f.sent, raw)

	tx := new(types.Transaction)
	if err := tx.UnmarshalBinary(raw); err != nil {
		return common.Hash{}, err
	}
	return tx.Hash(), nil
}

func (f *fakeClient) Receipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	f.record("Receipt")
	if f.receiptErr != nil {
		return nil, f.receiptErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.receipts) == 0 {
		return nil, nil
	}
	r := f.receipts[0]
	f.receipts = f.receipts[1:]
	if r != nil {
		r.TxHash = hash
	}
	return r, nil
}

func (f *fakeClient) Call(ctx context.Context, msg ethereum.CallMsg) ([]byte, error) {
	f.record("Call")
	f.lastCall = msg
	return f.callOut, f.callErr
}

func testKey(t *testing.T) *keystore.Keypair {
	t.Helper()
	kp, err := keystore.Restore(testPrivHex)
	require.NoError(t, err)
	return kp
}

func testCounter(t *testing.T) *registry.Descriptor {
	t.Helper()
	reg, err := registry.Load(strings.NewReader(testContracts), nil)
	require.NoError(t, err)
	d, ok := reg.Resolve("Counter")
	require.True(t, ok)
	return d
}

func minedReceipt(status uint64) *types.Receipt {
	return &types.Receipt{Status: status, BlockNumber: big.NewInt(123), GasUsed: 26_000}
}
