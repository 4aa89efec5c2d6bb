package txn

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/AlexZinkM/evm-wallet/internal/werr"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const recipient = "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"

func fastOptions() Options {
	return Options{PollInterval: time.Millisecond, MaxAttempts: 5}
}

func TestBuildTransferRejectsBadInputBeforeNetwork(t *testing.T) {
	tests := []struct {
		name   string
		to     string
		amount string
		kind   werr.Kind
	}{
		{"short destination", "0x5aaeb6053f3e94c9b9a09f33669435e7ef1bea", "1 gwei", werr.InvalidDestination},
		{"non hex destination", "0xZZaeb6053f3e94c9b9a09f33669435e7ef1beaed", "1 gwei", werr.InvalidDestination},
		{"bad checksum", "0x5aaeb6053F3E94C9b9A09f33669435E7Ef1BeAed", "1 gwei", werr.InvalidDestination},
		{"unparsable amount", recipient, "lots", werr.InvalidAmount},
		{"negative amount", recipient, "-5", werr.InvalidAmount},
		{"zero amount", recipient, "0", werr.InvalidAmount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newFakeClient()
			s := NewSigner(client, testKey(t), fastOptions())

			intent, err := s.BuildTransfer(context.Background(), tt.to, tt.amount)
			require.Error(t, err)
			assert.Nil(t, intent)
			assert.Equal(t, tt.kind, werr.KindOf(err))
			assert.Empty(t, client.calls, "no transport call may happen before validation")
		})
	}
}

func TestBuildTransfer(t *testing.T) {
	client := newFakeClient()
	key := testKey(t)
	s := NewSigner(client, key, fastOptions())

	intent, err := s.BuildTransfer(context.Background(), recipient, "0.5 ether")
	require.NoError(t, err)

	assert.Equal(t, KindTransfer, intent.Kind)
	assert.Equal(t, key.Address(), intent.From)
	assert.Equal(t, common.HexToAddress(recipient), intent.To)
	assert.Equal(t, "500000000000000000", intent.Value.String())
	assert.Empty(t, intent.Data)
	assert.Equal(t, uint64(21000), intent.GasLimit)
	assert.Equal(t, uint64(7), intent.Nonce)
	assert.Equal(t, client.gasPrice, intent.GasPrice)
	assert.Equal(t, client.chainID, intent.ChainID)
}

func TestBuildTransferUsesConfiguredChainID(t *testing.T) {
	client := newFakeClient()
	opts := fastOptions()
	opts.ChainID = big.NewInt(1337)
	s := NewSigner(client, testKey(t), opts)

	intent, err := s.BuildTransfer(context.Background(), recipient, "1")
	require.NoError(t, err)
	assert.Equal(t, int64(1337), intent.ChainID.Int64())
	assert.Zero(t, client.count("ChainID"))
}

func TestSignIsDeterministic(t *testing.T) {
	client := newFakeClient()
	key := testKey(t)
	s := NewSigner(client, key, fastOptions())

	intent, err := s.BuildTransfer(context.Background(), recipient, "1 gwei")
	require.NoError(t, err)

	a, err := s.Sign(intent)
	require.NoError(t, err)
	b, err := s.Sign(intent)
	require.NoError(t, err)
	assert.Equal(t, a.Hash(), b.Hash())

	sender, err := types.Sender(types.LatestSignerForChainID(intent.ChainID), a)
	require.NoError(t, err)
	assert.Equal(t, key.Address(), sender)
	assert.Equal(t, intent.ChainID, a.ChainId())
	assert.Equal(t, intent.Nonce, a.Nonce())
}

func TestSubmitClassifiesErrors(t *testing.T) {
	tests := []struct {
		name    string
		sendErr error
		kind    werr.Kind
	}{
		{"node rejection", werr.New(werr.SubmissionRejected, "nonce too low"), werr.SubmissionRejected},
		{"unclassified transport error", errors.New("connection reset"), werr.TransportFailure},
		{"classified transport error", werr.New(werr.TransportFailure, "dial tcp"), werr.TransportFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newFakeClient()
			client.sendErr = tt.sendErr
			s := NewSigner(client, testKey(t), fastOptions())

			res, err := s.Transfer(context.Background(), recipient, "1 gwei", true)
			require.Error(t, err)
			assert.Nil(t, res)
			assert.Equal(t, tt.kind, werr.KindOf(err))
			assert.Equal(t, 1, client.count("SendRaw"), "submission must not be retried")
			assert.Zero(t, client.count("Receipt"))
		})
	}
}

func TestConfirmReverted(t *testing.T) {
	client := newFakeClient()
	client.receipts = []*types.Receipt{nil, minedReceipt(types.ReceiptStatusFailed)}
	s := NewSigner(client, testKey(t), fastOptions())

	receipt, err := s.Confirm(context.Background(), common.HexToHash("0x01"))
	require.Error(t, err)
	assert.True(t, werr.Is(err, werr.ExecutionReverted))
	require.NotNil(t, receipt)
	assert.Equal(t, types.ReceiptStatusFailed, receipt.Status)
}

func TestConfirmTimeout(t *testing.T) {
	client := newFakeClient()
	opts := fastOptions()
	opts.MaxAttempts = 4
	s := NewSigner(client, testKey(t), opts)

	done := make(chan error, 1)
	go func() {
		_, err := s.Confirm(context.Background(), common.HexToHash("0x02"))
		done <- err
	}()

	select {
	case err := <-done:
		require.Error(t, err)
		assert.True(t, werr.Is(err, werr.ConfirmationTimeout))
		assert.Equal(t, 4, client.count("Receipt"))
	case <-time.After(5 * time.Second):
		t.Fatal("Confirm did not terminate")
	}
}

func TestConfirmTimeoutKeepsLastTransportError(t *testing.T) {
	client := newFakeClient()
	client.receiptErr = werr.New(werr.TransportFailure, "node unreachable")
	s := NewSigner(client, testKey(t), fastOptions())

	_, err := s.Confirm(context.Background(), common.HexToHash("0x03"))
	require.Error(t, err)
	assert.Equal(t, werr.ConfirmationTimeout, werr.KindOf(err))
	assert.Contains(t, err.Error(), "node unreachable")
}

func TestConfirmCancelledStopsWaitingOnly(t *testing.T) {
	client := newFakeClient()
	opts := fastOptions()
	opts.MaxAttempts = 1000
	opts.PollInterval = 10 * time.Millisecond
	s := NewSigner(client, testKey(t), opts)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err := s.Confirm(ctx, common.HexToHash("0x04"))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, werr.Is(err, werr.ConfirmationTimeout))
}

func TestTransferWithoutWait(t *testing.T) {
	client := newFakeClient()
	s := NewSigner(client, testKey(t), fastOptions())

	res, err := s.Transfer(context.Background(), recipient, "1 gwei", false)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, res.Status)
	assert.Nil(t, res.Receipt)
	assert.Zero(t, client.count("Receipt"))
	require.Len(t, client.sent, 1)

	tx := new(types.Transaction)
	require.NoError(t, tx.UnmarshalBinary(client.sent[0]))
	assert.Equal(t, res.Hash, tx.Hash())
	assert.Equal(t, "1000000000", tx.Value().String())
}

func TestTransferConfirmed(t *testing.T) {
	client := newFakeClient()
	client.receipts = []*types.Receipt{nil, nil, minedReceipt(types.ReceiptStatusSuccessful)}
	rec := &countingRecorder{}
	opts := fastOptions()
	opts.Recorder = rec
	s := NewSigner(client, testKey(t), opts)

	res, err := s.Transfer(context.Background(), recipient, "1 gwei", true)
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, res.Status)
	require.NotNil(t, res.Receipt)
	assert.Equal(t, 3, client.count("Receipt"))
	assert.Equal(t, 1, rec.submitted)
	assert.Equal(t, 1, rec.confirmed)
}

func TestInvoke(t *testing.T) {
	client := newFakeClient()
	client.receipts = []*types.Receipt{minedReceipt(types.ReceiptStatusSuccessful)}
	s := NewSigner(client, testKey(t), fastOptions())
	counter := testCounter(t)

	res, err := s.Invoke(context.Background(), counter, "increment", nil, "")
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, res.Status)
	assert.Equal(t, 1, client.count("EstimateGas"))

	tx := new(types.Transaction)
	require.NoError(t, tx.UnmarshalBinary(client.sent[0]))
	assert.Equal(t, counter.Address, *tx.To())
	assert.Equal(t, crypto.Keccak256([]byte("increment()"))[:4], tx.Data())
	assert.Equal(t, uint64(43_000), tx.Gas())
	assert.Zero(t, tx.Value().Sign())
}

func TestInvokeReverted(t *testing.T) {
	client := newFakeClient()
	client.receipts = []*types.Receipt{minedReceipt(types.ReceiptStatusFailed)}
	rec := &countingRecorder{}
	opts := fastOptions()
	opts.Recorder = rec
	s := NewSigner(client, testKey(t), opts)

	res, err := s.Invoke(context.Background(), testCounter(t), "setCount", []string{"5"}, "")
	require.Error(t, err)
	assert.True(t, werr.Is(err, werr.ExecutionReverted))
	require.NotNil(t, res)
	assert.Equal(t, StatusReverted, res.Status)
	assert.Equal(t, []werr.Kind{werr.ExecutionReverted}, rec.failed)
}

func TestInvokeGasLimitOverride(t *testing.T) {
	client := newFakeClient()
	opts := fastOptions()
	opts.GasLimit = 90_000
	s := NewSigner(client, testKey(t), opts)

	intent, err := s.BuildInvocation(context.Background(), testCounter(t), "setCount", []string{"0x10"}, "")
	require.NoError(t, err)
	assert.Equal(t, uint64(90_000), intent.GasLimit)
	assert.Zero(t, client.count("EstimateGas"))
	assert.Equal(t, "setCount(uint256)", intent.Method)
}

func TestBuildInvocationRejections(t *testing.T) {
	tests := []struct {
		name  string
		fn    string
		args  []string
		value string
		kind  werr.Kind
	}{
		{"unknown function", "decrement", nil, "", werr.UnknownFunction},
		{"read-only function", "getCount", nil, "", werr.InvalidArgument},
		{"missing argument", "setCount", nil, "", werr.InvalidArgument},
		{"bad argument", "setCount", []string{"ten"}, "", werr.InvalidArgument},
		{"value to non-payable", "increment", nil, "1 wei", werr.InvalidAmount},
		{"bad value", "donate", nil, "much", werr.InvalidAmount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newFakeClient()
			s := NewSigner(client, testKey(t), fastOptions())

			_, err := s.BuildInvocation(context.Background(), testCounter(t), tt.fn, tt.args, tt.value)
			require.Error(t, err)
			assert.Equal(t, tt.kind, werr.KindOf(err))
			assert.Empty(t, client.calls)
		})
	}
}

func TestBuildInvocationPayable(t *testing.T) {
	client := newFakeClient()
	s := NewSigner(client, testKey(t), fastOptions())

	intent, err := s.BuildInvocation(context.Background(), testCounter(t), "donate", nil, "1 gwei")
	require.NoError(t, err)
	assert.Equal(t, "1000000000", intent.Value.String())
	assert.Equal(t, intent.Value, client.lastEst.Value)
}

type countingRecorder struct {
	submitted int
	confirmed int
	failed    []werr.Kind
}

func (r *countingRecorder) Submitted(Kind)                { r.submitted++ }
func (r *countingRecorder) Confirmed(Kind, time.Duration) { r.confirmed++ }
func (r *countingRecorder) Failed(_ Kind, k werr.Kind)    { r.failed = append(r.failed, k) }
