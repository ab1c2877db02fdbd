package coordinator

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/andres-erbsen/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dex-bridge/pkg/client"
	"dex-bridge/pkg/poller"
	"dex-bridge/pkg/report"
	"dex-bridge/pkg/testutil"
	"dex-bridge/pkg/types"
	"dex-bridge/pkg/wallet"
)

const (
	waitFor = 2 * time.Second
	tick    = 5 * time.Millisecond
)

type fixture struct {
	backend  *testutil.FakeBackend
	clock    *clock.Mock
	reporter *report.Recorder
	coord    *Coordinator
}

func mount(t *testing.T, ctx context.Context, setup func(*testutil.FakeBackend)) *fixture {
	t.Helper()

	f := &fixture{
		backend:  testutil.NewFakeBackend(t),
		clock:    clock.NewMock(),
		reporter: &report.Recorder{},
	}
	if setup != nil {
		setup(f.backend)
	}

	f.coord = Mount(ctx, Config{
		Backend:  client.NewBridgeClient(f.backend.URL(), time.Second),
		Reporter: f.reporter,
		Clock:    f.clock,
	})
	t.Cleanup(f.coord.Close)
	return f
}

func (f *fixture) waitBestDEX(t *testing.T) {
	t.Helper()
	select {
	case <-f.coord.BestDEXDone():
	case <-time.After(waitFor):
		t.Fatal("best dex query did not complete")
	}
}

func TestMountFetchesBestDEXOnce(t *testing.T) {
	f := mount(t, context.Background(), func(b *testutil.FakeBackend) { b.SetBestDEX("Raydium") })
	f.waitBestDEX(t)

	assert.Equal(t, types.DEXName("Raydium"), f.coord.View().BestDEX)

	for i := 1; i <= 3; i++ {
		f.coord.SetTokenPair(types.TokenPair(fmt.Sprintf("SOL/ETH-%d", i)))
		f.coord.SetWalletAddress(types.WalletAddress(fmt.Sprintf("wallet-%d", i)))
		f.clock.Add(poller.DefaultInterval)
		assert.Eventually(t, func() bool { return f.backend.Calls(client.PathTransactionStatus) == i }, waitFor, tick)
	}
	assert.Equal(t, 1, f.backend.Calls(client.PathBestDEX))
	assert.Equal(t, types.TokenPair("SOL/ETH-3"), f.coord.View().TokenPair)
}

func TestBestDEXFailureLeavesValueEmpty(t *testing.T) {
	f := mount(t, context.Background(), func(b *testutil.FakeBackend) {
		b.Fail(client.PathBestDEX, http.StatusInternalServerError)
	})
	f.waitBestDEX(t)

	assert.Empty(t, f.coord.View().BestDEX)
	assert.Equal(t, 1, f.reporter.Count(report.OpRouteQuery))
}

func TestStatusIsPolledIntoView(t *testing.T) {
	f := mount(t, context.Background(), nil)
	assert.Empty(t, f.coord.View().TransactionStatus)

	f.clock.Add(poller.DefaultInterval)
	assert.Eventually(t, func() bool { return f.coord.View().TransactionStatus == "PENDING" }, waitFor, tick)

	f.backend.SetStatus("COMPLETED")
	f.clock.Add(poller.DefaultInterval)
	assert.Eventually(t, func() bool { return f.coord.View().TransactionStatus == "COMPLETED" }, waitFor, tick)
}

func TestPollFailureKeepsLastStatus(t *testing.T) {
	f := mount(t, context.Background(), func(b *testutil.FakeBackend) { b.SetStatus("PROCESSING") })

	f.clock.Add(poller.DefaultInterval)
	assert.Eventually(t, func() bool { return f.coord.View().TransactionStatus == "PROCESSING" }, waitFor, tick)

	f.backend.Fail(client.PathTransactionStatus, http.StatusBadGateway)
	f.clock.Add(poller.DefaultInterval)
	assert.Eventually(t, func() bool { return f.reporter.Count(report.OpPollStatus) == 1 }, waitFor, tick)
	assert.Equal(t, types.TransactionStatus("PROCESSING"), f.coord.View().TransactionStatus)
}

func TestInputsAreStoredVerbatim(t *testing.T) {
	f := mount(t, context.Background(), nil)

	f.coord.SetTokenPair("SOL/ETH")
	f.coord.SetWalletAddress("0x52908400098527886E0F7030069857D2E4169EE7")

	view := f.coord.View()
	assert.Equal(t, types.TokenPair("SOL/ETH"), view.TokenPair)
	assert.Equal(t, types.WalletAddress("0x52908400098527886E0F7030069857D2E4169EE7"), view.WalletAddress)
	assert.Equal(t, wallet.KindEVM, view.WalletKind)

	f.coord.SetWalletAddress("anything at all")
	assert.Equal(t, types.WalletAddress("anything at all"), f.coord.View().WalletAddress)
	assert.Equal(t, wallet.KindUnknown, f.coord.View().WalletKind)
}

func TestSubmitShowsReference(t *testing.T) {
	f := mount(t, context.Background(), func(b *testutil.FakeBackend) { b.SetReference("0xABC") })

	req := types.BridgeRequest{SourceChain: "Solana", DestinationChain: "Ethereum", Token: "USDC"}
	ref, err := f.coord.Submit(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, types.TransactionReference("0xABC"), ref)
	view := f.coord.View()
	assert.Equal(t, types.TransactionReference("0xABC"), view.Reference)
	assert.True(t, view.ReferenceReceived)
	assert.Equal(t, []types.BridgeRequest{req}, f.backend.Submitted())
}

func TestSubmitFailureKeepsPreviousReference(t *testing.T) {
	f := mount(t, context.Background(), func(b *testutil.FakeBackend) { b.SetReference("0xFIRST") })

	_, err := f.coord.Submit(context.Background(), types.BridgeRequest{Token: "USDC"})
	require.NoError(t, err)

	f.backend.Fail(client.PathBridgeTokens, http.StatusInternalServerError)
	_, err = f.coord.Submit(context.Background(), types.BridgeRequest{Token: "USDC"})
	require.ErrorIs(t, err, client.ErrRequestFailed)

	assert.Equal(t, types.TransactionReference("0xFIRST"), f.coord.View().Reference)
	assert.Equal(t, 1, f.reporter.Count(report.OpBridgeSubmit))
}

func TestSubscribersSeeChanges(t *testing.T) {
	f := mount(t, context.Background(), nil)
	f.waitBestDEX(t)

	var mu sync.Mutex
	var views []View
	unsubscribe := f.coord.Subscribe(func(v View) {
		mu.Lock()
		defer mu.Unlock()
		views = append(views, v)
	})

	f.coord.SetTokenPair("SOL/ETH")
	f.clock.Add(poller.DefaultInterval)
	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(views) == 2
	}, waitFor, tick)

	mu.Lock()
	assert.Equal(t, types.TokenPair("SOL/ETH"), views[0].TokenPair)
	assert.Equal(t, types.TransactionStatus("PENDING"), views[1].TransactionStatus)
	mu.Unlock()

	unsubscribe()
	f.coord.SetTokenPair("BTC/ETH")

	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, views, 2)
}

func TestCloseStopsPolling(t *testing.T) {
	f := mount(t, context.Background(), nil)

	f.clock.Add(poller.DefaultInterval)
	assert.Eventually(t, func() bool { return f.backend.Calls(client.PathTransactionStatus) == 1 }, waitFor, tick)

	f.coord.Close()
	f.clock.Add(5 * poller.DefaultInterval)
	assert.Never(t, func() bool { return f.backend.Calls(client.PathTransactionStatus) > 1 }, 50*time.Millisecond, tick)

	_, err := f.coord.Submit(context.Background(), types.BridgeRequest{Token: "USDC"})
	assert.ErrorIs(t, err, ErrClosed)
	assert.NotPanics(t, f.coord.Close)
}

func TestContextCancellationTearsDown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	f := mount(t, ctx, nil)

	cancel()
	select {
	case <-f.coord.Done():
	case <-time.After(waitFor):
		t.Fatal("coordinator was not torn down")
	}

	f.clock.Add(3 * poller.DefaultInterval)
	assert.Never(t, func() bool { return f.backend.Calls(client.PathTransactionStatus) > 0 }, 50*time.Millisecond, tick)
}
