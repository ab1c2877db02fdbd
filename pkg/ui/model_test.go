package ui

import (
	"context"
	"errors"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dex-bridge/pkg/coordinator"
	"dex-bridge/pkg/report"
	"dex-bridge/pkg/session"
	"dex-bridge/pkg/types"
	"dex-bridge/pkg/wallet"
)

type fakeController struct {
	mu         sync.Mutex
	tokenPairs []types.TokenPair
	wallets    []types.WalletAddress
	requests   []types.BridgeRequest
	view       coordinator.View
	ref        types.TransactionReference
	err        error
	subs       []func(coordinator.View)
}

func (c *fakeController) SetTokenPair(v types.TokenPair) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokenPairs = append(c.tokenPairs, v)
	c.view.TokenPair = v
}

func (c *fakeController) SetWalletAddress(v types.WalletAddress) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.wallets = append(c.wallets, v)
	c.view.WalletAddress = v
}

func (c *fakeController) Submit(ctx context.Context, req types.BridgeRequest) (types.TransactionReference, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requests = append(c.requests, req)
	if c.err != nil {
		return "", c.err
	}
	c.view.Reference = c.ref
	c.view.ReferenceReceived = true
	return c.ref, nil
}

func (c *fakeController) View() coordinator.View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

func (c *fakeController) Subscribe(fn func(coordinator.View)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subs = append(c.subs, fn)
	return func() {}
}

func (c *fakeController) publish(v coordinator.View) {
	c.mu.Lock()
	subs := append([]func(coordinator.View){}, c.subs...)
	c.mu.Unlock()
	for _, fn := range subs {
		fn(v)
	}
}

func press(t *testing.T, m Model, keys ...tea.KeyMsg) Model {
	t.Helper()
	for _, k := range keys {
		next, _ := m.Update(k)
		m = next.(Model)
	}
	return m
}

func typeText(t *testing.T, m Model, s string) Model {
	t.Helper()
	for _, r := range s {
		m = press(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

var (
	keyTab      = tea.KeyMsg{Type: tea.KeyTab}
	keyShiftTab = tea.KeyMsg{Type: tea.KeyShiftTab}
	keyEnter    = tea.KeyMsg{Type: tea.KeyEnter}
	keyCtrlS    = tea.KeyMsg{Type: tea.KeyCtrlS}
	keyEsc      = tea.KeyMsg{Type: tea.KeyEsc}
)

func TestFormDefaults(t *testing.T) {
	m := New(context.Background(), &fakeController{}, nil, nil)

	assert.Equal(t, types.BridgeRequest{SourceChain: "Solana", DestinationChain: "Ethereum"}, m.form().Request())
	assert.Equal(t, fieldTokenPair, m.focus)
}

func TestKeystrokesUpdateSession(t *testing.T) {
	ctrl := &fakeController{}
	m := New(context.Background(), ctrl, nil, nil)

	m = typeText(t, m, "SOL")
	assert.Equal(t, []types.TokenPair{"S", "SO", "SOL"}, ctrl.tokenPairs)

	m = press(t, m, keyTab)
	m = typeText(t, m, "0x1")
	assert.Equal(t, []types.WalletAddress{"0", "0x", "0x1"}, ctrl.wallets)

	m = press(t, m, keyShiftTab)
	assert.Equal(t, fieldTokenPair, m.focus)
}

func TestBridgeFieldsAreLocal(t *testing.T) {
	ctrl := &fakeController{}
	m := New(context.Background(), ctrl, nil, nil)

	m = press(t, m, keyTab, keyTab, keyTab, keyTab)
	require.Equal(t, fieldToken, m.focus)
	m = typeText(t, m, "USDC")

	assert.Empty(t, ctrl.tokenPairs)
	assert.Empty(t, ctrl.wallets)
	assert.Equal(t, "USDC", m.form().Token)
}

func TestSubmitFromButton(t *testing.T) {
	ctrl := &fakeController{ref: "0xABC"}
	m := New(context.Background(), ctrl, nil, nil)

	m = press(t, m, keyTab, keyTab, keyTab, keyTab)
	m = typeText(t, m, "USDC")
	m = press(t, m, keyEnter)
	require.Equal(t, fieldButton, m.focus)

	next, cmd := m.Update(keyEnter)
	m = next.(Model)
	require.NotNil(t, cmd)
	assert.Contains(t, m.View(), "submitting...")

	next, _ = m.Update(cmd())
	m = next.(Model)

	assert.Equal(t, []types.BridgeRequest{{SourceChain: "Solana", DestinationChain: "Ethereum", Token: "USDC"}}, ctrl.requests)
	assert.Contains(t, m.View(), "Transaction Hash: 0xABC")
	assert.NotContains(t, m.View(), "submitting...")
}

func TestDoubleSubmitSendsTwoRequests(t *testing.T) {
	ctrl := &fakeController{ref: "0xABC"}
	m := New(context.Background(), ctrl, nil, nil)

	next, first := m.Update(keyCtrlS)
	m = next.(Model)
	next, second := m.Update(keyCtrlS)
	m = next.(Model)

	require.NotNil(t, first)
	require.NotNil(t, second)
	first()
	second()
	assert.Len(t, ctrl.requests, 2)
}

func TestSubmitFailureShowsErrorAndNoHash(t *testing.T) {
	ctrl := &fakeController{err: errors.New("API returned status code 500")}
	m := New(context.Background(), ctrl, nil, nil)

	_, cmd := m.Update(keyCtrlS)
	next, _ := m.Update(cmd())
	m = next.(Model)

	view := m.View()
	assert.Contains(t, view, "status code 500")
	assert.NotContains(t, view, "Transaction Hash")
}

func TestViewUpdatesFromSubscription(t *testing.T) {
	ctrl := &fakeController{}
	updates, unsubscribe := Watch(ctrl)
	defer unsubscribe()
	m := New(context.Background(), ctrl, updates, nil)

	ctrl.publish(coordinator.View{BestDEX: "Orca"})
	ctrl.publish(coordinator.View{
		Snapshot:   session.Snapshot{TransactionStatus: "COMPLETED", WalletAddress: "So11111111111111111111111111111111111111112"},
		BestDEX:    "Raydium",
		WalletKind: wallet.KindSolana,
	})

	// Only the newest view is kept.
	msg := m.waitForView()()
	next, cmd := m.Update(msg)
	m = next.(Model)
	assert.NotNil(t, cmd)

	view := m.View()
	assert.Contains(t, view, "Best DEX: Raydium")
	assert.Contains(t, view, "COMPLETED")
	assert.Contains(t, view, "Solana address")
	assert.Empty(t, updates)
}

func TestFailuresAreShown(t *testing.T) {
	failures := report.NewLatest()
	m := New(context.Background(), &fakeController{}, nil, failures.C())

	failures.Report(report.OpPollStatus, errors.New("connection refused"))
	next, _ := m.Update(m.waitForFailure()())
	m = next.(Model)

	assert.Contains(t, m.View(), "poll_status: connection refused")
}

func TestEscQuits(t *testing.T) {
	m := New(context.Background(), &fakeController{}, nil, nil)

	next, cmd := m.Update(keyEsc)
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
	assert.Empty(t, next.View())
}

func TestStatusStyleKnownValues(t *testing.T) {
	assert.Equal(t, successStyle, statusStyle("completed"))
	assert.Equal(t, warningStyle, statusStyle("PENDING"))
	assert.Equal(t, errorStyle, statusStyle("REFUNDED"))
}

func TestEmptyReferenceShowsNoHashLine(t *testing.T) {
	ctrl := &fakeController{ref: ""}
	m := New(context.Background(), ctrl, nil, nil)

	_, cmd := m.Update(keyCtrlS)
	next, _ := m.Update(cmd())
	m = next.(Model)

	require.True(t, ctrl.View().ReferenceReceived)
	assert.NotContains(t, m.View(), "Transaction Hash")
}
