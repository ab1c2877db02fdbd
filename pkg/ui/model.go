// Package ui is the embedded terminal interface for a mounted bridge view.
package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"dex-bridge/pkg/bridge"
	"dex-bridge/pkg/coordinator"
	"dex-bridge/pkg/report"
	"dex-bridge/pkg/types"
)

// Controller is the part of the coordinator the UI drives
type Controller interface {
	SetTokenPair(types.TokenPair)
	SetWalletAddress(types.WalletAddress)
	Submit(ctx context.Context, req types.BridgeRequest) (types.TransactionReference, error)
	View() coordinator.View
}

// Subscriber publishes view changes
type Subscriber interface {
	Subscribe(fn func(coordinator.View)) (unsubscribe func())
}

const (
	fieldTokenPair = iota
	fieldWallet
	fieldSource
	fieldDestination
	fieldToken
	fieldButton
	fieldCount
)

var fieldLabels = [...]string{
	fieldTokenPair:   "Token Pair",
	fieldWallet:      "Wallet Address",
	fieldSource:      "Source Chain",
	fieldDestination: "Destination Chain",
	fieldToken:       "Token",
}

// viewMsg carries a fresh coordinator view into the update loop
type viewMsg coordinator.View

// failureMsg carries a reported failure into the update loop
type failureMsg report.Failure

// bridgeResultMsg is sent when a submission started from the UI completes
type bridgeResultMsg struct {
	ref types.TransactionReference
	err error
}

// Model is the bubbletea model for the bridge view
type Model struct {
	ctx      context.Context
	ctrl     Controller
	updates  <-chan coordinator.View
	failures <-chan report.Failure

	inputs     [fieldButton]textinput.Model
	focus      int
	view       coordinator.View
	lastErr    string
	submitting int
	width      int
	quitting   bool
}

// New creates the model. updates and failures may be nil.
func New(ctx context.Context, ctrl Controller, updates <-chan coordinator.View, failures <-chan report.Failure) Model {
	form := bridge.DefaultForm()

	m := Model{
		ctx:      ctx,
		ctrl:     ctrl,
		updates:  updates,
		failures: failures,
		view:     ctrl.View(),
	}

	for i := range m.inputs {
		ti := textinput.New()
		ti.Placeholder = fieldLabels[i]
		ti.CharLimit = 128
		ti.Width = 48
		m.inputs[i] = ti
	}
	m.inputs[fieldSource].SetValue(form.SourceChain)
	m.inputs[fieldDestination].SetValue(form.DestinationChain)
	m.inputs[fieldToken].SetValue(form.Token)
	m.inputs[fieldTokenPair].Focus()

	return m
}

// Watch subscribes to sub and delivers views on a channel that only holds
// the newest undelivered view. The returned function unsubscribes.
func Watch(sub Subscriber) (<-chan coordinator.View, func()) {
	ch := make(chan coordinator.View, 1)
	unsubscribe := sub.Subscribe(func(v coordinator.View) {
		for {
			select {
			case ch <- v:
				return
			default:
				select {
				case <-ch:
				default:
				}
			}
		}
	})
	return ch, unsubscribe
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.waitForView(), m.waitForFailure())
}

func (m Model) waitForView() tea.Cmd {
	if m.updates == nil {
		return nil
	}
	ch := m.updates
	return func() tea.Msg {
		v, ok := <-ch
		if !ok {
			return nil
		}
		return viewMsg(v)
	}
}

func (m Model) waitForFailure() tea.Cmd {
	if m.failures == nil {
		return nil
	}
	ch := m.failures
	return func() tea.Msg {
		f, ok := <-ch
		if !ok {
			return nil
		}
		return failureMsg(f)
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case viewMsg:
		m.view = coordinator.View(msg)
		return m, m.waitForView()

	case failureMsg:
		m.lastErr = fmt.Sprintf("%s: %v", msg.Op, msg.Err)
		return m, m.waitForFailure()

	case bridgeResultMsg:
		m.submitting--
		if msg.err != nil {
			m.lastErr = fmt.Sprintf("%s: %v", report.OpBridgeSubmit, msg.err)
			return m, nil
		}
		m.lastErr = ""
		m.view = m.ctrl.View()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.updateFocused(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		m.quitting = true
		return m, tea.Quit

	case "tab", "down":
		return m.setFocus((m.focus + 1) % fieldCount)

	case "shift+tab", "up":
		return m.setFocus((m.focus + fieldCount - 1) % fieldCount)

	case "ctrl+s":
		return m.submit()

	case "enter":
		if m.focus == fieldButton {
			return m.submit()
		}
		return m.setFocus(m.focus + 1)
	}

	return m.updateFocused(msg)
}

func (m Model) setFocus(i int) (tea.Model, tea.Cmd) {
	m.focus = i
	var cmd tea.Cmd
	for j := range m.inputs {
		if j == i {
			cmd = m.inputs[j].Focus()
		} else {
			m.inputs[j].Blur()
		}
	}
	return m, cmd
}

// updateFocused forwards msg to the focused input and pushes session
// fields to the controller on every keystroke.
func (m Model) updateFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.focus == fieldButton {
		return m, nil
	}

	before := m.inputs[m.focus].Value()
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	after := m.inputs[m.focus].Value()

	if after != before {
		switch m.focus {
		case fieldTokenPair:
			m.ctrl.SetTokenPair(types.TokenPair(after))
		case fieldWallet:
			m.ctrl.SetWalletAddress(types.WalletAddress(after))
		}
	}
	return m, cmd
}

// form returns the bridge fields as currently typed
func (m Model) form() bridge.Form {
	return bridge.Form{
		SourceChain:      m.inputs[fieldSource].Value(),
		DestinationChain: m.inputs[fieldDestination].Value(),
		Token:            m.inputs[fieldToken].Value(),
	}
}

// submit sends the form as it is right now. Pressing again while a request
// is in flight sends another one.
func (m Model) submit() (tea.Model, tea.Cmd) {
	req := m.form().Request()
	ctx, ctrl := m.ctx, m.ctrl
	m.submitting++

	return m, func() tea.Msg {
		ref, err := ctrl.Submit(ctx, req)
		return bridgeResultMsg{ref: ref, err: err}
	}
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("Token and DEX DApp"))
	b.WriteString("\n")

	b.WriteString(m.renderInput(fieldTokenPair))
	b.WriteString(m.renderInput(fieldWallet))
	if label := m.view.WalletKind.Label(); label != "" {
		b.WriteString(labelStyle.Render(""))
		b.WriteString(mutedStyle.Render(label + " address"))
		b.WriteString("\n")
	}

	b.WriteString(sectionStyle.Render("Best DEX: " + string(m.view.BestDEX)))
	b.WriteString("\n")

	b.WriteString(sectionStyle.Render("Bridge Tokens"))
	b.WriteString("\n")
	b.WriteString(m.renderInput(fieldSource))
	b.WriteString(m.renderInput(fieldDestination))
	b.WriteString(m.renderInput(fieldToken))

	button := buttonStyle
	if m.focus == fieldButton {
		button = focusedButtonStyle
	}
	b.WriteString(button.Render("Bridge Tokens"))
	if m.submitting > 0 {
		b.WriteString(" ")
		b.WriteString(mutedStyle.Render("submitting..."))
	}
	b.WriteString("\n")

	if m.view.Reference != "" {
		b.WriteString("Transaction Hash: " + string(m.view.Reference))
		b.WriteString("\n")
	}

	b.WriteString(sectionStyle.Render("Transaction Status: "))
	b.WriteString(statusStyle(m.view.TransactionStatus).Render(string(m.view.TransactionStatus)))
	b.WriteString("\n")

	if m.lastErr != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render("Error: " + m.lastErr))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("tab/shift+tab: move  enter: next/submit  ctrl+s: submit  esc: quit"))
	b.WriteString("\n")

	return b.String()
}

func (m Model) renderInput(i int) string {
	return labelStyle.Render(fieldLabels[i]+":") + m.inputs[i].View() + "\n"
}
