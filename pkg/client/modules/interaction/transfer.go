package interaction

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-mclib/containers/pkg/address"
	"github.com/go-mclib/containers/pkg/item"
)

// PendingTransfer is an open quantity dialog for a partial-stack move.
// Amount is always within [1, Max].
type PendingTransfer struct {
	Source address.Address
	Dest   address.Address
	Item   item.Ref
	Amount int
	Max    int
}

// ClampAmount parses user input into [1, maxCount]. Blank, unparseable and
// non-positive input gives 1; anything above maxCount gives maxCount.
func ClampAmount(text string, maxCount int) int {
	if maxCount < 1 {
		maxCount = 1
	}
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) && !strings.HasPrefix(strings.TrimSpace(text), "-") {
			return maxCount
		}
		return 1
	}
	return clamp(n, maxCount)
}

func clamp(n, maxCount int) int {
	if n < 1 {
		return 1
	}
	if n > maxCount {
		return maxCount
	}
	return n
}

// BeginTransfer opens the quantity dialog for moving up to maxCount of ref from
// source to dest, starting at maxCount. An open dialog is replaced and any
// drag is dropped, so at most one of the two is in flight.
func (m *Module) BeginTransfer(ref item.Ref, source, dest address.Address, maxCount int) {
	if maxCount < 1 {
		maxCount = 1
	}
	m.mu.Lock()
	m.clearDragLocked()
	m.transfer = &PendingTransfer{Source: source, Dest: dest, Item: ref, Amount: maxCount, Max: maxCount}
	m.mu.Unlock()
	m.stateChanged()
}

// Pending returns the open transfer, if any.
func (m *Module) Pending() (PendingTransfer, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.transfer == nil {
		return PendingTransfer{}, false
	}
	return *m.transfer, true
}

// SetInput sets the amount from typed text and returns the clamped value.
func (m *Module) SetInput(text string) int {
	return m.adjust(func(t *PendingTransfer) int { return ClampAmount(text, t.Max) })
}

// SetAmount sets the amount, clamped, and returns it.
func (m *Module) SetAmount(n int) int {
	return m.adjust(func(t *PendingTransfer) int { return clamp(n, t.Max) })
}

func (m *Module) Increment() int {
	return m.adjust(func(t *PendingTransfer) int { return clamp(t.Amount+1, t.Max) })
}

func (m *Module) Decrement() int {
	return m.adjust(func(t *PendingTransfer) int { return clamp(t.Amount-1, t.Max) })
}

func (m *Module) adjust(fn func(t *PendingTransfer) int) int {
	m.mu.Lock()
	if m.transfer == nil {
		m.mu.Unlock()
		return 0
	}
	m.transfer.Amount = fn(m.transfer)
	n := m.transfer.Amount
	m.mu.Unlock()
	m.stateChanged()
	return n
}

// Confirm emits one move for the chosen amount and closes the dialog.
func (m *Module) Confirm() bool {
	m.mu.Lock()
	t := m.transfer
	m.transfer = nil
	m.mu.Unlock()
	if t == nil {
		return false
	}
	m.RequestMove(t.Source, t.Dest, t.Item, t.Amount)
	m.stateChanged()
	return true
}

// CancelTransfer closes the dialog without emitting anything.
func (m *Module) CancelTransfer() {
	m.mu.Lock()
	had := m.transfer != nil
	m.transfer = nil
	m.mu.Unlock()
	if had {
		m.stateChanged()
	}
}
