// Package components holds the reusable pieces of the payment browser.
package components

import (
	"fmt"
	"strings"

	"github.com/Veraticus/spend/internal/model"
	"github.com/Veraticus/spend/internal/tui/themes"
	"github.com/charmbracelet/lipgloss"
)

// row is one rendered line: a date header or a payment.
type row struct {
	payment *model.Payment
	label   string
}

func (r row) isHeader() bool {
	return r.payment == nil
}

// PaymentListModel renders date buckets as a scrollable list with one
// highlighted payment.
type PaymentListModel struct {
	theme    themes.Theme
	rows     []row
	payments []int // indexes into rows of payment rows
	cursor   int   // index into payments
	offset   int   // first visible row
	width    int
	height   int
}

// NewPaymentList creates an empty list.
func NewPaymentList(theme themes.Theme) PaymentListModel {
	return PaymentListModel{
		theme:  theme,
		width:  80,
		height: 20,
	}
}

// SetBuckets replaces the content. The highlight stays on the same payment
// when it is still present, otherwise on the same position.
func (m *PaymentListModel) SetBuckets(buckets []model.DateBucket) {
	var focusedID string
	if p := m.Selected(); p != nil {
		focusedID = p.ID
	}

	m.rows = m.rows[:0]
	m.payments = m.payments[:0]
	for _, b := range buckets {
		m.rows = append(m.rows, row{label: b.Label})
		for i := range b.Payments {
			m.payments = append(m.payments, len(m.rows))
			m.rows = append(m.rows, row{payment: &b.Payments[i]})
		}
	}

	if focusedID != "" {
		for i, idx := range m.payments {
			if m.rows[idx].payment.ID == focusedID {
				m.cursor = i
				m.ensureVisible()
				return
			}
		}
	}
	m.cursor = min(m.cursor, max(len(m.payments)-1, 0))
	m.ensureVisible()
}

// Reset clears the content and moves the highlight to the top.
func (m *PaymentListModel) Reset() {
	m.rows = nil
	m.payments = nil
	m.cursor = 0
	m.offset = 0
}

// Resize sets the rendering area.
func (m *PaymentListModel) Resize(width, height int) {
	m.width = width
	m.height = max(height, 1)
	m.ensureVisible()
}

// MoveBy moves the highlight by delta payments, clamped to the list.
func (m *PaymentListModel) MoveBy(delta int) {
	if len(m.payments) == 0 {
		return
	}
	m.cursor = min(max(m.cursor+delta, 0), len(m.payments)-1)
	m.ensureVisible()
}

// PageSize is the number of rows that fit on screen.
func (m PaymentListModel) PageSize() int {
	return m.height
}

// Top moves the highlight to the first payment.
func (m *PaymentListModel) Top() {
	m.MoveBy(-len(m.payments))
}

// Bottom moves the highlight to the last payment.
func (m *PaymentListModel) Bottom() {
	m.MoveBy(len(m.payments))
}

// Selected returns the highlighted payment, or nil when the list is empty.
func (m PaymentListModel) Selected() *model.Payment {
	if len(m.payments) == 0 {
		return nil
	}
	return m.rows[m.payments[m.cursor]].payment
}

// Position returns the highlighted payment's index and the number of
// payments shown.
func (m PaymentListModel) Position() (int, int) {
	return m.cursor, len(m.payments)
}

// Empty reports whether there is nothing to show.
func (m PaymentListModel) Empty() bool {
	return len(m.payments) == 0
}

func (m *PaymentListModel) ensureVisible() {
	if len(m.payments) == 0 {
		m.offset = 0
		return
	}
	line := m.payments[m.cursor]
	// Keep the date header of the first visible payment on screen.
	if m.cursor == 0 {
		line = 0
	}
	if line < m.offset {
		m.offset = line
	}
	if m.payments[m.cursor] >= m.offset+m.height {
		m.offset = m.payments[m.cursor] - m.height + 1
	}
	m.offset = min(max(m.offset, 0), max(len(m.rows)-m.height, 0))
}

// View renders the visible rows.
func (m PaymentListModel) View() string {
	if len(m.rows) == 0 {
		return ""
	}

	end := min(m.offset+m.height, len(m.rows))
	selectedRow := -1
	if len(m.payments) > 0 {
		selectedRow = m.payments[m.cursor]
	}

	lines := make([]string, 0, end-m.offset)
	for i := m.offset; i < end; i++ {
		r := m.rows[i]
		if r.isHeader() {
			lines = append(lines, m.theme.DateHeader.Render(r.label))
			continue
		}
		line := m.renderPayment(*r.payment)
		if i == selectedRow {
			line = m.theme.Selected.Render(line)
		}
		lines = append(lines, line)
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m PaymentListModel) renderPayment(p model.Payment) string {
	amountWidth := 14
	timeWidth := 6
	rest := max(m.width-amountWidth-timeWidth-6, 10)
	parties := truncate(fmt.Sprintf("%s → %s", p.PayedFrom, p.PayedTo), rest)

	return fmt.Sprintf("  %-*s %*s  %s",
		rest, parties,
		amountWidth, p.FormatAmount(),
		p.Date.Local().Format("15:04"))
}

func truncate(s string, width int) string {
	if lipgloss.Width(s) <= width {
		return s
	}
	runes := []rune(s)
	if width <= 1 || len(runes) <= 1 {
		return "…"
	}
	out := strings.Builder{}
	for _, r := range runes {
		if lipgloss.Width(out.String()+string(r)) >= width {
			break
		}
		out.WriteRune(r)
	}
	return out.String() + "…"
}
