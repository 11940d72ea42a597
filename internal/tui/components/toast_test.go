package components

import (
	"testing"

	"github.com/Veraticus/spend/internal/tui/themes"
	"github.com/stretchr/testify/assert"
)

func TestToast_ShowAndDismiss(t *testing.T) {
	toast := NewToast(themes.Default)
	assert.Empty(t, toast.View())

	seq := toast.Show("Payment deleted", ToastSuccess)
	assert.Equal(t, "Payment deleted", toast.Message())
	assert.Contains(t, toast.View(), "Payment deleted")

	toast.Dismiss(seq)
	assert.Empty(t, toast.Message())
	assert.Empty(t, toast.View())
}

func TestToast_LateDismissKeepsNewerMessage(t *testing.T) {
	toast := NewToast(themes.Default)

	first := toast.Show("Failed to fetch payments", ToastError)
	toast.Show("Refreshing", ToastInfo)

	toast.Dismiss(first)
	assert.Equal(t, "Refreshing", toast.Message())
}
