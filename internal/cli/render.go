package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Veraticus/spend/internal/model"
	"github.com/charmbracelet/lipgloss"
	"github.com/schollz/progressbar/v3"
)

// PrintBuckets writes a grouped payment listing.
func PrintBuckets(w io.Writer, title string, buckets []model.DateBucket) error {
	var b strings.Builder
	b.WriteString(FormatTitle(title))
	b.WriteString("\n")

	if len(buckets) == 0 {
		b.WriteString(SubtleStyle.Render("No payments found"))
		b.WriteString("\n")
		_, err := io.WriteString(w, b.String())
		return err
	}

	count := 0
	for _, bucket := range buckets {
		b.WriteString(DateStyle.Render(bucket.Label))
		b.WriteString("\n")
		for _, p := range bucket.Payments {
			b.WriteString(FormatPayment(p))
			b.WriteString("\n")
			count++
		}
	}
	b.WriteString(SubtleStyle.Render(fmt.Sprintf("%d payments", count)))
	b.WriteString("\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// FormatPayment renders one payment row: time, parties, amount and id.
func FormatPayment(p model.Payment) string {
	parties := fmt.Sprintf("%s → %s", p.PayedFrom, p.PayedTo)
	return fmt.Sprintf("  %s  %s %s  %s",
		SubtleStyle.Render(p.Date.Local().Format("15:04")),
		TableCellStyle.Render(padRight(parties, 36)),
		AmountStyle.Render(fmt.Sprintf("%12s", p.FormatAmount())),
		SubtleStyle.Render(p.ID),
	)
}

// PrintList writes a titled list of strings, or empty when there is nothing.
func PrintList(w io.Writer, title string, items []string, empty string) error {
	lines := []string{TableHeaderStyle.Render(title)}
	if len(items) == 0 {
		lines = append(lines, SubtleStyle.Render(empty))
	}
	for i, item := range items {
		lines = append(lines, fmt.Sprintf("  %d. %s", i+1, item))
	}

	_, err := fmt.Fprintln(w, lipgloss.JoinVertical(lipgloss.Left, lines...))
	return err
}

// PrintDefaults writes both default lists.
func PrintDefaults(w io.Writer, defaults model.Defaults) error {
	if err := PrintList(w, "Payed to", defaults.PayedTo, "No payed-to defaults"); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	return PrintList(w, "Payed from", defaults.PayedFrom, "No payed-from defaults")
}

// PrintUser writes the signed-in identity and when its session expires.
func PrintUser(w io.Writer, user *model.User, expiry time.Time) error {
	if user == nil {
		_, err := fmt.Fprintln(w, FormatWarning("Not logged in. Run: spend login"))
		return err
	}

	rows := []string{
		fmt.Sprintf("%s %s", BoldStyle.Render("Username:"), user.Username),
		fmt.Sprintf("%s %s", BoldStyle.Render("Email:   "), user.Email),
		fmt.Sprintf("%s %s", BoldStyle.Render("Role:    "), user.Role),
		fmt.Sprintf("%s %s", BoldStyle.Render("User ID: "), user.ID),
	}
	if !expiry.IsZero() {
		status := SuccessStyle.Render(expiry.Local().Format(time.RFC1123))
		if !time.Now().Before(expiry) {
			status = ErrorStyle.Render("expired " + expiry.Local().Format(time.RFC1123))
		}
		rows = append(rows, fmt.Sprintf("%s %s", BoldStyle.Render("Session: "), status))
	}

	_, err := fmt.Fprintln(w, RenderBox("Logged in", strings.Join(rows, "\n")))
	return err
}

// NewLoadProgress returns an indeterminate progress spinner counting loaded
// payments.
func NewLoadProgress(w io.Writer, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetDescription("[cyan]"+description+"[reset]"),
		progressbar.OptionClearOnFinish(),
	)
}

func padRight(s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}
