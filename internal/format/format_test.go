package format_test

import (
	"strings"
	"testing"

	"expdata/internal/format"
)

func TestASCII_BasicTable(t *testing.T) {
	tb := format.NewTable(format.ASCII)
	tb.Header("Size", "Success%", "Avg Hops")
	tb.Row(100, "97.00", "5.30")
	tb.Row(300, "95.10", "6.12")
	out := tb.String()

	for _, want := range []string{"Size", "97.00", "6.12"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
	if !strings.Contains(out, "───") {
		t.Errorf("expected box-drawing characters in ASCII output:\n%s", out)
	}
	if tb.Len() != 2 {
		t.Errorf("Len() = %d, want 2", tb.Len())
	}
}

func TestMarkdown_BasicTable(t *testing.T) {
	tb := format.NewTable(format.Markdown)
	tb.Header("Embedding", "Avg Success")
	tb.Row("PIE", "99.1%")
	out := tb.String()

	if !strings.Contains(out, "| Embedding") {
		t.Errorf("expected markdown header with '| Embedding':\n%s", out)
	}
	if !strings.Contains(out, "---") {
		t.Errorf("expected markdown separator '---':\n%s", out)
	}
}

func TestFixedColumns_PadToWidth(t *testing.T) {
	tb := format.NewTable(format.ASCII)
	tb.Header("A", "B")
	tb.Row("x", "y")
	tb.Columns(format.Fixed(1, 12), format.Fixed(2, 8))
	out := tb.String()

	lines := strings.Split(out, "\n")
	var row string
	for _, l := range lines {
		if strings.Contains(l, "x") {
			row = l
		}
	}
	if row == "" {
		t.Fatalf("data row not found:\n%s", out)
	}
	if !strings.Contains(row, "x"+strings.Repeat(" ", 11)) {
		t.Errorf("first column not padded to 12:\n%q", row)
	}
}

func TestPercent(t *testing.T) {
	cases := []struct {
		v    float64
		prec int
		want string
	}{
		{0.97, 1, "97.0%"},
		{1, 1, "100.0%"},
		{0.9512, 2, "95.12%"},
		{0, 1, "0.0%"},
	}
	for _, tc := range cases {
		if got := format.Percent(tc.v, tc.prec); got != tc.want {
			t.Errorf("Percent(%v, %d) = %q, want %q", tc.v, tc.prec, got, tc.want)
		}
	}
}

func TestDecimalAndSigned(t *testing.T) {
	if got := format.Decimal(0.512, 3); got != "0.512" {
		t.Errorf("Decimal = %q", got)
	}
	if got := format.Decimal(120.44, 1); got != "120.4" {
		t.Errorf("Decimal = %q", got)
	}
	if got := format.Signed(-12.345, 1); got != "-12.3" {
		t.Errorf("Signed = %q", got)
	}
	if got := format.Signed(4, 1); got != "+4.0" {
		t.Errorf("Signed = %q", got)
	}
}

func TestBytes(t *testing.T) {
	if got := format.Bytes(1200); got != "1.2 kB" {
		t.Errorf("Bytes(1200) = %q", got)
	}
	if got := format.Bytes(-1); got != "-" {
		t.Errorf("Bytes(-1) = %q", got)
	}
}
