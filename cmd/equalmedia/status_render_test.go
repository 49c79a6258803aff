package main

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"equalmedia/internal/document"
	"equalmedia/internal/preflight"
)

func TestRenderStatusLineNoColor(t *testing.T) {
	got := renderStatusLine("Sandbox", statusError, "Not running", false)
	want := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, "Sandbox:", "[ERROR] Not running")
	if got != want {
		t.Fatalf("renderStatusLine mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestRenderStatusLineWithColor(t *testing.T) {
	got := renderStatusLine("Sandbox", statusOK, "Running", true)
	if !strings.HasPrefix(got, ansiGreen) {
		t.Fatalf("expected green prefix, got %q", got)
	}
	if !strings.HasSuffix(got, ansiReset) {
		t.Fatalf("expected reset suffix, got %q", got)
	}
}

func TestCheckLineUsesFailKind(t *testing.T) {
	failed := preflight.Result{Name: "Sandbox", Detail: "Not running"}
	if got := checkLine(failed, statusWarn, false); !strings.Contains(got, "[WARN] Not running") {
		t.Fatalf("unexpected line %q", got)
	}
	passed := preflight.Result{Name: "Sandbox", Passed: true, Detail: "Running"}
	if got := checkLine(passed, statusError, false); !strings.Contains(got, "[OK] Running") {
		t.Fatalf("unexpected line %q", got)
	}
}

func TestShouldColorizeFalseForBuffers(t *testing.T) {
	if shouldColorize(&bytes.Buffer{}) {
		t.Fatal("buffers are never terminals")
	}
}

func TestPrintSummaryListsFailures(t *testing.T) {
	var buf bytes.Buffer
	printSummary(&buf, "captions", &document.InsertSummary{
		Requested: 3,
		Inserted:  2,
		Failures:  []document.Failure{{Index: 1, Element: "caption", Message: "boom"}},
	})
	out := buf.String()
	if !strings.Contains(out, "Inserted 2/3 captions") || !strings.Contains(out, "boom") {
		t.Fatalf("unexpected summary:\n%s", out)
	}
	buf.Reset()
	printSummary(&buf, "captions", nil)
	if buf.Len() != 0 {
		t.Fatal("nil summary should print nothing")
	}
}

func TestWriteYAMLUsesJSONFieldNames(t *testing.T) {
	cmd := &cobra.Command{}
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	if err := writeYAML(cmd, document.InsertSummary{Requested: 1, Inserted: 1}); err != nil {
		t.Fatalf("writeYAML: %v", err)
	}
	if !strings.Contains(buf.String(), "requested: 1") {
		t.Fatalf("unexpected yaml:\n%s", buf.String())
	}
}

func TestElementRowsShortensIDs(t *testing.T) {
	rows := elementRows([]document.Element{{
		ID:     "0123456789abcdef",
		Kind:   document.KindRectangle,
		X:      10,
		Y:      20,
		Width:  240,
		Height: 180,
		Fill:   &document.Color{Red: 0.32, Green: 0.34, Blue: 0.89, Alpha: 1},
	}})
	want := []string{"01234567", "rectangle", "10,20", "240x180", "0.32,0.34,0.89", ""}
	if strings.Join(rows[0], "|") != strings.Join(want, "|") {
		t.Fatalf("rows = %v, want %v", rows[0], want)
	}
}
