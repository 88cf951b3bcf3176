package shared

import (
	"bytes"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestSplitKeys(t *testing.T) {
	tc := []struct {
		name   string
		values []string
		want   []string
	}{
		{name: "single value", values: []string{"t1"}, want: []string{"t1"}},
		{name: "comma separated", values: []string{"t1,t2,a3"}, want: []string{"t1", "t2", "a3"}},
		{name: "extra whitespace", values: []string{" t1 ,  t2 "}, want: []string{"t1", "t2"}},
		{name: "multiple arguments", values: []string{"t1", "t2,t3"}, want: []string{"t1", "t2", "t3"}},
		{name: "empty entries dropped", values: []string{"t1,,", ""}, want: []string{"t1"}},
		{name: "nothing", values: nil, want: nil},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitKeys(tt.values...)
			if !slices.Equal(got, tt.want) {
				t.Errorf("SplitKeys() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLogger(t *testing.T) {
	t.Run("writes to the given writer", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf)
		logger.Info("hello", "method", "search")

		if !strings.Contains(buf.String(), "hello") || !strings.Contains(buf.String(), "method=search") {
			t.Errorf("expected log output to contain message and key, got %q", buf.String())
		}
	})

	t.Run("respects level", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf)
		SetLogLevel(logger, log.WarnLevel)
		logger.Info("quiet")

		if buf.Len() != 0 {
			t.Errorf("expected no output below warn level, got %q", buf.String())
		}
	})

	t.Run("file logger appends", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "rdx.log")
		logger, f, err := NewFileLogger(path)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		logger.Info("first")
		f.Close()

		logger, f, err = NewFileLogger(path)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		logger.Info("second")
		f.Close()

		data, _ := os.ReadFile(path)
		content := string(data)
		if !strings.Contains(content, "first") || !strings.Contains(content, "second") {
			t.Errorf("expected both entries in log file, got %q", content)
		}
	})
}

func TestGenerateID(t *testing.T) {
	a, b := GenerateID(), GenerateID()
	if a == b {
		t.Error("expected unique ids")
	}
	if len(a) != 36 {
		t.Errorf("expected uuid string length 36, got %d", len(a))
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		seconds int
		want    string
	}{
		{0, "0:00"},
		{59, "0:59"},
		{180, "3:00"},
		{3725, "1:02:05"},
		{-4, "0:00"},
	}

	for _, tt := range tests {
		if got := FormatDuration(tt.seconds); got != tt.want {
			t.Errorf("FormatDuration(%d) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestMarshalJSON(t *testing.T) {
	v := map[string]int{"length": 2}

	compact, err := MarshalJSON(v, false)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if string(compact) != `{"length":2}` {
		t.Errorf("unexpected compact output %s", compact)
	}

	pretty, _ := MarshalJSON(v, true)
	if string(pretty) != "{\n  \"length\": 2\n}" {
		t.Errorf("unexpected pretty output %s", pretty)
	}
}
