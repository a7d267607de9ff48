package logtail

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestRead(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "test.log")

	var content strings.Builder
	var expectedAll []string
	for i := 1; i <= 10; i++ {
		line := fmt.Sprintf("Line %d", i)
		content.WriteString(line + "\n")
		expectedAll = append(expectedAll, line)
	}
	if err := os.WriteFile(logPath, []byte(content.String()), 0o644); err != nil {
		t.Fatalf("failed to create test log file: %v", err)
	}

	tests := []struct {
		name     string
		maxLines int
		expected []string
	}{
		{"read all (0)", 0, expectedAll},
		{"read all (negative)", -1, expectedAll},
		{"read partial (5)", 5, expectedAll[5:]},
		{"read exactly all (10)", 10, expectedAll},
		{"read more than exists (20)", 20, expectedAll},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Read(logPath, tt.maxLines)
			if err != nil {
				t.Fatalf("Read() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Read() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestRead_MissingFileIsEmpty(t *testing.T) {
	got, err := Read(filepath.Join(t.TempDir(), "nope.log"), 10)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("Read() = %v, want no lines", got)
	}
}

func TestParse_ZapLine(t *testing.T) {
	line := `{"level":"warn","ts":1760000000.5,"caller":"state/store.go:140","msg":"fetch products failed","service":"shelf","category":"jewelery","error":"catalog bad status: returned status 500","attempt":2}`

	e := Parse(line)
	if e.Raw != "" {
		t.Fatalf("Raw = %q, want empty", e.Raw)
	}
	if e.Level != "warn" || e.Message != "fetch products failed" {
		t.Fatalf("Parse = %+v", e)
	}
	if want := time.Unix(1760000000, 500_000_000); !e.Time.Equal(want) {
		t.Fatalf("Time = %v, want %v", e.Time, want)
	}
	if _, ok := e.Fields["service"]; ok {
		t.Fatalf("standard key service leaked into Fields")
	}
	want := `attempt=2 category=jewelery error=catalog bad status: returned status 500`
	if got := e.FieldString(); got != want {
		t.Fatalf("FieldString = %q, want %q", got, want)
	}
}

func TestParse_PlainLine(t *testing.T) {
	e := Parse("panic: something broke")
	if e.Raw != "panic: something broke" {
		t.Fatalf("Raw = %q", e.Raw)
	}
	if got := e.String(); got != "panic: something broke" {
		t.Fatalf("String = %q", got)
	}
}

func TestEntryString(t *testing.T) {
	e := Entry{Level: "info", Message: "shelf starting", Fields: map[string]string{"category": ""}}
	if got := e.String(); got != "INFO shelf starting category=" {
		t.Fatalf("String = %q", got)
	}
}

func TestTail_SkipsBlankLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shelf.log")
	body := `{"level":"info","msg":"one"}` + "\n\n" + `{"level":"error","msg":"two"}` + "\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	entries, err := Tail(path, 10)
	if err != nil {
		t.Fatalf("Tail() error = %v", err)
	}
	if len(entries) != 2 || entries[0].Message != "one" || entries[1].Level != "error" {
		t.Fatalf("Tail() = %+v", entries)
	}
}
