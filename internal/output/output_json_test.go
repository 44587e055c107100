package output

import (
	"bufio"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/tkjaer/rtlookup/internal/shared"
)

func TestNewJSONOutput_Stdout(t *testing.T) {
	output, err := NewJSONOutput("")
	if err != nil {
		t.Fatalf("NewJSONOutput() error = %v", err)
	}
	defer output.Close()

	if !output.toStdout {
		t.Error("NewJSONOutput(\"\") should output to stdout")
	}
	if output.file != os.Stdout {
		t.Error("NewJSONOutput(\"\") file should be os.Stdout")
	}
}

func TestJSONOutput_CompleteLookup(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "lookups.json")

	output, err := NewJSONOutput(filename)
	if err != nil {
		t.Fatalf("NewJSONOutput() error = %v", err)
	}
	if output.toStdout {
		t.Error("NewJSONOutput() with filename should not output to stdout")
	}

	output.CompleteLookup(&shared.LookupRecord{
		Destination:    "10.1.2.3",
		DestinationIP:  "10.1.2.3",
		MatchedNetwork: "10.1.0.0",
		PrefixLen:      16,
		Interface:      2,
		Matched:        true,
		Engine:         "trie",
	})
	output.CompleteLookup(&shared.LookupRecord{
		Destination:    "192.168.1.1",
		DestinationIP:  "192.168.1.1",
		MatchedNetwork: "0.0.0.0",
	})
	if err := output.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	f, err := os.Open(filename)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer f.Close()

	var records []shared.LookupRecord
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var rec shared.LookupRecord
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			t.Fatalf("json.Unmarshal() error = %v", err)
		}
		records = append(records, rec)
	}

	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}
	if records[0].PrefixLen != 16 || records[0].Interface != 2 || !records[0].Matched {
		t.Errorf("first record = %+v, want /16 via 2 matched", records[0])
	}
	if records[1].Matched {
		t.Error("second record should not be matched")
	}
}

func TestJSONOutput_Close_File(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "close.json")

	output, err := NewJSONOutput(filename)
	if err != nil {
		t.Fatalf("NewJSONOutput() error = %v", err)
	}
	if err := output.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}

	// File should be closed, writing should fail
	if _, err := output.file.Write([]byte("test")); err == nil {
		t.Error("Writing to closed file should error")
	}
}

func TestNewJSONOutput_BadPath(t *testing.T) {
	if _, err := NewJSONOutput(filepath.Join(t.TempDir(), "missing", "out.json")); err == nil {
		t.Error("NewJSONOutput() expected error for missing directory, got nil")
	}
}

func TestJSONOutput_WriteErrorReturnedOnClose(t *testing.T) {
	output, err := NewJSONOutput(filepath.Join(t.TempDir(), "lookups.json"))
	if err != nil {
		t.Fatalf("NewJSONOutput() error = %v", err)
	}
	// every following write fails
	if err := output.file.Close(); err != nil {
		t.Fatalf("file.Close() error = %v", err)
	}

	output.CompleteLookup(&shared.LookupRecord{Destination: "10.1.2.3"})
	output.CompleteLookup(&shared.LookupRecord{Destination: "10.1.2.4"})

	if err := output.Close(); !errors.Is(err, os.ErrClosed) {
		t.Errorf("Close() error = %v, want %v", err, os.ErrClosed)
	}
}
