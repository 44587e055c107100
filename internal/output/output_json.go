package output

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/tkjaer/rtlookup/internal/shared"
)

// JSONOutput writes one JSON object per lookup to a file or stdout
type JSONOutput struct {
	mu       sync.Mutex
	file     *os.File
	enc      *json.Encoder
	toStdout bool
	err      error // first write error, returned by Close
}

func NewJSONOutput(filename string) (*JSONOutput, error) {
	if filename == "" {
		return &JSONOutput{
			file:     os.Stdout,
			enc:      json.NewEncoder(os.Stdout),
			toStdout: true,
		}, nil
	}
	f, err := os.Create(filename)
	if err != nil {
		return nil, err
	}
	return &JSONOutput{
		file: f,
		enc:  json.NewEncoder(f),
	}, nil
}

func (j *JSONOutput) CompleteLookup(rec *shared.LookupRecord) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.err != nil {
		return
	}
	if err := j.enc.Encode(rec); err != nil {
		j.err = fmt.Errorf("failed to write JSON record: %w", err)
		slog.Error("JSON output failed, further records are dropped", "file", j.file.Name(), "error", err)
	}
}

// Close closes the output file and reports the first write error, if any.
func (j *JSONOutput) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.toStdout {
		return j.err
	}
	return errors.Join(j.err, j.file.Close())
}
