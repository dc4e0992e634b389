package report

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/natefinch/atomic"

	"github.com/starford/dotlint/internal/models"
)

// WriteJSON writes rep to path as indented JSON. Readers never observe a
// partially written file.
func WriteJSON(path string, rep *models.Report) error {
	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return fmt.Errorf("report: marshal: %w", err)
	}
	data = append(data, '\n')
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("report: write %s: %w", path, err)
	}
	return nil
}
