package parser

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/runningman84/zfs-list-tree/pkg/models"
)

// FieldDelimiter separates fields in zfs list -H output
const FieldDelimiter = "\t"

// ErrMalformedRecord is matched by every record-level parse failure
var ErrMalformedRecord = errors.New("malformed record")

// MalformedRecordError reports a line that does not fit the schema
type MalformedRecordError struct {
	Line     int
	Got      int
	Want     int
	Property string // set when a single field could not be interpreted
	Value    string
}

func (e *MalformedRecordError) Error() string {
	if e.Property != "" {
		return fmt.Sprintf("malformed record on line %d: invalid %s value %q", e.Line, e.Property, e.Value)
	}
	return fmt.Sprintf("malformed record on line %d: got %d fields, want %d", e.Line, e.Got, e.Want)
}

// Is makes errors.Is(err, ErrMalformedRecord) hold
func (e *MalformedRecordError) Is(target error) bool {
	return target == ErrMalformedRecord
}

// SplitLines splits command output into lines
func SplitLines(output []byte) []string {
	lines := strings.Split(string(output), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

// ParseRecords splits each non-empty line on tabs. The schema must include
// the trailing type property; every line has to carry exactly one field per
// schema entry. Empty lines are skipped. No records are returned on error.
func ParseRecords(lines []string, schema []string) ([]models.RawRecord, error) {
	records := make([]models.RawRecord, 0, len(lines))
	for i, line := range lines {
		if line == "" {
			continue
		}

		fields := strings.Split(line, FieldDelimiter)
		if len(fields) != len(schema) {
			return nil, &MalformedRecordError{
				Line: i + 1,
				Got:  len(fields),
				Want: len(schema),
			}
		}

		records = append(records, models.RawRecord{
			Line:   i + 1,
			Fields: fields,
		})
	}
	return records, nil
}

// VersionInfo holds ZFS version information
type VersionInfo struct {
	Userland string `json:"userland"`
	Kernel   string `json:"kernel"`
}

// VersionOutput is the complete zfs version -j output
type VersionOutput struct {
	ZFSVersion VersionInfo `json:"zfs_version"`
}

// ParseVersionJSON parses zfs version -j output
func ParseVersionJSON(data []byte) (VersionInfo, error) {
	var output VersionOutput
	if err := json.Unmarshal(data, &output); err != nil {
		return VersionInfo{}, fmt.Errorf("failed to parse JSON: %w", err)
	}
	return output.ZFSVersion, nil
}
