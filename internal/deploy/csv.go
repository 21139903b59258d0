package deploy

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/go-logr/logr"
)

// CSV row layout: "name";"resource pool";"folder";"mac";"post script".
// Only the name is mandatory; empty optional fields fall back to the
// run-wide defaults.
const (
	csvFieldName = iota
	csvFieldResourcePool
	csvFieldFolder
	csvFieldMAC
	csvFieldPostScript
	csvFieldCount
)

// LoadCSV reads the work list from path. Rows without a name are skipped
// with a warning; an unreadable or unparseable file aborts the run.
func LoadCSV(path string, defaults Defaults, log logr.Logger) ([]Spec, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open csv file: %w", err)
	}
	defer f.Close()

	specs, err := ParseCSV(f, defaults, log)
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv file %s: %w", path, err)
	}
	return specs, nil
}

// ParseCSV parses semicolon-delimited, double-quoted clone rows.
func ParseCSV(r io.Reader, defaults Defaults, log logr.Logger) ([]Spec, error) {
	reader := csv.NewReader(r)
	reader.Comma = ';'
	reader.FieldsPerRecord = -1

	var specs []Spec
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(row) == 0 || row[csvFieldName] == "" {
			log.Info("csv row has no clone name, skipping", "row", row)
			continue
		}

		spec := defaults.spec(row[csvFieldName])
		if v := field(row, csvFieldResourcePool); v != "" {
			spec.ResourcePool = v
		}
		if v := field(row, csvFieldFolder); v != "" {
			spec.Folder = v
		}
		if v := field(row, csvFieldMAC); v != "" {
			spec.MAC = v
		}
		if v := field(row, csvFieldPostScript); v != "" {
			spec.PostScript = v
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

func field(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return row[i]
}
