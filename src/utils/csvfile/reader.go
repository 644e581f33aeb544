package csvfile

import (
	"encoding/csv"
	"errors"
	"io"
	"os"

	"github.com/warp-contracts/launchpad/src/utils/logger"
)

// ReadCsv parses a comma separated file whose first row names the columns.
// Each following row becomes a header -> cell mapping.
// Malformed rows are logged and skipped.
func ReadCsv(path string) (records []map[string]string, err error) {
	/* #nosec */
	file, err := os.Open(path)
	if err != nil {
		return
	}
	defer file.Close()

	return Parse(file)
}

func Parse(input io.Reader) (records []map[string]string, err error) {
	log := logger.NewSublogger("csv")

	reader := csv.NewReader(input)
	reader.Comma = ','

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return []map[string]string{}, nil
		}
		return
	}
	// Header length is enforced for every row
	reader.FieldsPerRecord = len(header)

	records = make([]map[string]string, 0)
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				log.WithError(err).WithField("line", parseErr.StartLine).Error("Skipping malformed row")
				continue
			}
			return nil, err
		}

		record := make(map[string]string, len(header))
		for i, name := range header {
			record[name] = row[i]
		}
		records = append(records, record)
	}

	return records, nil
}
