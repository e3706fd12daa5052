package leadfile

import (
	"encoding/csv"
	"io"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leadscout/internal/model"
)

// readCSV parses leads from CSV. The first row is the header; field order is
// free. LazyQuotes tolerates the unescaped quotes common in exported bios.
func readCSV(r io.Reader, delimiter rune) ([]model.RawLead, error) {
	reader := csv.NewReader(r)
	if delimiter != 0 {
		reader.Comma = delimiter
	}
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err == io.EOF {
		return nil, eris.New("leadfile: empty file")
	}
	if err != nil {
		return nil, eris.Wrap(err, "leadfile: read header")
	}

	var leads []model.RawLead
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "leadfile: read row")
		}
		leads = append(leads, leadFromRow(headers, row))
	}
	return leads, nil
}
