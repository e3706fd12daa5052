// Package leadfile reads raw leads from CSV and XLSX files, locally or over
// FTP, and cleans them for the pipeline.
package leadfile

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leadscout/internal/model"
)

// Options configures lead file reading.
type Options struct {
	// Delimiter is the CSV field separator. Zero means comma.
	Delimiter rune
	// Limit caps how many leads are returned. Zero means no cap.
	Limit int
}

// Read loads leads from path. An ftp:// path is downloaded first; the format
// is chosen by file extension, defaulting to CSV. Rows are cleaned and
// deduplicated before being returned.
func Read(ctx context.Context, path string, opts Options) ([]model.RawLead, error) {
	localPath := path
	if strings.HasPrefix(path, "ftp://") {
		downloaded, cleanup, err := downloadFTP(ctx, path)
		if err != nil {
			return nil, err
		}
		defer cleanup()
		localPath = downloaded
	}

	var (
		leads []model.RawLead
		err   error
	)
	switch strings.ToLower(filepath.Ext(localPath)) {
	case ".xlsx":
		leads, err = readXLSX(localPath)
	default:
		f, openErr := os.Open(localPath)
		if openErr != nil {
			return nil, eris.Wrapf(openErr, "leadfile: open %s", localPath)
		}
		defer f.Close()
		leads, err = readCSV(f, opts.Delimiter)
	}
	if err != nil {
		return nil, err
	}

	leads = Clean(leads)
	if opts.Limit > 0 && len(leads) > opts.Limit {
		leads = leads[:opts.Limit]
	}
	return leads, nil
}

// fieldAliases maps normalized column headers to RawLead fields. Unknown
// columns land in Extra.
var fieldAliases = map[string]string{
	"username":          "username",
	"user":              "username",
	"handle":            "username",
	"name":              "name",
	"full_name":         "name",
	"fullname":          "name",
	"bio":               "bio",
	"biography":         "bio",
	"description":       "bio",
	"category":          "category",
	"business_category": "category",
	"website":           "website",
	"url":               "website",
	"external_url":      "website",
	"address":           "address",
	"street_address":    "address",
	"location":          "location",
	"city":              "location",
}

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.ReplaceAll(h, " ", "_")
}

// leadFromRow maps one data row onto a RawLead using the header row. Short
// rows are padded, long rows keep their overflow in Extra by column index.
func leadFromRow(headers, row []string) model.RawLead {
	var lead model.RawLead
	for i, header := range headers {
		var value string
		if i < len(row) {
			value = strings.TrimSpace(row[i])
		}
		if value == "" {
			continue
		}
		switch fieldAliases[normalizeHeader(header)] {
		case "username":
			lead.Username = value
		case "name":
			lead.Name = value
		case "bio":
			lead.Bio = value
		case "category":
			lead.Category = value
		case "website":
			lead.Website = value
		case "address":
			lead.Address = value
		case "location":
			lead.Location = value
		default:
			if lead.Extra == nil {
				lead.Extra = make(map[string]string)
			}
			lead.Extra[normalizeHeader(header)] = value
		}
	}
	return lead
}
