package api

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type ExportFormat string

const (
	ExportPDF   ExportFormat = "pdf"
	ExportExcel ExportFormat = "excel"
	ExportCSV   ExportFormat = "csv"
)

var ExportFormats = []ExportFormat{ExportPDF, ExportExcel, ExportCSV}

func ParseExportFormat(s string) (ExportFormat, error) {
	switch f := ExportFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case ExportPDF, ExportExcel, ExportCSV:
		return f, nil
	case "xlsx":
		return ExportExcel, nil
	}
	return "", fmt.Errorf("unknown export format %q, expected one of pdf, excel, csv", s)
}

// Extension is the file extension used for a downloaded export.
func (f ExportFormat) Extension() string {
	if f == ExportExcel {
		return "xlsx"
	}
	return string(f)
}

// Export resources accepted by Client.Export.
const (
	ExportCustomers       = "customer"
	ExportProducts        = "products"
	ExportProductInsights = "Analytics/product-insights"
	ExportInventory       = "Analytics/inventory"
)

// exportNames overrides the file name of resources whose path is singular.
var exportNames = map[string]string{
	ExportCustomers: "customers",
}

// ExportFilename returns "<resource>-<timestamp>.<ext>", with the timestamp
// in the ISO 8601 basic format, which has no colons. The resource path is
// flattened so the name is safe to use as a file name.
func ExportFilename(resource string, format ExportFormat, now time.Time) string {
	name, ok := exportNames[resource]
	if !ok {
		name = strings.ToLower(strings.ReplaceAll(strings.Trim(resource, "/"), "/", "-"))
	}
	stamp := now.UTC().Format("20060102T150405Z")
	return fmt.Sprintf("%s-%s.%s", name, stamp, format.Extension())
}

// Export downloads a rendered export of a resource. The body carries the
// page and the non-empty fields of filter, the same shape as the list query.
//
// With ExportQuirkFixedPaging set, pdf and excel exports are sent with
// pageNumber=1 and pageSize=1. Some deployments of the backend expect that
// for those formats; it is not a paging contract and stays off by default.
func (c Client) Export(ctx context.Context, resource string, format ExportFormat, page PageRequest, filter any) ([]byte, error) {
	if c.ExportQuirkFixedPaging && format != ExportCSV {
		page = PageRequest{PageNumber: 1, PageSize: 1}
	}

	body, err := mergeBody(page, filter)
	if err != nil {
		return nil, err
	}

	path := fmt.Sprintf("/%s/export/%s", strings.Trim(resource, "/"), format)
	return download(ctx, c, path, &body, "Failed to export "+string(format))
}

// mergeBody flattens parts into a single JSON object. Later parts win on
// duplicate keys.
func mergeBody(parts ...any) (map[string]json.RawMessage, error) {
	out := map[string]json.RawMessage{}
	for _, part := range parts {
		if part == nil {
			continue
		}
		b, err := json.Marshal(part)
		if err != nil {
			return nil, fmt.Errorf("marshal json: %w", err)
		}
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(b, &fields); err != nil {
			return nil, fmt.Errorf("export filter must be an object: %w", err)
		}
		for k, v := range fields {
			out[k] = v
		}
	}
	return out, nil
}
