package extract

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"domainetl/internal/catalog"
	"domainetl/internal/config"
	"domainetl/internal/table"
)

func extractExcel(ctx context.Context, ds catalog.DataSource) (*table.Frame, error) {
	rc, err := open(ctx, ds)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return ReadExcel(ctx, ds.Domain, rc, ds.Extras)
}

// ReadExcel reads one worksheet of an xlsx workbook into a frame.
//
// Options:
//   - sheet (or sheet_name): worksheet name, default the first sheet
//   - header_row: 1-based row holding the column names, default 1;
//     0 means no header (col_0..col_N)
//   - normalize_headers: snake_case headers with diacritics folded
//   - trim_space: trim cell values, default true
//
// Short rows are padded with empty cells; fully empty rows are dropped.
func ReadExcel(ctx context.Context, domain string, r io.Reader, opts config.Options) (*table.Frame, error) {
	wb, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer wb.Close()

	sheet := opts.String("sheet", opts.String("sheet_name", ""))
	if sheet == "" {
		sheet = wb.GetSheetName(0)
	}
	rows, err := wb.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	headerRow := opts.Int("header_row", 1)
	trim := opts.Bool("trim_space", true)

	var columns []string
	body := rows
	if headerRow > 0 {
		if len(rows) < headerRow {
			return nil, fmt.Errorf("sheet %q has no header row %d", sheet, headerRow)
		}
		columns = normalizeHeaders(rows[headerRow-1], nil, opts.Bool("normalize_headers", false))
		body = rows[headerRow:]
	} else {
		width := 0
		for _, r := range rows {
			if len(r) > width {
				width = len(r)
			}
		}
		columns = syntheticColumns(width)
	}

	f := table.New(domain, columns)
	for _, rec := range body {
		if isBlank(rec) {
			continue
		}
		row := make([]string, len(columns))
		for i := 0; i < len(columns) && i < len(rec); i++ {
			v := rec[i]
			if trim {
				v = strings.TrimSpace(v)
			}
			row[i] = v
		}
		f.Rows = append(f.Rows, row)
	}
	return f, nil
}

func isBlank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
