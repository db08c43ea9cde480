package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/jonathan/docstudio/internal/tabular"
	"github.com/jonathan/docstudio/internal/types"
)

// SheetName is the single worksheet of exported workbooks.
const SheetName = "Sheet1"

// MalformedSpreadsheetMessage prefixes errors for content that is not a non-empty array of row objects.
const MalformedSpreadsheetMessage = "Failed to process data for Excel. The AI may have returned an invalid format. Details"

// XLSXEncoder writes tabular content into a one-sheet workbook: a header row followed by data rows.
type XLSXEncoder struct {
	opts Options
}

func (e *XLSXEncoder) Format() types.OutputKind {
	return types.KindXLSX
}

func (e *XLSXEncoder) Encode(ctx context.Context, content string, _ types.CustomizationBundle) (*Artifact, error) {
	table, err := tabular.Parse(content)
	if err != nil {
		return nil, &EncodeError{Format: types.KindXLSX, Message: MalformedSpreadsheetMessage, Cause: err}
	}
	if err := ctx.Err(); err != nil {
		return nil, &EncodeError{Format: types.KindXLSX, Message: "export cancelled", Cause: err}
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			e.opts.Logger.Warn("failed to close workbook", "error", err)
		}
	}()

	if err := writeTable(f, table); err != nil {
		return nil, &EncodeError{Format: types.KindXLSX, Message: "failed to write worksheet", Cause: err}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, &EncodeError{Format: types.KindXLSX, Message: "failed to write workbook", Cause: err}
	}

	return &Artifact{
		Filename:    DefaultFilename(types.KindXLSX),
		ContentType: ContentTypeXLSX,
		Data:        buf.Bytes(),
	}, nil
}

func writeTable(f *excelize.File, table *tabular.Table) error {
	header := make([]interface{}, len(table.Headers))
	for i, h := range table.Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return err
	}

	for i := range table.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := table.TypedRow(i)
		values := make([]interface{}, len(row))
		copy(values, row)
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return err
		}
	}

	if len(table.Headers) > 0 {
		last, err := excelize.ColumnNumberToName(len(table.Headers))
		if err != nil {
			return err
		}
		if err := f.SetColWidth(SheetName, "A", last, 18); err != nil {
			return err
		}
	}

	return f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

// DecodeSpreadsheet reads the first sheet of a workbook back into rows keyed by the header row.
// Cells come back as display strings.
func DecodeSpreadsheet(data []byte) ([]types.TabularRow, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	headers := rows[0]
	result := make([]types.TabularRow, 0, len(rows)-1)
	for _, values := range rows[1:] {
		row := make(types.TabularRow, len(headers))
		for i, h := range headers {
			value := ""
			if i < len(values) {
				value = values[i]
			}
			row[i] = types.Cell{Column: h, Value: value}
		}
		result = append(result, row)
	}
	return result, nil
}
