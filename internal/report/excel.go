package report

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

const (
	sheetName     = "devices"
	commentAuthor = "fleetcollector"
)

// ColumnMeta Excel列元数据：宽度与表头批注
type ColumnMeta struct {
	Title   string
	Width   float64
	Comment string
}

// BuildExcel 将CSV报表一次性转换为xlsx
// 表头加粗并填充浅蓝底色，冻结首行，启用自动筛选，纯数字单元格写为数值
func BuildExcel(csvPath, xlsxPath string, meta []ColumnMeta) error {
	reader, err := NewCSVReader(csvPath)
	if err != nil {
		return err
	}
	defer reader.Close()

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Family: "Arial", Size: 10, Bold: true},
		// 204 220 236 浅蓝
		Fill: excelize.Fill{Type: "pattern", Color: []string{"CCDCEC"}, Pattern: 1},
	})
	if err != nil {
		return err
	}
	bodyStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Family: "Arial", Size: 10},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "top", WrapText: true},
	})
	if err != nil {
		return err
	}

	header, err := reader.ReadRow()
	if err != nil {
		return fmt.Errorf("failed to read report header: %w", err)
	}
	if err := writeHeader(f, header, meta, headerStyle); err != nil {
		return err
	}

	rowIndex := 2
	for {
		row, err := reader.ReadRow()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read report row: %w", err)
		}
		if err := writeRow(f, row, rowIndex, bodyStyle); err != nil {
			return err
		}
		rowIndex++
	}

	// 冻结表头行
	if err := f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return err
	}

	lastCell, _ := excelize.CoordinatesToCellName(len(header), rowIndex-1)
	if err := f.AutoFilter(sheetName, "A1:"+lastCell, nil); err != nil {
		return err
	}

	return f.SaveAs(xlsxPath)
}

func writeHeader(f *excelize.File, header []string, meta []ColumnMeta, style int) error {
	for i, title := range header {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStr(sheetName, cell, title); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheetName, cell, cell, style); err != nil {
			return err
		}
		if i >= len(meta) {
			continue
		}
		colName, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if meta[i].Width > 0 {
			if err := f.SetColWidth(sheetName, colName, colName, meta[i].Width); err != nil {
				return err
			}
		}
		if meta[i].Comment != "" {
			if err := f.AddComment(sheetName, excelize.Comment{
				Cell:   cell,
				Author: commentAuthor,
				Paragraph: []excelize.RichTextRun{
					{Text: meta[i].Comment},
				},
			}); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeRow(f *excelize.File, row []string, rowIndex, style int) error {
	for i, value := range row {
		cell, err := excelize.CoordinatesToCellName(i+1, rowIndex)
		if err != nil {
			return err
		}
		// 纯数字写为数值，便于Excel内排序与汇总
		if n, convErr := strconv.Atoi(value); convErr == nil {
			if err := f.SetCellInt(sheetName, cell, n); err != nil {
				return err
			}
		} else {
			// 逗号分隔的列表改为单元格内换行
			if err := f.SetCellStr(sheetName, cell, strings.ReplaceAll(value, ", ", ",\n")); err != nil {
				return err
			}
		}
		if err := f.SetCellStyle(sheetName, cell, cell, style); err != nil {
			return err
		}
	}
	return nil
}
