/*
Copyright © 2025 the GoTAP authors.
This file is part of GoTAP.

GoTAP is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

GoTAP is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with GoTAP.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package table handles the tabular data of the production chain: station
// metadata tables and job result tables, moved between dataframes, CSV
// files and Excel workbooks.
package table

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-gota/gota/dataframe"
	"github.com/sirupsen/logrus"
	"github.com/tealeg/xlsx"
	"gonum.org/v1/gonum/mat"
)

// Logger is used for progress and warning messages. Jobs that set up a
// shared log file replace it with their own logger.
var Logger logrus.FieldLogger = logrus.StandardLogger()

// LoadCSV reads the CSV file at path into a dataframe. The first line is
// taken as the header.
func LoadCSV(path string) (dataframe.DataFrame, error) {
	f, err := os.Open(path)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("table: opening %s: %v", path, err)
	}
	defer f.Close()
	df := dataframe.ReadCSV(f)
	if df.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("table: parsing %s: %v", path, df.Err)
	}
	Logger.Infof("table: loaded %d rows from %s", df.Nrow(), path)
	return df, nil
}

// SaveCSV writes df to a CSV file at path, creating the parent directory
// if needed.
func SaveCSV(df dataframe.DataFrame, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("table: creating directory for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("table: creating %s: %v", path, err)
	}
	defer f.Close()
	if err := df.WriteCSV(f); err != nil {
		return fmt.Errorf("table: writing %s: %v", path, err)
	}
	Logger.Infof("table: saved %d rows to %s", df.Nrow(), path)
	return nil
}

// SelectExisting returns df restricted to the desired columns that
// actually exist, logging a warning naming any that do not. It fails only
// when none of the desired columns are present.
func SelectExisting(df dataframe.DataFrame, desired []string) (dataframe.DataFrame, error) {
	have := make(map[string]bool)
	for _, name := range df.Names() {
		have[name] = true
	}
	var existing, missing []string
	for _, name := range desired {
		if have[name] {
			existing = append(existing, name)
		} else {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		Logger.Warnf("table: columns not found and skipped: %v", missing)
	}
	if len(existing) == 0 {
		return dataframe.DataFrame{}, fmt.Errorf("table: none of the desired columns %v exist", desired)
	}
	out := df.Select(existing)
	if out.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("table: selecting columns: %v", out.Err)
	}
	return out, nil
}

// SaveExcel writes df to sheet sheetName of a new Excel workbook at path,
// header row included. Numeric-looking cells are written as numbers so
// the workbook is usable for arithmetic without re-typing.
func SaveExcel(df dataframe.DataFrame, path, sheetName string) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet(sheetName)
	if err != nil {
		return fmt.Errorf("table: adding sheet %s: %v", sheetName, err)
	}
	for i, record := range df.Records() {
		row := sheet.AddRow()
		for _, value := range record {
			cell := row.AddCell()
			if i == 0 {
				cell.SetString(value)
				continue
			}
			if v, err := strconv.ParseFloat(value, 64); err == nil {
				cell.SetFloat(v)
			} else {
				cell.SetString(value)
			}
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("table: creating directory for %s: %v", path, err)
	}
	if err := f.Save(path); err != nil {
		return fmt.Errorf("table: saving workbook %s: %v", path, err)
	}
	Logger.Infof("table: saved %d rows to %s (sheet %s)", df.Nrow(), path, sheetName)
	return nil
}

// LoadExcel reads sheet sheetName of the workbook at path into a
// dataframe, taking the first row as the header.
func LoadExcel(path, sheetName string) (dataframe.DataFrame, error) {
	f, err := openWorkbook(path)
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	sheet, ok := f.Sheet[sheetName]
	if !ok {
		return dataframe.DataFrame{}, fmt.Errorf("table: workbook %s has no sheet %s", path, sheetName)
	}
	var records [][]string
	for _, row := range sheet.Rows {
		var record []string
		for _, cell := range row.Cells {
			record = append(record, cell.Value)
		}
		if len(record) > 0 {
			records = append(records, record)
		}
	}
	if len(records) == 0 {
		return dataframe.DataFrame{}, fmt.Errorf("table: sheet %s of %s is empty", sheetName, path)
	}
	df := dataframe.LoadRecords(records)
	if df.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("table: reading sheet %s of %s: %v", sheetName, path, df.Err)
	}
	return df, nil
}

// MatrixFromExcel creates a matrix from the data in the workbook at
// fileName, on the sheet with the given name, starting at
// [startRow, startCol] (inclusive) and ending at [endRow, endCol]
// (exclusive). Empty cells become zeros.
func MatrixFromExcel(fileName, sheetName string, startRow, endRow, startCol, endCol int) (*mat.Dense, error) {
	f, err := openWorkbook(fileName)
	if err != nil {
		return nil, err
	}
	sheet, ok := f.Sheet[sheetName]
	if !ok {
		return nil, fmt.Errorf("table: workbook %s has no sheet %s", fileName, sheetName)
	}
	o := mat.NewDense(endRow-startRow, endCol-startCol, nil)
	for j := startRow; j < endRow; j++ {
		for i := startCol; i < endCol; i++ {
			v := sheet.Cell(j, i).Value
			if v == "" {
				continue
			}
			val, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, fmt.Errorf("table: cell [%d,%d] of %s is not a number: %v", j, i, fileName, err)
			}
			o.Set(j-startRow, i-startCol, val)
		}
	}
	return o, nil
}
