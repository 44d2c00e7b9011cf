// Package exporter writes transformed demo-board rows to disk.
//
// CSVWriter: Core CSV writing with a declared header, optional UTF-8 BOM for
// Excel compatibility, and atomic replacement through a temporary file so a
// failed write never leaves a partial file behind.
//
// Exporter: Writes the full and summary exports as a pair, each named
// <prefix>_<YYYYMMDD_HHMMSS>.csv. Either both files exist afterwards or
// neither does. When enabled, an additional .xlsx workbook with one sheet per
// export is written after both CSV files.
//
// Example usage:
//
//	exp := exporter.New(settings, exporter.WithLogger(logger))
//	result, err := exp.Export(ctx, fullRows, summaryRows)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(result.FullPath, result.SummaryPath)
package exporter
