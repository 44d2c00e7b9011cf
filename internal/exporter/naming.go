package exporter

import (
	"fmt"
	"time"

	"consensuscli/internal/config"
)

// FileName returns <prefix>_<YYYYMMDD_HHMMSS>.csv for the given instant
func FileName(prefix string, t time.Time) string {
	return stampedName(prefix, t, "csv")
}

// WorkbookName returns <prefix>_<YYYYMMDD_HHMMSS>.xlsx for the given instant
func WorkbookName(prefix string, t time.Time) string {
	return stampedName(prefix, t, "xlsx")
}

func stampedName(prefix string, t time.Time, ext string) string {
	return fmt.Sprintf("%s_%s.%s", prefix, t.Format(config.TimestampLayout), ext)
}
