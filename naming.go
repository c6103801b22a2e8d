package img2pdf

import (
	"strings"
	"time"

	"github.com/alnah/go-img2pdf/internal/dateutil"
	"github.com/alnah/go-img2pdf/internal/fileutil"
)

// OutputFileName derives the artifact file name from a user-entered base
// name and the submission time: "<base name> <YYYYMMDD>.pdf". Characters
// unsafe in file names are replaced.
//
// The time parameter allows injecting a fixed time for testing.
func OutputFileName(baseName string, t time.Time) string {
	base := fileutil.SafeBaseName(strings.TrimSpace(baseName))

	// CompactDateFormat is a known-good preset; parsing cannot fail.
	layout, _ := dateutil.ParseDateFormat(dateutil.CompactDateFormat)

	return base + " " + t.Format(layout) + ".pdf"
}
