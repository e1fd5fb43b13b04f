package pipeline

import (
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Summary records what a pipeline run accomplished.
type Summary struct {
	RunID         string
	StagesRun     []string
	RowsCleaned   int
	ChunkSizes    []int
	FilesMapped   int
	FilesUploaded int
	Started       time.Time
	Finished      time.Time
}

// String renders the summary for the terminal. Counts are grouped with
// locale separators since sensor datasets commonly run to millions of rows.
func (s *Summary) String() string {
	p := message.NewPrinter(language.English)

	var b strings.Builder
	p.Fprintf(&b, "run %s", s.RunID)
	if len(s.StagesRun) == 0 {
		b.WriteString(": no stages completed")
		return b.String()
	}
	p.Fprintf(&b, ": %s", strings.Join(s.StagesRun, ", "))

	for _, stage := range s.StagesRun {
		switch stage {
		case "clean":
			p.Fprintf(&b, "\n  cleaned %d rows", s.RowsCleaned)
		case "split":
			p.Fprintf(&b, "\n  wrote %d chunks", len(s.ChunkSizes))
		case "map":
			p.Fprintf(&b, "\n  mapped %d RDF files", s.FilesMapped)
		case "upload":
			p.Fprintf(&b, "\n  uploaded %d RDF files", s.FilesUploaded)
		}
	}

	if !s.Finished.IsZero() {
		p.Fprintf(&b, "\n  elapsed %s", s.Finished.Sub(s.Started).Round(time.Millisecond))
	}

	return b.String()
}
