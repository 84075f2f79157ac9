package archive

import (
	"github.com/AyGoub/gramview/internal/analyze"
	"github.com/AyGoub/gramview/internal/session"
)

// Analyze opens the archive at path, normalizes its sources, and
// runs the full inference pipeline. The archive is closed before
// returning; the Result owns all data the caller needs.
func Analyze(
	path string, opts session.Options, tagger session.Tagger,
) (*analyze.Result, error) {
	a, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer a.Close()

	collections, statuses := a.Load()
	themes := a.Topics()

	res, err := analyze.Run(opts, collections, themes, tagger)
	if err != nil {
		return nil, err
	}
	res.Sources = statuses
	return res, nil
}
