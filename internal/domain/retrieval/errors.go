package retrieval

import (
	"errors"
	"fmt"
)

var (
	// ErrCorpusLoad is matched by every *CorpusLoadError.
	ErrCorpusLoad = errors.New("corpus load failed")

	// ErrIndexBuild is matched by every *IndexBuildError.
	ErrIndexBuild = errors.New("index build failed")
)

// CorpusLoadError reports a corpus that could not be turned into entries.
// Row is the 0-based data row, or -1 when the failure is not tied to a row.
type CorpusLoadError struct {
	Source string
	Row    int
	Err    error
}

func (e *CorpusLoadError) Error() string {
	if e.Row >= 0 {
		return fmt.Sprintf("corpus %q row %d: %v", e.Source, e.Row, e.Err)
	}
	return fmt.Sprintf("corpus %q: %v", e.Source, e.Err)
}

func (e *CorpusLoadError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrCorpusLoad) match without wrapping the sentinel.
func (e *CorpusLoadError) Is(target error) bool { return target == ErrCorpusLoad }

// IndexBuildError reports a corpus that loaded but cannot be indexed,
// e.g. because it yields an empty vocabulary.
type IndexBuildError struct {
	Reason string
}

func (e *IndexBuildError) Error() string { return "index build: " + e.Reason }

func (e *IndexBuildError) Is(target error) bool { return target == ErrIndexBuild }
