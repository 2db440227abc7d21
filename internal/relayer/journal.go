package relayer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// journalState is the two-file submission journal's transition
// sequence (spec §4.4 "Fresh -> Started{next_height} -> Submitted{last_height}").
type journalState struct {
	Kind   string `json:"kind"` // "fresh", "started", "submitted"
	Height int64  `json:"height,omitempty"`
}

const (
	kindFresh     = "fresh"
	kindStarted   = "started"
	kindSubmitted = "submitted"
)

// Journal is the crash-safe, exactly-once submission record: one
// pre-submit file (written before attempting a submission) and one
// post-submit file (written only after the DA layer confirms it),
// both fsync'd on every write (spec §4.4).
type Journal struct {
	preSubmitPath  string
	postSubmitPath string
}

// OpenJournal opens (or creates, as Fresh) the journal pair rooted at dir.
func OpenJournal(dir string) (*Journal, error) {
	j := &Journal{
		preSubmitPath:  filepath.Join(dir, "pre-submit"),
		postSubmitPath: filepath.Join(dir, "post-submit"),
	}
	for _, path := range []string{j.preSubmitPath, j.postSubmitPath} {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := writeStateAtomic(path, journalState{Kind: kindFresh}); err != nil {
				return nil, fmt.Errorf("relayer: journal: initializing %s: %w", path, err)
			}
		}
	}
	return j, nil
}

// NextHeight implements the exactly-once startup rule from spec §4.4:
//
//	(Fresh, _)              => next height = 1
//	(Started{h}, _)         => resume at h (a prior attempt may or may not have landed)
//	(Submitted{h}, _)       => next height = h + 1
//
// Any other combination is a corrupted journal and NextHeight refuses
// to start by returning an error.
func (j *Journal) NextHeight() (int64, error) {
	pre, err := readState(j.preSubmitPath)
	if err != nil {
		return 0, fmt.Errorf("relayer: journal: reading pre-submit: %w", err)
	}
	post, err := readState(j.postSubmitPath)
	if err != nil {
		return 0, fmt.Errorf("relayer: journal: reading post-submit: %w", err)
	}

	// Submitted{h} always wins regardless of what pre-submit holds: a
	// later post-submit record means the corresponding pre-submit
	// attempt landed, so resume strictly after it.
	if post.Kind == kindSubmitted {
		return post.Height + 1, nil
	}

	switch pre.Kind {
	case kindFresh:
		return 1, nil
	case kindStarted:
		// Submission may or may not have landed before the crash; the
		// submitter's IsSubmitted/forward-query disambiguates, so it's
		// always safe to resume at h.
		return pre.Height, nil
	default:
		return 0, fmt.Errorf("relayer: journal: corrupted pre-submit state %q", pre.Kind)
	}
}

// IsSubmitted reports whether height was already recorded as
// submitted by a prior run, letting the submitter skip re-posting a
// height whose Started attempt actually landed before a crash.
func (j *Journal) IsSubmitted(height int64) (bool, error) {
	post, err := readState(j.postSubmitPath)
	if err != nil {
		return false, fmt.Errorf("relayer: journal: reading post-submit: %w", err)
	}
	return post.Kind == kindSubmitted && post.Height >= height, nil
}

// MarkPreSubmit records Started{height} to the pre-submit file,
// fsync'd, before a submission attempt begins.
func (j *Journal) MarkPreSubmit(height int64) error {
	return writeStateAtomic(j.preSubmitPath, journalState{Kind: kindStarted, Height: height})
}

// MarkPostSubmit records Submitted{height} to the post-submit file,
// fsync'd, once the DA layer has confirmed the submission.
func (j *Journal) MarkPostSubmit(height int64) error {
	return writeStateAtomic(j.postSubmitPath, journalState{Kind: kindSubmitted, Height: height})
}

// writeStateAtomic writes state to path via a temp file, fsync, then
// atomic rename, so a crash mid-write never leaves a half-written
// journal record (spec §8 "Journal files ... atomically renamed after write").
func writeStateAtomic(path string, state journalState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("relayer: journal: marshal: %w", err)
	}

	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("relayer: journal: open temp file: %w", err)
	}
	if _, err := f.Write(raw); err != nil {
		f.Close()
		return fmt.Errorf("relayer: journal: write: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("relayer: journal: fsync: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("relayer: journal: close: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("relayer: journal: rename: %w", err)
	}
	return nil
}

func readState(path string) (journalState, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return journalState{}, err
	}
	var s journalState
	if err := json.Unmarshal(raw, &s); err != nil {
		return journalState{}, fmt.Errorf("corrupted journal file %s: %w", path, err)
	}
	return s, nil
}
