package tui

import "github.com/parleyhq/go-parley/internal/parley"

// TranscriptsScannedMsg is sent when the picker's directory scan
// finishes.
type TranscriptsScannedMsg struct {
	Metas []parley.TranscriptMeta
	Err   error
}

// PickerResult is emitted by the transcript picker. With Cancelled set
// the user backed out; otherwise Selected names the transcript to open.
type PickerResult struct {
	Selected  *parley.TranscriptMeta
	Cancelled bool
}
