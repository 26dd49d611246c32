package state

import "github.com/h2non/filetype"

// ClassifyContent reports whether content looks like a binary format
// (image, video, archive, audio, or document) despite being checked in
// under an RCS expand mode that implies text (kv/kvl). CVS has no reliable
// binary flag short of `-kb`, so it's common for binary files to be
// committed without it; this exists purely so the walker can log a warning
// when that happens, not to change how the content is stored.
func ClassifyContent(data []byte) (looksBinary bool, kind string) {
	head := data
	if len(head) > 261 {
		head = head[:261]
	}
	if filetype.IsImage(head) || filetype.IsVideo(head) || filetype.IsArchive(head) || filetype.IsAudio(head) {
		match, _ := filetype.Match(head)
		return true, match.Extension
	}
	if filetype.IsDocument(head) {
		match, _ := filetype.Match(head)
		return true, match.Extension
	}
	return false, ""
}
