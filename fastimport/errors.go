package fastimport

// MissingCommitterError is returned by CommitBuilder.Build when no
// committer identity was set.
type MissingCommitterError struct{}

func (e *MissingCommitterError) Error() string { return "fastimport: a committer must be provided" }

// MissingMessageError is returned by CommitBuilder.Build when no commit
// message was set.
type MissingMessageError struct{}

func (e *MissingMessageError) Error() string {
	return "fastimport: a commit message must be provided"
}

// MarkParsingError reports a mark file whose last non-empty line does not
// match the ":<digits> <sha1>" wire form.
type MarkParsingError struct{ Line string }

func (e *MarkParsingError) Error() string {
	return "fastimport: malformed mark line: " + e.Line
}
