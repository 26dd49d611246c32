package importer

// MarkSendError reports that a command's resulting mark could not be
// delivered back to its caller — the caller gave up waiting before the
// worker replied.
type MarkSendError struct{}

func (e *MarkSendError) Error() string { return "importer: cannot send mark back to caller" }

// ClosedError reports a call made to a Supervisor after Close.
type ClosedError struct{}

func (e *ClosedError) Error() string { return "importer: supervisor is closed" }
