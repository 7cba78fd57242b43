package staging

import "errors"

// Session errors
var (
	ErrBusy          = errors.New("an import or save is already in progress")
	ErrSessionClosed = errors.New("session is closed")
	ErrNothingStaged = errors.New("no participants are staged")
	ErrNotStaged     = errors.New("participant is not staged")
	ErrNotFound      = errors.New("participant is not in the list")
	ErrNotPersisted  = errors.New("participant has not been saved yet; reload the list to delete it")
	ErrSaveRejected  = errors.New("failed to save participants")
)

const importFailure = "failed to import participants"

// ValidationError is a client-side rejection made before any service call.
// The session state is unchanged when it is returned.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// message returns err's text, or fallback when err carries none.
func message(err error, fallback string) string {
	if err == nil || err.Error() == "" {
		return fallback
	}
	return err.Error()
}
