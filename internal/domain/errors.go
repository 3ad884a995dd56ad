package domain

import "errors"

var (
	// ErrFetchFailed is returned when the question list could not be retrieved.
	ErrFetchFailed = errors.New("question fetch failed")
	// ErrNoQuestions is returned when the quiz API answered with an empty list.
	ErrNoQuestions = errors.New("no questions returned")
	// ErrSessionActive is returned when starting while a session is already running.
	ErrSessionActive = errors.New("quiz session already active")
	// ErrStartAborted is returned when the session was restarted while questions were loading.
	ErrStartAborted = errors.New("quiz start aborted")
	// ErrNoSession is returned by operations that need a running session.
	ErrNoSession = errors.New("no active quiz session")
	// ErrRoomNotFound indicates the room endpoint does not know the code.
	ErrRoomNotFound = errors.New("room not found")
	// ErrFacitNotFound indicates an archived facit ID is unknown.
	ErrFacitNotFound = errors.New("facit not found")
)
