package onebot

import (
	"errors"
	"fmt"
)

var (
	ErrNotConnected   = errors.New("onebot: not connected")
	ErrInvalidGroupID = errors.New("onebot: invalid group id")
	ErrEmptyMessage   = errors.New("onebot: empty message")
	ErrURLRequired    = errors.New("onebot: url is required")
)

// ActionError is a failed action response.
type ActionError struct {
	Action  string
	Status  string
	RetCode int
	Message string
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("onebot: %s failed: status=%s retcode=%d %s", e.Action, e.Status, e.RetCode, e.Message)
}
