package daemon

import "errors"

var errAlreadyStarted = errors.New("daemon already started")
