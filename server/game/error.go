package game

// gameWarning is an error that is caused by a user.  It is reported back to the user's socket instead of being logged.
type gameWarning string

func (w gameWarning) Error() string {
	return string(w)
}
