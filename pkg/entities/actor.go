package entities

// Actor is the caller of a league operation
type Actor struct {
	ID    string
	Admin bool
}
