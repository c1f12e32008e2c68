package model

// PageSize is the number of notes the server returns per page.
// A shorter page means the collection is exhausted.
const PageSize = 20

// Note is the domain model for a listed entry.
type Note struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	IsChecked bool   `json:"isChecked"`
}

// CheckEdit records one checkbox toggle awaiting server confirmation.
type CheckEdit struct {
	ID        int64 `json:"id"`
	IsChecked bool  `json:"isChecked"`
}

// PositionEdit records one completed move of a note within the list.
type PositionEdit struct {
	ID        int64 `json:"id"`
	FromIndex int   `json:"fromIndex"`
	ToIndex   int   `json:"toIndex"`
}

// NotesPage is the body of the listing and search endpoints.
type NotesPage struct {
	Notes []Note `json:"notes"`
}

// ChangeRequest is the body of POST /change-notes.
type ChangeRequest struct {
	NotesChecked  []CheckEdit    `json:"notes_checked"`
	NotesPosition []PositionEdit `json:"notes_position"`
}

// ChangeResponse is the server's reply to a ChangeRequest.
type ChangeResponse struct {
	Message string `json:"message"`
}

// MessageOK is the only ChangeResponse message that confirms a flush.
const MessageOK = "OK"

// Empty reports whether the request carries no edits.
func (r ChangeRequest) Empty() bool {
	return len(r.NotesChecked) == 0 && len(r.NotesPosition) == 0
}
