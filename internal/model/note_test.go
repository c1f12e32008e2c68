package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChangeRequestEmpty(t *testing.T) {
	assert.True(t, ChangeRequest{}.Empty())
	assert.True(t, ChangeRequest{NotesChecked: []CheckEdit{}, NotesPosition: []PositionEdit{}}.Empty())
	assert.False(t, ChangeRequest{NotesChecked: []CheckEdit{{ID: 1}}}.Empty())
	assert.False(t, ChangeRequest{NotesPosition: []PositionEdit{{ID: 1, FromIndex: 0, ToIndex: 2}}}.Empty())
}

func TestChangeRequestWireNames(t *testing.T) {
	data, err := json.Marshal(ChangeRequest{
		NotesChecked:  []CheckEdit{{ID: 3, IsChecked: true}},
		NotesPosition: []PositionEdit{{ID: 4, FromIndex: 2, ToIndex: 5}},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"notes_checked": [{"id": 3, "isChecked": true}],
		"notes_position": [{"id": 4, "fromIndex": 2, "toIndex": 5}]
	}`, string(data))
}
