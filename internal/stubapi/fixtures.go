package stubapi

import "encoding/json"

// DefaultUsers is the user list served when none is configured. It contains
// two mutual pairs, (1,2) and (2,3), a one-way follow, a dangling reference
// and a record without an id.
func DefaultUsers() []json.RawMessage {
	return []json.RawMessage{
		json.RawMessage(`{"id": 1, "name": "Alice", "follows": [2]}`),
		json.RawMessage(`{"id": 2, "name": "Bob", "follows": [1, 3]}`),
		json.RawMessage(`{"id": 3, "name": "Charlie", "follows": [2, 4]}`),
		json.RawMessage(`{"id": 4, "name": "David", "follows": [99]}`),
		json.RawMessage(`{"name": "Nobody", "follows": [1]}`),
	}
}
