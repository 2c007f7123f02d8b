package delivery

import (
	"encoding/json"
	"fmt"

	"github.com/phrazzld/mutuals/internal/domain"
)

// Outcome is the body delivered to the webhook.
type Outcome struct {
	RegNo   string           `json:"regNo"`
	Outcome domain.ResultSet `json:"outcome"`
}

// EncodeOutcome serializes the result for delivery. An empty result is
// encoded as "outcome": [].
func EncodeOutcome(regNo string, result domain.ResultSet) ([]byte, error) {
	data, err := json.Marshal(Outcome{RegNo: regNo, Outcome: result})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal outcome: %w", err)
	}
	return data, nil
}
