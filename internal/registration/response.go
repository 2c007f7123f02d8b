package registration

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/mutuals/internal/config"
)

// Global validator instance for reuse
var validate = validator.New()

// Request is the registration body sent to the remote service.
type Request struct {
	Name  string `json:"name"`
	RegNo string `json:"regNo"`
	Email string `json:"email"`
}

// NewRequest builds the registration body from the configured identity.
func NewRequest(id config.IdentityConfig) Request {
	return Request{
		Name:  id.Name,
		RegNo: id.RegNo,
		Email: id.Email,
	}
}

// Response is the validated registration response.
type Response struct {
	// Webhook is where the outcome must be delivered.
	Webhook string `validate:"required,url"`

	// AccessToken is forwarded verbatim as the Authorization header.
	AccessToken string `validate:"required"`

	// Users holds the raw user entries; each is parsed independently so a
	// malformed entry cannot spoil the rest.
	Users []json.RawMessage

	// UsersMissing is set when the response carried no user list at all.
	UsersMissing bool
}

type envelope struct {
	Webhook     string          `json:"webhook"`
	AccessToken string          `json:"accessToken"`
	Data        json.RawMessage `json:"data"`
}

type dataSection struct {
	Users json.RawMessage `json:"users"`
}

// ParseResponse decodes and validates a registration response body of the form
// {"webhook": "...", "accessToken": "...", "data": {"users": [...]}}.
//
// Some deployments nest the list one level deeper, as
// {"data": {"users": {"users": [...]}}}; both shapes are accepted.
func ParseResponse(body []byte) (*Response, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	resp := &Response{
		Webhook:     strings.TrimSpace(env.Webhook),
		AccessToken: env.AccessToken,
	}
	if err := validate.Struct(resp); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidResponse, describeValidation(err))
	}

	users, err := extractUsers(env.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if users == nil {
		resp.UsersMissing = true
		users = []json.RawMessage{}
	}
	resp.Users = users

	return resp, nil
}

// extractUsers returns nil without error when the list is absent.
func extractUsers(data json.RawMessage) ([]json.RawMessage, error) {
	if isAbsent(data) {
		return nil, nil
	}

	var section dataSection
	if err := json.Unmarshal(data, &section); err != nil {
		return nil, fmt.Errorf("data must be an object: %v", err)
	}
	if isAbsent(section.Users) {
		return nil, nil
	}

	raw := bytes.TrimSpace(section.Users)
	if raw[0] == '{' {
		var nested dataSection
		if err := json.Unmarshal(raw, &nested); err != nil {
			return nil, fmt.Errorf("data.users: %v", err)
		}
		if isAbsent(nested.Users) {
			return nil, fmt.Errorf("data.users must be an array or hold a users array")
		}
		raw = bytes.TrimSpace(nested.Users)
	}

	var users []json.RawMessage
	if err := json.Unmarshal(raw, &users); err != nil {
		return nil, fmt.Errorf("data.users must be an array")
	}
	return users, nil
}

func isAbsent(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// describeValidation turns validator errors into "webhook is required"-style text.
func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := fieldName(fe.Field())
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, field+" is required")
		case "url":
			msgs = append(msgs, fmt.Sprintf("%s %q is not a valid URL", field, fe.Value()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s validation", field, fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}

func fieldName(goName string) string {
	switch goName {
	case "Webhook":
		return "webhook"
	case "AccessToken":
		return "accessToken"
	default:
		return goName
	}
}
