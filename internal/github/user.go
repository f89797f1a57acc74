package github

import (
	"encoding/json"
	"fmt"
)

// User is the subset of the authenticated-user payload this tool needs
// to resolve an account identity.
type User struct {
	Login string  `json:"login"`
	Email *string `json:"email"`
}

// FetchUser resolves the login and public email behind a token.
func (c *Client) FetchUser(token string) (*User, error) {
	body, err := c.getJSON(c.apiBaseURL+"/user", token, false)
	if err != nil {
		return nil, err
	}

	var user User
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, fmt.Errorf("failed to parse user response: %w", err)
	}
	if user.Login == "" {
		return nil, &MalformedResponseError{Field: "login"}
	}
	return &user, nil
}
