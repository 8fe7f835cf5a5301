// Package users loads the flat callsign/password credential map used
// to authenticate inbound B2F sessions.
package users

import (
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"os"
)

// Directory is a read-only, in-memory set of callsign/password
// credentials loaded once at startup.
type Directory struct {
	credentials map[string]string
}

// Load reads a JSON object of the form {"CALLSIGN": "password", ...}
// from path. A missing or unreadable file yields an empty directory
// (every login then fails) rather than an error, since an operator
// running without a users file is a valid, if useless, configuration.
// A file that is read but is not a valid JSON object is an error.
func Load(path string) (*Directory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return &Directory{credentials: map[string]string{}}, nil
	}

	var creds map[string]string
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("users: parse %q: %w", path, err)
	}
	return &Directory{credentials: creds}, nil
}

// Authenticate reports whether password matches the stored credential
// for callsign, using a constant-time comparison so guesses of the
// stored password's length cannot be told apart by their content. An
// unknown callsign, or a guess of a different length, returns early.
func (d *Directory) Authenticate(callsign, password string) bool {
	want, ok := d.credentials[callsign]
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(want), []byte(password)) == 1
}

// Len returns the number of callsigns in the directory.
func (d *Directory) Len() int {
	return len(d.credentials)
}
