// ABOUTME: Closed category taxonomy for classified errors
// ABOUTME: Fixed enumeration grouped by network, database, filesystem, UI/test, data, resource, and misc domains

package taxonomy

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Category classifies an error into the fixed taxonomy.
//
// The set is closed: adding a member requires updating the enumeration,
// the name table below, and the classifier's code/keyword tables.
type Category int

const (
	// Unknown is the fallback for anything the classifier cannot place.
	Unknown Category = iota

	// Network / HTTP.
	Network
	HTTPClient
	HTTPServer
	Authentication
	Authorization
	NotFound

	// Database.
	Connection
	Query
	Transaction
	Constraint
	Database

	// Filesystem.
	FileNotFound
	PathIsDirectory
	NotADirectory
	DirectoryNotEmpty
	FileExists
	AccessDenied
	FileBusy
	FileTooLarge
	FileNameTooLong
	NoSpace
	ReadOnlyFileSystem

	// UI / test.
	UI
	Element
	Navigation
	Selector
	Assertion
	Test
	Setup
	Teardown
	Fixture

	// Data.
	Validation
	IO
	Parsing
	Serialization

	// Resource.
	Performance
	Memory
	ResourceLimit

	// Misc.
	Permission
	Configuration
	NotImplemented
	Service
	Timeout
	Environment
	Dependency
	Conflict
)

// names maps each Category to its canonical wire name, indexed by the
// enumeration value. Keep in sync with the const block above.
var names = [...]string{
	Unknown:            "UNKNOWN",
	Network:            "NETWORK",
	HTTPClient:         "HTTP_CLIENT",
	HTTPServer:         "HTTP_SERVER",
	Authentication:     "AUTHENTICATION",
	Authorization:      "AUTHORIZATION",
	NotFound:           "NOT_FOUND",
	Connection:         "CONNECTION",
	Query:              "QUERY",
	Transaction:        "TRANSACTION",
	Constraint:         "CONSTRAINT",
	Database:           "DATABASE",
	FileNotFound:       "FILE_NOT_FOUND",
	PathIsDirectory:    "PATH_IS_DIRECTORY",
	NotADirectory:      "NOT_A_DIRECTORY",
	DirectoryNotEmpty:  "DIRECTORY_NOT_EMPTY",
	FileExists:         "FILE_EXISTS",
	AccessDenied:       "ACCESS_DENIED",
	FileBusy:           "FILE_BUSY",
	FileTooLarge:       "FILE_TOO_LARGE",
	FileNameTooLong:    "FILE_NAME_TOO_LONG",
	NoSpace:            "NO_SPACE",
	ReadOnlyFileSystem: "READ_ONLY_FILE_SYSTEM",
	UI:                 "UI",
	Element:            "ELEMENT",
	Navigation:         "NAVIGATION",
	Selector:           "SELECTOR",
	Assertion:          "ASSERTION",
	Test:               "TEST",
	Setup:              "SETUP",
	Teardown:           "TEARDOWN",
	Fixture:            "FIXTURE",
	Validation:         "VALIDATION",
	IO:                 "IO",
	Parsing:            "PARSING",
	Serialization:      "SERIALIZATION",
	Performance:        "PERFORMANCE",
	Memory:             "MEMORY",
	ResourceLimit:      "RESOURCE_LIMIT",
	Permission:         "PERMISSION",
	Configuration:      "CONFIGURATION",
	NotImplemented:     "NOT_IMPLEMENTED",
	Service:            "SERVICE",
	Timeout:            "TIMEOUT",
	Environment:        "ENVIRONMENT",
	Dependency:         "DEPENDENCY",
	Conflict:           "CONFLICT",
}

// String returns the canonical wire name of the category.
func (c Category) String() string {
	if c < 0 || int(c) >= len(names) {
		return names[Unknown]
	}
	return names[c]
}

// Valid reports whether c is a member of the taxonomy.
func (c Category) Valid() bool {
	return c >= 0 && int(c) < len(names)
}

// Parse resolves a wire name into a Category. Matching is
// case-insensitive. Unrecognized names return Unknown and an error.
func Parse(s string) (Category, error) {
	upper := strings.ToUpper(strings.TrimSpace(s))
	for i, name := range names {
		if name == upper {
			return Category(i), nil
		}
	}
	return Unknown, fmt.Errorf("unknown category %q", s)
}

// MarshalJSON encodes the category as its canonical wire name.
func (c Category) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// UnmarshalJSON decodes a canonical wire name. Unrecognized names decode
// to Unknown rather than failing, so records from newer writers still load.
func (c *Category) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := Parse(s)
	if err != nil {
		*c = Unknown
		return nil
	}
	*c = parsed
	return nil
}

// All returns every member of the taxonomy in declaration order.
func All() []Category {
	out := make([]Category, len(names))
	for i := range names {
		out[i] = Category(i)
	}
	return out
}
