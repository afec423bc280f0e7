// ABOUTME: Ordered classification rule tables for the two-tier matcher
// ABOUTME: OS error-code tier and keyword tier, first match wins in table order

package classify

import (
	"syscall"

	"github.com/sinugotshifhiwa4/errsift/internal/taxonomy"
)

// codeRule maps a structured OS error code to its category.
type codeRule struct {
	code     string
	category taxonomy.Category
}

// codeRules is the OS error-code tier. Exact match on the error's code
// field; outranks keyword matching because structured codes are
// unambiguous.
var codeRules = []codeRule{
	{"ENOENT", taxonomy.FileNotFound},
	{"EISDIR", taxonomy.PathIsDirectory},
	{"ENOTDIR", taxonomy.NotADirectory},
	{"ENOTEMPTY", taxonomy.DirectoryNotEmpty},
	{"EEXIST", taxonomy.FileExists},
	{"EACCES", taxonomy.AccessDenied},
	{"EBUSY", taxonomy.FileBusy},
	{"EFBIG", taxonomy.FileTooLarge},
	{"ENAMETOOLONG", taxonomy.FileNameTooLong},
	{"ENOSPC", taxonomy.NoSpace},
	{"EROFS", taxonomy.ReadOnlyFileSystem},
}

// errnoNames maps native syscall errnos onto the same code space, so
// errors from Go's own filesystem calls classify identically to coded
// errors reported by other runtimes.
var errnoNames = map[syscall.Errno]string{
	syscall.ENOENT:       "ENOENT",
	syscall.EISDIR:       "EISDIR",
	syscall.ENOTDIR:      "ENOTDIR",
	syscall.ENOTEMPTY:    "ENOTEMPTY",
	syscall.EEXIST:       "EEXIST",
	syscall.EACCES:       "EACCES",
	syscall.EBUSY:        "EBUSY",
	syscall.EFBIG:        "EFBIG",
	syscall.ENAMETOOLONG: "ENAMETOOLONG",
	syscall.ENOSPC:       "ENOSPC",
	syscall.EROFS:        "EROFS",
}

// keywordRule maps trigger substrings (matched against the lowercased
// message) to a category.
type keywordRule struct {
	category taxonomy.Category
	keywords []string
}

// keywordRules is the keyword tier, evaluated only when no code matched.
//
// Iteration order is the precedence order and is load-bearing: several
// keyword sets can match the same message (for example "timeout" appears
// under both Timeout and Performance), and the first entry in table order
// wins. Do not reorder or convert to a map.
var keywordRules = []keywordRule{
	// Database, most specific first.
	{taxonomy.Connection, []string{"connection", "connect"}},
	{taxonomy.Query, []string{"query", "sql"}},
	{taxonomy.Transaction, []string{"transaction"}},
	{taxonomy.Constraint, []string{"constraint", "duplicate"}},
	{taxonomy.Database, []string{"database"}},

	// Access control.
	{taxonomy.Permission, []string{"permission", "access", "denied"}},
	{taxonomy.NotFound, []string{"not found", "missing", "doesn't exist"}},
	{taxonomy.Authentication, []string{"authentication", "login"}},
	{taxonomy.Authorization, []string{"authorization", "forbidden"}},

	// Environment and transport.
	{taxonomy.Configuration, []string{"configuration", "config"}},
	{taxonomy.Network, []string{"network"}},
	{taxonomy.Timeout, []string{"timeout", "gateway", "retry"}},

	// UI / test tooling.
	{taxonomy.Element, []string{"element"}},
	{taxonomy.Navigation, []string{"navigation", "navigate"}},
	{taxonomy.Selector, []string{"selector", "locator"}},
	{taxonomy.Assertion, []string{"assertion", "expect"}},
	{taxonomy.UI, []string{"screenshot", "viewport"}},
	{taxonomy.Fixture, []string{"fixture"}},
	{taxonomy.Setup, []string{"setup"}},
	{taxonomy.Teardown, []string{"teardown"}},
	{taxonomy.Test, []string{"test failed", "test timeout"}},

	// Data handling.
	{taxonomy.Validation, []string{"validation", "invalid", "schema"}},
	{taxonomy.Parsing, []string{"parse", "parsing"}},
	{taxonomy.Serialization, []string{"serialize", "serialization", "marshal"}},

	// Resources.
	{taxonomy.Memory, []string{"memory", "heap"}},
	{taxonomy.Performance, []string{"performance", "slow"}},
	{taxonomy.ResourceLimit, []string{"limit exceeded", "quota"}},

	// Filesystem phrases mirroring the code tier.
	{taxonomy.FileNotFound, []string{"no such file", "file not found"}},
	{taxonomy.PathIsDirectory, []string{"is a directory"}},
	{taxonomy.NotADirectory, []string{"not a directory"}},
	{taxonomy.DirectoryNotEmpty, []string{"directory not empty"}},
	{taxonomy.FileExists, []string{"already exists"}},
	{taxonomy.FileBusy, []string{"resource busy", "file busy"}},
	{taxonomy.FileTooLarge, []string{"file too large"}},
	{taxonomy.NoSpace, []string{"no space"}},
	{taxonomy.ReadOnlyFileSystem, []string{"read-only file system"}},
	{taxonomy.IO, []string{"i/o error", "input/output"}},

	// Misc.
	{taxonomy.NotImplemented, []string{"not implemented", "unsupported"}},
	{taxonomy.Service, []string{"service unavailable", "unavailable"}},
	{taxonomy.Environment, []string{"environment variable", "env var"}},
	{taxonomy.Dependency, []string{"dependency"}},
	{taxonomy.Conflict, []string{"conflict"}},
}
