package errors

import (
	"regexp"
	"strings"
)

// CompilePattern compiles a user-supplied regular expression, returning a
// coded error when it does not parse. An empty pattern compiles to nil,
// meaning "match everything" for include filters and "match nothing" for
// exclude filters.
func CompilePattern(name, pattern string) (*regexp.Regexp, error) {
	if pattern == "" {
		return nil, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, Wrap(ErrCodeInvalidPattern, err, "invalid %s pattern %q", name, pattern)
	}
	return re, nil
}

// ValidatePattern checks that a user-supplied regular expression parses.
func ValidatePattern(name, pattern string) error {
	_, err := CompilePattern(name, pattern)
	return err
}

// ValidateSuffixes checks that artifact suffixes are usable: non-empty,
// starting with a dot, and free of path separators.
func ValidateSuffixes(suffixes []string) error {
	if len(suffixes) == 0 {
		return New(ErrCodeInvalidInput, "at least one artifact suffix is required")
	}
	for _, s := range suffixes {
		if s == "" {
			return New(ErrCodeInvalidInput, "artifact suffix cannot be empty")
		}
		if !strings.HasPrefix(s, ".") {
			return New(ErrCodeInvalidInput, "artifact suffix %q must start with a dot", s)
		}
		if strings.ContainsAny(s, "/\\") {
			return New(ErrCodeInvalidInput, "artifact suffix %q cannot contain path separators", s)
		}
	}
	return nil
}
