package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidateKey validates a storage key. Keys become file names and database
// identifiers, so the rules are conservative:
//   - No empty keys
//   - Maximum length of 128 characters
//   - No control characters
//   - No path separators or traversal sequences
func ValidateKey(key string) error {
	if key == "" {
		return New(ErrCodeInvalidKey, "storage key cannot be empty")
	}

	if len(key) > 128 {
		return New(ErrCodeInvalidKey, "storage key too long (max 128 characters)")
	}

	for _, r := range key {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidKey, "storage key contains invalid control characters")
		}
	}

	for _, pattern := range []string{"..", "/", "\\"} {
		if strings.Contains(key, pattern) {
			return New(ErrCodeInvalidKey, "storage key contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// languageRegex matches template language names such as "javascript" or "c++".
var languageRegex = regexp.MustCompile(`^[a-z][a-z0-9_+#-]*$`)

// ValidateLanguage validates a target language name.
func ValidateLanguage(lang string) error {
	if lang == "" {
		return New(ErrCodeInvalidLanguage, "language cannot be empty")
	}
	if !languageRegex.MatchString(lang) {
		return New(ErrCodeInvalidLanguage, "invalid language name: %q", lang)
	}
	return nil
}

// ValidateBlockID validates a block id taken from user input.
func ValidateBlockID(id string) error {
	if strings.TrimSpace(id) == "" {
		return New(ErrCodeInvalidInput, "block id cannot be empty")
	}
	for _, r := range id {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidInput, "block id contains invalid characters: %q", id)
		}
	}
	return nil
}
