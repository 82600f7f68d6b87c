package usecases

import (
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/tulisify/tulisify/internal/entities"
)

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 8

// MinBookYear is the earliest accepted publication year.
const MinBookYear = 1000

// Validation messages, shared with clients that display them verbatim.
const (
	MsgEmailRequired    = "Email is required"
	MsgEmailInvalid     = "Invalid email format"
	MsgPasswordRequired = "Password is required"
	MsgPasswordTooShort = "Password must be at least 8 characters"
	MsgPasswordFormat   = "Password must contain letters and numbers"
	MsgTitleRequired    = "Title is required"
	MsgAuthorRequired   = "Author is required"
	MsgTitleEmpty       = "Title cannot be empty"
	MsgAuthorEmpty      = "Author cannot be empty"
	MsgInvalidYear      = "Invalid year"
	MsgInvalidCategory  = "Invalid category"
	MsgBookIDRequired   = "Book ID is required"
	MsgBookNotFound     = "Book not found"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Clock returns the current time. Swapped in tests to pin the year bound.
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now()
	}
	return c()
}

// validateCredentials returns an empty string when the pair is acceptable.
func validateCredentials(email, password string) string {
	if strings.TrimSpace(email) == "" {
		return MsgEmailRequired
	}
	// Surrounding whitespace is not trimmed away; it fails the pattern.
	if !emailPattern.MatchString(email) {
		return MsgEmailInvalid
	}
	if strings.TrimSpace(password) == "" {
		return MsgPasswordRequired
	}
	if len([]rune(password)) < MinPasswordLength {
		return MsgPasswordTooShort
	}
	return ""
}

func hasLetterAndDigit(password string) bool {
	var letter, digit bool
	for _, r := range password {
		switch {
		case r <= unicode.MaxASCII && unicode.IsLetter(r):
			letter = true
		case r >= '0' && r <= '9':
			digit = true
		}
	}
	return letter && digit
}

func validYear(year int, now time.Time) bool {
	return year >= MinBookYear && year <= now.Year()+1
}

func validateNewBook(req entities.CreateBookRequest, now time.Time) string {
	if strings.TrimSpace(req.Title) == "" {
		return MsgTitleRequired
	}
	if strings.TrimSpace(req.Author) == "" {
		return MsgAuthorRequired
	}
	if !validYear(req.Year, now) {
		return MsgInvalidYear
	}
	if !req.Category.Valid() {
		return MsgInvalidCategory
	}
	return ""
}

func validateBookChanges(req entities.UpdateBookRequest, now time.Time) string {
	if strings.TrimSpace(req.ID) == "" {
		return MsgBookIDRequired
	}
	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		return MsgTitleEmpty
	}
	if req.Author != nil && strings.TrimSpace(*req.Author) == "" {
		return MsgAuthorEmpty
	}
	if req.Year != nil && !validYear(*req.Year, now) {
		return MsgInvalidYear
	}
	if req.Category != nil && !req.Category.Valid() {
		return MsgInvalidCategory
	}
	return ""
}
