package kernel

import (
	"regexp"
	"strings"
)

type Email string

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func (e Email) String() string { return string(e) }

// IsValid accepts the empty email, which is allowed on most records
func (e Email) IsValid() bool {
	return e == "" || emailPattern.MatchString(string(e))
}

func (e Email) Normalize() Email {
	return Email(strings.ToLower(strings.TrimSpace(string(e))))
}

type Phone string

func (p Phone) String() string { return string(p) }

func (p Phone) Normalize() Phone { return Phone(strings.TrimSpace(string(p))) }
