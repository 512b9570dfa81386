package validator

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"
)

func RequiredString(field, value string) Rule {
	return Rule{
		Check: func() bool {
			return strings.TrimSpace(value) != ""
		},
		Error: ValidationError{Field: field, Message: "field is required", Code: CodeRequired},
	}
}

// RequiredComparable fails on the zero value of T, such as uuid.Nil.
func RequiredComparable[T comparable](field string, value T) Rule {
	var zero T
	return Rule{
		Check: func() bool {
			return value != zero
		},
		Error: ValidationError{Field: field, Message: "field is required", Code: CodeRequired},
	}
}

// RequiredOneOf passes when any of values is non-blank. It covers inputs
// that fall back to the actor, like a customer email.
func RequiredOneOf(field string, values ...string) Rule {
	return Rule{
		Check: func() bool {
			for _, v := range values {
				if strings.TrimSpace(v) != "" {
					return true
				}
			}
			return false
		},
		Error: ValidationError{Field: field, Message: "field is required", Code: CodeRequired},
	}
}

func MaxLenString(field, value string, max int) Rule {
	return Rule{
		Check: func() bool {
			return utf8.RuneCountInString(value) <= max
		},
		Error: ValidationError{
			Field:   field,
			Message: fmt.Sprintf("must be at most %d characters long", max),
			Code:    CodeMaxLength,
		},
	}
}

// ValidEmail accepts a bare RFC 5322 address whose domain has at least two
// non-empty labels. Display-name forms are rejected. Empty values pass;
// pair it with RequiredString.
func ValidEmail(field, value string) Rule {
	return Rule{
		Check: func() bool {
			if value == "" {
				return true
			}
			addr, err := mail.ParseAddress(value)
			if err != nil || addr.Address != value || addr.Name != "" {
				return false
			}
			local, domain, ok := strings.Cut(addr.Address, "@")
			if !ok || local == "" {
				return false
			}
			labels := strings.Split(domain, ".")
			if len(labels) < 2 {
				return false
			}
			for _, l := range labels {
				if l == "" {
					return false
				}
			}
			return true
		},
		Error: ValidationError{Field: field, Message: "must be a valid email address", Code: CodeEmail},
	}
}

// ProcessorID checks a payment processor object id such as "price_1Nx..."
// for one of prefixes. Empty values pass; pair it with RequiredString.
func ProcessorID(field, value string, prefixes ...string) Rule {
	return Rule{
		Check: func() bool {
			if value == "" {
				return true
			}
			if strings.ContainsAny(value, " \t\r\n/") {
				return false
			}
			for _, p := range prefixes {
				if strings.HasPrefix(value, p) && len(value) > len(p) {
					return true
				}
			}
			return len(prefixes) == 0
		},
		Error: ValidationError{
			Field:   field,
			Message: fmt.Sprintf("must be an id starting with %s", strings.Join(prefixes, " or ")),
			Code:    CodeFormat,
		},
	}
}
