// Package naming derives Azure resource names from free-form titles.
//
// Uniqueness is weak by default: the time strategy appends unix_time mod 10000,
// so two requests with the same title inside the same second (or exactly
// 10000 seconds apart) produce the same name. The random strategy draws the
// suffix from a UUIDv4 and narrows that window without eliminating it.
package naming

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// MaxStemLength caps the sanitized title.
	MaxStemLength = 20
	// MaxStorageAccountName is the Azure limit for storage account names.
	MaxStorageAccountName = 24
	// MaxSearchServiceName is the Azure limit for search service names.
	MaxSearchServiceName = 60

	suffixModulus = 10000
)

// Stem lower-cases title, drops everything outside [a-z0-9] and truncates the
// result to MaxStemLength characters.
func Stem(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			if b.Len() == MaxStemLength {
				break
			}
		}
	}
	return b.String()
}

// ResourceName joins prefix and stem, trimming from the right so the name
// still fits maxLen once suffix is appended. The prefix is never trimmed
// unless it alone exceeds the budget.
func ResourceName(prefix, stem, suffix string, maxLen int) string {
	budget := maxLen - len(suffix)
	if budget < 0 {
		budget = 0
	}

	base := prefix + stem
	if len(base) > budget {
		base = base[:budget]
	}
	return base + suffix
}

// Suffixer produces the numeric disambiguator appended to resource names.
type Suffixer interface {
	Next() string
}

// NewSuffixer returns the suffixer for a configured strategy ("time" or "random").
func NewSuffixer(strategy string) (Suffixer, error) {
	switch strategy {
	case "", "time":
		return &TimeSuffixer{Now: time.Now}, nil
	case "random":
		return &RandomSuffixer{}, nil
	default:
		return nil, fmt.Errorf("unknown name suffix strategy %q", strategy)
	}
}

// TimeSuffixer yields unix_time mod 10000.
type TimeSuffixer struct {
	Now func() time.Time
}

func (s *TimeSuffixer) Next() string {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	return strconv.FormatInt(now().Unix()%suffixModulus, 10)
}

// RandomSuffixer yields four digits taken from a random UUID.
type RandomSuffixer struct{}

func (s *RandomSuffixer) Next() string {
	id := uuid.New()
	n := binary.BigEndian.Uint32(id[:4]) % suffixModulus
	return fmt.Sprintf("%04d", n)
}
