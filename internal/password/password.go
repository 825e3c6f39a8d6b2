// Package password scores candidate passwords against a configurable policy
// and provides bcrypt hashing for stored credentials.
package password

import (
	"fmt"
	"regexp"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// Policy is the externally supplied password policy. HistoryCount is accepted
// but not enforced here; reuse checks belong to the account store.
type Policy struct {
	MinLength       int
	RequireUpper    bool
	RequireLower    bool
	RequireDigit    bool
	RequireSpecial  bool
	ForbiddenWords  []string
	ForbiddenRegexp []string
	HistoryCount    int
}

// DefaultPolicy returns a moderate policy suitable for most deployments.
func DefaultPolicy() Policy {
	return Policy{
		MinLength:      8,
		RequireUpper:   true,
		RequireLower:   true,
		RequireDigit:   true,
		RequireSpecial: false,
		ForbiddenWords: []string{"password", "123456", "qwerty"},
	}
}

// Result is the structured outcome of a validation run. Score is in [0,10].
type Result struct {
	Valid      bool     `json:"valid"`
	Violations []string `json:"violations,omitempty"`
	Score      int      `json:"score"`
}

// Validator checks passwords against a compiled policy.
type Validator struct {
	policy    Policy
	forbidden []*regexp.Regexp
}

// NewValidator compiles the policy's forbidden patterns. Forbidden words are
// matched case-insensitively as substrings.
func NewValidator(policy Policy) (*Validator, error) {
	v := &Validator{policy: policy}
	for _, word := range policy.ForbiddenWords {
		re, err := regexp.Compile("(?i)" + regexp.QuoteMeta(word))
		if err != nil {
			return nil, fmt.Errorf("failed to compile forbidden word %q: %w", word, err)
		}
		v.forbidden = append(v.forbidden, re)
	}
	for _, pattern := range policy.ForbiddenRegexp {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("failed to compile forbidden pattern %q: %w", pattern, err)
		}
		v.forbidden = append(v.forbidden, re)
	}
	return v, nil
}

// Validate checks the candidate against the policy and computes its strength
// score: min(length/4, 3) plus the character-class diversity when at least
// three classes are present, capped at 10.
func (v *Validator) Validate(candidate string) Result {
	var violations []string

	runes := []rune(candidate)
	if len(runes) < v.policy.MinLength {
		violations = append(violations, fmt.Sprintf("must be at least %d characters long", v.policy.MinLength))
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, r := range runes {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			hasSpecial = true
		}
	}

	if v.policy.RequireUpper && !hasUpper {
		violations = append(violations, "must contain an uppercase letter")
	}
	if v.policy.RequireLower && !hasLower {
		violations = append(violations, "must contain a lowercase letter")
	}
	if v.policy.RequireDigit && !hasDigit {
		violations = append(violations, "must contain a digit")
	}
	if v.policy.RequireSpecial && !hasSpecial {
		violations = append(violations, "must contain a special character")
	}

	for _, re := range v.forbidden {
		if re.MatchString(candidate) {
			violations = append(violations, "contains a forbidden pattern")
			break
		}
	}

	diversity := 0
	for _, present := range []bool{hasUpper, hasLower, hasDigit, hasSpecial} {
		if present {
			diversity++
		}
	}

	score := min(len(runes)/4, 3)
	if diversity >= 3 {
		score += diversity
	}
	score = min(score, 10)

	return Result{
		Valid:      len(violations) == 0,
		Violations: violations,
		Score:      score,
	}
}

const bcryptCost = 12

// Hash generates a bcrypt hash of the given password.
func Hash(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(bytes), nil
}

// Verify checks whether the password matches the stored hash.
func Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
