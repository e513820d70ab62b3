package repository

import (
	"errors"
	"strings"
)

// DefaultMarkers are the message fragments treated as a duplicate when no rule matches.
// Some drivers report constraint violations only as plain errors with a descriptive text.
var DefaultMarkers = []string{"duplicate"}

// Classifier decides whether a failure is a duplicate entry or a generic persistence failure.
// It holds no mutable state after construction and is safe for concurrent use.
type Classifier struct {
	rules   []Rule
	markers []string
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithRules appends rules to the allow-list of backend kinds meaning "duplicate".
func WithRules(rules ...Rule) Option {
	return func(c *Classifier) {
		for _, r := range rules {
			if r != nil {
				c.rules = append(c.rules, r)
			}
		}
	}
}

// WithMarkers appends message fragments for the textual fallback. Matching is case-insensitive.
func WithMarkers(markers ...string) Option {
	return func(c *Classifier) {
		for _, m := range markers {
			m = strings.ToLower(strings.TrimSpace(m))
			if m != "" {
				c.markers = append(c.markers, m)
			}
		}
	}
}

// WithoutDefaults drops the built-in rules and markers collected so far.
// Put it first so that later options start from an empty classifier.
func WithoutDefaults() Option {
	return func(c *Classifier) {
		c.rules = nil
		c.markers = nil
	}
}

// NewClassifier builds a classifier seeded with DefaultRules and DefaultMarkers.
func NewClassifier(opts ...Option) *Classifier {
	c := &Classifier{}
	WithRules(DefaultRules()...)(c)
	WithMarkers(DefaultMarkers...)(c)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var defaultClassifier = NewClassifier()

// Default returns the process-wide classifier built from the defaults.
func Default() *Classifier { return defaultClassifier }

// Classify normalizes a non-nil failure. The direct cause is checked before the failure
// itself because commit-time failures usually wrap the real backend error one level down.
// An error whose chain already carries an *Error is returned as that *Error.
func (c *Classifier) Classify(err error) *Error {
	if err == nil {
		return nil
	}
	var ne *Error
	if errors.As(err, &ne) {
		return ne
	}
	if inner := errors.Unwrap(err); inner != nil && c.isDuplicate(inner) {
		return newError(KindDuplicateEntry, inner)
	}
	if c.isDuplicate(err) {
		return newError(KindDuplicateEntry, err)
	}
	return newError(KindPersistenceFailure, err)
}

// Normalize is Classify for call sites returning a plain error: nil stays nil.
func (c *Classifier) Normalize(err error) error {
	if err == nil {
		return nil
	}
	return c.Classify(err)
}

// Classify normalizes err with the default classifier.
func Classify(err error) *Error { return defaultClassifier.Classify(err) }

// Normalize normalizes err with the default classifier, keeping nil as nil.
func Normalize(err error) error { return defaultClassifier.Normalize(err) }

// isDuplicate checks one chain link only; deeper causes are not consulted.
func (c *Classifier) isDuplicate(err error) bool {
	for _, r := range c.rules {
		if r.Match(err) {
			return true
		}
	}
	if len(c.markers) == 0 {
		return false
	}
	msg := message(err)
	if msg == "" {
		msg = message(errors.Unwrap(err))
	}
	if msg == "" {
		return false
	}
	msg = strings.ToLower(msg)
	for _, m := range c.markers {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}

// message returns err's text, treating a panicking Error method (typed nil receivers) as empty.
func message(err error) (msg string) {
	if err == nil {
		return ""
	}
	defer func() {
		if recover() != nil {
			msg = ""
		}
	}()
	return err.Error()
}
