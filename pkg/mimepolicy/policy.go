package mimepolicy

import (
	"errors"
	"fmt"
	"mime"
	"regexp"
	"slices"
	"strings"

	"github.com/samber/lo"
)

var mimePattern = regexp.MustCompile(`^[-\w+]+/[-\w+]+$`)

// Policy is an ordered allow-set of MIME types. The zero value is not usable,
// create one with New. A Policy is not safe for concurrent use.
type Policy struct {
	presets map[string][]string
	allowed []string
	index   map[string]struct{}
}

// Option configures a Policy.
type Option func(*Policy)

// WithPresets registers additional presets or replaces built-in ones.
// Panics if a preset member is not a valid MIME type, so a broken preset table
// fails at startup instead of silently allowing nothing.
func WithPresets(presets map[string][]string) Option {
	for name, members := range presets {
		for _, m := range members {
			if !IsMIMEType(m) {
				panic(fmt.Errorf("mimepolicy: preset %q: %w: %q", name, ErrInvalidMIMEType, m))
			}
		}
	}
	return func(p *Policy) {
		for name, members := range presets {
			p.presets[strings.ToLower(name)] = lo.Uniq(lo.Map(members, func(m string, _ int) string {
				return strings.ToLower(m)
			}))
		}
	}
}

// New returns an empty policy that allows every MIME type.
func New(opts ...Option) *Policy {
	p := &Policy{
		presets: DefaultPresets(),
		index:   make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// IsMIMEType reports whether s has the type/subtype shape accepted by Allow.
func IsMIMEType(s string) bool {
	return mimePattern.MatchString(s)
}

// Expand resolves value to the MIME types it stands for without changing the policy.
// A type/subtype value resolves to itself, lowercased; anything else is looked up
// as a preset name.
func (p *Policy) Expand(value string) ([]string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, ErrInvalidMIMEType
	}
	if IsMIMEType(value) {
		return []string{strings.ToLower(value)}, nil
	}
	members, ok := p.presets[strings.ToLower(value)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPreset, value)
	}
	return slices.Clone(members), nil
}

// Allow adds a MIME type or every member of a preset and returns the types it
// resolved to. On error the policy is left unchanged.
func (p *Policy) Allow(value string) ([]string, error) {
	mimes, err := p.Expand(value)
	if err != nil {
		return nil, err
	}
	for _, m := range mimes {
		if _, ok := p.index[m]; ok {
			continue
		}
		p.index[m] = struct{}{}
		p.allowed = append(p.allowed, m)
	}
	return mimes, nil
}

// AllowMany applies Allow to every value. It fails with ErrEmptyList for an empty
// input; otherwise valid values are added and the errors of invalid ones are joined.
func (p *Policy) AllowMany(values []string) error {
	if len(values) == 0 {
		return ErrEmptyList
	}
	var errs []error
	for _, v := range values {
		if _, err := p.Allow(v); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Clear removes every allowed type, restoring the allow-any default.
func (p *Policy) Clear() {
	p.allowed = nil
	p.index = make(map[string]struct{})
}

// IsAllowed reports whether mimeType may be uploaded. An empty policy allows
// everything. Media type parameters such as "; charset=utf-8" are ignored.
func (p *Policy) IsAllowed(mimeType string) bool {
	if len(p.allowed) == 0 {
		return true
	}
	mt := strings.ToLower(strings.TrimSpace(mimeType))
	if parsed, _, err := mime.ParseMediaType(mt); err == nil {
		mt = parsed
	}
	_, ok := p.index[mt]
	return ok
}

// Allowed returns the allowed types in insertion order.
func (p *Policy) Allowed() []string {
	return slices.Clone(p.allowed)
}

// Len returns the number of allowed types.
func (p *Policy) Len() int {
	return len(p.allowed)
}

// Presets returns the sorted names of every known preset.
func (p *Policy) Presets() []string {
	names := lo.Keys(p.presets)
	slices.Sort(names)
	return names
}

// Members returns the MIME types of a preset.
func (p *Policy) Members(name string) ([]string, bool) {
	members, ok := p.presets[strings.ToLower(name)]
	return slices.Clone(members), ok
}
