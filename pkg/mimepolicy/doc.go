// Package mimepolicy decides which declared MIME types an upload may carry.
//
// A Policy holds an ordered set of lowercase MIME types. An empty policy allows
// every type. Types are added one by one ("image/png") or through a named preset
// ("image") that expands to a fixed list:
//
//	p := mimepolicy.New()
//	_, _ = p.Allow("image")
//	p.IsAllowed("image/png")       // true
//	p.IsAllowed("application/pdf") // false
//	p.Clear()
//	p.IsAllowed("application/pdf") // true again
//
// Presets can be extended with WithPresets or read from a YAML document with
// LoadPresets:
//
//	archive:
//	  - application/zip
//	  - application/x-tar
//
// The policy trusts the MIME string the client declared. It never inspects file
// content.
package mimepolicy
