package bankprofile

import "strings"

type Registry struct {
	profiles []Profile
	bySource map[string]int
}

func NewRegistry(profiles []Profile) *Registry {
	registry := &Registry{
		profiles: profiles,
		bySource: make(map[string]int),
	}
	for i, profile := range profiles {
		for _, pkg := range profile.SourcePackages {
			registry.bySource[strings.ToLower(pkg)] = i
		}
	}
	return registry
}

// Classify resolves the issuing bank for a notification. The app source
// package is tried first because it cannot be spoofed by message text;
// keyword scanning over the lower-cased title and content is the fallback.
func (r *Registry) Classify(title, content, sourcePackage string) (Profile, bool) {
	if idx, ok := r.bySource[strings.ToLower(strings.TrimSpace(sourcePackage))]; ok {
		return r.profiles[idx], true
	}
	haystack := strings.ToLower(title + " " + content)
	for _, profile := range r.profiles {
		for _, keyword := range profile.Keywords {
			if keyword != "" && strings.Contains(haystack, strings.ToLower(keyword)) {
				return profile, true
			}
		}
	}
	return Profile{}, false
}
