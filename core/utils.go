package core

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

const (
	DefaultQueueGroup = "q"
	APIPrefix         = "$SRV"
)

var (
	ErrConfigValidation    = errors.New("validation")
	ErrVerbNotSupported    = errors.New("unsupported verb")
	ErrServiceNameRequired = errors.New("service name is required")
)

var (
	semVerRegexp  = regexp.MustCompile(`^(0|[1-9]\d*)\.(0|[1-9]\d*)\.(0|[1-9]\d*)(?:-([0-9A-Za-z-]+(?:\.[0-9A-Za-z-]+)*))?(?:\+([0-9A-Za-z-]+(?:\.[0-9A-Za-z-]+)*))?$`)
	nameRegexp    = regexp.MustCompile(`^[A-Za-z0-9\-_]+$`)
	subjectRegexp = regexp.MustCompile(`^[^ >]*[>]?$`)
)

// resolveQueueGroup picks the queue group of an endpoint from its own
// settings first, then from its parent.
func resolveQueueGroup(customQG, parentQG string, disabled, parentDisabled bool) (string, bool) {
	if disabled {
		return "", true
	}
	if customQG != "" {
		return customQG, false
	}
	if parentDisabled {
		return "", true
	}
	if parentQG != "" {
		return parentQG, false
	}
	return DefaultQueueGroup, false
}

// ControlSubject returns $SRV.<VERB>[.name[.id]].
func ControlSubject(verb Verb, name, id string) (string, error) {
	verbStr := verb.String()
	if verbStr == "" {
		return "", fmt.Errorf("%w: %d", ErrVerbNotSupported, verb)
	}
	if name == "" && id != "" {
		return "", ErrServiceNameRequired
	}
	switch {
	case name == "":
		return fmt.Sprintf("%s.%s", APIPrefix, verbStr), nil
	case id == "":
		return fmt.Sprintf("%s.%s.%s", APIPrefix, verbStr, name), nil
	default:
		return fmt.Sprintf("%s.%s.%s.%s", APIPrefix, verbStr, name, id), nil
	}
}

func joinParts(parts ...string) string {
	out := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ".")
}

func (c *Config) valid() error {
	if !nameRegexp.MatchString(c.Name) {
		return fmt.Errorf("%w: invalid service name %q", ErrConfigValidation, c.Name)
	}
	if !semVerRegexp.MatchString(c.Version) {
		return fmt.Errorf("%w: invalid version %q (expected SemVer)", ErrConfigValidation, c.Version)
	}
	if c.QueueGroup != "" && !subjectRegexp.MatchString(c.QueueGroup) {
		return fmt.Errorf("%w: invalid queue group %q", ErrConfigValidation, c.QueueGroup)
	}
	return nil
}

// matchEndpointSubject performs wildcard subject matching.
func matchEndpointSubject(pattern, subj string) bool {
	pt := strings.Split(pattern, ".")
	st := strings.Split(subj, ".")

	if len(pt) > len(st) {
		return false
	}
	for i := range pt {
		if i == len(pt)-1 && pt[i] == ">" {
			return true
		}
		if pt[i] != st[i] && pt[i] != "*" {
			return false
		}
	}
	return len(pt) == len(st)
}
