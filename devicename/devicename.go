// Package devicename parses and formats fully-qualified device names of the
// form "/job:<job>/replica:<r>/task:<t>/device:<TYPE>:<id>".
//
// Every component is optional and components are accepted in any order.
// Numeric components and the job name admit the wildcard "*", meaning "any".
// The legacy shorthands "/cpu:<id>" and "/gpu:<id>" are accepted and
// normalized to "/device:CPU:<id>" and "/device:GPU:<id>".
package devicename

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ParsedName is the structured form of a fully-qualified device name. A
// component with its Has* flag unset is either missing or was given as the
// wildcard "*".
type ParsedName struct {
	HasJob bool
	Job    string

	HasReplica bool
	Replica    int

	HasTask bool
	Task    int

	HasType bool
	Type    string

	HasID bool
	ID    int
}

// String formats the parsed name back into its canonical full-name form.
// Missing job/replica/task components are omitted; a present device type with
// a missing id renders the id as "*". Parsing a canonical full name and
// formatting it again is the identity.
func (p ParsedName) String() string {
	var sb strings.Builder
	if p.HasJob {
		sb.WriteString("/job:")
		sb.WriteString(p.Job)
	}
	if p.HasReplica {
		sb.WriteString("/replica:")
		sb.WriteString(strconv.Itoa(p.Replica))
	}
	if p.HasTask {
		sb.WriteString("/task:")
		sb.WriteString(strconv.Itoa(p.Task))
	}
	if p.HasType {
		sb.WriteString("/device:")
		sb.WriteString(p.Type)
		sb.WriteString(":")
		if p.HasID {
			sb.WriteString(strconv.Itoa(p.ID))
		} else {
			sb.WriteString("*")
		}
	}
	return sb.String()
}

// Parse parses a fully-qualified device name. It fails on empty names, names
// with unknown components, malformed component values, or components given
// more than once.
func Parse(name string) (ParsedName, error) {
	var p ParsedName
	if name == "" {
		return p, errors.New("empty device name")
	}
	var seenJob, seenReplica, seenTask, seenDevice bool
	rest := name
	for rest != "" {
		var value string
		var ok bool
		switch {
		case consume(&rest, "/job:"):
			value, ok = nextSegment(&rest)
			if !ok || seenJob {
				return ParsedName{}, errors.Errorf("invalid job in device name %q", name)
			}
			seenJob = true
			if value != "*" {
				if !isJobName(value) {
					return ParsedName{}, errors.Errorf("invalid job %q in device name %q", value, name)
				}
				p.HasJob = true
				p.Job = value
			}

		case consume(&rest, "/replica:"):
			value, ok = nextSegment(&rest)
			if !ok || seenReplica {
				return ParsedName{}, errors.Errorf("invalid replica in device name %q", name)
			}
			seenReplica = true
			if value != "*" {
				n, err := strconv.Atoi(value)
				if err != nil || n < 0 {
					return ParsedName{}, errors.Errorf("invalid replica %q in device name %q", value, name)
				}
				p.HasReplica = true
				p.Replica = n
			}

		case consume(&rest, "/task:"):
			value, ok = nextSegment(&rest)
			if !ok || seenTask {
				return ParsedName{}, errors.Errorf("invalid task in device name %q", name)
			}
			seenTask = true
			if value != "*" {
				n, err := strconv.Atoi(value)
				if err != nil || n < 0 {
					return ParsedName{}, errors.Errorf("invalid task %q in device name %q", value, name)
				}
				p.HasTask = true
				p.Task = n
			}

		case consume(&rest, "/device:"):
			value, ok = nextSegment(&rest)
			if !ok || seenDevice {
				return ParsedName{}, errors.Errorf("invalid device in device name %q", name)
			}
			seenDevice = true
			typeName, id, found := strings.Cut(value, ":")
			if !found {
				return ParsedName{}, errors.Errorf("missing id in device %q of device name %q", value, name)
			}
			if err := p.setDevice(typeName, id); err != nil {
				return ParsedName{}, errors.WithMessagef(err, "in device name %q", name)
			}

		case consume(&rest, "/cpu:") || consume(&rest, "/CPU:"):
			value, ok = nextSegment(&rest)
			if !ok || seenDevice {
				return ParsedName{}, errors.Errorf("invalid device in device name %q", name)
			}
			seenDevice = true
			if err := p.setDevice("CPU", value); err != nil {
				return ParsedName{}, errors.WithMessagef(err, "in device name %q", name)
			}

		case consume(&rest, "/gpu:") || consume(&rest, "/GPU:"):
			value, ok = nextSegment(&rest)
			if !ok || seenDevice {
				return ParsedName{}, errors.Errorf("invalid device in device name %q", name)
			}
			seenDevice = true
			if err := p.setDevice("GPU", value); err != nil {
				return ParsedName{}, errors.WithMessagef(err, "in device name %q", name)
			}

		default:
			return ParsedName{}, errors.Errorf("unknown component at %q in device name %q", rest, name)
		}
	}
	return p, nil
}

// setDevice fills in the type and id components, validating both.
func (p *ParsedName) setDevice(typeName, id string) error {
	if !isTypeName(typeName) {
		return errors.Errorf("invalid device type %q", typeName)
	}
	p.HasType = true
	p.Type = typeName
	if id == "*" {
		return nil
	}
	n, err := strconv.Atoi(id)
	if err != nil || n < 0 {
		return errors.Errorf("invalid device id %q", id)
	}
	p.HasID = true
	p.ID = n
	return nil
}

// consume strips prefix from *rest if present, reporting whether it did.
func consume(rest *string, prefix string) bool {
	if strings.HasPrefix(*rest, prefix) {
		*rest = (*rest)[len(prefix):]
		return true
	}
	return false
}

// nextSegment takes the value up to the next '/' (or the end) off *rest.
// It fails on an empty value.
func nextSegment(rest *string) (string, bool) {
	end := strings.IndexByte(*rest, '/')
	if end == -1 {
		end = len(*rest)
	}
	value := (*rest)[:end]
	*rest = (*rest)[end:]
	return value, value != ""
}

func isJobName(s string) bool {
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9', r == '_', r == '-':
		default:
			return false
		}
	}
	return s != ""
}

func isTypeName(s string) bool {
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9', r == '_':
		default:
			return false
		}
	}
	return s != ""
}
