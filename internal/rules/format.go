package rules

import (
	"net"
	"net/mail"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/jacoelho/jsonschema/internal/jsonpointer"
	"github.com/jacoelho/jsonschema/internal/value"
)

// FormatRule dispatches to a closed set of known format validators (spec
// §4.4). An unrecognized token is annotation-only and always passes,
// mirroring the teacher's parseTemporalValue closed switch
// (internal/types/facet_validators.go), written as a lookup table instead
// of a single switch. The table is fixed at build time; there is no API
// for registering additional formats.
type FormatRule struct {
	Token string
}

type formatFunc func(string) bool

var formatValidators = map[string]formatFunc{
	"date-time":             isDateTime,
	"date":                  isDate,
	"time":                  isTime,
	"email":                 isEmail,
	"hostname":              isHostname,
	"ipv4":                  isIPv4,
	"ipv6":                  isIPv6,
	"uri":                   isURI,
	"uri-reference":         isURIReference,
	"json-pointer":          isJSONPointer,
	"relative-json-pointer": isRelativeJSONPointer,
	"regex":                 isRegex,
	"uuid":                  isUUID,
	"base64":                func(s string) bool { return validBase64(s, true) },
	"base64url":             func(s string) bool { return validBase64(s, false) },
}

// Evaluate implements Rule.
func (r FormatRule) Evaluate(v value.Value, ctx *Ctx) bool {
	s, ok := applicableString(v)
	if !ok {
		return true
	}
	fn, known := formatValidators[r.Token]
	if !known {
		return true
	}
	if fn(s) {
		return true
	}
	ctx.AddError("format", v, "string does not satisfy format %q", r.Token)
	return false
}

func isDateTime(s string) bool {
	if _, err := time.Parse(time.RFC3339Nano, s); err != nil {
		return false
	}
	sep := strings.IndexAny(s, "Tt")
	if sep < 0 {
		return false
	}
	return isDate(s[:sep])
}

func isDate(s string) bool {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return false
	}
	return t.Format("2006-01-02") == s
}

func isTime(s string) bool {
	for _, layout := range []string{"15:04:05Z07:00", "15:04:05.999999999Z07:00"} {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}

func isEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	if err != nil {
		return false
	}
	return addr.Address == s
}

var hostnameLabel = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?$`)

func isHostname(s string) bool {
	if len(s) == 0 || len(s) > 253 {
		return false
	}
	for _, label := range strings.Split(s, ".") {
		if !hostnameLabel.MatchString(label) {
			return false
		}
	}
	return true
}

func isIPv4(s string) bool {
	ip := net.ParseIP(s)
	return ip != nil && ip.To4() != nil && !strings.Contains(s, ":")
}

func isIPv6(s string) bool {
	if strings.Count(s, "::") > 1 {
		return false
	}
	if !strings.Contains(s, ":") {
		return false
	}
	return net.ParseIP(s) != nil
}

func isURI(s string) bool {
	u, err := url.Parse(s)
	if err != nil || !u.IsAbs() {
		return false
	}
	return true
}

func isURIReference(s string) bool {
	_, err := url.Parse(s)
	return err == nil
}

func isJSONPointer(s string) bool {
	if s == "" {
		return true
	}
	if !strings.HasPrefix(s, "/") {
		return false
	}
	for _, seg := range strings.Split(s[1:], "/") {
		if strings.Contains(seg, "~") {
			rest := seg
			for {
				i := strings.Index(rest, "~")
				if i < 0 {
					break
				}
				if i+1 >= len(rest) || (rest[i+1] != '0' && rest[i+1] != '1') {
					return false
				}
				rest = rest[i+2:]
			}
		}
	}
	_ = jsonpointer.Parse(s)
	return true
}

func isRelativeJSONPointer(s string) bool {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == 0 {
		return false
	}
	rest := s[i:]
	if rest == "" {
		return true
	}
	if rest == "#" {
		return true
	}
	return isJSONPointer(rest)
}

func isRegex(s string) bool {
	_, err := regexp.Compile(s)
	return err == nil
}

var uuidPattern = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

func isUUID(s string) bool {
	return uuidPattern.MatchString(s)
}
