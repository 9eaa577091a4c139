// Package validation checks request payloads and source URLs before any
// network or extractor work is started.
package validation

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/nijaru/yt-brief/errors"
)

type Validator struct {
	validate     *validator.Validate
	allowedHosts map[string]struct{}
}

func New(allowedHosts []string) *Validator {
	hosts := make(map[string]struct{}, len(allowedHosts))
	for _, h := range allowedHosts {
		h = strings.ToLower(strings.TrimSpace(h))
		if h != "" {
			hosts[h] = struct{}{}
		}
	}
	return &Validator{
		validate:     validator.New(),
		allowedHosts: hosts,
	}
}

// Struct runs the `validate` tags of s.
func (v *Validator) Struct(s interface{}) error {
	const op = "Validator.Struct"

	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return errors.InvalidInput(op, err, "Invalid request")
	}
	return errors.InvalidInput(op, err, strings.Join(FormatValidationErrors(fieldErrs), "; "))
}

// FormatValidationErrors renders one message per failed field.
func FormatValidationErrors(errs validator.ValidationErrors) []string {
	messages := make([]string, 0, len(errs))
	for _, fe := range errs {
		msg := fmt.Sprintf("Field '%s' failed on the '%s' tag", fe.Field(), fe.Tag())
		if fe.Param() != "" {
			msg = fmt.Sprintf("%s (value: %s)", msg, fe.Param())
		}
		messages = append(messages, msg)
	}
	return messages
}

// SourceURL checks that raw is an http(s) URL on an allowed host that points
// at a single video, and returns it trimmed. It never touches the network.
func (v *Validator) SourceURL(raw string) (string, error) {
	const op = "Validator.SourceURL"

	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errors.InvalidInput(op, nil, "URL is required")
	}

	parsed, err := url.ParseRequestURI(raw)
	if err != nil {
		return "", errors.InvalidInput(op, err, "Invalid URL format")
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", errors.InvalidInput(op, nil, "URL must start with http or https")
	}

	host := strings.ToLower(parsed.Hostname())
	if host == "" {
		return "", errors.InvalidInput(op, nil, "URL must have a host")
	}
	if !v.hostAllowed(host) {
		return "", errors.InvalidInput(op, nil, fmt.Sprintf("Unsupported host: %s", host))
	}

	switch {
	case strings.HasSuffix(host, "youtu.be"):
		if strings.Trim(parsed.Path, "/") == "" {
			return "", errors.InvalidInput(op, nil, "YouTube short URL must contain a video ID")
		}
	case strings.HasSuffix(host, "youtube.com"):
		if !strings.HasPrefix(parsed.Path, "/shorts/") && !strings.HasPrefix(parsed.Path, "/live/") &&
			parsed.Query().Get("v") == "" {
			return "", errors.InvalidInput(op, nil, "YouTube URL must contain a valid video ID")
		}
	}

	return raw, nil
}

func (v *Validator) hostAllowed(host string) bool {
	if _, ok := v.allowedHosts[host]; ok {
		return true
	}
	for allowed := range v.allowedHosts {
		if strings.HasSuffix(host, "."+allowed) {
			return true
		}
	}
	return false
}
