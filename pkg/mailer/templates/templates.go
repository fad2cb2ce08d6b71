package templates

import (
	"bytes"
	"encoding/json"
	"fmt"
	htmpl "html/template"
	"reflect"
	"sort"
	"strings"
	texttpl "text/template"
	"time"
)

// EmailData defines standard fields for email templates.
type EmailData struct {
	Name    string   `json:"Name"`
	Email   string   `json:"Email"`
	AppName string   `json:"AppName"`
	Type    string   `json:"Type"`
	Time    string   `json:"Time"`
	Changes []string `json:"Changes"`
}

// ToMap converts EmailData to a map[string]any for EmailJob.Data
func ToMap(d EmailData) map[string]any {
	b, _ := json.Marshal(d)
	var m map[string]any
	_ = json.Unmarshal(b, &m)
	return m
}

// defaultFn supports pipe usage: {{ .Value | default "Fallback" }}
func defaultFn(fallback any, value any) any {
	switch x := value.(type) {
	case string:
		if strings.TrimSpace(x) == "" {
			return fallback
		}
		return x
	case nil:
		return fallback
	default:
		rv := reflect.ValueOf(value)
		if !rv.IsValid() || rv.IsZero() {
			return fallback
		}
		return value
	}
}

func baseFuncs() map[string]any {
	return map[string]any{
		"now":     func() time.Time { return time.Now().UTC() },
		"upper":   strings.ToUpper,
		"default": defaultFn,
		"join": func(v any, sep string) string {
			switch xs := v.(type) {
			case []string:
				return strings.Join(xs, sep)
			case []any:
				parts := make([]string, len(xs))
				for i, x := range xs {
					parts[i] = fmt.Sprint(x)
				}
				return strings.Join(parts, sep)
			}
			return ""
		},
	}
}

// ---- Template names ----

const (
	Welcome        = "welcome"
	ProfileUpdated = "profile_updated"
)

type source struct {
	subject, text, html string
}

var sources = map[string]source{
	Welcome: {
		subject: `Welcome to {{ .AppName | default "our service" }}`,
		text: `Hi {{ .Name | default "there" }},

your account {{ .Email }} was created on {{ .Time }}.
`,
		html: `<p>Hi {{ .Name | default "there" }},</p>
<p>your account <strong>{{ .Email }}</strong> was created on {{ .Time }}.</p>`,
	},
	ProfileUpdated: {
		subject: `Your profile was updated`,
		text: `Hi {{ .Name | default "there" }},

the following fields of your account changed on {{ .Time }}: {{ join .Changes ", " }}.
If this was not you, change your password now.
`,
		html: `<p>Hi {{ .Name | default "there" }},</p>
<p>the following fields of your account changed on {{ .Time }}: <strong>{{ join .Changes ", " }}</strong>.</p>
<p>If this was not you, change your password now.</p>`,
	},
}

// Names returns the known template names in order.
func Names() []string {
	out := make([]string, 0, len(sources))
	for k := range sources {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func renderText(name, src string, data any) (string, error) {
	tpl, err := texttpl.New(name).Funcs(texttpl.FuncMap(baseFuncs())).Parse(src)
	if err != nil {
		return "", fmt.Errorf("parse text %q: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("exec %q: %w", name, err)
	}
	return buf.String(), nil
}

func renderHTML(name, src string, data any) (string, error) {
	tpl, err := htmpl.New(name).Funcs(htmpl.FuncMap(baseFuncs())).Parse(src)
	if err != nil {
		return "", fmt.Errorf("parse html %q: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("exec %q: %w", name, err)
	}
	return buf.String(), nil
}

// Render renders subject, text and html for the named template.
func Render(name string, data any) (subject string, text string, html string, err error) {
	src, ok := sources[name]
	if !ok {
		return "", "", "", fmt.Errorf("unknown template %q", name)
	}
	if subject, err = renderText(name+".subject", src.subject, data); err != nil {
		return "", "", "", err
	}
	if text, err = renderText(name+".text", src.text, data); err != nil {
		return "", "", "", err
	}
	if html, err = renderHTML(name+".html", src.html, data); err != nil {
		return "", "", "", err
	}
	return strings.TrimSpace(subject), text, html, nil
}
