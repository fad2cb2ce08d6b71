package mailer

import (
	"errors"
	"strings"

	tpl "github.com/oksasatya/go-user-identity/pkg/mailer/templates"
)

var ErrEmptyJob = errors.New("email job has neither template nor subject")

// Prepare turns a queued job into subject, text and html. A template job is
// rendered; otherwise the literal Subject/Text/HTML are used as is.
func Prepare(job EmailJob) (subject, text, html string, err error) {
	if strings.TrimSpace(job.To) == "" {
		return "", "", "", errors.New("email job has no recipient")
	}
	if job.Template != "" {
		return tpl.Render(job.Template, job.Data)
	}
	if job.Subject == "" || (job.Text == "" && job.HTML == "") {
		return "", "", "", ErrEmptyJob
	}
	return job.Subject, job.Text, job.HTML, nil
}
