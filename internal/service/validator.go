package service

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/mod/semver"

	"github.com/openlive/faq-chatbot/internal/models"
)

var (
	datePrefix = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)
	urlPattern = regexp.MustCompile(`https?://[^\s)]+`)
)

// ValidationReport lists corpus problems. Errors make the corpus unusable,
// warnings are data-quality notes.
type ValidationReport struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// Valid reports whether the corpus has no errors.
func (r ValidationReport) Valid() bool { return len(r.Errors) == 0 }

func (r *ValidationReport) errorf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ValidationReport) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// ValidateCorpus checks structural invariants: category and question ids
// share one namespace and must be unique, titles and question texts are
// required, URLs in answers must parse, and metadata must be well formed.
func ValidateCorpus(corpus models.Corpus) ValidationReport {
	report := ValidationReport{Errors: []string{}, Warnings: []string{}}
	ids := make(map[string]struct{})

	if len(corpus.Categories) == 0 {
		report.warnf("no categories defined")
	}

	for i, cat := range corpus.Categories {
		prefix := fmt.Sprintf("category %d", i+1)
		switch {
		case strings.TrimSpace(cat.ID) == "":
			report.errorf("%s: missing id", prefix)
		case has(ids, cat.ID):
			report.errorf("duplicate id: %s", cat.ID)
		default:
			ids[cat.ID] = struct{}{}
		}
		if strings.TrimSpace(cat.Title) == "" {
			report.errorf("%s: missing title", prefix)
		}
	}

	for _, cat := range corpus.Categories {
		for i, q := range cat.Questions {
			prefix := fmt.Sprintf("question %d (%s)", i+1, cat.ID)
			switch {
			case strings.TrimSpace(q.ID) == "":
				report.errorf("%s: missing id", prefix)
			case has(ids, q.ID):
				report.errorf("duplicate id: %s", q.ID)
			default:
				ids[q.ID] = struct{}{}
			}

			if strings.TrimSpace(q.Question) == "" {
				report.errorf("%s: missing question text", prefix)
			}
			if strings.TrimSpace(q.Answer) == "" {
				report.warnf("%s: missing answer", prefix)
			} else {
				for _, raw := range urlPattern.FindAllString(q.Answer, -1) {
					if u, err := url.ParseRequestURI(raw); err != nil || u.Host == "" {
						report.errorf("invalid URL in question %s: %s", q.ID, raw)
					}
				}
			}
		}
	}

	for _, cat := range corpus.Categories {
		for _, q := range cat.Questions {
			for _, rel := range q.Related {
				if !has(ids, rel) {
					report.warnf("question %s: related id %s does not exist", q.ID, rel)
				}
			}
		}
	}

	validateMetadata(corpus.Metadata, &report)
	return report
}

func validateMetadata(meta models.Metadata, report *ValidationReport) {
	switch {
	case meta.Version == "":
		report.warnf("metadata: missing version")
	case !semver.IsValid("v" + meta.Version):
		report.errorf("metadata: invalid version: %s", meta.Version)
	}

	switch {
	case meta.LastUpdated == "":
		report.warnf("metadata: missing lastUpdated")
	case !datePrefix.MatchString(meta.LastUpdated):
		report.errorf("metadata: invalid date format: %s", meta.LastUpdated)
	}

	if meta.Contact == nil {
		report.warnf("metadata: missing contact")
		return
	}
	fields := []struct{ name, value string }{
		{"phone", meta.Contact.Phone},
		{"facebook", meta.Contact.Facebook},
		{"zalo", meta.Contact.Zalo},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			report.warnf("metadata: missing contact %s", f.name)
		}
	}
}

func has(set map[string]struct{}, key string) bool {
	_, ok := set[key]
	return ok
}
