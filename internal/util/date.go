package util

import (
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"wanotif/internal/domain"
)

var (
	isoPrefix = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})`)
	dmyStrict = regexp.MustCompile(`^(\d{2})/(\d{2})/(\d{4})$`)
)

// NormalizeDate accepts a leading YYYY-MM-DD, a strict DD/MM/YYYY, or anything
// dateparse understands (read as UTC). The display form is always derived from
// the ISO form.
func NormalizeDate(raw string) (domain.CanonicalDate, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return domain.CanonicalDate{}, false
	}
	if m := isoPrefix.FindStringSubmatch(s); m != nil {
		return domain.CanonicalDate{ISO: m[1]}, true
	}
	if m := dmyStrict.FindStringSubmatch(s); m != nil {
		return domain.CanonicalDate{ISO: m[3] + "-" + m[2] + "-" + m[1]}, true
	}
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return domain.CanonicalDate{}, false
	}
	return domain.CanonicalDate{ISO: t.UTC().Format("2006-01-02")}, true
}
