package tabular

import (
	"regexp"
	"strconv"
	"strings"
)

// Scalar detection patterns. Date shapes are accepted by pattern only;
// ambiguous month/day order is not semantically validated.
var (
	dateRegexes = []*regexp.Regexp{
		regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`), // YYYY-MM-DD
		regexp.MustCompile(`^\d{2}/\d{2}/\d{4}$`), // MM/DD/YYYY
		regexp.MustCompile(`^\d{4}/\d{2}/\d{2}$`), // YYYY/MM/DD
		regexp.MustCompile(`^\d{2}-\d{2}-\d{4}$`), // MM-DD-YYYY
	}
	timestampRegex = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}[T ]\d{2}:\d{2}:\d{2}(\.\d+)?Z?$`)
	timeRegex      = regexp.MustCompile(`^\d{2}:\d{2}(:\d{2}(\.\d+)?)?$`)
)

// detectionOrder is the per-sample priority: the first matching classifier
// wins, so narrower types are tried before wider ones.
var detectionOrder = []Kind{
	KindBoolean, KindInteger, KindDouble, KindDate, KindTimestamp, KindTime,
}

// inferScalarType classifies sampled text values into a scalar kind.
// Each non-empty sample votes for the first classifier it matches; a kind
// needs at least opts.MajorityThreshold of the votes, otherwise the column
// stays VARCHAR. Mixed columns never narrow: safety over precision.
func inferScalarType(samples []string, opts Options) Kind {
	counts := make(map[Kind]int)
	total := 0

	for _, sample := range samples {
		if sample == "" {
			continue
		}
		total++
		counts[classifySample(sample, opts)]++
	}

	if total == 0 {
		return KindString
	}

	for _, k := range detectionOrder {
		if float64(counts[k])/float64(total) >= opts.MajorityThreshold {
			return k
		}
	}
	return KindString
}

func classifySample(s string, opts Options) Kind {
	if opts.DetectBooleans && isBoolean(s) {
		return KindBoolean
	}
	if opts.DetectNumbers && isInteger(s) {
		return KindInteger
	}
	if opts.DetectNumbers && isDouble(s) {
		return KindDouble
	}
	if opts.DetectTemporals {
		if isDate(s) {
			return KindDate
		}
		if isTimestamp(s) {
			return KindTimestamp
		}
		if isTime(s) {
			return KindTime
		}
	}
	return KindString
}

func isBoolean(s string) bool {
	switch strings.ToLower(s) {
	case "true", "false", "yes", "no", "1", "0", "on", "off":
		return true
	}
	return false
}

// isInteger requires the entire string to parse; partial matches don't count.
func isInteger(s string) bool {
	_, err := strconv.ParseInt(s, 10, 64)
	return err == nil
}

func isDouble(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

func isDate(s string) bool {
	for _, re := range dateRegexes {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

func isTimestamp(s string) bool {
	return timestampRegex.MatchString(s)
}

func isTime(s string) bool {
	return timeRegex.MatchString(s)
}
