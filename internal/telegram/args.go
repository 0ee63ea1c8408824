package telegram

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/google/shlex"
)

// chartKeys are the option names accepted as key=value arguments.
var chartKeys = map[string]bool{
	"entity": true, "value": true, "title": true, "filter": true,
	"round": true, "width": true, "height": true, "missing": true, "tight": true,
}

// splitArgs splits shell style: whitespace separates, quotes group words
// and backslash escapes.
func splitArgs(s string) ([]string, error) {
	return shlex.Split(s)
}

// quoteArg quotes v so splitArgs reads it back as one word.
func quoteArg(v string) string {
	return `"` + strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(v) + `"`
}

// parseChartArgs reads "<url|preset> [key=value ...] [tight]" into request
// parameters in the form the HTTP API takes.
func parseChartArgs(s string) (url.Values, error) {
	args, err := splitArgs(s)
	if err != nil {
		return nil, err
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("missing data url or preset name")
	}
	q := url.Values{}
	target := args[0]
	if strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://") {
		q.Set("url", target)
	} else {
		q.Set("preset", target)
	}
	for _, a := range args[1:] {
		k, v, ok := strings.Cut(a, "=")
		k = strings.ToLower(k)
		if !chartKeys[k] {
			return nil, fmt.Errorf("unknown option %q", a)
		}
		if !ok && k != "tight" {
			return nil, fmt.Errorf("option %q needs a value", k)
		}
		q.Set(k, v)
	}
	return q, nil
}
