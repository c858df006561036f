package db

import (
	"sync"

	"github.com/dlclark/regexp2"
)

// maxCachedPatterns bounds the compiled pattern cache. REGEXP is evaluated
// once per row, so a search reuses the same pattern many times.
const maxCachedPatterns = 64

var patternCache = struct {
	sync.Mutex
	m map[string]*regexp2.Regexp
}{m: make(map[string]*regexp2.Regexp)}

// regexpMatch implements the SQL REGEXP function: X REGEXP Y calls
// regexpMatch(Y, X). The pattern is compiled case-insensitively and matched
// anywhere in item. \b and \w are Unicode-aware.
func regexpMatch(pattern, item string) (bool, error) {
	re, err := compilePattern(pattern)
	if err != nil {
		return false, err
	}
	return re.MatchString(item)
}

func compilePattern(pattern string) (*regexp2.Regexp, error) {
	patternCache.Lock()
	defer patternCache.Unlock()

	if re, ok := patternCache.m[pattern]; ok {
		return re, nil
	}
	re, err := regexp2.Compile(pattern, regexp2.IgnoreCase)
	if err != nil {
		return nil, err
	}
	if len(patternCache.m) >= maxCachedPatterns {
		clear(patternCache.m)
	}
	patternCache.m[pattern] = re
	return re, nil
}

// wholeWordPattern builds the REGEXP argument for a whole-word search. The
// term is not escaped, so regex syntax in it keeps its meaning.
func wholeWordPattern(word string) string {
	return `\b` + word + `\b`
}
