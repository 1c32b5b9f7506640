package config

import (
	"fmt"
	"regexp"
)

// URLFilter applies the include/exclude regexes of a ScrapeConfig.
// Patterns use search semantics: they may match anywhere in the URL.
type URLFilter struct {
	include []*regexp.Regexp
	exclude []*regexp.Regexp
}

// Filter compiles the include and exclude patterns.
func (c *ScrapeConfig) Filter() (*URLFilter, error) {
	include, err := compilePatterns(c.IncludePatterns)
	if err != nil {
		return nil, err
	}
	exclude, err := compilePatterns(c.ExcludePatterns)
	if err != nil {
		return nil, err
	}
	return &URLFilter{include: include, exclude: exclude}, nil
}

// FilterOrAll is like Filter but returns a filter that allows every URL
// when a pattern does not compile. Validate rejects such patterns.
func (c *ScrapeConfig) FilterOrAll() *URLFilter {
	f, err := c.Filter()
	if err != nil {
		return &URLFilter{}
	}
	return f
}

// Allows reports whether rawURL passes the filters.
func (f *URLFilter) Allows(rawURL string) bool {
	if f == nil {
		return true
	}
	if len(f.include) > 0 {
		matched := false
		for _, re := range f.include {
			if re.MatchString(rawURL) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	for _, re := range f.exclude {
		if re.MatchString(rawURL) {
			return false
		}
	}
	return true
}

func compilePatterns(patterns []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("%w %q: %v", ErrInvalidPattern, p, err)
		}
		out = append(out, re)
	}
	return out, nil
}
