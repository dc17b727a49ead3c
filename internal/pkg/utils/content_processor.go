package utils

import (
	"regexp"
	"strings"
)

// tagClass pairs an HTML element pattern with the Tailwind classes injected
// into alert notes, news articles and lesson content before rendering.
type tagClass struct {
	pattern     *regexp.Regexp
	replacement string
}

var contentTagClasses = []tagClass{
	{regexp.MustCompile(`<h1([^>]*)>`), `<h1$1 class="text-4xl font-bold mb-4 mt-6">`},
	{regexp.MustCompile(`<h2([^>]*)>`), `<h2$1 class="text-3xl font-bold mb-3 mt-5">`},
	{regexp.MustCompile(`<h3([^>]*)>`), `<h3$1 class="text-2xl font-bold mb-2 mt-4">`},
	{regexp.MustCompile(`<h4([^>]*)>`), `<h4$1 class="text-xl font-bold mb-2 mt-3">`},
	{regexp.MustCompile(`<h5([^>]*)>`), `<h5$1 class="text-lg font-bold mb-1 mt-2">`},
	{regexp.MustCompile(`<h6([^>]*)>`), `<h6$1 class="text-base font-bold mb-1 mt-2">`},
	{regexp.MustCompile(`<p([^>]*)>`), `<p$1 class="mb-4 text-base-content leading-relaxed">`},
	{regexp.MustCompile(`<ul([^>]*)>`), `<ul$1 class="list-disc list-inside mb-4 ml-4 space-y-2">`},
	{regexp.MustCompile(`<ol([^>]*)>`), `<ol$1 class="list-decimal list-inside mb-4 ml-4 space-y-2">`},
	{regexp.MustCompile(`<li([^>]*)>`), `<li$1 class="text-base-content">`},
	{regexp.MustCompile(`<blockquote([^>]*)>`), `<blockquote$1 class="border-l-4 border-primary pl-4 italic mb-4 text-base-content/80">`},
	{regexp.MustCompile(`<table([^>]*)>`), `<table$1 class="table table-bordered w-full mb-4">`},
	{regexp.MustCompile(`<code([^>]*)>`), `<code$1 class="bg-base-200 px-2 py-1 rounded text-sm font-mono">`},
	{regexp.MustCompile(`<pre([^>]*)>`), `<pre$1 class="bg-base-200 p-4 rounded-lg mb-4 overflow-x-auto">`},
	{regexp.MustCompile(`<a([^>]*)>`), `<a$1 class="link link-primary">`},
	{regexp.MustCompile(`<strong([^>]*)>`), `<strong$1 class="font-bold">`},
	{regexp.MustCompile(`<em([^>]*)>`), `<em$1 class="italic">`},
}

// ProcessHTMLContent styles editor-produced HTML for the site theme. Elements
// that already carry a class attribute are left alone so authors can override
// the defaults per article.
func ProcessHTMLContent(content string) string {
	for _, tc := range contentTagClasses {
		matches := tc.pattern.FindAllStringSubmatch(content, -1)
		for _, match := range matches {
			if len(match) > 1 && !strings.Contains(match[1], "class=") {
				content = strings.Replace(content, match[0], tc.replacement, 1)
			}
		}
	}
	return content
}
