// mdx.go rewrites converted Markdown into MDX for the site's content directory.
package md

import (
	"regexp"
	"strings"
)

const tweetStatus = `https?://(?:www\.)?(?:twitter|x)\.com/[^/]+/status/(\d+)`

var (
	linkedImagePattern = regexp.MustCompile(`\[\s*(!\[.*?\]\(.*?\))\s*\]\(.*?\)`)

	tweetURLLine  = regexp.MustCompile(`(?m)^[ \t]*` + tweetStatus + `(?:\?[^ \n]*)?[ \t\r]*$`)
	tweetLinkLine = regexp.MustCompile(`(?m)^[ \t]*\[.*?\]\(` + tweetStatus + `(?:\?[^ \n)]*)?\)[ \t\r]*$`)
	tweetLink     = regexp.MustCompile(`\[.*?\]\(` + tweetStatus + `(?:\?[^ \n)]*)?\)`)
	tweetInline   = regexp.MustCompile(`(^|[^\[(])(https?://(?:www\.)?(?:twitter|x)\.com/[^/]+/status/(\d+)(?:\?[^\s)]*)?)`)
	tweetTagLower = regexp.MustCompile(`<tweet\s+id="(\d+)"\s*/>`)

	leadingHeading = regexp.MustCompile(`^#+\s`)
	headingLine    = regexp.MustCompile(`^#+\s+[^\n]*\n?`)
	titleLine      = regexp.MustCompile(`^(# .+)(\r?\n)`)
)

// UnwrapLinkedImages replaces an image wrapped in a link, possibly spread over
// several lines, with the bare image.
func UnwrapLinkedImages(markdown string) string {
	return linkedImagePattern.ReplaceAllString(markdown, "${1}")
}

// EmbedTweets turns links to Twitter/X statuses into <Tweet id="..." /> components,
// each on its own paragraph.
func EmbedTweets(markdown string) string {
	markdown = tweetURLLine.ReplaceAllString(markdown, "\n<Tweet id=\"${1}\" />\n")
	markdown = tweetLinkLine.ReplaceAllString(markdown, "\n<Tweet id=\"${1}\" />\n")
	markdown = tweetLink.ReplaceAllString(markdown, "\n\n<Tweet id=\"${1}\" />\n\n")
	markdown = tweetInline.ReplaceAllString(markdown, "${1}\n\n<Tweet id=\"${3}\" />\n\n")
	return tweetTagLower.ReplaceAllString(markdown, "<Tweet id=\"${1}\" />")
}

// WithTitle makes "# title" the first line of the document, replacing a leading
// heading of any level if there is one. A blank title leaves markdown unchanged.
func WithTitle(markdown, title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return markdown
	}

	trimmed := strings.TrimSpace(markdown)
	if leadingHeading.MatchString(trimmed) {
		rest := headingLine.ReplaceAllString(trimmed, "")
		return "# " + title + "\n\n" + strings.TrimLeft(rest, " \t\r\n")
	}
	return "# " + title + "\n\n" + trimmed
}

// InsertDate places a <Date date="..." /> component below a leading "# " heading.
// Documents that do not start with one are returned unchanged.
func InsertDate(markdown, date string) string {
	m := titleLine.FindStringSubmatchIndex(markdown)
	if m == nil {
		return markdown
	}
	date = strings.ReplaceAll(date, `"`, "&quot;")
	return markdown[:m[1]] + "\n<Date date=\"" + date + "\" />\n\n" + markdown[m[1]:]
}
