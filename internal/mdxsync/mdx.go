// Package mdxsync mirrors a publication's posts into a directory of MDX files.
package mdxsync

import (
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/open-cli-collective/substack-cli/api"
	"github.com/open-cli-collective/substack-cli/pkg/md"
)

// EpochDate is written for posts without a publication date.
const EpochDate = "1970-01-01T00:00:00.000Z"

var frontmatterPattern = regexp.MustCompile(`^---\r?\n([\s\S]*?)\r?\n---`)

// PostDate returns the date written to the frontmatter for summary.
func PostDate(summary api.PostSummary) string {
	if summary.PostDate == "" {
		return EpochDate
	}
	return summary.PostDate
}

// PostTitle returns the post title, falling back to the slug with dashes as spaces.
func PostTitle(summary api.PostSummary) string {
	if t := strings.TrimSpace(summary.Title); t != "" {
		return t
	}
	return strings.ReplaceAll(summary.Slug, "-", " ")
}

// BuildMDX renders a post as an MDX document with YAML frontmatter. When post
// is nil or has no body (paywalled or missing), the document holds a short
// placeholder linking to summary.CanonicalURL.
func BuildMDX(summary api.PostSummary, post *api.Post) string {
	title := PostTitle(summary)
	date := PostDate(summary)
	link := summary.CanonicalURL

	description := summary.TruncatedBodyText
	if strings.TrimSpace(description) == "" {
		description = summary.Description
	}
	description = api.Truncate(description, api.DescriptionLimit)

	available := post.HasBody()

	var sb strings.Builder
	sb.WriteString("---\n")
	sb.WriteString(frontmatter(
		field{"title", stringNode(title)},
		field{"date", stringNode(date)},
		field{"description", stringNode(description)},
		field{"available", boolNode(available)},
		field{"image", stringNode(summary.CoverImage)},
		field{"link", stringNode(link)},
	))
	sb.WriteString("---\n\n")

	if !available {
		sb.WriteString("# " + title + "\n\nThis post is available on [Substack](" + link + ").\n")
		return sb.String()
	}

	body := md.FromHTML(post.BodyHTML)
	body = md.WithTitle(body, title)
	body = md.UnwrapLinkedImages(body)
	body = md.EmbedTweets(body)
	body = md.InsertDate(body, date)

	sb.WriteString(strings.TrimRight(body, " \t\r\n"))
	sb.WriteString("\n")
	return sb.String()
}

type field struct {
	key   string
	value *yaml.Node
}

// frontmatter encodes fields as a YAML mapping, in order.
func frontmatter(fields ...field) string {
	doc := &yaml.Node{Kind: yaml.MappingNode}
	for _, f := range fields {
		doc.Content = append(doc.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: f.key}, f.value)
	}
	// A flat mapping of string and bool scalars always encodes.
	out, _ := yaml.Marshal(doc)
	return string(out)
}

func stringNode(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Style: yaml.DoubleQuotedStyle, Value: s}
}

func boolNode(b bool) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(b)}
}

// ParseFrontmatter returns the scalar fields of a document's leading YAML
// frontmatter as their literal text. Documents without frontmatter, or with
// frontmatter that does not parse, yield an empty map.
func ParseFrontmatter(content string) map[string]string {
	fields := make(map[string]string)

	m := frontmatterPattern.FindStringSubmatch(content)
	if m == nil {
		return fields
	}

	var nodes map[string]yaml.Node
	if err := yaml.Unmarshal([]byte(m[1]), &nodes); err != nil {
		return fields
	}
	for key, node := range nodes {
		if node.Kind == yaml.ScalarNode {
			fields[key] = node.Value
		}
	}
	return fields
}
