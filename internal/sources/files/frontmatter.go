package files

import (
	"regexp"
	"strings"
)

// Frontmatter grammar: a leading block delimited by --- lines, containing
// key: value lines. Only title, summary and a bracketed tags list are
// recognised; anything else in the block is ignored. This is deliberately
// narrower than YAML.
var (
	frontmatterBlock = regexp.MustCompile(`(?s)\A---\s*\n(.*?)\n---\s*\n?`)
	titlePattern     = regexp.MustCompile(`(?m)^title:\s*"?([^"\n]*?)"?\s*$`)
	summaryPattern   = regexp.MustCompile(`(?m)^summary:\s*"?([^"\n]*?)"?\s*$`)
	tagsPattern      = regexp.MustCompile(`(?m)^tags:\s*\[([^\]]*)\]\s*$`)
)

// Metadata holds the descriptive fields extracted from a frontmatter block.
type Metadata struct {
	Title   string
	Summary string
	Tags    []string
}

// parseFrontmatter extracts metadata from a delimited frontmatter block at
// the start of content. It returns the metadata, the remaining body, and
// whether a block was present at all.
func parseFrontmatter(content string) (Metadata, string, bool) {
	loc := frontmatterBlock.FindStringSubmatchIndex(content)
	if loc == nil {
		return Metadata{}, content, false
	}

	block := content[loc[2]:loc[3]]
	body := content[loc[1]:]

	var meta Metadata
	if m := titlePattern.FindStringSubmatch(block); m != nil {
		meta.Title = strings.TrimSpace(m[1])
	}
	if m := summaryPattern.FindStringSubmatch(block); m != nil {
		meta.Summary = strings.TrimSpace(m[1])
	}
	if m := tagsPattern.FindStringSubmatch(block); m != nil {
		meta.Tags = splitTagList(m[1])
	}

	return meta, body, true
}

// splitTagList parses the inside of a bracketed tag list: comma-separated
// entries, optionally quoted.
func splitTagList(list string) []string {
	parts := strings.Split(list, ",")
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		tag := strings.TrimSpace(part)
		tag = strings.Trim(tag, `"'`)
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
