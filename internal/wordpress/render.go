package wordpress

import (
	"strings"

	"smi-los/internal/model"
)

// The call-to-action block is fixed; it closes every rendered post.
const (
	ctaLead     = "Contact us for a professional consultation!"
	ctaServices = "Our services: energy audits, thermal imaging, ventilation system testing."
)

// FormatPost renders a structured blog post into the HTML body expected by
// the blog channel. The transform is pure and deterministic: identical input
// yields byte-identical output.
func FormatPost(post model.BlogPost) string {
	var b strings.Builder
	b.WriteString("<div class=\"blog-post\">\n")
	b.WriteString("<div class=\"intro\">")
	b.WriteString(textToHTML(post.Intro))
	b.WriteString("</div>\n")
	b.WriteString("<div class=\"body\">")
	b.WriteString(textToHTML(post.Body))
	b.WriteString("</div>\n")
	b.WriteString("<div class=\"conclusion\">")
	b.WriteString(textToHTML(post.Conclusion))
	b.WriteString("</div>\n")
	b.WriteString("<div class=\"cta\">\n")
	b.WriteString("<p><strong>" + ctaLead + "</strong></p>\n")
	b.WriteString("<p>" + ctaServices + "</p>\n")
	b.WriteString("</div>\n")
	b.WriteString("</div>")
	return b.String()
}

// textToHTML splits text on blank-line boundaries and wraps each non-empty
// paragraph in <p> tags. Empty paragraphs are dropped.
func textToHTML(text string) string {
	if text == "" {
		return ""
	}
	paragraphs := strings.Split(text, "\n\n")
	parts := make([]string, 0, len(paragraphs))
	for _, p := range paragraphs {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		parts = append(parts, "<p>"+p+"</p>")
	}
	return strings.Join(parts, "\n")
}
