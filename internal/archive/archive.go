// Package archive keeps a local markdown copy of every drafted post.
package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"smi-los/internal/model"
)

// Frontmatter is the YAML header written at the top of an archived draft.
type Frontmatter struct {
	Title           string   `yaml:"title"`
	SourceURL       string   `yaml:"source_url"`
	MetaDescription string   `yaml:"meta_description,omitempty"`
	Tags            []string `yaml:"tags,omitempty"`
	Datetime        string   `yaml:"datetime"`
}

// Writer writes drafted posts into a directory, one markdown file per draft.
type Writer struct {
	dir string
	now func() time.Time
}

// NewWriter creates an archive writer rooted at dir.
func NewWriter(dir string) *Writer {
	return &Writer{dir: dir, now: time.Now}
}

// Write stores the draft for an article and returns the file path.
// Archiving is best-effort; callers log errors and carry on publishing.
func (w *Writer) Write(a model.Article, post model.BlogPost) (string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", err
	}
	now := w.now().UTC()
	fm := Frontmatter{
		Title:           post.Title,
		SourceURL:       a.URL,
		MetaDescription: post.MetaDescription,
		Tags:            post.Tags,
		Datetime:        now.Format("2006-01-02 15:04"),
	}
	head, err := yaml.Marshal(fm)
	if err != nil {
		return "", fmt.Errorf("encode frontmatter: %w", err)
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.Write(head)
	b.WriteString("---\n\n")
	writeSection(&b, post.Intro)
	writeSection(&b, post.Body)
	writeSection(&b, post.Conclusion)

	name := fmt.Sprintf("%s-%s.md", now.Format("20060102"), slugify(post.Title))
	path := filepath.Join(w.dir, name)
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func writeSection(b *strings.Builder, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	b.WriteString(text)
	b.WriteString("\n\n")
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

func slugify(title string) string {
	s := nonSlug.ReplaceAllString(strings.ToLower(title), "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return "draft"
	}
	if len(s) > 64 {
		s = strings.Trim(s[:64], "-")
	}
	return s
}
