package source

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// DirReviews serves reviews from a directory of exported review files.
//
// Supported formats:
//   - .yaml/.yml: {product, reviews: [string | {content, platform, polarity}]}
//   - .html/.htm: saved review pages, see ExtractReviewsHTML
//   - .txt: one snippet per line
//
// A file belongs to a product when its product field (or, if absent, its
// file name without extension) and the queried product name contain one another.
type DirReviews struct {
	dir    string
	logger logrus.FieldLogger
}

// NewDirReviews creates a new directory review source
func NewDirReviews(dir string, logger logrus.FieldLogger) *DirReviews {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &DirReviews{dir: dir, logger: logger}
}

// reviewFile is the YAML export format
type reviewFile struct {
	Product string         `yaml:"product"`
	Reviews []reviewRecord `yaml:"reviews"`
}

type reviewRecord struct {
	Content  string `yaml:"content"`
	Platform string `yaml:"platform"`
	Polarity string `yaml:"polarity"`
}

// UnmarshalYAML accepts either a bare string or a mapping
func (r *reviewRecord) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		r.Content = node.Value
		return nil
	}

	type plain reviewRecord
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*r = reviewRecord(p)
	return nil
}

// Search collects matching snippets from every supported file in the directory
func (s *DirReviews) Search(ctx context.Context, q ReviewQuery) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read reviews dir: %w", err)
	}

	var reviews []string
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if entry.IsDir() {
			continue
		}

		path := filepath.Join(s.dir, entry.Name())
		records, err := readReviewFile(path, q.Product)
		if err != nil {
			s.logger.WithError(err).WithField("file", path).Warn("Skipping unreadable review file")
			continue
		}

		for _, r := range records {
			if !matchesFilter(q.Platform, r.Platform) || !matchesFilter(q.Polarity, r.Polarity) {
				continue
			}
			reviews = append(reviews, r.Content)
		}
	}

	return limit(dedupe(reviews), q.Limit), nil
}

// readReviewFile returns the file's records when the file belongs to product
func readReviewFile(path, product string) ([]reviewRecord, error) {
	ext := strings.ToLower(filepath.Ext(path))
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	switch ext {
	case ".yaml", ".yml", ".html", ".htm", ".txt":
	default:
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	switch ext {
	case ".yaml", ".yml":
		var f reviewFile
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
		key := f.Product
		if key == "" {
			key = stem
		}
		if !productMatches(key, product) {
			return nil, nil
		}
		return f.Reviews, nil

	case ".html", ".htm":
		if !productMatches(stem, product) {
			return nil, nil
		}
		snippets, err := ExtractReviewsHTML(string(data))
		if err != nil {
			return nil, fmt.Errorf("parse html: %w", err)
		}
		return toRecords(snippets), nil

	default:
		if !productMatches(stem, product) {
			return nil, nil
		}
		var snippets []string
		scanner := bufio.NewScanner(bytes.NewReader(data))
		for scanner.Scan() {
			if line := strings.TrimSpace(scanner.Text()); line != "" && !strings.HasPrefix(line, "#") {
				snippets = append(snippets, line)
			}
		}
		if err := scanner.Err(); err != nil {
			return nil, err
		}
		return toRecords(snippets), nil
	}
}

func toRecords(snippets []string) []reviewRecord {
	records := make([]reviewRecord, 0, len(snippets))
	for _, s := range snippets {
		records = append(records, reviewRecord{Content: s})
	}
	return records
}

func productMatches(key, product string) bool {
	key = normalizeName(key)
	product = normalizeName(product)
	if key == "" || product == "" {
		return false
	}
	return strings.Contains(product, key) || strings.Contains(key, product)
}

func normalizeName(s string) string {
	s = strings.NewReplacer("-", " ", "_", " ").Replace(strings.ToLower(s))
	return strings.Join(strings.Fields(s), " ")
}

// dedupe removes blank and repeated snippets, keeping first occurrences
func dedupe(reviews []string) []string {
	seen := make(map[string]bool)
	var unique []string

	for _, r := range reviews {
		r = strings.TrimSpace(r)
		key := strings.ToLower(r)
		if r == "" || seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, r)
	}

	return unique
}
