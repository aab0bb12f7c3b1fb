package posting

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
)

// Collector supplies postings for a role query. Implementations live
// outside the ranking core: board scrapers, social search, or files
// produced by either.
type Collector interface {
	Collect(ctx context.Context, searchTerm, location string) (*Postings, error)
}

// FileCollector reads batches previously gathered by an external
// scraper from a JSON file. Postings already tagged with a different
// search term are skipped; untagged ones are attributed to the query.
type FileCollector struct {
	Path string
}

func NewFileCollector(path string) *FileCollector {
	return &FileCollector{Path: path}
}

func (c *FileCollector) Collect(_ context.Context, searchTerm, _ string) (*Postings, error) {
	all, err := FromFile(c.Path)
	if err != nil {
		return nil, err
	}

	result := &Postings{}
	for _, item := range all.Items {
		switch item.SearchTerm {
		case "":
			item.SearchTerm = searchTerm
		case searchTerm:
		default:
			continue
		}
		result.Items = append(result.Items, item)
	}

	return result, nil
}

// FromFile loads a postings batch from a JSON file. An empty file is a
// valid empty batch.
func FromFile(path string) (*Postings, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, err
	}

	if stat.Size() == 0 {
		return &Postings{}, nil
	}

	var postings Postings
	if err := json.NewDecoder(file).Decode(&postings); err != nil {
		return nil, fmt.Errorf("decoding postings file %q: %w", path, err)
	}

	return &postings, nil
}
