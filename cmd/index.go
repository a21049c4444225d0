package cmd

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/docfox/docfox/internal/config"
	"github.com/docfox/docfox/internal/knowledge"
	"github.com/docfox/docfox/internal/log"
)

var (
	indexCategory  string
	indexSourceURL string
	indexTitle     string
	indexReplace   bool
)

var indexCmd = &cobra.Command{
	Use:   "index <path>...",
	Short: "Index markdown documentation into the knowledge base",
	Long: `Index reads markdown files (or directories of markdown files), extracts
provenance from the document itself, and stores chunked embeddings.

Category comes from a "LiveKit Docs › Category › ..." breadcrumb line and the
title from the first heading; both can be overridden with flags. YAML
frontmatter is stripped before chunking.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIndex(cmd.Context(), args)
	},
}

func init() {
	indexCmd.Flags().StringVar(&indexCategory, "category", "", "category override for all indexed files")
	indexCmd.Flags().StringVar(&indexSourceURL, "source-url", "", "source URL (single file only)")
	indexCmd.Flags().StringVar(&indexTitle, "title", "", "title override (single file only)")
	indexCmd.Flags().BoolVar(&indexReplace, "replace", true, "replace previously indexed copies of the same source URL")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(ctx context.Context, paths []string) error {
	logger := initLogger()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	store, pool, err := setupStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer pool.Close()

	files, err := collectMarkdownFiles(paths)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no markdown files found under %v", paths)
	}
	if len(files) > 1 && (indexSourceURL != "" || indexTitle != "") {
		return fmt.Errorf("--source-url and --title only apply to a single file")
	}

	for _, file := range files {
		if err := indexFile(ctx, store, logger, file); err != nil {
			return fmt.Errorf("indexing %s: %w", file, err)
		}
	}

	logger.Info("indexing complete", "files", len(files))
	return nil
}

func indexFile(ctx context.Context, store *knowledge.Store, logger log.Logger, path string) error {
	raw, err := os.ReadFile(path) // #nosec G304 -- path comes from the operator's command line
	if err != nil {
		return err
	}

	content, meta := parseMarkdown(string(raw))

	doc := knowledge.Document{Content: content}
	if indexCategory != "" {
		doc.Category = &indexCategory
	} else if meta.Category != "" {
		doc.Category = &meta.Category
	}
	if indexTitle != "" {
		doc.SourceTitle = &indexTitle
	} else if meta.Title != "" {
		doc.SourceTitle = &meta.Title
	}
	if indexSourceURL != "" {
		doc.SourceURL = &indexSourceURL
	}

	var id string
	if indexReplace && doc.SourceURL != nil {
		id, err = store.ReindexDocument(ctx, doc)
	} else {
		id, err = store.IndexDocument(ctx, doc)
	}
	if err != nil {
		return err
	}

	logger.Info("indexed document",
		"file", path, "resource_id", id,
		"category", meta.Category, "title", meta.Title)
	return nil
}

// collectMarkdownFiles expands the given paths into markdown files, walking
// directories recursively.
func collectMarkdownFiles(paths []string) ([]string, error) {
	var files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, path)
			continue
		}
		err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && strings.HasSuffix(p, ".md") {
				files = append(files, p)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}

// docMeta is the provenance extracted from a markdown document.
type docMeta struct {
	Category string
	Title    string
}

// breadcrumbMarker identifies the docs breadcrumb line; its second segment is
// the category.
const breadcrumbMarker = "LiveKit Docs ›"

// parseMarkdown strips YAML frontmatter and extracts provenance: the category
// from a breadcrumb line near the top, the title from the first heading.
func parseMarkdown(content string) (string, docMeta) {
	content = stripFrontmatter(content)

	var meta docMeta
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		// Provenance lives at the top; don't scan the whole document.
		if i >= 20 {
			break
		}
		trimmed := strings.TrimSpace(line)
		if meta.Category == "" && strings.HasPrefix(trimmed, breadcrumbMarker) {
			parts := strings.Split(trimmed, "›")
			if len(parts) >= 2 {
				meta.Category = strings.TrimSpace(parts[1])
			}
		}
		if meta.Title == "" && strings.HasPrefix(trimmed, "# ") {
			meta.Title = strings.TrimSpace(strings.TrimPrefix(trimmed, "# "))
		}
		if meta.Category != "" && meta.Title != "" {
			break
		}
	}
	return content, meta
}

// stripFrontmatter removes a leading YAML frontmatter block delimited by ---
// lines. Content without frontmatter is returned unchanged.
func stripFrontmatter(content string) string {
	const delim = "---"
	trimmed := strings.TrimLeft(content, "\n")
	if !strings.HasPrefix(trimmed, delim+"\n") {
		return content
	}
	rest := trimmed[len(delim)+1:]
	end := strings.Index(rest, "\n"+delim)
	if end < 0 {
		return content
	}
	after := rest[end+1+len(delim):]
	// The closing delimiter line may end with a newline or the document.
	if idx := strings.IndexByte(after, '\n'); idx >= 0 {
		after = after[idx+1:]
	} else {
		after = ""
	}
	return strings.TrimLeft(after, "\n")
}
