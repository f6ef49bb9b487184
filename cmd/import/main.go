// Command import loads a directory of markdown posts into the journal's stored snapshot.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/debemdeboas/the-journal/internal/config"
	"github.com/debemdeboas/the-journal/internal/logger"
	"github.com/debemdeboas/the-journal/internal/model"
	"github.com/debemdeboas/the-journal/internal/repository"
	"github.com/debemdeboas/the-journal/internal/storage"
	"github.com/debemdeboas/the-journal/internal/util"
	"github.com/debemdeboas/the-journal/internal/util/compression"
)

// importer creates posts whose timestamps come from front matter or file times.
type importer struct {
	repo   *repository.ContentRepository
	author *model.User
	log    zerolog.Logger

	// Returned by the repository clock while a file is imported.
	at time.Time
}

func newImporter(store repository.Snapshotter, content config.ContentConfig, author *model.User, log zerolog.Logger) *importer {
	im := &importer{author: author, log: log}
	im.repo = repository.New(store,
		repository.WithContentConfig(content),
		repository.WithClock(func() time.Time { return im.at }),
	)
	return im
}

// importDir imports every .md file in dir. Posts whose title is already
// present are skipped. It returns the number of posts created.
func (im *importer) importDir(ctx context.Context, dir string) (int, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", dir, err)
	}

	titles := make(map[string]bool)
	for _, p := range im.repo.List() {
		titles[p.Title] = true
	}

	created := 0
	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".md") {
			continue
		}

		draft, at, err := readDraft(dir, file)
		if err != nil {
			im.log.Error().Err(err).Str("file", file.Name()).Msg("Skipping file")
			continue
		}
		if titles[draft.Title] {
			im.log.Info().Str("file", file.Name()).Str("title", draft.Title).Msg("Already imported")
			continue
		}

		im.at = at
		id, err := im.repo.CreatePost(ctx, draft, im.author)
		if err != nil {
			return created, fmt.Errorf("import %s: %w", file.Name(), err)
		}
		titles[draft.Title] = true
		created++
		im.log.Info().Str("file", file.Name()).Str("post_id", string(id)).Msg("Imported post")
	}
	return created, nil
}

// readDraft builds a draft from a markdown file. Front matter supplies the
// title, date and metadata; the file name and modification time fill in
// whatever it leaves out.
func readDraft(dir string, file os.DirEntry) (model.Draft, time.Time, error) {
	content, err := os.ReadFile(filepath.Join(dir, file.Name()))
	if err != nil {
		return model.Draft{}, time.Time{}, err
	}
	info, err := file.Info()
	if err != nil {
		return model.Draft{}, time.Time{}, err
	}

	draft := model.Draft{
		Title:    strings.TrimSuffix(file.Name(), ".md"),
		Markdown: string(content),
	}
	at := info.ModTime().UTC()

	if fm, err := util.GetFrontMatter(content); err == nil {
		if fm.Title != "" {
			draft.Title = fm.Title
		}
		if !fm.Date.IsZero() {
			at = fm.Date.UTC()
		}
		draft.Category = fm.Category
		draft.Tags = slices.Clone(fm.Tags)
		draft.Excerpt = fm.Excerpt
		draft.Spotlight = fm.Spotlight
	}
	return draft, at, nil
}

func main() {
	configPath := flag.String("config", config.DefaultConfigPath, "path to the YAML config file")
	path := flag.String("path", "", "directory containing .md files")
	authorID := flag.String("author-id", "", "author id for the imported posts (defaults to the configured owner)")
	authorName := flag.String("author-name", "", "author name for the imported posts")
	flag.Parse()

	if *path == "" {
		fmt.Fprintln(os.Stderr, "--path is required")
		os.Exit(2)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	storage.SetLogger(log)
	repository.SetLogger(log)

	author := &model.User{
		ID:     model.UserID(cfg.Auth.Owner.ID),
		Name:   cfg.Auth.Owner.Name,
		Avatar: cfg.Auth.Owner.Avatar,
	}
	if *authorID != "" {
		author = &model.User{ID: model.UserID(*authorID), Name: *authorID}
	}
	if *authorName != "" {
		author.Name = *authorName
	}

	ctx := context.Background()
	kv, closeKV, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.Storage.Backend).Msg("Failed to open storage")
	}
	defer closeKV()

	compressor, err := compression.ByName(cfg.Storage.Compression)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid compression")
	}

	store := storage.NewSnapshotStore(kv, cfg.Storage.Key, compressor)
	im := newImporter(store, cfg.Content, author, log)
	im.repo.Init(ctx, nil)

	created, err := im.importDir(ctx, *path)
	if closeErr := store.Close(ctx); closeErr != nil {
		log.Error().Err(closeErr).Msg("Failed to write snapshot")
	}
	if err != nil {
		log.Fatal().Err(err).Int("created", created).Msg("Import failed")
	}
	log.Info().Int("created", created).Int("total", im.repo.Len()).Msg("Import finished")
}
