package contact

import (
	"context"

	lru "github.com/hashicorp/golang-lru"
	"github.com/rs/zerolog"

	"framelink-support/internal/domain/assistant"
)

type citationResolver struct {
	names *lru.Cache
	files FileSource
	log   zerolog.Logger
}

func newCitationResolver(size int, files FileSource, log zerolog.Logger) (*citationResolver, error) {
	cache, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &citationResolver{names: cache, files: files, log: log}, nil
}

// Resolve converts annotations into citations, filling in the original filenames.
func (r *citationResolver) Resolve(ctx context.Context, annotations []assistant.Annotation) []Citation {
	citations := make([]Citation, 0, len(annotations))
	if len(annotations) == 0 {
		return citations
	}

	var missing []string
	seen := make(map[string]struct{})
	for _, a := range annotations {
		if a.FileID == "" {
			continue
		}
		if _, ok := seen[a.FileID]; ok {
			continue
		}
		seen[a.FileID] = struct{}{}
		if !r.names.Contains(a.FileID) {
			missing = append(missing, a.FileID)
		}
	}

	if len(missing) > 0 {
		found, err := r.files.FilenamesByRemoteID(ctx, missing)
		if err != nil {
			r.log.Warn().Err(err).Int("files", len(missing)).Msg("citation filename lookup failed")
		}
		for id, name := range found {
			r.names.Add(id, name)
		}
	}

	for _, a := range annotations {
		c := Citation{
			FileID:     a.FileID,
			Excerpt:    a.Quote,
			Marker:     a.Text,
			StartIndex: a.StartIndex,
			EndIndex:   a.EndIndex,
		}
		if name, ok := r.names.Get(a.FileID); ok {
			c.Filename = name.(string)
		}
		citations = append(citations, c)
	}
	return citations
}
