package review

import (
	"context"
	"crypto/sha256"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/gangwonlab/tour-concierge/app/observability/metrics"
	"github.com/gangwonlab/tour-concierge/internal/types"
)

// Repository loads the review corpus from one directory per category and
// caches it for the process lifetime. The corpus is immutable after load;
// a logical change means a new process (and a new fingerprint).
type Repository struct {
	baseDir string
	logger  *slog.Logger

	mu          sync.Mutex
	loaded      bool
	corpus      map[types.Category][]types.Review
	warnings    []string
	fingerprint string
}

func NewRepository(baseDir string, logger *slog.Logger) *Repository {
	return &Repository{baseDir: baseDir, logger: logger}
}

// header aliases accepted in source files; matching is case-insensitive
var columnAliases = map[string][]string{
	"place":    {"상호명", "가게명", "장소명", "store", "place", "name"},
	"date":     {"날짜", "작성일", "방문일", "date"},
	"nickname": {"닉네임", "작성자", "nickname", "author"},
	"content":  {"내용", "리뷰내용", "리뷰", "content", "review"},
	"revisit":  {"재방문", "재방문여부", "revisit"},
	"reply":    {"답글", "사장님댓글", "reply"},
}

// placeholder contents treated the same as an empty review body
var placeholderContents = map[string]bool{
	"내용 없음":        true,
	"등록된 리뷰가 없습니다": true,
	"-":            true,
	".":            true,
}

// LoadAll reads every category directory once and returns the normalized
// corpus. Per-file and per-directory failures are isolated: the category
// keeps whatever rows succeeded and a warning is recorded for the caller.
// Subsequent calls return the cached result.
func (r *Repository) LoadAll(ctx context.Context) (map[types.Category][]types.Review, []string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.loaded {
		return r.corpus, r.warnings, nil
	}

	corpus := make(map[types.Category][]types.Review, len(types.AllCategories))
	warnings := make([]string, 0)

	var warnMu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	results := make(map[types.Category][]types.Review, len(types.AllCategories))
	var resMu sync.Mutex

	for _, cat := range types.AllCategories {
		g.Go(func() error {
			rows, warns := r.loadCategory(gctx, cat)
			resMu.Lock()
			results[cat] = rows
			resMu.Unlock()
			if len(warns) > 0 {
				warnMu.Lock()
				warnings = append(warnings, warns...)
				warnMu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	total := 0
	for _, cat := range types.AllCategories {
		corpus[cat] = results[cat]
		total += len(results[cat])
	}
	sort.Strings(warnings)

	r.corpus = corpus
	r.warnings = warnings
	r.fingerprint = fingerprintCorpus(corpus)
	r.loaded = true

	metrics.Get().ReviewsIngestedTotal.Add(ctx, int64(total))
	r.logger.InfoContext(ctx, "Review corpus loaded",
		slog.Int("reviews", total),
		slog.Int("warnings", len(warnings)),
		slog.String("fingerprint", r.fingerprint))
	return r.corpus, r.warnings, nil
}

// Fingerprint identifies the loaded corpus for index-cache keying. Empty
// until LoadAll has run.
func (r *Repository) Fingerprint() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fingerprint
}

func (r *Repository) loadCategory(ctx context.Context, cat types.Category) ([]types.Review, []string) {
	dir := filepath.Join(r.baseDir, string(cat))
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, []string{fmt.Sprintf("review directory missing for category %s: %s", cat, dir)}
		}
		return nil, []string{fmt.Sprintf("cannot read review directory for category %s: %v", cat, err)}
	}

	var rows []types.Review
	var warnings []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(entry.Name()), ".csv") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		fileRows, err := r.loadFile(path, cat)
		if err != nil {
			// One bad file must not abort the category.
			r.logger.WarnContext(ctx, "Skipping unreadable review file",
				slog.String("file", path), slog.Any("error", err))
			warnings = append(warnings, fmt.Sprintf("skipped review file %s: %v", entry.Name(), err))
			continue
		}
		rows = append(rows, fileRows...)
	}
	return rows, warnings
}

func (r *Repository) loadFile(path string, cat types.Category) ([]types.Review, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	cols := resolveColumns(header)
	if _, ok := cols["content"]; !ok {
		return nil, fmt.Errorf("no content column in %s", filepath.Base(path))
	}

	// Place name falls back to the file name when the row has none.
	fallbackPlace := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	var rows []types.Review
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row: %w", err)
		}
		if rev, ok := normalizeRow(record, cols, fallbackPlace, cat); ok {
			rows = append(rows, rev)
		}
	}
	return rows, nil
}

// resolveColumns maps logical field names to column indices by header alias.
func resolveColumns(header []string) map[string]int {
	cols := make(map[string]int)
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(h))
		for field, aliases := range columnAliases {
			if _, taken := cols[field]; taken {
				continue
			}
			for _, alias := range aliases {
				if h == alias {
					cols[field] = i
					break
				}
			}
		}
	}
	return cols
}

// normalizeRow turns a raw record into a Review with safe defaults. Rows
// whose resolved content is empty or a placeholder are dropped entirely.
func normalizeRow(record []string, cols map[string]int, fallbackPlace string, cat types.Category) (types.Review, bool) {
	get := func(field string) string {
		idx, ok := cols[field]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	content := get("content")
	if content == "" || placeholderContents[content] {
		return types.Review{}, false
	}

	place := get("place")
	if place == "" {
		place = fallbackPlace
	}
	nickname := get("nickname")
	if nickname == "" {
		nickname = "anonymous"
	}

	return types.Review{
		Category:      cat,
		PlaceName:     place,
		Date:          get("date"),
		Nickname:      nickname,
		Content:       content,
		RevisitMarker: get("revisit"),
		Reply:         get("reply"),
	}, true
}

// fingerprintCorpus hashes the corpus contents in category order so the
// vector-index cache key changes exactly when the loaded record set does.
func fingerprintCorpus(corpus map[types.Category][]types.Review) string {
	h := sha256.New()
	for _, cat := range types.AllCategories {
		fmt.Fprintf(h, "%s:%d;", cat, len(corpus[cat]))
		for _, rev := range corpus[cat] {
			fmt.Fprintf(h, "%s|%s|%d;", rev.PlaceName, rev.Date, len(rev.Content))
		}
	}
	return fmt.Sprintf("%x", h.Sum(nil)[:12])
}
