package objectsource

import (
	"bytes"
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"

	"nodegrid/core/collection"
	"nodegrid/core/index"
	"nodegrid/core/node"
	"nodegrid/core/storage"
	"nodegrid/core/update"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// Options configures a Source.
type Options struct {
	Bucket string
	Prefix string
	// Width is the wrap width used to size nodes.
	Width  int
	Logger *zap.Logger
}

type entry struct {
	key  string
	size int64
}

type section struct {
	name    string
	entries []entry
}

// Source lists a bucket prefix.
type Source struct {
	client storage.Client
	bucket string
	prefix string
	width  int
	bodies *bodyGroup
	logger *zap.Logger

	mu       sync.Mutex
	sections []section
}

// New lists the bucket once.
func New(ctx context.Context, client storage.Client, opts Options) (*Source, error) {
	s := &Source{
		client: client,
		bucket: opts.Bucket,
		prefix: opts.Prefix,
		width:  opts.Width,
		bodies: &bodyGroup{client: client, bucket: opts.Bucket},
		logger: opts.Logger,
	}
	if s.width <= 0 {
		s.width = DefaultWidth
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	sections, err := s.list(ctx)
	if err != nil {
		return nil, err
	}
	s.sections = sections
	return s, nil
}

func (s *Source) NumberOfSections() int         { return len(s.sections) }
func (s *Source) NumberOfItems(section int) int { return len(s.sections[section].entries) }
func (s *Source) LockDataSource()               { s.mu.Lock() }
func (s *Source) UnlockDataSource()             { s.mu.Unlock() }

// NodeForItem returns an unloaded node for the object.
func (s *Source) NodeForItem(idx index.Index) node.Node {
	e := s.sections[idx.Section].entries[idx.Item]
	return &Node{Key: e.key, Size: e.size, bodies: s.bodies, width: s.width}
}

// SectionNames returns the section names in order.
func (s *Source) SectionNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.sections))
	for i, sec := range s.sections {
		out[i] = sec.name
	}
	return out
}

// Shape returns the current counts.
func (s *Source) Shape() index.Shape {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(index.Shape, len(s.sections))
	for i, sec := range s.sections {
		out[i] = len(sec.entries)
	}
	return out
}

// Refresh re-lists the bucket. When the listing differs it is swapped in and a
// full reload is submitted to c. It reports whether anything changed.
func (s *Source) Refresh(ctx context.Context, c collection.Committer) (bool, error) {
	next, err := s.list(ctx)
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	changed := !slices.EqualFunc(s.sections, next, func(a, b section) bool {
		return a.name == b.name && slices.Equal(a.entries, b.entries)
	})
	if changed {
		s.sections = next
		if c != nil {
			err = c.Submit(update.NewReloadAll())
		}
	}
	s.mu.Unlock()

	if !changed || c == nil {
		return changed, nil
	}
	if err != nil {
		return true, fmt.Errorf("submit reload: %w", err)
	}
	return true, c.Drain(ctx)
}

// Put uploads an object below the prefix and reports it as an item insert, or a
// section insert when it opens a new section. Overwriting a listed key reloads
// its item.
func (s *Source) Put(ctx context.Context, c collection.Committer, name string, body []byte) error {
	key := s.prefix + name
	if _, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(body), int64(len(body)),
		minio.PutObjectOptions{ContentType: "text/plain"}); err != nil {
		return fmt.Errorf("failed to put object %s: %w", key, err)
	}
	s.bodies.forget(key)
	e := entry{key: key, size: int64(len(body))}
	secName := s.sectionOf(key)

	s.mu.Lock()
	cmd := s.insert(secName, e)
	var err error
	if c != nil {
		err = c.Submit(cmd)
	}
	s.mu.Unlock()

	if c == nil {
		return nil
	}
	if err != nil {
		return fmt.Errorf("submit put: %w", err)
	}
	return c.Drain(ctx)
}

// insert adds e to the listing and returns the matching command. Caller holds mu.
func (s *Source) insert(name string, e entry) update.Command {
	si := sort.Search(len(s.sections), func(i int) bool { return s.sections[i].name >= name })
	if si == len(s.sections) || s.sections[si].name != name {
		s.sections = slices.Insert(s.sections, si, section{name: name, entries: []entry{e}})
		return update.NewInsertSections(index.Sections(si))
	}
	entries := s.sections[si].entries
	ii := sort.Search(len(entries), func(i int) bool { return entries[i].key >= e.key })
	if ii < len(entries) && entries[ii].key == e.key {
		entries[ii] = e
		return update.NewReloadItems(index.New(si, ii))
	}
	s.sections[si].entries = slices.Insert(entries, ii, e)
	return update.NewInsertItems(index.New(si, ii))
}

func (s *Source) list(ctx context.Context) ([]section, error) {
	byName := make(map[string][]entry)
	for info := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: s.prefix, Recursive: true}) {
		if info.Err != nil {
			return nil, fmt.Errorf("failed to list %s/%s: %w", s.bucket, s.prefix, info.Err)
		}
		if strings.HasSuffix(info.Key, "/") {
			continue
		}
		name := s.sectionOf(info.Key)
		byName[name] = append(byName[name], entry{key: info.Key, size: info.Size})
	}

	out := make([]section, 0, len(byName))
	for name, entries := range byName {
		sort.Slice(entries, func(i, j int) bool { return entries[i].key < entries[j].key })
		out = append(out, section{name: name, entries: entries})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	s.logger.Debug("Listed objects", zap.String("bucket", s.bucket), zap.Int("sections", len(out)))
	return out, nil
}

func (s *Source) sectionOf(key string) string {
	rest := strings.TrimPrefix(key, s.prefix)
	if i := strings.Index(rest, "/"); i >= 0 {
		return rest[:i]
	}
	return ""
}
