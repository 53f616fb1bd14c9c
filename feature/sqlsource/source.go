package sqlsource

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"nodegrid/core/collection"
	"nodegrid/core/database"
	"nodegrid/core/index"
	"nodegrid/core/node"
	"nodegrid/core/update"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// DefaultLoadConcurrency bounds the parallel count queries of a refresh.
const DefaultLoadConcurrency = 4

// Options configures a Source.
type Options struct {
	// Migrate creates or updates the tables. Otherwise their columns are checked.
	Migrate bool
	// Width wraps item bodies at this many cells.
	Width int
	// LoadConcurrency bounds parallel count queries.
	LoadConcurrency int
	Logger          *zap.Logger
}

// Source is a data source over the sections and items tables.
type Source struct {
	db     *gorm.DB
	width  int
	limit  int
	logger *zap.Logger

	mu       sync.Mutex
	sections []uint
	counts   []int
}

// New prepares the schema and loads the section cache.
func New(ctx context.Context, db *gorm.DB, opts Options) (*Source, error) {
	s := &Source{db: db, width: opts.Width, limit: opts.LoadConcurrency, logger: opts.Logger}
	if s.limit <= 0 {
		s.limit = DefaultLoadConcurrency
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}

	if opts.Migrate {
		if err := db.WithContext(ctx).AutoMigrate(&Section{}, &Item{}); err != nil {
			return nil, fmt.Errorf("failed to migrate tables: %w", err)
		}
	} else if err := CheckSchema(db); err != nil {
		return nil, err
	}

	sections, counts, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	s.sections, s.counts = sections, counts
	return s, nil
}

// CheckSchema verifies that the tables carry the columns the source reads.
func CheckSchema(db *gorm.DB) error {
	if err := database.RequireColumns(db, "sections", "id", "position"); err != nil {
		return err
	}
	return database.RequireColumns(db, "items", "id", "section_id", "position", "body")
}

func (s *Source) NumberOfSections() int         { return len(s.sections) }
func (s *Source) NumberOfItems(section int) int { return s.counts[section] }
func (s *Source) LockDataSource()               { s.mu.Lock() }
func (s *Source) UnlockDataSource()             { s.mu.Unlock() }

// NodeForItem reads the item row. A failed read yields no node.
func (s *Source) NodeForItem(idx index.Index) node.Node {
	var it Item
	err := s.db.Where("section_id = ? AND position = ?", s.sections[idx.Section], idx.Item).Take(&it).Error
	if err != nil {
		s.logger.Warn("Failed to read item", zap.Stringer("index", idx), zap.Error(err))
		return nil
	}
	return node.NewText(fmt.Sprintf("item-%d", it.ID), it.Body, s.width)
}

// Shape returns the cached counts.
func (s *Source) Shape() index.Shape {
	s.mu.Lock()
	defer s.mu.Unlock()
	return index.Shape(append([]int(nil), s.counts...))
}

// Refresh reloads the cache from the database and submits a full reload to c.
func (s *Source) Refresh(ctx context.Context, c collection.Committer) error {
	sections, counts, err := s.load(ctx)
	if err != nil {
		return err
	}
	return s.commit(ctx, c, func() ([]update.Command, error) {
		s.sections, s.counts = sections, counts
		return []update.Command{update.NewReloadAll()}, nil
	})
}

// Seed fills empty tables with sections×items generated rows.
func (s *Source) Seed(ctx context.Context, c collection.Committer, sections, items int) error {
	return s.commit(ctx, c, func() ([]update.Command, error) {
		if len(s.sections) > 0 {
			return nil, nil
		}
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			for p := 0; p < sections; p++ {
				sec := Section{Position: p, Title: fmt.Sprintf("Section %d", p)}
				if err := tx.Create(&sec).Error; err != nil {
					return err
				}
				rows := make([]Item, items)
				for i := range rows {
					rows[i] = Item{SectionID: sec.ID, Position: i, Body: fmt.Sprintf("Section %d, row %d", p, i)}
				}
				if len(rows) > 0 {
					if err := tx.CreateInBatches(rows, 100).Error; err != nil {
						return err
					}
				}
				s.sections = append(s.sections, sec.ID)
				s.counts = append(s.counts, items)
			}
			return nil
		})
		if err != nil {
			s.sections, s.counts = nil, nil
			return nil, fmt.Errorf("failed to seed: %w", err)
		}
		if sections == 0 {
			return nil, nil
		}
		set, _ := index.NewSectionSet(seq(sections)...)
		return []update.Command{update.NewInsertSections(set)}, nil
	})
}

// InsertItem inserts a row at idx, shifting later rows down.
func (s *Source) InsertItem(ctx context.Context, c collection.Committer, idx index.Index, body string) error {
	return s.commit(ctx, c, func() ([]update.Command, error) {
		if err := s.checkSection("insert item", idx.Section); err != nil {
			return nil, err
		}
		if n := s.counts[idx.Section]; idx.Item < 0 || idx.Item > n {
			return nil, index.ItemOutOfRange("insert item", idx, n+1)
		}
		id := s.sections[idx.Section]
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := shiftItems(tx, id, idx.Item, 1); err != nil {
				return err
			}
			return tx.Create(&Item{SectionID: id, Position: idx.Item, Body: body}).Error
		})
		if err != nil {
			return nil, fmt.Errorf("failed to insert item %s: %w", idx, err)
		}
		s.counts[idx.Section]++
		return []update.Command{update.NewInsertItems(idx)}, nil
	})
}

// AppendItems adds rows at the end of section as one command.
func (s *Source) AppendItems(ctx context.Context, c collection.Committer, section int, bodies ...string) error {
	return s.commit(ctx, c, func() ([]update.Command, error) {
		if err := s.checkSection("append items", section); err != nil {
			return nil, err
		}
		if len(bodies) == 0 {
			return nil, nil
		}
		first := s.counts[section]
		rows := make([]Item, len(bodies))
		added := make([]index.Index, len(bodies))
		for i, b := range bodies {
			rows[i] = Item{SectionID: s.sections[section], Position: first + i, Body: b}
			added[i] = index.New(section, first+i)
		}
		if err := s.db.WithContext(ctx).Create(&rows).Error; err != nil {
			return nil, fmt.Errorf("failed to append items: %w", err)
		}
		s.counts[section] += len(bodies)
		return []update.Command{update.NewInsertItems(added...)}, nil
	})
}

// DeleteItem removes the row at idx, shifting later rows up.
func (s *Source) DeleteItem(ctx context.Context, c collection.Committer, idx index.Index) error {
	return s.commit(ctx, c, func() ([]update.Command, error) {
		if err := s.checkItem("delete item", idx); err != nil {
			return nil, err
		}
		id := s.sections[idx.Section]
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("section_id = ? AND position = ?", id, idx.Item).Delete(&Item{}).Error; err != nil {
				return err
			}
			return shiftItems(tx, id, idx.Item+1, -1)
		})
		if err != nil {
			return nil, fmt.Errorf("failed to delete item %s: %w", idx, err)
		}
		s.counts[idx.Section]--
		return []update.Command{update.NewDeleteItems(idx)}, nil
	})
}

// UpdateItem replaces the body of the row at idx.
func (s *Source) UpdateItem(ctx context.Context, c collection.Committer, idx index.Index, body string) error {
	return s.commit(ctx, c, func() ([]update.Command, error) {
		if err := s.checkItem("update item", idx); err != nil {
			return nil, err
		}
		res := s.db.WithContext(ctx).Model(&Item{}).
			Where("section_id = ? AND position = ?", s.sections[idx.Section], idx.Item).
			Update("body", body)
		if res.Error != nil {
			return nil, fmt.Errorf("failed to update item %s: %w", idx, res.Error)
		}
		return []update.Command{update.NewReloadItems(idx)}, nil
	})
}

// InsertSection creates an empty section at position section.
func (s *Source) InsertSection(ctx context.Context, c collection.Committer, section int, title string) error {
	return s.commit(ctx, c, func() ([]update.Command, error) {
		if section < 0 || section > len(s.sections) {
			return nil, index.SectionOutOfRange("insert section", section, len(s.sections)+1)
		}
		sec := Section{Position: section, Title: title}
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(&Section{}).Where("position >= ?", section).
				Update("position", gorm.Expr("position + 1")).Error; err != nil {
				return err
			}
			return tx.Create(&sec).Error
		})
		if err != nil {
			return nil, fmt.Errorf("failed to insert section %d: %w", section, err)
		}
		s.sections = insertAt(s.sections, section, sec.ID)
		s.counts = insertAt(s.counts, section, 0)
		return []update.Command{update.NewInsertSections(index.Sections(section))}, nil
	})
}

// DeleteSection removes a section and its rows.
func (s *Source) DeleteSection(ctx context.Context, c collection.Committer, section int) error {
	return s.commit(ctx, c, func() ([]update.Command, error) {
		if err := s.checkSection("delete section", section); err != nil {
			return nil, err
		}
		id := s.sections[section]
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("section_id = ?", id).Delete(&Item{}).Error; err != nil {
				return err
			}
			if err := tx.Delete(&Section{}, id).Error; err != nil {
				return err
			}
			return tx.Model(&Section{}).Where("position > ?", section).
				Update("position", gorm.Expr("position - 1")).Error
		})
		if err != nil {
			return nil, fmt.Errorf("failed to delete section %d: %w", section, err)
		}
		s.sections = append(s.sections[:section], s.sections[section+1:]...)
		s.counts = append(s.counts[:section], s.counts[section+1:]...)
		return []update.Command{update.NewDeleteSections(index.Sections(section))}, nil
	})
}

// commit runs edit with the source locked and submits its commands before
// unlocking, then drains c.
func (s *Source) commit(ctx context.Context, c collection.Committer, edit func() ([]update.Command, error)) error {
	s.mu.Lock()
	cmds, err := edit()
	if err == nil && c != nil {
		for _, cmd := range cmds {
			if err = c.Submit(cmd); err != nil {
				err = fmt.Errorf("submit edit: %w", err)
				break
			}
		}
	}
	s.mu.Unlock()

	if err != nil {
		return err
	}
	if c == nil || len(cmds) == 0 {
		return nil
	}
	return c.Drain(ctx)
}

// load reads the ordered sections and counts their items in parallel.
func (s *Source) load(ctx context.Context) ([]uint, []int, error) {
	var secs []Section
	if err := s.db.WithContext(ctx).Order("position").Find(&secs).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to load sections: %w", err)
	}

	ids := make([]uint, len(secs))
	counts := make([]int, len(secs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.limit)
	for i, sec := range secs {
		ids[i] = sec.ID
		g.Go(func() error {
			var n int64
			if err := s.db.WithContext(gctx).Model(&Item{}).Where("section_id = ?", sec.ID).Count(&n).Error; err != nil {
				return fmt.Errorf("failed to count items of section %d: %w", sec.ID, err)
			}
			counts[i] = int(n)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	s.logger.Debug("Loaded sections", zap.Int("sections", len(ids)))
	return ids, counts, nil
}

func (s *Source) checkSection(op string, section int) error {
	if section < 0 || section >= len(s.sections) {
		return index.SectionOutOfRange(op, section, len(s.sections))
	}
	return nil
}

func (s *Source) checkItem(op string, idx index.Index) error {
	if err := s.checkSection(op, idx.Section); err != nil {
		return err
	}
	if n := s.counts[idx.Section]; idx.Item < 0 || idx.Item >= n {
		return index.ItemOutOfRange(op, idx, n)
	}
	return nil
}

// shiftItems moves every row of section at or after from by delta positions.
func shiftItems(tx *gorm.DB, section uint, from, delta int) error {
	err := tx.Model(&Item{}).
		Where("section_id = ? AND position >= ?", section, from).
		Update("position", gorm.Expr("position + ?", delta)).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return nil
}

func insertAt[T any](s []T, i int, v T) []T {
	s = append(s, v)
	copy(s[i+1:], s[i:])
	s[i] = v
	return s
}

func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}
