package update

import (
	"fmt"

	"nodegrid/core/index"
)

// Kind tags a Command.
type Kind uint8

const (
	InsertSections Kind = iota + 1
	DeleteSections
	ReloadSections
	MoveSection
	InsertItems
	DeleteItems
	ReloadItems
	MoveItem
	ReloadAll
)

var kindNames = map[Kind]string{
	InsertSections: "insertSections",
	DeleteSections: "deleteSections",
	ReloadSections: "reloadSections",
	MoveSection:    "moveSection",
	InsertItems:    "insertItems",
	DeleteItems:    "deleteItems",
	ReloadItems:    "reloadItems",
	MoveItem:       "moveItem",
	ReloadAll:      "reloadData",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// ParseKind returns the Kind named name, as produced by Kind.String.
func ParseKind(name string) (Kind, error) {
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown command %q", name)
}

// Command is one structural change.
type Command struct {
	Kind Kind
	// Sections is set for the section-set kinds.
	Sections index.SectionSet
	// Items is set for the item-set kinds.
	Items []index.Index
	// From and To are set for moves. Section moves only use the Section field.
	From index.Index
	To   index.Index
}

// NewInsertSections inserts fresh sections at the given post-command positions.
func NewInsertSections(sections index.SectionSet) Command {
	return Command{Kind: InsertSections, Sections: sections}
}

// NewDeleteSections deletes the sections at the given pre-command positions.
func NewDeleteSections(sections index.SectionSet) Command {
	return Command{Kind: DeleteSections, Sections: sections}
}

// NewReloadSections replaces the content of the given sections.
func NewReloadSections(sections index.SectionSet) Command {
	return Command{Kind: ReloadSections, Sections: sections}
}

// NewMoveSection moves section from to position to.
func NewMoveSection(from, to int) Command {
	return Command{Kind: MoveSection, From: index.New(from, 0), To: index.New(to, 0)}
}

// NewInsertItems inserts fresh items at the given post-command positions.
func NewInsertItems(items ...index.Index) Command {
	return Command{Kind: InsertItems, Items: items}
}

// NewDeleteItems deletes the items at the given pre-command positions.
func NewDeleteItems(items ...index.Index) Command {
	return Command{Kind: DeleteItems, Items: items}
}

// NewReloadItems replaces the given items.
func NewReloadItems(items ...index.Index) Command {
	return Command{Kind: ReloadItems, Items: items}
}

// NewMoveItem moves the item at from to position to.
func NewMoveItem(from, to index.Index) Command {
	return Command{Kind: MoveItem, From: from, To: to}
}

// NewReloadAll discards every node and reloads from the data source.
func NewReloadAll() Command {
	return Command{Kind: ReloadAll}
}

func (c Command) String() string {
	switch c.Kind {
	case InsertSections, DeleteSections, ReloadSections:
		return fmt.Sprintf("%s%s", c.Kind, c.Sections)
	case InsertItems, DeleteItems, ReloadItems:
		return fmt.Sprintf("%s%v", c.Kind, c.Items)
	case MoveSection:
		return fmt.Sprintf("%s(%d->%d)", c.Kind, c.From.Section, c.To.Section)
	case MoveItem:
		return fmt.Sprintf("%s(%s->%s)", c.Kind, c.From, c.To)
	default:
		return c.Kind.String()
	}
}

// Doc is the serialized form of a Command used by replay scripts and the HTTP API.
type Doc struct {
	Op       string        `json:"op" yaml:"op"`
	Sections []int         `json:"sections,omitempty" yaml:"sections,omitempty"`
	Items    []index.Index `json:"items,omitempty" yaml:"items,omitempty"`
	From     *index.Index  `json:"from,omitempty" yaml:"from,omitempty"`
	To       *index.Index  `json:"to,omitempty" yaml:"to,omitempty"`
}

// Command decodes d.
func (d Doc) Command() (Command, error) {
	kind, err := ParseKind(d.Op)
	if err != nil {
		return Command{}, err
	}
	cmd := Command{Kind: kind}
	switch kind {
	case InsertSections, DeleteSections, ReloadSections:
		set, err := index.NewSectionSet(d.Sections...)
		if err != nil {
			return Command{}, fmt.Errorf("%s: %w", d.Op, err)
		}
		cmd.Sections = set
	case InsertItems, DeleteItems, ReloadItems:
		cmd.Items = d.Items
	case MoveSection, MoveItem:
		if d.From == nil || d.To == nil {
			return Command{}, fmt.Errorf("%s: from and to are required", d.Op)
		}
		cmd.From, cmd.To = *d.From, *d.To
		if kind == MoveSection {
			cmd.From.Item, cmd.To.Item = 0, 0
		}
	}
	return cmd, nil
}

// Doc encodes c.
func (c Command) Doc() Doc {
	d := Doc{Op: c.Kind.String()}
	switch c.Kind {
	case InsertSections, DeleteSections, ReloadSections:
		d.Sections = c.Sections.Ascending()
	case InsertItems, DeleteItems, ReloadItems:
		d.Items = c.Items
	case MoveSection, MoveItem:
		from, to := c.From, c.To
		d.From, d.To = &from, &to
	}
	return d
}
