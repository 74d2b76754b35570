package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/0xlemi/harptabs/internal/detail"
	"github.com/0xlemi/harptabs/internal/editor"
	"github.com/0xlemi/harptabs/internal/library"
	"github.com/0xlemi/harptabs/internal/model"
	"github.com/0xlemi/harptabs/internal/notation"
	"github.com/0xlemi/harptabs/internal/samples"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

var errInvalidID = errors.New("tab id must be a positive integer")

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q", errInvalidID, arg)
	}
	return id, nil
}

// withEnv opens the database for a non-interactive command, logging to stderr
func withEnv(cmd *cobra.Command, opts *options, fn func(ctx context.Context, e *env) error) error {
	e, err := opts.open(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer e.Close()
	return fn(cmd.Context(), e)
}

type listFlags struct {
	query      string
	key        string
	difficulty string
	sort       string
	favorites  bool
	tags       []string
}

func newListCmd(opts *options) *cobra.Command {
	var f listFlags
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tabs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, opts, func(ctx context.Context, e *env) error {
				if _, err := samples.SeedIfEmpty(ctx, e.store, e.log); err != nil {
					return err
				}
				filters, err := f.filters()
				if err != nil {
					return err
				}
				state, err := library.New(e.store).Load(ctx, filters)
				if err != nil {
					return err
				}
				printTabs(cmd.OutOrStdout(), state.Tabs)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&f.query, "query", "q", "", "Search title and artist")
	cmd.Flags().StringVarP(&f.key, "key", "k", "", "Only tabs in this key")
	cmd.Flags().StringVarP(&f.difficulty, "difficulty", "d", "", "Only tabs of this difficulty")
	cmd.Flags().StringVarP(&f.sort, "sort", "s", string(model.DefaultSort), "Sort order (newest, oldest, title, artist)")
	cmd.Flags().BoolVarP(&f.favorites, "favorites", "f", false, "Only favorites")
	cmd.Flags().StringSliceVarP(&f.tags, "tag", "t", nil, "Only tabs carrying every given tag")
	return cmd
}

func (f listFlags) filters() (library.Filters, error) {
	filters := library.DefaultFilters()
	filters.Query = f.query
	filters.FavoritesOnly = f.favorites
	if f.key != "" {
		filters.Key = &f.key
	}
	if f.difficulty != "" {
		filters.Difficulty = &f.difficulty
	}
	sort, err := model.ParseSortOption(f.sort)
	if err != nil {
		return library.Filters{}, err
	}
	filters.Sort = sort
	for _, tag := range model.ParseTags(strings.Join(f.tags, " ")) {
		filters.Tags[tag] = struct{}{}
	}
	return filters, nil
}

func printTabs(w io.Writer, tabs []model.Tab) {
	if len(tabs) == 0 {
		fmt.Fprintln(w, "No tabs found")
		return
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "TITLE", "ARTIST", "KEY", "DIFFICULTY", "TAGS", "★")
	for _, tab := range tabs {
		star := ""
		if tab.Favorite {
			star = "★"
		}
		t.Row(strconv.FormatInt(tab.ID, 10), tab.Title, tab.Artist, tab.Key, tab.Difficulty, tab.Tags, star)
	}
	fmt.Fprintln(w, t.Render())
}

func newShowCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print a tab",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withEnv(cmd, opts, func(ctx context.Context, e *env) error {
				d := detail.New(e.store, notation.HarmonicaMap)
				if err := d.Load(ctx, id); err != nil {
					return err
				}
				printTab(cmd.OutOrStdout(), d)
				return nil
			})
		},
	}
}

func printTab(w io.Writer, d *detail.Detail) {
	tab := d.Tab()
	fmt.Fprintf(w, "%s\n", tab.Title)
	if tab.Artist != "" {
		fmt.Fprintf(w, "by %s\n", tab.Artist)
	}
	var meta []string
	if tab.Key != "" {
		meta = append(meta, "Key "+tab.Key)
	}
	if tab.Difficulty != "" {
		meta = append(meta, tab.Difficulty)
	}
	if tab.Favorite {
		meta = append(meta, "★ favorite")
	}
	if len(meta) > 0 {
		fmt.Fprintln(w, strings.Join(meta, " · "))
	}
	if tags := tab.TagList(); len(tags) > 0 {
		fmt.Fprintf(w, "Tags: %s\n", strings.Join(tags, ", "))
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, d.Text())
}

// tabFlags are the editable fields of add and edit
type tabFlags struct {
	title      string
	artist     string
	key        string
	difficulty string
	tags       string
	notes      string
	file       string
	favorite   bool
}

func (f *tabFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.title, "title", "", "Title")
	cmd.Flags().StringVar(&f.artist, "artist", "", "Artist")
	cmd.Flags().StringVar(&f.key, "key", "", "Key, e.g. C or F#")
	cmd.Flags().StringVar(&f.difficulty, "difficulty", "", "Easy, Medium or Hard")
	cmd.Flags().StringVar(&f.tags, "tags", "", "Space or comma separated tags")
	cmd.Flags().StringVarP(&f.notes, "notes", "n", "", `Notes as text, e.g. "4 -4 5' | 6 -6"`)
	cmd.Flags().StringVarP(&f.file, "file", "f", "", "Read notes from a file, as JSON notation or text (- for stdin)")
	cmd.Flags().BoolVar(&f.favorite, "favorite", false, "Mark as favorite")
}

// apply copies the flags the user set onto the editor
func (f *tabFlags) apply(cmd *cobra.Command, ed *editor.Editor) error {
	changed := cmd.Flags().Changed
	if changed("title") {
		ed.SetTitle(f.title)
	}
	if changed("artist") {
		ed.SetArtist(f.artist)
	}
	if changed("key") {
		ed.SetKey(f.key)
	}
	if changed("difficulty") {
		ed.SetDifficulty(f.difficulty)
	}
	if changed("tags") {
		ed.SetTags(model.ParseTags(f.tags))
	}
	if changed("favorite") {
		ed.SetFavorite(f.favorite)
	}

	var n *notation.Notation
	switch {
	case changed("file"):
		content, err := readInput(cmd.InOrStdin(), f.file)
		if err != nil {
			return err
		}
		if n, err = parseContent(content); err != nil {
			return err
		}
	case changed("notes"):
		parsed, err := notation.ParseText(f.notes)
		if err != nil {
			return err
		}
		n = &parsed
	}
	if n != nil {
		return ed.SetLines(n.Lines)
	}
	return nil
}

func readInput(stdin io.Reader, path string) (string, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read notes: %w", err)
	}
	return string(data), nil
}

// parseContent accepts the stored JSON notation or the text form
func parseContent(content string) (*notation.Notation, error) {
	if n := notation.Parse(content); n != nil {
		return n, nil
	}
	n, err := notation.ParseText(content)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func saveTab(cmd *cobra.Command, opts *options, f *tabFlags, id int64) error {
	return withEnv(cmd, opts, func(ctx context.Context, e *env) error {
		ed := editor.New(e.store)
		if err := ed.Load(ctx, id); err != nil {
			return err
		}
		if err := f.apply(cmd, ed); err != nil {
			return err
		}
		saved, err := ed.Save(ctx)
		if err != nil {
			return err
		}
		e.log.WithField("id", saved).Debug("saved tab")
		fmt.Fprintf(cmd.OutOrStdout(), "Saved tab %d\n", saved)
		return nil
	})
}

func newAddCmd(opts *options) *cobra.Command {
	var f tabFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a tab",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return saveTab(cmd, opts, &f, 0)
		},
	}
	f.register(cmd)
	return cmd
}

func newEditCmd(opts *options) *cobra.Command {
	var f tabFlags
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change fields of a tab",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return saveTab(cmd, opts, &f, id)
		},
	}
	f.register(cmd)
	return cmd
}

func newDeleteCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a tab",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withEnv(cmd, opts, func(ctx context.Context, e *env) error {
				if err := e.store.Delete(ctx, id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted tab %d\n", id)
				return nil
			})
		},
	}
}

func newFavoriteCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "favorite <id>",
		Short: "Toggle the favorite flag of a tab",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withEnv(cmd, opts, func(ctx context.Context, e *env) error {
				d := detail.New(e.store, notation.HarmonicaMap)
				if err := d.Load(ctx, id); err != nil {
					return err
				}
				if err := d.ToggleFavorite(ctx); err != nil {
					return err
				}
				state := "no longer a favorite"
				if d.Tab().Favorite {
					state = "a favorite"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s is %s\n", d.Tab().Title, state)
				return nil
			})
		},
	}
}

func newSeedCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert the bundled sample tabs into an empty library",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, opts, func(ctx context.Context, e *env) error {
				n, err := samples.SeedIfEmpty(ctx, e.store, e.log)
				if err != nil {
					return err
				}
				if n == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Library is not empty, nothing seeded")
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d sample tabs\n", n)
				return nil
			})
		},
	}
}
