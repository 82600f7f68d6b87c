package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/tulisify/tulisify/internal/entities"
	"github.com/tulisify/tulisify/internal/presenter"
)

func newBooksCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "books",
		Short: "List and manage books",
	}
	cmd.AddCommand(
		newBooksListCommand(a),
		newBooksGetCommand(a),
		newBooksCountCommand(a),
		newBooksAddCommand(a),
		newBooksEditCommand(a),
		newBooksDeleteCommand(a),
	)
	return cmd
}

func newBooksListCommand(a *app) *cobra.Command {
	var (
		filters entities.BookFilters
		asJSON  bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List books, optionally filtered",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(func(s *session) error {
				state := presenter.NewBooksPresenter(s.app.GetBooks).Fetch(cmd.Context(), filters)
				if state.Error != "" {
					return failed(state.Error)
				}
				if asJSON {
					return writeJSON(cmd.OutOrStdout(), state.Books)
				}
				printBooks(cmd.OutOrStdout(), state.Books)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&filters.Search, "search", "", "Match title or author")
	cmd.Flags().StringVar(&filters.Category, "category", "", "SU, 13+, 18+ or all")
	cmd.Flags().IntVar(&filters.Year, "year", 0, "Publication year")
	cmd.Flags().StringVar(&filters.Author, "author", "", "Match author")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	return cmd
}

func newBooksGetCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(func(s *session) error {
				res := s.app.GetBook.Execute(cmd.Context(), args[0])
				if res.IsFailure() {
					return failed(res.ErrorMessage())
				}
				return writeJSON(cmd.OutOrStdout(), res.Value())
			})
		},
	}
}

func newBooksCountCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "count",
		Short: "Print the number of books",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(func(s *session) error {
				res := s.app.CountBooks.Execute(cmd.Context())
				if res.IsFailure() {
					return failed(res.ErrorMessage())
				}
				fmt.Fprintln(cmd.OutOrStdout(), res.Value())
				return nil
			})
		},
	}
}

// bookFlags are the editable fields shared by add and edit. Cover and File
// are local paths to upload; the -ref variants point at stored files.
type bookFlags struct {
	title, author, category, description string
	year                                 int
	cover, coverRef, file, fileRef       string
}

func (f *bookFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.title, "title", "", "Book title")
	fs.StringVar(&f.author, "author", "", "Book author")
	fs.IntVar(&f.year, "year", 0, "Publication year")
	fs.StringVar(&f.category, "category", "", "SU, 13+ or 18+")
	fs.StringVar(&f.description, "description", "", "Short description")
	fs.StringVar(&f.cover, "cover", "", "Cover image to upload")
	fs.StringVar(&f.coverRef, "cover-ref", "", "Cover url or stored path")
	fs.StringVar(&f.file, "file", "", "PDF to upload")
	fs.StringVar(&f.fileRef, "file-ref", "", "PDF url or stored path")
}

// asset builds an Asset from an upload path or a reference; the upload wins.
func asset(path, ref string) (entities.Asset, error) {
	if path == "" {
		return entities.AssetRef(ref), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return entities.Asset{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return entities.Asset{Upload: &entities.FileUpload{Name: filepath.Base(path), Data: data}}, nil
}

func managementPresenter(s *session) *presenter.BookManagementPresenter {
	return presenter.NewBookManagementPresenter(s.app.CreateBook, s.app.UpdateBook, s.app.DeleteBook)
}

func newBooksAddCommand(a *app) *cobra.Command {
	var f bookFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a book (admin)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cover, err := asset(f.cover, f.coverRef)
			if err != nil {
				return err
			}
			file, err := asset(f.file, f.fileRef)
			if err != nil {
				return err
			}
			req := entities.CreateBookRequest{
				Title:       f.title,
				Author:      f.author,
				Year:        f.year,
				Category:    entities.Category(f.category),
				Description: f.description,
				Cover:       cover,
				File:        file,
			}

			return a.withSession(func(s *session) error {
				p := managementPresenter(s)
				book := p.Create(cmd.Context(), req)
				if book == nil {
					return failed(p.State().Error)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created %s (%s)\n", book.Title, book.ID)
				return nil
			})
		},
	}
	f.register(cmd.Flags())
	return cmd
}

func newBooksEditCommand(a *app) *cobra.Command {
	var f bookFlags
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change fields of a book (admin)",
		Long:  "Change fields of a book. Only the flags given are sent; everything else stays as it is.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := f.update(cmd.Flags(), args[0])
			if err != nil {
				return err
			}

			return a.withSession(func(s *session) error {
				p := managementPresenter(s)
				book := p.Update(cmd.Context(), req)
				if book == nil {
					return failed(p.State().Error)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Updated %s (%s)\n", book.Title, book.ID)
				return nil
			})
		},
	}
	f.register(cmd.Flags())
	return cmd
}

// update builds a partial update from the flags that were set.
func (f *bookFlags) update(fs *pflag.FlagSet, id string) (entities.UpdateBookRequest, error) {
	req := entities.UpdateBookRequest{ID: id}
	if fs.Changed("title") {
		req.Title = &f.title
	}
	if fs.Changed("author") {
		req.Author = &f.author
	}
	if fs.Changed("year") {
		req.Year = &f.year
	}
	if fs.Changed("category") {
		c := entities.Category(f.category)
		req.Category = &c
	}
	if fs.Changed("description") {
		req.Description = &f.description
	}
	if fs.Changed("cover") || fs.Changed("cover-ref") {
		cover, err := asset(f.cover, f.coverRef)
		if err != nil {
			return req, err
		}
		req.Cover = &cover
	}
	if fs.Changed("file") || fs.Changed("file-ref") {
		file, err := asset(f.file, f.fileRef)
		if err != nil {
			return req, err
		}
		req.File = &file
	}
	return req, nil
}

func newBooksDeleteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a book (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(func(s *session) error {
				p := managementPresenter(s)
				if !p.Delete(cmd.Context(), args[0]) {
					return failed(p.State().Error)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Book deleted")
				return nil
			})
		},
	}
}

func printBooks(w io.Writer, books []entities.Book) {
	if len(books) == 0 {
		fmt.Fprintln(w, "No books found")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tAUTHOR\tYEAR\tCATEGORY")
	for _, b := range books {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", b.ID, b.Title, b.Author, b.Year, b.Category)
	}
	tw.Flush()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
