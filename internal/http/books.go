package http

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/tulisify/tulisify/internal/auth"
	"github.com/tulisify/tulisify/internal/container"
	"github.com/tulisify/tulisify/internal/entities"
	"github.com/tulisify/tulisify/internal/result"
)

type BooksController struct {
	app *container.Container
}

// NewBooksController panics when the binding validators cannot be
// installed; every book payload depends on them.
func NewBooksController(app *container.Container) *BooksController {
	if err := registerValidators(); err != nil {
		panic(err)
	}
	return &BooksController{app: app}
}

type bookQuery struct {
	Search   string `form:"search"`
	Category string `form:"category"`
	Year     int    `form:"year"`
	Author   string `form:"author"`
}

type bookList struct {
	Books []entities.Book `json:"books"`
	Count int             `json:"count"`
}

type bookCount struct {
	Count int64 `json:"count"`
}

// bookForm is the create/update payload, bound from JSON or multipart.
// Absent fields stay nil so updates stay partial.
type bookForm struct {
	Title       *string `form:"title" json:"title"`
	Author      *string `form:"author" json:"author"`
	Year        *int    `form:"year" json:"year"`
	Category    *string `form:"category" json:"category" binding:"omitempty,category"`
	Description *string `form:"description" json:"description"`
	Cover       *string `form:"cover" json:"cover"`
	File        *string `form:"file" json:"file"`
	CoverURL    *string `form:"cover_url" json:"cover_url"`
	PDFURL      *string `form:"pdf_url" json:"pdf_url"`

	coverUpload *entities.FileUpload
	fileUpload  *entities.FileUpload
}

// GetAllBooks handles GET /api/books.
func (bc *BooksController) GetAllBooks(c *gin.Context) {
	var q bookQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		status, msg := bindingMessage(err)
		respondError(c, status, msg)
		return
	}

	res := bc.app.GetBooks.Execute(c.Request.Context(), entities.BookFilters{
		Search:   q.Search,
		Category: q.Category,
		Year:     q.Year,
		Author:   q.Author,
	})
	if res.IsFailure() {
		respondFailure(c, "get_books", res)
		return
	}
	books := res.Value()
	respondResult(c, "get_books", result.Success(bookList{Books: books, Count: len(books)}), http.StatusOK)
}

// CountBooks handles GET /api/books/count.
func (bc *BooksController) CountBooks(c *gin.Context) {
	res := bc.app.CountBooks.Execute(c.Request.Context())
	if res.IsFailure() {
		respondFailure(c, "count_books", res)
		return
	}
	respondResult(c, "count_books", result.Success(bookCount{Count: res.Value()}), http.StatusOK)
}

// GetBook handles GET /api/books/:id.
func (bc *BooksController) GetBook(c *gin.Context) {
	res := bc.app.GetBook.Execute(c.Request.Context(), c.Param("id"))
	respondResult(c, "get_book", res, http.StatusOK)
}

// CreateBook handles POST /api/books.
func (bc *BooksController) CreateBook(c *gin.Context) {
	form, ok := bindBookForm(c)
	if !ok {
		return
	}

	req := entities.CreateBookRequest{
		Title:       deref(form.Title),
		Author:      deref(form.Author),
		Description: deref(form.Description),
		CreatedBy:   auth.GetUserID(c),
	}
	if form.Year != nil {
		req.Year = *form.Year
	}
	if form.Category != nil {
		req.Category = entities.Category(*form.Category)
	}
	if cover := asset(form.Cover, form.CoverURL, form.coverUpload); cover != nil {
		req.Cover = *cover
	}
	if file := asset(form.File, form.PDFURL, form.fileUpload); file != nil {
		req.File = *file
	}

	res := bc.app.CreateBook.Execute(c.Request.Context(), req)
	respondResult(c, "create_book", res, http.StatusCreated)
}

// UpdateBook handles PUT /api/books/:id. Only the fields present in the
// payload change.
func (bc *BooksController) UpdateBook(c *gin.Context) {
	form, ok := bindBookForm(c)
	if !ok {
		return
	}

	req := entities.UpdateBookRequest{
		ID:          c.Param("id"),
		Title:       form.Title,
		Author:      form.Author,
		Year:        form.Year,
		Description: form.Description,
		Cover:       asset(form.Cover, form.CoverURL, form.coverUpload),
		File:        asset(form.File, form.PDFURL, form.fileUpload),
	}
	if form.Category != nil {
		category := entities.Category(*form.Category)
		req.Category = &category
	}

	res := bc.app.UpdateBook.Execute(c.Request.Context(), req)
	respondResult(c, "update_book", res, http.StatusOK)
}

// DeleteBook handles DELETE /api/books/:id.
func (bc *BooksController) DeleteBook(c *gin.Context) {
	res := bc.app.DeleteBook.Execute(c.Request.Context(), c.Param("id"))
	if res.IsFailure() {
		respondFailure(c, "delete_book", res)
		return
	}
	respondResult(c, "delete_book", result.Success(MessageResponse{Message: "Book deleted"}), http.StatusOK)
}

// bindBookForm binds the payload and, for multipart requests, reads the
// cover and file parts. Form binding only maps values, so a file part and
// a reference field may share a name. It writes the error response itself.
func bindBookForm(c *gin.Context) (*bookForm, bool) {
	var form bookForm
	var err error
	if c.ContentType() == binding.MIMEJSON {
		err = c.ShouldBindJSON(&form)
	} else {
		err = c.ShouldBindWith(&form, binding.Form)
	}
	if err != nil && !isEmptyBody(err) {
		status, msg := bindingMessage(err)
		respondError(c, status, msg)
		return nil, false
	}

	if c.ContentType() != binding.MIMEMultipartPOSTForm {
		return &form, true
	}

	if form.coverUpload, err = formUpload(c, "cover"); err != nil {
		respondError(c, http.StatusBadRequest, MsgInvalidBody)
		return nil, false
	}
	if form.fileUpload, err = formUpload(c, "file"); err != nil {
		respondError(c, http.StatusBadRequest, MsgInvalidBody)
		return nil, false
	}
	return &form, true
}

// formUpload reads the named file part; a missing part yields nil.
func formUpload(c *gin.Context, field string) (*entities.FileUpload, error) {
	fh, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return readUpload(fh)
}

func readUpload(fh *multipart.FileHeader) (*entities.FileUpload, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload %s: %w", fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload %s: %w", fh.Filename, err)
	}
	return &entities.FileUpload{Name: fh.Filename, Data: data}, nil
}

// asset picks the upload, then the stored reference, then the url alias.
func asset(ref, url *string, upload *entities.FileUpload) *entities.Asset {
	switch {
	case upload != nil:
		return &entities.Asset{Upload: upload}
	case ref != nil:
		return &entities.Asset{Ref: *ref}
	case url != nil:
		return &entities.Asset{Ref: *url}
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
