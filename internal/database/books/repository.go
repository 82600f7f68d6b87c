// Package books is the GORM implementation of repository.BookRepository.
//
// Uploads carried by create and update requests are written through an
// AssetStore; files replaced by an update or orphaned by a delete are
// handed back to it for removal once the database change is committed.
//
// # Usage
//
//	repo := books.NewRepository(db.DB, assets)
//	res := repo.FindAll(ctx, entities.BookFilters{Search: "tere"})
package books

import (
	"context"
	"errors"
	"html"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"gorm.io/gorm"

	"github.com/tulisify/tulisify/internal/entities"
	"github.com/tulisify/tulisify/internal/logger"
	"github.com/tulisify/tulisify/internal/result"
	"github.com/tulisify/tulisify/internal/storage"
)

const msgBookNotFound = "Book not found"

// AssetStore persists uploads and releases files no longer referenced.
type AssetStore interface {
	Save(ctx context.Context, kind storage.AssetKind, upload *entities.FileUpload) (string, error)
	Discard(ctx context.Context, path string)
	StoredPath(ref string) string
}

// Repository handles all book database operations.
type Repository struct {
	db     *gorm.DB
	assets AssetStore
	now    func() time.Time
}

// NewRepository creates a books repository. assets may be nil, in which
// case requests carrying uploads fail.
func NewRepository(db *gorm.DB, assets AssetStore) *Repository {
	return &Repository{db: db, assets: assets, now: time.Now}
}

// Descriptions are plain text; any markup is dropped before storage.
var descriptionPolicy = bluemonday.StrictPolicy()

func sanitizeDescription(s string) string {
	return strings.TrimSpace(html.UnescapeString(descriptionPolicy.Sanitize(s)))
}

// escapeLike protects LIKE wildcards in user input.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// FindAll lists books newest first. Search matches title, author or
// category case-insensitively.
func (r *Repository) FindAll(ctx context.Context, filters entities.BookFilters) result.Result[[]entities.Book] {
	q := r.db.WithContext(ctx).Model(&entities.Book{})

	if s := strings.TrimSpace(filters.Search); s != "" {
		like := "%" + strings.ToLower(escapeLike(s)) + "%"
		q = q.Where(`LOWER(title) LIKE ? ESCAPE '\' OR LOWER(author) LIKE ? ESCAPE '\' OR LOWER(category) LIKE ? ESCAPE '\'`, like, like, like)
	}
	if filters.HasCategory() {
		q = q.Where("category = ?", filters.Category)
	}
	if filters.Year != 0 {
		q = q.Where("year = ?", filters.Year)
	}
	if a := strings.TrimSpace(filters.Author); a != "" {
		q = q.Where(`LOWER(author) LIKE ? ESCAPE '\'`, "%"+strings.ToLower(escapeLike(a))+"%")
	}

	books := []entities.Book{}
	if err := q.Order("created_at DESC").Find(&books).Error; err != nil {
		logger.For(ctx).WithError(err).Error("failed to list books")
		return result.Fail[[]entities.Book](result.KindServer, "Failed to fetch books")
	}
	return result.Success(books)
}

func (r *Repository) FindByID(ctx context.Context, id string) result.Result[*entities.Book] {
	var book entities.Book
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&book).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return result.Success[*entities.Book](nil)
	}
	if err != nil {
		logger.For(ctx).WithError(err).Error("failed to get book")
		return result.Fail[*entities.Book](result.KindServer, "Failed to fetch book")
	}
	return result.Success(&book)
}

func (r *Repository) Create(ctx context.Context, req entities.CreateBookRequest) result.Result[entities.Book] {
	cover, err := r.resolveAsset(ctx, storage.AssetCover, req.Cover)
	if err != nil {
		return assetFailure[entities.Book](ctx, err, "Failed to create book")
	}
	file, err := r.resolveAsset(ctx, storage.AssetPDF, req.File)
	if err != nil {
		r.discardNew(ctx, req.Cover, cover)
		return assetFailure[entities.Book](ctx, err, "Failed to create book")
	}

	book := entities.Book{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Author:      req.Author,
		Year:        req.Year,
		Category:    req.Category,
		Cover:       cover,
		File:        file,
		Description: sanitizeDescription(req.Description),
		CreatedBy:   req.CreatedBy,
	}
	if err := r.db.WithContext(ctx).Create(&book).Error; err != nil {
		logger.For(ctx).WithError(err).Error("failed to create book")
		r.discardNew(ctx, req.Cover, cover)
		r.discardNew(ctx, req.File, file)
		return result.Fail[entities.Book](result.KindServer, "Failed to create book")
	}
	return result.Success(book)
}

// Update applies the present fields with a conditional UPDATE; zero rows
// affected means the book no longer exists.
func (r *Repository) Update(ctx context.Context, req entities.UpdateBookRequest) result.Result[entities.Book] {
	updates := map[string]any{"updated_at": r.now()}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Author != nil {
		updates["author"] = *req.Author
	}
	if req.Year != nil {
		updates["year"] = *req.Year
	}
	if req.Category != nil {
		updates["category"] = *req.Category
	}
	if req.Description != nil {
		updates["description"] = sanitizeDescription(*req.Description)
	}

	var stored []string // new uploads, removed again if the update fails
	for _, a := range []struct {
		column string
		kind   storage.AssetKind
		asset  *entities.Asset
	}{
		{"cover", storage.AssetCover, req.Cover},
		{"file", storage.AssetPDF, req.File},
	} {
		if a.asset == nil {
			continue
		}
		ref, err := r.resolveAsset(ctx, a.kind, *a.asset)
		if err != nil {
			r.discardAll(ctx, stored)
			return assetFailure[entities.Book](ctx, err, "Failed to update book")
		}
		if a.asset.HasUpload() {
			stored = append(stored, ref)
		}
		updates[a.column] = ref
	}

	var before, after entities.Book
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", req.ID).First(&before).Error; err != nil {
			return err
		}
		res := tx.Model(&entities.Book{}).Where("id = ?", req.ID).Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Where("id = ?", req.ID).First(&after).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		r.discardAll(ctx, stored)
		return result.NotFound[entities.Book](msgBookNotFound)
	}
	if err != nil {
		logger.For(ctx).WithError(err).Error("failed to update book")
		r.discardAll(ctx, stored)
		return result.Fail[entities.Book](result.KindServer, "Failed to update book")
	}

	if before.Cover != after.Cover {
		r.release(ctx, before.Cover)
	}
	if before.File != after.File {
		r.release(ctx, before.File)
	}
	return result.Success(after)
}

// Delete removes the row with a conditional DELETE, then releases the
// assets no other book shares.
func (r *Repository) Delete(ctx context.Context, id string) result.Result[struct{}] {
	var book entities.Book
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&book).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&entities.Book{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return result.NotFound[struct{}](msgBookNotFound)
	}
	if err != nil {
		logger.For(ctx).WithError(err).Error("failed to delete book")
		return result.Fail[struct{}](result.KindServer, "Failed to delete book")
	}

	r.release(ctx, book.Cover)
	r.release(ctx, book.File)
	return result.Success(struct{}{})
}

func (r *Repository) Count(ctx context.Context) result.Result[int64] {
	var count int64
	if err := r.db.WithContext(ctx).Model(&entities.Book{}).Count(&count).Error; err != nil {
		logger.For(ctx).WithError(err).Error("failed to count books")
		return result.Fail[int64](result.KindServer, "Failed to get book count")
	}
	return result.Success(count)
}

// ReferencedAssets returns every cover and file path currently in use.
func (r *Repository) ReferencedAssets(ctx context.Context) (map[string]struct{}, error) {
	var rows []entities.Book
	err := r.db.WithContext(ctx).Model(&entities.Book{}).Select("cover", "file").Find(&rows).Error
	if err != nil {
		return nil, err
	}
	refs := make(map[string]struct{}, len(rows)*2)
	for _, b := range rows {
		for _, ref := range []string{b.Cover, b.File} {
			if p := r.storedPath(ref); p != "" {
				refs[p] = struct{}{}
			}
		}
	}
	return refs, nil
}

// IsAssetReferenced reports whether any book points at the stored path.
func (r *Repository) IsAssetReferenced(ctx context.Context, path string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.Book{}).
		Where("cover = ? OR file = ?", path, path).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// release discards a file once no book references it. A failed lookup
// keeps the file; the orphan sweep decides later.
func (r *Repository) release(ctx context.Context, ref string) {
	if r.assets == nil || ref == "" {
		return
	}
	used, err := r.IsAssetReferenced(ctx, ref)
	if err != nil {
		logger.For(ctx).WithError(err).WithField("path", ref).Warn("failed to check asset references")
		return
	}
	if !used {
		r.assets.Discard(ctx, ref)
	}
}

func (r *Repository) storedPath(ref string) string {
	if r.assets == nil {
		return storage.StoredPath(ref, "")
	}
	return r.assets.StoredPath(ref)
}

// resolveAsset returns the path to store for an asset, saving its upload
// first when it has one. References to served files are stored as their
// storage path.
func (r *Repository) resolveAsset(ctx context.Context, kind storage.AssetKind, a entities.Asset) (string, error) {
	if !a.HasUpload() {
		return r.storedPath(a.Ref), nil
	}
	if r.assets == nil {
		return "", errNoAssetStore
	}
	return r.assets.Save(ctx, kind, a.Upload)
}

func (r *Repository) discardNew(ctx context.Context, a entities.Asset, ref string) {
	if a.HasUpload() && ref != "" && r.assets != nil {
		r.assets.Discard(ctx, ref)
	}
}

func (r *Repository) discardAll(ctx context.Context, refs []string) {
	if r.assets == nil {
		return
	}
	for _, ref := range refs {
		r.assets.Discard(ctx, ref)
	}
}

var errNoAssetStore = errors.New("uploads are not supported by this repository")

// assetFailure reports unsupported file types as validation failures and
// anything else as a server failure.
func assetFailure[T any](ctx context.Context, err error, fallback string) result.Result[T] {
	if errors.Is(err, storage.ErrUnsupportedType) {
		return result.Invalid[T]("Unsupported file type")
	}
	logger.For(ctx).WithError(err).Error("failed to store upload")
	return result.Fail[T](result.KindServer, fallback)
}
