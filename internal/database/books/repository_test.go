package books

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tulisify/tulisify/internal/database"
	"github.com/tulisify/tulisify/internal/entities"
	"github.com/tulisify/tulisify/internal/result"
	"github.com/tulisify/tulisify/internal/storage"
)

type fakeAssets struct {
	saved     []string
	discarded []string
	saveErr   error
}

func (f *fakeAssets) Save(_ context.Context, kind storage.AssetKind, upload *entities.FileUpload) (string, error) {
	if f.saveErr != nil {
		return "", f.saveErr
	}
	p := kind.Dir() + "/" + upload.Name
	f.saved = append(f.saved, p)
	return p, nil
}

func (f *fakeAssets) Discard(_ context.Context, path string) {
	if path != "" {
		f.discarded = append(f.discarded, path)
	}
}

func (f *fakeAssets) StoredPath(ref string) string {
	return storage.StoredPath(ref, "http://books.test")
}

func setupTestRepo(t *testing.T) (*Repository, *fakeAssets) {
	t.Helper()
	db, err := database.NewDatabase(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	assets := &fakeAssets{}
	return NewRepository(db.DB, assets), assets
}

func seedBook(t *testing.T, repo *Repository, b entities.Book) entities.Book {
	t.Helper()
	if b.ID == "" {
		b.ID = b.Title
	}
	require.NoError(t, repo.db.Create(&b).Error)
	return b
}

func TestRepository_FindAll(t *testing.T) {
	repo, _ := setupTestRepo(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	seedBook(t, repo, entities.Book{Title: "Pulang", Author: "Tere Liye", Year: 2015, Category: entities.CategorySU, CreatedAt: base})
	seedBook(t, repo, entities.Book{Title: "Pergi", Author: "Tere Liye", Year: 2018, Category: entities.CategoryThirteenPlus, CreatedAt: base.Add(time.Hour)})
	seedBook(t, repo, entities.Book{Title: "Laskar Pelangi", Author: "Andrea Hirata", Year: 2005, Category: entities.CategorySU, CreatedAt: base.Add(2 * time.Hour)})
	seedBook(t, repo, entities.Book{Title: "100%_Sure", Author: "Anon", Year: 2020, Category: entities.CategoryEighteenPlus, CreatedAt: base.Add(3 * time.Hour)})

	titles := func(res result.Result[[]entities.Book]) []string {
		require.True(t, res.IsSuccess())
		var out []string
		for _, b := range res.Value() {
			out = append(out, b.Title)
		}
		return out
	}

	tests := []struct {
		name    string
		filters entities.BookFilters
		want    []string
	}{
		{"newest first", entities.BookFilters{}, []string{"100%_Sure", "Laskar Pelangi", "Pergi", "Pulang"}},
		{"search title case-insensitive", entities.BookFilters{Search: "PULANG"}, []string{"Pulang"}},
		{"search author", entities.BookFilters{Search: "tere"}, []string{"Pergi", "Pulang"}},
		{"search category", entities.BookFilters{Search: "13+"}, []string{"Pergi"}},
		{"search wildcard is literal", entities.BookFilters{Search: "%"}, []string{"100%_Sure"}},
		{"category filter", entities.BookFilters{Category: "SU"}, []string{"Laskar Pelangi", "Pulang"}},
		{"all category", entities.BookFilters{Category: "all"}, []string{"100%_Sure", "Laskar Pelangi", "Pergi", "Pulang"}},
		{"year filter", entities.BookFilters{Year: 2018}, []string{"Pergi"}},
		{"author filter", entities.BookFilters{Author: "hirata"}, []string{"Laskar Pelangi"}},
		{"no match", entities.BookFilters{Search: "zzz"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, titles(repo.FindAll(ctx, tt.filters)))
		})
	}
}

func TestRepository_FindByID(t *testing.T) {
	repo, _ := setupTestRepo(t)
	ctx := context.Background()
	seedBook(t, repo, entities.Book{ID: "b1", Title: "Hujan"})

	found := repo.FindByID(ctx, "b1")
	require.True(t, found.IsSuccess())
	require.NotNil(t, found.Value())
	assert.Equal(t, "Hujan", found.Value().Title)

	missing := repo.FindByID(ctx, "nope")
	require.True(t, missing.IsSuccess())
	assert.Nil(t, missing.Value())
}

func TestRepository_Create(t *testing.T) {
	repo, assets := setupTestRepo(t)
	ctx := context.Background()

	res := repo.Create(ctx, entities.CreateBookRequest{
		Title:    "Pulang",
		Author:   "Tere Liye",
		Year:     2015,
		Category: entities.CategorySU,
		Cover:    entities.Asset{Upload: &entities.FileUpload{Name: "pulang.jpg", Data: []byte("x")}},
		File:     entities.AssetRef("pdfs/existing.pdf"),
	})

	require.True(t, res.IsSuccess())
	book := res.Value()
	assert.Len(t, book.ID, 36)
	assert.Equal(t, "covers/pulang.jpg", book.Cover)
	assert.Equal(t, "pdfs/existing.pdf", book.File)
	assert.Equal(t, []string{"covers/pulang.jpg"}, assets.saved)

	count := repo.Count(ctx)
	require.True(t, count.IsSuccess())
	assert.Equal(t, int64(1), count.Value())
}

func TestRepository_CreateUnsupportedUpload(t *testing.T) {
	repo, assets := setupTestRepo(t)
	assets.saveErr = storage.ErrUnsupportedType

	res := repo.Create(context.Background(), entities.CreateBookRequest{
		Title: "x", Author: "y", Year: 2000, Category: entities.CategorySU,
		Cover: entities.Asset{Upload: &entities.FileUpload{Name: "a.exe"}},
	})

	require.True(t, res.IsFailure())
	assert.Equal(t, result.KindValidation, res.Kind())
}

func TestRepository_CreateStorageFailure(t *testing.T) {
	repo, assets := setupTestRepo(t)
	assets.saveErr = errors.New("disk full")

	res := repo.Create(context.Background(), entities.CreateBookRequest{
		Title: "x", Author: "y", Year: 2000, Category: entities.CategorySU,
		File: entities.Asset{Upload: &entities.FileUpload{Name: "a.pdf"}},
	})

	require.True(t, res.IsFailure())
	assert.Equal(t, "Failed to create book", res.ErrorMessage())
	assert.Equal(t, result.KindServer, res.Kind())
}

func TestRepository_Update(t *testing.T) {
	repo, assets := setupTestRepo(t)
	ctx := context.Background()
	seedBook(t, repo, entities.Book{ID: "b1", Title: "Old", Author: "A", Year: 2000, Category: entities.CategorySU, Cover: "covers/old.jpg", File: "pdfs/keep.pdf"})

	title := "New"
	year := 2001
	res := repo.Update(ctx, entities.UpdateBookRequest{
		ID:    "b1",
		Title: &title,
		Year:  &year,
		Cover: &entities.Asset{Upload: &entities.FileUpload{Name: "new.jpg", Data: []byte("y")}},
	})

	require.True(t, res.IsSuccess())
	assert.Equal(t, "New", res.Value().Title)
	assert.Equal(t, 2001, res.Value().Year)
	assert.Equal(t, "A", res.Value().Author, "absent fields are unchanged")
	assert.Equal(t, "covers/new.jpg", res.Value().Cover)
	assert.Equal(t, "pdfs/keep.pdf", res.Value().File)
	assert.Equal(t, []string{"covers/old.jpg"}, assets.discarded, "replaced cover is released")
}

func TestRepository_SanitizesDescription(t *testing.T) {
	repo, _ := setupTestRepo(t)
	ctx := context.Background()

	res := repo.Create(ctx, entities.CreateBookRequest{
		Title: "Pergi", Author: "Tere Liye", Year: 2018, Category: entities.CategoryThirteenPlus,
		Description: `<script>alert(1)</script>Kisah <b>Bujang</b> & keluarga`,
	})
	require.True(t, res.IsSuccess())
	assert.Equal(t, "Kisah Bujang & keluarga", res.Value().Description)

	desc := `<a href="javascript:void(0)">Lanjutan</a> Pulang`
	updated := repo.Update(ctx, entities.UpdateBookRequest{ID: res.Value().ID, Description: &desc})
	require.True(t, updated.IsSuccess())
	assert.Equal(t, "Lanjutan Pulang", updated.Value().Description)
}

func TestRepository_UpdateMissingBook(t *testing.T) {
	repo, assets := setupTestRepo(t)

	title := "New"
	res := repo.Update(context.Background(), entities.UpdateBookRequest{
		ID:    "gone",
		Title: &title,
		File:  &entities.Asset{Upload: &entities.FileUpload{Name: "x.pdf"}},
	})

	require.True(t, res.IsFailure())
	assert.Equal(t, "Book not found", res.ErrorMessage())
	assert.Equal(t, result.KindNotFound, res.Kind())
	assert.Equal(t, []string{"pdfs/x.pdf"}, assets.discarded, "upload for a missing book is released")
}

func TestRepository_Delete(t *testing.T) {
	repo, assets := setupTestRepo(t)
	ctx := context.Background()
	seedBook(t, repo, entities.Book{ID: "b1", Title: "Hujan", Cover: "covers/h.jpg", File: "pdfs/h.pdf"})

	res := repo.Delete(ctx, "b1")
	require.True(t, res.IsSuccess())
	assert.ElementsMatch(t, []string{"covers/h.jpg", "pdfs/h.pdf"}, assets.discarded)

	again := repo.Delete(ctx, "b1")
	require.True(t, again.IsFailure())
	assert.Equal(t, "Book not found", again.ErrorMessage())
	assert.Equal(t, result.KindNotFound, again.Kind())
}

func TestRepository_ReferencedAssets(t *testing.T) {
	repo, _ := setupTestRepo(t)
	seedBook(t, repo, entities.Book{ID: "a", Title: "A", Cover: "covers/a.jpg"})
	seedBook(t, repo, entities.Book{ID: "b", Title: "B", File: "pdfs/b.pdf"})

	refs, err := repo.ReferencedAssets(context.Background())
	require.NoError(t, err)
	assert.Len(t, refs, 2)
	assert.Contains(t, refs, "covers/a.jpg")
	assert.Contains(t, refs, "pdfs/b.pdf")
}

func TestRepository_StoresServedURLsAsPaths(t *testing.T) {
	repo, _ := setupTestRepo(t)
	ctx := context.Background()

	res := repo.Create(ctx, entities.CreateBookRequest{
		Title: "Hujan", Author: "Tere Liye", Year: 2016, Category: entities.CategorySU,
		Cover: entities.AssetRef("http://books.test/api/files/covers/1-abc.png"),
		File:  entities.AssetRef(" /api/files/pdfs/1-abc.pdf "),
	})
	require.True(t, res.IsSuccess(), res.ErrorMessage())
	assert.Equal(t, "covers/1-abc.png", res.Value().Cover)
	assert.Equal(t, "pdfs/1-abc.pdf", res.Value().File)

	external := "https://images.example/api/files/covers/hujan.jpg"
	updated := repo.Update(ctx, entities.UpdateBookRequest{ID: res.Value().ID, Cover: &entities.Asset{Ref: external}})
	require.True(t, updated.IsSuccess())
	assert.Equal(t, external, updated.Value().Cover, "other origins are kept verbatim")
}

func TestRepository_ReleasesOnlyUnsharedAssets(t *testing.T) {
	repo, assets := setupTestRepo(t)
	ctx := context.Background()
	seedBook(t, repo, entities.Book{ID: "a", Title: "Bumi", Cover: "covers/shared.jpg", File: "pdfs/a.pdf"})
	seedBook(t, repo, entities.Book{ID: "b", Title: "Bulan", Cover: "covers/shared.jpg"})
	seedBook(t, repo, entities.Book{ID: "c", Title: "Matahari", Cover: "covers/c.jpg", File: "pdfs/a.pdf"})

	require.True(t, repo.Delete(ctx, "a").IsSuccess())
	assert.Empty(t, assets.discarded, "both assets are still referenced")

	res := repo.Update(ctx, entities.UpdateBookRequest{ID: "c", File: &entities.Asset{Ref: "pdfs/c.pdf"}})
	require.True(t, res.IsSuccess())
	assert.Equal(t, []string{"pdfs/a.pdf"}, assets.discarded)

	require.True(t, repo.Delete(ctx, "b").IsSuccess())
	assert.Equal(t, []string{"pdfs/a.pdf", "covers/shared.jpg"}, assets.discarded)

	used, err := repo.IsAssetReferenced(ctx, "covers/c.jpg")
	require.NoError(t, err)
	assert.True(t, used)
	used, err = repo.IsAssetReferenced(ctx, "covers/shared.jpg")
	require.NoError(t, err)
	assert.False(t, used)
}

func TestRepository_ReferencedAssetsNormalizesURLs(t *testing.T) {
	repo, _ := setupTestRepo(t)
	seedBook(t, repo, entities.Book{ID: "a", Title: "A", Cover: "http://books.test/api/files/covers/a.jpg"})
	seedBook(t, repo, entities.Book{ID: "b", Title: "B", Cover: "https://images.example/b.jpg"})

	refs, err := repo.ReferencedAssets(context.Background())
	require.NoError(t, err)
	assert.Contains(t, refs, "covers/a.jpg")
	assert.Contains(t, refs, "https://images.example/b.jpg")
}
