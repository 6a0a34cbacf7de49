package service

import (
	"context"
	"errors"
	"image/color"
	"reflect"
	"testing"

	"armario-outfits/apperr"
	"armario-outfits/models"
)

func TestCreateStoresPhotoAndThumbnail(t *testing.T) {
	repo := &fakeClothingRepo{}
	storage := newMemStorage()
	svc := NewClothingService(repo, storage)

	photo := pngBytes(800, 600, color.NRGBA{R: 200, G: 10, B: 10, A: 255})
	item, err := svc.Create(context.Background(), "u1", models.CreateClothingItemRequest{
		Name:     " Red tee ",
		Category: "Top",
		Size:     "medium",
		Color:    "Red",
	}, photo)
	if err != nil {
		t.Fatal(err)
	}
	if item.ID == 0 || item.Name != "Red tee" || item.Category != "top" || item.Size != "M" || item.Color != "red" {
		t.Errorf("item = %+v", item)
	}
	if item.Status != models.StatusClean {
		t.Errorf("status = %s, want clean", item.Status)
	}
	if storage.count() != 2 {
		t.Fatalf("stored %d blobs, want photo and thumbnail", storage.count())
	}

	thumb, ok, err := storage.Read(context.Background(), item.ThumbnailURL)
	if !ok || err != nil {
		t.Fatalf("thumbnail not readable: %v", err)
	}
	img, err := DecodeImage(thumb)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 300 || b.Dy() != 225 {
		t.Errorf("thumbnail is %dx%d, want 300x225", b.Dx(), b.Dy())
	}
}

func TestCreateRejectsBadInput(t *testing.T) {
	tests := []struct {
		name  string
		req   models.CreateClothingItemRequest
		photo []byte
	}{
		{"no photo", models.CreateClothingItemRequest{Name: "x"}, nil},
		{"not an image", models.CreateClothingItemRequest{Name: "x"}, []byte("hello")},
		{"unknown category", models.CreateClothingItemRequest{Category: "hat-rack"}, pngBytes(4, 4, color.NRGBA{A: 255})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage := newMemStorage()
			svc := NewClothingService(&fakeClothingRepo{}, storage)
			_, err := svc.Create(context.Background(), "u1", tt.req, tt.photo)
			if !apperr.Is(err, apperr.CodeInvalidInput) {
				t.Fatalf("err = %v, want INVALID_INPUT", err)
			}
			if storage.count() != 0 {
				t.Error("nothing should be stored for a rejected upload")
			}
		})
	}
}

func TestCreateCleansUpOnInsertFailure(t *testing.T) {
	repo := &fakeClothingRepo{insertErr: errors.New("db down")}
	storage := newMemStorage()
	svc := NewClothingService(repo, storage)

	_, err := svc.Create(context.Background(), "u1", models.CreateClothingItemRequest{}, pngBytes(10, 10, color.NRGBA{A: 255}))
	if err == nil {
		t.Fatal("expected error")
	}
	if storage.count() != 0 || len(storage.deleted) != 2 {
		t.Errorf("blobs left %d, deleted %v", storage.count(), storage.deleted)
	}
}

func TestCreateCleansUpWhenThumbnailUploadFails(t *testing.T) {
	storage := newMemStorage()
	storage.failAfter = 1
	svc := NewClothingService(&fakeClothingRepo{}, storage)

	_, err := svc.Create(context.Background(), "u1", models.CreateClothingItemRequest{}, pngBytes(10, 10, color.NRGBA{A: 255}))
	if !apperr.Is(err, apperr.CodeUploadFailed) {
		t.Fatalf("err = %v", err)
	}
	if storage.count() != 0 {
		t.Error("photo should be removed when the thumbnail cannot be stored")
	}
}

func wardrobe() []models.ClothingItem {
	return []models.ClothingItem{
		{ID: 1, Name: "Jeans", Category: "bottom", Color: "blue", Size: "M", Brand: "Levi's", WearCount: 9, Status: "clean", CreatedAt: "2024-01-01T00:00:00Z"},
		{ID: 2, Name: "blazer", Category: "outerwear", Color: "black", Size: "L", Brand: "Zara", WearCount: 1, Status: "laundry", CreatedAt: "2024-03-01T00:00:00Z"},
		{ID: 3, Name: "Tee", Category: "top", Color: "blue", Size: "S", Brand: "Uniqlo", WearCount: 4, Status: "clean", CreatedAt: "2024-02-01T00:00:00Z"},
		{ID: 4, Name: "Sneakers", Category: "shoes", Color: "white", Size: "42", Brand: "Zara", WearCount: 4, Status: "laundry", CreatedAt: "2024-02-01T00:00:00Z"},
	}
}

func ids(items []models.ClothingItem) []int64 {
	out := make([]int64, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func TestFilterClothing(t *testing.T) {
	tests := []struct {
		name   string
		filter models.ClothingFilter
		want   []int64
	}{
		{"no filter", models.ClothingFilter{}, []int64{1, 2, 3, 4}},
		{"status", models.ClothingFilter{Status: "laundry"}, []int64{2, 4}},
		{"color ignores case", models.ClothingFilter{Color: "BLUE"}, []int64{1, 3}},
		{"size normalised", models.ClothingFilter{Size: "small"}, []int64{3}},
		{"brand and status", models.ClothingFilter{Brand: "zara", Status: "clean"}, []int64{}},
		{"query matches name", models.ClothingFilter{Query: "blaz"}, []int64{2}},
		{"query matches category", models.ClothingFilter{Query: "shoe"}, []int64{4}},
		{"category", models.ClothingFilter{Category: "top"}, []int64{3}},
		{"spanish color", models.ClothingFilter{Color: "Azul"}, []int64{1, 3}},
		{"category alias", models.ClothingFilter{Category: "Camiseta"}, []int64{3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(FilterClothing(wardrobe(), tt.filter))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSortClothing(t *testing.T) {
	tests := []struct {
		by   string
		want []int64
	}{
		{"", []int64{2, 4, 3, 1}},
		{"newest", []int64{2, 4, 3, 1}},
		{"oldest", []int64{1, 3, 4, 2}},
		{"name", []int64{2, 1, 4, 3}},
		{"most_worn", []int64{1, 4, 3, 2}},
		{"least_worn", []int64{2, 4, 3, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.by, func(t *testing.T) {
			items := wardrobe()
			if err := SortClothing(items, tt.by); err != nil {
				t.Fatal(err)
			}
			if got := ids(items); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}

	if err := SortClothing(wardrobe(), "price"); !apperr.Is(err, apperr.CodeInvalidInput) {
		t.Errorf("unknown sort err = %v", err)
	}
}

func TestSetStatusValidates(t *testing.T) {
	repo := &fakeClothingRepo{items: wardrobe()}
	for i := range repo.items {
		repo.items[i].OwnerID = "u1"
	}
	svc := NewClothingService(repo, newMemStorage())

	if _, err := svc.SetStatus(context.Background(), "u1", models.SetStatusRequest{IDs: []int64{1}, Status: "dirty"}); !apperr.Is(err, apperr.CodeInvalidInput) {
		t.Errorf("bad status err = %v", err)
	}
	if _, err := svc.SetStatus(context.Background(), "u1", models.SetStatusRequest{Status: "clean"}); !apperr.Is(err, apperr.CodeInvalidInput) {
		t.Errorf("empty selection err = %v", err)
	}
	n, err := svc.SetStatus(context.Background(), "u1", models.SetStatusRequest{IDs: []int64{1, 2, 3}, Status: "laundry"})
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("changed = %d, want 2 (item 2 was already in laundry)", n)
	}
}

func TestDeleteRemovesImages(t *testing.T) {
	repo := &fakeClothingRepo{}
	storage := newMemStorage()
	svc := NewClothingService(repo, storage)

	item, err := svc.Create(context.Background(), "u1", models.CreateClothingItemRequest{Name: "Tee"}, pngBytes(10, 10, color.NRGBA{A: 255}))
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.Delete(context.Background(), "u1", item.ID); err != nil {
		t.Fatal(err)
	}
	if storage.count() != 0 {
		t.Errorf("%d blobs left after delete", storage.count())
	}
	if err := svc.Delete(context.Background(), "u1", item.ID); !apperr.Is(err, apperr.CodeNotFound) {
		t.Errorf("second delete err = %v", err)
	}
}
