package memories

import (
	"reflect"
	"testing"

	"github.com/everkeep/backend/internal/models"
)

func galleryFixture() []models.Memory {
	return []models.Memory{
		{ID: "beach", Date: "2024-07-01", Tags: []string{"summer", "travel"}, Media: []models.MediaItem{{Type: models.MediaPhoto, URL: "beach.jpg"}}},
		{ID: "concert", Date: "2024-12-24", Tags: []string{"music"}, Media: []models.MediaItem{{Type: models.MediaVideo, URL: "concert.mp4"}}},
		{ID: "picnic", Date: "2023-05-10", Tags: []string{"summer"}, Media: []models.MediaItem{{Type: models.MediaPhoto, URL: "picnic.jpg"}}},
	}
}

func TestParseSortOrder(t *testing.T) {
	if order, err := ParseSortOrder(""); err != nil || order != SortNewest {
		t.Fatalf("empty value should default to newest, got %q %v", order, err)
	}
	if order, err := ParseSortOrder("oldest"); err != nil || order != SortOldest {
		t.Fatalf("expected oldest, got %q %v", order, err)
	}
	if _, err := ParseSortOrder("shuffled"); err == nil {
		t.Fatal("expected error for unknown sort order")
	}
}

func TestParseMediaType(t *testing.T) {
	if mt, err := ParseMediaType("video"); err != nil || mt != models.MediaVideo {
		t.Fatalf("expected video, got %q %v", mt, err)
	}
	if _, err := ParseMediaType("hologram"); err == nil {
		t.Fatal("expected error for unknown media type")
	}
}

func TestFilterApplyDefaultsToNewestFirst(t *testing.T) {
	items := galleryFixture()
	got := Filter{}.Apply(items)

	ids := []string{got[0].ID, got[1].ID, got[2].ID}
	want := []string{"concert", "beach", "picnic"}
	if !reflect.DeepEqual(ids, want) {
		t.Fatalf("expected %v got %v", want, ids)
	}

	// Input order must survive.
	if items[0].ID != "beach" {
		t.Fatal("Apply mutated its input")
	}
}

func TestFilterApplyByTagAndType(t *testing.T) {
	items := galleryFixture()

	byTag := Filter{Tag: "summer", Sort: SortOldest}.Apply(items)
	if len(byTag) != 2 || byTag[0].ID != "picnic" || byTag[1].ID != "beach" {
		t.Fatalf("unexpected tag filter result: %+v", byTag)
	}

	byType := Filter{MediaType: models.MediaVideo}.Apply(items)
	if len(byType) != 1 || byType[0].ID != "concert" {
		t.Fatalf("unexpected type filter result: %+v", byType)
	}
}

func TestCollectTags(t *testing.T) {
	got := CollectTags(galleryFixture())
	want := []string{"music", "summer", "travel"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v got %v", want, got)
	}
}
