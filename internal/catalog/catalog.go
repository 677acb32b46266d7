package catalog

import (
	"errors"
	"strings"
	"sync"
)

var ErrNotFound = errors.New("catalog entry not found")

// Poem is a catalog entry served by the demo's read-only endpoints.
type Poem struct {
	ID     int    `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author"`
	Body   string `json:"body"`
}

// Image describes a static gallery image. URL is relative to the backend
// base URL; handlers prefix it per request.
type Image struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
	Size string `json:"size"`
}

// Store is the in-memory mock catalog. Read-mostly; the mutex exists so the
// seed data can be replaced in tests without racing readers.
type Store struct {
	mu     sync.RWMutex
	poems  []Poem
	images []Image
}

// NewStore returns a catalog seeded with the demo fixtures.
func NewStore() *Store {
	return &Store{poems: seedPoems, images: seedImages}
}

func (s *Store) Poems() []Poem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Poem, len(s.poems))
	copy(out, s.poems)
	return out
}

func (s *Store) PoemByID(id int) (Poem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.poems {
		if p.ID == id {
			return p, nil
		}
	}
	return Poem{}, ErrNotFound
}

func (s *Store) Images() []Image {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Image, len(s.images))
	copy(out, s.images)
	return out
}

// ImageByName returns the first image whose name contains the query,
// case-insensitively.
func (s *Store) ImageByName(name string) (Image, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q := strings.ToLower(name)
	for _, img := range s.images {
		if strings.Contains(strings.ToLower(img.Name), q) {
			return img, nil
		}
	}
	return Image{}, ErrNotFound
}

var seedPoems = []Poem{
	{
		ID:     1,
		Title:  "The Red Wheelbarrow",
		Author: "WILLIAM CARLOS WILLIAMS",
		Body:   "so much depends,\n upon \n a red wheel\nbarrow\nglazed with rain\nwater\nbeside the white\nchickens",
	},
	{
		ID:     2,
		Title:  "We Real Cool",
		Author: "Gwendolyn Brooks",
		Body:   "We real cool. We\nLeft school. We\nLurk late. We\nStrike straight. We\nSing sin. We\nThin gin. We\nJazz June. We\nDie soon.",
	},
	{
		ID:     3,
		Title:  "The Road Not Taken",
		Author: "ROBERT FROST",
		Body:   "Two roads diverged in a yellow wood,\nAnd sorry I could not travel both\nAnd be one traveler, long I stood\nAnd looked down one as far as I could\nTo where it bent in the undergrowth;",
	},
	{
		ID:     4,
		Title:  "Sonnet 18",
		Author: "William Shakespeare",
		Body:   "Shall I compare thee to a summer's day?\nThou art more lovely and more temperate:\nRough winds do shake the darling buds of May,\nAnd summer's lease hath all too short a date;",
	},
	{
		ID:     5,
		Title:  "The Raven",
		Author: "Edgar Allan Poe",
		Body:   "Once upon a midnight dreary, while I pondered, weak and weary,\nOver many a quaint and curious volume of forgotten lore—\nWhile I nodded, nearly napping, suddenly there came a tapping,\nAs of some one gently rapping, rapping at my chamber door.",
	},
}

var seedImages = []Image{
	{ID: 1, Name: "image1", URL: "/images/files/imageone.jpeg", Size: "1KB"},
	{ID: 2, Name: "image2", URL: "/images/files/imagetwo.jpeg", Size: "100KB"},
	{ID: 3, Name: "image3", URL: "/images/files/imagethree.png", Size: "500KB"},
	{ID: 4, Name: "image4", URL: "/images/files/imagefour.png", Size: "800KB"},
	{ID: 5, Name: "image5", URL: "/images/files/imagefive.png", Size: "1MB"},
}
