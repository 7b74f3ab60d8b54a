package favorites

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrRead means the favorites storage could not be read or parsed.
	ErrRead = errors.New("favorites: read failed")
	// ErrWrite means the favorites storage could not be persisted.
	ErrWrite = errors.New("favorites: write failed")
	// ErrDuplicate is returned when the user already saved the url.
	ErrDuplicate = errors.New("favorites: image already in favorites")
	// ErrInvalid is returned for entries that cannot be stored.
	ErrInvalid = errors.New("favorites: invalid entry")
)

// Favorite is a single saved image. ByteSize is kept as the string the
// client sent.
type Favorite struct {
	Title    string `json:"title" bson:"title"`
	ByteSize string `json:"byteSize" bson:"byteSize"`
	URL      string `json:"url" bson:"url"`
	User     string `json:"user" bson:"user"`
}

// UserFavorites is the per-user record. Name is the display name captured
// when the record was created.
type UserFavorites struct {
	User           string     `json:"user" bson:"user"`
	Name           string     `json:"name" bson:"name"`
	FavoriteImages []Favorite `json:"favoriteImages" bson:"favoriteImages"`
}

// Document is the whole persisted favorites collection.
type Document []UserFavorites

// Decode parses a stored document. Empty input and JSON null are an empty
// document; anything else that is not an array of records is ErrRead.
func Decode(data []byte) (Document, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return Document{}, nil
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRead, err)
	}
	if doc == nil {
		doc = Document{}
	}
	return doc, nil
}

// Encode renders the document as indented JSON.
func (d Document) Encode() ([]byte, error) {
	if d == nil {
		d = Document{}
	}
	for i := range d {
		if d[i].FavoriteImages == nil {
			d[i].FavoriteImages = []Favorite{}
		}
	}
	return json.MarshalIndent(d, "", "  ")
}

func (d Document) index(userID string) int {
	for i := range d {
		if d[i].User == userID {
			return i
		}
	}
	return -1
}

// Favorites returns a copy of the user's entries, empty when the user has no record.
func (d Document) Favorites(userID string) []Favorite {
	i := d.index(userID)
	if i < 0 {
		return []Favorite{}
	}
	out := make([]Favorite, len(d[i].FavoriteImages))
	copy(out, d[i].FavoriteImages)
	return out
}

// Add appends f to the user's record, creating the record with displayName
// when missing. The entry's User is set to userID. The document is left
// untouched on ErrDuplicate.
func (d *Document) Add(userID, displayName string, f Favorite) error {
	i := d.index(userID)
	if i < 0 {
		*d = append(*d, UserFavorites{User: userID, Name: displayName, FavoriteImages: []Favorite{}})
		i = len(*d) - 1
	}
	rec := &(*d)[i]
	for _, existing := range rec.FavoriteImages {
		if existing.URL == f.URL {
			return ErrDuplicate
		}
	}
	f.User = userID
	rec.FavoriteImages = append(rec.FavoriteImages, f)
	return nil
}
