package models

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Kind is the value of an object's "type" discriminator.
type Kind string

const (
	KindArtist           Kind = "r"
	KindCollectionArtist Kind = "rl"
	KindAlbum            Kind = "a"
	KindCollectionAlbum  Kind = "al"
	KindTrack            Kind = "t"
	KindPlaylist         Kind = "p"
	KindUser             Kind = "s"
)

// String returns a readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindArtist:
		return "artist"
	case KindCollectionArtist:
		return "collection artist"
	case KindAlbum:
		return "album"
	case KindCollectionAlbum:
		return "collection album"
	case KindTrack:
		return "track"
	case KindPlaylist:
		return "playlist"
	case KindUser:
		return "user"
	default:
		return "unknown (" + string(k) + ")"
	}
}

// Object is implemented by every catalog entity. The set of implementations is
// closed: [*Artist], [*Album], [*Track], [*Playlist] and [*User].
type Object interface {
	ObjectKey() string
	Kind() Kind
	Title() string
	isObject()
}

// Number holds a numeric value the API sends either as a JSON number or as a quoted string.
type Number string

func (n *Number) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*n = Number(s)
		return nil
	}
	*n = Number(b)
	return nil
}

// Float64 parses the value. An empty Number is zero.
func (n Number) Float64() (float64, error) {
	if n == "" {
		return 0, nil
	}
	return strconv.ParseFloat(string(n), 64)
}

func (n Number) String() string { return string(n) }

// Base carries the fields every object has.
type Base struct {
	Key      string `json:"key"`
	URL      string `json:"url"`
	Icon     string `json:"icon"`
	BaseIcon string `json:"baseIcon"`
	Type     string `json:"type"`
}

func (b Base) ObjectKey() string { return b.Key }
func (b Base) Kind() Kind        { return Kind(b.Type) }
func (Base) isObject()           {}

// Artist is an artist ("r") or an artist in a user's collection ("rl").
type Artist struct {
	Base
	Name       string `json:"name"`
	TrackCount int    `json:"length"`
	HasRadio   bool   `json:"hasRadio"`
	ShortURL   string `json:"shortUrl"`
	AlbumCount *int   `json:"albumCount,omitempty"`
	Hits       *int   `json:"hits,omitempty"`
}

func (a *Artist) Title() string { return a.Name }

// Music holds what albums and tracks share.
type Music struct {
	Base
	Name       string `json:"name"`
	ArtistName string `json:"artist"`
	ArtistURL  string `json:"artistUrl"`
	ArtistKey  string `json:"artistKey"`
	IsExplicit bool   `json:"isExplicit"`
	IsClean    bool   `json:"isClean"`
	Price      Number `json:"price"`
	CanStream  bool   `json:"canStream"`
	CanSample  bool   `json:"canSample"`
	CanTether  bool   `json:"canTether"`
	ShortURL   string `json:"shortUrl"`
	EmbedURL   string `json:"embedUrl"`
	Duration   int    `json:"duration"`
}

// Album is an album ("a") or an album in a user's collection ("al").
type Album struct {
	Music
	ReleaseDate    string   `json:"displayDate"`
	ReleaseDateISO *string  `json:"releaseDateISO,omitempty"`
	TrackKeys      []string `json:"trackKeys,omitempty"`
	Hits           *int     `json:"hits,omitempty"`
}

func (a *Album) Title() string { return a.Name }

// Track is a single track ("t").
type Track struct {
	Music
	AlbumName            string `json:"album"`
	AlbumKey             string `json:"albumKey"`
	AlbumURL             string `json:"albumUrl"`
	AlbumArtistName      string `json:"albumArtist"`
	AlbumArtistKey       string `json:"albumArtistKey"`
	CanDownload          bool   `json:"canDownload"`
	CanDownloadAlbumOnly bool   `json:"canDownloadAlbumOnly"`
	PlayCount            *int   `json:"playCount,omitempty"`
	TrackNumber          *int   `json:"trackNum,omitempty"`
}

func (t *Track) Title() string { return t.Name }

// Playlist is a playlist ("p").
type Playlist struct {
	Base
	Name        string   `json:"name"`
	TrackCount  int      `json:"length"`
	OwnerName   string   `json:"owner"`
	OwnerURL    string   `json:"ownerUrl"`
	OwnerKey    string   `json:"ownerKey"`
	OwnerIcon   string   `json:"ownerIcon"`
	LastUpdated Number   `json:"lastUpdated"`
	ShortURL    string   `json:"shortUrl"`
	EmbedURL    string   `json:"embedUrl"`
	TrackKeys   []string `json:"trackKeys,omitempty"`
}

func (p *Playlist) Title() string { return p.Name }

// Gender is the normalized form of the single-letter gender code on a user.
type Gender string

const (
	GenderMale    Gender = "male"
	GenderFemale  Gender = "female"
	GenderUnknown Gender = ""
)

// ParseGender maps "m" and "f" to their genders. Anything else is [GenderUnknown].
func ParseGender(code string) Gender {
	switch strings.ToLower(code) {
	case "m":
		return GenderMale
	case "f":
		return GenderFemale
	default:
		return GenderUnknown
	}
}

// Possessive returns the possessive pronoun used in activity sentences.
func (g Gender) Possessive() string {
	switch g {
	case GenderMale:
		return "his"
	case GenderFemale:
		return "her"
	default:
		return "their"
	}
}

// User is a person ("s"). Name and Gender are derived on decode.
type User struct {
	Base
	FirstName        string  `json:"firstName"`
	LastName         string  `json:"lastName"`
	LibraryVersion   int     `json:"libraryVersion"`
	GenderCode       string  `json:"gender"`
	Username         *string `json:"username,omitempty"`
	DisplayName      *string `json:"displayName,omitempty"`
	LastSongPlayed   *string `json:"lastSongPlayed,omitempty"`
	LastSongPlayTime *string `json:"lastSongPlayTime,omitempty"`
	TrackCount       *int    `json:"trackCount,omitempty"`

	Name   string `json:"name,omitempty"`
	Gender Gender `json:"-"`
}

func (u *User) UnmarshalJSON(b []byte) error {
	type plain User
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*u = User(p)
	u.Name = strings.TrimSpace(u.FirstName + " " + u.LastName)
	u.Gender = ParseGender(u.GenderCode)
	return nil
}

func (u *User) Title() string { return u.Name }

// Possessive returns the user's possessive pronoun.
func (u *User) Possessive() string { return u.Gender.Possessive() }

// FullURL joins the site root and the user's relative profile URL.
func (u *User) FullURL(site string) string {
	return strings.TrimSuffix(site, "/") + "/" + strings.TrimPrefix(u.URL, "/")
}
