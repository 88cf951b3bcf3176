package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// UpdateType describes one kind of activity update.
type UpdateType struct {
	Code     int
	Label    string
	template string
	// possessive templates take the owner's pronoun as a second argument
	possessive bool
}

var updateTypes = map[int]UpdateType{
	0:  {0, "track added to collection", "%s added some music to %s collection.", true},
	1:  {1, "track added to playlist", "%s added some music to a playlist.", false},
	3:  {3, "friend added", "%s added a friend.", false},
	5:  {5, "user joined", "%s joined Rdio.", false},
	6:  {6, "comment added to track", "%s commented on a track.", false},
	7:  {7, "comment added to album", "%s commented on an album.", false},
	8:  {8, "comment added to artist", "%s commented on an artist.", false},
	9:  {9, "comment added to playlist", "%s commented on a playlist.", false},
	10: {10, "track added via match collection", "%s matched music to %s collection.", true},
	11: {11, "user subscribed to Rdio", "%s subscribed to Rdio.", false},
	12: {12, "track synced to mobile", "%s synced some music to %s mobile app.", true},
}

// LookupUpdateType returns the update type for code. Unknown codes get a generic
// label and sentence, and ok is false.
func LookupUpdateType(code int) (ut UpdateType, ok bool) {
	if ut, ok := updateTypes[code]; ok {
		return ut, true
	}
	return UpdateType{Code: code, Label: "unknown update", template: "%s posted an update."}, false
}

// Describe renders the sentence for an update made by owner.
func (ut UpdateType) Describe(owner *User) string {
	name, pronoun := "Someone", GenderUnknown.Possessive()
	if owner != nil {
		if owner.Name != "" {
			name = owner.Name
		}
		pronoun = owner.Possessive()
	}
	if ut.possessive {
		return fmt.Sprintf(ut.template, name, pronoun)
	}
	return fmt.Sprintf(ut.template, name)
}

// Subject is what an activity update is about. Implementations are
// [AlbumsSubject], [ItemSubject] and [CommentSubject].
type Subject interface {
	isSubject()
}

// AlbumsSubject is music added in an update.
type AlbumsSubject struct{ Albums []*Album }

// ItemSubject is the object an update reviewed.
type ItemSubject struct{ Item Object }

// CommentSubject is the text of a comment.
type CommentSubject struct{ Comment string }

func (AlbumsSubject) isSubject()  {}
func (ItemSubject) isSubject()    {}
func (CommentSubject) isSubject() {}

// ActivityItem is one update in an activity stream.
type ActivityItem struct {
	Owner        *User
	Date         string
	UpdateTypeID int
	UpdateType   string
	Description  string
	Albums       []*Album
	ReviewedItem Object
	Comment      *string
	// Subject follows the precedence comment, then reviewed item, then albums.
	Subject Subject
}

type rawActivityItem struct {
	Owner        json.RawMessage   `json:"owner"`
	Date         string            `json:"date"`
	UpdateType   int               `json:"update_type"`
	Albums       []json.RawMessage `json:"albums"`
	ReviewedItem json.RawMessage   `json:"reviewed_item"`
	Comment      *string           `json:"comment"`
}

func (a *ActivityItem) UnmarshalJSON(b []byte) error {
	var raw rawActivityItem
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("%w: activity item: %v", ErrMalformed, err)
	}

	item := ActivityItem{Date: raw.Date, UpdateTypeID: raw.UpdateType, Comment: raw.Comment}

	if !IsEmpty(raw.Owner) {
		owner, err := DecodeUser(raw.Owner)
		if err != nil {
			return fmt.Errorf("activity owner: %w", err)
		}
		item.Owner = owner
	}

	ut, _ := LookupUpdateType(raw.UpdateType)
	item.UpdateType = ut.Label
	item.Description = ut.Describe(item.Owner)

	if raw.Albums != nil {
		item.Albums = make([]*Album, 0, len(raw.Albums))
		for i, rawAlbum := range raw.Albums {
			album, err := decodeAs[*Album](rawAlbum, KindAlbum)
			if err != nil {
				return fmt.Errorf("activity album %d: %w", i, err)
			}
			item.Albums = append(item.Albums, album)
		}
		item.Subject = AlbumsSubject{Albums: item.Albums}
	}

	if !IsEmpty(raw.ReviewedItem) {
		obj, err := DecodeObject(raw.ReviewedItem)
		if err != nil {
			return fmt.Errorf("activity reviewed item: %w", err)
		}
		item.ReviewedItem = obj
		item.Subject = ItemSubject{Item: obj}
	}

	if raw.Comment != nil {
		item.Subject = CommentSubject{Comment: *raw.Comment}
	}

	*a = item
	return nil
}

// ActivityStream is a page of updates. LastID is the cursor to pass back for the next page.
type ActivityStream struct {
	LastID  Number         `json:"last_id"`
	User    *User          `json:"user"`
	Updates []ActivityItem `json:"updates"`
}

// DecodeActivityStream decodes an activity stream result.
func DecodeActivityStream(raw json.RawMessage) (*ActivityStream, error) {
	var stream ActivityStream
	if err := json.Unmarshal(raw, &stream); err != nil {
		return nil, wrapMalformed("activity stream", err)
	}
	return &stream, nil
}

// Summary renders all update sentences, one per line.
func (s *ActivityStream) Summary() string {
	lines := make([]string, 0, len(s.Updates))
	for _, u := range s.Updates {
		lines = append(lines, u.Description)
	}
	return strings.Join(lines, "\n")
}
