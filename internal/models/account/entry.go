package models

// Coordinates places an entry on the map
type Coordinates struct {
	Lat float64 `json:"lat" firestore:"lat"`
	Lng float64 `json:"lng" firestore:"lng"`
}

// Entry is one observation record in the journals collection.
// ID is the Firestore document id and is never stored as a field.
type Entry struct {
	ID          string       `json:"id" firestore:"-"`
	UserID      string       `json:"userId" firestore:"userId"`
	CreatedAt   int64        `json:"createdAt" firestore:"createdAt"`
	Title       string       `json:"title" firestore:"title"`
	Date        string       `json:"date" firestore:"date"`
	Location    string       `json:"location" firestore:"location"`
	Equipment   string       `json:"equipment" firestore:"equipment"`
	Target      string       `json:"target" firestore:"target"`
	Description string       `json:"description" firestore:"description"`
	Observers   string       `json:"observers" firestore:"observers"`
	AuthorName  string       `json:"authorName" firestore:"authorName"`
	ImageURL    string       `json:"imageUrl,omitempty" firestore:"imageUrl,omitempty"`
	Coordinates *Coordinates `json:"coordinates,omitempty" firestore:"coordinates,omitempty"`
	Likes       []string     `json:"likes" firestore:"likes"`
	Comments    []Comment    `json:"comments" firestore:"comments"`
}

// Comment is an item of an entry's comment sequence. UserID and UserName are
// a snapshot of the commenter at comment time.
type Comment struct {
	ID        string `json:"id" firestore:"id"`
	UserID    string `json:"userId" firestore:"userId"`
	UserName  string `json:"userName" firestore:"userName"`
	Text      string `json:"text" firestore:"text"`
	CreatedAt int64  `json:"createdAt" firestore:"createdAt"`
}

// EntryFields are the owner-editable fields of an entry
type EntryFields struct {
	Title       string
	Date        string
	Location    string
	Equipment   string
	Target      string
	Description string
	Observers   string
	AuthorName  string
	ImageURL    string
	Coordinates *Coordinates
}

// LikedBy reports whether uid is in the entry's like set
func (e *Entry) LikedBy(uid string) bool {
	return ContainsID(e.Likes, uid)
}
