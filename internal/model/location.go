package model

// Location is a place an article can be: the storage singleton or the 1:1
// location of a person. Articles reference locations by id; the person's
// name is always resolved live, never copied onto the article.
type Location struct {
	ID       int64  `json:"-"`
	Type     string `json:"type"`
	Name     string `json:"name"`
	PersonID *int64 `json:"personId"`
}

// Location types.
const (
	LocationStorage = "storage"
	LocationPerson  = "person"
)
