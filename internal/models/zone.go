package models

type Zone struct {
	ID      string     `json:"id" bson:"_id"`
	Name    string     `json:"name" bson:"name"`
	Publish bool       `json:"publish" bson:"publish"`
	Area    []Location `json:"area" bson:"area"` // ordered polygon vertices, closed implicitly
}
