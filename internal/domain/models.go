package domain

// MaxPlayers is the size of the player palette.
const MaxPlayers = 8

// Round is a fully resolved board: an ordered list of categories.
type Round struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Comment    string     `json:"comment,omitempty"`
	Categories []Category `json:"categories"`
}

// RoundMetadata describes a round without its questions.
type RoundMetadata struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Language   string   `json:"language"`
	Difficulty string   `json:"difficulty"`
	Categories []string `json:"categories"`
	Author     string   `json:"author,omitempty"`
}

// Category is one board column.
type Category struct {
	Name       string     `json:"name"`
	Path       string     `json:"path,omitempty"`
	Lang       string     `json:"lang,omitempty"`
	Difficulty string     `json:"difficulty,omitempty"`
	Author     string     `json:"author,omitempty"`
	Questions  []Question `json:"questions"`
}

// Question is the read-only content of one board cell.
// Exactly one of Answer or Image is set.
type Question struct {
	Prompt   string `json:"question"`
	Answer   string `json:"answer,omitempty"`
	Image    string `json:"image,omitempty"`
	Value    int    `json:"value,omitempty"`
	Category string `json:"cat,omitempty"`
}

// PlayerColor is the fixed identity of a roster slot.
type PlayerColor struct {
	ID      int    `json:"id"`
	Button  string `json:"btn"`
	BgColor string `json:"bgcolor"`
	FgColor string `json:"fgcolor"`
	Key     string `json:"key"`
}

// PlayerPalette holds the eight roster slots in id order.
var PlayerPalette = [MaxPlayers]PlayerColor{
	{ID: 1, Button: "player1", BgColor: "#ff6b6b", FgColor: "#9f0b0b", Key: "1"},
	{ID: 2, Button: "player2", BgColor: "#ff9900", FgColor: "#995c00", Key: "2"},
	{ID: 3, Button: "player3", BgColor: "#9cfcff", FgColor: "#3c9c9f", Key: "3"},
	{ID: 4, Button: "player4", BgColor: "#FFFF66", FgColor: "#cccc00", Key: "4"},
	{ID: 5, Button: "player5", BgColor: "#00ff88", FgColor: "#008844", Key: "5"},
	{ID: 6, Button: "player6", BgColor: "#ff00ff", FgColor: "#880088", Key: "6"},
	{ID: 7, Button: "player7", BgColor: "#ff1493", FgColor: "#cc3366", Key: "7"},
	{ID: 8, Button: "player8", BgColor: "#00ffff", FgColor: "#008888", Key: "8"},
}
