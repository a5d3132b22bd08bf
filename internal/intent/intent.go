package intent

import "strings"

type Intent string

const (
	None               Intent = ""
	OpenBrowser        Intent = "open_browser"
	OpenNotepad        Intent = "open_notepad"
	OpenFileExplorer   Intent = "open_file_explorer"
	SearchWikipedia    Intent = "search_wikipedia"
	OpenCalculator     Intent = "open_calculator"
	Time               Intent = "time"
	Screenshot         Intent = "screenshot"
	Shutdown           Intent = "shutdown"
	CreateFile         Intent = "create_a_file"
	MoveMouse          Intent = "move_mouse"
	Click              Intent = "click"
	Scroll             Intent = "scroll"
	Type               Intent = "type"
	Exit               Intent = "exit_program"
	Delete             Intent = "delete"
	OpenApplication    Intent = "open_application"
	CloseApplication   Intent = "close_application"
	OpenWebsite        Intent = "open_website"
	CloseWebsite       Intent = "close_website"
	SearchOnline       Intent = "search"
	ListFiles          Intent = "list_files"
	CopyFile           Intent = "copy_file"
	ShowVisualizations Intent = "show_visualizations"
)

func (i Intent) String() string {
	if i == None {
		return "none"
	}
	return string(i)
}

type Phrase struct {
	Text   string `json:"text"`
	Intent Intent `json:"intent"`
}

// Order matters: the first phrase contained in the utterance wins, so an
// earlier short phrase ("time", "type") shadows anything after it.
var defaultTable = []Phrase{
	{"open browser", OpenBrowser},
	{"open notepad", OpenNotepad},
	{"open file explorer", OpenFileExplorer},
	{"search wikipedia", SearchWikipedia},
	{"open calculator", OpenCalculator},
	{"time", Time},
	{"screenshot", Screenshot},
	{"shutdown", Shutdown},
	{"create a file", CreateFile},
	{"move mouse", MoveMouse},
	{"click", Click},
	{"scroll", Scroll},
	{"type", Type},
	{"exit", Exit},
	{"delete", Delete},
	{"open application", OpenApplication},
	{"close application", CloseApplication},
	{"open website", OpenWebsite},
	{"close website", CloseWebsite},
	{"search online", SearchOnline},
	{"list files", ListFiles},
	{"copy file", CopyFile},
	{"show visualizations", ShowVisualizations},
}

// Resolver maps utterances to intents by plain substring containment.
// It is immutable after construction and safe for concurrent use.
type Resolver struct {
	table []Phrase
}

func NewResolver(table []Phrase) *Resolver {
	return &Resolver{table: append([]Phrase(nil), table...)}
}

func Default() *Resolver {
	return NewResolver(defaultTable)
}

// Resolve lowercases the utterance and returns the intent of the first
// phrase, in table order, that occurs anywhere in it.
func (r *Resolver) Resolve(utterance string) (Intent, bool) {
	s := strings.ToLower(utterance)
	for _, p := range r.table {
		if strings.Contains(s, p.Text) {
			return p.Intent, true
		}
	}
	return None, false
}

func (r *Resolver) Phrases() []Phrase {
	return append([]Phrase(nil), r.table...)
}
