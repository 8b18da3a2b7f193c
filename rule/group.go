package rule

// InitFunc prepares an element and its rule state the first time an
// element enters a Group: args is the Pipeline's Args field, letting
// one Group definition be parameterized per
// run (a threshold, a reference timestamp, ...).
type InitFunc func(elem Element, args any) (Element, State)

// Group is an ordered set of rules sharing one entry Tag and one Init.
// The engine picks the first Group whose Tag matches an element's Tag,
// runs Init once, then scans Rules top to bottom, restarting from the
// top after every rule that fires, until a full pass matches nothing
// (spec §4.3).
type Group struct {
	Tag   string
	Rules []Rule
	Init  InitFunc
}

// NewGroup returns a Group for tag. A nil init leaves the element and
// state untouched on entry.
func NewGroup(tag string, rules []Rule, init InitFunc) Group {
	if init == nil {
		init = func(elem Element, _ any) (Element, State) { return elem, nil }
	}
	return Group{Tag: tag, Rules: rules, Init: init}
}
