package render

import "strings"

// Element describes one node of rendered markup that can take part in a click.
// Data holds the decoded values of the node's data-* attributes.
type Element struct {
	Tag   string
	Class string
	Data  map[string]string
}

// HasClass reports whether the element's class list contains class.
func (e Element) HasClass(class string) bool {
	for _, c := range strings.Fields(e.Class) {
		if c == class {
			return true
		}
	}
	return false
}

// Closest returns the first element in path carrying class. Path runs from the
// raw event target outward, so this is the nearest matching ancestor.
func Closest(path []Element, class string) (Element, bool) {
	for _, e := range path {
		if e.HasClass(class) {
			return e, true
		}
	}
	return Element{}, false
}
