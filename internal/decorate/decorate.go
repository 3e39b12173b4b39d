// Package decorate applies the forum's page-load rules to a document: the
// auth-actions region is revealed outside the authentication pages, and the
// nav link of the current route is marked active.
//
// The package never touches a real DOM. Hosts supply a Document that can
// look elements up by id, so the same rules run in the browser, in an HTML
// rewriter, or in tests.
package decorate

import "strings"

// Element is the class list of one element. Both operations are idempotent.
type Element interface {
	AddClass(token string)
	RemoveClass(token string)
}

// Document looks up elements by id. A missing element is reported with
// ok == false, never as an error.
type Document interface {
	ElementByID(id string) (el Element, ok bool)
}

// NavLink maps a route to the id of its navigation anchor.
type NavLink struct {
	Path      string
	ElementID string
}

// Rules holds the identifiers and routes the decorator works with.
type Rules struct {
	AuthActionsID string
	HiddenClass   string
	// AuthPaths suppress the auth-actions reveal when the pathname
	// contains any of them.
	AuthPaths   []string
	ActiveClass string
	// NavLinks are matched in order against the exact pathname.
	NavLinks []NavLink
}

// Result records what a single Apply changed.
type Result struct {
	AuthRevealed bool
	ActiveLink   string
}

// DefaultRules returns the rule table used by the forum templates.
func DefaultRules() Rules {
	return Rules{
		AuthActionsID: "auth-actions",
		HiddenClass:   "invisible",
		AuthPaths:     []string{"/login", "/register"},
		ActiveClass:   "active",
		NavLinks: []NavLink{
			{Path: "/", ElementID: "nav-home-link"},
			{Path: "/about/", ElementID: "nav-about-link"},
			{Path: "/question/ask/", ElementID: "nav-ask-link"},
		},
	}
}

// Apply runs DefaultRules against doc for the page at pathname.
func Apply(pathname string, doc Document) Result {
	return DefaultRules().Apply(pathname, doc)
}

// Apply reveals the auth actions and highlights the active nav link.
// Missing elements are skipped silently.
func (r Rules) Apply(pathname string, doc Document) Result {
	var res Result

	if el, ok := doc.ElementByID(r.AuthActionsID); ok && !r.IsAuthPath(pathname) {
		el.RemoveClass(r.HiddenClass)
		res.AuthRevealed = true
	}

	if id, ok := r.ActiveLinkFor(pathname); ok {
		if el, ok := doc.ElementByID(id); ok {
			el.AddClass(r.ActiveClass)
			res.ActiveLink = id
		}
	}
	return res
}

// IsAuthPath reports whether pathname contains one of the auth paths.
// /login/next counts as an auth path.
func (r Rules) IsAuthPath(pathname string) bool {
	for _, p := range r.AuthPaths {
		if p != "" && strings.Contains(pathname, p) {
			return true
		}
	}
	return false
}

// ActiveLinkFor returns the element id of the first nav link whose path
// equals pathname.
func (r Rules) ActiveLinkFor(pathname string) (string, bool) {
	for _, l := range r.NavLinks {
		if l.Path == pathname {
			return l.ElementID, true
		}
	}
	return "", false
}
