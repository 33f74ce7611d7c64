package navigation

import "strings"

// Decision is the outcome of checking a page path against the session state.
type Decision string

const (
	DecisionAllow    Decision = "allow"
	DecisionRedirect Decision = "redirect"
	DecisionNotFound Decision = "not_found"
)

const (
	LoginPath   = "/login"
	LandingPath = "/"
)

// Page is a known client route.
type Page struct {
	Path      string `json:"path"`
	Name      string `json:"name"`
	Title     string `json:"title"`
	Protected bool   `json:"protected"`
}

var pages = []Page{
	{Path: "/", Name: "home", Title: "Dashboard", Protected: true},
	{Path: "/vendas", Name: "sales", Title: "Vendas", Protected: true},
	{Path: "/metas", Name: "goals", Title: "Minhas Metas", Protected: true},
	{Path: "/metas-loja", Name: "store_goals", Title: "Metas da Loja", Protected: true},
	{Path: "/campanhas", Name: "campaigns", Title: "Campanhas", Protected: true},
	{Path: "/relatorios", Name: "reports", Title: "Relatórios", Protected: true},
	{Path: "/usuarios", Name: "users", Title: "Usuários", Protected: true},
	{Path: "/configuracoes", Name: "settings", Title: "Configurações", Protected: true},
	{Path: LoginPath, Name: "login", Title: "Login"},
}

var byPath = func() map[string]Page {
	m := make(map[string]Page, len(pages))
	for _, p := range pages {
		m[p.Path] = p
	}
	return m
}()

// Result carries the decision and, for redirects, where to go.
type Result struct {
	Decision Decision `json:"decision"`
	Location string   `json:"location,omitempty"`
	Page     *Page    `json:"page,omitempty"`
}

// Pages lists the known routes in menu order.
func Pages() []Page {
	out := make([]Page, len(pages))
	copy(out, pages)
	return out
}

// Lookup finds the page for path. A trailing slash is ignored.
func Lookup(path string) (Page, bool) {
	p, ok := byPath[Normalize(path)]
	return p, ok
}

// Normalize trims whitespace and a trailing slash; the empty path is "/".
func Normalize(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return LandingPath
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			return LandingPath
		}
	}
	return path
}

// Decide applies the route access rules: anonymous callers are sent to the
// login page from any protected page, authenticated callers are sent from
// the login page to the landing page, and unknown paths are not found
// regardless of session state.
func Decide(path string, authenticated bool) Result {
	page, ok := Lookup(path)
	if !ok {
		return Result{Decision: DecisionNotFound}
	}
	switch {
	case page.Protected && !authenticated:
		return Result{Decision: DecisionRedirect, Location: LoginPath}
	case page.Path == LoginPath && authenticated:
		return Result{Decision: DecisionRedirect, Location: LandingPath}
	}
	return Result{Decision: DecisionAllow, Page: &page}
}
