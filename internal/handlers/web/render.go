package web

import (
	"embed"
	"html/template"
	"io"
	"time"

	"github.com/KirkDiggler/party-generator/internal/entities"
	"github.com/KirkDiggler/party-generator/internal/errors"
)

const (
	pageTitle       = "Random Party Generator"
	pageDescription = "This is the Random Party Generator page. It will be used to generate random parties for the user to use in their game."

	// refreshSeconds is how often a page without scripting reloads while
	// a request is in flight
	refreshSeconds = 2
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// ImageLocator resolves a card image ID to the URL the browser loads
type ImageLocator interface {
	ImageURL(imageID string) string
}

// ClassItemView is one icon and label row inside a card
type ClassItemView struct {
	Name string
	Icon string
}

// ClassCardView is everything a class card displays. An empty ImageURL
// renders a placeholder.
type ClassCardView struct {
	Name        string
	Description string
	ImageURL    string
	Classes     []ClassItemView
}

// CardGridView is the grid of cards for one page
type CardGridView struct {
	Loading bool
	Cards   []ClassCardView
}

// PageView is the full party generator page. UpdatedAt is formatted the
// way state updates encode it so the page script can compare them.
type PageView struct {
	PageID         string
	UpdatedAt      string
	Title          string
	Description    string
	RefreshSeconds int
	Grid           CardGridView
}

// NewClassCardView builds the card for one generated class-group
func NewClassCardView(result *entities.PartyResult, images ImageLocator) ClassCardView {
	view := ClassCardView{
		Name:        result.Name,
		Description: result.Description,
		ImageURL:    images.ImageURL(result.ImageID),
		Classes:     make([]ClassItemView, 0, len(result.Classes)),
	}
	for _, entry := range result.Classes {
		view.Classes = append(view.Classes, ClassItemView{Name: entry.Name, Icon: entry.Image})
	}
	return view
}

// NewCardGridView builds one card per result, in response order
func NewCardGridView(state *entities.ViewState, images ImageLocator) CardGridView {
	grid := CardGridView{
		Loading: state.Loading,
		Cards:   make([]ClassCardView, 0, len(state.Classes)),
	}
	for _, result := range state.Classes {
		if result == nil {
			continue
		}
		grid.Cards = append(grid.Cards, NewClassCardView(result, images))
	}
	return grid
}

// NewPageView builds the full page for state
func NewPageView(state *entities.ViewState, images ImageLocator) PageView {
	return PageView{
		PageID:         state.PageID,
		UpdatedAt:      state.UpdatedAt.Format(time.RFC3339Nano),
		Title:          pageTitle,
		Description:    pageDescription,
		RefreshSeconds: refreshSeconds,
		Grid:           NewCardGridView(state, images),
	}
}

// RenderClassCard writes the markup of a single card
func RenderClassCard(w io.Writer, view ClassCardView) error {
	return render(w, "class_card", view)
}

// RenderCardGrid writes the card grid fragment
func RenderCardGrid(w io.Writer, view CardGridView) error {
	return render(w, "card_grid", view)
}

// RenderPage writes the full page document
func RenderPage(w io.Writer, view PageView) error {
	return render(w, "page", view)
}

func render(w io.Writer, name string, data any) error {
	if err := templates.ExecuteTemplate(w, name, data); err != nil {
		return errors.Wrapf(err, "failed to render %s", name)
	}
	return nil
}
