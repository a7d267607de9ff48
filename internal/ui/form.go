package ui

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/shelf/internal/catalog"
)

const (
	fieldTitle = iota
	fieldPrice
	fieldCategory
	fieldDescription
	fieldImage
	fieldCount
)

var fieldLabels = [fieldCount]string{"Title", "Price", "Category", "Description", "Image URL"}

// productForm edits the user-facing attributes of a product. Everything the
// form does not show, the rating included, is carried over from the product
// being edited.
type productForm struct {
	id     catalog.ID // zero when creating
	base   catalog.Product
	inputs []textinput.Model
	focus  int
	err    string
}

func newProductForm(p catalog.Product) productForm {
	f := productForm{
		id:     p.ID,
		base:   p.Clone(),
		inputs: make([]textinput.Model, fieldCount),
	}
	values := [fieldCount]string{
		fieldTitle:       p.Title,
		fieldCategory:    p.Category,
		fieldDescription: p.Description,
		fieldImage:       p.Image,
	}
	if !p.ID.IsZero() || p.Price != 0 {
		values[fieldPrice] = strconv.FormatFloat(p.Price, 'f', -1, 64)
	}
	for i := range f.inputs {
		in := textinput.New()
		in.Prompt = ""
		in.CharLimit = 256
		in.Width = 48
		in.Cursor.SetMode(cursor.CursorStatic)
		in.SetValue(values[i])
		f.inputs[i] = in
	}
	f.inputs[fieldPrice].Placeholder = "0.00"
	f.inputs[fieldPrice].CharLimit = 16
	f.inputs[fieldTitle].Focus()
	return f
}

func (f productForm) editing() bool {
	return !f.id.IsZero()
}

func (f *productForm) move(delta int) tea.Cmd {
	f.inputs[f.focus].Blur()
	f.focus = (f.focus + delta + fieldCount) % fieldCount
	return f.inputs[f.focus].Focus()
}

// update forwards msg to the focused input.
func (f productForm) update(msg tea.Msg) (productForm, tea.Cmd) {
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return f, cmd
}

// product validates the inputs and builds the product to send.
func (f productForm) product() (catalog.Product, error) {
	title := strings.TrimSpace(f.inputs[fieldTitle].Value())
	if title == "" {
		return catalog.Product{}, fmt.Errorf("title is required")
	}

	var price float64
	if raw := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(f.inputs[fieldPrice].Value()), "$")); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return catalog.Product{}, fmt.Errorf("price %q is not a number", raw)
		}
		if v < 0 {
			return catalog.Product{}, fmt.Errorf("price must not be negative")
		}
		price = v
	}

	p := f.base.Clone()
	p.ID = f.id
	p.Title = title
	p.Price = price
	p.Category = strings.TrimSpace(f.inputs[fieldCategory].Value())
	p.Description = strings.TrimSpace(f.inputs[fieldDescription].Value())
	p.Image = strings.TrimSpace(f.inputs[fieldImage].Value())
	return p, nil
}

func (f productForm) view(styles Styles) string {
	heading := "New product"
	if f.editing() {
		heading = "Edit product " + f.id.String()
	}

	var b strings.Builder
	b.WriteString(styles.AccentText.Bold(true).Render(heading))
	b.WriteString("\n\n")
	for i, in := range f.inputs {
		label := padRight(fieldLabels[i], 12)
		if i == f.focus {
			b.WriteString(styles.AccentText.Render("› " + label))
		} else {
			b.WriteString(styles.MutedText.Render("  " + label))
		}
		b.WriteString(in.View())
		b.WriteString("\n")
	}
	if f.err != "" {
		b.WriteString("\n")
		b.WriteString(styles.DangerText.Render(f.err))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render("tab next · enter save · esc cancel"))
	return b.String()
}
